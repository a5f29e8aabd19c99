package server

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/RupaliShewale09/Smart-Finance-Management-System/internal/apperr"
	"github.com/RupaliShewale09/Smart-Finance-Management-System/internal/config"
	"github.com/RupaliShewale09/Smart-Finance-Management-System/internal/middleware"
	"github.com/RupaliShewale09/Smart-Finance-Management-System/internal/nudge"
	"github.com/RupaliShewale09/Smart-Finance-Management-System/internal/routes"
)

// Server wraps the Fiber application, the nudge scheduler and shared
// dependencies.
type Server struct {
	app       *fiber.App
	cfg       config.Config
	scheduler *nudge.Scheduler
	logger    *slog.Logger
}

// New instantiates the HTTP server and delegates route wiring to routes.Setup.
func New(cfg config.Config, db *pgxpool.Pool, cache *redis.Client, logger *slog.Logger) (*Server, error) {
	app := fiber.New(fiber.Config{
		AppName:      cfg.AppName,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		ErrorHandler: ErrorHandler(logger),
		Immutable:    true,
	})

	engine, err := routes.Setup(app, routes.Deps{Cfg: cfg, DB: db, Cache: cache, Logger: logger})
	if err != nil {
		return nil, err
	}

	s := &Server{app: app, cfg: cfg, logger: logger}
	if cfg.NudgeEnabled {
		s.scheduler = nudge.NewScheduler(engine, cfg.NudgeInterval, logger)
	}
	return s, nil
}

// App exposes the underlying Fiber application.
func (s *Server) App() *fiber.App { return s.app }

// Listen starts the nudge scheduler and then the HTTP server. It blocks until
// the server stops.
func (s *Server) Listen(ctx context.Context) error {
	if s.scheduler != nil {
		s.scheduler.Start(ctx)
	}
	return s.app.Listen(s.cfg.Address())
}

// Shutdown stops the scheduler and then the HTTP server within ctx.
func (s *Server) Shutdown(ctx context.Context) error {
	var schedErr error
	if s.scheduler != nil {
		schedErr = s.scheduler.Stop(ctx)
	}
	return errors.Join(schedErr, s.app.ShutdownWithContext(ctx))
}

// ErrorHandler renders every handler error as {"error", "request_id"} with the
// status derived from its kind.
func ErrorHandler(logger *slog.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		status := apperr.Status(err)
		msg := apperr.Message(err)

		var fe *fiber.Error
		if errors.As(err, &fe) {
			status, msg = fe.Code, fe.Message
		}
		if status >= fiber.StatusInternalServerError && logger != nil {
			logger.Error("unhandled error",
				slog.String("path", c.Path()),
				slog.String("request_id", middleware.RequestIDFrom(c)),
				slog.String("error", err.Error()),
			)
		}
		return c.Status(status).JSON(fiber.Map{
			"error":      msg,
			"request_id": middleware.RequestIDFrom(c),
		})
	}
}
