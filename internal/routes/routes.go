package routes

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/RupaliShewale09/Smart-Finance-Management-System/internal/auth"
	"github.com/RupaliShewale09/Smart-Finance-Management-System/internal/classifier"
	"github.com/RupaliShewale09/Smart-Finance-Management-System/internal/coach"
	"github.com/RupaliShewale09/Smart-Finance-Management-System/internal/config"
	"github.com/RupaliShewale09/Smart-Finance-Management-System/internal/expense"
	"github.com/RupaliShewale09/Smart-Finance-Management-System/internal/genai"
	"github.com/RupaliShewale09/Smart-Finance-Management-System/internal/identity"
	"github.com/RupaliShewale09/Smart-Finance-Management-System/internal/insights"
	"github.com/RupaliShewale09/Smart-Finance-Management-System/internal/ledger"
	"github.com/RupaliShewale09/Smart-Finance-Management-System/internal/middleware"
	"github.com/RupaliShewale09/Smart-Finance-Management-System/internal/notification"
	"github.com/RupaliShewale09/Smart-Finance-Management-System/internal/nudge"
	"github.com/RupaliShewale09/Smart-Finance-Management-System/internal/payments"
	"github.com/RupaliShewale09/Smart-Finance-Management-System/internal/savings"
	"github.com/RupaliShewale09/Smart-Finance-Management-System/internal/spendlimit"
	"github.com/RupaliShewale09/Smart-Finance-Management-System/internal/validation"
	"github.com/RupaliShewale09/Smart-Finance-Management-System/internal/wallet"
)

// Deps aggregates shared dependencies required to wire routes.
type Deps struct {
	Cfg    config.Config
	DB     *pgxpool.Pool
	Cache  *redis.Client
	Logger *slog.Logger
}

type repositories struct {
	identity identity.Repository
	wallets  wallet.Repository
	ledger   ledger.Ledger
	expenses expense.Repository
	limits   spendlimit.Repository
	coach    coach.Repository
	nudges   nudge.Repository
}

// newRepositories picks Postgres when a pool is configured and in-memory
// storage otherwise.
func newRepositories(db *pgxpool.Pool) repositories {
	if db == nil {
		return repositories{
			identity: identity.NewMemoryRepository(),
			wallets:  wallet.NewMemoryRepository(),
			ledger:   ledger.NewInMemory(),
			expenses: expense.NewMemoryRepository(),
			limits:   spendlimit.NewMemoryRepository(),
			coach:    coach.NewMemoryRepository(),
			nudges:   nudge.NewMemoryRepository(),
		}
	}
	return repositories{
		identity: identity.NewPostgresRepository(db),
		wallets:  wallet.NewPostgresRepository(db),
		ledger:   ledger.NewPostgresLedger(db),
		expenses: expense.NewPostgresRepository(db),
		limits:   spendlimit.NewPostgresRepository(db),
		coach:    coach.NewPostgresRepository(db),
		nudges:   nudge.NewPostgresRepository(db),
	}
}

func newClassifier(path string, logger *slog.Logger) (*classifier.Adapter, error) {
	var (
		model *classifier.Model
		err   error
	)
	if path != "" {
		model, err = classifier.LoadModel(path)
	} else {
		model, err = classifier.DefaultModel()
	}
	if err != nil {
		return nil, fmt.Errorf("load classifier: %w", err)
	}
	logger.Info("classifier loaded", slog.String("version", model.Version))
	return classifier.NewModelAdapter(model, logger), nil
}

func newGenerator(cfg config.Config, logger *slog.Logger) (*genai.Bounded, error) {
	var gen genai.Generator = genai.Unavailable{}
	if cfg.GeminiAPIKey != "" {
		client, err := genai.NewGeminiClient(context.Background(), genai.GeminiConfig{
			APIKey:  cfg.GeminiAPIKey,
			Model:   cfg.GeminiModel,
			BaseURL: cfg.GeminiBaseURL,
		})
		if err != nil {
			return nil, err
		}
		gen = client
	} else {
		logger.Warn("GEMINI_API_KEY not set, coach and nudges use fallback text")
	}
	return genai.NewBounded(gen, cfg.GenAITimeout, logger), nil
}

// Setup configures middlewares and all application routes. It returns the
// nudge engine so the caller can schedule periodic sweeps.
func Setup(app *fiber.App, d Deps) (*nudge.Engine, error) {
	if !d.Cfg.IsDev() {
		if d.DB == nil {
			return nil, fmt.Errorf("database is required when APP_ENV=%s", d.Cfg.AppEnv)
		}
		if d.Cache == nil {
			return nil, fmt.Errorf("redis is required when APP_ENV=%s", d.Cfg.AppEnv)
		}
	}
	logger := d.Logger
	if logger == nil {
		logger = slog.Default()
	}

	app.Use(recover.New())
	app.Use(middleware.RequestID())
	app.Use(middleware.Audit(logger))

	RegisterHealthRoutes(app, d)

	repos := newRepositories(d.DB)
	predictor, err := newClassifier(d.Cfg.ClassifierModelPath, logger)
	if err != nil {
		return nil, err
	}
	generator, err := newGenerator(d.Cfg, logger)
	if err != nil {
		return nil, err
	}
	validator := validation.New()
	notifier := notification.NewLoggerNotifier(logger)

	ids := identity.NewService(repos.identity)
	wallets := wallet.NewService(repos.wallets, repos.ledger)
	tokens := auth.NewTokenService(auth.TokenConfig{
		Issuer:        d.Cfg.AppName,
		Secret:        d.Cfg.JWTSecret,
		RefreshSecret: d.Cfg.RefreshSecret,
		AccessTTL:     d.Cfg.AccessTokenTTL,
		RefreshTTL:    d.Cfg.RefreshTokenTTL,
	})
	paymentSvc := payments.NewService(repos.ledger, wallets, ids, repos.expenses, predictor, notifier, logger)
	limitSvc := spendlimit.NewService(repos.limits, repos.expenses, ids)
	savingsSvc := savings.NewService(repos.expenses, ids)
	insightSvc := insights.NewService(repos.expenses, ids)
	coachSvc := coach.NewService(repos.coach, repos.expenses, limitSvc, generator)
	engine := nudge.NewEngine(
		nudge.Config{Cooldown: d.Cfg.NudgeCooldown, Lookback: d.Cfg.NudgeLookback},
		repos.nudges, repos.expenses, repos.limits, ids, generator, notifier, logger,
	)

	loginLimiter := middleware.LoginRateLimit(d.Cache, d.Cfg.LoginRateLimit, logger)
	idempotent := middleware.Idempotency(d.Cache, d.Cfg.IdempotencyTTL, logger)

	accounts := identity.NewHandler(ids, wallets, validator, logger)
	RegisterAuthRoutes(app, auth.NewHandler(auth.NewService(ids, wallets, tokens), validator), accounts, loginLimiter)

	protected := app.Group("", middleware.JWTAuth(tokens))
	RegisterProfileRoutes(protected, accounts)
	RegisterWalletRoutes(protected, wallet.NewHandler(wallets, validator), idempotent)
	RegisterPaymentRoutes(protected, payments.NewHandler(paymentSvc, validator), idempotent)
	RegisterSpendRoutes(protected, spendlimit.NewHandler(limitSvc))
	RegisterSavingsRoutes(protected, savings.NewHandler(savingsSvc, validator), insights.NewHandler(insightSvc, validator))
	RegisterCoachRoutes(protected, coach.NewHandler(coachSvc), nudge.NewHandler(engine))

	return engine, nil
}
