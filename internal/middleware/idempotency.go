package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"

	"github.com/RupaliShewale09/Smart-Finance-Management-System/internal/apperr"
	"github.com/RupaliShewale09/Smart-Finance-Management-System/internal/principal"
)

const (
	idempotencyKeyHeader = "Idempotency-Key"
	idempotencyPrefix    = "idempotency:v2:"
	pendingMarker        = "pending"
	idempotencyOpTimeout = 2 * time.Second
)

var (
	errRequestInFlight = apperr.New(apperr.KindConflict, "A request with this Idempotency-Key is still being processed")
	errIdempotencyDown = errors.New("idempotency store unavailable")
)

// replay is the part of a response needed to answer a repeated request.
type replay struct {
	Status      int    `json:"status"`
	ContentType string `json:"content_type"`
	Body        []byte `json:"body"`
}

type idempotencyStore struct {
	cache  *redis.Client
	ttl    time.Duration
	logger *slog.Logger
}

func (s idempotencyStore) op() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), idempotencyOpTimeout)
}

// reserve claims key. It returns the stored replay when the key already holds
// a completed response.
func (s idempotencyStore) reserve(key string) (*replay, error) {
	ctx, cancel := s.op()
	defer cancel()

	ok, err := s.cache.SetNX(ctx, key, pendingMarker, s.ttl).Result()
	if err != nil {
		return nil, err
	}
	if ok {
		return nil, nil
	}

	raw, err := s.cache.Get(ctx, key).Bytes()
	switch {
	case errors.Is(err, redis.Nil):
		// Expired between SetNX and Get; treat as still in flight.
		return nil, errRequestInFlight
	case err != nil:
		return nil, err
	case string(raw) == pendingMarker:
		return nil, errRequestInFlight
	}
	var r replay
	if err := json.Unmarshal(raw, &r); err != nil {
		return nil, err
	}
	return &r, nil
}

func (s idempotencyStore) release(key string) {
	ctx, cancel := s.op()
	defer cancel()
	if err := s.cache.Del(ctx, key).Err(); err != nil {
		s.logger.Warn("idempotency release failed", slog.String("key", key), slog.Any("error", err))
	}
}

func (s idempotencyStore) save(key string, r replay) error {
	payload, err := json.Marshal(r)
	if err != nil {
		return err
	}
	ctx, cancel := s.op()
	defer cancel()
	return s.cache.Set(ctx, key, payload, s.ttl).Err()
}

// Idempotency replays the stored response of unsafe requests that repeat an
// Idempotency-Key header. Requests without the header, and all requests when
// no Redis client is configured, pass through unchanged. Keys are scoped to
// the authenticated subject and the route path. Only successful responses
// are stored; a failed request releases its key so it can be retried.
func Idempotency(cache *redis.Client, ttl time.Duration, logger *slog.Logger) fiber.Handler {
	store := idempotencyStore{cache: cache, ttl: ttl, logger: logger}
	return func(c *fiber.Ctx) error {
		switch c.Method() {
		case fiber.MethodGet, fiber.MethodHead, fiber.MethodOptions:
			return c.Next()
		}
		header := strings.TrimSpace(c.Get(idempotencyKeyHeader))
		if header == "" || cache == nil {
			return c.Next()
		}
		key := idempotencyPrefix + principal.Subject(c) + ":" + c.Path() + ":" + header

		prior, err := store.reserve(key)
		if err != nil {
			if errors.Is(err, errRequestInFlight) {
				return err
			}
			logger.Error("idempotency reservation failed", slog.String("key", header), slog.Any("error", err))
			return errIdempotencyDown
		}
		if prior != nil {
			if prior.ContentType != "" {
				c.Set(fiber.HeaderContentType, prior.ContentType)
			}
			return c.Status(prior.Status).Send(prior.Body)
		}

		if err := c.Next(); err != nil {
			store.release(key)
			return err
		}
		status := c.Response().StatusCode()
		if status >= fiber.StatusBadRequest {
			store.release(key)
			return nil
		}

		r := replay{
			Status:      status,
			ContentType: string(c.Response().Header.ContentType()),
			Body:        append([]byte(nil), c.Response().Body()...),
		}
		if err := store.save(key, r); err != nil {
			logger.Error("idempotency persist failed", slog.String("key", header), slog.Any("error", err))
			store.release(key)
		}
		return nil
	}
}
