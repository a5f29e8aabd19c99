package nudge

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/RupaliShewale09/Smart-Finance-Management-System/internal/expense"
	"github.com/RupaliShewale09/Smart-Finance-Management-System/internal/notification"
	"github.com/RupaliShewale09/Smart-Finance-Management-System/internal/spendlimit"
)

// Run statuses.
const (
	StatusNoNudge     = "no_nudge"
	StatusRateLimited = "rate_limited"
	StatusSent        = "sent"
)

// NoDataReason explains a no_nudge outcome.
const NoDataReason = "No transaction data found for this user in the lookback period."

// Outcome is the result of running the engine for one user.
type Outcome struct {
	Status string
	Reason string
	Nudge  *Nudge
}

// Generator produces text or falls back.
type Generator interface {
	GenerateOr(ctx context.Context, prompt, fallback string) (string, bool)
}

// UserLister enumerates every user for the periodic sweep.
type UserLister interface {
	UserIDs(ctx context.Context) ([]string, error)
}

// Config tunes the engine.
type Config struct {
	Cooldown time.Duration
	Lookback time.Duration
}

// Engine analyzes users and delivers nudges.
type Engine struct {
	cfg      Config
	repo     Repository
	expenses expense.Repository
	limits   spendlimit.Repository
	users    UserLister
	gen      Generator
	notifier notification.Notifier
	logger   *slog.Logger
	now      func() time.Time
}

// NewEngine builds a nudge engine.
func NewEngine(
	cfg Config,
	repo Repository,
	expenses expense.Repository,
	limits spendlimit.Repository,
	users UserLister,
	gen Generator,
	notifier notification.Notifier,
	logger *slog.Logger,
) *Engine {
	return &Engine{
		cfg:      cfg,
		repo:     repo,
		expenses: expenses,
		limits:   limits,
		users:    users,
		gen:      gen,
		notifier: notifier,
		logger:   logger,
		now:      time.Now,
	}
}

// Analyze returns the user's current signal.
func (e *Engine) Analyze(ctx context.Context, userID string) (Signal, bool, error) {
	now := e.now().UTC()
	recent, err := e.expenses.ListBetween(ctx, userID, now.Add(-e.cfg.Lookback), now.Add(time.Second))
	if err != nil {
		return Signal{}, false, err
	}
	if len(recent) == 0 {
		return Signal{}, false, nil
	}
	limits, err := e.limits.List(ctx, userID)
	if err != nil {
		return Signal{}, false, err
	}
	sig, ok := Analyze(recent, limits)
	return sig, ok, nil
}

// Run analyzes the user and, when the signal's type is not cooling down,
// generates and stores a nudge.
func (e *Engine) Run(ctx context.Context, userID string) (Outcome, error) {
	sig, ok, err := e.Analyze(ctx, userID)
	if err != nil {
		return Outcome{}, err
	}
	if !ok {
		return Outcome{Status: StatusNoNudge, Reason: NoDataReason}, nil
	}

	now := e.now().UTC()
	if last, found, err := e.repo.LastDelivered(ctx, userID, sig.Type); err != nil {
		return Outcome{}, err
	} else if found && !cooledDown(last, now, e.cfg.Cooldown) {
		return Outcome{Status: StatusRateLimited}, nil
	}

	text, _ := e.gen.GenerateOr(ctx, Prompt(sig), FallbackMessage)
	n := Nudge{
		ID:          uuid.NewString(),
		UserID:      userID,
		Type:        sig.Type,
		Trigger:     sig.Trigger,
		Category:    sig.Category,
		Severity:    sig.Severity,
		Message:     EnforceLength(text),
		DeliveredAt: now,
	}
	stored, err := e.repo.CreateIfCooledDown(ctx, n, e.cfg.Cooldown)
	if err != nil {
		return Outcome{}, err
	}
	if !stored {
		return Outcome{Status: StatusRateLimited}, nil
	}

	if e.notifier != nil {
		_ = e.notifier.Send(ctx, notification.Message{Kind: notification.KindNudge, Destination: userID, Body: n.Message})
	}
	return Outcome{Status: StatusSent, Nudge: &n}, nil
}

// List returns the user's nudges, newest first.
func (e *Engine) List(ctx context.Context, userID string) ([]Nudge, error) {
	return e.repo.List(ctx, userID)
}

// Sweep runs the engine for every user. Failures and panics are logged per
// user and never stop the sweep.
func (e *Engine) Sweep(ctx context.Context) {
	ids, err := e.users.UserIDs(ctx)
	if err != nil {
		e.logger.Error("nudge sweep: list users", slog.Any("error", err))
		return
	}
	e.logger.Info("nudge sweep started", slog.Int("users", len(ids)))

	sent := 0
	for _, id := range ids {
		if ctx.Err() != nil {
			return
		}
		out, err := e.runSafely(ctx, id)
		if err != nil {
			e.logger.Error("nudge sweep: user failed", slog.String("user_id", id), slog.Any("error", err))
			continue
		}
		switch out.Status {
		case StatusSent:
			sent++
			e.logger.Info("nudge delivered", slog.String("user_id", id), slog.String("type", out.Nudge.Type))
		case StatusRateLimited:
			e.logger.Debug("nudge rate limited", slog.String("user_id", id))
		}
	}
	e.logger.Info("nudge sweep finished", slog.Int("users", len(ids)), slog.Int("sent", sent))
}

func (e *Engine) runSafely(ctx context.Context, userID string) (out Outcome, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()
	return e.Run(ctx, userID)
}
