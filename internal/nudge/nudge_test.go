package nudge

import (
	"context"
	"errors"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/RupaliShewale09/Smart-Finance-Management-System/internal/expense"
	"github.com/RupaliShewale09/Smart-Finance-Management-System/internal/logging"
	"github.com/RupaliShewale09/Smart-Finance-Management-System/internal/notification"
	"github.com/RupaliShewale09/Smart-Finance-Management-System/internal/spendlimit"
)

func spend(category, urgency string, amount int64, at time.Time) expense.Expense {
	return expense.Expense{
		ID:               uuid.NewString(),
		MerchantName:     category + " shop",
		MerchantCategory: category,
		Amount:           decimal.NewFromInt(amount),
		Urgency:          urgency,
		CreatedAt:        at,
	}
}

func TestAnalyzePriority(t *testing.T) {
	at := time.Date(2024, 6, 10, 12, 0, 0, 0, time.UTC)
	limits := []spendlimit.Limit{{Category: "Groceries", Limit: decimal.NewFromInt(1000), AlertThreshold: decimal.NewFromInt(800)}}

	_, ok := Analyze(nil, limits)
	assert.False(t, ok)

	sig, ok := Analyze([]expense.Expense{
		spend("groceries", expense.UrgencyNecessary, 900, at),
		spend("dining", expense.UrgencyDiscretionary, 50, at),
		spend("entertainment", expense.UrgencyDiscretionary, 60, at),
	}, limits)
	require.True(t, ok)
	assert.Equal(t, Signal{Type: TypeBehavior, Trigger: TriggerImpulsiveSpending, Severity: SeverityMedium, Category: "Dining"}, sig)

	sig, ok = Analyze([]expense.Expense{
		spend("dining", expense.UrgencyDiscretionary, 50, at),
		spend("groceries", expense.UrgencyNecessary, 800, at),
	}, limits)
	require.True(t, ok)
	assert.Equal(t, Signal{Type: TypeAlert, Trigger: TriggerSpendLimitWarning, Severity: SeverityHigh, Category: "Groceries"}, sig)

	sig, ok = Analyze([]expense.Expense{spend("groceries", expense.UrgencyNecessary, 799, at)}, limits)
	require.True(t, ok)
	assert.Equal(t, TypeLiteracy, sig.Type)
	assert.Equal(t, CategoryGeneral, sig.Category)
	assert.Equal(t, SeverityLow, sig.Severity)
}

func TestEnforceLength(t *testing.T) {
	short := "Keep your coffee budget in check this week."
	assert.Equal(t, short, EnforceLength(short))

	long := strings.Repeat("word ", 30)
	got := EnforceLength(long)
	assert.Len(t, strings.Fields(got), 25)
	assert.True(t, strings.HasSuffix(got, "word."))
}

type stubGenerator struct {
	text  string
	calls atomic.Int32
}

func (g *stubGenerator) GenerateOr(_ context.Context, _ string, fallback string) (string, bool) {
	g.calls.Add(1)
	if g.text == "" {
		return fallback, false
	}
	return g.text, true
}

type staticUsers []string

func (u staticUsers) UserIDs(context.Context) ([]string, error) { return u, nil }

type engineFixture struct {
	engine   *Engine
	expenses expense.Repository
	repo     Repository
	notifier *notification.Recorder
	gen      *stubGenerator
	now      time.Time
}

func newEngine(t *testing.T, users ...string) *engineFixture {
	t.Helper()
	f := &engineFixture{
		expenses: expense.NewMemoryRepository(),
		repo:     NewMemoryRepository(),
		notifier: &notification.Recorder{},
		gen:      &stubGenerator{text: "Small pauses before buying help your savings grow."},
		now:      time.Date(2024, 6, 10, 12, 0, 0, 0, time.UTC),
	}
	f.engine = NewEngine(Config{Cooldown: 30 * time.Minute, Lookback: 7 * 24 * time.Hour},
		f.repo, f.expenses, spendlimit.NewMemoryRepository(), staticUsers(users), f.gen, f.notifier, logging.Discard())
	f.engine.now = func() time.Time { return f.now }
	return f
}

func (f *engineFixture) add(t *testing.T, userID string, e expense.Expense) {
	t.Helper()
	e.UserID = userID
	require.NoError(t, f.expenses.Create(context.Background(), e))
}

func TestRunCooldown(t *testing.T) {
	userID := uuid.NewString()
	f := newEngine(t)
	ctx := context.Background()
	f.add(t, userID, spend("dining", expense.UrgencyDiscretionary, 40, f.now.Add(-time.Hour)))
	f.add(t, userID, spend("dining", expense.UrgencyDiscretionary, 40, f.now.Add(-2*time.Hour)))

	out, err := f.engine.Run(ctx, userID)
	require.NoError(t, err)
	require.Equal(t, StatusSent, out.Status)
	assert.Equal(t, TypeBehavior, out.Nudge.Type)
	assert.Equal(t, f.gen.text, out.Nudge.Message)

	f.now = f.now.Add(10 * time.Minute)
	out, err = f.engine.Run(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, StatusRateLimited, out.Status)
	assert.Equal(t, int32(1), f.gen.calls.Load())

	f.now = f.now.Add(21 * time.Minute)
	out, err = f.engine.Run(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, StatusSent, out.Status)

	stored, err := f.engine.List(ctx, userID)
	require.NoError(t, err)
	require.Len(t, stored, 2)
	assert.True(t, stored[0].DeliveredAt.After(stored[1].DeliveredAt))

	msgs := f.notifier.Messages()
	require.Len(t, msgs, 2)
	assert.Equal(t, notification.KindNudge, msgs[0].Kind)
}

func TestRunNoDataAndFallback(t *testing.T) {
	userID := uuid.NewString()
	f := newEngine(t)
	ctx := context.Background()

	out, err := f.engine.Run(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, StatusNoNudge, out.Status)
	assert.Equal(t, NoDataReason, out.Reason)

	f.add(t, userID, spend("dining", expense.UrgencyDiscretionary, 40, f.now.Add(-8*24*time.Hour)))
	out, err = f.engine.Run(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, StatusNoNudge, out.Status, "expenses outside the lookback are ignored")

	f.gen.text = ""
	f.add(t, userID, spend("groceries", expense.UrgencyNecessary, 40, f.now.Add(-time.Hour)))
	out, err = f.engine.Run(ctx, userID)
	require.NoError(t, err)
	require.Equal(t, StatusSent, out.Status)
	assert.Equal(t, TypeLiteracy, out.Nudge.Type)
	assert.Equal(t, FallbackMessage, out.Nudge.Message)
}

func TestCreateIfCooledDownIsAtomic(t *testing.T) {
	repo := NewMemoryRepository()
	userID := uuid.NewString()
	at := time.Now().UTC()

	var wg sync.WaitGroup
	var stored atomic.Int32
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ok, err := repo.CreateIfCooledDown(context.Background(), Nudge{ID: uuid.NewString(), UserID: userID, Type: TypeAlert, DeliveredAt: at}, 30*time.Minute)
			if err == nil && ok {
				stored.Add(1)
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, int32(1), stored.Load())

	ok, err := repo.CreateIfCooledDown(context.Background(), Nudge{ID: uuid.NewString(), UserID: userID, Type: TypeLiteracy, DeliveredAt: at}, 30*time.Minute)
	require.NoError(t, err)
	assert.True(t, ok, "cooldown is tracked per type")
}

type failingExpenses struct{ expense.Repository }

func (failingExpenses) ListBetween(context.Context, string, time.Time, time.Time) ([]expense.Expense, error) {
	return nil, errors.New("db down")
}

func TestSweepSurvivesPanicsAndErrors(t *testing.T) {
	good, bad := uuid.NewString(), uuid.NewString()
	f := newEngine(t, bad, good)
	f.add(t, good, spend("groceries", expense.UrgencyNecessary, 40, f.now.Add(-time.Hour)))
	f.add(t, bad, spend("groceries", expense.UrgencyNecessary, 40, f.now.Add(-time.Hour)))

	inner := f.engine.repo
	f.engine.repo = &switchRepo{Repository: inner, panicFor: bad}
	f.engine.Sweep(context.Background())

	stored, err := inner.List(context.Background(), good)
	require.NoError(t, err)
	assert.Len(t, stored, 1)

	f.engine.expenses = failingExpenses{f.expenses}
	assert.NotPanics(t, func() { f.engine.Sweep(context.Background()) })
}

type switchRepo struct {
	Repository
	panicFor string
}

func (r *switchRepo) LastDelivered(ctx context.Context, userID, nudgeType string) (time.Time, bool, error) {
	if userID == r.panicFor {
		panic("boom")
	}
	return r.Repository.LastDelivered(ctx, userID, nudgeType)
}

type countingSweeper struct{ n atomic.Int32 }

func (s *countingSweeper) Sweep(context.Context) { s.n.Add(1) }

func TestSchedulerRunsUntilStopped(t *testing.T) {
	sw := &countingSweeper{}
	s := NewScheduler(sw, 5*time.Millisecond, logging.Discard())
	s.Start(context.Background())
	s.Start(context.Background())

	assert.Eventually(t, func() bool { return sw.n.Load() >= 2 }, time.Second, 5*time.Millisecond)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, s.Stop(ctx))
	after := sw.n.Load()
	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, after, sw.n.Load())
	assert.NoError(t, s.Stop(ctx))
}
