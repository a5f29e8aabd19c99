package spendlimit

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/RupaliShewale09/Smart-Finance-Management-System/internal/expense"
	"github.com/RupaliShewale09/Smart-Finance-Management-System/internal/identity"
)

type fixture struct {
	svc      *Service
	limits   Repository
	expenses expense.Repository
	users    *identity.Service
	userID   string
	now      time.Time
}

func newFixture(t *testing.T, income int64) fixture {
	t.Helper()
	ctx := context.Background()
	users := identity.NewService(identity.NewMemoryRepository())
	user, err := users.RegisterUser(ctx, identity.UserRegistration{
		Username: "ravi", Email: "ravi@example.com", Phone: "9000000001", Password: "secret123",
	})
	require.NoError(t, err)
	if income > 0 {
		_, err = users.UpdateProfile(ctx, user.ID, identity.Profile{
			Income: decimal.NewFromInt(income), SavingsGoal: decimal.NewFromInt(income / 5), RiskTolerance: identity.RiskLow,
		})
		require.NoError(t, err)
	}
	f := fixture{
		limits:   NewMemoryRepository(),
		expenses: expense.NewMemoryRepository(),
		users:    users,
		userID:   user.ID,
		now:      time.Date(2024, time.June, 15, 10, 0, 0, 0, time.UTC),
	}
	f.svc = NewService(f.limits, f.expenses, users)
	f.svc.now = func() time.Time { return f.now }
	return f
}

func (f fixture) spend(t *testing.T, category string, amount int64, at time.Time) {
	t.Helper()
	require.NoError(t, f.expenses.Create(context.Background(), expense.Expense{
		ID: uuid.NewString(), UserID: f.userID, MerchantName: "m", MerchantCategory: category,
		Amount: decimal.NewFromInt(amount), PredictedCategory: expense.CategoryOrange,
		Urgency: expense.UrgencyNecessary, CreatedAt: at,
	}))
}

func TestServiceGenerateReplacesWholeSet(t *testing.T) {
	f := newFixture(t, 50000)
	ctx := context.Background()
	f.spend(t, "Dining", 300, f.now.Add(-time.Hour))
	f.spend(t, "groceries", 500, f.now.Add(-2*time.Hour))
	f.spend(t, "Travel", 9999, f.now.AddDate(0, -1, 0)) // previous month, ignored

	first, err := f.svc.Generate(ctx, f.userID)
	require.NoError(t, err)
	assert.Len(t, first, 3)

	again, err := f.svc.Generate(ctx, f.userID)
	require.NoError(t, err)
	assert.Equal(t, first, again)

	f.spend(t, "Fuel", 100, f.now.Add(-3*time.Hour))
	f.spend(t, "Shopping", 100, f.now.Add(-4*time.Hour))
	_, err = f.svc.Generate(ctx, f.userID)
	require.NoError(t, err)

	stored, err := f.svc.Limits(ctx, f.userID)
	require.NoError(t, err)
	require.Len(t, stored, 5)
	assert.Equal(t, TotalCategory, stored[len(stored)-1].Category)
}

func TestServiceGenerateErrors(t *testing.T) {
	ctx := context.Background()

	noIncome := newFixture(t, 0)
	noIncome.spend(t, "Dining", 300, noIncome.now)
	_, err := noIncome.svc.Generate(ctx, noIncome.userID)
	assert.ErrorIs(t, err, ErrIncomeRequired)

	noExpenses := newFixture(t, 50000)
	_, err = noExpenses.svc.Generate(ctx, noExpenses.userID)
	assert.ErrorIs(t, err, ErrNoExpenses)

	_, err = noExpenses.svc.Generate(ctx, uuid.NewString())
	assert.ErrorIs(t, err, identity.ErrUserNotFound)
}

func TestServiceAlerts(t *testing.T) {
	f := newFixture(t, 10000)
	ctx := context.Background()

	alerts, err := f.svc.Alerts(ctx, f.userID)
	require.NoError(t, err)
	require.Len(t, alerts, 1)
	assert.Equal(t, LevelInfo, alerts[0].Level)

	require.NoError(t, f.limits.Replace(ctx, f.userID, []Limit{
		{Category: "Dining", Limit: decimal.NewFromInt(1000), AlertThreshold: decimal.NewFromInt(850)},
		{Category: TotalCategory, Limit: decimal.NewFromInt(1200), AlertThreshold: decimal.NewFromInt(1080)},
	}))
	f.spend(t, "dining ", 900, f.now.Add(-time.Hour))
	f.spend(t, "Fuel", 300, f.now.Add(-time.Hour))

	alerts, err = f.svc.Alerts(ctx, f.userID)
	require.NoError(t, err)
	require.Len(t, alerts, 2)
	assert.Equal(t, "Dining", alerts[0].Category)
	assert.Equal(t, LevelWarning, alerts[0].Level)
	assert.Equal(t, TotalCategory, alerts[1].Category)
	assert.Equal(t, LevelDanger, alerts[1].Level)
}

func TestServiceCurrentSpending(t *testing.T) {
	f := newFixture(t, 10000)
	f.spend(t, "Dining", 100, f.now.Add(-time.Hour))
	f.spend(t, " dining", 50, f.now.Add(-time.Hour))
	f.spend(t, "Fuel", 25, time.Date(2024, time.June, 1, 0, 0, 0, 0, time.UTC))
	f.spend(t, "Fuel", 999, time.Date(2024, time.July, 1, 0, 0, 0, 0, time.UTC))

	spending, err := f.svc.CurrentSpending(context.Background(), f.userID)
	require.NoError(t, err)
	assert.True(t, spending.ByCategory["Dining"].Equal(decimal.NewFromInt(150)))
	assert.True(t, spending.ByCategory["Fuel"].Equal(decimal.NewFromInt(25)))
	assert.True(t, spending.Total.Equal(decimal.NewFromInt(175)))
}
