package spendlimit

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/RupaliShewale09/Smart-Finance-Management-System/internal/apperr"
	"github.com/RupaliShewale09/Smart-Finance-Management-System/internal/expense"
	"github.com/RupaliShewale09/Smart-Finance-Management-System/internal/identity"
)

var (
	ErrNoExpenses     = apperr.NotFound("No expenses found for the current month")
	ErrIncomeRequired = apperr.Validation("Monthly income must be set in your profile before generating spend limits")
)

// UserLookup resolves users by id.
type UserLookup interface {
	GetUser(ctx context.Context, id string) (identity.User, error)
}

// Spending is the current month's spend per normalized merchant category.
type Spending struct {
	ByCategory map[string]decimal.Decimal
	Total      decimal.Decimal
}

// Service generates, stores and checks spend limits.
type Service struct {
	limits   Repository
	expenses expense.Repository
	users    UserLookup
	now      func() time.Time
}

// NewService builds a spend limit service.
func NewService(limits Repository, expenses expense.Repository, users UserLookup) *Service {
	return &Service{limits: limits, expenses: expenses, users: users, now: time.Now}
}

// Generate recomputes the user's limits from this month's expenses and
// replaces the stored set.
func (s *Service) Generate(ctx context.Context, userID string) ([]Limit, error) {
	user, err := s.users.GetUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	expenses, err := s.monthExpenses(ctx, userID)
	if err != nil {
		return nil, err
	}
	if len(expenses) == 0 {
		return nil, ErrNoExpenses
	}
	income, goal := user.FinancialProfile()
	if !income.IsPositive() {
		return nil, ErrIncomeRequired
	}

	history := make([]Entry, len(expenses))
	for i, e := range expenses {
		history[i] = Entry{Category: e.MerchantCategory, Amount: e.Amount}
	}
	limits := Generate(history, income, goal)
	if err := s.limits.Replace(ctx, userID, limits); err != nil {
		return nil, err
	}
	return limits, nil
}

// Limits returns the stored limits of the user.
func (s *Service) Limits(ctx context.Context, userID string) ([]Limit, error) {
	return s.limits.List(ctx, userID)
}

// CurrentSpending aggregates this month's expenses by normalized category.
func (s *Service) CurrentSpending(ctx context.Context, userID string) (Spending, error) {
	if _, err := s.users.GetUser(ctx, userID); err != nil {
		return Spending{}, err
	}
	expenses, err := s.monthExpenses(ctx, userID)
	if err != nil {
		return Spending{}, err
	}
	return Aggregate(expenses), nil
}

// Alerts checks this month's spend, including the month total, against the
// stored limits.
func (s *Service) Alerts(ctx context.Context, userID string) ([]Alert, error) {
	spending, err := s.CurrentSpending(ctx, userID)
	if err != nil {
		return nil, err
	}
	limits, err := s.limits.List(ctx, userID)
	if err != nil {
		return nil, err
	}
	current := make(map[string]decimal.Decimal, len(spending.ByCategory)+1)
	for cat, amount := range spending.ByCategory {
		current[cat] = amount
	}
	current[TotalCategory] = spending.Total
	return Check(limits, current), nil
}

func (s *Service) monthExpenses(ctx context.Context, userID string) ([]expense.Expense, error) {
	from, to := expense.MonthRange(s.now())
	return s.expenses.ListBetween(ctx, userID, from, to)
}

// Aggregate sums expenses by normalized merchant category.
func Aggregate(expenses []expense.Expense) Spending {
	out := Spending{ByCategory: make(map[string]decimal.Decimal)}
	for _, e := range expenses {
		cat := NormalizeCategory(e.MerchantCategory)
		out.ByCategory[cat] = out.ByCategory[cat].Add(e.Amount)
		out.Total = out.Total.Add(e.Amount)
	}
	return out
}
