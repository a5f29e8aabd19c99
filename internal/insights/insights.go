// Package insights summarizes a user's classified spending over a period.
package insights

import (
	"context"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/RupaliShewale09/Smart-Finance-Management-System/internal/classifier"
	"github.com/RupaliShewale09/Smart-Finance-Management-System/internal/expense"
	"github.com/RupaliShewale09/Smart-Finance-Management-System/internal/identity"
)

const (
	WarningHighUrgency = "High urgency detected!"
	WarningOK          = "Spending okay."

	// highUrgencyThreshold is the number of critical expenses above which
	// the period is flagged.
	highUrgencyThreshold = 3
	uncategorized        = "uncategorized"
)

// UserLookup resolves users by id.
type UserLookup interface {
	GetUser(ctx context.Context, id string) (identity.User, error)
}

// DailySpend is the total spent on one calendar day.
type DailySpend struct {
	Date   string
	Amount decimal.Decimal
}

// Summary is the spending report for a period.
type Summary struct {
	TotalSpent         decimal.Decimal
	ByCategory         map[string]decimal.Decimal
	Percentages        map[string]decimal.Decimal
	HighUrgencyCount   int
	RecurringMerchants int
	Warning            string
	Daily              []DailySpend
}

// Service builds spending summaries.
type Service struct {
	expenses expense.Repository
	users    UserLookup
	now      func() time.Time
}

// NewService builds an insights service.
func NewService(expenses expense.Repository, users UserLookup) *Service {
	return &Service{expenses: expenses, users: users, now: time.Now}
}

// Summarize reports the user's spending in [from, to).
func (s *Service) Summarize(ctx context.Context, userID string, from, to time.Time) (Summary, error) {
	if _, err := s.users.GetUser(ctx, userID); err != nil {
		return Summary{}, err
	}
	expenses, err := s.expenses.ListBetween(ctx, userID, from, to)
	if err != nil {
		return Summary{}, err
	}

	sum := Build(expenses)
	since := s.now().Add(-classifier.RecurrenceWindow)
	seen := make(map[string]struct{})
	for _, e := range expenses {
		if _, ok := seen[e.MerchantName]; ok {
			continue
		}
		seen[e.MerchantName] = struct{}{}
		n, err := s.expenses.CountByMerchantSince(ctx, userID, e.MerchantName, since)
		if err != nil {
			return Summary{}, err
		}
		if classifier.IsRecurring(n) {
			sum.RecurringMerchants++
		}
	}
	return sum, nil
}

// Build aggregates expenses by predicted category and by UTC day. Recurring
// merchants are left for the caller to count.
func Build(expenses []expense.Expense) Summary {
	sum := Summary{
		ByCategory:  make(map[string]decimal.Decimal),
		Percentages: make(map[string]decimal.Decimal),
		Warning:     WarningOK,
	}
	daily := make(map[string]decimal.Decimal)
	for _, e := range expenses {
		sum.TotalSpent = sum.TotalSpent.Add(e.Amount)
		cat := e.PredictedCategory
		if cat == "" {
			cat = uncategorized
		}
		sum.ByCategory[cat] = sum.ByCategory[cat].Add(e.Amount)
		day := e.CreatedAt.UTC().Format("2006-01-02")
		daily[day] = daily[day].Add(e.Amount)
		if e.Urgency == expense.UrgencyCritical {
			sum.HighUrgencyCount++
		}
	}

	if sum.TotalSpent.IsPositive() {
		hundred := decimal.NewFromInt(100)
		for cat, amount := range sum.ByCategory {
			sum.Percentages[cat] = amount.Div(sum.TotalSpent).Mul(hundred).Round(2)
		}
	}
	if sum.HighUrgencyCount > highUrgencyThreshold {
		sum.Warning = WarningHighUrgency
	}

	sum.Daily = make([]DailySpend, 0, len(daily))
	for day, amount := range daily {
		sum.Daily = append(sum.Daily, DailySpend{Date: day, Amount: amount})
	}
	sort.Slice(sum.Daily, func(i, j int) bool { return sum.Daily[i].Date < sum.Daily[j].Date })
	sum.TotalSpent = sum.TotalSpent.Round(2)
	return sum
}
