package savings

import (
	"context"
	"time"

	"github.com/RupaliShewale09/Smart-Finance-Management-System/internal/apperr"
	"github.com/RupaliShewale09/Smart-Finance-Management-System/internal/expense"
	"github.com/RupaliShewale09/Smart-Finance-Management-System/internal/identity"
)

// ErrInvalidRange rejects periods that end before they start.
var ErrInvalidRange = apperr.Validation("start_date must not be after end_date")

// UserLookup resolves users by id.
type UserLookup interface {
	GetUser(ctx context.Context, id string) (identity.User, error)
}

// Service reads expenses and profiles to produce savings advice.
type Service struct {
	expenses expense.Repository
	users    UserLookup
}

// NewService builds a savings advisor.
func NewService(expenses expense.Repository, users UserLookup) *Service {
	return &Service{expenses: expenses, users: users}
}

// Estimate computes the savings potential of expenses in [from, to).
func (s *Service) Estimate(ctx context.Context, userID string, from, to time.Time) (Estimate, error) {
	if to.Before(from) {
		return Estimate{}, ErrInvalidRange
	}
	user, err := s.users.GetUser(ctx, userID)
	if err != nil {
		return Estimate{}, err
	}
	expenses, err := s.expenses.ListBetween(ctx, userID, from, to)
	if err != nil {
		return Estimate{}, err
	}
	income, _ := user.FinancialProfile()
	return EstimateFrom(income, Sum(expenses)), nil
}

// SuggestInvestment recommends an investment bucket for the user given est.
func (s *Service) SuggestInvestment(ctx context.Context, userID string, est Estimate) (Suggestion, error) {
	user, err := s.users.GetUser(ctx, userID)
	if err != nil {
		return Suggestion{}, err
	}
	return Suggest(user.RiskTolerance, est), nil
}
