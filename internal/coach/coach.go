// Package coach answers user questions about their finances with generated
// text grounded on recent expenses, current spend and active alerts.
package coach

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/RupaliShewale09/Smart-Finance-Management-System/internal/apperr"
	"github.com/RupaliShewale09/Smart-Finance-Management-System/internal/expense"
	"github.com/RupaliShewale09/Smart-Finance-Management-System/internal/spendlimit"
)

// FallbackReply is returned when no reply could be generated.
const FallbackReply = "I'm currently unable to respond. Please try again later."

const recentExpenses = 10

// ErrEmptyMessage rejects blank chat messages.
var ErrEmptyMessage = apperr.Validation("message: This field is required")

// Conversation is one stored question and answer.
type Conversation struct {
	ID          string
	UserID      string
	UserMessage string
	AIResponse  string
	CreatedAt   time.Time
}

// Spending reads the user's current spend and alerts.
type Spending interface {
	CurrentSpending(ctx context.Context, userID string) (spendlimit.Spending, error)
	Alerts(ctx context.Context, userID string) ([]spendlimit.Alert, error)
}

// Generator produces text or falls back.
type Generator interface {
	GenerateOr(ctx context.Context, prompt, fallback string) (string, bool)
}

// Service runs coach chats.
type Service struct {
	repo     Repository
	expenses expense.Repository
	spending Spending
	gen      Generator
	now      func() time.Time
}

// NewService builds a coach service.
func NewService(repo Repository, expenses expense.Repository, spending Spending, gen Generator) *Service {
	return &Service{repo: repo, expenses: expenses, spending: spending, gen: gen, now: time.Now}
}

// Chat answers message for the user. Only generated replies are stored.
func (s *Service) Chat(ctx context.Context, userID, message string) (string, error) {
	message = strings.TrimSpace(message)
	if message == "" {
		return "", ErrEmptyMessage
	}
	current, err := s.spending.CurrentSpending(ctx, userID)
	if err != nil {
		return "", err
	}
	alerts, err := s.spending.Alerts(ctx, userID)
	if err != nil {
		return "", err
	}
	recent, err := s.expenses.Recent(ctx, userID, recentExpenses)
	if err != nil {
		return "", err
	}

	reply, ok := s.gen.GenerateOr(ctx, BuildPrompt(message, recent, current, alerts), FallbackReply)
	if !ok {
		return reply, nil
	}
	if err := s.repo.Create(ctx, Conversation{
		ID:          uuid.NewString(),
		UserID:      userID,
		UserMessage: message,
		AIResponse:  reply,
		CreatedAt:   s.now().UTC(),
	}); err != nil {
		return "", err
	}
	return reply, nil
}

// History returns the user's stored conversations, newest first.
func (s *Service) History(ctx context.Context, userID string) ([]Conversation, error) {
	return s.repo.List(ctx, userID)
}

// BuildPrompt renders the coach prompt.
func BuildPrompt(message string, recent []expense.Expense, current spendlimit.Spending, alerts []spendlimit.Alert) string {
	var b strings.Builder
	b.WriteString("You are a friendly and supportive financial AI coach in India (INR).\n\n")
	b.WriteString("STRICT RULES:\n")
	b.WriteString("- Answer ONLY finance-related questions: spending, budgeting, saving, expenses, alerts, financial habits.\n")
	b.WriteString("- If the user asks anything outside finance, respond with: \"I'm here to guide you on financial matters like spending, saving, and budgeting.\"\n")
	b.WriteString("- Keep responses short, 4 to 5 sentences at most, supportive and non-judgmental.\n")
	b.WriteString("- Suggest at most 2 small improvements and ask at most one reflective follow-up question.\n\n")

	b.WriteString("Recent transactions:\n")
	if len(recent) == 0 {
		b.WriteString("- none\n")
	}
	for _, e := range recent {
		fmt.Fprintf(&b, "- %s: INR %s at %s (%s)\n",
			e.CreatedAt.UTC().Format("02 Jan"), e.Amount.StringFixed(2), e.MerchantName, e.PredictedCategory)
	}

	b.WriteString("\nCurrent month spending by category:\n")
	cats := make([]string, 0, len(current.ByCategory))
	for cat := range current.ByCategory {
		cats = append(cats, cat)
	}
	sort.Strings(cats)
	for _, cat := range cats {
		fmt.Fprintf(&b, "- %s: INR %s\n", cat, current.ByCategory[cat].StringFixed(2))
	}
	fmt.Fprintf(&b, "- total: INR %s\n", current.Total.StringFixed(2))

	b.WriteString("\nActive alerts:\n")
	if len(alerts) == 0 {
		b.WriteString("- No alerts\n")
	}
	for _, a := range alerts {
		fmt.Fprintf(&b, "- [%s] %s\n", a.Level, a.Message)
	}

	fmt.Fprintf(&b, "\nUser message: %q\n", message)
	return b.String()
}
