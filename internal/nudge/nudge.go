// Package nudge detects spending behavior worth a short message, generates
// that message and stores it subject to a per-type cooldown.
package nudge

import (
	"fmt"
	"strings"
	"time"

	"github.com/RupaliShewale09/Smart-Finance-Management-System/internal/expense"
	"github.com/RupaliShewale09/Smart-Finance-Management-System/internal/spendlimit"
)

// Nudge types in priority order.
const (
	TypeBehavior = "behavior"
	TypeAlert    = "alert"
	TypeLiteracy = "literacy"
)

// Severities attached to each signal.
const (
	SeverityLow    = "low"
	SeverityMedium = "medium"
	SeverityHigh   = "high"
)

const (
	TriggerImpulsiveSpending      = "impulsive_spending"
	TriggerSpendLimitWarning      = "spend_limit_warning"
	TriggerSavingsEncouragement   = "savings_encouragement"
	CategoryGeneral               = "General"
	FallbackMessage               = "Remember to keep an eye on your discretionary spending this week!"
	maxWords                      = 25
	impulsiveDiscretionaryMinimum = 2
)

// Signal is the single behavior detected for a user.
type Signal struct {
	Type     string
	Trigger  string
	Severity string
	Category string
}

// Nudge is a delivered message.
type Nudge struct {
	ID          string
	UserID      string
	Type        string
	Trigger     string
	Category    string
	Severity    string
	Message     string
	DeliveredAt time.Time
}

// Analyze picks one signal from expenses, which must be in chronological
// order. It reports false when there are no expenses. Behavior outranks
// alerts, which outrank literacy.
func Analyze(expenses []expense.Expense, limits []spendlimit.Limit) (Signal, bool) {
	if len(expenses) == 0 {
		return Signal{}, false
	}

	var discretionary []expense.Expense
	for _, e := range expenses {
		if e.Urgency == expense.UrgencyDiscretionary {
			discretionary = append(discretionary, e)
		}
	}
	if len(discretionary) >= impulsiveDiscretionaryMinimum {
		return Signal{
			Type:     TypeBehavior,
			Trigger:  TriggerImpulsiveSpending,
			Severity: SeverityMedium,
			Category: spendlimit.NormalizeCategory(discretionary[0].MerchantCategory),
		}, true
	}

	byCategory := make(map[string]spendlimit.Limit, len(limits))
	for _, l := range limits {
		byCategory[l.Category] = l
	}
	for _, e := range expenses {
		cat := spendlimit.NormalizeCategory(e.MerchantCategory)
		l, ok := byCategory[cat]
		if ok && e.Amount.GreaterThanOrEqual(l.AlertThreshold) {
			return Signal{
				Type:     TypeAlert,
				Trigger:  TriggerSpendLimitWarning,
				Severity: SeverityHigh,
				Category: cat,
			}, true
		}
	}

	return Signal{
		Type:     TypeLiteracy,
		Trigger:  TriggerSavingsEncouragement,
		Severity: SeverityLow,
		Category: CategoryGeneral,
	}, true
}

// EnforceLength truncates text longer than 25 words to its first 25 words
// followed by a period.
func EnforceLength(text string) string {
	words := strings.Fields(text)
	if len(words) > maxWords {
		return strings.Join(words[:maxWords], " ") + "."
	}
	return strings.TrimSpace(text)
}

// Prompt renders the generation prompt for s.
func Prompt(s Signal) string {
	return fmt.Sprintf(`You are a financial assistant.

Generate a short, supportive financial nudge.

STRICT RULES:
- Output must be 1 or 2 lines only
- Maximum 25 words
- No emojis
- No statistics unless essential
- Tone must be calm and non-judgmental

Context:
type: %s
event: %s
severity: %s
category: %s
`, s.Type, s.Trigger, s.Severity, s.Category)
}
