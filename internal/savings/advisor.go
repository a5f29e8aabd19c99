// Package savings estimates how much of a user's spend is reducible and
// turns that into an investment recommendation.
package savings

import (
	"github.com/shopspring/decimal"

	"github.com/RupaliShewale09/Smart-Finance-Management-System/internal/expense"
	"github.com/RupaliShewale09/Smart-Finance-Management-System/internal/identity"
)

const (
	MessageGoodPotential    = "Savings potential is good if discretionary expenses are optimized."
	MessageLimitedPotential = "Limited savings potential for the selected period."
)

var (
	necessaryReducible     = decimal.RequireFromString("0.30")
	discretionaryReducible = decimal.RequireFromString("0.60")
	stableRatio            = decimal.RequireFromString("0.20")
	cautiousRatio          = decimal.RequireFromString("0.10")
	controlledDiscretion   = decimal.RequireFromString("0.10")
	hundred                = decimal.NewFromInt(100)
)

// Totals is spend per urgency bucket.
type Totals struct {
	Critical      decimal.Decimal
	Necessary     decimal.Decimal
	Discretionary decimal.Decimal
}

// Breakdown is the reducible part of each non-critical bucket.
type Breakdown struct {
	Necessary     decimal.Decimal
	Discretionary decimal.Decimal
}

// Estimate is the savings potential for a period.
type Estimate struct {
	Income     decimal.Decimal
	Potential  decimal.Decimal
	Percentage decimal.Decimal
	Reducible  Breakdown
	Totals     Totals
	Message    string
}

// Suggestion is a risk-appropriate investment recommendation.
type Suggestion struct {
	RiskProfile string
	Readiness   string
	Options     []string
	Reason      string
}

// Sum buckets expenses by urgency. Unknown urgencies are ignored.
func Sum(expenses []expense.Expense) Totals {
	var t Totals
	for _, e := range expenses {
		switch e.Urgency {
		case expense.UrgencyCritical:
			t.Critical = t.Critical.Add(e.Amount)
		case expense.UrgencyNecessary:
			t.Necessary = t.Necessary.Add(e.Amount)
		case expense.UrgencyDiscretionary:
			t.Discretionary = t.Discretionary.Add(e.Amount)
		}
	}
	return t
}

// EstimateFrom computes the savings estimate. Critical spend is not reducible.
func EstimateFrom(income decimal.Decimal, totals Totals) Estimate {
	reducible := Breakdown{
		Necessary:     totals.Necessary.Mul(necessaryReducible).Round(2),
		Discretionary: totals.Discretionary.Mul(discretionaryReducible).Round(2),
	}
	potential := totals.Necessary.Mul(necessaryReducible).Add(totals.Discretionary.Mul(discretionaryReducible)).Round(2)
	percentage := decimal.Zero
	if income.IsPositive() {
		percentage = potential.Div(income).Mul(hundred).Round(2)
	}
	message := MessageLimitedPotential
	if potential.IsPositive() {
		message = MessageGoodPotential
	}
	return Estimate{
		Income:     income.Round(2),
		Potential:  potential,
		Percentage: percentage,
		Reducible:  reducible,
		Totals:     totals,
		Message:    message,
	}
}

var riskProfiles = map[string][2]string{
	// tolerance: {good or average behavior, poor behavior}
	identity.RiskLow:    {"conservative", "very conservative"},
	identity.RiskMedium: {"moderate", "cautious"},
	identity.RiskHigh:   {"aggressive", "moderate"},
}

var options = map[string][]string{
	"very conservative": {"Savings Account", "Government Bonds", "Fixed Deposits"},
	"conservative":      {"Government Bonds", "Fixed Deposits", "Low-risk Mutual Funds"},
	"cautious":          {"Balanced Mutual Funds", "Index Funds"},
	"moderate":          {"Index Funds", "Balanced Mutual Funds"},
	"aggressive":        {"Stocks", "ETFs", "High-risk Mutual Funds"},
}

var defaultOptions = []string{"Balanced Mutual Funds"}

// Suggest derives the risk profile and recommendation from the user's stated
// tolerance and the behavior implied by est.
func Suggest(riskTolerance string, est Estimate) Suggestion {
	ratio := decimal.Zero
	discretionRatio := decimal.Zero
	if est.Income.IsPositive() {
		ratio = est.Potential.Div(est.Income)
		discretionRatio = est.Reducible.Discretionary.Div(est.Income)
	}

	var readiness, behavior string
	switch {
	case ratio.GreaterThanOrEqual(stableRatio):
		readiness, behavior = "stable", "good"
	case ratio.GreaterThanOrEqual(cautiousRatio):
		readiness, behavior = "cautious", "average"
	default:
		readiness, behavior = "needs_improvement", "poor"
	}

	profile := "moderate"
	if pair, ok := riskProfiles[riskTolerance]; ok {
		profile = pair[0]
		if behavior == "poor" {
			profile = pair[1]
		}
	}

	recommended, ok := options[profile]
	if !ok {
		recommended = defaultOptions
	}

	consistency := "Based on limited savings capacity"
	if behavior != "poor" {
		consistency = "Based on consistent savings"
	}
	discretion := "but discretionary spending is high"
	if discretionRatio.LessThan(controlledDiscretion) {
		discretion = "and controlled discretionary spending"
	}

	return Suggestion{
		RiskProfile: profile,
		Readiness:   readiness,
		Options:     append([]string(nil), recommended...),
		Reason:      consistency + ", " + discretion,
	}
}
