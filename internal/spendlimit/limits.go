// Package spendlimit derives per-category monthly spend limits from a user's
// history and checks live spend against them.
package spendlimit

import (
	"sort"
	"strings"
	"unicode"

	"github.com/shopspring/decimal"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// TotalCategory is the synthetic row limiting the whole month's spend.
const TotalCategory = "Total Monthly Spend"

// Alert levels.
const (
	LevelInfo    = "info"
	LevelWarning = "warning"
	LevelDanger  = "danger"
)

// NotConfiguredMessage is returned when a user has no stored limits.
const NotConfiguredMessage = "Spend limits not configured. Please generate spend limits first."

var (
	bufferFactor       = decimal.RequireFromString("1.5")
	spendableShare     = decimal.RequireFromString("0.6")
	categoryAlertShare = decimal.RequireFromString("0.85")
	totalBuffer        = decimal.RequireFromString("1.2")
	totalAlertShare    = decimal.RequireFromString("0.9")
)

// Entry is one historical expense.
type Entry struct {
	Category string
	Amount   decimal.Decimal
}

// Limit is the spend cap and warning threshold for one category.
type Limit struct {
	Category       string
	Limit          decimal.Decimal
	AlertThreshold decimal.Decimal
}

// Alert reports a category whose spend reached its threshold or limit.
type Alert struct {
	Category string
	Level    string
	Message  string
	Spent    decimal.Decimal
	Limit    decimal.Decimal
}

// NormalizeCategory trims and title-cases a category label. Every run of
// letters is cased on its own, so "personal_care" becomes "Personal_Care".
// Limits are stored and looked up under this form only.
func NormalizeCategory(category string) string {
	category = strings.TrimSpace(category)
	caser := cases.Title(language.Und)
	var b strings.Builder
	b.Grow(len(category))
	start := -1
	for i, r := range category {
		if unicode.IsLetter(r) {
			if start < 0 {
				start = i
			}
			continue
		}
		if start >= 0 {
			b.WriteString(caser.String(category[start:i]))
			start = -1
		}
		b.WriteRune(r)
	}
	if start >= 0 {
		b.WriteString(caser.String(category[start:]))
	}
	return b.String()
}

// Generate computes limits from history. It returns nil when history is empty
// or income is not positive. Categories are sorted with the total row last.
func Generate(history []Entry, income, savingsGoal decimal.Decimal) []Limit {
	if len(history) == 0 || !income.IsPositive() {
		return nil
	}
	spendable := decimal.Max(income.Sub(savingsGoal), decimal.Zero)
	ceiling := spendable.Mul(spendableShare)

	type stats struct {
		sum, max decimal.Decimal
		n        int64
	}
	grouped := make(map[string]*stats)
	total := decimal.Zero
	for _, e := range history {
		cat := NormalizeCategory(e.Category)
		s, ok := grouped[cat]
		if !ok {
			s = &stats{max: e.Amount}
			grouped[cat] = s
		}
		s.sum = s.sum.Add(e.Amount)
		s.max = decimal.Max(s.max, e.Amount)
		s.n++
		total = total.Add(e.Amount)
	}

	categories := make([]string, 0, len(grouped))
	for cat := range grouped {
		categories = append(categories, cat)
	}
	sort.Strings(categories)

	limits := make([]Limit, 0, len(categories)+1)
	for _, cat := range categories {
		s := grouped[cat]
		mean := s.sum.Div(decimal.NewFromInt(s.n))
		suggested := decimal.Max(mean.Mul(bufferFactor), s.max)
		final := decimal.Min(suggested, ceiling).Round(2)
		limits = append(limits, Limit{
			Category:       cat,
			Limit:          final,
			AlertThreshold: final.Mul(categoryAlertShare).Round(2),
		})
	}

	totalLimit := decimal.Min(spendable, total.Mul(totalBuffer)).Round(2)
	limits = append(limits, Limit{
		Category:       TotalCategory,
		Limit:          totalLimit,
		AlertThreshold: totalLimit.Mul(totalAlertShare).Round(2),
	})
	return limits
}

// Check compares current spend per category with limits. Keys of current are
// normalized before lookup; categories outside limits and zero spend never alert.
func Check(limits []Limit, current map[string]decimal.Decimal) []Alert {
	if len(limits) == 0 {
		return []Alert{{Level: LevelInfo, Message: NotConfiguredMessage}}
	}
	normalized := make(map[string]decimal.Decimal, len(current))
	for cat, amount := range current {
		key := NormalizeCategory(cat)
		normalized[key] = normalized[key].Add(amount)
	}

	alerts := make([]Alert, 0)
	for _, l := range limits {
		spent := normalized[NormalizeCategory(l.Category)]
		// Deliberate: no spend means nothing to warn about, even for a zero limit.
		if !spent.IsPositive() {
			continue
		}
		switch {
		case spent.GreaterThanOrEqual(l.Limit):
			alerts = append(alerts, Alert{
				Category: l.Category, Level: LevelDanger, Spent: spent, Limit: l.Limit,
				Message: "Exceeded limit in " + l.Category + ": " + spent.StringFixed(2) + "/" + l.Limit.StringFixed(2),
			})
		case spent.GreaterThanOrEqual(l.AlertThreshold):
			alerts = append(alerts, Alert{
				Category: l.Category, Level: LevelWarning, Spent: spent, Limit: l.Limit,
				Message: "Approaching limit in " + l.Category + ": " + spent.StringFixed(2) + "/" + l.Limit.StringFixed(2),
			})
		}
	}
	return alerts
}
