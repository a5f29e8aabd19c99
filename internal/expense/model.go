package expense

import (
	"time"

	"github.com/shopspring/decimal"
)

// Predicted categories, ordered by classifier code 0..2.
const (
	CategoryYellow = "yellow"
	CategoryOrange = "orange"
	CategoryRed    = "red"
)

// Urgency labels paired with the predicted categories.
const (
	UrgencyDiscretionary = "discretionary"
	UrgencyNecessary     = "necessary"
	UrgencyCritical      = "critical"
)

// Expense is the classified record of an outgoing payment to a merchant.
type Expense struct {
	ID                string
	UserID            string
	TransactionID     string
	MerchantName      string
	MerchantCategory  string
	Amount            decimal.Decimal
	IsRecurring       bool
	PredictedCategory string
	Urgency           string
	CreatedAt         time.Time
}

// MonthRange returns [first of month 00:00, first of next month 00:00) in UTC
// for the month containing now.
func MonthRange(now time.Time) (time.Time, time.Time) {
	now = now.UTC()
	start := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	return start, start.AddDate(0, 1, 0)
}
