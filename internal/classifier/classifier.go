// Package classifier labels expenses with an urgency using a pre-trained
// predictor. Classification never fails: predictor errors degrade to a fixed
// default code.
package classifier

import (
	"log/slog"
	"time"

	"github.com/shopspring/decimal"

	"github.com/RupaliShewale09/Smart-Finance-Management-System/internal/expense"
)

// DefaultCode is used when the predictor fails or returns an unknown class.
const DefaultCode = 1

// RecurrenceWindow is the lookback used to decide whether a payment recurs.
const RecurrenceWindow = 30 * 24 * time.Hour

// Predictor maps an engineered feature vector to an ordinal class code.
type Predictor interface {
	Predict(features []float64) (int, error)
}

// Input describes one payment to classify.
type Input struct {
	MerchantName     string
	MerchantCategory string
	Amount           decimal.Decimal
	IsRecurring      bool
	BalanceBefore    decimal.Decimal
	At               time.Time
}

// Result is the predicted category and urgency of an expense.
type Result struct {
	Code     int
	Category string
	Urgency  string
}

var labels = map[int]Result{
	2: {Code: 2, Category: expense.CategoryRed, Urgency: expense.UrgencyCritical},
	1: {Code: 1, Category: expense.CategoryOrange, Urgency: expense.UrgencyNecessary},
	0: {Code: 0, Category: expense.CategoryYellow, Urgency: expense.UrgencyDiscretionary},
}

// Label returns the fixed category/urgency pair for code, and false when the
// code is outside {0, 1, 2}.
func Label(code int) (Result, bool) {
	r, ok := labels[code]
	return r, ok
}

// IsRecurring reports whether priorPayments within RecurrenceWindow make the
// next payment recurring.
func IsRecurring(priorPayments int) bool {
	return priorPayments >= 2
}

// Adapter encodes payments into features and maps predictor output to labels.
type Adapter struct {
	predictor  Predictor
	merchants  LabelEncoder
	categories LabelEncoder
	logger     *slog.Logger
}

// NewAdapter wraps a predictor and its encoders.
func NewAdapter(p Predictor, merchants, categories LabelEncoder, logger *slog.Logger) *Adapter {
	return &Adapter{predictor: p, merchants: merchants, categories: categories, logger: logger}
}

// NewModelAdapter wraps a decoded model.
func NewModelAdapter(m *Model, logger *slog.Logger) *Adapter {
	return NewAdapter(m, m.Merchants, m.Categories, logger)
}

// Features builds the predictor input for in. Hour and weekday come from the
// UTC timestamp, with Monday as 0.
func (a *Adapter) Features(in Input) []float64 {
	at := in.At.UTC()
	recurring := 0.0
	if in.IsRecurring {
		recurring = 1
	}
	features := make([]float64, featureCount)
	features[FeatureMerchantName] = float64(a.merchants.Encode(in.MerchantName))
	features[FeatureMerchantCategory] = float64(a.categories.Encode(in.MerchantCategory))
	features[FeatureAmount] = in.Amount.InexactFloat64()
	features[FeatureIsRecurring] = recurring
	features[FeatureBalanceBefore] = in.BalanceBefore.InexactFloat64()
	features[FeatureHour] = float64(at.Hour())
	features[FeatureDayOfWeek] = float64((int(at.Weekday()) + 6) % 7)
	return features
}

// Classify returns the predicted category and urgency for in.
func (a *Adapter) Classify(in Input) Result {
	code, err := a.predictor.Predict(a.Features(in))
	if err != nil {
		a.logger.Warn("classifier prediction failed, using default",
			slog.String("merchant", in.MerchantName), slog.Any("error", err))
		code = DefaultCode
	}
	result, ok := Label(code)
	if !ok {
		a.logger.Warn("classifier returned unknown code, using default", slog.Int("code", code))
		result, _ = Label(DefaultCode)
	}
	return result
}
