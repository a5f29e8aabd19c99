// Package validation wraps go-playground/validator with the form rules used
// by the API: field names come from `form` tags and messages are caller-safe.
package validation

import (
	"errors"
	"reflect"
	"strings"
	"time"
	"unicode"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	"github.com/RupaliShewale09/Smart-Finance-Management-System/internal/apperr"
)

// Validator validates decoded request forms.
type Validator struct {
	v *validator.Validate
}

// New builds a Validator with the custom rules registered.
func New() *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("form"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		if name == "" {
			name = strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		}
		return name
	})
	_ = v.RegisterValidation("letters_digits", lettersAndDigits)
	_ = v.RegisterValidation("decimal", decimalString)
	return &Validator{v: v}
}

// RegisterEnum adds a rule named tag accepting exactly values.
func (v *Validator) RegisterEnum(tag string, values []string) error {
	allowed := make(map[string]struct{}, len(values))
	for _, val := range values {
		allowed[val] = struct{}{}
	}
	return v.v.RegisterValidation(tag, func(fl validator.FieldLevel) bool {
		_, ok := allowed[fl.Field().String()]
		return ok
	})
}

// Struct validates s and returns an apperr validation error describing the
// first failing field.
func (v *Validator) Struct(s any) error {
	err := v.v.Struct(s)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return apperr.Validation(err.Error())
	}
	return apperr.Validation(message(fieldErrs[0]))
}

func lettersAndDigits(fl validator.FieldLevel) bool {
	var letter, digit bool
	for _, r := range fl.Field().String() {
		switch {
		case unicode.IsLetter(r):
			letter = true
		case unicode.IsDigit(r):
			digit = true
		}
	}
	return letter && digit
}

func decimalString(fl validator.FieldLevel) bool {
	s := strings.TrimSpace(fl.Field().String())
	if s == "" {
		return true
	}
	dot := false
	for i, r := range s {
		switch {
		case r == '.' && !dot:
			dot = true
		case r == '-' && i == 0:
		case unicode.IsDigit(r):
		default:
			return false
		}
	}
	return s != "-" && s != "."
}

func message(e validator.FieldError) string {
	field := e.Field()
	switch e.Tag() {
	case "required":
		return field + ": This field is required"
	case "email":
		return field + ": Invalid email format"
	case "min":
		if e.Kind() == reflect.String {
			return field + ": Must be at least " + e.Param() + " characters"
		}
		return field + ": Must be at least " + e.Param()
	case "max":
		if e.Kind() == reflect.String {
			return field + ": Must be at most " + e.Param() + " characters"
		}
		return field + ": Must be at most " + e.Param()
	case "len":
		return field + ": Must be exactly " + e.Param() + " characters"
	case "numeric":
		return field + ": Must be numeric"
	case "number":
		return field + ": Must contain digits only"
	case "oneof":
		return field + ": Must be one of: " + e.Param()
	case "eqfield":
		return "Passwords do not match"
	case "letters_digits":
		return "Password must contain letters and numbers"
	case "decimal":
		return field + ": Must be a number"
	case "datetime":
		return field + ": Must be a date in YYYY-MM-DD format"
	case "merchant_category":
		return field + ": Must be a supported merchant category"
	default:
		return field + ": Invalid value"
	}
}

// Amount parses a decimal form value, reporting failures against field.
func Amount(field, raw string) (decimal.Decimal, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return decimal.Zero, nil
	}
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, apperr.Validation(field + ": Must be a number")
	}
	return d, nil
}

// DateLayout is the accepted form format for calendar dates.
const DateLayout = "2006-01-02"

// Date parses a YYYY-MM-DD form value as midnight UTC.
func Date(field, raw string) (time.Time, error) {
	d, err := time.ParseInLocation(DateLayout, strings.TrimSpace(raw), time.UTC)
	if err != nil {
		return time.Time{}, apperr.Validation(field + ": Must be a date in YYYY-MM-DD format")
	}
	return d, nil
}

// DateRange parses an inclusive start/end date pair into a half-open
// [start 00:00, day after end 00:00) interval.
func DateRange(startRaw, endRaw string) (time.Time, time.Time, error) {
	from, err := Date("start_date", startRaw)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	end, err := Date("end_date", endRaw)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	if from.After(end) {
		return time.Time{}, time.Time{}, apperr.Validation("Invalid date range")
	}
	return from, end.AddDate(0, 0, 1), nil
}
