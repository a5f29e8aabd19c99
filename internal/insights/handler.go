package insights

import (
	"github.com/gofiber/fiber/v2"

	"github.com/RupaliShewale09/Smart-Finance-Management-System/internal/apperr"
	"github.com/RupaliShewale09/Smart-Finance-Management-System/internal/principal"
	"github.com/RupaliShewale09/Smart-Finance-Management-System/internal/validation"
)

// Handler exposes the spending insights endpoint.
type Handler struct {
	service   *Service
	validator *validation.Validator
}

// NewHandler builds an insights handler.
func NewHandler(service *Service, validator *validation.Validator) *Handler {
	return &Handler{service: service, validator: validator}
}

type spendingForm struct {
	UserID    string `form:"user_id" validate:"required"`
	StartDate string `form:"start_date" validate:"required"`
	EndDate   string `form:"end_date" validate:"required"`
}

// SpendingForm returns the spending summary for the submitted period.
func (h *Handler) SpendingForm(c *fiber.Ctx) error {
	var form spendingForm
	if err := c.BodyParser(&form); err != nil {
		return apperr.Validation(err.Error())
	}
	if err := h.validator.Struct(form); err != nil {
		return err
	}
	if err := principal.Owns(c, principal.RoleUser, form.UserID); err != nil {
		return err
	}
	from, to, err := validation.DateRange(form.StartDate, form.EndDate)
	if err != nil {
		return err
	}
	sum, err := h.service.Summarize(c.UserContext(), form.UserID, from, to)
	if err != nil {
		return err
	}

	byCategory := make(map[string]float64, len(sum.ByCategory))
	for cat, amount := range sum.ByCategory {
		byCategory[cat] = amount.InexactFloat64()
	}
	percentages := make(map[string]float64, len(sum.Percentages))
	for cat, pct := range sum.Percentages {
		percentages[cat] = pct.InexactFloat64()
	}
	daily := make([]fiber.Map, len(sum.Daily))
	for i, d := range sum.Daily {
		daily[i] = fiber.Map{"date": d.Date, "amount": d.Amount.InexactFloat64()}
	}

	return c.JSON(fiber.Map{
		"total_spent":                  sum.TotalSpent.InexactFloat64(),
		"category_wise_spending":       byCategory,
		"category_percentages":         percentages,
		"high_urgency_expenses":        sum.HighUrgencyCount,
		"distinct_recurring_merchants": sum.RecurringMerchants,
		"savings_warning":              sum.Warning,
		"daily_spending":               daily,
	})
}
