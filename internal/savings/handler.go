package savings

import (
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/RupaliShewale09/Smart-Finance-Management-System/internal/apperr"
	"github.com/RupaliShewale09/Smart-Finance-Management-System/internal/principal"
	"github.com/RupaliShewale09/Smart-Finance-Management-System/internal/validation"
)

// Handler exposes savings and investment endpoints.
type Handler struct {
	service   *Service
	validator *validation.Validator
	now       func() time.Time
}

// NewHandler builds a savings handler.
func NewHandler(service *Service, validator *validation.Validator) *Handler {
	return &Handler{service: service, validator: validator, now: time.Now}
}

type estimateForm struct {
	UserID    string `form:"user_id" validate:"required"`
	StartDate string `form:"start_date" validate:"required"`
	EndDate   string `form:"end_date" validate:"required"`
}

// Estimate reports the savings potential of the submitted period.
func (h *Handler) Estimate(c *fiber.Ctx) error {
	var form estimateForm
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
	est, err := h.service.Estimate(c.UserContext(), form.UserID, from, to)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"income":                      est.Income.InexactFloat64(),
		"estimated_savings_potential": est.Potential.InexactFloat64(),
		"savings_percentage":          est.Percentage.InexactFloat64(),
		"reducible_breakdown": fiber.Map{
			"necessary":     est.Reducible.Necessary.InexactFloat64(),
			"discretionary": est.Reducible.Discretionary.InexactFloat64(),
		},
		"message": est.Message,
	})
}

type investmentForm struct {
	UserID    string `form:"user_id" validate:"required"`
	StartDate string `form:"start_date"`
	EndDate   string `form:"end_date"`
}

// Investments recommends an investment bucket. The period defaults to the
// first of the current month through today.
func (h *Handler) Investments(c *fiber.Ctx) error {
	var form investmentForm
	if err := c.BodyParser(&form); err != nil {
		return apperr.Validation(err.Error())
	}
	if err := h.validator.Struct(form); err != nil {
		return err
	}
	if err := principal.Owns(c, principal.RoleUser, form.UserID); err != nil {
		return err
	}
	today := h.now().UTC().Format(validation.DateLayout)
	start, end := strings.TrimSpace(form.StartDate), strings.TrimSpace(form.EndDate)
	if start == "" {
		start = today[:len("2006-01")] + "-01"
	}
	if end == "" {
		end = today
	}
	from, to, err := validation.DateRange(start, end)
	if err != nil {
		return err
	}

	est, err := h.service.Estimate(c.UserContext(), form.UserID, from, to)
	if err != nil {
		return err
	}
	suggestion, err := h.service.SuggestInvestment(c.UserContext(), form.UserID, est)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"risk_profile":         suggestion.RiskProfile,
		"investment_readiness": suggestion.Readiness,
		"recommended_options":  suggestion.Options,
		"reason":               suggestion.Reason,
	})
}
