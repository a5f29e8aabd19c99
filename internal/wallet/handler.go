package wallet

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/RupaliShewale09/Smart-Finance-Management-System/internal/apperr"
	"github.com/RupaliShewale09/Smart-Finance-Management-System/internal/principal"
	"github.com/RupaliShewale09/Smart-Finance-Management-System/internal/validation"
)

// Handler exposes wallet HTTP endpoints.
type Handler struct {
	service   *Service
	validator *validation.Validator
}

// NewHandler builds a wallet HTTP handler.
func NewHandler(service *Service, validator *validation.Validator) *Handler {
	return &Handler{service: service, validator: validator}
}

type addMoneyForm struct {
	UserID string `form:"user_id" validate:"required"`
	Amount string `form:"amount" validate:"required,decimal"`
}

// AddMoney credits the caller's wallet.
func (h *Handler) AddMoney(c *fiber.Ctx) error {
	var form addMoneyForm
	if err := c.BodyParser(&form); err != nil {
		return apperr.Validation(err.Error())
	}
	if err := h.validator.Struct(form); err != nil {
		return err
	}
	if err := principal.Owns(c, principal.RoleUser, form.UserID); err != nil {
		return err
	}
	amount, err := validation.Amount("amount", form.Amount)
	if err != nil {
		return err
	}
	balance, err := h.service.AddMoney(c.UserContext(), form.UserID, amount)
	if err != nil {
		return err
	}
	return c.Status(http.StatusOK).JSON(fiber.Map{
		"message":     "Money added successfully",
		"wallet_id":   balance.WalletID,
		"new_balance": balance.Amount.InexactFloat64(),
	})
}
