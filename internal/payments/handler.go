package payments

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/RupaliShewale09/Smart-Finance-Management-System/internal/apperr"
	"github.com/RupaliShewale09/Smart-Finance-Management-System/internal/principal"
	"github.com/RupaliShewale09/Smart-Finance-Management-System/internal/validation"
)

// Handler exposes payment and history endpoints.
type Handler struct {
	service   *Service
	validator *validation.Validator
}

// NewHandler constructs a payment handler.
func NewHandler(service *Service, validator *validation.Validator) *Handler {
	return &Handler{service: service, validator: validator}
}

type scanPayForm struct {
	UserID           string `form:"user_id" validate:"required"`
	ReceiverWalletID string `form:"receiver_wallet_id" validate:"required"`
	Amount           string `form:"amount" validate:"required,decimal"`
}

// ScanPay processes a payment to a scanned wallet id.
func (h *Handler) ScanPay(c *fiber.Ctx) error {
	var form scanPayForm
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

	res, err := h.service.ScanPay(c.UserContext(), ScanPayInput{
		UserID:           form.UserID,
		ReceiverWalletID: form.ReceiverWalletID,
		Amount:           amount,
	})
	if err != nil {
		return err
	}

	var expenseID any
	if res.ExpenseID != "" {
		expenseID = res.ExpenseID
	}
	return c.Status(http.StatusOK).JSON(fiber.Map{
		"message":           "Scan & Pay successful",
		"transaction_id":    res.TransactionID,
		"expense_id":        expenseID,
		"remaining_balance": res.RemainingBalance.InexactFloat64(),
		"expense_category":  res.ExpenseCategory,
		"urgency":           res.Urgency,
	})
}

// History lists a user's transactions.
func (h *Handler) History(c *fiber.Ctx) error {
	items, err := h.service.History(c.UserContext(), c.Params("user_id"))
	if err != nil {
		return err
	}
	return c.JSON(items)
}

// VendorHistory lists a vendor's receipts.
func (h *Handler) VendorHistory(c *fiber.Ctx) error {
	items, err := h.service.VendorHistory(c.UserContext(), c.Params("vendor_id"))
	if err != nil {
		return err
	}
	return c.JSON(items)
}
