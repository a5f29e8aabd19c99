package auth

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/RupaliShewale09/Smart-Finance-Management-System/internal/apperr"
	"github.com/RupaliShewale09/Smart-Finance-Management-System/internal/validation"
)

// Handler exposes login and token refresh endpoints.
type Handler struct {
	svc       *Service
	validator *validation.Validator
}

// NewHandler builds an auth handler.
func NewHandler(svc *Service, validator *validation.Validator) *Handler {
	return &Handler{svc: svc, validator: validator}
}

type loginForm struct {
	Identifier string `form:"identifier" validate:"required"`
	Password   string `form:"password" validate:"required"`
}

func (h *Handler) parseLogin(c *fiber.Ctx) (loginForm, error) {
	var form loginForm
	if err := c.BodyParser(&form); err != nil {
		return form, apperr.Validation(err.Error())
	}
	return form, h.validator.Struct(form)
}

// UserLogin authenticates a user.
func (h *Handler) UserLogin(c *fiber.Ctx) error {
	form, err := h.parseLogin(c)
	if err != nil {
		return err
	}
	sess, err := h.svc.LoginUser(c.UserContext(), form.Identifier, form.Password)
	if err != nil {
		return err
	}
	return c.Status(http.StatusOK).JSON(fiber.Map{
		"message":       "Login successful",
		"user_id":       sess.AccountID,
		"wallet_id":     sess.WalletID,
		"access_token":  sess.Tokens.AccessToken,
		"refresh_token": sess.Tokens.RefreshToken,
		"token_type":    sess.Tokens.TokenType,
		"expires_in":    sess.Tokens.ExpiresIn,
	})
}

// VendorLogin authenticates a vendor.
func (h *Handler) VendorLogin(c *fiber.Ctx) error {
	form, err := h.parseLogin(c)
	if err != nil {
		return err
	}
	sess, err := h.svc.LoginVendor(c.UserContext(), form.Identifier, form.Password)
	if err != nil {
		return err
	}
	return c.Status(http.StatusOK).JSON(fiber.Map{
		"message":       "Login successful",
		"vendor_id":     sess.AccountID,
		"wallet_id":     sess.WalletID,
		"access_token":  sess.Tokens.AccessToken,
		"refresh_token": sess.Tokens.RefreshToken,
		"token_type":    sess.Tokens.TokenType,
		"expires_in":    sess.Tokens.ExpiresIn,
	})
}

type refreshForm struct {
	RefreshToken string `form:"refresh_token" validate:"required"`
}

// Refresh issues a new access token using a valid refresh token.
func (h *Handler) Refresh(c *fiber.Ctx) error {
	var form refreshForm
	if err := c.BodyParser(&form); err != nil {
		return apperr.Validation(err.Error())
	}
	if err := h.validator.Struct(form); err != nil {
		return err
	}
	token, exp, err := h.svc.Refresh(form.RefreshToken)
	if err != nil {
		return err
	}
	return c.Status(http.StatusOK).JSON(fiber.Map{"access_token": token, "token_type": "Bearer", "expires_in": exp})
}
