package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/RupaliShewale09/Smart-Finance-Management-System/internal/wallet"
)

// RegisterWalletRoutes wires wallet-related endpoints. The handler checks the
// form's user_id against the token.
func RegisterWalletRoutes(r fiber.Router, h *wallet.Handler, idempotent fiber.Handler) {
	r.Post("/wallet/add-money", idempotent, h.AddMoney)
}
