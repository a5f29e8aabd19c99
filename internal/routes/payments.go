package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/RupaliShewale09/Smart-Finance-Management-System/internal/auth"
	"github.com/RupaliShewale09/Smart-Finance-Management-System/internal/middleware"
	"github.com/RupaliShewale09/Smart-Finance-Management-System/internal/payments"
)

// RegisterPaymentRoutes wires scan & pay and transaction history endpoints.
func RegisterPaymentRoutes(r fiber.Router, h *payments.Handler, idempotent fiber.Handler) {
	r.Post("/payments/scan-pay", idempotent, h.ScanPay)
	r.Get("/transactions/history/vendor/:vendor_id", middleware.RequireSelf(auth.RoleVendor, "vendor_id"), h.VendorHistory)
	r.Get("/transactions/history/:user_id", middleware.RequireSelf(auth.RoleUser, "user_id"), h.History)
}
