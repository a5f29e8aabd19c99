package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/RupaliShewale09/Smart-Finance-Management-System/internal/auth"
	"github.com/RupaliShewale09/Smart-Finance-Management-System/internal/identity"
	"github.com/RupaliShewale09/Smart-Finance-Management-System/internal/middleware"
)

// RegisterAuthRoutes wires the public registration and login endpoints.
func RegisterAuthRoutes(r fiber.Router, h *auth.Handler, accounts *identity.Handler, loginLimiter fiber.Handler) {
	group := r.Group("/auth")
	group.Post("/user/register", accounts.RegisterUser)
	group.Post("/user/login", loginLimiter, h.UserLogin)
	group.Post("/vendor/register", accounts.RegisterVendor)
	group.Post("/vendor/login", loginLimiter, h.VendorLogin)
	group.Post("/refresh", h.Refresh)
}

// RegisterProfileRoutes wires the authenticated profile endpoints.
func RegisterProfileRoutes(r fiber.Router, accounts *identity.Handler) {
	self := middleware.RequireSelf(auth.RoleUser, "id")
	r.Get("/auth/users/profile/:id", self, accounts.UserProfile)
	r.Put("/auth/users/profile/:id", self, accounts.UpdateProfile)
	r.Get("/auth/vendors/profile/:id", middleware.RequireSelf(auth.RoleVendor, "id"), accounts.VendorProfile)
}
