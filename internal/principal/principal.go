// Package principal carries the authenticated account through a request.
package principal

import (
	"github.com/gofiber/fiber/v2"

	"github.com/RupaliShewale09/Smart-Finance-Management-System/internal/apperr"
)

// Roles carried in token claims.
const (
	RoleUser   = "user"
	RoleVendor = "vendor"
)

const (
	localSubject = "auth_subject"
	localRole    = "auth_role"
)

// ErrNotOwner rejects access to another account's data.
var ErrNotOwner = apperr.Forbidden("Access denied")

// Set records the authenticated account on c.
func Set(c *fiber.Ctx, subject, role string) {
	c.Locals(localSubject, subject)
	c.Locals(localRole, role)
}

// Subject returns the authenticated account id, or "" when unauthenticated.
func Subject(c *fiber.Ctx) string {
	s, _ := c.Locals(localSubject).(string)
	return s
}

// Role returns the authenticated account role.
func Role(c *fiber.Ctx) string {
	r, _ := c.Locals(localRole).(string)
	return r
}

// Owns fails with ErrNotOwner unless the request is authenticated as the
// account id with role. An empty id never matches.
func Owns(c *fiber.Ctx, role, id string) error {
	subject := Subject(c)
	if id == "" || subject == "" || subject != id || Role(c) != role {
		return ErrNotOwner
	}
	return nil
}
