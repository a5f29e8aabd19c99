package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/RupaliShewale09/Smart-Finance-Management-System/internal/apperr"
	"github.com/RupaliShewale09/Smart-Finance-Management-System/internal/auth"
	"github.com/RupaliShewale09/Smart-Finance-Management-System/internal/principal"
)

var errMissingBearer = apperr.Auth("Missing bearer token")

// AccessVerifier verifies access tokens.
type AccessVerifier interface {
	ParseAccess(token string) (*auth.Claims, error)
}

// JWTAuth validates the bearer access token and records its subject and role
// on the request.
func JWTAuth(tokens AccessVerifier) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authz := c.Get(fiber.HeaderAuthorization)
		if len(authz) < len("Bearer ") || !strings.EqualFold(authz[:len("Bearer ")], "bearer ") {
			return errMissingBearer
		}
		claims, err := tokens.ParseAccess(strings.TrimSpace(authz[len("Bearer "):]))
		if err != nil {
			return err
		}
		principal.Set(c, claims.Subject, claims.Role)
		return c.Next()
	}
}

// RequireSelf rejects requests whose path parameter param does not name the
// authenticated account. A missing parameter is rejected too. Ids sent in a
// request body are checked by the handler after parsing.
func RequireSelf(role, param string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if err := principal.Owns(c, role, c.Params(param)); err != nil {
			return err
		}
		return c.Next()
	}
}
