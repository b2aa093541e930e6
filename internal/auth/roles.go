package auth

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/streetlight-service/internal/domain"
	apperrors "github.com/spec-kit/streetlight-service/pkg/util"
)

// RequireRole ensures the principal holds one of the allowed roles.
// The registry re-checks roles itself; this only short-circuits routing.
func RequireRole(allowed ...domain.Role) fiber.Handler {
	allowedSet := make(map[domain.Role]struct{}, len(allowed))
	for _, role := range allowed {
		allowedSet[role] = struct{}{}
	}

	return func(c *fiber.Ctx) error {
		user := CurrentUser(c)
		if user == nil {
			return apperrors.NewUnauthenticated("user not authenticated")
		}
		if len(allowedSet) == 0 {
			return c.Next()
		}
		if _, exists := allowedSet[user.Role]; !exists {
			return apperrors.NewForbidden("insufficient role")
		}
		return c.Next()
	}
}

// RequireAuthenticated ensures some user is signed in.
func RequireAuthenticated() fiber.Handler {
	return RequireRole()
}
