package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/safeledger/dashboard/internal/core/domain"
)

// RequireRole lets a request through only when the session role is one of roles.
// It must run after Session. Rejections go to the central error handler.
func RequireRole(roles ...string) echo.MiddlewareFunc {
	allowed := make(map[string]struct{}, len(roles))
	for _, r := range roles {
		allowed[r] = struct{}{}
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			role, _ := c.Get("role").(string)
			if role == "" {
				return c.JSON(http.StatusUnauthorized, Unauthenticated{})
			}
			if _, ok := allowed[role]; !ok {
				return domain.ErrForbidden
			}
			return next(c)
		}
	}
}
