package middleware

import (
	"context"
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/safeledger/dashboard/internal/core/domain"
)

// SessionFinder loads a session record by id.
type SessionFinder interface {
	Session(ctx context.Context, id string) (*domain.Session, error)
}

// Session loads the record behind "session_id" and stores it under "session",
// with its role under "role". Sessions that are gone or did not resolve get 401.
// Routes do not re-resolve against the backend; the cached user is used.
func Session(finder SessionFinder) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			sid, _ := c.Get("session_id").(string)
			if sid == "" {
				return c.JSON(http.StatusUnauthorized, Unauthenticated{})
			}
			sess, err := finder.Session(c.Request().Context(), sid)
			if errors.Is(err, domain.ErrUnauthenticated) {
				return c.JSON(http.StatusUnauthorized, Unauthenticated{})
			}
			if err != nil {
				return err
			}
			if !sess.Authenticated() {
				return c.JSON(http.StatusUnauthorized, Unauthenticated{})
			}
			c.Set("session", sess)
			c.Set("role", sess.Role())
			return next(c)
		}
	}
}
