package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/safeledger/dashboard/internal/api/middleware"
	"github.com/safeledger/dashboard/internal/core/domain"
	"github.com/safeledger/dashboard/internal/core/ports"
)

// SessionHandler serves login, logout and the app bootstrap.
type SessionHandler struct {
	sessions     ports.SessionService
	scope        ports.ScopeService
	tokens       *middleware.SessionTokens
	secureCookie bool
	log          zerolog.Logger
}

func NewSessionHandler(sessions ports.SessionService, scope ports.ScopeService, tokens *middleware.SessionTokens, secureCookie bool, log zerolog.Logger) *SessionHandler {
	return &SessionHandler{
		sessions:     sessions,
		scope:        scope,
		tokens:       tokens,
		secureCookie: secureCookie,
		log:          log,
	}
}

// Login signs in against the ledger backend and sets the session cookie.
//
// @Summary      Login
// @Tags         session
// @Accept       json
// @Produce      json
// @Param        body  body      loginRequest     true  "Login credentials"
// @Success      200   {object}  sessionResponse
// @Failure      400   {object}  errorResponse
// @Failure      401   {object}  errorResponse
// @Failure      502   {object}  errorResponse
// @Router       /api/session/login [post]
func (h *SessionHandler) Login(c echo.Context) error {
	var req loginRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	sess, res, err := h.sessions.Login(c.Request().Context(), req.Email, req.Password)
	if err != nil {
		return err
	}
	if res.State != domain.SessionAuthenticated {
		return c.JSON(http.StatusUnauthorized, middleware.Unauthenticated{})
	}

	token, err := h.tokens.Issue(sess.ID)
	if err != nil {
		return err
	}
	c.SetCookie(h.tokens.Cookie(token, h.secureCookie))
	return c.JSON(http.StatusOK, toSessionResponse(res))
}

// Bootstrap resolves the caller's session against the backend. Callers without a
// valid session get {"authenticated": false} rather than an error.
//
// @Summary      Resolve the current session
// @Tags         session
// @Produce      json
// @Success      200  {object}  sessionResponse
// @Failure      500  {object}  errorResponse
// @Router       /api/session [get]
func (h *SessionHandler) Bootstrap(c echo.Context) error {
	ctx := c.Request().Context()

	sid, err := h.tokens.FromRequest(c.Request())
	if err != nil {
		return c.JSON(http.StatusOK, sessionResponse{})
	}
	sess, err := h.sessions.Session(ctx, sid)
	if errors.Is(err, domain.ErrUnauthenticated) {
		c.SetCookie(h.tokens.Cookie("", h.secureCookie))
		return c.JSON(http.StatusOK, sessionResponse{})
	}
	if err != nil {
		return err
	}

	res, err := h.sessions.Resolve(ctx, sess)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toSessionResponse(res))
}

// Logout ends the session. It always clears the cookie, even when the backend
// logout fails.
//
// @Summary      Logout
// @Tags         session
// @Success      204
// @Router       /api/session/logout [post]
func (h *SessionHandler) Logout(c echo.Context) error {
	ctx := c.Request().Context()
	c.SetCookie(h.tokens.Cookie("", h.secureCookie))

	sid, err := h.tokens.FromRequest(c.Request())
	if err != nil {
		return c.NoContent(http.StatusNoContent)
	}
	sess, err := h.sessions.Session(ctx, sid)
	if err != nil {
		return c.NoContent(http.StatusNoContent)
	}
	if err := h.sessions.Logout(ctx, sess); err != nil {
		h.log.Warn().Err(err).Str("session_id", sid).Msg("logout cleanup failed")
	}
	return c.NoContent(http.StatusNoContent)
}

// Navigation returns the side menu and company selector of the current user.
//
// @Summary      Role-gated navigation
// @Tags         session
// @Produce      json
// @Security     SessionCookie
// @Success      200  {object}  navigationResponse
// @Failure      401  {object}  map[string]bool
// @Router       /api/navigation [get]
func (h *SessionHandler) Navigation(c echo.Context) error {
	sess, err := ctxSession(c)
	if err != nil {
		return err
	}
	selected := h.scope.Selected(c.Request().Context(), sess.ID)
	return c.JSON(http.StatusOK, toNavigationResponse(sess.User, selected))
}
