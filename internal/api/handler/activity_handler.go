package handler

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/safeledger/dashboard/internal/core/ports"
)

// ActivityHandler serves the company scope, transient banners and the audit trail.
type ActivityHandler struct {
	scope    ports.ScopeService
	activity ports.ActivityService
}

func NewActivityHandler(scope ports.ScopeService, activity ports.ActivityService) *ActivityHandler {
	return &ActivityHandler{scope: scope, activity: activity}
}

// GetScope returns the selected company of the session.
//
// @Summary      Selected company
// @Tags         scope
// @Produce      json
// @Security     SessionCookie
// @Success      200  {object}  scopeResponse
// @Failure      401  {object}  map[string]bool
// @Router       /api/scope [get]
func (h *ActivityHandler) GetScope(c echo.Context) error {
	sess, err := ctxSession(c)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, scopeResponse{CompanyID: h.scope.Selected(c.Request().Context(), sess.ID)})
}

// PutScope changes the selected company. Customers cannot change it.
//
// @Summary      Select a company
// @Tags         scope
// @Accept       json
// @Produce      json
// @Security     SessionCookie
// @Param        body  body      scopeRequest   true  "Company to select; empty clears (superusers only)"
// @Success      200   {object}  scopeResponse
// @Failure      400   {object}  errorResponse
// @Failure      401   {object}  map[string]bool
// @Failure      403   {object}  errorResponse
// @Router       /api/scope [put]
func (h *ActivityHandler) PutScope(c echo.Context) error {
	sess, err := ctxSession(c)
	if err != nil {
		return err
	}
	var req scopeRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	selected, err := h.scope.Select(c.Request().Context(), sess, string(req.CompanyID))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, scopeResponse{CompanyID: selected})
}

// Banners returns the banners that have not expired yet.
//
// @Summary      Active banners
// @Tags         activity
// @Produce      json
// @Security     SessionCookie
// @Success      200  {object}  bannersResponse
// @Failure      401  {object}  map[string]bool
// @Router       /api/banners [get]
func (h *ActivityHandler) Banners(c echo.Context) error {
	sess, err := ctxSession(c)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, bannersResponse{Banners: h.activity.Banners(c.Request().Context(), sess.ID)})
}

// Audit lists the most recent mutation audit entries.
//
// @Summary      Recent audit entries
// @Tags         activity
// @Produce      json
// @Security     SessionCookie
// @Param        limit  query     int  false  "Maximum entries (default 50, max 500)"
// @Success      200    {object}  auditResponse
// @Failure      401    {object}  map[string]bool
// @Failure      403    {object}  errorResponse
// @Router       /api/audit [get]
func (h *ActivityHandler) Audit(c echo.Context) error {
	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	entries, err := h.activity.Recent(c.Request().Context(), limit)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, auditResponse{Entries: entries})
}
