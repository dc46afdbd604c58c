package handler

import (
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/safeledger/dashboard/internal/core/aggregate"
	"github.com/safeledger/dashboard/internal/core/ports"
)

// ViewHandler serves the chart and dashboard views.
type ViewHandler struct {
	views ports.DashboardService
	scope ports.ScopeService
	log   zerolog.Logger
}

func NewViewHandler(views ports.DashboardService, scope ports.ScopeService, log zerolog.Logger) *ViewHandler {
	return &ViewHandler{views: views, scope: scope, log: log}
}

// Bar handles GET /api/charts/bar.
//
// @Summary      Monthly sums of the filtered postings
// @Tags         charts
// @Produce      json
// @Security     SessionCookie
// @Param        account     query     string  false  "Account handle number"
// @Param        from        query     string  false  "First date"
// @Param        to          query     string  false  "Last date"
// @Param        suspicious  query     string  false  "all, only or exclude"
// @Success      200         {object}  viewResponse
// @Failure      400         {object}  errorResponse
// @Failure      401         {object}  map[string]bool
// @Router       /api/charts/bar [get]
func (h *ViewHandler) Bar(c echo.Context) error {
	sess, err := ctxSession(c)
	if err != nil {
		return err
	}
	f, err := queryFilter(c)
	if err != nil {
		return err
	}
	ctx := c.Request().Context()
	view, err := h.views.Bar(ctx, sess, h.scope.Selected(ctx, sess.ID), f)
	return renderView(c, h.log, view, err, func(v []aggregate.MonthlySum) any { return toMonthlyResponses(v) })
}

// Line handles GET /api/charts/line.
//
// @Summary      Monthly sums of all postings
// @Tags         charts
// @Produce      json
// @Security     SessionCookie
// @Success      200  {object}  viewResponse
// @Failure      401  {object}  map[string]bool
// @Router       /api/charts/line [get]
func (h *ViewHandler) Line(c echo.Context) error {
	sess, err := ctxSession(c)
	if err != nil {
		return err
	}
	ctx := c.Request().Context()
	view, err := h.views.Line(ctx, sess, h.scope.Selected(ctx, sess.ID))
	return renderView(c, h.log, view, err, func(v []aggregate.MonthlySum) any { return toMonthlyResponses(v) })
}

// Pie handles GET /api/charts/pie.
//
// @Summary      Top accounts by amount
// @Tags         charts
// @Produce      json
// @Security     SessionCookie
// @Success      200  {object}  viewResponse
// @Failure      401  {object}  map[string]bool
// @Router       /api/charts/pie [get]
func (h *ViewHandler) Pie(c echo.Context) error {
	sess, err := ctxSession(c)
	if err != nil {
		return err
	}
	ctx := c.Request().Context()
	view, err := h.views.Pie(ctx, sess, h.scope.Selected(ctx, sess.ID))
	return renderView(c, h.log, view, err, func(v []aggregate.AccountSum) any { return toAccountResponses(v) })
}

// Dashboard handles GET /api/dashboard.
//
// @Summary      Dashboard cards and panels
// @Tags         charts
// @Produce      json
// @Security     SessionCookie
// @Success      200  {object}  viewResponse
// @Failure      401  {object}  map[string]bool
// @Router       /api/dashboard [get]
func (h *ViewHandler) Dashboard(c echo.Context) error {
	sess, err := ctxSession(c)
	if err != nil {
		return err
	}
	ctx := c.Request().Context()
	view, err := h.views.Dashboard(ctx, sess, h.scope.Selected(ctx, sess.ID))
	return renderView(c, h.log, view, err, func(v aggregate.Summary) any { return toDashboardResponse(v) })
}
