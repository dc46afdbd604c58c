package handler

import (
	"bytes"
	"io"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/safeledger/dashboard/internal/core/aggregate"
	"github.com/safeledger/dashboard/internal/core/domain"
	"github.com/safeledger/dashboard/internal/core/export"
	"github.com/safeledger/dashboard/internal/core/ports"
)

const mimeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// PostingHandler serves the postings table, its mutations and exports.
type PostingHandler struct {
	postings ports.PostingService
	views    ports.DashboardService
	scope    ports.ScopeService
	log      zerolog.Logger
	now      func() time.Time
}

func NewPostingHandler(postings ports.PostingService, views ports.DashboardService, scope ports.ScopeService, log zerolog.Logger) *PostingHandler {
	return &PostingHandler{
		postings: postings,
		views:    views,
		scope:    scope,
		log:      log,
		now:      time.Now,
	}
}

// List handles GET /api/postings.
//
// @Summary      Postings of the selected company
// @Tags         postings
// @Produce      json
// @Security     SessionCookie
// @Param        account     query     string  false  "Account handle number"
// @Param        from        query     string  false  "First date, YYYY-MM-DD or DD-MM-YYYY"
// @Param        to          query     string  false  "Last date, YYYY-MM-DD or DD-MM-YYYY"
// @Param        suspicious  query     string  false  "all, only or exclude"
// @Param        search      query     string  false  "Free text search"
// @Success      200         {object}  viewResponse
// @Failure      400         {object}  errorResponse
// @Failure      401         {object}  map[string]bool
// @Router       /api/postings [get]
func (h *PostingHandler) List(c echo.Context) error {
	sess, err := ctxSession(c)
	if err != nil {
		return err
	}
	f, err := queryFilter(c)
	if err != nil {
		return err
	}
	ctx := c.Request().Context()
	view, err := h.views.Rows(ctx, sess, h.scope.Selected(ctx, sess.ID), f)
	return renderView(c, h.log, view, err, func(rows []domain.Posting) any { return toPostingResponses(rows) })
}

// Refresh drops the cached snapshot and reloads it from the backend.
//
// @Summary      Reload postings
// @Tags         postings
// @Produce      json
// @Security     SessionCookie
// @Success      200  {object}  viewResponse
// @Failure      401  {object}  map[string]bool
// @Router       /api/postings/refresh [post]
func (h *PostingHandler) Refresh(c echo.Context) error {
	sess, err := ctxSession(c)
	if err != nil {
		return err
	}
	ctx := c.Request().Context()
	scope := h.scope.Selected(ctx, sess.ID)
	if scope != "" || sess.Role() == domain.RoleSuperuser {
		if _, err := h.postings.Refresh(ctx, sess, scope); err != nil {
			h.log.Warn().Err(err).Str("session_id", sess.ID).Msg("posting refresh failed")
		}
	}
	view, err := h.views.Rows(ctx, sess, scope, aggregate.Filter{})
	return renderView(c, h.log, view, err, func(rows []domain.Posting) any { return toPostingResponses(rows) })
}

// Create handles POST /api/postings. The company defaults to the selected one.
//
// @Summary      Create a posting
// @Tags         postings
// @Accept       json
// @Produce      json
// @Security     SessionCookie
// @Param        body  body      createPostingRequest  true  "Posting"
// @Success      201   {object}  mutationResponse
// @Failure      400   {object}  errorResponse
// @Failure      401   {object}  map[string]bool
// @Failure      403   {object}  errorResponse
// @Failure      502   {object}  errorResponse
// @Router       /api/postings [post]
func (h *PostingHandler) Create(c echo.Context) error {
	sess, err := ctxSession(c)
	if err != nil {
		return err
	}
	var req createPostingRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	in, err := toCreatePostingInput(req)
	if err != nil {
		return err
	}

	created, err := h.postings.Create(c.Request().Context(), sess, in)
	if err != nil {
		return err
	}
	resp := mutationResponse{Message: domain.ResourcePosting.SuccessMessage(domain.ActionCreate)}
	if created != nil && created.ID > 0 {
		p := toPostingResponse(*created)
		resp.Posting = &p
	}
	return c.JSON(http.StatusCreated, resp)
}

// Delete handles DELETE /api/postings/:id.
//
// @Summary      Delete a posting
// @Tags         postings
// @Produce      json
// @Security     SessionCookie
// @Param        id   path      int  true  "Posting id"
// @Success      200  {object}  deleteResponse
// @Failure      400  {object}  errorResponse
// @Failure      401  {object}  map[string]bool
// @Failure      404  {object}  errorResponse
// @Router       /api/postings/{id} [delete]
func (h *PostingHandler) Delete(c echo.Context) error {
	sess, err := ctxSession(c)
	if err != nil {
		return err
	}
	id, err := pathID(c)
	if err != nil {
		return err
	}
	n, err := h.postings.Delete(c.Request().Context(), sess, []int64{id})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, deleteResponse{Deleted: n})
}

// BulkDelete deletes the selected postings in order, stopping at the first failure.
//
// @Summary      Delete selected postings
// @Tags         postings
// @Accept       json
// @Produce      json
// @Security     SessionCookie
// @Param        body  body      bulkDeleteRequest  true  "Posting ids"
// @Success      200   {object}  deleteResponse
// @Failure      400   {object}  errorResponse
// @Failure      401   {object}  map[string]bool
// @Router       /api/postings/bulk-delete [post]
func (h *PostingHandler) BulkDelete(c echo.Context) error {
	sess, err := ctxSession(c)
	if err != nil {
		return err
	}
	var req bulkDeleteRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	n, err := h.postings.Delete(c.Request().Context(), sess, req.IDs)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, deleteResponse{Deleted: n})
}

// ExportCSV handles GET /api/postings/export.csv.
//
// @Summary      Export postings as CSV
// @Tags         postings
// @Produce      text/csv
// @Security     SessionCookie
// @Param        ids  query     string  false  "Comma separated ids; all filtered rows when empty"
// @Success      200  {file}    file
// @Failure      400  {object}  errorResponse
// @Failure      401  {object}  map[string]bool
// @Router       /api/postings/export.csv [get]
func (h *PostingHandler) ExportCSV(c echo.Context) error {
	return h.export(c, "csv", "text/csv; charset=utf-8", export.WriteCSV)
}

// ExportXLSX handles GET /api/postings/export.xlsx.
//
// @Summary      Export postings as XLSX
// @Tags         postings
// @Produce      application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Security     SessionCookie
// @Param        ids  query     string  false  "Comma separated ids; all filtered rows when empty"
// @Success      200  {file}    file
// @Failure      400  {object}  errorResponse
// @Failure      401  {object}  map[string]bool
// @Router       /api/postings/export.xlsx [get]
func (h *PostingHandler) ExportXLSX(c echo.Context) error {
	return h.export(c, "xlsx", mimeXLSX, export.WriteXLSX)
}

func (h *PostingHandler) export(c echo.Context, ext, contentType string, write func(io.Writer, []domain.Posting) error) error {
	sess, err := ctxSession(c)
	if err != nil {
		return err
	}
	f, err := queryFilter(c)
	if err != nil {
		return err
	}
	ids, err := queryIDs(c)
	if err != nil {
		return err
	}

	ctx := c.Request().Context()
	view, err := h.views.Rows(ctx, sess, h.scope.Selected(ctx, sess.ID), f)
	if err != nil {
		return err
	}
	rows := aggregate.SelectIDs(view.Data, ids)

	var buf bytes.Buffer
	if err := write(&buf, rows); err != nil {
		return err
	}
	c.Response().Header().Set(echo.HeaderContentDisposition, `attachment; filename="`+exportFilename(ext, h.now())+`"`)
	return c.Blob(http.StatusOK, contentType, buf.Bytes())
}

// renderView writes a view envelope. A failed load still renders as an error view.
func renderView[T any](c echo.Context, log zerolog.Logger, view domain.View[T], err error, data func(T) any) error {
	if err != nil {
		if view.Status != domain.ViewError {
			return err
		}
		log.Warn().Err(err).Str("path", c.Path()).Str("scope", view.Scope).Msg("view load failed")
	}
	return c.JSON(http.StatusOK, toViewResponse(view, data))
}
