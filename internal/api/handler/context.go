package handler

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/safeledger/dashboard/internal/core/aggregate"
	"github.com/safeledger/dashboard/internal/core/domain"
)

// ctxSession returns the session injected by the Session middleware. A missing or
// unresolved session fails fast before any service call.
func ctxSession(c echo.Context) (*domain.Session, error) {
	sess, _ := c.Get("session").(*domain.Session)
	if !sess.Authenticated() {
		return nil, domain.ErrUnauthenticated
	}
	return sess, nil
}

// pathID parses the :id path parameter as a positive integer.
func pathID(c echo.Context) (int64, error) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%w: id must be a positive integer", domain.ErrInvalidInput)
	}
	return id, nil
}

// queryFilter reads the row filter from the query string: account, from, to,
// suspicious and search. Dates are YYYY-MM-DD or DD-MM-YYYY.
func queryFilter(c echo.Context) (aggregate.Filter, error) {
	var (
		f   aggregate.Filter
		err error
	)
	f.AccountHandleNumber = strings.TrimSpace(c.QueryParam("account"))
	if f.AccountHandleNumber != "" {
		if _, err := strconv.ParseInt(f.AccountHandleNumber, 10, 64); err != nil {
			return f, fmt.Errorf("%w: account must be a number", domain.ErrInvalidInput)
		}
	}
	if f.From, err = queryDate(c, "from"); err != nil {
		return f, err
	}
	if f.To, err = queryDate(c, "to"); err != nil {
		return f, err
	}
	if f.Suspicious, err = aggregate.ParseSuspiciousFilter(c.QueryParam("suspicious")); err != nil {
		return f, err
	}
	f.Search = c.QueryParam("search")
	return f, nil
}

func queryDate(c echo.Context, name string) (time.Time, error) {
	raw := strings.TrimSpace(c.QueryParam(name))
	if raw == "" {
		return time.Time{}, nil
	}
	t, err := domain.ParsePostDate(raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %s must be YYYY-MM-DD or DD-MM-YYYY", domain.ErrInvalidInput, name)
	}
	return t, nil
}

// queryIDs parses a comma separated id list such as ids=1,2,3.
func queryIDs(c echo.Context) ([]int64, error) {
	raw := strings.TrimSpace(c.QueryParam("ids"))
	if raw == "" {
		return nil, nil
	}
	parts := strings.Split(raw, ",")
	ids := make([]int64, 0, len(parts))
	for _, p := range parts {
		id, err := strconv.ParseInt(strings.TrimSpace(p), 10, 64)
		if err != nil || id <= 0 {
			return nil, fmt.Errorf("%w: ids must be positive integers", domain.ErrInvalidInput)
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// bindAndValidate decodes the request body into req and runs the struct validator.
func bindAndValidate(c echo.Context, req any) error {
	if err := c.Bind(req); err != nil {
		return fmt.Errorf("%w: invalid payload", domain.ErrInvalidInput)
	}
	return c.Validate(req)
}
