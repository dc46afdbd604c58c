package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/safeledger/dashboard/internal/core/aggregate"
	"github.com/safeledger/dashboard/internal/core/domain"
	"github.com/safeledger/dashboard/internal/core/ports"
)

type stubSessionService struct {
	loginFn   func(ctx context.Context, email, password string) (*domain.Session, domain.Resolution, error)
	resolveFn func(ctx context.Context, s *domain.Session) (domain.Resolution, error)
	sessions  map[string]*domain.Session
	loggedOut []string
}

func (s *stubSessionService) Login(ctx context.Context, email, password string) (*domain.Session, domain.Resolution, error) {
	return s.loginFn(ctx, email, password)
}

func (s *stubSessionService) Resolve(ctx context.Context, sess *domain.Session) (domain.Resolution, error) {
	return s.resolveFn(ctx, sess)
}

func (s *stubSessionService) Logout(_ context.Context, sess *domain.Session) error {
	s.loggedOut = append(s.loggedOut, sess.ID)
	return nil
}

func (s *stubSessionService) Session(_ context.Context, id string) (*domain.Session, error) {
	sess, ok := s.sessions[id]
	if !ok {
		return nil, domain.ErrUnauthenticated
	}
	return sess, nil
}

type stubScopeService struct {
	selected string
	selectFn func(ctx context.Context, s *domain.Session, id string) (string, error)
}

func (s *stubScopeService) Selected(context.Context, string) string { return s.selected }

func (s *stubScopeService) Select(ctx context.Context, sess *domain.Session, id string) (string, error) {
	return s.selectFn(ctx, sess, id)
}

type stubPostingService struct {
	createFn  func(ctx context.Context, s *domain.Session, in ports.CreatePostingInput) (*domain.Posting, error)
	deleted   []int64
	refreshed []string
}

func (s *stubPostingService) Load(context.Context, *domain.Session, string) ([]domain.Posting, error) {
	return nil, nil
}

func (s *stubPostingService) Refresh(_ context.Context, _ *domain.Session, scope string) ([]domain.Posting, error) {
	s.refreshed = append(s.refreshed, scope)
	return nil, nil
}

func (s *stubPostingService) Create(ctx context.Context, sess *domain.Session, in ports.CreatePostingInput) (*domain.Posting, error) {
	return s.createFn(ctx, sess, in)
}

func (s *stubPostingService) Delete(_ context.Context, _ *domain.Session, ids []int64) (int, error) {
	s.deleted = append(s.deleted, ids...)
	return len(ids), nil
}

// stubViews renders every view from rows with the real aggregate functions.
type stubViews struct {
	rows       []domain.Posting
	err        error
	lastScope  string
	lastFilter aggregate.Filter
}

func (s *stubViews) Rows(_ context.Context, _ *domain.Session, scope string, f aggregate.Filter) (domain.View[[]domain.Posting], error) {
	s.lastScope, s.lastFilter = scope, f
	if s.err != nil {
		return domain.View[[]domain.Posting]{Status: domain.ViewError, Scope: scope, Message: "Failed to load postings."}, s.err
	}
	return domain.View[[]domain.Posting]{Status: domain.ViewReady, Scope: scope, Data: aggregate.FilterRows(s.rows, f)}, nil
}

func (s *stubViews) Bar(_ context.Context, _ *domain.Session, scope string, f aggregate.Filter) (domain.View[[]aggregate.MonthlySum], error) {
	s.lastScope, s.lastFilter = scope, f
	return domain.View[[]aggregate.MonthlySum]{Status: domain.ViewReady, Scope: scope, Data: aggregate.MonthlySums(aggregate.FilterRows(s.rows, f))}, nil
}

func (s *stubViews) Line(_ context.Context, _ *domain.Session, scope string) (domain.View[[]aggregate.MonthlySum], error) {
	return domain.View[[]aggregate.MonthlySum]{Status: domain.ViewReady, Scope: scope, Data: aggregate.MonthlySums(s.rows)}, nil
}

func (s *stubViews) Pie(_ context.Context, _ *domain.Session, scope string) (domain.View[[]aggregate.AccountSum], error) {
	return domain.View[[]aggregate.AccountSum]{Status: domain.ViewReady, Scope: scope, Data: aggregate.TopAccounts(s.rows, 5)}, nil
}

func (s *stubViews) Dashboard(_ context.Context, _ *domain.Session, scope string) (domain.View[aggregate.Summary], error) {
	if s.err != nil {
		return domain.View[aggregate.Summary]{Status: domain.ViewError, Scope: scope, Message: "Failed to load postings."}, s.err
	}
	if scope == "" {
		return domain.View[aggregate.Summary]{Status: domain.ViewEmpty, Message: "no company selected"}, nil
	}
	return domain.View[aggregate.Summary]{Status: domain.ViewReady, Scope: scope, Data: aggregate.Summarize(s.rows, 2024, 5)}, nil
}

type stubActivity struct {
	banners []domain.Banner
	limit   int
}

func (s *stubActivity) Banners(context.Context, string) []domain.Banner { return s.banners }

func (s *stubActivity) Recent(_ context.Context, limit int) ([]domain.AuditEntry, error) {
	s.limit = limit
	return []domain.AuditEntry{}, nil
}

func accountantSession() *domain.Session {
	return &domain.Session{
		ID:    "sess-1",
		State: domain.SessionAuthenticated,
		User: &domain.User{
			Username:  "ana",
			Role:      domain.RoleAccountant,
			Companies: []domain.Company{{ID: 1, CompanyName: "Acme"}, {ID: 2, CompanyName: "Globex"}},
		},
	}
}

// newContext builds an echo context carrying sess the way the Session middleware does.
func newContext(method, target, body string, sess *domain.Session) (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	e.Validator = NewValidator()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	if sess != nil {
		c.Set("session", sess)
		c.Set("role", sess.Role())
	}
	return c, rec
}

func mustPosting(id, account int64, amount, date string, suspicious bool) domain.Posting {
	return domain.NewPosting(id, 1, account, amount, "EUR", date, "desc", suspicious)
}
