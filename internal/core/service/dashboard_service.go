package service

import (
	"context"
	"errors"
	"time"

	"github.com/safeledger/dashboard/internal/core/aggregate"
	"github.com/safeledger/dashboard/internal/core/domain"
)

const (
	MessageNoCompany = "no company selected"
	MessageNoData    = "no data"

	defaultTopAccounts = 5
)

// PostingLoader returns the posting snapshot of a scope.
type PostingLoader interface {
	Load(ctx context.Context, s *domain.Session, scope string) ([]domain.Posting, error)
}

// DashboardService renders the data views. Every view is built from the cached
// snapshot by the pure functions of package aggregate.
type DashboardService struct {
	postings PostingLoader
	topN     int
	now      func() time.Time
}

func NewDashboardService(postings PostingLoader, topN int) *DashboardService {
	if topN <= 0 {
		topN = defaultTopAccounts
	}
	return &DashboardService{
		postings: postings,
		topN:     topN,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

func (d *DashboardService) Rows(ctx context.Context, sess *domain.Session, scope string, f aggregate.Filter) (domain.View[[]domain.Posting], error) {
	return render(ctx, d, sess, scope, func(rows []domain.Posting) []domain.Posting {
		return aggregate.FilterRows(rows, f)
	}, func(out []domain.Posting) bool { return len(out) == 0 })
}

func (d *DashboardService) Bar(ctx context.Context, sess *domain.Session, scope string, f aggregate.Filter) (domain.View[[]aggregate.MonthlySum], error) {
	return render(ctx, d, sess, scope, func(rows []domain.Posting) []aggregate.MonthlySum {
		return aggregate.MonthlySums(aggregate.FilterRows(rows, f))
	}, func(out []aggregate.MonthlySum) bool { return len(out) == 0 })
}

func (d *DashboardService) Line(ctx context.Context, sess *domain.Session, scope string) (domain.View[[]aggregate.MonthlySum], error) {
	return render(ctx, d, sess, scope, aggregate.MonthlySums,
		func(out []aggregate.MonthlySum) bool { return len(out) == 0 })
}

func (d *DashboardService) Pie(ctx context.Context, sess *domain.Session, scope string) (domain.View[[]aggregate.AccountSum], error) {
	return render(ctx, d, sess, scope, func(rows []domain.Posting) []aggregate.AccountSum {
		return aggregate.TopAccounts(rows, d.topN)
	}, func(out []aggregate.AccountSum) bool { return len(out) == 0 })
}

func (d *DashboardService) Dashboard(ctx context.Context, sess *domain.Session, scope string) (domain.View[aggregate.Summary], error) {
	return render(ctx, d, sess, scope, func(rows []domain.Posting) aggregate.Summary {
		return aggregate.Summarize(rows, d.now().Year(), d.topN)
	}, nil)
}

// render loads the snapshot and builds a view from it. Without a selected company
// only superusers see data; everyone else gets an empty view. A failed load yields
// an error view together with the error.
func render[T any](
	ctx context.Context,
	d *DashboardService,
	sess *domain.Session,
	scope string,
	build func([]domain.Posting) T,
	empty func(T) bool,
) (domain.View[T], error) {
	view := domain.View[T]{Scope: scope}
	if scope == "" && sess.Role() != domain.RoleSuperuser {
		view.Status = domain.ViewEmpty
		view.Message = MessageNoCompany
		return view, nil
	}

	rows, err := d.postings.Load(ctx, sess, scope)
	if err != nil {
		view.Status = domain.ViewError
		view.Message = loadMessage(err)
		return view, err
	}
	if len(rows) == 0 {
		view.Status = domain.ViewEmpty
		view.Message = MessageNoData
		return view, nil
	}

	view.Data = build(rows)
	view.Status = domain.ViewReady
	if empty != nil && empty(view.Data) {
		view.Status = domain.ViewEmpty
		view.Message = MessageNoData
	}
	return view, nil
}

func loadMessage(err error) string {
	var be *domain.BackendError
	switch {
	case errors.Is(err, domain.ErrScopeSuperseded):
		return "Company selection changed, reload to see the current data."
	case errors.Is(err, domain.ErrMalformedResponse):
		return "Received malformed data from the server."
	case errors.As(err, &be) && (be.Redirected() || be.Status == 401 || be.Status == 403):
		return "You are not allowed to see these postings."
	}
	return "Failed to load postings."
}
