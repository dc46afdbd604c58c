package ports

import (
	"context"

	"github.com/safeledger/dashboard/internal/core/aggregate"
	"github.com/safeledger/dashboard/internal/core/domain"
)

// SessionService owns the dashboard session lifecycle.
type SessionService interface {
	Login(ctx context.Context, email, password string) (*domain.Session, domain.Resolution, error)
	// Resolve never reports backend failures; they resolve to unauthenticated.
	Resolve(ctx context.Context, s *domain.Session) (domain.Resolution, error)
	Logout(ctx context.Context, s *domain.Session) error
	// Session returns domain.ErrUnauthenticated for unknown ids.
	Session(ctx context.Context, id string) (*domain.Session, error)
}

// CredentialProvider hands out backend credentials that are ready for mutating calls.
type CredentialProvider interface {
	Credentials(ctx context.Context, s *domain.Session) (domain.Credentials, error)
}

// ScopeService is the company scope store.
type ScopeService interface {
	Selected(ctx context.Context, sessionID string) string
	Select(ctx context.Context, s *domain.Session, companyID string) (string, error)
}

// PostingService loads and mutates the postings of a scope.
type PostingService interface {
	Load(ctx context.Context, s *domain.Session, scope string) ([]domain.Posting, error)
	Refresh(ctx context.Context, s *domain.Session, scope string) ([]domain.Posting, error)
	Create(ctx context.Context, s *domain.Session, in CreatePostingInput) (*domain.Posting, error)
	Delete(ctx context.Context, s *domain.Session, ids []int64) (int, error)
}

// DashboardService renders the data views of a scope.
type DashboardService interface {
	Rows(ctx context.Context, s *domain.Session, scope string, f aggregate.Filter) (domain.View[[]domain.Posting], error)
	Bar(ctx context.Context, s *domain.Session, scope string, f aggregate.Filter) (domain.View[[]aggregate.MonthlySum], error)
	Line(ctx context.Context, s *domain.Session, scope string) (domain.View[[]aggregate.MonthlySum], error)
	Pie(ctx context.Context, s *domain.Session, scope string) (domain.View[[]aggregate.AccountSum], error)
	Dashboard(ctx context.Context, s *domain.Session, scope string) (domain.View[aggregate.Summary], error)
}

// DirectoryService proxies the management screens and model retraining.
type DirectoryService interface {
	ListCompanies(ctx context.Context, s *domain.Session) ([]domain.Company, error)
	CreateCompany(ctx context.Context, s *domain.Session, in CompanyInput) (*domain.Company, error)
	UpdateCompany(ctx context.Context, s *domain.Session, id int64, in CompanyInput) (*domain.Company, error)
	DeleteCompany(ctx context.Context, s *domain.Session, id int64) error

	ListCustomers(ctx context.Context, s *domain.Session) ([]domain.Customer, error)
	CreateCustomer(ctx context.Context, s *domain.Session, in CustomerInput) (*domain.Customer, error)
	UpdateCustomer(ctx context.Context, s *domain.Session, id int64, in CustomerPatch) (*domain.Customer, error)
	DeleteCustomer(ctx context.Context, s *domain.Session, id int64) error

	ListAccountants(ctx context.Context, s *domain.Session) ([]domain.Accountant, error)
	CreateAccountant(ctx context.Context, s *domain.Session, in AccountantInput) (*domain.Accountant, error)
	UpdateAccountant(ctx context.Context, s *domain.Session, id int64, in AccountantInput) (*domain.Accountant, error)
	DeleteAccountant(ctx context.Context, s *domain.Session, id int64) error

	Retrain(ctx context.Context, s *domain.Session, company string) (string, error)
}

// ActivityService exposes banners and the audit trail.
type ActivityService interface {
	Banners(ctx context.Context, sessionID string) []domain.Banner
	Recent(ctx context.Context, limit int) ([]domain.AuditEntry, error)
}
