package ports

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/safeledger/dashboard/internal/core/domain"
)

// SessionAPI is the authentication surface of the ledger backend.
// Every call carries the backend cookies of one dashboard session.
type SessionAPI interface {
	// FetchCSRF obtains a csrftoken cookie and returns creds with it filled in.
	FetchCSRF(ctx context.Context, creds domain.Credentials) (domain.Credentials, error)
	// Login returns creds updated with the sessionid (and rotated csrftoken) cookies.
	Login(ctx context.Context, creds domain.Credentials, email, password string) (domain.Credentials, error)
	Logout(ctx context.Context, creds domain.Credentials) error
	// UserDetails fails on any non-2xx or redirected response.
	UserDetails(ctx context.Context, creds domain.Credentials) (*domain.User, error)
}

// CreatePostingInput is the body of a new posting. Company may be empty, in which
// case the backend reports the missing field.
type CreatePostingInput struct {
	Company             string
	AccountHandleNumber int64
	PostAmount          decimal.Decimal
	PostCurrency        string
	PostDate            time.Time
	PostDescription     string
}

// PostingAPI reads and writes postings. An empty company lists every posting the
// backend lets the caller see.
type PostingAPI interface {
	ListPostings(ctx context.Context, creds domain.Credentials, company string) ([]domain.Posting, error)
	CreatePosting(ctx context.Context, creds domain.Credentials, in CreatePostingInput) (*domain.Posting, error)
	DeletePosting(ctx context.Context, creds domain.Credentials, id int64) error
}

type CompanyInput struct {
	CompanyName string
}

// CustomerInput creates a customer. An empty Password is not sent.
type CustomerInput struct {
	FirstName string
	LastName  string
	Username  string
	Email     string
	Password  string
	Company   int64
}

// CustomerPatch is a partial customer update. Nil fields are left unchanged.
type CustomerPatch struct {
	FirstName *string
	LastName  *string
	Username  *string
	Email     *string
	Password  *string
	Company   *int64
}

type AccountantInput struct {
	FirstName string
	LastName  string
	Username  string
	Email     string
	Password  string
	Companies []int64
}

// DirectoryAPI manages companies, customers and accountants.
type DirectoryAPI interface {
	ListCompanies(ctx context.Context, creds domain.Credentials) ([]domain.Company, error)
	CreateCompany(ctx context.Context, creds domain.Credentials, in CompanyInput) (*domain.Company, error)
	UpdateCompany(ctx context.Context, creds domain.Credentials, id int64, in CompanyInput) (*domain.Company, error)
	DeleteCompany(ctx context.Context, creds domain.Credentials, id int64) error

	ListCustomers(ctx context.Context, creds domain.Credentials) ([]domain.Customer, error)
	CreateCustomer(ctx context.Context, creds domain.Credentials, in CustomerInput) (*domain.Customer, error)
	UpdateCustomer(ctx context.Context, creds domain.Credentials, id int64, in CustomerPatch) (*domain.Customer, error)
	DeleteCustomer(ctx context.Context, creds domain.Credentials, id int64) error

	ListAccountants(ctx context.Context, creds domain.Credentials) ([]domain.Accountant, error)
	CreateAccountant(ctx context.Context, creds domain.Credentials, in AccountantInput) (*domain.Accountant, error)
	UpdateAccountant(ctx context.Context, creds domain.Credentials, id int64, in AccountantInput) (*domain.Accountant, error)
	DeleteAccountant(ctx context.Context, creds domain.Credentials, id int64) error
}

// ModelAPI triggers retraining of the suspicious-posting model.
type ModelAPI interface {
	// Retrain returns the backend's message. An empty company retrains globally.
	Retrain(ctx context.Context, creds domain.Credentials, company string) (string, error)
}
