package service

import (
	"context"
	"sync"

	"github.com/safeledger/dashboard/internal/core/domain"
	"github.com/safeledger/dashboard/internal/core/ports"
)

// ---------------------------------------------------------------------------
// Stores
// ---------------------------------------------------------------------------

type memSessions struct {
	mu      sync.Mutex
	m       map[string]*domain.Session
	saveErr error
	saves   int
}

func newMemSessions() *memSessions {
	return &memSessions{m: make(map[string]*domain.Session)}
}

func (r *memSessions) Save(_ context.Context, s *domain.Session) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.saveErr != nil {
		return r.saveErr
	}
	r.saves++
	cp := *s
	r.m[s.ID] = &cp
	return nil
}

func (r *memSessions) Find(_ context.Context, id string) (*domain.Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.m[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *s
	return &cp, nil
}

func (r *memSessions) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.m, id)
	return nil
}

type memScopes struct {
	mu     sync.Mutex
	m      map[string]string
	getErr error
	setErr error
}

func newMemScopes() *memScopes {
	return &memScopes{m: make(map[string]string)}
}

func (r *memScopes) Get(_ context.Context, sid string) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.getErr != nil {
		return "", r.getErr
	}
	return r.m[sid], nil
}

func (r *memScopes) Set(_ context.Context, sid, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.setErr != nil {
		return r.setErr
	}
	r.m[sid] = id
	return nil
}

func (r *memScopes) Clear(_ context.Context, sid string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.m, sid)
	return nil
}

// fixedScope is a ScopeReader whose answer can be changed by the test.
type fixedScope struct {
	mu sync.Mutex
	id string
}

func (f *fixedScope) Selected(context.Context, string) string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.id
}

func (f *fixedScope) set(id string) {
	f.mu.Lock()
	f.id = id
	f.mu.Unlock()
}

type memBanners struct {
	mu      sync.Mutex
	pushed  []domain.Banner
	pushErr error
}

func (b *memBanners) Push(_ context.Context, _ string, banner domain.Banner) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.pushErr != nil {
		return b.pushErr
	}
	b.pushed = append(b.pushed, banner)
	return nil
}

func (b *memBanners) Active(context.Context, string) ([]domain.Banner, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]domain.Banner(nil), b.pushed...), nil
}

type memAudit struct {
	mu      sync.Mutex
	entries []domain.AuditEntry
}

func (a *memAudit) Record(e domain.AuditEntry) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.entries = append(a.entries, e)
}

func (a *memAudit) Insert(_ context.Context, e *domain.AuditEntry) error {
	a.Record(*e)
	return nil
}

func (a *memAudit) Recent(_ context.Context, limit int) ([]domain.AuditEntry, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if limit > len(a.entries) {
		limit = len(a.entries)
	}
	return append([]domain.AuditEntry(nil), a.entries[:limit]...), nil
}

// ---------------------------------------------------------------------------
// Activity and credentials
// ---------------------------------------------------------------------------

type stubActivity struct {
	mu        sync.Mutex
	succeeded []string
	failed    []*domain.MutationError
}

func (a *stubActivity) Succeeded(_ context.Context, _ *domain.Session, _ domain.Resource, _ domain.Action, _, _, message string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.succeeded = append(a.succeeded, message)
}

func (a *stubActivity) Failed(_ context.Context, _ *domain.Session, me *domain.MutationError, _, _ string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.failed = append(a.failed, me)
}

type stubCreds struct {
	err error
}

func (c stubCreds) Credentials(_ context.Context, s *domain.Session) (domain.Credentials, error) {
	if c.err != nil {
		return domain.Credentials{}, c.err
	}
	creds := s.Credentials
	creds.CSRFToken = "csrf"
	return creds, nil
}

// ---------------------------------------------------------------------------
// Ledger backend
// ---------------------------------------------------------------------------

type stubSessionAPI struct {
	user       *domain.User
	detailsErr error
	loginErr   error
	logoutErr  error
	csrfErr    error
	csrfCalls  int
	logouts    int
}

func (a *stubSessionAPI) FetchCSRF(_ context.Context, c domain.Credentials) (domain.Credentials, error) {
	a.csrfCalls++
	if a.csrfErr != nil {
		return c, a.csrfErr
	}
	c.CSRFToken = "csrf-1"
	return c, nil
}

func (a *stubSessionAPI) Login(_ context.Context, c domain.Credentials, _, _ string) (domain.Credentials, error) {
	if a.loginErr != nil {
		return c, a.loginErr
	}
	c.SessionID = "backend-session"
	c.CSRFToken = "csrf-2"
	return c, nil
}

func (a *stubSessionAPI) Logout(context.Context, domain.Credentials) error {
	a.logouts++
	return a.logoutErr
}

func (a *stubSessionAPI) UserDetails(context.Context, domain.Credentials) (*domain.User, error) {
	if a.detailsErr != nil {
		return nil, a.detailsErr
	}
	return a.user, nil
}

type stubPostingAPI struct {
	mu      sync.Mutex
	rows    map[string][]domain.Posting
	listErr error
	calls   map[string]int

	// When set, ListPostings reports on started and then waits for release.
	started chan string
	release chan struct{}

	createErr  error
	created    []ports.CreatePostingInput
	deleteErrs map[int64]error
	deleted    []int64
}

func newStubPostingAPI() *stubPostingAPI {
	return &stubPostingAPI{
		rows:       make(map[string][]domain.Posting),
		calls:      make(map[string]int),
		deleteErrs: make(map[int64]error),
	}
}

func (a *stubPostingAPI) ListPostings(_ context.Context, _ domain.Credentials, company string) ([]domain.Posting, error) {
	a.mu.Lock()
	a.calls[company]++
	started, release := a.started, a.release
	a.mu.Unlock()

	if started != nil {
		started <- company
		<-release
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	if a.listErr != nil {
		return nil, a.listErr
	}
	return a.rows[company], nil
}

func (a *stubPostingAPI) callCount(company string) int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.calls[company]
}

func (a *stubPostingAPI) CreatePosting(_ context.Context, _ domain.Credentials, in ports.CreatePostingInput) (*domain.Posting, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.createErr != nil {
		return nil, a.createErr
	}
	a.created = append(a.created, in)
	return &domain.Posting{ID: int64(100 + len(a.created)), AccountHandleNumber: in.AccountHandleNumber}, nil
}

func (a *stubPostingAPI) DeletePosting(_ context.Context, _ domain.Credentials, id int64) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if err := a.deleteErrs[id]; err != nil {
		return err
	}
	a.deleted = append(a.deleted, id)
	return nil
}

type stubDirectoryAPI struct {
	companies []domain.Company
	err       error
	lastInput any
	deleted   []int64
}

func (a *stubDirectoryAPI) ListCompanies(context.Context, domain.Credentials) ([]domain.Company, error) {
	return a.companies, a.err
}

func (a *stubDirectoryAPI) CreateCompany(_ context.Context, _ domain.Credentials, in ports.CompanyInput) (*domain.Company, error) {
	if a.err != nil {
		return nil, a.err
	}
	a.lastInput = in
	return &domain.Company{ID: 11, CompanyName: in.CompanyName}, nil
}

func (a *stubDirectoryAPI) UpdateCompany(_ context.Context, _ domain.Credentials, id int64, in ports.CompanyInput) (*domain.Company, error) {
	if a.err != nil {
		return nil, a.err
	}
	a.lastInput = in
	return &domain.Company{ID: id, CompanyName: in.CompanyName}, nil
}

func (a *stubDirectoryAPI) DeleteCompany(_ context.Context, _ domain.Credentials, id int64) error {
	if a.err != nil {
		return a.err
	}
	a.deleted = append(a.deleted, id)
	return nil
}

func (a *stubDirectoryAPI) ListCustomers(context.Context, domain.Credentials) ([]domain.Customer, error) {
	return nil, a.err
}

func (a *stubDirectoryAPI) CreateCustomer(_ context.Context, _ domain.Credentials, in ports.CustomerInput) (*domain.Customer, error) {
	if a.err != nil {
		return nil, a.err
	}
	a.lastInput = in
	return &domain.Customer{ID: 21, Username: in.Username, Company: in.Company}, nil
}

func (a *stubDirectoryAPI) UpdateCustomer(_ context.Context, _ domain.Credentials, id int64, in ports.CustomerPatch) (*domain.Customer, error) {
	if a.err != nil {
		return nil, a.err
	}
	a.lastInput = in
	c := &domain.Customer{ID: id}
	if in.Username != nil {
		c.Username = *in.Username
	}
	return c, nil
}

func (a *stubDirectoryAPI) DeleteCustomer(_ context.Context, _ domain.Credentials, id int64) error {
	if a.err != nil {
		return a.err
	}
	a.deleted = append(a.deleted, id)
	return nil
}

func (a *stubDirectoryAPI) ListAccountants(context.Context, domain.Credentials) ([]domain.Accountant, error) {
	return nil, a.err
}

func (a *stubDirectoryAPI) CreateAccountant(_ context.Context, _ domain.Credentials, in ports.AccountantInput) (*domain.Accountant, error) {
	if a.err != nil {
		return nil, a.err
	}
	a.lastInput = in
	return &domain.Accountant{ID: 31, Username: in.Username, Companies: in.Companies}, nil
}

func (a *stubDirectoryAPI) UpdateAccountant(_ context.Context, _ domain.Credentials, id int64, in ports.AccountantInput) (*domain.Accountant, error) {
	if a.err != nil {
		return nil, a.err
	}
	return &domain.Accountant{ID: id, Username: in.Username}, nil
}

func (a *stubDirectoryAPI) DeleteAccountant(_ context.Context, _ domain.Credentials, id int64) error {
	if a.err != nil {
		return a.err
	}
	a.deleted = append(a.deleted, id)
	return nil
}

type stubModelAPI struct {
	msg     string
	err     error
	company string
}

func (m *stubModelAPI) Retrain(_ context.Context, _ domain.Credentials, company string) (string, error) {
	m.company = company
	return m.msg, m.err
}

// ---------------------------------------------------------------------------
// Fixtures
// ---------------------------------------------------------------------------

func authedSession(id, role string, companies ...domain.Company) *domain.Session {
	return &domain.Session{
		ID:    id,
		State: domain.SessionAuthenticated,
		User:  &domain.User{Username: id + "-user", Role: role, Companies: companies},
	}
}
