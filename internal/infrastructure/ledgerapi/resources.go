package ledgerapi

import (
	"context"
	"net/http"
	"strconv"

	"github.com/safeledger/dashboard/internal/core/domain"
	"github.com/safeledger/dashboard/internal/core/ports"
)

var (
	_ ports.SessionAPI   = (*Client)(nil)
	_ ports.PostingAPI   = (*Client)(nil)
	_ ports.DirectoryAPI = (*Client)(nil)
	_ ports.ModelAPI     = (*Client)(nil)
)

// CreatePosting implements ports.PostingAPI. The date is sent in ISO form; a missing
// company is left out so the backend reports it.
func (cl *Client) CreatePosting(ctx context.Context, creds domain.Credentials, in ports.CreatePostingInput) (*domain.Posting, error) {
	req := postingRequest{
		AccountHandleNumber: in.AccountHandleNumber,
		PostAmount:          in.PostAmount.String(),
		PostCurrency:        in.PostCurrency,
		PostDate:            in.PostDate.Format(domain.ISODateLayout),
		PostDescription:     in.PostDescription,
	}
	if id, err := strconv.ParseInt(in.Company, 10, 64); err == nil {
		req.Company = &id
	}

	var body postingDTO
	if _, err := cl.do(ctx, creds, call{method: http.MethodPost, path: "/postings/", endpoint: "/postings/", body: req, out: &body}); err != nil {
		return nil, err
	}
	// The created row is echoed back when the backend serialises it; a reply
	// without an id still means success.
	p, err := body.toDomain()
	if err != nil {
		return &domain.Posting{}, nil
	}
	return &p, nil
}

// DeletePosting implements ports.PostingAPI.
func (cl *Client) DeletePosting(ctx context.Context, creds domain.Credentials, id int64) error {
	_, err := cl.do(ctx, creds, call{method: http.MethodDelete, path: idPath("/postings/", id), endpoint: "/postings/{id}/"})
	return err
}

// ListCompanies implements ports.DirectoryAPI.
func (cl *Client) ListCompanies(ctx context.Context, creds domain.Credentials) ([]domain.Company, error) {
	var body []companyDTO
	if _, err := cl.do(ctx, creds, call{method: http.MethodGet, path: "/companies/", endpoint: "/companies/", out: &body}); err != nil {
		return nil, err
	}
	out := make([]domain.Company, 0, len(body))
	for _, c := range body {
		out = append(out, c.toDomain())
	}
	return out, nil
}

func (cl *Client) CreateCompany(ctx context.Context, creds domain.Credentials, in ports.CompanyInput) (*domain.Company, error) {
	return cl.saveCompany(ctx, creds, http.MethodPost, "/companies/", "/companies/", in)
}

func (cl *Client) UpdateCompany(ctx context.Context, creds domain.Credentials, id int64, in ports.CompanyInput) (*domain.Company, error) {
	return cl.saveCompany(ctx, creds, http.MethodPatch, idPath("/companies/", id), "/companies/{id}/", in)
}

func (cl *Client) saveCompany(ctx context.Context, creds domain.Credentials, method, path, endpoint string, in ports.CompanyInput) (*domain.Company, error) {
	var body companyDTO
	req := map[string]string{"companyName": in.CompanyName}
	if _, err := cl.do(ctx, creds, call{method: method, path: path, endpoint: endpoint, body: req, out: &body}); err != nil {
		return nil, err
	}
	c := body.toDomain()
	return &c, nil
}

func (cl *Client) DeleteCompany(ctx context.Context, creds domain.Credentials, id int64) error {
	_, err := cl.do(ctx, creds, call{method: http.MethodDelete, path: idPath("/companies/", id), endpoint: "/companies/{id}/"})
	return err
}

// ListCustomers implements ports.DirectoryAPI.
func (cl *Client) ListCustomers(ctx context.Context, creds domain.Credentials) ([]domain.Customer, error) {
	var body []customerDTO
	if _, err := cl.do(ctx, creds, call{method: http.MethodGet, path: "/customers/", endpoint: "/customers/", out: &body}); err != nil {
		return nil, err
	}
	out := make([]domain.Customer, 0, len(body))
	for _, c := range body {
		out = append(out, c.toDomain())
	}
	return out, nil
}

func (cl *Client) CreateCustomer(ctx context.Context, creds domain.Credentials, in ports.CustomerInput) (*domain.Customer, error) {
	req := customerRequest{
		FirstName: in.FirstName,
		LastName:  in.LastName,
		Username:  in.Username,
		Email:     in.Email,
		Password:  in.Password,
		Company:   in.Company,
	}
	return cl.saveCustomer(ctx, creds, http.MethodPost, "/customers/", "/customers/", req)
}

// UpdateCustomer sends only the fields set in the patch. An empty password counts as unset.
func (cl *Client) UpdateCustomer(ctx context.Context, creds domain.Credentials, id int64, in ports.CustomerPatch) (*domain.Customer, error) {
	req := customerPatchRequest{
		FirstName: in.FirstName,
		LastName:  in.LastName,
		Username:  in.Username,
		Email:     in.Email,
		Company:   in.Company,
	}
	if in.Password != nil && *in.Password != "" {
		req.Password = in.Password
	}
	return cl.saveCustomer(ctx, creds, http.MethodPatch, idPath("/customers/", id), "/customers/{id}/", req)
}

func (cl *Client) saveCustomer(ctx context.Context, creds domain.Credentials, method, path, endpoint string, req any) (*domain.Customer, error) {
	var body customerDTO
	if _, err := cl.do(ctx, creds, call{method: method, path: path, endpoint: endpoint, body: req, out: &body}); err != nil {
		return nil, err
	}
	c := body.toDomain()
	return &c, nil
}

func (cl *Client) DeleteCustomer(ctx context.Context, creds domain.Credentials, id int64) error {
	_, err := cl.do(ctx, creds, call{method: http.MethodDelete, path: idPath("/customers/", id), endpoint: "/customers/{id}/"})
	return err
}

// ListAccountants implements ports.DirectoryAPI.
func (cl *Client) ListAccountants(ctx context.Context, creds domain.Credentials) ([]domain.Accountant, error) {
	var body []accountantDTO
	if _, err := cl.do(ctx, creds, call{method: http.MethodGet, path: "/accountants/", endpoint: "/accountants/", out: &body}); err != nil {
		return nil, err
	}
	out := make([]domain.Accountant, 0, len(body))
	for _, a := range body {
		out = append(out, a.toDomain())
	}
	return out, nil
}

func (cl *Client) CreateAccountant(ctx context.Context, creds domain.Credentials, in ports.AccountantInput) (*domain.Accountant, error) {
	return cl.saveAccountant(ctx, creds, http.MethodPost, "/accountants/", "/accountants/", in)
}

func (cl *Client) UpdateAccountant(ctx context.Context, creds domain.Credentials, id int64, in ports.AccountantInput) (*domain.Accountant, error) {
	return cl.saveAccountant(ctx, creds, http.MethodPatch, idPath("/accountants/", id), "/accountants/{id}/", in)
}

func (cl *Client) saveAccountant(ctx context.Context, creds domain.Credentials, method, path, endpoint string, in ports.AccountantInput) (*domain.Accountant, error) {
	companies := in.Companies
	if companies == nil {
		companies = []int64{}
	}
	req := accountantRequest{
		FirstName: in.FirstName,
		LastName:  in.LastName,
		Username:  in.Username,
		Email:     in.Email,
		Password:  in.Password,
		Companies: companies,
	}
	var body accountantDTO
	if _, err := cl.do(ctx, creds, call{method: method, path: path, endpoint: endpoint, body: req, out: &body}); err != nil {
		return nil, err
	}
	a := body.toDomain()
	return &a, nil
}

func (cl *Client) DeleteAccountant(ctx context.Context, creds domain.Credentials, id int64) error {
	_, err := cl.do(ctx, creds, call{method: http.MethodDelete, path: idPath("/accountants/", id), endpoint: "/accountants/{id}/"})
	return err
}
