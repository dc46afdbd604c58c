package service

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/rs/zerolog"

	"github.com/safeledger/dashboard/internal/core/domain"
	"github.com/safeledger/dashboard/internal/core/ports"
)

// DirectoryService proxies company, customer and accountant management and model
// retraining to the backend. Reads return backend errors as they are; mutations
// resolve them to a *domain.MutationError and report the outcome.
type DirectoryService struct {
	api      ports.DirectoryAPI
	model    ports.ModelAPI
	creds    ports.CredentialProvider
	activity ActivityRecorder
	log      zerolog.Logger
}

func NewDirectoryService(api ports.DirectoryAPI, model ports.ModelAPI, creds ports.CredentialProvider, activity ActivityRecorder, log zerolog.Logger) *DirectoryService {
	return &DirectoryService{api: api, model: model, creds: creds, activity: activity, log: log}
}

func (d *DirectoryService) ListCompanies(ctx context.Context, sess *domain.Session) ([]domain.Company, error) {
	out, err := d.api.ListCompanies(ctx, sess.Credentials)
	if err != nil {
		return nil, fmt.Errorf("list companies: %w", err)
	}
	return out, nil
}

func (d *DirectoryService) CreateCompany(ctx context.Context, sess *domain.Session, in ports.CompanyInput) (*domain.Company, error) {
	return mutate(ctx, d, sess, domain.ResourceCompany, domain.ActionCreate, 0,
		func(c domain.Credentials) (*domain.Company, error) { return d.api.CreateCompany(ctx, c, in) },
		func(c *domain.Company) int64 { return c.ID })
}

func (d *DirectoryService) UpdateCompany(ctx context.Context, sess *domain.Session, id int64, in ports.CompanyInput) (*domain.Company, error) {
	return mutate(ctx, d, sess, domain.ResourceCompany, domain.ActionUpdate, id,
		func(c domain.Credentials) (*domain.Company, error) { return d.api.UpdateCompany(ctx, c, id, in) },
		func(c *domain.Company) int64 { return c.ID })
}

func (d *DirectoryService) DeleteCompany(ctx context.Context, sess *domain.Session, id int64) error {
	_, err := mutate(ctx, d, sess, domain.ResourceCompany, domain.ActionDelete, id,
		func(c domain.Credentials) (struct{}, error) { return struct{}{}, d.api.DeleteCompany(ctx, c, id) }, nil)
	return err
}

func (d *DirectoryService) ListCustomers(ctx context.Context, sess *domain.Session) ([]domain.Customer, error) {
	out, err := d.api.ListCustomers(ctx, sess.Credentials)
	if err != nil {
		return nil, fmt.Errorf("list customers: %w", err)
	}
	return out, nil
}

func (d *DirectoryService) CreateCustomer(ctx context.Context, sess *domain.Session, in ports.CustomerInput) (*domain.Customer, error) {
	return mutate(ctx, d, sess, domain.ResourceCustomer, domain.ActionCreate, 0,
		func(c domain.Credentials) (*domain.Customer, error) { return d.api.CreateCustomer(ctx, c, in) },
		func(c *domain.Customer) int64 { return c.ID })
}

func (d *DirectoryService) UpdateCustomer(ctx context.Context, sess *domain.Session, id int64, in ports.CustomerPatch) (*domain.Customer, error) {
	return mutate(ctx, d, sess, domain.ResourceCustomer, domain.ActionUpdate, id,
		func(c domain.Credentials) (*domain.Customer, error) { return d.api.UpdateCustomer(ctx, c, id, in) },
		func(c *domain.Customer) int64 { return c.ID })
}

func (d *DirectoryService) DeleteCustomer(ctx context.Context, sess *domain.Session, id int64) error {
	_, err := mutate(ctx, d, sess, domain.ResourceCustomer, domain.ActionDelete, id,
		func(c domain.Credentials) (struct{}, error) { return struct{}{}, d.api.DeleteCustomer(ctx, c, id) }, nil)
	return err
}

func (d *DirectoryService) ListAccountants(ctx context.Context, sess *domain.Session) ([]domain.Accountant, error) {
	out, err := d.api.ListAccountants(ctx, sess.Credentials)
	if err != nil {
		return nil, fmt.Errorf("list accountants: %w", err)
	}
	return out, nil
}

func (d *DirectoryService) CreateAccountant(ctx context.Context, sess *domain.Session, in ports.AccountantInput) (*domain.Accountant, error) {
	return mutate(ctx, d, sess, domain.ResourceAccountant, domain.ActionCreate, 0,
		func(c domain.Credentials) (*domain.Accountant, error) { return d.api.CreateAccountant(ctx, c, in) },
		func(a *domain.Accountant) int64 { return a.ID })
}

func (d *DirectoryService) UpdateAccountant(ctx context.Context, sess *domain.Session, id int64, in ports.AccountantInput) (*domain.Accountant, error) {
	return mutate(ctx, d, sess, domain.ResourceAccountant, domain.ActionUpdate, id,
		func(c domain.Credentials) (*domain.Accountant, error) { return d.api.UpdateAccountant(ctx, c, id, in) },
		func(a *domain.Accountant) int64 { return a.ID })
}

func (d *DirectoryService) DeleteAccountant(ctx context.Context, sess *domain.Session, id int64) error {
	_, err := mutate(ctx, d, sess, domain.ResourceAccountant, domain.ActionDelete, id,
		func(c domain.Credentials) (struct{}, error) { return struct{}{}, d.api.DeleteAccountant(ctx, c, id) }, nil)
	return err
}

// Retrain starts model retraining, optionally limited to one company, and returns the
// backend's message.
func (d *DirectoryService) Retrain(ctx context.Context, sess *domain.Session, company string) (string, error) {
	company = strings.TrimSpace(company)
	creds, err := d.creds.Credentials(ctx, sess)
	var msg string
	if err == nil {
		msg, err = d.model.Retrain(ctx, creds, company)
	}
	if err != nil {
		me := domain.NewMutationError(domain.ResourceModel, domain.ActionRetrain, err)
		d.activity.Failed(ctx, sess, me, "", company)
		return "", me
	}
	if msg == "" {
		msg = "Retraining started."
	}
	d.activity.Succeeded(ctx, sess, domain.ResourceModel, domain.ActionRetrain, "", company, msg)
	return msg, nil
}

func mutate[T any](
	ctx context.Context,
	d *DirectoryService,
	sess *domain.Session,
	resource domain.Resource,
	action domain.Action,
	id int64,
	call func(domain.Credentials) (T, error),
	idOf func(T) int64,
) (T, error) {
	var zero T
	resourceID := ""
	if id > 0 {
		resourceID = strconv.FormatInt(id, 10)
	}

	creds, err := d.creds.Credentials(ctx, sess)
	var out T
	if err == nil {
		out, err = call(creds)
	}
	if err != nil {
		me := domain.NewMutationError(resource, action, err)
		d.activity.Failed(ctx, sess, me, resourceID, "")
		d.log.Info().Err(err).Str("resource", string(resource)).Str("action", string(action)).Msg("mutation rejected")
		return zero, me
	}

	if idOf != nil {
		resourceID = strconv.FormatInt(idOf(out), 10)
	}
	d.activity.Succeeded(ctx, sess, resource, action, resourceID, "", resource.SuccessMessage(action))
	return out, nil
}
