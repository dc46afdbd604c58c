package service

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/safeledger/dashboard/internal/core/domain"
	"github.com/safeledger/dashboard/internal/core/ports"
)

func newDirectorySvc(api *stubDirectoryAPI, model *stubModelAPI, activity *stubActivity) *DirectoryService {
	return NewDirectoryService(api, model, stubCreds{}, activity, zerolog.Nop())
}

func TestDirectoryService_CreateCompany(t *testing.T) {
	api := &stubDirectoryAPI{}
	activity := &stubActivity{}
	svc := newDirectorySvc(api, &stubModelAPI{}, activity)

	c, err := svc.CreateCompany(context.Background(), authedSession("s1", domain.RoleSuperuser), ports.CompanyInput{CompanyName: "Acme"})
	require.NoError(t, err)
	assert.Equal(t, int64(11), c.ID)
	assert.Equal(t, []string{"Company created successfully!"}, activity.succeeded)
}

func TestDirectoryService_AccountantErrorPrecedence(t *testing.T) {
	api := &stubDirectoryAPI{err: &domain.BackendError{
		Status: http.StatusBadRequest,
		Fields: map[string]json.RawMessage{
			"email":      json.RawMessage(`["Enter a valid email address."]`),
			"first_name": json.RawMessage(`["This field may not be blank."]`),
		},
	}}
	activity := &stubActivity{}
	svc := newDirectorySvc(api, &stubModelAPI{}, activity)

	_, err := svc.CreateAccountant(context.Background(), authedSession("s1", domain.RoleSuperuser), ports.AccountantInput{})
	var me *domain.MutationError
	require.ErrorAs(t, err, &me)
	assert.Equal(t, "This field may not be blank.", me.Message)
	assert.Equal(t, http.StatusBadRequest, me.Status)
	require.Len(t, activity.failed, 1)
	assert.Empty(t, activity.succeeded)
}

func TestDirectoryService_DeleteCustomerFallback(t *testing.T) {
	api := &stubDirectoryAPI{err: domain.ErrBackendUnavailable}
	svc := newDirectorySvc(api, &stubModelAPI{}, &stubActivity{})

	err := svc.DeleteCustomer(context.Background(), authedSession("s1", domain.RoleAccountant), 5)
	var me *domain.MutationError
	require.ErrorAs(t, err, &me)
	assert.Equal(t, "Failed to delete customer", me.Message)
	assert.Equal(t, http.StatusBadGateway, me.Status)
}

func TestDirectoryService_CredentialFailureIsMutationError(t *testing.T) {
	svc := NewDirectoryService(&stubDirectoryAPI{}, &stubModelAPI{}, stubCreds{err: errors.New("csrf")}, &stubActivity{}, zerolog.Nop())

	_, err := svc.UpdateCompany(context.Background(), authedSession("s1", domain.RoleSuperuser), 3, ports.CompanyInput{CompanyName: "x"})
	var me *domain.MutationError
	require.ErrorAs(t, err, &me)
	assert.Equal(t, "Failed to update company", me.Message)
}

func TestDirectoryService_ListPassesBackendErrorThrough(t *testing.T) {
	be := &domain.BackendError{Status: http.StatusForbidden}
	svc := newDirectorySvc(&stubDirectoryAPI{err: be}, &stubModelAPI{}, &stubActivity{})

	_, err := svc.ListCompanies(context.Background(), authedSession("s1", domain.RoleCustomer))
	assert.ErrorIs(t, err, be)
}

func TestDirectoryService_Retrain(t *testing.T) {
	model := &stubModelAPI{msg: "Model retraining started for company 3."}
	activity := &stubActivity{}
	svc := newDirectorySvc(&stubDirectoryAPI{}, model, activity)

	msg, err := svc.Retrain(context.Background(), authedSession("s1", domain.RoleAccountant), " 3 ")
	require.NoError(t, err)
	assert.Equal(t, "Model retraining started for company 3.", msg)
	assert.Equal(t, "3", model.company)
	assert.Equal(t, []string{msg}, activity.succeeded)
}

func TestDirectoryService_RetrainFailure(t *testing.T) {
	model := &stubModelAPI{err: &domain.BackendError{Status: http.StatusForbidden, Fields: map[string]json.RawMessage{
		"detail": json.RawMessage(`"You do not have permission to perform this action."`),
	}}}
	svc := newDirectorySvc(&stubDirectoryAPI{}, model, &stubActivity{})

	_, err := svc.Retrain(context.Background(), authedSession("s1", domain.RoleCustomer), "")
	var me *domain.MutationError
	require.ErrorAs(t, err, &me)
	assert.Equal(t, "You do not have permission to perform this action.", me.Message)
}
