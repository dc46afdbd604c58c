package service

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/safeledger/dashboard/internal/core/aggregate"
	"github.com/safeledger/dashboard/internal/core/domain"
)

func newDashboardSvc(api *stubPostingAPI) *DashboardService {
	postings := NewPostingService(api, stubCreds{}, &fixedScope{id: "7"}, &stubActivity{}, 0, zerolog.Nop())
	svc := NewDashboardService(postings, 0)
	svc.now = func() time.Time { return time.Date(2023, 6, 1, 0, 0, 0, 0, time.UTC) }
	return svc
}

func scenarioRows() []domain.Posting {
	return []domain.Posting{
		domain.NewPosting(1, 7, 4000, "100", "NOK", "01-01-2023", "", false),
		domain.NewPosting(2, 7, 4000, "50", "NOK", "15-01-2023", "", true),
		domain.NewPosting(3, 7, 5000, "10", "NOK", "01-02-2023", "", false),
	}
}

func TestDashboardService_LineScenario(t *testing.T) {
	api := newStubPostingAPI()
	api.rows["7"] = scenarioRows()
	svc := newDashboardSvc(api)

	view, err := svc.Line(context.Background(), authedSession("s1", domain.RoleCustomer), "7")
	require.NoError(t, err)
	assert.Equal(t, domain.ViewReady, view.Status)
	assert.Equal(t, "7", view.Scope)
	require.Len(t, view.Data, 2)
	assert.Equal(t, "01-2023", view.Data[0].Label)
	assert.Equal(t, "150", view.Data[0].Total.String())
	assert.Equal(t, "02-2023", view.Data[1].Label)
	assert.Equal(t, "10", view.Data[1].Total.String())
}

func TestDashboardService_NoCompanySelected(t *testing.T) {
	svc := newDashboardSvc(newStubPostingAPI())

	view, err := svc.Pie(context.Background(), authedSession("s1", domain.RoleAccountant), "")
	require.NoError(t, err)
	assert.Equal(t, domain.ViewEmpty, view.Status)
	assert.Equal(t, MessageNoCompany, view.Message)
}

func TestDashboardService_SuperuserUnscoped(t *testing.T) {
	api := newStubPostingAPI()
	api.rows[""] = scenarioRows()
	svc := newDashboardSvc(api)

	view, err := svc.Pie(context.Background(), authedSession("s1", domain.RoleSuperuser), "")
	require.NoError(t, err)
	assert.Equal(t, domain.ViewReady, view.Status)
	require.Len(t, view.Data, 2)
	assert.Equal(t, int64(4000), view.Data[0].Account)
}

func TestDashboardService_EmptyIsNotAnError(t *testing.T) {
	svc := newDashboardSvc(newStubPostingAPI())

	view, err := svc.Dashboard(context.Background(), authedSession("s1", domain.RoleCustomer), "7")
	require.NoError(t, err)
	assert.Equal(t, domain.ViewEmpty, view.Status)
	assert.Equal(t, MessageNoData, view.Message)
}

func TestDashboardService_FilteredToNothingIsEmpty(t *testing.T) {
	api := newStubPostingAPI()
	api.rows["7"] = scenarioRows()
	svc := newDashboardSvc(api)

	view, err := svc.Bar(context.Background(), authedSession("s1", domain.RoleCustomer), "7", aggregate.Filter{AccountHandleNumber: "9999"})
	require.NoError(t, err)
	assert.Equal(t, domain.ViewEmpty, view.Status)
}

func TestDashboardService_LoadFailureIsErrorView(t *testing.T) {
	api := newStubPostingAPI()
	api.listErr = domain.ErrBackendUnavailable
	svc := newDashboardSvc(api)

	view, err := svc.Rows(context.Background(), authedSession("s1", domain.RoleCustomer), "7", aggregate.Filter{})
	assert.ErrorIs(t, err, domain.ErrBackendUnavailable)
	assert.Equal(t, domain.ViewError, view.Status)
	assert.Equal(t, "Failed to load postings.", view.Message)
}

func TestDashboardService_Dashboard(t *testing.T) {
	api := newStubPostingAPI()
	api.rows["7"] = scenarioRows()
	svc := newDashboardSvc(api)

	view, err := svc.Dashboard(context.Background(), authedSession("s1", domain.RoleCustomer), "7")
	require.NoError(t, err)
	assert.Equal(t, domain.ViewReady, view.Status)
	assert.Equal(t, 2023, view.Data.Year)
	require.Len(t, view.Data.Cards, 4)
	assert.Equal(t, "160.00", view.Data.Cards[0].Value)
	assert.Equal(t, "1", view.Data.Cards[2].Value)
	assert.Len(t, view.Data.TopAccounts, 2)
}
