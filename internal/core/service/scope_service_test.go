package service

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/safeledger/dashboard/internal/core/domain"
)

func TestScopeService_ApplyDefault_CustomerSingleCompany(t *testing.T) {
	repo := newMemScopes()
	svc := NewScopeService(repo, zerolog.Nop())
	var changes []domain.ScopeChange
	svc.Subscribe(func(c domain.ScopeChange) { changes = append(changes, c) })

	sess := authedSession("s1", domain.RoleCustomer, domain.Company{ID: 7, CompanyName: "Acme"})
	got, err := svc.ApplyDefault(context.Background(), sess)
	require.NoError(t, err)
	assert.Equal(t, "7", got)
	assert.Equal(t, "7", repo.m["s1"])
	require.Len(t, changes, 1)
	assert.Equal(t, domain.ScopeChange{SessionID: "s1", Previous: "", Current: "7", Source: domain.ScopeSourceDefault}, changes[0])

	// Already selected: no second write.
	_, err = svc.ApplyDefault(context.Background(), sess)
	require.NoError(t, err)
	assert.Len(t, changes, 1)
}

func TestScopeService_ApplyDefault_AccountantKeepsExistingSelection(t *testing.T) {
	repo := newMemScopes()
	repo.m["s1"] = "9"
	svc := NewScopeService(repo, zerolog.Nop())

	sess := authedSession("s1", domain.RoleAccountant, domain.Company{ID: 3}, domain.Company{ID: 9})
	got, err := svc.ApplyDefault(context.Background(), sess)
	require.NoError(t, err)
	assert.Equal(t, "9", got)
}

func TestScopeService_ApplyDefault_AccountantPicksFirst(t *testing.T) {
	svc := NewScopeService(newMemScopes(), zerolog.Nop())
	sess := authedSession("s1", domain.RoleAccountant, domain.Company{ID: 3}, domain.Company{ID: 9})

	got, err := svc.ApplyDefault(context.Background(), sess)
	require.NoError(t, err)
	assert.Equal(t, "3", got)
	assert.Equal(t, "3", svc.Selected(context.Background(), "s1"))
}

func TestScopeService_Select_CustomerIsLocked(t *testing.T) {
	svc := NewScopeService(newMemScopes(), zerolog.Nop())
	sess := authedSession("s1", domain.RoleCustomer, domain.Company{ID: 7})

	_, err := svc.Select(context.Background(), sess, "8")
	assert.ErrorIs(t, err, domain.ErrScopeLocked)
}

func TestScopeService_Select_NotifiesWithPrevious(t *testing.T) {
	repo := newMemScopes()
	repo.m["s1"] = "3"
	svc := NewScopeService(repo, zerolog.Nop())
	var got domain.ScopeChange
	svc.Subscribe(func(c domain.ScopeChange) { got = c })

	sess := authedSession("s1", domain.RoleAccountant, domain.Company{ID: 3}, domain.Company{ID: 9})
	id, err := svc.Select(context.Background(), sess, " 09 ")
	require.NoError(t, err)
	assert.Equal(t, "9", id)
	assert.Equal(t, domain.ScopeChange{SessionID: "s1", Previous: "3", Current: "9", Source: domain.ScopeSourceUser}, got)
}

func TestScopeService_Select_Validation(t *testing.T) {
	svc := NewScopeService(newMemScopes(), zerolog.Nop())
	accountant := authedSession("s1", domain.RoleAccountant, domain.Company{ID: 3})

	for _, in := range []string{"abc", "-1", "0", ""} {
		_, err := svc.Select(context.Background(), accountant, in)
		assert.ErrorIs(t, err, domain.ErrInvalidScope, "input %q", in)
	}

	superuser := authedSession("s2", domain.RoleSuperuser)
	id, err := svc.Select(context.Background(), superuser, "")
	require.NoError(t, err)
	assert.Empty(t, id)
}

func TestScopeService_Select_Unauthenticated(t *testing.T) {
	svc := NewScopeService(newMemScopes(), zerolog.Nop())
	_, err := svc.Select(context.Background(), &domain.Session{ID: "s1", State: domain.SessionUnauthenticated}, "3")
	assert.ErrorIs(t, err, domain.ErrUnauthenticated)
}

func TestScopeService_FailedWriteDoesNotNotify(t *testing.T) {
	repo := newMemScopes()
	repo.setErr = errors.New("redis down")
	svc := NewScopeService(repo, zerolog.Nop())
	notified := false
	svc.Subscribe(func(domain.ScopeChange) { notified = true })

	_, err := svc.Select(context.Background(), authedSession("s1", domain.RoleSuperuser), "4")
	require.Error(t, err)
	assert.False(t, notified)
}

func TestScopeService_SelectedReadsFailureAsEmpty(t *testing.T) {
	repo := newMemScopes()
	repo.getErr = errors.New("redis down")
	svc := NewScopeService(repo, zerolog.Nop())
	assert.Empty(t, svc.Selected(context.Background(), "s1"))
}

func TestScopeService_Unsubscribe(t *testing.T) {
	svc := NewScopeService(newMemScopes(), zerolog.Nop())
	calls := 0
	unsubscribe := svc.Subscribe(func(domain.ScopeChange) { calls++ })

	require.NoError(t, svc.Reset(context.Background(), "s1"))
	unsubscribe()
	unsubscribe()
	require.NoError(t, svc.Reset(context.Background(), "s1"))
	assert.Equal(t, 1, calls)
}
