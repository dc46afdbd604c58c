package domain

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
)

var (
	ErrUnauthenticated    = errors.New("not authenticated")
	ErrForbidden          = errors.New("access forbidden")
	ErrNotFound           = errors.New("not found")
	ErrInvalidInput       = errors.New("invalid input")
	ErrScopeLocked        = errors.New("company selection is fixed for this account")
	ErrInvalidScope       = errors.New("invalid company selection")
	ErrScopeSuperseded    = errors.New("company selection changed while loading")
	ErrBackendUnavailable = errors.New("ledger backend unavailable")
	ErrMalformedResponse  = errors.New("malformed ledger backend response")
)

// BackendError is a non-2xx (or redirected) reply from the ledger backend.
// Fields holds the decoded JSON object body, if there was one.
type BackendError struct {
	Status int
	Fields map[string]json.RawMessage
}

func (e *BackendError) Error() string {
	return fmt.Sprintf("ledger backend responded %d %s", e.Status, http.StatusText(e.Status))
}

// Redirected reports whether the backend answered with a redirect.
func (e *BackendError) Redirected() bool {
	return e.Status >= 300 && e.Status < 400
}

// MutationError is a failed create/update/delete carrying the message shown to the user.
type MutationError struct {
	Resource Resource
	Action   Action
	Status   int
	Message  string
	Err      error
}

func (e *MutationError) Error() string { return e.Message }

func (e *MutationError) Unwrap() error { return e.Err }

// NewMutationError resolves the user-facing message for a failed mutation using the
// resource's field precedence.
func NewMutationError(resource Resource, action Action, err error) *MutationError {
	me := &MutationError{
		Resource: resource,
		Action:   action,
		Status:   http.StatusBadGateway,
		Err:      err,
	}
	fallback := resource.Fallback(action)

	var be *BackendError
	if errors.As(err, &be) {
		me.Status = be.Status
		if be.Redirected() {
			me.Status = http.StatusUnauthorized
		}
		me.Message = resource.Precedence().Resolve(be.Fields, fallback)
		return me
	}
	me.Message = fallback
	return me
}
