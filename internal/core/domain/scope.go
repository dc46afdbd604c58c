package domain

import "time"

// ScopeSource tells who wrote a scope selection.
type ScopeSource string

const (
	ScopeSourceDefault ScopeSource = "default"
	ScopeSourceUser    ScopeSource = "user"
	ScopeSourceReset   ScopeSource = "reset"
)

// ScopeChange is published after a session's selected company has been persisted.
type ScopeChange struct {
	SessionID string
	Previous  string
	Current   string
	Source    ScopeSource
}

// DefaultScope applies the default company selection policy.
//
//   - customer with exactly one company: that company.
//   - accountant or superuser with no selection and at least one company: the first
//     company in backend order.
//   - otherwise the current selection is kept, including an empty one.
//
// The second return value is false when current must be left untouched.
func DefaultScope(user *User, current string) (string, bool) {
	if user == nil {
		return current, false
	}
	switch {
	case user.Role == RoleCustomer && len(user.Companies) == 1:
		next := user.Companies[0].Key()
		return next, next != current
	case (user.Role == RoleAccountant || user.Role == RoleSuperuser) && current == "" && len(user.Companies) > 0:
		return user.Companies[0].Key(), true
	}
	return current, false
}

// BannerKind distinguishes success and error banners.
type BannerKind string

const (
	BannerSuccess BannerKind = "success"
	BannerError   BannerKind = "error"
)

// Banner is a transient user-facing message that clears itself after a fixed delay.
type Banner struct {
	Kind    BannerKind `json:"kind"`
	Message string     `json:"message"`
}

// Audit outcomes.
const (
	OutcomeSuccess = "success"
	OutcomeFailure = "failure"
)

// AuditEntry records one mutation attempted through the dashboard.
type AuditEntry struct {
	SessionID  string    `json:"session_id" bson:"session_id"`
	Username   string    `json:"username" bson:"username"`
	Role       string    `json:"role" bson:"role"`
	Resource   Resource  `json:"resource" bson:"resource"`
	Action     Action    `json:"action" bson:"action"`
	ResourceID string    `json:"resource_id,omitempty" bson:"resource_id,omitempty"`
	CompanyID  string    `json:"company_id,omitempty" bson:"company_id,omitempty"`
	Outcome    string    `json:"outcome" bson:"outcome"`
	Message    string    `json:"message" bson:"message"`
	At         time.Time `json:"at" bson:"at"`
}

// ViewStatus is the render state of a data view. Loading is the client's concern;
// the server only ever answers with one of these.
type ViewStatus string

const (
	ViewReady ViewStatus = "ready"
	ViewEmpty ViewStatus = "empty"
	ViewError ViewStatus = "error"
)

// View is the envelope every data view is rendered from.
type View[T any] struct {
	Status  ViewStatus
	Scope   string
	Data    T
	Message string
}
