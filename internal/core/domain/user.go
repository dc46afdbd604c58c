package domain

import (
	"strconv"
	"time"
)

const (
	RoleCustomer   = "customer"
	RoleAccountant = "accountant"
	RoleSuperuser  = "superuser"
)

// ValidRole reports whether role is one the backend can assign.
func ValidRole(role string) bool {
	switch role {
	case RoleCustomer, RoleAccountant, RoleSuperuser:
		return true
	}
	return false
}

// Company is the read-only copy of a backend company held for a session.
type Company struct {
	ID          int64  `json:"id"`
	CompanyName string `json:"companyName"`
}

// Key returns the company id in the string form used for scope selection.
func (c Company) Key() string {
	return strconv.FormatInt(c.ID, 10)
}

// User is produced once per session by the session resolver and never mutated afterwards.
type User struct {
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	Role      string    `json:"role"`
	Companies []Company `json:"companies"`
}

// CanSelectCompany reports whether the company selector is shown to this user.
func (u *User) CanSelectCompany() bool {
	return u != nil && (u.Role == RoleAccountant || u.Role == RoleSuperuser)
}

// Credentials are the backend cookies carried on behalf of a dashboard session.
type Credentials struct {
	SessionID string `json:"session_id"`
	CSRFToken string `json:"csrf_token"`
}

// SessionState is the resolver state of a dashboard session.
type SessionState string

const (
	SessionUnknown         SessionState = "unknown"
	SessionAuthenticated   SessionState = "authenticated"
	SessionUnauthenticated SessionState = "unauthenticated"
)

// Session is the server-side record behind a dashboard session cookie.
type Session struct {
	ID          string       `json:"id"`
	Credentials Credentials  `json:"credentials"`
	State       SessionState `json:"state"`
	User        *User        `json:"user,omitempty"`
	CreatedAt   time.Time    `json:"created_at"`
	ResolvedAt  time.Time    `json:"resolved_at,omitempty"`
}

// Authenticated reports whether the last resolution succeeded.
func (s *Session) Authenticated() bool {
	return s != nil && s.State == SessionAuthenticated && s.User != nil
}

// Role returns the resolved role, or "" when the session is not authenticated.
func (s *Session) Role() string {
	if !s.Authenticated() {
		return ""
	}
	return s.User.Role
}

// Resolution is the outcome of resolving a session against the backend.
type Resolution struct {
	State           SessionState
	User            *User
	SelectedCompany string
}

// Customer is a backend customer account bound to a single company.
type Customer struct {
	ID        int64
	FirstName string
	LastName  string
	Username  string
	Email     string
	Company   int64
}

// Accountant is a backend accountant account bound to any number of companies.
type Accountant struct {
	ID        int64
	FirstName string
	LastName  string
	Username  string
	Email     string
	Companies []int64
}
