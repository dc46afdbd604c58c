package domain

import (
	"encoding/json"
	"strings"
)

// Resource names a mutable backend collection.
type Resource string

const (
	ResourceSession    Resource = "session"
	ResourceCompany    Resource = "company"
	ResourceCustomer   Resource = "customer"
	ResourceAccountant Resource = "accountant"
	ResourcePosting    Resource = "posting"
	ResourceModel      Resource = "model"
)

// Action names a mutation kind.
type Action string

const (
	ActionLogin   Action = "login"
	ActionLogout  Action = "logout"
	ActionCreate  Action = "create"
	ActionUpdate  Action = "update"
	ActionDelete  Action = "delete"
	ActionRetrain Action = "retrain"
)

// FieldPrecedence is the order in which backend error fields are consulted.
type FieldPrecedence []string

// The order of each list decides which validation message wins when several
// fields are invalid at once.
var (
	accountantFields = FieldPrecedence{"companies", "first_name", "last_name", "username", "email", "detail"}
	customerFields   = FieldPrecedence{"username", "email", "detail"}
	companyFields    = FieldPrecedence{"companyName", "detail"}
	postingFields    = FieldPrecedence{"error", "company", "accountHandleNumber", "postAmount", "postCurrency", "postDate", "postDescription", "detail"}
	sessionFields    = FieldPrecedence{"error"}
	modelFields      = FieldPrecedence{"detail"}
)

// Precedence returns the error field order for the resource.
func (r Resource) Precedence() FieldPrecedence {
	switch r {
	case ResourceAccountant:
		return accountantFields
	case ResourceCustomer:
		return customerFields
	case ResourceCompany:
		return companyFields
	case ResourcePosting:
		return postingFields
	case ResourceSession:
		return sessionFields
	case ResourceModel:
		return modelFields
	}
	return FieldPrecedence{"detail"}
}

// Fallback is the generic message used when no field of the precedence matched.
func (r Resource) Fallback(action Action) string {
	switch r {
	case ResourceSession:
		if action == ActionLogout {
			return "Logout failed"
		}
		return "Login failed"
	case ResourceModel:
		return "Retrain failed"
	case ResourcePosting:
		return "Failed to " + string(action) + " posting."
	}
	return "Failed to " + string(action) + " " + string(r)
}

// SuccessMessage is the banner text of a successful mutation.
func (r Resource) SuccessMessage(action Action) string {
	var verb string
	switch action {
	case ActionCreate:
		verb = "created"
	case ActionUpdate:
		verb = "updated"
	case ActionDelete:
		verb = "deleted"
	default:
		verb = string(action) + " done"
	}
	name := string(r)
	return strings.ToUpper(name[:1]) + name[1:] + " " + verb + " successfully!"
}

// Resolve returns the first message found among fields in precedence order.
// A list value yields its first string element; a string value yields itself.
func (p FieldPrecedence) Resolve(fields map[string]json.RawMessage, fallback string) string {
	for _, name := range p {
		raw, ok := fields[name]
		if !ok {
			continue
		}
		if msg := firstMessage(raw); msg != "" {
			return msg
		}
	}
	return fallback
}

func firstMessage(raw json.RawMessage) string {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	var list []json.RawMessage
	if err := json.Unmarshal(raw, &list); err == nil && len(list) > 0 {
		return firstMessage(list[0])
	}
	return ""
}
