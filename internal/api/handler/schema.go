package handler

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/safeledger/dashboard/internal/core/domain"
	"github.com/safeledger/dashboard/internal/core/navigation"
)

// errorResponse is the standard error envelope returned on all 4xx/5xx responses.
type errorResponse struct {
	Error string `json:"error"`
}

// companyRef accepts a company id sent either as a JSON number or a string.
// null and "" both mean no company.
type companyRef string

func (r *companyRef) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		*r = ""
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		*r = companyRef(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("company id must be a number or string")
	}
	if _, err := strconv.ParseInt(n.String(), 10, 64); err != nil {
		return fmt.Errorf("company id must be an integer")
	}
	*r = companyRef(n.String())
	return nil
}

// --- Session ---

type loginRequest struct {
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type companyResponse struct {
	ID          int64  `json:"id"`
	CompanyName string `json:"companyName"`
}

type userResponse struct {
	Username  string            `json:"username"`
	Email     string            `json:"email"`
	Role      string            `json:"role"`
	Companies []companyResponse `json:"companies"`
}

type navigationResponse struct {
	Routes   []navigation.Route  `json:"routes"`
	Selector navigation.Selector `json:"selector"`
}

type sessionResponse struct {
	Authenticated   bool                `json:"authenticated"`
	User            *userResponse       `json:"user,omitempty"`
	SelectedCompany string              `json:"selectedCompany"`
	Navigation      *navigationResponse `json:"navigation,omitempty"`
}

// --- Scope and activity ---

type scopeRequest struct {
	CompanyID companyRef `json:"companyId"`
}

type scopeResponse struct {
	CompanyID string `json:"companyId"`
}

type bannersResponse struct {
	Banners []domain.Banner `json:"banners"`
}

type auditResponse struct {
	Entries []domain.AuditEntry `json:"entries"`
}

// --- Postings ---

type postingResponse struct {
	ID                  int64  `json:"id"`
	Company             int64  `json:"company"`
	AccountHandleNumber int64  `json:"accountHandleNumber"`
	PostAmount          string `json:"postAmount"`
	PostCurrency        string `json:"postCurrency"`
	PostDate            string `json:"postDate"`
	PostDescription     string `json:"postDescription"`
	IsSuspicious        bool   `json:"is_suspicious"`
}

type createPostingRequest struct {
	Company             companyRef `json:"company"`
	AccountHandleNumber int64      `json:"accountHandleNumber" validate:"required,gt=0"`
	PostAmount          string     `json:"postAmount"          validate:"required"`
	PostCurrency        string     `json:"postCurrency"        validate:"required,max=3"`
	PostDate            string     `json:"postDate"            validate:"required"`
	PostDescription     string     `json:"postDescription"`
}

type bulkDeleteRequest struct {
	IDs []int64 `json:"ids" validate:"required,min=1,dive,gt=0"`
}

type mutationResponse struct {
	Message string           `json:"message"`
	Posting *postingResponse `json:"posting,omitempty"`
}

type deleteResponse struct {
	Deleted int `json:"deleted"`
}

// --- Views ---

// viewResponse is the envelope of every data view. Empty views explain themselves
// in message, failed ones in error.
type viewResponse struct {
	Status  string `json:"status"`
	Scope   string `json:"scope"`
	Data    any    `json:"data,omitempty"`
	Message string `json:"message,omitempty"`
	Error   string `json:"error,omitempty"`
}

type monthlyResponse struct {
	Label string `json:"label"`
	Year  int    `json:"year"`
	Month int    `json:"month"`
	Total string `json:"total"`
	Count int    `json:"count"`
}

type accountResponse struct {
	Account int64  `json:"account"`
	Label   string `json:"label"`
	Total   string `json:"total"`
	Count   int    `json:"count"`
}

type statCardResponse struct {
	Label   string `json:"label"`
	Value   string `json:"value"`
	Percent int64  `json:"percent"`
}

type dashboardResponse struct {
	Year        int                `json:"year"`
	Cards       []statCardResponse `json:"cards"`
	Monthly     []monthlyResponse  `json:"monthly"`
	TopAccounts []accountResponse  `json:"topAccounts"`
}

// --- Directory ---

type companyRequest struct {
	CompanyName string `json:"companyName" validate:"required,max=255"`
}

type customerRequest struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Username  string `json:"username" validate:"required"`
	Email     string `json:"email"    validate:"required,email"`
	Password  string `json:"password"`
	Company   int64  `json:"company"  validate:"required,gt=0"`
}

// updateCustomerRequest is a partial update; absent fields keep their value.
type updateCustomerRequest struct {
	FirstName *string `json:"first_name"`
	LastName  *string `json:"last_name"`
	Username  *string `json:"username" validate:"omitempty,min=1"`
	Email     *string `json:"email"    validate:"omitempty,email"`
	Password  *string `json:"password"`
	Company   *int64  `json:"company"  validate:"omitempty,gt=0"`
}

type customerResponse struct {
	ID        int64  `json:"id"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Username  string `json:"username"`
	Email     string `json:"email"`
	Company   int64  `json:"company"`
}

type accountantRequest struct {
	FirstName string  `json:"first_name"`
	LastName  string  `json:"last_name"`
	Username  string  `json:"username" validate:"required"`
	Email     string  `json:"email"    validate:"required,email"`
	Password  string  `json:"password"`
	Companies []int64 `json:"companies" validate:"dive,gt=0"`
}

type accountantResponse struct {
	ID        int64   `json:"id"`
	FirstName string  `json:"first_name"`
	LastName  string  `json:"last_name"`
	Username  string  `json:"username"`
	Email     string  `json:"email"`
	Companies []int64 `json:"companies"`
}

type retrainRequest struct {
	CompanyID companyRef `json:"companyId"`
}

type messageResponse struct {
	Message string `json:"message"`
}
