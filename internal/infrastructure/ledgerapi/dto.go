package ledgerapi

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/safeledger/dashboard/internal/core/domain"
)

// flexInt decodes an integer sent either as a JSON number or as a numeric string.
type flexInt int64

func (f *flexInt) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		*f = 0
		return nil
	}
	s := string(b)
	if len(b) > 0 && b[0] == '"' {
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
	}
	n, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil {
		return fmt.Errorf("not an integer: %s", b)
	}
	*f = flexInt(n)
	return nil
}

// flexString keeps the textual form of a JSON string or number. Decimal amounts
// arrive as strings from the backend but numbers are accepted too.
type flexString string

func (f *flexString) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	switch {
	case bytes.Equal(b, []byte("null")):
		*f = ""
	case len(b) > 0 && b[0] == '"':
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*f = flexString(s)
	default:
		*f = flexString(b)
	}
	return nil
}

type userDetailsResponse struct {
	IsAuthenticated bool     `json:"isAuthenticated"`
	User            *userDTO `json:"user"`
}

type userDTO struct {
	Username  string       `json:"username"`
	Email     string       `json:"email"`
	Role      string       `json:"role"`
	Companies []companyDTO `json:"companies"`
}

func (u userDTO) toDomain() (*domain.User, error) {
	if !domain.ValidRole(u.Role) {
		return nil, fmt.Errorf("%w: unknown role %q", domain.ErrMalformedResponse, u.Role)
	}
	out := &domain.User{
		Username:  u.Username,
		Email:     u.Email,
		Role:      u.Role,
		Companies: make([]domain.Company, 0, len(u.Companies)),
	}
	for _, c := range u.Companies {
		out.Companies = append(out.Companies, c.toDomain())
	}
	return out, nil
}

type companyDTO struct {
	ID          flexInt `json:"id"`
	CompanyName string  `json:"companyName"`
}

func (c companyDTO) toDomain() domain.Company {
	return domain.Company{ID: int64(c.ID), CompanyName: c.CompanyName}
}

type postingDTO struct {
	ID                  flexInt    `json:"id"`
	Company             flexInt    `json:"company"`
	AccountHandleNumber flexInt    `json:"accountHandleNumber"`
	PostAmount          flexString `json:"postAmount"`
	PostCurrency        string     `json:"postCurrency"`
	PostDate            string     `json:"postDate"`
	PostDescription     string     `json:"postDescription"`
	IsSuspicious        *bool      `json:"is_suspicious"`
}

func (p postingDTO) toDomain() (domain.Posting, error) {
	if p.ID <= 0 {
		return domain.Posting{}, fmt.Errorf("missing id")
	}
	suspicious := p.IsSuspicious != nil && *p.IsSuspicious
	return domain.NewPosting(int64(p.ID), int64(p.Company), int64(p.AccountHandleNumber),
		string(p.PostAmount), p.PostCurrency, p.PostDate, p.PostDescription, suspicious), nil
}

type postingRequest struct {
	Company             *int64 `json:"company,omitempty"`
	AccountHandleNumber int64  `json:"accountHandleNumber"`
	PostAmount          string `json:"postAmount"`
	PostCurrency        string `json:"postCurrency"`
	PostDate            string `json:"postDate"`
	PostDescription     string `json:"postDescription"`
}

type customerDTO struct {
	ID        flexInt `json:"id"`
	FirstName string  `json:"first_name"`
	LastName  string  `json:"last_name"`
	Username  string  `json:"username"`
	Email     string  `json:"email"`
	Company   flexInt `json:"company"`
}

func (c customerDTO) toDomain() domain.Customer {
	return domain.Customer{
		ID:        int64(c.ID),
		FirstName: c.FirstName,
		LastName:  c.LastName,
		Username:  c.Username,
		Email:     c.Email,
		Company:   int64(c.Company),
	}
}

type customerRequest struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Username  string `json:"username"`
	Email     string `json:"email"`
	Password  string `json:"password,omitempty"`
	Company   int64  `json:"company"`
}

type customerPatchRequest struct {
	FirstName *string `json:"first_name,omitempty"`
	LastName  *string `json:"last_name,omitempty"`
	Username  *string `json:"username,omitempty"`
	Email     *string `json:"email,omitempty"`
	Password  *string `json:"password,omitempty"`
	Company   *int64  `json:"company,omitempty"`
}

type accountantDTO struct {
	ID        flexInt   `json:"id"`
	FirstName string    `json:"first_name"`
	LastName  string    `json:"last_name"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	Companies []flexInt `json:"companies"`
}

func (a accountantDTO) toDomain() domain.Accountant {
	out := domain.Accountant{
		ID:        int64(a.ID),
		FirstName: a.FirstName,
		LastName:  a.LastName,
		Username:  a.Username,
		Email:     a.Email,
		Companies: make([]int64, 0, len(a.Companies)),
	}
	for _, c := range a.Companies {
		out.Companies = append(out.Companies, int64(c))
	}
	return out
}

type accountantRequest struct {
	FirstName string  `json:"first_name"`
	LastName  string  `json:"last_name"`
	Username  string  `json:"username"`
	Email     string  `json:"email"`
	Password  string  `json:"password,omitempty"`
	Companies []int64 `json:"companies"`
}
