package handler

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/safeledger/dashboard/internal/core/aggregate"
	"github.com/safeledger/dashboard/internal/core/domain"
	"github.com/safeledger/dashboard/internal/core/navigation"
	"github.com/safeledger/dashboard/internal/core/ports"
)

// --- Request → Service input ---

func toCreatePostingInput(req createPostingRequest) (ports.CreatePostingInput, error) {
	amount := domain.ParseAmount(req.PostAmount)
	if !amount.Valid {
		return ports.CreatePostingInput{}, fmt.Errorf("%w: postAmount must be a decimal number", domain.ErrInvalidInput)
	}
	date, err := domain.ParsePostDate(req.PostDate)
	if err != nil {
		return ports.CreatePostingInput{}, fmt.Errorf("%w: postDate must be YYYY-MM-DD or DD-MM-YYYY", domain.ErrInvalidInput)
	}
	company := strings.TrimSpace(string(req.Company))
	if company != "" {
		if id, err := strconv.ParseInt(company, 10, 64); err != nil || id <= 0 {
			return ports.CreatePostingInput{}, fmt.Errorf("%w: company must be a positive integer", domain.ErrInvalidInput)
		}
	}
	return ports.CreatePostingInput{
		Company:             company,
		AccountHandleNumber: req.AccountHandleNumber,
		PostAmount:          amount.Decimal,
		PostCurrency:        strings.ToUpper(strings.TrimSpace(req.PostCurrency)),
		PostDate:            date,
		PostDescription:     req.PostDescription,
	}, nil
}

func toCustomerInput(req customerRequest) ports.CustomerInput {
	return ports.CustomerInput{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Username:  req.Username,
		Email:     req.Email,
		Password:  req.Password,
		Company:   req.Company,
	}
}

func toCustomerPatch(req updateCustomerRequest) ports.CustomerPatch {
	return ports.CustomerPatch{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Username:  req.Username,
		Email:     req.Email,
		Password:  req.Password,
		Company:   req.Company,
	}
}

func toAccountantInput(req accountantRequest) ports.AccountantInput {
	return ports.AccountantInput{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Username:  req.Username,
		Email:     req.Email,
		Password:  req.Password,
		Companies: req.Companies,
	}
}

// --- Domain → Response ---

func toCompanyResponses(in []domain.Company) []companyResponse {
	out := make([]companyResponse, 0, len(in))
	for _, c := range in {
		out = append(out, companyResponse{ID: c.ID, CompanyName: c.CompanyName})
	}
	return out
}

func toSessionResponse(res domain.Resolution) sessionResponse {
	if res.State != domain.SessionAuthenticated || res.User == nil {
		return sessionResponse{}
	}
	return sessionResponse{
		Authenticated: true,
		User: &userResponse{
			Username:  res.User.Username,
			Email:     res.User.Email,
			Role:      res.User.Role,
			Companies: toCompanyResponses(res.User.Companies),
		},
		SelectedCompany: res.SelectedCompany,
		Navigation:      toNavigationResponse(res.User, res.SelectedCompany),
	}
}

func toNavigationResponse(user *domain.User, selected string) *navigationResponse {
	return &navigationResponse{
		Routes:   navigation.VisibleRoutes(user.Role),
		Selector: navigation.CompanySelector(user, selected),
	}
}

func toPostingResponse(p domain.Posting) postingResponse {
	amount := p.RawAmount
	if p.HasAmount() {
		amount = p.PostAmount.Decimal.String()
	}
	return postingResponse{
		ID:                  p.ID,
		Company:             p.Company,
		AccountHandleNumber: p.AccountHandleNumber,
		PostAmount:          amount,
		PostCurrency:        p.PostCurrency,
		PostDate:            p.DisplayDate(),
		PostDescription:     p.PostDescription,
		IsSuspicious:        p.IsSuspicious,
	}
}

func toPostingResponses(rows []domain.Posting) []postingResponse {
	out := make([]postingResponse, 0, len(rows))
	for _, p := range rows {
		out = append(out, toPostingResponse(p))
	}
	return out
}

func toMonthlyResponses(in []aggregate.MonthlySum) []monthlyResponse {
	out := make([]monthlyResponse, 0, len(in))
	for _, m := range in {
		out = append(out, monthlyResponse{
			Label: m.Label,
			Year:  m.Year,
			Month: int(m.Month),
			Total: m.Total.StringFixed(2),
			Count: m.Count,
		})
	}
	return out
}

func toAccountResponses(in []aggregate.AccountSum) []accountResponse {
	out := make([]accountResponse, 0, len(in))
	for _, a := range in {
		out = append(out, accountResponse{
			Account: a.Account,
			Label:   a.Label,
			Total:   a.Total.StringFixed(2),
			Count:   a.Count,
		})
	}
	return out
}

func toDashboardResponse(s aggregate.Summary) dashboardResponse {
	cards := make([]statCardResponse, 0, len(s.Cards))
	for _, c := range s.Cards {
		cards = append(cards, statCardResponse{Label: c.Label, Value: c.Value, Percent: c.Percent})
	}
	return dashboardResponse{
		Year:        s.Year,
		Cards:       cards,
		Monthly:     toMonthlyResponses(s.Monthly),
		TopAccounts: toAccountResponses(s.TopAccounts),
	}
}

// toViewResponse renders a view envelope; data is only attached to ready views.
func toViewResponse[T any](v domain.View[T], data func(T) any) viewResponse {
	resp := viewResponse{Status: string(v.Status), Scope: v.Scope}
	switch v.Status {
	case domain.ViewReady:
		resp.Data = data(v.Data)
	case domain.ViewError:
		resp.Error = v.Message
	default:
		resp.Message = v.Message
	}
	return resp
}

func toCustomerResponse(c domain.Customer) customerResponse {
	return customerResponse{
		ID:        c.ID,
		FirstName: c.FirstName,
		LastName:  c.LastName,
		Username:  c.Username,
		Email:     c.Email,
		Company:   c.Company,
	}
}

func toAccountantResponse(a domain.Accountant) accountantResponse {
	companies := a.Companies
	if companies == nil {
		companies = []int64{}
	}
	return accountantResponse{
		ID:        a.ID,
		FirstName: a.FirstName,
		LastName:  a.LastName,
		Username:  a.Username,
		Email:     a.Email,
		Companies: companies,
	}
}

func exportFilename(ext string, now time.Time) string {
	return fmt.Sprintf("postings-%s.%s", now.Format("20060102-150405"), ext)
}
