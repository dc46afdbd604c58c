// Package navigation computes what a role may see in the dashboard chrome. It is a pure
// function of the role string and the resolved user; it never consults the network.
package navigation

import "github.com/safeledger/dashboard/internal/core/domain"

// Route is one entry of the side menu.
type Route struct {
	Section string `json:"section"`
	Title   string `json:"title"`
	Path    string `json:"path"`
	Icon    string `json:"icon"`
}

var (
	baseRoutes = []Route{
		{Section: "Home", Title: "Dashboard", Path: "/", Icon: "home"},
		{Section: "Data", Title: "Postings", Path: "/postings", Icon: "post_add"},
		{Section: "Graphs", Title: "Line Chart", Path: "/linechart", Icon: "timeline"},
		{Section: "Graphs", Title: "Bar Chart", Path: "/barchart", Icon: "bar_chart"},
		{Section: "Graphs", Title: "Pie Chart", Path: "/piechart", Icon: "pie_chart"},
	}
	managementRoutes = []Route{
		{Section: "Administration", Title: "Company Management", Path: "/companies/new", Icon: "business"},
		{Section: "Administration", Title: "Customer Management", Path: "/customers/new", Icon: "person"},
		{Section: "Administration", Title: "Retrain Model", Path: "/retrain", Icon: "model_training"},
	}
	superuserRoutes = []Route{
		{Section: "Administration", Title: "Accountant Management", Path: "/accountants/new", Icon: "person"},
	}
)

// VisibleRoutes returns the ordered menu for role. Unknown roles get the base routes,
// so the result is never empty.
func VisibleRoutes(role string) []Route {
	out := make([]Route, 0, len(baseRoutes)+len(managementRoutes)+len(superuserRoutes))
	out = append(out, baseRoutes...)
	switch role {
	case domain.RoleAccountant:
		out = append(out, managementRoutes...)
	case domain.RoleSuperuser:
		out = append(out, managementRoutes...)
		out = append(out, superuserRoutes...)
	}
	return out
}

// Selector describes the company selector control.
type Selector struct {
	Visible  bool             `json:"visible"`
	Options  []domain.Company `json:"options"`
	Selected string           `json:"selected"`
	Label    string           `json:"label,omitempty"`
}

// CompanySelector shows the selector to accountants and superusers. Customers, and
// users with a single company, get a read-only label instead.
func CompanySelector(user *domain.User, selected string) Selector {
	sel := Selector{Selected: selected, Options: []domain.Company{}}
	if user == nil {
		return sel
	}
	if user.CanSelectCompany() {
		sel.Visible = true
		sel.Options = append(sel.Options, user.Companies...)
	}
	if user.Role == domain.RoleCustomer || len(user.Companies) == 1 {
		sel.Label = "No Company"
		if len(user.Companies) > 0 {
			sel.Label = user.Companies[0].CompanyName
		}
	}
	return sel
}
