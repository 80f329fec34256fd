package projections

import (
	"flipfit/internal/domain/action"
	"flipfit/internal/domain/session"
)

// GetDashboardQuery carries input for the dashboard projection.
type GetDashboardQuery struct {
	Session session.Session
}

// DashboardResult carries the output of the dashboard projection.
type DashboardResult struct {
	Role     session.Role `json:"role"`
	Slug     string       `json:"slug"`
	FullName string       `json:"fullName"`
	Actions  []ActionView `json:"actions"`
	HelpMD   string       `json:"help"` // markdown, rendered by the view
}

// ActionView is one dashboard button and, for actions that take input, its form.
type ActionView struct {
	ID       action.ID   `json:"id"`
	Label    string      `json:"label"`
	Title    string      `json:"title"`
	Href     string      `json:"href"` // GET target for read-only actions, form page otherwise
	ReadOnly bool        `json:"readOnly"`
	Inputs   []InputView `json:"inputs,omitempty"`
}

// InputView is one form field.
type InputView struct {
	Name     string `json:"name"`
	Label    string `json:"label"`
	Type     string `json:"type"` // HTML input type
	Required bool   `json:"required"`
	Value    string `json:"value,omitempty"`
}

var dashboardHelp = map[session.Role]string{
	session.RoleAdmin: `**Admin tools**

Review pending gym owners and gym centres, then approve them by email or gym ID.
Deleting a user or gym cannot be undone.`,
	session.RoleCustomer: `**Getting started**

1. Browse *View Gym Centers* to find a gym ID.
2. Top up your wallet with *Add Money*.
3. Use *Book a Slot* with the gym ID, slot ID and a date in YYYY-MM-DD form.`,
	session.RoleOwner: `**Managing your centres**

New centres stay hidden from customers until an administrator approves them.
Use *View Bookings* with a gym ID to see who has booked.`,
}

// QueryGetDashboard lists the session role's actions in display order.
// PRE: Session is valid
// POST: Actions follow the catalog order for the role
func QueryGetDashboard(query GetDashboardQuery) DashboardResult {
	role := query.Session.Role
	res := DashboardResult{
		Role:     role,
		Slug:     role.Slug(),
		FullName: query.Session.FullName,
		HelpMD:   dashboardHelp[role],
	}
	for _, spec := range action.ForRole(role) {
		res.Actions = append(res.Actions, NewActionView(spec, nil))
	}
	return res
}

// NewActionView describes spec for the dashboard, pre-filling inputs from values.
func NewActionView(spec action.Spec, values action.Values) ActionView {
	v := ActionView{
		ID:       spec.ID,
		Label:    spec.Label,
		Title:    spec.Title,
		Href:     ActionPath(spec.Role, spec.ID),
		ReadOnly: spec.IsReadOnly(),
	}
	if v.Title == "" {
		v.Title = spec.Label
	}
	for _, p := range spec.Params {
		in := InputView{Name: p.Name, Label: p.Label, Type: inputType(p.Kind), Required: p.Required}
		if p.Kind != action.KindPassword {
			in.Value = values.Get(p.Name)
		}
		v.Inputs = append(v.Inputs, in)
	}
	return v
}

// ActionPath is the dashboard route that runs an action.
func ActionPath(role session.Role, id action.ID) string {
	return session.DashboardPathFor(role) + "/action/" + string(id)
}

func inputType(k action.Kind) string {
	switch k {
	case action.KindInt:
		return "number"
	case action.KindEmail:
		return "email"
	case action.KindPassword:
		return "password"
	case action.KindDate:
		return "date"
	}
	return "text"
}
