package tui

import (
	"context"
	"fmt"
	"strconv"

	"github.com/opsdeck/opsdeck/internal/api"
	"github.com/opsdeck/opsdeck/internal/guard"
	"github.com/opsdeck/opsdeck/internal/model"
	"github.com/opsdeck/opsdeck/internal/resource"
	"github.com/opsdeck/opsdeck/internal/session"
)

// Row is one rendered list entry.
type Row struct {
	ID    string
	Cells []string
}

// Action is a mutation offered on a selected row. Destructive actions
// run through the coordinator's confirmation gate, so Run may block
// until the user answers.
type Action struct {
	Key   string
	Label string
	Run   func(ctx context.Context) error
}

// coordinatorOpts wires the confirmation collaborator when one is
// supplied. A nil confirmer leaves the coordinator's default, which
// approves everything.
func coordinatorOpts[T any](confirm resource.Confirmer) []resource.CoordinatorOption[T] {
	if confirm == nil {
		return nil
	}
	return []resource.CoordinatorOption[T]{resource.WithConfirmer[T](confirm)}
}

// Screen is one browsable resource list. The console model drives every
// screen through this interface and never touches the typed controllers
// directly.
type Screen interface {
	Route() guard.Route
	Title() string
	Columns() []string
	Rows() []Row
	Query() resource.Query
	Pagination() (current, total int)
	ErrorMessage() string
	SortKeys() []string

	Refresh(ctx context.Context)
	SetSort(ctx context.Context, key string)
	SetSearch(ctx context.Context, search string)
	GoToPage(ctx context.Context, n int) bool

	// RoleFilters lists the selectable role filters, or nil when the
	// screen has no role filter.
	RoleFilters() []string
	SetRoleFilter(ctx context.Context, role string)

	Actions(row Row) []Action
}

// TeamScreen lists team members. Admins browse every user with a role
// filter and may remove members; Managers get a read-only view of their
// own reports.
type TeamScreen struct {
	controller  *resource.Controller[model.User]
	coordinator *resource.Coordinator[model.User]
	client      *api.Client
	admin       bool
}

// NewTeamScreen builds the team screen for the signed-in user. The
// fetch endpoint and available actions fork on the session role.
func NewTeamScreen(client *api.Client, sess session.Session, confirm resource.Confirmer, opts ...resource.ControllerOption[model.User]) *TeamScreen {
	admin := sess.User != nil && sess.User.Role == model.RoleAdmin

	fetch := client.ListTeam
	if admin {
		fetch = client.ListUsers
	}

	s := &TeamScreen{
		client: client,
		admin:  admin,
	}
	s.controller = resource.NewController(fetch, "name", opts...)
	s.coordinator = resource.NewCoordinator(s.controller, coordinatorOpts[model.User](confirm)...)
	return s
}

func (s *TeamScreen) Route() guard.Route { return guard.RouteTeam }

func (s *TeamScreen) Title() string {
	if s.admin {
		return "Team"
	}
	return "My Team"
}

func (s *TeamScreen) Columns() []string { return []string{"Name", "Email", "Role"} }

func (s *TeamScreen) Rows() []Row {
	_, page := s.controller.Snapshot()
	rows := make([]Row, 0, len(page.Items))
	for _, u := range page.Items {
		rows = append(rows, Row{
			ID:    u.ID,
			Cells: []string{u.Name, u.Email, string(u.Role)},
		})
	}
	return rows
}

func (s *TeamScreen) Query() resource.Query {
	q, _ := s.controller.Snapshot()
	return q
}

func (s *TeamScreen) Pagination() (int, int) {
	_, page := s.controller.Snapshot()
	return page.CurrentPage, page.TotalPages
}

func (s *TeamScreen) ErrorMessage() string {
	_, page := s.controller.Snapshot()
	return page.Error
}

func (s *TeamScreen) SortKeys() []string { return []string{"name", "email", "role"} }

func (s *TeamScreen) Refresh(ctx context.Context)             { s.controller.Refresh(ctx) }
func (s *TeamScreen) SetSort(ctx context.Context, key string) { s.controller.SetSort(ctx, key) }
func (s *TeamScreen) SetSearch(ctx context.Context, search string) {
	s.controller.SetSearch(ctx, search)
}
func (s *TeamScreen) GoToPage(ctx context.Context, n int) bool { return s.controller.GoToPage(ctx, n) }

func (s *TeamScreen) RoleFilters() []string {
	if !s.admin {
		return nil
	}
	filters := []string{"All"}
	for _, r := range model.Roles() {
		filters = append(filters, string(r))
	}
	return filters
}

// SetRoleFilter maps the "All" choice to an unfiltered query.
func (s *TeamScreen) SetRoleFilter(ctx context.Context, role string) {
	if role == "All" {
		role = ""
	}
	s.controller.SetRoleFilter(ctx, role)
}

func (s *TeamScreen) Actions(row Row) []Action {
	if !s.admin {
		return nil
	}
	id := row.ID
	prompt := fmt.Sprintf("Remove team member %q?", firstCell(row))
	return []Action{{
		Key:   "D",
		Label: "delete",
		Run: func(ctx context.Context) error {
			return s.coordinator.Delete(ctx, prompt, "Team member removed", func(ctx context.Context) error {
				return s.client.DeleteUser(ctx, id)
			})
		},
	}}
}

// ProductScreen lists products for every role. Admins and Managers may
// remove products; Employees get a read-only catalog.
type ProductScreen struct {
	controller  *resource.Controller[model.Product]
	coordinator *resource.Coordinator[model.Product]
	client      *api.Client
	editor      bool
}

// NewProductScreen builds the product screen for the signed-in user.
func NewProductScreen(client *api.Client, sess session.Session, confirm resource.Confirmer, opts ...resource.ControllerOption[model.Product]) *ProductScreen {
	s := &ProductScreen{
		client: client,
		editor: sess.User != nil && sess.User.Role != model.RoleEmployee,
	}
	s.controller = resource.NewController(client.ListProducts, "name", opts...)
	s.coordinator = resource.NewCoordinator(s.controller, coordinatorOpts[model.Product](confirm)...)
	return s
}

func (s *ProductScreen) Route() guard.Route { return guard.RouteProducts }
func (s *ProductScreen) Title() string      { return "Products" }
func (s *ProductScreen) Columns() []string  { return []string{"Name", "Description", "Price"} }

func (s *ProductScreen) Rows() []Row {
	_, page := s.controller.Snapshot()
	rows := make([]Row, 0, len(page.Items))
	for _, p := range page.Items {
		rows = append(rows, Row{
			ID:    p.ID,
			Cells: []string{p.Name, p.Description, strconv.FormatFloat(p.Price, 'f', 2, 64)},
		})
	}
	return rows
}

func (s *ProductScreen) Query() resource.Query {
	q, _ := s.controller.Snapshot()
	return q
}

func (s *ProductScreen) Pagination() (int, int) {
	_, page := s.controller.Snapshot()
	return page.CurrentPage, page.TotalPages
}

func (s *ProductScreen) ErrorMessage() string {
	_, page := s.controller.Snapshot()
	return page.Error
}

func (s *ProductScreen) SortKeys() []string { return []string{"name", "price"} }

func (s *ProductScreen) Refresh(ctx context.Context)             { s.controller.Refresh(ctx) }
func (s *ProductScreen) SetSort(ctx context.Context, key string) { s.controller.SetSort(ctx, key) }
func (s *ProductScreen) SetSearch(ctx context.Context, search string) {
	s.controller.SetSearch(ctx, search)
}
func (s *ProductScreen) GoToPage(ctx context.Context, n int) bool {
	return s.controller.GoToPage(ctx, n)
}

func (s *ProductScreen) RoleFilters() []string                       { return nil }
func (s *ProductScreen) SetRoleFilter(ctx context.Context, _ string) {}

func (s *ProductScreen) Actions(row Row) []Action {
	if !s.editor {
		return nil
	}
	id := row.ID
	prompt := fmt.Sprintf("Delete product %q?", firstCell(row))
	return []Action{{
		Key:   "D",
		Label: "delete",
		Run: func(ctx context.Context) error {
			return s.coordinator.Delete(ctx, prompt, "Product deleted", func(ctx context.Context) error {
				return s.client.DeleteProduct(ctx, id)
			})
		},
	}}
}

// OrderScreen lists orders. Managers may deliver or cancel Pending
// orders; Employees browse read-only, and terminal orders offer no
// actions to anyone.
type OrderScreen struct {
	controller  *resource.Controller[model.Order]
	coordinator *resource.Coordinator[model.Order]
	client      *api.Client
	manager     bool

	// statuses remembers the last applied page's status per order so
	// Actions can fork on it without refetching.
	statuses map[string]model.OrderStatus
}

// NewOrderScreen builds the order screen for the signed-in user.
func NewOrderScreen(client *api.Client, sess session.Session, confirm resource.Confirmer, opts ...resource.ControllerOption[model.Order]) *OrderScreen {
	s := &OrderScreen{
		client:   client,
		manager:  sess.User != nil && sess.User.Role == model.RoleManager,
		statuses: map[string]model.OrderStatus{},
	}
	s.controller = resource.NewController(client.ListOrders, "customerName", opts...)
	s.coordinator = resource.NewCoordinator(s.controller, coordinatorOpts[model.Order](confirm)...)
	return s
}

func (s *OrderScreen) Route() guard.Route { return guard.RouteOrders }
func (s *OrderScreen) Title() string      { return "Orders" }
func (s *OrderScreen) Columns() []string  { return []string{"Customer", "Product", "Status"} }

func (s *OrderScreen) Rows() []Row {
	_, page := s.controller.Snapshot()
	rows := make([]Row, 0, len(page.Items))
	for _, o := range page.Items {
		s.statuses[o.ID] = o.Status
		rows = append(rows, Row{
			ID:    o.ID,
			Cells: []string{o.CustomerName, o.ProductID, string(o.Status)},
		})
	}
	return rows
}

func (s *OrderScreen) Query() resource.Query {
	q, _ := s.controller.Snapshot()
	return q
}

func (s *OrderScreen) Pagination() (int, int) {
	_, page := s.controller.Snapshot()
	return page.CurrentPage, page.TotalPages
}

func (s *OrderScreen) ErrorMessage() string {
	_, page := s.controller.Snapshot()
	return page.Error
}

func (s *OrderScreen) SortKeys() []string { return []string{"customerName", "status", "createdAt"} }

func (s *OrderScreen) Refresh(ctx context.Context)             { s.controller.Refresh(ctx) }
func (s *OrderScreen) SetSort(ctx context.Context, key string) { s.controller.SetSort(ctx, key) }
func (s *OrderScreen) SetSearch(ctx context.Context, search string) {
	s.controller.SetSearch(ctx, search)
}
func (s *OrderScreen) GoToPage(ctx context.Context, n int) bool { return s.controller.GoToPage(ctx, n) }

func (s *OrderScreen) RoleFilters() []string                       { return nil }
func (s *OrderScreen) SetRoleFilter(ctx context.Context, _ string) {}

func (s *OrderScreen) Actions(row Row) []Action {
	if !s.manager || s.statuses[row.ID] != model.OrderPending {
		return nil
	}
	id := row.ID
	prompt := fmt.Sprintf("Cancel order for %q?", firstCell(row))
	return []Action{
		{
			Key:   "d",
			Label: "deliver",
			Run: func(ctx context.Context) error {
				return s.coordinator.Submit(ctx, "Order delivered", func(ctx context.Context) error {
					return s.client.UpdateOrderStatus(ctx, id, model.OrderDelivered)
				})
			},
		},
		{
			Key:   "x",
			Label: "cancel",
			Run: func(ctx context.Context) error {
				return s.coordinator.Delete(ctx, prompt, "Order cancelled", func(ctx context.Context) error {
					return s.client.UpdateOrderStatus(ctx, id, model.OrderCancelled)
				})
			},
		},
	}
}

func firstCell(row Row) string {
	if len(row.Cells) == 0 {
		return row.ID
	}
	return row.Cells[0]
}
