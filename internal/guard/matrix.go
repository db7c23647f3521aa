package guard

import (
	"github.com/opsdeck/opsdeck/internal/model"
	"github.com/opsdeck/opsdeck/internal/session"
)

// Route identifies a console screen.
type Route string

const (
	RouteDashboard Route = "dashboard"
	RouteTeam      Route = "team"
	RouteProducts  Route = "products"
	RouteOrders    Route = "orders"
)

// FallbackRoute is the default landing route for role redirects.
const FallbackRoute = RouteDashboard

// matrix is the static route → allowed-roles capability matrix.
var matrix = map[Route][]model.Role{
	RouteDashboard: {model.RoleAdmin, model.RoleManager, model.RoleEmployee},
	RouteTeam:      {model.RoleAdmin, model.RoleManager},
	RouteProducts:  {model.RoleAdmin, model.RoleManager, model.RoleEmployee},
	RouteOrders:    {model.RoleManager, model.RoleEmployee},
}

// RequiredRoles returns the roles permitted on a route. Unknown routes
// permit nobody.
func RequiredRoles(route Route) []model.Role {
	roles := matrix[route]
	out := make([]model.Role, len(roles))
	copy(out, roles)
	return out
}

// Routes lists every known route in display order.
func Routes() []Route {
	return []Route{RouteDashboard, RouteTeam, RouteProducts, RouteOrders}
}

// EvaluateRoute evaluates the capability matrix for a route.
func EvaluateRoute(s session.Session, route Route) Decision {
	return Evaluate(s, matrix[route])
}
