package api

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"github.com/opsdeck/opsdeck/internal/model"
	"github.com/opsdeck/opsdeck/internal/resource"
)

// listParams encodes the shared list-view query parameters.
func listParams(q resource.Query) url.Values {
	params := url.Values{}
	params.Set("page", strconv.Itoa(q.Page))
	params.Set("sortBy", q.SortKey)
	params.Set("sortOrder", string(q.SortOrder))
	params.Set("search", q.Search)
	params.Set("role", q.RoleFilter)
	return params
}

// ListUsers fetches one page of all users. Admin scope.
func (c *Client) ListUsers(ctx context.Context, q resource.Query) (resource.Page[model.User], error) {
	body, err := c.do(ctx, http.MethodGet, "/api/users", listParams(q), nil, "")
	if err != nil {
		return resource.Page[model.User]{}, err
	}
	return decodeListPage[model.User](c.logger, body, q), nil
}

// ListTeam fetches one page of the caller's team. Manager scope: the
// server restricts the result to the manager's direct reports.
func (c *Client) ListTeam(ctx context.Context, q resource.Query) (resource.Page[model.User], error) {
	body, err := c.do(ctx, http.MethodGet, "/api/team", listParams(q), nil, "")
	if err != nil {
		return resource.Page[model.User]{}, err
	}
	return decodeListPage[model.User](c.logger, body, q), nil
}

// UpdateUserInput carries a user update. Password is optional: empty
// means unchanged.
type UpdateUserInput struct {
	UserID    string     `json:"userId"`
	Name      string     `json:"name"`
	Email     string     `json:"email"`
	Password  string     `json:"password,omitempty"`
	Role      model.Role `json:"role"`
	ManagerID string     `json:"managerId,omitempty"`
}

// UpdateUser updates a team member.
func (c *Client) UpdateUser(ctx context.Context, in UpdateUserInput) error {
	_, err := c.putJSON(ctx, "/api/users", in)
	return err
}

// DeleteUser deletes a team member. The id travels in the request body.
func (c *Client) DeleteUser(ctx context.Context, userID string) error {
	_, err := c.deleteJSON(ctx, "/api/users", map[string]string{"userId": userID})
	return err
}
