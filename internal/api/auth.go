package api

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/opsdeck/opsdeck/internal/errors"
	"github.com/opsdeck/opsdeck/internal/model"
)

// Credentials is a login request.
type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginResult is a successful login response.
type LoginResult struct {
	Token string     `json:"token"`
	User  model.User `json:"user"`
}

// Login authenticates against the public login endpoint. It does not
// store the returned token; the session store owns that decision.
func (c *Client) Login(ctx context.Context, creds Credentials) (LoginResult, error) {
	body, err := c.postJSON(ctx, "/api/login", creds)
	if err != nil {
		return LoginResult{}, err
	}

	var result LoginResult
	if err := json.Unmarshal(body, &result); err != nil {
		return LoginResult{}, errors.Wrap(errors.ErrCodeAPIDecode, "failed to decode login response", err)
	}

	return result, nil
}

// RegisterInput is a new-member registration request. Only Admins may
// register members; the server enforces this.
type RegisterInput struct {
	Name      string     `json:"name"`
	Email     string     `json:"email"`
	Password  string     `json:"password"`
	Role      model.Role `json:"role"`
	ManagerID string     `json:"managerId,omitempty"`
}

// Register creates a new team member.
func (c *Client) Register(ctx context.Context, in RegisterInput) error {
	_, err := c.postJSON(ctx, "/api/register", in)
	return err
}

// profileEnvelope wraps the current-profile response: {data: user}.
type profileEnvelope struct {
	Data model.User `json:"data"`
}

// CurrentUser fetches the authenticated user's profile.
func (c *Client) CurrentUser(ctx context.Context) (model.User, error) {
	body, err := c.do(ctx, http.MethodGet, "/api/users/me", nil, nil, "")
	if err != nil {
		return model.User{}, err
	}

	var env profileEnvelope
	if err := json.Unmarshal(body, &env); err != nil {
		return model.User{}, errors.Wrap(errors.ErrCodeAPIDecode, "failed to decode profile response", err)
	}

	return env.Data, nil
}
