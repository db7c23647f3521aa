package tui

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/opsdeck/opsdeck/internal/api"
	"github.com/opsdeck/opsdeck/internal/model"
	"github.com/opsdeck/opsdeck/internal/resource"
	"github.com/opsdeck/opsdeck/internal/session"
)

func listEnvelope(items any) map[string]any {
	return map[string]any{
		"data":       map[string]any{"data": items},
		"totalPages": 1,
	}
}

func adminSession() session.Session {
	return session.Session{
		Token:           "tok",
		User:            &model.User{ID: "a1", Name: "Root", Role: model.RoleAdmin},
		IsAuthenticated: true,
	}
}

func managerSession() session.Session {
	return session.Session{
		Token:           "tok",
		User:            &model.User{ID: "m1", Name: "Lead", Role: model.RoleManager},
		IsAuthenticated: true,
	}
}

func employeeSession() session.Session {
	return session.Session{
		Token:           "tok",
		User:            &model.User{ID: "e1", Name: "Pat", Role: model.RoleEmployee},
		IsAuthenticated: true,
	}
}

func TestTeamScreenForksOnRole(t *testing.T) {
	paths := make(chan string, 2)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		paths <- r.URL.Path
		_ = json.NewEncoder(w).Encode(listEnvelope([]model.User{}))
	}))
	defer server.Close()

	client := api.NewClient(server.URL)
	client.SetToken("tok")

	admin := NewTeamScreen(client, adminSession(), nil)
	admin.Refresh(context.Background())
	require.Equal(t, "/api/users", waitForPath(t, paths))

	manager := NewTeamScreen(client, managerSession(), nil)
	manager.Refresh(context.Background())
	require.Equal(t, "/api/team", waitForPath(t, paths))

	assert.Equal(t, "Team", admin.Title())
	assert.Equal(t, "My Team", manager.Title())
}

func TestTeamScreenRoleFilterAndActionsAdminOnly(t *testing.T) {
	client := api.NewClient("http://localhost:0")

	admin := NewTeamScreen(client, adminSession(), nil)
	require.NotEmpty(t, admin.RoleFilters())
	assert.Equal(t, "All", admin.RoleFilters()[0])

	row := Row{ID: "u2", Cells: []string{"Pat"}}
	assert.NotEmpty(t, admin.Actions(row))

	manager := NewTeamScreen(client, managerSession(), nil)
	assert.Nil(t, manager.RoleFilters())
	assert.Empty(t, manager.Actions(row))
}

func TestOrderScreenActionsOnlyWhilePending(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(listEnvelope([]model.Order{
			{ID: "o1", CustomerName: "Ada", Status: model.OrderPending},
			{ID: "o2", CustomerName: "Bob", Status: model.OrderDelivered},
		}))
	}))
	defer server.Close()

	client := api.NewClient(server.URL)
	client.SetToken("tok")

	screen := NewOrderScreen(client, managerSession(), nil)
	screen.Refresh(context.Background())

	require.Eventually(t, func() bool {
		return len(screen.Rows()) == 2
	}, time.Second, 5*time.Millisecond)

	rows := screen.Rows()
	pending := screen.Actions(rows[0])
	require.Len(t, pending, 2)
	assert.Equal(t, "deliver", pending[0].Label)
	assert.Equal(t, "cancel", pending[1].Label)

	assert.Empty(t, screen.Actions(rows[1]))
}

func TestOrderScreenActionsManagerOnly(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(listEnvelope([]model.Order{
			{ID: "o1", CustomerName: "Ada", Status: model.OrderPending},
		}))
	}))
	defer server.Close()

	client := api.NewClient(server.URL)
	client.SetToken("tok")

	screen := NewOrderScreen(client, employeeSession(), nil)
	screen.Refresh(context.Background())

	require.Eventually(t, func() bool {
		return len(screen.Rows()) == 1
	}, time.Second, 5*time.Millisecond)

	assert.Empty(t, screen.Actions(screen.Rows()[0]),
		"employees take orders but must not be offered status transitions")
}

func TestProductScreenActionsHiddenFromEmployees(t *testing.T) {
	client := api.NewClient("http://localhost:0")
	row := Row{ID: "p1", Cells: []string{"Widget"}}

	assert.NotEmpty(t, NewProductScreen(client, adminSession(), nil).Actions(row))
	assert.NotEmpty(t, NewProductScreen(client, managerSession(), nil).Actions(row))
	assert.Empty(t, NewProductScreen(client, employeeSession(), nil).Actions(row))
}

func TestProductDeleteWaitsForConfirmation(t *testing.T) {
	var deletes atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodDelete {
			deletes.Add(1)
		}
		_ = json.NewEncoder(w).Encode(listEnvelope([]model.Product{}))
	}))
	defer server.Close()

	client := api.NewClient(server.URL)
	client.SetToken("tok")

	answer := false
	var prompts []string
	confirm := resource.ConfirmerFunc(func(prompt string) (bool, error) {
		prompts = append(prompts, prompt)
		return answer, nil
	})

	screen := NewProductScreen(client, adminSession(), confirm)
	action := screen.Actions(Row{ID: "p1", Cells: []string{"Widget"}})[0]

	require.NoError(t, action.Run(context.Background()))
	assert.Equal(t, int32(0), deletes.Load(), "declined delete must never reach the server")

	answer = true
	require.NoError(t, action.Run(context.Background()))
	assert.Equal(t, int32(1), deletes.Load())
	require.Len(t, prompts, 2)
	assert.Contains(t, prompts[0], "Widget")
}

func waitForPath(t *testing.T, paths chan string) string {
	t.Helper()

	select {
	case p := <-paths:
		return p
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for request")
		return ""
	}
}
