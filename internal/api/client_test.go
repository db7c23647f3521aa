package api

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/opsdeck/opsdeck/internal/errors"
	"github.com/opsdeck/opsdeck/internal/resource"
)

func TestBearerInjection(t *testing.T) {
	var gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		w.Write([]byte(`{"data":{"data":[]},"totalPages":1}`)) //nolint:errcheck
	}))
	defer srv.Close()

	client := NewClient(srv.URL)
	client.SetToken("tok-abc")

	_, err := client.ListUsers(context.Background(), resource.Query{Page: 1})
	require.NoError(t, err)
	assert.Equal(t, "Bearer tok-abc", gotAuth)
}

func TestLoginIsPublic(t *testing.T) {
	var gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		w.Write([]byte(`{"token":"fresh","user":{"name":"A","email":"a@x.io","role":"Admin"}}`)) //nolint:errcheck
	}))
	defer srv.Close()

	client := NewClient(srv.URL)
	client.SetToken("stale-token")

	result, err := client.Login(context.Background(), Credentials{Email: "a@x.io", Password: "pw"})
	require.NoError(t, err)
	assert.Empty(t, gotAuth, "login must not carry the bearer credential")
	assert.Equal(t, "fresh", result.Token)
	assert.Equal(t, "a@x.io", result.User.Email)
}

func TestRequestIDHeader(t *testing.T) {
	var gotID string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotID = r.Header.Get("X-Request-Id")
		w.Write([]byte(`{"data":{"data":[]},"totalPages":1}`)) //nolint:errcheck
	}))
	defer srv.Close()

	client := NewClient(srv.URL)
	_, err := client.ListUsers(context.Background(), resource.Query{Page: 1})
	require.NoError(t, err)
	assert.NotEmpty(t, gotID)
}

func TestAuthFailureFiresHook(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"message":"expired"}`, http.StatusUnauthorized)
	}))
	defer srv.Close()

	client := NewClient(srv.URL)

	var fired atomic.Int32
	client.OnAuthFailure(func() { fired.Add(1) })

	_, err := client.ListUsers(context.Background(), resource.Query{Page: 1})
	require.Error(t, err)
	assert.True(t, errors.IsAuthFailure(err))
	assert.Equal(t, int32(1), fired.Load(), "hook must fire exactly once per auth failure")
}

func TestForbiddenAlsoFiresHook(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer srv.Close()

	client := NewClient(srv.URL)

	var fired atomic.Int32
	client.OnAuthFailure(func() { fired.Add(1) })

	err := client.DeleteUser(context.Background(), "u1")
	require.Error(t, err)
	assert.True(t, errors.IsAuthFailure(err))
	assert.Equal(t, int32(1), fired.Load())
}

func TestStatusClassification(t *testing.T) {
	tests := []struct {
		name     string
		status   int
		body     string
		wantCode errors.ErrorCode
		wantMsg  string
	}{
		{"not found", http.StatusNotFound, `{"message":"no such user"}`, errors.ErrCodeAPINotFound, "no such user"},
		{"server error", http.StatusInternalServerError, `{"message":"boom"}`, errors.ErrCodeAPIServer, "boom"},
		{"server error no body", http.StatusBadGateway, ``, errors.ErrCodeAPIServer, "server error (status 502)"},
		{"unclassified", http.StatusTeapot, ``, errors.ErrCodeAPIRejected, "request rejected (status 418)"},
		{"bad request with message", http.StatusBadRequest, `{"message":"email taken"}`, errors.ErrCodeAPIRejected, "email taken"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body)) //nolint:errcheck
			}))
			defer srv.Close()

			client := NewClient(srv.URL)
			err := client.DeleteProduct(context.Background(), "p1")
			require.Error(t, err)

			var oe *errors.OpsdeckError
			require.ErrorAs(t, err, &oe)
			assert.Equal(t, tt.wantCode, oe.Code)
			assert.Equal(t, tt.wantMsg, oe.Message)
		})
	}
}

func TestTransportFailure(t *testing.T) {
	// Point at a server that is already closed.
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close()

	client := NewClient(srv.URL)
	_, err := client.ListOrders(context.Background(), resource.Query{Page: 1})
	require.Error(t, err)
	assert.True(t, errors.IsTransportFailure(err))
}

func TestTimeoutClassification(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	}))
	defer srv.Close()

	client := NewClient(srv.URL, WithHTTPClient(&http.Client{Timeout: 20 * time.Millisecond}))
	_, err := client.ListOrders(context.Background(), resource.Query{Page: 1})
	require.Error(t, err)
	assert.Equal(t, errors.ErrCodeNetworkTimeout, errors.Code(err))
}

func TestListParamsEncoding(t *testing.T) {
	var gotQuery string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.RawQuery
		w.Write([]byte(`{"data":{"data":[]},"totalPages":1}`)) //nolint:errcheck
	}))
	defer srv.Close()

	client := NewClient(srv.URL)
	_, err := client.ListTeam(context.Background(), resource.Query{
		Page:       2,
		SortKey:    "email",
		SortOrder:  resource.SortDesc,
		Search:     "jo",
		RoleFilter: "Employee",
	})
	require.NoError(t, err)

	assert.Contains(t, gotQuery, "page=2")
	assert.Contains(t, gotQuery, "sortBy=email")
	assert.Contains(t, gotQuery, "sortOrder=desc")
	assert.Contains(t, gotQuery, "search=jo")
	assert.Contains(t, gotQuery, "role=Employee")
}

func TestRegisterUsesRegistrationEndpoint(t *testing.T) {
	var gotMethod, gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		gotPath = r.URL.Path
		w.Write([]byte(`{"message":"created"}`)) //nolint:errcheck
	}))
	defer srv.Close()

	client := NewClient(srv.URL)
	client.SetToken("tok")

	err := client.Register(context.Background(), RegisterInput{
		Name:     "Ann",
		Email:    "ann@x.io",
		Password: "pw",
		Role:     "Employee",
	})
	require.NoError(t, err)
	assert.Equal(t, http.MethodPost, gotMethod)
	assert.Equal(t, "/api/register", gotPath)
}

func TestCurrentUser(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/users/me", r.URL.Path)
		w.Write([]byte(`{"data":{"_id":"u1","name":"Ann","email":"ann@x.io","role":"Manager"}}`)) //nolint:errcheck
	}))
	defer srv.Close()

	client := NewClient(srv.URL)
	client.SetToken("tok")

	user, err := client.CurrentUser(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "u1", user.ID)
	assert.Equal(t, "Manager", string(user.Role))
}
