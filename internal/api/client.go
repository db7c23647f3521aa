// Package api is the single HTTP gateway to the admin API.
//
// Every component routes its traffic through Client, which injects the
// bearer credential, classifies failures into the error taxonomy, and
// reports authentication failures through a side channel so the session
// can be force-invalidated no matter which caller issued the request.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/opsdeck/opsdeck/internal/errors"
	"github.com/opsdeck/opsdeck/internal/log"
)

// DefaultBaseURL is used when no API URL is configured.
const DefaultBaseURL = "http://localhost:5000"

// publicPaths never carry the bearer credential.
var publicPaths = map[string]bool{
	"/api/login": true,
}

// Client is the admin API client.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *log.Logger

	mu            sync.RWMutex
	token         string
	onAuthFailure func()
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithLogger sets the logger used for request/failure logging.
func WithLogger(logger *log.Logger) Option {
	return func(c *Client) { c.logger = logger }
}

// NewClient creates a new admin API client.
func NewClient(baseURL string, opts ...Option) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	c := &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		logger: log.DefaultLogger(),
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// SetToken sets the bearer credential attached to authenticated requests.
func (c *Client) SetToken(token string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.token = token
}

// ClearToken removes the bearer credential.
func (c *Client) ClearToken() {
	c.SetToken("")
}

// OnAuthFailure registers the forced-logout side channel. The hook runs
// once per 401/403 response, from the goroutine that issued the request.
func (c *Client) OnAuthFailure(fn func()) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onAuthFailure = fn
}

// errorBody is the error envelope the API returns on failures.
type errorBody struct {
	Message string `json:"message"`
}

// do performs one request and returns the raw response bodyfor a 2xx
// status. Any other outcome is classified into the error taxonomy.
func (c *Client) do(ctx context.Context, method, path string, query url.Values, body io.Reader, contentType string) ([]byte, error) {
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, method, u, body)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeAPIMalformed, "failed to create request", err)
	}

	requestID := uuid.NewString()
	req.Header.Set("X-Request-Id", requestID)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	c.mu.RLock()
	token := c.token
	c.mu.RUnlock()
	if token != "" && !publicPaths[path] {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	logger := c.logger.With("method", method, "path", path, "request_id", requestID)
	logger.Debug("issuing request")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		classified := classifyTransport(err)
		logger.WithError(classified).Warn("request failed")
		return nil, classified
	}
	defer resp.Body.Close() //nolint:errcheck

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeAPIDecode, "failed to read response body", err)
	}

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return data, nil
	}

	return nil, c.classifyStatus(logger, resp.StatusCode, data)
}

// classifyStatus maps a non-2xx response onto the error taxonomy.
// 401/403 additionally fire the forced-logout hook.
func (c *Client) classifyStatus(logger *log.Logger, status int, body []byte) error {
	message := serverMessage(body)

	switch {
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		err := errors.NewSessionExpiredError(status)
		logger.WithError(err).Warn("authentication failure")

		c.mu.RLock()
		hook := c.onAuthFailure
		c.mu.RUnlock()
		if hook != nil {
			hook()
		}
		return err

	case status == http.StatusNotFound:
		if message == "" {
			message = "resource not found"
		}
		return errors.New(errors.ErrCodeAPINotFound, message)

	case status >= 500:
		if message == "" {
			message = fmt.Sprintf("server error (status %d)", status)
		}
		err := errors.New(errors.ErrCodeAPIServer, message)
		logger.WithError(err).Error("server failure")
		return err

	default:
		if message == "" {
			message = fmt.Sprintf("request rejected (status %d)", status)
		}
		logger.With("status", status).Debug("unclassified failure")
		return errors.New(errors.ErrCodeAPIRejected, message)
	}
}

// classifyTransport maps a client-side error onto the error taxonomy.
func classifyTransport(err error) error {
	var ue *url.Error
	if stderrors.As(err, &ue) && ue.Timeout() {
		return errors.Wrap(errors.ErrCodeNetworkTimeout, "request timed out", err)
	}
	if stderrors.Is(err, os.ErrDeadlineExceeded) || stderrors.Is(err, context.DeadlineExceeded) {
		return errors.Wrap(errors.ErrCodeNetworkTimeout, "request timed out", err)
	}
	return errors.Wrap(errors.ErrCodeNetworkUnreachable, "network request failed", err)
}

// serverMessage extracts the {message} error envelope, if present.
func serverMessage(body []byte) string {
	var eb errorBody
	if err := json.Unmarshal(body, &eb); err != nil {
		return ""
	}
	return eb.Message
}

// postJSON marshals v and issues a POST.
func (c *Client) postJSON(ctx context.Context, path string, v any) ([]byte, error) {
	return c.sendJSON(ctx, http.MethodPost, path, v)
}

// putJSON marshals v and issues a PUT.
func (c *Client) putJSON(ctx context.Context, path string, v any) ([]byte, error) {
	return c.sendJSON(ctx, http.MethodPut, path, v)
}

// deleteJSON marshals v and issues a DELETE with a body.
func (c *Client) deleteJSON(ctx context.Context, path string, v any) ([]byte, error) {
	return c.sendJSON(ctx, http.MethodDelete, path, v)
}

func (c *Client) sendJSON(ctx context.Context, method, path string, v any) ([]byte, error) {
	payload, err := json.Marshal(v)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeAPIMalformed, "failed to encode request body", err)
	}
	return c.do(ctx, method, path, nil, bytes.NewReader(payload), "application/json")
}
