// Package apiclient provides a small JSON-over-HTTP client for the prompt
// service:
// - Request marshaling with optional bearer credentials
// - Responses returned as Documents regardless of status
//
// It deliberately has no retries and no status checks; callers decide what a
// status means.
package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"promptcheck/internal/core"
	"promptcheck/internal/httpclient"
)

// Client sends JSON requests to a single service root
type Client struct {
	httpClient *http.Client
	baseURL    string
}

// New creates a client for baseURL using the default HTTP client.
func New(baseURL string) *Client {
	return NewWithHTTPClient(httpclient.NewHTTPClient(nil), baseURL)
}

// NewWithHTTPClient creates a client with a custom HTTP client
func NewWithHTTPClient(httpClient *http.Client, baseURL string) *Client {
	return &Client{
		httpClient: httpClient,
		baseURL:    strings.TrimRight(baseURL, "/"),
	}
}

// Request represents an HTTP request to be made
type Request struct {
	// Op names the calling step in errors
	Op       string
	Method   string
	Endpoint string
	// Token is sent as a bearer credential when non-empty
	Token string
	// Body is JSON marshaled if not nil
	Body any
}

// Do executes a single request and returns the decoded response.
// A non-2xx status is not an error.
func (c *Client) Do(ctx context.Context, req Request) (*Document, error) {
	httpReq, err := c.buildRequest(ctx, req)
	if err != nil {
		return nil, err
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, c.requestError(req, 0, err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, c.requestError(req, resp.StatusCode, fmt.Errorf("failed to read response: %w", err))
	}

	if !json.Valid(body) {
		return nil, c.requestError(req, resp.StatusCode, fmt.Errorf("%w: %q", core.ErrNotJSON, truncate(body, 200)))
	}

	return &Document{
		StatusCode: resp.StatusCode,
		Raw:        body,
	}, nil
}

// buildRequest creates an HTTP request from a Request
func (c *Client) buildRequest(ctx context.Context, req Request) (*http.Request, error) {
	var bodyReader io.Reader
	if req.Body != nil {
		bodyBytes, err := json.Marshal(req.Body)
		if err != nil {
			return nil, c.requestError(req, 0, fmt.Errorf("failed to marshal request: %w", err))
		}
		bodyReader = bytes.NewReader(bodyBytes)
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.Method, c.baseURL+req.Endpoint, bodyReader)
	if err != nil {
		return nil, c.requestError(req, 0, fmt.Errorf("failed to create request: %w", err))
	}

	httpReq.Header.Set("Accept", "application/json")
	if req.Body != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}
	if req.Token != "" {
		httpReq.Header.Set("Authorization", "Bearer "+req.Token)
	}

	return httpReq, nil
}

func (c *Client) requestError(req Request, status int, err error) *core.RequestError {
	return &core.RequestError{
		Op:         req.Op,
		Method:     req.Method,
		URL:        c.baseURL + req.Endpoint,
		StatusCode: status,
		Err:        err,
	}
}

func truncate(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	return string(b[:n]) + "..."
}
