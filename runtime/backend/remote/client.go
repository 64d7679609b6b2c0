package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// HTTPClient is a RemoteClient speaking JSON over HTTP.
//
// Endpoints:
//   - GET  {endpoint}/python/status
//   - POST {endpoint}/python/execute
type HTTPClient struct {
	endpoint string
	token    string
	http     *http.Client
}

// HTTPClientConfig configures an HTTPClient.
type HTTPClientConfig struct {
	// Endpoint is the base URL, e.g. http://127.0.0.1:30010.
	Endpoint string

	// Token is sent as a bearer token when set.
	Token string

	// HTTPClient overrides the underlying client. It should not set a
	// Timeout: execution time is unbounded on purpose.
	HTTPClient *http.Client
}

// NewHTTPClient creates an HTTP RemoteClient.
func NewHTTPClient(cfg HTTPClientConfig) *HTTPClient {
	hc := cfg.HTTPClient
	if hc == nil {
		hc = &http.Client{Transport: http.DefaultTransport}
	}
	return &HTTPClient{
		endpoint: strings.TrimRight(cfg.Endpoint, "/"),
		token:    cfg.Token,
		http:     hc,
	}
}

// Endpoint returns the configured base URL.
func (c *HTTPClient) Endpoint() string {
	return c.endpoint
}

// Execute posts a command to the endpoint.
func (c *HTTPClient) Execute(ctx context.Context, req RemoteRequest) (RemoteResponse, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return RemoteResponse{}, err
	}
	var resp RemoteResponse
	if err := c.do(ctx, http.MethodPost, "/python/execute", body, &resp); err != nil {
		return RemoteResponse{}, err
	}
	return resp, nil
}

// Status fetches the interpreter status.
func (c *HTTPClient) Status(ctx context.Context) (StatusResponse, error) {
	var resp StatusResponse
	if err := c.do(ctx, http.MethodGet, "/python/status", nil, &resp); err != nil {
		return StatusResponse{}, err
	}
	return resp, nil
}

func (c *HTTPClient) do(ctx context.Context, method, path string, body []byte, out any) error {
	if c.endpoint == "" {
		return fmt.Errorf("%w: empty endpoint", ErrConnectionFailed)
	}
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.endpoint+path, reader)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrConnectionFailed, err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrConnectionFailed, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, 64<<20))
	if err != nil {
		return fmt.Errorf("%w: reading response after %v: %v", ErrConnectionFailed, time.Since(start), err)
	}
	if resp.StatusCode/100 != 2 {
		return fmt.Errorf("%w: %s %s returned %d: %s",
			ErrRemoteExecutionFailed, method, path, resp.StatusCode, strings.TrimSpace(string(data)))
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("%w: decoding response: %v", ErrRemoteExecutionFailed, err)
	}
	return nil
}

var (
	_ RemoteClient     = (*HTTPClient)(nil)
	_ EndpointProvider = (*HTTPClient)(nil)
)
