package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"
)

// Paths of the intake REST API.
const (
	PathPing   = "/api/ping"
	PathLogin  = "/api/login"
	PathOrders = "/api/orders"

	ClientRefHTTPHeader = "X-Client-Ref"
)

// RESTClient talks to the intake server's JSON API.
type RESTClient struct {
	baseURL string
	client  *http.Client

	mu          sync.RWMutex
	accessToken string
}

// NewRESTClient returns a client for baseURL. Per-request deadlines come
// from the caller's context; the http.Client timeout only bounds requests
// issued without one.
func NewRESTClient(baseURL string, httpClient *http.Client) *RESTClient {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	return &RESTClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  httpClient,
	}
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type loginResponse struct {
	AccessToken string `json:"access_token"`
	UserID      string `json:"user_id"`
	DisplayName string `json:"display_name"`
}

type orderResponse struct {
	ID string `json:"id"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func (c *RESTClient) token() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.accessToken
}

func (c *RESTClient) do(ctx context.Context, method, path string, body []byte, header http.Header) (*http.Response, error) {
	var rdr io.Reader
	if body != nil {
		rdr = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, rdr)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if t := c.token(); t != "" {
		req.Header.Set("Authorization", "Bearer "+t)
	}
	for k, v := range header {
		req.Header[k] = v
	}

	resp, err := c.client.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, fmt.Errorf("%w: %w", ErrUnavailable, context.DeadlineExceeded)
		}
		if errors.Is(err, context.Canceled) {
			return nil, context.Canceled
		}
		return nil, fmt.Errorf("%w: %w", ErrUnavailable, err)
	}
	return resp, nil
}

// mapStatus turns a non-2xx response into one of the package errors.
func mapStatus(resp *http.Response) error {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}

	msg := http.StatusText(resp.StatusCode)
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	var er errorResponse
	if json.Unmarshal(body, &er) == nil && er.Error != "" {
		msg = er.Error
	} else if s := strings.TrimSpace(string(body)); s != "" {
		msg = s
	}

	switch resp.StatusCode {
	case http.StatusUnauthorized, http.StatusForbidden:
		return fmt.Errorf("%w: %s", ErrUnauthorized, msg)
	case http.StatusBadGateway, http.StatusServiceUnavailable, http.StatusGatewayTimeout:
		return fmt.Errorf("%w: status %d: %s", ErrUnavailable, resp.StatusCode, msg)
	default:
		return fmt.Errorf("%w: status %d: %s", ErrRejected, resp.StatusCode, msg)
	}
}

func (c *RESTClient) Ping(ctx context.Context) error {
	resp, err := c.do(ctx, http.MethodGet, PathPing, nil, nil)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if err := mapStatus(resp); err != nil {
		return err
	}
	return nil
}

func (c *RESTClient) Login(ctx context.Context, username, password string) (*LoginResult, error) {
	body, err := json.Marshal(loginRequest{Username: username, Password: password})
	if err != nil {
		return nil, err
	}

	resp, err := c.do(ctx, http.MethodPost, PathLogin, body, nil)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if err := mapStatus(resp); err != nil {
		return nil, err
	}

	var lr loginResponse
	if err := json.NewDecoder(resp.Body).Decode(&lr); err != nil {
		return nil, fmt.Errorf("%w: decode response: %w", ErrRejected, err)
	}
	if lr.AccessToken == "" {
		return nil, fmt.Errorf("%w: empty access token", ErrRejected)
	}

	c.mu.Lock()
	c.accessToken = lr.AccessToken
	c.mu.Unlock()

	return &LoginResult{UserID: lr.UserID, DisplayName: lr.DisplayName}, nil
}

func (c *RESTClient) SubmitOrder(ctx context.Context, clientRef string, payload json.RawMessage) (string, error) {
	h := http.Header{}
	if clientRef != "" {
		h.Set(ClientRefHTTPHeader, clientRef)
	}

	resp, err := c.do(ctx, http.MethodPost, PathOrders, payload, h)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if err := mapStatus(resp); err != nil {
		return "", err
	}

	var or orderResponse
	if err := json.NewDecoder(resp.Body).Decode(&or); err != nil {
		return "", fmt.Errorf("%w: decode response: %w", ErrRejected, err)
	}
	return or.ID, nil
}

func (c *RESTClient) Close() error {
	c.client.CloseIdleConnections()
	return nil
}

var _ Client = (*RESTClient)(nil)
var _ Client = (*GRPCClient)(nil)
