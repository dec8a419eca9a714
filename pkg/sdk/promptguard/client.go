// Package promptguard is a Go client for the PromptGuard firewall API.
package promptguard

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/NeuralTrust/PromptGuard/pkg/common"
	"github.com/NeuralTrust/PromptGuard/pkg/domain/session"
	"github.com/NeuralTrust/PromptGuard/pkg/domain/verdict"
	"github.com/NeuralTrust/PromptGuard/pkg/infra/httpx"
	"github.com/NeuralTrust/PromptGuard/pkg/version"
)

const (
	DefaultBaseURL = "http://localhost:8000"
	DefaultTimeout = 10 * time.Second
)

// APIError is returned for non-2xx responses.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("promptguard: status %d: %s", e.StatusCode, e.Message)
}

// IsNotFound reports whether err is a 404 from the API.
func IsNotFound(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusNotFound
}

type Option func(*Client)

func WithHTTPClient(c httpx.Client) Option {
	return func(cl *Client) {
		if c != nil {
			cl.httpClient = c
		}
	}
}

// WithUserAgent replaces the default "promptguard-go/<version>" agent.
func WithUserAgent(ua string) Option {
	return func(cl *Client) {
		if ua != "" {
			cl.userAgent = ua
		}
	}
}

func WithTimeout(d time.Duration) Option {
	return func(cl *Client) {
		if d > 0 {
			cl.timeout = d
		}
	}
}

type Client struct {
	baseURL    string
	httpClient httpx.Client
	timeout    time.Duration
	userAgent  string
}

func NewClient(baseURL string, opts ...Option) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	c := &Client{
		baseURL:   strings.TrimRight(baseURL, "/"),
		timeout:   DefaultTimeout,
		userAgent: "promptguard-go/" + version.Version,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.httpClient == nil {
		c.httpClient = httpx.NewFastHTTPClient(
			httpx.WithTimeout(c.timeout),
			httpx.WithUserAgent(c.userAgent),
		)
	}
	return c
}

// Protect checks a prompt without a session; the server assigns one and
// echoes it in RoutingResult.SessionID.
func (c *Client) Protect(ctx context.Context, prompt string) (*verdict.RoutingResult, error) {
	return c.ProtectSession(ctx, "", prompt)
}

// ProtectSession checks a prompt within an existing session.
func (c *Client) ProtectSession(ctx context.Context, sessionID, prompt string) (*verdict.RoutingResult, error) {
	body, err := json.Marshal(map[string]string{"prompt": prompt})
	if err != nil {
		return nil, err
	}
	headers := map[string]string{"Content-Type": "application/json"}
	if sessionID != "" {
		headers[common.SessionIDHeader] = sessionID
	}

	var res verdict.RoutingResult
	respHeaders, err := c.do(ctx, http.MethodPost, "/check", body, headers, &res)
	if err != nil {
		return nil, err
	}
	if res.SessionID == "" {
		res.SessionID = respHeaders.Get(common.SessionIDHeader)
	}
	return &res, nil
}

func (c *Client) SessionStats(ctx context.Context, sessionID string) (*session.Stats, error) {
	var stats session.Stats
	path := "/session/" + url.PathEscape(sessionID) + "/stats"
	if _, err := c.do(ctx, http.MethodGet, path, nil, nil, &stats); err != nil {
		return nil, err
	}
	return &stats, nil
}

func (c *Client) do(
	ctx context.Context,
	method, path string,
	body []byte,
	headers map[string]string,
	out interface{},
) (http.Header, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("promptguard request failed: %w", err)
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var errBody struct {
			Error string `json:"error"`
		}
		msg := strings.TrimSpace(string(payload))
		if json.Unmarshal(payload, &errBody) == nil && errBody.Error != "" {
			msg = errBody.Error
		}
		return nil, &APIError{StatusCode: resp.StatusCode, Message: msg}
	}
	if err := json.Unmarshal(payload, out); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	return resp.Header, nil
}
