package client

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

// Client is the Talk To My Lawyer API client
type Client struct {
	baseURL    string
	httpClient *http.Client
	token      string // JWT access token for authenticated requests
}

// Config holds the client configuration
type Config struct {
	BaseURL    string        // API base URL (e.g., "http://localhost:8080")
	Token      string        // Optional access token
	Timeout    time.Duration // HTTP client timeout (default: 60s, generation is slow)
	HTTPClient *http.Client  // Optional custom HTTP client
}

// NewClient creates a new API client
func NewClient(cfg Config) *Client {
	if cfg.Timeout == 0 {
		cfg.Timeout = 60 * time.Second
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{
			Timeout: cfg.Timeout,
		}
	}

	return &Client{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		httpClient: httpClient,
		token:      cfg.Token,
	}
}

// SetToken sets the JWT token for authenticated requests
func (c *Client) SetToken(token string) {
	c.token = token
}

// BaseURL returns the server the client talks to
func (c *Client) BaseURL() string {
	return c.baseURL
}

// GetToken returns the current JWT token
func (c *Client) GetToken() string {
	return c.token
}

// envelope is the server's response wrapper
type envelope struct {
	Success              bool            `json:"success"`
	Data                 json.RawMessage `json:"data,omitempty"`
	Message              string          `json:"message,omitempty"`
	Error                *APIError       `json:"error,omitempty"`
	SubscriptionRequired bool            `json:"subscription_required,omitempty"`
}

// doRequest performs an HTTP request and decodes the data of the response
// envelope into result.
func (c *Client) doRequest(ctx context.Context, method, path string, body interface{}, result interface{}) error {
	return c.do(ctx, method, path, body, nil, result)
}

func (c *Client) do(ctx context.Context, method, path string, body interface{}, headers map[string]string, result interface{}) error {
	status, respBody, err := c.send(ctx, method, path, body, "application/json", headers)
	if err != nil {
		return err
	}

	var env envelope
	if len(respBody) > 0 {
		if err := json.Unmarshal(respBody, &env); err != nil {
			if status >= 400 {
				return &APIError{StatusCode: status, Message: strings.TrimSpace(string(respBody))}
			}
			return fmt.Errorf("failed to parse response: %w", err)
		}
	}

	if status >= 400 {
		return envelopeError(status, env)
	}

	if result != nil && len(env.Data) > 0 {
		if err := json.Unmarshal(env.Data, result); err != nil {
			return fmt.Errorf("failed to parse response data: %w", err)
		}
	}

	return nil
}

// download fetches a non-JSON body. Errors still arrive as JSON envelopes.
func (c *Client) download(ctx context.Context, path, accept string) ([]byte, error) {
	status, respBody, err := c.send(ctx, http.MethodGet, path, nil, accept+", application/json", nil)
	if err != nil {
		return nil, err
	}
	if status >= 400 {
		var env envelope
		if err := json.Unmarshal(respBody, &env); err != nil {
			return nil, &APIError{StatusCode: status, Message: strings.TrimSpace(string(respBody))}
		}
		return nil, envelopeError(status, env)
	}
	return respBody, nil
}

func (c *Client) send(ctx context.Context, method, path string, body interface{}, accept string, headers map[string]string) (int, []byte, error) {
	var reqBody io.Reader
	if body != nil {
		jsonData, err := json.Marshal(body)
		if err != nil {
			return 0, nil, fmt.Errorf("failed to marshal request body: %w", err)
		}
		reqBody = bytes.NewReader(jsonData)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return 0, nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Accept", accept)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, nil, fmt.Errorf("failed to read response: %w", err)
	}
	return resp.StatusCode, respBody, nil
}

func envelopeError(status int, env envelope) *APIError {
	apiErr := env.Error
	if apiErr == nil {
		apiErr = &APIError{Message: http.StatusText(status)}
	}
	apiErr.StatusCode = status
	apiErr.SubscriptionRequired = env.SubscriptionRequired
	return apiErr
}

// Letters returns the letter service
func (c *Client) Letters() *LetterService {
	return &LetterService{client: c}
}

// Documents returns the document service
func (c *Client) Documents() *DocumentService {
	return &DocumentService{client: c}
}

// Subscription returns the subscription service
func (c *Client) Subscription() *SubscriptionService {
	return &SubscriptionService{client: c}
}

// Admin returns the admin service
func (c *Client) Admin() *AdminService {
	return &AdminService{client: c}
}
