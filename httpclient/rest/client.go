package rest

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/kbukum/voxscribe/httpclient"
)

// Client sends and receives JSON over an httpclient.Client.
type Client struct {
	http *httpclient.Client
}

// New creates a REST client with JSON Content-Type and Accept defaults.
func New(cfg httpclient.Config) (*Client, error) {
	headers := map[string]string{
		"Content-Type": "application/json",
		"Accept":       "application/json",
	}
	for k, v := range cfg.Headers {
		headers[k] = v
	}
	cfg.Headers = headers

	c, err := httpclient.New(cfg)
	if err != nil {
		return nil, err
	}
	return &Client{http: c}, nil
}

// NewFromClient wraps an existing HTTP client.
func NewFromClient(c *httpclient.Client) *Client {
	return &Client{http: c}
}

// HTTP returns the underlying HTTP client.
func (c *Client) HTTP() *httpclient.Client {
	return c.http
}

// Response wraps a typed REST response.
type Response[T any] struct {
	StatusCode int
	Headers    map[string]string
	Data       T
}

// Get performs a GET request and decodes the JSON response into T.
func Get[T any](ctx context.Context, c *Client, path string) (*Response[T], error) {
	return do[T](ctx, c, http.MethodGet, path, nil)
}

// Post sends body as JSON and decodes the response into T.
func Post[T any](ctx context.Context, c *Client, path string, body any) (*Response[T], error) {
	return do[T](ctx, c, http.MethodPost, path, body)
}

// do decodes error bodies too, so callers can read provider error payloads
// alongside the classified error.
func do[T any](ctx context.Context, c *Client, method, path string, body any) (*Response[T], error) {
	resp, err := c.http.Do(ctx, httpclient.Request{Method: method, Path: path, Body: body})
	if resp == nil {
		return nil, err
	}

	out := &Response[T]{StatusCode: resp.StatusCode, Headers: resp.Headers}
	if len(resp.Body) > 0 {
		if jsonErr := json.Unmarshal(resp.Body, &out.Data); jsonErr != nil {
			if err != nil {
				return nil, err
			}
			return nil, fmt.Errorf("httpclient/rest: decode response: %w", jsonErr)
		}
	}
	return out, err
}
