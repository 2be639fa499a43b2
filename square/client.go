package square

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sync"
	"time"
)

const (
	defaultBaseURL = "https://connect.squareup.com"

	// The payload mapping in this package was written against this catalog
	// API version. Do not bump it without revisiting every *Data struct.
	defaultAPIVersion = "2023-12-13"

	// Pages and batch calls are spaced out to stay inside Square's rate
	// limits; pagination for one object type is sequential anyway because
	// each page needs the previous cursor.
	defaultRequestGap = 180 * time.Millisecond

	defaultTimeout = 20 * time.Second
)

// HTTPClient is implemented by http.Client.
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// Client queries the Square Connect API.
type Client struct {
	httpClient  HTTPClient
	baseURL     string
	apiVersion  string
	accessToken string

	minRequestGap time.Duration
	requestSlotM  sync.Mutex
	nextRequestAt time.Time
}

// Option applies Client options.
type Option func(*Client)

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(httpClient HTTPClient) Option {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

// WithBaseURL points the client at a different API host (sandbox, tests).
func WithBaseURL(baseURL string) Option {
	return func(c *Client) {
		c.baseURL = baseURL
	}
}

// WithAPIVersion overrides the pinned Square-Version header.
func WithAPIVersion(version string) Option {
	return func(c *Client) {
		c.apiVersion = version
	}
}

// WithRequestMinInterval enforces a minimum delay between upstream calls.
func WithRequestMinInterval(interval time.Duration) Option {
	return func(c *Client) {
		if interval < 0 {
			interval = 0
		}
		c.minRequestGap = interval
	}
}

// NewClient creates a production Square client.
func NewClient(accessToken string, opts ...Option) *Client {
	c := &Client{
		httpClient:    &http.Client{Timeout: defaultTimeout},
		baseURL:       defaultBaseURL,
		apiVersion:    defaultAPIVersion,
		accessToken:   accessToken,
		minRequestGap: defaultRequestGap,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Client) headers() map[string]string {
	return map[string]string{
		"Authorization":  "Bearer " + c.accessToken,
		"Square-Version": c.apiVersion,
		"Content-Type":   "application/json",
	}
}

// doJSON issues one request and decodes the response into out. Non-2xx and
// undecodable responses come back as *UpstreamRequestError.
func (c *Client) doJSON(ctx context.Context, method, path string, params url.Values, body any, out any) error {
	rawURL := c.baseURL + path
	if len(params) > 0 {
		rawURL = rawURL + "?" + params.Encode()
	}

	var bodyReader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request body: %w", err)
		}
		bodyReader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, rawURL, bodyReader)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	for k, v := range c.headers() {
		req.Header.Set(k, v)
	}

	if err := c.waitForRequestSlot(ctx); err != nil {
		return err
	}

	res, err := c.httpClient.Do(req)
	if err != nil {
		return &UpstreamRequestError{Method: method, URL: rawURL, Cause: err}
	}
	defer func() {
		_ = res.Body.Close()
	}()

	rawResponse, err := io.ReadAll(res.Body)
	if err != nil {
		return &UpstreamRequestError{
			Method:     method,
			URL:        rawURL,
			StatusCode: res.StatusCode,
			Cause:      fmt.Errorf("read response body: %w", err),
		}
	}

	if res.StatusCode < 200 || res.StatusCode >= 300 {
		return &UpstreamRequestError{
			Method:     method,
			URL:        rawURL,
			StatusCode: res.StatusCode,
			Body:       string(rawResponse),
		}
	}
	if out == nil || len(rawResponse) == 0 {
		return nil
	}
	if err := json.Unmarshal(rawResponse, out); err != nil {
		return &UpstreamRequestError{
			Method:     method,
			URL:        rawURL,
			StatusCode: res.StatusCode,
			Body:       string(rawResponse),
			Cause:      fmt.Errorf("decode response body: %w", err),
		}
	}
	return nil
}

func (c *Client) waitForRequestSlot(ctx context.Context) error {
	interval := c.minRequestGap
	if interval <= 0 {
		return nil
	}
	for {
		c.requestSlotM.Lock()
		wait := time.Until(c.nextRequestAt)
		if wait <= 0 {
			c.nextRequestAt = time.Now().Add(interval)
			c.requestSlotM.Unlock()
			return nil
		}
		c.requestSlotM.Unlock()
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(wait):
		}
	}
}
