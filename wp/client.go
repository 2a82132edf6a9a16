// Package wp is a client for the publication's headless WordPress CMS. It
// composes WPGraphQL documents for posts, taxonomy terms, authors, and search,
// normalizes cursor pagination, and returns flattened typed results. All
// operations are stateless reads; the CMS is authoritative and is never
// mutated from here.
package wp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"go.uber.org/zap"
)

const (
	defaultTimeout    = 10 * time.Second
	defaultMaxRetries = 3
)

// Client issues GraphQL queries against a single CMS endpoint. It is safe for
// concurrent use; construct one per CMS target and share it.
type Client struct {
	endpoint   string
	http       *http.Client
	log        *zap.Logger
	timeout    time.Duration
	maxRetries uint64
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client, e.g. for a custom
// transport or a test double.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.http = h }
}

// WithLogger sets the logger used for retry warnings.
func WithLogger(l *zap.Logger) Option {
	return func(c *Client) { c.log = l }
}

// WithTimeout sets the per-request deadline applied to every query.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.timeout = d }
}

// WithMaxRetries bounds the retry budget for transient failures. Zero
// disables retries.
func WithMaxRetries(n uint64) Option {
	return func(c *Client) { c.maxRetries = n }
}

// New creates a Client bound to the given GraphQL endpoint URL.
func New(endpoint string, opts ...Option) *Client {
	c := &Client{
		endpoint:   endpoint,
		http:       &http.Client{},
		log:        zap.NewNop(),
		timeout:    defaultTimeout,
		maxRetries: defaultMaxRetries,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type gqlRequest struct {
	Query     string         `json:"query"`
	Variables map[string]any `json:"variables,omitempty"`
}

type gqlError struct {
	Message string `json:"message"`
}

type gqlResponse struct {
	Data   json.RawMessage `json:"data"`
	Errors []gqlError      `json:"errors"`
}

// do posts the query with its variables and unmarshals the data payload into
// out. Network errors and 5xx responses are retried with exponential backoff;
// 4xx responses and GraphQL resolver errors are permanent.
func (c *Client) do(ctx context.Context, query string, vars map[string]any, out any) error {
	body, err := json.Marshal(gqlRequest{Query: query, Variables: vars})
	if err != nil {
		return fmt.Errorf("wp: encode request: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	op := func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
		if err != nil {
			return backoff.Permanent(fmt.Errorf("wp: build request: %w", err))
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Accept", "application/json")

		resp, err := c.http.Do(req)
		if err != nil {
			return fmt.Errorf("wp: post query: %w", err)
		}
		defer func() {
			io.Copy(io.Discard, resp.Body)
			resp.Body.Close()
		}()

		if resp.StatusCode != http.StatusOK {
			err := fmt.Errorf("wp: unexpected status %d", resp.StatusCode)
			if resp.StatusCode >= 400 && resp.StatusCode < 500 {
				return backoff.Permanent(err)
			}
			return err
		}

		var gr gqlResponse
		if err := json.NewDecoder(resp.Body).Decode(&gr); err != nil {
			return fmt.Errorf("wp: decode response: %w", err)
		}
		if len(gr.Errors) > 0 {
			msgs := make([]string, 0, len(gr.Errors))
			for _, e := range gr.Errors {
				msgs = append(msgs, e.Message)
			}
			return backoff.Permanent(fmt.Errorf("wp: graphql: %s", strings.Join(msgs, "; ")))
		}
		if out != nil {
			if err := json.Unmarshal(gr.Data, out); err != nil {
				return backoff.Permanent(fmt.Errorf("wp: decode data: %w", err))
			}
		}
		return nil
	}

	bo := backoff.WithContext(backoff.WithMaxRetries(backoff.NewExponentialBackOff(), c.maxRetries), ctx)
	notify := func(err error, wait time.Duration) {
		c.log.Warn("cms query retry",
			zap.Error(err),
			zap.Duration("backoff", wait),
		)
	}
	return backoff.RetryNotify(op, bo, notify)
}
