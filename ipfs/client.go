// Package ipfs provides a content store client over the IPFS HTTP API.
//
// Content is addressed by CIDv0 locators (the familiar "Qm…" strings).
// Uploads are idempotent per content and retried with a fixed backoff;
// every add response is validated as a well-formed locator before it is
// trusted.
package ipfs

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/ipfs/go-cid"

	"github.com/meigma/certledger/retry"
)

// DefaultRetryPolicy is the upload retry budget: 3 attempts with a fixed
// one second wait between them.
var DefaultRetryPolicy = retry.Policy{Attempts: 3, Delay: time.Second}

// DefaultGatewayURL is the public gateway used to build shareable content
// URLs.
const DefaultGatewayURL = "https://ipfs.io"

// Client talks to the IPFS HTTP API (e.g. a local Kubo node on
// http://localhost:5001).
type Client struct {
	apiURL     string
	gatewayURL string
	httpClient *http.Client
	logger     *slog.Logger
	policy     retry.Policy
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient sets the HTTP client used for API requests.
func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

// WithLogger sets the logger used for client diagnostics.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithRetryPolicy overrides the upload retry policy.
func WithRetryPolicy(policy retry.Policy) Option {
	return func(c *Client) {
		c.policy = policy
	}
}

// WithGatewayURL sets the public gateway used by [Client.GatewayURL].
func WithGatewayURL(gatewayURL string) Option {
	return func(c *Client) {
		c.gatewayURL = strings.TrimRight(gatewayURL, "/")
	}
}

// NewClient creates a content store client for the IPFS API at apiURL.
func NewClient(apiURL string, opts ...Option) (*Client, error) {
	if _, err := url.Parse(apiURL); err != nil || apiURL == "" {
		return nil, fmt.Errorf("ipfs: invalid api url %q", apiURL)
	}
	c := &Client{
		apiURL:     strings.TrimRight(apiURL, "/"),
		gatewayURL: DefaultGatewayURL,
		httpClient: http.DefaultClient,
		policy:     DefaultRetryPolicy,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.httpClient == nil {
		c.httpClient = http.DefaultClient
	}
	return c, nil
}

// log returns the logger, falling back to a discard logger if nil.
func (c *Client) log() *slog.Logger {
	if c.logger == nil {
		return slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return c.logger
}

// ValidateLocator checks that s is a well-formed CIDv0 content locator.
func ValidateLocator(s string) error {
	parsed, err := cid.Decode(s)
	if err != nil {
		return fmt.Errorf("%w: %q: %s", ErrInvalidLocator, s, err)
	}
	if parsed.Version() != 0 {
		return fmt.Errorf("%w: %q: want CIDv0, got version %d", ErrInvalidLocator, s, parsed.Version())
	}
	return nil
}

// GatewayURL returns the public gateway URL for a locator.
func (c *Client) GatewayURL(locator string) string {
	return c.gatewayURL + "/ipfs/" + locator
}

// Upload stores payload and returns its content locator.
//
// Uploading identical bytes is idempotent: the store derives the locator
// from content, so repeated uploads yield the same usable locator. Failed
// attempts are retried per the client's policy; a response that is not a
// well-formed locator counts as a failed attempt, never as a success.
// After the budget is exhausted the last error is surfaced as
// [*UploadError].
func (c *Client) Upload(ctx context.Context, payload []byte) (string, error) {
	if len(payload) == 0 {
		return "", ErrEmptyPayload
	}

	var locator string
	err := retry.Do(ctx, c.policy, func(ctx context.Context) error {
		loc, err := c.add(ctx, payload)
		if err != nil {
			c.log().Debug("upload attempt failed", "error", err)
			return err
		}
		if err := ValidateLocator(loc); err != nil {
			c.log().Debug("upload attempt returned malformed locator", "locator", loc)
			return err
		}
		locator = loc
		return nil
	})
	if err != nil {
		var retryErr *retry.Error
		if errors.As(err, &retryErr) {
			return "", &UploadError{Attempts: retryErr.Attempts, Err: retryErr.Err}
		}
		return "", err
	}

	c.log().Debug("uploaded content", "locator", locator, "size", len(payload))
	return locator, nil
}

// Fetch returns the exact bytes previously stored for a locator.
func (c *Client) Fetch(ctx context.Context, locator string) ([]byte, error) {
	if err := ValidateLocator(locator); err != nil {
		return nil, err
	}

	reqURL := c.apiURL + "/api/v0/cat?arg=" + url.QueryEscape(locator)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, reqURL, nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fetchError(resp, locator)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: read content: %s", ErrUnavailable, err)
	}
	return data, nil
}

// add performs a single add request against the API.
func (c *Client) add(ctx context.Context, payload []byte) (string, error) {
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	part, err := writer.CreateFormFile("file", "payload")
	if err != nil {
		return "", err
	}
	if _, err := part.Write(payload); err != nil {
		return "", err
	}
	if err := writer.Close(); err != nil {
		return "", err
	}

	reqURL := c.apiURL + "/api/v0/add?cid-version=0"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, reqURL, &body)
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %s", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return "", fmt.Errorf("add: unexpected status %d: %s", resp.StatusCode, strings.TrimSpace(string(msg)))
	}

	var result struct {
		Hash string `json:"Hash"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", fmt.Errorf("add: decode response: %w", err)
	}
	return result.Hash, nil
}

// fetchError maps a non-200 cat response to a sentinel error.
func fetchError(resp *http.Response, locator string) error {
	msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
	text := strings.ToLower(string(msg))
	if resp.StatusCode == http.StatusNotFound || strings.Contains(text, "not found") {
		return fmt.Errorf("%w: %s", ErrNotFound, locator)
	}
	return fmt.Errorf("%w: cat %s: status %d: %s", ErrUnavailable, locator, resp.StatusCode, strings.TrimSpace(string(msg)))
}
