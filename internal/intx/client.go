// Package intx is a read-only client for the exchange's authenticated
// portfolio endpoints.
package intx

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"intxexport/config"
	"intxexport/internal/metrics"
	"intxexport/internal/signer"
	"intxexport/logger"
)

const (
	defaultTimeout = 30 * time.Second
	userAgent      = "intxexport/1.0"
)

// Client issues signed GET requests scoped to one portfolio.
type Client struct {
	baseURL    string
	accountID  string
	signer     *signer.Signer
	httpClient *http.Client
	transfers  TransferQuery
	log        *logger.Log

	signerOpts []signer.Option
}

// Option customises a Client.
type Option func(*Client)

// WithHTTPClient replaces the default HTTP client. Its Timeout is kept as is.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// WithTimeout sets the per-request timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.httpClient.Timeout = d
		}
	}
}

// WithClock controls the timestamps used for signing.
func WithClock(now func() time.Time) Option {
	return func(c *Client) {
		c.signerOpts = append(c.signerOpts, signer.WithClock(now))
	}
}

// WithTransferQuery overrides the page size and type filter for Transfers.
func WithTransferQuery(q TransferQuery) Option {
	return func(c *Client) {
		if q.ResultLimit > 0 {
			c.transfers.ResultLimit = q.ResultLimit
		}
		if q.Type != "" {
			c.transfers.Type = q.Type
		}
	}
}

func WithLogger(l *logger.Log) Option {
	return func(c *Client) {
		if l != nil {
			c.log = l
		}
	}
}

// New builds a client from resolved credentials. The secret is decoded here,
// so a malformed one fails with a *signer.SigningError before any request.
func New(creds config.Credentials, opts ...Option) (*Client, error) {
	base, err := url.Parse(creds.BaseURL)
	if err != nil || (base.Scheme != "http" && base.Scheme != "https") || base.Host == "" {
		return nil, &config.ConfigurationError{Reason: fmt.Sprintf("invalid base url %q", creds.BaseURL), Err: err}
	}
	if strings.TrimSpace(creds.AccountID) == "" {
		return nil, &config.ConfigurationError{Reason: "portfolio id is required"}
	}

	c := &Client{
		baseURL:    strings.TrimRight(creds.BaseURL, "/"),
		accountID:  creds.AccountID,
		httpClient: &http.Client{Timeout: defaultTimeout},
		transfers:  DefaultTransferQuery(),
		log:        logger.GetLogger(),
	}
	for _, opt := range opts {
		opt(c)
	}

	c.signer, err = signer.New(creds.APIKey, creds.APISecret, creds.Passphrase, c.signerOpts...)
	if err != nil {
		return nil, err
	}

	c.log.WithComponent("intx_client").WithFields(logger.Fields{
		"base_url":   c.baseURL,
		"portfolio":  c.accountID,
		"api_key":    logger.Mask(creds.APIKey),
		"timeout_ms": c.httpClient.Timeout.Milliseconds(),
	}).Debug("client initialized")

	return c, nil
}

// AccountID returns the portfolio every scoped call uses.
func (c *Client) AccountID() string {
	return c.accountID
}

// get signs and sends one GET request and decodes the JSON reply.
func (c *Client) get(ctx context.Context, endpoint, path string, query url.Values) (Result, error) {
	target := c.baseURL + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return Result{}, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", userAgent)

	log := c.log.WithComponent("intx_client").WithFields(logger.Fields{
		"endpoint": endpoint,
		"method":   req.Method,
		"path":     req.URL.Path,
	})

	c.signer.Apply(req, "")
	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.record(endpoint, 0, time.Since(start))
		if isTimeout(err) {
			return Result{}, &TimeoutError{Method: req.Method, Path: req.URL.Path, Err: err}
		}
		return Result{}, fmt.Errorf("%s %s: request failed: %w", req.Method, req.URL.Path, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	elapsed := time.Since(start)
	c.record(endpoint, resp.StatusCode, elapsed)
	if err != nil {
		if isTimeout(err) {
			return Result{}, &TimeoutError{Method: req.Method, Path: req.URL.Path, Err: err}
		}
		return Result{}, fmt.Errorf("%s %s: failed to read response body: %w", req.Method, req.URL.Path, err)
	}

	log = log.WithFields(logger.Fields{"status": resp.StatusCode, "bytes": len(body)})
	logger.LogPerformanceEntry(log, "intx_client", endpoint, elapsed, nil)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		log.Warn("request rejected")
		return Result{}, newHTTPError(req.Method, req.URL.Path, resp.StatusCode, body)
	}

	return ParseResult(req.URL.Path, body)
}

func (c *Client) record(endpoint string, status int, elapsed time.Duration) {
	fields := logger.Fields{
		"endpoint": endpoint,
		"status":   strconv.Itoa(status),
	}
	metrics.EmitMetric(c.log, "intx_client", "api_requests", 1, "counter", fields)
	metrics.EmitMetric(c.log, "intx_client", "api_request_duration_ms", float64(elapsed.Microseconds())/1000, "gauge",
		logger.Fields{"endpoint": endpoint, "unit": "milliseconds"})
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}
