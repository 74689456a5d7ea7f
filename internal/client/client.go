// Package client talks to the metrics API: password login and paginated
// metric fetches.
package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/wolfeidau/admetrics/internal/logger"
	"github.com/wolfeidau/admetrics/internal/query"
	"github.com/wolfeidau/admetrics/internal/session"
	"github.com/wolfeidau/admetrics/internal/telemetry"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"golang.org/x/oauth2"
)

const maxErrorBody = 64 << 10

// Config holds common client configuration
type Config struct {
	BaseURL string
	// Timeout bounds each request. Zero means no timeout.
	Timeout time.Duration
	// Transport is the innermost round tripper, http.DefaultTransport when nil.
	Transport http.RoundTripper
}

// DefaultConfig returns a default client configuration
func DefaultConfig() Config {
	return Config{
		BaseURL: "http://localhost:8000",
	}
}

// Client is safe for concurrent use. It holds no session state; every call
// is given the session to act as.
type Client struct {
	baseURL   *url.URL
	timeout   time.Duration
	transport http.RoundTripper
	metrics   *telemetry.Metrics
}

func New(cfg Config) (*Client, error) {
	u, err := url.Parse(strings.TrimRight(cfg.BaseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("invalid api url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("invalid api url %q: scheme must be http or https", cfg.BaseURL)
	}

	base := cfg.Transport
	if base == nil {
		base = http.DefaultTransport
	}

	return &Client{
		baseURL:   u,
		timeout:   cfg.Timeout,
		transport: otelhttp.NewTransport(logger.NewHTTPRequests(log.Logger, base)),
		metrics:   telemetry.GetMetrics(),
	}, nil
}

// Login exchanges credentials for a session using the OAuth2 password grant
// against /auth/login.
func (c *Client) Login(ctx context.Context, username, password string) (session.Session, error) {
	started := time.Now()

	cfg := &oauth2.Config{
		Endpoint: oauth2.Endpoint{
			TokenURL:  c.baseURL.JoinPath("auth", "login").String(),
			AuthStyle: oauth2.AuthStyleInParams,
		},
	}

	ctx = context.WithValue(ctx, oauth2.HTTPClient, c.httpClient(c.transport))

	tok, err := cfg.PasswordCredentialsToken(ctx, username, password)
	if err != nil {
		err = classifyLoginError(err)
		c.record(ctx, "login", started, err)
		c.metrics.LoginsTotal.Add(ctx, 1, metric.WithAttributes(attribute.String("result", "failure")))
		return session.Session{}, err
	}

	c.record(ctx, "login", started, nil)
	c.metrics.LoginsTotal.Add(ctx, 1, metric.WithAttributes(attribute.String("result", "success")))

	role := session.RoleStandard
	if r, ok := tok.Extra("role").(string); ok {
		role = session.ParseRole(r)
	}

	log.Debug().Str("username", username).Str("role", string(role)).Msg("login succeeded")

	return session.Session{Token: tok.AccessToken, Role: role}, nil
}

func classifyLoginError(err error) error {
	var rerr *oauth2.RetrieveError
	if errors.As(err, &rerr) {
		status := http.StatusUnauthorized
		if rerr.Response != nil {
			status = rerr.Response.StatusCode
		}
		return &AuthenticationError{StatusCode: status, Detail: parseDetail(status, rerr.Body)}
	}
	return &NetworkError{Op: "login", Err: err}
}

// FetchPage requests one page of metrics. The error is one of
// ErrUnauthorized, *APIError or *NetworkError.
func (c *Client) FetchPage(ctx context.Context, sess session.Session, q query.Query) (*PageResult, error) {
	if sess.Token == "" {
		return nil, ErrUnauthorized
	}

	started := time.Now()

	u := c.baseURL.JoinPath("metrics")
	u.RawQuery = q.Values().Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, &NetworkError{Op: "fetch metrics", Err: err}
	}
	req.Header.Set("Accept", "application/json")

	hc := c.httpClient(&oauth2.Transport{
		Source: oauth2.StaticTokenSource(&oauth2.Token{AccessToken: sess.Token, TokenType: "Bearer"}),
		Base:   c.transport,
	})

	res, err := c.doFetch(hc, req)
	c.record(ctx, "fetch", started, err)
	if err != nil {
		return nil, err
	}

	if res.Page < 1 {
		res.Page = q.Page
	}

	log.Debug().
		Int("page", res.Page).
		Int("rows", len(res.Rows)).
		Int("total_items", res.TotalItems).
		Msg("fetched metrics")

	return res, nil
}

func (c *Client) doFetch(hc *http.Client, req *http.Request) (*PageResult, error) {
	resp, err := hc.Do(req)
	if err != nil {
		return nil, &NetworkError{Op: "fetch metrics", Err: err}
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusUnauthorized:
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxErrorBody))
		return nil, ErrUnauthorized
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		body, err := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		if err != nil {
			return nil, &NetworkError{Op: "read error response", Err: err}
		}
		// the API always answers in JSON, anything else came from a proxy
		if !json.Valid(body) {
			return nil, &NetworkError{Op: "read error response", Err: fmt.Errorf("%w: %s", ErrNotJSON, resp.Status)}
		}
		return nil, &APIError{StatusCode: resp.StatusCode, Detail: parseDetail(resp.StatusCode, body)}
	}

	res := &PageResult{}
	if err := json.NewDecoder(resp.Body).Decode(res); err != nil {
		return nil, &NetworkError{Op: "decode metrics response", Err: err}
	}

	return res, nil
}

func (c *Client) httpClient(rt http.RoundTripper) *http.Client {
	return &http.Client{Transport: rt, Timeout: c.timeout}
}

func (c *Client) record(ctx context.Context, op string, started time.Time, err error) {
	attrs := metric.WithAttributes(attribute.String("op", op))

	c.metrics.RequestsTotal.Add(ctx, 1, attrs)
	c.metrics.RequestDuration.Record(ctx, float64(time.Since(started).Milliseconds()), attrs)

	if err != nil {
		c.metrics.RequestErrorsTotal.Add(ctx, 1, metric.WithAttributes(
			attribute.String("op", op),
			attribute.String("kind", ErrorKind(err)),
		))
	}
}

// ErrorKind names the class of a client error for logs and metrics.
func ErrorKind(err error) string {
	var (
		apiErr  *APIError
		netErr  *NetworkError
		authErr *AuthenticationError
	)

	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrUnauthorized):
		return "unauthorized"
	case errors.As(err, &apiErr):
		return "api"
	case errors.As(err, &authErr):
		return "authentication"
	case errors.As(err, &netErr):
		return "network"
	}
	return "unknown"
}
