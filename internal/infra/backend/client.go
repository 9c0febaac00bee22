package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"

	domainauth "hotelfront/internal/domain/auth"
)

const snippetLimit = 1024

var ErrBaseURLRequired = errors.New("backend: base url required")

// StatusError is a non-2xx answer from the hotel backend.
type StatusError struct {
	Endpoint string
	Status   int
	Body     string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("backend: %s returned %d", e.Endpoint, e.Status)
	}
	return fmt.Sprintf("backend: %s returned %d: %s", e.Endpoint, e.Status, e.Body)
}

// TokenSource provides the storefront's own bearer token.
type TokenSource interface {
	Token(ctx context.Context) (string, error)
}

// Gate holds requests until the auth provider can be reached.
type Gate interface {
	Wait(ctx context.Context) error
}

// Recorder receives one sample per backend call.
type Recorder interface {
	ObserveBackend(endpoint string, status int, elapsed time.Duration)
}

type Config struct {
	BaseURL string
	Timeout time.Duration
}

// Client talks to the hotel REST backend. Calls carry the caller's token when
// the context holds an authenticated principal and the service token otherwise.
type Client struct {
	base    *url.URL
	http    *http.Client
	tokens  TokenSource
	gate    Gate
	metrics Recorder
	logger  *slog.Logger
	tracer  trace.Tracer
}

type Option func(*Client)

func WithHTTPClient(hc *http.Client) Option { return func(c *Client) { c.http = hc } }
func WithTokenSource(ts TokenSource) Option { return func(c *Client) { c.tokens = ts } }
func WithGate(g Gate) Option                { return func(c *Client) { c.gate = g } }
func WithRecorder(r Recorder) Option        { return func(c *Client) { c.metrics = r } }
func WithLogger(l *slog.Logger) Option      { return func(c *Client) { c.logger = l } }

func New(cfg Config, opts ...Option) (*Client, error) {
	if strings.TrimSpace(cfg.BaseURL) == "" {
		return nil, ErrBaseURLRequired
	}
	base, err := url.Parse(cfg.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("backend: parse base url: %w", err)
	}
	if !strings.HasSuffix(base.Path, "/") {
		base.Path += "/"
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	c := &Client{
		base:   base,
		http:   &http.Client{Timeout: timeout},
		tracer: otel.Tracer("hotelfront/backend"),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

type call struct {
	endpoint string
	method   string
	path     string
	query    url.Values
	body     any
	out      any
	notFound error
}

func (c *Client) do(ctx context.Context, cl call) error {
	if c.gate != nil {
		if err := c.gate.Wait(ctx); err != nil {
			return fmt.Errorf("backend: auth provider not ready: %w", err)
		}
	}
	ctx, span := c.tracer.Start(ctx, "backend."+cl.endpoint,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(attribute.String("http.request.method", cl.method)))
	defer span.End()

	status, err := c.roundTrip(ctx, cl)
	if status != 0 {
		span.SetAttributes(attribute.Int("http.response.status_code", status))
	}
	if err != nil && !errors.Is(err, cl.notFound) {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	return err
}

func (c *Client) roundTrip(ctx context.Context, cl call) (status int, err error) {
	target := c.base.ResolveReference(&url.URL{Path: strings.TrimPrefix(cl.path, "/")})
	if len(cl.query) > 0 {
		target.RawQuery = cl.query.Encode()
	}

	var body io.Reader
	if cl.body != nil {
		payload, err := json.Marshal(cl.body)
		if err != nil {
			return 0, fmt.Errorf("backend: encode %s: %w", cl.endpoint, err)
		}
		body = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, cl.method, target.String(), body)
	if err != nil {
		return 0, err
	}
	req.Header.Set("Accept", "application/json")
	if cl.body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	token, err := c.bearer(ctx)
	if err != nil {
		return 0, err
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	otel.GetTextMapPropagator().Inject(ctx, propagation.HeaderCarrier(req.Header))

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.observe(cl.endpoint, 0, start)
		return 0, fmt.Errorf("backend: %s: %w", cl.endpoint, err)
	}
	defer resp.Body.Close()
	c.observe(cl.endpoint, resp.StatusCode, start)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, snippetLimit))
		if resp.StatusCode == http.StatusNotFound && cl.notFound != nil {
			return resp.StatusCode, cl.notFound
		}
		if c.logger != nil {
			c.logger.Warn("backend call failed", "endpoint", cl.endpoint, "status", resp.StatusCode)
		}
		return resp.StatusCode, &StatusError{Endpoint: cl.endpoint, Status: resp.StatusCode, Body: strings.TrimSpace(string(snippet))}
	}
	if cl.out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return resp.StatusCode, nil
	}
	if err := json.NewDecoder(resp.Body).Decode(cl.out); err != nil {
		return resp.StatusCode, fmt.Errorf("backend: decode %s: %w", cl.endpoint, err)
	}
	return resp.StatusCode, nil
}

func (c *Client) bearer(ctx context.Context) (string, error) {
	if p, ok := domainauth.PrincipalFromContext(ctx); ok && p.Token != "" {
		return p.Token, nil
	}
	if c.tokens == nil {
		return "", nil
	}
	token, err := c.tokens.Token(ctx)
	if err != nil {
		return "", fmt.Errorf("backend: service token: %w", err)
	}
	return token, nil
}

func (c *Client) observe(endpoint string, status int, start time.Time) {
	if c.metrics != nil {
		c.metrics.ObserveBackend(endpoint, status, time.Since(start))
	}
}
