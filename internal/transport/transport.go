// Package transport performs the HTTP calls for the auth client and applies
// the one retry policy every operation shares: retry only transport-level
// failures and 5xx responses, a bounded number of times; never 4xx; never
// 429. Non-idempotent mutations carry a client-generated idempotency key
// that is stable across automatic retries of the same submission and fresh
// for every new submission.
package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"moviesnow/internal/platform/metrics"
	dErrors "moviesnow/pkg/domain-errors"
	"moviesnow/pkg/platform/circuit"
)

// TokenSource supplies the bearer token for authenticated calls. An empty
// token means the call goes out unauthenticated.
type TokenSource interface {
	AccessToken() string
}

// Request describes one logical API call.
type Request struct {
	// Op names the operation for spans, logs, and metrics ("auth.login").
	Op     string
	Method string
	Path   string
	Query  url.Values
	// Body is the validated request payload; nil sends no body.
	Body any
	// Idempotent marks requests that are safe to deliver twice without a
	// key. Everything else gets an Idempotency-Key header.
	Idempotent bool
	// ReauthToken attaches an elevated grant on step-up retries.
	ReauthToken string
}

type Client struct {
	base       *url.URL
	http       *http.Client
	tokens     TokenSource
	logger     *slog.Logger
	metrics    *metrics.Metrics
	breaker    *circuit.Breaker
	tracer     trace.Tracer
	maxRetries uint64
	retryWait  time.Duration
	userAgent  string
}

type Option func(*Client)

func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.http = h }
}

func WithTokenSource(ts TokenSource) Option {
	return func(c *Client) { c.tokens = ts }
}

func WithLogger(l *slog.Logger) Option {
	return func(c *Client) { c.logger = l }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(c *Client) { c.metrics = m }
}

// WithMaxRetries overrides the retry bound for transient failures.
func WithMaxRetries(n uint64) Option {
	return func(c *Client) { c.maxRetries = n }
}

// WithRetryWait overrides the initial backoff interval. Tests shrink it.
func WithRetryWait(d time.Duration) Option {
	return func(c *Client) { c.retryWait = d }
}

func WithUserAgent(ua string) Option {
	return func(c *Client) { c.userAgent = ua }
}

func New(baseURL string, opts ...Option) (*Client, error) {
	base, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("parse base URL: %w", err)
	}
	c := &Client{
		base:       base,
		http:       &http.Client{Timeout: 15 * time.Second},
		logger:     slog.Default(),
		breaker:    circuit.New("transport", circuit.WithFailureThreshold(5), circuit.WithSuccessThreshold(2)),
		tracer:     otel.Tracer("moviesnow/internal/transport"),
		maxRetries: 2,
		retryWait:  250 * time.Millisecond,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// errorBody is the API error envelope.
type errorBody struct {
	Error       string `json:"error"`
	Description string `json:"error_description"`
	Message     string `json:"message"`
	RetryAfter  int    `json:"retry_after"`
	RequestID   string `json:"request_id"`
}

// Do executes req, decodes a successful response into out (which may be nil
// for fire-and-forget acknowledgements), and returns a coded error
// otherwise. Retries happen inside; callers see only the final outcome.
func (c *Client) Do(ctx context.Context, req Request, out any) error {
	ctx, span := c.tracer.Start(ctx, req.Op,
		trace.WithAttributes(
			attribute.String("http.method", req.Method),
			attribute.String("http.path", req.Path),
		))
	defer span.End()

	var body []byte
	if req.Body != nil {
		var err error
		body, err = json.Marshal(req.Body)
		if err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "encode request body")
		}
	}

	// One key per logical submission, reused only across automatic retries
	// of that same submission.
	idemKey := ""
	if !req.Idempotent {
		idemKey = uuid.NewString()
	}
	requestID := uuid.NewString()

	attempts := 0
	start := time.Now()
	operation := func() error {
		attempts++
		return c.attempt(ctx, req, body, idemKey, requestID, out)
	}

	retries := c.maxRetries
	if c.breaker.IsOpen() {
		// While the breaker is open a single attempt still probes the API,
		// but retries are suppressed so a broken backend is not amplified.
		retries = 0
	}

	bo := backoff.WithContext(
		backoff.WithMaxRetries(c.newBackOff(), retries), ctx)
	err := backoff.RetryNotify(operation, bo, func(err error, wait time.Duration) {
		c.metrics.ObserveRetry(req.Op)
		c.logger.DebugContext(ctx, "retrying request",
			"op", req.Op, "error", err, "wait", wait)
	})

	c.recordOutcome(ctx, req.Op, err)
	c.metrics.ObserveRequest(req.Op, string(resultCode(err)), time.Since(start).Seconds())

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, string(dErrors.CodeOf(err)))
		return err
	}
	span.SetStatus(codes.Ok, "")
	return nil
}

func (c *Client) newBackOff() backoff.BackOff {
	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = c.retryWait
	bo.MaxInterval = 4 * time.Second
	return bo
}

func (c *Client) attempt(ctx context.Context, req Request, body []byte, idemKey, requestID string, out any) error {
	u := *c.base
	u.Path = strings.TrimRight(u.Path, "/") + req.Path
	if len(req.Query) > 0 {
		u.RawQuery = req.Query.Encode()
	}

	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	httpReq, err := http.NewRequestWithContext(ctx, req.Method, u.String(), reader)
	if err != nil {
		return backoff.Permanent(dErrors.Wrap(err, dErrors.CodeInternal, "build request"))
	}

	httpReq.Header.Set("Accept", "application/json")
	httpReq.Header.Set("X-Request-ID", requestID)
	if body != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}
	if idemKey != "" {
		httpReq.Header.Set("Idempotency-Key", idemKey)
	}
	if req.ReauthToken != "" {
		httpReq.Header.Set("X-Reauth-Token", req.ReauthToken)
	}
	if c.userAgent != "" {
		httpReq.Header.Set("User-Agent", c.userAgent)
	}
	if c.tokens != nil {
		if at := c.tokens.AccessToken(); at != "" {
			httpReq.Header.Set("Authorization", "Bearer "+at)
		}
	}

	resp, err := c.http.Do(httpReq)
	if err != nil {
		// No status available: transient by definition.
		return dErrors.Wrap(err, dErrors.CodeNetwork, "request failed").WithRequestID(requestID)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeNetwork, "read response").WithRequestID(requestID)
	}

	if resp.StatusCode < 300 {
		// 204 and empty bodies are acceptable acknowledgements.
		if out == nil || len(respBody) == 0 {
			return nil
		}
		if err := json.Unmarshal(respBody, out); err != nil {
			return backoff.Permanent(
				dErrors.Wrap(err, dErrors.CodeBadRequest, "decode response").WithRequestID(requestID))
		}
		return nil
	}

	apiErr := c.decodeError(resp, respBody, requestID)
	if !dErrors.Retryable(apiErr) {
		return backoff.Permanent(apiErr)
	}
	return apiErr
}

func (c *Client) decodeError(resp *http.Response, body []byte, requestID string) error {
	var envelope errorBody
	_ = json.Unmarshal(body, &envelope)

	code := dErrors.FromStatus(resp.StatusCode, envelope.Error)
	if resp.Header.Get("X-Reauth-Required") != "" {
		code = dErrors.CodeStepUpRequired
	}
	if code == dErrors.CodeStepUpRequired {
		c.metrics.ObserveStepUp()
	}

	msg := envelope.Description
	if msg == "" {
		msg = envelope.Message
	}
	if msg == "" {
		msg = http.StatusText(resp.StatusCode)
	}
	if code == dErrors.CodeRateLimited && envelope.RetryAfter > 0 {
		msg = fmt.Sprintf("%s (retry after %ds)", msg, envelope.RetryAfter)
	}

	if envelope.RequestID != "" {
		requestID = envelope.RequestID
	}
	return dErrors.New(code, msg).WithRequestID(requestID)
}

// recordOutcome feeds the breaker. Only transport-level failures count
// against it; a 4xx is a healthy backend saying no.
func (c *Client) recordOutcome(ctx context.Context, op string, err error) {
	if err == nil || !dErrors.Retryable(err) {
		_, change := c.breaker.RecordSuccess()
		if change.Closed {
			c.logger.InfoContext(ctx, "transport breaker closed", "op", op)
		}
		return
	}
	_, change := c.breaker.RecordFailure()
	if change.Opened {
		c.metrics.ObserveBreakerOpen()
		c.logger.WarnContext(ctx, "transport breaker opened", "op", op, "error", err)
	}
}

func resultCode(err error) dErrors.Code {
	if err == nil {
		return "ok"
	}
	return dErrors.CodeOf(err)
}
