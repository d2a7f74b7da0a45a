package client

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/GriffinCanCode/BizMate/core/internal/infrastructure/logging"
	"github.com/GriffinCanCode/BizMate/core/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/BizMate/core/internal/infrastructure/resilience"
	"github.com/bytedance/sonic"
	"github.com/go-resty/resty/v2"
	"github.com/google/uuid"
	"github.com/hashicorp/go-retryablehttp"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// RequestIDHeader carries a per-call id for correlating logs.
const RequestIDHeader = "X-Request-ID"

// TokenStore is the part of the session store the client uses. The token
// is read on every request and never cached.
type TokenStore interface {
	Get() (string, bool)
	Set(token string)
	Clear()
	// ClearIf clears only while the stored token is still token.
	ClearIf(token string) bool
}

// Options configures a Client.
type Options struct {
	BaseURL   string
	Timeout   time.Duration
	UserAgent string
	// RequestsPerSecond limits outgoing calls. Zero means unlimited.
	RequestsPerSecond float64
	// Breaker is optional; nil disables it.
	Breaker *resilience.Breaker
	Logger  *logging.Logger
	Metrics *monitoring.Metrics
}

// Client is the BizMate API client.
type Client struct {
	resty   *resty.Client
	store   TokenStore
	limiter *rate.Limiter
	breaker *resilience.Breaker
	logger  *logging.Logger
	metrics *monitoring.Metrics
}

// Call describes one API request.
type Call struct {
	Method string
	Path   string
	// Body is sent as JSON when set.
	Body any
	// Form is sent url-encoded when set. Body takes precedence.
	Form map[string]string
	// AuthRequired attaches the session token and fails fast without one.
	AuthRequired bool
	// Route is the metrics label, for paths that embed ids. Defaults to Path.
	Route string
}

// Op names the call in errors and logs.
func (c Call) Op() string {
	return c.Method + " " + c.Path
}

func (c Call) route() string {
	if c.Route != "" {
		return c.Route
	}
	return c.Path
}

// Response is a successful (2xx) answer.
type Response struct {
	Status    int
	Body      []byte
	Header    http.Header
	RequestID string
}

// New creates a client bound to store.
func New(store TokenStore, opts Options) *Client {
	if opts.Timeout <= 0 {
		opts.Timeout = 30 * time.Second
	}
	if opts.UserAgent == "" {
		opts.UserAgent = "BizMate-Core/1.0"
	}

	// Pooled transport only; retries are disabled at both layers.
	retryClient := retryablehttp.NewClient()
	retryClient.RetryMax = 0
	retryClient.Logger = nil

	restyClient := resty.New()
	restyClient.
		SetBaseURL(strings.TrimRight(opts.BaseURL, "/")).
		SetTimeout(opts.Timeout).
		SetRetryCount(0).
		SetHeader("User-Agent", opts.UserAgent).
		SetHeader("Accept", "application/json").
		SetJSONMarshaler(sonic.Marshal).
		SetJSONUnmarshaler(sonic.Unmarshal)
	restyClient.SetTransport(retryClient.HTTPClient.Transport)

	limiter := rate.NewLimiter(rate.Inf, 0)
	if opts.RequestsPerSecond > 0 {
		burst := int(opts.RequestsPerSecond)
		if burst < 1 {
			burst = 1
		}
		limiter = rate.NewLimiter(rate.Limit(opts.RequestsPerSecond), burst)
	}

	return &Client{
		resty:   restyClient,
		store:   store,
		limiter: limiter,
		breaker: opts.Breaker,
		logger:  logging.OrNop(opts.Logger).Named("api"),
		metrics: opts.Metrics,
	}
}

// NewBreaker builds a breaker that opens after consecutive outages only.
// Rejections such as 404 or 422 and auth failures do not count.
func NewBreaker(failures uint32, timeout time.Duration, logger *logging.Logger, metrics *monitoring.Metrics) *resilience.Breaker {
	if failures == 0 {
		failures = 5
	}
	log := logging.OrNop(logger)
	return resilience.New("bizmate-api", resilience.Settings{
		MaxRequests: 1,
		Timeout:     timeout,
		ReadyToTrip: func(counts resilience.Counts) bool {
			return counts.ConsecutiveFailures >= failures
		},
		IsFailure: isOutage,
		OnStateChange: func(name string, from, to resilience.State) {
			log.Warn("API circuit breaker changed state",
				zap.String("breaker", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()))
			metrics.SetBreakerOpen(name, to == resilience.StateOpen)
		},
	})
}

// Request performs call and classifies the outcome.
func (c *Client) Request(ctx context.Context, call Call) (*Response, error) {
	op := call.Op()

	var token string
	if call.AuthRequired {
		t, ok := c.store.Get()
		if !ok {
			c.metrics.RecordAPIRequest(call.route(), call.Method, KindUnauthenticated.String(), 0)
			return nil, Unauthenticated(op)
		}
		token = t
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return nil, transient(op, 0, "", err)
	}

	requestID := uuid.NewString()
	timer := monitoring.NewTimer(c.metrics, call.route(), call.Method)

	resp, err := resilience.Do(c.breaker, func() (*Response, error) {
		return c.execute(ctx, call, token, requestID)
	})
	if errors.Is(err, resilience.ErrCircuitOpen) || errors.Is(err, resilience.ErrTooManyRequests) {
		err = transient(op, 0, "BizMate is not reachable right now. Please try again later.", err)
	}

	if err != nil {
		kind := KindOf(err)
		timer.Stop(kind.String())
		if kind == KindAuthExpired {
			c.invalidate(token, op, StatusOf(err), requestID)
		} else {
			c.logger.Warn("API call failed",
				zap.String("op", op),
				zap.String("kind", kind.String()),
				zap.Int("status", StatusOf(err)),
				zap.String("request_id", requestID),
				zap.Error(err))
		}
		return nil, err
	}

	timer.Stop("success")
	c.logger.Debug("API call succeeded",
		zap.String("op", op),
		zap.Int("status", resp.Status),
		zap.String("request_id", requestID))
	return resp, nil
}

// invalidate clears the session the rejected request was sent with. A
// session set while the request was in flight survives.
func (c *Client) invalidate(sent, op string, status int, requestID string) {
	fields := []zap.Field{
		zap.String("op", op),
		zap.Int("status", status),
		zap.String("request_id", requestID),
	}
	if sent == "" {
		c.logger.Warn("Request rejected by API, clearing session", fields...)
		c.store.Clear()
		return
	}
	if c.store.ClearIf(sent) {
		c.logger.Warn("Session rejected by API, clearing token", fields...)
		return
	}
	c.logger.Info("Ignoring rejection of a replaced session", fields...)
}

func (c *Client) execute(ctx context.Context, call Call, token, requestID string) (*Response, error) {
	op := call.Op()
	req := c.resty.R().
		SetContext(ctx).
		SetHeader(RequestIDHeader, requestID)
	if token != "" {
		req.SetAuthToken(token)
	}
	switch {
	case call.Body != nil:
		req.SetHeader("Content-Type", "application/json").SetBody(call.Body)
	case call.Form != nil:
		req.SetFormData(call.Form)
	}

	raw, err := req.Execute(call.Method, call.Path)
	if err != nil {
		return nil, transient(op, 0, "", err)
	}

	status := raw.StatusCode()
	body := raw.Body()
	switch {
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return nil, authExpired(op, status)
	case status < 200 || status > 299:
		return nil, transient(op, status, detailOf(body), nil)
	}

	return &Response{
		Status:    status,
		Body:      body,
		Header:    raw.Header(),
		RequestID: requestID,
	}, nil
}

// detailOf extracts the API's human-readable error detail, if any.
func detailOf(body []byte) string {
	if len(body) == 0 {
		return ""
	}
	node, err := sonic.Get(body, "detail")
	if err != nil {
		return ""
	}
	detail, err := node.String()
	if err != nil {
		return ""
	}
	return detail
}
