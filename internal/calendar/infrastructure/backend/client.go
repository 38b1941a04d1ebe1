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
	"sync"
	"time"

	"github.com/huynnh/calsync/pkg/observability"
	"github.com/sony/gobreaker/v2"
	"golang.org/x/oauth2"
	"golang.org/x/time/rate"
)

const (
	defaultBaseURL      = "http://localhost:8000/api"
	defaultTimeout      = 30 * time.Second
	defaultRateLimit    = 10.0
	defaultBurst        = 20
	defaultRetryBackoff = 100 * time.Millisecond

	// authScheme is the prefix the backend expects in the Authorization header.
	authScheme = "Token"
)

// Scopes group requests for circuit breaking.
const (
	ScopeAuth          = "auth"
	ScopeTasks         = "tasks"
	ScopeEvents        = "events"
	ScopeGoogle        = "google"
	ScopeOutlook       = "outlook"
	ScopeNotifications = "notifications"
)

// Session supplies the auth token for every request and is told when the
// backend rejects it.
type Session interface {
	Token() string
	Invalidate()
}

// Config configures the backend client.
type Config struct {
	BaseURL         string
	Timeout         time.Duration
	RateLimit       float64
	Burst           int
	MaxRetries      int
	RetryBackoff    time.Duration
	BreakerFailures int
	BreakerTimeout  time.Duration

	// Transport allows injecting a custom HTTP transport (for tests).
	Transport http.RoundTripper
}

// Client is the shared REST client for the planner backend. It is rate
// limited, breaks per scope and retries idempotent reads.
type Client struct {
	cfg        Config
	httpClient *http.Client
	limiter    *rate.Limiter
	session    Session
	logger     *slog.Logger
	metrics    observability.Metrics

	mu       sync.Mutex
	breakers map[string]*gobreaker.CircuitBreaker[[]byte]
}

// NewClient creates a backend client. session may be nil for unauthenticated use.
func NewClient(cfg Config, session Session, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultBaseURL
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	if cfg.Timeout == 0 {
		cfg.Timeout = defaultTimeout
	}
	if cfg.RateLimit == 0 {
		cfg.RateLimit = defaultRateLimit
	}
	if cfg.Burst == 0 {
		cfg.Burst = defaultBurst
	}
	if cfg.RetryBackoff == 0 {
		cfg.RetryBackoff = defaultRetryBackoff
	}
	if cfg.MaxRetries < 0 {
		cfg.MaxRetries = 0
	}
	base := cfg.Transport
	if base == nil {
		base = http.DefaultTransport
	}

	return &Client{
		cfg: cfg,
		httpClient: &http.Client{
			Timeout:   cfg.Timeout,
			Transport: newSessionTransport(session, base),
		},
		limiter:  rate.NewLimiter(rate.Limit(cfg.RateLimit), cfg.Burst),
		session:  session,
		logger:   logger,
		metrics:  observability.NoopMetrics{},
		breakers: make(map[string]*gobreaker.CircuitBreaker[[]byte]),
	}
}

// WithMetrics sets the metrics sink.
func (c *Client) WithMetrics(metrics observability.Metrics) *Client {
	if metrics != nil {
		c.metrics = metrics
	}
	return c
}

// BaseURL returns the configured base URL.
func (c *Client) BaseURL() string {
	return c.cfg.BaseURL
}

// Get performs a GET and decodes the JSON response into out.
func (c *Client) Get(ctx context.Context, scope, path string, out any) error {
	return c.Do(ctx, scope, http.MethodGet, path, nil, out)
}

// Post performs a POST with a JSON body.
func (c *Client) Post(ctx context.Context, scope, path string, body, out any) error {
	return c.Do(ctx, scope, http.MethodPost, path, body, out)
}

// Put performs a PUT with a JSON body.
func (c *Client) Put(ctx context.Context, scope, path string, body, out any) error {
	return c.Do(ctx, scope, http.MethodPut, path, body, out)
}

// Delete performs a DELETE.
func (c *Client) Delete(ctx context.Context, scope, path string) error {
	return c.Do(ctx, scope, http.MethodDelete, path, nil, nil)
}

// Do executes a request against path (relative to the base URL) through the
// scope's circuit breaker. Only GET requests are retried.
func (c *Client) Do(ctx context.Context, scope, method, path string, body, out any) error {
	var payload []byte
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal body: %w", err)
		}
		payload = data
	}

	tags := []observability.Tag{observability.T("scope", scope), observability.T("method", method)}
	c.metrics.Counter(observability.MetricHTTPRequests, 1, tags...)

	respBody, err := c.breaker(scope).Execute(func() ([]byte, error) {
		return c.doWithRetry(ctx, method, path, payload)
	})
	if err != nil {
		c.metrics.Counter(observability.MetricHTTPErrors, 1, tags...)
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return fmt.Errorf("%s %w: %w", scope, ErrUnavailable, err)
		}
		if errors.Is(err, ErrUnauthorized) && c.session != nil {
			c.logger.Warn("backend rejected session token", "scope", scope, "path", path)
			c.session.Invalidate()
		}
		return err
	}

	if out != nil && len(bytes.TrimSpace(respBody)) > 0 {
		if err := json.Unmarshal(respBody, out); err != nil {
			return fmt.Errorf("decode %s %s: %w", method, path, err)
		}
	}
	return nil
}

func (c *Client) doWithRetry(ctx context.Context, method, path string, payload []byte) ([]byte, error) {
	attempts := 1
	if method == http.MethodGet {
		attempts += c.cfg.MaxRetries
	}

	var lastErr error
	for attempt := 0; attempt < attempts; attempt++ {
		if attempt > 0 {
			backoff := time.Duration(1<<uint(attempt-1)) * c.cfg.RetryBackoff
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(backoff):
			}
		}

		body, err := c.doOnce(ctx, method, path, payload)
		if err == nil {
			return body, nil
		}
		lastErr = err
		if !isRetryable(ctx, err) {
			return nil, err
		}
		c.logger.Debug("retrying backend request", "method", method, "path", path, "attempt", attempt+1, "error", err)
	}
	return nil, lastErr
}

func (c *Client) doOnce(ctx context.Context, method, path string, payload []byte) ([]byte, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter: %w", err)
	}

	var reader io.Reader
	if payload != nil {
		reader = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.url(path), reader)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if id := observability.CorrelationIDFromContext(ctx); id != "" {
		req.Header.Set("X-Correlation-ID", id)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, newHTTPError(resp.StatusCode, body)
	}
	return body, nil
}

func (c *Client) url(path string) string {
	if strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://") {
		return path
	}
	return c.cfg.BaseURL + "/" + strings.TrimPrefix(path, "/")
}

// breaker returns the circuit breaker for a scope, creating it if needed.
func (c *Client) breaker(scope string) *gobreaker.CircuitBreaker[[]byte] {
	c.mu.Lock()
	defer c.mu.Unlock()

	if cb, ok := c.breakers[scope]; ok {
		return cb
	}

	failures := uint32(c.cfg.BreakerFailures)
	if failures == 0 {
		failures = 5
	}
	settings := gobreaker.Settings{
		Name:        scope,
		MaxRequests: 1,
		Timeout:     c.cfg.BreakerTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= failures
		},
		IsSuccessful: countsAsSuccess,
		OnStateChange: func(name string, from, to gobreaker.State) {
			c.logger.Info("circuit breaker state changed",
				"scope", name,
				"from", from.String(),
				"to", to.String(),
			)
		},
	}
	cb := gobreaker.NewCircuitBreaker[[]byte](settings)
	c.breakers[scope] = cb
	return cb
}

// countsAsSuccess keeps client errors and cancellations from tripping the breaker.
func countsAsSuccess(err error) bool {
	if err == nil || errors.Is(err, context.Canceled) {
		return true
	}
	var httpErr *HTTPError
	if errors.As(err, &httpErr) {
		return httpErr.StatusCode < 500
	}
	return false
}

func isRetryable(ctx context.Context, err error) bool {
	if ctx.Err() != nil {
		return false
	}
	var httpErr *HTTPError
	if errors.As(err, &httpErr) {
		return httpErr.StatusCode >= 500
	}
	return true
}

// sessionTransport attaches "Authorization: Token <token>" while the session
// holds a token and sends requests bare otherwise.
type sessionTransport struct {
	base   http.RoundTripper
	authed *oauth2.Transport
	tokens *sessionTokenSource
}

func newSessionTransport(session Session, base http.RoundTripper) *sessionTransport {
	source := &sessionTokenSource{session: session}
	return &sessionTransport{
		base:   base,
		authed: &oauth2.Transport{Source: source, Base: base},
		tokens: source,
	}
}

func (t *sessionTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if t.tokens.current() == "" {
		return t.base.RoundTrip(req)
	}
	return t.authed.RoundTrip(req)
}

type sessionTokenSource struct {
	session Session
}

func (s *sessionTokenSource) current() string {
	if s.session == nil {
		return ""
	}
	return s.session.Token()
}

func (s *sessionTokenSource) Token() (*oauth2.Token, error) {
	token := s.current()
	if token == "" {
		return nil, ErrUnauthorized
	}
	return &oauth2.Token{AccessToken: token, TokenType: authScheme}, nil
}

// ItemPath joins a collection path and an id with the trailing slash the
// backend requires.
func ItemPath(collection, id string, action ...string) string {
	p := strings.TrimRight(collection, "/") + "/" + url.PathEscape(id) + "/"
	for _, a := range action {
		p += strings.Trim(a, "/") + "/"
	}
	return p
}
