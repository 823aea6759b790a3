package tracker

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"studioload/internal/logging"
)

const (
	defaultHTTPTimeout    = 30 * time.Second
	defaultRetryAttempts  = 3
	defaultRetryBaseDelay = 1 * time.Second
	defaultRetryMaxDelay  = 10 * time.Second
	maxExportBytes        = 32 << 20
)

// HTTPConfig captures the endpoint settings for an HTTPSource.
type HTTPConfig struct {
	URL            string
	Token          string
	TimeoutSeconds int
}

// HTTPSource fetches a JSON export from the tracker.
type HTTPSource struct {
	cfg        HTTPConfig
	httpClient *http.Client
	logger     *slog.Logger
	now        func() time.Time

	retryMaxAttempts int
	retryBaseDelay   time.Duration
	retryMaxDelay    time.Duration
	sleeper          func(time.Duration)
}

// Option customizes the HTTP source.
type Option func(*HTTPSource)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(s *HTTPSource) {
		if client != nil {
			s.httpClient = client
		}
	}
}

// WithLogger sets the logger used for retries and decode warnings.
func WithLogger(logger *slog.Logger) Option {
	return func(s *HTTPSource) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithRetryMaxAttempts overrides the default retry count (defaults to 3).
func WithRetryMaxAttempts(attempts int) Option {
	return func(s *HTTPSource) {
		s.retryMaxAttempts = attempts
	}
}

// WithRetryBackoff overrides the retry backoff delays.
func WithRetryBackoff(baseDelay, maxDelay time.Duration) Option {
	return func(s *HTTPSource) {
		s.retryBaseDelay = baseDelay
		s.retryMaxDelay = maxDelay
	}
}

// WithSleeper overrides how retry sleeps are performed.
func WithSleeper(sleeper func(time.Duration)) Option {
	return func(s *HTTPSource) {
		s.sleeper = sleeper
	}
}

// NewHTTPSource constructs a source for cfg.
func NewHTTPSource(cfg HTTPConfig, opts ...Option) *HTTPSource {
	timeout := defaultHTTPTimeout
	if cfg.TimeoutSeconds > 0 {
		timeout = time.Duration(cfg.TimeoutSeconds) * time.Second
	}
	s := &HTTPSource{
		cfg: HTTPConfig{
			URL:            strings.TrimSpace(cfg.URL),
			Token:          strings.TrimSpace(cfg.Token),
			TimeoutSeconds: cfg.TimeoutSeconds,
		},
		httpClient:       &http.Client{Timeout: timeout},
		logger:           logging.NewNop(),
		now:              time.Now,
		retryMaxAttempts: defaultRetryAttempts,
		retryBaseDelay:   defaultRetryBaseDelay,
		retryMaxDelay:    defaultRetryMaxDelay,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

type httpStatusError struct {
	StatusCode int
	Body       string
	RetryAfter time.Duration
}

func (e *httpStatusError) Error() string {
	return fmt.Sprintf("tracker request: http %d: %s", e.StatusCode, strings.TrimSpace(e.Body))
}

// Fetch downloads and decodes the export, retrying transient failures.
func (s *HTTPSource) Fetch(ctx context.Context) (Snapshot, error) {
	if s.cfg.URL == "" {
		return Snapshot{}, errors.New("tracker fetch: url required")
	}
	attempts := s.retryMaxAttempts
	if attempts <= 0 {
		attempts = 1
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		exp, err := s.fetchOnce(ctx)
		if err == nil {
			snap := exp.materialize(s.logger)
			snap.FetchedAt = s.now()
			return snap, nil
		}
		lastErr = err

		delay, retry := s.retryDelay(ctx, err, attempt, attempts)
		if !retry {
			return Snapshot{}, err
		}
		s.logger.Info("tracker fetch retry",
			logging.Int("attempt", attempt),
			logging.Duration("backoff", delay),
			logging.Error(err),
		)
		if err := s.sleep(ctx, delay); err != nil {
			return Snapshot{}, err
		}
	}
	return Snapshot{}, fmt.Errorf("tracker fetch: failed after %d attempts: %w", attempts, lastErr)
}

func (s *HTTPSource) fetchOnce(ctx context.Context) (export, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.cfg.URL, nil)
	if err != nil {
		return export{}, fmt.Errorf("tracker request: new request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if s.cfg.Token != "" {
		req.Header.Set("Authorization", "Bearer "+s.cfg.Token)
	}
	resp, err := s.httpClient.Do(req)
	if err != nil {
		return export{}, fmt.Errorf("tracker request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxExportBytes))
	if err != nil {
		return export{}, fmt.Errorf("tracker request: read body: %w", err)
	}
	if resp.StatusCode >= http.StatusMultipleChoices {
		retryAfter, _ := parseRetryAfter(resp.Header.Get("Retry-After"))
		return export{}, &httpStatusError{
			StatusCode: resp.StatusCode,
			Body:       string(body),
			RetryAfter: retryAfter,
		}
	}
	exp, err := decodeJSONExport(body)
	if err != nil {
		return export{}, fmt.Errorf("tracker request: decode response: %w", err)
	}
	return exp, nil
}

func (s *HTTPSource) retryDelay(ctx context.Context, err error, attempt, maxAttempts int) (time.Duration, bool) {
	if attempt >= maxAttempts || err == nil || ctx.Err() != nil {
		return 0, false
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return 0, false
	}

	var statusErr *httpStatusError
	if errors.As(err, &statusErr) {
		switch {
		case statusErr.StatusCode == http.StatusRequestTimeout,
			statusErr.StatusCode == http.StatusTooManyRequests,
			statusErr.StatusCode >= http.StatusInternalServerError:
			if statusErr.RetryAfter > 0 {
				return s.capDelay(statusErr.RetryAfter), true
			}
			return s.backoffDelay(attempt), true
		default:
			return 0, false
		}
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return s.backoffDelay(attempt), true
	}
	return 0, false
}

// backoffDelay doubles from the base delay: attempt 1 -> base, 2 -> base*2, ...
func (s *HTTPSource) backoffDelay(attempt int) time.Duration {
	if s.retryBaseDelay <= 0 {
		return 0
	}
	delay := s.retryBaseDelay
	for i := 1; i < attempt; i++ {
		delay *= 2
		if s.retryMaxDelay > 0 && delay >= s.retryMaxDelay {
			break
		}
	}
	return s.capDelay(delay)
}

func (s *HTTPSource) capDelay(delay time.Duration) time.Duration {
	if delay < 0 {
		return 0
	}
	if s.retryMaxDelay > 0 && delay > s.retryMaxDelay {
		return s.retryMaxDelay
	}
	return delay
}

func (s *HTTPSource) sleep(ctx context.Context, delay time.Duration) error {
	if delay <= 0 {
		return nil
	}
	if s.sleeper != nil {
		s.sleeper(delay)
		return ctx.Err()
	}
	timer := time.NewTimer(delay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func parseRetryAfter(value string) (time.Duration, bool) {
	value = strings.TrimSpace(value)
	if value == "" {
		return 0, false
	}
	if seconds, err := strconv.Atoi(value); err == nil {
		if seconds < 0 {
			return 0, false
		}
		return time.Duration(seconds) * time.Second, true
	}
	if when, err := http.ParseTime(value); err == nil {
		if delay := time.Until(when); delay > 0 {
			return delay, true
		}
	}
	return 0, false
}
