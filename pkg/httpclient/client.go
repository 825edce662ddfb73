// Package httpclient provides the outbound HTTP client foodeez uses to
// reach upstream services such as the mail delivery backend. Transient
// failures are retried with exponential backoff, and every call flows
// through a circuit breaker so a degraded upstream cannot stall the
// request paths that depend on it.
package httpclient

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/sony/gobreaker/v2"
)

// Config tunes retry and circuit breaker behavior for one upstream.
type Config struct {
	Timeout      time.Duration
	MaxRetries   int
	RetryWaitMin time.Duration
	RetryWaitMax time.Duration

	// BreakerTimeout is how long the breaker stays open before letting a
	// trial request through.
	BreakerTimeout time.Duration
	// BreakerFailureRatio trips the breaker when this share of recent
	// requests failed.
	BreakerFailureRatio float64
	// BreakerMinRequests is how many requests must be observed before the
	// failure ratio is evaluated.
	BreakerMinRequests uint32
}

// DefaultConfig returns the settings used for foodeez upstreams.
func DefaultConfig() Config {
	return Config{
		Timeout:             30 * time.Second,
		MaxRetries:          3,
		RetryWaitMin:        time.Second,
		RetryWaitMax:        5 * time.Second,
		BreakerTimeout:      30 * time.Second,
		BreakerFailureRatio: 0.5,
		BreakerMinRequests:  5,
	}
}

var upstreamBreakerState = prometheus.NewGaugeVec(
	prometheus.GaugeOpts{
		Name: "foodeez_upstream_breaker_state",
		Help: "Circuit breaker state per upstream (0=closed, 1=half-open, 2=open)",
	},
	[]string{"upstream"},
)

func init() {
	prometheus.MustRegister(upstreamBreakerState)
}

// ErrUpstreamOpen is returned while the breaker rejects requests outright.
var ErrUpstreamOpen = gobreaker.ErrOpenState

// Client is a breaker-protected HTTP client bound to one named upstream.
type Client struct {
	upstream string
	http     *http.Client
	breaker  *gobreaker.CircuitBreaker[*http.Response]
	cfg      Config
	logger   *slog.Logger
}

// New builds a client for the named upstream. The name labels breaker
// metrics, log lines, and error messages.
func New(upstream string, cfg Config, logger *slog.Logger) *Client {
	// Upstream traffic is low volume (mail sends), so pooling stays modest.
	transport := &http.Transport{
		Proxy:               http.ProxyFromEnvironment,
		MaxIdleConnsPerHost: 10,
		IdleConnTimeout:     90 * time.Second,
	}

	settings := gobreaker.Settings{
		Name:        upstream,
		MaxRequests: 1,
		Interval:    time.Minute,
		Timeout:     cfg.BreakerTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.Requests >= cfg.BreakerMinRequests &&
				float64(counts.TotalFailures)/float64(counts.Requests) >= cfg.BreakerFailureRatio
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("upstream breaker state change",
				slog.String("upstream", name),
				slog.String("from", from.String()),
				slog.String("to", to.String()),
			)
			upstreamBreakerState.WithLabelValues(name).Set(breakerStateValue(to))
		},
	}

	upstreamBreakerState.WithLabelValues(upstream).Set(breakerStateValue(gobreaker.StateClosed))

	return &Client{
		upstream: upstream,
		http: &http.Client{
			Transport: transport,
			Timeout:   cfg.Timeout,
		},
		breaker: gobreaker.NewCircuitBreaker[*http.Response](settings),
		cfg:     cfg,
		logger:  logger,
	}
}

func breakerStateValue(s gobreaker.State) float64 {
	switch s {
	case gobreaker.StateClosed:
		return 0
	case gobreaker.StateHalfOpen:
		return 1
	case gobreaker.StateOpen:
		return 2
	default:
		return -1
	}
}

// Post sends body to url through the circuit breaker, retrying transient
// failures. The body is a byte slice so every retry attempt can replay it.
// A 5xx that survives all retries counts as a breaker failure.
func (c *Client) Post(ctx context.Context, url, contentType string, body []byte) (*http.Response, error) {
	resp, err := c.breaker.Execute(func() (*http.Response, error) {
		return c.postWithRetry(ctx, url, contentType, body)
	})
	if err != nil {
		if errors.Is(err, ErrUpstreamOpen) {
			c.logger.WarnContext(ctx, "upstream breaker open, rejecting request",
				slog.String("upstream", c.upstream),
			)
		}
		return nil, err
	}
	return resp, nil
}

func (c *Client) postWithRetry(ctx context.Context, url, contentType string, body []byte) (*http.Response, error) {
	var resp *http.Response
	var err error

	for attempt := 0; attempt <= c.cfg.MaxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-time.After(c.backoff(attempt)):
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		}

		req, reqErr := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
		if reqErr != nil {
			return nil, fmt.Errorf("create %s request: %w", c.upstream, reqErr)
		}
		req.Header.Set("Content-Type", contentType)

		resp, err = c.http.Do(req)
		if err != nil {
			if isRetryable(err) && attempt < c.cfg.MaxRetries {
				continue
			}
			return nil, fmt.Errorf("%s request failed after %d attempts: %w", c.upstream, attempt+1, err)
		}

		// 5xx except 501 is transient; drain the body so the connection
		// can be reused for the next attempt.
		if resp.StatusCode >= 500 && resp.StatusCode != http.StatusNotImplemented {
			status := resp.StatusCode
			_, _ = io.Copy(io.Discard, resp.Body)
			_ = resp.Body.Close()
			if attempt < c.cfg.MaxRetries {
				continue
			}
			return nil, fmt.Errorf("%s returned status %d after %d attempts", c.upstream, status, attempt+1)
		}

		return resp, nil
	}

	return nil, fmt.Errorf("%s request exhausted retries: %w", c.upstream, err)
}

func (c *Client) backoff(attempt int) time.Duration {
	wait := c.cfg.RetryWaitMin * time.Duration(1<<uint(attempt-1))
	if wait > c.cfg.RetryWaitMax {
		wait = c.cfg.RetryWaitMax
	}
	return wait
}

// State reports the breaker's current state.
func (c *Client) State() gobreaker.State {
	return c.breaker.State()
}

func isRetryable(err error) bool {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	var netErr net.Error
	return errors.As(err, &netErr)
}
