package directory

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math/rand"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"github.com/andrescamacho/garmentflow/internal/adapters/metrics"
	"github.com/andrescamacho/garmentflow/internal/application/common"
	"github.com/andrescamacho/garmentflow/internal/domain/shared"
	"github.com/andrescamacho/garmentflow/internal/infrastructure/config"
)

const employeesPath = "/employees"

// Client is the HTTP adapter for the employee directory service.
// Lookups are rate limited, retried with exponential backoff and jitter on
// 429/5xx/network errors, and guarded by a circuit breaker.
type Client struct {
	httpClient  *http.Client
	rateLimiter *rate.Limiter
	breaker     *CircuitBreaker
	baseURL     string
	maxRetries  int
	backoffBase time.Duration
	clock       shared.Clock
}

// NewClient builds a directory client from configuration.
// If clock is nil, uses RealClock.
func NewClient(cfg config.DirectoryConfig, clock shared.Clock) *Client {
	clock = shared.ClockOrReal(clock)
	return &Client{
		httpClient:  &http.Client{Timeout: cfg.Timeout},
		rateLimiter: rate.NewLimiter(rate.Limit(cfg.RateLimit.Requests), cfg.RateLimit.Burst),
		breaker:     NewCircuitBreaker(cfg.FailureThreshold, cfg.ResetTimeout, clock),
		baseURL:     strings.TrimRight(cfg.BaseURL, "/"),
		maxRetries:  cfg.Retry.MaxAttempts,
		backoffBase: cfg.Retry.BackoffBase,
		clock:       clock,
	}
}

// Breaker exposes the circuit breaker state for health reporting
func (c *Client) Breaker() *CircuitBreaker {
	return c.breaker
}

type employeeDTO struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Role   string `json:"role"`
	Active bool   `json:"active"`
}

// ListEmployees fetches the directory, optionally filtered by role
func (c *Client) ListEmployees(ctx context.Context, role string) ([]common.Employee, error) {
	path := employeesPath
	if role != "" {
		path += "?role=" + url.QueryEscape(role)
	}

	var response struct {
		Data []employeeDTO `json:"data"`
	}
	err := c.breaker.Call(func() error {
		return c.get(ctx, path, &response)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list employees: %w", err)
	}

	employees := make([]common.Employee, 0, len(response.Data))
	for _, e := range response.Data {
		employees = append(employees, common.Employee{ID: e.ID, Name: e.Name, Role: e.Role, Active: e.Active})
	}
	return employees, nil
}

func (c *Client) get(ctx context.Context, path string, result interface{}) error {
	logger := *common.LoggerFromContext(ctx)
	endpoint := employeesPath

	var lastErr error
attempts:
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		waitStart := time.Now()
		if err := c.rateLimiter.Wait(ctx); err != nil {
			return fmt.Errorf("rate limiter error: %w", err)
		}
		metrics.RecordRateLimitWait(http.MethodGet, endpoint, time.Since(waitStart).Seconds())

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
		if err != nil {
			return fmt.Errorf("failed to create request: %w", err)
		}
		req.Header.Set("Accept", "application/json")

		start := time.Now()
		resp, err := c.httpClient.Do(req)
		if err != nil {
			lastErr = &retryableError{message: fmt.Sprintf("network error: %v", err)}
			if !c.backoff(ctx, logger, attempt, "network", 0) {
				break attempts
			}
			continue
		}

		body, readErr := io.ReadAll(resp.Body)
		resp.Body.Close()
		metrics.RecordAPIRequest(http.MethodGet, endpoint, resp.StatusCode, time.Since(start).Seconds())
		if readErr != nil {
			return fmt.Errorf("failed to read response: %w", readErr)
		}

		switch {
		case resp.StatusCode == http.StatusTooManyRequests:
			var retryAfter time.Duration
			if seconds, err := strconv.Atoi(resp.Header.Get("Retry-After")); err == nil {
				retryAfter = time.Duration(seconds) * time.Second
			}
			lastErr = &retryableError{message: "rate limited (429)", retryAfter: retryAfter}
			if !c.backoff(ctx, logger, attempt, "rate_limited", retryAfter) {
				break attempts
			}
			continue
		case resp.StatusCode >= 500:
			lastErr = &retryableError{message: fmt.Sprintf("server error (%d)", resp.StatusCode)}
			if !c.backoff(ctx, logger, attempt, "server_error", 0) {
				break attempts
			}
			continue
		case resp.StatusCode < 200 || resp.StatusCode >= 300:
			return fmt.Errorf("directory error (status %d): %s", resp.StatusCode, string(body))
		}

		if result != nil {
			if err := json.Unmarshal(body, result); err != nil {
				return fmt.Errorf("failed to unmarshal response: %w", err)
			}
		}
		return nil
	}

	if ctx.Err() != nil {
		return fmt.Errorf("context cancelled: %w", ctx.Err())
	}
	if lastErr != nil {
		return fmt.Errorf("max retries exceeded: %w", lastErr)
	}
	return errors.New("max retries exceeded")
}

// backoff sleeps before the next attempt; false means give up
func (c *Client) backoff(ctx context.Context, logger zerolog.Logger, attempt int, reason string, retryAfter time.Duration) bool {
	if attempt >= c.maxRetries || ctx.Err() != nil {
		return false
	}
	metrics.RecordAPIRetry(http.MethodGet, employeesPath, reason)

	delay := retryAfter
	if delay <= 0 {
		delay = addJitter(c.backoffBase * time.Duration(1<<attempt))
	}
	logger.Debug().Str("reason", reason).Int("attempt", attempt+1).Dur("delay", delay).Msg("retrying directory request")
	c.clock.Sleep(delay)
	return true
}

// addJitter spreads retries by up to +/-25%
func addJitter(d time.Duration) time.Duration {
	if d <= 0 {
		return d
	}
	jitter := time.Duration(rand.Int63n(int64(d)/2+1)) - d/4
	return d + jitter
}

// retryableError marks failures worth another attempt
type retryableError struct {
	message    string
	retryAfter time.Duration
}

func (e *retryableError) Error() string {
	return e.message
}
