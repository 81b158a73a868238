package translation

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/sony/gobreaker"

	"codeberg.org/snonux/blogtrans/internal/language"
)

const (
	defaultBreakerFailures = 5
	defaultBreakerTimeout  = 30 * time.Second
)

var errEmptyTranslation = errors.New("backend returned an empty translation")

// Stats counts client activity since creation
type Stats struct {
	Calls     int
	Fallbacks int
}

// Client wraps a Translator with bounded retries, pacing and a circuit
// breaker. Translate never fails: when every attempt fails the original
// text is returned. An open breaker delays the next attempt until its
// timeout has passed; it never uses up an attempt.
type Client struct {
	translator Translator
	source     string
	policy     Policy
	sleeper    func(time.Duration)
	logger     *slog.Logger
	breaker    *gobreaker.CircuitBreaker

	breakerFailures uint32
	breakerTimeout  time.Duration
	openedAt        time.Time

	stats Stats
}

// ClientOption customizes the client
type ClientOption func(*Client)

// WithPolicy overrides the retry and pacing policy
func WithPolicy(policy Policy) ClientOption {
	return func(c *Client) {
		c.policy = policy
	}
}

// WithSourceLanguage sets the language texts are translated from
func WithSourceLanguage(code string) ClientOption {
	return func(c *Client) {
		if code != "" {
			c.source = code
		}
	}
}

// WithLogger sets the logger for retries and fallbacks
func WithLogger(logger *slog.Logger) ClientOption {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithSleeper overrides how retry and pacing sleeps are performed
func WithSleeper(sleeper func(time.Duration)) ClientOption {
	return func(c *Client) {
		c.sleeper = sleeper
	}
}

// WithBreaker sets how many consecutive failures open the circuit breaker
// and how long it stays open
func WithBreaker(failures uint32, timeout time.Duration) ClientOption {
	return func(c *Client) {
		if failures > 0 {
			c.breakerFailures = failures
		}
		if timeout > 0 {
			c.breakerTimeout = timeout
		}
	}
}

// NewClient creates a client for translator using the backend's default
// policy
func NewClient(translator Translator, opts ...ClientOption) *Client {
	c := &Client{
		translator:      translator,
		source:          language.Source,
		policy:          DefaultPolicy(translator.Name()),
		logger:          slog.Default(),
		breakerFailures: defaultBreakerFailures,
		breakerTimeout:  defaultBreakerTimeout,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.policy.Attempts < 1 {
		c.policy.Attempts = 1
	}

	c.breaker = gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:    translator.Name(),
		Timeout: c.breakerTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= c.breakerFailures
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			if to == gobreaker.StateOpen {
				c.openedAt = time.Now()
			}
			c.logger.Warn("translation circuit breaker changed state",
				"backend", name, "from", from.String(), "to", to.String())
		},
	})
	return c
}

// Name returns the name of the wrapped backend
func (c *Client) Name() string {
	return c.translator.Name()
}

// Translator returns the wrapped backend
func (c *Client) Translator() Translator {
	return c.translator
}

// Stats returns the call and fallback counters
func (c *Client) Stats() Stats {
	return c.stats
}

// Translate translates text into target. Whitespace-only text is returned
// without calling the backend. After the last failed attempt, or when ctx
// is cancelled, the original text is returned and counted as a fallback.
func (c *Client) Translate(ctx context.Context, text, target string) string {
	if strings.TrimSpace(text) == "" {
		return text
	}

	for attempt := 1; attempt <= c.policy.Attempts; attempt++ {
		if err := c.waitForBreaker(ctx); err != nil {
			c.logger.Warn("translation cancelled, keeping original text", "target", target, "error", err)
			break
		}

		c.stats.Calls++
		translated, err := c.attempt(ctx, text, target)
		if err == nil {
			_ = c.sleep(ctx, c.policy.Pace)
			return translated
		}

		if ctx.Err() != nil {
			c.logger.Warn("translation cancelled, keeping original text", "target", target, "error", err)
			break
		}
		if attempt < c.policy.Attempts {
			c.logger.Warn("translation attempt failed",
				"backend", c.translator.Name(),
				"target", target,
				"attempt", attempt,
				"max_attempts", c.policy.Attempts,
				"error", err)
			if c.sleep(ctx, c.policy.RetryDelay) != nil {
				break
			}
			continue
		}
		c.logger.Error("translation failed, keeping original text",
			"backend", c.translator.Name(),
			"target", target,
			"attempts", c.policy.Attempts,
			"error", err)
	}

	c.stats.Fallbacks++
	return text
}

func (c *Client) attempt(ctx context.Context, text, target string) (string, error) {
	result, err := c.breaker.Execute(func() (interface{}, error) {
		translated, err := c.translator.Translate(ctx, text, c.source, target)
		if err != nil {
			return nil, err
		}
		if strings.TrimSpace(translated) == "" {
			return nil, errEmptyTranslation
		}
		return translated, nil
	})
	if err != nil {
		return "", fmt.Errorf("%s: %w", c.translator.Name(), err)
	}
	return result.(string), nil
}

// waitForBreaker blocks until the circuit breaker leaves the open state.
// The breaker tracks wall-clock time, so this uses a real timer and not the
// configured sleeper.
func (c *Client) waitForBreaker(ctx context.Context) error {
	for c.breaker.State() == gobreaker.StateOpen {
		wait := c.breakerTimeout - time.Since(c.openedAt)
		if wait < time.Millisecond {
			wait = time.Millisecond
		}
		c.logger.Warn("waiting for translation circuit breaker",
			"backend", c.translator.Name(),
			"wait", wait.Round(time.Millisecond))

		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}
	return nil
}

func (c *Client) sleep(ctx context.Context, delay time.Duration) error {
	if delay <= 0 {
		return nil
	}
	if ctx.Err() != nil {
		return ctx.Err()
	}
	if c.sleeper != nil {
		c.sleeper(delay)
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
