package scrape

import (
	"context"
	"errors"
	"net"
	"time"

	"github.com/rs/zerolog"
)

// Navigator wraps a single fetch or navigation attempt with a bounded
// retry policy. Only timeout-classified failures are retried; anything
// else (DNS, refused connection, malformed URL) will not self-resolve and
// propagates to the caller on the first attempt.
type Navigator struct {
	maxRetries int
	timeout    time.Duration
	logger     zerolog.Logger
}

// NewNavigator creates a navigator allowing maxRetries additional
// attempts after the first, each bounded by timeout.
func NewNavigator(maxRetries int, timeout time.Duration, logger zerolog.Logger) *Navigator {
	if maxRetries < 0 {
		maxRetries = 0
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Navigator{
		maxRetries: maxRetries,
		timeout:    timeout,
		logger:     logger.With().Str("component", "navigator").Logger(),
	}
}

// Navigate runs fn with a per-attempt deadline. On timeout it retries up
// to the configured count, logging each retry with its ordinal. It
// returns (false, nil) once retries are exhausted so the caller can
// decide between skip-and-continue and aborting the run, and (false,
// err) for non-timeout failures.
func (n *Navigator) Navigate(ctx context.Context, target string, fn func(ctx context.Context) error) (bool, error) {
	attempts := n.maxRetries + 1
	for attempt := 1; attempt <= attempts; attempt++ {
		attemptCtx, cancel := context.WithTimeout(ctx, n.timeout)
		err := fn(attemptCtx)
		cancel()

		if err == nil {
			return true, nil
		}
		if !IsTimeout(err) {
			return false, err
		}
		if attempt < attempts {
			n.logger.Warn().
				Str("target", target).
				Int("retry", attempt).
				Int("maxRetries", n.maxRetries).
				Msg("navigation timed out, retrying")
		}
	}

	n.logger.Error().
		Str("target", target).
		Int("attempts", attempts).
		Msg("navigation timed out, retries exhausted")
	return false, nil
}

// IsTimeout classifies an error as a navigation timeout.
func IsTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}
