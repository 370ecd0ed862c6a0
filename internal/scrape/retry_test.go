package scrape

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/reelsync/reelsync/internal/testutil"
)

func TestNavigateSucceedsFirstAttempt(t *testing.T) {
	nav := NewNavigator(3, time.Second, testutil.NewTestLogger(t))

	attempts := 0
	ok, err := nav.Navigate(context.Background(), "https://venue.example", func(ctx context.Context) error {
		attempts++
		return nil
	})
	if err != nil || !ok {
		t.Fatalf("Navigate() = (%v, %v), want (true, nil)", ok, err)
	}
	if attempts != 1 {
		t.Errorf("got %d attempts, want 1", attempts)
	}
}

func TestNavigateRetryExhaustion(t *testing.T) {
	const maxRetries = 2
	nav := NewNavigator(maxRetries, time.Second, testutil.NewTestLogger(t))

	attempts := 0
	ok, err := nav.Navigate(context.Background(), "https://venue.example", func(ctx context.Context) error {
		attempts++
		return context.DeadlineExceeded
	})
	if err != nil {
		t.Fatalf("timeout exhaustion must not propagate an error, got %v", err)
	}
	if ok {
		t.Error("Navigate() = true after exhausting retries, want false")
	}
	if attempts != maxRetries+1 {
		t.Errorf("got %d attempts, want exactly maxRetries+1 = %d", attempts, maxRetries+1)
	}
}

func TestNavigateRecoveryAfterTimeout(t *testing.T) {
	nav := NewNavigator(2, time.Second, testutil.NewTestLogger(t))

	attempts := 0
	ok, err := nav.Navigate(context.Background(), "https://venue.example", func(ctx context.Context) error {
		attempts++
		if attempts == 1 {
			return context.DeadlineExceeded
		}
		return nil
	})
	if err != nil || !ok {
		t.Fatalf("Navigate() = (%v, %v), want recovery on second attempt", ok, err)
	}
	if attempts != 2 {
		t.Errorf("got %d attempts, want 2", attempts)
	}
}

func TestNavigateTerminalErrorPropagatesImmediately(t *testing.T) {
	nav := NewNavigator(5, time.Second, testutil.NewTestLogger(t))

	terminal := errors.New("dial tcp: connection refused")
	attempts := 0
	ok, err := nav.Navigate(context.Background(), "https://venue.example", func(ctx context.Context) error {
		attempts++
		return terminal
	})
	if ok {
		t.Error("Navigate() = true on terminal error, want false")
	}
	if !errors.Is(err, terminal) {
		t.Errorf("err = %v, want the terminal error untouched", err)
	}
	if attempts != 1 {
		t.Errorf("got %d attempts, want 1: DNS/refused failures do not self-resolve", attempts)
	}
}

func TestNavigateAppliesPerAttemptDeadline(t *testing.T) {
	nav := NewNavigator(1, 20*time.Millisecond, testutil.NewTestLogger(t))

	attempts := 0
	ok, err := nav.Navigate(context.Background(), "https://venue.example", func(ctx context.Context) error {
		attempts++
		<-ctx.Done()
		return ctx.Err()
	})
	if err != nil {
		t.Fatalf("deadline expiry must classify as timeout, got %v", err)
	}
	if ok || attempts != 2 {
		t.Errorf("Navigate() = %v after %d attempts, want false after 2", ok, attempts)
	}
}

type timeoutNetErr struct{}

func (timeoutNetErr) Error() string   { return "i/o timeout" }
func (timeoutNetErr) Timeout() bool   { return true }
func (timeoutNetErr) Temporary() bool { return true }

func TestIsTimeout(t *testing.T) {
	if !IsTimeout(context.DeadlineExceeded) {
		t.Error("context.DeadlineExceeded is a timeout")
	}
	if !IsTimeout(timeoutNetErr{}) {
		t.Error("net.Error with Timeout() true is a timeout")
	}
	if IsTimeout(errors.New("no such host")) {
		t.Error("plain errors are not timeouts")
	}
	if IsTimeout(nil) {
		t.Error("nil is not a timeout")
	}
}
