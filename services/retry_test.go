package services

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/courtside-app/courtside-server/repositories"
)

func TestRetryDoSucceedsFirstAttempt(t *testing.T) {
	cfg := zeroRetry()
	calls := 0
	err := cfg.Do(context.Background(), func() error {
		calls++
		return nil
	})
	if err != nil || calls != 1 {
		t.Fatalf("err = %v, calls = %d", err, calls)
	}
}

func TestRetryDoRetriesNetworkErrors(t *testing.T) {
	cfg := RetryConfig{MaxRetries: 3, InitialDelay: 0, Multiplier: 2, MaxDelay: 0}
	calls := 0
	err := cfg.Do(context.Background(), func() error {
		calls++
		if calls < 3 {
			return errors.New("connection refused")
		}
		return nil
	})
	if err != nil {
		t.Fatalf("expected recovery, got %v", err)
	}
	if calls != 3 {
		t.Errorf("expected 3 attempts, got %d", calls)
	}
}

func TestRetryDoExhaustsRetries(t *testing.T) {
	cfg := RetryConfig{MaxRetries: 3, InitialDelay: 0, Multiplier: 2, MaxDelay: 0}
	calls := 0
	wantErr := errors.New("network timeout")
	err := cfg.Do(context.Background(), func() error {
		calls++
		return wantErr
	})
	if !errors.Is(err, wantErr) {
		t.Fatalf("expected last error, got %v", err)
	}
	// Initial attempt plus MaxRetries retries.
	if calls != 4 {
		t.Errorf("expected 4 attempts, got %d", calls)
	}
}

func TestRetryDoDoesNotRetryNonRetryableErrors(t *testing.T) {
	cfg := RetryConfig{MaxRetries: 3, InitialDelay: 0, Multiplier: 2, MaxDelay: 0}
	calls := 0
	wantErr := fmt.Errorf("game g1: %w", repositories.ErrGameNotFound)
	err := cfg.Do(context.Background(), func() error {
		calls++
		return wantErr
	})
	if !errors.Is(err, repositories.ErrGameNotFound) {
		t.Fatalf("expected not-found error, got %v", err)
	}
	if calls != 1 {
		t.Errorf("not-found must not be retried, got %d attempts", calls)
	}
}

func TestRetryDoHonorsContextCancellation(t *testing.T) {
	cfg := RetryConfig{MaxRetries: 5, InitialDelay: time.Hour, Multiplier: 2, MaxDelay: time.Hour}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	calls := 0
	err := cfg.Do(ctx, func() error {
		calls++
		return errors.New("connection refused")
	})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if calls != 1 {
		t.Errorf("expected a single attempt before cancellation, got %d", calls)
	}
}

func TestIsRetryableError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"not found", repositories.ErrGameNotFound, false},
		{"permission denied", repositories.ErrPermissionDenied, false},
		{"store unavailable sentinel", repositories.ErrStoreUnavailable, true},
		{"deadline exceeded", context.DeadlineExceeded, true},
		{"network message", errors.New("network is unreachable"), true},
		{"timeout message", errors.New("i/o timeout"), true},
		{"connection message", errors.New("connection reset by peer"), true},
		{"failed to fetch", errors.New("Failed to fetch"), true},
		{"plain validation error", errors.New("invalid value"), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := isRetryableError(tt.err); got != tt.want {
				t.Errorf("isRetryableError(%v) = %v, want %v", tt.err, got, tt.want)
			}
		})
	}
}

func TestClassifyError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want IssueCode
	}{
		{"not found", fmt.Errorf("game: %w", repositories.ErrGameNotFound), CodeGameNotFound},
		{"permission", repositories.ErrPermissionDenied, CodePermissionDenied},
		{"network", errors.New("connection refused"), CodeNetworkError},
		{"unknown", errors.New("something odd"), CodeUnknownError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := classifyError(tt.err); got != tt.want {
				t.Errorf("classifyError(%v) = %v, want %v", tt.err, got, tt.want)
			}
		})
	}
}
