package roast

import (
	"context"
	"errors"
	"testing"
)

type retryableErr struct{ retry bool }

func (e *retryableErr) Error() string   { return "comms failure" }
func (e *retryableErr) Retryable() bool { return e.retry }

func TestIsRetryable(t *testing.T) {
	if IsRetryable(nil) {
		t.Fatal("nil error must not be retryable")
	}
	if IsRetryable(errors.New("plain error")) {
		t.Fatal("a plain error must not be retryable")
	}
	if !IsRetryable(&retryableErr{retry: true}) {
		t.Fatal("expected a Retryable(true) error to be retryable")
	}
	if IsRetryable(&retryableErr{retry: false}) {
		t.Fatal("expected a Retryable(false) error to not be retryable")
	}
	wrapped := errors.Join(errors.New("context"), &retryableErr{retry: true})
	if !IsRetryable(wrapped) {
		t.Fatal("expected a wrapped retryable error to be retryable")
	}
}

func TestRound_SucceedsWithoutRetry(t *testing.T) {
	calls := 0
	err := Round(context.Background(), func() error {
		calls++
		return nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if calls != 1 {
		t.Fatalf("expected 1 call, got %d", calls)
	}
}

func TestRound_RetriesOnceOnRetryableError(t *testing.T) {
	calls := 0
	err := Round(context.Background(), func() error {
		calls++
		if calls == 1 {
			return &retryableErr{retry: true}
		}
		return nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if calls != 2 {
		t.Fatalf("expected 2 calls (1 attempt + 1 retry), got %d", calls)
	}
}

func TestRound_GivesUpAfterMaxAttempts(t *testing.T) {
	calls := 0
	sentinel := &retryableErr{retry: true}
	err := Round(context.Background(), func() error {
		calls++
		return sentinel
	})
	if !errors.Is(err, error(sentinel)) && err != sentinel {
		t.Fatalf("expected the final error to propagate, got %v", err)
	}
	if calls != MaxAttemptsPerRound+1 {
		t.Fatalf("expected %d calls, got %d", MaxAttemptsPerRound+1, calls)
	}
}

func TestRound_NonRetryableErrorStopsImmediately(t *testing.T) {
	calls := 0
	plain := errors.New("bad input")
	err := Round(context.Background(), func() error {
		calls++
		return plain
	})
	if err != plain {
		t.Fatalf("expected plain error to propagate unchanged, got %v", err)
	}
	if calls != 1 {
		t.Fatalf("expected exactly 1 call for a non-retryable error, got %d", calls)
	}
}

func TestRound_ContextCancelledDuringBackoffAbortsWithLastError(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	calls := 0
	err := Round(ctx, func() error {
		calls++
		return &retryableErr{retry: true}
	})
	if err == nil {
		t.Fatal("expected an error when context is already cancelled during backoff")
	}
	if calls != 1 {
		t.Fatalf("expected the retry loop to stop after the first attempt, got %d calls", calls)
	}
}
