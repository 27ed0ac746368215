// Package roast implements the retry discipline a ROAST-style coordinator
// uses to tolerate unresponsive or slow-to-respond signers without aborting
// the whole session.
//
// [ROAST]
//
//	Ruffing T., Ronge V., Jin E., Schneider-Bensch J., Schroder D.,
//	"ROAST: Robust Asynchronous Schnorr Threshold Signatures"
//	<https://eprint.iacr.org/2022/550.pdf>
//
// [FROST]
//
//	Connolly, D., Komlo, C., Goldberg, I., and C. A. Wood, "Two-Round
//	Threshold Schnorr Signatures with FROST", Work in Progress, Internet-Draft,
//	draft-irtf-cfrg-frost-15, 5 December 2023,
//	<https://datatracker.ietf.org/doc/draft-irtf-cfrg-frost/15/>.
//
// ROAST's contribution over plain FROST is a coordinator that retries a
// round against a fresh signer set when some signers in the current set
// fail to respond, rather than aborting the whole signing session. This
// package carries that retry discipline as a standalone helper so the
// coordinator package can apply it uniformly to every comms round.
package roast

import (
	"context"
	"errors"
	"math/rand"
	"time"
)

// MaxBackoff is the ceiling applied to the exponential backoff between
// retry attempts of a single round.
const MaxBackoff = 5 * time.Second

// MaxAttemptsPerRound is the number of times a single round may be retried
// after a transient comms failure. A round is attempted once, then retried
// at most this many times, for at most MaxAttemptsPerRound+1 total tries.
const MaxAttemptsPerRound = 1

// Retryable is implemented by errors that identify themselves as transient
// comms failures eligible for a retry, as opposed to protocol or input
// errors that should propagate immediately.
type Retryable interface {
	Retryable() bool
}

// IsRetryable reports whether err identifies itself as retryable via the
// Retryable interface. A nil error, or an error that does not implement
// Retryable, is never retryable.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}
	var r Retryable
	if errors.As(err, &r) {
		return r.Retryable()
	}
	return false
}

// Round retries fn up to MaxAttemptsPerRound additional times when it
// returns a Retryable error, backing off exponentially between attempts
// with jitter, capped at MaxBackoff. fn's error is returned unchanged on
// the final attempt or when it is not retryable. ctx cancellation aborts
// the wait between attempts immediately.
func Round(ctx context.Context, fn func() error) error {
	var lastErr error
	for attempt := 0; attempt <= MaxAttemptsPerRound; attempt++ {
		lastErr = fn()
		if lastErr == nil {
			return nil
		}
		if !IsRetryable(lastErr) || attempt == MaxAttemptsPerRound {
			return lastErr
		}
		if err := sleep(ctx, backoff(attempt)); err != nil {
			return lastErr
		}
	}
	return lastErr
}

// backoff computes the delay before retry attempt+1: a doubling base of
// 250ms with up to 50% random jitter, capped at MaxBackoff.
func backoff(attempt int) time.Duration {
	base := 250 * time.Millisecond << uint(attempt)
	if base > MaxBackoff {
		base = MaxBackoff
	}
	jitter := time.Duration(rand.Int63n(int64(base) / 2))
	d := base + jitter
	if d > MaxBackoff {
		d = MaxBackoff
	}
	return d
}

func sleep(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
