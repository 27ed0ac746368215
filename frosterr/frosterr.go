// Package frosterr defines the error taxonomy shared by every frost-client
// subcommand: a small set of kinds, each carrying the process exit code its
// kind maps to, so a caller at the top of main can turn any error returned
// from deeper in the stack into the right exit(n) without re-deriving the
// classification.
package frosterr

import (
	"errors"
	"fmt"
)

// Kind names one of the error categories a frost-client operation can fail
// with. Kind does not appear on the wire or in the credential file; it only
// drives exit-code selection and log classification.
type Kind int

const (
	// KindInput covers malformed user input: a bad path, invalid hex, an
	// argument that fails validation before any network or crypto work.
	KindInput Kind = iota
	// KindConfig covers a credential file that cannot be read, has an
	// unsupported version, or references an unknown group or contact.
	KindConfig
	// KindProtocol covers a message that is well-formed but wrong for the
	// current state machine state, a signer-set mismatch, or a failed
	// aggregate verification.
	KindProtocol
	// KindCrypto covers a group element or scalar that fails to
	// deserialize, or a share that fails verification.
	KindCrypto
	// KindComms covers relay unreachability, a lost session, or a
	// decryption/authentication failure on a received envelope.
	KindComms
	// KindFatal covers an invariant violation: state that should be
	// impossible if every other layer in this program is correct.
	KindFatal
)

func (k Kind) String() string {
	switch k {
	case KindInput:
		return "input error"
	case KindConfig:
		return "config error"
	case KindProtocol:
		return "protocol error"
	case KindCrypto:
		return "crypto error"
	case KindComms:
		return "comms error"
	case KindFatal:
		return "fatal error"
	default:
		return "error"
	}
}

// ExitCode returns the process exit code §6 assigns to this error's kind.
func (k Kind) ExitCode() int {
	switch k {
	case KindInput:
		return 1
	case KindProtocol, KindCrypto, KindFatal:
		return 2
	case KindComms, KindConfig:
		return 3
	default:
		return 1
	}
}

// Error is a kind-tagged error wrapping an underlying cause, with optional
// context describing where in the operation it occurred.
type Error struct {
	Kind    Kind
	Context string
	Cause   error
}

func (e *Error) Error() string {
	if e.Context == "" {
		return fmt.Sprintf("%s: %v", e.Kind, e.Cause)
	}
	return fmt.Sprintf("%s: %s: %v", e.Kind, e.Context, e.Cause)
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// Retryable implements roast.Retryable: a comms error is eligible for a
// single retry (spec §7) unless its cause is a lost session, which no
// amount of retrying can recover from.
func (e *Error) Retryable() bool {
	return e.Kind == KindComms && !errors.Is(e.Cause, SessionLost)
}

func newf(kind Kind, context string, cause error) *Error {
	return &Error{Kind: kind, Context: context, Cause: cause}
}

// Input wraps cause as a KindInput error.
func Input(context string, cause error) *Error { return newf(KindInput, context, cause) }

// Config wraps cause as a KindConfig error.
func Config(context string, cause error) *Error { return newf(KindConfig, context, cause) }

// Protocol wraps cause as a KindProtocol error.
func Protocol(context string, cause error) *Error { return newf(KindProtocol, context, cause) }

// Crypto wraps cause as a KindCrypto error.
func Crypto(context string, cause error) *Error { return newf(KindCrypto, context, cause) }

// Comms wraps cause as a KindComms error.
func Comms(context string, cause error) *Error { return newf(KindComms, context, cause) }

// Fatal wraps cause as a KindFatal error.
func Fatal(context string, cause error) *Error { return newf(KindFatal, context, cause) }

// Protocolf is a convenience constructor combining fmt.Errorf and Protocol.
func Protocolf(format string, args ...any) *Error {
	return newf(KindProtocol, "", fmt.Errorf(format, args...))
}

// Commsf is a convenience constructor combining fmt.Errorf and Comms.
func Commsf(format string, args ...any) *Error {
	return newf(KindComms, "", fmt.Errorf(format, args...))
}

// SessionLost indicates the relay no longer knows about a session the
// caller expected to still be active, either because it was explicitly
// closed or because the relay garbage-collected it after inactivity.
var SessionLost = errors.New("session lost")

// ExitCode inspects err for a *Error via errors.As and returns its exit
// code; a plain, unwrapped error (one that slipped out of a layer without
// being classified) is treated as KindInput, exit code 1.
func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	var fe *Error
	if errors.As(err, &fe) {
		return fe.Kind.ExitCode()
	}
	return 1
}
