// Package comms implements the pluggable "send to identifier" / "receive
// from identifier" capability (spec §4.1) that the coordinator and
// participant state machines drive round messages through. Two
// implementations satisfy the same contracts: a direct CLI backend for
// offline/manual use, and a relay-mediated authenticated-encryption
// backend. Both are interchangeable from the protocol's point of view —
// the package deliberately avoids a shared base type or inheritance
// hierarchy, favoring a tagged-variant capability per spec §9's design
// note.
package comms

import (
	"math/big"

	"threshold.network/frost-client/frost"
)

// CoordinatorComms is the capability a coordinator state machine drives:
// gather round-1 commitments from a set of signing participants, then
// gather their round-2 signature shares for a signing package already
// broadcast to them.
type CoordinatorComms interface {
	// GetSigningCommitments gathers one SigningCommitments value from each
	// identifier in signingParticipants. pubKeyPackage lets an
	// implementation validate a returned commitment against the claimed
	// signer's known verifying share where the backend supports it.
	GetSigningCommitments(
		pubKeyPackage *frost.PublicKeyPackage,
		signingParticipants []frost.Identifier,
		numSigners int,
	) (map[frost.Identifier]*frost.NonceCommitment, error)

	// GetSignatureShares broadcasts signingPackage (and randomizer, for
	// redpallas) to every signer named in it, then gathers each signer's
	// round-2 signature share.
	GetSignatureShares(
		signingPackage *frost.SigningPackage,
		randomizer *big.Int,
	) (map[frost.Identifier]*frost.SignatureShare, error)
}

// ParticipantComms is the dual capability a participant state machine
// drives: receive the coordinator's signing package (and randomizer), then
// send back this participant's own signature share.
type ParticipantComms interface {
	// GetSigningPackage blocks until the coordinator's signing package
	// arrives (and, for redpallas, the randomizer alongside it).
	GetSigningPackage() (*frost.SigningPackage, *big.Int, error)

	// SendSignatureShare delivers this participant's round-2 share to the
	// coordinator.
	SendSignatureShare(share *frost.SignatureShare) error
}
