// Package participant implements the participant side of a FROST signing
// session (spec §4.3): draw a round-1 nonce/commitment pair, send the
// commitment, wait for the coordinator's signing package, compute a
// round-2 signature share, and send it back. It drives a
// comms.ParticipantComms so the same state machine runs unchanged over
// either the CLI or relay backend.
package participant

import (
	"math/big"

	"threshold.network/frost-client/comms"
	"threshold.network/frost-client/frost"
	"threshold.network/frost-client/frosterr"
)

// CommitmentSender is the capability a participant session uses to deliver
// its own round-1 commitment. It is kept separate from comms.ParticipantComms
// because the two concrete backends need different addressing information
// to do it: comms.CLI just prints to stdout, while comms.Relay needs the
// coordinator's comm pubkey, which the cmd layer supplies by adapting
// Relay.SendSigningCommitments to this interface.
type CommitmentSender interface {
	SendSigningCommitments(commitment *frost.NonceCommitment) error
}

// State names one point in the participant's lifecycle (spec §4.3).
type State int

const (
	Idle State = iota
	Committed
	Signed
	Aborted
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Committed:
		return "committed"
	case Signed:
		return "signed"
	case Aborted:
		return "aborted"
	default:
		return "unknown"
	}
}

// Session drives one participant run to completion. It holds the one
// secret this process is trusted with: keyPackage.SigningShare. The
// session's round-1 nonce is retained only between Round1 and Round2 and
// is zeroized the moment Round2 consumes it, never surviving past the end
// of Run in any form (spec §3 "SigningNonces... discard after round-2",
// §5 "Zeroization").
type Session struct {
	ciphersuite frost.Ciphersuite
	keyPackage  *frost.KeyPackage
	comms       comms.ParticipantComms
	commitments CommitmentSender

	state State
}

// New creates a participant Session bound to keyPackage. The caller
// retains ownership of keyPackage and is responsible for calling
// keyPackage.Zeroize once it, and every Session built from it, are done.
// commitmentSender may be nil, in which case Run skips sending the round-1
// commitment through a dedicated channel (used when c itself already
// pushes it, as no current backend does, but kept for forward compat).
func New(
	ciphersuite frost.Ciphersuite,
	keyPackage *frost.KeyPackage,
	c comms.ParticipantComms,
	commitmentSender CommitmentSender,
) *Session {
	return &Session{
		ciphersuite: ciphersuite,
		keyPackage:  keyPackage,
		comms:       c,
		commitments: commitmentSender,
		state:       Idle,
	}
}

// State returns the session's current state.
func (s *Session) State() State {
	return s.state
}

// Run drives the full participant state machine: commit, await the
// signing package, sign, send the share. It returns the message that was
// signed, mirroring coordinator.Result's shape so a caller logging both
// sides of a session can correlate them.
func (s *Session) Run() ([]byte, error) {
	signer := frost.NewSigner(
		s.ciphersuite,
		uint64(s.keyPackage.Identifier),
		s.keyPackage.VerifyingKey,
		s.keyPackage.SigningShare.Scalar(),
	)

	nonce, commitment, err := signer.Round1()
	if err != nil {
		s.state = Aborted
		return nil, frosterr.Crypto("round 1 commitment generation", err)
	}
	defer nonce.Zeroize()

	if err := s.sendCommitment(commitment); err != nil {
		s.state = Aborted
		return nil, err
	}
	s.state = Committed

	signingPackage, randomizer, err := s.comms.GetSigningPackage()
	if err != nil {
		s.state = Aborted
		return nil, frosterr.Comms("receiving signing package", err)
	}

	if err := s.validateSigningPackage(signingPackage); err != nil {
		s.state = Aborted
		return nil, err
	}

	commitments := signingPackage.CommitmentList()

	var shareScalar *big.Int
	if randomizer != nil {
		shareScalar, err = signer.RoundRerandomized(
			signingPackage.Message, nonce, commitments, randomizer, len(commitments),
		)
	} else {
		shareScalar, err = signer.Round2(signingPackage.Message, nonce, commitments)
	}
	nonce.Zeroize()
	if err != nil {
		s.state = Aborted
		return nil, frosterr.Crypto("round 2 signature share generation", err)
	}

	share := &frost.SignatureShare{Identifier: s.keyPackage.Identifier, Share: shareScalar}
	if err := s.comms.SendSignatureShare(share); err != nil {
		s.state = Aborted
		return nil, frosterr.Comms("sending signature share", err)
	}

	s.state = Signed
	return signingPackage.Message, nil
}

func (s *Session) sendCommitment(commitment *frost.NonceCommitment) error {
	if s.commitments == nil {
		return nil
	}
	return s.commitments.SendSigningCommitments(commitment)
}

// validateSigningPackage implements spec §4.3 transition 2/3: the
// identifier must be present among the package's commitments, and the
// message must be non-empty. A package that does not name this
// participant is a protocol error, not silently ignored — it indicates
// either a misrouted message or a coordinator bug.
func (s *Session) validateSigningPackage(pkg *frost.SigningPackage) error {
	if len(pkg.Message) == 0 {
		return frosterr.Protocolf("signing package carries an empty message")
	}
	if _, ok := pkg.Commitments[s.keyPackage.Identifier]; !ok {
		return frosterr.Protocolf(
			"signing package does not include this participant's own commitment [%s]",
			s.keyPackage.Identifier,
		)
	}
	return nil
}
