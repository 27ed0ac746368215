// Package coordinator implements the coordinator side of a FROST signing
// session (spec §4.2): the state machine that gathers round-1 commitments
// from a chosen signer set, builds a signing package, gathers round-2
// signature shares, and aggregates them into a final signature. It drives
// a comms.CoordinatorComms so the same state machine runs unchanged over
// either the CLI or relay backend.
package coordinator

import (
	"context"
	"crypto/rand"
	"fmt"
	"math/big"

	"threshold.network/frost-client/comms"
	"threshold.network/frost-client/frost"
	"threshold.network/frost-client/frosterr"
	"threshold.network/frost-client/roast"
)

// State names one point in the coordinator's lifecycle (spec §4.2).
type State int

const (
	Init State = iota
	GatheringCommitments
	PackageReady
	GatheringShares
	Aggregating
	Verified
	Failed
)

func (s State) String() string {
	switch s {
	case Init:
		return "init"
	case GatheringCommitments:
		return "gathering commitments"
	case PackageReady:
		return "package ready"
	case GatheringShares:
		return "gathering shares"
	case Aggregating:
		return "aggregating"
	case Verified:
		return "verified"
	case Failed:
		return "failed"
	default:
		return "unknown"
	}
}

// Session drives one coordinator run to completion. It never touches a
// secret share: every cryptographic operation it performs is public-key
// arithmetic (commitment validation, aggregation, verification).
type Session struct {
	ciphersuite   frost.Ciphersuite
	pubKeyPackage *frost.PublicKeyPackage
	threshold     int
	groupSize     int
	comms         comms.CoordinatorComms

	state State
}

// New creates a coordinator Session. pubKeyPackage, threshold, and
// groupSize are validated against each other on the first call to Run
// (spec §4.2 transition 1): every signer_pubkeys entry must deserialize
// (already guaranteed by frost.DecodePublicKeyPackage) and the package
// must carry at least threshold signers.
func New(
	ciphersuite frost.Ciphersuite,
	pubKeyPackage *frost.PublicKeyPackage,
	threshold int,
	groupSize int,
	c comms.CoordinatorComms,
) *Session {
	return &Session{
		ciphersuite:   ciphersuite,
		pubKeyPackage: pubKeyPackage,
		threshold:     threshold,
		groupSize:     groupSize,
		comms:         c,
		state:         Init,
	}
}

// State returns the session's current state.
func (s *Session) State() State {
	return s.state
}

// Result is the output of one message's signing round: the message that
// was signed, the randomizer used (nil outside redpallas), and the
// resulting signature.
type Result struct {
	Message    []byte
	Randomizer *big.Int
	Signature  *frost.Signature
}

// Run drives the full coordinator state machine for signers against
// messages (spec §4.2 "Multi-message mode": one session, one commitment
// set, one signature per message). randomizers, if non-nil, must carry
// exactly len(messages) entries and is only meaningful for a
// RerandomizableCiphersuite; a nil entry or a nil slice causes Run to draw
// a fresh randomizer per message. Gathering commitments and gathering
// shares each go through roast.Round, so a retryable comms error is retried
// once; on any other error, or a repeated one, the session transitions to
// Failed and the error is returned.
func (s *Session) Run(
	signers []frost.Identifier,
	messages [][]byte,
	randomizers []*big.Int,
) ([]*Result, error) {
	if err := s.validateSignerSet(signers); err != nil {
		s.state = Failed
		return nil, err
	}
	s.state = GatheringCommitments

	if len(messages) == 0 {
		s.state = Failed
		return nil, frosterr.Protocolf("at least one message is required")
	}

	rerandomizable, isRerandomizable := s.ciphersuite.(frost.RerandomizableCiphersuite)
	if randomizers != nil && len(randomizers) != len(messages) {
		s.state = Failed
		return nil, frosterr.Protocolf(
			"randomizer count [%d] does not match message count [%d]",
			len(randomizers), len(messages),
		)
	}
	if !isRerandomizable && randomizers != nil {
		s.state = Failed
		return nil, frosterr.Protocolf("ciphersuite does not support randomizers")
	}

	var commitmentsByID map[frost.Identifier]*frost.NonceCommitment
	err := roast.Round(context.Background(), func() error {
		var roundErr error
		commitmentsByID, roundErr = s.comms.GetSigningCommitments(s.pubKeyPackage, signers, len(signers))
		return roundErr
	})
	if err != nil {
		s.state = Failed
		return nil, frosterr.Comms("gathering round-1 commitments", err)
	}
	if err := s.validateCommitmentSet(signers, commitmentsByID); err != nil {
		s.state = Failed
		return nil, err
	}
	s.state = PackageReady

	results := make([]*Result, len(messages))
	for i, message := range messages {
		var randomizer *big.Int
		if isRerandomizable {
			if randomizers != nil && randomizers[i] != nil {
				randomizer = randomizers[i]
			} else {
				randomizer, err = rand.Int(rand.Reader, s.ciphersuite.Curve().Order())
				if err != nil {
					s.state = Failed
					return nil, frosterr.Crypto("drawing randomizer", err)
				}
			}
		}

		signingPackage := &frost.SigningPackage{
			Commitments: commitmentsByID,
			Message:     message,
		}

		result, err := s.runOneMessage(signers, signingPackage, randomizer, rerandomizable)
		if err != nil {
			s.state = Failed
			return nil, err
		}
		results[i] = result
	}

	s.state = Verified
	return results, nil
}

func (s *Session) runOneMessage(
	signers []frost.Identifier,
	signingPackage *frost.SigningPackage,
	randomizer *big.Int,
	rerandomizable frost.RerandomizableCiphersuite,
) (*Result, error) {
	s.state = GatheringShares

	var shares map[frost.Identifier]*frost.SignatureShare
	err := roast.Round(context.Background(), func() error {
		var roundErr error
		shares, roundErr = s.comms.GetSignatureShares(signingPackage, randomizer)
		return roundErr
	})
	if err != nil {
		return nil, frosterr.Comms("gathering round-2 signature shares", err)
	}
	if err := s.validateShareSet(signers, shares); err != nil {
		return nil, err
	}
	s.state = Aggregating

	commitmentList := signingPackage.CommitmentList()
	shareList := make([]*big.Int, len(commitmentList))
	for i, c := range commitmentList {
		shareList[i] = shares[c.Identifier()].Share
	}

	frostCoordinator := frost.NewCoordinator(
		s.ciphersuite, s.pubKeyPackage.VerifyingKey, s.threshold, s.groupSize,
	)

	verifyingKey := s.pubKeyPackage.VerifyingKey
	var signature *frost.Signature
	if randomizer != nil {
		signature, err = frostCoordinator.AggregateRerandomized(
			signingPackage.Message, commitmentList, shareList, randomizer,
		)
		if err == nil {
			verifyingKey = rerandomizable.Rerandomize(verifyingKey, randomizer)
		}
	} else {
		signature, err = frostCoordinator.Aggregate(signingPackage.Message, commitmentList, shareList)
	}
	if err != nil {
		return nil, frosterr.Protocol("aggregating signature shares", err)
	}

	ok, err := verifySignature(s.ciphersuite, signature, verifyingKey, signingPackage.Message)
	if err != nil || !ok {
		return nil, frosterr.Protocolf("aggregated signature failed verification")
	}

	return &Result{
		Message:    signingPackage.Message,
		Randomizer: randomizer,
		Signature:  signature,
	}, nil
}

// bip340Verifier is implemented by frost.Bip340Ciphersuite: its signatures
// are verified against an x-only public key per [BIP-340], a different
// equation than the full-point Schnorr verification Signature.Verify
// implements for every other ciphersuite in this package.
type bip340Verifier interface {
	VerifySignature(signature *frost.Signature, publicKey *frost.Point, message []byte) (bool, error)
}

// verifySignature dispatches to the ciphersuite's own verification
// equation when it has one (secp256k1-tr), falling back to the generic
// full-point Schnorr check every other ciphersuite shares.
func verifySignature(
	ciphersuite frost.Ciphersuite,
	signature *frost.Signature,
	publicKey *frost.Point,
	message []byte,
) (bool, error) {
	if v, ok := ciphersuite.(bip340Verifier); ok {
		return v.VerifySignature(signature, publicKey, message)
	}
	return signature.Verify(ciphersuite, publicKey, message), nil
}

// validateSignerSet implements spec §4.2 transition 1: the requested
// signer identifier set must be a subset of pubKeyPackage's signers, of
// size exactly the configured groupSize, itself no smaller than threshold.
func (s *Session) validateSignerSet(signers []frost.Identifier) error {
	if len(s.pubKeyPackage.VerifyingShares) < s.threshold {
		return frosterr.Protocolf(
			"public key package carries [%d] signers, fewer than threshold [%d]",
			len(s.pubKeyPackage.VerifyingShares), s.threshold,
		)
	}
	if len(signers) != s.groupSize {
		return frosterr.Protocolf(
			"requested signer set has [%d] members, expected exactly [%d]",
			len(signers), s.groupSize,
		)
	}
	if s.groupSize < s.threshold {
		return frosterr.Protocolf(
			"requested signer count [%d] is below threshold [%d]",
			s.groupSize, s.threshold,
		)
	}

	seen := make(map[frost.Identifier]bool, len(signers))
	for _, id := range signers {
		if seen[id] {
			return frosterr.Protocolf("duplicate signer identifier [%s] in requested set", id)
		}
		seen[id] = true
		if _, ok := s.pubKeyPackage.VerifyingShares[id]; !ok {
			return frosterr.Protocolf("signer [%s] is not a member of this group", id)
		}
	}
	return nil
}

// validateCommitmentSet implements spec §4.2 transition 2: the returned
// commitment map's key set must equal the requested signer set exactly.
func (s *Session) validateCommitmentSet(
	signers []frost.Identifier,
	commitments map[frost.Identifier]*frost.NonceCommitment,
) error {
	if len(commitments) != len(signers) {
		return frosterr.Protocolf(
			"received [%d] commitments, expected [%d]", len(commitments), len(signers),
		)
	}
	for _, id := range signers {
		c, ok := commitments[id]
		if !ok {
			return frosterr.Protocolf("missing commitment from signer [%s]", id)
		}
		if c == nil {
			return frosterr.Protocolf("nil commitment from signer [%s]", id)
		}
	}
	return nil
}

// validateShareSet implements spec §4.2 transition 4: every requested
// signer must have produced a share, and no extras are tolerated.
func (s *Session) validateShareSet(
	signers []frost.Identifier,
	shares map[frost.Identifier]*frost.SignatureShare,
) error {
	if len(shares) != len(signers) {
		return frosterr.Protocolf(
			"received [%d] signature shares, expected [%d] from signers %v",
			len(shares), len(signers), signers,
		)
	}
	for _, id := range signers {
		share, ok := shares[id]
		if !ok || share == nil || share.Share == nil {
			return frosterr.Protocolf("missing signature share from signer [%s]", id)
		}
	}
	return nil
}

// ErrNotEnoughSigners is returned by ValidateThreshold when a caller
// attempts to run a session with fewer signers than the group's threshold
// (spec §8 "Soundness against under-threshold").
var ErrNotEnoughSigners = fmt.Errorf("signer set is smaller than the group threshold")

// ValidateThreshold is a standalone convenience check callers can run
// before constructing a Session, e.g. right after parsing -S/--signers,
// so an under-threshold request fails fast with a clear message instead of
// reaching the comms round-trip first.
func ValidateThreshold(signerCount, threshold int) error {
	if signerCount < threshold {
		return frosterr.Protocol("", fmt.Errorf("%w: has [%d], need [%d]", ErrNotEnoughSigners, signerCount, threshold))
	}
	return nil
}
