package gjkr

import (
	"crypto/rand"
	"crypto/sha256"
	"fmt"
	"math/big"

	"threshold.network/frost-client/ephemeral"
	"threshold.network/frost-client/frost"
)

// Logger is the structured logging capability a Session uses to narrate
// round progress and verification failures. Satisfied by
// *zap.SugaredLogger.
type Logger interface {
	Infow(msg string, keysAndValues ...interface{})
	Warnw(msg string, keysAndValues ...interface{})
	Errorw(msg string, keysAndValues ...interface{})
}

// Round1Message is the broadcast message every member sends in phase 1
// (spec §4.5 "each party broadcasts a public commitment vector"): a Feldman
// commitment to this member's degree-(threshold-1) secret sharing
// polynomial, a Schnorr proof of knowledge of the polynomial's constant
// term (so a member cannot claim a commitment it does not hold the secret
// for), and one ephemeral public key per peer used to derive the pairwise
// symmetric key round 2's private share travels under. Member indexes are
// plain uint16 at this package boundary; only the session's own bookkeeping
// uses the unexported memberIndex type.
type Round1Message struct {
	SenderIndex         uint16
	EphemeralPublicKeys map[uint16]*ephemeral.PublicKey
	Commitments         []*frost.Point
	PoKR                *frost.Point
	PoKS                *big.Int
}

// Round2Message is the private share one member sends to exactly one peer
// in phase 2 (spec §4.5 "each party sends a private share to each other
// party"): the sender's evaluation of its secret sharing polynomial at the
// recipient's member index, encrypted under the pairwise symmetric key the
// two derived from Round1Message's ephemeral keys.
type Round2Message struct {
	SenderIndex uint16
	Ciphertext  []byte
}

// Session drives one local party's three-round run of the DKG (spec §4.5).
// It embeds the teacher's phase 1/phase 2 member types unchanged: Round1
// below is phase 1 (ephemeral key pair generation) plus the Feldman
// commitment and proof of knowledge this package adds; ReceiveRound1 reuses
// symmetricKeyGeneratingMember.preProcessMessages to mark non-broadcasting
// peers inactive and dedupe, exactly as phase 2 does, before deriving each
// pairwise symmetric key. A Session is used once: Round1, then
// ReceiveRound1 with every peer's broadcast, then Round2, then
// ReceiveRound2 for every peer's private share, then Finalize.
type Session struct {
	*symmetricKeyGeneratingMember

	ciphersuite frost.Ciphersuite
	threshold   int

	coefficients []*big.Int
	commitments  []*frost.Point

	peerCommitments map[memberIndex][]*frost.Point
	receivedShares  map[memberIndex]*big.Int
}

// NewSession creates a Session for the local party at myIndex within a
// group of groupSize members requiring threshold shares to reconstruct the
// group secret.
func NewSession(
	ciphersuite frost.Ciphersuite,
	sessionID string,
	myIndex uint16,
	groupSize uint16,
	threshold int,
	logger Logger,
) *Session {
	base := &member{
		memberIndex: memberIndex(myIndex),
		sessionID:   sessionID,
		group:       newGroup(uint16(threshold-1), groupSize),
		evidenceLog: newDkgEvidenceLog(),
		logger:      logger,
	}
	return &Session{
		symmetricKeyGeneratingMember: &symmetricKeyGeneratingMember{
			ephemeralKeyPairGeneratingMember: &ephemeralKeyPairGeneratingMember{
				member:            base,
				ephemeralKeyPairs: make(map[memberIndex]*ephemeral.KeyPair),
			},
			symmetricKeys: make(map[memberIndex]ephemeral.SymmetricKey),
		},
		ciphersuite:     ciphersuite,
		threshold:       threshold,
		peerCommitments: make(map[memberIndex][]*frost.Point),
		receivedShares:  make(map[memberIndex]*big.Int),
	}
}

// Round1 draws this member's secret sharing polynomial and per-peer
// ephemeral key pairs, and returns the message to broadcast to the rest of
// the group. peers lists every other member's index, this member's own
// excluded.
func (s *Session) Round1(peers []uint16) (*Round1Message, error) {
	curve := s.ciphersuite.Curve()
	order := curve.Order()

	coefficients := make([]*big.Int, s.threshold)
	for i := range coefficients {
		c, err := rand.Int(rand.Reader, order)
		if err != nil {
			return nil, fmt.Errorf("drawing polynomial coefficient: %w", err)
		}
		coefficients[i] = c
	}
	s.coefficients = coefficients

	commitments := make([]*frost.Point, s.threshold)
	for i, c := range coefficients {
		commitments[i] = curve.EcBaseMul(c)
	}
	s.commitments = commitments
	s.peerCommitments[s.memberIndex] = commitments

	pokR, pokS, err := s.proveKnowledge(coefficients[0], commitments[0])
	if err != nil {
		return nil, fmt.Errorf("proving knowledge of polynomial constant term: %w", err)
	}

	ephemeralPubKeys := make(map[uint16]*ephemeral.PublicKey, len(peers))
	for _, p := range peers {
		idx := memberIndex(p)
		if idx == s.memberIndex {
			continue
		}
		kp, err := ephemeral.GenerateKeyPair()
		if err != nil {
			return nil, fmt.Errorf("generating ephemeral key pair for peer [%d]: %w", p, err)
		}
		s.ephemeralKeyPairs[idx] = kp
		ephemeralPubKeys[p] = kp.PublicKey
	}

	s.logger.Infow("dkg round 1 complete", "member", s.memberIndex, "session", s.sessionID)

	return &Round1Message{
		SenderIndex:         uint16(s.memberIndex),
		EphemeralPublicKeys: ephemeralPubKeys,
		Commitments:         commitments,
		PoKR:                pokR,
		PoKS:                pokS,
	}, nil
}

// ReceiveRound1 verifies every peer's proof of knowledge, records their
// commitment vectors, and derives the pairwise symmetric key this member
// will use to open that peer's round-2 share. Filtering the batch down to
// this session, marking silent members inactive, and collapsing duplicate
// broadcasts from the same sender is delegated to the phase 2 member's
// preProcessMessages, the same routine a full accusation-resolving GJKR run
// would use for this exact batch.
func (s *Session) ReceiveRound1(messages []*Round1Message) error {
	type pok struct {
		r *frost.Point
		s *big.Int
	}

	raw := make([]*ephemeralPublicKeyMessage, 0, len(messages))
	commitmentsBySender := make(map[memberIndex][]*frost.Point, len(messages))
	pokBySender := make(map[memberIndex]pok, len(messages))
	for _, msg := range messages {
		if msg.SenderIndex == uint16(s.memberIndex) {
			continue
		}
		sender := memberIndex(msg.SenderIndex)
		pubKeys := make(map[memberIndex]*ephemeral.PublicKey, len(msg.EphemeralPublicKeys))
		for peer, pub := range msg.EphemeralPublicKeys {
			pubKeys[memberIndex(peer)] = pub
		}
		raw = append(raw, &ephemeralPublicKeyMessage{
			senderIndex:         sender,
			sessionID:           s.sessionID,
			ephemeralPublicKeys: pubKeys,
		})
		commitmentsBySender[sender] = msg.Commitments
		pokBySender[sender] = pok{r: msg.PoKR, s: msg.PoKS}
	}

	// This member's own broadcast is not processed below, but it stands in
	// the batch as a sender so preProcessMessages does not mark this member
	// inactive.
	raw = append(raw, &ephemeralPublicKeyMessage{
		senderIndex: s.memberIndex,
		sessionID:   s.sessionID,
	})

	for _, msg := range s.preProcessMessages(raw) {
		sender := msg.senderIndex
		if sender == s.memberIndex {
			continue
		}
		commitments := commitmentsBySender[sender]
		p := pokBySender[sender]

		if err := s.evidenceLog.putEphemeralPublicKeyMessage(msg); err != nil {
			return fmt.Errorf("logging ephemeral public key message from member [%d]: %w", sender, err)
		}

		if len(commitments) != s.threshold {
			return fmt.Errorf(
				"member [%d] sent [%d] commitments, expected [%d]",
				sender, len(commitments), s.threshold,
			)
		}
		if !s.verifyKnowledge(commitments[0], p.r, p.s) {
			s.group.markMemberAsDisqualified(sender)
			return fmt.Errorf(
				"member [%d] failed proof of knowledge verification", sender,
			)
		}

		myEphemeralPub, ok := msg.ephemeralPublicKeys[s.memberIndex]
		if !ok {
			return fmt.Errorf(
				"member [%d] did not send us an ephemeral public key", sender,
			)
		}
		ourEphemeralKey, ok := s.ephemeralKeyPairs[sender]
		if !ok {
			return fmt.Errorf(
				"no ephemeral key pair generated for peer [%d]", sender,
			)
		}

		s.peerCommitments[sender] = commitments
		s.symmetricKeys[sender] = ourEphemeralKey.PrivateKey.Ecdh(myEphemeralPub)
	}

	for _, inactive := range s.group.inactiveMemberIndexes {
		s.logger.Warnw("member inactive in dkg round 1", "member", inactive, "session", s.sessionID)
	}

	return nil
}

// Round2 evaluates this member's polynomial at every peer's index and
// returns the private share message to send to each one, keyed by
// recipient index.
func (s *Session) Round2() (map[uint16]*Round2Message, error) {
	order := s.ciphersuite.Curve().Order()

	shares := make(map[uint16]*Round2Message, len(s.symmetricKeys))
	for peer, key := range s.symmetricKeys {
		share := evaluatePolynomial(s.coefficients, int(peer), order)
		ciphertext, err := key.Encrypt(share.Bytes())
		if err != nil {
			return nil, fmt.Errorf("encrypting share for peer [%d]: %w", peer, err)
		}
		shares[uint16(peer)] = &Round2Message{SenderIndex: uint16(s.memberIndex), Ciphertext: ciphertext}
	}

	// Our own share of our own polynomial never crosses the wire.
	s.receivedShares[s.memberIndex] = evaluatePolynomial(s.coefficients, int(s.memberIndex), order)

	return shares, nil
}

// ReceiveRound2 decrypts and verifies the share sent by peer, storing it
// once it checks out against the commitment vector that peer broadcast in
// round 1. Any verification failure aborts the whole session per spec
// §4.5: this package does not attempt accusation resolution.
func (s *Session) ReceiveRound2(peerIndex uint16, msg *Round2Message) error {
	peer := memberIndex(peerIndex)

	key, ok := s.symmetricKeys[peer]
	if !ok {
		return fmt.Errorf("no symmetric key established with peer [%d]", peerIndex)
	}

	plaintext, err := key.Decrypt(msg.Ciphertext)
	if err != nil {
		return fmt.Errorf("decrypting share from peer [%d]: %w", peerIndex, err)
	}
	share := new(big.Int).SetBytes(plaintext)

	commitments, ok := s.peerCommitments[peer]
	if !ok {
		return fmt.Errorf("no commitment vector recorded for peer [%d]", peerIndex)
	}
	curve := s.ciphersuite.Curve()
	if !verifyShareAgainstCommitments(curve, share, int(s.memberIndex), commitments) {
		return fmt.Errorf("share from peer [%d] failed commitment verification", peerIndex)
	}

	s.receivedShares[peer] = share
	return nil
}

// Finalize computes this member's KeyPackage and the group's
// PublicKeyPackage once every expected peer's share has been received and
// verified. peers must be the full set of member indexes in the group
// (including this member's own).
func (s *Session) Finalize(peers []uint16) (*frost.KeyPackage, *frost.PublicKeyPackage, error) {
	curve := s.ciphersuite.Curve()
	order := curve.Order()

	if len(s.receivedShares) != len(peers) {
		return nil, nil, fmt.Errorf(
			"have shares from [%d] members, expected [%d]",
			len(s.receivedShares), len(peers),
		)
	}

	signingShare := new(big.Int)
	for _, p := range peers {
		share, ok := s.receivedShares[memberIndex(p)]
		if !ok {
			return nil, nil, fmt.Errorf("missing verified share from member [%d]", p)
		}
		signingShare.Add(signingShare, share)
		signingShare.Mod(signingShare, order)
	}

	groupVerifyingKey := curve.Identity()
	for _, p := range peers {
		commitments, ok := s.peerCommitments[memberIndex(p)]
		if !ok {
			return nil, nil, fmt.Errorf("missing commitment vector from member [%d]", p)
		}
		groupVerifyingKey = curve.EcAdd(groupVerifyingKey, commitments[0])
	}

	verifyingShares := make(map[frost.Identifier]*frost.VerifyingShare, len(peers))
	for _, evalAt := range peers {
		share := curve.Identity()
		for _, p := range peers {
			share = curve.EcAdd(share, evalCommitmentVector(curve, s.peerCommitments[memberIndex(p)], int(evalAt)))
		}
		verifyingShares[frost.Identifier(evalAt)] = &frost.VerifyingShare{Point: share}
	}

	keyPackage := &frost.KeyPackage{
		Identifier:     frost.Identifier(s.memberIndex),
		SigningShare:   frost.NewSigningShare(signingShare),
		VerifyingShare: verifyingShares[frost.Identifier(s.memberIndex)],
		VerifyingKey:   groupVerifyingKey,
		MinSigners:     s.threshold,
	}
	pubKeyPackage := &frost.PublicKeyPackage{
		VerifyingShares: verifyingShares,
		VerifyingKey:    groupVerifyingKey,
	}

	s.logger.Infow("dkg finalized", "member", s.memberIndex, "session", s.sessionID)

	return keyPackage, pubKeyPackage, nil
}

// proveKnowledge produces a Schnorr proof of knowledge of secret for
// commitment = secret*G, binding the proof to this member's session and
// index so it cannot be replayed by another member or in another session.
func (s *Session) proveKnowledge(secret *big.Int, commitment *frost.Point) (*frost.Point, *big.Int, error) {
	curve := s.ciphersuite.Curve()
	order := curve.Order()

	k, err := rand.Int(rand.Reader, order)
	if err != nil {
		return nil, nil, err
	}
	r := curve.EcBaseMul(k)

	challenge := s.pokChallenge(commitment, r)

	z := new(big.Int).Mul(challenge, secret)
	z.Add(z, k)
	z.Mod(z, order)

	return r, z, nil
}

func (s *Session) verifyKnowledge(commitment, r *frost.Point, z *big.Int) bool {
	curve := s.ciphersuite.Curve()
	if !curve.IsPointOnCurve(commitment) || !curve.IsPointOnCurve(r) || z == nil {
		return false
	}

	challenge := s.pokChallenge(commitment, r)

	lhs := curve.EcBaseMul(z)
	rhs := curve.EcAdd(r, curve.EcMul(commitment, challenge))
	return lhs.X.Cmp(rhs.X) == 0 && lhs.Y.Cmp(rhs.Y) == 0
}

func (s *Session) pokChallenge(commitment, r *frost.Point) *big.Int {
	curve := s.ciphersuite.Curve()
	h := sha256.New()
	h.Write([]byte(s.sessionID))
	h.Write(curve.SerializePoint(commitment))
	h.Write(curve.SerializePoint(r))
	digest := h.Sum(nil)
	challenge := new(big.Int).SetBytes(digest)
	return challenge.Mod(challenge, curve.Order())
}

// evalCommitmentVector computes Sum_k commitments[k]^(x^k), the public
// evaluation at x of the polynomial whose coefficients' commitments are
// commitments. This lets any party compute another member's verifying
// share contribution without learning the underlying polynomial.
func evalCommitmentVector(curve frost.Curve, commitments []*frost.Point, x int) *frost.Point {
	order := curve.Order()
	result := curve.Identity()
	bigX := big.NewInt(int64(x))
	for k, c := range commitments {
		power := new(big.Int).Exp(bigX, big.NewInt(int64(k)), order)
		result = curve.EcAdd(result, curve.EcMul(c, power))
	}
	return result
}

func verifyShareAgainstCommitments(curve frost.Curve, share *big.Int, x int, commitments []*frost.Point) bool {
	lhs := curve.EcBaseMul(share)
	rhs := evalCommitmentVector(curve, commitments, x)
	return lhs.X.Cmp(rhs.X) == 0 && lhs.Y.Cmp(rhs.Y) == 0
}

// evaluatePolynomial computes Sum_k coefficients[k]*x^k mod order, the
// secret-sharing polynomial's value at x.
func evaluatePolynomial(coefficients []*big.Int, x int, order *big.Int) *big.Int {
	result := new(big.Int)
	bigX := big.NewInt(int64(x))
	for k := len(coefficients) - 1; k >= 0; k-- {
		result.Mul(result, bigX)
		result.Add(result, coefficients[k])
		result.Mod(result, order)
	}
	return result
}
