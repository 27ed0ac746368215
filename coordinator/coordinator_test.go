package coordinator

import (
	"math/big"
	"testing"

	"threshold.network/frost-client/frost"
)

// stubComms is a comms.CoordinatorComms fake driven directly from signer
// state built with frost.NewSigner, the way frost/frost_test.go exercises
// Signer/Coordinator without any transport in between. It lets these tests
// focus on the state machine's own validation and transition logic rather
// than on a particular comms backend.
type stubComms struct {
	cs          frost.Ciphersuite
	signers     map[frost.Identifier]*frost.Signer
	nonces      map[frost.Identifier]*frost.Nonce
	commitments map[frost.Identifier]*frost.NonceCommitment

	// overrides let individual tests corrupt what GetSigningCommitments /
	// GetSignatureShares return to exercise a validation failure path.
	commitmentOverride map[frost.Identifier]*frost.NonceCommitment
	shareOverride      map[frost.Identifier]*frost.SignatureShare
	failCommitments    error
	failShares         error
}

func newStubComms(cs frost.Ciphersuite, keyPackages []*frost.KeyPackage) *stubComms {
	s := &stubComms{
		cs:          cs,
		signers:     make(map[frost.Identifier]*frost.Signer),
		nonces:      make(map[frost.Identifier]*frost.Nonce),
		commitments: make(map[frost.Identifier]*frost.NonceCommitment),
	}
	for _, kp := range keyPackages {
		s.signers[kp.Identifier] = frost.NewSigner(
			cs, uint64(kp.Identifier), kp.VerifyingKey, kp.SigningShare.Scalar(),
		)
	}
	return s
}

func (s *stubComms) GetSigningCommitments(
	_ *frost.PublicKeyPackage,
	signingParticipants []frost.Identifier,
	_ int,
) (map[frost.Identifier]*frost.NonceCommitment, error) {
	if s.failCommitments != nil {
		return nil, s.failCommitments
	}
	if s.commitmentOverride != nil {
		return s.commitmentOverride, nil
	}

	result := make(map[frost.Identifier]*frost.NonceCommitment, len(signingParticipants))
	for _, id := range signingParticipants {
		nonce, commitment, err := s.signers[id].Round1()
		if err != nil {
			return nil, err
		}
		s.nonces[id] = nonce
		s.commitments[id] = commitment
		result[id] = commitment
	}
	return result, nil
}

func (s *stubComms) GetSignatureShares(
	signingPackage *frost.SigningPackage,
	randomizer *big.Int,
) (map[frost.Identifier]*frost.SignatureShare, error) {
	if s.failShares != nil {
		return nil, s.failShares
	}
	if s.shareOverride != nil {
		return s.shareOverride, nil
	}

	commitmentList := signingPackage.CommitmentList()
	result := make(map[frost.Identifier]*frost.SignatureShare, len(signingPackage.Commitments))
	for id := range signingPackage.Commitments {
		var shareScalar *big.Int
		var err error
		if randomizer != nil {
			shareScalar, err = s.signers[id].RoundRerandomized(
				signingPackage.Message, s.nonces[id], commitmentList, randomizer, len(commitmentList),
			)
		} else {
			shareScalar, err = s.signers[id].Round2(signingPackage.Message, s.nonces[id], commitmentList)
		}
		if err != nil {
			return nil, err
		}
		result[id] = &frost.SignatureShare{Identifier: id, Share: shareScalar}
	}
	return result, nil
}

func setupGroup(t *testing.T, threshold, groupSize int) (frost.Ciphersuite, []*frost.KeyPackage, *frost.PublicKeyPackage) {
	t.Helper()
	cs := frost.NewEd25519Ciphersuite()
	keyPackages, pubKeyPackage, err := frost.TrustedDealerKeyGen(cs, threshold, groupSize)
	if err != nil {
		t.Fatalf("trusted dealer keygen: %v", err)
	}
	return cs, keyPackages, pubKeyPackage
}

func TestSession_Run_Completeness(t *testing.T) {
	cs, keyPackages, pubKeyPackage := setupGroup(t, 2, 3)

	signers := []frost.Identifier{keyPackages[0].Identifier, keyPackages[2].Identifier}
	c := newStubComms(cs, keyPackages)

	session := New(cs, pubKeyPackage, 2, 2, c)
	message := []byte("test")

	results, err := session.Run(signers, [][]byte{message}, nil)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if session.State() != Verified {
		t.Fatalf("expected state Verified, got %v", session.State())
	}
	if len(results) != 1 {
		t.Fatalf("expected 1 result, got %d", len(results))
	}
	if !results[0].Signature.Verify(cs, pubKeyPackage.VerifyingKey, message) {
		t.Fatal("aggregated signature does not verify")
	}
}

func TestSession_Run_MultiMessage(t *testing.T) {
	cs, keyPackages, pubKeyPackage := setupGroup(t, 2, 3)
	signers := []frost.Identifier{keyPackages[0].Identifier, keyPackages[1].Identifier}
	c := newStubComms(cs, keyPackages)

	session := New(cs, pubKeyPackage, 2, 2, c)
	messages := [][]byte{[]byte("first"), []byte("second"), []byte("third")}

	results, err := session.Run(signers, messages, nil)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if len(results) != len(messages) {
		t.Fatalf("expected %d results, got %d", len(messages), len(results))
	}
	for i, r := range results {
		if !r.Signature.Verify(cs, pubKeyPackage.VerifyingKey, messages[i]) {
			t.Fatalf("signature %d does not verify", i)
		}
	}
}

func TestSession_Run_UnderThreshold(t *testing.T) {
	_, keyPackages, pubKeyPackage := setupGroup(t, 3, 3)
	cs := frost.NewEd25519Ciphersuite()

	c := newStubComms(cs, keyPackages)
	session := New(cs, pubKeyPackage, 3, 2, c)

	_, err := session.Run([]frost.Identifier{keyPackages[0].Identifier, keyPackages[1].Identifier}, [][]byte{[]byte("m")}, nil)
	if err == nil {
		t.Fatal("expected failure for under-threshold signer set")
	}
	if session.State() != Failed {
		t.Fatalf("expected state Failed, got %v", session.State())
	}
}

func TestSession_Run_SignerNotInGroup(t *testing.T) {
	cs, keyPackages, pubKeyPackage := setupGroup(t, 2, 3)
	c := newStubComms(cs, keyPackages)
	session := New(cs, pubKeyPackage, 2, 2, c)

	_, err := session.Run([]frost.Identifier{keyPackages[0].Identifier, 99}, [][]byte{[]byte("m")}, nil)
	if err == nil {
		t.Fatal("expected failure for unknown signer identifier")
	}
	if session.State() != Failed {
		t.Fatalf("expected state Failed, got %v", session.State())
	}
}

func TestSession_Run_TamperedShareFailsVerification(t *testing.T) {
	cs, keyPackages, pubKeyPackage := setupGroup(t, 2, 3)
	signers := []frost.Identifier{keyPackages[0].Identifier, keyPackages[2].Identifier}
	c := newStubComms(cs, keyPackages)

	// Prime commitments normally first so nonces exist, then corrupt the
	// shares that get returned for round 2.
	commitments, err := c.GetSigningCommitments(pubKeyPackage, signers, len(signers))
	if err != nil {
		t.Fatal(err)
	}

	message := []byte("test")
	sp := &frost.SigningPackage{Commitments: commitments, Message: message}
	goodShares, err := c.GetSignatureShares(sp, nil)
	if err != nil {
		t.Fatal(err)
	}
	tampered := make(map[frost.Identifier]*frost.SignatureShare, len(goodShares))
	for id, share := range goodShares {
		tampered[id] = &frost.SignatureShare{
			Identifier: share.Identifier,
			Share:      new(big.Int).Add(share.Share, big.NewInt(1)),
		}
	}

	c2 := newStubComms(cs, keyPackages)
	c2.commitmentOverride = commitments
	c2.shareOverride = tampered

	session := New(cs, pubKeyPackage, 2, 2, c2)
	_, err = session.Run(signers, [][]byte{message}, nil)
	if err == nil {
		t.Fatal("expected aggregation of tampered shares to fail verification")
	}
	if session.State() != Failed {
		t.Fatalf("expected state Failed, got %v", session.State())
	}
}

func TestSession_Run_MissingShareFails(t *testing.T) {
	cs, keyPackages, pubKeyPackage := setupGroup(t, 2, 3)
	signers := []frost.Identifier{keyPackages[0].Identifier, keyPackages[2].Identifier}
	c := newStubComms(cs, keyPackages)
	c.shareOverride = map[frost.Identifier]*frost.SignatureShare{
		keyPackages[0].Identifier: {Identifier: keyPackages[0].Identifier, Share: big.NewInt(1)},
	}

	session := New(cs, pubKeyPackage, 2, 2, c)
	_, err := session.Run(signers, [][]byte{[]byte("test")}, nil)
	if err == nil {
		t.Fatal("expected failure when a signer's share is missing")
	}
}

func TestSession_Run_Redpallas(t *testing.T) {
	cs := frost.NewRedpallasCiphersuite()
	keyPackages, pubKeyPackage, err := frost.TrustedDealerKeyGen(cs, 2, 3)
	if err != nil {
		t.Fatal(err)
	}

	signers := []frost.Identifier{keyPackages[0].Identifier, keyPackages[1].Identifier}
	c := newStubComms(cs, keyPackages)

	session := New(cs, pubKeyPackage, 2, 2, c)
	message := []byte("test")

	results, err := session.Run(signers, [][]byte{message}, nil)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if results[0].Randomizer == nil {
		t.Fatal("expected a randomizer to be drawn for redpallas")
	}

	rc := cs.(frost.RerandomizableCiphersuite)
	rerandomizedKey := rc.Rerandomize(pubKeyPackage.VerifyingKey, results[0].Randomizer)
	if !results[0].Signature.Verify(cs, rerandomizedKey, message) {
		t.Fatal("signature does not verify under the rerandomized key")
	}
}

func TestValidateThreshold(t *testing.T) {
	if err := ValidateThreshold(3, 2); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if err := ValidateThreshold(1, 2); err == nil {
		t.Fatal("expected error for under-threshold signer count")
	}
}
