package participant

import (
	"math/big"
	"testing"

	"threshold.network/frost-client/frost"
)

// stubParticipantComms is a comms.ParticipantComms fake that hands back a
// preconstructed signing package, mirroring how coordinator's stubComms
// drives Signer/Coordinator directly without any transport in between.
type stubParticipantComms struct {
	pkg        *frost.SigningPackage
	randomizer *big.Int
	err        error
	sentShare  *frost.SignatureShare
	sendErr    error
}

func (s *stubParticipantComms) GetSigningPackage() (*frost.SigningPackage, *big.Int, error) {
	if s.err != nil {
		return nil, nil, s.err
	}
	return s.pkg, s.randomizer, nil
}

func (s *stubParticipantComms) SendSignatureShare(share *frost.SignatureShare) error {
	if s.sendErr != nil {
		return s.sendErr
	}
	s.sentShare = share
	return nil
}

type stubCommitmentSender struct {
	sent *frost.NonceCommitment
	err  error
}

func (s *stubCommitmentSender) SendSigningCommitments(c *frost.NonceCommitment) error {
	if s.err != nil {
		return s.err
	}
	s.sent = c
	return nil
}

func buildSigningPackage(
	t *testing.T,
	cs frost.Ciphersuite,
	keyPackages []*frost.KeyPackage,
	signerIDs []frost.Identifier,
	message []byte,
) (*frost.SigningPackage, map[frost.Identifier]*frost.Nonce) {
	t.Helper()

	byID := make(map[frost.Identifier]*frost.KeyPackage, len(keyPackages))
	for _, kp := range keyPackages {
		byID[kp.Identifier] = kp
	}

	commitments := make(map[frost.Identifier]*frost.NonceCommitment, len(signerIDs))
	nonces := make(map[frost.Identifier]*frost.Nonce, len(signerIDs))
	for _, id := range signerIDs {
		kp := byID[id]
		signer := frost.NewSigner(cs, uint64(kp.Identifier), kp.VerifyingKey, kp.SigningShare.Scalar())
		nonce, commitment, err := signer.Round1()
		if err != nil {
			t.Fatal(err)
		}
		commitments[id] = commitment
		nonces[id] = nonce
	}

	return &frost.SigningPackage{Commitments: commitments, Message: message}, nonces
}

func TestSession_Run(t *testing.T) {
	cs := frost.NewEd25519Ciphersuite()
	keyPackages, _, err := frost.TrustedDealerKeyGen(cs, 2, 3)
	if err != nil {
		t.Fatal(err)
	}

	message := []byte("test")
	self := keyPackages[0]

	// Build a package that includes self's own fresh round-1 commitment
	// alongside another signer's, the way a coordinator would after
	// gathering both.
	otherSigner := frost.NewSigner(cs, uint64(keyPackages[1].Identifier), keyPackages[1].VerifyingKey, keyPackages[1].SigningShare.Scalar())
	_, otherCommitment, err := otherSigner.Round1()
	if err != nil {
		t.Fatal(err)
	}

	selfSigner := frost.NewSigner(cs, uint64(self.Identifier), self.VerifyingKey, self.SigningShare.Scalar())
	_, selfCommitment, err := selfSigner.Round1()
	if err != nil {
		t.Fatal(err)
	}

	pkg := &frost.SigningPackage{
		Commitments: map[frost.Identifier]*frost.NonceCommitment{
			self.Identifier:           selfCommitment,
			keyPackages[1].Identifier: otherCommitment,
		},
		Message: message,
	}

	comms := &stubParticipantComms{pkg: pkg}
	sender := &stubCommitmentSender{}

	session := New(cs, self, comms, sender)
	signedMessage, err := session.Run()
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if string(signedMessage) != string(message) {
		t.Fatalf("expected message %q, got %q", message, signedMessage)
	}
	if session.State() != Signed {
		t.Fatalf("expected state Signed, got %v", session.State())
	}
	if sender.sent == nil {
		t.Fatal("expected a round-1 commitment to have been sent")
	}
	if comms.sentShare == nil || comms.sentShare.Identifier != self.Identifier {
		t.Fatal("expected a signature share to have been sent for self's identifier")
	}
}

func TestSession_Run_AbortsWhenNotInPackage(t *testing.T) {
	cs := frost.NewEd25519Ciphersuite()
	keyPackages, _, err := frost.TrustedDealerKeyGen(cs, 2, 3)
	if err != nil {
		t.Fatal(err)
	}

	self := keyPackages[0]
	pkg, _ := buildSigningPackage(t, cs, keyPackages, []frost.Identifier{keyPackages[1].Identifier, keyPackages[2].Identifier}, []byte("test"))

	comms := &stubParticipantComms{pkg: pkg}
	session := New(cs, self, comms, &stubCommitmentSender{})

	_, err = session.Run()
	if err == nil {
		t.Fatal("expected abort when signing package excludes self's commitment")
	}
	if session.State() != Aborted {
		t.Fatalf("expected state Aborted, got %v", session.State())
	}
}

func TestSession_Run_AbortsOnEmptyMessage(t *testing.T) {
	cs := frost.NewEd25519Ciphersuite()
	keyPackages, _, err := frost.TrustedDealerKeyGen(cs, 2, 3)
	if err != nil {
		t.Fatal(err)
	}
	self := keyPackages[0]

	pkg, _ := buildSigningPackage(t, cs, keyPackages, []frost.Identifier{self.Identifier, keyPackages[1].Identifier}, []byte(""))
	comms := &stubParticipantComms{pkg: pkg}
	session := New(cs, self, comms, &stubCommitmentSender{})

	_, err = session.Run()
	if err == nil {
		t.Fatal("expected abort on empty message")
	}
	if session.State() != Aborted {
		t.Fatalf("expected state Aborted, got %v", session.State())
	}
}

func TestSession_Run_RedpallasRerandomized(t *testing.T) {
	cs := frost.NewRedpallasCiphersuite()
	keyPackages, _, err := frost.TrustedDealerKeyGen(cs, 2, 2)
	if err != nil {
		t.Fatal(err)
	}
	self := keyPackages[0]
	message := []byte("test")

	pkg, _ := buildSigningPackage(t, cs, keyPackages, []frost.Identifier{self.Identifier, keyPackages[1].Identifier}, message)
	randomizer := big.NewInt(12345)

	comms := &stubParticipantComms{pkg: pkg, randomizer: randomizer}
	session := New(cs, self, comms, &stubCommitmentSender{})

	_, err = session.Run()
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if comms.sentShare == nil {
		t.Fatal("expected a share to have been sent")
	}
}
