package frost

import (
	"crypto/rand"
	"math/big"
	"testing"

	"threshold.network/frost-client/internal/testutils"
)

// TestCiphersuiteRoundtrip exercises a full FROST signing round for every
// full-point ciphersuite (ed25519, secp256k1, p256), verifying the
// resulting aggregate signature with Signature.Verify. Bip340Ciphersuite
// is covered separately by TestFrostRoundtrip, which uses its x-only
// VerifySignature instead.
func TestCiphersuiteRoundtrip(t *testing.T) {
	suites := map[string]Ciphersuite{
		"ed25519":   NewEd25519Ciphersuite(),
		"secp256k1": NewSecp256k1Ciphersuite(),
		"p256":      NewP256Ciphersuite(),
	}

	for name, cs := range suites {
		t.Run(name, func(t *testing.T) {
			testCiphersuiteRoundtrip(t, cs)
		})
	}
}

func testCiphersuiteRoundtrip(t *testing.T, cs Ciphersuite) {
	const (
		groupSize = 5
		threshold = 3
	)

	message := []byte("we few, we happy few, we band of brothers")

	keyPackages, pubKeyPackage, err := TrustedDealerKeyGen(cs, threshold, groupSize)
	if err != nil {
		t.Fatal(err)
	}

	signers := make([]*Signer, groupSize)
	for i, kp := range keyPackages {
		signers[i] = NewSigner(
			cs,
			uint64(kp.Identifier),
			pubKeyPackage.VerifyingKey,
			kp.SigningShare.Scalar(),
		)
	}

	nonces := make([]*Nonce, groupSize)
	commitments := make([]*NonceCommitment, groupSize)
	for i, signer := range signers {
		n, c, err := signer.Round1()
		if err != nil {
			t.Fatal(err)
		}
		nonces[i] = n
		commitments[i] = c
	}

	shares := make([]*big.Int, groupSize)
	for i, signer := range signers {
		share, err := signer.Round2(message, nonces[i], commitments)
		if err != nil {
			t.Fatal(err)
		}
		shares[i] = share
	}

	coordinator := NewCoordinator(cs, pubKeyPackage.VerifyingKey, threshold, groupSize)
	signature, err := coordinator.Aggregate(message, commitments, shares)
	if err != nil {
		t.Fatal(err)
	}

	testutils.AssertBoolsEqual(
		t,
		"signature validity",
		true,
		signature.Verify(cs, pubKeyPackage.VerifyingKey, message),
	)
}

func TestRedpallasRoundtrip(t *testing.T) {
	const (
		groupSize = 5
		threshold = 3
	)

	cs := NewRedpallasCiphersuite()
	message := []byte("rerandomized signatures do not link across sessions")

	keyPackages, pubKeyPackage, err := TrustedDealerKeyGen(cs, threshold, groupSize)
	if err != nil {
		t.Fatal(err)
	}

	signers := make([]*Signer, groupSize)
	for i, kp := range keyPackages {
		signers[i] = NewSigner(
			cs,
			uint64(kp.Identifier),
			pubKeyPackage.VerifyingKey,
			kp.SigningShare.Scalar(),
		)
	}

	nonces := make([]*Nonce, groupSize)
	commitments := make([]*NonceCommitment, groupSize)
	for i, signer := range signers {
		n, c, err := signer.Round1()
		if err != nil {
			t.Fatal(err)
		}
		nonces[i] = n
		commitments[i] = c
	}

	randomizer, err := rand.Int(rand.Reader, cs.Curve().Order())
	if err != nil {
		t.Fatal(err)
	}

	shares := make([]*big.Int, groupSize)
	for i, signer := range signers {
		share, err := signer.RoundRerandomized(message, nonces[i], commitments, randomizer, groupSize)
		if err != nil {
			t.Fatal(err)
		}
		shares[i] = share
	}

	coordinator := NewCoordinator(cs, pubKeyPackage.VerifyingKey, threshold, groupSize)
	signature, err := coordinator.AggregateRerandomized(message, commitments, shares, randomizer)
	if err != nil {
		t.Fatal(err)
	}

	rerandomizedKey := cs.Rerandomize(pubKeyPackage.VerifyingKey, randomizer)

	testutils.AssertBoolsEqual(
		t,
		"rerandomized signature validity",
		true,
		signature.Verify(cs, rerandomizedKey, message),
	)
}
