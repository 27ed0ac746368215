package frost

import (
	"crypto/rand"
	"math/big"
	"testing"

	"threshold.network/frost-client/internal/testutils"
)

func TestKeyPackageRoundtrip(t *testing.T) {
	cs := NewEd25519Ciphersuite()
	curve := cs.Curve()

	secret, err := rand.Int(rand.Reader, curve.Order())
	if err != nil {
		t.Fatal(err)
	}

	kp := &KeyPackage{
		Identifier:     Identifier(1),
		SigningShare:   NewSigningShare(new(big.Int).Set(secret)),
		VerifyingShare: &VerifyingShare{Point: curve.EcBaseMul(secret)},
		VerifyingKey:   curve.EcBaseMul(secret),
		MinSigners:     2,
	}

	encoded, err := EncodeKeyPackage(cs, kp)
	if err != nil {
		t.Fatal(err)
	}

	decoded, err := DecodeKeyPackage(cs, encoded)
	if err != nil {
		t.Fatal(err)
	}

	testutils.AssertUintsEqual(t, "identifier", uint64(kp.Identifier), uint64(decoded.Identifier))
	testutils.AssertBigIntsEqual(t, "signing share", kp.SigningShare.Scalar(), decoded.SigningShare.Scalar())
	testutils.AssertIntsEqual(t, "min signers", kp.MinSigners, decoded.MinSigners)
}

func TestPublicKeyPackageRoundtrip(t *testing.T) {
	cs := NewEd25519Ciphersuite()
	curve := cs.Curve()

	secret1, _ := rand.Int(rand.Reader, curve.Order())
	secret2, _ := rand.Int(rand.Reader, curve.Order())

	pkg := &PublicKeyPackage{
		VerifyingShares: map[Identifier]*VerifyingShare{
			1: {Point: curve.EcBaseMul(secret1)},
			2: {Point: curve.EcBaseMul(secret2)},
		},
		VerifyingKey: curve.EcBaseMul(secret1),
	}

	encoded, err := EncodePublicKeyPackage(cs, pkg)
	if err != nil {
		t.Fatal(err)
	}

	decoded, err := DecodePublicKeyPackage(cs, encoded)
	if err != nil {
		t.Fatal(err)
	}

	ids := decoded.SignerIdentifiers()
	testutils.AssertIntsEqual(t, "signer count", 2, len(ids))
}

func TestNonceCommitmentRoundtrip(t *testing.T) {
	cs := NewEd25519Ciphersuite()
	curve := cs.Curve()

	h, _ := rand.Int(rand.Reader, curve.Order())
	b, _ := rand.Int(rand.Reader, curve.Order())

	original := NewNonceCommitment(Identifier(7), curve.EcBaseMul(h), curve.EcBaseMul(b))

	encoded, err := EncodeNonceCommitment(cs, original)
	if err != nil {
		t.Fatal(err)
	}

	decoded, err := DecodeNonceCommitment(cs, Identifier(7), encoded)
	if err != nil {
		t.Fatal(err)
	}

	testutils.AssertUintsEqual(t, "identifier", uint64(original.Identifier()), uint64(decoded.Identifier()))
}

func TestSignatureShareRoundtrip(t *testing.T) {
	share := &SignatureShare{Identifier: 3, Share: big.NewInt(12345)}

	encoded, err := share.MarshalJSON()
	if err != nil {
		t.Fatal(err)
	}

	var decoded SignatureShare
	if err := decoded.UnmarshalJSON(encoded); err != nil {
		t.Fatal(err)
	}

	testutils.AssertBigIntsEqual(t, "share scalar", share.Share, decoded.Share)
}
