package frost

import (
	"encoding/hex"
	"fmt"
	"math/big"
)

// Signature is the output of the [FROST] aggregate function: a group
// commitment R and an aggregated response scalar Z, together forming a
// Schnorr signature (R, Z) valid under the group's verifying key.
type Signature struct {
	R *Point
	Z *big.Int
}

// Serialize encodes the signature using the ciphersuite's point encoding
// for R followed by the fixed-width big-endian encoding of Z, matching the
// conventional Schnorr signature wire format (R || Z).
func (s *Signature) Serialize(ciphersuite Ciphersuite) []byte {
	curve := ciphersuite.Curve()
	rBytes := curve.SerializePoint(s.R)
	zBytes := make([]byte, 32)
	s.Z.FillBytes(zBytes)
	return append(rBytes, zBytes...)
}

// Hex encodes the serialized signature as a lowercase hex string, the
// format used when a signature is written to stdout rather than a file.
func (s *Signature) Hex(ciphersuite Ciphersuite) string {
	return hex.EncodeToString(s.Serialize(ciphersuite))
}

// DeserializeSignature parses a signature previously produced by
// Signature.Serialize for the given ciphersuite.
func DeserializeSignature(ciphersuite Ciphersuite, b []byte) (*Signature, error) {
	curve := ciphersuite.Curve()
	pointLen := curve.SerializedPointLength()
	if len(b) != pointLen+32 {
		return nil, fmt.Errorf(
			"invalid signature length: expected [%d], has [%d]",
			pointLen+32,
			len(b),
		)
	}
	r := curve.DeserializePoint(b[:pointLen])
	if r == nil {
		return nil, fmt.Errorf("signature R component is not a valid curve point")
	}
	z := new(big.Int).SetBytes(b[pointLen:])
	return &Signature{R: r, Z: z}, nil
}

// Verify checks a Schnorr signature produced over full (X, Y) curve points:
// Z*G == R + H2(R, PK, m)*PK. This is the verification equation every
// full-point ciphersuite in this package (ed25519, secp256k1,
// p256, redpallas) shares; Bip340Ciphersuite uses its own x-only
// VerifySignature instead, since [BIP-340] strips the Y coordinate from
// both the public key and the challenge input.
func (s *Signature) Verify(ciphersuite Ciphersuite, publicKey *Point, message []byte) bool {
	curve := ciphersuite.Curve()

	if !curve.IsPointOnCurve(s.R) || !curve.IsPointOnCurve(publicKey) {
		return false
	}

	challenge := ciphersuite.H2(
		curve.SerializePoint(s.R),
		curve.SerializePoint(publicKey),
		message,
	)

	lhs := curve.EcBaseMul(s.Z)
	rhs := curve.EcAdd(s.R, curve.EcMul(publicKey, challenge))

	return lhs.X.Cmp(rhs.X) == 0 && lhs.Y.Cmp(rhs.Y) == 0
}
