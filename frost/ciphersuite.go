package frost

import "math/big"

// Ciphersuite interface abstracts out the particular ciphersuite implementation
// used for the [FROST] protocol execution. This is a strategy design pattern
// allowing to use [FROST] with different ciphersuites, like BIP-340 (secp256k1)
// or Jubjub. A [FROST] ciphersuite must specify the underlying prime-order group
// details and cryptographic hash functions.
type Ciphersuite interface {
	Hashing
	Curve() Curve
}

// Hashing interface abstracts out hash functions implementations specific to the
// ciphersuite used.
//
// [FROST] requires the use of a cryptographically secure hash function,
// generically written as H. Using H, [FROST] introduces distinct domain-separated
// hashes, H1, H2, H3, H4, and H5. The details of H1, H2, H3, H4, and H5 vary
// based on ciphersuite.
type Hashing interface {
	H1(m []byte) *big.Int
	H2(m []byte, ms ...[]byte) *big.Int
	H3(m []byte, ms ...[]byte) *big.Int
	H4(m []byte) []byte
	H5(m []byte) []byte
}

// Curve interface abstracts out the particular elliptic curve implementation
// specific to the ciphersuite used.
type Curve interface {
	// EcBaseMul returns k*G, where G is the base point of the group.
	EcBaseMul(k *big.Int) *Point
	// EcMul returns k*P for the point P and scalar k.
	EcMul(p *Point, k *big.Int) *Point
	// EcAdd returns the sum of two points.
	EcAdd(a, b *Point) *Point
	// EcSub returns the difference of two points.
	EcSub(a, b *Point) *Point
	// Identity returns the group's identity element.
	Identity() *Point
	// Order returns the order of the group produced by the curve generator.
	Order() *big.Int
	// IsPointOnCurve reports whether p is a valid, non-identity point lying
	// on the curve.
	IsPointOnCurve(p *Point) bool
	// SerializedPointLength returns the byte length produced by
	// SerializePoint.
	SerializedPointLength() int
	// SerializePoint serializes p to a fixed-length byte slice.
	SerializePoint(p *Point) []byte
	// DeserializePoint parses a byte slice produced by SerializePoint,
	// returning nil if the bytes do not encode a valid point on the curve.
	DeserializePoint(b []byte) *Point
}

// RerandomizableCiphersuite is implemented by ciphersuites that support
// rerandomized signing, such as redpallas. Rerandomize derives the
// rerandomized verifying key PK' = PK + randomizer*G used both by a signer
// computing its rerandomized share and by a coordinator verifying the
// resulting signature.
type RerandomizableCiphersuite interface {
	Ciphersuite
	Rerandomize(publicKey *Point, randomizer *big.Int) *Point
}

// Point represents a valid point on the Curve.
type Point struct {
	X *big.Int // the X coordinate of the point
	Y *big.Int // the Y coordinate of the point
}
