package frost

import (
	"crypto/sha512"
	"math/big"

	"github.com/decred/dcrd/dcrec/edwards/v2"
)

// Ed25519Ciphersuite implements the [FROST] ciphersuite over edwards25519,
// FROST(Ed25519, SHA-512) in the terminology of [FROST] section 6.3.
type Ed25519Ciphersuite struct {
	curve *Ed25519Curve
}

// NewEd25519Ciphersuite creates a new instance of Ed25519Ciphersuite in a
// state ready to be used for the [FROST] protocol execution.
func NewEd25519Ciphersuite() *Ed25519Ciphersuite {
	return &Ed25519Ciphersuite{curve: &Ed25519Curve{edwards.Edwards()}}
}

// Curve returns the edwards25519 curve implementation backing this
// ciphersuite.
func (e *Ed25519Ciphersuite) Curve() Curve {
	return e.curve
}

// Ed25519Curve adapts github.com/decred/dcrd/dcrec/edwards/v2's
// TwistedEdwardsCurve, an elliptic.Curve implementation, to this package's
// Curve interface.
type Ed25519Curve struct {
	*edwards.TwistedEdwardsCurve
}

func (c *Ed25519Curve) EcBaseMul(k *big.Int) *Point {
	kmod := new(big.Int).Mod(k, c.N)
	x, y := c.ScalarBaseMult(kmod.Bytes())
	return &Point{x, y}
}

func (c *Ed25519Curve) EcMul(p *Point, k *big.Int) *Point {
	kmod := new(big.Int).Mod(k, c.N)
	x, y := c.ScalarMult(p.X, p.Y, kmod.Bytes())
	return &Point{x, y}
}

func (c *Ed25519Curve) EcAdd(a, b *Point) *Point {
	x, y := c.Add(a.X, a.Y, b.X, b.Y)
	return &Point{x, y}
}

func (c *Ed25519Curve) EcSub(a, b *Point) *Point {
	bNeg := &Point{new(big.Int).Sub(c.Params().P, b.X), b.Y}
	return c.EcAdd(a, bNeg)
}

func (c *Ed25519Curve) Identity() *Point {
	return &Point{big.NewInt(0), big.NewInt(1)}
}

func (c *Ed25519Curve) Order() *big.Int {
	return new(big.Int).Set(c.N)
}

func (c *Ed25519Curve) IsPointOnCurve(p *Point) bool {
	if p.X.Sign() == 0 && p.Y.Cmp(big.NewInt(1)) == 0 {
		return false
	}
	return c.IsOnCurve(p.X, p.Y)
}

func (c *Ed25519Curve) SerializedPointLength() int {
	return 32
}

func (c *Ed25519Curve) SerializePoint(p *Point) []byte {
	pub := edwards.NewPublicKey(c.TwistedEdwardsCurve, p.X, p.Y)
	return pub.SerializeCompressed()
}

func (c *Ed25519Curve) DeserializePoint(b []byte) *Point {
	pub, err := edwards.ParsePubKey(b, c.TwistedEdwardsCurve)
	if err != nil {
		return nil
	}
	point := &Point{pub.GetX(), pub.GetY()}
	if !c.IsPointOnCurve(point) {
		return nil
	}
	return point
}

// H1 implements H1(m) = H(contextString || "rho" || m), turned into a
// scalar modulo the curve order.
func (e *Ed25519Ciphersuite) H1(m []byte) *big.Int {
	dst := concat(e.contextString(), []byte("rho"))
	return e.hashToScalar(dst, m)
}

// H2 implements the challenge hash used in the Ed25519 EdDSA-style
// signature: H(R || A || m), matching the convention [FROST] section 6.3
// builds from RFC 8032.
func (e *Ed25519Ciphersuite) H2(m []byte, ms ...[]byte) *big.Int {
	dst := concat(e.contextString(), []byte("chal"))
	return e.hashToScalar(dst, concat(m, ms...))
}

// H3 implements the per-signer nonce generation hash.
func (e *Ed25519Ciphersuite) H3(m []byte, ms ...[]byte) *big.Int {
	dst := concat(e.contextString(), []byte("nonce"))
	return e.hashToScalar(dst, concat(m, ms...))
}

// H4 implements the message pre-hash used when binding commitments to the
// message being signed.
func (e *Ed25519Ciphersuite) H4(m []byte) []byte {
	dst := concat(e.contextString(), []byte("msg"))
	return e.hash(dst, m)
}

// H5 implements the commitment-list hash used to derive binding factors.
func (e *Ed25519Ciphersuite) H5(m []byte) []byte {
	dst := concat(e.contextString(), []byte("com"))
	return e.hash(dst, m)
}

func (e *Ed25519Ciphersuite) contextString() []byte {
	return []byte("FROST-ED25519-SHA512-v1")
}

// hash is a SHA-512 based tagged hash, following the same tag || tag || msg
// construction the secp256k1/BIP-340 ciphersuite uses, generalized to a
// 64-byte digest as required to hash into the edwards25519 scalar field
// without bias.
func (e *Ed25519Ciphersuite) hash(tag, msg []byte) []byte {
	hashedTag := sha512.Sum512(tag)
	slicedTag := hashedTag[:]
	hashed := sha512.Sum512(concat(slicedTag, slicedTag, msg))
	return hashed[:]
}

func (e *Ed25519Ciphersuite) hashToScalar(tag, msg []byte) *big.Int {
	hashed := e.hash(tag, msg)
	scalar := os2ip(hashed)
	return scalar.Mod(scalar, e.curve.N)
}
