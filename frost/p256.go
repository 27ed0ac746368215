package frost

import (
	"crypto/elliptic"
	"crypto/sha256"
	"math/big"
)

// P256Ciphersuite implements the [FROST] ciphersuite over NIST P-256,
// FROST(P-256, SHA-256) as described in [FROST] section 6.4. No pack
// example offers a P-256 group implementation suited to FROST, so this
// ciphersuite is built directly on the standard library's crypto/elliptic,
// the one ambient concern in this package not grounded on a third-party
// dependency.
type P256Ciphersuite struct {
	curve *P256Curve
}

// NewP256Ciphersuite creates a new instance of P256Ciphersuite in a state
// ready to be used for the [FROST] protocol execution.
func NewP256Ciphersuite() *P256Ciphersuite {
	return &P256Ciphersuite{curve: &P256Curve{elliptic.P256()}}
}

// Curve returns the P-256 curve implementation backing this ciphersuite.
func (p *P256Ciphersuite) Curve() Curve {
	return p.curve
}

// P256Curve adapts the standard library's elliptic.Curve to this package's
// Curve interface.
type P256Curve struct {
	elliptic.Curve
}

func (c *P256Curve) EcBaseMul(k *big.Int) *Point {
	kmod := new(big.Int).Mod(k, c.Params().N)
	x, y := c.ScalarBaseMult(kmod.Bytes())
	return &Point{x, y}
}

func (c *P256Curve) EcMul(p *Point, k *big.Int) *Point {
	kmod := new(big.Int).Mod(k, c.Params().N)
	x, y := c.ScalarMult(p.X, p.Y, kmod.Bytes())
	return &Point{x, y}
}

func (c *P256Curve) EcAdd(a, b *Point) *Point {
	x, y := c.Add(a.X, a.Y, b.X, b.Y)
	return &Point{x, y}
}

func (c *P256Curve) EcSub(a, b *Point) *Point {
	bNeg := &Point{b.X, new(big.Int).Sub(c.Params().P, b.Y)}
	return c.EcAdd(a, bNeg)
}

func (c *P256Curve) Identity() *Point {
	return &Point{big.NewInt(0), big.NewInt(0)}
}

func (c *P256Curve) Order() *big.Int {
	return new(big.Int).Set(c.Params().N)
}

func (c *P256Curve) IsPointOnCurve(p *Point) bool {
	if p.X.Sign() == 0 && p.Y.Sign() == 0 {
		return false
	}
	return c.IsOnCurve(p.X, p.Y)
}

func (c *P256Curve) SerializedPointLength() int {
	return 33
}

func (c *P256Curve) SerializePoint(p *Point) []byte {
	return elliptic.MarshalCompressed(c.Curve, p.X, p.Y)
}

func (c *P256Curve) DeserializePoint(b []byte) *Point {
	x, y := elliptic.UnmarshalCompressed(c.Curve, b)
	if x == nil || y == nil {
		return nil
	}
	point := &Point{x, y}
	if !c.IsPointOnCurve(point) {
		return nil
	}
	return point
}

// H1 implements H1(m) from [FROST] section 6.4.
func (p *P256Ciphersuite) H1(m []byte) *big.Int {
	dst := concat(p.contextString(), []byte("rho"))
	return p.hashToScalar(dst, m)
}

// H2 implements the challenge hash H2(m) from [FROST] section 6.4.
func (p *P256Ciphersuite) H2(m []byte, ms ...[]byte) *big.Int {
	dst := concat(p.contextString(), []byte("chal"))
	return p.hashToScalar(dst, concat(m, ms...))
}

// H3 implements the nonce generation hash H3(m) from [FROST] section 6.4.
func (p *P256Ciphersuite) H3(m []byte, ms ...[]byte) *big.Int {
	dst := concat(p.contextString(), []byte("nonce"))
	return p.hashToScalar(dst, concat(m, ms...))
}

// H4 implements the message pre-hash H4(m) from [FROST] section 6.4.
func (p *P256Ciphersuite) H4(m []byte) []byte {
	dst := concat(p.contextString(), []byte("msg"))
	return p.hash(dst, m)
}

// H5 implements the commitment-list hash H5(m) from [FROST] section 6.4.
func (p *P256Ciphersuite) H5(m []byte) []byte {
	dst := concat(p.contextString(), []byte("com"))
	return p.hash(dst, m)
}

func (p *P256Ciphersuite) contextString() []byte {
	return []byte("FROST-P256-SHA256-v1")
}

func (p *P256Ciphersuite) hash(tag, msg []byte) []byte {
	hashedTag := sha256.Sum256(tag)
	slicedTag := hashedTag[:]
	hashed := sha256.Sum256(concat(slicedTag, slicedTag, msg))
	return hashed[:]
}

func (p *P256Ciphersuite) hashToScalar(tag, msg []byte) *big.Int {
	hashed := p.hash(tag, msg)
	scalar := os2ip(hashed)
	return scalar.Mod(scalar, p.curve.Params().N)
}
