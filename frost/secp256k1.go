package frost

import (
	"crypto/sha256"
	"math/big"

	"github.com/ethereum/go-ethereum/crypto/secp256k1"
)

// Secp256k1Ciphersuite implements FROST(secp256k1, SHA-256) as described in
// [FROST] section 6.5: the IETF tagged-hash variant operating on full
// (X, Y) curve points, as opposed to Bip340Ciphersuite's x-only Taproot
// convention. It shares its curve arithmetic with Bip340Ciphersuite since
// both operate over the same secp256k1 group; only the domain-separated
// hashing and point encoding differ.
type Secp256k1Ciphersuite struct {
	curve *Bip340Curve
}

// NewSecp256k1Ciphersuite creates a new instance of Secp256k1Ciphersuite in
// a state ready to be used for the [FROST] protocol execution.
func NewSecp256k1Ciphersuite() *Secp256k1Ciphersuite {
	return &Secp256k1Ciphersuite{curve: &Bip340Curve{secp256k1.S256()}}
}

// Curve returns the secp256k1 curve implementation backing this
// ciphersuite.
func (s *Secp256k1Ciphersuite) Curve() Curve {
	return s.curve
}

// H1 implements H1(m) from [FROST] section 6.5.
func (s *Secp256k1Ciphersuite) H1(m []byte) *big.Int {
	dst := concat(s.contextString(), []byte("rho"))
	return s.hashToScalar(dst, m)
}

// H2 implements the challenge hash H2(m) from [FROST] section 6.5.
func (s *Secp256k1Ciphersuite) H2(m []byte, ms ...[]byte) *big.Int {
	dst := concat(s.contextString(), []byte("chal"))
	return s.hashToScalar(dst, concat(m, ms...))
}

// H3 implements the nonce generation hash H3(m) from [FROST] section 6.5.
func (s *Secp256k1Ciphersuite) H3(m []byte, ms ...[]byte) *big.Int {
	dst := concat(s.contextString(), []byte("nonce"))
	return s.hashToScalar(dst, concat(m, ms...))
}

// H4 implements the message pre-hash H4(m) from [FROST] section 6.5.
func (s *Secp256k1Ciphersuite) H4(m []byte) []byte {
	dst := concat(s.contextString(), []byte("msg"))
	return s.hash(dst, m)
}

// H5 implements the commitment-list hash H5(m) from [FROST] section 6.5.
func (s *Secp256k1Ciphersuite) H5(m []byte) []byte {
	dst := concat(s.contextString(), []byte("com"))
	return s.hash(dst, m)
}

func (s *Secp256k1Ciphersuite) contextString() []byte {
	return []byte("FROST-secp256k1-SHA256-v1")
}

func (s *Secp256k1Ciphersuite) hash(tag, msg []byte) []byte {
	hashedTag := sha256.Sum256(tag)
	slicedTag := hashedTag[:]
	hashed := sha256.Sum256(concat(slicedTag, slicedTag, msg))
	return hashed[:]
}

func (s *Secp256k1Ciphersuite) hashToScalar(tag, msg []byte) *big.Int {
	hashed := s.hash(tag, msg)
	scalar := os2ip(hashed)
	return scalar.Mod(scalar, s.curve.N)
}
