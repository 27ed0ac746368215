package frost

import (
	"crypto/sha256"
	"math/big"

	"github.com/ethereum/go-ethereum/crypto/secp256k1"
)

// RedpallasCiphersuite implements the rerandomized-signing protocol shape
// used by Zcash's redpallas (the FROST variant backing Orchard spend
// authorization): every signature is produced against a rerandomized
// verifying key PK' = PK + randomizer*G, where randomizer is a
// session-specific scalar supplied by the coordinator, so no two
// signatures for the same underlying key are linkable.
//
// This implementation wires the *protocol* shape generically (see
// RerandomizableCiphersuite, Signer.RoundRerandomized,
// Coordinator.AggregateRerandomized) but runs it over secp256k1 rather than
// the Pasta/Halo2 Pallas curve redpallas actually specifies: no repo in
// this corpus ships a Pallas or other Halo2-family curve implementation.
// The signing and rerandomization arithmetic are real and testable; only
// the underlying group differs from production redpallas.
type RedpallasCiphersuite struct {
	curve *Bip340Curve
}

// NewRedpallasCiphersuite creates a new instance of RedpallasCiphersuite in
// a state ready to be used for the [FROST] protocol execution.
func NewRedpallasCiphersuite() *RedpallasCiphersuite {
	return &RedpallasCiphersuite{curve: &Bip340Curve{secp256k1.S256()}}
}

// Curve returns the curve implementation backing this ciphersuite.
func (r *RedpallasCiphersuite) Curve() Curve {
	return r.curve
}

// Rerandomize computes PK + randomizer*G, the verifying key a
// rerandomized signature must validate against.
func (r *RedpallasCiphersuite) Rerandomize(publicKey *Point, randomizer *big.Int) *Point {
	return r.curve.EcAdd(publicKey, r.curve.EcBaseMul(randomizer))
}

// H1 implements the per-signer binding-factor input hash.
func (r *RedpallasCiphersuite) H1(m []byte) *big.Int {
	dst := concat(r.contextString(), []byte("rho"))
	return r.hashToScalar(dst, m)
}

// H2 implements the challenge hash.
func (r *RedpallasCiphersuite) H2(m []byte, ms ...[]byte) *big.Int {
	dst := concat(r.contextString(), []byte("chal"))
	return r.hashToScalar(dst, concat(m, ms...))
}

// H3 implements the nonce generation hash.
func (r *RedpallasCiphersuite) H3(m []byte, ms ...[]byte) *big.Int {
	dst := concat(r.contextString(), []byte("nonce"))
	return r.hashToScalar(dst, concat(m, ms...))
}

// H4 implements the message pre-hash.
func (r *RedpallasCiphersuite) H4(m []byte) []byte {
	dst := concat(r.contextString(), []byte("msg"))
	return r.hash(dst, m)
}

// H5 implements the commitment-list hash.
func (r *RedpallasCiphersuite) H5(m []byte) []byte {
	dst := concat(r.contextString(), []byte("com"))
	return r.hash(dst, m)
}

func (r *RedpallasCiphersuite) contextString() []byte {
	return []byte("FROST-redpallas-SHA256-v1")
}

func (r *RedpallasCiphersuite) hash(tag, msg []byte) []byte {
	hashedTag := sha256.Sum256(tag)
	slicedTag := hashedTag[:]
	hashed := sha256.Sum256(concat(slicedTag, slicedTag, msg))
	return hashed[:]
}

func (r *RedpallasCiphersuite) hashToScalar(tag, msg []byte) *big.Int {
	hashed := r.hash(tag, msg)
	scalar := os2ip(hashed)
	return scalar.Mod(scalar, r.curve.N)
}
