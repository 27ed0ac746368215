package frost

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
	"math/big"
)

// identifierByteLength is the fixed width used when an Identifier crosses
// a wire boundary (credential file, session registry, relay message):
// a 32-byte big-endian encoding, wide enough for every ciphersuite's scalar
// field this package supports. Internally, Signer and Coordinator still
// operate on the plain uint64 index FROST's reference algorithm uses.
const identifierByteLength = 32

// Identifier names a single participant within a group. It wraps the
// uint64 index used internally by Signer/Coordinator/Participant and
// gives it a stable, fixed-width external representation.
type Identifier uint64

// String renders the identifier as fixed-width big-endian hex, matching
// the convention used by credential files and session messages.
func (id Identifier) String() string {
	b := make([]byte, identifierByteLength)
	new(big.Int).SetUint64(uint64(id)).FillBytes(b)
	return hex.EncodeToString(b)
}

// ParseIdentifier parses the fixed-width hex representation produced by
// String back into an Identifier.
func ParseIdentifier(s string) (Identifier, error) {
	b, err := hex.DecodeString(s)
	if err != nil {
		return 0, fmt.Errorf("invalid identifier hex: %w", err)
	}
	if len(b) != identifierByteLength {
		return 0, fmt.Errorf(
			"invalid identifier length: expected [%d] bytes, has [%d]",
			identifierByteLength,
			len(b),
		)
	}
	v := new(big.Int).SetBytes(b)
	if !v.IsUint64() {
		return 0, fmt.Errorf("identifier value exceeds internal uint64 index range")
	}
	if v.Sign() == 0 {
		return 0, fmt.Errorf("identifier must be non-zero")
	}
	return Identifier(v.Uint64()), nil
}

func (id Identifier) MarshalJSON() ([]byte, error) {
	return json.Marshal(id.String())
}

func (id *Identifier) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := ParseIdentifier(s)
	if err != nil {
		return err
	}
	*id = parsed
	return nil
}

// SigningShare is a participant's secret share sk_i of the group signing
// key. It must be zeroized once the holder is done with it: on process
// exit, after a dealer hands it off, or after a signing session completes.
type SigningShare struct {
	value *big.Int
}

// NewSigningShare wraps a scalar as a SigningShare. Ownership of value
// transfers to the SigningShare; callers must not retain their own
// reference to it afterward.
func NewSigningShare(value *big.Int) *SigningShare {
	return &SigningShare{value: value}
}

// Scalar returns the underlying scalar. Callers must not mutate the
// returned value; it aliases the share's internal state.
func (s *SigningShare) Scalar() *big.Int {
	return s.value
}

// Zeroize overwrites the share's scalar in place.
func (s *SigningShare) Zeroize() {
	if s == nil || s.value == nil {
		return
	}
	s.value.SetInt64(0)
}

func (s *SigningShare) MarshalJSON() ([]byte, error) {
	return json.Marshal(hex.EncodeToString(s.value.Bytes()))
}

func (s *SigningShare) UnmarshalJSON(data []byte) error {
	var hexStr string
	if err := json.Unmarshal(data, &hexStr); err != nil {
		return err
	}
	b, err := hex.DecodeString(hexStr)
	if err != nil {
		return fmt.Errorf("invalid signing share hex: %w", err)
	}
	s.value = new(big.Int).SetBytes(b)
	return nil
}

// VerifyingShare is the public counterpart of a SigningShare: the point
// sk_i*G, used by a coordinator or auditor to verify a signer's share
// in isolation, independent of the group's aggregate verifying key.
type VerifyingShare struct {
	Point *Point
}

// EncodeHex renders the verifying share using the ciphersuite's point
// encoding. VerifyingShare does not implement json.Marshaler directly since
// encoding a point requires knowing which ciphersuite produced it; callers
// that serialize a KeyPackage or PublicKeyPackage to JSON do so through a
// ciphersuite-aware wrapper that calls this method explicitly.
func (v *VerifyingShare) EncodeHex(ciphersuite Ciphersuite) string {
	return hex.EncodeToString(ciphersuite.Curve().SerializePoint(v.Point))
}

// KeyPackage bundles everything a single signer needs to participate in
// signing sessions for a group: its own identifier and secret share, the
// group's verifying key, and the threshold required to reconstruct a
// signature. It is the artifact a trusted-dealer issuer or DKG round hands
// to each participant.
type KeyPackage struct {
	Identifier     Identifier
	SigningShare   *SigningShare
	VerifyingShare *VerifyingShare
	VerifyingKey   *Point
	MinSigners     int
}

// Zeroize overwrites the package's secret material in place. Callers must
// call this once a KeyPackage is no longer needed for the process
// lifetime.
func (k *KeyPackage) Zeroize() {
	if k == nil {
		return
	}
	k.SigningShare.Zeroize()
}

// PublicKeyPackage bundles the information every participant and the
// coordinator need that is public: every signer's verifying share, keyed
// by identifier, and the group's verifying key.
type PublicKeyPackage struct {
	VerifyingShares map[Identifier]*VerifyingShare
	VerifyingKey    *Point
}

// SignerIdentifiers returns the package's signer identifiers sorted in
// ascending order, the order [FROST] commitment lists must be presented in.
func (pkg *PublicKeyPackage) SignerIdentifiers() []Identifier {
	ids := make([]Identifier, 0, len(pkg.VerifyingShares))
	for id := range pkg.VerifyingShares {
		ids = append(ids, id)
	}
	sortIdentifiers(ids)
	return ids
}

func sortIdentifiers(ids []Identifier) {
	for i := 1; i < len(ids); i++ {
		for j := i; j > 0 && ids[j-1] > ids[j]; j-- {
			ids[j-1], ids[j] = ids[j], ids[j-1]
		}
	}
}
