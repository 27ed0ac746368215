package frost

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
	"math/big"
)

// Identifier returns the identifier of the signer that produced this
// commitment.
func (c *NonceCommitment) Identifier() Identifier {
	return Identifier(c.signerIndex)
}

// Hiding returns the hiding nonce commitment element.
func (c *NonceCommitment) Hiding() *Point {
	return c.hidingNonceCommitment
}

// Binding returns the binding nonce commitment element.
func (c *NonceCommitment) Binding() *Point {
	return c.bindingNonceCommitment
}

// NewNonceCommitment builds a NonceCommitment from its wire components, the
// shape a coordinator reconstructs after deserializing a participant's
// round-1 message.
func NewNonceCommitment(id Identifier, hiding, binding *Point) *NonceCommitment {
	return &NonceCommitment{
		signerIndex:            uint64(id),
		hidingNonceCommitment:  hiding,
		bindingNonceCommitment: binding,
	}
}

// nonceCommitmentJSON is the wire shape of a NonceCommitment: a
// ciphersuite-aware hex encoding of the (hiding, binding) element pair,
// keyed by identifier at the comms layer rather than embedded here.
type nonceCommitmentJSON struct {
	Hiding  string `json:"hiding"`
	Binding string `json:"binding"`
}

// EncodeNonceCommitment renders a NonceCommitment to JSON using ciphersuite's
// point encoding. The identifier itself travels alongside the commitment at
// the comms layer (it is the map key of the round-1 gather), so it is not
// repeated in this payload.
func EncodeNonceCommitment(ciphersuite Ciphersuite, c *NonceCommitment) ([]byte, error) {
	curve := ciphersuite.Curve()
	return json.Marshal(nonceCommitmentJSON{
		Hiding:  hex.EncodeToString(curve.SerializePoint(c.Hiding())),
		Binding: hex.EncodeToString(curve.SerializePoint(c.Binding())),
	})
}

// DecodeNonceCommitment parses a payload produced by EncodeNonceCommitment,
// attaching id as the commitment's signer identifier.
func DecodeNonceCommitment(ciphersuite Ciphersuite, id Identifier, data []byte) (*NonceCommitment, error) {
	var wire nonceCommitmentJSON
	if err := json.Unmarshal(data, &wire); err != nil {
		return nil, fmt.Errorf("invalid signing commitments JSON: %w", err)
	}

	curve := ciphersuite.Curve()

	hidingBytes, err := hex.DecodeString(wire.Hiding)
	if err != nil {
		return nil, fmt.Errorf("invalid hiding commitment hex: %w", err)
	}
	bindingBytes, err := hex.DecodeString(wire.Binding)
	if err != nil {
		return nil, fmt.Errorf("invalid binding commitment hex: %w", err)
	}

	hiding := curve.DeserializePoint(hidingBytes)
	if hiding == nil {
		return nil, fmt.Errorf("hiding commitment is not a valid point on the curve")
	}
	binding := curve.DeserializePoint(bindingBytes)
	if binding == nil {
		return nil, fmt.Errorf("binding commitment is not a valid point on the curve")
	}

	return NewNonceCommitment(id, hiding, binding), nil
}

// SignatureShare is the wire form of a participant's round-2 contribution:
// its identifier paired with the raw scalar Signer.Round2/RoundRerandomized
// produced. The Signer/Coordinator arithmetic works directly with *big.Int;
// this wrapper only exists at the comms boundary, where a share must be
// associated with the identifier that produced it and be JSON-serializable.
type SignatureShare struct {
	Identifier Identifier
	Share      *big.Int
}

type signatureShareJSON struct {
	Share string `json:"share"`
}

func (s *SignatureShare) MarshalJSON() ([]byte, error) {
	return json.Marshal(signatureShareJSON{Share: hex.EncodeToString(s.Share.Bytes())})
}

func (s *SignatureShare) UnmarshalJSON(data []byte) error {
	var wire signatureShareJSON
	if err := json.Unmarshal(data, &wire); err != nil {
		return fmt.Errorf("invalid signature share JSON: %w", err)
	}
	b, err := hex.DecodeString(wire.Share)
	if err != nil {
		return fmt.Errorf("invalid signature share hex: %w", err)
	}
	s.Share = new(big.Int).SetBytes(b)
	return nil
}

// keyPackageJSON is the on-disk/wire shape of a KeyPackage. VerifyingShare
// and VerifyingKey are ciphersuite-dependent point encodings, so they are
// not handled by Point's own (nonexistent) JSON methods; EncodeKeyPackage/
// DecodeKeyPackage carry the ciphersuite explicitly instead.
type keyPackageJSON struct {
	Identifier     Identifier    `json:"identifier"`
	SigningShare   *SigningShare `json:"signing_share"`
	VerifyingShare string        `json:"verifying_share"`
	VerifyingKey   string        `json:"verifying_key"`
	MinSigners     int           `json:"min_signers"`
}

// EncodeKeyPackage renders a KeyPackage to JSON. The signing share is
// included: this is the form written to the credential file, not a payload
// ever placed on the wire. CryptoErr callers that need to log or display a
// KeyPackage must never route it through this function's output.
func EncodeKeyPackage(ciphersuite Ciphersuite, kp *KeyPackage) ([]byte, error) {
	curve := ciphersuite.Curve()
	return json.Marshal(keyPackageJSON{
		Identifier:     kp.Identifier,
		SigningShare:   kp.SigningShare,
		VerifyingShare: hex.EncodeToString(curve.SerializePoint(kp.VerifyingShare.Point)),
		VerifyingKey:   hex.EncodeToString(curve.SerializePoint(kp.VerifyingKey)),
		MinSigners:     kp.MinSigners,
	})
}

// DecodeKeyPackage parses a payload produced by EncodeKeyPackage.
func DecodeKeyPackage(ciphersuite Ciphersuite, data []byte) (*KeyPackage, error) {
	var wire keyPackageJSON
	if err := json.Unmarshal(data, &wire); err != nil {
		return nil, fmt.Errorf("invalid key package JSON: %w", err)
	}

	curve := ciphersuite.Curve()

	verifyingSharePoint, err := decodePoint(curve, wire.VerifyingShare)
	if err != nil {
		return nil, fmt.Errorf("invalid verifying share: %w", err)
	}
	verifyingKey, err := decodePoint(curve, wire.VerifyingKey)
	if err != nil {
		return nil, fmt.Errorf("invalid verifying key: %w", err)
	}

	return &KeyPackage{
		Identifier:     wire.Identifier,
		SigningShare:   wire.SigningShare,
		VerifyingShare: &VerifyingShare{Point: verifyingSharePoint},
		VerifyingKey:   verifyingKey,
		MinSigners:     wire.MinSigners,
	}, nil
}

// publicKeyPackageJSON is the on-disk/wire shape of a PublicKeyPackage.
type publicKeyPackageJSON struct {
	VerifyingShares map[Identifier]string `json:"verifying_shares"`
	VerifyingKey    string                `json:"verifying_key"`
}

// EncodePublicKeyPackage renders a PublicKeyPackage to JSON.
func EncodePublicKeyPackage(ciphersuite Ciphersuite, pkg *PublicKeyPackage) ([]byte, error) {
	curve := ciphersuite.Curve()
	shares := make(map[Identifier]string, len(pkg.VerifyingShares))
	for id, share := range pkg.VerifyingShares {
		shares[id] = hex.EncodeToString(curve.SerializePoint(share.Point))
	}
	return json.Marshal(publicKeyPackageJSON{
		VerifyingShares: shares,
		VerifyingKey:    hex.EncodeToString(curve.SerializePoint(pkg.VerifyingKey)),
	})
}

// DecodePublicKeyPackage parses a payload produced by
// EncodePublicKeyPackage.
func DecodePublicKeyPackage(ciphersuite Ciphersuite, data []byte) (*PublicKeyPackage, error) {
	var wire publicKeyPackageJSON
	if err := json.Unmarshal(data, &wire); err != nil {
		return nil, fmt.Errorf("invalid public key package JSON: %w", err)
	}

	curve := ciphersuite.Curve()

	verifyingKey, err := decodePoint(curve, wire.VerifyingKey)
	if err != nil {
		return nil, fmt.Errorf("invalid verifying key: %w", err)
	}

	shares := make(map[Identifier]*VerifyingShare, len(wire.VerifyingShares))
	for id, encoded := range wire.VerifyingShares {
		p, err := decodePoint(curve, encoded)
		if err != nil {
			return nil, fmt.Errorf("invalid verifying share for signer [%s]: %w", id, err)
		}
		shares[id] = &VerifyingShare{Point: p}
	}

	return &PublicKeyPackage{VerifyingShares: shares, VerifyingKey: verifyingKey}, nil
}

func decodePoint(curve Curve, encoded string) (*Point, error) {
	b, err := hex.DecodeString(encoded)
	if err != nil {
		return nil, fmt.Errorf("invalid hex: %w", err)
	}
	p := curve.DeserializePoint(b)
	if p == nil {
		return nil, fmt.Errorf("not a valid point on the curve")
	}
	return p, nil
}
