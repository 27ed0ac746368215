package dkg

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
	"math/big"

	"threshold.network/frost-client/ephemeral"
	"threshold.network/frost-client/frost"
	"threshold.network/frost-client/gjkr"
)

// round1MessageJSON is the wire shape of a gjkr.Round1Message: a
// ciphersuite-aware hex encoding of its group elements, and hex-encoded
// compressed secp256k1 points for the ephemeral public keys (these are
// always secp256k1 regardless of the FROST ciphersuite in use, since they
// only protect round-2 share secrecy between two parties).
type round1MessageJSON struct {
	SenderIndex         uint16            `json:"sender_index"`
	EphemeralPublicKeys map[uint16]string `json:"ephemeral_public_keys"`
	Commitments         []string          `json:"commitments"`
	PoKR                string            `json:"pok_r"`
	PoKS                string            `json:"pok_s"`
}

// EncodeRound1Message renders msg to JSON using ciphersuite's point
// encoding for the Feldman commitments and the Schnorr proof of knowledge.
func EncodeRound1Message(ciphersuite frost.Ciphersuite, msg *gjkr.Round1Message) ([]byte, error) {
	curve := ciphersuite.Curve()

	commitments := make([]string, len(msg.Commitments))
	for i, c := range msg.Commitments {
		commitments[i] = hex.EncodeToString(curve.SerializePoint(c))
	}

	ephemeralPubKeys := make(map[uint16]string, len(msg.EphemeralPublicKeys))
	for peer, pub := range msg.EphemeralPublicKeys {
		ephemeralPubKeys[peer] = hex.EncodeToString(pub.SerializeCompressed())
	}

	return json.Marshal(round1MessageJSON{
		SenderIndex:         msg.SenderIndex,
		EphemeralPublicKeys: ephemeralPubKeys,
		Commitments:         commitments,
		PoKR:                hex.EncodeToString(curve.SerializePoint(msg.PoKR)),
		PoKS:                hex.EncodeToString(msg.PoKS.Bytes()),
	})
}

// DecodeRound1Message parses a payload produced by EncodeRound1Message.
func DecodeRound1Message(ciphersuite frost.Ciphersuite, data []byte) (*gjkr.Round1Message, error) {
	var wire round1MessageJSON
	if err := json.Unmarshal(data, &wire); err != nil {
		return nil, fmt.Errorf("invalid round 1 message JSON: %w", err)
	}

	curve := ciphersuite.Curve()

	commitments := make([]*frost.Point, len(wire.Commitments))
	for i, encoded := range wire.Commitments {
		p, err := decodeCurvePoint(curve, encoded)
		if err != nil {
			return nil, fmt.Errorf("invalid commitment [%d]: %w", i, err)
		}
		commitments[i] = p
	}

	ephemeralPubKeys := make(map[uint16]*ephemeral.PublicKey, len(wire.EphemeralPublicKeys))
	for peer, encoded := range wire.EphemeralPublicKeys {
		b, err := hex.DecodeString(encoded)
		if err != nil {
			return nil, fmt.Errorf("invalid ephemeral public key for peer [%d]: %w", peer, err)
		}
		pub, err := ephemeral.UnmarshalPublicKey(b)
		if err != nil {
			return nil, fmt.Errorf("invalid ephemeral public key for peer [%d]: %w", peer, err)
		}
		ephemeralPubKeys[peer] = pub
	}

	pokR, err := decodeCurvePoint(curve, wire.PoKR)
	if err != nil {
		return nil, fmt.Errorf("invalid proof of knowledge commitment: %w", err)
	}
	pokSBytes, err := hex.DecodeString(wire.PoKS)
	if err != nil {
		return nil, fmt.Errorf("invalid proof of knowledge response hex: %w", err)
	}

	return &gjkr.Round1Message{
		SenderIndex:         wire.SenderIndex,
		EphemeralPublicKeys: ephemeralPubKeys,
		Commitments:         commitments,
		PoKR:                pokR,
		PoKS:                new(big.Int).SetBytes(pokSBytes),
	}, nil
}

// round2MessageJSON is the wire shape of a gjkr.Round2Message.
type round2MessageJSON struct {
	SenderIndex uint16 `json:"sender_index"`
	Ciphertext  string `json:"ciphertext"`
}

// EncodeRound2Message renders msg to JSON.
func EncodeRound2Message(msg *gjkr.Round2Message) ([]byte, error) {
	return json.Marshal(round2MessageJSON{
		SenderIndex: msg.SenderIndex,
		Ciphertext:  hex.EncodeToString(msg.Ciphertext),
	})
}

// DecodeRound2Message parses a payload produced by EncodeRound2Message.
func DecodeRound2Message(data []byte) (*gjkr.Round2Message, error) {
	var wire round2MessageJSON
	if err := json.Unmarshal(data, &wire); err != nil {
		return nil, fmt.Errorf("invalid round 2 message JSON: %w", err)
	}
	ciphertext, err := hex.DecodeString(wire.Ciphertext)
	if err != nil {
		return nil, fmt.Errorf("invalid round 2 ciphertext hex: %w", err)
	}
	return &gjkr.Round2Message{SenderIndex: wire.SenderIndex, Ciphertext: ciphertext}, nil
}

func decodeCurvePoint(curve frost.Curve, encoded string) (*frost.Point, error) {
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
