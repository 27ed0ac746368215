// Package transport implements the authenticated, end-to-end-encrypted
// message envelope the relay comms backend seals round messages in (spec
// §4.1, §6 "Relay wire protocol"). It reuses the secp256k1 ECDH the
// ephemeral package already performs for DKG peer secrecy, applied here to
// a participant's long-lived communication key pair instead of a
// session-scoped one.
package transport

import (
	"encoding/hex"
	"fmt"

	"github.com/btcsuite/btcd/btcec"
)

// CommKeyPair is a participant's long-lived communication key, independent
// of any FROST signing key, used to authenticate and encrypt relay traffic.
// Unlike a SigningShare it is not zeroized on every session: it lives for
// as long as the credential file does.
type CommKeyPair struct {
	Private *btcec.PrivateKey
	Public  *btcec.PublicKey
}

// GenerateCommKeyPair draws a fresh communication key pair over secp256k1.
func GenerateCommKeyPair() (*CommKeyPair, error) {
	priv, err := btcec.NewPrivateKey(btcec.S256())
	if err != nil {
		return nil, fmt.Errorf("generating comm key pair: %w", err)
	}
	return &CommKeyPair{Private: priv, Public: priv.PubKey()}, nil
}

// PrivateHex renders the private key as hex, the form written to the
// credential file's comm_privkey field.
func (kp *CommKeyPair) PrivateHex() string {
	return hex.EncodeToString(kp.Private.Serialize())
}

// PublicHex renders the public key as compressed hex, the form written to
// the credential file's comm_pubkey field and used to key a Contact and a
// Group membership.
func (kp *CommKeyPair) PublicHex() string {
	return PublicKeyHex(kp.Public)
}

// PublicKeyHex renders pub as compressed hex.
func PublicKeyHex(pub *btcec.PublicKey) string {
	return hex.EncodeToString(pub.SerializeCompressed())
}

// ParsePrivateKeyHex parses a private key previously rendered by
// PrivateHex.
func ParsePrivateKeyHex(s string) (*btcec.PrivateKey, error) {
	b, err := hex.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("invalid comm private key hex: %w", err)
	}
	priv, _ := btcec.PrivKeyFromBytes(btcec.S256(), b)
	if priv == nil {
		return nil, fmt.Errorf("invalid comm private key bytes")
	}
	return priv, nil
}

// ParsePublicKeyHex parses a public key previously rendered by PublicHex /
// PublicKeyHex.
func ParsePublicKeyHex(s string) (*btcec.PublicKey, error) {
	b, err := hex.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("invalid comm public key hex: %w", err)
	}
	pub, err := btcec.ParsePubKey(b, btcec.S256())
	if err != nil {
		return nil, fmt.Errorf("invalid comm public key bytes: %w", err)
	}
	return pub, nil
}
