package ephemeral

import "github.com/btcsuite/btcd/btcec"

// PrivateKey is an ephemeral elliptic curve private key used to derive a
// SymmetricEcdhKey via Diffie-Hellman with a peer's PublicKey. It is a
// distinct type from btcec.PrivateKey, convertible to and from it, so that
// this package's API does not leak the underlying curve library.
type PrivateKey btcec.PrivateKey

// PublicKey is the public counterpart of PrivateKey, shared with a peer so
// they can derive the same SymmetricEcdhKey on their end.
type PublicKey btcec.PublicKey

// KeyPair bundles a PrivateKey with its PublicKey.
type KeyPair struct {
	PrivateKey *PrivateKey
	PublicKey  *PublicKey
}

// GenerateKeyPair creates a new ephemeral key pair over secp256k1, suitable
// for a single Diffie-Hellman exchange. Keys produced by this function are
// meant to be used once and discarded; they are not a long-lived identity.
func GenerateKeyPair() (*KeyPair, error) {
	key, err := btcec.NewPrivateKey(btcec.S256())
	if err != nil {
		return nil, err
	}

	return &KeyPair{
		PrivateKey: (*PrivateKey)(key),
		PublicKey:  (*PublicKey)(key.PubKey()),
	}, nil
}

// SerializeCompressed renders pk in compressed SEC1 form, the shape sent
// over the wire alongside a Round1Message broadcast.
func (pk *PublicKey) SerializeCompressed() []byte {
	return (*btcec.PublicKey)(pk).SerializeCompressed()
}

// UnmarshalPublicKey parses a compressed SEC1-encoded secp256k1 public key
// previously produced by SerializeCompressed.
func UnmarshalPublicKey(data []byte) (*PublicKey, error) {
	pub, err := btcec.ParsePubKey(data, btcec.S256())
	if err != nil {
		return nil, err
	}
	return (*PublicKey)(pub), nil
}
