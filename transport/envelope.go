package transport

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/binary"
	"fmt"
	"io"

	"github.com/btcsuite/btcd/btcec"
	"golang.org/x/crypto/chacha20poly1305"
)

// Envelope is the relay wire message described in spec §6: a session-scoped,
// sender-authenticated, end-to-end-encrypted blob. The relay forwards
// Envelopes verbatim; it can read sender/recipient pubkeys and the session
// ID to route the message, but Ciphertext only opens under the recipient's
// comm private key and SenderSig only validates against SenderPubKey.
type Envelope struct {
	SessionID       string
	SenderPubKey    []byte
	RecipientPubKey []byte
	Ciphertext      []byte
	SenderSig       []byte
}

// Seal encrypts payload for recipientPub under a shared secret derived by
// ECDH between sender and recipientPub, and signs the sealed bytes with
// sender so the recipient can check the message really came from the
// claimed sender once decrypted.
func Seal(
	sender *btcec.PrivateKey,
	recipientPub *btcec.PublicKey,
	sessionID string,
	payload []byte,
) (*Envelope, error) {
	sharedKey := ecdhSymmetricKey(sender, recipientPub)

	aead, err := chacha20poly1305.New(sharedKey[:])
	if err != nil {
		return nil, fmt.Errorf("sealing envelope: %w", err)
	}

	nonce := make([]byte, chacha20poly1305.NonceSize)
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, fmt.Errorf("sealing envelope: %w", err)
	}

	senderPubBytes := sender.PubKey().SerializeCompressed()
	recipientPubBytes := recipientPub.SerializeCompressed()

	ad := associatedData(sessionID, senderPubBytes, recipientPubBytes)
	ciphertext := aead.Seal(nonce, nonce, payload, ad)

	sigHash := sha256.Sum256(ciphertext)
	sig, err := sender.Sign(sigHash[:])
	if err != nil {
		return nil, fmt.Errorf("signing envelope: %w", err)
	}

	return &Envelope{
		SessionID:       sessionID,
		SenderPubKey:    senderPubBytes,
		RecipientPubKey: recipientPubBytes,
		Ciphertext:      ciphertext,
		SenderSig:       sig.Serialize(),
	}, nil
}

// Open authenticates and decrypts env for recipient, returning the sealed
// payload and the sender's parsed public key. It fails if the sender
// signature does not validate, if the recipient's comm key cannot open
// the ciphertext, or if the envelope's recipient field does not match
// recipient's own public key.
func Open(recipient *btcec.PrivateKey, env *Envelope) ([]byte, *btcec.PublicKey, error) {
	recipientPub := recipient.PubKey()
	if !pubKeyBytesEqual(env.RecipientPubKey, recipientPub.SerializeCompressed()) {
		return nil, nil, fmt.Errorf("envelope is not addressed to this recipient")
	}

	senderPub, err := btcec.ParsePubKey(env.SenderPubKey, btcec.S256())
	if err != nil {
		return nil, nil, fmt.Errorf("invalid sender public key: %w", err)
	}

	sig, err := btcec.ParseSignature(env.SenderSig, btcec.S256())
	if err != nil {
		return nil, nil, fmt.Errorf("invalid sender signature: %w", err)
	}

	sigHash := sha256.Sum256(env.Ciphertext)
	if !sig.Verify(sigHash[:], senderPub) {
		return nil, nil, fmt.Errorf("sender signature does not verify")
	}

	sharedKey := ecdhSymmetricKey(recipient, senderPub)

	aead, err := chacha20poly1305.New(sharedKey[:])
	if err != nil {
		return nil, nil, fmt.Errorf("opening envelope: %w", err)
	}

	if len(env.Ciphertext) < chacha20poly1305.NonceSize {
		return nil, nil, fmt.Errorf("envelope ciphertext is too short")
	}
	nonce := env.Ciphertext[:chacha20poly1305.NonceSize]
	sealed := env.Ciphertext[chacha20poly1305.NonceSize:]

	ad := associatedData(env.SessionID, env.SenderPubKey, env.RecipientPubKey)
	plaintext, err := aead.Open(nil, nonce, sealed, ad)
	if err != nil {
		return nil, nil, fmt.Errorf("envelope does not decrypt under recipient's comm key")
	}

	return plaintext, senderPub, nil
}

func ecdhSymmetricKey(priv *btcec.PrivateKey, pub *btcec.PublicKey) [32]byte {
	shared := btcec.GenerateSharedSecret(priv, pub)
	return sha256.Sum256(shared)
}

func associatedData(sessionID string, senderPub, recipientPub []byte) []byte {
	b := make([]byte, 0, 2+len(sessionID)+len(senderPub)+len(recipientPub))
	b = binary.BigEndian.AppendUint16(b, uint16(len(sessionID)))
	b = append(b, sessionID...)
	b = append(b, senderPub...)
	b = append(b, recipientPub...)
	return b
}

func pubKeyBytesEqual(a, b []byte) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
