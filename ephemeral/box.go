package ephemeral

import (
	"crypto/rand"
	"fmt"
	"io"

	"golang.org/x/crypto/chacha20poly1305"
)

// box is a symmetric AEAD cipher keyed by a 32-byte secret, typically the
// output of an ECDH exchange. Each call to encrypt draws a fresh random
// nonce and prepends it to the ciphertext, so repeated encryptions of the
// same plaintext under the same box never produce the same output.
type box struct {
	key [32]byte
}

// newBox creates a box keyed by key.
func newBox(key [32]byte) *box {
	return &box{key: key}
}

// encrypt seals plaintext under the box's key, returning nonce || ciphertext.
func (b *box) encrypt(plaintext []byte) ([]byte, error) {
	aead, err := chacha20poly1305.New(b.key[:])
	if err != nil {
		return nil, fmt.Errorf("symmetric key encryption failed")
	}

	nonce := make([]byte, chacha20poly1305.NonceSize)
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, fmt.Errorf("symmetric key encryption failed")
	}

	return aead.Seal(nonce, nonce, plaintext, nil), nil
}

// decrypt opens a ciphertext produced by encrypt.
func (b *box) decrypt(ciphertext []byte) ([]byte, error) {
	aead, err := chacha20poly1305.New(b.key[:])
	if err != nil {
		return nil, fmt.Errorf("symmetric key decryption failed")
	}

	if len(ciphertext) < chacha20poly1305.NonceSize {
		return nil, fmt.Errorf("symmetric key decryption failed")
	}

	nonce, sealed := ciphertext[:chacha20poly1305.NonceSize], ciphertext[chacha20poly1305.NonceSize:]

	plaintext, err := aead.Open(nil, nonce, sealed, nil)
	if err != nil {
		return nil, fmt.Errorf("symmetric key decryption failed")
	}

	return plaintext, nil
}
