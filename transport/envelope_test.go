package transport

import "testing"

func TestSealOpenRoundtrip(t *testing.T) {
	sender, err := GenerateCommKeyPair()
	if err != nil {
		t.Fatal(err)
	}
	recipient, err := GenerateCommKeyPair()
	if err != nil {
		t.Fatal(err)
	}

	payload := []byte("round-1 commitment payload")

	env, err := Seal(sender.Private, recipient.Public, "session-1", payload)
	if err != nil {
		t.Fatal(err)
	}

	plaintext, senderPub, err := Open(recipient.Private, env)
	if err != nil {
		t.Fatal(err)
	}

	if string(plaintext) != string(payload) {
		t.Fatalf("expected [%s], got [%s]", payload, plaintext)
	}
	if PublicKeyHex(senderPub) != sender.PublicHex() {
		t.Fatal("recovered sender public key does not match")
	}
}

func TestOpen_WrongRecipientFails(t *testing.T) {
	sender, _ := GenerateCommKeyPair()
	recipient, _ := GenerateCommKeyPair()
	eavesdropper, _ := GenerateCommKeyPair()

	env, err := Seal(sender.Private, recipient.Public, "session-1", []byte("secret"))
	if err != nil {
		t.Fatal(err)
	}

	if _, _, err := Open(eavesdropper.Private, env); err == nil {
		t.Fatal("expected decryption to fail for the wrong recipient")
	}
}

func TestOpen_TamperedCiphertextFails(t *testing.T) {
	sender, _ := GenerateCommKeyPair()
	recipient, _ := GenerateCommKeyPair()

	env, err := Seal(sender.Private, recipient.Public, "session-1", []byte("secret"))
	if err != nil {
		t.Fatal(err)
	}

	env.Ciphertext[len(env.Ciphertext)-1] ^= 0xff

	if _, _, err := Open(recipient.Private, env); err == nil {
		t.Fatal("expected tampered ciphertext to fail verification")
	}
}

func TestPrivateKeyHexRoundtrip(t *testing.T) {
	kp, err := GenerateCommKeyPair()
	if err != nil {
		t.Fatal(err)
	}

	priv, err := ParsePrivateKeyHex(kp.PrivateHex())
	if err != nil {
		t.Fatal(err)
	}
	if PublicKeyHex(priv.PubKey()) != kp.PublicHex() {
		t.Fatal("parsed private key does not reproduce the original public key")
	}

	pub, err := ParsePublicKeyHex(kp.PublicHex())
	if err != nil {
		t.Fatal(err)
	}
	if PublicKeyHex(pub) != kp.PublicHex() {
		t.Fatal("parsed public key roundtrip mismatch")
	}
}
