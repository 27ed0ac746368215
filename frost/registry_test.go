package frost

import "testing"

func TestNewCiphersuite_KnownNames(t *testing.T) {
	known := []string{
		CiphersuiteEd25519,
		CiphersuiteSecp256k1,
		CiphersuiteSecp256k1Tr,
		CiphersuiteP256,
		CiphersuiteRedpallas,
	}

	for _, name := range known {
		t.Run(name, func(t *testing.T) {
			cs, err := NewCiphersuite(name)
			if err != nil {
				t.Fatalf("unexpected error constructing [%s]: %v", name, err)
			}
			if cs == nil {
				t.Fatalf("expected non-nil ciphersuite for [%s]", name)
			}
			if cs.Curve() == nil {
				t.Fatalf("expected non-nil curve for [%s]", name)
			}
		})
	}
}

func TestNewCiphersuite_UnavailableGroups(t *testing.T) {
	unavailable := []string{CiphersuiteEd448, CiphersuiteRistretto255}

	for _, name := range unavailable {
		t.Run(name, func(t *testing.T) {
			_, err := NewCiphersuite(name)
			if err == nil {
				t.Fatalf("expected an error constructing [%s], got none", name)
			}
		})
	}
}

func TestNewCiphersuite_UnknownName(t *testing.T) {
	_, err := NewCiphersuite("not-a-real-ciphersuite")
	if err == nil {
		t.Fatal("expected an error for an unknown ciphersuite name")
	}
}
