package frost

import "fmt"

// Ciphersuite names accepted by NewCiphersuite. These are the stable,
// user-facing identifiers used on the command line and in credential
// files; they are independent of the Go ciphersuite type names.
const (
	CiphersuiteEd25519      = "ed25519"
	CiphersuiteSecp256k1    = "secp256k1"
	CiphersuiteSecp256k1Tr  = "secp256k1-tr"
	CiphersuiteP256         = "p256"
	CiphersuiteRedpallas    = "redpallas"
	CiphersuiteEd448        = "ed448"
	CiphersuiteRistretto255 = "ristretto255"
)

// NewCiphersuite constructs the Ciphersuite registered under name. ed448
// and ristretto255 are recognized names that always return an error: no
// complete group implementation for either exists anywhere in this
// package's dependency set, and this package will not hand-roll one.
func NewCiphersuite(name string) (Ciphersuite, error) {
	switch name {
	case CiphersuiteEd25519:
		return NewEd25519Ciphersuite(), nil
	case CiphersuiteSecp256k1:
		return NewSecp256k1Ciphersuite(), nil
	case CiphersuiteSecp256k1Tr:
		return NewBip340Ciphersuite(), nil
	case CiphersuiteP256:
		return NewP256Ciphersuite(), nil
	case CiphersuiteRedpallas:
		return NewRedpallasCiphersuite(), nil
	case CiphersuiteEd448:
		return nil, fmt.Errorf(
			"ciphersuite [%s] is not implemented: no Ed448 group implementation "+
				"is available",
			name,
		)
	case CiphersuiteRistretto255:
		return nil, fmt.Errorf(
			"ciphersuite [%s] is not implemented: no Ristretto255 group "+
				"implementation is available",
			name,
		)
	default:
		return nil, fmt.Errorf("unknown ciphersuite [%s]", name)
	}
}
