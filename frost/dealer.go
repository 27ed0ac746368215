package frost

import (
	"crypto/rand"
	"fmt"
	"math/big"
)

// MaxSigners bounds the group size a trusted-dealer issuer will produce key
// material for. A participant identifier is carried as a one-byte
// polynomial evaluation point in the original FROST dealer design, so a
// group cannot exceed 255 members.
const MaxSigners = 255

// TrustedDealerKeyGen runs the trusted-dealer key generation procedure: draw
// a fresh group secret key, build a degree-(threshold-1) Shamir polynomial
// around it, and hand each of groupSize participants its evaluation as a
// KeyPackage, alongside the PublicKeyPackage every participant and the
// coordinator need to verify shares and signatures.
//
// This is the single-dealer alternative to the gjkr distributed key
// generation protocol: faster and simpler, at the cost of requiring every
// participant to trust the dealer process not to have retained a copy of
// the group secret key or any individual share.
func TrustedDealerKeyGen(
	ciphersuite Ciphersuite,
	threshold int,
	groupSize int,
) ([]*KeyPackage, *PublicKeyPackage, error) {
	if threshold < 1 {
		return nil, nil, fmt.Errorf("threshold must be at least 1, has [%d]", threshold)
	}
	if groupSize < threshold {
		return nil, nil, fmt.Errorf(
			"group size [%d] must be at least the threshold [%d]",
			groupSize,
			threshold,
		)
	}
	if groupSize > MaxSigners {
		return nil, nil, fmt.Errorf(
			"group size [%d] exceeds the maximum of [%d] signers",
			groupSize,
			MaxSigners,
		)
	}

	curve := ciphersuite.Curve()
	order := curve.Order()

	secretKey, err := rand.Int(rand.Reader, order)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to generate group secret key: %w", err)
	}
	if secretKey.Sign() == 0 {
		return nil, nil, fmt.Errorf("generated secret key is zero, try again")
	}

	verifyingKey := curve.EcBaseMul(secretKey)

	coefficients, err := generatePolynomial(secretKey, threshold, order)
	if err != nil {
		return nil, nil, err
	}

	keyPackages := make([]*KeyPackage, groupSize)
	verifyingShares := make(map[Identifier]*VerifyingShare, groupSize)

	for i := 0; i < groupSize; i++ {
		id := Identifier(i + 1)

		share := evaluatePolynomial(coefficients, int(id), order)
		verifyingShare := &VerifyingShare{Point: curve.EcBaseMul(share)}

		keyPackages[i] = &KeyPackage{
			Identifier:     id,
			SigningShare:   NewSigningShare(share),
			VerifyingShare: verifyingShare,
			VerifyingKey:   verifyingKey,
			MinSigners:     threshold,
		}
		verifyingShares[id] = verifyingShare
	}

	pubKeyPackage := &PublicKeyPackage{
		VerifyingShares: verifyingShares,
		VerifyingKey:    verifyingKey,
	}

	return keyPackages, pubKeyPackage, nil
}

// generatePolynomial draws a degree-(threshold-1) polynomial over the
// scalar field defined by order, fixing the constant term to secret so
// that f(0) == secret.
func generatePolynomial(
	secret *big.Int,
	threshold int,
	order *big.Int,
) ([]*big.Int, error) {
	coefficients := make([]*big.Int, threshold)
	coefficients[0] = secret

	for i := 1; i < threshold; i++ {
		c, err := rand.Int(rand.Reader, order)
		if err != nil {
			return nil, fmt.Errorf("failed to generate polynomial coefficient: %w", err)
		}
		coefficients[i] = c
	}

	return coefficients, nil
}

// evaluatePolynomial computes f(x) mod order for the polynomial defined by
// coefficients, ordered from the constant term upward.
func evaluatePolynomial(coefficients []*big.Int, x int, order *big.Int) *big.Int {
	result := new(big.Int)
	bigX := big.NewInt(int64(x))

	for i, c := range coefficients {
		term := new(big.Int).Exp(bigX, big.NewInt(int64(i)), order)
		term.Mul(term, c)
		result.Add(result, term)
	}

	return result.Mod(result, order)
}
