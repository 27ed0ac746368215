package frost

import (
	"errors"
	"fmt"
	"math/big"
)

// Coordinator represents a coordinator of the [FROST] signing protocol.
type Coordinator struct {
	Participant

	threshold int // minimum number of signers required to produce a signature
	groupSize int // total number of signers in the group
}

// NewCoordinator creates a new [FROST] Coordinator instance. threshold and
// groupSize bound the number of commitments and signature shares Aggregate
// will accept: fewer than threshold is insufficient to reconstruct a
// signature, more than groupSize cannot legitimately occur for this group.
func NewCoordinator(
	ciphersuite Ciphersuite,
	publicKey *Point,
	threshold int,
	groupSize int,
) *Coordinator {
	return &Coordinator{
		Participant: Participant{
			ciphersuite: ciphersuite,
			publicKey:   publicKey,
		},
		threshold: threshold,
		groupSize: groupSize,
	}
}

// Aggregate implements Signature Share Aggregation from [FROST], section
// 5.3. Signature Share Aggregation.
//
// Note that the signature produced by the signature share aggregation in
// [FROST] may not be valid if there are malicious signers present.
func (c *Coordinator) Aggregate(
	message []byte,
	commitments []*NonceCommitment,
	signatureShares []*big.Int,
) (*Signature, error) {
	// From [FROST]:
	//
	// 5.3.  Signature Share Aggregation
	//
	//   After participants perform round two and send their signature shares
	//   to the Coordinator, the Coordinator aggregates each share to produce
	//   a final signature. Before aggregating, the Coordinator MUST validate
	//   each signature share using DeserializeScalar. If validation fails,
	//   the Coordinator MUST abort the protocol as the resulting signature
	//   will be invalid.  If all signature shares are valid, the Coordinator
	//   aggregates them to produce the final signature using the following
	//   procedure.
	//
	//   Inputs:
	//    - commitment_list = [(i, hiding_nonce_commitment_i,
	//      binding_nonce_commitment_i), ...], a list of commitments issued by
	//      each participant, where each element in the list indicates a
	//      NonZeroScalar identifier i and two commitment Element values
	//      (hiding_nonce_commitment_i, binding_nonce_commitment_i). This list
	//      MUST be sorted in ascending order by identifier.
	//    - msg, the message to be signed, a byte string.
	//    - group_public_key, public key corresponding to the group signing
	//      key, an Element.
	//    - sig_shares, a set of signature shares z_i, Scalar values, for each
	//      participant, of length NUM_PARTICIPANTS, where
	//      MIN_PARTICIPANTS <= NUM_PARTICIPANTS <= MAX_PARTICIPANTS.
	//
	//   Outputs:
	//    - (R, z), a Schnorr signature consisting of an Element R and
	//      Scalar z.

	if len(commitments) != len(signatureShares) {
		return nil, fmt.Errorf(
			"the number of commitments and signature shares do not match; "+
				"has [%d] commitments and [%d] signature shares",
			len(commitments),
			len(signatureShares),
		)
	}

	if len(signatureShares) < c.threshold {
		return nil, fmt.Errorf(
			"not enough shares; has [%d] for threshold [%d]",
			len(signatureShares),
			c.threshold,
		)
	}

	if len(signatureShares) > c.groupSize {
		return nil, fmt.Errorf(
			"too many shares; has [%d] for group size [%d]",
			len(signatureShares),
			c.groupSize,
		)
	}

	validationErrors, _ := c.validateGroupCommitmentsBase(commitments)
	if len(validationErrors) != 0 {
		return nil, errors.Join(validationErrors...)
	}

	// binding_factor_list = compute_binding_factors(group_public_key, commitment_list, msg)
	bindingFactors := c.computeBindingFactors(message, commitments)

	// group_commitment = compute_group_commitment(commitment_list, binding_factor_list)
	groupCommitment := c.computeGroupCommitment(commitments, bindingFactors)

	curve := c.ciphersuite.Curve()
	curveOrder := curve.Order()

	// z = Scalar(0)
	z := big.NewInt(0)
	// for z_i in sig_shares:
	//     z = z + z_i
	for _, zi := range signatureShares {
		z.Add(z, zi)
		z.Mod(z, curveOrder)
	}

	// return (group_commitment, z)
	return &Signature{groupCommitment, z}, nil
}

// AggregateRerandomized aggregates signature shares produced by
// Signer.RoundRerandomized. It is otherwise identical to Aggregate: the
// resulting Signature verifies against the rerandomized group key
// publicKey + randomizer*G, not the original group key.
func (c *Coordinator) AggregateRerandomized(
	message []byte,
	commitments []*NonceCommitment,
	signatureShares []*big.Int,
	randomizer *big.Int,
) (*Signature, error) {
	rc, ok := c.ciphersuite.(RerandomizableCiphersuite)
	if !ok {
		return nil, fmt.Errorf("ciphersuite does not support rerandomization")
	}
	_ = rc.Rerandomize(c.publicKey, randomizer) // result unused; the shares already carry the randomizer term

	return c.Aggregate(message, commitments, signatureShares)
}
