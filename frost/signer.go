package frost

import (
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
)

// Signer represents a single participant of the [FROST] signing protocol.
// It embeds Participant for the round arithmetic shared with Coordinator
// and adds the secret share and identifier a signer alone needs.
type Signer struct {
	Participant

	signerIndex    uint64   // i in [FROST]
	secretKeyShare *big.Int // sk_i in [FROST]
}

// NewSigner creates a Signer ready to participate in a signing session. id
// is this signer's identifier, publicKey is the group's verifying key, and
// secretKeyShare is the scalar share this signer holds.
func NewSigner(
	ciphersuite Ciphersuite,
	id uint64,
	publicKey *Point,
	secretKeyShare *big.Int,
) *Signer {
	return &Signer{
		Participant: Participant{
			ciphersuite: ciphersuite,
			publicKey:   publicKey,
		},
		signerIndex:    id,
		secretKeyShare: secretKeyShare,
	}
}

// Identifier returns this signer's identifier.
func (s *Signer) Identifier() uint64 {
	return s.signerIndex
}

// Nonce is a message produced in Round One of [FROST].
type Nonce struct {
	hidingNonce  *big.Int
	bindingNonce *big.Int
}

// Zeroize overwrites the nonce's secret scalars in place. Callers must call
// this once a nonce has been consumed by Round2; a nonce must never be
// reused across rounds or messages.
func (n *Nonce) Zeroize() {
	if n == nil {
		return
	}
	if n.hidingNonce != nil {
		n.hidingNonce.SetInt64(0)
	}
	if n.bindingNonce != nil {
		n.bindingNonce.SetInt64(0)
	}
}

// Round1 implements the Round One - Commitment phase from [FROST], section
// 5.1.  Round One - Commitment.
func (s *Signer) Round1() (*Nonce, *NonceCommitment, error) {
	//	From [FROST]:
	//
	//	5.1.  Round One - Commitment
	//
	//	  Round one involves each participant generating nonces and their
	//	  corresponding public commitments.  A nonce is a pair of Scalar
	//	  values, and a commitment is a pair of Element values. Each
	//	  participant's behavior in this round is described by the commit
	//	  function below.  Note that this function invokes nonce_generate
	//	  twice, once for each type of nonce produced.  The output of this
	//	  function is a pair of secret nonces (hiding_nonce, binding_nonce)
	//	  and their corresponding public commitments (hiding_nonce_commitment,
	//	  binding_nonce_commitment).
	//
	//	  Inputs:
	//	    - sk_i, the secret key share, a Scalar.
	//
	//	  Outputs:
	//	    - (nonce, comm), a tuple of nonce and nonce commitment pairs,
	//		  where each value in the nonce pair is a Scalar and each value in
	//		  the nonce commitment pair is an Element.

	// hiding_nonce = nonce_generate(sk_i)
	hn, err := s.generateNonce(s.secretKeyShare.Bytes())
	if err != nil {
		return nil, nil, fmt.Errorf("hiding nonce generation failed: [%v]", err)
	}
	// binding_nonce = nonce_generate(sk_i)
	bn, err := s.generateNonce(s.secretKeyShare.Bytes())
	if err != nil {
		return nil, nil, fmt.Errorf("binding nonce generation failed: [%v]", err)
	}

	// hiding_nonce_commitment = G.ScalarBaseMult(hiding_nonce)
	hnc := s.ciphersuite.Curve().EcBaseMul(hn)
	// binding_nonce_commitment = G.ScalarBaseMult(binding_nonce)
	bnc := s.ciphersuite.Curve().EcBaseMul(bn)

	// nonces = (hiding_nonce, binding_nonce)
	// comms = (hiding_nonce_commitment, binding_nonce_commitment)
	// return (nonces, comms)
	return &Nonce{hn, bn}, &NonceCommitment{s.signerIndex, hnc, bnc}, nil
}

func (s *Signer) generateNonce(secret []byte) (*big.Int, error) {
	//random_bytes = random_bytes(32)
	b := make([]byte, 32)
	_, err := rand.Read(b)
	if err != nil {
		return nil, err
	}

	// secret_enc = G.SerializeScalar(secret)
	// return H3(random_bytes || secret_enc)
	return s.ciphersuite.H3(b, secret), nil
}

// Round2 implements the Round Two - Signature Share Generation phase from
// [FROST], section 5.2 Round Two - Signature Share Generation.
func (s *Signer) Round2(
	message []byte,
	nonce *Nonce,
	commitments []*NonceCommitment,
) (*big.Int, error) {
	// participant_list = participants_from_commitment_list(commitment_list)
	validationErrors, participants := s.validateGroupCommitments(commitments)
	if len(validationErrors) != 0 {
		return nil, errors.Join(validationErrors...)
	}

	// binding_factor_list = compute_binding_factors(group_public_key, commitment_list, msg)
	bindingFactors := s.computeBindingFactors(message, commitments)
	// binding_factor = binding_factor_for_participant(binding_factor_list, identifier)
	bindingFactor := bindingFactors[s.signerIndex]

	// group_commitment = compute_group_commitment(commitment_list, binding_factor_list)
	groupCommitment := s.computeGroupCommitment(commitments, bindingFactors)

	// lambda_i = derive_interpolating_value(participant_list, identifier)
	lambda := s.deriveInterpolatingValue(s.signerIndex, participants)

	// challenge = compute_challenge(group_commitment, group_public_key, msg)
	challenge := s.computeChallenge(message, groupCommitment)

	return s.signatureShare(nonce, bindingFactor, lambda, challenge), nil
}

// RoundRerandomized implements the rerandomized variant of Round Two used
// by the redpallas ciphersuite. randomizer is the scalar the coordinator
// drew (or the contact-supplied session randomizer) for this signature;
// numSigners is the size of the participating signer set for this round.
// The challenge is computed against the rerandomized group key
// publicKey + randomizer*G, and randomizer*challenge/numSigners is added to
// this signer's share so that the shares, once aggregated, sum to exactly
// randomizer*challenge across the whole set.
func (s *Signer) RoundRerandomized(
	message []byte,
	nonce *Nonce,
	commitments []*NonceCommitment,
	randomizer *big.Int,
	numSigners int,
) (*big.Int, error) {
	rc, ok := s.ciphersuite.(RerandomizableCiphersuite)
	if !ok {
		return nil, fmt.Errorf("ciphersuite does not support rerandomization")
	}

	validationErrors, participants := s.validateGroupCommitments(commitments)
	if len(validationErrors) != 0 {
		return nil, errors.Join(validationErrors...)
	}

	curve := s.ciphersuite.Curve()
	order := curve.Order()

	randomizedPublicKey := rc.Rerandomize(s.publicKey, randomizer)

	bindingFactors := s.computeBindingFactors(message, commitments)
	bindingFactor := bindingFactors[s.signerIndex]
	groupCommitment := s.computeGroupCommitment(commitments, bindingFactors)
	lambda := s.deriveInterpolatingValue(s.signerIndex, participants)

	groupCommitmentEncoded := curve.SerializePoint(groupCommitment)
	publicKeyEncoded := curve.SerializePoint(randomizedPublicKey)
	challenge := s.ciphersuite.H2(groupCommitmentEncoded, publicKeyEncoded, message)

	share := s.signatureShare(nonce, bindingFactor, lambda, challenge)

	numSignersInv := new(big.Int).ModInverse(big.NewInt(int64(numSigners)), order)
	randomizerShare := new(big.Int).Mul(randomizer, challenge)
	randomizerShare.Mul(randomizerShare, numSignersInv)
	randomizerShare.Mod(randomizerShare, order)

	share.Add(share, randomizerShare)
	share.Mod(share, order)

	return share, nil
}

func (s *Signer) signatureShare(
	nonce *Nonce,
	bindingFactor *big.Int,
	lambda *big.Int,
	challenge *big.Int,
) *big.Int {
	bnbf := new(big.Int).Mul(nonce.bindingNonce, bindingFactor) // (binding_nonce * binding_factor)
	lski := new(big.Int).Mul(lambda, s.secretKeyShare)          // lambda_i * sk_i
	lskic := new(big.Int).Mul(lski, challenge)                  // (lambda_i * sk_i * challenge)

	// sig_share = hiding_nonce + (binding_nonce * binding_factor) + (lambda_i * sk_i * challenge)
	sigShare := new(big.Int).Add(
		nonce.hidingNonce,
		new(big.Int).Add(bnbf, lskic),
	)
	return sigShare.Mod(sigShare, s.ciphersuite.Curve().Order())
}

// validateGroupCommitments layers the "this signer's own commitment is
// present" check on top of validateGroupCommitmentsBase, implementing
// def participants_from_commitment_list(commitment_list) function from
// [FROST] section 4.3. List Operations for the signer's perspective.
func (s *Signer) validateGroupCommitments(
	commitments []*NonceCommitment,
) ([]error, []uint64) {
	errs, participants := s.validateGroupCommitmentsBase(commitments)

	found := false
	for _, c := range commitments {
		if c != nil && c.signerIndex == s.signerIndex {
			found = true
			break
		}
	}
	if !found {
		errs = append(
			errs,
			fmt.Errorf("current signer's commitment not found on the list"),
		)
	}

	if len(errs) == 0 {
		return nil, participants
	}
	return errs, nil
}
