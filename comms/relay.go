package comms

import (
	"context"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"math/big"
	"time"

	"github.com/btcsuite/btcd/btcec"

	"threshold.network/frost-client/frost"
	"threshold.network/frost-client/frosterr"
	"threshold.network/frost-client/transport"
)

// DefaultSessionTimeout bounds how long a Relay backend will wait for a
// round message before giving up and surfacing a CommsError (spec §5,
// "Each session has a deadline").
const DefaultSessionTimeout = 5 * time.Minute

// DefaultPollInterval is how often Relay polls the registry for a queued
// message while waiting for one to arrive.
const DefaultPollInterval = 500 * time.Millisecond

// round tags an envelope's payload with which protocol round produced it,
// enforcing spec §4.1's ordering guarantee: a round-2 message for a
// session must never be accepted before round-1 completed for it. A stray
// message with the wrong round tag is a protocol error, not silently
// dropped, since it indicates either a misbehaving peer or a bug in this
// client.
type round int

const (
	round1 round = 1
	round2 round = 2
)

type wireMessage struct {
	Round   round           `json:"round"`
	Payload json.RawMessage `json:"payload"`
}

// CoordinatorPubKeyGetter implements the trust-on-first-use hook (spec
// §4.1): the first time a participant's Relay backend sees a message in a
// session, it calls this function with the sender's comm pubkey so the
// operator can confirm it really is the expected coordinator. It is a
// plain function value, not a shared-ownership callback object, per spec
// §9's design note.
type CoordinatorPubKeyGetter func(sessionID string, pubKey *btcec.PublicKey) (bool, error)

// Relay is the relay-mediated comms backend (spec §4.1 "HTTP comms"): it
// seals every outgoing message in an authenticated, end-to-end-encrypted
// transport.Envelope addressed to the recipient's comm pubkey, and decodes
// /authenticates every incoming one, over a RegistryClient driving an
// untrusted relay server.
type Relay struct {
	ciphersuite frost.Ciphersuite
	registry    *RegistryClient
	sessionID   string
	ownKey      *btcec.PrivateKey

	timeout      time.Duration
	pollInterval time.Duration

	// coordinator-side: addressing participants by FROST identifier.
	identifierCommPubKey map[frost.Identifier]*btcec.PublicKey
	commPubKeyIdentifier map[string]frost.Identifier

	// participant-side: the coordinator's comm pubkey, pinned on first
	// use via pubKeyGetter if not already known.
	coordinatorPubKey *btcec.PublicKey
	pubKeyGetter      CoordinatorPubKeyGetter
}

// NewRelayCoordinatorComms creates a Relay backend for the coordinator
// role. identifierCommPubKey maps every expected signer's FROST identifier
// to the comm pubkey messages will be sealed to/validated against.
func NewRelayCoordinatorComms(
	ciphersuite frost.Ciphersuite,
	registry *RegistryClient,
	sessionID string,
	ownKey *btcec.PrivateKey,
	identifierCommPubKey map[frost.Identifier]*btcec.PublicKey,
) *Relay {
	reverse := make(map[string]frost.Identifier, len(identifierCommPubKey))
	for id, pub := range identifierCommPubKey {
		reverse[transport.PublicKeyHex(pub)] = id
	}
	return &Relay{
		ciphersuite:          ciphersuite,
		registry:             registry,
		sessionID:            sessionID,
		ownKey:               ownKey,
		timeout:              DefaultSessionTimeout,
		pollInterval:         DefaultPollInterval,
		identifierCommPubKey: identifierCommPubKey,
		commPubKeyIdentifier: reverse,
	}
}

// NewRelayParticipantComms creates a Relay backend for the participant
// role. If knownCoordinatorPubKey is nil, the first received message's
// sender is offered to pubKeyGetter for trust-on-first-use confirmation
// and then pinned for the rest of the session.
func NewRelayParticipantComms(
	ciphersuite frost.Ciphersuite,
	registry *RegistryClient,
	sessionID string,
	ownKey *btcec.PrivateKey,
	knownCoordinatorPubKey *btcec.PublicKey,
	pubKeyGetter CoordinatorPubKeyGetter,
) *Relay {
	return &Relay{
		ciphersuite:       ciphersuite,
		registry:          registry,
		sessionID:         sessionID,
		ownKey:            ownKey,
		timeout:           DefaultSessionTimeout,
		pollInterval:      DefaultPollInterval,
		coordinatorPubKey: knownCoordinatorPubKey,
		pubKeyGetter:      pubKeyGetter,
	}
}

func (r *Relay) send(ctx context.Context, recipient *btcec.PublicKey, rnd round, payload []byte) error {
	wire, err := json.Marshal(wireMessage{Round: rnd, Payload: payload})
	if err != nil {
		return frosterr.Protocol("encoding message", err)
	}

	env, err := transport.Seal(r.ownKey, recipient, r.sessionID, wire)
	if err != nil {
		return frosterr.Comms("sealing message", err)
	}

	return r.registry.SendMessage(
		ctx,
		r.sessionID,
		transport.PublicKeyHex(r.ownKey.PubKey()),
		transport.PublicKeyHex(recipient),
		hex.EncodeToString(env.Ciphertext),
		hex.EncodeToString(env.SenderSig),
	)
}

// receive blocks until a message from an expected sender arrives, decrypts
// and authenticates it, and checks it carries the expected round. expectSender
// may be nil on the participant side before the coordinator's pubkey is pinned.
func (r *Relay) receive(ctx context.Context, expectSender *btcec.PublicKey, expectRound round) ([]byte, *btcec.PublicKey, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	for {
		senderHex, ciphertextHex, sigHex, err := r.registry.ReceiveMessage(
			ctx, r.sessionID, transport.PublicKeyHex(r.ownKey.PubKey()),
		)
		if err != nil {
			if isSessionLost(err) {
				return nil, nil, err
			}
			if ctx.Err() != nil {
				return nil, nil, frosterr.Comms(r.sessionID, fmt.Errorf("session deadline exceeded waiting for message"))
			}
			select {
			case <-time.After(r.pollInterval):
				continue
			case <-ctx.Done():
				return nil, nil, frosterr.Comms(r.sessionID, ctx.Err())
			}
		}

		ciphertext, decErr := hex.DecodeString(ciphertextHex)
		sig, sigErr := hex.DecodeString(sigHex)
		senderPub, parseErr := transport.ParsePublicKeyHex(senderHex)
		if decErr != nil || sigErr != nil || parseErr != nil {
			return nil, nil, frosterr.Comms(r.sessionID, fmt.Errorf("malformed relay message"))
		}

		if expectSender != nil && transport.PublicKeyHex(senderPub) != transport.PublicKeyHex(expectSender) {
			continue
		}

		env := &transport.Envelope{
			SessionID:       r.sessionID,
			SenderPubKey:    senderPub.SerializeCompressed(),
			RecipientPubKey: r.ownKey.PubKey().SerializeCompressed(),
			Ciphertext:      ciphertext,
			SenderSig:       sig,
		}

		plaintext, authenticatedSender, err := transport.Open(r.ownKey, env)
		if err != nil {
			return nil, nil, frosterr.Comms(r.sessionID, fmt.Errorf("opening message: %w", err))
		}

		var wire wireMessage
		if err := json.Unmarshal(plaintext, &wire); err != nil {
			return nil, nil, frosterr.Protocol("decoding message envelope", err)
		}
		if wire.Round != expectRound {
			return nil, nil, frosterr.Protocolf(
				"received round [%d] message while expecting round [%d]", wire.Round, expectRound,
			)
		}

		return wire.Payload, authenticatedSender, nil
	}
}

// GetSigningCommitments implements CoordinatorComms.
func (r *Relay) GetSigningCommitments(
	_ *frost.PublicKeyPackage,
	signingParticipants []frost.Identifier,
	_ int,
) (map[frost.Identifier]*frost.NonceCommitment, error) {
	ctx := context.Background()
	result := make(map[frost.Identifier]*frost.NonceCommitment, len(signingParticipants))

	pending := make(map[frost.Identifier]bool, len(signingParticipants))
	for _, id := range signingParticipants {
		pending[id] = true
	}

	for len(pending) > 0 {
		payload, sender, err := r.receive(ctx, nil, round1)
		if err != nil {
			return nil, err
		}
		id, ok := r.commPubKeyIdentifier[transport.PublicKeyHex(sender)]
		if !ok || !pending[id] {
			continue
		}

		commitment, err := frost.DecodeNonceCommitment(r.ciphersuite, id, payload)
		if err != nil {
			return nil, frosterr.Crypto(id.String(), err)
		}
		result[id] = commitment
		delete(pending, id)
	}

	return result, nil
}

// GetSignatureShares implements CoordinatorComms.
func (r *Relay) GetSignatureShares(
	signingPackage *frost.SigningPackage,
	randomizer *big.Int,
) (map[frost.Identifier]*frost.SignatureShare, error) {
	ctx := context.Background()

	encodedPackage, err := frost.EncodeSigningPackage(r.ciphersuite, signingPackage)
	if err != nil {
		return nil, frosterr.Protocol("encoding signing package", err)
	}
	envelope := signingPackageEnvelope{Package: encodedPackage}
	if randomizer != nil {
		envelope.Randomizer = hex.EncodeToString(randomizer.Bytes())
	}
	payload, err := json.Marshal(envelope)
	if err != nil {
		return nil, frosterr.Protocol("encoding signing package envelope", err)
	}

	for id := range signingPackage.Commitments {
		pub, ok := r.identifierCommPubKey[id]
		if !ok {
			return nil, frosterr.Fatal(id.String(), fmt.Errorf("no known comm pubkey for signer"))
		}
		if err := r.send(ctx, pub, round2, payload); err != nil {
			return nil, err
		}
	}

	pending := make(map[frost.Identifier]bool, len(signingPackage.Commitments))
	for id := range signingPackage.Commitments {
		pending[id] = true
	}

	result := make(map[frost.Identifier]*frost.SignatureShare, len(pending))
	for len(pending) > 0 {
		payload, sender, err := r.receive(ctx, nil, round2)
		if err != nil {
			return nil, err
		}
		id, ok := r.commPubKeyIdentifier[transport.PublicKeyHex(sender)]
		if !ok || !pending[id] {
			continue
		}

		var share frost.SignatureShare
		if err := share.UnmarshalJSON(payload); err != nil {
			return nil, frosterr.Crypto(id.String(), err)
		}
		share.Identifier = id
		result[id] = &share
		delete(pending, id)
	}

	return result, nil
}

// GetSigningPackage implements ParticipantComms.
func (r *Relay) GetSigningPackage() (*frost.SigningPackage, *big.Int, error) {
	ctx := context.Background()

	payload, sender, err := r.receive(ctx, r.coordinatorPubKey, round2)
	if err != nil {
		return nil, nil, err
	}

	if r.coordinatorPubKey == nil {
		confirmed, err := r.pubKeyGetter(r.sessionID, sender)
		if err != nil {
			return nil, nil, frosterr.Comms("coordinator pubkey confirmation", err)
		}
		if !confirmed {
			return nil, nil, frosterr.Protocolf("coordinator pubkey rejected by operator")
		}
		r.coordinatorPubKey = sender
	}

	var envelope signingPackageEnvelope
	if err := json.Unmarshal(payload, &envelope); err != nil {
		return nil, nil, frosterr.Protocol("decoding signing package envelope", err)
	}

	pkg, err := frost.DecodeSigningPackage(r.ciphersuite, envelope.Package)
	if err != nil {
		return nil, nil, frosterr.Crypto("signing package", err)
	}

	var randomizer *big.Int
	if envelope.Randomizer != "" {
		b, err := hex.DecodeString(envelope.Randomizer)
		if err != nil {
			return nil, nil, frosterr.Input("randomizer", err)
		}
		randomizer = new(big.Int).SetBytes(b)
	}

	return pkg, randomizer, nil
}

// SendSignatureShare implements ParticipantComms.
func (r *Relay) SendSignatureShare(share *frost.SignatureShare) error {
	if r.coordinatorPubKey == nil {
		return frosterr.Fatal(r.sessionID, fmt.Errorf("coordinator pubkey not yet established"))
	}

	payload, err := share.MarshalJSON()
	if err != nil {
		return frosterr.Protocol("encoding signature share", err)
	}

	return r.send(context.Background(), r.coordinatorPubKey, round2, payload)
}

// SendSigningCommitments seals and sends this participant's round-1
// commitment to the coordinator. It is not part of ParticipantComms
// because sending commitments is driven directly by the participant state
// machine's Round1 transition rather than through a shared interface
// method, mirroring the CLI backend printing its own commitment to stdout.
func (r *Relay) SendSigningCommitments(coordinatorPubKey *btcec.PublicKey, commitment *frost.NonceCommitment) error {
	r.coordinatorPubKey = coordinatorPubKey
	payload, err := frost.EncodeNonceCommitment(r.ciphersuite, commitment)
	if err != nil {
		return frosterr.Protocol("encoding signing commitments", err)
	}
	return r.send(context.Background(), coordinatorPubKey, round1, payload)
}
