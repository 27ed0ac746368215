package dkg

import (
	"context"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/btcsuite/btcd/btcec"

	"threshold.network/frost-client/comms"
	"threshold.network/frost-client/frost"
	"threshold.network/frost-client/frosterr"
	"threshold.network/frost-client/gjkr"
	"threshold.network/frost-client/transport"
)

// round tags a DKG wire payload with which of the protocol's two rounds
// produced it, the same ordering guard comms.Relay applies to signing
// sessions (spec §4.1): a round-2 share must never be accepted before
// round-1 has completed for the same session.
type round int

const (
	round1 round = 1
	round2 round = 2
)

type wireMessage struct {
	Round   round           `json:"round"`
	Payload json.RawMessage `json:"payload"`
}

// defaultPollInterval mirrors comms.DefaultPollInterval: how often Relay
// polls the registry for a queued message while waiting for one to arrive.
const defaultPollInterval = 500 * time.Millisecond

// Relay is the relay-mediated PeerComms backend: every round message is
// sealed as an authenticated, end-to-end-encrypted transport.Envelope
// addressed to the recipient's comm pubkey, exactly as comms.Relay does for
// the signing roles, reusing the same RegistryClient and session ID.
type Relay struct {
	ciphersuite frost.Ciphersuite
	registry    *comms.RegistryClient
	sessionID   string
	ownKey      *btcec.PrivateKey

	pollInterval time.Duration

	identifierCommPubKey map[uint16]*btcec.PublicKey
	commPubKeyIdentifier map[string]uint16
}

// NewRelay creates a DKG Relay backend. participants maps every member's
// FROST identifier to its comm pubkey, including this party's own entry.
func NewRelay(
	ciphersuite frost.Ciphersuite,
	registry *comms.RegistryClient,
	sessionID string,
	ownKey *btcec.PrivateKey,
	participants []Participant,
) (*Relay, error) {
	identifierCommPubKey := make(map[uint16]*btcec.PublicKey, len(participants))
	commPubKeyIdentifier := make(map[string]uint16, len(participants))
	for _, p := range participants {
		pub, err := transport.ParsePublicKeyHex(p.CommPubKey)
		if err != nil {
			return nil, frosterr.Config(p.CommPubKey, err)
		}
		identifierCommPubKey[p.Identifier] = pub
		commPubKeyIdentifier[transport.PublicKeyHex(pub)] = p.Identifier
	}

	return &Relay{
		ciphersuite:          ciphersuite,
		registry:             registry,
		sessionID:            sessionID,
		ownKey:               ownKey,
		pollInterval:         defaultPollInterval,
		identifierCommPubKey: identifierCommPubKey,
		commPubKeyIdentifier: commPubKeyIdentifier,
	}, nil
}

func (r *Relay) send(ctx context.Context, recipient *btcec.PublicKey, rnd round, payload []byte) error {
	wire, err := json.Marshal(wireMessage{Round: rnd, Payload: payload})
	if err != nil {
		return frosterr.Protocol("encoding dkg message", err)
	}

	env, err := transport.Seal(r.ownKey, recipient, r.sessionID, wire)
	if err != nil {
		return frosterr.Comms("sealing dkg message", err)
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

func (r *Relay) receive(ctx context.Context, expectRound round) ([]byte, uint16, error) {
	for {
		senderHex, ciphertextHex, sigHex, err := r.registry.ReceiveMessage(
			ctx, r.sessionID, transport.PublicKeyHex(r.ownKey.PubKey()),
		)
		if err != nil {
			if errors.Is(err, frosterr.SessionLost) {
				return nil, 0, err
			}
			select {
			case <-time.After(r.pollInterval):
				continue
			case <-ctx.Done():
				return nil, 0, frosterr.Comms(r.sessionID, ctx.Err())
			}
		}

		ciphertext, decErr := hex.DecodeString(ciphertextHex)
		sig, sigErr := hex.DecodeString(sigHex)
		senderPub, parseErr := transport.ParsePublicKeyHex(senderHex)
		if decErr != nil || sigErr != nil || parseErr != nil {
			return nil, 0, frosterr.Comms(r.sessionID, fmt.Errorf("malformed relay message"))
		}

		sender, ok := r.commPubKeyIdentifier[transport.PublicKeyHex(senderPub)]
		if !ok {
			continue
		}

		env := &transport.Envelope{
			SessionID:       r.sessionID,
			SenderPubKey:    senderPub.SerializeCompressed(),
			RecipientPubKey: r.ownKey.PubKey().SerializeCompressed(),
			Ciphertext:      ciphertext,
			SenderSig:       sig,
		}

		plaintext, _, err := transport.Open(r.ownKey, env)
		if err != nil {
			return nil, 0, frosterr.Comms(r.sessionID, fmt.Errorf("opening dkg message: %w", err))
		}

		var wire wireMessage
		if err := json.Unmarshal(plaintext, &wire); err != nil {
			return nil, 0, frosterr.Protocol("decoding dkg message envelope", err)
		}
		if wire.Round != expectRound {
			return nil, 0, frosterr.Protocolf(
				"received dkg round [%d] message from member [%d] while expecting round [%d]",
				wire.Round, sender, expectRound,
			)
		}

		return wire.Payload, sender, nil
	}
}

// BroadcastRound1 implements PeerComms.
func (r *Relay) BroadcastRound1(msg *gjkr.Round1Message) ([]*gjkr.Round1Message, error) {
	ctx := context.Background()

	encoded, err := EncodeRound1Message(r.ciphersuite, msg)
	if err != nil {
		return nil, frosterr.Protocol("encoding round 1 message", err)
	}

	pending := make(map[uint16]bool, len(r.identifierCommPubKey)-1)
	for id, pub := range r.identifierCommPubKey {
		if id == msg.SenderIndex {
			continue
		}
		if err := r.send(ctx, pub, round1, encoded); err != nil {
			return nil, err
		}
		pending[id] = true
	}

	received := make([]*gjkr.Round1Message, 0, len(pending))
	for len(pending) > 0 {
		payload, sender, err := r.receive(ctx, round1)
		if err != nil {
			return nil, err
		}
		if !pending[sender] {
			continue
		}
		peerMsg, err := DecodeRound1Message(r.ciphersuite, payload)
		if err != nil {
			return nil, frosterr.Crypto(fmt.Sprintf("round 1 message from member %d", sender), err)
		}
		received = append(received, peerMsg)
		delete(pending, sender)
	}

	return received, nil
}

// ExchangeRound2 implements PeerComms.
func (r *Relay) ExchangeRound2(outgoing map[uint16]*gjkr.Round2Message) (map[uint16]*gjkr.Round2Message, error) {
	ctx := context.Background()

	pending := make(map[uint16]bool, len(outgoing))
	for peer, msg := range outgoing {
		pub, ok := r.identifierCommPubKey[peer]
		if !ok {
			return nil, frosterr.Fatal(fmt.Sprintf("member %d", peer), fmt.Errorf("no known comm pubkey"))
		}
		encoded, err := EncodeRound2Message(msg)
		if err != nil {
			return nil, frosterr.Protocol("encoding round 2 message", err)
		}
		if err := r.send(ctx, pub, round2, encoded); err != nil {
			return nil, err
		}
		pending[peer] = true
	}

	received := make(map[uint16]*gjkr.Round2Message, len(pending))
	for len(pending) > 0 {
		payload, sender, err := r.receive(ctx, round2)
		if err != nil {
			return nil, err
		}
		if !pending[sender] {
			continue
		}
		peerMsg, err := DecodeRound2Message(payload)
		if err != nil {
			return nil, frosterr.Crypto(fmt.Sprintf("round 2 message from member %d", sender), err)
		}
		received[sender] = peerMsg
		delete(pending, sender)
	}

	return received, nil
}
