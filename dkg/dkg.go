// Package dkg orchestrates the three-round distributed key generation
// protocol (spec §4.5) over the comms abstraction, driving one gjkr.Session
// per local run. Unlike the coordinator/participant signing roles, DKG is
// peer-to-peer: every party exchanges round-1 broadcasts and round-2
// private shares with every other party, so this package defines its own
// PeerComms abstraction rather than reusing comms.CoordinatorComms /
// comms.ParticipantComms.
package dkg

import (
	"fmt"
	"sort"

	"threshold.network/frost-client/frost"
	"threshold.network/frost-client/frosterr"
	"threshold.network/frost-client/gjkr"
)

// PeerComms is the transport a DKG run needs: broadcast this party's round-1
// message to every other party and collect theirs, then exchange round-2
// private shares pairwise. Two backends satisfy it: CLI (manual paste,
// mirroring comms.CLI) and Relay (over the session registry, mirroring
// comms.Relay).
type PeerComms interface {
	// BroadcastRound1 sends msg to every other party and returns every
	// other party's round-1 message, including msg's counterpart from
	// each of them.
	BroadcastRound1(msg *gjkr.Round1Message) ([]*gjkr.Round1Message, error)

	// ExchangeRound2 sends each entry of outgoing to its keyed recipient
	// and returns the round-2 message received from every other party.
	ExchangeRound2(outgoing map[uint16]*gjkr.Round2Message) (map[uint16]*gjkr.Round2Message, error)
}

// Participant names one member of a DKG run: its FROST identifier (spec
// §4.5, "derived deterministically, e.g. by sorted position") and its
// long-lived comm pubkey, the same pairing persisted in config.GroupMember.
type Participant struct {
	Identifier uint16
	CommPubKey string
}

// Identify assigns FROST identifiers to every member by sorted comm-pubkey
// order (spec §4.5), so that every party, running this independently over
// the same input set, derives the same assignment without any further
// coordination.
func Identify(commPubKeys []string) []Participant {
	sorted := append([]string(nil), commPubKeys...)
	sort.Strings(sorted)

	participants := make([]Participant, len(sorted))
	for i, pub := range sorted {
		participants[i] = Participant{Identifier: uint16(i + 1), CommPubKey: pub}
	}
	return participants
}

// Run drives one local party's full three-round DKG session: it assumes
// comms has already been wired for the participant at myIndex within group,
// and that every party in group will call Run concurrently (or in lockstep,
// for the CLI backend) against its own comms.
func Run(
	ciphersuite frost.Ciphersuite,
	sessionID string,
	myIndex uint16,
	group []Participant,
	threshold int,
	comms PeerComms,
	logger gjkr.Logger,
) (*frost.KeyPackage, *frost.PublicKeyPackage, error) {
	peers := make([]uint16, len(group))
	for i, p := range group {
		peers[i] = p.Identifier
	}

	session := gjkr.NewSession(ciphersuite, sessionID, myIndex, uint16(len(group)), threshold, logger)

	others := make([]uint16, 0, len(peers)-1)
	for _, idx := range peers {
		if idx != myIndex {
			others = append(others, idx)
		}
	}

	round1Msg, err := session.Round1(others)
	if err != nil {
		return nil, nil, frosterr.Crypto("dkg round 1", err)
	}

	allRound1, err := comms.BroadcastRound1(round1Msg)
	if err != nil {
		return nil, nil, frosterr.Comms("dkg round 1 broadcast", err)
	}

	if err := session.ReceiveRound1(allRound1); err != nil {
		return nil, nil, frosterr.Protocol("dkg round 1 verification", err)
	}

	outgoingRound2, err := session.Round2()
	if err != nil {
		return nil, nil, frosterr.Crypto("dkg round 2", err)
	}

	incomingRound2, err := comms.ExchangeRound2(outgoingRound2)
	if err != nil {
		return nil, nil, frosterr.Comms("dkg round 2 exchange", err)
	}

	for sender, msg := range incomingRound2 {
		if err := session.ReceiveRound2(sender, msg); err != nil {
			return nil, nil, frosterr.Protocol(fmt.Sprintf("dkg round 2 share from member [%d]", sender), err)
		}
	}

	keyPackage, pubKeyPackage, err := session.Finalize(peers)
	if err != nil {
		return nil, nil, frosterr.Crypto("dkg finalize", err)
	}

	return keyPackage, pubKeyPackage, nil
}
