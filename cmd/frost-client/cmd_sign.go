package main

import (
	"context"
	"flag"
	"fmt"
	"math/big"
	"os"
	"strings"

	"github.com/btcsuite/btcd/btcec"

	"threshold.network/frost-client/comms"
	"threshold.network/frost-client/config"
	"threshold.network/frost-client/coordinator"
	"threshold.network/frost-client/frost"
	"threshold.network/frost-client/frosterr"
	"threshold.network/frost-client/input"
	"threshold.network/frost-client/participant"
	"threshold.network/frost-client/transport"
)

// runCoordinator implements the `coordinator` subcommand: drive a signing
// session for the chosen signer set against one or more messages, writing
// one signature per message.
func runCoordinator(args []string) error {
	fs := flag.NewFlagSet("coordinator", flag.ContinueOnError)
	path := configFlag(fs)
	serverURL := fs.String("s", "", "relay server URL; if omitted, rounds are exchanged by hand over the CLI")
	fs.StringVar(serverURL, "server-url", "", "relay server URL; if omitted, rounds are exchanged by hand over the CLI")
	groupFlag := fs.String("g", "", "group to sign for, identified by the group public key")
	fs.StringVar(groupFlag, "group", "", "group to sign for, identified by the group public key")
	signersFlag := fs.String("S", "", "comma-separated signer identifiers")
	fs.StringVar(signersFlag, "signers", "", "comma-separated signer identifiers")
	var messages repeatableFlag
	fs.Var(&messages, "m", "a message to sign: a file path, '-'/empty for stdin, or inline hex (repeatable)")
	fs.Var(&messages, "message", "a message to sign: a file path, '-'/empty for stdin, or inline hex (repeatable)")
	var randomizers repeatableFlag
	fs.Var(&randomizers, "r", "a redpallas randomizer: a file path, '-'/empty for stdin, or inline hex (repeatable)")
	fs.Var(&randomizers, "randomizer", "a redpallas randomizer: a file path, '-'/empty for stdin, or inline hex (repeatable)")
	output := fs.String("o", "", "path to write the signature to; if omitted, printed as hex to stdout")
	fs.StringVar(output, "signature", "", "path to write the signature to; if omitted, printed as hex to stdout")
	if err := fs.Parse(args); err != nil {
		return frosterr.Input("coordinator", err)
	}
	if *groupFlag == "" {
		return frosterr.Input("coordinator", fmt.Errorf("-g/--group is required"))
	}

	f, err := loadConfig(*path)
	if err != nil {
		return err
	}
	group, ciphersuite, err := findGroupCiphersuite(f, *groupFlag)
	if err != nil {
		return err
	}

	keyPackage, err := frost.DecodeKeyPackage(ciphersuite, []byte(group.KeyPackage))
	if err != nil {
		return frosterr.Config(group.GroupPubKey, fmt.Errorf("decoding this identity's key package: %w", err))
	}
	defer keyPackage.Zeroize()
	pubKeyPackage, err := frost.DecodePublicKeyPackage(ciphersuite, []byte(group.PublicKeyPackage))
	if err != nil {
		return frosterr.Config(group.GroupPubKey, fmt.Errorf("decoding group public key package: %w", err))
	}

	signerIDStrings := splitComma(*signersFlag)
	if len(signerIDStrings) == 0 {
		return frosterr.Input("coordinator", fmt.Errorf("-S/--signers is required"))
	}
	signers := make([]frost.Identifier, len(signerIDStrings))
	for i, s := range signerIDStrings {
		id, err := frost.ParseIdentifier(s)
		if err != nil {
			return frosterr.Input(s, err)
		}
		signers[i] = id
	}
	if err := coordinator.ValidateThreshold(len(signers), keyPackage.MinSigners); err != nil {
		return err
	}

	messageSpecs := messages.values
	if len(messageSpecs) == 0 {
		messageSpecs = []string{""}
	}
	reader := input.NewStdinReader()
	messageBytes, err := reader.ReadAll(messageSpecs)
	if err != nil {
		return err
	}

	var randomizerValues []*big.Int
	if len(randomizers.values) > 0 {
		randomizerBytes, err := reader.ReadAll(randomizers.values)
		if err != nil {
			return err
		}
		randomizerValues = make([]*big.Int, len(randomizerBytes))
		for i, b := range randomizerBytes {
			randomizerValues[i] = new(big.Int).SetBytes(b)
		}
	}

	commsBackend, err := buildCoordinatorComms(ciphersuite, f, group, *serverURL, signers)
	if err != nil {
		return err
	}

	session := coordinator.New(ciphersuite, pubKeyPackage, keyPackage.MinSigners, len(signers), commsBackend)
	results, err := session.Run(signers, messageBytes, randomizerValues)
	if err != nil {
		return err
	}

	return writeSignatures(ciphersuite, results, *output)
}

// findMemberCommPubKey looks up id's comm pubkey among group's known
// members, the pairing a relay backend needs to address a signer.
func findMemberCommPubKey(group *config.Group, id frost.Identifier) (string, error) {
	for _, m := range group.Members {
		memberID, err := frost.ParseIdentifier(m.Identifier)
		if err != nil {
			continue
		}
		if memberID == id {
			return m.CommPubKey, nil
		}
	}
	return "", frosterr.Config(group.GroupPubKey, fmt.Errorf("no known comm pubkey for signer [%s]", id))
}

func buildCoordinatorComms(
	ciphersuite frost.Ciphersuite,
	f *config.File,
	group *config.Group,
	serverURL string,
	signers []frost.Identifier,
) (comms.CoordinatorComms, error) {
	if serverURL == "" {
		return comms.NewCLI(ciphersuite, os.Stdin, os.Stdout, os.Stderr), nil
	}

	ownKey, err := transport.ParsePrivateKeyHex(f.CommPrivKey)
	if err != nil {
		return nil, frosterr.Config(f.Path(), err)
	}

	identifierCommPubKey := make(map[frost.Identifier]*btcec.PublicKey, len(signers))
	memberPubKeys := make([]string, 0, len(signers)+1)
	for _, id := range signers {
		pubHex, err := findMemberCommPubKey(group, id)
		if err != nil {
			return nil, err
		}
		pub, err := transport.ParsePublicKeyHex(pubHex)
		if err != nil {
			return nil, frosterr.Config(group.GroupPubKey, err)
		}
		identifierCommPubKey[id] = pub
		memberPubKeys = append(memberPubKeys, pubHex)
	}
	memberPubKeys = append(memberPubKeys, f.CommPubKey)

	registry := comms.NewRegistryClient(serverURL)
	sessionID, err := registry.CreateSession(context.Background(), memberPubKeys)
	if err != nil {
		return nil, err
	}

	return comms.NewRelayCoordinatorComms(ciphersuite, registry, sessionID, ownKey, identifierCommPubKey), nil
}

func writeSignatures(ciphersuite frost.Ciphersuite, results []*coordinator.Result, output string) error {
	if output == "" || output == "-" {
		for _, r := range results {
			fmt.Println(r.Signature.Hex(ciphersuite))
		}
		return nil
	}

	if len(results) == 1 {
		return os.WriteFile(output, results[0].Signature.Serialize(ciphersuite), 0o600)
	}
	for i, r := range results {
		path := fmt.Sprintf("%s.%d", output, i)
		if err := os.WriteFile(path, r.Signature.Serialize(ciphersuite), 0o600); err != nil {
			return frosterr.Input(path, err)
		}
	}
	return nil
}

// relayCommitmentSender adapts comms.Relay's two-argument
// SendSigningCommitments (which needs to know who to address) to the
// single-argument participant.CommitmentSender interface, by pinning the
// coordinator's comm pubkey ahead of time.
type relayCommitmentSender struct {
	relay             *comms.Relay
	coordinatorPubKey *btcec.PublicKey
}

func (r relayCommitmentSender) SendSigningCommitments(commitment *frost.NonceCommitment) error {
	return r.relay.SendSigningCommitments(r.coordinatorPubKey, commitment)
}

// runParticipant implements the `participant` subcommand: join a signing
// session for the given group, computing and sending this identity's
// round-2 share.
func runParticipant(args []string) error {
	fs := flag.NewFlagSet("participant", flag.ContinueOnError)
	path := configFlag(fs)
	serverURL := fs.String("s", "", "relay server URL; if omitted, rounds are exchanged by hand over the CLI")
	fs.StringVar(serverURL, "server-url", "", "relay server URL; if omitted, rounds are exchanged by hand over the CLI")
	groupFlag := fs.String("g", "", "group to sign for, identified by the group public key")
	fs.StringVar(groupFlag, "group", "", "group to sign for, identified by the group public key")
	sessionFlag := fs.String("S", "", "relay session ID; if omitted, the sole active session for this group's server is used")
	fs.StringVar(sessionFlag, "session", "", "relay session ID; if omitted, the sole active session for this group's server is used")
	coordinatorPubKeyFlag := fs.String("k", "", "the expected coordinator's comm pubkey (required over a relay)")
	fs.StringVar(coordinatorPubKeyFlag, "coordinator-pubkey", "", "the expected coordinator's comm pubkey (required over a relay)")
	if err := fs.Parse(args); err != nil {
		return frosterr.Input("participant", err)
	}
	if *groupFlag == "" {
		return frosterr.Input("participant", fmt.Errorf("-g/--group is required"))
	}

	f, err := loadConfig(*path)
	if err != nil {
		return err
	}
	group, ciphersuite, err := findGroupCiphersuite(f, *groupFlag)
	if err != nil {
		return err
	}

	keyPackage, err := frost.DecodeKeyPackage(ciphersuite, []byte(group.KeyPackage))
	if err != nil {
		return frosterr.Config(group.GroupPubKey, fmt.Errorf("decoding this identity's key package: %w", err))
	}
	defer keyPackage.Zeroize()

	var participantComms comms.ParticipantComms
	var commitmentSender participant.CommitmentSender

	if *serverURL == "" {
		cli := comms.NewCLI(ciphersuite, os.Stdin, os.Stdout, os.Stderr)
		participantComms = cli
		commitmentSender = cli
	} else {
		if *coordinatorPubKeyFlag == "" {
			return frosterr.Input("participant", fmt.Errorf(
				"-k/--coordinator-pubkey is required when signing over a relay",
			))
		}
		coordinatorPubKey, err := transport.ParsePublicKeyHex(*coordinatorPubKeyFlag)
		if err != nil {
			return frosterr.Input(*coordinatorPubKeyFlag, err)
		}

		sessionID := *sessionFlag
		if sessionID == "" {
			resolved, err := resolveSoleSession(*serverURL)
			if err != nil {
				return err
			}
			sessionID = resolved
		}

		ownKey, err := transport.ParsePrivateKeyHex(f.CommPrivKey)
		if err != nil {
			return frosterr.Config(f.Path(), err)
		}
		registry := comms.NewRegistryClient(*serverURL)

		relay := comms.NewRelayParticipantComms(
			ciphersuite, registry, sessionID, ownKey, nil, confirmCoordinatorPubKey(*coordinatorPubKeyFlag),
		)
		participantComms = relay
		commitmentSender = relayCommitmentSender{relay: relay, coordinatorPubKey: coordinatorPubKey}
	}

	participantSession := participant.New(ciphersuite, keyPackage, participantComms, commitmentSender)
	message, err := participantSession.Run()
	if err != nil {
		return err
	}

	fmt.Printf("signed message (%d bytes)\n", len(message))
	return nil
}

// resolveSoleSession lists every session on serverURL and returns its ID,
// failing clearly if the count is anything but exactly one: a participant
// given no -S/--session has no other way to disambiguate which session it
// was invited to (spec §9 Open Question).
func resolveSoleSession(serverURL string) (string, error) {
	registry := comms.NewRegistryClient(serverURL)
	sessionIDs, err := registry.ListSessions(context.Background())
	if err != nil {
		return "", err
	}
	if len(sessionIDs) != 1 {
		return "", frosterr.Input("participant", fmt.Errorf(
			"-S/--session is required: found [%d] active sessions, expected exactly 1", len(sessionIDs),
		))
	}
	return sessionIDs[0], nil
}

// confirmCoordinatorPubKey builds the trust-on-first-use confirmation hook
// (spec §4.1): auto-confirm a sender matching the pre-shared
// -k/--coordinator-pubkey value, otherwise ask the operator once.
func confirmCoordinatorPubKey(expectedHex string) comms.CoordinatorPubKeyGetter {
	return func(sessionID string, pubKey *btcec.PublicKey) (bool, error) {
		gotHex := transport.PublicKeyHex(pubKey)
		if expectedHex != "" && strings.EqualFold(gotHex, expectedHex) {
			return true, nil
		}
		fmt.Fprintf(os.Stderr, "session %s: confirm coordinator pubkey %s? [y/N] ", sessionID, gotHex)
		var answer string
		fmt.Scanln(&answer)
		answer = strings.ToLower(strings.TrimSpace(answer))
		return answer == "y" || answer == "yes", nil
	}
}
