package main

import (
	"crypto/sha256"
	"encoding/hex"
	"flag"
	"fmt"
	"os"

	"threshold.network/frost-client/comms"
	"threshold.network/frost-client/config"
	"threshold.network/frost-client/dkg"
	"threshold.network/frost-client/frost"
	"threshold.network/frost-client/frosterr"
	"threshold.network/frost-client/transport"
)

// runTrustedDealer implements the `trusted-dealer` subcommand: run
// frost.TrustedDealerKeyGen locally and write the resulting group to every
// participant's own credential file. Issuing key material to a single
// config over a coordinating server (original_source's single-path
// TrustedDealer invocation) is not supported; every participant's config
// file must be reachable from this process, one -c/--config per
// participant.
func runTrustedDealer(args []string) error {
	fs := flag.NewFlagSet("trusted-dealer", flag.ContinueOnError)
	configsFlag := fs.String("c", "", "comma-separated credential file paths, one per participant")
	fs.StringVar(configsFlag, "config", "", "comma-separated credential file paths, one per participant")
	description := fs.String("d", "", "a human-readable description for the new group")
	fs.StringVar(description, "description", "", "a human-readable description for the new group")
	namesFlag := fs.String("N", "", "comma-separated display name for each participant, in config order")
	fs.StringVar(namesFlag, "names", "", "comma-separated display name for each participant, in config order")
	serverURL := fs.String("s", "", "relay server URL to record for this group")
	fs.StringVar(serverURL, "server-url", "", "relay server URL to record for this group")
	ciphersuiteName := fs.String("C", frost.CiphersuiteEd25519, "ciphersuite to use")
	fs.StringVar(ciphersuiteName, "ciphersuite", frost.CiphersuiteEd25519, "ciphersuite to use")
	threshold := fs.Int("t", 2, "signing threshold")
	fs.IntVar(threshold, "threshold", 2, "signing threshold")
	numSigners := fs.Int("n", 3, "number of signers; must match the number of -c paths given")
	fs.IntVar(numSigners, "num-signers", 3, "number of signers; must match the number of -c paths given")
	if err := fs.Parse(args); err != nil {
		return frosterr.Input("trusted-dealer", err)
	}
	if *description == "" {
		return frosterr.Input("trusted-dealer", fmt.Errorf("-d/--description is required"))
	}

	configs := splitComma(*configsFlag)
	if len(configs) <= 1 {
		return frosterr.Input("trusted-dealer", fmt.Errorf(
			"issuing key material to a single config via a coordinating server is not supported; "+
				"pass -c once per participant's credential file",
		))
	}
	if *numSigners != len(configs) {
		return frosterr.Input("trusted-dealer", fmt.Errorf(
			"-n/--num-signers [%d] does not match the [%d] config paths given", *numSigners, len(configs),
		))
	}

	names := splitComma(*namesFlag)
	if names != nil && len(names) != len(configs) {
		return frosterr.Input("trusted-dealer", fmt.Errorf(
			"-N/--names has [%d] entries, expected [%d]", len(names), len(configs),
		))
	}

	ciphersuite, err := frost.NewCiphersuite(*ciphersuiteName)
	if err != nil {
		return frosterr.Input(*ciphersuiteName, err)
	}

	files := make([]*config.File, len(configs))
	for i, path := range configs {
		f, err := config.Load(path)
		if err != nil {
			return err
		}
		files[i] = f
	}

	keyPackages, pubKeyPackage, err := frost.TrustedDealerKeyGen(ciphersuite, *threshold, len(configs))
	if err != nil {
		return frosterr.Protocol("trusted dealer key generation", err)
	}

	groupPubKeyHex := hex.EncodeToString(ciphersuite.Curve().SerializePoint(pubKeyPackage.VerifyingKey))
	encodedPubKeyPackage, err := frost.EncodePublicKeyPackage(ciphersuite, pubKeyPackage)
	if err != nil {
		return frosterr.Crypto("encoding public key package", err)
	}

	members := make([]config.GroupMember, len(files))
	for i, f := range files {
		members[i] = config.GroupMember{
			Identifier: keyPackages[i].Identifier.String(),
			CommPubKey: f.CommPubKey,
		}
	}

	for i, f := range files {
		encodedKeyPackage, err := frost.EncodeKeyPackage(ciphersuite, keyPackages[i])
		if err != nil {
			return frosterr.Crypto("encoding key package", err)
		}

		group := config.Group{
			GroupPubKey:      groupPubKeyHex,
			Description:      *description,
			Ciphersuite:      *ciphersuiteName,
			KeyPackage:       string(encodedKeyPackage),
			PublicKeyPackage: string(encodedPubKeyPackage),
			ServerURL:        *serverURL,
			Members:          members,
		}

		if err := f.Lock(); err != nil {
			return err
		}
		f.AddGroup(group)
		if names != nil {
			for j, other := range files {
				if j == i {
					continue
				}
				f.AddContact(config.Contact{Name: names[j], PubKey: other.CommPubKey})
			}
		}
		err = f.Save()
		f.Unlock()
		if err != nil {
			return err
		}
	}

	fmt.Printf("issued group %s (threshold %d of %d) to %d config files\n",
		groupPubKeyHex, *threshold, len(configs), len(configs))
	return nil
}

// runDKG implements the `dkg` subcommand: run the three-round distributed
// key generation protocol with the other named participants and write the
// resulting group to this identity's own credential file. Every party runs
// this subcommand independently against the same -S/--participants set (for
// everyone but itself) so frost.Identifier assignment (dkg.Identify) agrees
// without further coordination; the session ID is likewise derived
// deterministically from the sorted participant set rather than handed out
// by a session-creating party, since original_source's Dkg subcommand names
// no session discovery mechanism of its own.
func runDKG(args []string) error {
	fs := flag.NewFlagSet("dkg", flag.ContinueOnError)
	path := configFlag(fs)
	description := fs.String("d", "", "a human-readable description for the new group")
	fs.StringVar(description, "description", "", "a human-readable description for the new group")
	serverURL := fs.String("s", "", "relay server URL; if omitted, rounds are exchanged by hand over the CLI")
	fs.StringVar(serverURL, "server-url", "", "relay server URL; if omitted, rounds are exchanged by hand over the CLI")
	ciphersuiteName := fs.String("C", frost.CiphersuiteEd25519, "ciphersuite to use")
	fs.StringVar(ciphersuiteName, "ciphersuite", frost.CiphersuiteEd25519, "ciphersuite to use")
	threshold := fs.Int("t", 2, "signing threshold")
	fs.IntVar(threshold, "threshold", 2, "signing threshold")
	participantsFlag := fs.String("S", "", "comma-separated comm pubkeys of every other participant")
	fs.StringVar(participantsFlag, "participants", "", "comma-separated comm pubkeys of every other participant")
	verbose := fs.Bool("v", false, "verbose logging")
	fs.BoolVar(verbose, "verbose", false, "verbose logging")
	if err := fs.Parse(args); err != nil {
		return frosterr.Input("dkg", err)
	}
	if *description == "" {
		return frosterr.Input("dkg", fmt.Errorf("-d/--description is required"))
	}
	others := splitComma(*participantsFlag)
	if len(others) == 0 {
		return frosterr.Input("dkg", fmt.Errorf("-S/--participants is required: comm pubkeys of every other member"))
	}

	f, err := loadConfig(*path)
	if err != nil {
		return err
	}

	ciphersuite, err := frost.NewCiphersuite(*ciphersuiteName)
	if err != nil {
		return frosterr.Input(*ciphersuiteName, err)
	}

	allPubkeys := append([]string{f.CommPubKey}, others...)
	group := dkg.Identify(allPubkeys)

	var myIndex uint16
	found := false
	for _, p := range group {
		if p.CommPubKey == f.CommPubKey {
			myIndex = p.Identifier
			found = true
		}
	}
	if !found {
		return frosterr.Fatal("dkg", fmt.Errorf("this identity's own comm pubkey is missing from its assigned group"))
	}
	if *threshold < 1 || *threshold > len(group) {
		return frosterr.Input("dkg", fmt.Errorf("threshold [%d] is out of range for [%d] participants", *threshold, len(group)))
	}

	sessionID := derivedSessionID(group)

	logger, err := newLogger(*verbose)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	peerComms, err := buildDKGComms(ciphersuite, f, *serverURL, sessionID, myIndex, group)
	if err != nil {
		return err
	}

	keyPackage, pubKeyPackage, err := dkg.Run(ciphersuite, sessionID, myIndex, group, *threshold, peerComms, logger)
	if err != nil {
		return err
	}

	encodedKeyPackage, err := frost.EncodeKeyPackage(ciphersuite, keyPackage)
	if err != nil {
		return frosterr.Crypto("encoding key package", err)
	}
	encodedPubKeyPackage, err := frost.EncodePublicKeyPackage(ciphersuite, pubKeyPackage)
	if err != nil {
		return frosterr.Crypto("encoding public key package", err)
	}
	groupPubKeyHex := hex.EncodeToString(ciphersuite.Curve().SerializePoint(pubKeyPackage.VerifyingKey))

	members := make([]config.GroupMember, len(group))
	for i, p := range group {
		members[i] = config.GroupMember{
			Identifier: frost.Identifier(p.Identifier).String(),
			CommPubKey: p.CommPubKey,
		}
	}

	newGroup := config.Group{
		GroupPubKey:      groupPubKeyHex,
		Description:      *description,
		Ciphersuite:      *ciphersuiteName,
		KeyPackage:       string(encodedKeyPackage),
		PublicKeyPackage: string(encodedPubKeyPackage),
		ServerURL:        *serverURL,
		Members:          members,
	}

	if err := withLockedConfig(*path, func(f *config.File) error {
		f.AddGroup(newGroup)
		return nil
	}); err != nil {
		return err
	}

	fmt.Printf("completed dkg for group %s (threshold %d of %d)\n", groupPubKeyHex, *threshold, len(group))
	return nil
}

// derivedSessionID hashes the group's sorted comm pubkeys into a session ID
// every party derives identically, without requiring one party to create a
// session and hand its ID to the others out of band.
func derivedSessionID(group []dkg.Participant) string {
	h := sha256.New()
	for _, p := range group {
		h.Write([]byte(p.CommPubKey))
	}
	return hex.EncodeToString(h.Sum(nil))
}

func buildDKGComms(
	ciphersuite frost.Ciphersuite,
	f *config.File,
	serverURL, sessionID string,
	myIndex uint16,
	group []dkg.Participant,
) (dkg.PeerComms, error) {
	if serverURL == "" {
		peers := make([]uint16, 0, len(group)-1)
		for _, p := range group {
			if p.Identifier != myIndex {
				peers = append(peers, p.Identifier)
			}
		}
		return dkg.NewCLI(ciphersuite, peers, os.Stdin, os.Stdout, os.Stderr), nil
	}

	ownKey, err := transport.ParsePrivateKeyHex(f.CommPrivKey)
	if err != nil {
		return nil, frosterr.Config(f.Path(), err)
	}
	registry := comms.NewRegistryClient(serverURL)
	relay, err := dkg.NewRelay(ciphersuite, registry, sessionID, ownKey, group)
	if err != nil {
		return nil, err
	}
	return relay, nil
}
