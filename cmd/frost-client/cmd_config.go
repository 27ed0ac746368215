package main

import (
	"encoding/hex"
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"threshold.network/frost-client/config"
	"threshold.network/frost-client/frosterr"
	"threshold.network/frost-client/transport"
)

// runInit implements the `init` subcommand: generate a fresh communication
// key pair and write a new credential file. Refuses to overwrite an
// existing one, since doing so would silently discard every group this
// identity already belongs to.
func runInit(args []string) error {
	fs := flag.NewFlagSet("init", flag.ContinueOnError)
	path := configFlag(fs)
	if err := fs.Parse(args); err != nil {
		return frosterr.Input("init", err)
	}

	resolved, err := resolveConfigPath(*path)
	if err != nil {
		return err
	}
	if _, err := os.Stat(resolved); err == nil {
		return frosterr.Config(resolved, fmt.Errorf("credential file already exists"))
	}

	if err := os.MkdirAll(filepath.Dir(resolved), 0o700); err != nil {
		return frosterr.Config(resolved, fmt.Errorf("creating config directory: %w", err))
	}

	keyPair, err := transport.GenerateCommKeyPair()
	if err != nil {
		return frosterr.Crypto("generating communication key pair", err)
	}

	f := config.New(resolved)
	f.CommPrivKey = keyPair.PrivateHex()
	f.CommPubKey = keyPair.PublicHex()

	if err := f.Lock(); err != nil {
		return err
	}
	defer f.Unlock()
	if err := f.Save(); err != nil {
		return err
	}

	fmt.Printf("initialized credential file at %s\ncomm pubkey: %s\n", resolved, f.CommPubKey)
	return nil
}

// runExport implements the `export` subcommand: print this identity's
// contact blob (spec §6 "Contact export/import string") under the given
// display name.
func runExport(args []string) error {
	fs := flag.NewFlagSet("export", flag.ContinueOnError)
	path := configFlag(fs)
	name := fs.String("n", "", "the name to use when exporting")
	fs.StringVar(name, "name", "", "the name to use when exporting")
	if err := fs.Parse(args); err != nil {
		return frosterr.Input("export", err)
	}
	if *name == "" {
		return frosterr.Input("export", fmt.Errorf("-n/--name is required"))
	}

	f, err := loadConfig(*path)
	if err != nil {
		return err
	}

	pubkey, err := hex.DecodeString(f.CommPubKey)
	if err != nil {
		return frosterr.Config(f.Path(), fmt.Errorf("credential file carries invalid comm pubkey: %w", err))
	}

	fmt.Println(config.EncodeContact(*name, pubkey))
	return nil
}

// runImport implements the `import` subcommand: add the contact described
// by a blob produced by `export` to the address book.
func runImport(args []string) error {
	fs := flag.NewFlagSet("import", flag.ContinueOnError)
	path := configFlag(fs)
	if err := fs.Parse(args); err != nil {
		return frosterr.Input("import", err)
	}
	if fs.NArg() != 1 {
		return frosterr.Input("import", fmt.Errorf("expected exactly one positional argument: the contact blob"))
	}
	blob := fs.Arg(0)

	name, pubkey, err := config.DecodeContact(blob)
	if err != nil {
		return err
	}

	return withLockedConfig(*path, func(f *config.File) error {
		f.AddContact(config.Contact{Name: name, PubKey: hex.EncodeToString(pubkey)})
		fmt.Printf("imported contact %q (%s)\n", name, hex.EncodeToString(pubkey))
		return nil
	})
}

// runContacts implements the `contacts` subcommand: list the address book.
func runContacts(args []string) error {
	fs := flag.NewFlagSet("contacts", flag.ContinueOnError)
	path := configFlag(fs)
	if err := fs.Parse(args); err != nil {
		return frosterr.Input("contacts", err)
	}

	f, err := loadConfig(*path)
	if err != nil {
		return err
	}

	for _, c := range f.Contacts {
		fmt.Printf("%s\t%s\n", c.PubKey, c.Name)
	}
	return nil
}

// runRemoveContact implements the `remove-contact` subcommand.
func runRemoveContact(args []string) error {
	fs := flag.NewFlagSet("remove-contact", flag.ContinueOnError)
	path := configFlag(fs)
	pubkey := fs.String("p", "", "the public key of the contact to remove")
	fs.StringVar(pubkey, "pubkey", "", "the public key of the contact to remove")
	if err := fs.Parse(args); err != nil {
		return frosterr.Input("remove-contact", err)
	}
	if *pubkey == "" {
		return frosterr.Input("remove-contact", fmt.Errorf("-p/--pubkey is required"))
	}

	return withLockedConfig(*path, func(f *config.File) error {
		if !f.RemoveContact(*pubkey) {
			return frosterr.Config(*pubkey, fmt.Errorf("unknown contact"))
		}
		return nil
	})
}

// runGroups implements the `groups` subcommand: list the groups this
// identity belongs to.
func runGroups(args []string) error {
	fs := flag.NewFlagSet("groups", flag.ContinueOnError)
	path := configFlag(fs)
	if err := fs.Parse(args); err != nil {
		return frosterr.Input("groups", err)
	}

	f, err := loadConfig(*path)
	if err != nil {
		return err
	}

	for _, g := range f.Groups {
		fmt.Printf("%s\t%s\t%s\t%d members\n", g.GroupPubKey, g.Ciphersuite, g.Description, len(g.Members))
	}
	return nil
}

// runRemoveGroup implements the `remove-group` subcommand.
func runRemoveGroup(args []string) error {
	fs := flag.NewFlagSet("remove-group", flag.ContinueOnError)
	path := configFlag(fs)
	group := fs.String("g", "", "the group to remove, identified by the group public key")
	fs.StringVar(group, "group", "", "the group to remove, identified by the group public key")
	if err := fs.Parse(args); err != nil {
		return frosterr.Input("remove-group", err)
	}
	if *group == "" {
		return frosterr.Input("remove-group", fmt.Errorf("-g/--group is required"))
	}

	return withLockedConfig(*path, func(f *config.File) error {
		if !f.RemoveGroup(*group) {
			return frosterr.Config(*group, fmt.Errorf("unknown group"))
		}
		return nil
	})
}
