// Package config implements the credential file described in spec §6: a
// TOML document holding a participant's long-lived communication key pair,
// address book, and group memberships (key packages, public key packages,
// server URLs). The file is opened with an exclusive lock for the duration
// of any mutation (spec §5, "Shared resource policy") and is never
// encrypted at rest, a documented, deliberate limitation (spec §1
// Non-goals, §6 "Private fields MUST be present in clear").
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"

	"threshold.network/frost-client/frosterr"
)

// CurrentVersion is the credential file format version this build writes
// and the only version it will load without complaint.
const CurrentVersion = 1

// DefaultPath returns $HOME/.local/frost/credentials.toml, the path used
// when no -c/--config flag is given.
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", frosterr.Config("resolving home directory", err)
	}
	return filepath.Join(home, ".local", "frost", "credentials.toml"), nil
}

// Contact is an address book entry: a human-readable name for a comm
// pubkey. A pubkey uniquely identifies a contact; importing a blob whose
// pubkey already exists in the address book replaces the stored name
// rather than creating a duplicate entry.
type Contact struct {
	Name   string `toml:"name"`
	PubKey string `toml:"pubkey"`
}

// GroupMember records one member of a group (this identity included) by
// the pairing the comms layer and the FROST layer each need: the FROST
// identifier derived during issuance (spec §4.5, "by sorted position") and
// the comm pubkey the relay backend addresses messages to. The coordinator
// driver builds the map[frost.Identifier]*btcec.PublicKey the relay
// backend needs from this list, keeping the comms package itself ignorant
// of config.
type GroupMember struct {
	Identifier string `toml:"identifier"`
	CommPubKey string `toml:"comm_pubkey"`
}

// Group is a group (config entry) from spec §3: everything this
// participant knows about one FROST group it belongs to, keyed in the
// credential file by the hex-encoded group verifying key.
type Group struct {
	GroupPubKey      string        `toml:"group_pubkey"`
	Description      string        `toml:"description"`
	Ciphersuite      string        `toml:"ciphersuite"`
	KeyPackage       string        `toml:"key_package"`
	PublicKeyPackage string        `toml:"public_key_package"`
	ServerURL        string        `toml:"server_url,omitempty"`
	Members          []GroupMember `toml:"member,omitempty"`
}

// File is the parsed credential file.
type File struct {
	Version     int       `toml:"version"`
	CommPrivKey string    `toml:"comm_privkey"`
	CommPubKey  string    `toml:"comm_pubkey"`
	Contacts    []Contact `toml:"contact"`
	Groups      []Group   `toml:"group"`

	path string
	lock *fileLock
}

// New creates an empty, unversioned-on-disk File at path, ready to have a
// comm key pair written into it by the caller (typically the init
// subcommand) and saved.
func New(path string) *File {
	return &File{Version: CurrentVersion, path: path}
}

// Load reads and parses the credential file at path. A missing file is a
// ConfigError, same as a malformed or wrong-version one: every subcommand
// except init requires a credential file to already exist.
func Load(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, frosterr.Config(path, fmt.Errorf("reading credential file: %w", err))
	}

	var f File
	if err := toml.Unmarshal(data, &f); err != nil {
		return nil, frosterr.Config(path, fmt.Errorf("parsing credential file: %w", err))
	}
	if f.Version != CurrentVersion {
		return nil, frosterr.Config(path, fmt.Errorf(
			"unsupported credential file version [%d], expected [%d]",
			f.Version, CurrentVersion,
		))
	}
	f.path = path
	return &f, nil
}

// Path returns the filesystem path this File was loaded from or will be
// saved to.
func (f *File) Path() string {
	return f.path
}

// Lock acquires an exclusive lock on the credential file for the duration
// of a mutation. Callers must call Unlock (typically via defer) on every
// exit path, success or failure, before the process exits.
func (f *File) Lock() error {
	lock, err := acquireFileLock(f.path)
	if err != nil {
		return frosterr.Config(f.path, fmt.Errorf("locking credential file: %w", err))
	}
	f.lock = lock
	return nil
}

// Unlock releases a lock acquired by Lock. It is safe to call even if Lock
// was never called or already failed.
func (f *File) Unlock() error {
	if f.lock == nil {
		return nil
	}
	err := f.lock.release()
	f.lock = nil
	return err
}

// Save writes f back to its Path, creating parent directories as needed.
// Save does not itself acquire a lock; callers performing a read-modify-
// write cycle must hold Lock from before the Load whose contents they
// modify until after Save.
func (f *File) Save() error {
	if err := os.MkdirAll(filepath.Dir(f.path), 0o700); err != nil {
		return frosterr.Config(f.path, fmt.Errorf("creating config directory: %w", err))
	}

	tmp, err := os.CreateTemp(filepath.Dir(f.path), ".credentials-*.toml")
	if err != nil {
		return frosterr.Config(f.path, fmt.Errorf("creating temp file: %w", err))
	}
	defer os.Remove(tmp.Name())

	enc := toml.NewEncoder(tmp)
	if err := enc.Encode(f); err != nil {
		tmp.Close()
		return frosterr.Config(f.path, fmt.Errorf("encoding credential file: %w", err))
	}
	if err := tmp.Close(); err != nil {
		return frosterr.Config(f.path, fmt.Errorf("closing temp file: %w", err))
	}
	if err := os.Chmod(tmp.Name(), 0o600); err != nil {
		return frosterr.Config(f.path, fmt.Errorf("setting credential file permissions: %w", err))
	}
	if err := os.Rename(tmp.Name(), f.path); err != nil {
		return frosterr.Config(f.path, fmt.Errorf("replacing credential file: %w", err))
	}
	return nil
}

// AddContact inserts contact into the address book, or updates the stored
// name in place if a contact with the same pubkey already exists
// (spec §8 "Config idempotence").
func (f *File) AddContact(contact Contact) {
	for i, c := range f.Contacts {
		if c.PubKey == contact.PubKey {
			f.Contacts[i].Name = contact.Name
			return
		}
	}
	f.Contacts = append(f.Contacts, contact)
}

// RemoveContact deletes the contact with the given pubkey, if any. It
// reports whether a contact was removed.
func (f *File) RemoveContact(pubkey string) bool {
	for i, c := range f.Contacts {
		if c.PubKey == pubkey {
			f.Contacts = append(f.Contacts[:i], f.Contacts[i+1:]...)
			return true
		}
	}
	return false
}

// FindContact looks up a contact by pubkey.
func (f *File) FindContact(pubkey string) (Contact, bool) {
	for _, c := range f.Contacts {
		if c.PubKey == pubkey {
			return c, true
		}
	}
	return Contact{}, false
}

// AddGroup inserts or replaces the group keyed by group.GroupPubKey.
func (f *File) AddGroup(group Group) {
	for i, g := range f.Groups {
		if g.GroupPubKey == group.GroupPubKey {
			f.Groups[i] = group
			return
		}
	}
	f.Groups = append(f.Groups, group)
}

// RemoveGroup deletes the group keyed by groupPubKey. It reports whether a
// group was removed.
func (f *File) RemoveGroup(groupPubKey string) bool {
	for i, g := range f.Groups {
		if g.GroupPubKey == groupPubKey {
			f.Groups = append(f.Groups[:i], f.Groups[i+1:]...)
			return true
		}
	}
	return false
}

// FindGroup looks up a group by its hex-encoded verifying key. Returns a
// ConfigError wrapping "unknown group" if no such group exists, matching
// spec §7's ConfigError kind for this exact situation.
func (f *File) FindGroup(groupPubKey string) (*Group, error) {
	for i := range f.Groups {
		if f.Groups[i].GroupPubKey == groupPubKey {
			return &f.Groups[i], nil
		}
	}
	return nil, frosterr.Config(groupPubKey, fmt.Errorf("unknown group"))
}
