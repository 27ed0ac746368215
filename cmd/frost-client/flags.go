package main

import (
	"flag"

	"threshold.network/frost-client/config"
	"threshold.network/frost-client/frost"
	"threshold.network/frost-client/frosterr"
)

// configFlag registers the -c/--config flag common to every subcommand
// (spec §6), defaulting to config.DefaultPath.
func configFlag(fs *flag.FlagSet) *string {
	path := ""
	fs.StringVar(&path, "c", "", "path to the credential file")
	fs.StringVar(&path, "config", "", "path to the credential file")
	return &path
}

// resolveConfigPath falls back to config.DefaultPath when path is empty.
func resolveConfigPath(path string) (string, error) {
	if path != "" {
		return path, nil
	}
	return config.DefaultPath()
}

// loadConfig loads the credential file at path (defaulting per
// resolveConfigPath), a required precondition for every subcommand except
// init.
func loadConfig(path string) (*config.File, error) {
	resolved, err := resolveConfigPath(path)
	if err != nil {
		return nil, err
	}
	return config.Load(resolved)
}

// withLockedConfig loads path under an exclusive lock, runs fn against it,
// and saves it back on success, unlocking on every exit path (spec §5
// "Shared resource policy"). fn's returned error aborts the save.
func withLockedConfig(path string, fn func(f *config.File) error) error {
	resolved, err := resolveConfigPath(path)
	if err != nil {
		return err
	}

	f, err := config.Load(resolved)
	if err != nil {
		return err
	}
	if err := f.Lock(); err != nil {
		return err
	}
	defer f.Unlock()

	// Re-read under the lock so fn sees any change saved by another
	// process between the first read and acquiring the lock.
	locked, err := config.Load(resolved)
	if err != nil {
		return err
	}
	if err := fn(locked); err != nil {
		return err
	}
	return locked.Save()
}

// findGroupCiphersuite looks up group and constructs its ciphersuite
// together, the pairing nearly every signing/DKG subcommand needs first.
func findGroupCiphersuite(f *config.File, groupPubKey string) (*config.Group, frost.Ciphersuite, error) {
	group, err := f.FindGroup(groupPubKey)
	if err != nil {
		return nil, nil, err
	}
	cs, err := frost.NewCiphersuite(group.Ciphersuite)
	if err != nil {
		return nil, nil, frosterr.Config(group.Ciphersuite, err)
	}
	return group, cs, nil
}
