// Command frost-client is the CLI surface for running FROST threshold
// signing sessions: managing a credential file, issuing key material via a
// trusted dealer or distributed key generation, and driving coordinator and
// participant signing sessions over either a manual CLI exchange or an
// HTTP relay (spec §6).
package main

import (
	"errors"
	"fmt"
	"os"

	"go.uber.org/zap"

	"threshold.network/frost-client/frosterr"
)

func main() {
	if len(os.Args) < 2 {
		fmt.Fprintln(os.Stderr, "usage: frost-client <command> [flags]")
		os.Exit(1)
	}

	cmd := os.Args[1]
	args := os.Args[2:]

	fn, ok := commands[cmd]
	if !ok {
		fmt.Fprintf(os.Stderr, "input error: unknown command [%s]\n", cmd)
		os.Exit(1)
	}

	if err := fn(args); err != nil {
		var fe *frosterr.Error
		if errors.As(err, &fe) {
			fmt.Fprintf(os.Stderr, "%s: %s\n", fe.Kind, fe.Error())
		} else {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
		}
		os.Exit(frosterr.ExitCode(err))
	}
}

// commands maps every CLI subcommand name (spec §6) to its handler.
var commands = map[string]func(args []string) error{
	"init":           runInit,
	"export":         runExport,
	"import":         runImport,
	"contacts":       runContacts,
	"remove-contact": runRemoveContact,
	"trusted-dealer": runTrustedDealer,
	"dkg":            runDKG,
	"groups":         runGroups,
	"remove-group":   runRemoveGroup,
	"sessions":       runSessions,
	"coordinator":    runCoordinator,
	"participant":    runParticipant,
}

// newLogger builds the process-wide logger (spec SPEC_FULL.md §B): a
// production (JSON) logger by default, or a human-readable development
// logger under -v/--verbose.
func newLogger(verbose bool) (*zap.SugaredLogger, error) {
	var l *zap.Logger
	var err error
	if verbose {
		l, err = zap.NewDevelopment()
	} else {
		l, err = zap.NewProduction()
	}
	if err != nil {
		return nil, fmt.Errorf("building logger: %w", err)
	}
	return l.Sugar(), nil
}
