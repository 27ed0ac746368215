package main

import (
	"context"
	"flag"
	"fmt"

	"threshold.network/frost-client/comms"
	"threshold.network/frost-client/frosterr"
)

// runSessions implements the `sessions` subcommand: list or close-all the
// relay sessions this identity is a member of.
func runSessions(args []string) error {
	fs := flag.NewFlagSet("sessions", flag.ContinueOnError)
	path := configFlag(fs)
	serverURL := fs.String("s", "", "relay server URL")
	fs.StringVar(serverURL, "server-url", "", "relay server URL")
	groupFlag := fs.String("g", "", "group to take the relay server URL from, if -s is omitted")
	fs.StringVar(groupFlag, "group", "", "group to take the relay server URL from, if -s is omitted")
	closeAll := fs.Bool("close-all", false, "close every session this identity is a member of")
	if err := fs.Parse(args); err != nil {
		return frosterr.Input("sessions", err)
	}

	f, err := loadConfig(*path)
	if err != nil {
		return err
	}

	url := *serverURL
	if url == "" && *groupFlag != "" {
		group, err := f.FindGroup(*groupFlag)
		if err != nil {
			return err
		}
		url = group.ServerURL
	}
	if url == "" {
		return frosterr.Input("sessions", fmt.Errorf("a relay server URL is required: pass -s or -g"))
	}

	registry := comms.NewRegistryClient(url)
	ctx := context.Background()

	if *closeAll {
		if err := registry.CloseAllSessions(ctx); err != nil {
			return err
		}
		fmt.Println("closed all sessions")
		return nil
	}

	sessionIDs, err := registry.ListSessions(ctx)
	if err != nil {
		return err
	}
	for _, id := range sessionIDs {
		fmt.Println(id)
	}
	return nil
}
