package config

import (
	"encoding/base64"
	"encoding/binary"
	"fmt"

	"threshold.network/frost-client/frosterr"
)

// contactBlobVersion is the version tag prefixing every exported contact
// blob, so a future format change can be detected and handled explicitly
// instead of silently misparsing (spec §6 "self-describing, versioned").
const contactBlobVersion = 1

// EncodeContact renders a contact as the self-describing string produced
// by the `export` subcommand: a one-byte version tag, a length-prefixed
// name, and the raw pubkey bytes, base64-encoded for safe display and
// copy-pasting in a terminal.
func EncodeContact(name string, pubkey []byte) string {
	nameBytes := []byte(name)

	b := make([]byte, 0, 1+2+len(nameBytes)+len(pubkey))
	b = append(b, contactBlobVersion)
	b = binary.BigEndian.AppendUint16(b, uint16(len(nameBytes)))
	b = append(b, nameBytes...)
	b = append(b, pubkey...)

	return base64.StdEncoding.EncodeToString(b)
}

// DecodeContact parses a blob produced by EncodeContact, returning the
// contact's name and raw pubkey bytes.
func DecodeContact(blob string) (name string, pubkey []byte, err error) {
	raw, err := base64.StdEncoding.DecodeString(blob)
	if err != nil {
		return "", nil, frosterr.Input("contact", fmt.Errorf("invalid contact encoding: %w", err))
	}

	if len(raw) < 3 {
		return "", nil, frosterr.Input("contact", fmt.Errorf("contact blob is too short"))
	}

	version := raw[0]
	if version != contactBlobVersion {
		return "", nil, frosterr.Input("contact", fmt.Errorf(
			"unsupported contact blob version [%d]", version,
		))
	}

	nameLen := binary.BigEndian.Uint16(raw[1:3])
	rest := raw[3:]
	if uint16(len(rest)) < nameLen {
		return "", nil, frosterr.Input("contact", fmt.Errorf("contact blob is truncated"))
	}

	name = string(rest[:nameLen])
	pubkey = rest[nameLen:]
	if len(pubkey) == 0 {
		return "", nil, frosterr.Input("contact", fmt.Errorf("contact blob carries no pubkey"))
	}

	return name, pubkey, nil
}
