package dkg

import (
	"bufio"
	"fmt"
	"io"

	"threshold.network/frost-client/frost"
	"threshold.network/frost-client/frosterr"
	"threshold.network/frost-client/gjkr"
)

// CLI is the operator-mediated DKG comms backend, mirroring comms.CLI's
// manual-paste design: this process's own round messages are printed to
// out for the operator to relay to every peer by hand, and each peer's
// message is read back from in, one per line, in ascending peer-index
// order.
type CLI struct {
	ciphersuite frost.Ciphersuite
	peers       []uint16
	in          *bufio.Reader
	out         io.Writer
	prompts     io.Writer
}

// NewCLI creates a DKG CLI comms backend for a run whose other members have
// the given FROST identifiers (this party's own identifier excluded).
func NewCLI(ciphersuite frost.Ciphersuite, peers []uint16, in io.Reader, out, prompts io.Writer) *CLI {
	return &CLI{
		ciphersuite: ciphersuite,
		peers:       peers,
		in:          bufio.NewReader(in),
		out:         out,
		prompts:     prompts,
	}
}

func (c *CLI) readLine() (string, error) {
	line, err := c.in.ReadString('\n')
	if err != nil && err != io.EOF {
		return "", frosterr.Input("stdin", fmt.Errorf("reading line: %w", err))
	}
	return trimNewline(line), nil
}

func trimNewline(s string) string {
	for len(s) > 0 && (s[len(s)-1] == '\n' || s[len(s)-1] == '\r') {
		s = s[:len(s)-1]
	}
	return s
}

// BroadcastRound1 implements PeerComms.
func (c *CLI) BroadcastRound1(msg *gjkr.Round1Message) ([]*gjkr.Round1Message, error) {
	encoded, err := EncodeRound1Message(c.ciphersuite, msg)
	if err != nil {
		return nil, frosterr.Protocol("encoding round 1 message", err)
	}
	fmt.Fprintln(c.out, string(encoded))

	received := make([]*gjkr.Round1Message, 0, len(c.peers))
	for _, peer := range c.peers {
		fmt.Fprintf(c.prompts, "paste round 1 message from member %d:\n", peer)
		line, err := c.readLine()
		if err != nil {
			return nil, err
		}
		peerMsg, err := DecodeRound1Message(c.ciphersuite, []byte(line))
		if err != nil {
			return nil, frosterr.Input(fmt.Sprintf("round 1 message from member %d", peer), err)
		}
		received = append(received, peerMsg)
	}

	return received, nil
}

// ExchangeRound2 implements PeerComms.
func (c *CLI) ExchangeRound2(outgoing map[uint16]*gjkr.Round2Message) (map[uint16]*gjkr.Round2Message, error) {
	for _, peer := range c.peers {
		msg, ok := outgoing[peer]
		if !ok {
			return nil, frosterr.Fatal(fmt.Sprintf("member %d", peer), fmt.Errorf("no outgoing round 2 share computed"))
		}
		encoded, err := EncodeRound2Message(msg)
		if err != nil {
			return nil, frosterr.Protocol("encoding round 2 message", err)
		}
		fmt.Fprintf(c.prompts, "round 2 share for member %d (relay this by hand):\n", peer)
		fmt.Fprintln(c.out, string(encoded))
	}

	received := make(map[uint16]*gjkr.Round2Message, len(c.peers))
	for _, peer := range c.peers {
		fmt.Fprintf(c.prompts, "paste round 2 message from member %d:\n", peer)
		line, err := c.readLine()
		if err != nil {
			return nil, err
		}
		peerMsg, err := DecodeRound2Message([]byte(line))
		if err != nil {
			return nil, frosterr.Input(fmt.Sprintf("round 2 message from member %d", peer), err)
		}
		received[peer] = peerMsg
	}

	return received, nil
}
