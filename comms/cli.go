package comms

import (
	"bufio"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"math/big"

	"threshold.network/frost-client/frost"
	"threshold.network/frost-client/frosterr"
)

// CLI is the direct, operator-mediated comms backend: it prompts whoever
// is running the process to paste JSON-encoded values on stdin, one per
// participant, in a deterministic order (ascending by Identifier), and
// prints this process's own outgoing values to stdout for the operator to
// relay by hand. It is the backend used when no -s/--server-url is given.
type CLI struct {
	ciphersuite frost.Ciphersuite
	in          *bufio.Reader
	out         io.Writer
	prompts     io.Writer
}

// NewCLI creates a CLI comms backend. in is where pasted participant
// values are read from (typically os.Stdin); out is where this process's
// own outgoing values are printed (typically os.Stdout); prompts is where
// human-readable instructions are printed (typically os.Stderr, so they
// don't get mixed into any piped stdout output).
func NewCLI(ciphersuite frost.Ciphersuite, in io.Reader, out, prompts io.Writer) *CLI {
	return &CLI{
		ciphersuite: ciphersuite,
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

// GetSigningCommitments implements CoordinatorComms by prompting for one
// SigningCommitments JSON value per signer, sorted by identifier.
func (c *CLI) GetSigningCommitments(
	_ *frost.PublicKeyPackage,
	signingParticipants []frost.Identifier,
	_ int,
) (map[frost.Identifier]*frost.NonceCommitment, error) {
	ids := sortedCopy(signingParticipants)

	result := make(map[frost.Identifier]*frost.NonceCommitment, len(ids))
	for _, id := range ids {
		fmt.Fprintf(c.prompts, "paste signing commitments for participant %s:\n", id)
		line, err := c.readLine()
		if err != nil {
			return nil, err
		}
		commitment, err := frost.DecodeNonceCommitment(c.ciphersuite, id, []byte(line))
		if err != nil {
			return nil, frosterr.Input(id.String(), err)
		}
		result[id] = commitment
	}

	return result, nil
}

// GetSignatureShares implements CoordinatorComms by prompting for one
// SignatureShare JSON value per signer named in signingPackage, sorted by
// identifier.
func (c *CLI) GetSignatureShares(
	signingPackage *frost.SigningPackage,
	randomizer *big.Int,
) (map[frost.Identifier]*frost.SignatureShare, error) {
	encodedPackage, err := frost.EncodeSigningPackage(c.ciphersuite, signingPackage)
	if err != nil {
		return nil, frosterr.Protocol("encoding signing package", err)
	}
	envelope := signingPackageEnvelope{Package: encodedPackage}
	if randomizer != nil {
		envelope.Randomizer = hex.EncodeToString(randomizer.Bytes())
	}
	encodedEnvelope, err := json.Marshal(envelope)
	if err != nil {
		return nil, frosterr.Protocol("encoding signing package envelope", err)
	}
	fmt.Fprintln(c.out, string(encodedEnvelope))

	ids := make([]frost.Identifier, 0, len(signingPackage.Commitments))
	for id := range signingPackage.Commitments {
		ids = append(ids, id)
	}
	ids = sortedCopy(ids)

	result := make(map[frost.Identifier]*frost.SignatureShare, len(ids))
	for _, id := range ids {
		fmt.Fprintf(c.prompts, "paste signature share for participant %s:\n", id)
		line, err := c.readLine()
		if err != nil {
			return nil, err
		}
		var share frost.SignatureShare
		if err := share.UnmarshalJSON([]byte(line)); err != nil {
			return nil, frosterr.Input(id.String(), err)
		}
		share.Identifier = id
		result[id] = &share
	}

	return result, nil
}

// signingPackageEnvelope is the combined wire shape a participant reads
// from its comms: the signing package JSON alongside an optional
// redpallas randomizer.
type signingPackageEnvelope struct {
	Package    json.RawMessage `json:"package"`
	Randomizer string          `json:"randomizer,omitempty"`
}

// SendSigningCommitments prints this participant's round-1 commitment as
// JSON to stdout, for the operator to paste into the coordinator's
// GetSigningCommitments prompt by hand. It is not part of ParticipantComms
// (see comms.Relay's method of the same name): a participant session
// calls it directly as part of its own Round1 transition, the same way it
// calls SendSignatureShare after Round2.
func (c *CLI) SendSigningCommitments(commitment *frost.NonceCommitment) error {
	encoded, err := frost.EncodeNonceCommitment(c.ciphersuite, commitment)
	if err != nil {
		return frosterr.Protocol("encoding signing commitments", err)
	}
	fmt.Fprintln(c.out, string(encoded))
	return nil
}

// GetSigningPackage implements ParticipantComms by prompting for one
// combined signing-package-and-randomizer JSON value.
func (c *CLI) GetSigningPackage() (*frost.SigningPackage, *big.Int, error) {
	fmt.Fprintln(c.prompts, "paste the signing package:")
	line, err := c.readLine()
	if err != nil {
		return nil, nil, err
	}

	var envelope signingPackageEnvelope
	if err := json.Unmarshal([]byte(line), &envelope); err != nil {
		return nil, nil, frosterr.Input("signing package", fmt.Errorf("invalid envelope JSON: %w", err))
	}

	pkg, err := frost.DecodeSigningPackage(c.ciphersuite, envelope.Package)
	if err != nil {
		return nil, nil, frosterr.Input("signing package", err)
	}

	var randomizer *big.Int
	if envelope.Randomizer != "" {
		b, err := hex.DecodeString(envelope.Randomizer)
		if err != nil {
			return nil, nil, frosterr.Input("randomizer", fmt.Errorf("invalid randomizer hex: %w", err))
		}
		randomizer = new(big.Int).SetBytes(b)
	}

	return pkg, randomizer, nil
}

// SendSignatureShare implements ParticipantComms by printing this
// participant's share as JSON to stdout, for the operator to relay to the
// coordinator.
func (c *CLI) SendSignatureShare(share *frost.SignatureShare) error {
	encoded, err := share.MarshalJSON()
	if err != nil {
		return frosterr.Protocol("encoding signature share", err)
	}
	fmt.Fprintln(c.out, string(encoded))
	return nil
}

func sortedCopy(ids []frost.Identifier) []frost.Identifier {
	out := make([]frost.Identifier, len(ids))
	copy(out, ids)
	for i := 1; i < len(out); i++ {
		for j := i; j > 0 && out[j-1] > out[j]; j-- {
			out[j-1], out[j] = out[j], out[j-1]
		}
	}
	return out
}
