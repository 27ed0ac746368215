// Package input implements the uniform "file path | stdin tag | inline hex"
// argument reading rule (spec §4.6) used everywhere frost-client accepts a
// message, randomizer, or contact blob from the command line.
package input

import (
	"bufio"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"strings"

	"threshold.network/frost-client/frosterr"
)

// Reader wraps stdin in a single buffered reader shared by every
// stdin-tagged argument, so that multiple "-m -" arguments in the same
// invocation consume successive lines rather than all reading the first one.
type Reader struct {
	stdin *bufio.Reader
}

// NewReader creates a Reader pulling stdin-tagged values from in.
func NewReader(in io.Reader) *Reader {
	return &Reader{stdin: bufio.NewReader(in)}
}

// NewStdinReader creates a Reader pulling stdin-tagged values from the
// process's real standard input.
func NewStdinReader() *Reader {
	return NewReader(os.Stdin)
}

// Read resolves which value an argument names and returns its decoded
// bytes:
//
//   - "" or "-": read a single line from stdin, hex-decode it.
//   - a path that exists on disk: read the file's raw bytes.
//   - anything else: decode the string itself as inline hex.
func (r *Reader) Read(which string) ([]byte, error) {
	switch {
	case which == "" || which == "-":
		line, err := r.stdin.ReadString('\n')
		if err != nil && err != io.EOF {
			return nil, frosterr.Input(which, fmt.Errorf("reading stdin: %w", err))
		}
		line = strings.TrimSpace(line)
		b, err := hex.DecodeString(line)
		if err != nil {
			return nil, frosterr.Input(which, fmt.Errorf("stdin value is not valid hex: %w", err))
		}
		return b, nil

	default:
		if info, err := os.Stat(which); err == nil && !info.IsDir() {
			b, err := os.ReadFile(which)
			if err != nil {
				return nil, frosterr.Input(which, fmt.Errorf("reading file: %w", err))
			}
			return b, nil
		}

		b, err := hex.DecodeString(which)
		if err != nil {
			return nil, frosterr.Input(which, fmt.Errorf("value is neither an existing file nor valid hex: %w", err))
		}
		return b, nil
	}
}

// ReadAll resolves each of which, in order, against r.
func (r *Reader) ReadAll(which []string) ([][]byte, error) {
	out := make([][]byte, 0, len(which))
	for _, w := range which {
		b, err := r.Read(w)
		if err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, nil
}
