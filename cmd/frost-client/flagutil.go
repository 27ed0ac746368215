package main

import "strings"

// repeatableFlag implements flag.Value for a flag that may be passed more
// than once on the command line (-m/--message, -r/--randomizer, spec
// SPEC_FULL.md §E "repeatable flags").
type repeatableFlag struct {
	values []string
}

func (r *repeatableFlag) String() string {
	if r == nil {
		return ""
	}
	return strings.Join(r.values, ",")
}

func (r *repeatableFlag) Set(value string) error {
	r.values = append(r.values, value)
	return nil
}

// splitComma splits a comma-separated flag value into its parts, returning
// nil for an empty string rather than a single empty-string element.
func splitComma(s string) []string {
	if s == "" {
		return nil
	}
	return strings.Split(s, ",")
}
