// Package shared provides common utilities for host backend implementations.
package shared

import (
	"strings"

	"github.com/jonwraymond/scriptbridge/runtime"
)

// ExtractEnvelope pulls the first line prefixed with marker out of stdout.
//
// Returns:
//   - payload: the text following the marker on that line, trimmed
//   - remaining: stdout with the envelope line removed
//   - found: whether a marker line was present
//
// Behavior:
//   - Only the first marker line is extracted; later ones are kept as output
//   - Lines are compared after trimming surrounding whitespace
//   - An empty marker never matches
func ExtractEnvelope(stdout, marker string) (payload string, remaining string, found bool) {
	if stdout == "" || marker == "" {
		return "", stdout, false
	}

	lines := strings.Split(stdout, "\n")
	kept := make([]string, 0, len(lines))
	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		if !found && strings.HasPrefix(trimmed, marker) {
			payload = strings.TrimSpace(strings.TrimPrefix(trimmed, marker))
			found = true
			continue
		}
		kept = append(kept, line)
	}
	return payload, strings.Join(kept, "\n"), found
}

// SplitLog converts raw interpreter output into log entries of one severity.
// Carriage returns are dropped, a single trailing newline does not produce an
// empty entry, and interior blank lines are preserved.
func SplitLog(text string, typ runtime.LogType) []runtime.LogEntry {
	text = strings.ReplaceAll(text, "\r", "")
	text = strings.TrimSuffix(text, "\n")
	if strings.TrimSpace(text) == "" {
		return nil
	}
	lines := strings.Split(text, "\n")
	out := make([]runtime.LogEntry, 0, len(lines))
	for _, line := range lines {
		out = append(out, runtime.LogEntry{Type: typ, Output: line})
	}
	return out
}
