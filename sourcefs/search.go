package sourcefs

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

var errResultLimit = errors.New("result limit reached")

// SearchResult is one matching line with its surrounding context.
type SearchResult struct {
	FilePath      string   `json:"file_path"`
	LineNumber    int      `json:"line_number"`
	LineContent   string   `json:"line_content"`
	ContextBefore []string `json:"context_before"`
	ContextAfter  []string `json:"context_after"`
}

// SearchSourceFiles finds lines containing pattern as a literal substring in
// every root file matching any of the comma-separated filePatterns. Each
// result carries up to contextLines lines before and after the match, fewer
// at file boundaries. Results stop at the configured maximum.
func (f *FS) SearchSourceFiles(ctx context.Context, pattern, filePatterns string, contextLines int) ([]SearchResult, error) {
	if pattern == "" {
		return nil, fmt.Errorf("%w: empty search pattern", ErrInvalidPattern)
	}
	m, err := compileMatcher(filePatterns)
	if err != nil {
		return nil, err
	}
	contextLines = max(contextLines, 0)

	results := []SearchResult{}
	root := f.bases[0]
	err = f.walk(ctx, root.real, root, m, func(abs, rel string) error {
		var lines []string
		if err := f.scanLines(abs, func(_ int, line string) bool {
			lines = append(lines, line)
			return true
		}); err != nil {
			f.warn("skipping unreadable file", "path", rel, "error", err)
			return nil
		}
		n := min(contextLines, len(lines))
		for i, line := range lines {
			if !strings.Contains(line, pattern) {
				continue
			}
			if len(results) == f.maxResults {
				return errResultLimit
			}
			results = append(results, SearchResult{
				FilePath:      rel,
				LineNumber:    i + 1,
				LineContent:   line,
				ContextBefore: window(lines, i-n, i),
				ContextAfter:  window(lines, i+1, i+1+n),
			})
		}
		return nil
	})
	if errors.Is(err, errResultLimit) {
		f.warn("search truncated", "pattern", pattern, "limit", f.maxResults)
		err = nil
	}
	if err != nil {
		return nil, err
	}
	return results, nil
}

// window copies lines[from:to], clamped to the slice bounds.
func window(lines []string, from, to int) []string {
	from = max(from, 0)
	to = min(to, len(lines))
	if from >= to {
		return []string{}
	}
	return append([]string(nil), lines[from:to]...)
}
