package sourcefs

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"math"
	"strings"
)

// maxLineBytes bounds a single scanned line.
const maxLineBytes = 4 << 20

// FileSlice is a window of a source file.
type FileSlice struct {
	Path       string `json:"path"`
	StartLine  int    `json:"start_line"`
	EndLine    int    `json:"end_line"`
	TotalLines int    `json:"total_lines"`

	// Content holds the window's lines, each prefixed with its 1-based
	// number as "N: ".
	Content string `json:"content"`

	// Truncated reports whether lines remain after EndLine.
	Truncated bool `json:"truncated"`
}

// ReadSourceFile returns up to maxLines lines of path starting at startLine.
// startLine below 1 reads from the first line; maxLines <= 0 uses the
// configured default. A rejected path fails with ErrInvalidPath before any
// filesystem access.
func (f *FS) ReadSourceFile(ctx context.Context, path string, startLine, maxLines int) (FileSlice, error) {
	if err := ctx.Err(); err != nil {
		return FileSlice{}, err
	}
	abs, b, err := f.resolve(path)
	if err != nil {
		return FileSlice{}, err
	}
	info, err := f.fsys.Stat(abs)
	if err != nil {
		return FileSlice{}, fmt.Errorf("stat %s: %w", path, err)
	}
	if info.IsDir() {
		return FileSlice{}, fmt.Errorf("%w: %s is a directory", ErrInvalidPath, path)
	}

	startLine = max(startLine, 1)
	if maxLines <= 0 {
		maxLines = f.maxLines
	}
	endLimit := math.MaxInt
	if maxLines <= math.MaxInt-startLine {
		endLimit = startLine + maxLines - 1
	}

	slice := FileSlice{Path: relative(b, abs), StartLine: startLine, EndLine: startLine - 1}
	var content strings.Builder
	err = f.scanLines(abs, func(n int, line string) bool {
		slice.TotalLines = n
		if n >= startLine && n <= endLimit {
			fmt.Fprintf(&content, "%d: %s\n", n, line)
			slice.EndLine = n
		}
		return true
	})
	if err != nil {
		return FileSlice{}, fmt.Errorf("read %s: %w", path, err)
	}
	slice.Content = content.String()
	slice.Truncated = slice.TotalLines > endLimit
	return slice, nil
}

// scanLines calls fn for each line of the file with its 1-based number until
// fn returns false.
func (f *FS) scanLines(abs string, fn func(n int, line string) bool) error {
	rc, err := f.fsys.Open(abs)
	if err != nil {
		return err
	}
	defer rc.Close()
	return scan(rc, fn)
}

func scan(r io.Reader, fn func(n int, line string) bool) error {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), maxLineBytes)
	for n := 1; sc.Scan(); n++ {
		if !fn(n, strings.TrimSuffix(sc.Text(), "\r")) {
			return nil
		}
	}
	return sc.Err()
}
