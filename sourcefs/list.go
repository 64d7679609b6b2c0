package sourcefs

import (
	"context"
	"fmt"
	"io/fs"
	"sort"
	"strings"
)

// ListSourceFiles lists files under subdirectory (the root when empty) whose
// paths match globPattern, sorted. Paths are slash-separated and relative to
// the base the subdirectory belongs to. Hidden directories are skipped.
func (f *FS) ListSourceFiles(ctx context.Context, subdirectory, globPattern string) ([]string, error) {
	m, err := compileMatcher(globPattern)
	if err != nil {
		return nil, err
	}
	dir, b, err := f.directory(subdirectory)
	if err != nil {
		return nil, err
	}

	files := []string{}
	err = f.walk(ctx, dir, b, m, func(_, rel string) error {
		files = append(files, rel)
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Strings(files)
	return files, nil
}

// directory resolves subdirectory to an existing directory.
func (f *FS) directory(subdirectory string) (string, base, error) {
	if strings.TrimSpace(subdirectory) == "" || strings.TrimSpace(subdirectory) == "." {
		return f.bases[0].real, f.bases[0], nil
	}
	dir, b, err := f.resolve(subdirectory)
	if err != nil {
		return "", base{}, err
	}
	info, err := f.fsys.Stat(dir)
	if err != nil {
		return "", base{}, fmt.Errorf("stat %s: %w", subdirectory, err)
	}
	if !info.IsDir() {
		return "", base{}, fmt.Errorf("%w: %s is not a directory", ErrInvalidPath, subdirectory)
	}
	return dir, b, nil
}

// walk calls visit for every regular file under dir accepted by m, in
// lexical order. Hidden directories below dir are not entered.
func (f *FS) walk(ctx context.Context, dir string, b base, m *matcher, visit func(abs, rel string) error) error {
	return f.fsys.WalkDir(dir, func(p string, d fs.DirEntry, err error) error {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		if err != nil {
			if p == dir {
				return err
			}
			f.warn("skipping unreadable entry", "path", p, "error", err)
			if d != nil && d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			if p != dir && strings.HasPrefix(d.Name(), ".") {
				return fs.SkipDir
			}
			return nil
		}
		if !d.Type().IsRegular() {
			return nil
		}
		rel := relative(b, p)
		if !m.match(rel) {
			return nil
		}
		return visit(p, rel)
	})
}
