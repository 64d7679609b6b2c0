package sourcefs

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

const (
	// DefaultMaxLines is the read window when none is requested.
	DefaultMaxLines = 500

	// DefaultMaxSearchResults caps the matches one search returns.
	DefaultMaxSearchResults = 1000
)

// Logger is the interface for logging.
type Logger interface {
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// Config configures an FS.
type Config struct {
	// Root is the source tree every relative path resolves against.
	// Required. Must be an existing directory.
	Root string

	// AllowedPrefixes are additional absolute subtrees that absolute paths
	// may name. Paths under Root are always allowed.
	AllowedPrefixes []string

	// DefaultMaxLines is used when ReadSourceFile gets maxLines <= 0.
	// Default: DefaultMaxLines
	DefaultMaxLines int

	// MaxSearchResults caps SearchSourceFiles results.
	// Default: DefaultMaxSearchResults
	MaxSearchResults int

	// Logger is an optional logger.
	Logger Logger
}

// Validate checks the configuration without touching the filesystem.
func (c Config) Validate() error {
	if strings.TrimSpace(c.Root) == "" {
		return fmt.Errorf("%w: missing required field Root", ErrConfiguration)
	}
	for _, p := range c.AllowedPrefixes {
		if !filepath.IsAbs(p) {
			return fmt.Errorf("%w: allowed prefix %q is not absolute", ErrConfiguration, p)
		}
	}
	if c.DefaultMaxLines < 0 {
		return fmt.Errorf("%w: DefaultMaxLines must be >= 0", ErrConfiguration)
	}
	if c.MaxSearchResults < 0 {
		return fmt.Errorf("%w: MaxSearchResults must be >= 0", ErrConfiguration)
	}
	return nil
}

// fileSystem is the set of calls FS makes against the disk.
type fileSystem interface {
	EvalSymlinks(path string) (string, error)
	Stat(path string) (fs.FileInfo, error)
	Open(path string) (io.ReadCloser, error)
	WalkDir(root string, fn fs.WalkDirFunc) error
}

type osFS struct{}

func (osFS) EvalSymlinks(path string) (string, error)     { return filepath.EvalSymlinks(path) }
func (osFS) Stat(path string) (fs.FileInfo, error)        { return os.Stat(path) }
func (osFS) Open(path string) (io.ReadCloser, error)      { return os.Open(path) }
func (osFS) WalkDir(root string, fn fs.WalkDirFunc) error { return filepath.WalkDir(root, fn) }

// base is a directory paths may live under, in lexical and resolved form.
type base struct {
	lexical string
	real    string
}

// FS reads, lists and searches files under a fixed root.
type FS struct {
	bases      []base
	maxLines   int
	maxResults int
	logger     Logger
	fsys       fileSystem
}

// New creates an FS locked to cfg.Root.
func New(cfg Config) (*FS, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return newFS(cfg, osFS{})
}

func newFS(cfg Config, fsys fileSystem) (*FS, error) {
	root, err := resolveBase(fsys, cfg.Root)
	if err != nil {
		return nil, fmt.Errorf("%w: root: %v", ErrConfiguration, err)
	}
	info, err := fsys.Stat(root.real)
	if err != nil {
		return nil, fmt.Errorf("%w: root: %v", ErrConfiguration, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%w: root %s is not a directory", ErrConfiguration, cfg.Root)
	}

	f := &FS{
		bases:      []base{root},
		maxLines:   cfg.DefaultMaxLines,
		maxResults: cfg.MaxSearchResults,
		logger:     cfg.Logger,
		fsys:       fsys,
	}
	if f.maxLines == 0 {
		f.maxLines = DefaultMaxLines
	}
	if f.maxResults == 0 {
		f.maxResults = DefaultMaxSearchResults
	}
	for _, p := range cfg.AllowedPrefixes {
		b, err := resolveBase(fsys, p)
		if err != nil {
			f.warn("allowed prefix unavailable", "prefix", p, "error", err)
			continue
		}
		f.bases = append(f.bases, b)
	}
	return f, nil
}

func resolveBase(fsys fileSystem, dir string) (base, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return base{}, err
	}
	resolved, err := fsys.EvalSymlinks(abs)
	if err != nil {
		return base{}, err
	}
	return base{lexical: abs, real: resolved}, nil
}

// Root returns the resolved root directory.
func (f *FS) Root() string {
	return f.bases[0].real
}

// validate checks userPath lexically and returns the candidate path and the
// base it belongs to. It never touches the filesystem.
func (f *FS) validate(userPath string) (string, base, error) {
	p := strings.TrimSpace(userPath)
	if p == "" {
		return "", base{}, fmt.Errorf("%w: empty path", ErrInvalidPath)
	}
	if strings.HasPrefix(p, "~") {
		return "", base{}, fmt.Errorf("%w: home directory expansion in %q", ErrInvalidPath, userPath)
	}
	for _, seg := range strings.FieldsFunc(p, isSeparator) {
		if seg == ".." {
			return "", base{}, fmt.Errorf("%w: parent directory reference in %q", ErrInvalidPath, userPath)
		}
	}

	if !filepath.IsAbs(p) && !strings.HasPrefix(p, "/") {
		root := f.bases[0]
		return filepath.Join(root.real, filepath.FromSlash(p)), root, nil
	}
	clean := filepath.Clean(p)
	for _, b := range f.bases {
		if within(b.lexical, clean) {
			rel, _ := filepath.Rel(b.lexical, clean)
			return filepath.Join(b.real, rel), b, nil
		}
		if within(b.real, clean) {
			return clean, b, nil
		}
	}
	return "", base{}, fmt.Errorf("%w: absolute path %q outside allowed prefixes", ErrInvalidPath, userPath)
}

// resolve validates userPath, then follows symlinks and checks that the
// target stays under its base.
func (f *FS) resolve(userPath string) (string, base, error) {
	candidate, b, err := f.validate(userPath)
	if err != nil {
		return "", base{}, err
	}
	resolved, err := f.fsys.EvalSymlinks(candidate)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", base{}, fmt.Errorf("%w: %s", ErrNotFound, userPath)
		}
		return "", base{}, fmt.Errorf("resolve %s: %w", userPath, err)
	}
	if !within(b.real, resolved) {
		return "", base{}, fmt.Errorf("%w: %q resolves outside %s", ErrInvalidPath, userPath, b.real)
	}
	return resolved, b, nil
}

// relative returns path relative to b, slash-separated.
func relative(b base, path string) string {
	rel, err := filepath.Rel(b.real, path)
	if err != nil {
		return filepath.ToSlash(path)
	}
	return filepath.ToSlash(rel)
}

func within(dir, path string) bool {
	rel, err := filepath.Rel(dir, path)
	if err != nil {
		return false
	}
	return rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}

func isSeparator(r rune) bool {
	return r == '/' || r == '\\'
}

func (f *FS) warn(msg string, args ...any) {
	if f.logger != nil {
		f.logger.Warn(msg, args...)
	}
}
