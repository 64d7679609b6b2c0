package sourcefs

import (
	"fmt"
	"path"
	"strings"

	"github.com/gobwas/glob"
)

// matcher accepts relative paths matching any of its globs.
type matcher struct {
	globs []pathGlob
}

type pathGlob struct {
	g        glob.Glob
	fullPath bool
}

// compileMatcher compiles comma-separated glob patterns. Blank entries are
// ignored; no patterns at all matches every file.
func compileMatcher(patterns string) (*matcher, error) {
	m := &matcher{}
	for _, p := range strings.Split(patterns, ",") {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		g, err := glob.Compile(p, '/')
		if err != nil {
			return nil, fmt.Errorf("%w: glob %q: %v", ErrInvalidPattern, p, err)
		}
		m.globs = append(m.globs, pathGlob{g: g, fullPath: strings.Contains(p, "/")})
	}
	return m, nil
}

func (m *matcher) match(rel string) bool {
	if len(m.globs) == 0 {
		return true
	}
	name := path.Base(rel)
	for _, pg := range m.globs {
		subject := name
		if pg.fullPath {
			subject = rel
		}
		if pg.g.Match(subject) {
			return true
		}
	}
	return false
}
