package cache

import (
	"fmt"
	"strconv"
)

// Kind names the discovery operation a key belongs to.
type Kind string

const (
	KindModule   Kind = "module"
	KindClass    Kind = "class"
	KindFunction Kind = "function"
)

// Key identifies one cached result.
type Key struct {
	Kind   Kind
	Target string
	Params string
}

// ModuleKey returns the key for a module listing at the given depth and
// filter. Callers pass the same normalized values they give the probe.
func ModuleKey(depth int, filter string) Key {
	return Key{Kind: KindModule, Params: "depth=" + strconv.Itoa(depth) + ";filter=" + filter}
}

// ClassKey returns the key for a class description.
func ClassKey(name string) Key {
	return Key{Kind: KindClass, Target: name}
}

// FunctionKey returns the key for a function description.
func FunctionKey(path string) Key {
	return Key{Kind: KindFunction, Target: path}
}

// String encodes the key. Distinct keys always encode differently.
func (k Key) String() string {
	return fmt.Sprintf("%s|%q|%q", k.Kind, k.Target, k.Params)
}
