package discovery

import (
	"bytes"
	"embed"
	"encoding/json"
	"fmt"
	"text/template"
)

//go:embed probes/*.py.tmpl
var probeFS embed.FS

var probeTemplates = template.Must(template.ParseFS(probeFS, "probes/*.py.tmpl"))

// Probe names a generated introspection script.
type Probe string

const (
	ProbeModule     Probe = "module"
	ProbeClass      Probe = "class"
	ProbeFunction   Probe = "function"
	ProbeSubsystems Probe = "subsystems"
)

// Generator renders probe scripts for one root module.
//
// Caller values never appear in a probe as code. They are encoded into one
// JSON document, embedded as a single escaped string literal and decoded by
// the probe at run time.
type Generator struct {
	root string
}

// NewGenerator creates a generator for the named root module.
func NewGenerator(root string) *Generator {
	return &Generator{root: root}
}

// Module renders the module listing probe.
func (g *Generator) Module(depth int, filter string) (string, error) {
	return g.render(ProbeModule, map[string]any{"depth": depth, "filter": filter})
}

// Class renders the class description probe. name is relative to the root.
func (g *Generator) Class(name string) (string, error) {
	return g.render(ProbeClass, map[string]any{"name": name})
}

// Function renders the function description probe. path is relative to the
// root and may name a method as Class.method.
func (g *Generator) Function(path string) (string, error) {
	return g.render(ProbeFunction, map[string]any{"path": path})
}

// Subsystems renders the editor subsystem listing probe.
func (g *Generator) Subsystems() (string, error) {
	return g.render(ProbeSubsystems, map[string]any{})
}

func (g *Generator) render(probe Probe, params map[string]any) (string, error) {
	params["root"] = g.root
	literal, err := pyString(params)
	if err != nil {
		return "", fmt.Errorf("encode %s probe parameters: %w", probe, err)
	}
	var buf bytes.Buffer
	err = probeTemplates.ExecuteTemplate(&buf, string(probe)+".py.tmpl", struct{ Params string }{literal})
	if err != nil {
		return "", fmt.Errorf("render %s probe: %w", probe, err)
	}
	return buf.String(), nil
}

// pyString encodes v as JSON and returns that document as a quoted string
// literal. A JSON string literal is also a valid Python string literal.
func pyString(v any) (string, error) {
	doc, err := json.Marshal(v)
	if err != nil {
		return "", err
	}
	literal, err := json.Marshal(string(doc))
	if err != nil {
		return "", err
	}
	return string(literal), nil
}
