package discovery

// SignaturePlaceholder is reported when a callable's signature cannot be
// extracted.
const SignaturePlaceholder = "(...)"

// AnyType is reported when a parameter or return annotation is unavailable.
const AnyType = "Any"

// ModuleInfo describes the public members of the root module.
type ModuleInfo struct {
	Name         string   `json:"name"`
	Classes      []string `json:"classes"`
	Functions    []string `json:"functions"`
	Constants    []string `json:"constants"`
	TotalMembers int      `json:"total_members"`
}

// ClassInfo describes one class.
type ClassInfo struct {
	Name      string `json:"name"`
	FullPath  string `json:"full_path"`
	Docstring string `json:"docstring"`

	// BaseClasses lists ancestors in method resolution order, excluding the
	// class itself.
	BaseClasses []string       `json:"base_classes"`
	Methods     []FunctionInfo `json:"methods"`

	// Properties lists the non-callable public members.
	Properties []string `json:"properties"`
	IsAbstract bool     `json:"is_abstract"`
}

// FunctionInfo describes one callable.
type FunctionInfo struct {
	Name      string `json:"name"`
	Signature string `json:"signature"`
	Docstring string `json:"docstring"`

	// Parameters and ParamTypes are parallel.
	Parameters    []string `json:"parameters"`
	ParamTypes    []string `json:"param_types"`
	ReturnType    string   `json:"return_type"`
	IsMethod      bool     `json:"is_method"`
	IsStatic      bool     `json:"is_static"`
	IsClassMethod bool     `json:"is_class_method"`
}

func (m *ModuleInfo) normalize() {
	m.Classes = nonNil(m.Classes)
	m.Functions = nonNil(m.Functions)
	m.Constants = nonNil(m.Constants)
	if m.TotalMembers == 0 {
		m.TotalMembers = len(m.Classes) + len(m.Functions) + len(m.Constants)
	}
}

func (c *ClassInfo) normalize() {
	c.BaseClasses = nonNil(c.BaseClasses)
	c.Properties = nonNil(c.Properties)
	if c.Methods == nil {
		c.Methods = []FunctionInfo{}
	}
	for i := range c.Methods {
		c.Methods[i].normalize()
	}
}

func (f *FunctionInfo) normalize() {
	if f.Signature == "" {
		f.Signature = SignaturePlaceholder
	}
	if f.ReturnType == "" {
		f.ReturnType = AnyType
	}
	f.Parameters = nonNil(f.Parameters)
	types := make([]string, len(f.Parameters))
	for i := range types {
		types[i] = AnyType
		if i < len(f.ParamTypes) && f.ParamTypes[i] != "" {
			types[i] = f.ParamTypes[i]
		}
	}
	f.ParamTypes = types
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
