package fixture

import (
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// Document is the YAML form of a fixture
type Document struct {
	Schema   string      `yaml:"schema"`
	Types    []DeclDoc   `yaml:"types"`
	Switches []SwitchDoc `yaml:"switches"`
}

// DeclDoc declares one type: exactly one of Record, Interface and Class is set
type DeclDoc struct {
	Record    string `yaml:"record"`
	Interface string `yaml:"interface"`
	Class     string `yaml:"class"`

	Params     []ParamDoc     `yaml:"params"`
	Extends    *TypeRef       `yaml:"extends"`
	Implements []TypeRef      `yaml:"implements"`
	Components []ComponentDoc `yaml:"components"`

	// Sealed is implied by a non-empty Permits
	Sealed   bool     `yaml:"sealed"`
	Permits  []string `yaml:"permits"`
	Abstract bool     `yaml:"abstract"`
	Final    bool     `yaml:"final"`

	line int
}

func (d *DeclDoc) UnmarshalYAML(value *yaml.Node) error {
	type plain DeclDoc
	if err := value.Decode((*plain)(d)); err != nil {
		return err
	}
	d.line = value.Line
	return nil
}

// ParamDoc is a type parameter, written `T` or `{name: T, bound: Shape}`
type ParamDoc struct {
	Name  string   `yaml:"name"`
	Bound *TypeRef `yaml:"bound"`
}

func (p *ParamDoc) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind == yaml.ScalarNode {
		p.Name = value.Value
		return nil
	}
	type plain ParamDoc
	return value.Decode((*plain)(p))
}

type ComponentDoc struct {
	Name string  `yaml:"name"`
	Type TypeRef `yaml:"type"`
}

// TypeRef is a reference to a type, written as a bare name (`int`,
// `Integer`, `Object`, `Shape`), as `{name: Box, args: [...]}` or as
// `{var: T}` for a type parameter in scope
type TypeRef struct {
	Name string    `yaml:"name"`
	Args []TypeRef `yaml:"args"`
	Var  string    `yaml:"var"`
}

func (t *TypeRef) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind == yaml.ScalarNode {
		t.Name = value.Value
		return nil
	}
	type plain TypeRef
	if err := value.Decode((*plain)(t)); err != nil {
		return err
	}
	if (t.Name == "") == (t.Var == "") {
		return errors.Errorf("line %d: a type needs exactly one of name and var", value.Line)
	}
	return nil
}

// SwitchDoc is one case list to analyze
type SwitchDoc struct {
	Name string `yaml:"name"`
	// Form is one of expression, statement, enhanced and instanceof
	Form     string    `yaml:"form"`
	Selector TypeRef   `yaml:"selector"`
	Default  bool      `yaml:"default"`
	Null     bool      `yaml:"null"`
	Cases    []CaseDoc `yaml:"cases"`
	// Inputs are Go expressions evaluated against the generated dispatch function
	Inputs []string `yaml:"inputs"`
}

type CaseDoc struct {
	Pattern PatternDoc `yaml:"pattern"`
	Guard   *GuardDoc  `yaml:"guard"`
}

// GuardDoc is a guard with its Go source and, if known, its constant value
type GuardDoc struct {
	Source string `yaml:"source"`
	Const  *bool  `yaml:"const"`

	line, column int
}

func (g *GuardDoc) UnmarshalYAML(value *yaml.Node) error {
	type plain GuardDoc
	if value.Kind == yaml.ScalarNode {
		g.Source = value.Value
	} else if err := value.Decode((*plain)(g)); err != nil {
		return err
	}
	g.line, g.column = value.Line, value.Column
	return nil
}

// PatternDoc is one node of a pattern tree: `{type: T, bind: x}`,
// `{var: x}`, `{any: true}` or `{record: R, args: [...], components: [...]}`
type PatternDoc struct {
	Type       *TypeRef     `yaml:"type"`
	Bind       string       `yaml:"bind"`
	Var        *string      `yaml:"var"`
	Any        bool         `yaml:"any"`
	Record     string       `yaml:"record"`
	Args       []TypeRef    `yaml:"args"`
	Components []PatternDoc `yaml:"components"`

	line, column int
}

func (p *PatternDoc) UnmarshalYAML(value *yaml.Node) error {
	type plain PatternDoc
	if err := value.Decode((*plain)(p)); err != nil {
		return err
	}
	p.line, p.column = value.Line, value.Column

	kinds := 0
	for _, set := range []bool{p.Type != nil, p.Var != nil, p.Any, p.Record != ""} {
		if set {
			kinds++
		}
	}
	if kinds != 1 {
		return errors.Errorf("line %d: a pattern needs exactly one of type, var, any and record", value.Line)
	}
	return nil
}
