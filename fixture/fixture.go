// Package fixture loads type hierarchies and case lists from YAML documents,
// and analyzes them.
package fixture

import (
	"bytes"
	"go/token"
	"io/fs"

	"github.com/Masterminds/semver/v3"
	"github.com/cottand/recpat/frontend/ast"
	"github.com/cottand/recpat/frontend/types"
	"github.com/cottand/recpat/internal/log"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

var logger = log.DefaultLogger.With("section", "fixture")

// SupportedSchema constrains the schema versions Parse accepts
const SupportedSchema = "^1"

var supported = mustConstraint(SupportedSchema)

func mustConstraint(c string) *semver.Constraints {
	constraint, err := semver.NewConstraint(c)
	if err != nil {
		panic(err)
	}
	return constraint
}

// Switch is a named case list of a fixture
type Switch struct {
	Name   string
	List   ast.CaseList
	Inputs []string
}

type Fixture struct {
	Path      string
	Schema    *semver.Version
	Hierarchy *types.Hierarchy
	Switches  []Switch

	fset *token.FileSet
	file *token.File
}

// Position resolves a position of a pattern or guard of f
func (f *Fixture) Position(pos token.Pos) token.Position {
	return f.fset.Position(pos)
}

// Lookup returns the switch called name
func (f *Fixture) Lookup(name string) (Switch, bool) {
	for _, s := range f.Switches {
		if s.Name == name {
			return s, true
		}
	}
	return Switch{}, false
}

// Load reads and parses the fixture at path in fsys
func Load(fsys fs.FS, path string) (*Fixture, error) {
	data, err := fs.ReadFile(fsys, path)
	if err != nil {
		return nil, errors.Wrapf(err, "reading fixture %s", path)
	}
	return Parse(path, data)
}

// Parse builds the fixture described by the YAML document data
func Parse(path string, data []byte) (*Fixture, error) {
	var doc Document
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&doc); err != nil {
		return nil, errors.Wrapf(err, "decoding fixture %s", path)
	}

	version, err := semver.NewVersion(doc.Schema)
	if err != nil {
		return nil, errors.Wrapf(err, "schema version of %s", path)
	}
	if !supported.Check(version) {
		return nil, errors.Errorf("fixture %s has schema %s, supported is %s", path, version, SupportedSchema)
	}

	f := &Fixture{Path: path, Schema: version, fset: token.NewFileSet()}
	f.file = f.fset.AddFile(path, -1, len(data))
	f.file.SetLinesForContent(data)

	decls := make([]*types.Decl, 0, len(doc.Types))
	for _, d := range doc.Types {
		decl, err := buildDecl(d)
		if err != nil {
			return nil, errors.Wrapf(err, "%s:%d", path, d.line)
		}
		decls = append(decls, decl)
	}
	f.Hierarchy, err = types.NewBuilder().Add(decls...).Build()
	if err != nil {
		return nil, errors.Wrapf(err, "type hierarchy of %s", path)
	}

	seen := make(map[string]bool, len(doc.Switches))
	for _, s := range doc.Switches {
		if seen[s.Name] {
			return nil, errors.Errorf("fixture %s declares switch %s twice", path, s.Name)
		}
		seen[s.Name] = true
		sw, err := f.buildSwitch(s)
		if err != nil {
			return nil, errors.Wrapf(err, "switch %s of %s", s.Name, path)
		}
		f.Switches = append(f.Switches, sw)
	}
	logger.Debug("loaded fixture", "path", path, "schema", version, "types", len(decls), "switches", len(f.Switches))
	return f, nil
}

// pos converts a YAML line and column, both 1-based, to a position in f
func (f *Fixture) pos(line, column int) token.Pos {
	if line < 1 || line > f.file.LineCount() {
		return token.NoPos
	}
	p := f.file.LineStart(line) + token.Pos(column-1)
	if int(p)-f.file.Base() > f.file.Size() {
		return token.NoPos
	}
	return p
}

func buildDecl(d DeclDoc) (*types.Decl, error) {
	var decl *types.Decl
	switch {
	case d.Record != "" && d.Interface == "" && d.Class == "":
		decl = types.Record(d.Record)
	case d.Interface != "" && d.Record == "" && d.Class == "":
		decl = types.Interface(d.Interface)
	case d.Class != "" && d.Record == "" && d.Interface == "":
		decl = types.Class(d.Class)
	default:
		return nil, errors.New("a type needs exactly one of record, interface and class")
	}

	params := make([]types.TypeParam, 0, len(d.Params))
	for _, p := range d.Params {
		params = append(params, types.TypeParam{Name: p.Name})
	}
	// bounds may refer to any parameter of the declaration
	for i, p := range d.Params {
		if p.Bound == nil {
			continue
		}
		bound, err := resolve(*p.Bound, params)
		if err != nil {
			return nil, errors.Wrapf(err, "bound of %s", p.Name)
		}
		params[i].Bound = bound
	}
	if len(params) > 0 {
		decl.WithParams(params...)
	}

	if d.Extends != nil {
		super, err := resolveNamed(*d.Extends, params)
		if err != nil {
			return nil, errors.Wrap(err, "superclass")
		}
		decl.Extending(super)
	}
	for _, ref := range d.Implements {
		iface, err := resolveNamed(ref, params)
		if err != nil {
			return nil, errors.Wrap(err, "interface")
		}
		decl.Implementing(iface)
	}
	for _, c := range d.Components {
		t, err := resolve(c.Type, params)
		if err != nil {
			return nil, errors.Wrapf(err, "component %s", c.Name)
		}
		decl.Components = append(decl.Components, types.Comp(c.Name, t))
	}

	if len(d.Permits) > 0 || d.Sealed {
		decl.Permitting(d.Permits...)
	}
	if d.Abstract {
		decl.AsAbstract()
	}
	if d.Final {
		decl.AsFinal()
	}
	return decl, nil
}

// resolve turns ref into a type. Names of params in scope are type variables.
func resolve(ref TypeRef, params []types.TypeParam) (types.Type, error) {
	name := ref.Name
	if ref.Var != "" {
		name = ref.Var
	}
	for _, p := range params {
		if p.Name == name && len(ref.Args) == 0 {
			return p.Var(), nil
		}
	}
	if ref.Var != "" {
		return nil, errors.Errorf("type parameter %s is not in scope", ref.Var)
	}

	args := make([]types.Type, 0, len(ref.Args))
	for _, a := range ref.Args {
		arg, err := resolve(a, params)
		if err != nil {
			return nil, err
		}
		args = append(args, arg)
	}
	return types.Resolve(name, args...), nil
}

func resolveNamed(ref TypeRef, params []types.TypeParam) (*types.Named, error) {
	t, err := resolve(ref, params)
	if err != nil {
		return nil, err
	}
	named, ok := t.(*types.Named)
	if !ok {
		return nil, errors.Errorf("%v is not a declared type", t)
	}
	return named, nil
}

var forms = map[string]ast.Form{
	"expression": ast.SwitchExpression,
	"statement":  ast.SwitchStatement,
	"enhanced":   ast.EnhancedSwitchStatement,
	"instanceof": ast.Instanceof,
}

func (f *Fixture) buildSwitch(s SwitchDoc) (Switch, error) {
	form, ok := forms[s.Form]
	if s.Form == "" {
		form, ok = ast.SwitchExpression, true
	}
	if !ok {
		return Switch{}, errors.Errorf("unknown form %q", s.Form)
	}
	if s.Name == "" {
		return Switch{}, errors.New("switches need a name")
	}
	selector, err := resolve(s.Selector, nil)
	if err != nil {
		return Switch{}, errors.Wrap(err, "selector")
	}

	cases := make([]ast.Case, 0, len(s.Cases))
	for i, c := range s.Cases {
		pattern, err := f.buildPattern(c.Pattern)
		if err != nil {
			return Switch{}, errors.Wrapf(err, "case %d", i)
		}
		var guard *ast.Guard
		if c.Guard != nil {
			start := f.pos(c.Guard.line, c.Guard.column)
			guard = &ast.Guard{
				Range:  ast.Range{PosStart: start, PosEnd: start},
				Source: c.Guard.Source,
				Const:  c.Guard.Const,
			}
		}
		cases = append(cases, ast.Case{Pattern: pattern, Guard: guard})
	}

	list := ast.NewCaseList(form, selector, cases...)
	if s.Default {
		list = list.WithDefault()
	}
	if s.Null {
		list = list.WithNullCase()
	}
	return Switch{Name: s.Name, List: list, Inputs: s.Inputs}, nil
}

func (f *Fixture) buildPattern(p PatternDoc) (ast.Pattern, error) {
	start := f.pos(p.line, p.column)
	at := ast.Range{PosStart: start, PosEnd: start}

	switch {
	case p.Any:
		return &ast.TypePattern{Range: at, Binding: "_"}, nil
	case p.Var != nil:
		return &ast.TypePattern{Range: at, Binding: *p.Var}, nil
	case p.Type != nil:
		t, err := resolve(*p.Type, nil)
		if err != nil {
			return nil, err
		}
		if prim, ok := t.(types.Primitive); ok {
			return &ast.PrimitivePattern{Range: at, Kind: prim.Kind, Binding: p.Bind}, nil
		}
		return &ast.TypePattern{Range: at, Type: t, Binding: p.Bind}, nil
	}

	args := make([]types.Type, 0, len(p.Args))
	for _, a := range p.Args {
		arg, err := resolve(a, nil)
		if err != nil {
			return nil, err
		}
		args = append(args, arg)
	}
	components := make([]ast.Pattern, 0, len(p.Components))
	for i, c := range p.Components {
		component, err := f.buildPattern(c)
		if err != nil {
			return nil, errors.Wrapf(err, "component %d of %s", i, p.Record)
		}
		components = append(components, component)
	}
	rec := ast.Rec(types.Ref(p.Record, args...), components...)
	rec.Range = at
	return rec, nil
}
