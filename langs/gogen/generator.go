package gogen

import (
	"bytes"
	"fmt"
	"go/format"
	"io"
	"strconv"
	"strings"
	"text/template"

	"github.com/turbopuffer/apigen"
	"github.com/turbopuffer/apigen/grammar"
	"github.com/turbopuffer/apigen/langs/langcommon"
)

// Generator generates Go code from a grammar model
type Generator struct {
	PackageName string
	JSONImport  string // Import path of the package providing Marshal
	JSONAlias   string // Local name of the JSON import
	Filename    string
}

// Option is a function that configures Generator
type Option func(*Generator)

// WithPackageName sets the package name for generated code
func WithPackageName(name string) Option {
	return func(g *Generator) {
		g.PackageName = name
	}
}

// WithJSONImport sets the package used by the generated MarshalJSON methods
func WithJSONImport(path, alias string) Option {
	return func(g *Generator) {
		g.JSONImport = path
		g.JSONAlias = alias
	}
}

// WithFilename sets the suggested file name of the unit
func WithFilename(name string) Option {
	return func(g *Generator) {
		g.Filename = name
	}
}

// WithConfig applies the go section of the configuration
func WithConfig(config apigen.LanguageConfig) Option {
	return func(g *Generator) {
		if config.Package != "" {
			g.PackageName = config.Package
		}

		if config.JSONImport != "" {
			g.JSONImport = config.JSONImport
			g.JSONAlias = config.JSONAlias
		}

		if config.Filename != "" {
			g.Filename = config.Filename
		}
	}
}

// New creates a new Generator
func New(opts ...Option) *Generator {
	g := &Generator{
		PackageName: "turbopuffer",
		JSONImport:  "encoding/json",
		JSONAlias:   "json",
		Filename:    "expressions.go",
	}
	for _, opt := range opts {
		opt(g)
	}

	return g
}

// Target returns apigen.TargetGo
func (g *Generator) Target() apigen.Target {
	return apigen.TargetGo
}

// Emit renders the model into a formatted Go source unit
func (g *Generator) Emit(m *grammar.Model) (*langcommon.Unit, error) {
	var buf bytes.Buffer

	if err := g.Generate(m, &buf); err != nil {
		return nil, err
	}

	return &langcommon.Unit{
		Target:   apigen.TargetGo,
		Filename: g.Filename,
		Comment:  "//",
		Content:  buf.Bytes(),
	}, nil
}

// Generate generates Go code and writes it to the writer
func (g *Generator) Generate(m *grammar.Model, w io.Writer) error {
	data, err := g.prepareTemplateData(m)
	if err != nil {
		return err
	}

	tmpl, err := template.New("go").Funcs(template.FuncMap{
		"quote": strconv.Quote,
	}).Parse(goTemplate)
	if err != nil {
		return fmt.Errorf("failed to parse template: %w", err)
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return fmt.Errorf("failed to execute template: %w", err)
	}

	formatted, err := format.Source(buf.Bytes())
	if err != nil {
		return fmt.Errorf("failed to format generated code: %w", err)
	}

	_, err = w.Write(formatted)

	return err
}

type templateData struct {
	Header     string
	Package    string
	JSONImport string
	JSONAlias  string
	Decls      []declData
}

type declKind string

const (
	declEnum     declKind = "enum"
	declValue    declKind = "value"
	declUnion    declKind = "union"
	declOperator declKind = "operator"
)

type declData struct {
	Kind declKind
	Name string
	Doc  []string

	// Value types
	Type  string
	Enums []enumData

	// Unions: types implementing the sealed method
	Implementers []string

	// Operators
	Fields    []fieldData
	Rest      *fieldData
	Keyed     bool
	WireKey   string
	WireItems string // Rendered elements of the []any literal
}

type enumData struct {
	Name  string
	Value string
}

type fieldData struct {
	Name string
	Type string
}

func (g *Generator) prepareTemplateData(m *grammar.Model) (*templateData, error) {
	data := &templateData{
		Header:     langcommon.GeneratedHeader,
		Package:    g.PackageName,
		JSONImport: g.JSONImport,
		JSONAlias:  g.JSONAlias,
	}

	for _, name := range declNames(m) {
		var (
			decl *declData
			err  error
		)

		switch {
		case m.ValueTypes[name] != nil:
			decl, err = valueDecl(m.ValueTypes[name])
		case m.Unions[name] != nil:
			decl, err = unionDecl(m, m.Unions[name])
		case m.Operators[name] != nil:
			if m.Operators[name].Droppable {
				continue
			}

			decl, err = operatorDecl(m.Operators[name])
		}

		if err != nil {
			return nil, err
		}

		data.Decls = append(data.Decls, *decl)
	}

	return data, nil
}

func valueDecl(v *grammar.ValueType) (*declData, error) {
	decl := &declData{Kind: declValue, Name: v.Name, Doc: langcommon.CommentLines(v.Description)}

	if v.Kind == grammar.KindString && len(v.Enum) > 0 {
		decl.Kind = declEnum
		decl.Type = "string"

		for _, e := range v.Enum {
			name := e.Title
			if name == "" {
				name = v.Name + langcommon.PascalCase(e.Value)
			}

			decl.Enums = append(decl.Enums, enumData{Name: name, Value: strconv.Quote(e.Value)})
		}

		return decl, nil
	}

	if v.Kind == grammar.KindNull {
		return nil, langcommon.Unsupported(apigen.TargetGo, v.Name, "standalone null type")
	}

	typ, err := goValueType(v.Name, v)
	if err != nil {
		return nil, err
	}

	decl.Type = typ

	return decl, nil
}

func unionDecl(m *grammar.Model, u *grammar.Union) (*declData, error) {
	if members := m.ValueMembers(grammar.Named(grammar.RefUnion, u.Name)); len(members) > 0 {
		return nil, langcommon.Unsupported(apigen.TargetGo, u.Name, "union with value type member %s", members[0])
	}

	decl := &declData{Kind: declUnion, Name: u.Name, Doc: langcommon.CommentLines(u.Description)}

	for _, op := range m.Leaves(grammar.Named(grammar.RefUnion, u.Name)) {
		if !op.Droppable {
			decl.Implementers = append(decl.Implementers, op.Name)
		}
	}

	return decl, nil
}

func operatorDecl(op *grammar.Operator) (*declData, error) {
	decl := &declData{Kind: declOperator, Name: op.Name, Doc: langcommon.CommentLines(op.Description)}
	names := newFieldNamer()

	for _, p := range langcommon.Parameters(op, names.Name) {
		typ, err := goType(op.Name, p.Type)
		if err != nil {
			return nil, err
		}

		field := fieldData{Name: p.Name, Type: typ}

		if p.Rest {
			decl.Rest = &field
		} else {
			decl.Fields = append(decl.Fields, field)
		}
	}

	if op.Keyed {
		decl.Keyed = true
		decl.WireKey = strconv.Quote(op.Wire)

		return decl, nil
	}

	// Field names were assigned in wire order, so a fresh namer yields the same ones.
	decl.WireItems = renderElements(langcommon.Elements(op, newFieldNamer().Name))

	return decl, nil
}

func renderElements(elements []langcommon.Element) string {
	var b strings.Builder

	for _, e := range elements {
		switch {
		case e.Const != nil:
			b.WriteString(strconv.Quote(*e.Const))
		case e.Operand != nil:
			b.WriteString("v." + e.Operand.Name)
		default:
			b.WriteString("[]any{\n" + renderElements(e.Group) + "}")
		}

		b.WriteString(",\n")
	}

	return b.String()
}
