package pygen

import (
	"bytes"
	"fmt"
	"io"
	"strings"
	"text/template"

	"github.com/turbopuffer/apigen"
	"github.com/turbopuffer/apigen/grammar"
	"github.com/turbopuffer/apigen/langs/langcommon"
)

// Generator generates Python code from a grammar model
type Generator struct {
	ModuleDoc string // Module docstring; omitted when empty
	Filename  string
}

// Option is a function that configures Generator
type Option func(*Generator)

// WithModuleDoc sets the module docstring
func WithModuleDoc(doc string) Option {
	return func(g *Generator) {
		g.ModuleDoc = doc
	}
}

// WithFilename sets the suggested file name of the unit
func WithFilename(name string) Option {
	return func(g *Generator) {
		g.Filename = name
	}
}

// WithConfig applies the python section of the configuration
func WithConfig(config apigen.LanguageConfig) Option {
	return func(g *Generator) {
		if config.Package != "" {
			g.ModuleDoc = fmt.Sprintf("Expression types for %s.", config.Package)
		}

		if config.Filename != "" {
			g.Filename = config.Filename
		}
	}
}

// New creates a new Generator
func New(opts ...Option) *Generator {
	g := &Generator{
		Filename: "expressions.py",
	}
	for _, opt := range opts {
		opt(g)
	}

	return g
}

// Target returns apigen.TargetPython
func (g *Generator) Target() apigen.Target {
	return apigen.TargetPython
}

// Emit renders the model into a Python module unit
func (g *Generator) Emit(m *grammar.Model) (*langcommon.Unit, error) {
	var buf bytes.Buffer

	if err := g.Generate(m, &buf); err != nil {
		return nil, err
	}

	return &langcommon.Unit{
		Target:   apigen.TargetPython,
		Filename: g.Filename,
		Comment:  "#",
		Content:  buf.Bytes(),
	}, nil
}

// Generate generates Python code and writes it to the writer
func (g *Generator) Generate(m *grammar.Model, w io.Writer) error {
	data, err := g.prepareTemplateData(m)
	if err != nil {
		return err
	}

	tmpl, err := template.New("python").Funcs(getTemplateFuncs()).Parse(pythonTemplate)
	if err != nil {
		return fmt.Errorf("failed to parse template: %w", err)
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return fmt.Errorf("failed to execute template: %w", err)
	}

	_, err = w.Write(buf.Bytes())

	return err
}

type templateData struct {
	Header    string
	ModuleDoc string
	Typing    []string
	Aliases   []aliasData
	Classes   []classData
	Unions    []aliasData
	Builders  []builderData
}

type aliasData struct {
	Name string
	Doc  []string
	Type string
}

type classData struct {
	Name   string
	Doc    []string
	Fields []fieldData
	Wire   string // Expression returned by to_wire
}

type fieldData struct {
	Name string
	Type string
}

type builderData struct {
	Name     string
	Class    string
	Params   []string // Rendered parameters
	Args     []string // Rendered constructor arguments
	MinRest  int
	RestName string
	WireName string
}

func (g *Generator) prepareTemplateData(m *grammar.Model) (*templateData, error) {
	types := newTypeMapper()
	types.typing["Any"] = true

	data := &templateData{
		Header:    langcommon.GeneratedHeader,
		ModuleDoc: g.ModuleDoc,
	}

	for _, name := range m.ValueTypeNames() {
		v := m.ValueTypes[name]

		hint, err := types.valueHint(v, true)
		if err != nil {
			return nil, err
		}

		data.Aliases = append(data.Aliases, aliasData{Name: name, Doc: langcommon.CommentLines(v.Description), Type: hint})
	}

	for _, op := range langcommon.Operators(m, true) {
		class, builder, err := operatorData(types, op)
		if err != nil {
			return nil, err
		}

		data.Classes = append(data.Classes, *class)
		data.Builders = append(data.Builders, *builder)
	}

	for _, name := range m.UnionNames() {
		u := m.Unions[name]

		members := make([]string, 0, len(u.Members))

		for _, member := range u.Members {
			hint, err := types.hint(member, true)
			if err != nil {
				return nil, err
			}

			members = append(members, hint)
		}

		types.typing["Union"] = true

		data.Unions = append(data.Unions, aliasData{
			Name: name,
			Doc:  langcommon.CommentLines(u.Description),
			Type: "Union[" + strings.Join(members, ", ") + "]",
		})
	}

	data.Typing = types.imports()

	return data, nil
}

func operatorData(types *typeMapper, op *grammar.Operator) (*classData, *builderData, error) {
	class := &classData{Name: op.Name, Doc: langcommon.CommentLines(op.Description)}
	builder := &builderData{
		Name:     langcommon.Escape(langcommon.SnakeCase(op.Name), moduleNames),
		Class:    op.Name,
		MinRest:  op.MinRest,
		WireName: op.Wire,
	}

	for _, p := range langcommon.Parameters(op, newNamer().Name) {
		hint, err := types.hint(p.Type, false)
		if err != nil {
			return nil, nil, err
		}

		if p.Rest {
			types.typing["Tuple"] = true

			class.Fields = append(class.Fields, fieldData{Name: p.Name, Type: "Tuple[" + hint + ", ...]"})
			builder.Params = append(builder.Params, "*"+p.Name+": "+hint)
			builder.Args = append(builder.Args, "tuple("+p.Name+")")
			builder.RestName = p.Name

			continue
		}

		class.Fields = append(class.Fields, fieldData{Name: p.Name, Type: hint})
		builder.Params = append(builder.Params, p.Name+": "+hint)
		builder.Args = append(builder.Args, p.Name)
	}

	switch {
	case op.Keyed:
		class.Wire = fmt.Sprintf("{%s: _wire(self.%s)}", langcommon.QuoteJSON(op.Wire), class.Fields[0].Name)
	default:
		parts := renderElements(langcommon.Elements(op, newNamer().Name))

		if builder.RestName != "" {
			parts = append(parts, fmt.Sprintf("*(_wire(item) for item in self.%s)", builder.RestName))
		}

		class.Wire = "[" + strings.Join(parts, ", ") + "]"
	}

	return class, builder, nil
}

func renderElements(elements []langcommon.Element) []string {
	parts := make([]string, len(elements))

	for i, e := range elements {
		switch {
		case e.Const != nil:
			parts[i] = langcommon.QuoteJSON(*e.Const)
		case e.Operand != nil:
			parts[i] = "_wire(self." + e.Operand.Name + ")"
		default:
			parts[i] = "[" + strings.Join(renderElements(e.Group), ", ") + "]"
		}
	}

	return parts
}
