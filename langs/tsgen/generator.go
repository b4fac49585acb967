package tsgen

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

// Generator generates TypeScript code from a grammar model
type Generator struct {
	Filename string
}

// Option is a function that configures Generator
type Option func(*Generator)

// WithFilename sets the suggested file name of the unit
func WithFilename(name string) Option {
	return func(g *Generator) {
		g.Filename = name
	}
}

// WithConfig applies the typescript section of the configuration
func WithConfig(config apigen.LanguageConfig) Option {
	return func(g *Generator) {
		if config.Filename != "" {
			g.Filename = config.Filename
		}
	}
}

// New creates a new Generator
func New(opts ...Option) *Generator {
	g := &Generator{
		Filename: "expressions.ts",
	}
	for _, opt := range opts {
		opt(g)
	}

	return g
}

// Target returns apigen.TargetTypescript
func (g *Generator) Target() apigen.Target {
	return apigen.TargetTypescript
}

// Emit renders the model into a TypeScript module unit
func (g *Generator) Emit(m *grammar.Model) (*langcommon.Unit, error) {
	var buf bytes.Buffer

	if err := g.Generate(m, &buf); err != nil {
		return nil, err
	}

	return &langcommon.Unit{
		Target:   apigen.TargetTypescript,
		Filename: g.Filename,
		Comment:  "//",
		Content:  buf.Bytes(),
	}, nil
}

// Generate generates TypeScript code and writes it to the writer
func (g *Generator) Generate(m *grammar.Model, w io.Writer) error {
	data, err := prepareTemplateData(m)
	if err != nil {
		return err
	}

	tmpl, err := template.New("typescript").Funcs(template.FuncMap{
		"join":  strings.Join,
		"quote": langcommon.QuoteJSON,
		"jsdoc": jsdoc,
	}).Parse(tsTemplate)
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
	Header      string
	Types       []typeData
	Builders    []builderData
	Serializers []serializerData
}

type typeData struct {
	Name string
	Doc  []string
	Type string
}

type builderData struct {
	Name     string
	Doc      []string
	Class    string
	Params   []string
	MinRest  int
	RestName string
	WireName string
	Value    string // Returned wire literal
}

type serializerData struct {
	Name string
	Type string
}

func prepareTemplateData(m *grammar.Model) (*templateData, error) {
	data := &templateData{Header: langcommon.GeneratedHeader}

	for _, name := range declNames(m) {
		var (
			decl *typeData
			err  error
		)

		switch {
		case m.ValueTypes[name] != nil:
			v := m.ValueTypes[name]
			decl = &typeData{Name: name, Doc: langcommon.CommentLines(v.Description)}
			decl.Type, err = valueType(name, v)
		case m.Unions[name] != nil:
			decl = unionType(m.Unions[name])
		case m.Operators[name] != nil:
			op := m.Operators[name]
			decl = &typeData{Name: name, Doc: langcommon.CommentLines(op.Description)}
			decl.Type, err = operatorType(op)
		}

		if err != nil {
			return nil, err
		}

		data.Types = append(data.Types, *decl)
	}

	for _, op := range langcommon.Operators(m, true) {
		builder, err := operatorBuilder(op)
		if err != nil {
			return nil, err
		}

		data.Builders = append(data.Builders, *builder)
	}

	for _, entry := range m.Entries() {
		data.Serializers = append(data.Serializers, serializerData{
			Name: "serialize" + langcommon.PascalCase(entry.Name),
			Type: entry.Root.String(),
		})
	}

	return data, nil
}

func unionType(u *grammar.Union) *typeData {
	members := make([]string, 0, len(u.Members))

	for _, member := range u.Members {
		members = append(members, member.String())
	}

	return &typeData{Name: u.Name, Doc: langcommon.CommentLines(u.Description), Type: strings.Join(members, " | ")}
}

// operatorType renders the wire shape of an operator as a readonly tuple or a
// single-key object type
func operatorType(op *grammar.Operator) (string, error) {
	if op.Keyed {
		typ, err := tsType(op.Name, op.Operands()[0].Type)
		if err != nil {
			return "", err
		}

		return fmt.Sprintf("{ readonly %s: %s }", langcommon.QuoteJSON(op.Wire), typ), nil
	}

	items, err := slotTypes(op.Name, op.Slots)
	if err != nil {
		return "", err
	}

	if op.Rest != nil {
		typ, err := tsType(op.Name, op.Rest.Type)
		if err != nil {
			return "", err
		}

		items = append(items, "..."+arrayOf(typ))
	}

	return "readonly [" + strings.Join(items, ", ") + "]", nil
}

func slotTypes(subject string, slots []grammar.Slot) ([]string, error) {
	items := make([]string, 0, len(slots))

	for _, s := range slots {
		switch s.Kind {
		case grammar.SlotConst:
			items = append(items, langcommon.QuoteJSON(s.Const))
		case grammar.SlotOperand:
			typ, err := tsType(subject, s.Operand.Type)
			if err != nil {
				return nil, err
			}

			items = append(items, typ)
		case grammar.SlotGroup:
			group, err := slotTypes(subject, s.Group)
			if err != nil {
				return nil, err
			}

			items = append(items, "readonly ["+strings.Join(group, ", ")+"]")
		}
	}

	return items, nil
}

func operatorBuilder(op *grammar.Operator) (*builderData, error) {
	builder := &builderData{
		Name:     langcommon.Escape(langcommon.CamelCase(op.Name), tsKeywords),
		Doc:      langcommon.CommentLines(op.Description),
		Class:    op.Name,
		MinRest:  op.MinRest,
		WireName: op.Wire,
	}

	for _, p := range langcommon.Parameters(op, newNamer().Name) {
		typ, err := tsType(op.Name, p.Type)
		if err != nil {
			return nil, err
		}

		if p.Rest {
			builder.Params = append(builder.Params, "..."+p.Name+": "+arrayOf(typ))
			builder.RestName = p.Name

			continue
		}

		builder.Params = append(builder.Params, p.Name+": "+typ)
	}

	if op.Keyed {
		builder.Value = fmt.Sprintf("{ %s: %s }", langcommon.QuoteJSON(op.Wire), newNamer().Name(op.Operands()[0].Name))

		return builder, nil
	}

	items := renderElements(langcommon.Elements(op, newNamer().Name))
	if builder.RestName != "" {
		items = append(items, "..."+builder.RestName)
	}

	builder.Value = "[" + strings.Join(items, ", ") + "]"

	return builder, nil
}

func renderElements(elements []langcommon.Element) []string {
	items := make([]string, len(elements))

	for i, e := range elements {
		switch {
		case e.Const != nil:
			items[i] = langcommon.QuoteJSON(*e.Const)
		case e.Operand != nil:
			items[i] = e.Operand.Name
		default:
			items[i] = "[" + strings.Join(renderElements(e.Group), ", ") + "]"
		}
	}

	return items
}

// jsdoc renders description lines as a doc block followed by a newline
func jsdoc(lines []string) string {
	switch len(lines) {
	case 0:
		return ""
	case 1:
		return "/** " + lines[0] + " */\n"
	}

	var b strings.Builder

	b.WriteString("/**\n")

	for _, line := range lines {
		if line == "" {
			b.WriteString(" *\n")
		} else {
			b.WriteString(" * " + line + "\n")
		}
	}

	b.WriteString(" */\n")

	return b.String()
}
