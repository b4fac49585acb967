package javagen

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

// Generator generates a single Java source file from a grammar model. Every
// declaration is nested in one final wrapper class.
type Generator struct {
	PackageName string
	ClassName   string
	Filename    string
}

// Option is a function that configures Generator
type Option func(*Generator)

// WithPackageName sets the Java package of the generated class
func WithPackageName(name string) Option {
	return func(g *Generator) {
		g.PackageName = name
	}
}

// WithClassName sets the wrapper class name and the matching file name
func WithClassName(name string) Option {
	return func(g *Generator) {
		g.ClassName = name
		g.Filename = name + ".java"
	}
}

// WithConfig applies the java section of the configuration
func WithConfig(config apigen.LanguageConfig) Option {
	return func(g *Generator) {
		if config.Package != "" {
			g.PackageName = config.Package
		}

		if config.ClassName != "" {
			WithClassName(config.ClassName)(g)
		}

		if config.Filename != "" {
			g.Filename = config.Filename
		}
	}
}

// New creates a new Generator
func New(opts ...Option) *Generator {
	g := &Generator{
		PackageName: "com.turbopuffer.models",
		ClassName:   "Expressions",
		Filename:    "Expressions.java",
	}
	for _, opt := range opts {
		opt(g)
	}

	return g
}

// Target returns apigen.TargetJava
func (g *Generator) Target() apigen.Target {
	return apigen.TargetJava
}

// Emit renders the model into a Java source unit
func (g *Generator) Emit(m *grammar.Model) (*langcommon.Unit, error) {
	var buf bytes.Buffer

	if err := g.Generate(m, &buf); err != nil {
		return nil, err
	}

	return &langcommon.Unit{
		Target:   apigen.TargetJava,
		Filename: g.Filename,
		Comment:  "//",
		Content:  buf.Bytes(),
	}, nil
}

// Generate generates Java code and writes it to the writer
func (g *Generator) Generate(m *grammar.Model, w io.Writer) error {
	data, err := g.prepareTemplateData(m)
	if err != nil {
		return err
	}

	tmpl, err := template.New("java").Funcs(template.FuncMap{
		"quote":   langcommon.QuoteJSON,
		"javadoc": javadoc,
	}).Parse(javaTemplate)
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
	Package     string
	ClassName   string
	Enums       []enumDecl
	Unions      []unionDecl
	Records     []recordDecl
	Serializers []serializerData
}

type enumDecl struct {
	Name      string
	Doc       []string
	Constants []enumConst
}

type enumConst struct {
	Name  string
	Value string // Quoted wire value
}

type unionDecl struct {
	Name    string
	Doc     []string
	Extends string
	Permits string
}

type recordDecl struct {
	Name       string
	Doc        []string
	Components string
	Implements string
	Wire       string // Expression returned by toWire
	Builder    builderData
}

type builderData struct {
	Name     string
	Params   string
	Args     string
	MinRest  int
	RestName string
	WireName string
}

type serializerData struct {
	Name string
	Type string
}

func (g *Generator) prepareTemplateData(m *grammar.Model) (*templateData, error) {
	data := &templateData{
		Header:    langcommon.GeneratedHeader,
		Package:   g.PackageName,
		ClassName: g.ClassName,
	}

	for _, name := range m.ValueTypeNames() {
		v := m.ValueTypes[name]

		if v.Kind == grammar.KindNull {
			return nil, langcommon.Unsupported(apigen.TargetJava, name, "standalone null type")
		}

		if isEnum(v) {
			data.Enums = append(data.Enums, enumDeclFor(v))
		}
	}

	parents := langcommon.Parents(m, false)

	for _, name := range m.UnionNames() {
		u := m.Unions[name]

		if members := m.ValueMembers(grammar.Named(grammar.RefUnion, name)); len(members) > 0 {
			return nil, langcommon.Unsupported(apigen.TargetJava, name, "union with value type member %s", members[0])
		}

		members := langcommon.Members(m, u, false)
		if len(members) == 0 {
			return nil, langcommon.Unsupported(apigen.TargetJava, name, "union without members once droppable variants are omitted")
		}

		data.Unions = append(data.Unions, unionDecl{
			Name:    name,
			Doc:     docLines(u.Description),
			Extends: supertypes(parents[name]),
			Permits: strings.Join(members, ", "),
		})
	}

	for _, op := range langcommon.Operators(m, false) {
		record, err := recordDeclFor(m, op, supertypes(parents[op.Name]))
		if err != nil {
			return nil, err
		}

		data.Records = append(data.Records, *record)
	}

	for _, entry := range m.Entries() {
		typ, err := javaType(m, entry.Name, entry.Root)
		if err != nil {
			return nil, err
		}

		data.Serializers = append(data.Serializers, serializerData{
			Name: "serialize" + langcommon.PascalCase(entry.Name),
			Type: typ,
		})
	}

	return data, nil
}

func supertypes(parents []string) string {
	if len(parents) == 0 {
		return "Wire"
	}

	return strings.Join(parents, ", ")
}

func enumDeclFor(v *grammar.ValueType) enumDecl {
	decl := enumDecl{Name: v.Name, Doc: docLines(v.Description)}

	for _, e := range v.Enum {
		name := e.Title
		if name == "" {
			name = e.Value
		}

		decl.Constants = append(decl.Constants, enumConst{
			Name:  langcommon.Escape(langcommon.ScreamingSnakeCase(name), methodNames),
			Value: langcommon.QuoteJSON(e.Value),
		})
	}

	return decl
}

func recordDeclFor(m *grammar.Model, op *grammar.Operator, implements string) (*recordDecl, error) {
	record := &recordDecl{
		Name:       op.Name,
		Doc:        docLines(op.Description),
		Implements: implements,
	}
	builder := builderData{
		Name:     langcommon.Escape(langcommon.CamelCase(op.Name), methodNames),
		MinRest:  op.MinRest,
		WireName: op.Wire,
	}

	var components, params, args []string

	for _, p := range langcommon.Parameters(op, newNamer().Name) {
		typ, err := javaType(m, op.Name, p.Type)
		if err != nil {
			return nil, err
		}

		if p.Rest {
			components = append(components, "List<"+typ+"> "+p.Name)
			params = append(params, typ+"... "+p.Name)
			args = append(args, "Arrays.asList("+p.Name+")")
			builder.RestName = p.Name

			continue
		}

		components = append(components, typ+" "+p.Name)
		params = append(params, typ+" "+p.Name)
		args = append(args, p.Name)
	}

	record.Components = strings.Join(components, ", ")
	builder.Params = strings.Join(params, ", ")
	builder.Args = strings.Join(args, ", ")
	record.Builder = builder

	switch {
	case op.Keyed:
		record.Wire = fmt.Sprintf("Collections.singletonMap(%s, %s)", langcommon.QuoteJSON(op.Wire), newNamer().Name(op.Operands()[0].Name))
	case builder.RestName != "":
		items := append([]string{builder.RestName}, renderElements(langcommon.Elements(op, newNamer().Name))...)
		record.Wire = "tupleWithRest(" + strings.Join(items, ", ") + ")"
	default:
		record.Wire = "tuple(" + strings.Join(renderElements(langcommon.Elements(op, newNamer().Name)), ", ") + ")"
	}

	return record, nil
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
			items[i] = "tuple(" + strings.Join(renderElements(e.Group), ", ") + ")"
		}
	}

	return items
}

// javadoc renders description lines as a doc comment indented for a member
// of the wrapper class
func javadoc(lines []string) string {
	switch len(lines) {
	case 0:
		return ""
	case 1:
		return "    /** " + lines[0] + " */\n"
	}

	var b strings.Builder

	b.WriteString("    /**\n")

	for _, line := range lines {
		if line == "" {
			b.WriteString("     *\n")
		} else {
			b.WriteString("     * " + line + "\n")
		}
	}

	b.WriteString("     */\n")

	return b.String()
}
