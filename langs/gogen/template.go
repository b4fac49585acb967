package gogen

const goTemplate = `// {{ .Header }}

package {{ .Package }}

import {{ .JSONAlias }} {{ quote .JSONImport }}
{{ range .Decls }}
{{- if eq .Kind "enum" }}
{{ template "doc" . }}type {{ .Name }} {{ .Type }}
{{ $enum := .Name }}
const (
{{- range .Enums }}
	{{ .Name }} {{ $enum }} = {{ .Value }}
{{- end }}
)
{{ else if eq .Kind "value" }}
{{ template "doc" . }}type {{ .Name }} {{ .Type }}
{{ else if eq .Kind "union" }}
{{ template "doc" . }}type {{ .Name }} interface {
	sealed_{{ .Name }}()
}
{{ $union := .Name }}
{{- range .Implementers }}
func (v {{ . }}) sealed_{{ $union }}() {}
{{- end }}
{{ else }}
{{ template "doc" . }}type {{ .Name }} struct {
{{- range .Fields }}
	{{ .Name }} {{ .Type }}
{{- end }}
{{- with .Rest }}
	{{ .Name }} []{{ .Type }}
{{- end }}
}

func New{{ .Name }}(
{{- range .Fields }}
	{{ .Name }} {{ .Type }},
{{- end }}
{{- with .Rest }}
	{{ .Name }} ...{{ .Type }},
{{- end }}
) {{ .Name }} {
	return {{ .Name }}{
{{- range .Fields }}
		{{ .Name }}: {{ .Name }},
{{- end }}
{{- with .Rest }}
		{{ .Name }}: {{ .Name }},
{{- end }}
	}
}

func (v {{ .Name }}) MarshalJSON() ([]byte, error) {
{{- if .Keyed }}
	return {{ $.JSONAlias }}.Marshal(map[string]any{
		{{ .WireKey }}: v.{{ (index .Fields 0).Name }},
	})
{{- else if .Rest }}
	wire := []any{
{{ .WireItems }}	}
	for _, item := range v.{{ .Rest.Name }} {
		wire = append(wire, item)
	}

	return {{ $.JSONAlias }}.Marshal(wire)
{{- else }}
	return {{ $.JSONAlias }}.Marshal([]any{
{{ .WireItems }}	})
{{- end }}
}
{{ end }}
{{- end }}
{{- define "doc" }}
{{- range .Doc }}//{{ if . }} {{ . }}{{ end }}
{{ end }}
{{- end }}
`
