package tsgen

const tsTemplate = `// {{ .Header }}
{{ range .Types }}
{{ jsdoc .Doc }}export type {{ .Name }} = {{ .Type }};
{{ end }}
{{- range .Builders }}
{{ jsdoc .Doc }}export function {{ .Name }}({{ join .Params ", " }}): {{ .Class }} {
{{- if gt .MinRest 0 }}
  if ({{ .RestName }}.length < {{ .MinRest }}) {
    throw new Error({{ quote (printf "%s takes at least %d argument(s) for %s" .WireName .MinRest .RestName) }});
  }
{{- end }}
  return {{ .Value }};
}
{{ end }}
{{- range .Serializers }}
export function {{ .Name }}(expr: {{ .Type }}): string {
  return JSON.stringify(expr);
}
{{ end -}}
`
