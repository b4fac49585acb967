package pygen

const pythonTemplate = `# {{ .Header }}
{{- if .ModuleDoc }}
"""{{ .ModuleDoc }}"""
{{- end }}

from __future__ import annotations

import json
from dataclasses import dataclass
from typing import {{ join .Typing ", " }}
{{- range .Aliases }}

{{ range .Doc }}{{ comment . }}
{{ end }}{{ .Name }} = {{ .Type }}
{{- end }}
{{- range .Classes }}


@dataclass(frozen=True)
class {{ .Name }}:
{{- if .Doc }}
    """{{ docstring .Doc }}"""
{{- end }}
{{- range .Fields }}
    {{ .Name }}: {{ .Type }}
{{- end }}

    def to_wire(self) -> Any:
        return {{ .Wire }}
{{- end }}
{{- range .Unions }}


{{ range .Doc }}{{ comment . }}
{{ end }}{{ .Name }} = {{ .Type }}
{{- end }}
{{- range .Builders }}


def {{ .Name }}({{ join .Params ", " }}) -> {{ .Class }}:
{{- if gt .MinRest 0 }}
    if len({{ .RestName }}) < {{ .MinRest }}:
        raise ValueError({{ quote (printf "%s takes at least %d argument(s) for %s" .WireName .MinRest .RestName) }})
{{- end }}
    return {{ .Class }}({{ join .Args ", " }})
{{- end }}


def _wire(value: Any) -> Any:
    if hasattr(value, "to_wire"):
        return value.to_wire()
    if isinstance(value, (list, tuple)):
        return [_wire(item) for item in value]
    return value


def serialize(expr: Any) -> str:
    """Serializes an expression to its compact JSON wire form."""
    return json.dumps(_wire(expr), separators=(",", ":"), ensure_ascii=False)
`
