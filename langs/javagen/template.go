package javagen

const javaTemplate = `// {{ .Header }}

package {{ .Package }};

import java.math.BigDecimal;
import java.util.ArrayList;
import java.util.Arrays;
import java.util.Collections;
import java.util.List;
import java.util.Map;

public final class {{ .ClassName }} {
    private {{ .ClassName }}() {}

    /** A value with a JSON wire form. */
    public interface Wire {
        Object toWire();
    }
{{- range .Enums }}

{{ javadoc .Doc }}    public enum {{ .Name }} implements Wire {
{{- range $i, $c := .Constants }}{{ if $i }},{{ end }}
        {{ $c.Name }}({{ $c.Value }})
{{- end }};

        private final String value;

        {{ .Name }}(String value) {
            this.value = value;
        }

        @Override
        public Object toWire() {
            return value;
        }
    }
{{- end }}
{{- range .Unions }}

{{ javadoc .Doc }}    public sealed interface {{ .Name }} extends {{ .Extends }} permits {{ .Permits }} {}
{{- end }}
{{- range .Records }}
{{- $record := .Name }}

{{ javadoc .Doc }}    public record {{ .Name }}({{ .Components }}) implements {{ .Implements }} {
        @Override
        public Object toWire() {
            return {{ .Wire }};
        }
    }
{{- with .Builder }}

    public static {{ $record }} {{ .Name }}({{ .Params }}) {
{{- if gt .MinRest 0 }}
        if ({{ .RestName }}.length < {{ .MinRest }}) {
            throw new IllegalArgumentException({{ quote (printf "%s takes at least %d argument(s) for %s" .WireName .MinRest .RestName) }});
        }
{{- end }}
        return new {{ $record }}({{ .Args }});
    }
{{- end }}
{{- end }}
{{- range .Serializers }}

    public static String {{ .Name }}({{ .Type }} expr) {
        return toJson(expr);
    }
{{- end }}

    static List<Object> tuple(Object... items) {
        return new ArrayList<>(Arrays.asList(items));
    }

    static List<Object> tupleWithRest(List<?> rest, Object... items) {
        List<Object> out = tuple(items);
        out.addAll(rest);
        return out;
    }

    /** Writes a value as compact JSON. */
    public static String toJson(Object value) {
        StringBuilder out = new StringBuilder();
        writeJson(out, value, "$");
        return out.toString();
    }

    private static void writeJson(StringBuilder out, Object value, String path) {
        if (value instanceof Wire wire) {
            writeJson(out, wire.toWire(), path);
        } else if (value == null) {
            out.append("null");
        } else if (value instanceof String s) {
            writeString(out, s);
        } else if (value instanceof Boolean b) {
            out.append(b.booleanValue());
        } else if (value instanceof Double || value instanceof Float) {
            double d = ((Number) value).doubleValue();
            if (Double.isNaN(d) || Double.isInfinite(d)) {
                throw new IllegalArgumentException("cannot serialize non-finite number " + value + " at " + path);
            }
            out.append(new BigDecimal(value.toString()).stripTrailingZeros().toPlainString());
        } else if (value instanceof Number n) {
            out.append(n);
        } else if (value instanceof Map<?, ?> map) {
            out.append('{');
            boolean first = true;
            for (Map.Entry<?, ?> entry : map.entrySet()) {
                if (!first) {
                    out.append(',');
                }
                first = false;
                writeString(out, String.valueOf(entry.getKey()));
                out.append(':');
                writeJson(out, entry.getValue(), path + "." + entry.getKey());
            }
            out.append('}');
        } else if (value instanceof Iterable<?> items) {
            out.append('[');
            int index = 0;
            for (Object item : items) {
                if (index > 0) {
                    out.append(',');
                }
                writeJson(out, item, path + "[" + index + "]");
                index++;
            }
            out.append(']');
        } else {
            throw new IllegalArgumentException("cannot serialize " + value.getClass().getName() + " at " + path);
        }
    }

    private static void writeString(StringBuilder out, String s) {
        out.append('"');
        for (int i = 0; i < s.length(); i++) {
            char c = s.charAt(i);
            switch (c) {
                case '"' -> out.append("\\\"");
                case '\\' -> out.append("\\\\");
                case '\n' -> out.append("\\n");
                case '\r' -> out.append("\\r");
                case '\t' -> out.append("\\t");
                default -> {
                    if (c < 0x20) {
                        out.append(String.format("\\u%04x", (int) c));
                    } else {
                        out.append(c);
                    }
                }
            }
        }
        out.append('"');
    }
}
`
