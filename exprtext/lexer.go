package exprtext

import (
	"fmt"
	"strconv"
	"unicode"
	"unicode/utf8"

	pc "github.com/shibukawa/parsercombinator"
	"github.com/shopspring/decimal"

	"github.com/turbopuffer/apigen"
	"github.com/turbopuffer/apigen/grammar"
)

type tokenKind int

const (
	tokenIdent tokenKind = iota + 1
	tokenString
	tokenNumber
	tokenParenOpen
	tokenParenClose
	tokenBracketOpen
	tokenBracketClose
	tokenComma
	tokenAt
	// tokenNode carries a parsed value produced by a transform
	tokenNode
)

type token struct {
	Kind   tokenKind
	Text   string // Identifier, unquoted string or number text
	Offset int
	Node   grammar.Node // Decoded literal, or the value a transform produced
}

var punctuation = map[rune]tokenKind{
	'(': tokenParenOpen,
	')': tokenParenClose,
	'[': tokenBracketOpen,
	']': tokenBracketClose,
	',': tokenComma,
	'@': tokenAt,
}

// tokenize splits call notation into parser tokens
func tokenize(src string) ([]pc.Token[token], error) {
	var tokens []pc.Token[token]

	emit := func(kind tokenKind, text, raw string, offset int, n grammar.Node) {
		tokens = append(tokens, pc.Token[token]{
			Type: "raw",
			Pos:  &pc.Pos{Line: 1, Col: offset + 1, Index: offset},
			Val:  token{Kind: kind, Text: text, Offset: offset, Node: n},
			Raw:  raw,
		})
	}

	for i := 0; i < len(src); {
		r, size := utf8.DecodeRuneInString(src[i:])

		switch {
		case unicode.IsSpace(r):
			i += size
		case punctuation[r] != 0:
			emit(punctuation[r], string(r), string(r), i, nil)
			i += size
		case r == '"':
			end, err := scanString(src, i)
			if err != nil {
				return nil, err
			}

			text, err := strconv.Unquote(src[i:end])
			if err != nil {
				return nil, syntaxError(i, "malformed string literal %s", src[i:end])
			}

			emit(tokenString, text, src[i:end], i, grammar.String(text))
			i = end
		case r == '-' || r == '+' || (r >= '0' && r <= '9'):
			end := scanNumber(src, i)

			d, err := decimal.NewFromString(src[i:end])
			if err != nil {
				return nil, syntaxError(i, "malformed number %s", src[i:end])
			}

			emit(tokenNumber, src[i:end], src[i:end], i, grammar.Number(d))
			i = end
		case r == '_' || r == '$' || unicode.IsLetter(r):
			end := scanIdent(src, i)
			emit(tokenIdent, src[i:end], src[i:end], i, nil)
			i = end
		default:
			return nil, syntaxError(i, "unexpected character %q", r)
		}
	}

	return tokens, nil
}

// scanString returns the offset just past the closing quote of the string starting at start
func scanString(src string, start int) (int, error) {
	for i := start + 1; i < len(src); i++ {
		switch src[i] {
		case '\\':
			i++
		case '"':
			return i + 1, nil
		}
	}

	return 0, syntaxError(start, "unterminated string literal")
}

func scanNumber(src string, start int) int {
	i := start + 1

	for i < len(src) {
		c := src[i]

		switch {
		case c >= '0' && c <= '9', c == '.', c == 'e', c == 'E':
		case (c == '-' || c == '+') && (src[i-1] == 'e' || src[i-1] == 'E'):
		default:
			return i
		}

		i++
	}

	return i
}

func scanIdent(src string, start int) int {
	i := start

	for i < len(src) {
		r, size := utf8.DecodeRuneInString(src[i:])
		if r != '_' && r != '$' && r != '.' && r != '-' && !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			break
		}

		i += size
	}

	return i
}

func syntaxError(offset int, format string, args ...any) error {
	return fmt.Errorf("%w: offset %d: %s", apigen.ErrInvalidExpression, offset, fmt.Sprintf(format, args...))
}
