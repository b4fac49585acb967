// Package exprtext reads expressions written in call notation, the same
// notation grammar.Node values print in:
//
//	And(Eq(status, "active"), Eq(count, 5))
//
// Bare identifiers are field references; @"name" quotes field names that are
// not identifiers. Vectors are written in brackets.
package exprtext

import (
	"errors"
	"fmt"

	pc "github.com/shibukawa/parsercombinator"

	"github.com/turbopuffer/apigen"
	"github.com/turbopuffer/apigen/grammar"
)

var (
	ident        = kind(tokenIdent)
	stringLit    = kind(tokenString)
	numberLit    = kind(tokenNumber)
	parenOpen    = pc.Drop(kind(tokenParenOpen))
	parenClose   = pc.Drop(kind(tokenParenClose))
	bracketClose = pc.Drop(kind(tokenBracketClose))
	comma        = pc.Drop(kind(tokenComma))

	expression pc.Parser[token]
	document   pc.Parser[token]
)

func init() {
	value := pc.Lazy(func() pc.Parser[token] { return expression })
	list := pc.Optional(pc.Seq(value, pc.ZeroOrMore("arguments", pc.Seq(comma, value))))

	call := pc.Trans(pc.Seq(ident, parenOpen, list, parenClose), func(pctx *pc.ParseContext[token], tokens []pc.Token[token]) ([]pc.Token[token], error) {
		return nodeToken(tokens[0], grammar.NewCall(tokens[0].Val.Text, nodes(tokens[1:])...)), nil
	})

	vector := pc.Trans(pc.Seq(kind(tokenBracketOpen), list, bracketClose), func(pctx *pc.ParseContext[token], tokens []pc.Token[token]) ([]pc.Token[token], error) {
		return nodeToken(tokens[0], grammar.Vector(nodes(tokens[1:])...)), nil
	})

	quotedField := pc.Trans(pc.Seq(kind(tokenAt), stringLit), func(pctx *pc.ParseContext[token], tokens []pc.Token[token]) ([]pc.Token[token], error) {
		return nodeToken(tokens[0], grammar.Field(tokens[1].Val.Text)), nil
	})

	word := pc.Trans(ident, func(pctx *pc.ParseContext[token], tokens []pc.Token[token]) ([]pc.Token[token], error) {
		return nodeToken(tokens[0], keywordOrField(tokens[0].Val.Text)), nil
	})

	// The lexer already decoded string and number literals.
	literal := pc.Trans(pc.Or(stringLit, numberLit), func(pctx *pc.ParseContext[token], tokens []pc.Token[token]) ([]pc.Token[token], error) {
		return nodeToken(tokens[0], tokens[0].Val.Node), nil
	})

	expression = pc.Or(call, vector, quotedField, word, literal)
	document = pc.Seq(expression, pc.EOS[token]())
}

// kind matches one raw token of the given kind
func kind(k tokenKind) pc.Parser[token] {
	return func(pctx *pc.ParseContext[token], tokens []pc.Token[token]) (int, []pc.Token[token], error) {
		if len(tokens) > 0 && tokens[0].Val.Kind == k {
			return 1, tokens[:1], nil
		}

		return 0, nil, pc.ErrNotMatch
	}
}

func nodeToken(at pc.Token[token], n grammar.Node) []pc.Token[token] {
	return []pc.Token[token]{{
		Type: "node",
		Pos:  at.Pos,
		Val:  token{Kind: tokenNode, Offset: at.Val.Offset, Node: n},
	}}
}

func nodes(tokens []pc.Token[token]) []grammar.Node {
	out := make([]grammar.Node, 0, len(tokens))
	for _, t := range tokens {
		out = append(out, t.Val.Node)
	}

	return out
}

func keywordOrField(word string) grammar.Node {
	switch word {
	case "true":
		return grammar.Bool(true)
	case "false":
		return grammar.Bool(false)
	case "null":
		return grammar.Null()
	default:
		return grammar.Field(word)
	}
}

// Parse reads one expression in call notation. Operator names are not checked;
// pass the result to grammar.Resolve or use ParseEntry.
func Parse(src string) (grammar.Node, error) {
	tokens, err := tokenize(src)
	if err != nil {
		return nil, err
	}

	if len(tokens) == 0 {
		return nil, fmt.Errorf("%w: empty expression", apigen.ErrInvalidExpression)
	}

	pctx := pc.NewParseContext[token]()

	consumed, parsed, err := document(pctx, tokens)
	if err != nil {
		if errors.Is(err, apigen.ErrInvalidExpression) {
			return nil, err
		}

		offset := len(src)
		if consumed < len(tokens) {
			offset = tokens[consumed].Val.Offset
		}

		return nil, syntaxError(offset, "expected an operator call, vector, field or literal")
	}

	return parsed[0].Val.Node, nil
}

// ParseEntry reads an expression and resolves it against one of the model's entry points
func ParseEntry(m *grammar.Model, entry grammar.Entry, src string) (grammar.Node, error) {
	n, err := Parse(src)
	if err != nil {
		return nil, err
	}

	return grammar.Resolve(m, entry.Root, n)
}
