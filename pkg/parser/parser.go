// Package parser splits a SQL query with a WITH preamble into its CTE
// definitions and the trailing main query.
//
// The parser is deliberately not a SQL grammar: it tokenizes just enough
// structure to find CTE boundaries. CTE definitions are separated on
// commas at parenthesis depth zero, each body is captured between
// depth-balanced parens, and everything after the last definition is the
// main query. Input that is well-formed per this subset parses; anything
// else is undefined except for the explicit error cases below.
//
// Grammar of the supported subset:
//
//	query    → [WITH cte ("," cte)*] main
//	cte      → name AS "(" body ")"
//	main     → any trailing text (typically a SELECT)
package parser

import (
	"fmt"
	"strings"

	"github.com/leapstack-labs/sqlnest/pkg/token"
)

// CTE is a single WITH definition: the declared name and the raw body
// text between its parentheses.
type CTE struct {
	Name string
	Body string
	Pos  token.Position
}

// Statement is the result of splitting a query: the ordered CTE
// definitions and the trailing main query text.
type Statement struct {
	CTEs []*CTE
	Main string
}

// Parse cleans the input (see Clean) and splits it into CTE definitions
// and the main query.
//
// Input without a leading WITH yields a Statement with no CTEs and the
// cleaned text as Main, so queries without CTEs pass through unchanged.
// An unterminated CTE body or a malformed definition header returns a
// *ParseError.
func Parse(input string) (*Statement, error) {
	cleaned := Clean(input)
	toks := Tokenize(cleaned)

	if toks[0].Type != token.WITH {
		return &Statement{Main: cleaned}, nil
	}

	stmt := &Statement{}
	i := 1
	for {
		if toks[i].Type != token.IDENT {
			return nil, &ParseError{
				Pos:     toks[i].Pos,
				Message: fmt.Sprintf("expected CTE name, found %s", tokenDesc(toks[i])),
			}
		}
		name := toks[i].Literal
		namePos := toks[i].Pos
		i++

		if toks[i].Type != token.AS {
			return nil, &ParseError{
				Pos:     toks[i].Pos,
				Message: fmt.Sprintf("expected AS after CTE name %q, found %s", name, tokenDesc(toks[i])),
			}
		}
		i++

		if toks[i].Type != token.LPAREN {
			return nil, &ParseError{
				Pos:     toks[i].Pos,
				Message: fmt.Sprintf("expected ( after AS for CTE %q, found %s", name, tokenDesc(toks[i])),
			}
		}
		open := toks[i]
		i++

		// Scan to the matching close paren; bodies contain nested
		// parens (subqueries, function calls), so first-match would
		// truncate them.
		depth := 1
		for {
			switch toks[i].Type {
			case token.EOF:
				return nil, &ParseError{
					Pos:     open.Pos,
					Message: fmt.Sprintf("unterminated body for CTE %q", name),
				}
			case token.LPAREN:
				depth++
			case token.RPAREN:
				depth--
			}
			if depth == 0 {
				break
			}
			i++
		}

		body := strings.TrimSpace(cleaned[open.End:toks[i].Pos.Offset])
		stmt.CTEs = append(stmt.CTEs, &CTE{Name: name, Body: body, Pos: namePos})
		i++ // past the close paren

		if toks[i].Type == token.COMMA {
			i++
			continue
		}
		break
	}

	if toks[i].Type != token.EOF {
		stmt.Main = strings.TrimSpace(cleaned[toks[i].Pos.Offset:])
	}
	return stmt, nil
}

// tokenDesc describes a token for error messages.
func tokenDesc(t token.Token) string {
	if t.Type == token.EOF {
		return "end of input"
	}
	return fmt.Sprintf("%q", t.Literal)
}
