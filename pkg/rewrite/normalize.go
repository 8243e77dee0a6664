package rewrite

import (
	"strings"

	"github.com/leapstack-labs/sqlnest/pkg/parser"
	"github.com/leapstack-labs/sqlnest/pkg/token"
)

// normalizeCrossJoins replaces the shorthand comma in a FROM clause with
// an explicit cross join: "from a, b" becomes "from a cross join b".
//
// Only commas inside a FROM clause at the clause's own parenthesis depth
// are touched; select lists, function arguments and subqueries keep
// theirs. A FROM clause ends at the next clause keyword at the same
// depth or at the enclosing close paren.
func normalizeCrossJoins(text string) string {
	toks := parser.Tokenize(text)

	// One frame per parenthesis level; tracks whether the scan is
	// currently inside that level's FROM clause.
	stack := []bool{false}

	var b strings.Builder
	last := 0

	for _, t := range toks {
		switch t.Type {
		case token.LPAREN:
			stack = append(stack, false)
		case token.RPAREN:
			if len(stack) > 1 {
				stack = stack[:len(stack)-1]
			}
		case token.FROM:
			stack[len(stack)-1] = true
		case token.SELECT, token.WHERE, token.GROUP, token.ORDER, token.HAVING,
			token.LIMIT, token.OFFSET, token.UNION, token.EXCEPT, token.INTERSECT,
			token.SEMICOLON:
			stack[len(stack)-1] = false
		case token.COMMA:
			if stack[len(stack)-1] {
				b.WriteString(strings.TrimRight(text[last:t.Pos.Offset], " \t"))
				b.WriteString(" cross join")
				last = t.End
				if last < len(text) && text[last] != ' ' && text[last] != '\n' {
					b.WriteByte(' ')
				}
			}
		}
	}

	b.WriteString(text[last:])
	return b.String()
}

// layoutClauses breaks a query onto one line per clause: a newline is
// inserted before FROM, JOIN (including its modifiers), ON, WHERE and
// the other clause starters. Output is deterministic regardless of how
// the input was line-wrapped, which keeps nested indentation stable.
func layoutClauses(text string) string {
	toks := parser.Tokenize(text)

	var b strings.Builder
	last := 0

	for i := 0; i < len(toks) && toks[i].Type != token.EOF; i++ {
		t := toks[i]
		if t.Pos.Offset == 0 || !startsClause(toks, i) {
			continue
		}
		b.WriteString(strings.TrimRight(text[last:t.Pos.Offset], " \t\n"))
		b.WriteByte('\n')
		last = t.Pos.Offset
	}

	b.WriteString(text[last:])
	return b.String()
}

// startsClause reports whether the token at index i should begin a line.
func startsClause(toks []token.Token, i int) bool {
	switch toks[i].Type {
	case token.FROM, token.WHERE, token.GROUP, token.ORDER, token.HAVING,
		token.LIMIT, token.OFFSET, token.UNION, token.EXCEPT, token.INTERSECT,
		token.ON, token.SEMICOLON:
		return true
	case token.JOIN:
		// A modifier already started the line
		return i == 0 || !joinModifier(toks[i-1].Type)
	case token.CROSS, token.NATURAL, token.INNER:
		return true
	case token.LEFT, token.RIGHT, token.FULL:
		// left(...) and right(...) are functions, not joins
		return toks[i+1].Type != token.LPAREN
	default:
		return false
	}
}

// joinModifier reports whether t modifies a following JOIN keyword.
func joinModifier(t token.Type) bool {
	switch t {
	case token.CROSS, token.NATURAL, token.INNER, token.OUTER,
		token.LEFT, token.RIGHT, token.FULL:
		return true
	}
	return false
}
