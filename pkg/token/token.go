// Package token defines the lexical token types for the SQL subset that
// SQLNest needs to recognize: enough structure to locate WITH preambles,
// parenthesized CTE bodies, and FROM/JOIN table references.
package token

import "fmt"

// Type identifies the kind of a lexical token.
type Type int32

const (
	// Special tokens
	EOF Type = iota
	ILLEGAL

	// Literals
	IDENT  // identifier
	NUMBER // 123, 45.67, 1e10
	STRING // 'hello'

	// Operators and punctuation
	PLUS      // +
	MINUS     // -
	STAR      // *
	SLASH     // /
	PERCENT   // %
	DPIPE     // ||
	EQ        // =
	NE        // != or <>
	LT        // <
	GT        // >
	LE        // <=
	GE        // >=
	DOT       // .
	COMMA     // ,
	LPAREN    // (
	RPAREN    // )
	LBRACKET  // [
	RBRACKET  // ]
	COLON     // :
	SEMICOLON // ;

	// Keywords (alphabetical)
	ALL
	AND
	AS
	ASC
	BETWEEN
	BY
	CASE
	CAST
	CROSS
	DESC
	DISTINCT
	ELSE
	END
	EXCEPT
	FALSE
	FROM
	FULL
	GROUP
	HAVING
	IN
	INNER
	INTERSECT
	IS
	JOIN
	LATERAL
	LEFT
	LIKE
	LIMIT
	NATURAL
	NOT
	NULL
	OFFSET
	ON
	OR
	ORDER
	OUTER
	RECURSIVE
	RIGHT
	SELECT
	THEN
	TRUE
	UNION
	USING
	WHEN
	WHERE
	WITH
)

// String returns a human-readable representation of the token type.
func (t Type) String() string {
	if name, ok := tokenNames[t]; ok {
		return name
	}
	return fmt.Sprintf("TOKEN(%d)", t)
}

var tokenNames = map[Type]string{
	EOF:     "EOF",
	ILLEGAL: "ILLEGAL",

	IDENT:  "IDENT",
	NUMBER: "NUMBER",
	STRING: "STRING",

	PLUS:      "+",
	MINUS:     "-",
	STAR:      "*",
	SLASH:     "/",
	PERCENT:   "%",
	DPIPE:     "||",
	EQ:        "=",
	NE:        "!=",
	LT:        "<",
	GT:        ">",
	LE:        "<=",
	GE:        ">=",
	DOT:       ".",
	COMMA:     ",",
	LPAREN:    "(",
	RPAREN:    ")",
	LBRACKET:  "[",
	RBRACKET:  "]",
	COLON:     ":",
	SEMICOLON: ";",

	ALL:       "ALL",
	AND:       "AND",
	AS:        "AS",
	ASC:       "ASC",
	BETWEEN:   "BETWEEN",
	BY:        "BY",
	CASE:      "CASE",
	CAST:      "CAST",
	CROSS:     "CROSS",
	DESC:      "DESC",
	DISTINCT:  "DISTINCT",
	ELSE:      "ELSE",
	END:       "END",
	EXCEPT:    "EXCEPT",
	FALSE:     "FALSE",
	FROM:      "FROM",
	FULL:      "FULL",
	GROUP:     "GROUP",
	HAVING:    "HAVING",
	IN:        "IN",
	INNER:     "INNER",
	INTERSECT: "INTERSECT",
	IS:        "IS",
	JOIN:      "JOIN",
	LATERAL:   "LATERAL",
	LEFT:      "LEFT",
	LIKE:      "LIKE",
	LIMIT:     "LIMIT",
	NATURAL:   "NATURAL",
	NOT:       "NOT",
	NULL:      "NULL",
	OFFSET:    "OFFSET",
	ON:        "ON",
	OR:        "OR",
	ORDER:     "ORDER",
	OUTER:     "OUTER",
	RECURSIVE: "RECURSIVE",
	RIGHT:     "RIGHT",
	SELECT:    "SELECT",
	THEN:      "THEN",
	TRUE:      "TRUE",
	UNION:     "UNION",
	USING:     "USING",
	WHEN:      "WHEN",
	WHERE:     "WHERE",
	WITH:      "WITH",
}

// keywords maps lowercase keyword strings to their token types.
var keywords = map[string]Type{
	"all":       ALL,
	"and":       AND,
	"as":        AS,
	"asc":       ASC,
	"between":   BETWEEN,
	"by":        BY,
	"case":      CASE,
	"cast":      CAST,
	"cross":     CROSS,
	"desc":      DESC,
	"distinct":  DISTINCT,
	"else":      ELSE,
	"end":       END,
	"except":    EXCEPT,
	"false":     FALSE,
	"from":      FROM,
	"full":      FULL,
	"group":     GROUP,
	"having":    HAVING,
	"in":        IN,
	"inner":     INNER,
	"intersect": INTERSECT,
	"is":        IS,
	"join":      JOIN,
	"lateral":   LATERAL,
	"left":      LEFT,
	"like":      LIKE,
	"limit":     LIMIT,
	"natural":   NATURAL,
	"not":       NOT,
	"null":      NULL,
	"offset":    OFFSET,
	"on":        ON,
	"or":        OR,
	"order":     ORDER,
	"outer":     OUTER,
	"recursive": RECURSIVE,
	"right":     RIGHT,
	"select":    SELECT,
	"then":      THEN,
	"true":      TRUE,
	"union":     UNION,
	"using":     USING,
	"when":      WHEN,
	"where":     WHERE,
	"with":      WITH,
}

// LookupIdent returns the token type for the given identifier.
// If the identifier is a keyword, the keyword token type is returned.
// Otherwise, IDENT is returned.
func LookupIdent(ident string) Type {
	if tok, ok := keywords[ident]; ok {
		return tok
	}
	return IDENT
}

// IsKeyword returns true if the token type is a keyword.
func IsKeyword(t Type) bool {
	return t >= ALL && t <= WITH
}

// Token represents a lexical token with position information.
// End is the byte offset just past the token in the source text, so
// source[Pos.Offset:End] covers the token for unquoted tokens.
type Token struct {
	Type    Type
	Literal string
	Pos     Position
	End     int
}
