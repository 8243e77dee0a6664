package parser

import (
	"fmt"

	"github.com/leapstack-labs/sqlnest/pkg/token"
)

// ParseError represents a structural error in the WITH preamble, such as
// an unterminated CTE body or a missing AS keyword.
type ParseError struct {
	Pos     token.Position
	Message string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse error at line %d, column %d: %s", e.Pos.Line, e.Pos.Column, e.Message)
}
