package rewrite

import (
	"fmt"
	"strings"
)

// CycleError reports a cycle among CTE definitions. Path starts and ends
// on the same CTE name.
type CycleError struct {
	Path []string
}

func (e *CycleError) Error() string {
	return fmt.Sprintf("cycle among CTE definitions: %s", strings.Join(e.Path, " -> "))
}
