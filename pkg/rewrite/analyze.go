package rewrite

import "github.com/leapstack-labs/sqlnest/pkg/parser"

// Analysis describes the CTE reference structure of a query without
// rewriting it.
type Analysis struct {
	CTEs           []CTEInfo  `json:"ctes"`
	MainReferences []string   `json:"main_references"`
	Levels         [][]string `json:"levels"`
}

// CTEInfo describes one CTE: the CTEs it references and the CTEs that
// reference it.
type CTEInfo struct {
	Name       string   `json:"name"`
	References []string `json:"references,omitempty"`
	Dependents []string `json:"dependents,omitempty"`
}

// Analyze builds the reference structure for stmt. Returns a
// *CycleError if the CTE reference graph is cyclic.
func Analyze(stmt *parser.Statement) (*Analysis, error) {
	r, err := newRewriter(stmt, Options{})
	if err != nil {
		return nil, err
	}

	a := &Analysis{}
	for _, name := range r.order {
		a.CTEs = append(a.CTEs, CTEInfo{
			Name:       name,
			References: r.refs[name],
			Dependents: r.graph.Children(name),
		})
	}

	seen := make(map[string]bool)
	for _, ref := range scanReferences(r.main) {
		if _, ok := r.defs[ref.Name]; !ok || seen[ref.Name] {
			continue
		}
		seen[ref.Name] = true
		a.MainReferences = append(a.MainReferences, ref.Name)
	}

	levels, err := r.graph.Levels()
	if err != nil {
		return nil, err
	}
	a.Levels = levels
	return a, nil
}
