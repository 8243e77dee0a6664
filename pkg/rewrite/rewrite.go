// Package rewrite inlines CTE definitions into the queries that
// reference them, producing a nested-subquery equivalent of a WITH
// query.
//
// Each FROM/JOIN target naming a known CTE is replaced with the CTE's
// fully rewritten body in parentheses, followed by the reference's local
// alias. Bodies are resolved depth-first over the reference graph and
// memoized, so a CTE referenced from several places is rewritten once.
package rewrite

import (
	"fmt"
	"strings"

	"github.com/leapstack-labs/sqlnest/internal/dag"
	"github.com/leapstack-labs/sqlnest/pkg/parser"
	"github.com/leapstack-labs/sqlnest/pkg/token"
)

// defaultIndent is the number of spaces added per nesting level.
const defaultIndent = 2

// Options controls rewriting.
type Options struct {
	// Indent is the number of spaces per nesting level; 0 means the
	// default of 2.
	Indent int
}

// Rewrite inlines every CTE reference in stmt's main query and returns
// the resulting SQL. Returns a *CycleError if the CTE reference graph is
// cyclic.
func Rewrite(stmt *parser.Statement, opts Options) (string, error) {
	r, err := newRewriter(stmt, opts)
	if err != nil {
		return "", err
	}
	out, err := r.substitute(r.main)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(out), nil
}

// reference is a FROM/JOIN target found in a query body.
type reference struct {
	Name  string
	Alias string
}

type rewriter struct {
	order   []string          // declaration order
	defs    map[string]string // name -> normalized body
	main    string            // normalized main query
	memo    map[string]string // name -> fully rewritten body
	graph   *dag.Graph
	refs    map[string][]string // name -> referenced CTE names, deduped
	aliases map[string]bool     // every alias appearing in the input
	aliasN  int
	indent  string
}

func newRewriter(stmt *parser.Statement, opts Options) (*rewriter, error) {
	indent := opts.Indent
	if indent <= 0 {
		indent = defaultIndent
	}

	r := &rewriter{
		defs:    make(map[string]string, len(stmt.CTEs)),
		memo:    make(map[string]string, len(stmt.CTEs)),
		aliases: make(map[string]bool),
		indent:  strings.Repeat(" ", indent),
	}

	for _, cte := range stmt.CTEs {
		r.order = append(r.order, cte.Name)
		r.defs[cte.Name] = layoutClauses(normalizeCrossJoins(cte.Body))
	}
	r.main = layoutClauses(normalizeCrossJoins(stmt.Main))

	// Collect every alias in the query up front so generated aliases
	// never collide with existing ones.
	for _, name := range r.order {
		r.collectAliases(r.defs[name])
	}
	r.collectAliases(r.main)

	if err := r.buildGraph(); err != nil {
		return nil, err
	}
	return r, nil
}

// buildGraph builds the CTE reference graph and rejects cycles.
func (r *rewriter) buildGraph() error {
	g := dag.New()
	for _, name := range r.order {
		g.Add(name)
	}

	refs := make(map[string][]string, len(r.order))
	for _, name := range r.order {
		seen := make(map[string]bool)
		for _, ref := range scanReferences(r.defs[name]) {
			if _, ok := r.defs[ref.Name]; !ok || seen[ref.Name] {
				continue
			}
			seen[ref.Name] = true
			refs[name] = append(refs[name], ref.Name)
			if err := g.Link(ref.Name, name); err != nil {
				return &CycleError{Path: []string{name, name}}
			}
		}
	}

	if cycle := g.Cycle(); cycle != nil {
		return &CycleError{Path: cycle}
	}

	r.graph = g
	r.refs = refs
	return nil
}

func (r *rewriter) collectAliases(text string) {
	for _, ref := range scanReferences(text) {
		if ref.Alias != "" {
			r.aliases[ref.Alias] = true
		}
	}
}

// resolve returns the fully rewritten body of a CTE, computing and
// memoizing it on first use.
func (r *rewriter) resolve(name string) (string, error) {
	if body, ok := r.memo[name]; ok {
		return body, nil
	}
	body, err := r.substitute(r.defs[name])
	if err != nil {
		return "", err
	}
	r.memo[name] = body
	return body, nil
}

// substitute replaces every FROM/JOIN target naming a known CTE with the
// CTE's rewritten body in parens plus the reference's local alias.
// Matching is bound to the identifier token directly after FROM or JOIN,
// so a CTE name appearing as a substring of another identifier, as a
// column qualifier, or behind a schema prefix is never touched. Unknown
// targets pass through unchanged; they are base tables.
func (r *rewriter) substitute(text string) (string, error) {
	toks := parser.Tokenize(text)

	var b strings.Builder
	last := 0

	for i := 0; i < len(toks); i++ {
		if toks[i].Type != token.FROM && toks[i].Type != token.JOIN {
			continue
		}
		j := i + 1
		if toks[j].Type != token.IDENT {
			continue
		}
		if toks[j+1].Type == token.DOT {
			continue // schema-qualified, cannot be a CTE
		}
		name := toks[j].Literal
		if _, ok := r.defs[name]; !ok {
			continue
		}

		body, err := r.resolve(name)
		if err != nil {
			return "", err
		}

		b.WriteString(text[last:toks[j].Pos.Offset])
		b.WriteString(r.splice(body))
		last = toks[j].End

		// Keep an existing alias verbatim; invent one otherwise so
		// downstream column references keep resolving.
		k := j + 1
		if toks[k].Type == token.AS {
			k++
		}
		if toks[k].Type == token.IDENT {
			i = k
		} else {
			b.WriteByte(' ')
			b.WriteString(r.nextAlias())
			i = j
		}
	}

	b.WriteString(text[last:])
	return b.String(), nil
}

// splice wraps a rewritten body in parens and pushes it one indentation
// level deeper. Indentation accumulates naturally as spliced bodies are
// spliced again further up the chain.
func (r *rewriter) splice(body string) string {
	nested := "(\n" + body + "\n)"
	return strings.ReplaceAll(nested, "\n", "\n"+r.indent)
}

// nextAlias returns the next generated alias (t1, t2, ...) that does not
// collide with any alias already present in the query.
func (r *rewriter) nextAlias() string {
	for {
		r.aliasN++
		alias := fmt.Sprintf("t%d", r.aliasN)
		if !r.aliases[alias] {
			r.aliases[alias] = true
			return alias
		}
	}
}

// scanReferences returns every FROM/JOIN target in text together with
// its local alias, if present. Targets include base tables, not just
// CTEs; callers filter as needed.
func scanReferences(text string) []reference {
	toks := parser.Tokenize(text)

	var refs []reference
	for i := 0; i < len(toks); i++ {
		if toks[i].Type != token.FROM && toks[i].Type != token.JOIN {
			continue
		}
		j := i + 1
		if toks[j].Type != token.IDENT {
			continue
		}
		if toks[j+1].Type == token.DOT {
			continue
		}
		ref := reference{Name: toks[j].Literal}

		k := j + 1
		if toks[k].Type == token.AS {
			k++
		}
		if toks[k].Type == token.IDENT {
			ref.Alias = toks[k].Literal
		}
		refs = append(refs, ref)
	}
	return refs
}
