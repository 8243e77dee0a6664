// Package dag models the reference graph between CTE definitions. It
// supports cycle detection, topological ordering, and grouping CTEs into
// resolution levels.
package dag

import (
	"fmt"
	"sort"
)

// Graph is a directed graph keyed by CTE name. An edge from a dependency
// to its consumer records "consumer references dependency".
type Graph struct {
	nodes    map[string]bool
	children map[string][]string // dependency -> consumers
	parents  map[string][]string // consumer -> dependencies
}

// New creates an empty graph.
func New() *Graph {
	return &Graph{
		nodes:    make(map[string]bool),
		children: make(map[string][]string),
		parents:  make(map[string][]string),
	}
}

// Add registers a node. Adding an existing node is a no-op.
func (g *Graph) Add(id string) {
	if g.nodes[id] {
		return
	}
	g.nodes[id] = true
	g.children[id] = []string{}
	g.parents[id] = []string{}
}

// Link records that consumer references dep. Both nodes must already be
// registered. A self-reference is rejected here rather than left for the
// cycle walk, so the caller gets a precise error.
func (g *Graph) Link(dep, consumer string) error {
	if !g.nodes[dep] {
		return fmt.Errorf("unknown node %q", dep)
	}
	if !g.nodes[consumer] {
		return fmt.Errorf("unknown node %q", consumer)
	}
	if dep == consumer {
		return fmt.Errorf("self-reference: %s", dep)
	}

	if !contains(g.children[dep], consumer) {
		g.children[dep] = append(g.children[dep], consumer)
	}
	if !contains(g.parents[consumer], dep) {
		g.parents[consumer] = append(g.parents[consumer], dep)
	}
	return nil
}

// Parents returns the dependencies of a node.
func (g *Graph) Parents(id string) []string {
	return g.parents[id]
}

// Children returns the consumers of a node.
func (g *Graph) Children(id string) []string {
	return g.children[id]
}

// NodeCount returns the number of nodes.
func (g *Graph) NodeCount() int {
	return len(g.nodes)
}

// EdgeCount returns the number of edges.
func (g *Graph) EdgeCount() int {
	count := 0
	for _, cs := range g.children {
		count += len(cs)
	}
	return count
}

// Cycle returns a cycle path if the graph contains one, nil otherwise.
// The path starts and ends on the same node.
func (g *Graph) Cycle() []string {
	visited := make(map[string]bool)
	onStack := make(map[string]bool)
	cameFrom := make(map[string]string)

	var cycle []string

	var dfs func(id string) bool
	dfs = func(id string) bool {
		visited[id] = true
		onStack[id] = true

		for _, next := range g.children[id] {
			if !visited[next] {
				cameFrom[next] = id
				if dfs(next) {
					return true
				}
			} else if onStack[next] {
				// Walk back to reconstruct the path
				cycle = []string{next}
				for at := id; at != next; at = cameFrom[at] {
					cycle = append([]string{at}, cycle...)
				}
				cycle = append([]string{next}, cycle...)
				return true
			}
		}

		onStack[id] = false
		return false
	}

	for _, id := range g.sortedIDs() {
		if !visited[id] {
			if dfs(id) {
				return cycle
			}
		}
	}
	return nil
}

// TopoOrder returns node IDs with every dependency before its consumers.
// Returns an error if the graph contains a cycle.
func (g *Graph) TopoOrder() ([]string, error) {
	if cycle := g.Cycle(); cycle != nil {
		return nil, fmt.Errorf("cycle detected: %v", cycle)
	}

	visited := make(map[string]bool)
	var order []string

	var visit func(id string)
	visit = func(id string) {
		if visited[id] {
			return
		}
		visited[id] = true
		for _, dep := range g.parents[id] {
			visit(dep)
		}
		order = append(order, id)
	}

	for _, id := range g.sortedIDs() {
		visit(id)
	}
	return order, nil
}

// Levels groups nodes by resolution depth: level 0 holds CTEs with no
// CTE dependencies, level N holds CTEs whose deepest dependency sits at
// level N-1. Returns an error if the graph contains a cycle.
func (g *Graph) Levels() ([][]string, error) {
	if cycle := g.Cycle(); cycle != nil {
		return nil, fmt.Errorf("cycle detected: %v", cycle)
	}

	depth := make(map[string]int)

	var levelOf func(id string) int
	levelOf = func(id string) int {
		if d, ok := depth[id]; ok {
			return d
		}
		max := -1
		for _, dep := range g.parents[id] {
			if d := levelOf(dep); d > max {
				max = d
			}
		}
		depth[id] = max + 1
		return max + 1
	}

	maxLevel := -1
	for id := range g.nodes {
		if d := levelOf(id); d > maxLevel {
			maxLevel = d
		}
	}

	levels := make([][]string, maxLevel+1)
	for id, d := range depth {
		levels[d] = append(levels[d], id)
	}
	for i := range levels {
		sort.Strings(levels[i])
	}
	return levels, nil
}

// sortedIDs returns all node IDs in sorted order for deterministic walks.
func (g *Graph) sortedIDs() []string {
	ids := make([]string, 0, len(g.nodes))
	for id := range g.nodes {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

func contains(slice []string, s string) bool {
	for _, v := range slice {
		if v == s {
			return true
		}
	}
	return false
}
