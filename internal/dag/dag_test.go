package dag

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func buildGraph(t *testing.T, deps map[string][]string) *Graph {
	t.Helper()
	g := New()
	for name := range deps {
		g.Add(name)
	}
	for name, ds := range deps {
		for _, d := range ds {
			require.NoError(t, g.Link(d, name))
		}
	}
	return g
}

func TestGraphLinks(t *testing.T) {
	g := buildGraph(t, map[string][]string{
		"my_table_1": {},
		"my_table_2": {"my_table_1"},
	})

	assert.Equal(t, 2, g.NodeCount())
	assert.Equal(t, 1, g.EdgeCount())
	assert.Equal(t, []string{"my_table_1"}, g.Parents("my_table_2"))
	assert.Equal(t, []string{"my_table_2"}, g.Children("my_table_1"))
}

func TestGraphLinkErrors(t *testing.T) {
	g := New()
	g.Add("a")

	assert.Error(t, g.Link("a", "missing"))
	assert.Error(t, g.Link("missing", "a"))
	assert.Error(t, g.Link("a", "a"))
}

func TestGraphDuplicateLinksCollapse(t *testing.T) {
	g := New()
	g.Add("a")
	g.Add("b")
	require.NoError(t, g.Link("a", "b"))
	require.NoError(t, g.Link("a", "b"))

	assert.Equal(t, 1, g.EdgeCount())
}

func TestCycle(t *testing.T) {
	tests := []struct {
		name string
		deps map[string][]string
		want bool
	}{
		{
			name: "no cycle",
			deps: map[string][]string{
				"my_table_1": {},
				"my_table_2": {"my_table_1"},
			},
			want: false,
		},
		{
			name: "two node cycle",
			deps: map[string][]string{
				"my_table_1": {"my_table_2"},
				"my_table_2": {"my_table_1"},
			},
			want: true,
		},
		{
			name: "three node cycle",
			deps: map[string][]string{
				"my_table_1": {"my_table_2"},
				"my_table_2": {"my_table_3"},
				"my_table_3": {"my_table_1"},
			},
			want: true,
		},
		{
			name: "diamond is not a cycle",
			deps: map[string][]string{
				"a": {},
				"b": {"a"},
				"c": {"a"},
				"d": {"b", "c"},
			},
			want: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := buildGraph(t, tt.deps)
			cycle := g.Cycle()
			if tt.want {
				require.NotNil(t, cycle)
				assert.Equal(t, cycle[0], cycle[len(cycle)-1])
			} else {
				assert.Nil(t, cycle)
			}
		})
	}
}

func TestTopoOrder(t *testing.T) {
	g := buildGraph(t, map[string][]string{
		"a": {},
		"b": {"a"},
		"c": {"a", "b"},
	})

	order, err := g.TopoOrder()
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b", "c"}, order)
}

func TestTopoOrderCycle(t *testing.T) {
	g := buildGraph(t, map[string][]string{
		"a": {"b"},
		"b": {"a"},
	})

	_, err := g.TopoOrder()
	assert.Error(t, err)
}

func TestLevels(t *testing.T) {
	g := buildGraph(t, map[string][]string{
		"a": {},
		"b": {},
		"c": {"a", "b"},
		"d": {"c"},
	})

	levels, err := g.Levels()
	require.NoError(t, err)
	require.Len(t, levels, 3)
	assert.Equal(t, []string{"a", "b"}, levels[0])
	assert.Equal(t, []string{"c"}, levels[1])
	assert.Equal(t, []string{"d"}, levels[2])
}
