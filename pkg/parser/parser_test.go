package parser_test

import (
	"testing"

	"github.com/leapstack-labs/sqlnest/pkg/parser"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseExtractsCTEs(t *testing.T) {
	input := `with my_table_1 as (
select *
from table_1
),
my_table_2 as (
select *
from table_2
)
select *
from my_table_1 t1
join my_table_2 t2
on t1.id = t2.id
;`

	stmt, err := parser.Parse(input)
	require.NoError(t, err)
	require.Len(t, stmt.CTEs, 2)

	assert.Equal(t, "my_table_1", stmt.CTEs[0].Name)
	assert.Equal(t, "select *\nfrom table_1", stmt.CTEs[0].Body)
	assert.Equal(t, "my_table_2", stmt.CTEs[1].Name)
	assert.Equal(t, "select *\nfrom table_2", stmt.CTEs[1].Body)
	assert.Equal(t, "select *\nfrom my_table_1 t1\njoin my_table_2 t2\non t1.id = t2.id\n;", stmt.Main)
}

func TestParseSingleLineInput(t *testing.T) {
	input := "with a as (select 1), b as (select 2) select * from a t1 join b t2 on t1.x = t2.x"

	stmt, err := parser.Parse(input)
	require.NoError(t, err)
	require.Len(t, stmt.CTEs, 2)

	assert.Equal(t, "a", stmt.CTEs[0].Name)
	assert.Equal(t, "select 1", stmt.CTEs[0].Body)
	assert.Equal(t, "b", stmt.CTEs[1].Name)
	assert.Equal(t, "select 2", stmt.CTEs[1].Body)
	assert.Equal(t, "select * from a t1 join b t2 on t1.x = t2.x", stmt.Main)
}

func TestParseWithoutWithIsPassthrough(t *testing.T) {
	stmt, err := parser.Parse("SELECT *\nFROM   my_table\n;")
	require.NoError(t, err)
	assert.Empty(t, stmt.CTEs)
	assert.Equal(t, "select *\nfrom my_table\n;", stmt.Main)
}

func TestParseNestedParensInBody(t *testing.T) {
	// Commas and parens inside function calls and subqueries must not
	// split or truncate the body.
	input := `with a as (
select coalesce(x, y), count(*)
from (select * from base) sub
group by 1
)
select * from a t1`

	stmt, err := parser.Parse(input)
	require.NoError(t, err)
	require.Len(t, stmt.CTEs, 1)
	assert.Equal(t, "select coalesce(x, y), count(*)\nfrom (select * from base) sub\ngroup by 1", stmt.CTEs[0].Body)
	assert.Equal(t, "select * from a t1", stmt.Main)
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		message string
	}{
		{
			name:    "unterminated body",
			input:   "with a as (select 1",
			message: `unterminated body for CTE "a"`,
		},
		{
			name:    "missing AS",
			input:   "with a (select 1) select * from a t1",
			message: `expected AS after CTE name "a"`,
		},
		{
			name:    "missing open paren",
			input:   "with a as select 1",
			message: `expected ( after AS for CTE "a"`,
		},
		{
			name:    "missing name",
			input:   "with as (select 1)",
			message: "expected CTE name",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := parser.Parse(tt.input)
			require.Error(t, err)

			var perr *parser.ParseError
			require.ErrorAs(t, err, &perr)
			assert.Contains(t, err.Error(), tt.message)
		})
	}
}

func TestParseStripsCommentsBeforeExtraction(t *testing.T) {
	input := `-- build the staging table
with a as (
select * -- all columns
from base
)
select * from a t1`

	stmt, err := parser.Parse(input)
	require.NoError(t, err)
	require.Len(t, stmt.CTEs, 1)
	assert.Equal(t, "select *\nfrom base", stmt.CTEs[0].Body)
}
