package rewrite

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeCrossJoins(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "bare tables",
			input: "select * from table1, table2;",
			want:  "select * from table1 cross join table2;",
		},
		{
			name:  "aliased tables",
			input: "select * from table1 t1, table2 t2;",
			want:  "select * from table1 t1 cross join table2 t2;",
		},
		{
			name:  "as aliases",
			input: "select * from table1 as t1, table2 as t2;",
			want:  "select * from table1 as t1 cross join table2 as t2;",
		},
		{
			name:  "three tables",
			input: "select * from table1, table2, table3;",
			want:  "select * from table1 cross join table2 cross join table3;",
		},
		{
			name:  "select list commas untouched",
			input: "select a, b, c from t;",
			want:  "select a, b, c from t;",
		},
		{
			name:  "function call commas untouched",
			input: "select coalesce(a, b) from t1, t2;",
			want:  "select coalesce(a, b) from t1 cross join t2;",
		},
		{
			name:  "subquery keeps its own commas",
			input: "select * from t1, (select a, b from x, y) s;",
			want:  "select * from t1 cross join (select a, b from x cross join y) s;",
		},
		{
			name:  "from clause ends at where",
			input: "select * from t1, t2 where a in (1, 2);",
			want:  "select * from t1 cross join t2 where a in (1, 2);",
		},
		{
			name:  "no from clause",
			input: "select 1, 2;",
			want:  "select 1, 2;",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, normalizeCrossJoins(tt.input))
		})
	}
}

func TestLayoutClauses(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "one line per clause",
			input: "select * from t where x = 1 group by x order by x limit 10",
			want:  "select *\nfrom t\nwhere x = 1\ngroup by x\norder by x\nlimit 10",
		},
		{
			name:  "join and on get their own lines",
			input: "select * from a t1 join b t2 on t1.id = t2.id",
			want:  "select *\nfrom a t1\njoin b t2\non t1.id = t2.id",
		},
		{
			name:  "join modifier starts the line",
			input: "select * from a t1 left join b t2 on t1.id = t2.id",
			want:  "select *\nfrom a t1\nleft join b t2\non t1.id = t2.id",
		},
		{
			name:  "cross join from normalization",
			input: "select * from a cross join b",
			want:  "select *\nfrom a\ncross join b",
		},
		{
			name:  "left as a function is not a join",
			input: "select left(name, 3) from t",
			want:  "select left(name, 3)\nfrom t",
		},
		{
			name:  "already laid out input is stable",
			input: "select *\nfrom t\nwhere x = 1",
			want:  "select *\nfrom t\nwhere x = 1",
		},
		{
			name:  "semicolon on its own line",
			input: "select * from t;",
			want:  "select *\nfrom t\n;",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, layoutClauses(tt.input))
		})
	}
}
