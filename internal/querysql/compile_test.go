package querysql

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/viewql/internal/queryir"
)

func TestCompile_SimpleSelect(t *testing.T) {
	compiler := NewSQLCompiler()

	query := (&queryir.Select{
		Columns: []queryir.Column{queryir.Col("name"), {Name: "country", Alias: "c"}},
		From:    "candidate",
	}).Where(&queryir.Compare{Column: "country", Op: queryir.OpEq, Value: "Poland"})

	sql, params, err := compiler.Compile(query)
	require.NoError(t, err)

	assert.Equal(t, "SELECT name, country AS c FROM candidate WHERE country = ?", sql)
	assert.NotContains(t, sql, "Poland") // Value NOT in SQL
	assert.Equal(t, []any{"Poland"}, params)
}

func TestCompile_StarWhenNoColumns(t *testing.T) {
	sql, params, err := NewSQLCompiler().Compile(&queryir.Select{From: "candidate"})
	require.NoError(t, err)
	assert.Equal(t, "SELECT * FROM candidate", sql)
	assert.Empty(t, params)
}

func TestCompile_Predicates(t *testing.T) {
	tests := []struct {
		name   string
		pred   queryir.Predicate
		where  string
		params []any
	}{
		{
			name:   "literal",
			pred:   &queryir.Literal{Value: int64(1)},
			where:  "?",
			params: []any{int64(1)},
		},
		{
			name:   "in",
			pred:   &queryir.In{Column: "country", Values: []any{"Poland", "Spain"}},
			where:  "country IN (?, ?)",
			params: []any{"Poland", "Spain"},
		},
		{
			name:  "empty in",
			pred:  &queryir.In{Column: "country"},
			where: "0",
		},
		{
			name:   "like",
			pred:   &queryir.Like{Column: "name", Pattern: "A%"},
			where:  "name LIKE ?",
			params: []any{"A%"},
		},
		{
			name:  "is null",
			pred:  &queryir.IsNull{Column: "tags"},
			where: "tags IS NULL",
		},
		{
			name:  "empty and",
			pred:  &queryir.And{},
			where: "1 = 1",
		},
		{
			name:  "empty or",
			pred:  &queryir.Or{},
			where: "1 = 0",
		},
		{
			name: "or inside and",
			pred: &queryir.And{Predicates: []queryir.Predicate{
				&queryir.Or{Predicates: []queryir.Predicate{&queryir.IsNull{Column: "a"}, &queryir.IsNull{Column: "b"}}},
				&queryir.IsNull{Column: "c"},
			}},
			where: "(a IS NULL OR b IS NULL) AND c IS NULL",
		},
		{
			name: "and inside or",
			pred: &queryir.Or{Predicates: []queryir.Predicate{
				&queryir.And{Predicates: []queryir.Predicate{&queryir.IsNull{Column: "a"}, &queryir.IsNull{Column: "b"}}},
				&queryir.IsNull{Column: "c"},
			}},
			where: "a IS NULL AND b IS NULL OR c IS NULL",
		},
		{
			name: "nested and stays flat",
			pred: &queryir.And{Predicates: []queryir.Predicate{
				&queryir.And{Predicates: []queryir.Predicate{&queryir.IsNull{Column: "a"}, &queryir.IsNull{Column: "b"}}},
				&queryir.IsNull{Column: "c"},
			}},
			where: "a IS NULL AND b IS NULL AND c IS NULL",
		},
		{
			name: "not of and",
			pred: &queryir.Not{Predicate: &queryir.And{Predicates: []queryir.Predicate{
				&queryir.IsNull{Column: "a"}, &queryir.IsNull{Column: "b"},
			}}},
			where: "NOT (a IS NULL AND b IS NULL)",
		},
		{
			name:   "not of compare",
			pred:   &queryir.Not{Predicate: &queryir.Compare{Column: "a", Op: queryir.OpLt, Value: 2.5}},
			where:  "NOT a < ?",
			params: []any{2.5},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sql, params, err := NewSQLCompiler().Compile((&queryir.Select{From: "t"}).Where(tt.pred))
			require.NoError(t, err)
			assert.Equal(t, "SELECT * FROM t WHERE "+tt.where, sql)
			assert.Equal(t, tt.params, params)
		})
	}
}

func TestCompile_OrderingAndPaging(t *testing.T) {
	q := (&queryir.Select{From: "t"}).Order("name", false).Order("id", true).WithLimit(5).WithOffset(10)

	sql, params, err := NewSQLCompiler().Compile(q)
	require.NoError(t, err)
	assert.Equal(t, "SELECT * FROM t ORDER BY name, id DESC LIMIT ? OFFSET ?", sql)
	assert.Equal(t, []any{int64(5), int64(10)}, params)
}

func TestCompile_OffsetWithoutLimit(t *testing.T) {
	sql, params, err := NewSQLCompiler().Compile((&queryir.Select{From: "t"}).WithOffset(3))
	require.NoError(t, err)
	assert.Equal(t, "SELECT * FROM t LIMIT -1 OFFSET ?", sql)
	assert.Equal(t, []any{int64(3)}, params)
}

func TestCompile_ParameterOrder(t *testing.T) {
	q := (&queryir.Select{Columns: []queryir.Column{queryir.Const("test", "foo")}}).
		Where(&queryir.Literal{Value: int64(1)}).
		WithLimit(2)

	sql, params, err := NewSQLCompiler().Compile(q)
	require.NoError(t, err)
	assert.Equal(t, "SELECT ? AS foo WHERE ? LIMIT ?", sql)
	assert.Equal(t, []any{"test", int64(1), int64(2)}, params)
}

func TestCompile_RejectsInvalidQuery(t *testing.T) {
	_, _, err := NewSQLCompiler().Compile(&queryir.Select{From: "t; DROP TABLE t"})
	assert.ErrorContains(t, err, "invalid table identifier")

	_, _, err = NewSQLCompiler().Compile(nil)
	assert.Error(t, err)
}
