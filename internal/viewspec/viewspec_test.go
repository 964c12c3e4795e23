package viewspec

import (
	"context"
	"path/filepath"
	"testing"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/viewql/internal/iql"
	"github.com/roach88/viewql/internal/query"
	"github.com/roach88/viewql/internal/registry"
	"github.com/roach88/viewql/internal/sqlview"
	"github.com/roach88/viewql/internal/store"
)

func compileString(t *testing.T, src, path string) (*sqlview.View, error) {
	t.Helper()
	v := cuecontext.New().CompileString(src)
	require.NoError(t, v.Err())
	return CompileView(v.LookupPath(cue.ParsePath(path)))
}

func loadCandidates(t *testing.T) *sqlview.View {
	t.Helper()
	result, errs := LoadViews(filepath.Join("testdata", "views"), LoadModeFailFast)
	require.Empty(t, errs)
	v := result.View("candidates")
	require.NotNil(t, v)
	return v
}

// build applies IQL filters and actions and returns the compiled SQL.
func build(t *testing.T, v *sqlview.View, filters, actions string) (string, []any) {
	t.Helper()
	ctx := context.Background()
	q := v.NewQuery()

	if filters != "" {
		node, err := iql.ParseFilters(filters)
		require.NoError(t, err)
		f, err := query.BindFilters(node, v.Registry())
		require.NoError(t, err)
		require.NoError(t, q.ApplyFilters(ctx, f))
	}
	if actions != "" {
		seq, err := iql.ParseActions(actions)
		require.NoError(t, err)
		a, err := query.BindActions(seq, v.Registry())
		require.NoError(t, err)
		require.NoError(t, q.ApplyActions(ctx, a))
	}

	sql, params, err := q.SQL()
	require.NoError(t, err)
	return sql, params
}

func TestLoadViews(t *testing.T) {
	result, errs := LoadViews(filepath.Join("testdata", "views"), LoadModeCollectAll)
	require.Empty(t, errs)

	assert.Equal(t, 2, result.FileCount)
	assert.ElementsMatch(t, []string{"candidates", "jobs"}, result.Names())

	v := result.View("candidates")
	require.NotNil(t, v)
	assert.Equal(t, "Job candidates and their experience", v.Description())
	assert.Equal(t,
		[]string{"from_country", "min_experience", "name_contains", "country_in", "senior"},
		v.Registry().Names(registry.KindFilter))
	assert.Equal(t, []string{"sort_by", "top", "page"}, v.Registry().Names(registry.KindAction))

	sig, ok := v.Registry().Lookup(registry.KindFilter, "min_experience")
	require.True(t, ok)
	assert.Equal(t, "min_experience(years: int = 3)", sig.String())
	assert.Equal(t, "At least the given number of years of experience", sig.Description)

	sig, ok = v.Registry().Lookup(registry.KindFilter, "country_in")
	require.True(t, ok)
	assert.True(t, sig.Variadic)

	assert.Nil(t, result.View("missing"))
}

func TestLoadViews_Errors(t *testing.T) {
	t.Run("directory not found", func(t *testing.T) {
		_, errs := LoadViews(filepath.Join("testdata", "nope"), LoadModeFailFast)
		require.Len(t, errs, 1)
		assert.Equal(t, ErrCodeNotFound, errs[0].(*LoadError).Code)
	})

	t.Run("no cue files", func(t *testing.T) {
		_, errs := LoadViews(t.TempDir(), LoadModeFailFast)
		require.Len(t, errs, 1)
		assert.Equal(t, ErrCodeNoFiles, errs[0].(*LoadError).Code)
	})

	t.Run("no views", func(t *testing.T) {
		_, errs := LoadViews(filepath.Join("testdata", "empty"), LoadModeFailFast)
		require.Len(t, errs, 1)
		assert.Equal(t, ErrCodeNoViews, errs[0].(*LoadError).Code)
	})

	t.Run("fail fast stops at first broken view", func(t *testing.T) {
		result, errs := LoadViews(filepath.Join("testdata", "broken"), LoadModeFailFast)
		require.Len(t, errs, 1)
		assert.Equal(t, ErrCodeInvalidView, errs[0].(*LoadError).Code)
		assert.Contains(t, errs[0].Error(), "view.missing_table")
		assert.Equal(t, []string{"good"}, result.Names())
	})

	t.Run("collect all", func(t *testing.T) {
		result, errs := LoadViews(filepath.Join("testdata", "broken"), LoadModeCollectAll)
		require.Len(t, errs, 2)
		assert.Equal(t, ErrCodeInvalidView, errs[0].(*LoadError).Code)
		assert.Equal(t, ErrCodeInvalidFilter, errs[1].(*LoadError).Code)
		assert.Contains(t, errs[1].Error(), `unknown op "~"`)
		assert.Equal(t, []string{"good"}, result.Names())
	})
}

func TestCompileViews_DuplicateName(t *testing.T) {
	v := cuecontext.New().CompileString(`
view: a: {table: "t", name: "same"}
view: b: {table: "t", name: "same"}
`)
	require.NoError(t, v.Err())

	result := &LoadResult{}
	errs := CompileViews(v, result, LoadModeCollectAll)
	require.Len(t, errs, 1)
	assert.Equal(t, ErrCodeDuplicateView, errs[0].(*LoadError).Code)
	assert.Equal(t, []string{"same"}, result.Names())
}

func TestCompileView_SQL(t *testing.T) {
	v := loadCandidates(t)
	const cols = "SELECT id, name, country, years_of_experience, score FROM candidate"

	tests := []struct {
		name       string
		filters    string
		actions    string
		wantSQL    string
		wantParams []any
	}{
		{
			name:    "no filters",
			wantSQL: cols,
		},
		{
			name:       "default parameter",
			filters:    `from_country("Poland") and min_experience()`,
			wantSQL:    cols + " WHERE country = ? AND years_of_experience >= ?",
			wantParams: []any{"Poland", int64(3)},
		},
		{
			name:       "like pattern",
			filters:    `name_contains("da")`,
			wantSQL:    cols + " WHERE name LIKE ?",
			wantParams: []any{"%da%"},
		},
		{
			name:       "variadic in",
			filters:    `country_in("Poland", "Spain")`,
			wantSQL:    cols + " WHERE country IN (?, ?)",
			wantParams: []any{"Poland", "Spain"},
		},
		{
			name:    "empty variadic in",
			filters: `country_in()`,
			wantSQL: cols + " WHERE 0",
		},
		{
			name:       "multiple conditions and negation",
			filters:    `not senior() or from_country("Spain")`,
			wantSQL:    cols + " WHERE NOT (years_of_experience >= ? AND score > ?) OR country = ?",
			wantParams: []any{int64(5), 8.0, "Spain"},
		},
		{
			name:       "sort and page",
			actions:    "sort_by(\"score\", True)\npage(10, 20)",
			wantSQL:    cols + " ORDER BY score DESC LIMIT ? OFFSET ?",
			wantParams: []any{int64(10), int64(20)},
		},
		{
			name:       "filters and actions",
			filters:    `min_experience(5)`,
			actions:    `top()`,
			wantSQL:    cols + " WHERE years_of_experience >= ? LIMIT ?",
			wantParams: []any{int64(5), int64(10)},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sql, params := build(t, v, tt.filters, tt.actions)
			assert.Equal(t, tt.wantSQL, sql)
			assert.Equal(t, tt.wantParams, params)
		})
	}
}

func TestCompileView_ConstantAction(t *testing.T) {
	result, errs := LoadViews(filepath.Join("testdata", "views"), LoadModeFailFast)
	require.Empty(t, errs)
	v := result.View("jobs")
	require.NotNil(t, v)

	sql, params := build(t, v, `remote() and title_like("%go%")`, `newest()`)
	assert.Equal(t, "SELECT * FROM job WHERE remote = ? AND title LIKE ? ORDER BY posted_at DESC", sql)
	assert.Equal(t, []any{true, "%go%"}, params)
}

func TestCompileView_ActionErrors(t *testing.T) {
	v := loadCandidates(t)
	ctx := context.Background()

	tests := []struct {
		name    string
		actions string
		wantErr string
	}{
		{name: "unknown column", actions: `sort_by("salary")`, wantErr: `cannot order by "salary": not a column of this view`},
		{name: "injection", actions: `sort_by("id; DROP TABLE candidate")`, wantErr: "not a column name"},
		{name: "negative limit", actions: `top(-1)`, wantErr: "limit must not be negative"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			seq, err := iql.ParseActions(tt.actions)
			require.NoError(t, err)
			a, err := query.BindActions(seq, v.Registry())
			require.NoError(t, err)

			q := v.NewQuery()
			err = q.ApplyActions(ctx, a)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestCompileView_NullComparison(t *testing.T) {
	v, err := compileString(t, `
view: people: {
	table: "candidate"
	filter: country_is: {
		params: [{name: "country", type: "str", nullable: true}]
		where: {column: "country", param: "country"}
	}
	filter: country_not: {
		params: [{name: "country", type: "str", nullable: true}]
		where: {column: "country", op: "!=", param: "country"}
	}
	filter: score_missing: {
		params: [{name: "present", type: "bool", default: true}]
		where: {column: "score", op: "is_null", param: "present"}
	}
}`, "view.people")
	require.NoError(t, err)

	sql, params := build(t, v, `country_is(None) or country_not(None)`, "")
	assert.Equal(t, "SELECT * FROM candidate WHERE country IS NULL OR NOT country IS NULL", sql)
	assert.Empty(t, params)

	sql, _ = build(t, v, `score_missing(False)`, "")
	assert.Equal(t, "SELECT * FROM candidate WHERE NOT score IS NULL", sql)
}

func TestCompileView_Errors(t *testing.T) {
	tests := []struct {
		name      string
		src       string
		wantField string
		wantMsg   string
	}{
		{
			name:      "missing table",
			src:       `view: v: {description: "x"}`,
			wantField: "table",
			wantMsg:   "table is required",
		},
		{
			name:      "bad table identifier",
			src:       `view: v: {table: "a b"}`,
			wantField: "table",
			wantMsg:   `invalid table "a b"`,
		},
		{
			name:      "unknown parameter",
			src:       `view: v: {table: "t", filter: f: where: {column: "a", param: "nope"}}`,
			wantField: "param",
			wantMsg:   `unknown parameter "nope"`,
		},
		{
			name:      "param and value",
			src:       `view: v: {table: "t", filter: f: {params: [{name: "p", type: "int"}], where: {column: "a", param: "p", value: 1}}}`,
			wantField: "where",
			wantMsg:   "use either param or value, not both",
		},
		{
			name:      "like needs str",
			src:       `view: v: {table: "t", filter: f: {params: [{name: "p", type: "int"}], where: {column: "a", op: "like", param: "p"}}}`,
			wantField: "op",
			wantMsg:   "like needs a str operand, got int",
		},
		{
			name:      "pattern without like",
			src:       `view: v: {table: "t", filter: f: where: {column: "a", value: 1, pattern: "%{}"}}`,
			wantField: "op",
			wantMsg:   `pattern is only valid with op "like"`,
		},
		{
			name:      "unknown type",
			src:       `view: v: {table: "t", filter: f: {params: [{name: "p", type: "decimal"}], where: {column: "a", param: "p"}}}`,
			wantField: "type",
		},
		{
			name:      "empty action",
			src:       `view: v: {table: "t", action: a: description: "nothing"}`,
			wantField: "action",
			wantMsg:   "action needs order_by, limit or offset",
		},
		{
			name:      "limit must be int",
			src:       `view: v: {table: "t", action: a: limit: "ten"}`,
			wantField: "limit",
			wantMsg:   "must be int, got str",
		},
		{
			name:      "desc without order_by",
			src:       `view: v: {table: "t", action: a: {limit: 1, desc: true}}`,
			wantField: "order_by",
			wantMsg:   "desc without order_by",
		},
		{
			name:      "duplicate parameter",
			src:       `view: v: {table: "t", filter: f: {params: [{name: "p", type: "int"}, {name: "p", type: "int"}], where: {column: "a", param: "p"}}}`,
			wantField: "operation",
		},
		{
			name:      "name override collides",
			src:       `view: v: {table: "t", filter: a: where: {column: "a", value: 1}, filter: b: {name: "a", where: {column: "b", value: 2}}}`,
			wantField: "operation",
			wantMsg:   "a",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := compileString(t, tt.src, "view.v")
			require.Error(t, err)

			var ce *CompileError
			require.ErrorAs(t, err, &ce)
			assert.Equal(t, tt.wantField, ce.Field)
			if tt.wantMsg != "" {
				assert.Contains(t, ce.Message, tt.wantMsg)
			}
		})
	}
}

func TestCompileView_Execute(t *testing.T) {
	s, err := store.Open(store.MemoryPath)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })

	ctx := context.Background()
	require.NoError(t, s.Seed(ctx, []string{
		`CREATE TABLE candidate (id INTEGER PRIMARY KEY, name TEXT NOT NULL, country TEXT, years_of_experience INTEGER, score REAL)`,
		`INSERT INTO candidate VALUES (1, 'Ada', 'Poland', 7, 9.5)`,
		`INSERT INTO candidate VALUES (2, 'Bob', 'Spain', 2, 6.0)`,
		`INSERT INTO candidate VALUES (3, 'Cy', NULL, 4, 7.25)`,
	}))

	v := loadCandidates(t)
	q := v.NewQuery()

	node, err := iql.ParseFilters(`min_experience() or from_country("Spain")`)
	require.NoError(t, err)
	f, err := query.BindFilters(node, v.Registry())
	require.NoError(t, err)
	require.NoError(t, q.ApplyFilters(ctx, f))

	seq, err := iql.ParseActions(`sort_by("years_of_experience")`)
	require.NoError(t, err)
	a, err := query.BindActions(seq, v.Registry())
	require.NoError(t, err)
	require.NoError(t, q.ApplyActions(ctx, a))

	rows, err := q.Execute(ctx, s)
	require.NoError(t, err)
	assert.Equal(t, []any{"Bob", "Cy", "Ada"}, rows.Column("name"))
}
