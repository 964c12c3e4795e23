package query

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/viewql/internal/iql"
	"github.com/roach88/viewql/internal/registry"
)

func testRegistry(t *testing.T) *registry.Registry {
	t.Helper()
	reg, err := registry.NewBuilder().
		Filter(registry.Signature{Name: "method_foo", Params: []registry.Param{{Name: "idx", Type: registry.TypeInt}}}).
		Filter(registry.Signature{Name: "method_bar", Params: []registry.Param{
			{Name: "city", Type: registry.TypeStr},
			{Name: "year", Type: registry.TypeInt},
		}}).
		Filter(registry.Signature{Name: "heavier_than", Params: []registry.Param{{Name: "weight", Type: registry.TypeFloat}}}).
		Filter(registry.Signature{Name: "in_cities", Params: []registry.Param{{Name: "cities", Type: registry.TypeListStr}}}).
		Filter(registry.Signature{Name: "by_country", Params: []registry.Param{
			{Name: "country", Type: registry.TypeStr},
			{Name: "region", Type: registry.TypeStr, Nullable: true, Default: iql.NullValue{}},
		}}).
		Filter(registry.Signature{Name: "has_tags", Variadic: true, Params: []registry.Param{
			{Name: "all", Type: registry.TypeBool},
			{Name: "tags", Type: registry.TypeStr},
		}}).
		Action(registry.Signature{Name: "action_baz"}).
		Action(registry.Signature{Name: "action_qux", Params: []registry.Param{{Name: "limit", Type: registry.TypeInt}}}).
		Build()
	require.NoError(t, err)
	return reg
}

func mustFilters(t *testing.T, src string) iql.Node {
	t.Helper()
	node, err := iql.ParseFilters(src)
	require.NoError(t, err)
	return node
}

func mustActions(t *testing.T, src string) *iql.Sequence {
	t.Helper()
	seq, err := iql.ParseActions(src)
	require.NoError(t, err)
	return seq
}

func TestBindFilters_ConcreteScenario(t *testing.T) {
	reg := testRegistry(t)

	f, err := BindFilters(mustFilters(t, `method_foo(1) and method_bar("London", 2020)`), reg)
	require.NoError(t, err)

	and, ok := f.(*And)
	require.True(t, ok)
	foo := and.Left.(*Leaf).Call
	bar := and.Right.(*Leaf).Call

	assert.Equal(t, "method_foo", foo.Name())
	assert.Equal(t, int64(1), foo.Args.Int(0))
	assert.Equal(t, "method_bar", bar.Name())
	assert.Equal(t, "London", bar.Args.String(0))
	assert.Equal(t, int64(2020), bar.Args.Int(1))

	year, ok := bar.Arg("year")
	require.True(t, ok)
	assert.Equal(t, iql.IntValue(2020), year)
}

func TestBindFilters_PreservesShape(t *testing.T) {
	reg := testRegistry(t)
	sources := []string{
		`method_foo(1)`,
		`not method_foo(1)`,
		`method_foo(1) or method_foo(2) and not method_foo(3)`,
		`(method_foo(1) or method_foo(2)) and method_bar("a", 1)`,
	}
	for _, src := range sources {
		t.Run(src, func(t *testing.T) {
			f, err := BindFilters(mustFilters(t, src), reg)
			require.NoError(t, err)

			want := iql.Render(mustFilters(t, src))
			assert.Equal(t, want, RenderFilter(f))
		})
	}
}

func TestBindFilters_Coercion(t *testing.T) {
	reg := testRegistry(t)

	f, err := BindFilters(mustFilters(t, `heavier_than(80)`), reg)
	require.NoError(t, err)
	call := f.(*Leaf).Call
	assert.Equal(t, iql.FloatValue(80), call.Args[0])
	assert.Equal(t, 80.0, call.Args.Float(0))

	f, err = BindFilters(mustFilters(t, `in_cities([])`), reg)
	require.NoError(t, err)
	assert.Empty(t, f.(*Leaf).Call.Args.List(0))
}

func TestBindFilters_DefaultsFilled(t *testing.T) {
	reg := testRegistry(t)

	f, err := BindFilters(mustFilters(t, `by_country("PL")`), reg)
	require.NoError(t, err)
	call := f.(*Leaf).Call
	require.Len(t, call.Args, 2)
	assert.Equal(t, "PL", call.Args.String(0))
	assert.True(t, call.Args.IsNull(1))
	assert.Equal(t, `by_country("PL", None)`, RenderFilter(f))
}

func TestBindFilters_DefaultsBindLikeExplicitArgs(t *testing.T) {
	reg, err := registry.NewBuilder().
		Filter(registry.Signature{Name: "min_score", Params: []registry.Param{
			{Name: "score", Type: registry.TypeFloat, Default: iql.IntValue(5)},
			{Name: "weights", Type: registry.TypeListFloat, Default: iql.ListValue{iql.IntValue(1)}},
		}}).
		Build()
	require.NoError(t, err)

	omitted, err := BindFilters(mustFilters(t, `min_score()`), reg)
	require.NoError(t, err)
	explicit, err := BindFilters(mustFilters(t, `min_score(5, [1])`), reg)
	require.NoError(t, err)

	got := omitted.(*Leaf).Call.Args
	want := explicit.(*Leaf).Call.Args
	assert.IsType(t, want[0], got[0])
	assert.Equal(t, iql.FloatValue(5), got[0])
	assert.Equal(t, iql.ListValue{iql.FloatValue(1)}, got[1])
	assert.Equal(t, want.Native(), got.Native())
	assert.Equal(t, RenderFilter(explicit), RenderFilter(omitted))
}

func TestBindFilters_Variadic(t *testing.T) {
	reg := testRegistry(t)

	f, err := BindFilters(mustFilters(t, `has_tags(True, "go", "sql")`), reg)
	require.NoError(t, err)
	call := f.(*Leaf).Call
	assert.True(t, call.Args.Bool(0))
	assert.Equal(t, Args{iql.StringValue("go"), iql.StringValue("sql")}, call.Rest())

	f, err = BindFilters(mustFilters(t, `has_tags(False)`), reg)
	require.NoError(t, err)
	assert.Empty(t, f.(*Leaf).Call.Rest())

	_, err = BindFilters(mustFilters(t, `has_tags(True, "go", 3)`), reg)
	require.Error(t, err)
	var be *BindError
	require.ErrorAs(t, err, &be)
	assert.Equal(t, ErrCodeTypeMismatch, be.Code)
	assert.Equal(t, 2, be.Index)
	assert.Equal(t, "tags", be.Param)
}

func TestBindFilters_ArityMismatch(t *testing.T) {
	reg := testRegistry(t)

	tests := []struct {
		src      string
		min, max int
		got      int
	}{
		{src: `method_bar("London")`, min: 2, max: 2, got: 1},
		{src: `method_bar("London", 2020, 1)`, min: 2, max: 2, got: 3},
		{src: `method_foo()`, min: 1, max: 1, got: 0},
		{src: `by_country("a", "b", "c")`, min: 1, max: 2, got: 3},
		{src: `has_tags()`, min: 1, max: -1, got: 0},
	}
	for _, tt := range tests {
		t.Run(tt.src, func(t *testing.T) {
			_, err := BindFilters(mustFilters(t, tt.src), reg)
			require.Error(t, err)
			assert.True(t, IsArityMismatch(err))

			var be *BindError
			require.ErrorAs(t, err, &be)
			assert.Equal(t, tt.min, be.Min)
			assert.Equal(t, tt.max, be.Max)
			assert.Equal(t, tt.got, be.Got)
		})
	}
}

func TestBindFilters_ArityMessage(t *testing.T) {
	reg := testRegistry(t)

	_, err := BindFilters(mustFilters(t, `method_bar("London")`), reg)
	require.Error(t, err)
	assert.Equal(t, `filter method_bar expects 2 arguments, got 1: method_bar("London")`, err.Error())

	_, err = BindFilters(mustFilters(t, `has_tags()`), reg)
	require.Error(t, err)
	assert.Equal(t, `filter has_tags expects at least 1 argument, got 0: has_tags()`, err.Error())
}

func TestBindFilters_TypeMismatch(t *testing.T) {
	reg := testRegistry(t)

	tests := []struct {
		src      string
		index    int
		param    string
		expected registry.Type
		actual   string
	}{
		{src: `method_bar(2020, "London")`, index: 0, param: "city", expected: registry.TypeStr, actual: "int"},
		{src: `method_bar("London", "2020")`, index: 1, param: "year", expected: registry.TypeInt, actual: "str"},
		{src: `method_foo(1.5)`, index: 0, param: "idx", expected: registry.TypeInt, actual: "float"},
		{src: `method_foo(True)`, index: 0, param: "idx", expected: registry.TypeInt, actual: "bool"},
		{src: `method_foo(None)`, index: 0, param: "idx", expected: registry.TypeInt, actual: "None"},
		{src: `in_cities(["a", 1])`, index: 0, param: "cities", expected: registry.TypeListStr, actual: "list"},
		{src: `in_cities("a")`, index: 0, param: "cities", expected: registry.TypeListStr, actual: "str"},
	}
	for _, tt := range tests {
		t.Run(tt.src, func(t *testing.T) {
			_, err := BindFilters(mustFilters(t, tt.src), reg)
			require.Error(t, err)
			assert.True(t, IsTypeMismatch(err))

			var be *BindError
			require.ErrorAs(t, err, &be)
			assert.Equal(t, tt.index, be.Index)
			assert.Equal(t, tt.param, be.Param)
			assert.Equal(t, tt.expected, be.Expected)
			assert.Equal(t, tt.actual, be.Actual)
		})
	}
}

func TestBindFilters_TypeMismatchMessage(t *testing.T) {
	reg := testRegistry(t)
	src := `method_bar("London", "2020")`

	_, err := BindFilters(mustFilters(t, src), reg)
	require.Error(t, err)
	assert.Equal(t,
		`argument 2 (year) of filter method_bar must be int, got str "2020": method_bar("London", "2020")`,
		err.Error())

	var be *BindError
	require.ErrorAs(t, err, &be)
	assert.Equal(t, `"2020"`, be.Span.Text(src))
}

func TestBindFilters_OperationNotFound(t *testing.T) {
	reg := testRegistry(t)

	_, err := BindFilters(mustFilters(t, `method_fo(1)`), reg)
	require.Error(t, err)
	assert.True(t, IsOperationNotFound(err))

	var be *BindError
	require.ErrorAs(t, err, &be)
	assert.Equal(t, "method_fo", be.Name)
	assert.Equal(t, []string{"method_foo"}, be.Suggestions)
	assert.Contains(t, be.Error(), `did you mean method_foo?`)
}

func TestBindFilters_SuggestionsAreCaseFolded(t *testing.T) {
	reg := testRegistry(t)

	_, err := BindFilters(mustFilters(t, `METHOD_BAR("x", 1)`), reg)
	var be *BindError
	require.ErrorAs(t, err, &be)
	require.NotEmpty(t, be.Suggestions)
	assert.Equal(t, "method_bar", be.Suggestions[0])
}

func TestBindFilters_NameFromOtherRegistry(t *testing.T) {
	reg := testRegistry(t)

	_, err := BindFilters(mustFilters(t, `action_qux(5)`), reg)
	var be *BindError
	require.ErrorAs(t, err, &be)
	assert.Equal(t, ErrCodeOperationNotFound, be.Code)
	assert.True(t, be.OtherKind)
	assert.Contains(t, be.Message, `"action_qux" is an action, not a filter`)
}

func TestBindFilters_NoSuggestionForDistantName(t *testing.T) {
	reg := testRegistry(t)

	_, err := BindFilters(mustFilters(t, `completely_unrelated()`), reg)
	var be *BindError
	require.ErrorAs(t, err, &be)
	assert.Empty(t, be.Suggestions)
	assert.Equal(t, `filter "completely_unrelated" not found: completely_unrelated()`, be.Error())
}

func TestBindFilters_FirstErrorInSourceOrder(t *testing.T) {
	reg := testRegistry(t)

	_, err := BindFilters(mustFilters(t, `unknown() and method_foo("x")`), reg)
	assert.True(t, IsOperationNotFound(err))

	_, err = BindFilters(mustFilters(t, `method_foo("x") and unknown()`), reg)
	assert.True(t, IsTypeMismatch(err))
}

func TestBindActions_Order(t *testing.T) {
	reg := testRegistry(t)

	actions, err := BindActions(mustActions(t, "action_baz()\naction_qux(5)\naction_baz()"), reg)
	require.NoError(t, err)
	require.Len(t, actions, 3)
	assert.Equal(t, "action_baz", actions[0].Name())
	assert.Equal(t, "action_qux", actions[1].Name())
	assert.Equal(t, int64(5), actions[1].Args.Int(0))
	assert.Equal(t, "action_baz", actions[2].Name())
	assert.Equal(t, "action_baz()\naction_qux(5)\naction_baz()", RenderActions(actions))
}

func TestBindActions_Empty(t *testing.T) {
	reg := testRegistry(t)

	actions, err := BindActions(mustActions(t, ""), reg)
	require.NoError(t, err)
	assert.Empty(t, actions)
}

func TestBindActions_FilterNameIsNotAnAction(t *testing.T) {
	reg := testRegistry(t)

	_, err := BindActions(mustActions(t, "method_foo(1)"), reg)
	var be *BindError
	require.ErrorAs(t, err, &be)
	assert.Equal(t, ErrCodeOperationNotFound, be.Code)
	assert.Equal(t, registry.KindAction, be.Kind)
	assert.True(t, be.OtherKind)
}

func TestBind_ModeDispatch(t *testing.T) {
	reg := testRegistry(t)

	q, err := Bind(mustFilters(t, "method_foo(1)"), iql.ModeFilters, reg)
	require.NoError(t, err)
	assert.IsType(t, &Leaf{}, q)

	q, err = Bind(mustActions(t, "action_baz()"), iql.ModeActions, reg)
	require.NoError(t, err)
	assert.IsType(t, Actions{}, q)
}

func TestBind_CombinatorsRejectedForActions(t *testing.T) {
	reg := testRegistry(t)

	tree := &iql.And{Left: &iql.Call{Name: "action_baz"}, Right: &iql.Call{Name: "action_baz"}}
	q, err := Bind(tree, iql.ModeActions, reg)
	require.Error(t, err)
	assert.Nil(t, q)

	var be *BindError
	require.ErrorAs(t, err, &be)
	assert.Equal(t, ErrCodeUnsupportedSyntax, be.Code)

	_, err = Bind(&iql.Not{Operand: &iql.Call{Name: "action_baz"}}, iql.ModeActions, reg)
	require.ErrorAs(t, err, &be)
	assert.Equal(t, ErrCodeUnsupportedSyntax, be.Code)
}

func TestBindFilters_SequenceRejected(t *testing.T) {
	reg := testRegistry(t)

	_, err := BindFilters(mustActions(t, "method_foo(1)"), reg)
	var be *BindError
	require.ErrorAs(t, err, &be)
	assert.Equal(t, ErrCodeUnsupportedSyntax, be.Code)
}

func TestBind_IsPure(t *testing.T) {
	reg := testRegistry(t)
	node := mustFilters(t, `method_bar("London", 2020) or not method_foo(3)`)

	first, err := BindFilters(node, reg)
	require.NoError(t, err)
	second, err := BindFilters(node, reg)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestArgs_Accessors(t *testing.T) {
	args := Args{iql.StringValue("a"), iql.IntValue(2), iql.NullValue{}, iql.ListValue{iql.IntValue(1)}}

	assert.Equal(t, "a", args.String(0))
	assert.Equal(t, int64(2), args.Int(1))
	assert.Equal(t, 2.0, args.Float(1))
	assert.True(t, args.IsNull(2))
	assert.False(t, args.IsNull(0))
	assert.False(t, args.IsNull(10))
	assert.Equal(t, "", args.String(2))
	assert.Len(t, args.List(3), 1)
	assert.Equal(t, Args{iql.NullValue{}, iql.ListValue{iql.IntValue(1)}}, args.Variadic(2))
	assert.Nil(t, args.Variadic(4))
	assert.Equal(t, []any{"a", int64(2), nil, []any{int64(1)}}, args.Native())
}
