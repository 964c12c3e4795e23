package registry

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/viewql/internal/iql"
)

func TestBuild_DeclarationOrderAndLookup(t *testing.T) {
	reg, err := NewBuilder().
		Filter(Signature{Name: "method_foo", Params: []Param{{Name: "idx", Type: TypeInt}}}).
		Filter(Signature{Name: "method_bar", Params: []Param{{Name: "city", Type: TypeStr}, {Name: "year", Type: TypeInt}}}).
		Action(Signature{Name: "action_baz"}).
		Action(Signature{Name: "action_qux", Params: []Param{{Name: "limit", Type: TypeInt}}}).
		Build()
	require.NoError(t, err)

	assert.Equal(t, []string{"method_foo", "method_bar"}, reg.Names(KindFilter))
	assert.Equal(t, []string{"action_baz", "action_qux"}, reg.Names(KindAction))

	sig, ok := reg.Lookup(KindFilter, "method_bar")
	require.True(t, ok)
	assert.Equal(t, KindFilter, sig.Kind)
	assert.Len(t, sig.Params, 2)

	_, ok = reg.Lookup(KindAction, "method_bar")
	assert.False(t, ok, "filters and actions are separate name spaces")

	_, ok = reg.Lookup(KindFilter, "METHOD_BAR")
	assert.False(t, ok, "lookup is exact")
}

func TestBuild_SameNameInBothKinds(t *testing.T) {
	reg, err := NewBuilder().
		Filter(Signature{Name: "limit"}).
		Action(Signature{Name: "limit"}).
		Build()
	require.NoError(t, err)
	assert.Equal(t, 1, reg.Len(KindFilter))
	assert.Equal(t, 1, reg.Len(KindAction))
}

func TestBuild_DuplicateOperation(t *testing.T) {
	_, err := NewBuilder().
		Filter(Signature{Name: "by_city", Params: []Param{{Name: "city", Type: TypeStr}}}).
		Filter(Signature{Name: "by_city"}).
		Build()
	require.Error(t, err)
	assert.True(t, IsDuplicateOperation(err))

	var ce *ConfigError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, "by_city", ce.Name)
	assert.Equal(t, KindFilter, ce.Kind)
}

func TestBuild_InvalidSignatures(t *testing.T) {
	tests := []struct {
		name  string
		sig   Signature
		param string
	}{
		{name: "empty name", sig: Signature{Name: ""}},
		{name: "name with dot", sig: Signature{Name: "a.b"}},
		{name: "reserved name", sig: Signature{Name: "not"}},
		{name: "variadic without params", sig: Signature{Name: "f", Variadic: true}},
		{
			name:  "duplicate param",
			sig:   Signature{Name: "f", Params: []Param{{Name: "x", Type: TypeInt}, {Name: "x", Type: TypeStr}}},
			param: "x",
		},
		{
			name:  "invalid type",
			sig:   Signature{Name: "f", Params: []Param{{Name: "x", Type: "dict"}}},
			param: "x",
		},
		{
			name: "required after default",
			sig: Signature{Name: "f", Params: []Param{
				{Name: "a", Type: TypeInt, Default: iql.IntValue(1)},
				{Name: "b", Type: TypeInt},
			}},
			param: "b",
		},
		{
			name:  "default of wrong type",
			sig:   Signature{Name: "f", Params: []Param{{Name: "a", Type: TypeInt, Default: iql.StringValue("x")}}},
			param: "a",
		},
		{
			name:  "None default without nullable",
			sig:   Signature{Name: "f", Params: []Param{{Name: "a", Type: TypeStr, Default: iql.NullValue{}}}},
			param: "a",
		},
		{
			name: "variadic default",
			sig: Signature{Name: "f", Variadic: true, Params: []Param{
				{Name: "rest", Type: TypeStr, Default: iql.StringValue("x")},
			}},
			param: "rest",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewBuilder().Filter(tt.sig).Build()
			require.Error(t, err)
			assert.True(t, IsInvalidSignature(err))
			assert.False(t, IsDuplicateOperation(err))

			var ce *ConfigError
			require.ErrorAs(t, err, &ce)
			assert.Equal(t, tt.param, ce.Param)
		})
	}
}

func TestBuild_ValidDefaults(t *testing.T) {
	reg, err := NewBuilder().
		Filter(Signature{Name: "f", Params: []Param{
			{Name: "a", Type: TypeStr},
			{Name: "b", Type: TypeFloat, Default: iql.IntValue(3)},
			{Name: "c", Type: TypeStr, Default: iql.NullValue{}, Nullable: true},
			{Name: "d", Type: TypeListFloat, Default: iql.ListValue{iql.IntValue(1)}},
		}}).
		Build()
	require.NoError(t, err)

	sig, ok := reg.Lookup(KindFilter, "f")
	require.True(t, ok)
	assert.Equal(t, iql.FloatValue(3), sig.Params[1].Default)
	assert.Equal(t, iql.NullValue{}, sig.Params[2].Default)
	assert.Equal(t, iql.ListValue{iql.FloatValue(1)}, sig.Params[3].Default)
	assert.Equal(t, `f(a: str, b: float = 3.0, c: str | None = None, d: list[float] = [1.0])`, sig.String())
}

func TestBuild_RegistryIsIsolatedFromBuilder(t *testing.T) {
	params := []Param{{Name: "x", Type: TypeInt}}
	b := NewBuilder().Filter(Signature{Name: "f", Params: params})
	reg, err := b.Build()
	require.NoError(t, err)

	params[0].Name = "changed"
	b.Filter(Signature{Name: "g"})

	sig, _ := reg.Lookup(KindFilter, "f")
	assert.Equal(t, "x", sig.Params[0].Name)
	assert.Equal(t, 1, reg.Len(KindFilter))
}

func TestSignature_Arity(t *testing.T) {
	tests := []struct {
		name     string
		sig      Signature
		min, max int
	}{
		{name: "no params", sig: Signature{Name: "f"}, min: 0, max: 0},
		{
			name: "required and optional",
			sig: Signature{Name: "f", Params: []Param{
				{Name: "a", Type: TypeInt},
				{Name: "b", Type: TypeInt, Default: iql.IntValue(0)},
			}},
			min: 1, max: 2,
		},
		{
			name: "variadic",
			sig: Signature{Name: "f", Variadic: true, Params: []Param{
				{Name: "a", Type: TypeInt},
				{Name: "rest", Type: TypeStr},
			}},
			min: 1, max: -1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			min, max := tt.sig.Arity()
			assert.Equal(t, tt.min, min)
			assert.Equal(t, tt.max, max)
		})
	}
}

func TestSignature_String(t *testing.T) {
	sig := Signature{Name: "search", Variadic: true, Params: []Param{
		{Name: "city", Type: TypeStr},
		{Name: "year", Type: TypeInt, Default: iql.IntValue(2020)},
		{Name: "country", Type: TypeStr, Nullable: true, Default: iql.NullValue{}},
		{Name: "tags", Type: TypeStr},
	}}
	assert.Equal(t, `search(city: str, year: int = 2020, country: str | None = None, *tags: str)`, sig.String())
}

func TestParseType(t *testing.T) {
	tests := []struct {
		in      string
		want    Type
		wantErr bool
	}{
		{in: "str", want: TypeStr},
		{in: "string", want: TypeStr},
		{in: " int ", want: TypeInt},
		{in: "FLOAT", want: TypeFloat},
		{in: "list", want: TypeList},
		{in: "list[ int ]", want: TypeListInt},
		{in: "list[string]", want: TypeListStr},
		{in: "any", want: TypeAny},
		{in: "dict", wantErr: true},
		{in: "list[any]", wantErr: true},
		{in: "list[list[int]]", wantErr: true},
		{in: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseType(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestCatalog(t *testing.T) {
	reg, err := NewBuilder().
		Filter(Signature{
			Name:        "by_city",
			Params:      []Param{{Name: "city", Type: TypeStr}},
			Description: "Candidates living\n  in the given city",
		}).
		Filter(Signature{Name: "senior"}).
		Action(Signature{Name: "first", Params: []Param{{Name: "n", Type: TypeInt}}}).
		Build()
	require.NoError(t, err)

	assert.Equal(t, "by_city(city: str) - Candidates living in the given city\nsenior()\n", Catalog(reg, KindFilter))
	assert.Equal(t, "first(n: int)\n", Catalog(reg, KindAction))
}
