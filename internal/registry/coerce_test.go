package registry

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/roach88/viewql/internal/iql"
)

func TestCoerce(t *testing.T) {
	tests := []struct {
		name     string
		value    iql.Value
		typ      Type
		nullable bool
		want     iql.Value
		ok       bool
	}{
		{name: "str", value: iql.StringValue("a"), typ: TypeStr, want: iql.StringValue("a"), ok: true},
		{name: "int into str", value: iql.IntValue(1), typ: TypeStr},
		{name: "int", value: iql.IntValue(1), typ: TypeInt, want: iql.IntValue(1), ok: true},
		{name: "numeric string into int", value: iql.StringValue("1"), typ: TypeInt},
		{name: "float into int", value: iql.FloatValue(1.5), typ: TypeInt},
		{name: "int widens to float", value: iql.IntValue(2), typ: TypeFloat, want: iql.FloatValue(2), ok: true},
		{name: "bool", value: iql.BoolValue(true), typ: TypeBool, want: iql.BoolValue(true), ok: true},
		{name: "int into bool", value: iql.IntValue(1), typ: TypeBool},
		{name: "bool into int", value: iql.BoolValue(true), typ: TypeInt},
		{name: "None into str", value: iql.NullValue{}, typ: TypeStr},
		{name: "None into nullable str", value: iql.NullValue{}, typ: TypeStr, nullable: true, want: iql.NullValue{}, ok: true},
		{name: "None into any", value: iql.NullValue{}, typ: TypeAny, want: iql.NullValue{}, ok: true},
		{name: "list into any", value: iql.ListValue{iql.IntValue(1)}, typ: TypeAny, want: iql.ListValue{iql.IntValue(1)}, ok: true},
		{
			name:  "mixed list into list",
			value: iql.ListValue{iql.IntValue(1), iql.StringValue("a")},
			typ:   TypeList,
			want:  iql.ListValue{iql.IntValue(1), iql.StringValue("a")},
			ok:    true,
		},
		{name: "empty list into list[int]", value: iql.ListValue{}, typ: TypeListInt, want: iql.ListValue{}, ok: true},
		{
			name:  "ints widen inside list[float]",
			value: iql.ListValue{iql.IntValue(1), iql.FloatValue(2.5)},
			typ:   TypeListFloat,
			want:  iql.ListValue{iql.FloatValue(1), iql.FloatValue(2.5)},
			ok:    true,
		},
		{name: "wrong element", value: iql.ListValue{iql.StringValue("a"), iql.IntValue(1)}, typ: TypeListStr},
		{name: "None element", value: iql.ListValue{iql.NullValue{}}, typ: TypeListStr, nullable: true},
		{name: "scalar into list", value: iql.StringValue("a"), typ: TypeListStr},
		{name: "list into str", value: iql.ListValue{}, typ: TypeStr},
		{name: "nil value", value: nil, typ: TypeAny},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := Coerce(tt.value, tt.typ, tt.nullable)
			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.Equal(t, tt.want, got)
			}
		})
	}
}

func TestDescribe(t *testing.T) {
	assert.Equal(t, "str", Describe(iql.StringValue("a")))
	assert.Equal(t, "None", Describe(iql.NullValue{}))
	assert.Equal(t, "list", Describe(iql.ListValue{}))
	assert.Equal(t, "list[int]", Describe(iql.ListValue{iql.IntValue(1), iql.IntValue(2)}))
	assert.Equal(t, "list", Describe(iql.ListValue{iql.IntValue(1), iql.StringValue("a")}))
}
