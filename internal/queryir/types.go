package queryir

import (
	"fmt"

	"github.com/roach88/viewql/internal/iql"
)

// Query represents a query in the IR.
//
// This is a sealed interface - only types in this package implement it.
//
// Query types:
//   - *Select: table access with filtering, ordering and paging
type Query interface {
	queryNode() // Marker method - seals interface to this package
}

// Predicate represents a filter condition.
//
// This is a sealed interface - only types in this package implement it.
//
// Predicate types:
//   - *Literal: a bound value used as a truth value
//   - *Compare: column <op> value
//   - *In: column IN (values)
//   - *Like: column LIKE pattern
//   - *IsNull: column IS NULL
//   - *And, *Or: n-ary connectives
//   - *Not: negation
type Predicate interface {
	predicateNode() // Marker method - seals interface to this package
}

// Literal is a bound value evaluated for its truth.
//
// Translates to SQL:
//
//	?
type Literal struct {
	Value any
}

func (*Literal) predicateNode() {}

// CompareOp is a binary comparison operator.
type CompareOp string

const (
	OpEq CompareOp = "="
	OpNe CompareOp = "!="
	OpLt CompareOp = "<"
	OpLe CompareOp = "<="
	OpGt CompareOp = ">"
	OpGe CompareOp = ">="
)

// ParseCompareOp validates an operator spelling. "==" and "<>" are
// accepted as aliases.
func ParseCompareOp(s string) (CompareOp, error) {
	switch s {
	case "=", "==":
		return OpEq, nil
	case "!=", "<>":
		return OpNe, nil
	case "<":
		return OpLt, nil
	case "<=":
		return OpLe, nil
	case ">":
		return OpGt, nil
	case ">=":
		return OpGe, nil
	default:
		return "", fmt.Errorf("unknown comparison operator %q", s)
	}
}

// Compare compares a column with a value.
//
// Translates to SQL:
//
//	<column> <op> ?
type Compare struct {
	Column string
	Op     CompareOp
	Value  any
}

func (*Compare) predicateNode() {}

// In tests column membership. An empty Values list is always false.
//
// Translates to SQL:
//
//	<column> IN (?, ?, ...)
type In struct {
	Column string
	Values []any
}

func (*In) predicateNode() {}

// Like matches a column against an SQL LIKE pattern.
type Like struct {
	Column  string
	Pattern string
}

func (*Like) predicateNode() {}

// IsNull tests a column for NULL.
type IsNull struct {
	Column string
}

func (*IsNull) predicateNode() {}

// And is a conjunction. Empty Predicates is always true.
type And struct {
	Predicates []Predicate
}

func (*And) predicateNode() {}

// Or is a disjunction. Empty Predicates is always false.
type Or struct {
	Predicates []Predicate
}

func (*Or) predicateNode() {}

// Not negates a predicate.
type Not struct {
	Predicate Predicate
}

func (*Not) predicateNode() {}

// Column is one entry of the SELECT list: a column reference or a bound
// constant, optionally aliased.
type Column struct {
	Name  string // column name, or "*"
	Alias string

	// Const marks a constant column; Value holds its value.
	Const bool
	Value any
}

// Col references a column by name.
func Col(name string) Column {
	return Column{Name: name}
}

// Const selects a constant value under an alias.
func Const(value any, alias string) Column {
	return Column{Const: true, Value: value, Alias: alias}
}

// OrderTerm is one ORDER BY key.
type OrderTerm struct {
	Column string
	Desc   bool
}

// Select represents a single-table query.
//
// Semantics:
//
//	SELECT <columns> FROM <from> WHERE <filter>
//	ORDER BY <order> LIMIT <limit> OFFSET <offset>
//
// Every clause is optional. An empty From produces a FROM-less select,
// which is useful for constant queries.
type Select struct {
	Columns []Column
	From    string
	Filter  Predicate
	OrderBy []OrderTerm
	Limit   *int64
	Offset  *int64
}

func (*Select) queryNode() {}

// Clone returns a copy that shares no slices with s.
func (s *Select) Clone() *Select {
	c := *s
	c.Columns = append([]Column(nil), s.Columns...)
	c.OrderBy = append([]OrderTerm(nil), s.OrderBy...)
	if s.Limit != nil {
		n := *s.Limit
		c.Limit = &n
	}
	if s.Offset != nil {
		n := *s.Offset
		c.Offset = &n
	}
	return &c
}

// Where returns a copy with p added to the filter. An existing filter is
// kept and conjoined with p.
func (s *Select) Where(p Predicate) *Select {
	c := s.Clone()
	switch {
	case p == nil:
	case c.Filter == nil:
		c.Filter = p
	default:
		c.Filter = &And{Predicates: []Predicate{c.Filter, p}}
	}
	return c
}

// Order returns a copy with an ORDER BY key appended.
func (s *Select) Order(column string, desc bool) *Select {
	c := s.Clone()
	c.OrderBy = append(c.OrderBy, OrderTerm{Column: column, Desc: desc})
	return c
}

// WithLimit returns a copy limited to n rows.
func (s *Select) WithLimit(n int64) *Select {
	c := s.Clone()
	c.Limit = &n
	return c
}

// WithOffset returns a copy that skips n rows.
func (s *Select) WithOffset(n int64) *Select {
	c := s.Clone()
	c.Offset = &n
	return c
}

// Param converts an IQL literal into a query value. Lists become []any.
func Param(v iql.Value) any {
	if v == nil {
		return nil
	}
	return v.Native()
}

// Params converts IQL list elements into query values.
func Params(l iql.ListValue) []any {
	out := make([]any, len(l))
	for i, v := range l {
		out[i] = Param(v)
	}
	return out
}
