package queryir

import (
	"errors"
	"fmt"
	"regexp"
)

// identifierPattern matches plain or table-qualified SQL identifiers.
var identifierPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*(\.[A-Za-z_][A-Za-z0-9_]*)?$`)

// ValidIdentifier reports whether name can be spliced into SQL as a
// column or table reference.
func ValidIdentifier(name string) bool {
	return identifierPattern.MatchString(name)
}

// ValidationResult lists the problems found in a query.
type ValidationResult struct {
	// IsValid is true when Problems is empty.
	IsValid bool

	Problems []string
}

// Err returns the problems joined into one error, or nil.
func (r ValidationResult) Err() error {
	if r.IsValid {
		return nil
	}
	errs := make([]error, len(r.Problems))
	for i, p := range r.Problems {
		errs[i] = errors.New(p)
	}
	return fmt.Errorf("invalid query: %w", errors.Join(errs...))
}

// Validate checks that a query can be compiled safely: identifiers are
// plain names (they are spliced into SQL text, values are not), operators
// are known, and paging values are non-negative.
//
// Validate is a pure function with no side effects. It reports every
// problem rather than stopping at the first.
func Validate(query Query) ValidationResult {
	v := &validator{problems: []string{}}
	v.validateQuery(query)

	return ValidationResult{
		IsValid:  len(v.problems) == 0,
		Problems: v.problems,
	}
}

// validator accumulates problems during traversal.
type validator struct {
	problems []string
}

func (v *validator) addProblem(format string, args ...any) {
	v.problems = append(v.problems, fmt.Sprintf(format, args...))
}

func (v *validator) identifier(kind, name string) {
	if !identifierPattern.MatchString(name) {
		v.addProblem("invalid %s identifier %q", kind, name)
	}
}

func (v *validator) validateQuery(q Query) {
	switch query := q.(type) {
	case *Select:
		if query == nil {
			v.addProblem("nil query")
			return
		}
		v.validateSelect(query)
	case nil:
		v.addProblem("nil query")
	default:
		v.addProblem("unknown query type: %T", q)
	}
}

func (v *validator) validateSelect(sel *Select) {
	if sel.From != "" {
		v.identifier("table", sel.From)
	}
	if sel.From == "" && len(sel.Columns) == 0 {
		v.addProblem("select without FROM needs explicit columns")
	}

	for _, col := range sel.Columns {
		switch {
		case col.Const:
			if col.Alias == "" {
				v.addProblem("constant column needs an alias")
			}
			v.scalar("constant column", col.Value)
		case col.Name == "*":
		default:
			v.identifier("column", col.Name)
		}
		if col.Alias != "" {
			v.identifier("alias", col.Alias)
		}
	}

	if sel.Filter != nil {
		v.validatePredicate(sel.Filter)
	}

	for _, term := range sel.OrderBy {
		v.identifier("order", term.Column)
	}
	if sel.Limit != nil && *sel.Limit < 0 {
		v.addProblem("negative limit %d", *sel.Limit)
	}
	if sel.Offset != nil && *sel.Offset < 0 {
		v.addProblem("negative offset %d", *sel.Offset)
	}
}

func (v *validator) validatePredicate(p Predicate) {
	switch pred := p.(type) {
	case nil:
		v.addProblem("nil predicate")
	case *Literal:
		v.scalar("literal", pred.Value)
	case *Compare:
		v.identifier("column", pred.Column)
		if _, err := ParseCompareOp(string(pred.Op)); err != nil {
			v.addProblem("%v", err)
		}
		v.scalar("comparison value", pred.Value)
	case *In:
		v.identifier("column", pred.Column)
		for _, val := range pred.Values {
			v.scalar("IN value", val)
		}
	case *Like:
		v.identifier("column", pred.Column)
	case *IsNull:
		v.identifier("column", pred.Column)
	case *And:
		for _, sub := range pred.Predicates {
			v.validatePredicate(sub)
		}
	case *Or:
		for _, sub := range pred.Predicates {
			v.validatePredicate(sub)
		}
	case *Not:
		v.validatePredicate(pred.Predicate)
	default:
		v.addProblem("unknown predicate type: %T", p)
	}
}

// scalar checks that a value can be bound as a single SQL parameter.
func (v *validator) scalar(what string, val any) {
	switch val.(type) {
	case nil, string, int, int64, float64, bool, []byte:
	default:
		v.addProblem("%s has unsupported type %T", what, val)
	}
}
