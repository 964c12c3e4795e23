// Package querysql compiles Query IR into parameterized SQLite SQL.
package querysql

import (
	"fmt"
	"strings"

	"github.com/roach88/viewql/internal/queryir"
)

// SQLCompiler compiles Query IR to parameterized SQL for SQLite.
//
// CRITICAL: All values are parameterized (never interpolated). Identifiers
// are spliced into the text, so queries are validated first.
type SQLCompiler struct{}

// NewSQLCompiler creates a new SQLCompiler.
func NewSQLCompiler() *SQLCompiler {
	return &SQLCompiler{}
}

// Compile converts a query to parameterized SQL.
// Returns (sql, params, error) tuple. Parameters appear in the order of
// their placeholders: select list, WHERE, LIMIT, OFFSET.
func (c *SQLCompiler) Compile(q queryir.Query) (string, []any, error) {
	if err := queryir.Validate(q).Err(); err != nil {
		return "", nil, err
	}

	switch query := q.(type) {
	case *queryir.Select:
		return c.compileSelect(query)
	default:
		return "", nil, fmt.Errorf("unsupported query type: %T", q)
	}
}

// compileSelect compiles a queryir.Select to SQL.
func (c *SQLCompiler) compileSelect(q *queryir.Select) (string, []any, error) {
	var b strings.Builder
	var params []any

	b.WriteString("SELECT ")
	columns, colParams := c.compileColumns(q.Columns)
	b.WriteString(columns)
	params = append(params, colParams...)

	if q.From != "" {
		b.WriteString(" FROM ")
		b.WriteString(q.From)
	}

	if q.Filter != nil {
		filterSQL, filterParams, err := c.compilePredicate(q.Filter, precLowest)
		if err != nil {
			return "", nil, fmt.Errorf("compile filter: %w", err)
		}
		b.WriteString(" WHERE ")
		b.WriteString(filterSQL)
		params = append(params, filterParams...)
	}

	if len(q.OrderBy) > 0 {
		terms := make([]string, len(q.OrderBy))
		for i, t := range q.OrderBy {
			terms[i] = t.Column
			if t.Desc {
				terms[i] += " DESC"
			}
		}
		b.WriteString(" ORDER BY ")
		b.WriteString(strings.Join(terms, ", "))
	}

	// SQLite only accepts OFFSET after LIMIT; -1 means no limit.
	switch {
	case q.Limit != nil:
		b.WriteString(" LIMIT ?")
		params = append(params, *q.Limit)
	case q.Offset != nil:
		b.WriteString(" LIMIT -1")
	}
	if q.Offset != nil {
		b.WriteString(" OFFSET ?")
		params = append(params, *q.Offset)
	}

	return b.String(), params, nil
}

// compileColumns converts the select list. Constants become bound
// parameters.
func (c *SQLCompiler) compileColumns(cols []queryir.Column) (string, []any) {
	if len(cols) == 0 {
		return "*", nil
	}

	var params []any
	parts := make([]string, len(cols))
	for i, col := range cols {
		expr := col.Name
		if col.Const {
			expr = "?"
			params = append(params, col.Value)
		}
		if col.Alias != "" {
			expr += " AS " + col.Alias
		}
		parts[i] = expr
	}
	return strings.Join(parts, ", "), params
}

// Operator binding strength, loosest first. A child is parenthesized when
// it binds looser than its parent.
const (
	precLowest = iota
	precOr
	precAnd
	precNot
	precAtom
)

// compilePredicate compiles a predicate to a WHERE fragment.
// CRITICAL: Values NEVER interpolated - always use ? placeholders.
func (c *SQLCompiler) compilePredicate(p queryir.Predicate, parent int) (string, []any, error) {
	sql, params, prec, err := c.predicate(p)
	if err != nil {
		return "", nil, err
	}
	if prec < parent {
		sql = "(" + sql + ")"
	}
	return sql, params, nil
}

func (c *SQLCompiler) predicate(p queryir.Predicate) (string, []any, int, error) {
	switch pred := p.(type) {
	case *queryir.Literal:
		return "?", []any{pred.Value}, precAtom, nil

	case *queryir.Compare:
		return fmt.Sprintf("%s %s ?", pred.Column, pred.Op), []any{pred.Value}, precAtom, nil

	case *queryir.In:
		if len(pred.Values) == 0 {
			return "0", nil, precAtom, nil
		}
		marks := strings.TrimSuffix(strings.Repeat("?, ", len(pred.Values)), ", ")
		return fmt.Sprintf("%s IN (%s)", pred.Column, marks), append([]any(nil), pred.Values...), precAtom, nil

	case *queryir.Like:
		return pred.Column + " LIKE ?", []any{pred.Pattern}, precAtom, nil

	case *queryir.IsNull:
		return pred.Column + " IS NULL", nil, precAtom, nil

	case *queryir.And:
		if len(pred.Predicates) == 0 {
			return "1 = 1", nil, precAtom, nil // vacuous truth
		}
		sql, params, err := c.join(pred.Predicates, " AND ", precAnd)
		return sql, params, precAnd, err

	case *queryir.Or:
		if len(pred.Predicates) == 0 {
			return "1 = 0", nil, precAtom, nil
		}
		sql, params, err := c.join(pred.Predicates, " OR ", precOr)
		return sql, params, precOr, err

	case *queryir.Not:
		sql, params, err := c.compilePredicate(pred.Predicate, precNot)
		if err != nil {
			return "", nil, 0, err
		}
		return "NOT " + sql, params, precNot, nil

	default:
		return "", nil, 0, fmt.Errorf("unsupported predicate type: %T", p)
	}
}

func (c *SQLCompiler) join(preds []queryir.Predicate, sep string, prec int) (string, []any, error) {
	parts := make([]string, 0, len(preds))
	var all []any
	for _, p := range preds {
		sql, params, err := c.compilePredicate(p, prec)
		if err != nil {
			return "", nil, err
		}
		parts = append(parts, sql)
		all = append(all, params...)
	}
	return strings.Join(parts, sep), all, nil
}
