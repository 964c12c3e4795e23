package store

import (
	"context"
	"fmt"
)

// Rows is a fully materialised result set.
type Rows struct {
	Columns []string `json:"columns"`
	Values  [][]any  `json:"values"`
}

// Len returns the number of rows.
func (r *Rows) Len() int {
	return len(r.Values)
}

// Records returns each row as a column-name map, in row order.
func (r *Rows) Records() []map[string]any {
	out := make([]map[string]any, len(r.Values))
	for i, row := range r.Values {
		rec := make(map[string]any, len(r.Columns))
		for j, col := range r.Columns {
			rec[col] = row[j]
		}
		out[i] = rec
	}
	return out
}

// Column returns the values of one column, or nil if there is no such
// column.
func (r *Rows) Column(name string) []any {
	idx := -1
	for i, c := range r.Columns {
		if c == name {
			idx = i
			break
		}
	}
	if idx < 0 {
		return nil
	}
	out := make([]any, len(r.Values))
	for i, row := range r.Values {
		out[i] = row[idx]
	}
	return out
}

// QueryRows executes a query and scans every row. TEXT and BLOB values
// that arrive as []byte are returned as string.
//
// Returns an empty Values slice (not nil) when no rows match.
func (s *Store) QueryRows(ctx context.Context, query string, args ...any) (*Rows, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query: %w", err)
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("read columns: %w", err)
	}

	result := &Rows{Columns: cols, Values: [][]any{}}
	for rows.Next() {
		vals := make([]any, len(cols))
		ptrs := make([]any, len(cols))
		for i := range vals {
			ptrs[i] = &vals[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, fmt.Errorf("scan row: %w", err)
		}
		for i, v := range vals {
			if b, ok := v.([]byte); ok {
				vals[i] = string(b)
			}
		}
		result.Values = append(result.Values, vals)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate rows: %w", err)
	}
	return result, nil
}
