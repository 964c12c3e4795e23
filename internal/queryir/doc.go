// Package queryir is the query-in-progress representation used by the SQL
// view host.
//
// Filters realised by a view produce Predicate values; actions transform a
// *Select. The compiler in package querysql turns the result into
// parameterized SQL.
//
//	[bound IQL] → [view handlers] → [Query IR] → [SQL]
//
// SEALED INTERFACES:
//
// Query and Predicate are sealed interfaces using the marker method pattern.
// Only types in this package can implement them, so backends can switch
// over them exhaustively:
//
//	switch p := pred.(type) {
//	case *Compare:
//	    // column <op> value
//	case *And:
//	    // recurse
//	}
//
// IMMUTABILITY:
//
// Select methods return modified copies. A view can hand the same base
// select to any number of concurrent queries.
//
// VALUES:
//
// Literal values are plain Go values (nil, string, int64, float64, bool)
// as produced by Param from IQL literals. They are always bound as
// parameters, never interpolated into SQL text.
package queryir
