// Package iql parses the intermediate query language produced by a
// text-generation model.
//
// IQL is deliberately tiny. A filters expression is a boolean combination of
// named calls with literal arguments:
//
//	filter_by_country("Poland") and not filter_by_position("Intern")
//
// An actions program is a sequence of bare calls, one per line or separated
// by semicolons:
//
//	sort_by_experience()
//	first_n(5)
//
// The parser is a dedicated recursive-descent parser that only ever builds
// the restricted node set (Call, Literal, And, Or, Not, Sequence). Anything
// else is rejected with an *Error carrying the offending span and the full
// source, so the caller can hand the exact failure back to the model and ask
// it to try again. Nothing in the input is ever executed.
//
// The package is pure: parsing touches no shared state and is safe to call
// from any goroutine.
package iql
