// Package eval hands bound IQL trees to a host.
//
// The host owns predicate composition and query realisation. This package
// only walks the tree: filter leaves are evaluated depth-first and
// left-to-right and combined strictly through the host's And, Or and Not;
// actions are applied in source order, each one receiving the query state
// its predecessor produced. Nothing is reordered, merged or simplified.
package eval
