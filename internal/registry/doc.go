// Package registry declares the operations a view exposes to IQL.
//
// A Registry holds two independent name spaces, filters and actions. Each
// operation is described by a Signature: its name, ordered typed parameters
// and optional defaults. Registries are built once through a Builder,
// validated, and are read-only afterwards, so a single Registry may be
// shared by concurrent binders.
//
// Parameter types form a closed set (see Type). Argument values are matched
// against them with Coerce, which implements the one fixed coercion table
// used everywhere in the module.
package registry
