// Package query binds parsed IQL trees against a capability registry.
//
// Binding resolves every call to a registered signature, checks argument
// count and types, fills defaults, and produces either a Filter tree or an
// ordered Actions sequence made of BoundCalls. Nothing here talks to a host;
// see package eval for that.
package query
