// Package nlq turns a natural-language question into a query against a
// view.
//
// A Generator (usually a language model client) writes IQL for the
// question. The Pipeline parses and binds that text against the view's
// registry and, when it is rejected, asks again with the failed attempts
// as feedback. Only parse and bind errors are retried: a rejected IQL
// text is something the generator can correct, a failing host or a
// broken generator is not.
//
// Each stage runs filters first, then actions:
//
//	question ─► Generate(filters) ─► Parse ─► Bind ─┐
//	                 ▲                              │ retry with feedback
//	                 └──────────────────────────────┘
//	         ─► Generate(actions) ─► ...            ─► Evaluate ─► SQL ─► Execute
//
// A blank generator response means the question needs no operations of
// that kind.
package nlq
