package nlq

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/roach88/viewql/internal/iql"
	"github.com/roach88/viewql/internal/query"
	"github.com/roach88/viewql/internal/registry"
	"github.com/roach88/viewql/internal/sqlview"
	"github.com/roach88/viewql/internal/store"
)

// DefaultMaxRetries is the number of extra attempts per stage.
const DefaultMaxRetries = 3

// Pipeline answers questions against SQL views.
type Pipeline struct {
	generator  Generator
	maxRetries int
	ids        IDGenerator
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithMaxRetries sets the number of extra attempts per stage. Negative
// values are treated as zero.
func WithMaxRetries(n int) Option {
	return func(p *Pipeline) {
		p.maxRetries = max(n, 0)
	}
}

// WithIDGenerator replaces the UUIDv7 ask identifiers, e.g. with
// sequential ids for golden tests.
func WithIDGenerator(ids IDGenerator) Option {
	return func(p *Pipeline) {
		p.ids = ids
	}
}

// NewPipeline creates a pipeline around a generator.
func NewPipeline(gen Generator, opts ...Option) *Pipeline {
	p := &Pipeline{
		generator:  gen,
		maxRetries: DefaultMaxRetries,
		ids:        UUIDv7IDs{},
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Result is the outcome of one ask.
type Result struct {
	ID       string
	Question string
	View     string

	Filters query.Filter  // nil when no filters were generated
	Actions query.Actions // empty when no actions were generated

	// FilterAttempts and ActionAttempts count generator calls per stage.
	FilterAttempts int
	ActionAttempts int

	SQL     string
	Params  []any
	Display string

	// Fingerprint identifies the built query by view, SQL and parameters.
	Fingerprint string

	Rows *store.Rows // nil unless executed
}

// FiltersIQL renders the bound filters, or "" when there are none.
func (r *Result) FiltersIQL() string {
	if r.Filters == nil {
		return ""
	}
	return query.RenderFilter(r.Filters)
}

// ActionsIQL renders the bound actions, one per line.
func (r *Result) ActionsIQL() string {
	return query.RenderActions(r.Actions)
}

// Ask generates, binds and evaluates IQL for question against v. The query
// is executed when db is not nil.
//
// Parse and bind errors are fed back to the generator up to the retry
// limit. Generator, host and database errors end the ask immediately.
func (p *Pipeline) Ask(ctx context.Context, question string, v *sqlview.View, db sqlview.Querier) (*Result, error) {
	res := &Result{
		ID:       p.ids.NewID(),
		Question: question,
		View:     v.Name(),
	}
	slog.Debug("ask started", "ask", res.ID, "view", res.View, "question", question)

	filters, attempts, err := p.stage(ctx, res, v, iql.ModeFilters)
	res.FilterAttempts = attempts
	if err != nil {
		return res, err
	}
	if filters != nil {
		res.Filters = filters.(query.Filter)
	}

	actions, attempts, err := p.stage(ctx, res, v, iql.ModeActions)
	res.ActionAttempts = attempts
	if err != nil {
		return res, err
	}
	if actions != nil {
		res.Actions = actions.(query.Actions)
	}

	q := v.NewQuery()
	if err := q.ApplyFilters(ctx, res.Filters); err != nil {
		return res, fmt.Errorf("ask %s: %w", res.ID, err)
	}
	if err := q.ApplyActions(ctx, res.Actions); err != nil {
		return res, fmt.Errorf("ask %s: %w", res.ID, err)
	}

	if res.SQL, res.Params, err = q.SQL(); err != nil {
		return res, fmt.Errorf("ask %s: %w", res.ID, err)
	}
	if res.Display, err = q.Display(); err != nil {
		return res, fmt.Errorf("ask %s: %w", res.ID, err)
	}
	if res.Fingerprint, err = Fingerprint(res.View, res.SQL, res.Params); err != nil {
		return res, fmt.Errorf("ask %s: %w", res.ID, err)
	}
	slog.Info("query built", "ask", res.ID, "view", res.View, "fingerprint", res.Fingerprint[:12], "sql", res.Display)

	if db == nil {
		return res, nil
	}
	if res.Rows, err = q.Execute(ctx, db); err != nil {
		return res, fmt.Errorf("ask %s: %w", res.ID, err)
	}
	slog.Info("query executed", "ask", res.ID, "rows", res.Rows.Len())
	return res, nil
}

// stage generates and binds one mode, retrying rejected IQL. It returns a
// nil query when the generator answered blank or with comments only.
func (p *Pipeline) stage(ctx context.Context, res *Result, v *sqlview.View, mode iql.Mode) (query.Query, int, error) {
	req := Request{
		Question: res.Question,
		View:     res.View,
		Mode:     mode,
		Catalog:  registry.Catalog(v.Registry(), kindOf(mode)),
	}

	var lastErr error
	for attempt := 1; attempt <= p.maxRetries+1; attempt++ {
		if err := ctx.Err(); err != nil {
			return nil, attempt - 1, err
		}

		text, err := p.generator.Generate(ctx, req)
		if err != nil {
			return nil, attempt, fmt.Errorf("ask %s: generate %s: %w", res.ID, mode, err)
		}
		if iql.IsBlank(text) {
			slog.Debug("no operations generated", "ask", res.ID, "mode", mode)
			return nil, attempt, nil
		}

		q, err := bind(text, mode, v.Registry())
		if err == nil {
			slog.Debug("iql accepted", "ask", res.ID, "mode", mode, "attempt", attempt)
			return q, attempt, nil
		}
		if !retryable(err) {
			return nil, attempt, fmt.Errorf("ask %s: %w", res.ID, err)
		}

		slog.Warn("iql rejected",
			"ask", res.ID,
			"mode", mode,
			"attempt", attempt,
			"error", err,
		)
		req.Feedback = append(req.Feedback, Attempt{Output: text, Err: err})
		lastErr = err
	}

	return nil, len(req.Feedback), &RetriesExhaustedError{
		AskID:    res.ID,
		Mode:     mode,
		Attempts: req.Feedback,
		Err:      lastErr,
	}
}

func bind(text string, mode iql.Mode, reg *registry.Registry) (query.Query, error) {
	node, err := iql.Parse(text, mode)
	if err != nil {
		return nil, err
	}
	return query.Bind(node, mode, reg)
}

func kindOf(mode iql.Mode) registry.Kind {
	if mode == iql.ModeActions {
		return registry.KindAction
	}
	return registry.KindFilter
}
