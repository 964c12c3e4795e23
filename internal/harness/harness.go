package harness

import (
	"context"
	"errors"
	"fmt"

	"github.com/roach88/viewql/internal/iql"
	"github.com/roach88/viewql/internal/nlq"
	"github.com/roach88/viewql/internal/sqlview"
	"github.com/roach88/viewql/internal/store"
	"github.com/roach88/viewql/internal/testutil"
	"github.com/roach88/viewql/internal/viewspec"
)

// Harness is the test execution engine for one scenario.
// It runs cases with sequential ask ids against a private database.
type Harness struct {
	store *store.Store
	view  *sqlview.View
	ids   *testutil.SequentialIDs
	opts  []nlq.Option
	exec  bool
}

// Run executes a test scenario and returns the result.
//
// Each scenario runs in a fresh in-memory database for isolation.
//
// Execution flow:
// 1. Create fresh in-memory database and apply the seed
// 2. Load and compile the views directory
// 3. Run every case through the nlq pipeline
// 4. Return result with pass/fail, case outcomes, and errors
func Run(scenario *Scenario) (*Result, error) {
	ctx := context.Background()

	st, err := store.Open(store.MemoryPath)
	if err != nil {
		return nil, fmt.Errorf("failed to create in-memory store: %w", err)
	}
	defer st.Close()

	if err := st.Seed(ctx, scenario.Seed); err != nil {
		return nil, fmt.Errorf("failed to seed database: %w", err)
	}

	loaded, errs := viewspec.LoadViews(scenario.Views, viewspec.LoadModeFailFast)
	if len(errs) > 0 {
		return nil, fmt.Errorf("failed to load views: %w", errors.Join(errs...))
	}
	v := loaded.View(scenario.View)
	if v == nil {
		return nil, fmt.Errorf("view %q not found in %s (have %v)", scenario.View, scenario.Views, loaded.Names())
	}

	ids := testutil.NewSequentialIDs(scenario.Name)
	h := &Harness{
		store: st,
		view:  v,
		ids:   ids,
		opts:  []nlq.Option{nlq.WithIDGenerator(ids)},
		exec:  len(scenario.Seed) > 0,
	}
	if scenario.MaxRetries != nil {
		h.opts = append(h.opts, nlq.WithMaxRetries(*scenario.MaxRetries))
	}

	result := NewResult()
	for _, c := range scenario.Cases {
		cr := h.runCase(ctx, c)
		result.Cases = append(result.Cases, cr)

		for _, msg := range EvaluateAssertions(&cr, c.Assertions) {
			result.AddError(fmt.Sprintf("case %q: %s", c.Name, msg))
		}
	}

	return result, nil
}

// runCase answers one case with its scripted IQL.
func (h *Harness) runCase(ctx context.Context, c Case) CaseResult {
	gen := nlq.NewStaticGenerator().
		Script(iql.ModeFilters, c.Filters...).
		Script(iql.ModeActions, c.Actions...)

	question := c.Question
	if question == "" {
		question = c.Name
	}

	var db sqlview.Querier
	if h.exec {
		db = h.store
	}

	res, err := nlq.NewPipeline(gen, h.opts...).Ask(ctx, question, h.view, db)

	cr := CaseResult{
		Name:           c.Name,
		AskID:          res.ID,
		FilterAttempts: res.FilterAttempts,
		ActionAttempts: res.ActionAttempts,
	}
	if err != nil {
		cr.Error = err.Error()
		cr.ErrorCode = nlq.ErrorCode(err)
		return cr
	}

	cr.Filters = res.FiltersIQL()
	cr.Actions = res.ActionsIQL()
	cr.SQL = res.SQL
	cr.Params = res.Params
	cr.Display = res.Display
	cr.Rows = res.Rows
	return cr
}
