package harness

import "github.com/roach88/viewql/internal/store"

// CaseResult is the observed outcome of one case.
type CaseResult struct {
	Name  string `json:"name"`
	AskID string `json:"ask_id"`

	// Filters and Actions are the accepted IQL, rendered from the bound
	// trees.
	Filters string `json:"filters,omitempty"`
	Actions string `json:"actions,omitempty"`

	FilterAttempts int `json:"filter_attempts"`
	ActionAttempts int `json:"action_attempts"`

	SQL     string      `json:"sql,omitempty"`
	Params  []any       `json:"params,omitempty"`
	Display string      `json:"display,omitempty"`
	Rows    *store.Rows `json:"rows,omitempty"`

	Error     string `json:"error,omitempty"`
	ErrorCode string `json:"error_code,omitempty"`
}

// Result is the outcome of a test scenario execution.
type Result struct {
	// Pass indicates overall test success.
	// True if every assertion of every case holds.
	Pass bool `json:"pass"`

	// Cases holds one result per scenario case, in order.
	Cases []CaseResult `json:"cases"`

	// Errors contains assertion failure messages.
	// Empty if Pass is true.
	Errors []string `json:"errors,omitempty"`
}

// NewResult creates a new passing result.
// Used as the starting point for test execution.
func NewResult() *Result {
	return &Result{
		Pass:   true,
		Cases:  []CaseResult{},
		Errors: []string{},
	}
}

// AddError adds a validation error and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}
