package harness

import (
	"fmt"
	"reflect"
	"strings"
)

// AssertionError is returned when an assertion fails.
// It includes detailed context to help debug the failure.
type AssertionError struct {
	Type     string // Assertion type for categorization
	Expected string // Human-readable expected outcome
	Actual   string // Human-readable actual outcome
}

// Error implements the error interface.
func (e *AssertionError) Error() string {
	return fmt.Sprintf("assertion failed: %s\n  Expected: %s\n  Actual: %s", e.Type, e.Expected, e.Actual)
}

// EvaluateAssertions evaluates all assertions against a case result.
// Returns a slice of error messages for failed assertions.
//
// A failed case without an error assertion reports the failure itself.
func EvaluateAssertions(cr *CaseResult, assertions []Assertion) []string {
	var errs []string

	expectsError := false
	for _, a := range assertions {
		if a.Type == AssertError {
			expectsError = true
		}
	}
	if cr.Error != "" && !expectsError {
		errs = append(errs, fmt.Sprintf("unexpected error (%s): %s", cr.ErrorCode, cr.Error))
	}

	for i, a := range assertions {
		var err error

		switch a.Type {
		case AssertSQL:
			err = assertText(AssertSQL, cr.SQL, a)
		case AssertDisplay:
			err = assertText(AssertDisplay, cr.Display, a)
		case AssertParams:
			err = assertValues(AssertParams, cr.Params, a.Values)
		case AssertRowCount:
			err = assertRowCount(cr, a)
		case AssertColumn:
			err = assertColumn(cr, a)
		case AssertError:
			err = assertError(cr, a)
		case AssertAttempts:
			err = assertAttempts(cr, a)
		default:
			err = fmt.Errorf("assertion[%d]: unknown assertion type %q", i, a.Type)
		}

		if err != nil {
			errs = append(errs, err.Error())
		}
	}

	return errs
}

func assertText(typ, actual string, a Assertion) error {
	if a.Equals != "" && actual != a.Equals {
		return &AssertionError{Type: typ, Expected: a.Equals, Actual: actual}
	}
	if a.Contains != "" && !strings.Contains(actual, a.Contains) {
		return &AssertionError{Type: typ, Expected: "text containing " + a.Contains, Actual: actual}
	}
	return nil
}

func assertValues(typ string, actual, expected []any) error {
	if len(actual) != len(expected) {
		return &AssertionError{Type: typ, Expected: fmt.Sprintf("%v", expected), Actual: fmt.Sprintf("%v", actual)}
	}
	for i := range expected {
		if !valuesEqual(expected[i], actual[i]) {
			return &AssertionError{
				Type:     typ,
				Expected: fmt.Sprintf("%v", expected),
				Actual:   fmt.Sprintf("%v (differs at %d)", actual, i),
			}
		}
	}
	return nil
}

func assertRowCount(cr *CaseResult, a Assertion) error {
	if cr.Rows == nil {
		return &AssertionError{Type: AssertRowCount, Expected: fmt.Sprintf("%d rows", a.Count), Actual: "query was not executed"}
	}
	if cr.Rows.Len() != a.Count {
		return &AssertionError{Type: AssertRowCount, Expected: fmt.Sprintf("%d rows", a.Count), Actual: fmt.Sprintf("%d rows", cr.Rows.Len())}
	}
	return nil
}

func assertColumn(cr *CaseResult, a Assertion) error {
	typ := AssertColumn + " " + a.Column
	if cr.Rows == nil {
		return &AssertionError{Type: typ, Expected: fmt.Sprintf("%v", a.Values), Actual: "query was not executed"}
	}
	values := cr.Rows.Column(a.Column)
	if values == nil && len(cr.Rows.Columns) > 0 {
		return &AssertionError{Type: typ, Expected: fmt.Sprintf("%v", a.Values), Actual: fmt.Sprintf("no such column (have %v)", cr.Rows.Columns)}
	}
	return assertValues(typ, values, a.Values)
}

func assertError(cr *CaseResult, a Assertion) error {
	if cr.Error == "" {
		return &AssertionError{Type: AssertError, Expected: describeError(a), Actual: "no error"}
	}
	if a.Code != "" && cr.ErrorCode != a.Code {
		return &AssertionError{Type: AssertError, Expected: describeError(a), Actual: fmt.Sprintf("%s: %s", cr.ErrorCode, cr.Error)}
	}
	if a.Contains != "" && !strings.Contains(cr.Error, a.Contains) {
		return &AssertionError{Type: AssertError, Expected: describeError(a), Actual: fmt.Sprintf("%s: %s", cr.ErrorCode, cr.Error)}
	}
	return nil
}

func describeError(a Assertion) string {
	switch {
	case a.Code != "" && a.Contains != "":
		return fmt.Sprintf("%s containing %q", a.Code, a.Contains)
	case a.Code != "":
		return a.Code
	default:
		return fmt.Sprintf("error containing %q", a.Contains)
	}
}

func assertAttempts(cr *CaseResult, a Assertion) error {
	if a.Filters > 0 && cr.FilterAttempts != a.Filters {
		return &AssertionError{Type: AssertAttempts, Expected: fmt.Sprintf("%d filter attempts", a.Filters), Actual: fmt.Sprintf("%d", cr.FilterAttempts)}
	}
	if a.Actions > 0 && cr.ActionAttempts != a.Actions {
		return &AssertionError{Type: AssertAttempts, Expected: fmt.Sprintf("%d action attempts", a.Actions), Actual: fmt.Sprintf("%d", cr.ActionAttempts)}
	}
	return nil
}

// valuesEqual compares a YAML-decoded expectation with a value produced by
// the query or the database.
func valuesEqual(expected, actual any) bool {
	// Handle nil cases
	if expected == nil || actual == nil {
		return expected == nil && actual == nil
	}

	switch exp := expected.(type) {
	case int:
		switch act := actual.(type) {
		case int64:
			return int64(exp) == act
		case float64:
			return float64(exp) == act
		}
		return false
	case float64:
		switch act := actual.(type) {
		case float64:
			return exp == act
		case int64:
			return exp == float64(act)
		}
		return false
	case bool:
		// SQLite stores booleans as integers (0/1)
		switch act := actual.(type) {
		case bool:
			return exp == act
		case int64:
			return exp == (act != 0)
		}
		return false
	case []any:
		act, ok := actual.([]any)
		if !ok || len(act) != len(exp) {
			return false
		}
		for i := range exp {
			if !valuesEqual(exp[i], act[i]) {
				return false
			}
		}
		return true
	}

	return reflect.DeepEqual(expected, actual)
}
