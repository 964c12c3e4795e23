package harness

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Scenario defines a conformance test scenario: a seeded database, a view
// and the cases run against it.
type Scenario struct {
	// Name uniquely identifies this scenario.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Views is the directory of CUE view files. Relative paths are
	// resolved against the scenario file location.
	Views string `yaml:"views"`

	// View names the view the cases query.
	View string `yaml:"view"`

	// MaxRetries is the number of extra generator attempts per stage.
	// Nil uses the pipeline default.
	MaxRetries *int `yaml:"max_retries,omitempty"`

	// Seed holds SQL statements run before the cases. Queries are only
	// executed when a seed is present.
	Seed []string `yaml:"seed,omitempty"`

	// Cases are run in order against the same database.
	Cases []Case `yaml:"cases"`
}

// Case is one question answered with scripted IQL.
type Case struct {
	// Name identifies the case in results.
	Name string `yaml:"name"`

	// Question is passed to the generator. Defaults to Name.
	Question string `yaml:"question,omitempty"`

	// Filters and Actions script the generator responses per stage.
	Filters Script `yaml:"filters,omitempty"`
	Actions Script `yaml:"actions,omitempty"`

	// Assertions validate the outcome.
	Assertions []Assertion `yaml:"assertions"`
}

// Script is one IQL text or a list of texts replayed on retries.
type Script []string

// UnmarshalYAML accepts a scalar or a sequence of scalars.
func (s *Script) UnmarshalYAML(value *yaml.Node) error {
	switch value.Kind {
	case yaml.ScalarNode:
		*s = Script{value.Value}
		return nil
	case yaml.SequenceNode:
		var texts []string
		if err := value.Decode(&texts); err != nil {
			return err
		}
		*s = texts
		return nil
	default:
		return fmt.Errorf("line %d: expected IQL text or a list of IQL texts", value.Line)
	}
}

// Assertion validates one aspect of a case outcome.
type Assertion struct {
	// Type specifies the assertion type:
	// - "sql": compiled SQL (Equals or Contains)
	// - "display": interpolated SQL (Equals or Contains)
	// - "params": bound parameters (Values)
	// - "row_count": number of rows returned (Count)
	// - "column": values of one result column in order (Column, Values)
	// - "error": failure (Code and/or Contains)
	// - "attempts": generator calls per stage (Filters, Actions)
	Type string `yaml:"type"`

	Equals   string `yaml:"equals,omitempty"`
	Contains string `yaml:"contains,omitempty"`

	// Values are the expected parameters or column values.
	Values []any `yaml:"values,omitempty"`

	// Count is the expected number of rows (used by row_count).
	Count int `yaml:"count,omitempty"`

	// Column is the result column name (used by column).
	Column string `yaml:"column,omitempty"`

	// Code is the expected error code (used by error).
	Code string `yaml:"code,omitempty"`

	// Filters and Actions are the expected generator calls (used by
	// attempts). Zero is not checked.
	Filters int `yaml:"filters,omitempty"`
	Actions int `yaml:"actions,omitempty"`
}

// Assertion type constants.
const (
	AssertSQL      = "sql"
	AssertDisplay  = "display"
	AssertParams   = "params"
	AssertRowCount = "row_count"
	AssertColumn   = "column"
	AssertError    = "error"
	AssertAttempts = "attempts"
)

// LoadScenario reads and parses a scenario YAML file.
// Returns an error if the file doesn't exist, is malformed,
// contains unknown fields (typos), or is missing required fields.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}

	// Parse YAML with strict field validation (catches typos)
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	// Resolve the views path relative to the scenario BEFORE validation
	if scenario.Views != "" && !filepath.IsAbs(scenario.Views) {
		scenario.Views = filepath.Join(filepath.Dir(path), scenario.Views)
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}

	return &scenario, nil
}

// validateScenario checks that required fields are present and valid.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}

	if s.Description == "" {
		return fmt.Errorf("description is required")
	}

	if s.Views == "" {
		return fmt.Errorf("views directory is required")
	}
	if _, err := os.Stat(s.Views); os.IsNotExist(err) {
		return fmt.Errorf("views directory not found: %s", s.Views)
	}

	if s.View == "" {
		return fmt.Errorf("view is required")
	}

	if s.MaxRetries != nil && *s.MaxRetries < 0 {
		return fmt.Errorf("max_retries must be non-negative")
	}

	if len(s.Cases) == 0 {
		return fmt.Errorf("cases list is required and must be non-empty")
	}

	for i, c := range s.Cases {
		if c.Name == "" {
			return fmt.Errorf("cases[%d]: name is required", i)
		}
		if len(c.Assertions) == 0 {
			return fmt.Errorf("cases[%d]: assertions list is required and must be non-empty", i)
		}
		for j := range c.Assertions {
			if err := validateAssertion(i, j, &c.Assertions[j]); err != nil {
				return err
			}
		}
	}

	return nil
}

// validateAssertion validates a single assertion based on its type.
func validateAssertion(caseIndex, index int, a *Assertion) error {
	prefix := fmt.Sprintf("cases[%d].assertions[%d]", caseIndex, index)

	switch a.Type {
	case "":
		return fmt.Errorf("%s: type is required", prefix)
	case AssertSQL, AssertDisplay:
		if a.Equals == "" && a.Contains == "" {
			return fmt.Errorf("%s: equals or contains is required for %s", prefix, a.Type)
		}
	case AssertParams:
		// An empty values list asserts no parameters.
	case AssertRowCount:
		if a.Count < 0 {
			return fmt.Errorf("%s: count must be non-negative for row_count", prefix)
		}
	case AssertColumn:
		if a.Column == "" {
			return fmt.Errorf("%s: column is required for column", prefix)
		}
	case AssertError:
		if a.Code == "" && a.Contains == "" {
			return fmt.Errorf("%s: code or contains is required for error", prefix)
		}
	case AssertAttempts:
		if a.Filters <= 0 && a.Actions <= 0 {
			return fmt.Errorf("%s: filters or actions is required for attempts", prefix)
		}
	default:
		return fmt.Errorf("%s: unknown assertion type %q", prefix, a.Type)
	}

	return nil
}
