package harness

import (
	"bytes"
	"testing"

	"github.com/goccy/go-json"
	"github.com/sebdah/goldie/v2"
)

// Snapshot captures the case outcomes of a scenario execution.
type Snapshot struct {
	ScenarioName string       `json:"scenario_name"`
	Cases        []CaseResult `json:"cases"`
}

// MarshalSnapshot renders a snapshot as indented JSON. SQL operators are
// kept readable (no HTML escaping) and the output ends with a newline.
func MarshalSnapshot(s Snapshot) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(s); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// RunWithGolden executes a scenario and compares the case outcomes against
// a golden file. The golden file is stored in testdata/golden/{scenario.Name}.golden
//
// To regenerate golden files, run:
//
//	go test ./internal/harness -update
//
// Returns error if scenario execution fails.
// Test failure (via goldie) occurs if the outcomes don't match the golden file.
func RunWithGolden(t *testing.T, scenario *Scenario) (*Result, error) {
	t.Helper()

	result, err := Run(scenario)
	if err != nil {
		return nil, err
	}

	if err := AssertGolden(t, scenario.Name, result); err != nil {
		return nil, err
	}
	return result, nil
}

// AssertGolden compares an existing result against a golden file without
// re-running the scenario.
func AssertGolden(t *testing.T, scenarioName string, result *Result) error {
	t.Helper()

	data, err := MarshalSnapshot(Snapshot{ScenarioName: scenarioName, Cases: result.Cases})
	if err != nil {
		return err
	}

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, scenarioName, data)

	return nil
}
