package harness

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Scenario defines a conformance test scenario.
// Scenarios validate atom semantics by executing a flow of operations
// against a fresh store and asserting on each step's outcome.
type Scenario struct {
	// Name uniquely identifies this scenario.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Setup contains operations that establish initial state.
	// Setup operations are assumed to succeed.
	Setup []Step `yaml:"setup,omitempty"`

	// Flow contains the main test flow with per-step expectations.
	Flow []Step `yaml:"flow"`
}

// Step is a single operation invocation.
type Step struct {
	// Op names the operation: create, edit, set_status, set_schedule,
	// set_tags, delete, get, list, search, section.
	Op string `yaml:"op"`

	// As registers a label for the atom a create produces.
	As string `yaml:"as,omitempty"`

	// Target is the label of the atom the operation acts on.
	Target string `yaml:"target,omitempty"`

	// Args carries operation arguments.
	Args map[string]any `yaml:"args,omitempty"`

	// Expect specifies the expected outcome. If nil, the step must
	// simply succeed.
	Expect *Expect `yaml:"expect,omitempty"`
}

// Expect specifies expected step behavior.
type Expect struct {
	// Error is the expected fault code (e.g. "VALIDATION").
	// Empty means the step must succeed.
	Error string `yaml:"error,omitempty"`

	// Result contains expected result field values. Subset match;
	// only specified fields are validated.
	Result map[string]any `yaml:"result,omitempty"`
}

// LoadScenario reads and parses a scenario YAML file.
// Returns an error if the file doesn't exist, is malformed,
// contains unknown fields (typos), or is missing required fields.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}

	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}

	return &scenario, nil
}

// validOps lists every operation the runner understands.
var validOps = map[string]bool{
	"create":       true,
	"edit":         true,
	"set_status":   true,
	"set_schedule": true,
	"set_tags":     true,
	"delete":       true,
	"get":          true,
	"list":         true,
	"search":       true,
	"section":      true,
}

// validateScenario checks that required fields are present and valid.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}
	if s.Description == "" {
		return fmt.Errorf("description is required")
	}
	if len(s.Flow) == 0 {
		return fmt.Errorf("flow list is required and must be non-empty")
	}

	labels := make(map[string]bool)
	for i, step := range s.Setup {
		if err := validateStep(step, labels); err != nil {
			return fmt.Errorf("setup[%d]: %w", i, err)
		}
	}
	for i, step := range s.Flow {
		if err := validateStep(step, labels); err != nil {
			return fmt.Errorf("flow[%d]: %w", i, err)
		}
	}
	return nil
}

func validateStep(step Step, labels map[string]bool) error {
	if !validOps[step.Op] {
		return fmt.Errorf("unknown op %q", step.Op)
	}
	if step.Op == "create" {
		if step.As == "" {
			return fmt.Errorf("create requires a label (as)")
		}
		if labels[step.As] {
			return fmt.Errorf("duplicate label %q", step.As)
		}
		labels[step.As] = true
		return nil
	}
	if targetOps[step.Op] && step.Target == "" {
		return fmt.Errorf("%s requires target", step.Op)
	}
	if step.Target != "" && !labels[step.Target] {
		return fmt.Errorf("target %q not defined by an earlier create", step.Target)
	}
	return nil
}

// targetOps are operations that act on one labelled atom.
var targetOps = map[string]bool{
	"edit":         true,
	"set_status":   true,
	"set_schedule": true,
	"set_tags":     true,
	"delete":       true,
	"get":          true,
}
