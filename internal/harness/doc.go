// Package harness provides conformance testing for atom semantics.
//
// The harness loads YAML scenarios, executes them against a fresh
// in-memory store, and validates per-step expectations as executable
// contract tests.
//
// # Scenario Format
//
// Scenarios are defined in YAML files with the following structure:
//
//	name: scenario_name
//	description: "What this scenario validates"
//	setup:
//	  - op: create
//	    as: a1
//	    args: { kind: note, content: "hello" }
//	flow:
//	  - op: set_status
//	    target: a1
//	    args: { status: done }
//	    expect:
//	      result: { task_status: done }
//	  - op: set_schedule
//	    target: a1
//	    args: { start_at: 2000, end_at: 1000 }
//	    expect:
//	      error: VALIDATION
//
// Setup steps are assumed to succeed; flow steps may expect a fault
// code instead of a result. Atoms are referenced by label, never by
// UUID, so scenarios stay stable across runs.
//
// # Deterministic Snapshots
//
// Each run produces an event log keyed by labels and free of
// timestamps and UUIDs, so the same scenario yields byte-identical
// snapshots for golden comparison. Where an operation returns a set of
// atoms, labels are recorded sorted; ordering semantics are covered by
// the store tests.
//
// # Usage
//
//	scenario, err := harness.LoadScenario("testdata/scenarios/lifecycle.yaml")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	result, err := harness.Run(scenario)
//
// or, in a test, compare against a golden snapshot:
//
//	harness.RunWithGolden(t, scenario)
package harness
