package harness

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeScenario(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "scenario.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadScenario(t *testing.T) {
	scenario, err := LoadScenario("testdata/scenarios/lifecycle.yaml")
	require.NoError(t, err)
	assert.Equal(t, "lifecycle", scenario.Name)
	assert.NotEmpty(t, scenario.Description)
	require.Len(t, scenario.Setup, 1)
	assert.Equal(t, "create", scenario.Setup[0].Op)
	assert.Equal(t, "a1", scenario.Setup[0].As)
	assert.NotEmpty(t, scenario.Flow)
}

func TestLoadScenarioMissingFile(t *testing.T) {
	_, err := LoadScenario("testdata/scenarios/does-not-exist.yaml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read scenario file")
}

func TestLoadScenarioRejectsUnknownFields(t *testing.T) {
	path := writeScenario(t, `
name: typo
description: "unknown key below"
flows:
  - op: list
`)
	_, err := LoadScenario(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse YAML")
}

func TestLoadScenarioValidation(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantErr string
	}{
		{
			name:    "missing name",
			content: "description: d\nflow:\n  - op: list\n",
			wantErr: "name is required",
		},
		{
			name:    "missing flow",
			content: "name: n\ndescription: d\n",
			wantErr: "flow list is required",
		},
		{
			name:    "unknown op",
			content: "name: n\ndescription: d\nflow:\n  - op: explode\n",
			wantErr: "unknown op",
		},
		{
			name:    "create without label",
			content: "name: n\ndescription: d\nflow:\n  - op: create\n",
			wantErr: "create requires a label",
		},
		{
			name: "duplicate label",
			content: `name: n
description: d
flow:
  - op: create
    as: a1
  - op: create
    as: a1
`,
			wantErr: "duplicate label",
		},
		{
			name: "unbound target",
			content: `name: n
description: d
flow:
  - op: delete
    target: ghost
`,
			wantErr: "not defined by an earlier create",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadScenario(writeScenario(t, tt.content))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
