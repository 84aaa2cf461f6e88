package cli

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/google/uuid"
	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lazynote/internal/atom"
	"lazynote/internal/fault"
)

func fixtureAtom(t *testing.T) *atom.Atom {
	t.Helper()
	id, err := uuid.Parse("550e8400-e29b-41d4-a716-446655440000")
	require.NoError(t, err)
	status := atom.StatusTodo
	start := int64(86400000)
	preview := "Buy milk and eggs"
	return &atom.Atom{
		ID:          id,
		Kind:        atom.KindTask,
		Content:     "Buy milk\nand eggs",
		TaskStatus:  &status,
		StartAt:     &start,
		PreviewText: &preview,
		Tags:        []string{"errands", "home"},
		CreatedAt:   0,
		UpdatedAt:   60000,
	}
}

func TestOutputFormatter_JSONSuccess(t *testing.T) {
	buf := &bytes.Buffer{}
	formatter := &OutputFormatter{Format: "json", Writer: buf}

	err := formatter.Success(viewOf(fixtureAtom(t)))
	require.NoError(t, err)

	var resp CLIResponse
	require.NoError(t, json.Unmarshal(buf.Bytes(), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.NotNil(t, resp.Data)
}

func TestOutputFormatter_JSONError(t *testing.T) {
	buf := &bytes.Buffer{}
	formatter := &OutputFormatter{Format: "json", Writer: buf}

	err := formatter.Error(string(fault.CodeNotFound), "atom not found")
	require.NoError(t, err)

	var resp CLIResponse
	require.NoError(t, json.Unmarshal(buf.Bytes(), &resp))
	assert.Equal(t, "error", resp.Status)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "NOT_FOUND", resp.Error.Code)
	assert.Equal(t, "atom not found", resp.Error.Message)
}

func TestOutputFormatter_TextError(t *testing.T) {
	buf := &bytes.Buffer{}
	formatter := &OutputFormatter{Format: "text", Writer: buf}

	err := formatter.Error(string(fault.CodeValidation), "bad input")
	require.NoError(t, err)
	assert.Equal(t, "Error [VALIDATION]: bad input\n", buf.String())
}

func TestRenderAtomFullGolden(t *testing.T) {
	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, "atom_full", []byte(renderAtomFull(fixtureAtom(t))))
}

func TestRenderAtomLineGolden(t *testing.T) {
	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, "atom_line", []byte(renderAtomLine(fixtureAtom(t))))
}

func TestViewOfOmitsAbsentFields(t *testing.T) {
	a := atom.New(atom.KindNote, "plain note")
	data, err := json.Marshal(viewOf(a))
	require.NoError(t, err)

	var m map[string]any
	require.NoError(t, json.Unmarshal(data, &m))
	assert.NotContains(t, m, "task_status")
	assert.NotContains(t, m, "start_at")
	assert.NotContains(t, m, "end_at")
	assert.NotContains(t, m, "deleted")
}

func TestGetExitCode(t *testing.T) {
	assert.Equal(t, ExitCommandError, GetExitCode(WrapExitError(ExitCommandError, "boom", nil)))
	assert.Equal(t, ExitFailure, GetExitCode(assert.AnError))
}

func TestExitFaultMapsCodes(t *testing.T) {
	assert.Equal(t, ExitFailure, exitFault("x", fault.Validation("bad")).Code)
	assert.Equal(t, ExitFailure, exitFault("x", fault.NotFound("id")).Code)
	assert.Equal(t, ExitCommandError, exitFault("x", fault.DB("broken", nil)).Code)
}

func TestParseTime(t *testing.T) {
	ms, err := parseTime("1970-01-02T00:00:00Z")
	require.NoError(t, err)
	assert.Equal(t, int64(86400000), ms)

	_, err = parseTime("not a time")
	require.Error(t, err)
}
