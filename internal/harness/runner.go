package harness

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"sort"

	"github.com/google/uuid"

	"lazynote/internal/atom"
	"lazynote/internal/fault"
	"lazynote/internal/section"
	"lazynote/internal/service"
	"lazynote/internal/store"
)

// Result is the deterministic event log of one scenario run.
type Result struct {
	ScenarioName string  `json:"scenario_name"`
	Events       []Event `json:"events"`
}

// Event records one executed step. Labels stand in for UUIDs and no
// timestamps appear, so the log is identical across runs.
type Event struct {
	Seq    int         `json:"seq"`
	Op     string      `json:"op"`
	Label  string      `json:"label,omitempty"`
	Status string      `json:"status"`
	Result *StepResult `json:"result,omitempty"`
}

// StepResult is the recorded outcome of a successful step.
type StepResult struct {
	Kind        string   `json:"kind,omitempty"`
	Content     string   `json:"content,omitempty"`
	TaskStatus  string   `json:"task_status,omitempty"`
	PreviewText string   `json:"preview_text,omitempty"`
	Tags        []string `json:"tags,omitempty"`
	Deleted     bool     `json:"deleted,omitempty"`
	Atoms       []string `json:"atoms,omitempty"`
	Hits        []string `json:"hits,omitempty"`
}

// Snapshot serializes the result for golden comparison.
func (r *Result) Snapshot() ([]byte, error) {
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return nil, err
	}
	return append(data, '\n'), nil
}

// runner executes one scenario against a private in-memory store.
type runner struct {
	svc    *service.Service
	labels map[string]uuid.UUID
	names  map[uuid.UUID]string
}

// Run executes a scenario and returns its event log. Setup steps must
// succeed; flow steps are validated against their expectations, and a
// mismatch aborts the run with an error.
func Run(scenario *Scenario) (*Result, error) {
	st, err := store.OpenInMemory()
	if err != nil {
		return nil, fmt.Errorf("failed to open store: %w", err)
	}
	defer st.Close()

	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	r := &runner{
		svc:    service.New(st, log, service.DefaultLimits()),
		labels: make(map[string]uuid.UUID),
		names:  make(map[uuid.UUID]string),
	}

	result := &Result{ScenarioName: scenario.Name}
	ctx := context.Background()
	seq := 0

	for i, step := range scenario.Setup {
		seq++
		ev, err := r.execute(ctx, step, seq)
		if err != nil {
			return nil, fmt.Errorf("setup[%d] %s: %w", i, step.Op, err)
		}
		if ev.Status != "ok" {
			return nil, fmt.Errorf("setup[%d] %s: failed with %s", i, step.Op, ev.Status)
		}
		result.Events = append(result.Events, ev)
	}

	for i, step := range scenario.Flow {
		seq++
		ev, err := r.execute(ctx, step, seq)
		if err != nil {
			return nil, fmt.Errorf("flow[%d] %s: %w", i, step.Op, err)
		}
		if err := checkExpect(step.Expect, ev); err != nil {
			return nil, fmt.Errorf("flow[%d] %s: %w", i, step.Op, err)
		}
		result.Events = append(result.Events, ev)
	}

	return result, nil
}

// execute runs one step. Domain faults become the event status; only
// harness-level problems (bad labels, malformed args) return an error.
func (r *runner) execute(ctx context.Context, step Step, seq int) (Event, error) {
	ev := Event{Seq: seq, Op: step.Op, Status: "ok"}

	var a *atom.Atom
	var opErr error

	switch step.Op {
	case "create":
		ev.Label = step.As
		kind := argString(step.Args, "kind", "note")
		a, opErr = r.svc.Create(ctx, atom.Kind(kind), argString(step.Args, "content", ""))
		if opErr == nil {
			r.labels[step.As] = a.ID
			r.names[a.ID] = step.As
		}

	case "edit":
		ev.Label = step.Target
		id, err := r.resolve(step.Target)
		if err != nil {
			return ev, err
		}
		a, opErr = r.svc.Update(ctx, id, argString(step.Args, "content", ""))

	case "set_status":
		ev.Label = step.Target
		id, err := r.resolve(step.Target)
		if err != nil {
			return ev, err
		}
		var status *atom.TaskStatus
		if raw := argString(step.Args, "status", "none"); raw != "none" {
			s, ok := atom.ParseTaskStatus(raw)
			if !ok {
				opErr = fault.Validation("invalid task status %q", raw)
				break
			}
			status = &s
		}
		a, opErr = r.svc.SetTaskStatus(ctx, id, status)

	case "set_schedule":
		ev.Label = step.Target
		id, err := r.resolve(step.Target)
		if err != nil {
			return ev, err
		}
		a, opErr = r.svc.SetSchedule(ctx, id, argMillis(step.Args, "start_at"), argMillis(step.Args, "end_at"))

	case "set_tags":
		ev.Label = step.Target
		id, err := r.resolve(step.Target)
		if err != nil {
			return ev, err
		}
		a, opErr = r.svc.SetTags(ctx, id, argStrings(step.Args, "tags"))

	case "delete":
		ev.Label = step.Target
		id, err := r.resolve(step.Target)
		if err != nil {
			return ev, err
		}
		opErr = r.svc.SoftDelete(ctx, id)

	case "get":
		ev.Label = step.Target
		id, err := r.resolve(step.Target)
		if err != nil {
			return ev, err
		}
		a, opErr = r.svc.Get(ctx, id, argBool(step.Args, "include_deleted"))
		if opErr == nil && a == nil {
			opErr = fault.NotFound(id.String())
		}

	case "list":
		atoms, _, err := r.svc.List(ctx, service.ListRequest{
			Kind: atom.Kind(argString(step.Args, "kind", "")),
			Tag:  argString(step.Args, "tag", ""),
		})
		opErr = err
		if opErr == nil {
			ev.Result = &StepResult{Atoms: r.labelSet(atoms)}
		}

	case "search":
		hits, err := r.svc.Search(ctx, argString(step.Args, "text", ""), 0)
		opErr = err
		if opErr == nil {
			labels := make([]string, len(hits))
			for i, h := range hits {
				labels[i] = r.names[h.AtomID]
			}
			sort.Strings(labels)
			ev.Result = &StepResult{Hits: labels}
		}

	case "section":
		bucket, ok := section.ParseBucket(argString(step.Args, "bucket", ""))
		if !ok {
			opErr = fault.Validation("unknown section %q", argString(step.Args, "bucket", ""))
			break
		}
		w := section.Window{}
		if v := argMillis(step.Args, "bod"); v != nil {
			w.BOD = *v
		}
		if v := argMillis(step.Args, "eod"); v != nil {
			w.EOD = *v
		}
		atoms, err := r.svc.Section(ctx, bucket, w, 0, 0)
		opErr = err
		if opErr == nil {
			ev.Result = &StepResult{Atoms: r.labelSet(atoms)}
		}

	default:
		return ev, fmt.Errorf("unknown op %q", step.Op)
	}

	if opErr != nil {
		ev.Status = string(fault.CodeOf(opErr))
		return ev, nil
	}
	if a != nil {
		ev.Result = resultOf(a)
	}
	return ev, nil
}

func (r *runner) resolve(label string) (uuid.UUID, error) {
	id, ok := r.labels[label]
	if !ok {
		return uuid.Nil, fmt.Errorf("label %q is not bound to an atom", label)
	}
	return id, nil
}

// labelSet maps atoms to sorted labels. Sorting trades away ordering
// (covered by store tests) for run-to-run stability.
func (r *runner) labelSet(atoms []*atom.Atom) []string {
	labels := make([]string, len(atoms))
	for i, a := range atoms {
		labels[i] = r.names[a.ID]
	}
	sort.Strings(labels)
	return labels
}

func resultOf(a *atom.Atom) *StepResult {
	res := &StepResult{
		Kind:    string(a.Kind),
		Content: a.Content,
		Tags:    a.Tags,
		Deleted: a.IsDeleted,
	}
	if a.TaskStatus != nil {
		res.TaskStatus = string(*a.TaskStatus)
	}
	if a.PreviewText != nil {
		res.PreviewText = *a.PreviewText
	}
	return res
}

// checkExpect validates an event against the step's expectation.
func checkExpect(exp *Expect, ev Event) error {
	if exp == nil || exp.Error == "" {
		if ev.Status != "ok" {
			return fmt.Errorf("unexpected failure %s", ev.Status)
		}
	} else if ev.Status != exp.Error {
		return fmt.Errorf("expected error %s, got %s", exp.Error, ev.Status)
	}
	if exp == nil || len(exp.Result) == 0 {
		return nil
	}
	if ev.Result == nil {
		return fmt.Errorf("expected result fields, step produced none")
	}
	got := ev.Result.fields()
	for key, want := range exp.Result {
		have, ok := got[key]
		if !ok {
			return fmt.Errorf("result has no field %q", key)
		}
		if fmt.Sprint(want) != fmt.Sprint(have) {
			return fmt.Errorf("result field %q: expected %v, got %v", key, want, have)
		}
	}
	return nil
}

// fields exposes the result for subset matching.
func (r *StepResult) fields() map[string]any {
	m := map[string]any{
		"kind":         r.Kind,
		"content":      r.Content,
		"task_status":  r.TaskStatus,
		"preview_text": r.PreviewText,
		"deleted":      r.Deleted,
	}
	if r.Tags != nil {
		m["tags"] = r.Tags
	}
	if r.Atoms != nil {
		m["atoms"] = r.Atoms
	}
	if r.Hits != nil {
		m["hits"] = r.Hits
	}
	return m
}

func argString(args map[string]any, key, def string) string {
	if v, ok := args[key]; ok {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return def
}

func argBool(args map[string]any, key string) bool {
	if v, ok := args[key]; ok {
		if b, ok := v.(bool); ok {
			return b
		}
	}
	return false
}

func argMillis(args map[string]any, key string) *int64 {
	v, ok := args[key]
	if !ok || v == nil {
		return nil
	}
	switch n := v.(type) {
	case int:
		ms := int64(n)
		return &ms
	case int64:
		return &n
	}
	return nil
}

func argStrings(args map[string]any, key string) []string {
	v, ok := args[key]
	if !ok {
		return nil
	}
	raw, ok := v.([]any)
	if !ok {
		return nil
	}
	out := make([]string, 0, len(raw))
	for _, item := range raw {
		if s, ok := item.(string); ok {
			out = append(out, s)
		}
	}
	return out
}
