package testutil

import (
	"context"
	"sync"

	"github.com/google/uuid"
)

// SaveCall records one storage call observed by a StubSaver, in the
// order the saver executed it.
type SaveCall struct {
	ID      uuid.UUID
	Content string
	Tags    []string
	IsTags  bool
}

// StubSaver is a scriptable buffer.Saver for coordinator tests.
//
// Each SaveContent call blocks on Gate when one is installed, which
// lets a test hold a save in flight while it injects concurrent edits.
// Results are scripted per call; once the script runs out, calls
// succeed with a monotonically increasing timestamp.
//
// Thread-safety: all methods are safe for concurrent use via internal
// mutex.
type StubSaver struct {
	mu      sync.Mutex
	calls   []SaveCall
	errs    []error
	nextTS  int64
	gate    chan struct{}
	tagGate chan struct{}
	tagErrs map[string]error
}

// NewStubSaver creates a stub whose saves all succeed.
func NewStubSaver() *StubSaver {
	return &StubSaver{nextTS: 1000, tagErrs: make(map[string]error)}
}

// ScriptErrors queues per-call results for SaveContent. A nil entry
// means that call succeeds; once the queue drains, further calls
// succeed.
func (s *StubSaver) ScriptErrors(errs ...error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.errs = append(s.errs, errs...)
}

// Gate installs a gate channel. Every subsequent SaveContent call
// blocks until the test sends on (or closes) the channel, after
// recording the call. Pass nil to remove the gate.
func (s *StubSaver) Gate(gate chan struct{}) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.gate = gate
}

// TagGate installs a gate channel for SaveTags. Every subsequent
// SaveTags call blocks until the test sends on (or closes) the
// channel, after recording the call. Pass nil to remove the gate.
func (s *StubSaver) TagGate(gate chan struct{}) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tagGate = gate
}

// FailTag makes SaveTags fail with err whenever the submitted tag set
// contains name.
func (s *StubSaver) FailTag(name string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tagErrs[name] = err
}

// SaveContent implements buffer.Saver.
func (s *StubSaver) SaveContent(_ context.Context, id uuid.UUID, content string) (int64, error) {
	s.mu.Lock()
	s.calls = append(s.calls, SaveCall{ID: id, Content: content})
	gate := s.gate
	var err error
	if len(s.errs) > 0 {
		err = s.errs[0]
		s.errs = s.errs[1:]
	}
	s.nextTS++
	ts := s.nextTS
	s.mu.Unlock()

	if gate != nil {
		<-gate
	}
	if err != nil {
		return 0, err
	}
	return ts, nil
}

// SaveTags implements buffer.Saver.
func (s *StubSaver) SaveTags(_ context.Context, id uuid.UUID, tags []string) error {
	s.mu.Lock()
	s.calls = append(s.calls, SaveCall{ID: id, Tags: append([]string(nil), tags...), IsTags: true})
	gate := s.tagGate
	var err error
	for _, t := range tags {
		if e, ok := s.tagErrs[t]; ok {
			err = e
			break
		}
	}
	s.mu.Unlock()

	if gate != nil {
		<-gate
	}
	return err
}

// Calls returns a copy of every recorded call in execution order.
func (s *StubSaver) Calls() []SaveCall {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]SaveCall(nil), s.calls...)
}

// ContentCalls returns only the SaveContent calls.
func (s *StubSaver) ContentCalls() []SaveCall {
	var out []SaveCall
	for _, c := range s.Calls() {
		if !c.IsTags {
			out = append(out, c)
		}
	}
	return out
}

// TagCalls returns only the SaveTags calls.
func (s *StubSaver) TagCalls() []SaveCall {
	var out []SaveCall
	for _, c := range s.Calls() {
		if c.IsTags {
			out = append(out, c)
		}
	}
	return out
}
