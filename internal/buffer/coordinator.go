package buffer

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"lazynote/internal/fault"
)

// Saver persists buffer state. *service.Service satisfies it through a
// thin adapter; tests substitute scripted implementations.
type Saver interface {
	// SaveContent persists the draft and returns the new updated_at.
	SaveContent(ctx context.Context, id uuid.UUID, content string) (int64, error)
	// SaveTags replaces the atom's tag set.
	SaveTags(ctx context.Context, id uuid.UUID, tags []string) error
}

// Config tunes the coordinator. Zero values select the defaults.
type Config struct {
	// Debounce is how long a buffer must sit idle after an edit before
	// an autosave fires. Every edit restarts the clock.
	Debounce time.Duration
	// FlushRetries bounds the save attempts of an explicit Flush.
	FlushRetries int
}

const (
	defaultDebounce     = 800 * time.Millisecond
	defaultFlushRetries = 5
)

// Coordinator owns every open buffer. All exported methods are safe for
// concurrent use.
type Coordinator struct {
	saver Saver
	cfg   Config
	log   *slog.Logger

	mu      sync.Mutex
	cond    *sync.Cond
	buffers map[uuid.UUID]*buf
}

// buf is the coordinator-private state of one open atom.
type buf struct {
	id        uuid.UUID
	refs      int
	closed    bool
	draft     string
	persisted string
	version   uint64
	state     State
	updatedAt int64
	inFlight  bool
	timer     *time.Timer

	tagQueue   []*tagMutation
	tagRunning bool
}

// New builds a coordinator around saver. A nil log falls back to
// slog.Default.
func New(saver Saver, cfg Config, log *slog.Logger) *Coordinator {
	if log == nil {
		log = slog.Default()
	}
	if cfg.Debounce <= 0 {
		cfg.Debounce = defaultDebounce
	}
	if cfg.FlushRetries <= 0 {
		cfg.FlushRetries = defaultFlushRetries
	}
	c := &Coordinator{
		saver:   saver,
		cfg:     cfg,
		log:     log,
		buffers: make(map[uuid.UUID]*buf),
	}
	c.cond = sync.NewCond(&c.mu)
	return c
}

// Open registers a tab on id. The first Open creates the buffer seeded
// with persisted content in the clean state; later Opens share the
// existing buffer and see its current draft.
func (c *Coordinator) Open(id uuid.UUID, persisted string) Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	b, ok := c.buffers[id]
	if !ok {
		b = &buf{
			id:        id,
			draft:     persisted,
			persisted: persisted,
			state:     StateClean,
		}
		c.buffers[id] = b
		c.log.Debug("buffer opened", "id", id)
	}
	b.refs++
	return snapshotOf(b)
}

// Release drops one tab reference. When the last reference goes, the
// buffer is destroyed: the debounce timer is cancelled, queued tag
// mutations fail with ErrClosed, and any in-flight save result is
// discarded on arrival.
func (c *Coordinator) Release(id uuid.UUID) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	b, ok := c.buffers[id]
	if !ok {
		return ErrNotOpen
	}
	b.refs--
	if b.refs > 0 {
		return nil
	}
	b.closed = true
	if b.timer != nil {
		b.timer.Stop()
		b.timer = nil
	}
	for _, m := range b.tagQueue {
		m.done <- ErrClosed
	}
	b.tagQueue = nil
	delete(c.buffers, id)
	c.cond.Broadcast()
	c.log.Debug("buffer closed", "id", id, "state", b.state)
	return nil
}

// Edit replaces the draft. Submitting content identical to the current
// draft is a no-op: no version bump, no dirty transition, no timer
// restart. Otherwise the buffer turns dirty and the debounce clock
// restarts from zero.
func (c *Coordinator) Edit(id uuid.UUID, draft string) (Snapshot, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	b, ok := c.buffers[id]
	if !ok {
		return Snapshot{}, ErrNotOpen
	}
	if draft == b.draft {
		return snapshotOf(b), nil
	}
	b.draft = draft
	b.version++
	if !b.inFlight {
		b.state = StateDirty
	}
	c.scheduleAutosave(b)
	return snapshotOf(b), nil
}

// Snapshot returns the current view of id's buffer.
func (c *Coordinator) Snapshot(id uuid.UUID) (Snapshot, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	b, ok := c.buffers[id]
	if !ok {
		return Snapshot{}, ErrNotOpen
	}
	return snapshotOf(b), nil
}

// Flush persists the draft synchronously, retrying transient storage
// failures up to the configured budget. Validation and not-found
// failures abort immediately. On exhaustion the draft is kept and a
// *FlushError is returned; callers must treat that as a hard stop, not
// discard the buffer.
func (c *Coordinator) Flush(ctx context.Context, id uuid.UUID) error {
	c.mu.Lock()
	b, ok := c.buffers[id]
	if !ok {
		c.mu.Unlock()
		return ErrNotOpen
	}
	if b.timer != nil {
		b.timer.Stop()
		b.timer = nil
	}
	var lastErr error
	for attempts := 0; attempts < c.cfg.FlushRetries; {
		if b.closed {
			c.mu.Unlock()
			return ErrClosed
		}
		if b.state == StateClean {
			c.mu.Unlock()
			return nil
		}
		if b.inFlight {
			// An autosave got there first. Wait for its outcome
			// instead of racing it with a duplicate write.
			c.cond.Wait()
			continue
		}
		c.mu.Unlock()
		err := c.attempt(ctx, b)
		attempts++
		c.mu.Lock()
		if err != nil {
			if errors.Is(err, ErrClosed) {
				c.mu.Unlock()
				return err
			}
			if fault.IsValidation(err) || fault.IsNotFound(err) {
				c.mu.Unlock()
				return err
			}
			lastErr = err
		}
	}
	c.mu.Unlock()
	if lastErr == nil {
		lastErr = errors.New("draft changed during every attempt")
	}
	c.log.Error("flush exhausted retries", "id", id, "attempts", c.cfg.FlushRetries, "error", lastErr)
	return &FlushError{Attempts: c.cfg.FlushRetries, Err: lastErr}
}

// scheduleAutosave restarts the debounce timer. Callers hold c.mu.
func (c *Coordinator) scheduleAutosave(b *buf) {
	if b.timer != nil {
		b.timer.Stop()
	}
	id := b.id
	b.timer = time.AfterFunc(c.cfg.Debounce, func() { c.autosave(id) })
}

// autosave is the debounce callback. It makes a single attempt; a
// failure parks the buffer in save_error until the next edit or an
// explicit Flush.
func (c *Coordinator) autosave(id uuid.UUID) {
	c.mu.Lock()
	b, ok := c.buffers[id]
	if !ok || b.closed || b.inFlight || b.state == StateClean {
		c.mu.Unlock()
		return
	}
	c.mu.Unlock()
	if err := c.attempt(context.Background(), b); err != nil && !errors.Is(err, ErrClosed) && !errors.Is(err, ErrSaveInFlight) {
		c.log.Error("autosave failed", "id", id, "error", err)
	}
}

// attempt runs one save. It captures the draft and version up front,
// releases the lock for the storage call, and on return commits to
// clean only if no newer edit arrived while the write ran. A stale
// success leaves the buffer dirty and re-arms the debounce so the
// newer draft gets its own save.
func (c *Coordinator) attempt(ctx context.Context, b *buf) error {
	c.mu.Lock()
	if b.closed {
		c.mu.Unlock()
		return ErrClosed
	}
	if b.inFlight {
		c.mu.Unlock()
		return ErrSaveInFlight
	}
	if b.state == StateClean {
		c.mu.Unlock()
		return nil
	}
	expected := b.version
	content := b.draft
	b.inFlight = true
	b.state = StateSaving
	c.mu.Unlock()

	updatedAt, err := c.saver.SaveContent(ctx, b.id, content)

	c.mu.Lock()
	defer c.mu.Unlock()
	b.inFlight = false
	c.cond.Broadcast()
	if b.closed {
		return ErrClosed
	}
	if err != nil {
		b.state = StateSaveError
		return err
	}
	if b.version != expected {
		b.state = StateDirty
		c.scheduleAutosave(b)
		return nil
	}
	b.persisted = content
	b.updatedAt = updatedAt
	b.state = StateClean
	c.log.Debug("buffer saved", "id", b.id, "version", expected, "updated_at", updatedAt)
	return nil
}

func snapshotOf(b *buf) Snapshot {
	return Snapshot{
		Draft:     b.draft,
		Persisted: b.persisted,
		Version:   b.version,
		State:     b.state,
	}
}
