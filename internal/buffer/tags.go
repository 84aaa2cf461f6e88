package buffer

import (
	"context"

	"github.com/google/uuid"
)

// tagMutation is one queued tag replacement. done carries exactly one
// result and is buffered so the runner never blocks on a slow caller.
type tagMutation struct {
	tags []string
	done chan error
}

// EnqueueTags queues a tag replacement for id. Mutations for the same
// atom apply strictly in submission order regardless of how long each
// storage call takes; the returned channel delivers that mutation's
// result. Mutations still queued when the buffer closes fail with
// ErrClosed.
func (c *Coordinator) EnqueueTags(id uuid.UUID, tags []string) (<-chan error, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	b, ok := c.buffers[id]
	if !ok {
		return nil, ErrNotOpen
	}
	m := &tagMutation{tags: tags, done: make(chan error, 1)}
	b.tagQueue = append(b.tagQueue, m)
	if !b.tagRunning {
		b.tagRunning = true
		go c.runTags(b)
	}
	return m.done, nil
}

// runTags drains the tag queue one mutation at a time. A single runner
// per buffer is what makes the ordering guarantee hold: a later
// mutation cannot start, let alone finish, before an earlier one has
// completed.
func (c *Coordinator) runTags(b *buf) {
	for {
		c.mu.Lock()
		if b.closed || len(b.tagQueue) == 0 {
			b.tagRunning = false
			c.mu.Unlock()
			return
		}
		m := b.tagQueue[0]
		b.tagQueue = b.tagQueue[1:]
		c.mu.Unlock()

		m.done <- c.saver.SaveTags(context.Background(), b.id, m.tags)
	}
}
