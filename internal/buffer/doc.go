// Package buffer implements the client-side save coordinator: one
// in-memory edit buffer per open atom, with debounced autosave,
// version-guarded writes, bounded-retry explicit flush, and a strictly
// ordered tag-mutation queue.
//
// # Guarantees
//
// At most one authoritative write per atom is ever in flight. A save
// attempt captures the buffer version at its start and commits to
// clean only if no newer local edit happened while the save ran; a
// slow or stale successful write can never clobber newer local edits,
// so the last local edit always wins. A failed save never clears or
// overwrites the draft; the next attempt re-reads the current draft,
// never a stale snapshot.
//
// # Ownership
//
// The coordinator exclusively owns buffer internals. UI code reads
// immutable snapshots and submits edits; it never mutates a buffer
// directly. A buffer lives while at least one tab references its atom
// and is destroyed when the last reference is released: the debounce
// timer is cancelled, queued tag mutations are failed, and the result
// of any in-flight save is discarded.
//
// # Error policy
//
// Only transient storage failures are retried, and only here;
// layers below never retry. Validation and not-found failures abort a
// flush immediately: retrying a local precondition failure cannot
// succeed.
package buffer
