package buffer

// State is the save lifecycle of a single buffer.
type State string

const (
	// StateClean means the draft equals the last persisted content.
	StateClean State = "clean"
	// StateDirty means the draft has local edits not yet persisted.
	StateDirty State = "dirty"
	// StateSaving means a save attempt is in flight.
	StateSaving State = "saving"
	// StateSaveError means the most recent save attempt failed and the
	// draft is preserved for retry.
	StateSaveError State = "save_error"
)

// Snapshot is an immutable view of a buffer handed to callers. Mutating
// a Snapshot has no effect on the buffer it was taken from.
type Snapshot struct {
	Draft     string
	Persisted string
	Version   uint64
	State     State
}

// Dirty reports whether the snapshot carries unpersisted edits.
func (s Snapshot) Dirty() bool {
	return s.State == StateDirty || s.State == StateSaving || s.State == StateSaveError
}
