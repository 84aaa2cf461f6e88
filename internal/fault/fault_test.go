package fault

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestError_MessageShapes(t *testing.T) {
	cause := errors.New("disk I/O error")

	tests := []struct {
		name string
		err  *Error
		want string
	}{
		{
			name: "code and message only",
			err:  New(CodeValidation, "end_at before start_at"),
			want: "VALIDATION: end_at before start_at",
		},
		{
			name: "with atom id",
			err:  NotFound("abc-123"),
			want: "NOT_FOUND: atom not found (atom=abc-123)",
		},
		{
			name: "with cause",
			err:  DB("insert atom", cause),
			want: "DB_ERROR: insert atom: disk I/O error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.err.Error())
		})
	}
}

func TestCodeOf_WrappedChain(t *testing.T) {
	inner := DB("exec", errors.New("locked"))
	wrapped := fmt.Errorf("save atom: %w", inner)

	assert.Equal(t, CodeDB, CodeOf(wrapped))
	assert.True(t, IsDB(wrapped))
	assert.False(t, IsValidation(wrapped))
}

func TestCodeOf_UnclassifiedDefaultsToDB(t *testing.T) {
	assert.Equal(t, CodeDB, CodeOf(errors.New("plain failure")))
}

func TestUnwrap_PreservesCause(t *testing.T) {
	cause := errors.New("busy")
	err := DB("update", cause)

	require.ErrorIs(t, err, cause)
}

func TestPredicates(t *testing.T) {
	assert.True(t, IsNotFound(NotFound("id")))
	assert.True(t, IsValidation(Validation("bad tag %q", "")))
	assert.True(t, IsSchemaMismatch(SchemaMismatch("missing table %s", "atoms")))
	assert.False(t, IsNotFound(Validation("x")))
}
