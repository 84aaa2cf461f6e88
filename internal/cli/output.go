package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"lazynote/internal/atom"
	"lazynote/internal/fault"
)

// Exit codes for CLI commands.
const (
	ExitSuccess      = 0 // successful execution
	ExitFailure      = 1 // domain failure (not found, validation)
	ExitCommandError = 2 // command error (bad flags, unreadable database)
)

// ExitError represents an error with a specific exit code.
type ExitError struct {
	Code    int
	Message string
	Err     error
}

func (e *ExitError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *ExitError) Unwrap() error {
	return e.Err
}

// WrapExitError wraps an existing error with an exit code.
func WrapExitError(code int, message string, err error) *ExitError {
	return &ExitError{Code: code, Message: message, Err: err}
}

// GetExitCode extracts the exit code from an error.
// Returns ExitFailure (1) if the error is not an ExitError.
func GetExitCode(err error) int {
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}
	return ExitFailure
}

// exitFault converts a storage-layer error into an ExitError whose code
// reflects who is at fault. Validation and not-found are caller
// problems; everything else means the database misbehaved.
func exitFault(message string, err error) *ExitError {
	switch fault.CodeOf(err) {
	case fault.CodeValidation, fault.CodeNotFound:
		return WrapExitError(ExitFailure, message, err)
	default:
		return WrapExitError(ExitCommandError, message, err)
	}
}

// OutputFormatter handles JSON vs text output for CLI commands.
type OutputFormatter struct {
	Format  string
	Writer  io.Writer
	Verbose bool
}

// CLIResponse is the standard JSON response format for CLI output.
type CLIResponse struct {
	Status string    `json:"status"`          // "ok" or "error"
	Data   any       `json:"data,omitempty"`  // success payload
	Error  *CLIError `json:"error,omitempty"` // error details
}

// CLIError is the error structure for CLI responses.
type CLIError struct {
	Code    string `json:"code"` // stable fault code
	Message string `json:"message"`
}

// Success outputs a successful result in the configured format.
func (f *OutputFormatter) Success(data any) error {
	if f.Format == "json" {
		return json.NewEncoder(f.Writer).Encode(CLIResponse{
			Status: "ok",
			Data:   data,
		})
	}
	fmt.Fprintln(f.Writer, data)
	return nil
}

// Error outputs an error in the configured format.
func (f *OutputFormatter) Error(code, message string) error {
	if f.Format == "json" {
		return json.NewEncoder(f.Writer).Encode(CLIResponse{
			Status: "error",
			Error:  &CLIError{Code: code, Message: message},
		})
	}
	fmt.Fprintf(f.Writer, "Error [%s]: %s\n", code, message)
	return nil
}

// atomView is the JSON projection of an atom. Optional fields are
// omitted rather than rendered as null so the output stays scannable.
type atomView struct {
	ID           string   `json:"id"`
	Kind         string   `json:"kind"`
	Content      string   `json:"content"`
	TaskStatus   string   `json:"task_status,omitempty"`
	StartAt      string   `json:"start_at,omitempty"`
	EndAt        string   `json:"end_at,omitempty"`
	PreviewText  string   `json:"preview_text,omitempty"`
	PreviewImage string   `json:"preview_image,omitempty"`
	Tags         []string `json:"tags,omitempty"`
	Deleted      bool     `json:"deleted,omitempty"`
	CreatedAt    string   `json:"created_at"`
	UpdatedAt    string   `json:"updated_at"`
}

func viewOf(a *atom.Atom) atomView {
	v := atomView{
		ID:        a.ID.String(),
		Kind:      string(a.Kind),
		Content:   a.Content,
		Tags:      a.Tags,
		Deleted:   a.IsDeleted,
		CreatedAt: formatMillis(a.CreatedAt),
		UpdatedAt: formatMillis(a.UpdatedAt),
	}
	if a.TaskStatus != nil {
		v.TaskStatus = string(*a.TaskStatus)
	}
	if a.StartAt != nil {
		v.StartAt = formatMillis(*a.StartAt)
	}
	if a.EndAt != nil {
		v.EndAt = formatMillis(*a.EndAt)
	}
	if a.PreviewText != nil {
		v.PreviewText = *a.PreviewText
	}
	if a.PreviewImage != nil {
		v.PreviewImage = *a.PreviewImage
	}
	return v
}

func viewsOf(atoms []*atom.Atom) []atomView {
	views := make([]atomView, len(atoms))
	for i, a := range atoms {
		views[i] = viewOf(a)
	}
	return views
}

// renderAtomLine is the one-line list representation.
func renderAtomLine(a *atom.Atom) string {
	label := string(a.Kind)
	if a.TaskStatus != nil {
		label += "/" + string(*a.TaskStatus)
	}
	preview := ""
	if a.PreviewText != nil {
		preview = *a.PreviewText
	}
	line := fmt.Sprintf("%s  [%s]  %s", a.ID, label, preview)
	if len(a.Tags) > 0 {
		line += "  #" + strings.Join(a.Tags, " #")
	}
	return line
}

// renderAtomFull is the multi-line representation used by get.
func renderAtomFull(a *atom.Atom) string {
	var b strings.Builder
	fmt.Fprintf(&b, "id:       %s\n", a.ID)
	fmt.Fprintf(&b, "kind:     %s\n", a.Kind)
	if a.TaskStatus != nil {
		fmt.Fprintf(&b, "status:   %s\n", *a.TaskStatus)
	}
	if a.StartAt != nil {
		fmt.Fprintf(&b, "start:    %s\n", formatMillis(*a.StartAt))
	}
	if a.EndAt != nil {
		fmt.Fprintf(&b, "end:      %s\n", formatMillis(*a.EndAt))
	}
	if len(a.Tags) > 0 {
		fmt.Fprintf(&b, "tags:     %s\n", strings.Join(a.Tags, ", "))
	}
	if a.IsDeleted {
		fmt.Fprintf(&b, "deleted:  true\n")
	}
	fmt.Fprintf(&b, "created:  %s\n", formatMillis(a.CreatedAt))
	fmt.Fprintf(&b, "updated:  %s\n", formatMillis(a.UpdatedAt))
	if a.Content != "" {
		fmt.Fprintf(&b, "\n%s\n", a.Content)
	}
	return b.String()
}

// formatMillis renders epoch milliseconds as UTC RFC 3339.
func formatMillis(ms int64) string {
	return time.UnixMilli(ms).UTC().Format(time.RFC3339)
}

// parseTime accepts RFC 3339 or a bare date and returns epoch
// milliseconds. Bare dates resolve to local midnight.
func parseTime(s string) (int64, error) {
	if ts, err := time.Parse(time.RFC3339, s); err == nil {
		return ts.UnixMilli(), nil
	}
	if ts, err := time.ParseInLocation("2006-01-02", s, time.Local); err == nil {
		return ts.UnixMilli(), nil
	}
	return 0, fmt.Errorf("invalid time %q: want RFC 3339 or YYYY-MM-DD", s)
}
