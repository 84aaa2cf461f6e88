package cli

import (
	"github.com/spf13/cobra"

	"lazynote/internal/atom"
	"lazynote/internal/fault"
)

// NewStatusCommand creates the status command.
func NewStatusCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "status <id> <todo|in_progress|done|cancelled|none>",
		Short: "Set or clear an atom's task status",
		Long: `Set an atom's task status. Status is independent of kind; a note
can become checkable without changing what it is. "none" clears the
status entirely.`,
		Args:          cobra.ExactArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStatus(rootOpts, args[0], args[1], cmd)
		},
	}
}

func runStatus(opts *RootOptions, rawID, rawStatus string, cmd *cobra.Command) error {
	f := newFormatter(cmd, opts)
	id, err := parseID(rawID)
	if err != nil {
		_ = f.Error(string(fault.CodeValidation), err.Error())
		return err
	}

	var status *atom.TaskStatus
	if rawStatus != "none" {
		s, ok := atom.ParseTaskStatus(rawStatus)
		if !ok {
			verr := fault.Validation("invalid task status %q", rawStatus)
			_ = f.Error(string(fault.CodeValidation), verr.Error())
			return WrapExitError(ExitFailure, "invalid task status", verr)
		}
		status = &s
	}

	svc, _, closer, err := openService(opts)
	if err != nil {
		return err
	}
	defer closer()

	a, err := svc.SetTaskStatus(cmd.Context(), id, status)
	if err != nil {
		_ = f.Error(string(fault.CodeOf(err)), err.Error())
		return exitFault("failed to set status", err)
	}

	if f.Format == "json" {
		return f.Success(viewOf(a))
	}
	return f.Success(renderAtomLine(a))
}
