package cli

import (
	"github.com/spf13/cobra"

	"lazynote/internal/fault"
)

// ScheduleOptions holds flags for the schedule command.
type ScheduleOptions struct {
	*RootOptions
	Start string
	End   string
	Clear bool
}

// NewScheduleCommand creates the schedule command.
func NewScheduleCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ScheduleOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "schedule <id>",
		Short: "Set or clear an atom's schedule",
		Long: `Set an atom's start and end times. Either endpoint may stand
alone; a range must not end before it starts. --clear removes both.

Example:
  lazynote schedule 550e8400-e29b-41d4-a716-446655440000 --start 2026-09-01
  lazynote schedule 550e8400-e29b-41d4-a716-446655440000 --clear`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSchedule(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Start, "start", "", "start time (RFC 3339 or YYYY-MM-DD)")
	cmd.Flags().StringVar(&opts.End, "end", "", "end time (RFC 3339 or YYYY-MM-DD)")
	cmd.Flags().BoolVar(&opts.Clear, "clear", false, "remove both endpoints")

	return cmd
}

func runSchedule(opts *ScheduleOptions, rawID string, cmd *cobra.Command) error {
	f := newFormatter(cmd, opts.RootOptions)
	id, err := parseID(rawID)
	if err != nil {
		_ = f.Error(string(fault.CodeValidation), err.Error())
		return err
	}

	startAt, endAt, err := parseSchedule(opts.Start, opts.End)
	if err != nil {
		_ = f.Error(string(fault.CodeValidation), err.Error())
		return WrapExitError(ExitFailure, "invalid schedule", err)
	}
	if opts.Clear && (startAt != nil || endAt != nil) {
		verr := fault.Validation("--clear cannot be combined with --start or --end")
		_ = f.Error(string(fault.CodeValidation), verr.Error())
		return WrapExitError(ExitFailure, "invalid schedule", verr)
	}
	if !opts.Clear && startAt == nil && endAt == nil {
		verr := fault.Validation("schedule needs --start, --end or --clear")
		_ = f.Error(string(fault.CodeValidation), verr.Error())
		return WrapExitError(ExitFailure, "invalid schedule", verr)
	}

	svc, _, closer, err := openService(opts.RootOptions)
	if err != nil {
		return err
	}
	defer closer()

	a, err := svc.SetSchedule(cmd.Context(), id, startAt, endAt)
	if err != nil {
		_ = f.Error(string(fault.CodeOf(err)), err.Error())
		return exitFault("failed to set schedule", err)
	}

	if f.Format == "json" {
		return f.Success(viewOf(a))
	}
	return f.Success(renderAtomLine(a))
}
