package cli

import (
	"strings"

	"github.com/spf13/cobra"

	"lazynote/internal/atom"
	"lazynote/internal/fault"
)

// AddOptions holds flags for the add command.
type AddOptions struct {
	*RootOptions
	Kind  string
	Start string
	End   string
	Tags  []string
}

// NewAddCommand creates the add command.
func NewAddCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &AddOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "add <content>...",
		Short: "Create a note, task or event",
		Long: `Create a new atom. The kind only selects how it renders; any atom
can later gain a status, a schedule or tags.

Example:
  lazynote add "buy milk"
  lazynote add --kind task --tags home,errands "fix the gate"
  lazynote add --kind event --start 2026-09-01T10:00:00Z "dentist"`,
		Args:          cobra.MinimumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAdd(opts, strings.Join(args, " "), cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Kind, "kind", "note", "atom kind (note|task|event)")
	cmd.Flags().StringVar(&opts.Start, "start", "", "start time (RFC 3339 or YYYY-MM-DD)")
	cmd.Flags().StringVar(&opts.End, "end", "", "end time (RFC 3339 or YYYY-MM-DD)")
	cmd.Flags().StringSliceVar(&opts.Tags, "tags", nil, "comma-separated tags")

	return cmd
}

func runAdd(opts *AddOptions, content string, cmd *cobra.Command) error {
	f := newFormatter(cmd, opts.RootOptions)
	svc, _, closer, err := openService(opts.RootOptions)
	if err != nil {
		return err
	}
	defer closer()
	ctx := cmd.Context()

	a, err := svc.Create(ctx, atom.Kind(opts.Kind), content)
	if err != nil {
		_ = f.Error(string(fault.CodeOf(err)), err.Error())
		return exitFault("failed to create atom", err)
	}

	startAt, endAt, err := parseSchedule(opts.Start, opts.End)
	if err != nil {
		_ = f.Error(string(fault.CodeValidation), err.Error())
		return WrapExitError(ExitFailure, "invalid schedule", err)
	}
	if startAt != nil || endAt != nil {
		if a, err = svc.SetSchedule(ctx, a.ID, startAt, endAt); err != nil {
			_ = f.Error(string(fault.CodeOf(err)), err.Error())
			return exitFault("failed to set schedule", err)
		}
	}
	if len(opts.Tags) > 0 {
		if a, err = svc.SetTags(ctx, a.ID, opts.Tags); err != nil {
			_ = f.Error(string(fault.CodeOf(err)), err.Error())
			return exitFault("failed to set tags", err)
		}
	}

	if f.Format == "json" {
		return f.Success(viewOf(a))
	}
	return f.Success(renderAtomLine(a))
}

// parseSchedule converts the optional flag pair into epoch millis.
func parseSchedule(start, end string) (*int64, *int64, error) {
	var startAt, endAt *int64
	if start != "" {
		ms, err := parseTime(start)
		if err != nil {
			return nil, nil, err
		}
		startAt = &ms
	}
	if end != "" {
		ms, err := parseTime(end)
		if err != nil {
			return nil, nil, err
		}
		endAt = &ms
	}
	return startAt, endAt, nil
}
