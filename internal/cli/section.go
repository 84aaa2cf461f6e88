package cli

import (
	"strings"
	"time"

	"github.com/spf13/cobra"

	"lazynote/internal/fault"
	"lazynote/internal/section"
)

// SectionOptions holds flags for the section command.
type SectionOptions struct {
	*RootOptions
	Limit  int
	Offset int
}

// NewSectionCommand creates the section command.
func NewSectionCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &SectionOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "section <inbox|today|upcoming>",
		Short: "Show a home-screen section",
		Long: `Show the atoms belonging to one section, classified against
today's local day window. Tombstoned atoms and tasks that are done or
cancelled never appear.

Example:
  lazynote section today
  lazynote section upcoming --limit 20`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSection(opts, args[0], cmd)
		},
	}

	cmd.Flags().IntVar(&opts.Limit, "limit", 0, "page size (0 = default)")
	cmd.Flags().IntVar(&opts.Offset, "offset", 0, "page offset")

	return cmd
}

func runSection(opts *SectionOptions, rawBucket string, cmd *cobra.Command) error {
	f := newFormatter(cmd, opts.RootOptions)
	bucket, ok := section.ParseBucket(rawBucket)
	if !ok {
		err := fault.Validation("unknown section %q", rawBucket)
		_ = f.Error(string(fault.CodeValidation), err.Error())
		return WrapExitError(ExitFailure, "unknown section", err)
	}
	svc, _, closer, err := openService(opts.RootOptions)
	if err != nil {
		return err
	}
	defer closer()

	atoms, err := svc.Section(cmd.Context(), bucket, todayWindow(time.Now()), opts.Limit, opts.Offset)
	if err != nil {
		_ = f.Error(string(fault.CodeOf(err)), err.Error())
		return exitFault("failed to list section", err)
	}

	if f.Format == "json" {
		return f.Success(viewsOf(atoms))
	}
	if len(atoms) == 0 {
		return f.Success("section is empty")
	}
	lines := make([]string, len(atoms))
	for i, a := range atoms {
		lines[i] = renderAtomLine(a)
	}
	return f.Success(strings.Join(lines, "\n"))
}

// todayWindow computes the local day boundaries around now.
func todayWindow(now time.Time) section.Window {
	y, m, d := now.Date()
	bod := time.Date(y, m, d, 0, 0, 0, 0, now.Location())
	eod := bod.AddDate(0, 0, 1).Add(-time.Millisecond)
	return section.Window{BOD: bod.UnixMilli(), EOD: eod.UnixMilli()}
}
