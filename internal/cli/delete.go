package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"lazynote/internal/fault"
)

// NewDeleteCommand creates the delete command.
func NewDeleteCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "delete <id>",
		Short: "Soft-delete an atom",
		Long: `Soft-delete an atom. The row is tombstoned, not removed: reads,
lists, search and sections stop seeing it, but the data survives.
Deleting an already-deleted atom succeeds without changing anything.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDelete(rootOpts, args[0], cmd)
		},
	}
	return cmd
}

func runDelete(opts *RootOptions, rawID string, cmd *cobra.Command) error {
	f := newFormatter(cmd, opts)
	id, err := parseID(rawID)
	if err != nil {
		_ = f.Error(string(fault.CodeValidation), err.Error())
		return err
	}
	svc, _, closer, err := openService(opts)
	if err != nil {
		return err
	}
	defer closer()

	if err := svc.SoftDelete(cmd.Context(), id); err != nil {
		_ = f.Error(string(fault.CodeOf(err)), err.Error())
		return exitFault("failed to delete atom", err)
	}

	if f.Format == "json" {
		return f.Success(map[string]any{"id": id.String(), "deleted": true})
	}
	return f.Success(fmt.Sprintf("deleted %s", id))
}
