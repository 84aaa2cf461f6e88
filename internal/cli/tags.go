package cli

import (
	"strings"

	"github.com/spf13/cobra"

	"lazynote/internal/fault"
)

// NewTagsCommand creates the tags command group.
func NewTagsCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tags",
		Short: "List known tags or replace an atom's tags",
	}
	cmd.AddCommand(newTagsListCommand(rootOpts))
	cmd.AddCommand(newTagsSetCommand(rootOpts))
	return cmd
}

func newTagsListCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "list",
		Short:         "List every tag referenced by a live atom",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			f := newFormatter(cmd, rootOpts)
			svc, _, closer, err := openService(rootOpts)
			if err != nil {
				return err
			}
			defer closer()

			tags, err := svc.ListTags(cmd.Context())
			if err != nil {
				_ = f.Error(string(fault.CodeOf(err)), err.Error())
				return exitFault("failed to list tags", err)
			}
			if f.Format == "json" {
				return f.Success(tags)
			}
			if len(tags) == 0 {
				return f.Success("no tags")
			}
			return f.Success(strings.Join(tags, "\n"))
		},
	}
}

func newTagsSetCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "set <id> [tag]...",
		Short: "Replace an atom's tag set",
		Long: `Replace an atom's tag set atomically. Tags are lowercased and
deduplicated; passing no tags clears the set.

Example:
  lazynote tags set 550e8400-e29b-41d4-a716-446655440000 home errands`,
		Args:          cobra.MinimumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			f := newFormatter(cmd, rootOpts)
			id, err := parseID(args[0])
			if err != nil {
				_ = f.Error(string(fault.CodeValidation), err.Error())
				return err
			}
			svc, _, closer, err := openService(rootOpts)
			if err != nil {
				return err
			}
			defer closer()

			a, err := svc.SetTags(cmd.Context(), id, args[1:])
			if err != nil {
				_ = f.Error(string(fault.CodeOf(err)), err.Error())
				return exitFault("failed to set tags", err)
			}
			if f.Format == "json" {
				return f.Success(viewOf(a))
			}
			return f.Success(renderAtomLine(a))
		},
	}
}
