package cli

import (
	"strings"

	"github.com/spf13/cobra"

	"lazynote/internal/atom"
	"lazynote/internal/fault"
	"lazynote/internal/service"
)

// ListOptions holds flags for the list command.
type ListOptions struct {
	*RootOptions
	Kind           string
	Tag            string
	IncludeDeleted bool
	Limit          int
	Offset         int
}

// NewListCommand creates the list command.
func NewListCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ListOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List atoms, most recently updated first",
		Long: `List atoms ordered by updated_at descending.

Example:
  lazynote list
  lazynote list --kind task --tag home
  lazynote list --limit 50 --offset 50`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runList(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Kind, "kind", "", "filter by kind (note|task|event)")
	cmd.Flags().StringVar(&opts.Tag, "tag", "", "filter by tag")
	cmd.Flags().BoolVar(&opts.IncludeDeleted, "deleted", false, "include soft-deleted atoms")
	cmd.Flags().IntVar(&opts.Limit, "limit", 0, "page size (0 = default)")
	cmd.Flags().IntVar(&opts.Offset, "offset", 0, "page offset")

	return cmd
}

func runList(opts *ListOptions, cmd *cobra.Command) error {
	f := newFormatter(cmd, opts.RootOptions)
	svc, _, closer, err := openService(opts.RootOptions)
	if err != nil {
		return err
	}
	defer closer()

	atoms, _, err := svc.List(cmd.Context(), service.ListRequest{
		Kind:           atom.Kind(opts.Kind),
		Tag:            opts.Tag,
		IncludeDeleted: opts.IncludeDeleted,
		Limit:          opts.Limit,
		Offset:         opts.Offset,
	})
	if err != nil {
		_ = f.Error(string(fault.CodeOf(err)), err.Error())
		return exitFault("failed to list atoms", err)
	}

	if f.Format == "json" {
		return f.Success(viewsOf(atoms))
	}
	if len(atoms) == 0 {
		return f.Success("no atoms")
	}
	lines := make([]string, len(atoms))
	for i, a := range atoms {
		lines[i] = renderAtomLine(a)
	}
	return f.Success(strings.Join(lines, "\n"))
}
