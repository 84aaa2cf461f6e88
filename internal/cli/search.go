package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"lazynote/internal/fault"
	"lazynote/internal/store"
)

// SearchOptions holds flags for the search command.
type SearchOptions struct {
	*RootOptions
	Limit int
}

// NewSearchCommand creates the search command.
func NewSearchCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &SearchOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "search <query>...",
		Short: "Full-text search across all atoms",
		Long: `Full-text search over atom content. Terms are matched as prefixes
and combined with AND; results come back ranked by relevance with a
snippet around the match.

Example:
  lazynote search grocery
  lazynote search meeting notes --limit 5`,
		Args:          cobra.MinimumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSearch(opts, strings.Join(args, " "), cmd)
		},
	}

	cmd.Flags().IntVar(&opts.Limit, "limit", 0, "max results (0 = default)")

	return cmd
}

func runSearch(opts *SearchOptions, query string, cmd *cobra.Command) error {
	f := newFormatter(cmd, opts.RootOptions)
	svc, _, closer, err := openService(opts.RootOptions)
	if err != nil {
		return err
	}
	defer closer()

	hits, err := svc.Search(cmd.Context(), query, opts.Limit)
	if err != nil {
		_ = f.Error(string(fault.CodeOf(err)), err.Error())
		return exitFault("search failed", err)
	}

	if f.Format == "json" {
		return f.Success(hitViews(hits))
	}
	if len(hits) == 0 {
		return f.Success("no matches")
	}
	lines := make([]string, len(hits))
	for i, h := range hits {
		lines[i] = fmt.Sprintf("%s  [%s]  %s", h.AtomID, h.Kind, h.Snippet)
	}
	return f.Success(strings.Join(lines, "\n"))
}

type hitView struct {
	ID      string `json:"id"`
	Kind    string `json:"kind"`
	Snippet string `json:"snippet"`
}

func hitViews(hits []store.SearchHit) []hitView {
	views := make([]hitView, len(hits))
	for i, h := range hits {
		views[i] = hitView{ID: h.AtomID.String(), Kind: string(h.Kind), Snippet: h.Snippet}
	}
	return views
}
