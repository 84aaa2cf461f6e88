package cli

import (
	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"lazynote/internal/fault"
)

// GetOptions holds flags for the get command.
type GetOptions struct {
	*RootOptions
	IncludeDeleted bool
}

// NewGetCommand creates the get command.
func NewGetCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &GetOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:           "get <id>",
		Short:         "Show one atom",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGet(opts, args[0], cmd)
		},
	}

	cmd.Flags().BoolVar(&opts.IncludeDeleted, "deleted", false, "resolve soft-deleted atoms too")

	return cmd
}

func runGet(opts *GetOptions, rawID string, cmd *cobra.Command) error {
	f := newFormatter(cmd, opts.RootOptions)
	id, err := parseID(rawID)
	if err != nil {
		_ = f.Error(string(fault.CodeValidation), err.Error())
		return err
	}
	svc, _, closer, err := openService(opts.RootOptions)
	if err != nil {
		return err
	}
	defer closer()

	a, err := svc.Get(cmd.Context(), id, opts.IncludeDeleted)
	if err != nil {
		_ = f.Error(string(fault.CodeOf(err)), err.Error())
		return exitFault("failed to get atom", err)
	}
	if a == nil {
		nf := fault.NotFound(id.String())
		_ = f.Error(string(fault.CodeNotFound), nf.Error())
		return exitFault("atom not found", nf)
	}

	if f.Format == "json" {
		return f.Success(viewOf(a))
	}
	return f.Success(renderAtomFull(a))
}

// parseID parses a UUID argument into the caller-fault error shape.
func parseID(raw string) (uuid.UUID, error) {
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, WrapExitError(ExitFailure, "invalid atom id", err)
	}
	return id, nil
}
