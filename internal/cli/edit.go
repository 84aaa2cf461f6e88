package cli

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"lazynote/internal/buffer"
	"lazynote/internal/fault"
	"lazynote/internal/service"
)

// EditOptions holds flags for the edit command.
type EditOptions struct {
	*RootOptions
}

// NewEditCommand creates the edit command.
func NewEditCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &EditOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "edit <id> <content>...",
		Short: "Replace an atom's content",
		Long: `Replace an atom's content. Pass "-" as the content to read it
from stdin. Previews and the search index update in the same write.

The write goes through the save coordinator, so a briefly locked
database is retried before the command gives up.`,
		Args:          cobra.MinimumNArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runEdit(opts, args[0], args[1:], cmd)
		},
	}

	return cmd
}

func runEdit(opts *EditOptions, rawID string, contentArgs []string, cmd *cobra.Command) error {
	f := newFormatter(cmd, opts.RootOptions)
	id, err := parseID(rawID)
	if err != nil {
		_ = f.Error(string(fault.CodeValidation), err.Error())
		return err
	}

	content := strings.Join(contentArgs, " ")
	if content == "-" {
		raw, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to read stdin", err)
		}
		content = string(raw)
	}

	svc, cfg, closer, err := openService(opts.RootOptions)
	if err != nil {
		return err
	}
	defer closer()
	ctx := cmd.Context()

	current, err := svc.Get(ctx, id, false)
	if err != nil {
		_ = f.Error(string(fault.CodeOf(err)), err.Error())
		return exitFault("failed to read atom", err)
	}
	if current == nil {
		nf := fault.NotFound(id.String())
		_ = f.Error(string(fault.CodeNotFound), nf.Error())
		return exitFault("atom not found", nf)
	}

	coord := buffer.New(&serviceSaver{svc: svc}, buffer.Config{
		Debounce:     cfg.Debounce(),
		FlushRetries: cfg.FlushRetries,
	}, slog.New(slog.NewTextHandler(os.Stderr, nil)))
	coord.Open(id, current.Content)
	if _, err := coord.Edit(id, content); err != nil {
		return WrapExitError(ExitCommandError, "failed to stage edit", err)
	}
	if err := coord.Flush(ctx, id); err != nil {
		_ = f.Error(string(fault.CodeOf(err)), err.Error())
		return exitFault("failed to save atom", err)
	}
	_ = coord.Release(id)

	a, err := svc.Get(ctx, id, false)
	if err != nil || a == nil {
		_ = f.Error(string(fault.CodeDB), "atom missing after save")
		return WrapExitError(ExitCommandError, "atom missing after save", err)
	}

	if f.Format == "json" {
		return f.Success(viewOf(a))
	}
	return f.Success(renderAtomLine(a))
}

// serviceSaver adapts the service to the coordinator's Saver.
type serviceSaver struct {
	svc *service.Service
}

func (s *serviceSaver) SaveContent(ctx context.Context, id uuid.UUID, content string) (int64, error) {
	return s.svc.Save(ctx, id, content)
}

func (s *serviceSaver) SaveTags(ctx context.Context, id uuid.UUID, tags []string) error {
	_, err := s.svc.SetTags(ctx, id, tags)
	return err
}
