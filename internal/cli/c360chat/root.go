package c360chat

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/c360chat/c360chat/internal/app"
	"github.com/c360chat/c360chat/internal/config"
	"github.com/c360chat/c360chat/internal/conversation"
	"github.com/c360chat/c360chat/internal/observability"
	"github.com/c360chat/c360chat/internal/schema"
)

const serviceName = "c360chat"

// errTurnFailed makes the process exit non-zero without printing anything
// beyond the rendered turn.
var errTurnFailed = errors.New("turn failed")

type TurnRunner interface {
	RunTurn(ctx context.Context, state *conversation.State, userText string) conversation.Turn
}

// Runtime is what the chat and ask commands need from the assembled app.
type Runtime struct {
	Runner TurnRunner
	Schema schema.Descriptor
	Close  func() error
}

type Options struct {
	Lookup config.LookupFunc
	Stdout io.Writer
	Stderr io.Writer
	// Open builds the runtime; nil uses app.Build.
	Open func(ctx context.Context, cfg config.Config, logger *slog.Logger) (Runtime, error)
}

type globalFlags struct {
	verbose bool
	noColor bool
}

func Run(ctx context.Context, args []string, opts Options) int {
	stdout := opts.Stdout
	if stdout == nil {
		stdout = io.Discard
	}
	stderr := opts.Stderr
	if stderr == nil {
		stderr = io.Discard
	}

	root := NewRootCmd(opts)
	root.SetArgs(args)
	root.SetOut(stdout)
	root.SetErr(stderr)
	if err := root.ExecuteContext(ctx); err != nil {
		if !errors.Is(err, errTurnFailed) {
			_, _ = fmt.Fprintf(stderr, "Error: %v\n", err)
		}
		return 1
	}
	return 0
}

func NewRootCmd(opts Options) *cobra.Command {
	if opts.Lookup == nil {
		opts.Lookup = os.LookupEnv
	}
	if opts.Open == nil {
		opts.Open = openApp
	}
	flags := &globalFlags{}

	root := &cobra.Command{
		Use:   "c360chat",
		Short: "Ask questions about Customer360 in plain language",
		Long: `c360chat turns natural-language questions into read-only SQL against the
Customer360 presentation table, runs it, and answers in plain text.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().BoolVarP(&flags.verbose, "verbose", "v", false, "log at debug level to stderr")
	root.PersistentFlags().BoolVar(&flags.noColor, "no-color", false, "disable colored labels")

	root.AddCommand(
		newChatCmd(opts, flags),
		newAskCmd(opts, flags),
		newSeedCmd(opts, flags),
		newRemoteCmd(opts),
	)
	return root
}

func loadConfig(opts Options, flags *globalFlags) (config.Config, error) {
	cfg, err := config.Load(serviceName, opts.Lookup)
	if err != nil {
		return config.Config{}, err
	}
	cfg.Observability.LogJSON = false
	cfg.Observability.LogLevel = slog.LevelWarn
	if flags.verbose {
		cfg.Observability.LogLevel = slog.LevelDebug
	}
	return cfg, nil
}

func openRuntime(cmd *cobra.Command, opts Options, flags *globalFlags) (Runtime, error) {
	cfg, err := loadConfig(opts, flags)
	if err != nil {
		return Runtime{}, err
	}
	logger := observability.NewLogger(cfg, cmd.ErrOrStderr())
	return opts.Open(cmd.Context(), cfg, logger)
}

func openApp(ctx context.Context, cfg config.Config, logger *slog.Logger) (Runtime, error) {
	a, err := app.Build(ctx, cfg, logger)
	if err != nil {
		return Runtime{}, err
	}
	return Runtime{Runner: a.Assistant, Schema: a.Schema, Close: a.Close}, nil
}

func (r Runtime) close() {
	if r.Close != nil {
		_ = r.Close()
	}
}
