package c360chat

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/chzyer/readline"
	"github.com/spf13/cobra"

	"github.com/c360chat/c360chat/internal/conversation"
	"github.com/c360chat/c360chat/internal/render"
	"github.com/c360chat/c360chat/internal/schema"
)

const chatPrompt = "c360> "

type lineReader interface {
	Readline() (string, error)
}

func newChatCmd(opts Options, flags *globalFlags) *cobra.Command {
	var historyFile string
	cmd := &cobra.Command{
		Use:   "chat",
		Short: "Start an interactive conversation",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			runtime, err := openRuntime(cmd, opts, flags)
			if err != nil {
				return err
			}
			defer runtime.close()

			if historyFile == "" {
				historyFile = defaultHistoryFile()
			}
			rl, err := readline.NewEx(&readline.Config{
				Prompt:          chatPrompt,
				HistoryFile:     historyFile,
				AutoComplete:    newDotCompleter(),
				InterruptPrompt: "^C",
				EOFPrompt:       ".quit",
				Stdout:          cmd.OutOrStdout(),
				Stderr:          cmd.ErrOrStderr(),
			})
			if err != nil {
				return fmt.Errorf("failed to initialize REPL: %w", err)
			}
			defer func() { _ = rl.Close() }()

			out := cmd.OutOrStdout()
			_, _ = fmt.Fprintf(out, "Customer360 chat (%s)\n", runtime.Schema.Identifier())
			_, _ = fmt.Fprintln(out, "Type .help for commands, .quit to exit")
			_, _ = fmt.Fprintln(out)

			loop := &chatLoop{
				lines:    rl,
				runner:   runtime.Runner,
				schema:   runtime.Schema,
				state:    conversation.NewState(),
				renderer: render.Renderer{Color: !flags.noColor},
				out:      out,
				errOut:   cmd.ErrOrStderr(),
			}
			return loop.run(cmd.Context())
		},
	}
	cmd.Flags().StringVar(&historyFile, "history", "", "readline history file (default ~/.c360chat_history)")
	return cmd
}

// chatLoop reads questions until .quit or EOF. Each session keeps one
// conversation state; .clear replaces it with an empty one.
type chatLoop struct {
	lines    lineReader
	runner   TurnRunner
	schema   schema.Descriptor
	state    *conversation.State
	renderer render.Renderer
	out      io.Writer
	errOut   io.Writer
}

func (c *chatLoop) run(ctx context.Context) error {
	for {
		line, err := c.lines.Readline()
		if errors.Is(err, readline.ErrInterrupt) {
			continue
		}
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}

		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if strings.HasPrefix(line, ".") {
			if quit := c.handleDotCommand(line); quit {
				return nil
			}
			continue
		}

		turn := c.runner.RunTurn(ctx, c.state, line)
		c.renderer.Turn(c.out, turn)
		_, _ = fmt.Fprintln(c.out)
	}
}

func (c *chatLoop) handleDotCommand(line string) bool {
	command := strings.ToLower(strings.Fields(line)[0])
	switch command {
	case ".quit", ".exit":
		return true
	case ".help":
		printREPLHelp(c.out)
	case ".history":
		c.renderer.Transcript(c.out, c.state.Turns())
	case ".schema":
		render.Schema(c.out, c.schema)
	case ".clear":
		c.state = conversation.NewState()
		_, _ = fmt.Fprintln(c.out, "Conversation cleared.")
	default:
		_, _ = fmt.Fprintf(c.errOut, "Unknown command: %s (type .help for commands)\n", command)
	}
	return false
}

func printREPLHelp(w io.Writer) {
	help := `
Commands:
  .help           Show this help message
  .history        Show the conversation so far
  .schema         Show the table the assistant answers from
  .clear          Start a new conversation
  .quit / .exit   Exit

Anything else is sent to the assistant as a question. Follow-ups such as
"now only for Texas" edit the previous query.
`
	_, _ = fmt.Fprintln(w, help)
}

func newDotCompleter() *readline.PrefixCompleter {
	return readline.NewPrefixCompleter(
		readline.PcItem(".help"),
		readline.PcItem(".history"),
		readline.PcItem(".schema"),
		readline.PcItem(".clear"),
		readline.PcItem(".quit"),
		readline.PcItem(".exit"),
	)
}

func defaultHistoryFile() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".c360chat_history")
}
