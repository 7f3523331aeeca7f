package c360chat

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/c360chat/c360chat/internal/conversation"
	"github.com/c360chat/c360chat/internal/render"
)

func newAskCmd(opts Options, flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "ask <question>",
		Short: "Answer a single question and exit",
		Long:  "Runs one turn and prints it. Exits with status 1 when the turn did not produce an answer.",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			question := strings.TrimSpace(strings.Join(args, " "))
			if question == "" {
				return fmt.Errorf("question is required")
			}
			runtime, err := openRuntime(cmd, opts, flags)
			if err != nil {
				return err
			}
			defer runtime.close()

			turn := runtime.Runner.RunTurn(cmd.Context(), conversation.NewState(), question)
			render.Renderer{Color: !flags.noColor}.Turn(cmd.OutOrStdout(), turn)
			if turn.Outcome != conversation.OutcomeOK {
				return errTurnFailed
			}
			return nil
		},
	}
}
