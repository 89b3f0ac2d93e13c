package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/katanabench/katana/internal/workflow"
)

var validateCmd = &cobra.Command{
	Use:   "validate <game.yaml>",
	Short: "Check a workflow for errors without running it",
	Args:  cobra.ExactArgs(1),
	RunE:  validateWorkflow,
}

func init() {
	rootCmd.AddCommand(validateCmd)
}

func validateWorkflow(cmd *cobra.Command, args []string) error {
	settings, err := loadSettings()
	if err != nil {
		return err
	}

	game, err := workflow.LoadGame(args[0])
	if err != nil {
		return fmt.Errorf("failed to load game definition: %w", err)
	}

	// All collaborators are nil: validation never touches the screen
	engine := workflow.NewEngine(settings, newLogger("validate"), nil, nil, nil)
	errs, warns := engine.Validate(game)

	for _, w := range warns {
		fmt.Printf("warning: %s\n", w)
	}
	for _, e := range errs {
		fmt.Printf("error: %s\n", e)
	}

	if len(errs) > 0 {
		return fmt.Errorf("%s: %d error(s), %d warning(s)", game.Name, len(errs), len(warns))
	}
	fmt.Printf("%s: %d steps OK, %d warning(s)\n", game.Name, len(game.Workflow), len(warns))
	return nil
}
