package cli

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/katanabench/katana/internal/workflow"
)

var actionsCmd = &cobra.Command{
	Use:   "actions",
	Short: "List the workflow actions this build supports",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		actions := workflow.RegisteredActions()
		sort.Strings(actions)
		for _, action := range actions {
			fmt.Println(action)
		}
	},
}

func init() {
	rootCmd.AddCommand(actionsCmd)
}
