package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/katanabench/katana/internal/history"
)

var (
	historyGame  string
	historyLimit int
	historySteps bool
)

var historyCmd = &cobra.Command{
	Use:   "history [run-id]",
	Short: "Show past benchmark runs",
	Args:  cobra.MaximumNArgs(1),
	RunE:  showHistory,
}

func init() {
	historyCmd.Flags().StringVar(&historyGame, "game", "", "only show runs for this game")
	historyCmd.Flags().IntVar(&historyLimit, "limit", 20, "maximum number of runs to list")
	historyCmd.Flags().BoolVar(&historySteps, "steps", false, "show per-step results (requires a run id)")
	rootCmd.AddCommand(historyCmd)
}

func showHistory(cmd *cobra.Command, args []string) error {
	settings, err := loadSettings()
	if err != nil {
		return err
	}

	store, err := history.Open(settings.HistoryDB)
	if err != nil {
		return err
	}
	defer store.Close()

	if len(args) == 1 && historySteps {
		return printSteps(store, args[0])
	}

	runs, err := store.ListRuns(historyGame, historyLimit)
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		fmt.Println("no runs recorded")
		return nil
	}

	for _, run := range runs {
		status := "failed"
		switch {
		case run.Cancelled:
			status = "cancelled"
		case run.Success:
			status = "ok"
		}
		benchmark := "-"
		if run.BenchmarkSeconds != nil {
			benchmark = fmt.Sprintf("%.2fs", *run.BenchmarkSeconds)
		}
		fmt.Printf("%s  %-20s %-9s benchmark=%-10s %s\n",
			run.StartedAt.Format("2006-01-02 15:04:05"), run.Game, status, benchmark, run.ID)
	}
	return nil
}

func printSteps(store *history.Store, runID string) error {
	steps, err := store.GetSteps(runID)
	if err != nil {
		return err
	}
	for _, step := range steps {
		status := "FAIL"
		if step.Success {
			status = "ok"
		}
		fmt.Printf("%3d  %-28s %-4s %s\n",
			step.Index, step.Action, status, step.ExecutedAt.Format("15:04:05"))
	}
	return nil
}
