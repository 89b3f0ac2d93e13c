package cli

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/katanabench/katana/internal/history"
	"github.com/katanabench/katana/internal/input"
	"github.com/katanabench/katana/internal/proc"
	"github.com/katanabench/katana/internal/vision"
	"github.com/katanabench/katana/internal/workflow"
)

var noHistory bool

var runCmd = &cobra.Command{
	Use:   "run <game.yaml>",
	Short: "Execute a game's benchmark workflow",
	Args:  cobra.ExactArgs(1),
	RunE:  runWorkflow,
}

func init() {
	runCmd.Flags().BoolVar(&noHistory, "no-history", false, "skip recording the run to the history database")
	rootCmd.AddCommand(runCmd)
}

func runWorkflow(cmd *cobra.Command, args []string) error {
	settings, err := loadSettings()
	if err != nil {
		return err
	}
	log := newLogger("katana")

	game, err := workflow.LoadGame(args[0])
	if err != nil {
		return fmt.Errorf("failed to load game definition: %w", err)
	}

	analyzer := vision.NewAnalyzer(settings, newLogger("vision"))
	simulator := input.NewSimulator(settings, newLogger("input"))
	controller := proc.NewController(settings, newLogger("proc"))

	engine := workflow.NewEngine(settings, log, analyzer, simulator, controller)

	if !noHistory {
		store, err := history.Open(settings.HistoryDB)
		if err != nil {
			log.Error("run history unavailable", err)
		} else {
			defer store.Close()
			engine.WithRecorder(store)
		}
	}

	if errs, warns := engine.Validate(game); len(errs) > 0 || len(warns) > 0 {
		for _, w := range warns {
			log.Warn(w)
		}
		if len(errs) > 0 {
			for _, e := range errs {
				log.Error(e, nil)
			}
			return fmt.Errorf("workflow validation failed with %d error(s)", len(errs))
		}
	}

	// Ctrl+C requests cooperative cancellation; the run aborts before its
	// next step or within one polling interval
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigs)
	go func() {
		<-sigs
		engine.Stop()
	}()

	if !engine.Run(game) {
		return fmt.Errorf("workflow failed for %s", game.Name)
	}
	return nil
}
