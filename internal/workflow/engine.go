// Package workflow interprets declarative step lists into timed,
// conditioned, retried actions against a live screen. The engine owns the
// perception-and-control loop: it dispatches each step to a handler that
// calls either the screen analyzer or the input/process collaborators,
// records the result, and advances or aborts.
package workflow

import (
	"context"
	"sync"
	"time"

	"github.com/katanabench/katana/internal/config"
	"github.com/katanabench/katana/internal/logging"
)

// Engine executes workflows. One run is live at a time; Run blocks the
// calling goroutine (callers that need a controlling thread start Run in a
// dedicated worker goroutine and use Stop/Status from outside).
type Engine struct {
	settings *config.Settings
	log      *logging.Logger
	screen   Screen
	input    Input
	process  Process
	recorder Recorder

	mu          sync.Mutex
	running     bool
	cancel      context.CancelFunc
	currentGame string
	current     *RunContext
}

// NewEngine creates a workflow engine over its three collaborators
func NewEngine(settings *config.Settings, log *logging.Logger, screen Screen, input Input, process Process) *Engine {
	return &Engine{
		settings: settings,
		log:      log,
		screen:   screen,
		input:    input,
		process:  process,
	}
}

// WithRecorder attaches a run-history recorder; finished runs are persisted
// best-effort
func (e *Engine) WithRecorder(r Recorder) *Engine {
	e.recorder = r
	return e
}

// Status is a point-in-time snapshot of the engine for controlling threads
type Status struct {
	Running bool
	Game    string
	Results []StepResult
	Markers map[string]time.Time
}

// Status reports a snapshot of the current (or most recent) run
func (e *Engine) Status() Status {
	e.mu.Lock()
	running := e.running
	game := e.currentGame
	run := e.current
	e.mu.Unlock()

	status := Status{Running: running, Game: game}
	if run != nil {
		status.Results = run.Results()
		status.Markers = run.Markers()
	}
	return status
}

// LastRun returns the most recent run context, or nil before the first run
func (e *Engine) LastRun() *RunContext {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.current
}

// Stop requests cooperative cancellation of the active run. The run aborts
// before its next step or within one polling interval of any wait loop.
// Side effects already applied (keys pressed, processes launched) are not
// reverted.
func (e *Engine) Stop() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.cancel != nil {
		e.log.Info("workflow stop requested")
		e.cancel()
	}
}

// Run executes the game's workflow steps strictly in order and reports
// overall success. Exactly one run may be live per engine.
func (e *Engine) Run(game *Game) bool {
	e.mu.Lock()
	if e.running {
		e.mu.Unlock()
		e.log.Warn("a workflow is already running")
		return false
	}
	ctx, cancel := context.WithCancel(context.Background())
	run := NewRunContext(game.Name)
	e.running = true
	e.cancel = cancel
	e.currentGame = game.Name
	e.current = run
	e.mu.Unlock()

	defer func() {
		cancel()
		e.mu.Lock()
		e.running = false
		e.cancel = nil
		e.mu.Unlock()
	}()

	if len(game.Workflow) == 0 {
		e.log.Warnf("no workflow defined for %s", game.Name)
		run.FinishedAt = time.Now()
		return false
	}

	e.log.Infof("starting workflow for %s (%d steps)", game.Name, len(game.Workflow))

	rt := &runtime{engine: e, ctx: ctx, game: game, run: run}
	success := e.executeSteps(rt, game.Workflow)

	run.FinishedAt = time.Now()
	run.Success = success
	run.Cancelled = ctx.Err() != nil && !success

	e.logTimingSummary(run)
	e.recordRun(run)

	switch {
	case run.Cancelled:
		e.log.Info("workflow stopped by user")
	case success:
		e.log.Infof("workflow completed successfully for %s", game.Name)
	}
	return success
}

func (e *Engine) executeSteps(rt *runtime, steps []Step) bool {
	for i, step := range steps {
		if rt.ctx.Err() != nil {
			return false
		}

		e.log.Infof("executing workflow step %d/%d: %s", i+1, len(steps), step.Action)
		ok := e.dispatch(rt, step)

		rt.run.Record(StepResult{
			Index:     i + 1,
			Action:    step.Action,
			Success:   ok,
			Timestamp: time.Now(),
		})

		if !ok {
			e.log.Errorf("workflow step %d failed: %s", i+1, step.Action)
			if !step.Optional {
				return false
			}
			e.log.Warn("step is optional, continuing workflow")
			continue
		}

		if step.StepDelay > 0 {
			if !sleepInterruptible(rt.ctx, time.Duration(step.StepDelay*float64(time.Second))) {
				return false
			}
		}
	}
	return true
}

// dispatch routes one step to its registered handler. An unknown action tag
// is a step failure, never a crash; the optional-step policy decides
// whether the run survives it.
func (e *Engine) dispatch(rt *runtime, step Step) bool {
	spec, ok := actionRegistry[step.Action]
	if !ok {
		e.log.Errorf("unknown action: %s", step.Action)
		return false
	}
	return spec.handler(rt, step)
}

func (e *Engine) resolveTemplate(game *Game, template string) string {
	return ResolveTemplatePath(e.settings.TemplateDir, game.Name, template)
}

func (e *Engine) recordRun(run *RunContext) {
	if e.recorder == nil {
		return
	}
	if err := e.recorder.RecordRun(run); err != nil {
		e.log.Error("failed to record run history", err)
	}
}

// logTimingSummary reports the benchmark duration when both reserved
// markers were recorded during the run
func (e *Engine) logTimingSummary(run *RunContext) {
	duration, ok := run.BenchmarkDuration()
	if !ok {
		return
	}

	markers := run.Markers()
	e.log.Info("benchmark timing summary")
	e.log.Infof("  start:    %s", markers[MarkerBenchmarkStart].Format("15:04:05"))
	e.log.Infof("  end:      %s", markers[MarkerBenchmarkEnd].Format("15:04:05"))
	e.log.Infof("  duration: %.2fs (%.1f minutes)", duration.Seconds(), duration.Minutes())
	e.log.Infof("BENCHMARK_DURATION: %.6f", duration.Seconds())
}

// sleepInterruptible sleeps for d in sub-second slices so cancellation
// latency stays bounded by the slice size, not the sleep length. Returns
// false if the context was cancelled.
func sleepInterruptible(ctx context.Context, d time.Duration) bool {
	const slice = 100 * time.Millisecond

	deadline := time.Now().Add(d)
	for {
		remaining := time.Until(deadline)
		if remaining <= 0 {
			return true
		}
		if remaining > slice {
			remaining = slice
		}

		timer := time.NewTimer(remaining)
		select {
		case <-ctx.Done():
			timer.Stop()
			return false
		case <-timer.C:
		}
	}
}
