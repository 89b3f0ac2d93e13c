package workflow

import (
	"context"
	"image"
	"time"

	"github.com/katanabench/katana/internal/proc"
	"github.com/katanabench/katana/internal/vision"
)

// Screen is the perception capability the engine consumes. Satisfied by
// *vision.Analyzer; tests substitute fakes.
type Screen interface {
	SetGame(processName string)
	MatchTemplate(path string, opts ...vision.Option) (vision.MatchResult, error)
	WaitFor(ctx context.Context, path string, timeout time.Duration, opts ...vision.Option) vision.MatchResult
	WaitForAny(ctx context.Context, paths []string, timeout time.Duration, opts ...vision.Option) (int, vision.MatchResult)
	WaitForDisappear(ctx context.Context, path string, timeout time.Duration, opts ...vision.Option) bool
	WaitForScreenChange(ctx context.Context, timeout time.Duration, simThreshold float64, opts ...vision.Option) bool
	SaveScreenshot(name string) (string, error)
	ToScreen(pt image.Point, region *vision.Region) image.Point
}

// Input is the injection capability the engine consumes. Satisfied by
// *input.Simulator.
type Input interface {
	PressKey(key string) error
	HoldKey(key string, duration time.Duration) error
	TypeText(text string) error
	Click(x, y int, button string, moveDuration, preDelay, postDelay time.Duration) error
}

// Process is the process-control capability the engine consumes. Satisfied
// by *proc.Controller.
type Process interface {
	Launch(spec proc.LaunchSpec) error
	IsRunning(name string) bool
	Close(name string, force bool) bool
	WaitUntilRunning(ctx context.Context, name string, timeout time.Duration) bool
	WaitUntilClosed(ctx context.Context, name string, timeout time.Duration) bool
}

// Recorder persists finished runs. Satisfied by *history.Store.
type Recorder interface {
	RecordRun(run *RunContext) error
}
