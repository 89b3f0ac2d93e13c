package workflow

import (
	"fmt"
	"time"
)

func handleTakeScreenshot(rt *runtime, step Step) bool {
	name, _ := step.stringParam("name")
	if name != "" {
		// Timestamp keeps repeated captures under the same name unique
		name = fmt.Sprintf("%s_%s", name, time.Now().Format("20060102_150405"))
	}

	path, err := rt.engine.screen.SaveScreenshot(name)
	if err != nil {
		rt.engine.log.Error("failed to save screenshot", err)
		return false
	}

	rt.engine.log.Infof("screenshot taken: %s", path)
	return true
}

func handleWait(rt *runtime, step Step) bool {
	seconds, ok := step.floatParam("seconds")
	if !ok || seconds <= 0 {
		seconds = 1
	}

	rt.engine.log.Infof("waiting for %.1f seconds", seconds)
	sleepInterruptible(rt.ctx, time.Duration(seconds*float64(time.Second)))
	return true
}

func handleRetryAction(rt *runtime, step Step) bool {
	nested, err := step.nestedStepParam("action_to_retry")
	if err != nil {
		rt.engine.log.Error("no action_to_retry specified for 'retry_action'", err)
		return false
	}

	maxRetries := 3
	if n, ok := step.intParam("max_retries"); ok && n >= 0 {
		maxRetries = n
	}
	retryDelay := step.timeoutParam("retry_delay", time.Second)

	for attempt := 0; attempt <= maxRetries; attempt++ {
		if rt.ctx.Err() != nil {
			return false
		}

		if attempt > 0 {
			rt.engine.log.Infof("retry attempt %d/%d for action: %s", attempt, maxRetries, nested.Action)
			if !sleepInterruptible(rt.ctx, retryDelay) {
				return false
			}
		}

		if rt.engine.dispatch(rt, *nested) {
			return true
		}
	}

	rt.engine.log.Errorf("action failed after %d attempts: %s", maxRetries+1, nested.Action)
	return false
}

func handleLogMessage(rt *runtime, step Step) bool {
	message, ok := step.stringParam("message")
	if !ok {
		message = "LOG_MESSAGE"
	}

	now := time.Now()
	rt.run.Mark(message, now)
	rt.engine.log.Infof("TIMING_MARKER: %s at %s", message, now.Format("15:04:05.000"))
	return true
}
