package workflow

import "time"

func handlePressKey(rt *runtime, step Step) bool {
	key, ok := step.stringParam("key")
	if !ok {
		rt.engine.log.Errorf("no key specified for 'press_key'")
		return false
	}

	if err := rt.engine.input.PressKey(key); err != nil {
		rt.engine.log.Error("failed to press key", err)
		return false
	}
	return true
}

func handleHoldKey(rt *runtime, step Step) bool {
	key, ok := step.stringParam("key")
	if !ok {
		rt.engine.log.Errorf("no key specified for 'hold_key'")
		return false
	}

	duration := step.timeoutParam("duration", time.Second)
	if err := rt.engine.input.HoldKey(key, duration); err != nil {
		rt.engine.log.Error("failed to hold key", err)
		return false
	}
	return true
}

func handleTypeText(rt *runtime, step Step) bool {
	text, ok := step.stringParam("text")
	if !ok {
		rt.engine.log.Errorf("no text specified for 'type_text'")
		return false
	}

	if err := rt.engine.input.TypeText(text); err != nil {
		rt.engine.log.Error("failed to type text", err)
		return false
	}
	return true
}
