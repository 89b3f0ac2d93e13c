package workflow

import (
	"image"
	"time"
)

// clickTiming reads the optional mouse timing parameters, falling back to
// the configured defaults
func clickTiming(rt *runtime, step Step) (move, pre, post time.Duration) {
	settings := rt.engine.settings
	move = step.timeoutParam("move_duration", settings.MoveDuration)
	pre = step.timeoutParam("pre_click_delay", settings.PreClickDelay)
	post = step.timeoutParam("post_click_delay", settings.PostClickDelay)
	return move, pre, post
}

func handleClickTemplate(rt *runtime, step Step) bool {
	template, ok := step.stringParam("template")
	if !ok {
		rt.engine.log.Errorf("no template specified for 'click_template'")
		return false
	}

	opts, region, ok := perceptionOpts(rt, step)
	if !ok {
		return false
	}

	// click_template waits briefly rather than using the long default
	timeout := step.timeoutParam("timeout", 10*time.Second)
	path := rt.engine.resolveTemplate(rt.game, template)

	result := rt.engine.screen.WaitFor(rt.ctx, path, timeout, opts...)
	if !result.Found {
		rt.engine.log.Errorf("template not found for click: %s", path)
		return false
	}

	dx, dy := step.offsetParam()
	target := rt.engine.screen.ToScreen(result.Center, region).Add(image.Point{X: dx, Y: dy})

	button, _ := step.stringParam("button")
	move, pre, post := clickTiming(rt, step)

	if err := rt.engine.input.Click(target.X, target.Y, button, move, pre, post); err != nil {
		rt.engine.log.Error("failed to click template", err)
		return false
	}

	rt.engine.log.Infof("clicked template %s at (%d, %d)", path, target.X, target.Y)
	return true
}

func handleClickTemplateIfExists(rt *runtime, step Step) bool {
	template, ok := step.stringParam("template")
	if !ok {
		rt.engine.log.Errorf("no template specified for 'click_template_if_exists'")
		return false
	}

	opts, region, ok := perceptionOpts(rt, step)
	if !ok {
		return false
	}

	path := rt.engine.resolveTemplate(rt.game, template)
	result, err := rt.engine.screen.MatchTemplate(path, opts...)
	if err != nil || !result.Found {
		rt.engine.log.Infof("optional template not found (skipping): %s", path)
		return true
	}

	dx, dy := step.offsetParam()
	target := rt.engine.screen.ToScreen(result.Center, region).Add(image.Point{X: dx, Y: dy})

	button, _ := step.stringParam("button")
	move, pre, post := clickTiming(rt, step)

	if err := rt.engine.input.Click(target.X, target.Y, button, move, pre, post); err != nil {
		rt.engine.log.Error("failed to click optional template", err)
	} else {
		rt.engine.log.Infof("clicked optional template %s at (%d, %d)", path, target.X, target.Y)
	}

	// Never fails: the template was optional to begin with
	return true
}

func handleClick(rt *runtime, step Step) bool {
	x, okX := step.intParam("x")
	y, okY := step.intParam("y")
	if !okX || !okY {
		rt.engine.log.Errorf("no coordinates specified for 'click'")
		return false
	}

	button, _ := step.stringParam("button")
	move, pre, post := clickTiming(rt, step)

	if err := rt.engine.input.Click(x, y, button, move, pre, post); err != nil {
		rt.engine.log.Error("failed to click", err)
		return false
	}
	return true
}
