package workflow

import (
	"github.com/katanabench/katana/internal/vision"
)

// perceptionOpts builds vision options from a step's optional region and
// threshold parameters
func perceptionOpts(rt *runtime, step Step) ([]vision.Option, *vision.Region, bool) {
	var opts []vision.Option

	region, err := step.regionParam()
	if err != nil {
		rt.engine.log.Error("invalid region parameter", err)
		return nil, nil, false
	}
	if region != nil {
		opts = append(opts, vision.WithRegion(*region))
	}
	if threshold, ok := step.floatParam("threshold"); ok {
		opts = append(opts, vision.WithThreshold(threshold))
	}
	return opts, region, true
}

func handleWaitForTemplate(rt *runtime, step Step) bool {
	template, ok := step.stringParam("template")
	if !ok {
		rt.engine.log.Errorf("no template specified for 'wait_for_template'")
		return false
	}

	opts, _, ok := perceptionOpts(rt, step)
	if !ok {
		return false
	}

	timeout := step.timeoutParam("timeout", rt.engine.settings.DefaultTimeout)
	path := rt.engine.resolveTemplate(rt.game, template)

	result := rt.engine.screen.WaitFor(rt.ctx, path, timeout, opts...)
	if result.Found {
		rt.engine.log.Infof("template found: %s", path)
	} else {
		rt.engine.log.Warnf("template not found within timeout: %s", path)
	}
	return result.Found
}

func handleWaitForAnyTemplate(rt *runtime, step Step) bool {
	templates := step.stringSliceParam("templates")
	if len(templates) == 0 {
		rt.engine.log.Errorf("no templates specified for 'wait_for_any_template'")
		return false
	}

	opts, _, ok := perceptionOpts(rt, step)
	if !ok {
		return false
	}

	timeout := step.timeoutParam("timeout", rt.engine.settings.DefaultTimeout)
	paths := make([]string, len(templates))
	for i, t := range templates {
		paths[i] = rt.engine.resolveTemplate(rt.game, t)
	}

	idx, _ := rt.engine.screen.WaitForAny(rt.ctx, paths, timeout, opts...)
	if idx >= 0 {
		rt.engine.log.Infof("template found: %s", paths[idx])
		return true
	}
	rt.engine.log.Warnf("no templates found within timeout: %v", templates)
	return false
}

func handleWaitForTemplateDisappear(rt *runtime, step Step) bool {
	template, ok := step.stringParam("template")
	if !ok {
		rt.engine.log.Errorf("no template specified for 'wait_for_template_disappear'")
		return false
	}

	opts, _, ok := perceptionOpts(rt, step)
	if !ok {
		return false
	}

	timeout := step.timeoutParam("timeout", rt.engine.settings.DefaultTimeout)
	path := rt.engine.resolveTemplate(rt.game, template)

	return rt.engine.screen.WaitForDisappear(rt.ctx, path, timeout, opts...)
}

func handleCheckTemplate(rt *runtime, step Step) bool {
	template, ok := step.stringParam("template")
	if !ok {
		rt.engine.log.Errorf("no template specified for 'check_template'")
		return false
	}

	opts, _, ok := perceptionOpts(rt, step)
	if !ok {
		return false
	}

	path := rt.engine.resolveTemplate(rt.game, template)
	result, err := rt.engine.screen.MatchTemplate(path, opts...)
	if err != nil {
		rt.engine.log.Error("template check failed", err)
		return false
	}

	rt.engine.log.Infof("template check: %s - found=%v", path, result.Found)
	return result.Found
}

func handleWaitForScreenChange(rt *runtime, step Step) bool {
	opts, _, ok := perceptionOpts(rt, step)
	if !ok {
		return false
	}

	timeout := step.timeoutParam("timeout", rt.engine.settings.DefaultTimeout)
	threshold := rt.engine.settings.ScreenChangeSimilarity
	if t, present := step.floatParam("threshold"); present {
		threshold = t
	}

	return rt.engine.screen.WaitForScreenChange(rt.ctx, timeout, threshold, opts...)
}
