package workflow

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// validation accumulates findings from a static workflow check. Errors mean
// the workflow cannot run; warnings mean it can run but will likely fail or
// behave unexpectedly at the flagged step.
type validation struct {
	templateDir string
	errors      []string
	warnings    []string
}

func (v *validation) errorf(format string, args ...interface{}) {
	v.errors = append(v.errors, fmt.Sprintf(format, args...))
}

func (v *validation) warnf(format string, args ...interface{}) {
	v.warnings = append(v.warnings, fmt.Sprintf(format, args...))
}

// Validate statically checks a game's workflow without executing it:
// unknown action tags, missing required parameters, and template files that
// do not exist on disk. Returns errors (run-blocking) and warnings.
func (e *Engine) Validate(game *Game) (errors, warnings []string) {
	v := &validation{templateDir: e.settings.TemplateDir}

	if len(game.Workflow) == 0 {
		v.errorf("workflow has no steps")
	}

	for i, step := range game.Workflow {
		validateStep(v, game, i+1, step)
	}
	return v.errors, v.warnings
}

func validateStep(v *validation, game *Game, stepNum int, step Step) {
	if step.Action == "" {
		v.errorf("step %d: missing action", stepNum)
		return
	}
	spec, ok := actionRegistry[step.Action]
	if !ok {
		v.errorf("step %d: unknown action %q (known: %s)", stepNum, step.Action, knownActions())
		return
	}
	spec.validate(v, game, stepNum, step)
}

func knownActions() string {
	actions := RegisteredActions()
	sort.Strings(actions)
	return strings.Join(actions, ", ")
}

// checkTemplateExists warns when a referenced template resolves to a file
// that is not on disk. Missing files are a warning, not an error: templates
// are often captured after the workflow is written.
func (v *validation) checkTemplateExists(game *Game, stepNum int, template string) {
	path := ResolveTemplatePath(v.templateDir, game.Name, template)
	if _, err := os.Stat(path); err != nil {
		v.warnf("step %d: template file not found: %s", stepNum, filepath.ToSlash(path))
	}
}

func validateNothing(v *validation, game *Game, stepNum int, step Step) {}

func validateLaunchGame(v *validation, game *Game, stepNum int, step Step) {
	if game.ExePath == "" && game.SteamAppID == 0 {
		v.errorf("step %d: launch_game needs the game to define exe_path or steam_app_id", stepNum)
	}
}

func validateTemplateStep(v *validation, game *Game, stepNum int, step Step) {
	template, ok := step.stringParam("template")
	if !ok || template == "" {
		v.errorf("step %d: %s requires a template parameter", stepNum, step.Action)
		return
	}
	v.checkTemplateExists(game, stepNum, template)
	validateRegionOnly(v, game, stepNum, step)
}

func validateTemplateListStep(v *validation, game *Game, stepNum int, step Step) {
	templates := step.stringSliceParam("templates")
	if len(templates) == 0 {
		v.errorf("step %d: %s requires a non-empty templates list", stepNum, step.Action)
		return
	}
	for _, template := range templates {
		v.checkTemplateExists(game, stepNum, template)
	}
	validateRegionOnly(v, game, stepNum, step)
}

func validateRegionOnly(v *validation, game *Game, stepNum int, step Step) {
	if _, ok := step.Params["region"]; !ok {
		return
	}
	if _, err := step.regionParam(); err != nil {
		v.errorf("step %d: %v", stepNum, err)
	}
}

func validateClick(v *validation, game *Game, stepNum int, step Step) {
	if _, ok := step.floatParam("x"); !ok {
		v.errorf("step %d: click requires an x coordinate", stepNum)
	}
	if _, ok := step.floatParam("y"); !ok {
		v.errorf("step %d: click requires a y coordinate", stepNum)
	}
}

func validateKeyStep(v *validation, game *Game, stepNum int, step Step) {
	key, ok := step.stringParam("key")
	if !ok || key == "" {
		v.errorf("step %d: %s requires a key parameter", stepNum, step.Action)
	}
}

func validateTypeText(v *validation, game *Game, stepNum int, step Step) {
	if _, ok := step.stringParam("text"); !ok {
		v.errorf("step %d: type_text requires a text parameter", stepNum)
	}
}

func validateWait(v *validation, game *Game, stepNum int, step Step) {
	if _, ok := step.floatParam("seconds"); !ok {
		v.warnf("step %d: wait has no seconds parameter, defaulting to 1", stepNum)
	}
}

func validateRetryAction(v *validation, game *Game, stepNum int, step Step) {
	nested, err := step.nestedStepParam("action_to_retry")
	if err != nil {
		v.errorf("step %d: %v", stepNum, err)
		return
	}
	if nested.Action == "retry_action" {
		v.errorf("step %d: retry_action cannot nest another retry_action", stepNum)
		return
	}
	validateStep(v, game, stepNum, *nested)
}

func validateLogMessage(v *validation, game *Game, stepNum int, step Step) {
	if _, ok := step.stringParam("message"); !ok {
		v.warnf("step %d: log_message has no message parameter", stepNum)
	}
}
