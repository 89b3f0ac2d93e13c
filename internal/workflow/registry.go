package workflow

import "context"

// runtime bundles everything handlers need during one run
type runtime struct {
	engine *Engine
	ctx    context.Context
	game   *Game
	run    *RunContext
}

type handlerFunc func(rt *runtime, step Step) bool

type validateFunc func(v *validation, game *Game, stepNum int, step Step)

type actionSpec struct {
	handler  handlerFunc
	validate validateFunc
}

// actionRegistry maps workflow action tags to their handlers and static
// validators. Unknown tags are rejected by Validate and treated as ordinary
// step failures at dispatch time.
//
// To add a new action: write a handler, write a validator for its required
// parameters, and register both here.
var actionRegistry map[string]actionSpec

func init() {
	actionRegistry = map[string]actionSpec{
		// Process control
		"launch_game":   {handler: handleLaunchGame, validate: validateLaunchGame},
		"wait_for_game": {handler: handleWaitForGame, validate: validateNothing},
		"exit_game":     {handler: handleExitGame, validate: validateNothing},

		// Perception
		"wait_for_template":           {handler: handleWaitForTemplate, validate: validateTemplateStep},
		"wait_for_any_template":       {handler: handleWaitForAnyTemplate, validate: validateTemplateListStep},
		"wait_for_template_disappear": {handler: handleWaitForTemplateDisappear, validate: validateTemplateStep},
		"check_template":              {handler: handleCheckTemplate, validate: validateTemplateStep},
		"wait_for_screen_change":      {handler: handleWaitForScreenChange, validate: validateRegionOnly},

		// Clicks
		"click_template":           {handler: handleClickTemplate, validate: validateTemplateStep},
		"click_template_if_exists": {handler: handleClickTemplateIfExists, validate: validateTemplateStep},
		"click":                    {handler: handleClick, validate: validateClick},

		// Keyboard
		"press_key": {handler: handlePressKey, validate: validateKeyStep},
		"hold_key":  {handler: handleHoldKey, validate: validateKeyStep},
		"type_text": {handler: handleTypeText, validate: validateTypeText},

		// Miscellaneous
		"take_screenshot": {handler: handleTakeScreenshot, validate: validateNothing},
		"wait":            {handler: handleWait, validate: validateWait},
		"retry_action":    {handler: handleRetryAction, validate: validateRetryAction},
		"log_message":     {handler: handleLogMessage, validate: validateLogMessage},
	}
}

// RegisteredActions lists every known action tag, for error messages and
// tooling
func RegisteredActions() []string {
	actions := make([]string, 0, len(actionRegistry))
	for name := range actionRegistry {
		actions = append(actions, name)
	}
	return actions
}
