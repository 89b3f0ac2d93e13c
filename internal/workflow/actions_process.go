package workflow

func handleLaunchGame(rt *runtime, step Step) bool {
	if err := rt.engine.process.Launch(rt.game.LaunchSpec()); err != nil {
		rt.engine.log.Error("failed to launch game", err)
		return false
	}

	rt.engine.log.Infof("game launch initiated: %s", rt.game.Name)
	// Retarget monitor auto-selection at the new game window
	rt.engine.screen.SetGame(rt.game.ProcessName)
	return true
}

func handleWaitForGame(rt *runtime, step Step) bool {
	timeout := step.timeoutParam("timeout", rt.engine.settings.DefaultTimeout)
	name, ok := step.stringParam("process_name")
	if !ok {
		name = rt.game.ProcessName
	}
	return rt.engine.process.WaitUntilRunning(rt.ctx, name, timeout)
}

func handleExitGame(rt *runtime, step Step) bool {
	force := step.boolParam("force")
	name, ok := step.stringParam("process_name")
	if !ok {
		name = rt.game.ProcessName
	}
	return rt.engine.process.Close(name, force)
}
