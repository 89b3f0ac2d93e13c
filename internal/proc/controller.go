// Package proc controls game processes: launching them directly or through
// Steam, detecting whether they run, and closing them.
package proc

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/shirou/gopsutil/v4/process"

	"github.com/katanabench/katana/internal/config"
	"github.com/katanabench/katana/internal/logging"
)

// LaunchSpec describes how to start a game
type LaunchSpec struct {
	Name          string
	ProcessName   string
	ExePath       string
	Args          []string
	SteamAppID    int
	LaunchOptions []string
}

// Controller launches, inspects and terminates game processes
type Controller struct {
	settings *config.Settings
	log      *logging.Logger
}

// NewController creates a process controller
func NewController(settings *config.Settings, log *logging.Logger) *Controller {
	return &Controller{settings: settings, log: log}
}

// Launch starts the game described by spec. Steam games launch through the
// configured Steam executable with -applaunch; everything else launches the
// executable directly. The call returns once the launcher process starts,
// not when the game window is up.
func (c *Controller) Launch(spec LaunchSpec) error {
	if spec.SteamAppID > 0 {
		return c.launchSteam(spec)
	}
	return c.launchDirect(spec)
}

func (c *Controller) launchSteam(spec LaunchSpec) error {
	if c.settings.SteamPath == "" {
		return fmt.Errorf("steam path not configured")
	}
	steamExe := filepath.Join(c.settings.SteamPath, "steam.exe")
	if _, err := os.Stat(steamExe); err != nil {
		return fmt.Errorf("steam executable not found: %s", steamExe)
	}

	args := []string{"-applaunch", strconv.Itoa(spec.SteamAppID)}
	args = append(args, spec.LaunchOptions...)

	c.log.Infof("launching steam game %d (%s)", spec.SteamAppID, spec.Name)
	cmd := exec.Command(steamExe, args...)
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("failed to launch steam game %d: %w", spec.SteamAppID, err)
	}
	go cmd.Wait()
	return nil
}

func (c *Controller) launchDirect(spec LaunchSpec) error {
	if spec.ExePath == "" {
		return fmt.Errorf("no executable configured for %s", spec.Name)
	}
	if _, err := os.Stat(spec.ExePath); err != nil {
		return fmt.Errorf("game executable not found: %s", spec.ExePath)
	}

	c.log.Infof("launching %s", spec.ExePath)
	cmd := exec.Command(spec.ExePath, spec.Args...)
	cmd.Dir = filepath.Dir(spec.ExePath)
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("failed to launch %s: %w", spec.ExePath, err)
	}
	go cmd.Wait()
	return nil
}

// IsRunning reports whether any process name contains the given name,
// case-insensitively
func (c *Controller) IsRunning(name string) bool {
	if name == "" {
		return false
	}
	needle := strings.ToLower(name)

	procs, err := process.Processes()
	if err != nil {
		c.log.Warnf("failed to list processes: %v", err)
		return false
	}

	for _, p := range procs {
		pname, err := p.Name()
		if err != nil {
			continue
		}
		if strings.Contains(strings.ToLower(pname), needle) {
			return true
		}
	}
	return false
}

// Close terminates every process matching name. Force kills outright
// instead of asking politely. Returns true if at least one process was
// signalled.
func (c *Controller) Close(name string, force bool) bool {
	if name == "" {
		return false
	}
	needle := strings.ToLower(name)

	procs, err := process.Processes()
	if err != nil {
		c.log.Warnf("failed to list processes: %v", err)
		return false
	}

	closed := false
	for _, p := range procs {
		pname, err := p.Name()
		if err != nil || !strings.Contains(strings.ToLower(pname), needle) {
			continue
		}

		if force {
			err = p.Kill()
		} else {
			err = p.Terminate()
		}
		if err != nil {
			c.log.Warnf("failed to close %s (pid %d): %v", pname, p.Pid, err)
			continue
		}
		c.log.Infof("closed %s (pid %d)", pname, p.Pid)
		closed = true
	}
	return closed
}

// WaitUntilRunning polls until the named process appears or the timeout
// elapses
func (c *Controller) WaitUntilRunning(ctx context.Context, name string, timeout time.Duration) bool {
	return c.pollUntil(ctx, timeout, func() bool { return c.IsRunning(name) })
}

// WaitUntilClosed polls until the named process is gone or the timeout
// elapses
func (c *Controller) WaitUntilClosed(ctx context.Context, name string, timeout time.Duration) bool {
	return c.pollUntil(ctx, timeout, func() bool { return !c.IsRunning(name) })
}

func (c *Controller) pollUntil(ctx context.Context, timeout time.Duration, done func() bool) bool {
	deadline := time.Now().Add(timeout)
	for {
		if ctx.Err() != nil {
			return false
		}
		if done() {
			return true
		}
		if time.Now().After(deadline) {
			return false
		}

		timer := time.NewTimer(c.settings.PollInterval)
		select {
		case <-ctx.Done():
			timer.Stop()
			return false
		case <-timer.C:
		}
	}
}
