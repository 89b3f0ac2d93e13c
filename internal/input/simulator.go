// Package input injects synthetic keyboard and mouse events into the
// foreground session. All methods are synchronous and report failure as an
// error rather than panicking; the engine maps errors to step failures.
package input

import (
	"fmt"
	"strings"
	"time"

	"github.com/katanabench/katana/internal/config"
	"github.com/katanabench/katana/internal/logging"
)

// Simulator delivers key presses, text and mouse clicks
type Simulator struct {
	delay time.Duration // settle delay after key/text injection
	log   *logging.Logger
}

// NewSimulator creates an input simulator using the configured input delay
func NewSimulator(settings *config.Settings, log *logging.Logger) *Simulator {
	return &Simulator{
		delay: settings.InputDelay,
		log:   log,
	}
}

// PressKey taps a key once and waits the configured settle delay
func (s *Simulator) PressKey(key string) error {
	vk, err := vkCode(key)
	if err != nil {
		return err
	}

	s.log.Debugf("pressing key: %s", key)
	if err := keyDown(vk); err != nil {
		return err
	}
	if err := keyUp(vk); err != nil {
		return err
	}

	time.Sleep(s.delay)
	return nil
}

// HoldKey holds a key down for the given duration
func (s *Simulator) HoldKey(key string, duration time.Duration) error {
	vk, err := vkCode(key)
	if err != nil {
		return err
	}

	s.log.Debugf("holding key %s for %v", key, duration)
	if err := keyDown(vk); err != nil {
		return err
	}
	time.Sleep(duration)
	return keyUp(vk)
}

// TypeText types a string of text followed by the settle delay
func (s *Simulator) TypeText(text string) error {
	s.log.Debugf("typing text (%d chars)", len(text))
	if err := sendText(text); err != nil {
		return err
	}
	time.Sleep(s.delay)
	return nil
}

// Click moves the cursor to (x, y) over moveDuration, waits preDelay,
// presses the given button and waits postDelay. Coordinates are absolute
// virtual-screen pixels.
func (s *Simulator) Click(x, y int, button string, moveDuration, preDelay, postDelay time.Duration) error {
	button = strings.ToLower(button)
	if button == "" {
		button = "left"
	}
	if button != "left" && button != "right" && button != "middle" {
		return fmt.Errorf("unknown mouse button %q", button)
	}

	s.log.Debugf("clicking %s at (%d, %d)", button, x, y)

	if err := glideCursor(x, y, moveDuration); err != nil {
		return err
	}
	if preDelay > 0 {
		time.Sleep(preDelay)
	}
	if err := mouseClick(button); err != nil {
		return err
	}
	if postDelay > 0 {
		time.Sleep(postDelay)
	}
	return nil
}

// glideCursor moves the cursor in small interpolated steps so games that
// track motion register the travel
func glideCursor(x, y int, duration time.Duration) error {
	const steps = 20

	if duration <= 0 {
		return setCursorPos(x, y)
	}

	startX, startY, err := cursorPos()
	if err != nil {
		// Can't read the cursor; jump straight to the target
		return setCursorPos(x, y)
	}

	interval := duration / steps
	for i := 1; i <= steps; i++ {
		t := float64(i) / steps
		cx := startX + int(float64(x-startX)*t)
		cy := startY + int(float64(y-startY)*t)
		if err := setCursorPos(cx, cy); err != nil {
			return err
		}
		time.Sleep(interval)
	}
	return nil
}
