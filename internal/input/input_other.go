//go:build !windows

package input

import "errors"

var errUnsupported = errors.New("input injection not supported on this platform")

func keyDown(vk uint16) error        { return errUnsupported }
func keyUp(vk uint16) error          { return errUnsupported }
func sendText(text string) error     { return errUnsupported }
func setCursorPos(x, y int) error    { return errUnsupported }
func cursorPos() (int, int, error)   { return 0, 0, errUnsupported }
func mouseClick(button string) error { return errUnsupported }
