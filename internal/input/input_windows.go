//go:build windows

package input

import (
	"fmt"
	"unsafe"

	"golang.org/x/sys/windows"
)

var (
	user32 = windows.NewLazySystemDLL("user32.dll")

	procSendInput    = user32.NewProc("SendInput")
	procSetCursorPos = user32.NewProc("SetCursorPos")
	procGetCursorPos = user32.NewProc("GetCursorPos")
)

const (
	inputKeyboard = 1
	inputMouse    = 0

	keyeventfKeyUp   = 0x0002
	keyeventfUnicode = 0x0004

	mouseeventfLeftDown   = 0x0002
	mouseeventfLeftUp     = 0x0004
	mouseeventfRightDown  = 0x0008
	mouseeventfRightUp    = 0x0010
	mouseeventfMiddleDown = 0x0020
	mouseeventfMiddleUp   = 0x0040
)

// keyboardInput mirrors the Win32 INPUT struct for keyboard events. The
// union member is as large as MOUSEINPUT, so the struct is padded to match.
type keyboardInput struct {
	Type  uint32
	_     uint32 // alignment to the 8-byte union boundary
	Vk    uint16
	Scan  uint16
	Flags uint32
	Time  uint32
	Extra uintptr
	_     [8]byte // pad to sizeof(INPUT) with the MOUSEINPUT union
}

type mouseInput struct {
	Type  uint32
	_     uint32
	Dx    int32
	Dy    int32
	Data  uint32
	Flags uint32
	Time  uint32
	Extra uintptr
}

func sendInputs(inputs []keyboardInput) error {
	if len(inputs) == 0 {
		return nil
	}
	sent, _, err := procSendInput.Call(
		uintptr(len(inputs)),
		uintptr(unsafe.Pointer(&inputs[0])),
		unsafe.Sizeof(inputs[0]),
	)
	if int(sent) != len(inputs) {
		return fmt.Errorf("SendInput delivered %d of %d events: %v", sent, len(inputs), err)
	}
	return nil
}

func keyDown(vk uint16) error {
	return sendInputs([]keyboardInput{{Type: inputKeyboard, Vk: vk}})
}

func keyUp(vk uint16) error {
	return sendInputs([]keyboardInput{{Type: inputKeyboard, Vk: vk, Flags: keyeventfKeyUp}})
}

// sendText injects text as unicode key events, independent of layout
func sendText(text string) error {
	var inputs []keyboardInput
	for _, r := range text {
		for _, unit := range utf16Units(r) {
			inputs = append(inputs,
				keyboardInput{Type: inputKeyboard, Scan: unit, Flags: keyeventfUnicode},
				keyboardInput{Type: inputKeyboard, Scan: unit, Flags: keyeventfUnicode | keyeventfKeyUp},
			)
		}
	}
	return sendInputs(inputs)
}

func utf16Units(r rune) []uint16 {
	if r < 0x10000 {
		return []uint16{uint16(r)}
	}
	r -= 0x10000
	return []uint16{uint16(0xD800 + (r >> 10)), uint16(0xDC00 + (r & 0x3FF))}
}

func setCursorPos(x, y int) error {
	ret, _, err := procSetCursorPos.Call(uintptr(x), uintptr(y))
	if ret == 0 {
		return fmt.Errorf("SetCursorPos failed: %v", err)
	}
	return nil
}

func cursorPos() (int, int, error) {
	var pt struct{ X, Y int32 }
	ret, _, err := procGetCursorPos.Call(uintptr(unsafe.Pointer(&pt)))
	if ret == 0 {
		return 0, 0, fmt.Errorf("GetCursorPos failed: %v", err)
	}
	return int(pt.X), int(pt.Y), nil
}

func mouseClick(button string) error {
	var down, up uint32
	switch button {
	case "right":
		down, up = mouseeventfRightDown, mouseeventfRightUp
	case "middle":
		down, up = mouseeventfMiddleDown, mouseeventfMiddleUp
	default:
		down, up = mouseeventfLeftDown, mouseeventfLeftUp
	}

	inputs := []mouseInput{
		{Type: inputMouse, Flags: down},
		{Type: inputMouse, Flags: up},
	}
	sent, _, err := procSendInput.Call(
		uintptr(len(inputs)),
		uintptr(unsafe.Pointer(&inputs[0])),
		unsafe.Sizeof(inputs[0]),
	)
	if int(sent) != len(inputs) {
		return fmt.Errorf("SendInput delivered %d of %d events: %v", sent, len(inputs), err)
	}
	return nil
}
