//go:build windows

package vision

import (
	"image"
	"syscall"
	"unsafe"
)

var (
	procEnumWindows     = user32.NewProc("EnumWindows")
	procGetWindowTextW  = user32.NewProc("GetWindowTextW")
	procGetWindowRect   = user32.NewProc("GetWindowRect")
	procIsWindowVisible = user32.NewProc("IsWindowVisible")
)

type winRect struct {
	Left, Top, Right, Bottom int32
}

type windowInfo struct {
	Title  string
	Bounds image.Rectangle
}

// listWindows enumerates visible top-level windows with non-empty titles
func listWindows() ([]windowInfo, error) {
	var result []windowInfo

	callback := syscall.NewCallback(func(hwnd uintptr, _ uintptr) uintptr {
		visible, _, _ := procIsWindowVisible.Call(hwnd)
		if visible == 0 {
			return 1 // continue enumeration
		}

		buf := make([]uint16, 256)
		length, _, _ := procGetWindowTextW.Call(hwnd, uintptr(unsafe.Pointer(&buf[0])), uintptr(len(buf)))
		if length == 0 {
			return 1
		}

		var rect winRect
		ok, _, _ := procGetWindowRect.Call(hwnd, uintptr(unsafe.Pointer(&rect)))
		if ok == 0 {
			return 1
		}

		result = append(result, windowInfo{
			Title:  syscall.UTF16ToString(buf[:length]),
			Bounds: image.Rect(int(rect.Left), int(rect.Top), int(rect.Right), int(rect.Bottom)),
		})
		return 1
	})

	ret, _, err := procEnumWindows.Call(callback, 0)
	if ret == 0 && err != syscall.Errno(0) {
		return nil, err
	}
	return result, nil
}
