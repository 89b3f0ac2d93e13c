//go:build !windows

package vision

import (
	"errors"
	"image"
)

type windowInfo struct {
	Title  string
	Bounds image.Rectangle
}

func listWindows() ([]windowInfo, error) {
	return nil, errors.New("window enumeration not available on this platform")
}
