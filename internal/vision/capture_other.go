//go:build !windows

package vision

import "errors"

// NewNativeBackend returns the platform's fast capture backend. There is no
// native grabber off Windows; the analyzer falls back to the universal
// backend alone.
func NewNativeBackend() (Backend, error) {
	return nil, errors.New("native capture backend not available on this platform")
}
