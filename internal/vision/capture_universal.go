package vision

import (
	"fmt"
	"image"

	"github.com/kbinani/screenshot"
)

// universalBackend grabs the screen through the portable screenshot library.
// Slower than the native grabber but works on every supported platform.
type universalBackend struct{}

// NewUniversalBackend returns the portable capture backend
func NewUniversalBackend() Backend {
	return universalBackend{}
}

func (universalBackend) Name() string {
	return "universal"
}

func (universalBackend) Capture(bounds image.Rectangle) (*image.RGBA, error) {
	img, err := screenshot.CaptureRect(bounds)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCaptureFailed, err)
	}
	return img, nil
}
