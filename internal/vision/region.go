package vision

import (
	"fmt"
	"image"
)

// Region is a resolution-independent rectangle with every coordinate
// normalized to [0, 1]. It is resolved against concrete pixel dimensions
// only at capture time.
type Region struct {
	X1, Y1, X2, Y2 float64
}

// NewRegion creates a normalized region
func NewRegion(x1, y1, x2, y2 float64) Region {
	return Region{X1: x1, Y1: y1, X2: x2, Y2: y2}
}

// Validate checks that coordinates are normalized and not inverted
func (r Region) Validate() error {
	for _, v := range []float64{r.X1, r.Y1, r.X2, r.Y2} {
		if v < 0 || v > 1 {
			return fmt.Errorf("%w: coordinate %v outside [0,1]", ErrInvalidRegion, v)
		}
	}
	if r.X2 <= r.X1 || r.Y2 <= r.Y1 {
		return fmt.Errorf("%w: empty or inverted region", ErrInvalidRegion)
	}
	return nil
}

// ToPixels resolves the region against pixel dimensions
func (r Region) ToPixels(width, height int) image.Rectangle {
	return image.Rect(
		int(r.X1*float64(width)),
		int(r.Y1*float64(height)),
		int(r.X2*float64(width)),
		int(r.Y2*float64(height)),
	)
}
