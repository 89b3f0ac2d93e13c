package vision

import (
	"fmt"
	"image"
	"os"

	// Template decoders. PNG is the native template format; BMP and JPEG
	// cover templates cropped with external tools.
	_ "image/jpeg"
	_ "image/png"

	xdraw "golang.org/x/image/draw"

	_ "golang.org/x/image/bmp"
)

// LoadTemplate reads and decodes a template file into RGBA. Templates are
// re-read on every call: they may be edited between workflow runs and the
// analyzer must pick up the change.
func LoadTemplate(path string) (*image.RGBA, error) {
	file, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrTemplateNotFound, path)
		}
		return nil, fmt.Errorf("failed to open template %s: %w", path, err)
	}
	defer file.Close()

	img, _, err := image.Decode(file)
	if err != nil {
		return nil, fmt.Errorf("failed to decode template %s: %w", path, err)
	}

	return ToRGBA(img), nil
}

// ToRGBA converts any decoded image to RGBA without scaling
func ToRGBA(img image.Image) *image.RGBA {
	if rgba, ok := img.(*image.RGBA); ok {
		return rgba
	}
	bounds := img.Bounds()
	rgba := image.NewRGBA(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))
	xdraw.Draw(rgba, rgba.Bounds(), img, bounds.Min, xdraw.Src)
	return rgba
}
