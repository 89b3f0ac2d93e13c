package vision

import (
	"image"
	"math"
)

// MatchResult contains the outcome of one template match. Confidence is
// populated even when Found is false, so callers can log how close a
// near-miss came.
type MatchResult struct {
	Found      bool
	Center     image.Point
	Confidence float64
}

// MatchConfig configures template matching
type MatchConfig struct {
	Threshold    float64          // 0.0-1.0, higher = more strict
	SearchRegion *image.Rectangle // Optional: limit search area
}

// FindTemplate scans haystack for the best normalized cross-correlation
// match of needle. The returned center is in the coordinate space of the
// searched image.
func FindTemplate(haystack, needle *image.RGBA, config *MatchConfig) (MatchResult, error) {
	haystackBounds := haystack.Bounds()
	needleBounds := needle.Bounds()

	needleWidth := needleBounds.Dx()
	needleHeight := needleBounds.Dy()

	if needleWidth > haystackBounds.Dx() || needleHeight > haystackBounds.Dy() {
		return MatchResult{}, ErrTemplateTooLarge
	}

	searchBounds := haystackBounds
	if config.SearchRegion != nil {
		searchBounds = config.SearchRegion.Intersect(haystackBounds)
		if searchBounds.Empty() {
			return MatchResult{}, nil
		}
	}

	maxY := searchBounds.Max.Y - needleHeight
	maxX := searchBounds.Max.X - needleWidth
	if maxY < searchBounds.Min.Y || maxX < searchBounds.Min.X {
		// Template doesn't fit in the search region
		return MatchResult{}, nil
	}

	bestScore := 0.0
	bestLocation := image.Point{}

	for y := searchBounds.Min.Y; y <= maxY; y++ {
		for x := searchBounds.Min.X; x <= maxX; x++ {
			score := matchNCC(haystack, needle, x, y, needleWidth, needleHeight)
			if score > bestScore {
				bestScore = score
				bestLocation = image.Point{X: x, Y: y}
			}
		}
	}

	return MatchResult{
		Found:      bestScore >= config.Threshold,
		Center:     image.Point{X: bestLocation.X + needleWidth/2, Y: bestLocation.Y + needleHeight/2},
		Confidence: bestScore,
	}, nil
}

// FindTemplateAll returns every position whose correlation meets the
// threshold. Adjacent detections around a single true match are not
// suppressed; callers that need unique hits should use templates that only
// occur once per screen.
func FindTemplateAll(haystack, needle *image.RGBA, config *MatchConfig) ([]MatchResult, error) {
	haystackBounds := haystack.Bounds()
	needleBounds := needle.Bounds()

	needleWidth := needleBounds.Dx()
	needleHeight := needleBounds.Dy()

	if needleWidth > haystackBounds.Dx() || needleHeight > haystackBounds.Dy() {
		return nil, ErrTemplateTooLarge
	}

	searchBounds := haystackBounds
	if config.SearchRegion != nil {
		searchBounds = config.SearchRegion.Intersect(haystackBounds)
		if searchBounds.Empty() {
			return nil, nil
		}
	}

	maxY := searchBounds.Max.Y - needleHeight
	maxX := searchBounds.Max.X - needleWidth
	if maxY < searchBounds.Min.Y || maxX < searchBounds.Min.X {
		return nil, nil
	}

	var results []MatchResult
	for y := searchBounds.Min.Y; y <= maxY; y++ {
		for x := searchBounds.Min.X; x <= maxX; x++ {
			score := matchNCC(haystack, needle, x, y, needleWidth, needleHeight)
			if score >= config.Threshold {
				results = append(results, MatchResult{
					Found:      true,
					Center:     image.Point{X: x + needleWidth/2, Y: y + needleHeight/2},
					Confidence: score,
				})
			}
		}
	}

	return results, nil
}

// Similarity computes the normalized cross-correlation of two equal-sized
// frames at zero offset. Frames of different sizes are compared over their
// shared top-left intersection.
func Similarity(a, b *image.RGBA) float64 {
	width := a.Bounds().Dx()
	if w := b.Bounds().Dx(); w < width {
		width = w
	}
	height := a.Bounds().Dy()
	if h := b.Bounds().Dy(); h < height {
		height = h
	}
	if width <= 0 || height <= 0 {
		return 0
	}
	return nccAtOrigin(a, b, width, height)
}

// matchNCC computes normalized cross-correlation of needle against the
// haystack region anchored at (x, y), mapped to [0, 1]
func matchNCC(haystack, needle *image.RGBA, x, y, width, height int) float64 {
	var sumH, sumN, sumHN, sumHH, sumNN float64
	pixelCount := float64(width * height * 3)

	hOriginX := x - haystack.Bounds().Min.X
	hOriginY := y - haystack.Bounds().Min.Y
	nOriginX := -needle.Bounds().Min.X
	nOriginY := -needle.Bounds().Min.Y

	for ny := 0; ny < height; ny++ {
		hRow := (hOriginY + ny) * haystack.Stride
		nRow := (nOriginY + ny) * needle.Stride
		for nx := 0; nx < width; nx++ {
			hIdx := hRow + (hOriginX+nx)*4
			nIdx := nRow + (nOriginX+nx)*4

			for c := 0; c < 3; c++ {
				h := float64(haystack.Pix[hIdx+c])
				n := float64(needle.Pix[nIdx+c])

				sumH += h
				sumN += n
				sumHN += h * n
				sumHH += h * h
				sumNN += n * n
			}
		}
	}

	numerator := sumHN - (sumH * sumN / pixelCount)
	denomH := math.Sqrt(sumHH - (sumH * sumH / pixelCount))
	denomN := math.Sqrt(sumNN - (sumN * sumN / pixelCount))

	if denomH == 0 || denomN == 0 {
		// Flat patches carry no correlation signal; treat exact equality of
		// two flat patches as a perfect match
		if denomH == 0 && denomN == 0 && sumH/pixelCount == sumN/pixelCount {
			return 1.0
		}
		return 0
	}

	// Correlation coefficient is in [-1, 1]; normalize to [0, 1]
	correlation := numerator / (denomH * denomN)
	return (correlation + 1.0) / 2.0
}

func nccAtOrigin(a, b *image.RGBA, width, height int) float64 {
	return matchNCC(a, b, a.Bounds().Min.X, a.Bounds().Min.Y, width, height)
}

// CropRegion extracts a rectangular region from an image into a new image
// anchored at the origin
func CropRegion(img *image.RGBA, rect image.Rectangle) *image.RGBA {
	rect = rect.Intersect(img.Bounds())
	cropped := image.NewRGBA(image.Rect(0, 0, rect.Dx(), rect.Dy()))

	for y := rect.Min.Y; y < rect.Max.Y; y++ {
		for x := rect.Min.X; x < rect.Max.X; x++ {
			cropped.SetRGBA(x-rect.Min.X, y-rect.Min.Y, img.RGBAAt(x, y))
		}
	}

	return cropped
}
