package vision

import "image"

// Option customizes a single perception call
type Option func(*matchOptions)

type matchOptions struct {
	threshold float64 // 0 means use the configured default
	region    *Region
	image     *image.RGBA // pre-captured frame to search instead of capturing
}

// WithThreshold overrides the configured matching threshold
func WithThreshold(t float64) Option {
	return func(opts *matchOptions) {
		opts.threshold = t
	}
}

// WithRegion limits the search to a normalized screen region
func WithRegion(r Region) Option {
	return func(opts *matchOptions) {
		opts.region = &r
	}
}

// WithImage searches a provided frame instead of capturing a fresh one
func WithImage(img *image.RGBA) Option {
	return func(opts *matchOptions) {
		opts.image = img
	}
}
