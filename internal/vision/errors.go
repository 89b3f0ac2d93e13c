package vision

import "errors"

var (
	// ErrTemplateNotFound indicates the template file does not exist
	ErrTemplateNotFound = errors.New("template not found")
	// ErrTemplateTooLarge indicates the template exceeds the search image in a dimension
	ErrTemplateTooLarge = errors.New("template larger than search image")
	// ErrCaptureFailed indicates a single backend failed to capture
	ErrCaptureFailed = errors.New("screen capture failed")
	// ErrBackendsExhausted indicates every capture backend failed for one call
	ErrBackendsExhausted = errors.New("all capture backends failed")
	// ErrInvalidRegion indicates a normalized region outside [0,1] or inverted
	ErrInvalidRegion = errors.New("invalid region")
	// ErrNoMonitor indicates no monitor could be enumerated
	ErrNoMonitor = errors.New("no monitor available")
)
