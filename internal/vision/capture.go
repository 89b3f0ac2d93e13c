package vision

import (
	"image"

	"github.com/kbinani/screenshot"
)

// Backend is a concrete screen grabber. Bounds are absolute virtual-screen
// pixel coordinates. Implementations are not assumed reentrant; the analyzer
// serializes all calls behind its capture lock.
type Backend interface {
	Name() string
	Capture(bounds image.Rectangle) (*image.RGBA, error)
}

// Monitor describes one physical display
type Monitor struct {
	Index  int
	Bounds image.Rectangle
}

// Contains reports whether the point lies on this monitor
func (m Monitor) Contains(p image.Point) bool {
	return p.In(m.Bounds)
}

// backendSet is an ordered list of capture backends with a currently
// selected index. Fallback advances the index; the transition is pure state
// so it can be tested without a real screen.
type backendSet struct {
	backends []Backend
	selected int
}

func newBackendSet(backends ...Backend) *backendSet {
	return &backendSet{backends: backends}
}

func (s *backendSet) current() Backend {
	return s.backends[s.selected]
}

// advance switches to the next backend in order and returns it
func (s *backendSet) advance() Backend {
	s.selected = (s.selected + 1) % len(s.backends)
	return s.backends[s.selected]
}

func (s *backendSet) len() int {
	return len(s.backends)
}

// listMonitors enumerates the active displays
func listMonitors() []Monitor {
	count := screenshot.NumActiveDisplays()
	monitors := make([]Monitor, 0, count)
	for i := 0; i < count; i++ {
		monitors = append(monitors, Monitor{Index: i, Bounds: screenshot.GetDisplayBounds(i)})
	}
	return monitors
}
