package vision

import (
	"context"
	"fmt"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/katanabench/katana/internal/config"
	"github.com/katanabench/katana/internal/logging"
)

// Analyzer owns the capture backends and provides every perception
// primitive: template matching, multi-template waits, change detection,
// monitor auto-selection and screenshot persistence.
//
// Capture calls are serialized behind an internal lock because backends are
// not guaranteed reentrant. All other state is guarded separately so status
// reads never block an in-flight capture.
type Analyzer struct {
	settings *config.Settings
	log      *logging.Logger

	captureMu sync.Mutex
	backends  *backendSet

	mu            sync.RWMutex
	game          string
	screenshotDir string

	// Injectable for tests
	monitorsFn func() []Monitor
	windowsFn  func() ([]windowInfo, error)
}

// NewAnalyzer creates an analyzer. When no explicit backends are supplied
// the native grabber is tried first with the universal grabber as fallback,
// probed once at startup.
func NewAnalyzer(settings *config.Settings, log *logging.Logger, backends ...Backend) *Analyzer {
	probe := false
	if len(backends) == 0 {
		if native, err := NewNativeBackend(); err == nil {
			backends = append(backends, native)
		}
		backends = append(backends, NewUniversalBackend())
		probe = true
	}

	a := &Analyzer{
		settings:      settings,
		log:           log,
		backends:      newBackendSet(backends...),
		screenshotDir: settings.ScreenshotDir,
		monitorsFn:    listMonitors,
		windowsFn:     listWindows,
	}

	if probe {
		a.probeBackends()
	}
	return a
}

// probeBackends performs a tiny capture to pick a working backend at startup
func (a *Analyzer) probeBackends() {
	monitors := a.monitorsFn()
	if len(monitors) == 0 {
		return
	}
	probe := image.Rectangle{
		Min: monitors[0].Bounds.Min,
		Max: monitors[0].Bounds.Min.Add(image.Point{X: 2, Y: 2}),
	}
	for i := 0; i < a.backends.len(); i++ {
		backend := a.backends.current()
		if _, err := backend.Capture(probe); err == nil {
			a.log.Infof("using %s capture backend", backend.Name())
			return
		}
		a.log.Warnf("capture backend %s failed probe, trying next", backend.Name())
		a.backends.advance()
	}
}

// SetGame sets the automation target used for monitor auto-selection
func (a *Analyzer) SetGame(processName string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.game = processName
}

// SetScreenshotDir redirects screenshot persistence, e.g. per run. Expected
// to be changed between runs, not concurrently with an active capture.
func (a *Analyzer) SetScreenshotDir(dir string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.screenshotDir = dir
}

func (a *Analyzer) currentGame() string {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.game
}

// activeMonitor finds the monitor containing the target's window center,
// falling back to the configured monitor index
func (a *Analyzer) activeMonitor() (Monitor, error) {
	monitors := a.monitorsFn()
	if len(monitors) == 0 {
		return Monitor{}, ErrNoMonitor
	}

	if game := a.currentGame(); game != "" {
		if windows, err := a.windowsFn(); err == nil {
			needle := strings.ToLower(game)
			for _, w := range windows {
				if !strings.Contains(strings.ToLower(w.Title), needle) {
					continue
				}
				center := image.Point{
					X: (w.Bounds.Min.X + w.Bounds.Max.X) / 2,
					Y: (w.Bounds.Min.Y + w.Bounds.Max.Y) / 2,
				}
				for _, m := range monitors {
					if m.Contains(center) {
						return m, nil
					}
				}
			}
		} else {
			a.log.Warn("window enumeration failed, using configured monitor")
		}
	}

	idx := a.settings.MonitorIndex
	if idx < 0 || idx >= len(monitors) {
		idx = 0
	}
	return monitors[idx], nil
}

// Capture grabs the active monitor, or a normalized sub-region of it. On
// backend failure it advances to the next backend and retries; the switch
// is sticky for subsequent calls. Returns an error only when every backend
// fails.
func (a *Analyzer) Capture(region *Region) (*image.RGBA, error) {
	a.captureMu.Lock()
	defer a.captureMu.Unlock()

	monitor, err := a.activeMonitor()
	if err != nil {
		return nil, err
	}

	bounds := monitor.Bounds
	if region != nil {
		if err := region.Validate(); err != nil {
			return nil, err
		}
		bounds = region.ToPixels(monitor.Bounds.Dx(), monitor.Bounds.Dy()).Add(monitor.Bounds.Min)
	}

	var lastErr error
	for attempt := 0; attempt < a.backends.len(); attempt++ {
		backend := a.backends.current()
		img, err := backend.Capture(bounds)
		if err == nil {
			return img, nil
		}
		lastErr = err
		a.log.Error(fmt.Sprintf("capture failed with %s backend, switching", backend.Name()), err)
		a.backends.advance()
	}

	return nil, fmt.Errorf("%w: %v", ErrBackendsExhausted, lastErr)
}

// ToScreen maps a point from captured-image space (optionally within a
// normalized region) to absolute virtual-screen coordinates, so match
// centers can be handed to the input simulator
func (a *Analyzer) ToScreen(pt image.Point, region *Region) image.Point {
	monitor, err := a.activeMonitor()
	if err != nil {
		return pt
	}
	origin := monitor.Bounds.Min
	if region != nil {
		origin = origin.Add(region.ToPixels(monitor.Bounds.Dx(), monitor.Bounds.Dy()).Min)
	}
	return pt.Add(origin)
}

func (a *Analyzer) applyOptions(opts []Option) matchOptions {
	o := matchOptions{threshold: a.settings.MatchThreshold}
	for _, opt := range opts {
		opt(&o)
	}
	if o.threshold == 0 {
		o.threshold = a.settings.MatchThreshold
	}
	return o
}

// MatchTemplate matches one template against a provided or freshly captured
// frame. Fails fast on unreadable templates and templates larger than the
// searched image; everything else degrades to a not-found result. The match
// center is in the coordinate space of the searched image.
func (a *Analyzer) MatchTemplate(path string, opts ...Option) (MatchResult, error) {
	o := a.applyOptions(opts)

	template, err := LoadTemplate(path)
	if err != nil {
		return MatchResult{}, err
	}

	img := o.image
	cfg := &MatchConfig{Threshold: o.threshold}
	if img == nil {
		img, err = a.Capture(o.region)
		if err != nil {
			return MatchResult{}, err
		}
	} else if o.region != nil {
		if err := o.region.Validate(); err != nil {
			return MatchResult{}, err
		}
		rect := o.region.ToPixels(img.Bounds().Dx(), img.Bounds().Dy()).Add(img.Bounds().Min)
		cfg.SearchRegion = &rect
	}

	result, err := FindTemplate(img, template, cfg)
	if err != nil {
		return MatchResult{}, fmt.Errorf("%w: %s", err, path)
	}

	if result.Found {
		a.log.Debugf("template matched: %s (confidence %.2f)", path, result.Confidence)
	} else {
		a.log.Debugf("template not matched: %s (confidence %.2f)", path, result.Confidence)
	}
	return result, nil
}

// FindAll returns every match of the template at or above the threshold.
// Overlapping detections around one true match are not suppressed.
func (a *Analyzer) FindAll(path string, opts ...Option) ([]MatchResult, error) {
	o := a.applyOptions(opts)

	template, err := LoadTemplate(path)
	if err != nil {
		return nil, err
	}

	img := o.image
	cfg := &MatchConfig{Threshold: o.threshold}
	if img == nil {
		img, err = a.Capture(o.region)
		if err != nil {
			return nil, err
		}
	} else if o.region != nil {
		if err := o.region.Validate(); err != nil {
			return nil, err
		}
		rect := o.region.ToPixels(img.Bounds().Dx(), img.Bounds().Dy()).Add(img.Bounds().Min)
		cfg.SearchRegion = &rect
	}

	results, err := FindTemplateAll(img, template, cfg)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", err, path)
	}
	a.log.Debugf("found %d matches for template %s", len(results), path)
	return results, nil
}

// WaitFor polls for a template until it matches or the timeout elapses.
// Per-iteration failures are logged and treated as non-matches so a
// transient capture glitch never aborts the wait.
func (a *Analyzer) WaitFor(ctx context.Context, path string, timeout time.Duration, opts ...Option) MatchResult {
	a.log.Infof("waiting for template: %s", path)

	deadline := time.Now().Add(timeout)
	last := MatchResult{}
	for {
		if ctx.Err() != nil {
			return last
		}

		result, err := a.MatchTemplate(path, opts...)
		if err != nil {
			a.log.Warnf("error during template matching: %v", err)
		} else {
			if result.Found {
				return result
			}
			last = result
		}

		if time.Now().After(deadline) {
			a.log.Warnf("timeout waiting for template: %s", path)
			return last
		}
		if !sleepCtx(ctx, a.settings.PollInterval) {
			return last
		}
	}
}

// WaitForAny polls all candidate templates in order until any matches.
// Returns the index of the matched template, or -1 on timeout.
func (a *Analyzer) WaitForAny(ctx context.Context, paths []string, timeout time.Duration, opts ...Option) (int, MatchResult) {
	a.log.Infof("waiting for any of %d templates", len(paths))

	deadline := time.Now().Add(timeout)
	for {
		if ctx.Err() != nil {
			return -1, MatchResult{}
		}

		for i, path := range paths {
			result, err := a.MatchTemplate(path, opts...)
			if err != nil {
				a.log.Warnf("error matching template %s: %v", path, err)
				continue
			}
			if result.Found {
				return i, result
			}
		}

		if time.Now().After(deadline) {
			a.log.Warnf("timeout waiting for any template: %v", paths)
			return -1, MatchResult{}
		}
		if !sleepCtx(ctx, a.settings.PollInterval) {
			return -1, MatchResult{}
		}
	}
}

// WaitForDisappear polls until a template stops matching. A template that
// cannot be read counts as gone.
func (a *Analyzer) WaitForDisappear(ctx context.Context, path string, timeout time.Duration, opts ...Option) bool {
	a.log.Infof("waiting for template to disappear: %s", path)

	deadline := time.Now().Add(timeout)
	for {
		if ctx.Err() != nil {
			return false
		}

		result, err := a.MatchTemplate(path, opts...)
		if err != nil || !result.Found {
			return true
		}

		if time.Now().After(deadline) {
			a.log.Warnf("timeout waiting for template to disappear: %s", path)
			return false
		}
		if !sleepCtx(ctx, a.settings.PollInterval) {
			return false
		}
	}
}

// WaitForScreenChange captures a reference frame and polls until the live
// frame's similarity to it drops below simThreshold
func (a *Analyzer) WaitForScreenChange(ctx context.Context, timeout time.Duration, simThreshold float64, opts ...Option) bool {
	o := a.applyOptions(opts)
	a.log.Info("waiting for screen change")

	reference, err := a.Capture(o.region)
	if err != nil {
		a.log.Error("failed to capture reference frame", err)
		return false
	}

	deadline := time.Now().Add(timeout)
	for {
		if ctx.Err() != nil {
			return false
		}

		current, err := a.Capture(o.region)
		if err != nil {
			a.log.Warnf("capture failed during screen change wait: %v", err)
		} else {
			similarity := Similarity(current, reference)
			if similarity < simThreshold {
				a.log.Infof("screen changed (similarity %.2f)", similarity)
				return true
			}
		}

		if time.Now().After(deadline) {
			a.log.Warn("timeout waiting for screen change")
			return false
		}
		if !sleepCtx(ctx, a.settings.PollInterval) {
			return false
		}
	}
}

// SaveScreenshot captures the full screen and persists it as PNG, returning
// the written path. A timestamped name is generated when none is given.
func (a *Analyzer) SaveScreenshot(name string) (string, error) {
	if name == "" {
		name = fmt.Sprintf("screenshot_%s.png", time.Now().Format("20060102_150405"))
	} else if !strings.HasSuffix(name, ".png") {
		name += ".png"
	}

	img, err := a.Capture(nil)
	if err != nil {
		return "", err
	}

	a.mu.RLock()
	dir := a.screenshotDir
	a.mu.RUnlock()

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create screenshot directory: %w", err)
	}

	path := filepath.Join(dir, name)
	if err := writePNG(path, img); err != nil {
		return "", err
	}

	a.log.Infof("screenshot saved: %s", path)
	return path, nil
}

// CreateTemplate captures the screen, crops the normalized region and
// persists it under the template directory
func (a *Analyzer) CreateTemplate(region Region, name string) (string, error) {
	if err := region.Validate(); err != nil {
		return "", err
	}

	img, err := a.Capture(nil)
	if err != nil {
		return "", err
	}

	rect := region.ToPixels(img.Bounds().Dx(), img.Bounds().Dy()).Add(img.Bounds().Min)
	cropped := CropRegion(img, rect)

	if !strings.HasSuffix(name, ".png") {
		name += ".png"
	}
	path := filepath.Join(a.settings.TemplateDir, name)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", fmt.Errorf("failed to create template directory: %w", err)
	}
	if err := writePNG(path, cropped); err != nil {
		return "", err
	}

	a.log.Infof("template created: %s", path)
	return path, nil
}

func writePNG(path string, img image.Image) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer file.Close()

	if err := png.Encode(file, img); err != nil {
		return fmt.Errorf("failed to encode %s: %w", path, err)
	}
	return nil
}

// sleepCtx sleeps for d or until the context is cancelled. Returns false on
// cancellation.
func sleepCtx(ctx context.Context, d time.Duration) bool {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}
