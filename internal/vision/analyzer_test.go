package vision

import (
	"context"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/katanabench/katana/internal/config"
	"github.com/katanabench/katana/internal/logging"
)

// fakeBackend serves a scripted sequence of frames; after the sequence is
// exhausted it keeps serving the last frame. Frames are cropped to the
// requested bounds like a real grabber would.
type fakeBackend struct {
	mu     sync.Mutex
	name   string
	frames []*image.RGBA
	err    error
	calls  int
}

func (f *fakeBackend) Name() string { return f.name }

func (f *fakeBackend) Capture(bounds image.Rectangle) (*image.RGBA, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++

	if f.err != nil {
		return nil, f.err
	}
	if len(f.frames) == 0 {
		return nil, errors.New("no frames scripted")
	}

	idx := f.calls - 1
	if idx >= len(f.frames) {
		idx = len(f.frames) - 1
	}
	frame := f.frames[idx]

	crop := bounds.Intersect(frame.Bounds())
	if crop.Empty() {
		return nil, fmt.Errorf("bounds %v outside frame %v", bounds, frame.Bounds())
	}
	return CropRegion(frame, crop), nil
}

func (f *fakeBackend) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func testSettings(t *testing.T) *config.Settings {
	t.Helper()
	settings := config.Default()
	settings.PollInterval = 5 * time.Millisecond
	settings.ScreenshotDir = filepath.Join(t.TempDir(), "screenshots")
	settings.TemplateDir = filepath.Join(t.TempDir(), "templates")
	return settings
}

func testLogger() *logging.Logger {
	// Keep test output quiet; failures surface through assertions
	return logging.NewLogger("test").SetMinLevel(logging.LevelError)
}

func newTestAnalyzer(t *testing.T, settings *config.Settings, backends ...Backend) *Analyzer {
	t.Helper()
	a := NewAnalyzer(settings, testLogger(), backends...)
	a.monitorsFn = func() []Monitor {
		return []Monitor{{Index: 0, Bounds: image.Rect(0, 0, 64, 48)}}
	}
	a.windowsFn = func() ([]windowInfo, error) {
		return nil, nil
	}
	return a
}

// writeTemplatePNG persists an image so LoadTemplate can read it back
func writeTemplatePNG(t *testing.T, dir, name string, img image.Image) string {
	t.Helper()
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("Failed to create template dir: %v", err)
	}
	path := filepath.Join(dir, name)
	file, err := os.Create(path)
	if err != nil {
		t.Fatalf("Failed to create template file: %v", err)
	}
	defer file.Close()
	if err := png.Encode(file, img); err != nil {
		t.Fatalf("Failed to encode template: %v", err)
	}
	return path
}

func blankFrame() *image.RGBA {
	return flatImage(64, 48, color.RGBA{R: 20, G: 20, B: 20, A: 255})
}

// frameWithPattern returns a screen frame with the pattern stamped at (x, y)
func frameWithPattern(pattern *image.RGBA, x, y int) *image.RGBA {
	frame := textureImage(64, 48, 1)
	stamp(frame, pattern, x, y)
	return frame
}

func TestCaptureBackendFallback(t *testing.T) {
	broken := &fakeBackend{name: "broken", err: errors.New("device lost")}
	working := &fakeBackend{name: "working", frames: []*image.RGBA{blankFrame()}}

	settings := testSettings(t)
	a := newTestAnalyzer(t, settings, broken, working)

	img, err := a.Capture(nil)
	if err != nil {
		t.Fatalf("Capture should succeed via fallback backend: %v", err)
	}
	if img.Bounds().Dx() != 64 || img.Bounds().Dy() != 48 {
		t.Errorf("Expected 64x48 capture, got %v", img.Bounds())
	}

	// The switch is sticky: the broken backend is not retried
	if _, err := a.Capture(nil); err != nil {
		t.Fatalf("Second capture failed: %v", err)
	}
	if broken.callCount() != 1 {
		t.Errorf("Expected broken backend to be tried once, got %d calls", broken.callCount())
	}
}

func TestCaptureAllBackendsFail(t *testing.T) {
	first := &fakeBackend{name: "first", err: errors.New("boom")}
	second := &fakeBackend{name: "second", err: errors.New("bang")}

	a := newTestAnalyzer(t, testSettings(t), first, second)

	_, err := a.Capture(nil)
	if !errors.Is(err, ErrBackendsExhausted) {
		t.Errorf("Expected ErrBackendsExhausted, got %v", err)
	}
	if first.callCount() != 1 || second.callCount() != 1 {
		t.Errorf("Each backend should be tried exactly once, got %d and %d",
			first.callCount(), second.callCount())
	}
}

func TestCaptureRegion(t *testing.T) {
	backend := &fakeBackend{name: "fake", frames: []*image.RGBA{textureImage(64, 48, 1)}}
	a := newTestAnalyzer(t, testSettings(t), backend)

	region := NewRegion(0.25, 0.25, 0.75, 0.75)
	img, err := a.Capture(&region)
	if err != nil {
		t.Fatalf("Capture failed: %v", err)
	}
	if img.Bounds().Dx() != 32 || img.Bounds().Dy() != 24 {
		t.Errorf("Expected 32x24 region capture, got %v", img.Bounds())
	}
}

func TestCaptureInvalidRegion(t *testing.T) {
	backend := &fakeBackend{name: "fake", frames: []*image.RGBA{blankFrame()}}
	a := newTestAnalyzer(t, testSettings(t), backend)

	region := NewRegion(0.9, 0.1, 0.2, 0.8)
	if _, err := a.Capture(&region); !errors.Is(err, ErrInvalidRegion) {
		t.Errorf("Expected ErrInvalidRegion, got %v", err)
	}
}

func TestMatchTemplateMissingFile(t *testing.T) {
	backend := &fakeBackend{name: "fake", frames: []*image.RGBA{blankFrame()}}
	a := newTestAnalyzer(t, testSettings(t), backend)

	_, err := a.MatchTemplate(filepath.Join(t.TempDir(), "nope.png"))
	if !errors.Is(err, ErrTemplateNotFound) {
		t.Errorf("Expected ErrTemplateNotFound, got %v", err)
	}
	if backend.callCount() != 0 {
		t.Error("Template errors should fail fast, before any capture")
	}
}

func TestMatchTemplateOnScreen(t *testing.T) {
	pattern := textureImage(8, 8, 7)
	settings := testSettings(t)
	path := writeTemplatePNG(t, settings.TemplateDir, "button.png", pattern)

	backend := &fakeBackend{name: "fake", frames: []*image.RGBA{frameWithPattern(pattern, 24, 16)}}
	a := newTestAnalyzer(t, settings, backend)

	result, err := a.MatchTemplate(path)
	if err != nil {
		t.Fatalf("MatchTemplate failed: %v", err)
	}
	if !result.Found {
		t.Fatalf("Expected match, confidence %.3f", result.Confidence)
	}
	want := image.Point{X: 28, Y: 20}
	if result.Center != want {
		t.Errorf("Expected center %v, got %v", want, result.Center)
	}
}

func TestMatchTemplateWithProvidedImage(t *testing.T) {
	pattern := textureImage(8, 8, 7)
	settings := testSettings(t)
	path := writeTemplatePNG(t, settings.TemplateDir, "button.png", pattern)

	// Backend always fails: WithImage must bypass capture entirely
	backend := &fakeBackend{name: "fake", err: errors.New("no screen")}
	a := newTestAnalyzer(t, settings, backend)

	result, err := a.MatchTemplate(path, WithImage(frameWithPattern(pattern, 10, 10)))
	if err != nil {
		t.Fatalf("MatchTemplate with provided image failed: %v", err)
	}
	if !result.Found {
		t.Errorf("Expected match in provided image, confidence %.3f", result.Confidence)
	}
	if backend.callCount() != 0 {
		t.Error("Provided image should not trigger a capture")
	}
}

func TestWaitForAppears(t *testing.T) {
	pattern := textureImage(8, 8, 7)
	settings := testSettings(t)
	path := writeTemplatePNG(t, settings.TemplateDir, "loading.png", pattern)

	backend := &fakeBackend{name: "fake", frames: []*image.RGBA{
		blankFrame(),
		blankFrame(),
		frameWithPattern(pattern, 30, 20),
	}}
	a := newTestAnalyzer(t, settings, backend)

	result := a.WaitFor(context.Background(), path, time.Second)
	if !result.Found {
		t.Fatal("Expected template to be found after two blank frames")
	}
	if backend.callCount() < 3 {
		t.Errorf("Expected at least 3 polls, got %d", backend.callCount())
	}
}

func TestWaitForTimeout(t *testing.T) {
	pattern := textureImage(8, 8, 7)
	settings := testSettings(t)
	path := writeTemplatePNG(t, settings.TemplateDir, "never.png", pattern)

	backend := &fakeBackend{name: "fake", frames: []*image.RGBA{blankFrame()}}
	a := newTestAnalyzer(t, settings, backend)

	start := time.Now()
	result := a.WaitFor(context.Background(), path, 30*time.Millisecond)
	if result.Found {
		t.Error("Template is never on screen, expected timeout")
	}
	if elapsed := time.Since(start); elapsed > 500*time.Millisecond {
		t.Errorf("Timeout took too long: %v", elapsed)
	}
}

func TestWaitForCancellation(t *testing.T) {
	pattern := textureImage(8, 8, 7)
	settings := testSettings(t)
	settings.PollInterval = 50 * time.Millisecond
	path := writeTemplatePNG(t, settings.TemplateDir, "never.png", pattern)

	backend := &fakeBackend{name: "fake", frames: []*image.RGBA{blankFrame()}}
	a := newTestAnalyzer(t, settings, backend)

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(20 * time.Millisecond)
		cancel()
	}()

	start := time.Now()
	result := a.WaitFor(ctx, path, 10*time.Second)
	elapsed := time.Since(start)

	if result.Found {
		t.Error("Cancelled wait should not report a match")
	}
	// Cancellation must cut the wait short, well before the 10s timeout
	if elapsed > time.Second {
		t.Errorf("Cancellation took too long: %v", elapsed)
	}
}

func TestWaitForAny(t *testing.T) {
	patternA := textureImage(8, 8, 40)
	patternB := textureImage(8, 8, 90)
	settings := testSettings(t)
	pathA := writeTemplatePNG(t, settings.TemplateDir, "a.png", patternA)
	pathB := writeTemplatePNG(t, settings.TemplateDir, "b.png", patternB)

	backend := &fakeBackend{name: "fake", frames: []*image.RGBA{frameWithPattern(patternB, 20, 12)}}
	a := newTestAnalyzer(t, settings, backend)

	idx, result := a.WaitForAny(context.Background(), []string{pathA, pathB}, time.Second)
	if idx != 1 {
		t.Fatalf("Expected template index 1 to match, got %d", idx)
	}
	if !result.Found {
		t.Error("Expected a found result for the matched template")
	}
}

func TestWaitForAnyTimeout(t *testing.T) {
	pattern := textureImage(8, 8, 40)
	settings := testSettings(t)
	path := writeTemplatePNG(t, settings.TemplateDir, "a.png", pattern)

	backend := &fakeBackend{name: "fake", frames: []*image.RGBA{blankFrame()}}
	a := newTestAnalyzer(t, settings, backend)

	idx, _ := a.WaitForAny(context.Background(), []string{path}, 30*time.Millisecond)
	if idx != -1 {
		t.Errorf("Expected -1 on timeout, got %d", idx)
	}
}

func TestWaitForDisappear(t *testing.T) {
	pattern := textureImage(8, 8, 7)
	settings := testSettings(t)
	path := writeTemplatePNG(t, settings.TemplateDir, "spinner.png", pattern)

	backend := &fakeBackend{name: "fake", frames: []*image.RGBA{
		frameWithPattern(pattern, 30, 20),
		frameWithPattern(pattern, 30, 20),
		blankFrame(),
	}}
	a := newTestAnalyzer(t, settings, backend)

	if !a.WaitForDisappear(context.Background(), path, time.Second) {
		t.Error("Expected template to disappear on the third frame")
	}
}

func TestWaitForScreenChange(t *testing.T) {
	settings := testSettings(t)
	backend := &fakeBackend{name: "fake", frames: []*image.RGBA{
		textureImage(64, 48, 1), // reference
		textureImage(64, 48, 1), // unchanged
		flatImage(64, 48, color.RGBA{R: 200, G: 200, B: 200, A: 255}),
	}}
	a := newTestAnalyzer(t, settings, backend)

	if !a.WaitForScreenChange(context.Background(), time.Second, 0.95) {
		t.Error("Expected screen change to be detected")
	}
}

func TestWaitForScreenChangeStatic(t *testing.T) {
	settings := testSettings(t)
	backend := &fakeBackend{name: "fake", frames: []*image.RGBA{textureImage(64, 48, 1)}}
	a := newTestAnalyzer(t, settings, backend)

	if a.WaitForScreenChange(context.Background(), 30*time.Millisecond, 0.95) {
		t.Error("Static screen should time out, not report a change")
	}
}

func TestSaveScreenshot(t *testing.T) {
	settings := testSettings(t)
	backend := &fakeBackend{name: "fake", frames: []*image.RGBA{textureImage(64, 48, 1)}}
	a := newTestAnalyzer(t, settings, backend)

	path, err := a.SaveScreenshot("before_benchmark")
	if err != nil {
		t.Fatalf("SaveScreenshot failed: %v", err)
	}
	if filepath.Ext(path) != ".png" {
		t.Errorf("Expected .png suffix, got %s", path)
	}

	file, err := os.Open(path)
	if err != nil {
		t.Fatalf("Screenshot file not written: %v", err)
	}
	defer file.Close()
	img, err := png.Decode(file)
	if err != nil {
		t.Fatalf("Screenshot is not valid PNG: %v", err)
	}
	if img.Bounds().Dx() != 64 || img.Bounds().Dy() != 48 {
		t.Errorf("Expected 64x48 screenshot, got %v", img.Bounds())
	}
}

func TestCreateTemplate(t *testing.T) {
	settings := testSettings(t)
	backend := &fakeBackend{name: "fake", frames: []*image.RGBA{textureImage(64, 48, 1)}}
	a := newTestAnalyzer(t, settings, backend)

	path, err := a.CreateTemplate(NewRegion(0.25, 0.25, 0.75, 0.75), "play_button")
	if err != nil {
		t.Fatalf("CreateTemplate failed: %v", err)
	}

	template, err := LoadTemplate(path)
	if err != nil {
		t.Fatalf("Created template cannot be loaded back: %v", err)
	}
	if template.Bounds().Dx() != 32 || template.Bounds().Dy() != 24 {
		t.Errorf("Expected 32x24 template, got %v", template.Bounds())
	}
}

func TestToScreen(t *testing.T) {
	backend := &fakeBackend{name: "fake", frames: []*image.RGBA{blankFrame()}}
	a := newTestAnalyzer(t, testSettings(t), backend)
	// Simulate a secondary monitor left of nothing: offset origin
	a.monitorsFn = func() []Monitor {
		return []Monitor{{Index: 0, Bounds: image.Rect(1920, 100, 1984, 148)}}
	}

	got := a.ToScreen(image.Point{X: 10, Y: 5}, nil)
	want := image.Point{X: 1930, Y: 105}
	if got != want {
		t.Errorf("Expected %v, got %v", want, got)
	}

	region := NewRegion(0.5, 0.5, 1, 1)
	got = a.ToScreen(image.Point{X: 10, Y: 5}, &region)
	want = image.Point{X: 1962, Y: 129}
	if got != want {
		t.Errorf("Expected %v with region offset, got %v", want, got)
	}
}

func TestActiveMonitorFollowsGameWindow(t *testing.T) {
	backend := &fakeBackend{name: "fake", frames: []*image.RGBA{blankFrame()}}
	a := newTestAnalyzer(t, testSettings(t), backend)
	a.monitorsFn = func() []Monitor {
		return []Monitor{
			{Index: 0, Bounds: image.Rect(0, 0, 1920, 1080)},
			{Index: 1, Bounds: image.Rect(1920, 0, 3840, 1080)},
		}
	}
	a.windowsFn = func() ([]windowInfo, error) {
		return []windowInfo{
			{Title: "Editor", Bounds: image.Rect(100, 100, 800, 700)},
			{Title: "Katana Quest", Bounds: image.Rect(2000, 100, 3000, 900)},
		}, nil
	}
	a.SetGame("katana quest")

	monitor, err := a.activeMonitor()
	if err != nil {
		t.Fatalf("activeMonitor failed: %v", err)
	}
	if monitor.Index != 1 {
		t.Errorf("Expected the game window's monitor (1), got %d", monitor.Index)
	}
}

func TestActiveMonitorFallsBackToConfigured(t *testing.T) {
	backend := &fakeBackend{name: "fake", frames: []*image.RGBA{blankFrame()}}
	settings := testSettings(t)
	settings.MonitorIndex = 1
	a := newTestAnalyzer(t, settings, backend)
	a.monitorsFn = func() []Monitor {
		return []Monitor{
			{Index: 0, Bounds: image.Rect(0, 0, 1920, 1080)},
			{Index: 1, Bounds: image.Rect(1920, 0, 3840, 1080)},
		}
	}

	monitor, err := a.activeMonitor()
	if err != nil {
		t.Fatalf("activeMonitor failed: %v", err)
	}
	if monitor.Index != 1 {
		t.Errorf("Expected configured monitor 1, got %d", monitor.Index)
	}
}

func TestBackendSetAdvance(t *testing.T) {
	a := &fakeBackend{name: "a"}
	b := &fakeBackend{name: "b"}
	set := newBackendSet(a, b)

	if set.current().Name() != "a" {
		t.Errorf("Expected first backend selected, got %s", set.current().Name())
	}
	if set.advance().Name() != "b" {
		t.Errorf("Expected advance to second backend, got %s", set.current().Name())
	}
	// Wraps around
	if set.advance().Name() != "a" {
		t.Errorf("Expected wrap back to first backend, got %s", set.current().Name())
	}
}
