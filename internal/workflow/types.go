package workflow

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"github.com/katanabench/katana/internal/vision"
)

// Step is one declarative unit of a workflow: an action tag plus named
// parameters. Steps are immutable once dispatched; the engine only reads
// them.
type Step struct {
	Action    string
	Optional  bool
	StepDelay float64 // seconds to sleep after the step completes
	Params    map[string]interface{}
}

// UnmarshalYAML decodes a step from its flat YAML map: the action tag and
// the two engine-level flags are lifted out, everything else becomes a
// named parameter.
func (s *Step) UnmarshalYAML(value *yaml.Node) error {
	var raw map[string]interface{}
	if err := value.Decode(&raw); err != nil {
		return err
	}
	return s.fromMap(raw)
}

func (s *Step) fromMap(raw map[string]interface{}) error {
	action, ok := raw["action"].(string)
	if !ok || action == "" {
		return fmt.Errorf("step missing 'action' field")
	}
	s.Action = action

	if optional, ok := raw["optional"].(bool); ok {
		s.Optional = optional
	}
	if delay, ok := toFloat(raw["step_delay"]); ok {
		s.StepDelay = delay
	}

	s.Params = make(map[string]interface{}, len(raw))
	for k, v := range raw {
		switch k {
		case "action", "optional", "step_delay":
		default:
			s.Params[k] = v
		}
	}
	return nil
}

// stringParam returns a named string parameter
func (s Step) stringParam(name string) (string, bool) {
	v, ok := s.Params[name].(string)
	return v, ok && v != ""
}

// floatParam returns a named numeric parameter
func (s Step) floatParam(name string) (float64, bool) {
	return toFloat(s.Params[name])
}

// intParam returns a named integer parameter
func (s Step) intParam(name string) (int, bool) {
	f, ok := toFloat(s.Params[name])
	return int(f), ok
}

// boolParam returns a named boolean parameter
func (s Step) boolParam(name string) bool {
	v, _ := s.Params[name].(bool)
	return v
}

// timeoutParam returns a named duration-in-seconds parameter
func (s Step) timeoutParam(name string, fallback time.Duration) time.Duration {
	if secs, ok := s.floatParam(name); ok && secs > 0 {
		return time.Duration(secs * float64(time.Second))
	}
	return fallback
}

// stringSliceParam returns a named list-of-strings parameter
func (s Step) stringSliceParam(name string) []string {
	raw, ok := s.Params[name].([]interface{})
	if !ok {
		return nil
	}
	out := make([]string, 0, len(raw))
	for _, v := range raw {
		if str, ok := v.(string); ok {
			out = append(out, str)
		}
	}
	return out
}

// regionParam parses the optional "region" parameter: a normalized
// [x1, y1, x2, y2] list
func (s Step) regionParam() (*vision.Region, error) {
	raw, ok := s.Params["region"].([]interface{})
	if !ok {
		return nil, nil
	}
	if len(raw) != 4 {
		return nil, fmt.Errorf("region must have 4 coordinates, got %d", len(raw))
	}

	coords := make([]float64, 4)
	for i, v := range raw {
		f, ok := toFloat(v)
		if !ok {
			return nil, fmt.Errorf("region coordinate %d is not a number", i)
		}
		coords[i] = f
	}

	region := vision.NewRegion(coords[0], coords[1], coords[2], coords[3])
	if err := region.Validate(); err != nil {
		return nil, err
	}
	return &region, nil
}

// offsetParam parses the optional "offset" parameter: a [dx, dy] pixel pair
func (s Step) offsetParam() (int, int) {
	raw, ok := s.Params["offset"].([]interface{})
	if !ok || len(raw) != 2 {
		return 0, 0
	}
	dx, _ := toFloat(raw[0])
	dy, _ := toFloat(raw[1])
	return int(dx), int(dy)
}

// nestedStepParam parses a parameter holding a whole nested step
func (s Step) nestedStepParam(name string) (*Step, error) {
	raw, ok := s.Params[name].(map[string]interface{})
	if !ok {
		return nil, fmt.Errorf("'%s' must be a step mapping", name)
	}
	var nested Step
	if err := nested.fromMap(raw); err != nil {
		return nil, fmt.Errorf("invalid nested step in '%s': %w", name, err)
	}
	return &nested, nil
}

func toFloat(v interface{}) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case float64:
		return n, true
	case float32:
		return float64(n), true
	default:
		return 0, false
	}
}

// StepResult records the outcome of one executed step
type StepResult struct {
	Index     int // 1-based step number
	Action    string
	Success   bool
	Timestamp time.Time
}

// Reserved timing marker keys recognized at end of run
const (
	MarkerBenchmarkStart = "BENCHMARK_START_TIME"
	MarkerBenchmarkEnd   = "BENCHMARK_END_TIME"
)

// RunContext holds the transient state of one workflow execution. It is
// owned by the run's worker goroutine; other goroutines only read
// snapshots.
type RunContext struct {
	ID         string
	Game       string
	StartedAt  time.Time
	FinishedAt time.Time
	Success    bool
	Cancelled  bool

	mu      sync.Mutex
	results []StepResult
	markers map[string]time.Time
}

// NewRunContext starts a fresh run record for a game
func NewRunContext(game string) *RunContext {
	return &RunContext{
		ID:        uuid.NewString(),
		Game:      game,
		StartedAt: time.Now(),
		markers:   make(map[string]time.Time),
	}
}

// Record appends one step outcome to the run log
func (rc *RunContext) Record(result StepResult) {
	rc.mu.Lock()
	defer rc.mu.Unlock()
	rc.results = append(rc.results, result)
}

// Mark records a named timing marker
func (rc *RunContext) Mark(name string, at time.Time) {
	rc.mu.Lock()
	defer rc.mu.Unlock()
	rc.markers[name] = at
}

// Results returns a snapshot of the per-step result log
func (rc *RunContext) Results() []StepResult {
	rc.mu.Lock()
	defer rc.mu.Unlock()
	out := make([]StepResult, len(rc.results))
	copy(out, rc.results)
	return out
}

// Markers returns a snapshot of the recorded timing markers
func (rc *RunContext) Markers() map[string]time.Time {
	rc.mu.Lock()
	defer rc.mu.Unlock()
	out := make(map[string]time.Time, len(rc.markers))
	for k, v := range rc.markers {
		out[k] = v
	}
	return out
}

// BenchmarkDuration computes the duration between the reserved benchmark
// markers, if both were recorded
func (rc *RunContext) BenchmarkDuration() (time.Duration, bool) {
	rc.mu.Lock()
	defer rc.mu.Unlock()
	start, okStart := rc.markers[MarkerBenchmarkStart]
	end, okEnd := rc.markers[MarkerBenchmarkEnd]
	if !okStart || !okEnd {
		return 0, false
	}
	return end.Sub(start), true
}
