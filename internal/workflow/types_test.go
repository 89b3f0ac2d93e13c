package workflow

import (
	"testing"
	"time"

	"gopkg.in/yaml.v3"
)

func TestStepUnmarshalYAML(t *testing.T) {
	var steps []Step
	src := `
- action: wait_for_template
  template: menu.png
  timeout: 60
  optional: true
  step_delay: 1.5
- action: click
  x: 100
  y: 200
  button: right
`
	if err := yaml.Unmarshal([]byte(src), &steps); err != nil {
		t.Fatalf("Failed to unmarshal steps: %v", err)
	}
	if len(steps) != 2 {
		t.Fatalf("Expected 2 steps, got %d", len(steps))
	}

	first := steps[0]
	if first.Action != "wait_for_template" {
		t.Errorf("Expected action wait_for_template, got %s", first.Action)
	}
	if !first.Optional {
		t.Error("Expected optional flag to be lifted")
	}
	if first.StepDelay != 1.5 {
		t.Errorf("Expected step_delay 1.5, got %v", first.StepDelay)
	}
	for _, reserved := range []string{"action", "optional", "step_delay"} {
		if _, ok := first.Params[reserved]; ok {
			t.Errorf("Reserved key %q must not appear in params", reserved)
		}
	}
	if tpl, _ := first.stringParam("template"); tpl != "menu.png" {
		t.Errorf("Expected template param menu.png, got %q", tpl)
	}

	if x, ok := steps[1].intParam("x"); !ok || x != 100 {
		t.Errorf("Expected x=100, got %d (ok=%v)", x, ok)
	}
}

func TestStepUnmarshalMissingAction(t *testing.T) {
	var steps []Step
	if err := yaml.Unmarshal([]byte("- template: menu.png\n"), &steps); err == nil {
		t.Error("Expected error for step without action")
	}
}

func TestTimeoutParam(t *testing.T) {
	s := step("wait_for_template", map[string]interface{}{"timeout": 2.5})
	if got := s.timeoutParam("timeout", time.Minute); got != 2500*time.Millisecond {
		t.Errorf("Expected 2.5s, got %v", got)
	}

	s = step("wait_for_template", nil)
	if got := s.timeoutParam("timeout", time.Minute); got != time.Minute {
		t.Errorf("Expected fallback, got %v", got)
	}

	// Integers are what YAML usually delivers
	s = step("wait_for_template", map[string]interface{}{"timeout": 30})
	if got := s.timeoutParam("timeout", time.Minute); got != 30*time.Second {
		t.Errorf("Expected 30s from integer param, got %v", got)
	}
}

func TestRegionParam(t *testing.T) {
	s := step("check_template", map[string]interface{}{
		"region": []interface{}{0.1, 0.2, 0.9, 0.8},
	})
	region, err := s.regionParam()
	if err != nil {
		t.Fatalf("regionParam failed: %v", err)
	}
	if region == nil || region.X1 != 0.1 || region.Y2 != 0.8 {
		t.Errorf("Region parsed wrong: %+v", region)
	}

	s = step("check_template", nil)
	region, err = s.regionParam()
	if err != nil || region != nil {
		t.Errorf("Absent region should be nil with no error, got %+v, %v", region, err)
	}

	s = step("check_template", map[string]interface{}{"region": []interface{}{0.1, 0.2}})
	if _, err = s.regionParam(); err == nil {
		t.Error("Expected error for 2-element region")
	}

	s = step("check_template", map[string]interface{}{"region": []interface{}{0.9, 0.2, 0.1, 0.8}})
	if _, err = s.regionParam(); err == nil {
		t.Error("Expected error for inverted region")
	}
}

func TestOffsetParam(t *testing.T) {
	s := step("click_template", map[string]interface{}{"offset": []interface{}{5, -10}})
	dx, dy := s.offsetParam()
	if dx != 5 || dy != -10 {
		t.Errorf("Expected offset (5, -10), got (%d, %d)", dx, dy)
	}

	s = step("click_template", nil)
	if dx, dy := s.offsetParam(); dx != 0 || dy != 0 {
		t.Errorf("Absent offset should be zero, got (%d, %d)", dx, dy)
	}
}

func TestNestedStepParam(t *testing.T) {
	s := step("retry_action", map[string]interface{}{
		"action_to_retry": map[string]interface{}{
			"action":   "press_key",
			"key":      "f5",
			"optional": true,
		},
	})

	nested, err := s.nestedStepParam("action_to_retry")
	if err != nil {
		t.Fatalf("nestedStepParam failed: %v", err)
	}
	if nested.Action != "press_key" || !nested.Optional {
		t.Errorf("Nested step parsed wrong: %+v", nested)
	}
	if key, _ := nested.stringParam("key"); key != "f5" {
		t.Errorf("Expected nested key f5, got %q", key)
	}

	s = step("retry_action", map[string]interface{}{"action_to_retry": "press_key"})
	if _, err := s.nestedStepParam("action_to_retry"); err == nil {
		t.Error("Expected error for non-mapping nested step")
	}
}

func TestRunContextMarkersAndResults(t *testing.T) {
	run := NewRunContext("Some Game")

	if run.ID == "" {
		t.Error("Run should get a generated ID")
	}

	run.Record(StepResult{Index: 1, Action: "wait", Success: true, Timestamp: time.Now()})
	run.Record(StepResult{Index: 2, Action: "click", Success: false, Timestamp: time.Now()})

	results := run.Results()
	if len(results) != 2 {
		t.Fatalf("Expected 2 results, got %d", len(results))
	}

	// Snapshots are copies: mutating one must not affect the run
	results[0].Success = false
	if run.Results()[0].Success != true {
		t.Error("Results snapshot leaked internal state")
	}

	start := time.Now()
	run.Mark(MarkerBenchmarkStart, start)
	if _, ok := run.BenchmarkDuration(); ok {
		t.Error("Duration needs both markers")
	}
	run.Mark(MarkerBenchmarkEnd, start.Add(90*time.Second))

	duration, ok := run.BenchmarkDuration()
	if !ok || duration != 90*time.Second {
		t.Errorf("Expected 90s benchmark duration, got %v (ok=%v)", duration, ok)
	}
}
