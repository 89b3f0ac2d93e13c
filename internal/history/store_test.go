package history

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/katanabench/katana/internal/workflow"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "history.db"))
	if err != nil {
		t.Fatalf("Failed to open store: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func finishedRun(game string, success bool) *workflow.RunContext {
	run := workflow.NewRunContext(game)
	run.Record(workflow.StepResult{Index: 1, Action: "launch_game", Success: true, Timestamp: time.Now()})
	run.Record(workflow.StepResult{Index: 2, Action: "wait_for_template", Success: success, Timestamp: time.Now()})
	run.FinishedAt = time.Now()
	run.Success = success
	return run
}

func TestRecordAndListRuns(t *testing.T) {
	store := openTestStore(t)

	if err := store.RecordRun(finishedRun("Cyber Racer 2", true)); err != nil {
		t.Fatalf("RecordRun failed: %v", err)
	}
	if err := store.RecordRun(finishedRun("Space Sim", false)); err != nil {
		t.Fatalf("RecordRun failed: %v", err)
	}

	runs, err := store.ListRuns("", 10)
	if err != nil {
		t.Fatalf("ListRuns failed: %v", err)
	}
	if len(runs) != 2 {
		t.Fatalf("Expected 2 runs, got %d", len(runs))
	}

	filtered, err := store.ListRuns("Space Sim", 10)
	if err != nil {
		t.Fatalf("Filtered ListRuns failed: %v", err)
	}
	if len(filtered) != 1 || filtered[0].Game != "Space Sim" {
		t.Errorf("Expected only the Space Sim run, got %+v", filtered)
	}
	if filtered[0].Success {
		t.Error("Failed run recorded as success")
	}
}

func TestRecordRunPersistsSteps(t *testing.T) {
	store := openTestStore(t)
	run := finishedRun("Cyber Racer 2", true)

	if err := store.RecordRun(run); err != nil {
		t.Fatalf("RecordRun failed: %v", err)
	}

	steps, err := store.GetSteps(run.ID)
	if err != nil {
		t.Fatalf("GetSteps failed: %v", err)
	}
	if len(steps) != 2 {
		t.Fatalf("Expected 2 steps, got %d", len(steps))
	}
	if steps[0].Index != 1 || steps[0].Action != "launch_game" {
		t.Errorf("Step order wrong: %+v", steps[0])
	}
	if steps[1].Index != 2 || !steps[1].Success {
		t.Errorf("Step data wrong: %+v", steps[1])
	}
}

func TestRecordRunPersistsBenchmarkDuration(t *testing.T) {
	store := openTestStore(t)

	run := workflow.NewRunContext("Cyber Racer 2")
	start := time.Now()
	run.Mark(workflow.MarkerBenchmarkStart, start)
	run.Mark(workflow.MarkerBenchmarkEnd, start.Add(125*time.Second))
	run.FinishedAt = time.Now()
	run.Success = true

	if err := store.RecordRun(run); err != nil {
		t.Fatalf("RecordRun failed: %v", err)
	}

	runs, err := store.ListRuns("", 1)
	if err != nil {
		t.Fatalf("ListRuns failed: %v", err)
	}
	if len(runs) != 1 {
		t.Fatalf("Expected 1 run, got %d", len(runs))
	}
	if runs[0].BenchmarkSeconds == nil {
		t.Fatal("Expected a benchmark duration")
	}
	if got := *runs[0].BenchmarkSeconds; got < 124.9 || got > 125.1 {
		t.Errorf("Expected ~125s benchmark, got %v", got)
	}
}

func TestRunWithoutMarkersHasNoBenchmark(t *testing.T) {
	store := openTestStore(t)

	if err := store.RecordRun(finishedRun("Space Sim", true)); err != nil {
		t.Fatalf("RecordRun failed: %v", err)
	}

	runs, err := store.ListRuns("", 1)
	if err != nil {
		t.Fatalf("ListRuns failed: %v", err)
	}
	if runs[0].BenchmarkSeconds != nil {
		t.Errorf("Expected no benchmark duration, got %v", *runs[0].BenchmarkSeconds)
	}
}

func TestOpenCreatesParentDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "deep", "history.db")
	store, err := Open(path)
	if err != nil {
		t.Fatalf("Open should create missing directories: %v", err)
	}
	store.Close()
}
