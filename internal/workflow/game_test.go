package workflow

import (
	"os"
	"path/filepath"
	"testing"
)

func writeGameFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "game.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("Failed to write game file: %v", err)
	}
	return path
}

func TestLoadGame(t *testing.T) {
	path := writeGameFile(t, `
name: Cyber Racer 2
process_name: cyberracer.exe
steam_app_id: 271590
launch_options: ["-benchmark"]
workflow:
  - action: launch_game
  - action: wait_for_game
    timeout: 120
  - action: log_message
    message: BENCHMARK_START_TIME
`)

	game, err := LoadGame(path)
	if err != nil {
		t.Fatalf("LoadGame failed: %v", err)
	}

	if game.Name != "Cyber Racer 2" {
		t.Errorf("Expected name Cyber Racer 2, got %q", game.Name)
	}
	if game.SteamAppID != 271590 {
		t.Errorf("Expected steam app id 271590, got %d", game.SteamAppID)
	}
	if len(game.Workflow) != 3 {
		t.Fatalf("Expected 3 workflow steps, got %d", len(game.Workflow))
	}
	if game.Workflow[1].Action != "wait_for_game" {
		t.Errorf("Step order not preserved: %v", game.Workflow[1].Action)
	}

	spec := game.LaunchSpec()
	if spec.SteamAppID != 271590 || spec.ProcessName != "cyberracer.exe" {
		t.Errorf("LaunchSpec mismatch: %+v", spec)
	}
	if len(spec.LaunchOptions) != 1 || spec.LaunchOptions[0] != "-benchmark" {
		t.Errorf("Launch options not carried over: %v", spec.LaunchOptions)
	}
}

func TestLoadGameMissingName(t *testing.T) {
	path := writeGameFile(t, "process_name: x.exe\nworkflow: []\n")
	if _, err := LoadGame(path); err == nil {
		t.Error("Expected error for game without a name")
	}
}

func TestLoadGameBadYAML(t *testing.T) {
	path := writeGameFile(t, "name: [unclosed\n")
	if _, err := LoadGame(path); err == nil {
		t.Error("Expected parse error")
	}
}

func TestLoadGameMissingFile(t *testing.T) {
	if _, err := LoadGame(filepath.Join(t.TempDir(), "none.yaml")); err == nil {
		t.Error("Expected error for missing file")
	}
}
