package workflow

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/katanabench/katana/internal/proc"
)

// Game is one automation target: how to launch it and the workflow to run
// against it
type Game struct {
	Name          string   `yaml:"name"`
	ProcessName   string   `yaml:"process_name"`
	ExePath       string   `yaml:"exe_path,omitempty"`
	Args          []string `yaml:"args,omitempty"`
	SteamAppID    int      `yaml:"steam_app_id,omitempty"`
	LaunchOptions []string `yaml:"launch_options,omitempty"`
	Workflow      []Step   `yaml:"workflow"`
}

// LoadGame reads a game definition from a YAML file
func LoadGame(path string) (*Game, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read game file %s: %w", path, err)
	}

	var game Game
	if err := yaml.Unmarshal(data, &game); err != nil {
		return nil, fmt.Errorf("failed to parse game file %s: %w", path, err)
	}
	if game.Name == "" {
		return nil, fmt.Errorf("game file %s missing 'name'", path)
	}
	return &game, nil
}

// LaunchSpec converts the game definition into a process launch request
func (g *Game) LaunchSpec() proc.LaunchSpec {
	return proc.LaunchSpec{
		Name:          g.Name,
		ProcessName:   g.ProcessName,
		ExePath:       g.ExePath,
		Args:          g.Args,
		SteamAppID:    g.SteamAppID,
		LaunchOptions: g.LaunchOptions,
	}
}
