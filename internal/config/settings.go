package config

import (
	"fmt"
	"time"

	"gopkg.in/ini.v1"
)

// Settings holds the flat key/value configuration shared by all components.
// Values are read once at startup and treated as read-only afterwards.
type Settings struct {
	// Template matching
	MatchThreshold         float64 // minimum NCC similarity for a match
	ScreenChangeSimilarity float64 // similarity below which the screen counts as changed

	// Timing
	DefaultTimeout time.Duration // default wait timeout for perception steps
	PollInterval   time.Duration // polling interval for wait loops
	InputDelay     time.Duration // default delay after key/text injection
	MoveDuration   time.Duration // default mouse travel time for clicks
	PreClickDelay  time.Duration
	PostClickDelay time.Duration

	// Capture
	MonitorIndex int // fallback monitor when window detection fails

	// Paths
	ScreenshotDir string
	TemplateDir   string
	HistoryDB     string
	SteamPath     string
}

// Default returns settings matching the documented defaults
func Default() *Settings {
	return &Settings{
		MatchThreshold:         0.8,
		ScreenChangeSimilarity: 0.95,
		DefaultTimeout:         300 * time.Second,
		PollInterval:           500 * time.Millisecond,
		InputDelay:             500 * time.Millisecond,
		MoveDuration:           500 * time.Millisecond,
		PreClickDelay:          300 * time.Millisecond,
		PostClickDelay:         500 * time.Millisecond,
		MonitorIndex:           0,
		ScreenshotDir:          "output/screenshots",
		TemplateDir:            "templates/screens",
		HistoryDB:              "output/history.db",
	}
}

// LoadFromINI loads settings from an INI file, falling back to defaults for
// any key the file does not provide
func LoadFromINI(path string) (*Settings, error) {
	cfg, err := ini.Load(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load config file: %w", err)
	}

	section := cfg.Section("Settings")
	s := Default()

	s.MatchThreshold = section.Key("template_matching_threshold").MustFloat64(s.MatchThreshold)
	s.ScreenChangeSimilarity = section.Key("screen_change_similarity").MustFloat64(s.ScreenChangeSimilarity)

	s.DefaultTimeout = time.Duration(section.Key("default_timeout_seconds").MustInt(300)) * time.Second
	s.PollInterval = time.Duration(section.Key("poll_interval_ms").MustInt(500)) * time.Millisecond
	s.InputDelay = time.Duration(section.Key("input_delay_ms").MustInt(500)) * time.Millisecond
	s.MoveDuration = time.Duration(section.Key("move_duration_ms").MustInt(500)) * time.Millisecond
	s.PreClickDelay = time.Duration(section.Key("pre_click_delay_ms").MustInt(300)) * time.Millisecond
	s.PostClickDelay = time.Duration(section.Key("post_click_delay_ms").MustInt(500)) * time.Millisecond

	s.MonitorIndex = section.Key("monitor_index").MustInt(s.MonitorIndex)

	s.ScreenshotDir = section.Key("screenshot_dir").MustString(s.ScreenshotDir)
	s.TemplateDir = section.Key("template_dir").MustString(s.TemplateDir)
	s.HistoryDB = section.Key("history_db").MustString(s.HistoryDB)
	s.SteamPath = section.Key("steam_path").MustString(s.SteamPath)

	if s.MatchThreshold <= 0 || s.MatchThreshold > 1 {
		return nil, fmt.Errorf("template_matching_threshold must be in (0, 1], got %v", s.MatchThreshold)
	}
	if s.PollInterval <= 0 {
		return nil, fmt.Errorf("poll_interval_ms must be positive")
	}

	return s, nil
}
