package workflow

import (
	"os"
	"path/filepath"
	"strings"
)

// ResolveTemplatePath resolves a template name against the template
// directory tree: a game-specific subdirectory wins over the shared
// directory. The returned path is not guaranteed to exist; the perception
// layer discovers that at match time, since templates may change between
// runs.
func ResolveTemplatePath(templateDir, gameName, template string) string {
	if filepath.IsAbs(template) {
		return template
	}
	if strings.HasPrefix(filepath.ToSlash(template), filepath.ToSlash(templateDir)+"/") {
		return template
	}

	gamePath := filepath.Join(templateDir, gameSlug(gameName), template)
	if _, err := os.Stat(gamePath); err == nil {
		return gamePath
	}

	return filepath.Join(templateDir, template)
}

// gameSlug converts a display name into its template directory name
func gameSlug(name string) string {
	return strings.ReplaceAll(strings.ToLower(name), " ", "_")
}
