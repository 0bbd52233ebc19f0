// Package sqlitepath locates the SQLite database file when the configuration
// does not name one.
package sqlitepath

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/papercomputeco/tagstash/pkg/config"
	"github.com/papercomputeco/tagstash/pkg/dotdir"
)

// ResolveSQLitePath returns configured when set. Otherwise it returns the
// first existing candidate database, falling back to tagstash.db inside the
// resolved .tagstash/ directory, which is created if needed.
func ResolveSQLitePath(configured, configDir string) (string, error) {
	if configured = strings.TrimSpace(configured); configured != "" {
		return configured, nil
	}

	if configDir == "" {
		for _, candidate := range sqliteCandidates() {
			if _, err := os.Stat(candidate); err == nil {
				return candidate, nil
			}
		}
	}

	dir, err := dotdir.NewManager().Ensure(configDir)
	if err != nil {
		return "", fmt.Errorf("resolving SQLite path: %w", err)
	}
	return filepath.Join(dir, config.SQLiteFile), nil
}

func sqliteCandidates() []string {
	candidates := []string{
		filepath.Join(".tagstash", config.SQLiteFile),
	}

	if xdgHome := strings.TrimSpace(os.Getenv("XDG_DATA_HOME")); xdgHome != "" {
		candidates = append(candidates, filepath.Join(xdgHome, "tagstash", config.SQLiteFile))
	}

	home, err := os.UserHomeDir()
	if err == nil {
		candidates = append(candidates, filepath.Join(home, ".tagstash", config.SQLiteFile))
	}

	return candidates
}
