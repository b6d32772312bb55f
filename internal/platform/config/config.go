package config

import (
	"fmt"
	"path/filepath"
)

// ExportPrefix is the filename prefix for exported collections.
const ExportPrefix = "mdash-metrics"

type Config struct {
	WorkspacePath string
	LedgerPath    string
	DBPath        string
	ReportsPath   string
	PluginsPath   string
}

func New(workspacePath string) (Config, error) {
	if workspacePath == "" {
		return Config{}, fmt.Errorf("workspace path is required")
	}
	return Config{
		WorkspacePath: workspacePath,
		LedgerPath:    filepath.Join(workspacePath, "metrics", "entries.json"),
		DBPath:        filepath.Join(workspacePath, ".mdash", "mdash.db"),
		ReportsPath:   filepath.Join(workspacePath, "reports"),
		PluginsPath:   filepath.Join(workspacePath, "plugins"),
	}, nil
}
