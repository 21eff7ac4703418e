// Package config handles configuration loading, saving, and path management.
package config

import (
	"os"
	"path/filepath"

	"github.com/watchfire-io/runlog/internal/models"
)

const (
	// GlobalDirName is the name of the global runlog directory.
	GlobalDirName = ".runlog"
)

// File names
const (
	SettingsFileName = "settings.yaml"
	ConfigFileName   = "config.json"
	LogsFileName     = "logs.json"
	PlotFileName     = "logs.png"
)

// GlobalDir returns the path to the global runlog directory (~/.runlog/).
func GlobalDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, GlobalDirName), nil
}

// GlobalSettingsFile returns the path to the settings.yaml file.
func GlobalSettingsFile() (string, error) {
	dir, err := GlobalDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, SettingsFileName), nil
}

// EnsureGlobalDir creates the global runlog directory if it doesn't exist.
func EnsureGlobalDir() error {
	dir, err := GlobalDir()
	if err != nil {
		return err
	}
	return os.MkdirAll(dir, 0755)
}

// ExperimentDir returns the directory holding an experiment's files.
func ExperimentDir(exp models.Experiment) string {
	return exp.Dir()
}

// ConfigFile returns the path to an experiment directory's config.json.
func ConfigFile(dir string) string {
	return filepath.Join(dir, ConfigFileName)
}

// LogsFile returns the path to an experiment directory's logs.json.
func LogsFile(dir string) string {
	return filepath.Join(dir, LogsFileName)
}

// PlotFile returns the path to an experiment directory's logs.png.
func PlotFile(dir string) string {
	return filepath.Join(dir, PlotFileName)
}

// EnsureExperimentDir creates the experiment directory if it doesn't exist.
func EnsureExperimentDir(dir string) error {
	return os.MkdirAll(dir, 0755)
}
