// Package models contains shared data structures used across the application.
package models

import "path/filepath"

// Fallbacks used when neither flags, environment nor settings provide a value.
const (
	DefaultBaseDir    = "tmp/logs"
	DefaultProject    = "default_project"
	DefaultExperiment = "default_experiment"
)

// Experiment identifies one run. Project is only used by remote uploads;
// the storage directory is derived from BaseDir and Name.
type Experiment struct {
	BaseDir string `yaml:"base_dir"`
	Project string `yaml:"project"`
	Name    string `yaml:"experiment"`
}

// NewExperiment creates an experiment identity, filling empty fields with the
// fallback literals.
func NewExperiment(baseDir, project, name string) Experiment {
	if baseDir == "" {
		baseDir = DefaultBaseDir
	}
	if project == "" {
		project = DefaultProject
	}
	if name == "" {
		name = DefaultExperiment
	}
	return Experiment{BaseDir: baseDir, Project: project, Name: name}
}

// Dir returns the experiment directory (<base_dir>/<experiment>).
func (e Experiment) Dir() string {
	return filepath.Join(e.BaseDir, e.Name)
}
