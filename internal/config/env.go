package config

import (
	"os"

	"github.com/watchfire-io/runlog/internal/models"
)

// Environment variables that override the experiment identity.
const (
	EnvBaseDir    = "base_dir"
	EnvProject    = "project"
	EnvExperiment = "experiment_name"
)

// LookupFunc reports the value of an environment variable.
type LookupFunc func(key string) (string, bool)

// ResolveExperiment builds the experiment identity. Each field is taken from
// the first non-empty source: overrides, the environment, settings defaults,
// and finally the fallback literals in models.
func ResolveExperiment(overrides models.Experiment, lookup LookupFunc, settings *models.Settings) models.Experiment {
	if lookup == nil {
		lookup = os.LookupEnv
	}
	var defaults models.Experiment
	if settings != nil {
		defaults = settings.Defaults
	}

	pick := func(override, env, fromSettings string) string {
		if override != "" {
			return override
		}
		if v, ok := lookup(env); ok && v != "" {
			return v
		}
		return fromSettings
	}

	return models.NewExperiment(
		pick(overrides.BaseDir, EnvBaseDir, defaults.BaseDir),
		pick(overrides.Project, EnvProject, defaults.Project),
		pick(overrides.Name, EnvExperiment, defaults.Name),
	)
}
