// Package runlog binds an experiment directory to its config record and
// metric log, and keeps both files on disk in sync with every write.
package runlog

import (
	"context"
	"fmt"
	"log"

	"github.com/watchfire-io/runlog/internal/chart"
	"github.com/watchfire-io/runlog/internal/config"
	"github.com/watchfire-io/runlog/internal/metrics"
	"github.com/watchfire-io/runlog/internal/models"
	"github.com/watchfire-io/runlog/internal/upload"
)

// Config is the experiment's configuration record. It is opaque to the
// logger and only needs to be JSON-serializable.
type Config map[string]any

// Options contains options for constructing a Logger.
type Options struct {
	Experiment models.Experiment

	// Config, when non-nil, replaces whatever config.json holds and is
	// written immediately. When nil the existing on-disk state is loaded.
	Config Config
}

// Logger owns one experiment's config record and metric log.
// It is not safe for concurrent use, and two Loggers on the same directory
// overwrite each other's files.
type Logger struct {
	exp     models.Experiment
	dir     string
	config  Config
	metrics *metrics.Log
}

// New creates a Logger for opts.Experiment.
func New(opts Options) (*Logger, error) {
	exp := models.NewExperiment(opts.Experiment.BaseDir, opts.Experiment.Project, opts.Experiment.Name)
	l := &Logger{
		exp:     exp,
		dir:     config.ExperimentDir(exp),
		config:  Config{},
		metrics: metrics.NewLog(),
	}
	log.Printf("[runlog] experiment dir: %s", l.dir)

	if opts.Config == nil {
		if err := l.Read(); err != nil {
			return nil, err
		}
		return l, nil
	}

	l.config = cloneConfig(opts.Config)
	if err := l.SaveConfig(); err != nil {
		return nil, err
	}
	return l, nil
}

// Experiment returns the experiment identity.
func (l *Logger) Experiment() models.Experiment {
	return l.exp
}

// Dir returns the experiment directory.
func (l *Logger) Dir() string {
	return l.dir
}

// Config returns a copy of the config record.
func (l *Logger) Config() Config {
	return cloneConfig(l.config)
}

// Metrics returns a copy of the metric log.
func (l *Logger) Metrics() *metrics.Log {
	return l.metrics.Clone()
}

// Log records data at step and rewrites config.json and logs.json.
// Re-logging a step replaces the earlier value. Every call re-serializes the
// whole log, so its cost grows with the log size.
func (l *Logger) Log(data map[string]float64, step int) error {
	if err := l.metrics.Set(data, step); err != nil {
		return fmt.Errorf("failed to log step %d: %w", step, err)
	}
	return l.save()
}

// LogNext records data at the step after the longest series.
//
// Deprecated: the inferred step is only right when every metric is logged at
// every step. Use Log with an explicit step.
func (l *Logger) LogNext(data map[string]float64) (int, error) {
	step := l.metrics.NextStep()
	return step, l.Log(data, step)
}

// SaveConfig writes config.json, creating the experiment directory if needed.
func (l *Logger) SaveConfig() error {
	if err := config.SaveExperimentConfig(l.dir, l.config); err != nil {
		return fmt.Errorf("failed to save config: %w", err)
	}
	return nil
}

// Read loads config.json and logs.json. A missing logs.json is a cold start:
// the in-memory state is left as it was and no error is returned.
func (l *Logger) Read() error {
	if !config.FileExists(config.LogsFile(l.dir)) {
		log.Printf("[runlog] no metrics file at %s, starting empty", config.LogsFile(l.dir))
		return nil
	}

	cfg, err := config.LoadExperimentConfig(l.dir)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if cfg == nil {
		log.Printf("[runlog] no config file at %s, using empty config", config.ConfigFile(l.dir))
		cfg = Config{}
	}

	m, err := config.LoadMetrics(l.dir)
	if err != nil {
		return fmt.Errorf("failed to load metrics: %w", err)
	}
	if m == nil {
		// Removed between the existence check and the read.
		return nil
	}

	l.config = cfg
	l.metrics = m
	return nil
}

// Show renders the metric log to logs.png in the experiment directory and
// returns the image path.
func (l *Logger) Show(opts chart.Options) (string, error) {
	path := config.PlotFile(l.dir)
	log.Printf("[runlog] saving plot to %s", path)
	if err := chart.Render(l.metrics, path, opts); err != nil {
		return "", err
	}
	return path, nil
}

// Upload forwards the whole log to sink, one event per step.
func (l *Logger) Upload(ctx context.Context, sink upload.Sink) error {
	run := upload.Run{
		Project: l.exp.Project,
		Name:    l.exp.Name,
		Config:  l.Config(),
	}
	return upload.Send(ctx, sink, run, l.metrics)
}

func (l *Logger) save() error {
	if err := l.SaveConfig(); err != nil {
		return err
	}
	if err := config.SaveMetrics(l.dir, l.metrics); err != nil {
		return fmt.Errorf("failed to save metrics: %w", err)
	}
	return nil
}

func cloneConfig(c Config) Config {
	out := make(Config, len(c))
	for k, v := range c {
		out[k] = v
	}
	return out
}
