package config

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/watchfire-io/runlog/internal/metrics"
)

// SaveExperimentConfig writes config.json into dir, creating dir if needed.
func SaveExperimentConfig(dir string, cfg map[string]any) error {
	if err := EnsureExperimentDir(dir); err != nil {
		return fmt.Errorf("failed to create experiment dir %s: %w", dir, err)
	}
	if cfg == nil {
		cfg = map[string]any{}
	}
	return SaveJSON(ConfigFile(dir), cfg)
}

// LoadExperimentConfig reads config.json from dir.
// Returns nil if the file doesn't exist.
func LoadExperimentConfig(dir string) (map[string]any, error) {
	path := ConfigFile(dir)
	if !FileExists(path) {
		return nil, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read file %s: %w", path, err)
	}

	// Numbers stay json.Number so large integers survive a rewrite unchanged.
	var cfg map[string]any
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	if err := dec.Decode(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse JSON from %s: %w", path, err)
	}
	if err := dec.Decode(&struct{}{}); err != io.EOF {
		return nil, fmt.Errorf("failed to parse JSON from %s: trailing data after object", path)
	}
	if cfg == nil {
		cfg = map[string]any{}
	}
	return cfg, nil
}

// SaveMetrics writes logs.json into dir, creating dir if needed.
func SaveMetrics(dir string, log *metrics.Log) error {
	if err := EnsureExperimentDir(dir); err != nil {
		return fmt.Errorf("failed to create experiment dir %s: %w", dir, err)
	}
	if log == nil {
		log = metrics.NewLog()
	}
	return SaveJSON(LogsFile(dir), log)
}

// LoadMetrics reads logs.json from dir.
// Returns nil if the file doesn't exist.
func LoadMetrics(dir string) (*metrics.Log, error) {
	path := LogsFile(dir)
	if !FileExists(path) {
		return nil, nil
	}

	log := metrics.NewLog()
	if err := LoadJSON(path, log); err != nil {
		return nil, err
	}
	return log, nil
}
