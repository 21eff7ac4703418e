package config

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"sync"
	"testing"

	"github.com/watchfire-io/runlog/internal/metrics"
)

func TestSaveExperimentConfigIsIdempotent(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "exp")
	cfg := map[string]any{
		"lr":     0.001,
		"layers": []any{64, 32},
		"optim":  map[string]any{"name": "adam", "beta": 0.9},
	}

	if err := SaveExperimentConfig(dir, cfg); err != nil {
		t.Fatalf("first save failed: %v", err)
	}
	first, err := os.ReadFile(ConfigFile(dir))
	if err != nil {
		t.Fatalf("failed to read config: %v", err)
	}

	if err := SaveExperimentConfig(dir, cfg); err != nil {
		t.Fatalf("second save failed: %v", err)
	}
	second, err := os.ReadFile(ConfigFile(dir))
	if err != nil {
		t.Fatalf("failed to read config: %v", err)
	}

	if !bytes.Equal(first, second) {
		t.Errorf("config.json changed between saves:\n%s\n---\n%s", first, second)
	}
	if !strings.Contains(string(first), "\n    \"layers\"") {
		t.Errorf("config.json is not indented with four spaces:\n%s", first)
	}
}

func TestLoadExperimentConfigMissing(t *testing.T) {
	cfg, err := LoadExperimentConfig(t.TempDir())
	if err != nil {
		t.Fatalf("LoadExperimentConfig() error = %v", err)
	}
	if cfg != nil {
		t.Errorf("LoadExperimentConfig() = %v, want nil", cfg)
	}
}

func TestLoadExperimentConfigPreservesNumbers(t *testing.T) {
	dir := t.TempDir()
	raw := `{"seed": 9007199254740993, "lr": 0.5}`
	if err := os.WriteFile(ConfigFile(dir), []byte(raw), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadExperimentConfig(dir)
	if err != nil {
		t.Fatalf("LoadExperimentConfig() error = %v", err)
	}
	if got := cfg["seed"]; got != json.Number("9007199254740993") {
		t.Errorf("seed = %v (%T), want json.Number 9007199254740993", got, got)
	}

	if err := SaveExperimentConfig(dir, cfg); err != nil {
		t.Fatalf("SaveExperimentConfig() error = %v", err)
	}
	data, _ := os.ReadFile(ConfigFile(dir))
	if !strings.Contains(string(data), "9007199254740993") {
		t.Errorf("seed lost precision on rewrite:\n%s", data)
	}
}

func TestMetricsRoundTripKeepsAbsent(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "exp")
	log := metrics.NewLog()
	if err := log.Set(map[string]float64{"loss": 1.5}, 2); err != nil {
		t.Fatal(err)
	}
	if err := log.Set(map[string]float64{"eval/acc": 0}, 0); err != nil {
		t.Fatal(err)
	}

	if err := SaveMetrics(dir, log); err != nil {
		t.Fatalf("SaveMetrics() error = %v", err)
	}
	loaded, err := LoadMetrics(dir)
	if err != nil {
		t.Fatalf("LoadMetrics() error = %v", err)
	}

	for _, name := range log.Names() {
		if !reflect.DeepEqual(loaded.Series(name), log.Series(name)) {
			t.Errorf("%s = %v, want %v", name, loaded.Series(name), log.Series(name))
		}
	}
	if loaded.Len() != log.Len() {
		t.Errorf("loaded %d metrics, want %d", loaded.Len(), log.Len())
	}

	data, _ := os.ReadFile(LogsFile(dir))
	if !strings.Contains(string(data), "null") {
		t.Errorf("logs.json should encode absent steps as null:\n%s", data)
	}
}

func TestLoadMetricsMissing(t *testing.T) {
	log, err := LoadMetrics(t.TempDir())
	if err != nil {
		t.Fatalf("LoadMetrics() error = %v", err)
	}
	if log != nil {
		t.Errorf("LoadMetrics() = %v, want nil", log)
	}
}

func TestLoadMetricsMalformed(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(LogsFile(dir), []byte(`{"loss": [1, 2`), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadMetrics(dir); err == nil {
		t.Fatal("LoadMetrics() on truncated file should fail")
	}
}

func TestLoadExperimentConfigMalformed(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{name: "truncated", content: `{"lr": 1`},
		{name: "extra closing brace", content: `{"lr": 1}}`},
		{name: "trailing garbage", content: `{"a":1} junk`},
		{name: "second object", content: `{"a":1}{"b":2}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			if err := os.WriteFile(ConfigFile(dir), []byte(tt.content), 0644); err != nil {
				t.Fatal(err)
			}
			if cfg, err := LoadExperimentConfig(dir); err == nil {
				t.Fatalf("LoadExperimentConfig() = %v, want error", cfg)
			}
		})
	}
}

func TestLoadExperimentConfigTrailingWhitespace(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(ConfigFile(dir), []byte("{\"lr\": 1}\n\n  "), 0644); err != nil {
		t.Fatal(err)
	}
	cfg, err := LoadExperimentConfig(dir)
	if err != nil {
		t.Fatalf("LoadExperimentConfig() error = %v", err)
	}
	if cfg["lr"] != json.Number("1") {
		t.Errorf("lr = %v, want 1", cfg["lr"])
	}
}

func TestWriteFileAtomicLeavesNoTempFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "nested", "out.json")

	if err := WriteFileAtomic(path, []byte("{}")); err != nil {
		t.Fatalf("WriteFileAtomic() error = %v", err)
	}
	if !FileExists(path) {
		t.Fatal("target file missing")
	}
	leftovers, err := filepath.Glob(path + ".*.tmp")
	if err != nil {
		t.Fatal(err)
	}
	if len(leftovers) != 0 {
		t.Errorf("temp files left behind: %v", leftovers)
	}
	info, err := os.Stat(path)
	if err != nil {
		t.Fatal(err)
	}
	if perm := info.Mode().Perm(); perm != 0644 {
		t.Errorf("mode = %v, want 0644", perm)
	}
}

func TestWriteFileAtomicConcurrentWriters(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs.png")

	payloads := make(map[string]bool)
	var wg sync.WaitGroup
	errs := make(chan error, 8)
	for i := 0; i < 8; i++ {
		data := []byte(strings.Repeat(fmt.Sprintf("%d", i), 64*1024))
		payloads[string(data)] = true
		wg.Add(1)
		go func() {
			defer wg.Done()
			errs <- WriteFileAtomic(path, data)
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		if err != nil {
			t.Fatalf("WriteFileAtomic() error = %v", err)
		}
	}

	got, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !payloads[string(got)] {
		t.Errorf("final file (%d bytes) is not one writer's complete payload", len(got))
	}
}
