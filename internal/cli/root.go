// Package cli implements the runlog CLI commands.
package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"gonum.org/v1/plot/vg"

	"github.com/watchfire-io/runlog/internal/chart"
	"github.com/watchfire-io/runlog/internal/config"
	"github.com/watchfire-io/runlog/internal/models"
	"github.com/watchfire-io/runlog/internal/runlog"
)

var (
	flagBaseDir    string
	flagProject    string
	flagExperiment string
)

var rootCmd = &cobra.Command{
	Use:   "runlog",
	Short: "Log, plot and upload experiment metrics",
	Long: `Runlog keeps step-indexed training metrics for an experiment in
<base_dir>/<experiment>/logs.json, next to the run's config.json.

The experiment is chosen by --base-dir/--project/--experiment, then the
base_dir/project/experiment_name environment variables, then the defaults
in ~/.runlog/settings.yaml.`,
	SilenceUsage: true,
}

// Execute runs the CLI. SIGINT and SIGTERM cancel the command context.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return rootCmd.ExecuteContext(ctx)
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagBaseDir, "base-dir", "", "directory holding experiment directories (env: base_dir)")
	rootCmd.PersistentFlags().StringVar(&flagProject, "project", "", "project name used for uploads (env: project)")
	rootCmd.PersistentFlags().StringVar(&flagExperiment, "experiment", "", "experiment name (env: experiment_name)")

	// Add subcommands (alphabetical)
	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(inspectCmd)
	rootCmd.AddCommand(logCmd)
	rootCmd.AddCommand(settingsCmd)
	rootCmd.AddCommand(showCmd)
	rootCmd.AddCommand(uploadCmd)
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(watchCmd)
}

// resolveExperiment applies flags, environment and settings, in that order.
func resolveExperiment() (models.Experiment, *models.Settings, error) {
	settings, err := config.LoadSettings()
	if err != nil {
		return models.Experiment{}, nil, fmt.Errorf("failed to load settings: %w", err)
	}
	overrides := models.Experiment{
		BaseDir: flagBaseDir,
		Project: flagProject,
		Name:    flagExperiment,
	}
	return config.ResolveExperiment(overrides, os.LookupEnv, settings), settings, nil
}

// openLogger binds a logger to the resolved experiment. A nil cfg loads the
// existing state; a non-nil cfg replaces config.json.
func openLogger(cfg runlog.Config) (*runlog.Logger, *models.Settings, error) {
	exp, settings, err := resolveExperiment()
	if err != nil {
		return nil, nil, err
	}
	l, err := runlog.New(runlog.Options{Experiment: exp, Config: cfg})
	if err != nil {
		return nil, nil, err
	}
	return l, settings, nil
}

func plotOptions(settings *models.Settings) chart.Options {
	return chart.Options{
		CellWidth:  vg.Length(settings.Plot.CellWidth) * vg.Inch,
		CellHeight: vg.Length(settings.Plot.CellHeight) * vg.Inch,
	}
}

// parseMetrics parses "name=value" arguments into numeric metrics.
func parseMetrics(args []string) (map[string]float64, error) {
	data := make(map[string]float64, len(args))
	for _, arg := range args {
		name, raw, ok := strings.Cut(arg, "=")
		if !ok || name == "" {
			return nil, fmt.Errorf("invalid metric %q (expected name=value)", arg)
		}
		value, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
		if err != nil {
			return nil, fmt.Errorf("invalid value for %s: %q is not a number", name, raw)
		}
		data[name] = value
	}
	return data, nil
}
