package cli

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/watchfire-io/runlog/internal/config"
	"github.com/watchfire-io/runlog/internal/runlog"
)

var (
	initConfigFile string
	initSet        []string
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Start an experiment with a fresh config",
	Long: `Start an experiment with a fresh config.

The config is built from --config (a JSON object) and then each --set
key=value, where value is parsed as JSON when possible and kept as a string
otherwise. It replaces any existing config.json; logged metrics are kept.`,
	RunE: runInit,
}

func init() {
	initCmd.Flags().StringVar(&initConfigFile, "config", "", "JSON file with the experiment config")
	initCmd.Flags().StringArrayVar(&initSet, "set", nil, "config entry as key=value (repeatable)")
}

func runInit(cmd *cobra.Command, args []string) error {
	cfg, err := buildConfig(initConfigFile, initSet)
	if err != nil {
		return err
	}

	l, _, err := openLogger(cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize experiment: %w", err)
	}

	fmt.Printf("%s %s\n", styleSuccess.Render("Experiment ready:"), styleValue.Render(l.Experiment().Name))
	fmt.Printf("  %s %s\n", styleLabel.Render("Dir:   "), l.Dir())
	fmt.Printf("  %s %d entries\n", styleLabel.Render("Config:"), len(cfg))
	fmt.Println(styleHint.Render("\nNext: runlog log --step 0 loss=1.0"))
	return nil
}

func buildConfig(file string, sets []string) (runlog.Config, error) {
	cfg := runlog.Config{}
	if file != "" {
		var fromFile map[string]any
		if err := config.LoadJSON(file, &fromFile); err != nil {
			return nil, err
		}
		for k, v := range fromFile {
			cfg[k] = v
		}
	}

	for _, s := range sets {
		key, raw, ok := strings.Cut(s, "=")
		if !ok || key == "" {
			return nil, fmt.Errorf("invalid --set %q (expected key=value)", s)
		}
		var v any
		if err := json.Unmarshal([]byte(raw), &v); err != nil {
			v = raw
		}
		cfg[key] = v
	}
	return cfg, nil
}
