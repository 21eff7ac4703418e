package cli

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/watchfire-io/runlog/internal/config"
	"github.com/watchfire-io/runlog/internal/models"
)

var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Show global settings",
	Long: `Show the settings in ~/.runlog/settings.yaml (defaults when the file
does not exist) and the experiment they resolve to right now.`,
	RunE: runSettings,
}

var settingsSetCmd = &cobra.Command{
	Use:   "set [key] [value]",
	Short: "Change one setting",
	Long: `Change one setting in ~/.runlog/settings.yaml.

Keys:
  ` + strings.Join(settingKeys(), "\n  "),
	Args: cobra.ExactArgs(2),
	RunE: runSettingsSet,
}

func init() {
	settingsCmd.AddCommand(settingsSetCmd)
}

// settingSetters maps dotted keys to the field they update.
var settingSetters = map[string]func(s *models.Settings, v string) error{
	"defaults.base_dir":   func(s *models.Settings, v string) error { s.Defaults.BaseDir = v; return nil },
	"defaults.project":    func(s *models.Settings, v string) error { s.Defaults.Project = v; return nil },
	"defaults.experiment": func(s *models.Settings, v string) error { s.Defaults.Name = v; return nil },
	"upload.backend":      func(s *models.Settings, v string) error { s.Upload.Backend = v; return nil },
	"upload.posthog.api_key": func(s *models.Settings, v string) error {
		s.Upload.PostHog.APIKey = v
		return nil
	},
	"upload.posthog.endpoint": func(s *models.Settings, v string) error {
		s.Upload.PostHog.Endpoint = v
		return nil
	},
	"upload.kafka.brokers": func(s *models.Settings, v string) error {
		var brokers []string
		for _, b := range strings.Split(v, ",") {
			if b = strings.TrimSpace(b); b != "" {
				brokers = append(brokers, b)
			}
		}
		s.Upload.Kafka.Brokers = brokers
		return nil
	},
	"upload.kafka.topic": func(s *models.Settings, v string) error { s.Upload.Kafka.Topic = v; return nil },
	"plot.cell_width": func(s *models.Settings, v string) error {
		return setPositiveFloat(&s.Plot.CellWidth, v)
	},
	"plot.cell_height": func(s *models.Settings, v string) error {
		return setPositiveFloat(&s.Plot.CellHeight, v)
	},
}

func settingKeys() []string {
	keys := make([]string, 0, len(settingSetters))
	for k := range settingSetters {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func setPositiveFloat(dst *float64, v string) error {
	f, err := strconv.ParseFloat(v, 64)
	if err != nil || f <= 0 {
		return fmt.Errorf("invalid size %q (expected a positive number of inches)", v)
	}
	*dst = f
	return nil
}

// applySetting updates one field of s.
func applySetting(s *models.Settings, key, value string) error {
	set, ok := settingSetters[key]
	if !ok {
		return fmt.Errorf("unknown setting %q", key)
	}
	return set(s, value)
}

func runSettings(cmd *cobra.Command, args []string) error {
	exp, settings, err := resolveExperiment()
	if err != nil {
		return err
	}

	path, err := config.GlobalSettingsFile()
	if err != nil {
		return err
	}
	source := path
	if !config.FileExists(path) {
		source = path + " (not created yet, showing defaults)"
	}

	data, err := yaml.Marshal(settings)
	if err != nil {
		return fmt.Errorf("failed to marshal YAML: %w", err)
	}

	fmt.Println(styleLabel.Render("# " + source))
	fmt.Print(string(data))
	fmt.Println()
	fmt.Println(styleGroup.Render("Resolved experiment"))
	fmt.Printf("  %s %s\n", styleLabel.Render("base_dir:  "), exp.BaseDir)
	fmt.Printf("  %s %s\n", styleLabel.Render("project:   "), exp.Project)
	fmt.Printf("  %s %s\n", styleLabel.Render("experiment:"), exp.Name)
	fmt.Printf("  %s %s\n", styleLabel.Render("dir:       "), exp.Dir())
	return nil
}

func runSettingsSet(cmd *cobra.Command, args []string) error {
	settings, err := config.LoadSettings()
	if err != nil {
		return fmt.Errorf("failed to load settings: %w", err)
	}
	if err := applySetting(settings, args[0], args[1]); err != nil {
		return err
	}
	if err := config.SaveSettings(settings); err != nil {
		return fmt.Errorf("failed to save settings: %w", err)
	}

	fmt.Printf("%s %s\n", styleSuccess.Render("Updated"), args[0])
	return nil
}
