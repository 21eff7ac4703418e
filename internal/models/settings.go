package models

// UploadConfig holds settings for forwarding metrics to a tracking service.
type UploadConfig struct {
	Backend string        `yaml:"backend"` // "posthog" | "kafka"
	PostHog PostHogConfig `yaml:"posthog"`
	Kafka   KafkaConfig   `yaml:"kafka"`
}

// PostHogConfig holds PostHog client settings.
type PostHogConfig struct {
	APIKey   string `yaml:"api_key"`
	Endpoint string `yaml:"endpoint"`
}

// KafkaConfig holds Kafka producer settings.
type KafkaConfig struct {
	Brokers []string `yaml:"brokers"`
	Topic   string   `yaml:"topic"`
}

// PlotConfig holds plot rendering settings. Sizes are in inches per subplot.
type PlotConfig struct {
	CellWidth  float64 `yaml:"cell_width"`
	CellHeight float64 `yaml:"cell_height"`
}

// Settings represents global application settings.
// This corresponds to ~/.runlog/settings.yaml.
type Settings struct {
	Version  int          `yaml:"version"`
	Defaults Experiment   `yaml:"defaults"`
	Upload   UploadConfig `yaml:"upload"`
	Plot     PlotConfig   `yaml:"plot"`
}

// NewSettings creates settings with default values.
func NewSettings() *Settings {
	return &Settings{
		Version: 1,
		// Empty defaults defer to the environment and then the fallback literals.
		Defaults: Experiment{},
		Upload: UploadConfig{
			Backend: "posthog",
			PostHog: PostHogConfig{
				Endpoint: "https://us.i.posthog.com",
			},
			Kafka: KafkaConfig{
				Brokers: []string{"localhost:9092"},
				Topic:   "runlog.metrics",
			},
		},
		Plot: PlotConfig{
			CellWidth:  5,
			CellHeight: 5,
		},
	}
}
