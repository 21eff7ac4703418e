package upload

import (
	"context"
	"errors"
	"fmt"

	"github.com/posthog/posthog-go"

	"github.com/watchfire-io/runlog/internal/buildinfo"
	"github.com/watchfire-io/runlog/internal/models"
)

// Event names sent to PostHog.
const (
	EventRunStarted    = "run_started"
	EventMetricsLogged = "metrics_logged"
	EventRunFinished   = "run_finished"
)

// eventQueue is the part of posthog.Client the sink uses.
type eventQueue interface {
	Enqueue(posthog.Message) error
	Close() error
}

// PostHogSink sends runs as PostHog events. The run id is the distinct id,
// the config is attached to it as person properties. Metric values travel
// as one map under the "metrics" property, apart from the run fields.
type PostHogSink struct {
	client eventQueue
	run    Run
}

// NewPostHogSink creates a sink backed by a posthog-go client.
func NewPostHogSink(cfg models.PostHogConfig) (*PostHogSink, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("posthog api key is not set (upload.posthog.api_key)")
	}
	client, err := posthog.NewWithConfig(cfg.APIKey, posthog.Config{
		Endpoint: cfg.Endpoint,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create posthog client: %w", err)
	}
	return &PostHogSink{client: client}, nil
}

func (s *PostHogSink) Init(ctx context.Context, run Run) error {
	s.run = run

	person := posthog.NewProperties()
	for k, v := range run.Config {
		person.Set(k, v)
	}
	if err := s.client.Enqueue(posthog.Identify{
		DistinctId: run.ID,
		Properties: person,
	}); err != nil {
		return err
	}

	return s.client.Enqueue(posthog.Capture{
		DistinctId: run.ID,
		Event:      EventRunStarted,
		Properties: s.runProperties().Set("config", run.Config),
	})
}

func (s *PostHogSink) Log(ctx context.Context, step int, values map[string]float64) error {
	metrics := make(map[string]float64, len(values))
	for k, v := range values {
		metrics[k] = v
	}
	props := s.runProperties().
		Set("step", step).
		Set("metrics", metrics)
	return s.client.Enqueue(posthog.Capture{
		DistinctId: s.run.ID,
		Event:      EventMetricsLogged,
		Properties: props,
	})
}

// Finish records the end of the run and flushes the client.
func (s *PostHogSink) Finish(ctx context.Context) error {
	err := s.client.Enqueue(posthog.Capture{
		DistinctId: s.run.ID,
		Event:      EventRunFinished,
		Properties: s.runProperties(),
	})
	if cerr := s.client.Close(); err == nil {
		err = cerr
	}
	return err
}

func (s *PostHogSink) runProperties() posthog.Properties {
	return posthog.NewProperties().
		Set("project", s.run.Project).
		Set("run", s.run.Name).
		Set("producer", buildinfo.UserAgent())
}
