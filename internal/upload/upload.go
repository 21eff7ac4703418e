// Package upload forwards a metric log to an experiment-tracking service.
//
// Every backend follows the same session protocol: one Init carrying the
// project, run name and config, one Log per step in increasing step order
// holding only the metrics present at that step, and one Finish.
package upload

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/google/uuid"

	"github.com/watchfire-io/runlog/internal/metrics"
	"github.com/watchfire-io/runlog/internal/models"
)

// ErrUnknownBackend is returned by NewSink for an unsupported backend name.
var ErrUnknownBackend = errors.New("unknown upload backend")

// Backend names accepted by NewSink.
const (
	BackendPostHog = "posthog"
	BackendKafka   = "kafka"
)

// Run describes the upload session.
type Run struct {
	ID      string // generated when empty
	Project string
	Name    string
	Config  map[string]any
}

// Sink is a remote tracking backend.
type Sink interface {
	Init(ctx context.Context, run Run) error
	Log(ctx context.Context, step int, values map[string]float64) error
	Finish(ctx context.Context) error
}

// Send uploads m to sink. Steps run from 0 to the longest series length; a
// step whose record is empty is still sent so remote step indices line up.
// Finish is always called, even after a failure, and the first error wins.
func Send(ctx context.Context, sink Sink, run Run, m *metrics.Log) (err error) {
	if run.ID == "" {
		run.ID = uuid.NewString()
	}
	defer func() {
		if ferr := sink.Finish(ctx); ferr != nil && err == nil {
			err = fmt.Errorf("failed to finish upload session: %w", ferr)
		}
	}()
	if err := sink.Init(ctx, run); err != nil {
		return fmt.Errorf("failed to start upload session: %w", err)
	}

	steps := 0
	if m != nil {
		steps = m.MaxLen()
	}
	log.Printf("[upload] run %s (%s/%s): %d steps", run.ID, run.Project, run.Name, steps)

	for step := 0; step < steps; step++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := sink.Log(ctx, step, m.StepRecord(step)); err != nil {
			return fmt.Errorf("failed to upload step %d: %w", step, err)
		}
	}
	return nil
}

// NewSink creates the backend selected in cfg.
func NewSink(cfg models.UploadConfig) (Sink, error) {
	switch cfg.Backend {
	case BackendPostHog, "":
		return NewPostHogSink(cfg.PostHog)
	case BackendKafka:
		return NewKafkaSink(cfg.Kafka)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownBackend, cfg.Backend)
	}
}
