package upload

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"github.com/watchfire-io/runlog/internal/metrics"
	"github.com/watchfire-io/runlog/internal/models"
)

type stepCall struct {
	Step   int
	Values map[string]float64
}

// recordingSink records every call it receives.
type recordingSink struct {
	run      Run
	inits    int
	steps    []stepCall
	finishes int

	failInit bool
	failStep int // step that fails; -1 for none
}

func newRecordingSink() *recordingSink {
	return &recordingSink{failStep: -1}
}

func (s *recordingSink) Init(ctx context.Context, run Run) error {
	s.inits++
	s.run = run
	if s.failInit {
		return errors.New("init refused")
	}
	return nil
}

func (s *recordingSink) Log(ctx context.Context, step int, values map[string]float64) error {
	if step == s.failStep {
		return errors.New("step refused")
	}
	s.steps = append(s.steps, stepCall{Step: step, Values: values})
	return nil
}

func (s *recordingSink) Finish(ctx context.Context) error {
	s.finishes++
	return nil
}

func scenarioLog(t *testing.T) *metrics.Log {
	t.Helper()
	m := metrics.NewLog()
	if err := m.Set(map[string]float64{"loss": 0.5}, 0); err != nil {
		t.Fatal(err)
	}
	if err := m.Set(map[string]float64{"eval/acc": 0.9}, 1); err != nil {
		t.Fatal(err)
	}
	if err := m.Set(map[string]float64{"loss": 0.25}, 3); err != nil {
		t.Fatal(err)
	}
	return m
}

func TestSendEmitsOneRecordPerStep(t *testing.T) {
	sink := newRecordingSink()
	run := Run{Project: "p", Name: "e", Config: map[string]any{"lr": 0.1}}

	if err := Send(context.Background(), sink, run, scenarioLog(t)); err != nil {
		t.Fatalf("Send() error = %v", err)
	}

	want := []stepCall{
		{Step: 0, Values: map[string]float64{"loss": 0.5}},
		{Step: 1, Values: map[string]float64{"eval/acc": 0.9}},
		{Step: 2, Values: map[string]float64{}},
		{Step: 3, Values: map[string]float64{"loss": 0.25}},
	}
	if !reflect.DeepEqual(sink.steps, want) {
		t.Errorf("steps = %+v, want %+v", sink.steps, want)
	}
	if sink.inits != 1 || sink.finishes != 1 {
		t.Errorf("inits=%d finishes=%d, want 1 and 1", sink.inits, sink.finishes)
	}
	if sink.run.ID == "" {
		t.Error("run id should be generated")
	}
	if sink.run.Project != "p" || sink.run.Name != "e" {
		t.Errorf("run = %+v", sink.run)
	}
}

func TestSendEmptyLog(t *testing.T) {
	sink := newRecordingSink()
	if err := Send(context.Background(), sink, Run{ID: "fixed"}, metrics.NewLog()); err != nil {
		t.Fatalf("Send() error = %v", err)
	}
	if len(sink.steps) != 0 {
		t.Errorf("steps = %v, want none", sink.steps)
	}
	if sink.run.ID != "fixed" {
		t.Errorf("run id = %q, want fixed", sink.run.ID)
	}
	if sink.finishes != 1 {
		t.Errorf("finishes = %d, want 1", sink.finishes)
	}
}

func TestSendFinishesAfterFailure(t *testing.T) {
	tests := []struct {
		name      string
		sink      *recordingSink
		wantSteps int
	}{
		{name: "init fails", sink: &recordingSink{failInit: true, failStep: -1}, wantSteps: 0},
		{name: "step fails", sink: &recordingSink{failStep: 1}, wantSteps: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Send(context.Background(), tt.sink, Run{}, scenarioLog(t))
			if err == nil {
				t.Fatal("Send() should fail")
			}
			if len(tt.sink.steps) != tt.wantSteps {
				t.Errorf("steps = %d, want %d", len(tt.sink.steps), tt.wantSteps)
			}
			if tt.sink.finishes != 1 {
				t.Errorf("finishes = %d, want 1", tt.sink.finishes)
			}
		})
	}
}

func TestSendStopsOnCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	sink := newRecordingSink()
	err := Send(ctx, sink, Run{}, scenarioLog(t))
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("Send() error = %v, want context.Canceled", err)
	}
	if len(sink.steps) != 0 {
		t.Errorf("steps = %d, want 0", len(sink.steps))
	}
}

func TestNewSinkValidation(t *testing.T) {
	tests := []struct {
		name    string
		cfg     models.UploadConfig
		wantErr error
	}{
		{name: "unknown backend", cfg: models.UploadConfig{Backend: "wandb"}, wantErr: ErrUnknownBackend},
		{name: "posthog without key", cfg: models.UploadConfig{Backend: BackendPostHog}},
		{name: "kafka without brokers", cfg: models.UploadConfig{Backend: BackendKafka, Kafka: models.KafkaConfig{Topic: "t"}}},
		{name: "kafka without topic", cfg: models.UploadConfig{Backend: BackendKafka, Kafka: models.KafkaConfig{Brokers: []string{"b:9092"}}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sink, err := NewSink(tt.cfg)
			if err == nil {
				t.Fatalf("NewSink() = %v, want error", sink)
			}
			if tt.wantErr != nil && !errors.Is(err, tt.wantErr) {
				t.Errorf("NewSink() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestNewSinkKafka(t *testing.T) {
	sink, err := NewSink(models.UploadConfig{
		Backend: BackendKafka,
		Kafka:   models.KafkaConfig{Brokers: []string{"localhost:9092"}, Topic: "runs"},
	})
	if err != nil {
		t.Fatalf("NewSink() error = %v", err)
	}
	if _, ok := sink.(*KafkaSink); !ok {
		t.Errorf("NewSink() = %T, want *KafkaSink", sink)
	}
}
