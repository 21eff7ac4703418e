package upload

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/watchfire-io/runlog/internal/buildinfo"
	"github.com/watchfire-io/runlog/internal/models"
)

// Kafka message types.
const (
	MessageStart  = "start"
	MessageStep   = "step"
	MessageFinish = "finish"
)

// HeaderProducer names the runlog build that produced a message.
const HeaderProducer = "producer"

// KafkaMessage is the JSON value of every message the sink produces.
type KafkaMessage struct {
	Type    string             `json:"type"`
	RunID   string             `json:"run_id"`
	Project string             `json:"project"`
	Run     string             `json:"run"`
	Step    *int               `json:"step,omitempty"`
	Metrics map[string]float64 `json:"metrics,omitempty"`
	Config  map[string]any     `json:"config,omitempty"`
	Time    time.Time          `json:"time"`
}

// messageWriter is the part of kafka.Writer the sink uses.
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaSink publishes runs to a Kafka topic, keyed by run id so one run
// stays on one partition and in order.
type KafkaSink struct {
	writer messageWriter
	run    Run
}

// NewKafkaSink creates a synchronous kafka-go producer for cfg.
func NewKafkaSink(cfg models.KafkaConfig) (*KafkaSink, error) {
	if len(cfg.Brokers) == 0 {
		return nil, errors.New("kafka brokers are not set (upload.kafka.brokers)")
	}
	if cfg.Topic == "" {
		return nil, errors.New("kafka topic is not set (upload.kafka.topic)")
	}
	return &KafkaSink{
		writer: &kafka.Writer{
			Addr:         kafka.TCP(cfg.Brokers...),
			Topic:        cfg.Topic,
			Balancer:     &kafka.Hash{},
			RequiredAcks: kafka.RequireAll,
			Async:        false,
			BatchTimeout: 10 * time.Millisecond,
		},
	}, nil
}

func (s *KafkaSink) Init(ctx context.Context, run Run) error {
	s.run = run
	return s.send(ctx, KafkaMessage{Type: MessageStart, Config: run.Config})
}

func (s *KafkaSink) Log(ctx context.Context, step int, values map[string]float64) error {
	return s.send(ctx, KafkaMessage{Type: MessageStep, Step: &step, Metrics: values})
}

func (s *KafkaSink) Finish(ctx context.Context) error {
	err := s.send(ctx, KafkaMessage{Type: MessageFinish})
	if cerr := s.writer.Close(); err == nil {
		err = cerr
	}
	return err
}

func (s *KafkaSink) send(ctx context.Context, msg KafkaMessage) error {
	msg.RunID = s.run.ID
	msg.Project = s.run.Project
	msg.Run = s.run.Name
	msg.Time = time.Now().UTC()

	value, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("failed to encode %s message: %w", msg.Type, err)
	}
	return s.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(s.run.ID),
		Value: value,
		Headers: []kafka.Header{
			{Key: HeaderProducer, Value: []byte(buildinfo.UserAgent())},
		},
	})
}
