package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/NeuralTrust/PromptGuard/pkg/domain/decision"
	"github.com/NeuralTrust/PromptGuard/pkg/domain/telemetry"
	"github.com/confluentinc/confluent-kafka-go/kafka"
	"github.com/mitchellh/mapstructure"
)

const (
	ExporterName = "kafka"
)

type Config struct {
	Host  string `mapstructure:"host"`
	Port  string `mapstructure:"port"`
	Topic string `mapstructure:"topic"`
}

// Producer is the subset of *kafka.Producer the exporter needs.
type Producer interface {
	Produce(msg *kafka.Message, deliveryChan chan kafka.Event) error
	Flush(timeoutMs int) int
	Close()
}

type ProducerFactory func(cfg *kafka.ConfigMap) (Producer, error)

func defaultProducerFactory(cfg *kafka.ConfigMap) (Producer, error) {
	return kafka.NewProducer(cfg)
}

type Exporter struct {
	cfg         Config
	producer    Producer
	newProducer ProducerFactory
}

type Option func(*Exporter)

func WithProducerFactory(f ProducerFactory) Option {
	return func(e *Exporter) {
		e.newProducer = f
	}
}

func NewKafkaExporter(opts ...Option) *Exporter {
	e := &Exporter{newProducer: defaultProducerFactory}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

func (p *Exporter) Name() string {
	return ExporterName
}

func decodeConfig(settings map[string]interface{}) (Config, error) {
	var conf Config
	if err := mapstructure.WeakDecode(settings, &conf); err != nil {
		return conf, fmt.Errorf("invalid kafka config: %w", err)
	}
	return conf, nil
}

func (p *Exporter) ValidateConfig(settings map[string]interface{}) error {
	conf, err := decodeConfig(settings)
	if err != nil {
		return err
	}
	if conf.Host == "" {
		return errors.New("kafka host is required")
	}
	if conf.Port == "" {
		return errors.New("kafka port is required")
	}
	if conf.Topic == "" {
		return errors.New("kafka topic is required")
	}
	return nil
}

func (p *Exporter) WithSettings(settings map[string]interface{}) (telemetry.Exporter, error) {
	conf, err := decodeConfig(settings)
	if err != nil {
		return nil, err
	}
	producer, err := p.newProducer(&kafka.ConfigMap{
		"bootstrap.servers": fmt.Sprintf("%s:%s", conf.Host, conf.Port),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create kafka producer: %w", err)
	}
	return &Exporter{
		cfg:         conf,
		producer:    producer,
		newProducer: p.newProducer,
	}, nil
}

// Handle produces the decision keyed by session id, so one session's
// decisions stay ordered within a partition, and waits for delivery.
func (p *Exporter) Handle(ctx context.Context, d *decision.Decision) error {
	if p.producer == nil {
		return errors.New("kafka producer is not initialized")
	}
	data, err := json.Marshal(d)
	if err != nil {
		return fmt.Errorf("failed to marshal decision: %w", err)
	}
	deliveryChan := make(chan kafka.Event, 1)

	err = p.producer.Produce(&kafka.Message{
		TopicPartition: kafka.TopicPartition{Topic: &p.cfg.Topic, Partition: kafka.PartitionAny},
		Key:            []byte(d.SessionID),
		Value:          data,
	}, deliveryChan)
	if err != nil {
		return fmt.Errorf("failed to produce message: %w", err)
	}

	select {
	case e := <-deliveryChan:
		m, ok := e.(*kafka.Message)
		if !ok {
			return fmt.Errorf("unexpected delivery event: %v", e)
		}
		if m.TopicPartition.Error != nil {
			return fmt.Errorf("delivery failed: %w", m.TopicPartition.Error)
		}
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (p *Exporter) Close() {
	if p.producer != nil {
		p.producer.Flush(5000)
		p.producer.Close()
	}
}
