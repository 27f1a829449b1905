// Package kafka publishes check results to a Kafka topic.
package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	kafka "github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/alexanderjulianmartinez/partwatch/pkg/types"
)

type writer interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

type Publisher struct {
	w     writer
	topic string
	log   *zap.Logger
}

// NewPublisher connects lazily to brokersCSV (comma separated host:port list).
func NewPublisher(brokersCSV, topic string, log *zap.Logger) (*Publisher, error) {
	var brokers []string
	for _, b := range strings.Split(brokersCSV, ",") {
		if b = strings.TrimSpace(b); b != "" {
			brokers = append(brokers, b)
		}
	}
	if len(brokers) == 0 {
		return nil, errors.New("no kafka brokers provided")
	}
	if topic == "" {
		return nil, errors.New("kafka topic is required")
	}

	w := &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireOne,
		WriteTimeout: 5 * time.Second,
	}
	return newPublisher(w, topic, log), nil
}

func newPublisher(w writer, topic string, log *zap.Logger) *Publisher {
	if log == nil {
		log = zap.NewNop()
	}
	return &Publisher{w: w, topic: topic, log: log}
}

// Publish writes one JSON message keyed by database.table so all checks of a
// table land on the same partition.
func (p *Publisher) Publish(ctx context.Context, res types.CheckResult) error {
	value, err := json.Marshal(res)
	if err != nil {
		return fmt.Errorf("encode check result: %w", err)
	}
	msg := kafka.Message{
		Key:   []byte(res.Database + "." + res.Table),
		Value: value,
		Headers: []kafka.Header{
			{Key: "run_id", Value: []byte(res.RunID)},
			{Key: "status", Value: []byte(res.Status)},
		},
	}
	if err := p.w.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("publish to %s: %w", p.topic, err)
	}
	p.log.Debug("check result published", zap.String("topic", p.topic), zap.String("run_id", res.RunID))
	return nil
}

func (p *Publisher) Close() error {
	return p.w.Close()
}
