package kafka

import (
	"encoding/json"
	"time"

	"github.com/confluentinc/confluent-kafka-go/kafka"
	"github.com/google/uuid"
)

const (
	nullOffset = -1
)

// Event is the envelope every domain event is published in. Payloads are
// JSON so downstream consumers need no schema registry.
type Event struct {
	ID          string          `json:"id"`
	Type        string          `json:"type"`
	AggregateID string          `json:"aggregate_id"`
	OccurredAt  time.Time       `json:"occurred_at"`
	Data        json.RawMessage `json:"data"`
}

type Producer interface {
	ProduceEvent(topic, eventType, aggregateID string, data any) (int64, error)
	Close()
}

type jsonProducer struct {
	producer *kafka.Producer
}

func NewProducer(kafkaURL string) (Producer, error) {
	p, err := kafka.NewProducer(&kafka.ConfigMap{"bootstrap.servers": kafkaURL})
	if err != nil {
		return nil, err
	}
	return &jsonProducer{producer: p}, nil
}

func (p *jsonProducer) ProduceEvent(topic, eventType, aggregateID string, data any) (int64, error) {
	kafkaChan := make(chan kafka.Event)
	defer close(kafkaChan)

	raw, err := json.Marshal(data)
	if err != nil {
		return nullOffset, err
	}
	payload, err := json.Marshal(Event{
		ID:          uuid.New().String(),
		Type:        eventType,
		AggregateID: aggregateID,
		OccurredAt:  time.Now(),
		Data:        raw,
	})
	if err != nil {
		return nullOffset, err
	}

	if err = p.producer.Produce(&kafka.Message{
		TopicPartition: kafka.TopicPartition{Topic: &topic},
		Key:            []byte(aggregateID),
		Value:          payload,
	}, kafkaChan); err != nil {
		return nullOffset, err
	}

	e := <-kafkaChan
	switch ev := e.(type) {
	case *kafka.Message:
		if ev.TopicPartition.Error != nil {
			return nullOffset, ev.TopicPartition.Error
		}
		return int64(ev.TopicPartition.Offset), nil
	case kafka.Error:
		return nullOffset, ev
	}
	return nullOffset, nil
}

func (p *jsonProducer) Close() {
	p.producer.Close()
}
