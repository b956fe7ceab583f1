package events

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/IBM/sarama"
	"github.com/courtside-app/courtside-server/models"
)

const (
	EventGameUpdated   = "game.updated"
	EventGameCompleted = "game.completed"
)

// GameEvent is the message published for every successful game mutation.
// AffectedGameIDs lists downstream games touched by the same cascade.
type GameEvent struct {
	Type            string       `json:"type"`
	Game            *models.Game `json:"game"`
	AffectedGameIDs []string     `json:"affected_game_ids,omitempty"`
	Warnings        []string     `json:"warnings,omitempty"`
	OccurredAt      time.Time    `json:"occurred_at"`
}

// Publisher emits game events for downstream consumers (notification
// workers, analytics). Publishing is asynchronous and never blocks or
// fails the request that produced the event.
type Publisher interface {
	PublishGameEvent(event GameEvent)
	Close() error
}

type kafkaPublisher struct {
	producer sarama.AsyncProducer
	topic    string
	logger   *slog.Logger
	wg       sync.WaitGroup
}

// NewKafkaPublisher connects an async producer to the given brokers.
func NewKafkaPublisher(brokers []string, topic string, logger *slog.Logger) (Publisher, error) {
	cfg := sarama.NewConfig()
	cfg.Producer.RequiredAcks = sarama.WaitForLocal
	cfg.Producer.Compression = sarama.CompressionSnappy
	cfg.Producer.Flush.Frequency = 100 * time.Millisecond
	cfg.Producer.Return.Successes = false
	cfg.Producer.Return.Errors = true

	producer, err := sarama.NewAsyncProducer(brokers, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create kafka producer: %w", err)
	}

	p := &kafkaPublisher{producer: producer, topic: topic, logger: logger}
	p.wg.Add(1)
	go p.drainErrors()
	return p, nil
}

func (p *kafkaPublisher) drainErrors() {
	defer p.wg.Done()
	for err := range p.producer.Errors() {
		p.logger.Error("failed to publish game event",
			slog.String("topic", err.Msg.Topic),
			slog.Any("error", err.Err))
	}
}

func (p *kafkaPublisher) PublishGameEvent(event GameEvent) {
	if event.OccurredAt.IsZero() {
		event.OccurredAt = time.Now()
	}
	payload, err := json.Marshal(event)
	if err != nil {
		p.logger.Error("failed to marshal game event",
			slog.String("type", event.Type),
			slog.Any("error", err))
		return
	}

	msg := &sarama.ProducerMessage{
		Topic: p.topic,
		Value: sarama.ByteEncoder(payload),
	}
	if event.Game != nil {
		// Key by game id so consumers see each game's events in order.
		msg.Key = sarama.StringEncoder(event.Game.ID)
	}
	p.producer.Input() <- msg
}

func (p *kafkaPublisher) Close() error {
	p.producer.AsyncClose()
	p.wg.Wait()
	return nil
}

// NoopPublisher is used when Kafka is not configured.
type NoopPublisher struct{}

func (NoopPublisher) PublishGameEvent(GameEvent) {}
func (NoopPublisher) Close() error               { return nil }
