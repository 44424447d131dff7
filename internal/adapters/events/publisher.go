package events

import (
	"context"
	"fmt"
	"freight-match-service/internal/domain"
	"freight-match-service/internal/ports"
	"log"
	"strings"
)

// LogPublisher writes events to the process log. It is the default sink.
type LogPublisher struct{}

var _ ports.EventPublisher = LogPublisher{}

func (LogPublisher) Publish(_ context.Context, e domain.Event) error {
	log.Printf("event type=%s key=%s shipment=%s trip=%s booking=%s",
		e.Type, e.Key(), e.ShipmentID, e.TripID, e.BookingID)
	return nil
}

func (LogPublisher) Close() error { return nil }

// SinkConfig selects and configures an event sink.
type SinkConfig struct {
	Sink           string // "log" (default), "kafka", "rabbitmq" or "none"
	KafkaBrokers   string
	KafkaTopic     string
	RabbitURL      string
	RabbitExchange string
}

// New builds the publisher named by cfg.Sink. "none" returns nil, which
// disables publishing.
func New(cfg SinkConfig) (ports.EventPublisher, error) {
	switch strings.ToLower(strings.TrimSpace(cfg.Sink)) {
	case "", "log":
		return LogPublisher{}, nil
	case "none":
		return nil, nil
	case "kafka":
		if cfg.KafkaBrokers == "" || cfg.KafkaTopic == "" {
			return nil, fmt.Errorf("events: kafka sink needs brokers and topic")
		}
		return NewKafkaPublisher(cfg.KafkaBrokers, cfg.KafkaTopic), nil
	case "rabbitmq":
		if cfg.RabbitURL == "" || cfg.RabbitExchange == "" {
			return nil, fmt.Errorf("events: rabbitmq sink needs url and exchange")
		}
		return NewRabbitPublisher(cfg.RabbitURL, cfg.RabbitExchange)
	default:
		return nil, fmt.Errorf("events: unknown sink %q", cfg.Sink)
	}
}
