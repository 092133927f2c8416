package config

import (
	"log/slog"
	"strings"

	"github.com/SAP-F-2025/exam-session-client/internal/events"
)

// EventConfig holds configuration for event publishing
type EventConfig struct {
	Enabled      bool
	Publisher    string `validate:"oneof=gochannel kafka mock"`
	KafkaBrokers string
	Topic        string `validate:"required"`
}

// GetKafkaBrokers returns Kafka brokers as a slice
func (c *EventConfig) GetKafkaBrokers() []string {
	return splitList(c.KafkaBrokers)
}

// CreateEventPublisher creates the publisher the session controllers use. The
// local bus always receives events so the UI stream keeps working; kafka adds a
// remote copy for proctoring and analytics.
func (c *EventConfig) CreateEventPublisher(bus *events.Bus, logger *slog.Logger) (events.EventPublisher, error) {
	if !c.Enabled {
		logger.Info("Event publishing disabled, using mock publisher")
		return events.NewMockEventPublisher(logger), nil
	}

	switch strings.ToLower(c.Publisher) {
	case "gochannel":
		return bus, nil
	case "kafka":
		logger.Info("Creating Kafka event publisher",
			"brokers", c.KafkaBrokers,
			"topic", c.Topic)

		kafkaPublisher, err := events.NewKafkaEventPublisher(events.PublisherConfig{
			KafkaBrokers: c.GetKafkaBrokers(),
			TopicName:    c.Topic,
			Logger:       logger,
		})
		if err != nil {
			return nil, err
		}
		return events.NewFanoutPublisher(bus, kafkaPublisher), nil
	case "mock":
		logger.Info("Using mock event publisher")
		return events.NewMockEventPublisher(logger), nil
	default:
		logger.Warn("Unknown event publisher type, falling back to local bus", "publisher", c.Publisher)
		return bus, nil
	}
}
