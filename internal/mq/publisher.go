package mq

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
)

// Alert sources carried in AlertEvent.Source
const (
	SourceManual = "manual"
	SourceSensor = "sensor"
)

// AlertEvent is published for every line appended to the alert log
type AlertEvent struct {
	ID       string    `json:"id"`
	Source   string    `json:"source"`
	Line     string    `json:"line"`
	Value    *float64  `json:"value,omitempty"`
	LoggedAt time.Time `json:"logged_at"`
}

// NewAlertEvent stamps an event with a fresh id and the current time
func NewAlertEvent(source, line string, value *float64) AlertEvent {
	return AlertEvent{
		ID:       uuid.New().String(),
		Source:   source,
		Line:     line,
		Value:    value,
		LoggedAt: time.Now().UTC(),
	}
}

// Encode marshals the event body
func (e AlertEvent) Encode() ([]byte, error) {
	body, err := json.Marshal(e)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal alert event: %w", err)
	}
	return body, nil
}

// Publisher handles alert publishing to RabbitMQ
type Publisher struct {
	channel    *amqp.Channel
	exchange   string
	routingKey string
	logger     *zap.Logger
}

// NewPublisher creates a new RabbitMQ publisher
func NewPublisher(conn *Connection, exchange, routingKey string, logger *zap.Logger) (*Publisher, error) {
	ch, err := conn.AlertChannel(exchange)
	if err != nil {
		return nil, err
	}

	return &Publisher{
		channel:    ch,
		exchange:   exchange,
		routingKey: routingKey,
		logger:     logger,
	}, nil
}

// PublishAlert publishes one alert event
func (p *Publisher) PublishAlert(ctx context.Context, event AlertEvent) error {
	body, err := event.Encode()
	if err != nil {
		return err
	}

	err = p.channel.PublishWithContext(
		ctx,
		p.exchange,
		p.routingKey,
		false, // mandatory
		false, // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			MessageId:    event.ID,
			Timestamp:    event.LoggedAt,
			Body:         body,
			DeliveryMode: amqp.Persistent,
		},
	)
	if err != nil {
		return fmt.Errorf("failed to publish alert event: %w", err)
	}

	p.logger.Debug("published alert event",
		zap.String("routing_key", p.routingKey),
		zap.String("event_id", event.ID),
		zap.String("source", event.Source),
	)

	return nil
}

// Close closes the publisher channel
func (p *Publisher) Close() error {
	if p.channel != nil {
		return p.channel.Close()
	}
	return nil
}
