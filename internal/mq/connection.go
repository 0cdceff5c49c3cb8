package mq

import (
	"context"
	"fmt"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// alertExchangeKind routes alert events by routing key
const alertExchangeKind = "topic"

// Connection is the broker link used for alert fan-out
type Connection struct {
	conn   *amqp.Connection
	logger *zap.Logger
}

// NewConnection dials the broker and closes it when the app stops
func NewConnection(lc fx.Lifecycle, logger *zap.Logger, url string) (*Connection, error) {
	broker := redactURL(url)
	logger = logger.With(zap.String("broker", broker))
	logger.Info("connecting to rabbitmq for alert fan-out")

	conn, err := amqp.Dial(url)
	if err != nil {
		logger.Error("rabbitmq connection failed", zap.Error(err))
		return nil, fmt.Errorf("cannot connect to rabbitmq at %s (unset RABBITMQ_URL to disable alert fan-out): %w", broker, err)
	}

	mqConn := &Connection{conn: conn, logger: logger}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			logger.Info("rabbitmq connection established")
			return nil
		},
		OnStop: func(ctx context.Context) error {
			if err := conn.Close(); err != nil {
				logger.Error("failed to close rabbitmq connection", zap.Error(err))
				return err
			}
			logger.Info("rabbitmq connection closed")
			return nil
		},
	})

	return mqConn, nil
}

// AlertChannel opens a channel with the durable alert exchange declared on it
func (c *Connection) AlertChannel(exchange string) (*amqp.Channel, error) {
	if exchange == "" {
		return nil, fmt.Errorf("alert exchange name is empty")
	}

	ch, err := c.conn.Channel()
	if err != nil {
		return nil, fmt.Errorf("failed to create channel: %w", err)
	}

	err = ch.ExchangeDeclare(
		exchange,
		alertExchangeKind,
		true,  // durable
		false, // auto-deleted
		false, // internal
		false, // no-wait
		nil,   // arguments
	)
	if err != nil {
		ch.Close()
		return nil, fmt.Errorf("failed to declare exchange %s: %w", exchange, err)
	}

	c.logger.Info("alert exchange declared",
		zap.String("exchange", exchange),
		zap.String("kind", alertExchangeKind))

	return ch, nil
}

// redactURL returns host, port and vhost of an AMQP URL without credentials
func redactURL(url string) string {
	uri, err := amqp.ParseURI(url)
	if err != nil {
		return "invalid url"
	}
	return fmt.Sprintf("%s://%s:%d vhost=%s", uri.Scheme, uri.Host, uri.Port, uri.Vhost)
}
