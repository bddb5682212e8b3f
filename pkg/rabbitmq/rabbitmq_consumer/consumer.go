package rabbitmq_consumer

import (
	"context"
	"fmt"
	"sync"

	"github.com/apeiron-tech/Immoxperts-sub000/pkg/rabbitmq/rabbitmq_common"
	"github.com/apeiron-tech/Immoxperts-sub000/pkg/rabbitmq/rabbitmq_producer"

	amqp "github.com/rabbitmq/amqp091-go"
)

// MessageHandler обрабатывает одно сообщение. nil - ack, ошибка - ретрай или DLQ.
type MessageHandler func(ctx context.Context, delivery amqp.Delivery) error

// Consumer раздает сообщения обработчику, каждое в своей горутине
type Consumer struct {
	config     ConsumerConfig
	connection *amqp.Connection
	channel    *amqp.Channel
	handler    MessageHandler
	dlx        *rabbitmq_producer.Publisher
	wg         sync.WaitGroup

	Logger rabbitmq_common.Logger
}

func NewConsumer(cfg ConsumerConfig, handler MessageHandler, connManager *rabbitmq_common.ConnectionManager) (*Consumer, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("consumer: invalid config: %w", err)
	}
	if handler == nil {
		return nil, fmt.Errorf("consumer: message handler is required")
	}
	if connManager == nil {
		return nil, fmt.Errorf("consumer: connection manager cannot be nil")
	}
	logger := cfg.Logger
	if logger == nil {
		logger = rabbitmq_common.NewNoopLogger()
	}

	conn, ch, err := connManager.GetChannel()
	if err != nil {
		return nil, fmt.Errorf("consumer: failed to get channel from manager: %w", err)
	}
	if err := declareTopology(ch, cfg, logger); err != nil {
		_ = ch.Close()
		return nil, fmt.Errorf("consumer: %w", err)
	}

	c := &Consumer{
		config:     cfg,
		connection: conn,
		channel:    ch,
		handler:    handler,
		Logger:     logger,
	}

	if cfg.EnableRetryMechanism {
		c.dlx, err = rabbitmq_producer.NewPublisher(rabbitmq_producer.PublisherConfig{
			Config:       cfg.Config,
			ExchangeName: cfg.FinalDLXExchange,
			Logger:       logger,
		}, connManager)
		if err != nil {
			_ = ch.Close()
			return nil, fmt.Errorf("consumer: failed to create final DLX publisher: %w", err)
		}
	}

	return c, nil
}

// StartConsuming блокирует до отмены ctx (nil) или закрытия соединения брокером (ошибка)
func (c *Consumer) StartConsuming(ctx context.Context) error {
	if c.channel == nil || c.connection == nil || c.connection.IsClosed() {
		return fmt.Errorf("consumer: not connected")
	}

	msgs, err := c.channel.Consume(c.config.QueueName, c.config.ConsumerTag, false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("consumer: failed to consume from '%s': %w", c.config.QueueName, err)
	}
	c.Logger.Info("Waiting for messages", "queue", c.config.QueueName)

	notifyClose := c.connection.NotifyClose(make(chan *amqp.Error, 1))

	for {
		select {
		case <-ctx.Done():
			c.Logger.Info("Context cancelled, consumer stops", "queue", c.config.QueueName)
			return nil

		case amqpErr := <-notifyClose:
			if amqpErr == nil {
				return nil
			}
			c.Logger.Error(amqpErr, "Connection closed by broker", "queue", c.config.QueueName)
			return amqpErr

		case d, ok := <-msgs:
			if !ok {
				c.Logger.Info("Deliveries channel closed", "queue", c.config.QueueName)
				return nil
			}
			c.wg.Add(1)
			go func(delivery amqp.Delivery) {
				defer c.wg.Done()
				c.process(ctx, delivery)
			}(d)
		}
	}
}

func (c *Consumer) process(ctx context.Context, d amqp.Delivery) {
	processErr := c.handler(ctx, d)
	if processErr == nil {
		_ = d.Ack(false)
		return
	}

	c.Logger.Error(processErr, "Handler failed", "delivery_tag", d.DeliveryTag)

	if !c.config.EnableRetryMechanism {
		_ = d.Nack(false, false)
		return
	}

	deaths := deathCount(d.Headers, c.config.QueueName)
	if deaths < int64(c.config.MaxRetries) {
		c.Logger.Info("Message sent to retry", "delivery_tag", d.DeliveryTag, "death_count", deaths)
		_ = d.Nack(false, false)
		return
	}

	// публикация в DLX не должна зависеть от отмены ctx сервиса
	err := c.dlx.Publish(context.WithoutCancel(ctx), c.config.FinalDLQRoutingKey, amqp.Publishing{
		ContentType:  d.ContentType,
		Body:         d.Body,
		Headers:      d.Headers,
		DeliveryMode: amqp.Persistent,
	})
	if err != nil {
		c.Logger.Error(err, "Failed to publish to final DLX, message goes to retry again", "delivery_tag", d.DeliveryTag)
		_ = d.Nack(false, false)
		return
	}
	c.Logger.Warn("Max retries reached, message moved to final DLQ", "delivery_tag", d.DeliveryTag)
	_ = d.Ack(false)
}

// Close ждет обработчиков и закрывает канал
func (c *Consumer) Close() error {
	c.wg.Wait()

	var firstErr error
	if c.dlx != nil {
		if err := c.dlx.Close(); err != nil {
			firstErr = err
		}
	}
	if c.channel != nil {
		if err := c.channel.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
		c.channel = nil
	}
	c.Logger.Info("Consumer closed", "queue", c.config.QueueName)
	return firstErr
}
