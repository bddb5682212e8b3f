package rabbitmq_producer

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/apeiron-tech/Immoxperts-sub000/pkg/rabbitmq/rabbitmq_common"

	amqp "github.com/rabbitmq/amqp091-go"
)

type PublisherConfig struct {
	rabbitmq_common.Config
	ExchangeName    string
	ExchangeType    string // direct, fanout, topic, headers
	DurableExchange bool
	ExchangeArgs    amqp.Table

	// false - обменник должен уже существовать
	DeclareExchangeIfMissing bool

	Logger rabbitmq_common.Logger
}

func (c PublisherConfig) Validate() error {
	if err := c.Config.Validate(); err != nil {
		return err
	}
	if c.DeclareExchangeIfMissing && (c.ExchangeName == "" || c.ExchangeType == "") {
		return fmt.Errorf("producer: exchange name and type are required to declare an exchange")
	}
	return nil
}

// Publisher публикует в один обменник через собственный канал.
// Канал amqp не потокобезопасен, поэтому Publish сериализуется мьютексом.
type Publisher struct {
	config     PublisherConfig
	connection *amqp.Connection
	channel    *amqp.Channel
	mu         sync.Mutex

	Logger rabbitmq_common.Logger
}

func NewPublisher(cfg PublisherConfig, connManager *rabbitmq_common.ConnectionManager) (*Publisher, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("producer: invalid config: %w", err)
	}
	if connManager == nil {
		return nil, fmt.Errorf("producer: connection manager cannot be nil")
	}
	logger := cfg.Logger
	if logger == nil {
		logger = rabbitmq_common.NewNoopLogger()
	}

	conn, ch, err := connManager.GetChannel()
	if err != nil {
		return nil, fmt.Errorf("producer: failed to get channel from manager: %w", err)
	}

	if cfg.DeclareExchangeIfMissing {
		logger.Debug("Declaring exchange", "name", cfg.ExchangeName, "type", cfg.ExchangeType)
		err = ch.ExchangeDeclare(
			cfg.ExchangeName,
			cfg.ExchangeType,
			cfg.DurableExchange,
			false, // auto-delete
			false, // internal
			false, // no-wait
			cfg.ExchangeArgs,
		)
		if err != nil {
			_ = ch.Close()
			return nil, fmt.Errorf("producer: failed to declare exchange '%s': %w", cfg.ExchangeName, err)
		}
	}

	return &Publisher{
		config:     cfg,
		connection: conn,
		channel:    ch,
		Logger:     logger,
	}, nil
}

// Publish отправляет сообщение. Пустой Timestamp заполняется текущим временем.
func (p *Publisher) Publish(ctx context.Context, routingKey string, msg amqp.Publishing) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.channel == nil || p.connection == nil || p.connection.IsClosed() {
		return fmt.Errorf("producer: not connected or channel/connection is closed")
	}
	if msg.Timestamp.IsZero() {
		msg.Timestamp = time.Now()
	}

	err := p.channel.PublishWithContext(ctx, p.config.ExchangeName, routingKey, false, false, msg)
	if err != nil {
		return fmt.Errorf("producer: failed to publish to '%s' with key '%s': %w", p.config.ExchangeName, routingKey, err)
	}
	return nil
}

// Close закрывает только канал, соединение принадлежит ConnectionManager
func (p *Publisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.channel == nil {
		return nil
	}
	err := p.channel.Close()
	p.channel = nil
	if err != nil {
		p.Logger.Error(err, "Producer: error closing channel")
		return err
	}
	p.Logger.Debug("Producer closed")
	return nil
}
