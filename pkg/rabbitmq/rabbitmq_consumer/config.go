package rabbitmq_consumer

import (
	"fmt"

	"github.com/apeiron-tech/Immoxperts-sub000/pkg/rabbitmq/rabbitmq_common"

	amqp "github.com/rabbitmq/amqp091-go"
)

// ConsumerConfig - очередь, ее привязка к обменнику и механизм ретраев
type ConsumerConfig struct {
	rabbitmq_common.Config

	QueueName    string
	DeclareQueue bool
	DurableQueue bool
	QueueArgs    amqp.Table

	// если пусто, очередь не привязывается
	ExchangeNameForBind    string
	ExchangeTypeForBind    string
	DeclareExchangeForBind bool
	DurableExchangeForBind bool
	RoutingKeyForBind      string

	PrefetchCount int
	ConsumerTag   string

	// Ретраи: основная очередь -> RetryExchange -> RetryQueue (TTL) -> основной обменник.
	// После MaxRetries сообщение уходит в FinalDLXExchange/FinalDLQ.
	EnableRetryMechanism bool
	RetryExchange        string
	RetryQueue           string
	RetryTTL             int // мс
	FinalDLXExchange     string
	FinalDLQ             string
	FinalDLQRoutingKey   string
	MaxRetries           int

	Logger rabbitmq_common.Logger
}

func (c ConsumerConfig) Validate() error {
	if err := c.Config.Validate(); err != nil {
		return err
	}
	if c.QueueName == "" {
		return fmt.Errorf("consumer: queue name is required")
	}
	if c.DeclareExchangeForBind && c.ExchangeTypeForBind == "" {
		return fmt.Errorf("consumer: exchange type is required to declare exchange '%s'", c.ExchangeNameForBind)
	}
	if c.EnableRetryMechanism {
		if c.ExchangeNameForBind == "" {
			return fmt.Errorf("consumer: retry mechanism requires a bound exchange")
		}
		if c.RetryExchange == "" || c.RetryQueue == "" || c.FinalDLXExchange == "" || c.FinalDLQ == "" {
			return fmt.Errorf("consumer: retry exchange/queue and final DLX/DLQ names are required")
		}
		if c.RetryTTL <= 0 || c.MaxRetries < 0 {
			return fmt.Errorf("consumer: retry TTL must be positive and max retries non-negative")
		}
	}
	return nil
}
