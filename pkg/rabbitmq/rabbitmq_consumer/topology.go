package rabbitmq_consumer

import (
	"fmt"

	"github.com/apeiron-tech/Immoxperts-sub000/pkg/rabbitmq/rabbitmq_common"

	amqp "github.com/rabbitmq/amqp091-go"
)

// declareTopology объявляет очередь, обменник, привязку и инфраструктуру ретраев
func declareTopology(ch *amqp.Channel, cfg ConsumerConfig, logger rabbitmq_common.Logger) error {
	if cfg.PrefetchCount > 0 {
		if err := ch.Qos(cfg.PrefetchCount, 0, false); err != nil {
			return fmt.Errorf("failed to set QoS: %w", err)
		}
	}

	queueArgs := amqp.Table{}
	for k, v := range cfg.QueueArgs {
		queueArgs[k] = v
	}
	if cfg.EnableRetryMechanism {
		// отклоненные сообщения уходят на ожидание в retry-обменник
		queueArgs["x-dead-letter-exchange"] = cfg.RetryExchange
	}

	if cfg.DeclareQueue {
		logger.Debug("Declaring queue", "name", cfg.QueueName, "durable", cfg.DurableQueue)
		if _, err := ch.QueueDeclare(cfg.QueueName, cfg.DurableQueue, false, false, false, queueArgs); err != nil {
			return fmt.Errorf("failed to declare queue '%s': %w", cfg.QueueName, err)
		}
	}

	if cfg.DeclareExchangeForBind {
		logger.Debug("Declaring exchange", "name", cfg.ExchangeNameForBind, "type", cfg.ExchangeTypeForBind)
		err := ch.ExchangeDeclare(cfg.ExchangeNameForBind, cfg.ExchangeTypeForBind, cfg.DurableExchangeForBind, false, false, false, nil)
		if err != nil {
			return fmt.Errorf("failed to declare exchange '%s': %w", cfg.ExchangeNameForBind, err)
		}
	}

	if cfg.ExchangeNameForBind != "" {
		logger.Debug("Binding queue", "queue", cfg.QueueName, "exchange", cfg.ExchangeNameForBind, "routing_key", cfg.RoutingKeyForBind)
		if err := ch.QueueBind(cfg.QueueName, cfg.RoutingKeyForBind, cfg.ExchangeNameForBind, false, nil); err != nil {
			return fmt.Errorf("failed to bind queue '%s' to '%s': %w", cfg.QueueName, cfg.ExchangeNameForBind, err)
		}
	}

	if !cfg.EnableRetryMechanism {
		return nil
	}

	if err := ch.ExchangeDeclare(cfg.FinalDLXExchange, "direct", true, false, false, false, nil); err != nil {
		return fmt.Errorf("failed to declare final DLX '%s': %w", cfg.FinalDLXExchange, err)
	}
	if _, err := ch.QueueDeclare(cfg.FinalDLQ, true, false, false, false, nil); err != nil {
		return fmt.Errorf("failed to declare final DLQ '%s': %w", cfg.FinalDLQ, err)
	}
	if err := ch.QueueBind(cfg.FinalDLQ, cfg.FinalDLQRoutingKey, cfg.FinalDLXExchange, false, nil); err != nil {
		return fmt.Errorf("failed to bind final DLQ: %w", err)
	}

	if err := ch.ExchangeDeclare(cfg.RetryExchange, "fanout", true, false, false, false, nil); err != nil {
		return fmt.Errorf("failed to declare retry exchange '%s': %w", cfg.RetryExchange, err)
	}
	// после TTL сообщение возвращается в основной обменник с исходным ключом
	_, err := ch.QueueDeclare(cfg.RetryQueue, true, false, false, false, amqp.Table{
		"x-message-ttl":          int32(cfg.RetryTTL),
		"x-dead-letter-exchange": cfg.ExchangeNameForBind,
	})
	if err != nil {
		return fmt.Errorf("failed to declare retry queue '%s': %w", cfg.RetryQueue, err)
	}
	if err := ch.QueueBind(cfg.RetryQueue, "", cfg.RetryExchange, false, nil); err != nil {
		return fmt.Errorf("failed to bind retry queue: %w", err)
	}

	logger.Debug("Retry topology declared", "retry_queue", cfg.RetryQueue, "final_dlq", cfg.FinalDLQ)
	return nil
}

// deathCount - сколько раз сообщение было отклонено из queueName (заголовок x-death)
func deathCount(headers amqp.Table, queueName string) int64 {
	deaths, ok := headers["x-death"].([]interface{})
	if !ok {
		return 0
	}
	for _, death := range deaths {
		tbl, ok := death.(amqp.Table)
		if !ok {
			continue
		}
		if queue, _ := tbl["queue"].(string); queue != queueName {
			continue
		}
		if count, ok := tbl["count"].(int64); ok {
			return count
		}
	}
	return 0
}
