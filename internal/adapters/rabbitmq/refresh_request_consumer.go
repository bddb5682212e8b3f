package rabbitmq

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/apeiron-tech/Immoxperts-sub000/internal/constants"
	"github.com/apeiron-tech/Immoxperts-sub000/internal/contextkeys"
	"github.com/apeiron-tech/Immoxperts-sub000/internal/contracts"
	"github.com/apeiron-tech/Immoxperts-sub000/internal/core/domain"
	"github.com/apeiron-tech/Immoxperts-sub000/internal/core/port"
	"github.com/apeiron-tech/Immoxperts-sub000/internal/core/port/usecases_port"
	"github.com/apeiron-tech/Immoxperts-sub000/pkg/rabbitmq/rabbitmq_common"
	"github.com/apeiron-tech/Immoxperts-sub000/pkg/rabbitmq/rabbitmq_consumer"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"
)

// IndexRefreshRequestedDTO - тело события IndexRefreshRequested v1
type IndexRefreshRequestedDTO struct {
	RequestedAt time.Time `json:"requested_at"`
	RequestedBy string    `json:"requested_by,omitempty"`
	Reason      string    `json:"reason,omitempty"`
}

type refreshConsumer interface {
	StartConsuming(ctx context.Context) error
	Close() error
}

// RefreshRequestConsumerAdapter слушает запросы на обновление индекса и запускает use case.
// Невалидные сообщения не ретраятся, ошибки обновления уходят в цикл ретраев.
type RefreshRequestConsumerAdapter struct {
	consumer refreshConsumer
	useCase  usecases_port.RefreshStreetIndexUseCase
	logger   port.LoggerPort
}

func NewRefreshRequestConsumerAdapter(
	consumerCfg rabbitmq_consumer.ConsumerConfig,
	useCase usecases_port.RefreshStreetIndexUseCase,
	logger port.LoggerPort,
	connManager *rabbitmq_common.ConnectionManager,
) (*RefreshRequestConsumerAdapter, error) {
	adapter := &RefreshRequestConsumerAdapter{useCase: useCase, logger: logger}

	pkgLogger := logger.WithFields(port.Fields{"component": "rabbitmq_consumer", "consumer_tag": consumerCfg.ConsumerTag})
	consumerCfg.Logger = NewPkgLoggerBridge(pkgLogger)

	consumer, err := rabbitmq_consumer.NewConsumer(consumerCfg, adapter.handleMessage, connManager)
	if err != nil {
		return nil, fmt.Errorf("failed to create RabbitMQ consumer for refresh requests: %w", err)
	}
	adapter.consumer = consumer
	return adapter, nil
}

func (a *RefreshRequestConsumerAdapter) handleMessage(ctx context.Context, d amqp.Delivery) error {
	traceID, _ := d.Headers[constants.HeaderTraceID].(string)
	if traceID == "" {
		traceID = uuid.New().String()
	}

	msgLogger := a.logger.WithFields(port.Fields{
		"trace_id":     traceID,
		"delivery_tag": d.DeliveryTag,
		"adapter_name": "RefreshRequestConsumerAdapter",
	})
	ctx = contextkeys.ContextWithLogger(ctx, msgLogger)
	ctx = contextkeys.ContextWithTraceID(ctx, traceID)

	request, err := decodeRefreshRequest(d)
	if err != nil {
		// повтор не поможет, подтверждаем и забываем
		msgLogger.Error("Invalid refresh request, message dropped", err, port.Fields{"body": string(d.Body)})
		return nil
	}

	msgLogger.Info("Refresh requested", port.Fields{
		"requested_by": request.RequestedBy,
		"reason":       request.Reason,
		"requested_at": request.RequestedAt,
	})

	if err := a.useCase.Execute(ctx, domain.RefreshTriggerEvent); err != nil {
		return fmt.Errorf("refresh for trace %s failed: %w", traceID, err)
	}
	return nil
}

// decodeRefreshRequest проверяет сообщение по схеме. Без заголовков считаем, что это v1.
func decodeRefreshRequest(d amqp.Delivery) (*IndexRefreshRequestedDTO, error) {
	eventType, _ := d.Headers[constants.HeaderEventType].(string)
	if eventType == "" {
		eventType = contracts.EventIndexRefreshRequested
	}
	eventVersion, _ := d.Headers[constants.HeaderEventVersion].(string)
	if eventVersion == "" {
		eventVersion = contracts.EventVersionV1
	}
	if eventType != contracts.EventIndexRefreshRequested {
		return nil, fmt.Errorf("unexpected event type %q", eventType)
	}

	if err := contracts.ValidateEvent(eventType, eventVersion, d.Body); err != nil {
		return nil, err
	}

	var dto IndexRefreshRequestedDTO
	if err := json.Unmarshal(d.Body, &dto); err != nil {
		return nil, fmt.Errorf("failed to decode refresh request: %w", err)
	}
	return &dto, nil
}

// Start реализует EventListenerPort
func (a *RefreshRequestConsumerAdapter) Start(ctx context.Context) error {
	return a.consumer.StartConsuming(ctx)
}

// Close реализует EventListenerPort
func (a *RefreshRequestConsumerAdapter) Close() error {
	return a.consumer.Close()
}
