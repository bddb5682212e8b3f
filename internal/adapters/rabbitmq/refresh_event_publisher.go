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

	amqp "github.com/rabbitmq/amqp091-go"
)

// StreetIndexRefreshedDTO - тело события StreetIndexRefreshed v1
type StreetIndexRefreshedDTO struct {
	Trigger    string    `json:"trigger"`
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`
	DurationMs int64     `json:"duration_ms"`
	Success    bool      `json:"success"`
	Error      string    `json:"error,omitempty"`
}

// Publisher - то, что адаптеру нужно от rabbitmq_producer.Publisher
type Publisher interface {
	Publish(ctx context.Context, routingKey string, msg amqp.Publishing) error
}

// RefreshEventPublisher сообщает об окончании обновления индекса
type RefreshEventPublisher struct {
	producer   Publisher
	routingKey string
}

func NewRefreshEventPublisher(producer Publisher, routingKey string) (*RefreshEventPublisher, error) {
	if producer == nil {
		return nil, fmt.Errorf("rabbitmq adapter: producer cannot be nil")
	}
	if routingKey == "" {
		return nil, fmt.Errorf("rabbitmq adapter: routingKey cannot be empty")
	}
	return &RefreshEventPublisher{producer: producer, routingKey: routingKey}, nil
}

func toRefreshedDTO(report domain.RefreshReport) StreetIndexRefreshedDTO {
	dto := StreetIndexRefreshedDTO{
		Trigger:    report.Trigger,
		StartedAt:  report.StartedAt.UTC(),
		FinishedAt: report.FinishedAt.UTC(),
		DurationMs: max(report.Duration().Milliseconds(), 0),
		Success:    report.Succeeded(),
	}
	if report.Err != nil {
		dto.Error = report.Err.Error()
	}
	return dto
}

// ReportRefresh реализует RefreshReporterPort
func (p *RefreshEventPublisher) ReportRefresh(ctx context.Context, report domain.RefreshReport) error {
	adapterLogger := contextkeys.LoggerFromContext(ctx).WithFields(port.Fields{
		"component":   "RefreshEventPublisher",
		"routing_key": p.routingKey,
	})

	body, err := json.Marshal(toRefreshedDTO(report))
	if err != nil {
		return fmt.Errorf("rabbitmq adapter: failed to encode refresh event: %w", err)
	}
	// исходящее событие проверяется той же схемой, что и у потребителей
	if err := contracts.ValidateEvent(contracts.EventStreetIndexRefreshed, contracts.EventVersionV1, body); err != nil {
		return fmt.Errorf("rabbitmq adapter: refresh event does not match its schema: %w", err)
	}

	msg := amqp.Publishing{
		ContentType:  "application/json",
		Body:         body,
		DeliveryMode: amqp.Persistent,
		Timestamp:    time.Now(),
		Headers: amqp.Table{
			constants.HeaderEventType:    contracts.EventStreetIndexRefreshed,
			constants.HeaderEventVersion: contracts.EventVersionV1,
			constants.HeaderTraceID:      contextkeys.TraceIDOrNew(ctx),
		},
	}

	publishCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	if err := p.producer.Publish(publishCtx, p.routingKey, msg); err != nil {
		adapterLogger.Error("Failed to publish refresh event", err, nil)
		return fmt.Errorf("rabbitmq adapter: failed to publish refresh event: %w", err)
	}

	adapterLogger.Info("Refresh event published", port.Fields{"success": report.Succeeded()})
	return nil
}
