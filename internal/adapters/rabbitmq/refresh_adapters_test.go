package rabbitmq

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"testing"
	"time"

	logger_adapter "github.com/apeiron-tech/Immoxperts-sub000/internal/adapters/logger"
	"github.com/apeiron-tech/Immoxperts-sub000/internal/constants"
	"github.com/apeiron-tech/Immoxperts-sub000/internal/contextkeys"
	"github.com/apeiron-tech/Immoxperts-sub000/internal/contracts"
	"github.com/apeiron-tech/Immoxperts-sub000/internal/core/domain"
	"github.com/apeiron-tech/Immoxperts-sub000/internal/core/port"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func discardLogger() port.LoggerPort {
	return logger_adapter.NewSlogAdapter(logger_adapter.SlogConfig{Writer: io.Discard})
}

type fakeRefreshUseCase struct {
	triggers []string
	traceIDs []string
	err      error
}

func (f *fakeRefreshUseCase) Execute(ctx context.Context, trigger string) error {
	f.triggers = append(f.triggers, trigger)
	f.traceIDs = append(f.traceIDs, contextkeys.TraceIDFromContext(ctx))
	return f.err
}

type fakePublisher struct {
	routingKey string
	msg        amqp.Publishing
	err        error
}

func (f *fakePublisher) Publish(_ context.Context, routingKey string, msg amqp.Publishing) error {
	f.routingKey = routingKey
	f.msg = msg
	return f.err
}

func TestToFields(t *testing.T) {
	assert.Equal(t, port.Fields{"queue": "q", "attempt": 2}, toFields("queue", "q", "attempt", 2))
	assert.Equal(t, port.Fields{"queue": "q", "tail": "(MISSING)"}, toFields("queue", "q", "tail"))
	assert.Equal(t, port.Fields{"arg_0": "value"}, toFields(42, "value"))
	assert.Empty(t, toFields())
}

func TestHandleMessage_RunsRefresh(t *testing.T) {
	uc := &fakeRefreshUseCase{}
	adapter := &RefreshRequestConsumerAdapter{useCase: uc, logger: discardLogger()}

	err := adapter.handleMessage(context.Background(), amqp.Delivery{
		Headers: amqp.Table{constants.HeaderTraceID: "trace-1"},
		Body:    []byte(`{"requested_at":"2024-05-01T10:00:00Z","reason":"import finished"}`),
	})

	require.NoError(t, err)
	assert.Equal(t, []string{domain.RefreshTriggerEvent}, uc.triggers)
	assert.Equal(t, []string{"trace-1"}, uc.traceIDs)
}

func TestHandleMessage_InvalidMessageIsDropped(t *testing.T) {
	uc := &fakeRefreshUseCase{}
	adapter := &RefreshRequestConsumerAdapter{useCase: uc, logger: discardLogger()}

	for _, d := range []amqp.Delivery{
		{Body: []byte(`not json`)},
		{Body: []byte(`{"reason":"no timestamp"}`)},
		{
			Headers: amqp.Table{constants.HeaderEventType: "ListingCreatedEvent"},
			Body:    []byte(`{"requested_at":"2024-05-01T10:00:00Z"}`),
		},
	} {
		assert.NoError(t, adapter.handleMessage(context.Background(), d))
	}
	assert.Empty(t, uc.triggers)
}

func TestHandleMessage_RefreshFailureIsRetried(t *testing.T) {
	uc := &fakeRefreshUseCase{err: domain.ErrRefreshFailed}
	adapter := &RefreshRequestConsumerAdapter{useCase: uc, logger: discardLogger()}

	err := adapter.handleMessage(context.Background(), amqp.Delivery{
		Body: []byte(`{"requested_at":"2024-05-01T10:00:00Z"}`),
	})

	require.ErrorIs(t, err, domain.ErrRefreshFailed)
	require.Len(t, uc.traceIDs, 1)
	assert.Len(t, uc.traceIDs[0], 36, "trace id is generated when the header is absent")
}

func TestDecodeRefreshRequest(t *testing.T) {
	dto, err := decodeRefreshRequest(amqp.Delivery{
		Headers: amqp.Table{
			constants.HeaderEventType:    contracts.EventIndexRefreshRequested,
			constants.HeaderEventVersion: contracts.EventVersionV1,
		},
		Body: []byte(`{"requested_at":"2024-05-01T10:00:00Z","requested_by":"ops"}`),
	})
	require.NoError(t, err)
	assert.Equal(t, "ops", dto.RequestedBy)
	assert.True(t, dto.RequestedAt.Equal(time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)))

	_, err = decodeRefreshRequest(amqp.Delivery{
		Headers: amqp.Table{constants.HeaderEventVersion: "9.0.0"},
		Body:    []byte(`{"requested_at":"2024-05-01T10:00:00Z"}`),
	})
	assert.ErrorContains(t, err, "not found")
}

func TestRefreshEventPublisher(t *testing.T) {
	producer := &fakePublisher{}
	publisher, err := NewRefreshEventPublisher(producer, constants.RoutingKeyStreetIndexRefreshed)
	require.NoError(t, err)

	start := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	ctx := contextkeys.ContextWithTraceID(context.Background(), "trace-42")
	require.NoError(t, publisher.ReportRefresh(ctx, domain.RefreshReport{
		Trigger:    domain.RefreshTriggerHTTP,
		StartedAt:  start,
		FinishedAt: start.Add(1500 * time.Millisecond),
		Err:        errors.New("lock timeout"),
	}))

	assert.Equal(t, constants.RoutingKeyStreetIndexRefreshed, producer.routingKey)
	assert.Equal(t, "application/json", producer.msg.ContentType)
	assert.Equal(t, contracts.EventStreetIndexRefreshed, producer.msg.Headers[constants.HeaderEventType])
	assert.Equal(t, contracts.EventVersionV1, producer.msg.Headers[constants.HeaderEventVersion])
	assert.Equal(t, "trace-42", producer.msg.Headers[constants.HeaderTraceID])

	var dto StreetIndexRefreshedDTO
	require.NoError(t, json.Unmarshal(producer.msg.Body, &dto))
	assert.Equal(t, int64(1500), dto.DurationMs)
	assert.False(t, dto.Success)
	assert.Equal(t, "lock timeout", dto.Error)
}

func TestRefreshEventPublisher_PublishError(t *testing.T) {
	producer := &fakePublisher{err: errors.New("channel closed")}
	publisher, err := NewRefreshEventPublisher(producer, "key")
	require.NoError(t, err)

	err = publisher.ReportRefresh(context.Background(), domain.RefreshReport{Trigger: domain.RefreshTriggerEvent})
	assert.ErrorContains(t, err, "channel closed")

	_, err = NewRefreshEventPublisher(nil, "key")
	assert.Error(t, err)
	_, err = NewRefreshEventPublisher(producer, "")
	assert.Error(t, err)
}

func TestRefreshEventPublisher_RejectsUnknownTrigger(t *testing.T) {
	producer := &fakePublisher{}
	publisher, err := NewRefreshEventPublisher(producer, "key")
	require.NoError(t, err)

	err = publisher.ReportRefresh(context.Background(), domain.RefreshReport{Trigger: "cron"})
	assert.ErrorContains(t, err, "does not match its schema")
	assert.Empty(t, producer.routingKey)
}
