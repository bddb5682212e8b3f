package logger_adapter

import (
	"fmt"
	"log/slog"
	"maps"
	"time"

	"github.com/apeiron-tech/Immoxperts-sub000/internal/core/port"

	"github.com/fluent/fluent-logger-golang/fluent"
)

// FluentPoster - то, что нужно адаптеру от клиента fluent
type FluentPoster interface {
	Post(tag string, message interface{}) error
	Close() error
}

// FluentLoggerAdapter отправляет записи в Fluent Bit, тег = уровень записи
type FluentLoggerAdapter struct {
	client   FluentPoster
	fields   port.Fields
	minLevel slog.Level
}

var _ FluentPoster = (*fluent.Fluent)(nil)

func NewFluentLoggerAdapter(client FluentPoster, minLevel slog.Leveler) (*FluentLoggerAdapter, error) {
	if client == nil {
		return nil, fmt.Errorf("fluent client cannot be nil")
	}

	level := slog.LevelInfo
	if minLevel != nil {
		level = minLevel.Level()
	}

	return &FluentLoggerAdapter{
		client:   client,
		fields:   port.Fields{},
		minLevel: level,
	}, nil
}

func (a *FluentLoggerAdapter) record(level slog.Level, msg string, fields port.Fields) port.Fields {
	data := make(port.Fields, len(a.fields)+len(fields)+3)
	maps.Copy(data, a.fields)
	maps.Copy(data, fields)
	data["level"] = levelTag(level)
	data["message"] = msg
	data["timestamp"] = time.Now().UTC().Format(time.RFC3339Nano)
	return data
}

func (a *FluentLoggerAdapter) post(level slog.Level, msg string, err error, fields port.Fields) {
	if level < a.minLevel {
		return
	}
	data := a.record(level, msg, fields)
	if err != nil {
		data["error"] = err.Error()
	}
	// ошибки отправки игнорируются, иначе логгер пришлось бы логировать
	_ = a.client.Post(levelTag(level), data)
}

func levelTag(level slog.Level) string {
	switch {
	case level >= slog.LevelError:
		return "error"
	case level >= slog.LevelWarn:
		return "warn"
	case level >= slog.LevelInfo:
		return "info"
	}
	return "debug"
}

func (a *FluentLoggerAdapter) Info(msg string, fields port.Fields) {
	a.post(slog.LevelInfo, msg, nil, fields)
}

func (a *FluentLoggerAdapter) Warn(msg string, fields port.Fields) {
	a.post(slog.LevelWarn, msg, nil, fields)
}

func (a *FluentLoggerAdapter) Error(msg string, err error, fields port.Fields) {
	a.post(slog.LevelError, msg, err, fields)
}

func (a *FluentLoggerAdapter) Debug(msg string, fields port.Fields) {
	a.post(slog.LevelDebug, msg, nil, fields)
}

func (a *FluentLoggerAdapter) WithFields(fields port.Fields) port.LoggerPort {
	merged := make(port.Fields, len(a.fields)+len(fields))
	maps.Copy(merged, a.fields)
	maps.Copy(merged, fields)
	return &FluentLoggerAdapter{
		client:   a.client,
		fields:   merged,
		minLevel: a.minLevel,
	}
}

func (a *FluentLoggerAdapter) Close() error {
	return a.client.Close()
}
