package fluentlogger

import (
	"fmt"
	"time"

	"github.com/fluent/fluent-logger-golang/fluent"
)

type Config struct {
	Host      string // "fluent-bit" в docker-compose
	Port      int    // 24224
	TagPrefix string // префикс тегов, обычно имя сервиса
}

// NewClient создает клиента Fluent Bit. Соединение устанавливается асинхронно,
// ошибки доставки проявятся только при отправке.
func NewClient(cfg Config) (*fluent.Fluent, error) {
	if cfg.TagPrefix == "" {
		return nil, fmt.Errorf("fluentd tag prefix is required")
	}

	client, err := fluent.New(fluent.Config{
		FluentHost:   cfg.Host,
		FluentPort:   cfg.Port,
		TagPrefix:    cfg.TagPrefix,
		Async:        true,
		Timeout:      3 * time.Second,
		WriteTimeout: 3 * time.Second,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create fluentd logger: %w", err)
	}
	return client, nil
}
