package domain

import "time"

// RefreshReport - итог одного обновления индекса быстрого поиска
type RefreshReport struct {
	Trigger    string
	StartedAt  time.Time
	FinishedAt time.Time
	Err        error
}

// Duration - сколько длилось обновление
func (r RefreshReport) Duration() time.Duration {
	return r.FinishedAt.Sub(r.StartedAt)
}

// Succeeded - обновление прошло без ошибок
func (r RefreshReport) Succeeded() bool {
	return r.Err == nil
}

// Источники запуска обновления
const (
	RefreshTriggerHTTP  = "http"
	RefreshTriggerEvent = "event"
)
