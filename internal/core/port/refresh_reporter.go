package port

import (
	"context"
	"github.com/apeiron-tech/Immoxperts-sub000/internal/core/domain"
)

// RefreshReporterPort - кому сообщить об окончании обновления индекса (метрики, события)
type RefreshReporterPort interface {
	ReportRefresh(ctx context.Context, report domain.RefreshReport) error
}
