package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/apeiron-tech/Immoxperts-sub000/internal/contextkeys"
	"github.com/apeiron-tech/Immoxperts-sub000/internal/core/domain"
	"github.com/apeiron-tech/Immoxperts-sub000/internal/core/port"
)

// RefreshStreetIndexUseCase перестраивает индекс быстрого поиска.
// Сам не сериализует параллельные вызовы - это забота хранилища.
type RefreshStreetIndexUseCase struct {
	index     port.StreetIndexPort
	reporters []port.RefreshReporterPort
}

func NewRefreshStreetIndexUseCase(index port.StreetIndexPort, reporters ...port.RefreshReporterPort) *RefreshStreetIndexUseCase {
	return &RefreshStreetIndexUseCase{index: index, reporters: reporters}
}

func (uc *RefreshStreetIndexUseCase) Execute(ctx context.Context, trigger string) error {
	ucLogger := contextkeys.LoggerFromContext(ctx).WithFields(port.Fields{
		"use_case": "RefreshStreetIndex",
		"trigger":  trigger,
	})
	ucLogger.Info("Street index refresh started", nil)

	report := domain.RefreshReport{Trigger: trigger, StartedAt: time.Now()}

	// ровно один вызов обновления на один запуск
	err := uc.index.RefreshConcurrently(ctx)
	report.FinishedAt = time.Now()
	if err != nil {
		report.Err = fmt.Errorf("%w: %w", domain.ErrRefreshFailed, err)
	}

	// Отчеты не влияют на результат обновления
	for _, reporter := range uc.reporters {
		if reportErr := reporter.ReportRefresh(ctx, report); reportErr != nil {
			ucLogger.Warn("Failed to report refresh result", port.Fields{"error": reportErr.Error()})
		}
	}

	if report.Err != nil {
		ucLogger.Error("Street index refresh failed", report.Err, port.Fields{"duration_ms": report.Duration().Milliseconds()})
		return report.Err
	}

	ucLogger.Info("Street index refreshed", port.Fields{"duration_ms": report.Duration().Milliseconds()})
	return nil
}
