package usecase_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/apeiron-tech/Immoxperts-sub000/internal/adapters/memory"
	"github.com/apeiron-tech/Immoxperts-sub000/internal/core/domain"
	"github.com/apeiron-tech/Immoxperts-sub000/internal/core/usecase"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRefreshStreetIndex_ReportsSuccess(t *testing.T) {
	index := &refreshCounter{}
	reporter := &recordingReporter{}
	uc := usecase.NewRefreshStreetIndexUseCase(index, reporter)

	require.NoError(t, uc.Execute(context.Background(), domain.RefreshTriggerHTTP))

	assert.Equal(t, 1, index.calls)
	require.Len(t, reporter.reports, 1)
	report := reporter.reports[0]
	assert.Equal(t, domain.RefreshTriggerHTTP, report.Trigger)
	assert.True(t, report.Succeeded())
	assert.False(t, report.FinishedAt.Before(report.StartedAt))
}

func TestRefreshStreetIndex_WrapsFailure(t *testing.T) {
	cause := errors.New("could not obtain lock")
	index := &refreshCounter{err: cause}
	reporter := &recordingReporter{}
	uc := usecase.NewRefreshStreetIndexUseCase(index, reporter)

	err := uc.Execute(context.Background(), domain.RefreshTriggerEvent)

	require.ErrorIs(t, err, domain.ErrRefreshFailed)
	require.ErrorIs(t, err, cause)
	assert.Equal(t, 1, index.calls)
	require.Len(t, reporter.reports, 1)
	assert.False(t, reporter.reports[0].Succeeded())
}

func TestRefreshStreetIndex_ReporterErrorIgnored(t *testing.T) {
	index := &refreshCounter{}
	broken := &recordingReporter{err: errors.New("broker down")}
	healthy := &recordingReporter{}
	uc := usecase.NewRefreshStreetIndexUseCase(index, broken, healthy)

	require.NoError(t, uc.Execute(context.Background(), domain.RefreshTriggerHTTP))
	assert.Len(t, broken.reports, 1)
	assert.Len(t, healthy.reports, 1)
}

func TestStreetSearch_VisibleOnlyAfterRefresh(t *testing.T) {
	d := time.Date(2021, 6, 1, 0, 0, 0, 0, time.UTC)
	index := memory.NewStreetIndex(domain.StreetSearchRecord{
		StreetNumber: ptr(3), StreetType: "AV", StreetName: "FOCH", Commune: "Paris", PostalCode: "75016",
		MutationID: 10, MutationDate: &d,
	})
	search := usecase.NewSearchStreetsUseCase(index)
	fast := usecase.NewFastSearchStreetsUseCase(index)
	refresh := usecase.NewRefreshStreetIndexUseCase(index)
	filters := domain.StreetSearchFilters{StreetName: "foch"}

	page, err := search.Execute(context.Background(), filters, domain.PageRequest{Size: 10})
	require.NoError(t, err)
	assert.Equal(t, 0, page.TotalCount)

	require.NoError(t, refresh.Execute(context.Background(), domain.RefreshTriggerHTTP))

	page, err = search.Execute(context.Background(), filters, domain.PageRequest{Size: 10})
	require.NoError(t, err)
	assert.Equal(t, 1, page.TotalCount)

	records, err := fast.Execute(context.Background(), filters, 0)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, int64(10), records[0].MutationID)
}
