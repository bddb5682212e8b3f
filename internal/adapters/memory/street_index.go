package memory

import (
	"context"
	"sort"
	"sync"
	"sync/atomic"

	"github.com/apeiron-tech/Immoxperts-sub000/internal/contextkeys"
	"github.com/apeiron-tech/Immoxperts-sub000/internal/core/domain"
	"github.com/apeiron-tech/Immoxperts-sub000/internal/core/port"
)

// StreetIndex - аналог материализованного представления в памяти.
// Новые записи попадают в staged и становятся видны поиску только после RefreshConcurrently.
type StreetIndex struct {
	stagedMu sync.Mutex
	staged   []domain.StreetSearchRecord

	// опубликованный снимок, отсортирован по domain.StreetKeyLess и не изменяется
	published atomic.Pointer[[]domain.StreetSearchRecord]

	// для тестов: ошибка, которую вернет следующее обновление
	refreshErr atomic.Pointer[error]
}

func NewStreetIndex(records ...domain.StreetSearchRecord) *StreetIndex {
	idx := &StreetIndex{}
	empty := []domain.StreetSearchRecord{}
	idx.published.Store(&empty)
	idx.Stage(records...)
	return idx
}

// Stage добавляет записи в источник индекса, не трогая опубликованный снимок
func (idx *StreetIndex) Stage(records ...domain.StreetSearchRecord) {
	idx.stagedMu.Lock()
	defer idx.stagedMu.Unlock()
	idx.staged = append(idx.staged, records...)
}

// FailNextRefresh заставляет следующий RefreshConcurrently вернуть err
func (idx *StreetIndex) FailNextRefresh(err error) {
	idx.refreshErr.Store(&err)
}

func (idx *StreetIndex) snapshot() []domain.StreetSearchRecord {
	return *idx.published.Load()
}

func (idx *StreetIndex) SearchStreets(ctx context.Context, filters domain.StreetSearchFilters, page domain.PageRequest) (*domain.StreetSearchPage, error) {
	page = page.Normalize()

	var matched []domain.StreetSearchRecord
	for _, r := range idx.snapshot() {
		if filters.Matches(r) {
			matched = append(matched, r)
		}
	}

	result := &domain.StreetSearchPage{
		Records:    []domain.StreetSearchRecord{},
		TotalCount: len(matched),
		Page:       page.Page,
		Size:       page.Size,
	}
	if offset := page.Offset(); offset < len(matched) {
		end := min(offset+page.Size, len(matched))
		result.Records = append(result.Records, matched[offset:end]...)
	}
	return result, nil
}

func (idx *StreetIndex) FastSearchStreets(ctx context.Context, filters domain.StreetSearchFilters, limit int) ([]domain.StreetSearchRecord, error) {
	limit = domain.ClampFastSearchLimit(limit)

	matched := []domain.StreetSearchRecord{}
	for _, r := range idx.snapshot() {
		if filters.Matches(r) {
			matched = append(matched, r)
		}
	}
	sort.SliceStable(matched, func(i, j int) bool {
		return domain.MutationRecencyLess(matched[i], matched[j])
	})
	if len(matched) > limit {
		matched = matched[:limit]
	}
	return matched, nil
}

// RefreshConcurrently строит новый снимок и публикует его одной атомарной заменой.
// Читатели видят либо старый, либо новый снимок целиком.
func (idx *StreetIndex) RefreshConcurrently(ctx context.Context) error {
	if errPtr := idx.refreshErr.Swap(nil); errPtr != nil {
		return *errPtr
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	idx.stagedMu.Lock()
	next := make([]domain.StreetSearchRecord, len(idx.staged))
	copy(next, idx.staged)
	idx.stagedMu.Unlock()

	sort.SliceStable(next, func(i, j int) bool {
		return domain.StreetKeyLess(next[i], next[j])
	})
	idx.published.Store(&next)

	contextkeys.LoggerFromContext(ctx).Debug("Memory street index refreshed", port.Fields{
		"component": "memory.StreetIndex",
		"records":   len(next),
	})
	return nil
}
