package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/apeiron-tech/Immoxperts-sub000/internal/contextkeys"
	"github.com/apeiron-tech/Immoxperts-sub000/internal/core/domain"
	"github.com/apeiron-tech/Immoxperts-sub000/internal/core/port"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const streetSelectColumns = `
	s.novoie, COALESCE(s.btq, ''), COALESCE(s.typvoie, ''), COALESCE(s.voie, ''),
	COALESCE(s.commune, ''), COALESCE(s.codepostal, ''), s.idmutation, s.datemut, s.valeurfonc`

// Естественный порядок индекса - по ключу адреса, записи без номера в конце.
// Текстовые части сравниваются побайтово, NULL как пустая строка, так же сортирует domain.StreetKeyLess.
const streetKeyOrderBy = `ORDER BY s.novoie ASC NULLS LAST,
	COALESCE(s.btq, '') COLLATE "C", COALESCE(s.typvoie, '') COLLATE "C", COALESCE(s.voie, '') COLLATE "C",
	COALESCE(s.commune, '') COLLATE "C", COALESCE(s.codepostal, '') COLLATE "C", s.idmutation`

const streetRecencyOrderBy = "ORDER BY s.datemut DESC NULLS LAST, s.idmutation DESC"

// StreetIndexRepository работает с материализованным представлением адресов мутаций.
type StreetIndexRepository struct {
	pool *pgxpool.Pool
	view string
}

func NewStreetIndexRepository(pool *pgxpool.Pool, view string) (*StreetIndexRepository, error) {
	if pool == nil {
		return nil, fmt.Errorf("pgxpool.Pool cannot be nil")
	}
	if view == "" {
		return nil, fmt.Errorf("street index view name cannot be empty")
	}
	return &StreetIndexRepository{
		pool: pool,
		view: pgx.Identifier{view}.Sanitize(),
	}, nil
}

func buildStreetFilters(filters domain.StreetSearchFilters) *queryBuilder {
	qb := newQueryBuilder()
	if filters.StreetNumber != nil {
		qb.addCondition("%s = $%d", "s.novoie", *filters.StreetNumber)
	}
	if filters.Suffix != "" {
		qb.addCondition("LOWER(%s) = LOWER($%d)", "s.btq", filters.Suffix)
	}
	if filters.StreetType != "" {
		qb.addCondition("LOWER(%s) = LOWER($%d)", "s.typvoie", filters.StreetType)
	}
	if filters.StreetName != "" {
		qb.addContains("s.voie", filters.StreetName)
	}
	if filters.Commune != "" {
		qb.addContains("s.commune", filters.Commune)
	}
	if filters.PostalCode != "" {
		qb.addCondition("%s = $%d", "s.codepostal", filters.PostalCode)
	}
	return qb
}

// SearchStreets - постраничный поиск в порядке ключа адреса
func (r *StreetIndexRepository) SearchStreets(ctx context.Context, filters domain.StreetSearchFilters, page domain.PageRequest) (*domain.StreetSearchPage, error) {
	page = page.Normalize()

	logger := contextkeys.LoggerFromContext(ctx)
	repoLogger := logger.WithFields(port.Fields{
		"component": "StreetIndexRepository",
		"method":    "SearchStreets",
		"page":      page.Page,
		"size":      page.Size,
	})

	qb := buildStreetFilters(filters)
	whereClause, args := qb.where(), qb.args

	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.RepeatableRead, AccessMode: pgx.ReadOnly})
	if err != nil {
		return nil, fmt.Errorf("%w: failed to begin transaction: %w", domain.ErrStoreUnavailable, err)
	}
	defer tx.Rollback(ctx)

	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM %s s %s", r.view, whereClause)
	var totalCount int64
	if err := tx.QueryRow(ctx, countQuery, args...).Scan(&totalCount); err != nil {
		repoLogger.Error("Failed to count street index records", err, port.Fields{"query": countQuery})
		return nil, fmt.Errorf("%w: failed to count street records: %w", domain.ErrStoreUnavailable, err)
	}

	result := &domain.StreetSearchPage{
		Records:    []domain.StreetSearchRecord{},
		TotalCount: int(totalCount),
		Page:       page.Page,
		Size:       page.Size,
	}
	if totalCount == 0 || int64(page.Offset()) >= totalCount {
		return result, nil
	}

	dataQuery := fmt.Sprintf("SELECT %s FROM %s s %s %s LIMIT $%d OFFSET $%d",
		streetSelectColumns, r.view, whereClause, streetKeyOrderBy, len(args)+1, len(args)+2)
	dataArgs := append(args, page.Size, page.Offset())

	records, err := queryStreetRecords(ctx, tx, dataQuery, dataArgs, page.Size)
	if err != nil {
		repoLogger.Error("Failed to search street index", err, port.Fields{"query": dataQuery})
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("%w: failed to commit transaction: %w", domain.ErrStoreUnavailable, err)
	}

	result.Records = records
	repoLogger.Info("Street index page found", port.Fields{
		"total_count": totalCount,
		"count":       len(records),
	})
	return result, nil
}

// FastSearchStreets - без подсчета общего количества, самые свежие мутации первыми
func (r *StreetIndexRepository) FastSearchStreets(ctx context.Context, filters domain.StreetSearchFilters, limit int) ([]domain.StreetSearchRecord, error) {
	limit = domain.ClampFastSearchLimit(limit)

	logger := contextkeys.LoggerFromContext(ctx)
	repoLogger := logger.WithFields(port.Fields{
		"component": "StreetIndexRepository",
		"method":    "FastSearchStreets",
		"limit":     limit,
	})

	qb := buildStreetFilters(filters)
	whereClause, args := qb.where(), qb.args

	dataQuery := fmt.Sprintf("SELECT %s FROM %s s %s %s LIMIT $%d",
		streetSelectColumns, r.view, whereClause, streetRecencyOrderBy, len(args)+1)
	args = append(args, limit)

	records, err := queryStreetRecords(ctx, r.pool, dataQuery, args, limit)
	if err != nil {
		repoLogger.Error("Failed to fast search street index", err, port.Fields{"query": dataQuery})
		return nil, err
	}

	repoLogger.Debug("Fast street search finished", port.Fields{"count": len(records)})
	return records, nil
}

// RefreshConcurrently перестраивает представление, не блокируя чтение.
// Требует уникального индекса на представлении.
func (r *StreetIndexRepository) RefreshConcurrently(ctx context.Context) error {
	logger := contextkeys.LoggerFromContext(ctx)
	repoLogger := logger.WithFields(port.Fields{
		"component": "StreetIndexRepository",
		"method":    "RefreshConcurrently",
		"view":      r.view,
	})

	start := time.Now()
	if _, err := r.pool.Exec(ctx, fmt.Sprintf("REFRESH MATERIALIZED VIEW CONCURRENTLY %s", r.view)); err != nil {
		repoLogger.Error("Failed to refresh street index", err, port.Fields{"hint": refreshErrorHint(err)})
		return fmt.Errorf("%w: %w", domain.ErrStoreUnavailable, err)
	}

	repoLogger.Info("Street index refreshed", port.Fields{"duration_ms": time.Since(start).Milliseconds()})
	return nil
}

// refreshErrorHint - подсказка для лога по коду ошибки Postgres
func refreshErrorHint(err error) string {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return ""
	}
	switch pgErr.Code {
	case "55000": // object_not_in_prerequisite_state
		return "CONCURRENTLY requires a populated view with a unique index"
	case "55P03", "57014": // lock_not_available, query_canceled
		return "another refresh is probably running"
	case "42P01": // undefined_table
		return "street index view does not exist"
	}
	return pgErr.Code
}

type rowQuerier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

func queryStreetRecords(ctx context.Context, q rowQuerier, sql string, args []interface{}, capacity int) ([]domain.StreetSearchRecord, error) {
	rows, err := q.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to query street index: %w", domain.ErrStoreUnavailable, err)
	}
	defer rows.Close()

	records := make([]domain.StreetSearchRecord, 0, capacity)
	for rows.Next() {
		var rec domain.StreetSearchRecord
		var streetNumber *int32
		if err := rows.Scan(
			&streetNumber, &rec.Suffix, &rec.StreetType, &rec.StreetName,
			&rec.Commune, &rec.PostalCode, &rec.MutationID, &rec.MutationDate, &rec.Value,
		); err != nil {
			return nil, fmt.Errorf("%w: failed to scan street record: %w", domain.ErrStoreUnavailable, err)
		}
		if streetNumber != nil {
			n := int(*streetNumber)
			rec.StreetNumber = &n
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrStoreUnavailable, err)
	}
	return records, nil
}
