package postgres

import (
	"context"
	"fmt"

	"github.com/apeiron-tech/Immoxperts-sub000/internal/contextkeys"
	"github.com/apeiron-tech/Immoxperts-sub000/internal/core/domain"
	"github.com/apeiron-tech/Immoxperts-sub000/internal/core/port"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Фиксированный порядок выдачи, совпадает с domain.ListingLess
const listingOrderBy = `ORDER BY COALESCE(l.source, '') COLLATE "C" ASC, l.created_at DESC NULLS LAST, l.id ASC`

const listingSelectColumns = `
	l.id, COALESCE(l.source, ''), COALESCE(l.commune, ''), COALESCE(l.code_postal, ''),
	COALESCE(l.code_departement, ''), COALESCE(l.departement, ''), COALESCE(l.adresse, ''),
	COALESCE(l.type_local, ''), l.prix, COALESCE(l.details, ''), COALESCE(l.description, ''),
	l.images, l.created_at`

// Части запроса подсказок для каждой категории.
// MIN(... COLLATE "C") - побайтовый минимум, представитель группы не зависит от локали базы.
type candidateQuery struct {
	value   string
	paired  string
	where   string
	groupBy string
}

var candidateQueries = map[domain.SuggestionCategory]candidateQuery{
	domain.CategoryDepartment: {
		value:   `MIN(l.departement COLLATE "C")`,
		paired:  `''`,
		where:   `l.departement ILIKE $1`,
		groupBy: `LOWER(l.departement)`,
	},
	domain.CategoryCommune: {
		value:   `MIN(l.commune COLLATE "C")`,
		paired:  `MIN(l.code_postal COLLATE "C")`,
		where:   `l.commune ILIKE $1 AND l.code_postal IS NOT NULL AND TRIM(l.code_postal) <> ''`,
		groupBy: `LOWER(l.commune), LOWER(l.code_postal)`,
	},
	// две группы: с коммуной (подпись "Коммуна (код)") и без нее (только код)
	domain.CategoryPostalCode: {
		value:   `MIN(l.code_postal COLLATE "C")`,
		paired:  `COALESCE(MIN(NULLIF(TRIM(l.commune), '') COLLATE "C"), '')`,
		where:   `l.code_postal ILIKE $1`,
		groupBy: `LOWER(l.code_postal), LOWER(NULLIF(TRIM(l.commune), ''))`,
	},
	domain.CategoryAddress: {
		value:   `MIN(l.adresse COLLATE "C")`,
		paired:  `''`,
		where:   `l.adresse ILIKE $1 AND TRIM(l.adresse) <> ''`,
		groupBy: `LOWER(l.adresse)`,
	},
}

// sql собирает запрос группировки; $1 - шаблон ILIKE, $2 - лимит.
// При равных count и значении порядок решает парное поле, как в памяти.
func (q candidateQuery) sql(table string) string {
	return fmt.Sprintf(`
		SELECT %[1]s, %[2]s, COUNT(*) AS cnt
		FROM %[5]s l
		WHERE %[3]s
		GROUP BY %[4]s
		ORDER BY cnt DESC, %[1]s ASC, %[2]s ASC
		LIMIT $2`, q.value, q.paired, q.where, q.groupBy, table)
}

type ListingRepository struct {
	pool  *pgxpool.Pool
	table string
}

func NewListingRepository(pool *pgxpool.Pool, table string) (*ListingRepository, error) {
	if pool == nil {
		return nil, fmt.Errorf("pgxpool.Pool cannot be nil")
	}
	if table == "" {
		return nil, fmt.Errorf("listings table name cannot be empty")
	}
	return &ListingRepository{
		pool:  pool,
		table: pgx.Identifier{table}.Sanitize(),
	}, nil
}

// FindListings ищет объявления по дереву условий с пагинацией
func (r *ListingRepository) FindListings(ctx context.Context, filter domain.Predicate, page domain.PageRequest) (*domain.ListingPage, error) {
	page = page.Normalize()

	logger := contextkeys.LoggerFromContext(ctx)
	repoLogger := logger.WithFields(port.Fields{
		"component": "ListingRepository",
		"method":    "FindListings",
		"page":      page.Page,
		"size":      page.Size,
	})

	qb := newQueryBuilder()
	if err := qb.applyPredicate(filter); err != nil {
		return nil, fmt.Errorf("%w: failed to build listing filter: %w", domain.ErrInvalidRequest, err)
	}
	whereClause, args := qb.where(), qb.args

	// COUNT и выборка в одной read-only транзакции, чтобы видеть один и тот же снимок
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.RepeatableRead, AccessMode: pgx.ReadOnly})
	if err != nil {
		return nil, fmt.Errorf("%w: failed to begin transaction: %w", domain.ErrStoreUnavailable, err)
	}
	defer tx.Rollback(ctx)

	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM %s l %s", r.table, whereClause)
	var totalCount int64
	if err := tx.QueryRow(ctx, countQuery, args...).Scan(&totalCount); err != nil {
		repoLogger.Error("Failed to count listings", err, port.Fields{"query": countQuery})
		return nil, fmt.Errorf("%w: failed to count listings: %w", domain.ErrStoreUnavailable, err)
	}

	result := &domain.ListingPage{
		Listings:   []domain.Listing{},
		TotalCount: int(totalCount),
		Page:       page.Page,
		Size:       page.Size,
	}

	// Если ничего не найдено или страница за пределами, второй запрос не нужен
	if totalCount == 0 || int64(page.Offset()) >= totalCount {
		repoLogger.Debug("No listings on requested page", port.Fields{"total_count": totalCount})
		return result, nil
	}

	dataQuery := fmt.Sprintf("SELECT %s FROM %s l %s %s LIMIT $%d OFFSET $%d",
		listingSelectColumns, r.table, whereClause, listingOrderBy, len(args)+1, len(args)+2)
	dataArgs := append(args, page.Size, page.Offset())

	rows, err := tx.Query(ctx, dataQuery, dataArgs...)
	if err != nil {
		repoLogger.Error("Failed to find listings", err, port.Fields{"query": dataQuery})
		return nil, fmt.Errorf("%w: failed to find listings: %w", domain.ErrStoreUnavailable, err)
	}
	defer rows.Close()

	listings := make([]domain.Listing, 0, page.Size)
	for rows.Next() {
		var l domain.Listing
		if err := rows.Scan(
			&l.ID, &l.Source, &l.Commune, &l.PostalCode, &l.DepartmentCode, &l.Department,
			&l.Address, &l.PropertyType, &l.Price, &l.Details, &l.Description, &l.Images, &l.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("%w: failed to scan listing: %w", domain.ErrStoreUnavailable, err)
		}
		listings = append(listings, l)
	}
	if err := rows.Err(); err != nil {
		repoLogger.Error("Error during listings rows iteration", err, nil)
		return nil, fmt.Errorf("%w: %w", domain.ErrStoreUnavailable, err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("%w: failed to commit transaction: %w", domain.ErrStoreUnavailable, err)
	}

	result.Listings = listings
	repoLogger.Info("Successfully found listings for page", port.Fields{
		"total_count": totalCount,
		"count":       len(listings),
	})
	return result, nil
}

// FindLocationCandidates группирует записи по значению поля категории (без учета регистра).
// Представителем группы берется MIN(значение), чтобы ответ был детерминированным.
func (r *ListingRepository) FindLocationCandidates(ctx context.Context, category domain.SuggestionCategory, query string, limit int) ([]domain.SuggestionCandidate, error) {
	logger := contextkeys.LoggerFromContext(ctx)
	repoLogger := logger.WithFields(port.Fields{
		"component": "ListingRepository",
		"method":    "FindLocationCandidates",
		"category":  category,
	})

	parts, ok := candidateQueries[category]
	if !ok {
		return nil, fmt.Errorf("%w: unknown suggestion category %q", domain.ErrInvalidRequest, category)
	}

	fullQuery := parts.sql(r.table)

	rows, err := r.pool.Query(ctx, fullQuery, containsPattern(query), limit)
	if err != nil {
		repoLogger.Error("Failed to query location candidates", err, port.Fields{"query": fullQuery})
		return nil, fmt.Errorf("%w: failed to query %s candidates: %w", domain.ErrStoreUnavailable, category, err)
	}
	defer rows.Close()

	candidates := make([]domain.SuggestionCandidate, 0, limit)
	for rows.Next() {
		var value, paired string
		var count int64
		if err := rows.Scan(&value, &paired, &count); err != nil {
			return nil, fmt.Errorf("%w: failed to scan %s candidate: %w", domain.ErrStoreUnavailable, category, err)
		}
		candidates = append(candidates, domain.NewLocationCandidate(category, value, paired, int(count)))
	}
	if err := rows.Err(); err != nil {
		repoLogger.Error("Error during candidates rows iteration", err, nil)
		return nil, fmt.Errorf("%w: %w", domain.ErrStoreUnavailable, err)
	}

	repoLogger.Debug("Location candidates found", port.Fields{"count": len(candidates)})
	return candidates, nil
}

// Ping проверяет доступность базы для /healthz
func (r *ListingRepository) Ping(ctx context.Context) error {
	if err := r.pool.Ping(ctx); err != nil {
		return fmt.Errorf("%w: %w", domain.ErrStoreUnavailable, err)
	}
	return nil
}
