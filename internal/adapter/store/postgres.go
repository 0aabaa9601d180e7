package store

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"

	"insight-engine/internal/domain"
)

// collectionSpec maps one knowledge collection to its table and the
// expressions that normalize it into a KnowledgeItem.
type collectionSpec struct {
	table       string
	titleExpr   string
	contentExpr string
}

var collectionSpecs = map[domain.SourceType]collectionSpec{
	domain.SourceTypeInsight: {
		table:       "insights",
		titleExpr:   "title",
		contentExpr: "content",
	},
	domain.SourceTypeEvidence: {
		table:       "evidence_items",
		titleExpr:   "title",
		contentExpr: "summary",
	},
	domain.SourceTypeKPI: {
		table:       "kpis",
		titleExpr:   "name",
		contentExpr: "concat_ws(' ', description, 'Current:', current_value::text, 'Target:', target_value::text)",
	},
	domain.SourceTypeScenario: {
		table:       "scenarios",
		titleExpr:   "name",
		contentExpr: "narrative",
	},
	domain.SourceTypeRecommendation: {
		table:       "recommendations",
		titleExpr:   "title",
		contentExpr: "description",
	},
}

// PostgresKnowledgeStore reads the organizational knowledge collections.
// The schema is owned by the collaborating application; this adapter only
// reads.
type PostgresKnowledgeStore struct {
	pool *pgxpool.Pool
}

// NewPostgresKnowledgeStore wraps an existing connection pool.
func NewPostgresKnowledgeStore(pool *pgxpool.Pool) *PostgresKnowledgeStore {
	return &PostgresKnowledgeStore{pool: pool}
}

func (s *PostgresKnowledgeStore) ReadCollection(ctx context.Context, collection domain.SourceType, organizationID string, filter domain.CollectionFilter, limit int) ([]domain.KnowledgeItem, error) {
	spec, ok := collectionSpecs[collection]
	if !ok {
		return nil, fmt.Errorf("unknown collection %q", collection)
	}

	var sb strings.Builder
	args := []any{organizationID}

	fmt.Fprintf(&sb,
		"SELECT id, %s, %s, category, COALESCE(business_unit_id, ''), confidence, created_at, updated_at FROM %s WHERE organization_id = $1",
		spec.titleExpr, spec.contentExpr, spec.table)

	if filter.Category != "" {
		args = append(args, filter.Category)
		fmt.Fprintf(&sb, " AND category = $%d", len(args))
	}
	if filter.BusinessUnitID != "" {
		args = append(args, filter.BusinessUnitID)
		fmt.Fprintf(&sb, " AND business_unit_id = $%d", len(args))
	}

	args = append(args, limit)
	fmt.Fprintf(&sb, " ORDER BY updated_at DESC LIMIT $%d", len(args))

	rows, err := s.pool.Query(ctx, sb.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query %s: %w", spec.table, err)
	}
	defer rows.Close()

	var items []domain.KnowledgeItem
	for rows.Next() {
		var item domain.KnowledgeItem
		if err := rows.Scan(
			&item.ID,
			&item.Title,
			&item.Content,
			&item.Category,
			&item.BusinessUnitID,
			&item.Confidence,
			&item.CreatedAt,
			&item.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan %s row: %w", spec.table, err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read %s rows: %w", spec.table, err)
	}

	return items, nil
}

func (s *PostgresKnowledgeStore) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

var _ domain.KnowledgeStore = (*PostgresKnowledgeStore)(nil)
