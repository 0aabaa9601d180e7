package usecase

import (
	"context"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"insight-engine/internal/domain"
	"insight-engine/internal/infra/metrics"
)

// RetrieveContextUsecase gathers candidate records for a query from the
// organizational knowledge collections.
type RetrieveContextUsecase interface {
	// Execute never returns an error: a failed collection contributes
	// zero records and total failure yields an empty slice.
	Execute(ctx context.Context, qc domain.QueryContext) []domain.SourceRecord
}

type retrieveContextUsecase struct {
	store   domain.KnowledgeStore
	ranking RankingConfig
	limits  RetrievalConfig
	logger  *slog.Logger
}

// NewRetrieveContextUsecase creates a retriever over the knowledge store.
func NewRetrieveContextUsecase(store domain.KnowledgeStore, ranking RankingConfig, limits RetrievalConfig, logger *slog.Logger) RetrieveContextUsecase {
	if logger == nil {
		logger = slog.Default()
	}
	return &retrieveContextUsecase{
		store:   store,
		ranking: ranking,
		limits:  limits,
		logger:  logger,
	}
}

func (u *retrieveContextUsecase) Execute(ctx context.Context, qc domain.QueryContext) []domain.SourceRecord {
	if u.store == nil {
		return nil
	}

	filter := domain.CollectionFilter{
		Category:       string(qc.Domain),
		BusinessUnitID: qc.BusinessUnitID,
	}

	types := domain.RetrievedSourceTypes()
	perType := make([][]domain.SourceRecord, len(types))

	// The four reads are independent; run them fan-out and keep whatever
	// succeeds. Each closure swallows its own error so one bad collection
	// never aborts the others.
	var g errgroup.Group
	for i, t := range types {
		i, t := i, t
		g.Go(func() error {
			items, err := u.store.ReadCollection(ctx, t, qc.OrganizationID, filter, u.limits.LimitFor(t))
			if err != nil {
				metrics.CollectionReadFailures.WithLabelValues(string(t)).Inc()
				u.logger.Warn("collection_read_failed",
					slog.String("collection", string(t)),
					slog.String("organization_id", qc.OrganizationID),
					slog.String("error", err.Error()))
				return nil
			}
			perType[i] = u.normalize(t, items)
			return nil
		})
	}
	_ = g.Wait()

	var records []domain.SourceRecord
	for _, batch := range perType {
		records = append(records, batch...)
	}

	u.logger.Info("context_retrieved",
		slog.String("organization_id", qc.OrganizationID),
		slog.Int("record_count", len(records)))

	return records
}

func (u *retrieveContextUsecase) normalize(t domain.SourceType, items []domain.KnowledgeItem) []domain.SourceRecord {
	records := make([]domain.SourceRecord, 0, len(items))
	for _, item := range items {
		records = append(records, domain.SourceRecord{
			Type:          t,
			ID:            item.ID,
			Title:         item.Title,
			Content:       item.Content,
			BaseRelevance: u.ranking.BasePriors[t],
			Confidence:    item.Confidence,
			CreatedAt:     item.CreatedAt,
			Metadata: map[string]any{
				"category":       item.Category,
				"businessUnitId": item.BusinessUnitID,
			},
		})
	}
	return records
}
