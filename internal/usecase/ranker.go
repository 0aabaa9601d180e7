package usecase

import (
	"context"
	"math"
	"sort"
	"time"

	"insight-engine/internal/domain"
)

// Ranker scores candidates against the query vector and orders them.
type Ranker struct {
	embedder *Embedder
	cfg      RankingConfig

	// now is swappable in tests; defaults to time.Now.
	now func() time.Time
}

// NewRanker builds a ranker from the embedder and scoring constants.
func NewRanker(embedder *Embedder, cfg RankingConfig) *Ranker {
	return &Ranker{
		embedder: embedder,
		cfg:      cfg,
		now:      time.Now,
	}
}

// Rank computes one relevance score per record and sorts descending.
// Ties keep the original retrieval order. Records with empty content still
// score (similarity 0); filtering empties is the retriever's concern.
func (r *Ranker) Rank(ctx context.Context, records []domain.SourceRecord, queryVector []float32) []domain.RankedRecord {
	if len(records) == 0 {
		return nil
	}

	now := r.now()
	ranked := make([]domain.RankedRecord, 0, len(records))
	for _, record := range records {
		contentVector := r.embedder.Embed(ctx, record.Content)
		similarity := Similarity(queryVector, contentVector)

		relevance := record.BaseRelevance*r.cfg.PriorWeight + similarity*r.cfg.SimilarityWeight

		if !record.CreatedAt.IsZero() {
			ageDays := now.Sub(record.CreatedAt).Hours() / 24
			if ageDays < 0 {
				ageDays = 0
			}
			relevance *= math.Exp(-ageDays / r.cfg.DecayDays)
		}

		if record.Confidence != nil {
			relevance *= r.cfg.ConfidenceFloor + (1-r.cfg.ConfidenceFloor)*(*record.Confidence)
		}

		ranked = append(ranked, domain.RankedRecord{
			SourceRecord: record,
			Relevance:    relevance,
		})
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Relevance > ranked[j].Relevance
	})

	return ranked
}
