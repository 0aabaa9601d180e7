package usecase_test

import (
	"context"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"insight-engine/internal/domain"
	"insight-engine/internal/usecase"
)

func newTestRanker() *usecase.Ranker {
	embedder := usecase.NewEmbedder(nil, time.Second, nil)
	return usecase.NewRanker(embedder, usecase.DefaultRankingConfig())
}

func TestRank_DominantInsight(t *testing.T) {
	ranker := newTestRanker()
	query := "customer churn is accelerating in the enterprise segment"
	queryVector := usecase.FallbackEmbedding(query)

	records := []domain.SourceRecord{
		{
			Type:          domain.SourceTypeScenario,
			ID:            "scn-1",
			Content:       "",
			BaseRelevance: 0.5,
		},
		{
			Type:          domain.SourceTypeInsight,
			ID:            "ins-1",
			Content:       query, // identical text, cosine similarity 1
			BaseRelevance: 0.8,
			CreatedAt:     time.Now(),
		},
	}

	ranked := ranker.Rank(context.Background(), records, queryVector)

	assert.Len(t, ranked, 2)
	assert.Equal(t, "ins-1", ranked[0].ID)
	// 0.8*0.5 + 1.0*0.5, decay factor ~1 for a record created just now.
	assert.InDelta(t, 0.9, ranked[0].Relevance, 0.005)
}

func TestRank_StaleRecordDiscount(t *testing.T) {
	ranker := newTestRanker()
	query := "supply chain disruption risk"
	queryVector := usecase.FallbackEmbedding(query)

	records := []domain.SourceRecord{
		{
			Type:          domain.SourceTypeInsight,
			ID:            "stale",
			Content:       query,
			BaseRelevance: 0.8,
			CreatedAt:     time.Now().Add(-60 * 24 * time.Hour),
		},
		{
			// No createdAt and no semantic match, just a weak prior.
			Type:          domain.SourceTypeScenario,
			ID:            "weak-fresh",
			Content:       "",
			BaseRelevance: 0.3,
		},
	}

	ranked := ranker.Rank(context.Background(), records, queryVector)

	// 0.9 * exp(-60/30) ~ 0.122, below the 0.15 of the weak record.
	assert.Equal(t, "weak-fresh", ranked[0].ID)
	assert.Equal(t, "stale", ranked[1].ID)
	assert.InDelta(t, 0.9*math.Exp(-2), ranked[1].Relevance, 0.005)
}

func TestRank_RecencyMonotonic(t *testing.T) {
	ranker := newTestRanker()
	queryVector := usecase.FallbackEmbedding("margin pressure")

	base := domain.SourceRecord{
		Type:          domain.SourceTypeEvidence,
		Content:       "margin pressure from input costs",
		BaseRelevance: 0.7,
	}
	newer := base
	newer.ID = "newer"
	newer.CreatedAt = time.Now().Add(-24 * time.Hour)
	older := base
	older.ID = "older"
	older.CreatedAt = time.Now().Add(-40 * 24 * time.Hour)

	ranked := ranker.Rank(context.Background(), []domain.SourceRecord{older, newer}, queryVector)

	assert.Equal(t, "newer", ranked[0].ID)
	assert.GreaterOrEqual(t, ranked[0].Relevance, ranked[1].Relevance)
}

func TestRank_ConfidenceMultiplier(t *testing.T) {
	ranker := newTestRanker()
	queryVector := usecase.FallbackEmbedding("capacity planning")

	zero := 0.0
	one := 1.0
	records := []domain.SourceRecord{
		{Type: domain.SourceTypeKPI, ID: "low", Content: "capacity planning", BaseRelevance: 0.6, Confidence: &zero},
		{Type: domain.SourceTypeKPI, ID: "high", Content: "capacity planning", BaseRelevance: 0.6, Confidence: &one},
	}

	ranked := ranker.Rank(context.Background(), records, queryVector)

	assert.Equal(t, "high", ranked[0].ID)
	// Zero source confidence halves the score but never zeroes it.
	assert.InDelta(t, ranked[0].Relevance*0.5, ranked[1].Relevance, 1e-9)
	assert.Greater(t, ranked[1].Relevance, 0.0)
}

func TestRank_StableUnderTies(t *testing.T) {
	ranker := newTestRanker()
	queryVector := usecase.FallbackEmbedding("anything")

	records := []domain.SourceRecord{
		{Type: domain.SourceTypeInsight, ID: "first", Content: "same text", BaseRelevance: 0.8},
		{Type: domain.SourceTypeInsight, ID: "second", Content: "same text", BaseRelevance: 0.8},
	}

	ranked := ranker.Rank(context.Background(), records, queryVector)

	assert.Equal(t, "first", ranked[0].ID)
	assert.Equal(t, "second", ranked[1].ID)
}

func TestRank_EmptyInput(t *testing.T) {
	ranker := newTestRanker()
	assert.Empty(t, ranker.Rank(context.Background(), nil, usecase.FallbackEmbedding("q")))
}

func TestRank_EmptyContentStillScored(t *testing.T) {
	ranker := newTestRanker()
	queryVector := usecase.FallbackEmbedding("utilization")

	ranked := ranker.Rank(context.Background(), []domain.SourceRecord{
		{Type: domain.SourceTypeKPI, ID: "empty", Content: "", BaseRelevance: 0.6},
	}, queryVector)

	assert.Len(t, ranked, 1)
	assert.InDelta(t, 0.3, ranked[0].Relevance, 1e-9)
}

func TestRankingConfig_Validate(t *testing.T) {
	assert.NoError(t, usecase.DefaultRankingConfig().Validate())

	bad := usecase.DefaultRankingConfig()
	bad.DecayDays = 0
	assert.Error(t, bad.Validate())

	missing := usecase.DefaultRankingConfig()
	delete(missing.BasePriors, domain.SourceTypeKPI)
	assert.Error(t, missing.Validate())
}

func TestRetrievalConfig_Validate(t *testing.T) {
	cfg := usecase.DefaultRetrievalConfig()
	assert.NoError(t, cfg.Validate())
	assert.Equal(t, 20, cfg.LimitFor(domain.SourceTypeInsight))
	assert.Equal(t, 15, cfg.LimitFor(domain.SourceTypeEvidence))
	assert.Equal(t, 10, cfg.LimitFor(domain.SourceTypeKPI))
	assert.Equal(t, 10, cfg.LimitFor(domain.SourceTypeScenario))

	cfg.EvidenceLimit = 0
	assert.Error(t, cfg.Validate())
}
