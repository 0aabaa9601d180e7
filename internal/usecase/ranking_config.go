package usecase

import (
	"fmt"

	"insight-engine/internal/domain"
)

// RankingConfig holds the tunable scoring parameters. The defaults are
// hand-tuned product constants carried over from the original rollout;
// changing them is a product decision, not a correctness one, so they are
// named here rather than scattered through the ranker.
type RankingConfig struct {
	// PriorWeight scales the static per-type base relevance.
	PriorWeight float64
	// SimilarityWeight scales the query-to-content cosine similarity.
	// Equal weights keep a lucky keyword overlap from dominating an
	// unranked record type and vice versa.
	SimilarityWeight float64

	// DecayDays is the divisor of the exponential recency decay
	// exp(-age/DecayDays), a half-life of about 21 days at the default.
	// Decay approaches but never reaches zero, so an old perfect match
	// still outranks no match.
	DecayDays float64

	// ConfidenceFloor compresses the source-confidence multiplier into
	// [ConfidenceFloor, 1]: low-confidence material is discounted but
	// never fully suppressed.
	ConfidenceFloor float64

	// BasePriors is the static prior on how useful each retrieved type
	// tends to be for answering free-text questions. A written insight is
	// denser than a raw KPI number.
	BasePriors map[domain.SourceType]float64
}

// DefaultRankingConfig returns the production constants.
func DefaultRankingConfig() RankingConfig {
	return RankingConfig{
		PriorWeight:      0.5,
		SimilarityWeight: 0.5,
		DecayDays:        30,
		ConfidenceFloor:  0.5,
		BasePriors: map[domain.SourceType]float64{
			domain.SourceTypeInsight:  0.8,
			domain.SourceTypeEvidence: 0.7,
			domain.SourceTypeKPI:      0.6,
			domain.SourceTypeScenario: 0.5,
		},
	}
}

// Validate checks that the configuration is usable.
func (c RankingConfig) Validate() error {
	if c.PriorWeight < 0 || c.PriorWeight > 1 {
		return fmt.Errorf("priorWeight must be in [0,1], got %f", c.PriorWeight)
	}
	if c.SimilarityWeight < 0 || c.SimilarityWeight > 1 {
		return fmt.Errorf("similarityWeight must be in [0,1], got %f", c.SimilarityWeight)
	}
	if c.DecayDays <= 0 {
		return fmt.Errorf("decayDays must be positive, got %f", c.DecayDays)
	}
	if c.ConfidenceFloor < 0 || c.ConfidenceFloor > 1 {
		return fmt.Errorf("confidenceFloor must be in [0,1], got %f", c.ConfidenceFloor)
	}
	for _, t := range domain.RetrievedSourceTypes() {
		prior, ok := c.BasePriors[t]
		if !ok {
			return fmt.Errorf("missing base prior for source type %q", t)
		}
		if prior < 0 || prior > 1 {
			return fmt.Errorf("base prior for %q must be in [0,1], got %f", t, prior)
		}
	}
	return nil
}

// RetrievalConfig bounds the candidate set read per collection so that under
// a large corpus retrieval stays capped and recency-biased before ranking
// even runs.
type RetrievalConfig struct {
	InsightLimit  int
	EvidenceLimit int
	KPILimit      int
	ScenarioLimit int
}

// DefaultRetrievalConfig returns the per-collection caps.
func DefaultRetrievalConfig() RetrievalConfig {
	return RetrievalConfig{
		InsightLimit:  20,
		EvidenceLimit: 15,
		KPILimit:      10,
		ScenarioLimit: 10,
	}
}

// LimitFor returns the read cap for one collection.
func (c RetrievalConfig) LimitFor(t domain.SourceType) int {
	switch t {
	case domain.SourceTypeInsight:
		return c.InsightLimit
	case domain.SourceTypeEvidence:
		return c.EvidenceLimit
	case domain.SourceTypeKPI:
		return c.KPILimit
	case domain.SourceTypeScenario:
		return c.ScenarioLimit
	default:
		return 0
	}
}

// Validate checks that every retrieved collection has a positive cap.
func (c RetrievalConfig) Validate() error {
	for _, t := range domain.RetrievedSourceTypes() {
		if c.LimitFor(t) <= 0 {
			return fmt.Errorf("limit for %q must be positive, got %d", t, c.LimitFor(t))
		}
	}
	return nil
}
