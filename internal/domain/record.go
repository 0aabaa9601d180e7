package domain

import "time"

// SourceType discriminates the knowledge collections a record can come from.
type SourceType string

const (
	SourceTypeInsight        SourceType = "insight"
	SourceTypeEvidence       SourceType = "evidence"
	SourceTypeKPI            SourceType = "kpi"
	SourceTypeScenario       SourceType = "scenario"
	SourceTypeRecommendation SourceType = "recommendation"
)

// AllSourceTypes returns every known source type.
func AllSourceTypes() []SourceType {
	return []SourceType{
		SourceTypeInsight,
		SourceTypeEvidence,
		SourceTypeKPI,
		SourceTypeScenario,
		SourceTypeRecommendation,
	}
}

// RetrievedSourceTypes returns the collections the retriever reads directly.
// Recommendations only appear as link targets of other records.
func RetrievedSourceTypes() []SourceType {
	return []SourceType{
		SourceTypeInsight,
		SourceTypeEvidence,
		SourceTypeKPI,
		SourceTypeScenario,
	}
}

// Valid reports whether t is one of the known source types.
func (t SourceType) Valid() bool {
	switch t {
	case SourceTypeInsight, SourceTypeEvidence, SourceTypeKPI, SourceTypeScenario, SourceTypeRecommendation:
		return true
	}
	return false
}

// QueryDomain narrows a question to a topical area of the organization.
type QueryDomain string

const (
	DomainStrategic   QueryDomain = "strategic"
	DomainOperational QueryDomain = "operational"
	DomainFinancial   QueryDomain = "financial"
	DomainRisk        QueryDomain = "risk"
	DomainInnovation  QueryDomain = "innovation"
)

// Timeframe narrows a question to a temporal horizon.
type Timeframe string

const (
	TimeframeCurrent    Timeframe = "current"
	TimeframeHistorical Timeframe = "historical"
	TimeframeFuture     Timeframe = "future"
)

// QueryContext carries one question and its organizational scope.
// Constructed per request and never mutated downstream.
type QueryContext struct {
	Query               string
	OrganizationID      string
	Domain              QueryDomain
	Timeframe           Timeframe
	BusinessUnitID      string
	InitiativeID        string
	ConfidenceThreshold float64
}

// SourceRecord is one normalized unit of retrieved knowledge used as
// grounding for an answer. BaseRelevance is a static per-type prior in [0,1].
type SourceRecord struct {
	Type          SourceType
	ID            string
	Title         string
	Content       string
	BaseRelevance float64

	// Confidence is the source's own reliability in [0,1], when recorded.
	Confidence *float64
	// CreatedAt feeds recency decay; the zero value means unknown.
	CreatedAt time.Time

	Metadata map[string]any
}

// RankedRecord pairs a source record with its derived relevance score.
// Relevance is monotonic for ordering only, not a calibrated probability.
type RankedRecord struct {
	SourceRecord
	Relevance float64
}

// ActionType classifies an actionable item extracted from an answer.
type ActionType string

const (
	ActionRecommendation ActionType = "recommendation"
	ActionInvestigation  ActionType = "investigation"
	ActionDecision       ActionType = "decision"
)

// Priority ranks how soon an actionable item should be picked up.
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

// ActionableItem is a sentence extracted from the answer, tagged with a
// type and priority, intended to seed a follow-up task.
type ActionableItem struct {
	Type        ActionType
	Priority    Priority
	Description string
	Owner       string
}

// RAGResponse is the engine's sole output. It is always structurally valid:
// degradation shows up as lower confidence and explanatory answer text,
// never as an error.
type RAGResponse struct {
	Answer           string
	Confidence       float64
	Sources          []RankedRecord
	RelatedQuestions []string
	ActionableItems  []ActionableItem
}
