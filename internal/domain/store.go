package domain

import (
	"context"
	"time"
)

// KnowledgeItem is a raw row read from one of the organizational knowledge
// collections, before normalization into a SourceRecord.
type KnowledgeItem struct {
	ID             string
	Title          string
	Content        string
	Category       string
	BusinessUnitID string
	Confidence     *float64
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// CollectionFilter narrows a collection read. Empty fields mean no filter.
type CollectionFilter struct {
	Category       string
	BusinessUnitID string
}

// KnowledgeStore is the read-only interface to the persistent store holding
// the organizational knowledge items. Results are ordered
// most-recently-updated first and capped at limit.
type KnowledgeStore interface {
	ReadCollection(ctx context.Context, collection SourceType, organizationID string, filter CollectionFilter, limit int) ([]KnowledgeItem, error)
	Ping(ctx context.Context) error
}
