package domain

import "context"

// Alert is an urgent-finding record emitted to the notification sink when a
// query surfaces high-priority actionables with high confidence.
type Alert struct {
	Title            string   `json:"title"`
	Description      string   `json:"description"`
	Severity         string   `json:"severity"`
	AIConfidence     float64  `json:"aiConfidence"`
	SuggestedActions []string `json:"suggestedActions"`
}

// AlertSink receives alerts fire-and-forget: a failed notification must
// never fail the query that produced it.
type AlertSink interface {
	Notify(ctx context.Context, alert Alert) error
}
