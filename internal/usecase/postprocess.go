package usecase

import (
	"strings"

	"insight-engine/internal/domain"
)

const (
	maxActionableItems    = 5
	maxRelatedQuestions   = 5
	minActionableSentence = 20
	maxActionableLength   = 200
)

// actionRule maps keyword patterns in a sentence to an actionable framing.
// A sentence may match several rules and yield one item per match.
type actionRule struct {
	keywords []string
	action   domain.ActionType
	priority domain.Priority
}

// Rule order is significant: items come out in sentence order, then rule
// order within a sentence.
var actionRules = []actionRule{
	{keywords: []string{"recommend", "suggest", "should"}, action: domain.ActionRecommendation, priority: domain.PriorityMedium},
	{keywords: []string{"investigate", "analyze", "review"}, action: domain.ActionInvestigation, priority: domain.PriorityMedium},
	{keywords: []string{"decide", "determine", "choose"}, action: domain.ActionDecision, priority: domain.PriorityHigh},
	{keywords: []string{"urgent", "critical", "immediate"}, action: domain.ActionRecommendation, priority: domain.PriorityHigh},
}

// ExtractActionables scans the answer for actionable sentences and tags
// each with a type and priority. Matches across rules are deliberately not
// deduplicated: each rule is a distinct framing of the same sentence.
func ExtractActionables(answerText string) []domain.ActionableItem {
	var items []domain.ActionableItem

	for _, sentence := range splitSentences(answerText) {
		if len(sentence) <= minActionableSentence {
			continue
		}
		lower := strings.ToLower(sentence)
		for _, rule := range actionRules {
			if !matchesAny(lower, rule.keywords) {
				continue
			}
			items = append(items, domain.ActionableItem{
				Type:        rule.action,
				Priority:    rule.priority,
				Description: truncate(sentence, maxActionableLength),
			})
			if len(items) >= maxActionableItems {
				return items
			}
		}
	}

	return items
}

func splitSentences(text string) []string {
	raw := strings.FieldsFunc(text, func(r rune) bool {
		return r == '.' || r == '!' || r == '?'
	})
	sentences := make([]string, 0, len(raw))
	for _, s := range raw {
		if trimmed := strings.TrimSpace(s); trimmed != "" {
			sentences = append(sentences, trimmed)
		}
	}
	return sentences
}

func matchesAny(lower string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}

func truncate(s string, limit int) string {
	if len(s) <= limit {
		return s
	}
	return s[:limit] + "..."
}

// domainQuestions is the canned follow-up lookup per query domain.
var domainQuestions = map[domain.QueryDomain][]string{
	domain.DomainStrategic: {
		"How does this align with our long-term strategic objectives?",
		"Which strategic initiatives would be affected by acting on this?",
		"What would our main competitors likely do in this situation?",
	},
	domain.DomainOperational: {
		"Which operational processes are the current bottleneck?",
		"What would it take to improve throughput in the affected area?",
		"How do our operational metrics compare to last quarter?",
	},
	domain.DomainFinancial: {
		"What is the projected financial impact over the next two quarters?",
		"Which cost drivers contribute most to this picture?",
		"How does this affect our current budget allocations?",
	},
	domain.DomainRisk: {
		"What is the likelihood and impact of the main risk identified here?",
		"Which mitigations are already in place for this risk?",
		"What early warning indicators should we monitor?",
	},
	domain.DomainInnovation: {
		"Which emerging opportunities does this open up?",
		"What experiments could validate this direction cheaply?",
		"How does this compare to what the market is adopting?",
	},
}

// genericQuestions is used when the query carries no domain, and as the
// fixed set on the insufficient-context fallback.
var genericQuestions = []string{
	"What are the key drivers behind this situation?",
	"Which business units are most affected?",
	"What has changed since this was last reviewed?",
}

// typeQuestions adds one follow-up per source type actually used.
var typeQuestions = map[domain.SourceType]string{
	domain.SourceTypeInsight:        "What other insights relate to this topic?",
	domain.SourceTypeEvidence:       "Is there more recent evidence supporting this?",
	domain.SourceTypeKPI:            "Which KPIs are underperforming and need attention?",
	domain.SourceTypeScenario:       "Which scenario is currently most likely to play out?",
	domain.SourceTypeRecommendation: "Which open recommendations should be prioritized?",
}

// RelatedQuestions derives follow-up questions from the query's domain and
// the source types actually present among the ranked sources. The result is
// deduplicated and capped.
func RelatedQuestions(qc domain.QueryContext, sourceTypes map[domain.SourceType]bool) []string {
	questions := make([]string, 0, maxRelatedQuestions)
	seen := make(map[string]bool)

	add := func(q string) {
		if len(questions) >= maxRelatedQuestions || seen[q] {
			return
		}
		seen[q] = true
		questions = append(questions, q)
	}

	base, ok := domainQuestions[qc.Domain]
	if !ok {
		base = genericQuestions
	}
	for _, q := range base {
		add(q)
	}

	// Iterate in the closed type order so output is deterministic.
	for _, t := range domain.AllSourceTypes() {
		if sourceTypes[t] {
			add(typeQuestions[t])
		}
	}

	return questions
}
