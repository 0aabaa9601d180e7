package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"insight-engine/internal/domain"
	"insight-engine/internal/infra/metrics"
)

// AnswerDraft is the transient output of synthesis before post-processing.
type AnswerDraft struct {
	Text       string
	Confidence float64
}

// Confidence calibration constants. The response never claims certainty and
// never drops to zero epistemic credit.
const (
	confidenceBase      = 0.3
	confidenceRelevance = 0.4
	confidenceQuality   = 0.3
	confidenceMin       = 0.1
	confidenceMax       = 0.95

	// templateConfidenceCap bounds the template path, where no actual
	// synthesis occurred.
	templateConfidenceCap = 0.5
	// noDataConfidenceCap bounds answers produced with zero grounding.
	noDataConfidenceCap = 0.2

	synthesisTemperature = 0.2
)

// noDataNotice is asserted on verbatim by callers rendering empty-corpus
// answers, so keep the phrase stable.
const noDataNotice = "No directly relevant data was found for this query."

// Synthesizer builds a context window from the top-ranked records, invokes
// the generation backend, and computes an overall confidence score.
type Synthesizer struct {
	llm           domain.LLMClient
	promptBuilder PromptBuilder
	maxTokens     int
	timeout       time.Duration
	logger        *slog.Logger
}

// NewSynthesizer wires the generation capability. A nil llm means every
// synthesis takes the template path.
func NewSynthesizer(llm domain.LLMClient, promptBuilder PromptBuilder, maxTokens int, timeout time.Duration, logger *slog.Logger) *Synthesizer {
	if maxTokens <= 0 {
		maxTokens = 768
	}
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Synthesizer{
		llm:           llm,
		promptBuilder: promptBuilder,
		maxTokens:     maxTokens,
		timeout:       timeout,
		logger:        logger,
	}
}

// Synthesize produces the answer draft. With degraded set, the generation
// backend is not consulted at all.
func (s *Synthesizer) Synthesize(ctx context.Context, qc domain.QueryContext, ranked []domain.RankedRecord, degraded bool) AnswerDraft {
	if degraded || s.llm == nil {
		return s.templateAnswer(qc, ranked)
	}

	prompt := s.promptBuilder.Build(qc, ranked)

	genCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	start := time.Now()
	resp, err := s.llm.Generate(genCtx, prompt, s.maxTokens, synthesisTemperature)
	metrics.GenerationDuration.WithLabelValues(s.llm.Version()).Observe(time.Since(start).Seconds())
	if err != nil || resp == nil || strings.TrimSpace(resp.Text) == "" {
		metrics.GenerationFallbacks.Inc()
		if err != nil {
			s.logger.Warn("generation_failed_using_template",
				slog.String("model", s.llm.Version()),
				slog.String("error", err.Error()))
		} else {
			s.logger.Warn("generation_returned_empty_using_template",
				slog.String("model", s.llm.Version()))
		}
		return s.templateAnswer(qc, ranked)
	}

	text := strings.TrimSpace(resp.Text)
	if len(ranked) == 0 {
		// The generator may still produce a useful "here's what to
		// check" answer, but without grounding it carries little credit.
		text = noDataNotice + "\n\n" + text
		return AnswerDraft{
			Text:       text,
			Confidence: clampConfidence(s.confidence(ranked, text), noDataConfidenceCap),
		}
	}

	return AnswerDraft{
		Text:       text,
		Confidence: clampConfidence(s.confidence(ranked, text), confidenceMax),
	}
}

// templateAnswer lists the top ranked records verbatim with an explicit
// disclaimer that AI synthesis was unavailable.
func (s *Synthesizer) templateAnswer(qc domain.QueryContext, ranked []domain.RankedRecord) AnswerDraft {
	var sb strings.Builder

	if len(ranked) == 0 {
		sb.WriteString(noDataNotice)
		sb.WriteString("\nAI synthesis was not available. Consider broadening the query or checking that the organization has recorded insights, evidence, KPIs, or scenarios.")
		text := sb.String()
		return AnswerDraft{
			Text:       text,
			Confidence: clampConfidence(s.confidence(ranked, text), noDataConfidenceCap),
		}
	}

	sb.WriteString("Relevant data was found, but AI synthesis is currently unavailable. The most relevant items for \"")
	sb.WriteString(qc.Query)
	sb.WriteString("\" are:\n")

	top := ranked
	if len(top) > 3 {
		top = top[:3]
	}
	for _, record := range top {
		fmt.Fprintf(&sb, "- [%s] %s: %s\n", strings.ToUpper(string(record.Type)), record.Title, record.Content)
	}

	text := sb.String()
	return AnswerDraft{
		Text:       text,
		Confidence: clampConfidence(s.confidence(ranked, text), templateConfidenceCap),
	}
}

// confidence calibrates the draft: a fixed base, the average relevance of
// the top five records, and a crude structural-quality read of the text.
func (s *Synthesizer) confidence(ranked []domain.RankedRecord, text string) float64 {
	c := confidenceBase

	if len(ranked) > 0 {
		top := ranked
		if len(top) > 5 {
			top = top[:5]
		}
		var sum float64
		for _, record := range top {
			sum += record.Relevance
		}
		c += confidenceRelevance * (sum / float64(len(top)))
	}

	// Longer, multi-line answers correlate with the generator having
	// enumerated multiple points rather than refusing.
	quality := float64(len(text)) / 1000 * 0.2
	if quality > 0.2 {
		quality = 0.2
	}
	if strings.Contains(text, "\n") {
		quality += 0.1
	}
	if quality > confidenceQuality {
		quality = confidenceQuality
	}
	c += quality

	return c
}

func clampConfidence(c, max float64) float64 {
	if c > max {
		c = max
	}
	if c < confidenceMin {
		c = confidenceMin
	}
	return c
}
