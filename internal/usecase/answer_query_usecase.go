package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	lru "github.com/hashicorp/golang-lru/v2/expirable"

	"insight-engine/internal/domain"
	"insight-engine/internal/infra/metrics"
)

const (
	maxSources = 5

	// Alerts fire only for confident, high-priority findings.
	alertMinConfidence = 0.7
	alertTimeout       = 5 * time.Second

	fallbackConfidence = 0.2
)

// AnswerQueryUsecase is the engine's sole entry point: one query context in,
// one structurally valid response out. No error ever crosses this boundary.
type AnswerQueryUsecase interface {
	Execute(ctx context.Context, qc domain.QueryContext) *domain.RAGResponse
}

type answerQueryUsecase struct {
	retrieve    RetrieveContextUsecase
	embedder    *Embedder
	ranker      *Ranker
	synthesizer *Synthesizer
	llm         domain.LLMClient
	alerts      domain.AlertSink
	cache       *lru.LRU[string, *domain.RAGResponse]
	logger      *slog.Logger
}

// AnswerQueryOption tweaks optional orchestrator behavior.
type AnswerQueryOption func(*answerQueryUsecase)

// WithAnswerCache enables the per-scope answer cache. Size 0 disables it.
func WithAnswerCache(size int, ttl time.Duration) AnswerQueryOption {
	return func(u *answerQueryUsecase) {
		if size > 0 {
			u.cache = lru.NewLRU[string, *domain.RAGResponse](size, nil, ttl)
		}
	}
}

// WithAlertSink routes urgent findings to the notification system.
func WithAlertSink(sink domain.AlertSink) AnswerQueryOption {
	return func(u *answerQueryUsecase) {
		u.alerts = sink
	}
}

// NewAnswerQueryUsecase wires the pipeline stages into the orchestrator.
func NewAnswerQueryUsecase(
	retrieve RetrieveContextUsecase,
	embedder *Embedder,
	ranker *Ranker,
	synthesizer *Synthesizer,
	llm domain.LLMClient,
	logger *slog.Logger,
	opts ...AnswerQueryOption,
) AnswerQueryUsecase {
	if logger == nil {
		logger = slog.Default()
	}
	u := &answerQueryUsecase{
		retrieve:    retrieve,
		embedder:    embedder,
		ranker:      ranker,
		synthesizer: synthesizer,
		llm:         llm,
		logger:      logger,
	}
	for _, opt := range opts {
		opt(u)
	}
	return u
}

// Execute runs Retrieve -> Embed -> Rank -> Synthesize -> Postprocess with
// graceful degradation at every stage.
func (u *answerQueryUsecase) Execute(ctx context.Context, qc domain.QueryContext) (response *domain.RAGResponse) {
	requestID := uuid.NewString()
	start := time.Now()

	// Last line of defense: a stage bug must still yield a valid response.
	defer func() {
		if r := recover(); r != nil {
			u.logger.Error("answer_query_panic_recovered",
				slog.String("request_id", requestID),
				slog.Any("panic", r))
			metrics.QueriesTotal.WithLabelValues("panic").Inc()
			response = u.insufficientContextResponse(qc)
		}
	}()

	if cached, ok := u.cacheGet(qc); ok {
		metrics.QueriesTotal.WithLabelValues("cache_hit").Inc()
		return cached
	}

	degraded := u.llm == nil
	if !degraded {
		if err := u.llm.Healthy(ctx); err != nil {
			degraded = true
			u.logger.Warn("generation_backend_unavailable",
				slog.String("request_id", requestID),
				slog.String("error", err.Error()))
		}
	}

	records := u.retrieve.Execute(ctx, qc)
	queryVector := u.embedder.Embed(ctx, qc.Query)
	ranked := u.ranker.Rank(ctx, records, queryVector)

	draft := u.synthesizer.Synthesize(ctx, qc, ranked, degraded)

	sources := ranked
	if len(sources) > maxSources {
		sources = sources[:maxSources]
	}

	presentTypes := make(map[domain.SourceType]bool, len(sources))
	for _, s := range sources {
		presentTypes[s.Type] = true
	}

	response = &domain.RAGResponse{
		Answer:           draft.Text,
		Confidence:       draft.Confidence,
		Sources:          sources,
		RelatedQuestions: RelatedQuestions(qc, presentTypes),
		ActionableItems:  ExtractActionables(draft.Text),
	}

	u.maybeAlert(qc, response)
	u.cacheAdd(qc, response)

	outcome := "ok"
	if degraded {
		outcome = "degraded"
	}
	metrics.QueriesTotal.WithLabelValues(outcome).Inc()
	metrics.QueryDuration.Observe(time.Since(start).Seconds())

	u.logger.Info("query_answered",
		slog.String("request_id", requestID),
		slog.String("organization_id", qc.OrganizationID),
		slog.Bool("degraded", degraded),
		slog.Int("source_count", len(response.Sources)),
		slog.Float64("confidence", response.Confidence),
		slog.Duration("elapsed", time.Since(start)))

	return response
}

// insufficientContextResponse is the fixed worst-case answer.
func (u *answerQueryUsecase) insufficientContextResponse(qc domain.QueryContext) *domain.RAGResponse {
	return &domain.RAGResponse{
		Answer:     "There is not enough context available to answer this query. " + noDataNotice,
		Confidence: fallbackConfidence,
		Sources:    nil,
		RelatedQuestions: append([]string(nil),
			genericQuestions...),
		ActionableItems: []domain.ActionableItem{
			{
				Type:        domain.ActionInvestigation,
				Priority:    domain.PriorityMedium,
				Description: "Investigate why no relevant knowledge items were found for this query scope.",
			},
		},
	}
}

// maybeAlert notifies the sink about confident high-priority findings.
// Failures are logged and swallowed: alerting never fails the query.
func (u *answerQueryUsecase) maybeAlert(qc domain.QueryContext, response *domain.RAGResponse) {
	if u.alerts == nil || response.Confidence <= alertMinConfidence {
		return
	}

	var actions []string
	for _, item := range response.ActionableItems {
		if item.Priority == domain.PriorityHigh {
			actions = append(actions, item.Description)
		}
	}
	if len(actions) == 0 {
		return
	}

	alert := domain.Alert{
		Title:            fmt.Sprintf("High-priority findings for %q", qc.Query),
		Description:      actions[0],
		Severity:         "high",
		AIConfidence:     response.Confidence,
		SuggestedActions: actions,
	}

	notifyCtx, cancel := context.WithTimeout(context.Background(), alertTimeout)
	defer cancel()
	if err := u.alerts.Notify(notifyCtx, alert); err != nil {
		metrics.AlertFailures.Inc()
		u.logger.Warn("alert_notification_failed",
			slog.String("organization_id", qc.OrganizationID),
			slog.String("error", err.Error()))
	}
}

func (u *answerQueryUsecase) cacheKey(qc domain.QueryContext) string {
	return strings.Join([]string{
		qc.OrganizationID,
		qc.BusinessUnitID,
		qc.InitiativeID,
		string(qc.Domain),
		string(qc.Timeframe),
		qc.Query,
	}, "\x1f")
}

func (u *answerQueryUsecase) cacheGet(qc domain.QueryContext) (*domain.RAGResponse, bool) {
	if u.cache == nil {
		return nil, false
	}
	return u.cache.Get(u.cacheKey(qc))
}

func (u *answerQueryUsecase) cacheAdd(qc domain.QueryContext, response *domain.RAGResponse) {
	if u.cache == nil {
		return
	}
	u.cache.Add(u.cacheKey(qc), response)
}
