package httpapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"insight-engine/internal/domain"
	"insight-engine/internal/usecase"
)

// AnswerRequest is the JSON body of POST /v1/intelligence/answer.
type AnswerRequest struct {
	Query               string  `json:"query"`
	OrganizationID      string  `json:"organizationId"`
	Domain              string  `json:"domain,omitempty"`
	Timeframe           string  `json:"timeframe,omitempty"`
	BusinessUnitID      string  `json:"businessUnitId,omitempty"`
	InitiativeID        string  `json:"initiativeId,omitempty"`
	ConfidenceThreshold float64 `json:"confidenceThreshold,omitempty"`
}

// SourceDTO is one grounding record in the response.
type SourceDTO struct {
	Type      string  `json:"type"`
	ID        string  `json:"id"`
	Title     string  `json:"title"`
	Excerpt   string  `json:"excerpt"`
	Relevance float64 `json:"relevance"`
}

// ActionableDTO is one extracted actionable item.
type ActionableDTO struct {
	Type        string `json:"type"`
	Priority    string `json:"priority"`
	Description string `json:"description"`
	Owner       string `json:"owner,omitempty"`
}

// AnswerResponse is the JSON body returned to the caller.
type AnswerResponse struct {
	Answer           string          `json:"answer"`
	Confidence       float64         `json:"confidence"`
	Sources          []SourceDTO     `json:"sources"`
	RelatedQuestions []string        `json:"relatedQuestions"`
	ActionableItems  []ActionableDTO `json:"actionableItems"`
}

const excerptLength = 240

// Handler exposes the engine over HTTP.
type Handler struct {
	answer usecase.AnswerQueryUsecase
	store  domain.KnowledgeStore
}

// NewHandler wires the answer usecase and the store (for readiness checks).
func NewHandler(answer usecase.AnswerQueryUsecase, store domain.KnowledgeStore) *Handler {
	return &Handler{
		answer: answer,
		store:  store,
	}
}

// Register attaches all routes to the echo instance.
func (h *Handler) Register(e *echo.Echo) {
	e.POST("/v1/intelligence/answer", h.Answer)
	e.GET("/healthz", h.Health)
	e.GET("/readyz", h.Ready)
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))
}

// Answer handles POST /v1/intelligence/answer.
func (h *Handler) Answer(c echo.Context) error {
	var req AnswerRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request body"})
	}
	if req.Query == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "query is required"})
	}
	if req.OrganizationID == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "organizationId is required"})
	}

	qc := domain.QueryContext{
		Query:               req.Query,
		OrganizationID:      req.OrganizationID,
		Domain:              domain.QueryDomain(req.Domain),
		Timeframe:           domain.Timeframe(req.Timeframe),
		BusinessUnitID:      req.BusinessUnitID,
		InitiativeID:        req.InitiativeID,
		ConfidenceThreshold: req.ConfidenceThreshold,
	}

	response := h.answer.Execute(c.Request().Context(), qc)
	return c.JSON(http.StatusOK, toAnswerResponse(response))
}

// Health handles GET /healthz.
func (h *Handler) Health(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

// Ready handles GET /readyz: the engine is ready when the knowledge store
// answers a ping. Generation-backend outages do not make the engine
// unready, it degrades instead.
func (h *Handler) Ready(c echo.Context) error {
	if h.store != nil {
		if err := h.store.Ping(c.Request().Context()); err != nil {
			return c.JSON(http.StatusServiceUnavailable, map[string]string{"status": "store down", "error": err.Error()})
		}
	}
	return c.JSON(http.StatusOK, map[string]string{"status": "ready"})
}

func toAnswerResponse(r *domain.RAGResponse) AnswerResponse {
	sources := make([]SourceDTO, 0, len(r.Sources))
	for _, s := range r.Sources {
		excerpt := s.Content
		if len(excerpt) > excerptLength {
			excerpt = excerpt[:excerptLength] + "..."
		}
		sources = append(sources, SourceDTO{
			Type:      string(s.Type),
			ID:        s.ID,
			Title:     s.Title,
			Excerpt:   excerpt,
			Relevance: s.Relevance,
		})
	}

	items := make([]ActionableDTO, 0, len(r.ActionableItems))
	for _, item := range r.ActionableItems {
		items = append(items, ActionableDTO{
			Type:        string(item.Type),
			Priority:    string(item.Priority),
			Description: item.Description,
			Owner:       item.Owner,
		})
	}

	questions := r.RelatedQuestions
	if questions == nil {
		questions = []string{}
	}

	return AnswerResponse{
		Answer:           r.Answer,
		Confidence:       r.Confidence,
		Sources:          sources,
		RelatedQuestions: questions,
		ActionableItems:  items,
	}
}
