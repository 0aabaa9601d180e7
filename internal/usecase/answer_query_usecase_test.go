package usecase_test

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"insight-engine/internal/domain"
	"insight-engine/internal/usecase"
)

func newEngine(store domain.KnowledgeStore, encoder domain.VectorEncoder, llm domain.LLMClient, opts ...usecase.AnswerQueryOption) usecase.AnswerQueryUsecase {
	ranking := usecase.DefaultRankingConfig()
	embedder := usecase.NewEmbedder(encoder, time.Second, nil)
	retrieve := usecase.NewRetrieveContextUsecase(store, ranking, usecase.DefaultRetrievalConfig(), nil)
	ranker := usecase.NewRanker(embedder, ranking)
	synthesizer := usecase.NewSynthesizer(llm, usecase.NewPromptBuilder(), 512, time.Second, nil)
	return usecase.NewAnswerQueryUsecase(retrieve, embedder, ranker, synthesizer, llm, nil, opts...)
}

func emptyStore() *mockKnowledgeStore {
	store := new(mockKnowledgeStore)
	store.On("ReadCollection", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return([]domain.KnowledgeItem{}, nil)
	return store
}

func failingStore() *mockKnowledgeStore {
	store := new(mockKnowledgeStore)
	store.On("ReadCollection", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(nil, errors.New("store down"))
	return store
}

func failingEncoder() *mockVectorEncoder {
	encoder := new(mockVectorEncoder)
	encoder.On("Encode", mock.Anything, mock.Anything).Return(nil, errors.New("embedding backend down"))
	return encoder
}

func unavailableLLM() *mockLLMClient {
	llm := new(mockLLMClient)
	llm.On("Healthy", mock.Anything).Return(errors.New("connection refused"))
	return llm
}

func TestAnswerQuery_Success(t *testing.T) {
	query := "why is churn accelerating"

	store := new(mockKnowledgeStore)
	store.On("ReadCollection", mock.Anything, domain.SourceTypeInsight, "org-1", mock.Anything, mock.Anything).
		Return([]domain.KnowledgeItem{{ID: "i1", Title: "Churn insight", Content: query}}, nil)
	store.On("ReadCollection", mock.Anything, mock.Anything, "org-1", mock.Anything, mock.Anything).
		Return([]domain.KnowledgeItem{}, nil)

	llm := new(mockLLMClient)
	llm.On("Healthy", mock.Anything).Return(nil)
	llm.On("Generate", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(&domain.LLMResponse{Text: "Churn is accelerating in month two.\nWe recommend revisiting onboarding.", Done: true}, nil)

	response := newEngine(store, nil, llm).Execute(context.Background(), domain.QueryContext{
		Query:          query,
		OrganizationID: "org-1",
		Domain:         domain.DomainStrategic,
	})

	assert.Contains(t, response.Answer, "month two")
	assert.GreaterOrEqual(t, response.Confidence, 0.1)
	assert.LessOrEqual(t, response.Confidence, 0.95)
	if assert.Len(t, response.Sources, 1) {
		assert.Equal(t, "i1", response.Sources[0].ID)
	}
	assert.NotEmpty(t, response.RelatedQuestions)
	if assert.NotEmpty(t, response.ActionableItems) {
		assert.Equal(t, domain.ActionRecommendation, response.ActionableItems[0].Type)
	}
}

func TestAnswerQuery_SourcesCappedAndSorted(t *testing.T) {
	items := make([]domain.KnowledgeItem, 8)
	for i := range items {
		items[i] = domain.KnowledgeItem{
			ID:      fmt.Sprintf("i%d", i),
			Title:   "Insight",
			Content: fmt.Sprintf("insight number %d", i),
		}
	}

	store := new(mockKnowledgeStore)
	store.On("ReadCollection", mock.Anything, domain.SourceTypeInsight, mock.Anything, mock.Anything, mock.Anything).
		Return(items, nil)
	store.On("ReadCollection", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return([]domain.KnowledgeItem{}, nil)

	llm := new(mockLLMClient)
	llm.On("Healthy", mock.Anything).Return(nil)
	llm.On("Generate", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(&domain.LLMResponse{Text: "answer", Done: true}, nil)

	response := newEngine(store, nil, llm).Execute(context.Background(), domain.QueryContext{
		Query:          "insights overview",
		OrganizationID: "org-1",
	})

	assert.Len(t, response.Sources, 5)
	for i := 1; i < len(response.Sources); i++ {
		assert.GreaterOrEqual(t, response.Sources[i-1].Relevance, response.Sources[i].Relevance)
	}
}

func TestAnswerQuery_DegradedPath(t *testing.T) {
	store := new(mockKnowledgeStore)
	store.On("ReadCollection", mock.Anything, domain.SourceTypeInsight, mock.Anything, mock.Anything, mock.Anything).
		Return([]domain.KnowledgeItem{{ID: "i1", Title: "Insight", Content: "relevant text"}}, nil)
	store.On("ReadCollection", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return([]domain.KnowledgeItem{}, nil)

	llm := unavailableLLM()

	response := newEngine(store, nil, llm).Execute(context.Background(), domain.QueryContext{
		Query:          "q",
		OrganizationID: "org-1",
	})

	assert.Contains(t, response.Answer, "AI synthesis is currently unavailable")
	assert.NotEmpty(t, response.Sources)
	assert.LessOrEqual(t, response.Confidence, 0.5)
	llm.AssertNotCalled(t, "Generate", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestAnswerQuery_GracefulTotalFailure(t *testing.T) {
	response := newEngine(emptyStore(), failingEncoder(), unavailableLLM()).
		Execute(context.Background(), domain.QueryContext{
			Query:          "anything at all",
			OrganizationID: "org-1",
		})

	assert.NotNil(t, response)
	assert.Empty(t, response.Sources)
	assert.GreaterOrEqual(t, response.Confidence, 0.1)
	assert.LessOrEqual(t, response.Confidence, 0.3)
	assert.Contains(t, response.Answer, "No directly relevant data was found")

	seen := make(map[string]bool)
	for _, q := range response.RelatedQuestions {
		assert.False(t, seen[q])
		seen[q] = true
	}
	assert.LessOrEqual(t, len(response.RelatedQuestions), 5)
}

func TestAnswerQuery_EmptyOrganization(t *testing.T) {
	llm := new(mockLLMClient)
	llm.On("Healthy", mock.Anything).Return(nil)
	llm.On("Generate", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(&domain.LLMResponse{Text: "Consider recording insights first.", Done: true}, nil)

	response := newEngine(emptyStore(), nil, llm).Execute(context.Background(), domain.QueryContext{
		Query:          "what is our churn",
		OrganizationID: "empty-org",
	})

	assert.Contains(t, response.Answer, "No directly relevant data was found")
	assert.Empty(t, response.Sources)
	assert.GreaterOrEqual(t, response.Confidence, 0.1)
	assert.LessOrEqual(t, response.Confidence, 0.2)
}

func TestAnswerQuery_NilGenerationBackend(t *testing.T) {
	response := newEngine(emptyStore(), nil, nil).Execute(context.Background(), domain.QueryContext{
		Query:          "q",
		OrganizationID: "org-1",
	})

	assert.NotNil(t, response)
	assert.GreaterOrEqual(t, response.Confidence, 0.1)
}

func TestAnswerQuery_AlertsOnUrgentConfidentFindings(t *testing.T) {
	query := "production incidents are increasing"

	store := new(mockKnowledgeStore)
	store.On("ReadCollection", mock.Anything, domain.SourceTypeInsight, mock.Anything, mock.Anything, mock.Anything).
		Return([]domain.KnowledgeItem{
			{ID: "i1", Title: "Incident insight", Content: query},
			{ID: "i2", Title: "Second insight", Content: query},
		}, nil)
	store.On("ReadCollection", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return([]domain.KnowledgeItem{}, nil)

	answer := "Immediate remediation of the deployment pipeline is critical for stability.\n" +
		strings.Repeat("The incident rate doubled and the on-call load is unsustainable.\n", 20)
	llm := new(mockLLMClient)
	llm.On("Healthy", mock.Anything).Return(nil)
	llm.On("Generate", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(&domain.LLMResponse{Text: answer, Done: true}, nil)

	sink := new(mockAlertSink)
	sink.On("Notify", mock.Anything, mock.MatchedBy(func(alert domain.Alert) bool {
		return alert.Severity == "high" && alert.AIConfidence > 0.7 && len(alert.SuggestedActions) > 0
	})).Return(nil)

	response := newEngine(store, nil, llm, usecase.WithAlertSink(sink)).
		Execute(context.Background(), domain.QueryContext{
			Query:          query,
			OrganizationID: "org-1",
		})

	assert.Greater(t, response.Confidence, 0.7)
	sink.AssertExpectations(t)
}

func TestAnswerQuery_AlertFailureDoesNotFailQuery(t *testing.T) {
	query := "incident backlog"

	store := new(mockKnowledgeStore)
	store.On("ReadCollection", mock.Anything, domain.SourceTypeInsight, mock.Anything, mock.Anything, mock.Anything).
		Return([]domain.KnowledgeItem{{ID: "i1", Title: "Insight", Content: query}}, nil)
	store.On("ReadCollection", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return([]domain.KnowledgeItem{}, nil)

	answer := "Urgent fixes are critical right now.\n" +
		strings.Repeat("Context line for structural quality scoring.\n", 20)
	llm := new(mockLLMClient)
	llm.On("Healthy", mock.Anything).Return(nil)
	llm.On("Generate", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(&domain.LLMResponse{Text: answer, Done: true}, nil)

	sink := new(mockAlertSink)
	sink.On("Notify", mock.Anything, mock.Anything).Return(errors.New("webhook down"))

	response := newEngine(store, nil, llm, usecase.WithAlertSink(sink)).
		Execute(context.Background(), domain.QueryContext{
			Query:          query,
			OrganizationID: "org-1",
		})

	assert.NotNil(t, response)
	assert.NotEmpty(t, response.Answer)
}

func TestAnswerQuery_CacheHitSkipsPipeline(t *testing.T) {
	store := emptyStore()
	llm := new(mockLLMClient)
	llm.On("Healthy", mock.Anything).Return(nil)
	llm.On("Generate", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(&domain.LLMResponse{Text: "cached answer", Done: true}, nil)

	engine := newEngine(store, nil, llm, usecase.WithAnswerCache(8, time.Minute))
	qc := domain.QueryContext{Query: "repeat question", OrganizationID: "org-1"}

	first := engine.Execute(context.Background(), qc)
	second := engine.Execute(context.Background(), qc)

	assert.Same(t, first, second)
	store.AssertNumberOfCalls(t, "ReadCollection", 4)
}

func TestAnswerQuery_DistinctScopesNotShared(t *testing.T) {
	store := emptyStore()
	llm := new(mockLLMClient)
	llm.On("Healthy", mock.Anything).Return(nil)
	llm.On("Generate", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(&domain.LLMResponse{Text: "answer", Done: true}, nil)

	engine := newEngine(store, nil, llm, usecase.WithAnswerCache(8, time.Minute))

	engine.Execute(context.Background(), domain.QueryContext{Query: "q", OrganizationID: "org-1"})
	engine.Execute(context.Background(), domain.QueryContext{Query: "q", OrganizationID: "org-2"})

	store.AssertNumberOfCalls(t, "ReadCollection", 8)
}
