package usecase_test

import (
	"context"

	"github.com/stretchr/testify/mock"

	"insight-engine/internal/domain"
)

type mockKnowledgeStore struct {
	mock.Mock
}

func (m *mockKnowledgeStore) ReadCollection(ctx context.Context, collection domain.SourceType, organizationID string, filter domain.CollectionFilter, limit int) ([]domain.KnowledgeItem, error) {
	args := m.Called(ctx, collection, organizationID, filter, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.KnowledgeItem), args.Error(1)
}

func (m *mockKnowledgeStore) Ping(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

type mockVectorEncoder struct {
	mock.Mock
}

func (m *mockVectorEncoder) Encode(ctx context.Context, texts []string) ([][]float32, error) {
	args := m.Called(ctx, texts)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([][]float32), args.Error(1)
}

func (m *mockVectorEncoder) Version() string {
	return "mock-encoder"
}

type mockLLMClient struct {
	mock.Mock
}

func (m *mockLLMClient) Generate(ctx context.Context, prompt string, maxTokens int, temperature float32) (*domain.LLMResponse, error) {
	args := m.Called(ctx, prompt, maxTokens, temperature)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.LLMResponse), args.Error(1)
}

func (m *mockLLMClient) Healthy(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *mockLLMClient) Version() string {
	return "mock-llm"
}

type mockAlertSink struct {
	mock.Mock
}

func (m *mockAlertSink) Notify(ctx context.Context, alert domain.Alert) error {
	args := m.Called(ctx, alert)
	return args.Error(0)
}
