package di

import (
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"insight-engine/internal/adapter/notify"
	"insight-engine/internal/adapter/ollama"
	"insight-engine/internal/adapter/openaiclient"
	"insight-engine/internal/adapter/store"
	"insight-engine/internal/domain"
	"insight-engine/internal/infra/config"
	"insight-engine/internal/infra/httpclient"
	"insight-engine/internal/usecase"
)

// ApplicationComponents holds all wired dependencies for the engine.
type ApplicationComponents struct {
	Store         domain.KnowledgeStore
	Encoder       domain.VectorEncoder
	Generator     domain.LLMClient
	AnswerUsecase usecase.AnswerQueryUsecase
}

// NewApplicationComponents wires the engine from config and a database pool.
func NewApplicationComponents(cfg *config.Config, pool *pgxpool.Pool, log *slog.Logger) *ApplicationComponents {
	knowledgeStore := store.NewPostgresKnowledgeStore(pool)

	var encoder domain.VectorEncoder
	var generator domain.LLMClient
	switch cfg.AI {
	case config.ProviderOllama:
		client := httpclient.NewPooledClient(time.Duration(cfg.Ollama.TimeoutSeconds) * time.Second)
		encoder = ollama.NewEmbedder(cfg.Ollama.URL, cfg.Ollama.EmbedModel, client)
		generator = ollama.NewGenerator(cfg.Ollama.URL, cfg.Ollama.GenModel, client, cfg.Ollama.GenerateRPS)
		log.Info("ai_provider_configured",
			slog.String("provider", cfg.AI),
			slog.String("embed_model", cfg.Ollama.EmbedModel),
			slog.String("gen_model", cfg.Ollama.GenModel))
	case config.ProviderOpenAI:
		client := httpclient.NewPooledClient(time.Duration(cfg.OpenAI.TimeoutSeconds) * time.Second)
		encoder = openaiclient.NewEmbedder(cfg.OpenAI.APIKey, cfg.OpenAI.BaseURL, cfg.OpenAI.EmbedModel, client)
		generator = openaiclient.NewGenerator(cfg.OpenAI.APIKey, cfg.OpenAI.BaseURL, cfg.OpenAI.GenModel, client)
		log.Info("ai_provider_configured",
			slog.String("provider", cfg.AI),
			slog.String("embed_model", cfg.OpenAI.EmbedModel),
			slog.String("gen_model", cfg.OpenAI.GenModel))
	default:
		// Provider "none": local fallback embedding and template answers.
		log.Warn("ai_provider_disabled_running_degraded")
	}

	ranking := usecase.DefaultRankingConfig()
	limits := usecase.DefaultRetrievalConfig()

	embedder := usecase.NewEmbedder(encoder, 10*time.Second, log)
	retrieve := usecase.NewRetrieveContextUsecase(knowledgeStore, ranking, limits, log)
	ranker := usecase.NewRanker(embedder, ranking)
	synthesizer := usecase.NewSynthesizer(
		generator,
		usecase.NewPromptBuilder(),
		cfg.AnswerMaxTokens,
		time.Duration(cfg.Ollama.TimeoutSeconds)*time.Second,
		log,
	)

	opts := []usecase.AnswerQueryOption{
		usecase.WithAnswerCache(cfg.Cache.Size, time.Duration(cfg.Cache.TTLMinutes)*time.Minute),
	}
	if cfg.Alerts.WebhookURL != "" {
		sink := notify.NewWebhookSink(
			cfg.Alerts.WebhookURL,
			httpclient.NewPooledClient(time.Duration(cfg.Alerts.TimeoutSeconds)*time.Second),
		)
		opts = append(opts, usecase.WithAlertSink(sink))
		log.Info("alert_sink_enabled", slog.String("url", cfg.Alerts.WebhookURL))
	}

	answerUsecase := usecase.NewAnswerQueryUsecase(
		retrieve, embedder, ranker, synthesizer, generator, log, opts...,
	)

	return &ApplicationComponents{
		Store:         knowledgeStore,
		Encoder:       encoder,
		Generator:     generator,
		AnswerUsecase: answerUsecase,
	}
}
