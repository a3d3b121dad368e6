package bootstrap

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/partdesk/parts-assistant/internal/config"
	"github.com/partdesk/parts-assistant/internal/core/ports"
	"github.com/partdesk/parts-assistant/internal/core/usecase"
	"github.com/partdesk/parts-assistant/internal/infrastructure/llm/deepseek"
	"github.com/partdesk/parts-assistant/internal/infrastructure/llm/voyage"
	"github.com/partdesk/parts-assistant/internal/infrastructure/queue/nats"
	"github.com/partdesk/parts-assistant/internal/infrastructure/repository/postgres"
	"github.com/partdesk/parts-assistant/internal/infrastructure/resilience"
	"github.com/partdesk/parts-assistant/internal/infrastructure/vector/qdrant"
)

type App struct {
	Config config.Config
	Logger *slog.Logger

	Queue  ports.MessageQueue
	Chat   ports.QueryProcessor
	Ingest *usecase.IngestCatalogUseCase

	closeFn func()
}

func New(ctx context.Context, cfg config.Config, logger *slog.Logger) (*App, error) {
	if logger == nil {
		logger = slog.Default()
	}

	db, err := postgres.OpenDB(cfg.PostgresDSN)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	catalog := postgres.NewCatalogRepository(db)
	if err := catalog.EnsureSchema(ctx); err != nil {
		return nil, fmt.Errorf("ensure catalog schema: %w", err)
	}
	conversations := postgres.NewConversationRepository(db)
	if err := conversations.EnsureSchema(ctx); err != nil {
		return nil, fmt.Errorf("ensure conversation schema: %w", err)
	}

	executor := resilience.NewExecutor(resilience.DefaultPolicy(), logger)

	queue, err := nats.NewWithOptions(cfg.NATSURL, cfg.NATSSubject, nats.Options{
		ResilienceExecutor: executor,
		Logger:             logger,
	})
	if err != nil {
		return nil, fmt.Errorf("init message queue: %w", err)
	}

	llm := deepseek.New(cfg.DeepSeekURL, cfg.DeepSeekAPIKey, cfg.DeepSeekModel, executor)
	embedder := voyage.New(cfg.VoyageURL, cfg.VoyageAPIKey, cfg.VoyageModel)
	vectorDB := qdrant.New(cfg.QdrantURL)

	classifier := usecase.NewClassifier(llm, seconds(cfg.ClassifyTimeoutSeconds), logger)
	retriever := usecase.NewRetriever(catalog, embedder, vectorDB, usecase.RetrieverLimits{
		StoreTimeout:  seconds(cfg.RetrieveTimeoutSeconds),
		VectorTimeout: seconds(cfg.RetrieveTimeoutSeconds),
	}, logger)

	chat := usecase.NewProcessQueryUseCase(classifier, retriever, llm, conversations, usecase.ProcessLimits{
		HistoryMessages: cfg.ChatHistoryMessages,
		GenerateTimeout: seconds(cfg.GenerateTimeoutSeconds),
	}, logger)
	ingest := usecase.NewIngestCatalogUseCase(catalog, embedder, vectorDB, logger)

	return &App{
		Config: cfg,
		Logger: logger,

		Queue:  queue,
		Chat:   chat,
		Ingest: ingest,

		closeFn: func() {
			queue.Close()
			_ = db.Close()
		},
	}, nil
}

func (a *App) Close() {
	if a.closeFn != nil {
		a.closeFn()
	}
}

func seconds(n int) time.Duration {
	return time.Duration(n) * time.Second
}
