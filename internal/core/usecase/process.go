package usecase

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/partdesk/parts-assistant/internal/core/domain"
	"github.com/partdesk/parts-assistant/internal/core/ports"
)

const generationFailedIndicator = "generation_failed"

// ProcessLimits bounds the orchestration-level collaborator calls.
type ProcessLimits struct {
	HistoryMessages int
	GenerateTimeout time.Duration
}

func (l ProcessLimits) normalize() ProcessLimits {
	if l.HistoryMessages <= 0 {
		l.HistoryMessages = 10
	}
	if l.GenerateTimeout <= 0 {
		l.GenerateTimeout = 30 * time.Second
	}
	return l
}

// ProcessQueryUseCase runs the full pipeline for one chat turn:
// classify, fetch primary, optionally supplement, fuse, generate.
// After input validation it never returns an error: every internal
// failure degrades to a usable ChatResult.
type ProcessQueryUseCase struct {
	classifier    *Classifier
	retriever     *Retriever
	generator     ports.AnswerGenerator
	conversations ports.ConversationStore
	limits        ProcessLimits
	logger        *slog.Logger
}

var _ ports.QueryProcessor = (*ProcessQueryUseCase)(nil)

func NewProcessQueryUseCase(
	classifier *Classifier,
	retriever *Retriever,
	generator ports.AnswerGenerator,
	conversations ports.ConversationStore,
	limits ProcessLimits,
	logger *slog.Logger,
) *ProcessQueryUseCase {
	if logger == nil {
		logger = slog.Default()
	}
	return &ProcessQueryUseCase{
		classifier:    classifier,
		retriever:     retriever,
		generator:     generator,
		conversations: conversations,
		limits:        limits.normalize(),
		logger:        logger,
	}
}

func (uc *ProcessQueryUseCase) ProcessQuery(ctx context.Context, req domain.ChatRequest) (*domain.ChatResult, error) {
	message := strings.TrimSpace(req.Message)
	if message == "" {
		return nil, domain.WrapError(domain.ErrInvalidInput, "process_query", errors.New("empty message"))
	}

	threadID := strings.TrimSpace(req.ThreadID)
	if threadID == "" {
		threadID = uuid.NewString()
	}

	logger := uc.logger.With("thread_id", threadID)
	started := time.Now()

	history := uc.loadHistory(ctx, threadID, logger)
	uc.appendMessage(ctx, threadID, "user", message, logger)

	analysis := uc.classifier.Classify(ctx, message)
	logger.Info("query_classified",
		"intent", analysis.Intent,
		"appliance_type", analysis.ApplianceType,
		"confidence", analysis.Confidence,
		"key_terms", analysis.KeyTerms,
	)

	primary := uc.retriever.FetchPrimary(ctx, analysis)

	var supplementary []domain.VectorHit
	if NeedsSupplement(primary) {
		supplementary = uc.retriever.Supplement(ctx, analysis)
	}

	fused := Fuse(primary, supplementary)
	logger.Info("context_fused",
		"primary_total", primary.Total(),
		"primary_kept", fused.PrimaryCount(),
		"supplementary_kept", fused.SupplementaryCount(),
	)

	result := &domain.ChatResult{
		ThreadID:   threadID,
		Intent:     analysis.Intent,
		Confidence: analysis.Confidence,
		SourceCounts: domain.SourceCounts{
			Primary:       fused.PrimaryCount(),
			Supplementary: fused.SupplementaryCount(),
		},
	}

	result.Response, result.Error = uc.generate(ctx, history, message, fused, logger)

	uc.appendMessage(ctx, threadID, "assistant", result.Response, logger)

	logger.Info("query_processed",
		"intent", analysis.Intent,
		"duration_ms", time.Since(started).Milliseconds(),
		"degraded", result.Error != "",
	)
	return result, nil
}

func (uc *ProcessQueryUseCase) History(ctx context.Context, threadID string) ([]domain.ChatMessage, error) {
	threadID = strings.TrimSpace(threadID)
	if threadID == "" {
		return nil, domain.WrapError(domain.ErrInvalidInput, "history", errors.New("empty thread id"))
	}
	return uc.conversations.ListMessages(ctx, threadID, uc.limits.HistoryMessages)
}

func (uc *ProcessQueryUseCase) Reset(ctx context.Context, threadID string) error {
	threadID = strings.TrimSpace(threadID)
	if threadID == "" {
		return domain.WrapError(domain.ErrInvalidInput, "reset", errors.New("empty thread id"))
	}
	return uc.conversations.ResetThread(ctx, threadID)
}

func (uc *ProcessQueryUseCase) generate(
	ctx context.Context,
	history []domain.ChatMessage,
	message string,
	fused domain.FusedContext,
	logger *slog.Logger,
) (response, indicator string) {
	generateCtx, cancel := context.WithTimeout(ctx, uc.limits.GenerateTimeout)
	defer cancel()

	answer, err := uc.generator.GenerateAnswer(generateCtx, systemPrompt, history, BuildUserMessage(message, fused))
	if err != nil {
		logger.Error("answer_generation_failed", "error", err)
		return fallbackResponse, generationFailedIndicator
	}
	if strings.TrimSpace(answer) == "" {
		logger.Error("answer_generation_empty")
		return fallbackResponse, generationFailedIndicator
	}
	return answer, ""
}

// loadHistory fetches prior turns before the current message is appended.
// A store failure here costs context, not the request.
func (uc *ProcessQueryUseCase) loadHistory(ctx context.Context, threadID string, logger *slog.Logger) []domain.ChatMessage {
	if err := uc.conversations.EnsureThread(ctx, threadID); err != nil {
		logger.Warn("thread_ensure_failed", "error", err)
		return nil
	}
	history, err := uc.conversations.ListMessages(ctx, threadID, uc.limits.HistoryMessages)
	if err != nil {
		logger.Warn("history_load_failed", "error", err)
		return nil
	}
	return history
}

func (uc *ProcessQueryUseCase) appendMessage(ctx context.Context, threadID, role, content string, logger *slog.Logger) {
	err := uc.conversations.AppendMessage(ctx, domain.ChatMessage{
		ID:        uuid.NewString(),
		ThreadID:  threadID,
		Role:      role,
		Content:   content,
		CreatedAt: time.Now().UTC(),
	})
	if err != nil {
		logger.Warn("message_append_failed", "role", role, "error", err)
	}
}
