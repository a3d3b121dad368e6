package ports

import (
	"context"

	"github.com/partdesk/parts-assistant/internal/core/domain"
)

// QueryProcessor is the caller-facing surface of the retrieval router.
// ProcessQuery never fails outright: internal errors degrade to a fallback
// response with an error indicator on the result.
type QueryProcessor interface {
	ProcessQuery(ctx context.Context, req domain.ChatRequest) (*domain.ChatResult, error)
	History(ctx context.Context, threadID string) ([]domain.ChatMessage, error)
	Reset(ctx context.Context, threadID string) error
}

// CatalogIngestor loads scraped catalog files into the structured and
// vector stores.
type CatalogIngestor interface {
	IngestFile(ctx context.Context, event CatalogEvent) error
}
