package ports

import (
	"context"

	"github.com/partdesk/parts-assistant/internal/core/domain"
)

// PartCatalog is the read side of the structured store: full-text searches
// with relevance ranking plus point lookups. Searches return empty slices,
// never an error, on "no results".
type PartCatalog interface {
	SearchParts(ctx context.Context, query string, limit int, filter domain.PartFilter) ([]domain.Part, error)
	GetPartByNumber(ctx context.Context, partNumber string) (*domain.Part, error)
	SearchCompatibleParts(ctx context.Context, modelNumber string, applianceType domain.ApplianceType) ([]domain.Part, error)
	SearchRepairs(ctx context.Context, symptomQuery string, applianceType domain.ApplianceType, limit int) ([]domain.RepairGuide, error)
	SearchArticles(ctx context.Context, query string, limit int) ([]domain.Article, error)
}

// CatalogWriter is the ingestion side of the structured store.
type CatalogWriter interface {
	UpsertParts(ctx context.Context, parts []domain.Part) error
	UpsertRepairs(ctx context.Context, repairs []domain.RepairGuide) error
	UpsertArticles(ctx context.Context, articles []domain.Article) error
}

// Embedder builds vectors for catalog documents and query text.
type Embedder interface {
	Embed(ctx context.Context, texts []string) ([][]float32, error)
	EmbedQuery(ctx context.Context, text string) ([]float32, error)
}

// VectorDocument is one searchable document prepared for vector indexing.
type VectorDocument struct {
	ID       string
	Text     string
	Metadata map[string]string
}

// VectorStore indexes catalog documents and performs semantic search over a
// named collection. Search over an empty or missing collection returns an
// empty slice.
type VectorStore interface {
	IndexDocuments(ctx context.Context, collection string, docs []VectorDocument, vectors [][]float32) error
	Search(ctx context.Context, collection string, queryVector []float32, k int) ([]domain.VectorHit, error)
}

// QueryAnalyzer classifies a raw query via an external text-generation
// capability constrained to a fixed JSON schema. Any failure makes the
// caller fall back to rule-based classification.
type QueryAnalyzer interface {
	AnalyzeQuery(ctx context.Context, query string) (domain.QueryAnalysis, error)
}

// AnswerGenerator is the opaque generation boundary: system instructions,
// conversation history, and the user message with fused context in, final
// answer text out.
type AnswerGenerator interface {
	GenerateAnswer(ctx context.Context, system string, history []domain.ChatMessage, userMessage string) (string, error)
}

// ConversationStore persists conversation threads, keyed by thread id.
type ConversationStore interface {
	EnsureThread(ctx context.Context, threadID string) error
	AppendMessage(ctx context.Context, message domain.ChatMessage) error
	ListMessages(ctx context.Context, threadID string, limit int) ([]domain.ChatMessage, error)
	ResetThread(ctx context.Context, threadID string) error
}

// CatalogEvent names a scraped catalog file ready for loading.
type CatalogEvent struct {
	Kind string `json:"kind"` // "parts", "repairs" or "articles"
	Path string `json:"path"`
}

// MessageQueue publishes/consumes catalog ingestion events.
type MessageQueue interface {
	PublishCatalogEvent(ctx context.Context, event CatalogEvent) error
	SubscribeCatalogEvents(ctx context.Context, handler func(context.Context, CatalogEvent) error) error
}
