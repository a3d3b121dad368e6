package usecase

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/partdesk/parts-assistant/internal/core/domain"
	"github.com/partdesk/parts-assistant/internal/core/ports"
)

const (
	repairSearchLimit       = 5
	troubleshootPartLimit   = 5
	articleSearchLimit      = 3
	generalPartSearchLimit  = 10
	vectorPartsK            = 5
	vectorRepairsK          = 3
	supplementGateThreshold = 3

	partsCollection   = "parts"
	repairsCollection = "repairs"
)

// RetrieverLimits bounds each store call so one slow collaborator cannot
// stall the whole request.
type RetrieverLimits struct {
	StoreTimeout  time.Duration
	VectorTimeout time.Duration
}

func (l RetrieverLimits) normalize() RetrieverLimits {
	if l.StoreTimeout <= 0 {
		l.StoreTimeout = 5 * time.Second
	}
	if l.VectorTimeout <= 0 {
		l.VectorTimeout = 5 * time.Second
	}
	return l
}

// Retriever maps a QueryAnalysis to a concrete fetch plan against the
// structured store and, when the primary yield is low, the vector store.
// Fetch failures are absorbed: each failing sub-fetch contributes an empty
// slice and is logged, never propagated.
type Retriever struct {
	catalog  ports.PartCatalog
	embedder ports.Embedder
	vector   ports.VectorStore
	limits   RetrieverLimits
	logger   *slog.Logger
}

func NewRetriever(
	catalog ports.PartCatalog,
	embedder ports.Embedder,
	vector ports.VectorStore,
	limits RetrieverLimits,
	logger *slog.Logger,
) *Retriever {
	if logger == nil {
		logger = slog.Default()
	}
	return &Retriever{
		catalog:  catalog,
		embedder: embedder,
		vector:   vector,
		limits:   limits.normalize(),
		logger:   logger,
	}
}

// FetchPrimary executes the per-intent strategy table against the
// structured store.
func (r *Retriever) FetchPrimary(ctx context.Context, analysis domain.QueryAnalysis) domain.RetrievalBundle {
	switch analysis.Intent {
	case domain.IntentSpecificPart:
		return r.fetchByPartNumber(ctx, analysis)
	case domain.IntentCompatibility:
		return r.fetchByModelNumber(ctx, analysis)
	case domain.IntentTroubleshooting:
		return r.fetchTroubleshooting(ctx, analysis)
	case domain.IntentEducational:
		return r.fetchEducational(ctx, analysis)
	default:
		return r.fetchGeneralSearch(ctx, analysis)
	}
}

// NeedsSupplement reports whether the primary yield is low enough to pull
// additional context from the vector store.
func NeedsSupplement(primary domain.RetrievalBundle) bool {
	return primary.Total() < supplementGateThreshold
}

// Supplement runs a semantic nearest-neighbor query for the raw query text
// against the collection matching the intent. A vector-side failure is
// non-fatal and yields no hits.
func (r *Retriever) Supplement(ctx context.Context, analysis domain.QueryAnalysis) []domain.VectorHit {
	collection := partsCollection
	k := vectorPartsK
	switch analysis.Intent {
	case domain.IntentTroubleshooting, domain.IntentEducational:
		collection = repairsCollection
		k = vectorRepairsK
	}

	vectorCtx, cancel := context.WithTimeout(ctx, r.limits.VectorTimeout)
	defer cancel()

	queryVector, err := r.embedder.EmbedQuery(vectorCtx, analysis.OriginalQuery)
	if err != nil {
		r.logger.Warn("supplement_embed_failed", "error", err)
		return nil
	}

	hits, err := r.vector.Search(vectorCtx, collection, queryVector, k)
	if err != nil {
		r.logger.Warn("supplement_search_failed", "collection", collection, "error", err)
		return nil
	}
	return hits
}

func (r *Retriever) fetchByPartNumber(ctx context.Context, analysis domain.QueryAnalysis) domain.RetrievalBundle {
	var bundle domain.RetrievalBundle
	for _, term := range analysis.KeyTerms {
		if !IsPartNumberTerm(term) {
			continue
		}
		part, err := r.lookupPart(ctx, term)
		if err != nil {
			if !domain.IsKind(err, domain.ErrPartNotFound) {
				r.logger.Warn("part_lookup_failed", "part_number", term, "error", err)
			}
			continue
		}
		bundle.Parts = append(bundle.Parts, *part)
	}
	return bundle
}

func (r *Retriever) fetchByModelNumber(ctx context.Context, analysis domain.QueryAnalysis) domain.RetrievalBundle {
	var bundle domain.RetrievalBundle
	for _, term := range analysis.KeyTerms {
		if !IsModelNumberTerm(term) {
			continue
		}
		storeCtx, cancel := context.WithTimeout(ctx, r.limits.StoreTimeout)
		parts, err := r.catalog.SearchCompatibleParts(storeCtx, term, analysis.ApplianceType)
		cancel()
		if err != nil {
			r.logger.Warn("compatibility_search_failed", "model_number", term, "error", err)
			continue
		}
		bundle.Parts = append(bundle.Parts, parts...)
	}
	return bundle
}

func (r *Retriever) fetchTroubleshooting(ctx context.Context, analysis domain.QueryAnalysis) domain.RetrievalBundle {
	var bundle domain.RetrievalBundle
	query := troubleshootingSearchQuery(analysis)

	storeCtx, cancel := context.WithTimeout(ctx, r.limits.StoreTimeout)
	repairs, err := r.catalog.SearchRepairs(storeCtx, query, analysis.ApplianceType, repairSearchLimit)
	cancel()
	if err != nil {
		r.logger.Warn("repair_search_failed", "query", query, "error", err)
	} else {
		bundle.Repairs = append(bundle.Repairs, repairs...)
	}

	storeCtx, cancel = context.WithTimeout(ctx, r.limits.StoreTimeout)
	parts, err := r.catalog.SearchParts(storeCtx, query, troubleshootPartLimit, domain.PartFilter{
		Category: analysis.ApplianceType,
	})
	cancel()
	if err != nil {
		r.logger.Warn("part_search_failed", "query", query, "error", err)
	} else {
		bundle.Parts = append(bundle.Parts, parts...)
	}
	return bundle
}

func (r *Retriever) fetchEducational(ctx context.Context, analysis domain.QueryAnalysis) domain.RetrievalBundle {
	var bundle domain.RetrievalBundle
	query := keyTermSearchQuery(analysis)

	storeCtx, cancel := context.WithTimeout(ctx, r.limits.StoreTimeout)
	articles, err := r.catalog.SearchArticles(storeCtx, query, articleSearchLimit)
	cancel()
	if err != nil {
		r.logger.Warn("article_search_failed", "query", query, "error", err)
	} else {
		bundle.Articles = append(bundle.Articles, articles...)
	}

	for _, term := range analysis.KeyTerms {
		if !IsPartNumberTerm(term) {
			continue
		}
		part, err := r.lookupPart(ctx, term)
		if err != nil {
			if !domain.IsKind(err, domain.ErrPartNotFound) {
				r.logger.Warn("part_lookup_failed", "part_number", term, "error", err)
			}
			continue
		}
		bundle.Parts = append(bundle.Parts, *part)
	}
	return bundle
}

func (r *Retriever) fetchGeneralSearch(ctx context.Context, analysis domain.QueryAnalysis) domain.RetrievalBundle {
	var bundle domain.RetrievalBundle
	filter := domain.PartFilter{Category: analysis.ApplianceType}
	for _, term := range analysis.KeyTerms {
		if IsBrandTerm(term) {
			filter.Brand = BrandFilterValue(term)
			break
		}
	}

	storeCtx, cancel := context.WithTimeout(ctx, r.limits.StoreTimeout)
	parts, err := r.catalog.SearchParts(storeCtx, keyTermSearchQuery(analysis), generalPartSearchLimit, filter)
	cancel()
	if err != nil {
		r.logger.Warn("part_search_failed", "error", err)
		return bundle
	}
	bundle.Parts = parts
	return bundle
}

func (r *Retriever) lookupPart(ctx context.Context, partNumber string) (*domain.Part, error) {
	storeCtx, cancel := context.WithTimeout(ctx, r.limits.StoreTimeout)
	defer cancel()
	return r.catalog.GetPartByNumber(storeCtx, partNumber)
}

// troubleshootingSearchQuery drops brand terms before symptom search: brand
// names over-constrain full-text matching against repair guides.
func troubleshootingSearchQuery(analysis domain.QueryAnalysis) string {
	terms := make([]string, 0, len(analysis.KeyTerms))
	for _, term := range analysis.KeyTerms {
		if IsBrandTerm(term) {
			continue
		}
		terms = append(terms, term)
	}
	if len(terms) > 0 {
		return strings.Join(terms, " ")
	}
	if analysis.ApplianceType != domain.ApplianceUnknown {
		return string(analysis.ApplianceType)
	}
	return "appliance"
}

func keyTermSearchQuery(analysis domain.QueryAnalysis) string {
	if len(analysis.KeyTerms) > 0 {
		return strings.Join(analysis.KeyTerms, " ")
	}
	return analysis.OriginalQuery
}
