package usecase

import (
	"context"
	"log/slog"
	"time"

	"github.com/partdesk/parts-assistant/internal/core/domain"
	"github.com/partdesk/parts-assistant/internal/core/ports"
)

const defaultClassifyTimeout = 10 * time.Second

// Classifier routes a raw query to a QueryAnalysis. The model-backed
// analyzer is the primary path; any failure there (transport error,
// timeout, malformed JSON) falls through to ClassifyRules. Classify never
// returns an error.
type Classifier struct {
	analyzer ports.QueryAnalyzer
	timeout  time.Duration
	logger   *slog.Logger
}

func NewClassifier(analyzer ports.QueryAnalyzer, timeout time.Duration, logger *slog.Logger) *Classifier {
	if timeout <= 0 {
		timeout = defaultClassifyTimeout
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Classifier{
		analyzer: analyzer,
		timeout:  timeout,
		logger:   logger,
	}
}

func (c *Classifier) Classify(ctx context.Context, query string) domain.QueryAnalysis {
	if c.analyzer != nil {
		analyzeCtx, cancel := context.WithTimeout(ctx, c.timeout)
		analysis, err := c.analyzer.AnalyzeQuery(analyzeCtx, query)
		cancel()
		if err == nil {
			return sanitizeAnalysis(analysis, query)
		}
		c.logger.Warn("query_analyzer_fallback", "error", err)
	}
	return ClassifyRules(query)
}

// sanitizeAnalysis applies field-level defaults to a model-produced
// analysis: unknown intents become part_search, missing key terms become an
// empty set, out-of-domain appliance types become unspecified, and
// confidence is clamped to [0,1].
func sanitizeAnalysis(analysis domain.QueryAnalysis, query string) domain.QueryAnalysis {
	if !analysis.Intent.Valid() {
		analysis.Intent = domain.IntentPartSearch
	}
	if analysis.KeyTerms == nil {
		analysis.KeyTerms = []string{}
	}
	switch analysis.ApplianceType {
	case domain.ApplianceRefrigerator, domain.ApplianceDishwasher:
	default:
		analysis.ApplianceType = domain.ApplianceUnknown
	}
	if analysis.Confidence < 0 {
		analysis.Confidence = 0
	}
	if analysis.Confidence > 1 {
		analysis.Confidence = 1
	}
	if analysis.Strategy == "" {
		analysis.Strategy = domain.StrategyForIntent(analysis.Intent)
	}
	analysis.OriginalQuery = query
	return analysis
}
