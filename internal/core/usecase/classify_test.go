package usecase

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/partdesk/parts-assistant/internal/core/domain"
)

type analyzerFake struct {
	analysis domain.QueryAnalysis
	err      error
	delay    time.Duration
}

func (f *analyzerFake) AnalyzeQuery(ctx context.Context, _ string) (domain.QueryAnalysis, error) {
	if f.delay > 0 {
		select {
		case <-time.After(f.delay):
		case <-ctx.Done():
			return domain.QueryAnalysis{}, ctx.Err()
		}
	}
	if f.err != nil {
		return domain.QueryAnalysis{}, f.err
	}
	return f.analysis, nil
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestClassifyUsesAnalyzer(t *testing.T) {
	analyzer := &analyzerFake{analysis: domain.QueryAnalysis{
		Intent:        domain.IntentTroubleshooting,
		ApplianceType: domain.ApplianceDishwasher,
		KeyTerms:      []string{"leaking"},
		Confidence:    0.95,
	}}
	c := NewClassifier(analyzer, time.Second, discardLogger())

	analysis := c.Classify(context.Background(), "My dishwasher is leaking water")
	if analysis.Intent != domain.IntentTroubleshooting {
		t.Fatalf("Intent = %s, want troubleshooting", analysis.Intent)
	}
	if analysis.Strategy != domain.StrategySymptomBased {
		t.Fatalf("Strategy = %s, want symptom_based default", analysis.Strategy)
	}
	if analysis.OriginalQuery != "My dishwasher is leaking water" {
		t.Fatalf("OriginalQuery not set")
	}
}

func TestClassifySanitizesAnalyzerOutput(t *testing.T) {
	analyzer := &analyzerFake{analysis: domain.QueryAnalysis{
		Intent:        "purchase", // not a known intent
		ApplianceType: "oven",     // outside the supported domain
		Confidence:    1.7,
	}}
	c := NewClassifier(analyzer, time.Second, discardLogger())

	analysis := c.Classify(context.Background(), "buy oven rack")
	if analysis.Intent != domain.IntentPartSearch {
		t.Fatalf("Intent = %s, want part_search default", analysis.Intent)
	}
	if analysis.ApplianceType != domain.ApplianceUnknown {
		t.Fatalf("ApplianceType = %q, want unspecified", analysis.ApplianceType)
	}
	if analysis.KeyTerms == nil {
		t.Fatalf("KeyTerms must be non-nil")
	}
	if analysis.Confidence != 1 {
		t.Fatalf("Confidence = %v, want clamped to 1", analysis.Confidence)
	}
	if analysis.Strategy != domain.StrategySemanticSearch {
		t.Fatalf("Strategy = %s, want semantic_search", analysis.Strategy)
	}
}

func TestClassifyFallsBackOnAnalyzerError(t *testing.T) {
	analyzer := &analyzerFake{err: errors.New("upstream down")}
	c := NewClassifier(analyzer, time.Second, discardLogger())

	analysis := c.Classify(context.Background(), "My dishwasher is leaking water")
	if analysis.Intent != domain.IntentTroubleshooting {
		t.Fatalf("Intent = %s, want rule-based troubleshooting", analysis.Intent)
	}
	if analysis.Confidence != ruleConfidence {
		t.Fatalf("Confidence = %v, want rule confidence %v", analysis.Confidence, ruleConfidence)
	}
}

func TestClassifyFallsBackOnAnalyzerTimeout(t *testing.T) {
	analyzer := &analyzerFake{delay: 200 * time.Millisecond}
	c := NewClassifier(analyzer, 10*time.Millisecond, discardLogger())

	analysis := c.Classify(context.Background(), "How to install a water filter")
	if analysis.Intent != domain.IntentEducational {
		t.Fatalf("Intent = %s, want rule-based educational", analysis.Intent)
	}
}

func TestClassifyWithoutAnalyzer(t *testing.T) {
	c := NewClassifier(nil, time.Second, discardLogger())
	analysis := c.Classify(context.Background(), "whirlpool water filter")
	if analysis.Intent != domain.IntentPartSearch {
		t.Fatalf("Intent = %s, want part_search", analysis.Intent)
	}
}
