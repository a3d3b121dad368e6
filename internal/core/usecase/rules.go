package usecase

import (
	"regexp"
	"strings"

	"github.com/partdesk/parts-assistant/internal/core/domain"
)

// ruleConfidence is the fixed confidence reported by the rule-based path,
// distinguishing it from the model path's self-reported confidence.
const ruleConfidence = 0.8

var partNumberIntentPattern = regexp.MustCompile(`\b(?:[A-Z]{2}\d+|PS\d+)\b`)

var specificPartCueWords = []string{"part number", "ps", "model"}

var compatibilityCueWords = []string{"compatible", "compatibility", "model", "work with"}

var troubleshootingCueWords = []string{
	"not working", "not making", "broken", "leaking", "problem", "issue",
	"troubleshoot", "repair", "fix", "won't work", "doesn't work", "stopped working",
}

var educationalCueWords = []string{"how to", "install", "replace", "maintenance", "clean"}

// ClassifyRules is the deterministic rule-based classifier. It is total: it
// always returns a usable QueryAnalysis for any input, which makes it both
// the safety net behind the model-backed path and a reference implementation
// independent of any external service.
func ClassifyRules(query string) domain.QueryAnalysis {
	lower := strings.ToLower(query)

	intent := detectIntent(query, lower)

	return domain.QueryAnalysis{
		Intent:        intent,
		ApplianceType: detectApplianceType(lower),
		KeyTerms:      extractKeyTerms(query, lower),
		Confidence:    ruleConfidence,
		Strategy:      domain.StrategyForIntent(intent),
		OriginalQuery: query,
	}
}

func detectIntent(query, lower string) domain.QueryIntent {
	switch {
	case containsAny(lower, specificPartCueWords) && partNumberIntentPattern.MatchString(query):
		return domain.IntentSpecificPart
	case containsAny(lower, compatibilityCueWords):
		return domain.IntentCompatibility
	case containsAny(lower, troubleshootingCueWords):
		return domain.IntentTroubleshooting
	case containsAny(lower, educationalCueWords):
		return domain.IntentEducational
	default:
		return domain.IntentPartSearch
	}
}

func detectApplianceType(lower string) domain.ApplianceType {
	switch {
	case strings.Contains(lower, "refrigerator") || strings.Contains(lower, "fridge"):
		return domain.ApplianceRefrigerator
	case strings.Contains(lower, "dishwasher"):
		return domain.ApplianceDishwasher
	default:
		return domain.ApplianceUnknown
	}
}

// extractKeyTerms unions part numbers, model numbers, part-type vocabulary
// hits and brand vocabulary hits, deduplicated in first-seen order.
func extractKeyTerms(query, lower string) []string {
	terms := make([]string, 0, 8)
	seen := make(map[string]struct{})

	add := func(values []string) {
		for _, v := range values {
			if _, ok := seen[v]; ok {
				continue
			}
			seen[v] = struct{}{}
			terms = append(terms, v)
		}
	}

	add(ExtractPartNumbers(query))
	add(ExtractModelNumbers(query))
	add(MatchPartTypes(lower))
	add(MatchBrands(lower))

	return terms
}

func containsAny(lower string, words []string) bool {
	for _, w := range words {
		if strings.Contains(lower, w) {
			return true
		}
	}
	return false
}
