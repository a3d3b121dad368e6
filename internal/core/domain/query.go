package domain

// QueryIntent is the classified purpose of a user query.
type QueryIntent string

const (
	IntentSpecificPart    QueryIntent = "specific_part"
	IntentCompatibility   QueryIntent = "compatibility"
	IntentTroubleshooting QueryIntent = "troubleshooting"
	IntentEducational     QueryIntent = "educational"
	IntentPartSearch      QueryIntent = "part_search"
)

func (i QueryIntent) Valid() bool {
	switch i {
	case IntentSpecificPart, IntentCompatibility, IntentTroubleshooting, IntentEducational, IntentPartSearch:
		return true
	default:
		return false
	}
}

// ApplianceType is the appliance family a query refers to. Empty means
// unspecified or an appliance outside the supported domain.
type ApplianceType string

const (
	ApplianceRefrigerator ApplianceType = "refrigerator"
	ApplianceDishwasher   ApplianceType = "dishwasher"
	ApplianceUnknown      ApplianceType = ""
)

// SearchStrategy is an advisory tag describing the fetch plan chosen for
// a classified query.
type SearchStrategy string

const (
	StrategyExactMatch          SearchStrategy = "exact_match"
	StrategyCompatibilitySearch SearchStrategy = "compatibility_search"
	StrategySymptomBased        SearchStrategy = "symptom_based"
	StrategySemanticSearch      SearchStrategy = "semantic_search"
	StrategyEducationalContent  SearchStrategy = "educational_content"
)

// QueryAnalysis is the output of query classification. KeyTerms is always
// non-nil; Intent is always one of the five valid values.
type QueryAnalysis struct {
	Intent        QueryIntent    `json:"intent"`
	ApplianceType ApplianceType  `json:"appliance_type,omitempty"`
	KeyTerms      []string       `json:"key_terms"`
	Confidence    float64        `json:"confidence"`
	Strategy      SearchStrategy `json:"search_strategy"`
	OriginalQuery string         `json:"-"`
}

// StrategyForIntent maps an intent to its advisory search strategy tag.
func StrategyForIntent(intent QueryIntent) SearchStrategy {
	switch intent {
	case IntentSpecificPart:
		return StrategyExactMatch
	case IntentCompatibility:
		return StrategyCompatibilitySearch
	case IntentTroubleshooting:
		return StrategySymptomBased
	case IntentEducational:
		return StrategyEducationalContent
	default:
		return StrategySemanticSearch
	}
}
