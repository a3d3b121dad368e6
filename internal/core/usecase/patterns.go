package usecase

import (
	"regexp"
	"strings"
)

// Named pattern matchers for entity extraction. These are pure functions so
// the routing layer stays deterministic and testable without any store or
// model behind it.

var (
	// Part numbers as they appear in catalog data: a PS-prefixed id, a
	// two-letter manufacturer prefix, a W-prefixed Whirlpool id, or a
	// mixed letter/digit manufacturer code.
	partNumberExtractPattern = regexp.MustCompile(`\b(?:PS\d+|[A-Z]{2}\d+|W\d+|[A-Z]\d+[A-Z]+\d*)\b`)

	// Model numbers: two or more leading letters followed by digits and an
	// optional alphanumeric tail (e.g. GSS25GSHSS, KFIS29PBMS).
	modelNumberExtractPattern = regexp.MustCompile(`\b[A-Z]{2,}\d+[A-Z]*\d*\b`)

	partNumberTermPattern  = regexp.MustCompile(`^(?:PS\d+|[A-Z]{2}\d+)$`)
	modelNumberTermPattern = regexp.MustCompile(`^[A-Z]{2,}\d+[A-Z]*\d*$`)
)

var partTypeVocabulary = []string{
	"filter", "seal", "door", "pump", "motor", "valve", "hose", "gasket", "dispenser", "ice maker",
}

var brandVocabulary = []string{
	"whirlpool", "ge", "frigidaire", "kenmore", "samsung", "lg", "maytag", "bosch",
}

// ExtractPartNumbers returns part-number-shaped tokens from raw query text.
func ExtractPartNumbers(query string) []string {
	return partNumberExtractPattern.FindAllString(query, -1)
}

// ExtractModelNumbers returns model-number-shaped tokens from raw query text.
func ExtractModelNumbers(query string) []string {
	return modelNumberExtractPattern.FindAllString(query, -1)
}

// IsPartNumberTerm reports whether a single key term is part-number shaped:
// an optional PS prefix with digits, or two uppercase letters with digits.
func IsPartNumberTerm(term string) bool {
	return partNumberTermPattern.MatchString(term)
}

// IsModelNumberTerm reports whether a single key term is model-number shaped.
func IsModelNumberTerm(term string) bool {
	return modelNumberTermPattern.MatchString(term)
}

// MatchPartTypes returns every part-type vocabulary entry present as a
// substring of the lower-cased query.
func MatchPartTypes(queryLower string) []string {
	out := make([]string, 0, 2)
	for _, partType := range partTypeVocabulary {
		if strings.Contains(queryLower, partType) {
			out = append(out, partType)
		}
	}
	return out
}

// MatchBrands returns every brand vocabulary entry present as a substring of
// the lower-cased query.
func MatchBrands(queryLower string) []string {
	out := make([]string, 0, 2)
	for _, brand := range brandVocabulary {
		if strings.Contains(queryLower, brand) {
			out = append(out, brand)
		}
	}
	return out
}

// IsBrandTerm reports whether a key term is a known brand name.
func IsBrandTerm(term string) bool {
	lower := strings.ToLower(term)
	for _, brand := range brandVocabulary {
		if lower == brand {
			return true
		}
	}
	return false
}

// BrandFilterValue normalizes a brand key term to its catalog spelling
// (first letter upper-cased).
func BrandFilterValue(term string) string {
	lower := strings.ToLower(term)
	if lower == "" {
		return ""
	}
	return strings.ToUpper(lower[:1]) + lower[1:]
}
