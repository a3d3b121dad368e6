package domain

import "fmt"

// RetrievalBundle holds the ordered results of one fetch against a single
// source. Each slice preserves the ranking order returned by its source.
type RetrievalBundle struct {
	Parts    []Part        `json:"parts"`
	Repairs  []RepairGuide `json:"repairs"`
	Articles []Article     `json:"articles"`
}

func (b RetrievalBundle) Total() int {
	return len(b.Parts) + len(b.Repairs) + len(b.Articles)
}

// VectorHit is one semantic nearest-neighbor result: the raw indexed text,
// its metadata payload, and the store's score, in the store's order.
type VectorHit struct {
	Text     string            `json:"text"`
	Metadata map[string]string `json:"metadata,omitempty"`
	Score    float64           `json:"score"`
}

// FusedContext is the bounded merge of primary (structured) and
// supplementary (vector) results handed to the generator. Primary groups
// are capped at 5 parts / 3 repairs / 2 articles; supplementary hits are
// present only when the truncated primary yield is low, capped at 2.
type FusedContext struct {
	Parts         []Part        `json:"parts"`
	Repairs       []RepairGuide `json:"repairs"`
	Articles      []Article     `json:"articles"`
	Supplementary []VectorHit   `json:"supplementary,omitempty"`

	// Sources is a flattened one-line-per-record list used for logging
	// and auditability, not for ranking or generation.
	Sources []string `json:"sources"`
}

func (c FusedContext) PrimaryCount() int {
	return len(c.Parts) + len(c.Repairs) + len(c.Articles)
}

func (c FusedContext) SupplementaryCount() int {
	return len(c.Supplementary)
}

func PartSourceLine(p Part) string {
	return fmt.Sprintf("Part: %s (%s) - $%.2f", p.Name, p.PartNumber, p.Price)
}

func RepairSourceLine(r RepairGuide) string {
	return fmt.Sprintf("Repair: %s - %s", r.Symptom, r.ApplianceType)
}

func ArticleSourceLine(a Article) string {
	return fmt.Sprintf("Article: %s", a.Title)
}
