package usecase

import "github.com/partdesk/parts-assistant/internal/core/domain"

const (
	maxPrimaryParts    = 5
	maxPrimaryRepairs  = 3
	maxPrimaryArticles = 2

	maxSupplementaryItems        = 2
	supplementInclusionThreshold = 2
)

// Fuse merges primary and supplementary results into one bounded context.
// Primary groups are truncated head-first, preserving each source's ranking
// order. Supplementary hits are included only when the truncated primary
// yield is still thin, and never more than maxSupplementaryItems of them.
func Fuse(primary domain.RetrievalBundle, supplementary []domain.VectorHit) domain.FusedContext {
	fused := domain.FusedContext{
		Parts:    truncateParts(primary.Parts, maxPrimaryParts),
		Repairs:  truncateRepairs(primary.Repairs, maxPrimaryRepairs),
		Articles: truncateArticles(primary.Articles, maxPrimaryArticles),
	}

	if fused.PrimaryCount() < supplementInclusionThreshold {
		if len(supplementary) > maxSupplementaryItems {
			supplementary = supplementary[:maxSupplementaryItems]
		}
		fused.Supplementary = supplementary
	}

	fused.Sources = sourceLines(fused)
	return fused
}

func truncateParts(parts []domain.Part, limit int) []domain.Part {
	if len(parts) > limit {
		return parts[:limit]
	}
	return parts
}

func truncateRepairs(repairs []domain.RepairGuide, limit int) []domain.RepairGuide {
	if len(repairs) > limit {
		return repairs[:limit]
	}
	return repairs
}

func truncateArticles(articles []domain.Article, limit int) []domain.Article {
	if len(articles) > limit {
		return articles[:limit]
	}
	return articles
}

func sourceLines(fused domain.FusedContext) []string {
	lines := make([]string, 0, fused.PrimaryCount())
	for _, part := range fused.Parts {
		lines = append(lines, domain.PartSourceLine(part))
	}
	for _, repair := range fused.Repairs {
		lines = append(lines, domain.RepairSourceLine(repair))
	}
	for _, article := range fused.Articles {
		lines = append(lines, domain.ArticleSourceLine(article))
	}
	return lines
}
