package usecase

import (
	"fmt"
	"strings"

	"github.com/partdesk/parts-assistant/internal/core/domain"
)

const systemPrompt = `You are an expert appliance parts assistant specializing in refrigerator and dishwasher parts, repairs, and troubleshooting.

IMPORTANT: You will receive real data from our catalog. Use ONLY this data in your responses. Do not invent URLs, part numbers, or prices.

Guidelines:
- Only use URLs provided in the data; never guess URLs.
- Use markdown with "- " bullet points and include real prices and part numbers.
- For troubleshooting queries, always include repair guide information and video links when present in the data.
- Keep responses 300-600 words, thorough but concise, and end with an actionable next step.
- Stay within the refrigerator/dishwasher domain.
- If no relevant data is found, say so honestly.

Out of scope: for other appliances or non-repair topics, reply: "I specialize in refrigerator and dishwasher parts and repairs. For [topic], contact customer service at 1-866-319-8402."`

// fallbackResponse is the one user-visible degradation: it replaces the
// answer only when the generation boundary itself fails.
const fallbackResponse = "I apologize, but I encountered an error generating a response. Please try again or contact customer service at 1-866-319-8402."

// BuildUserMessage assembles the generator input: the raw query plus the
// fused context rendered with full field detail, grouped by record kind.
func BuildUserMessage(query string, fused domain.FusedContext) string {
	var b strings.Builder
	fmt.Fprintf(&b, "User Query: %s\n\nAvailable Data:\n%s\n\n", query, contextString(fused))
	b.WriteString("Answer using only the data above. If repair guides are present, lead with them. If the data section says no relevant data was found, state that plainly.")
	return b.String()
}

func contextString(fused domain.FusedContext) string {
	sections := make([]string, 0, 4)

	if len(fused.Parts) > 0 {
		var b strings.Builder
		b.WriteString("=== PARTS FROM CATALOG ===")
		for _, part := range fused.Parts {
			fmt.Fprintf(&b, `
Part Number: %s
Name: %s
Price: $%.2f
Brand: %s
Category: %s
In Stock: %t
Availability: %s
Product URL: %s
Installation Video: %s
Installation Difficulty: %s
Installation Time: %s
Description: %s
`,
				part.PartNumber, part.Name, part.Price, valueOr(part.Brand, "Unknown"),
				valueOr(string(part.Category), "Unknown"), part.InStock,
				valueOr(part.Availability, "Unknown"), valueOr(part.ProductURL, "Not available"),
				valueOr(part.InstallVideo, "Not available"), valueOr(part.InstallLevel, "Not specified"),
				valueOr(part.InstallTime, "Not specified"), excerpt(part.Description, 200))
		}
		sections = append(sections, b.String())
	}

	if len(fused.Repairs) > 0 {
		var b strings.Builder
		b.WriteString("=== REPAIR GUIDES ===")
		for _, repair := range fused.Repairs {
			fmt.Fprintf(&b, `
Appliance: %s
Symptom: %s
Description: %s
Difficulty: %s
Parts Needed: %s
Repair Video: %s
Detail URL: %s
`,
				valueOr(string(repair.ApplianceType), "Unknown"), repair.Symptom,
				excerpt(repair.Description, 200), valueOr(repair.Difficulty, "Unknown"),
				valueOr(repair.PartsNeeded, "Not specified"), valueOr(repair.VideoURL, "Not available"),
				valueOr(repair.DetailURL, "Not available"))
		}
		sections = append(sections, b.String())
	}

	if len(fused.Articles) > 0 {
		var b strings.Builder
		b.WriteString("=== EDUCATIONAL ARTICLES ===")
		for _, article := range fused.Articles {
			fmt.Fprintf(&b, "\nTitle: %s\nURL: %s\nAuthor: %s\nExcerpt: %s\n",
				article.Title, valueOr(article.URL, "Not available"),
				valueOr(article.Author, "Unknown"), excerpt(article.Excerpt, 150))
		}
		sections = append(sections, b.String())
	}

	if len(fused.Supplementary) > 0 {
		var b strings.Builder
		b.WriteString("=== ADDITIONAL CONTEXT ===")
		for _, hit := range fused.Supplementary {
			fmt.Fprintf(&b, "\nAdditional Info: %s\n", excerpt(hit.Text, 200))
		}
		sections = append(sections, b.String())
	}

	if len(sections) == 0 {
		return "No relevant data found in catalog."
	}
	return strings.Join(sections, "\n")
}

func valueOr(v, fallback string) string {
	if strings.TrimSpace(v) == "" {
		return fallback
	}
	return v
}

func excerpt(v string, max int) string {
	v = strings.TrimSpace(v)
	if v == "" {
		return "No description"
	}
	if len(v) <= max {
		return v
	}
	return v[:max] + "..."
}
