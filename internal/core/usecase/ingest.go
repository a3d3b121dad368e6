package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/partdesk/parts-assistant/internal/core/domain"
	"github.com/partdesk/parts-assistant/internal/core/ports"
)

const embedBatchSize = 50

const articlesCollection = "articles"

const (
	eventKindParts    = "parts"
	eventKindRepairs  = "repairs"
	eventKindArticles = "articles"
)

// IngestCatalogUseCase loads scraped catalog files into both stores: the
// structured store via upserts and the vector store via embedded documents.
type IngestCatalogUseCase struct {
	writer   ports.CatalogWriter
	embedder ports.Embedder
	vector   ports.VectorStore
	logger   *slog.Logger
}

var _ ports.CatalogIngestor = (*IngestCatalogUseCase)(nil)

func NewIngestCatalogUseCase(
	writer ports.CatalogWriter,
	embedder ports.Embedder,
	vector ports.VectorStore,
	logger *slog.Logger,
) *IngestCatalogUseCase {
	if logger == nil {
		logger = slog.Default()
	}
	return &IngestCatalogUseCase{
		writer:   writer,
		embedder: embedder,
		vector:   vector,
		logger:   logger,
	}
}

func (uc *IngestCatalogUseCase) IngestFile(ctx context.Context, event ports.CatalogEvent) error {
	const op = "ingest_file"

	data, err := os.ReadFile(event.Path)
	if err != nil {
		return domain.WrapError(domain.ErrInvalidInput, op, err)
	}

	switch event.Kind {
	case eventKindParts:
		var scraped []scrapedPart
		if err := json.Unmarshal(data, &scraped); err != nil {
			return domain.WrapError(domain.ErrInvalidInput, op, err)
		}
		parts := make([]domain.Part, 0, len(scraped))
		for _, s := range scraped {
			parts = append(parts, s.toDomain())
		}
		return uc.IngestParts(ctx, parts)
	case eventKindRepairs:
		var scraped []scrapedRepair
		if err := json.Unmarshal(data, &scraped); err != nil {
			return domain.WrapError(domain.ErrInvalidInput, op, err)
		}
		repairs := make([]domain.RepairGuide, 0, len(scraped))
		for _, s := range scraped {
			repairs = append(repairs, s.toDomain())
		}
		return uc.ingestRepairs(ctx, repairs)
	case eventKindArticles:
		var scraped []scrapedArticle
		if err := json.Unmarshal(data, &scraped); err != nil {
			return domain.WrapError(domain.ErrInvalidInput, op, err)
		}
		articles := make([]domain.Article, 0, len(scraped))
		for _, s := range scraped {
			articles = append(articles, s.toDomain())
		}
		return uc.ingestArticles(ctx, articles)
	default:
		return domain.WrapError(domain.ErrInvalidInput, op, fmt.Errorf("unknown catalog kind %q", event.Kind))
	}
}

// IngestParts upserts parts into the structured store and indexes their
// document projections. Used both for scraped JSON files and workbook
// imports.
func (uc *IngestCatalogUseCase) IngestParts(ctx context.Context, parts []domain.Part) error {
	const op = "ingest_parts"

	if len(parts) == 0 {
		return nil
	}
	if err := uc.writer.UpsertParts(ctx, parts); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	docs := make([]ports.VectorDocument, 0, len(parts))
	for _, part := range parts {
		docs = append(docs, ports.VectorDocument{
			ID:   "part_" + part.PartNumber,
			Text: partDocumentText(part),
			Metadata: map[string]string{
				"part_number": part.PartNumber,
				"name":        part.Name,
				"brand":       part.Brand,
				"category":    string(part.Category),
				"price":       strconv.FormatFloat(part.Price, 'f', 2, 64),
				"in_stock":    strconv.FormatBool(part.InStock),
				"url":         part.ProductURL,
			},
		})
	}
	if err := uc.indexDocuments(ctx, partsCollection, docs); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	uc.logger.Info("catalog_ingested", "kind", eventKindParts, "records", len(parts))
	return nil
}

func (uc *IngestCatalogUseCase) ingestRepairs(ctx context.Context, repairs []domain.RepairGuide) error {
	const op = "ingest_repairs"

	if len(repairs) == 0 {
		return nil
	}
	if err := uc.writer.UpsertRepairs(ctx, repairs); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	docs := make([]ports.VectorDocument, 0, len(repairs))
	for i, repair := range repairs {
		docs = append(docs, ports.VectorDocument{
			ID:   fmt.Sprintf("repair_%d", i),
			Text: repairDocumentText(repair),
			Metadata: map[string]string{
				"appliance":  string(repair.ApplianceType),
				"symptom":    repair.Symptom,
				"difficulty": repair.Difficulty,
				"video_url":  repair.VideoURL,
			},
		})
	}
	if err := uc.indexDocuments(ctx, repairsCollection, docs); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	uc.logger.Info("catalog_ingested", "kind", eventKindRepairs, "records", len(repairs))
	return nil
}

func (uc *IngestCatalogUseCase) ingestArticles(ctx context.Context, articles []domain.Article) error {
	const op = "ingest_articles"

	if len(articles) == 0 {
		return nil
	}
	if err := uc.writer.UpsertArticles(ctx, articles); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	docs := make([]ports.VectorDocument, 0, len(articles))
	for i, article := range articles {
		docs = append(docs, ports.VectorDocument{
			ID:   fmt.Sprintf("article_%d", i),
			Text: article.Title,
			Metadata: map[string]string{
				"title":  article.Title,
				"url":    article.URL,
				"author": article.Author,
			},
		})
	}
	if err := uc.indexDocuments(ctx, articlesCollection, docs); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	uc.logger.Info("catalog_ingested", "kind", eventKindArticles, "records", len(articles))
	return nil
}

func (uc *IngestCatalogUseCase) indexDocuments(ctx context.Context, collection string, docs []ports.VectorDocument) error {
	for start := 0; start < len(docs); start += embedBatchSize {
		end := min(start+embedBatchSize, len(docs))
		batch := docs[start:end]

		texts := make([]string, len(batch))
		for i, doc := range batch {
			texts[i] = doc.Text
		}
		vectors, err := uc.embedder.Embed(ctx, texts)
		if err != nil {
			return fmt.Errorf("embed batch at %d: %w", start, err)
		}
		if err := uc.vector.IndexDocuments(ctx, collection, batch, vectors); err != nil {
			return fmt.Errorf("index batch at %d: %w", start, err)
		}
	}
	return nil
}

// partDocumentText is the part's embedding projection: the descriptive
// fields a semantic query is likely to phrase.
func partDocumentText(part domain.Part) string {
	fields := make([]string, 0, 8)
	appendField := func(label, value string) {
		if strings.TrimSpace(value) != "" {
			fields = append(fields, label+": "+value)
		}
	}
	appendField("Part", part.Name)
	appendField("Part Number", part.PartNumber)
	appendField("Brand", part.Brand)
	appendField("Category", string(part.Category))
	appendField("Fixes symptoms", part.Symptoms)
	appendField("Installation difficulty", part.InstallLevel)
	appendField("Installation time", part.InstallTime)
	if len(part.CompatibleWith) > 0 {
		fields = append(fields, "Compatible with: "+strings.Join(part.CompatibleWith, ", "))
	}
	return strings.Join(fields, "\n")
}

func repairDocumentText(repair domain.RepairGuide) string {
	fields := make([]string, 0, 5)
	appendField := func(label, value string) {
		if strings.TrimSpace(value) != "" {
			fields = append(fields, label+": "+value)
		}
	}
	appendField("Appliance", string(repair.ApplianceType))
	appendField("Symptom", repair.Symptom)
	appendField("Description", repair.Description)
	appendField("Required parts", repair.PartsNeeded)
	appendField("Difficulty", repair.Difficulty)
	return strings.Join(fields, "\n")
}

// scrapedPart mirrors the scraper output schema. Category is derived from
// product_types, stock state from the availability label.
type scrapedPart struct {
	PartNumber       string     `json:"part_number"`
	Name             string     `json:"name"`
	Description      string     `json:"description"`
	Price            scrapedNum `json:"price"`
	Manufacturer     string     `json:"manufacturer"`
	ProductTypes     string     `json:"product_types"`
	Availability     string     `json:"availability"`
	ProductURL       string     `json:"product_url"`
	ImageURL         string     `json:"image_url"`
	VideoURL         string     `json:"video_url"`
	InstallDifficult string     `json:"installation_difficulty"`
	InstallTime      string     `json:"installation_time"`
	Symptoms         string     `json:"symptoms"`
	Compatibility    []string   `json:"compatibility_models"`
}

func (s scrapedPart) toDomain() domain.Part {
	return domain.Part{
		PartNumber:     s.PartNumber,
		Name:           s.Name,
		Description:    s.Description,
		Brand:          s.Manufacturer,
		Category:       categoryFromProductTypes(s.ProductTypes),
		Price:          float64(s.Price),
		InStock:        strings.EqualFold(strings.TrimSpace(s.Availability), "in stock"),
		Availability:   s.Availability,
		ProductURL:     s.ProductURL,
		ImageURL:       s.ImageURL,
		InstallVideo:   s.VideoURL,
		InstallLevel:   s.InstallDifficult,
		InstallTime:    s.InstallTime,
		Symptoms:       s.Symptoms,
		CompatibleWith: s.Compatibility,
	}
}

type scrapedRepair struct {
	Product     string     `json:"product"`
	Symptom     string     `json:"symptom"`
	Description string     `json:"description"`
	Difficulty  string     `json:"difficulty"`
	Percentage  scrapedNum `json:"percentage"`
	Parts       string     `json:"parts"`
	DetailURL   string     `json:"symptom_detail_url"`
	VideoURL    string     `json:"repair_video_url"`
}

func (s scrapedRepair) toDomain() domain.RepairGuide {
	return domain.RepairGuide{
		ApplianceType: categoryFromProductTypes(s.Product),
		Symptom:       s.Symptom,
		Description:   s.Description,
		Difficulty:    s.Difficulty,
		PartsNeeded:   s.Parts,
		VideoURL:      s.VideoURL,
		DetailURL:     s.DetailURL,
		Reported:      float64(s.Percentage),
	}
}

type scrapedArticle struct {
	Title   string `json:"title"`
	URL     string `json:"url"`
	Author  string `json:"author"`
	Excerpt string `json:"excerpt"`
	Content string `json:"content"`
}

func (s scrapedArticle) toDomain() domain.Article {
	return domain.Article{
		Title:   s.Title,
		URL:     s.URL,
		Author:  s.Author,
		Excerpt: s.Excerpt,
		Content: s.Content,
	}
}

func categoryFromProductTypes(productTypes string) domain.ApplianceType {
	lower := strings.ToLower(productTypes)
	switch {
	case strings.Contains(lower, "dishwasher"):
		return domain.ApplianceDishwasher
	case strings.Contains(lower, "refrigerator") || strings.Contains(lower, "fridge"):
		return domain.ApplianceRefrigerator
	default:
		return domain.ApplianceUnknown
	}
}

// scrapedNum accepts numbers serialized either as JSON numbers or as
// strings like "34.95" or "$34.95".
type scrapedNum float64

func (n *scrapedNum) UnmarshalJSON(data []byte) error {
	trimmed := strings.TrimSpace(string(data))
	if trimmed == "null" || trimmed == `""` {
		*n = 0
		return nil
	}
	if strings.HasPrefix(trimmed, `"`) {
		var raw string
		if err := json.Unmarshal(data, &raw); err != nil {
			return err
		}
		raw = strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(raw), "$"))
		raw = strings.ReplaceAll(raw, ",", "")
		if raw == "" {
			*n = 0
			return nil
		}
		value, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return fmt.Errorf("parse numeric string %q: %w", raw, err)
		}
		*n = scrapedNum(value)
		return nil
	}
	var value float64
	if err := json.Unmarshal(data, &value); err != nil {
		return err
	}
	*n = scrapedNum(value)
	return nil
}
