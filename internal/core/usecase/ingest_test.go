package usecase

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/partdesk/parts-assistant/internal/core/domain"
	"github.com/partdesk/parts-assistant/internal/core/ports"
)

type writerFake struct {
	parts    []domain.Part
	repairs  []domain.RepairGuide
	articles []domain.Article
	err      error
}

func (f *writerFake) UpsertParts(_ context.Context, parts []domain.Part) error {
	if f.err != nil {
		return f.err
	}
	f.parts = append(f.parts, parts...)
	return nil
}

func (f *writerFake) UpsertRepairs(_ context.Context, repairs []domain.RepairGuide) error {
	if f.err != nil {
		return f.err
	}
	f.repairs = append(f.repairs, repairs...)
	return nil
}

func (f *writerFake) UpsertArticles(_ context.Context, articles []domain.Article) error {
	if f.err != nil {
		return f.err
	}
	f.articles = append(f.articles, articles...)
	return nil
}

func writeTempJSON(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write temp file: %v", err)
	}
	return path
}

func TestIngestFileParts(t *testing.T) {
	path := writeTempJSON(t, "parts.json", `[
		{
			"part_number": "PS11752778",
			"name": "Water Filter",
			"price": "$34.95",
			"manufacturer": "Whirlpool",
			"product_types": "Refrigerator.",
			"availability": "In Stock",
			"product_url": "https://example.com/PS11752778",
			"symptoms": "Water tastes bad"
		},
		{
			"part_number": "PS345",
			"name": "Drain Hose",
			"price": 12.5,
			"manufacturer": "GE",
			"product_types": "Dishwasher.",
			"availability": "Out of Stock"
		}
	]`)

	writer := &writerFake{}
	vector := &vectorStoreFake{}
	uc := NewIngestCatalogUseCase(writer, &embedderFake{}, vector, discardLogger())

	if err := uc.IngestFile(context.Background(), ports.CatalogEvent{Kind: "parts", Path: path}); err != nil {
		t.Fatalf("IngestFile() error = %v", err)
	}

	if len(writer.parts) != 2 {
		t.Fatalf("upserted parts = %d, want 2", len(writer.parts))
	}
	first := writer.parts[0]
	if first.Brand != "Whirlpool" {
		t.Fatalf("Brand = %q, want manufacturer mapped to brand", first.Brand)
	}
	if first.Category != domain.ApplianceRefrigerator {
		t.Fatalf("Category = %q, want derived from product_types", first.Category)
	}
	if first.Price != 34.95 {
		t.Fatalf("Price = %v, want dollar string parsed", first.Price)
	}
	if !first.InStock {
		t.Fatalf("InStock = false, want availability label mapped")
	}
	second := writer.parts[1]
	if second.InStock {
		t.Fatalf("second part should be out of stock")
	}
	if second.Category != domain.ApplianceDishwasher {
		t.Fatalf("second Category = %q", second.Category)
	}

	if vector.indexed[partsCollection] != 2 {
		t.Fatalf("indexed = %v, want 2 docs in parts collection", vector.indexed)
	}
}

func TestIngestFileRepairs(t *testing.T) {
	path := writeTempJSON(t, "repairs.json", `[
		{
			"product": "Dishwasher",
			"symptom": "Leaking",
			"description": "Water pooling under the door",
			"difficulty": "Easy",
			"percentage": 27,
			"parts": "Door Gasket, Drain Hose",
			"repair_video_url": "https://example.com/video"
		}
	]`)

	writer := &writerFake{}
	vector := &vectorStoreFake{}
	uc := NewIngestCatalogUseCase(writer, &embedderFake{}, vector, discardLogger())

	if err := uc.IngestFile(context.Background(), ports.CatalogEvent{Kind: "repairs", Path: path}); err != nil {
		t.Fatalf("IngestFile() error = %v", err)
	}
	if len(writer.repairs) != 1 {
		t.Fatalf("upserted repairs = %d", len(writer.repairs))
	}
	repair := writer.repairs[0]
	if repair.ApplianceType != domain.ApplianceDishwasher {
		t.Fatalf("ApplianceType = %q", repair.ApplianceType)
	}
	if repair.Reported != 27 {
		t.Fatalf("Reported = %v", repair.Reported)
	}
	if vector.indexed[repairsCollection] != 1 {
		t.Fatalf("indexed = %v", vector.indexed)
	}
}

func TestIngestFileArticles(t *testing.T) {
	path := writeTempJSON(t, "blogs.json", `[
		{"title": "Dishwasher Care", "url": "https://example.com/blog/1", "author": "Sam"}
	]`)

	writer := &writerFake{}
	vector := &vectorStoreFake{}
	uc := NewIngestCatalogUseCase(writer, &embedderFake{}, vector, discardLogger())

	if err := uc.IngestFile(context.Background(), ports.CatalogEvent{Kind: "articles", Path: path}); err != nil {
		t.Fatalf("IngestFile() error = %v", err)
	}
	if len(writer.articles) != 1 || writer.articles[0].Title != "Dishwasher Care" {
		t.Fatalf("articles = %+v", writer.articles)
	}
	if vector.indexed[articlesCollection] != 1 {
		t.Fatalf("indexed = %v", vector.indexed)
	}
}

func TestIngestFileUnknownKind(t *testing.T) {
	path := writeTempJSON(t, "x.json", `[]`)
	uc := NewIngestCatalogUseCase(&writerFake{}, &embedderFake{}, &vectorStoreFake{}, discardLogger())

	err := uc.IngestFile(context.Background(), ports.CatalogEvent{Kind: "manuals", Path: path})
	if !domain.IsKind(err, domain.ErrInvalidInput) {
		t.Fatalf("err = %v, want invalid input kind", err)
	}
}

func TestIngestFileMissingFile(t *testing.T) {
	uc := NewIngestCatalogUseCase(&writerFake{}, &embedderFake{}, &vectorStoreFake{}, discardLogger())
	err := uc.IngestFile(context.Background(), ports.CatalogEvent{Kind: "parts", Path: "/nonexistent.json"})
	if !domain.IsKind(err, domain.ErrInvalidInput) {
		t.Fatalf("err = %v, want invalid input kind", err)
	}
}

func TestIngestFileMalformedJSON(t *testing.T) {
	path := writeTempJSON(t, "bad.json", `{not json`)
	uc := NewIngestCatalogUseCase(&writerFake{}, &embedderFake{}, &vectorStoreFake{}, discardLogger())

	err := uc.IngestFile(context.Background(), ports.CatalogEvent{Kind: "parts", Path: path})
	if !domain.IsKind(err, domain.ErrInvalidInput) {
		t.Fatalf("err = %v, want invalid input kind", err)
	}
}

func TestIngestPartsPropagatesWriteError(t *testing.T) {
	uc := NewIngestCatalogUseCase(&writerFake{err: errors.New("db down")}, &embedderFake{}, &vectorStoreFake{}, discardLogger())
	err := uc.IngestParts(context.Background(), []domain.Part{{PartNumber: "PS1"}})
	if err == nil {
		t.Fatalf("expected write error to propagate")
	}
}

func TestIngestPartsEmptyIsNoop(t *testing.T) {
	vector := &vectorStoreFake{}
	uc := NewIngestCatalogUseCase(&writerFake{}, &embedderFake{}, vector, discardLogger())
	if err := uc.IngestParts(context.Background(), nil); err != nil {
		t.Fatalf("IngestParts(nil) error = %v", err)
	}
	if len(vector.indexed) != 0 {
		t.Fatalf("no documents should be indexed")
	}
}
