package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/partdesk/parts-assistant/internal/core/domain"
)

// CatalogRepository implements both the read and write sides of the
// structured catalog over Postgres full-text search. Relevance ordering
// comes from ts_rank alone; ties keep the scan order.
type CatalogRepository struct {
	db *sql.DB
}

func NewCatalogRepository(db *sql.DB) *CatalogRepository {
	return &CatalogRepository{db: db}
}

func OpenDB(dsn string) (*sql.DB, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("sql open: %w", err)
	}
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(10)
	db.SetConnMaxLifetime(30 * time.Minute)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("db ping: %w", err)
	}
	return db, nil
}

func (r *CatalogRepository) EnsureSchema(ctx context.Context) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin schema tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	// Serialize bootstrap DDL across api/loader startups.
	if _, err := tx.ExecContext(ctx, `SELECT pg_advisory_xact_lock($1)`, int64(2026082901)); err != nil {
		return fmt.Errorf("acquire schema lock: %w", err)
	}

	const query = `
CREATE TABLE IF NOT EXISTS parts (
	part_number TEXT PRIMARY KEY,
	name TEXT NOT NULL,
	description TEXT NOT NULL DEFAULT '',
	brand TEXT NOT NULL DEFAULT '',
	category TEXT NOT NULL DEFAULT '',
	price DOUBLE PRECISION NOT NULL DEFAULT 0,
	in_stock BOOLEAN NOT NULL DEFAULT FALSE,
	availability TEXT NOT NULL DEFAULT '',
	product_url TEXT NOT NULL DEFAULT '',
	image_url TEXT NOT NULL DEFAULT '',
	install_video_url TEXT NOT NULL DEFAULT '',
	installation_difficulty TEXT NOT NULL DEFAULT '',
	installation_time TEXT NOT NULL DEFAULT '',
	symptoms TEXT NOT NULL DEFAULT '',
	search_tsv TSVECTOR GENERATED ALWAYS AS (
		to_tsvector('english', name || ' ' || description || ' ' || brand || ' ' || symptoms)
	) STORED
);

CREATE INDEX IF NOT EXISTS idx_parts_search_tsv ON parts USING GIN(search_tsv);
CREATE INDEX IF NOT EXISTS idx_parts_category ON parts(category);

CREATE TABLE IF NOT EXISTS part_compatibility (
	part_number TEXT NOT NULL REFERENCES parts(part_number) ON DELETE CASCADE,
	model_number TEXT NOT NULL,
	appliance_type TEXT NOT NULL DEFAULT '',
	PRIMARY KEY (part_number, model_number)
);

CREATE INDEX IF NOT EXISTS idx_part_compatibility_model ON part_compatibility(model_number);

CREATE TABLE IF NOT EXISTS repairs (
	id BIGSERIAL PRIMARY KEY,
	appliance_type TEXT NOT NULL DEFAULT '',
	symptom TEXT NOT NULL,
	description TEXT NOT NULL DEFAULT '',
	difficulty TEXT NOT NULL DEFAULT '',
	parts_needed TEXT NOT NULL DEFAULT '',
	repair_video_url TEXT NOT NULL DEFAULT '',
	symptom_detail_url TEXT NOT NULL DEFAULT '',
	percentage_reported DOUBLE PRECISION NOT NULL DEFAULT 0,
	search_tsv TSVECTOR GENERATED ALWAYS AS (
		to_tsvector('english', symptom || ' ' || description || ' ' || parts_needed)
	) STORED,
	UNIQUE (appliance_type, symptom)
);

CREATE INDEX IF NOT EXISTS idx_repairs_search_tsv ON repairs USING GIN(search_tsv);

CREATE TABLE IF NOT EXISTS articles (
	id BIGSERIAL PRIMARY KEY,
	title TEXT NOT NULL,
	url TEXT NOT NULL DEFAULT '',
	author TEXT NOT NULL DEFAULT '',
	excerpt TEXT NOT NULL DEFAULT '',
	content TEXT NOT NULL DEFAULT '',
	search_tsv TSVECTOR GENERATED ALWAYS AS (
		to_tsvector('english', title || ' ' || excerpt || ' ' || content)
	) STORED,
	UNIQUE (title)
);

CREATE INDEX IF NOT EXISTS idx_articles_search_tsv ON articles USING GIN(search_tsv);
`
	if _, err := tx.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("execute schema ddl: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit schema tx: %w", err)
	}
	return nil
}

const partColumns = `part_number, name, description, brand, category, price, in_stock, availability,
	product_url, image_url, install_video_url, installation_difficulty, installation_time, symptoms`

func (r *CatalogRepository) SearchParts(ctx context.Context, query string, limit int, filter domain.PartFilter) ([]domain.Part, error) {
	var sb strings.Builder
	sb.WriteString(`SELECT ` + partColumns + `
FROM parts
WHERE search_tsv @@ plainto_tsquery('english', $1)`)

	args := []any{query}
	if filter.Brand != "" {
		args = append(args, filter.Brand)
		sb.WriteString(` AND brand = $` + strconv.Itoa(len(args)))
	}
	if filter.Category != domain.ApplianceUnknown {
		args = append(args, string(filter.Category))
		sb.WriteString(` AND category = $` + strconv.Itoa(len(args)))
	}
	if filter.MaxPrice > 0 {
		args = append(args, filter.MaxPrice)
		sb.WriteString(` AND price <= $` + strconv.Itoa(len(args)))
	}
	if filter.InStock {
		sb.WriteString(` AND in_stock = TRUE`)
	}

	args = append(args, limit)
	sb.WriteString(`
ORDER BY ts_rank(search_tsv, plainto_tsquery('english', $1)) DESC
LIMIT $` + strconv.Itoa(len(args)))

	rows, err := r.db.QueryContext(ctx, sb.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("search parts: %w", err)
	}
	defer rows.Close()
	return scanParts(rows)
}

func (r *CatalogRepository) GetPartByNumber(ctx context.Context, partNumber string) (*domain.Part, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+partColumns+`
FROM parts
WHERE part_number = $1`, partNumber)

	part, err := scanPart(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.WrapError(domain.ErrPartNotFound, "get_part_by_number", fmt.Errorf("part %s", partNumber))
		}
		return nil, fmt.Errorf("get part %s: %w", partNumber, err)
	}

	models, err := r.compatibleModels(ctx, partNumber)
	if err != nil {
		return nil, err
	}
	part.CompatibleWith = models
	return part, nil
}

func (r *CatalogRepository) SearchCompatibleParts(ctx context.Context, modelNumber string, applianceType domain.ApplianceType) ([]domain.Part, error) {
	var sb strings.Builder
	sb.WriteString(`SELECT ` + prefixedPartColumns("p") + `
FROM parts p
JOIN part_compatibility pc ON pc.part_number = p.part_number
WHERE pc.model_number = $1`)

	args := []any{modelNumber}
	if applianceType != domain.ApplianceUnknown {
		args = append(args, string(applianceType))
		sb.WriteString(` AND pc.appliance_type = $` + strconv.Itoa(len(args)))
	}
	sb.WriteString(`
ORDER BY p.part_number`)

	rows, err := r.db.QueryContext(ctx, sb.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("search compatible parts: %w", err)
	}
	defer rows.Close()
	return scanParts(rows)
}

func (r *CatalogRepository) SearchRepairs(ctx context.Context, symptomQuery string, applianceType domain.ApplianceType, limit int) ([]domain.RepairGuide, error) {
	var sb strings.Builder
	sb.WriteString(`SELECT appliance_type, symptom, description, difficulty, parts_needed,
	repair_video_url, symptom_detail_url, percentage_reported
FROM repairs
WHERE search_tsv @@ plainto_tsquery('english', $1)`)

	args := []any{symptomQuery}
	if applianceType != domain.ApplianceUnknown {
		args = append(args, string(applianceType))
		sb.WriteString(` AND appliance_type = $` + strconv.Itoa(len(args)))
	}
	args = append(args, limit)
	sb.WriteString(`
ORDER BY ts_rank(search_tsv, plainto_tsquery('english', $1)) DESC
LIMIT $` + strconv.Itoa(len(args)))

	rows, err := r.db.QueryContext(ctx, sb.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("search repairs: %w", err)
	}
	defer rows.Close()

	var repairs []domain.RepairGuide
	for rows.Next() {
		var repair domain.RepairGuide
		var appliance string
		if err := rows.Scan(&appliance, &repair.Symptom, &repair.Description, &repair.Difficulty,
			&repair.PartsNeeded, &repair.VideoURL, &repair.DetailURL, &repair.Reported); err != nil {
			return nil, fmt.Errorf("scan repair: %w", err)
		}
		repair.ApplianceType = domain.ApplianceType(appliance)
		repairs = append(repairs, repair)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate repairs: %w", err)
	}
	return repairs, nil
}

func (r *CatalogRepository) SearchArticles(ctx context.Context, query string, limit int) ([]domain.Article, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT title, url, author, excerpt, content
FROM articles
WHERE search_tsv @@ plainto_tsquery('english', $1)
ORDER BY ts_rank(search_tsv, plainto_tsquery('english', $1)) DESC
LIMIT $2`, query, limit)
	if err != nil {
		return nil, fmt.Errorf("search articles: %w", err)
	}
	defer rows.Close()

	var articles []domain.Article
	for rows.Next() {
		var article domain.Article
		if err := rows.Scan(&article.Title, &article.URL, &article.Author, &article.Excerpt, &article.Content); err != nil {
			return nil, fmt.Errorf("scan article: %w", err)
		}
		articles = append(articles, article)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate articles: %w", err)
	}
	return articles, nil
}

func (r *CatalogRepository) UpsertParts(ctx context.Context, parts []domain.Part) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin upsert tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	for _, part := range parts {
		_, err := tx.ExecContext(ctx, `
INSERT INTO parts (
	part_number, name, description, brand, category, price, in_stock, availability,
	product_url, image_url, install_video_url, installation_difficulty, installation_time, symptoms
) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14)
ON CONFLICT (part_number) DO UPDATE SET
	name = EXCLUDED.name,
	description = EXCLUDED.description,
	brand = EXCLUDED.brand,
	category = EXCLUDED.category,
	price = EXCLUDED.price,
	in_stock = EXCLUDED.in_stock,
	availability = EXCLUDED.availability,
	product_url = EXCLUDED.product_url,
	image_url = EXCLUDED.image_url,
	install_video_url = EXCLUDED.install_video_url,
	installation_difficulty = EXCLUDED.installation_difficulty,
	installation_time = EXCLUDED.installation_time,
	symptoms = EXCLUDED.symptoms
`,
			part.PartNumber, part.Name, part.Description, part.Brand, string(part.Category), part.Price,
			part.InStock, part.Availability, part.ProductURL, part.ImageURL, part.InstallVideo,
			part.InstallLevel, part.InstallTime, part.Symptoms,
		)
		if err != nil {
			return fmt.Errorf("upsert part %s: %w", part.PartNumber, err)
		}

		for _, model := range part.CompatibleWith {
			_, err := tx.ExecContext(ctx, `
INSERT INTO part_compatibility (part_number, model_number, appliance_type)
VALUES ($1,$2,$3)
ON CONFLICT (part_number, model_number) DO UPDATE SET appliance_type = EXCLUDED.appliance_type
`, part.PartNumber, model, string(part.Category))
			if err != nil {
				return fmt.Errorf("upsert compatibility %s/%s: %w", part.PartNumber, model, err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit upsert tx: %w", err)
	}
	return nil
}

func (r *CatalogRepository) UpsertRepairs(ctx context.Context, repairs []domain.RepairGuide) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin upsert tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	for _, repair := range repairs {
		_, err := tx.ExecContext(ctx, `
INSERT INTO repairs (
	appliance_type, symptom, description, difficulty, parts_needed,
	repair_video_url, symptom_detail_url, percentage_reported
) VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
ON CONFLICT (appliance_type, symptom) DO UPDATE SET
	description = EXCLUDED.description,
	difficulty = EXCLUDED.difficulty,
	parts_needed = EXCLUDED.parts_needed,
	repair_video_url = EXCLUDED.repair_video_url,
	symptom_detail_url = EXCLUDED.symptom_detail_url,
	percentage_reported = EXCLUDED.percentage_reported
`,
			string(repair.ApplianceType), repair.Symptom, repair.Description, repair.Difficulty,
			repair.PartsNeeded, repair.VideoURL, repair.DetailURL, repair.Reported,
		)
		if err != nil {
			return fmt.Errorf("upsert repair %q: %w", repair.Symptom, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit upsert tx: %w", err)
	}
	return nil
}

func (r *CatalogRepository) UpsertArticles(ctx context.Context, articles []domain.Article) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin upsert tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	for _, article := range articles {
		_, err := tx.ExecContext(ctx, `
INSERT INTO articles (title, url, author, excerpt, content)
VALUES ($1,$2,$3,$4,$5)
ON CONFLICT (title) DO UPDATE SET
	url = EXCLUDED.url,
	author = EXCLUDED.author,
	excerpt = EXCLUDED.excerpt,
	content = EXCLUDED.content
`, article.Title, article.URL, article.Author, article.Excerpt, article.Content)
		if err != nil {
			return fmt.Errorf("upsert article %q: %w", article.Title, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit upsert tx: %w", err)
	}
	return nil
}

func (r *CatalogRepository) compatibleModels(ctx context.Context, partNumber string) ([]string, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT model_number
FROM part_compatibility
WHERE part_number = $1
ORDER BY model_number`, partNumber)
	if err != nil {
		return nil, fmt.Errorf("list compatible models: %w", err)
	}
	defer rows.Close()

	var models []string
	for rows.Next() {
		var model string
		if err := rows.Scan(&model); err != nil {
			return nil, fmt.Errorf("scan compatible model: %w", err)
		}
		models = append(models, model)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate compatible models: %w", err)
	}
	return models, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanPart(row rowScanner) (*domain.Part, error) {
	var part domain.Part
	var category string
	err := row.Scan(
		&part.PartNumber, &part.Name, &part.Description, &part.Brand, &category, &part.Price,
		&part.InStock, &part.Availability, &part.ProductURL, &part.ImageURL, &part.InstallVideo,
		&part.InstallLevel, &part.InstallTime, &part.Symptoms,
	)
	if err != nil {
		return nil, err
	}
	part.Category = domain.ApplianceType(category)
	return &part, nil
}

func scanParts(rows *sql.Rows) ([]domain.Part, error) {
	var parts []domain.Part
	for rows.Next() {
		part, err := scanPart(rows)
		if err != nil {
			return nil, fmt.Errorf("scan part: %w", err)
		}
		parts = append(parts, *part)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate parts: %w", err)
	}
	return parts, nil
}

func prefixedPartColumns(alias string) string {
	cols := strings.Split(partColumns, ",")
	for i, col := range cols {
		cols[i] = alias + "." + strings.TrimSpace(col)
	}
	return strings.Join(cols, ", ")
}
