package excel

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/partdesk/parts-assistant/internal/core/domain"
)

// Importer reads supplier price-sheet workbooks into catalog parts. The
// first row of the first sheet names the columns; unknown columns are
// ignored so sheets with extra supplier data still import.
type Importer struct{}

func New() *Importer {
	return &Importer{}
}

func (i *Importer) ParseWorkbook(path string) ([]domain.Part, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("workbook has no sheets")
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("read sheet %q: %w", sheets[0], err)
	}
	return partsFromRows(rows)
}

func partsFromRows(rows [][]string) ([]domain.Part, error) {
	if len(rows) == 0 {
		return nil, fmt.Errorf("sheet is empty")
	}

	columns := headerIndex(rows[0])
	if _, ok := columns["part_number"]; !ok {
		return nil, fmt.Errorf("sheet is missing a part number column")
	}

	parts := make([]domain.Part, 0, len(rows)-1)
	for _, row := range rows[1:] {
		cell := func(name string) string {
			idx, ok := columns[name]
			if !ok || idx >= len(row) {
				return ""
			}
			return strings.TrimSpace(row[idx])
		}

		partNumber := cell("part_number")
		if partNumber == "" {
			continue
		}

		availability := cell("availability")
		parts = append(parts, domain.Part{
			PartNumber:   partNumber,
			Name:         cell("name"),
			Description:  cell("description"),
			Brand:        cell("brand"),
			Category:     categoryValue(cell("category")),
			Price:        priceValue(cell("price")),
			InStock:      strings.EqualFold(availability, "in stock"),
			Availability: availability,
			ProductURL:   cell("product_url"),
			InstallLevel: cell("installation_difficulty"),
			InstallTime:  cell("installation_time"),
			Symptoms:     cell("symptoms"),
		})
	}
	return parts, nil
}

// headerIndex normalizes header labels: "Part Number" and "part_number"
// address the same column.
func headerIndex(header []string) map[string]int {
	columns := make(map[string]int, len(header))
	for i, label := range header {
		key := strings.ToLower(strings.TrimSpace(label))
		key = strings.ReplaceAll(key, " ", "_")
		if key != "" {
			columns[key] = i
		}
	}
	return columns
}

func categoryValue(raw string) domain.ApplianceType {
	switch strings.ToLower(raw) {
	case "refrigerator", "fridge":
		return domain.ApplianceRefrigerator
	case "dishwasher":
		return domain.ApplianceDishwasher
	default:
		return domain.ApplianceUnknown
	}
}

func priceValue(raw string) float64 {
	raw = strings.TrimSpace(strings.TrimPrefix(raw, "$"))
	raw = strings.ReplaceAll(raw, ",", "")
	if raw == "" {
		return 0
	}
	value, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0
	}
	return value
}
