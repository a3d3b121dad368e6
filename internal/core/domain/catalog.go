package domain

// Part is one catalog record for an appliance part. Optional fields are
// empty strings / zero values rather than loosely shaped maps.
type Part struct {
	PartNumber     string        `json:"part_number"`
	Name           string        `json:"name"`
	Description    string        `json:"description,omitempty"`
	Brand          string        `json:"brand,omitempty"`
	Category       ApplianceType `json:"category,omitempty"`
	Price          float64       `json:"price,omitempty"`
	InStock        bool          `json:"in_stock"`
	Availability   string        `json:"availability,omitempty"`
	ProductURL     string        `json:"product_url,omitempty"`
	ImageURL       string        `json:"image_url,omitempty"`
	InstallVideo   string        `json:"install_video_url,omitempty"`
	InstallLevel   string        `json:"installation_difficulty,omitempty"`
	InstallTime    string        `json:"installation_time,omitempty"`
	Symptoms       string        `json:"symptoms,omitempty"`
	CompatibleWith []string      `json:"compatible_models,omitempty"`
}

// RepairGuide is one symptom-based troubleshooting record.
type RepairGuide struct {
	ApplianceType ApplianceType `json:"appliance_type"`
	Symptom       string        `json:"symptom"`
	Description   string        `json:"description,omitempty"`
	Difficulty    string        `json:"difficulty,omitempty"`
	PartsNeeded   string        `json:"parts_needed,omitempty"`
	VideoURL      string        `json:"repair_video_url,omitempty"`
	DetailURL     string        `json:"symptom_detail_url,omitempty"`
	Reported      float64       `json:"percentage_reported,omitempty"`
}

// Article is one educational blog record.
type Article struct {
	Title   string `json:"title"`
	URL     string `json:"url,omitempty"`
	Author  string `json:"author,omitempty"`
	Excerpt string `json:"excerpt,omitempty"`
	Content string `json:"content,omitempty"`
}

// PartFilter narrows full-text part searches.
type PartFilter struct {
	Brand    string
	Category ApplianceType
	MaxPrice float64
	InStock  bool
}
