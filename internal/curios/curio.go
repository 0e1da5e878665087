// Package curios is the record store for curio rows: listing ids per box,
// fetching the text fields a classification needs, and writing
// classification triples back in chunks.
package curios

import "strings"

// NoInformation is the placeholder some upstream imports write into
// detail-overview when no description exists.
const NoInformation = "No information available"

// Category is one of the fixed curio classifications.
type Category string

const (
	MemorialStatue    Category = "Memorial & Statue"
	HistoricSite      Category = "Historic Site"
	LandmarkBuilding  Category = "Landmark Building"
	PublicArt         Category = "Public Art"
	StreetFurniture   Category = "Street Furniture"
	GreenSpace        Category = "Green Space"
	CommercialCulture Category = "Commercial & Culture"
	Infrastructure    Category = "Infrastructure"
	CategoryUnknown   Category = "Unknown"
	CategoryError     Category = "Error"
)

// Categories lists the classifications a model may return, in prompt order.
var Categories = []Category{
	MemorialStatue,
	HistoricSite,
	LandmarkBuilding,
	PublicArt,
	StreetFurniture,
	GreenSpace,
	CommercialCulture,
	Infrastructure,
}

// Valid reports whether c is one of the eight classifications.
func (c Category) Valid() bool {
	for _, v := range Categories {
		if c == v {
			return true
		}
	}
	return false
}

// Bounds of curio-score, matching the column CHECK constraint.
const (
	MinScore = 0.0
	MaxScore = 10.0
)

// ScoreInRange reports whether s fits the curio-score column.
func ScoreInRange(s float64) bool {
	return s >= MinScore && s <= MaxScore
}

// Curio is the subset of a record the classifier reads.
type Curio struct {
	ID          string  `json:"curio-id"`
	Name        *string `json:"name"`
	Inscription *string `json:"inscription"`
	Overview    *string `json:"detail-overview"`
}

// DisplayName returns the name, or "Unknown" when it is null or empty.
func (c *Curio) DisplayName() string {
	if c.Name == nil || *c.Name == "" {
		return "Unknown"
	}
	return *c.Name
}

// InscriptionText returns the inscription, or "" when it is null.
func (c *Curio) InscriptionText() string {
	if c.Inscription == nil {
		return ""
	}
	return *c.Inscription
}

// OverviewText returns the detail-overview, or "" when it is null.
func (c *Curio) OverviewText() string {
	if c.Overview == nil {
		return ""
	}
	return *c.Overview
}

// HasOverview reports whether the record carries a usable description.
func (c *Curio) HasOverview() bool {
	o := strings.TrimSpace(c.OverviewText())
	return o != "" && o != NoInformation
}

// Update is the classification triple written back for one record.
type Update struct {
	ID     string  `json:"curio-id"`
	Type   string  `json:"curio-type"`
	Score  float64 `json:"curio-score"`
	Reason string  `json:"score-reason"`
}
