package domain

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// Category is the fixed set of inventory categories.
type Category string

const (
	CategorySeating     Category = "seating"
	CategoryTables      Category = "tables"
	CategoryBedroom     Category = "bedroom"
	CategoryStorage     Category = "storage"
	CategoryMusical     Category = "musical"
	CategoryFitness     Category = "fitness"
	CategoryRecreation  Category = "recreation"
	CategoryAppliances  Category = "appliances"
	CategoryElectronics Category = "electronics"
	CategoryOutdoor     Category = "outdoor"
	CategoryMisc        Category = "misc"
)

// Categories lists every valid category in display order.
var Categories = []Category{
	CategorySeating, CategoryTables, CategoryBedroom, CategoryStorage,
	CategoryMusical, CategoryFitness, CategoryRecreation, CategoryAppliances,
	CategoryElectronics, CategoryOutdoor, CategoryMisc,
}

// Valid reports whether c belongs to the fixed category set.
func (c Category) Valid() bool {
	for _, known := range Categories {
		if c == known {
			return true
		}
	}
	return false
}

// Origin records where an inventory record came from.
type Origin string

const (
	OriginCatalog     Origin = "catalog"
	OriginAIGenerated Origin = "ai-generated"
)

// Producer records which resolution step built an ItemRecord.
type Producer string

const (
	ProducerExtractor Producer = "extractor"
	ProducerHeuristic Producer = "heuristic"
)

// CatalogItem is an entry of the fixed base inventory.
type CatalogItem struct {
	ID       int      `json:"id" yaml:"id"`
	Name     string   `json:"name" yaml:"name"`
	WeightKg float64  `json:"weight" yaml:"weight"`
	Category Category `json:"category" yaml:"category"`
	Keywords []string `json:"-" yaml:"keywords"`
}

// Dimensions is an L x W x H box in centimetres. The zero value means "variable".
type Dimensions struct {
	LengthCm float64
	WidthCm  float64
	HeightCm float64
}

// DimensionsVariable is the rendering of unknown or non-fixed dimensions.
const DimensionsVariable = "variable"

// IsVariable reports whether no fixed box is known.
func (d Dimensions) IsVariable() bool {
	return d.LengthCm <= 0 || d.WidthCm <= 0 || d.HeightCm <= 0
}

// String renders the box as "150x60x110cm", or "variable".
func (d Dimensions) String() string {
	if d.IsVariable() {
		return DimensionsVariable
	}
	return fmt.Sprintf("%sx%sx%scm", formatCm(d.LengthCm), formatCm(d.WidthCm), formatCm(d.HeightCm))
}

func formatCm(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// ParseDimensions parses strings such as "150x60x110cm", "150 x 60 x 110 cm" or "150×60×110".
// Anything else is reported as an error.
func ParseDimensions(s string) (Dimensions, error) {
	raw := strings.ToLower(strings.TrimSpace(s))
	if raw == "" || raw == DimensionsVariable {
		return Dimensions{}, nil
	}
	raw = strings.ReplaceAll(raw, "×", "x")
	raw = strings.ReplaceAll(raw, "*", "x")
	raw = strings.TrimSuffix(raw, "cm")

	parts := strings.Split(raw, "x")
	if len(parts) != 3 {
		return Dimensions{}, fmt.Errorf("dimensions %q: want LxWxH", s)
	}

	var vals [3]float64
	for i, p := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(p), "cm")), 64)
		if err != nil || v <= 0 {
			return Dimensions{}, fmt.Errorf("dimensions %q: bad value %q", s, p)
		}
		vals[i] = v
	}
	return Dimensions{LengthCm: vals[0], WidthCm: vals[1], HeightCm: vals[2]}, nil
}

// MarshalJSON renders dimensions as a string.
func (d Dimensions) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

// UnmarshalJSON accepts the string form or an object with length/width/height.
// Unparseable input decodes to variable dimensions.
func (d *Dimensions) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		parsed, perr := ParseDimensions(s)
		if perr != nil {
			*d = Dimensions{}
			return nil
		}
		*d = parsed
		return nil
	}

	var obj struct {
		Length float64 `json:"length"`
		Width  float64 `json:"width"`
		Height float64 `json:"height"`
	}
	if err := json.Unmarshal(data, &obj); err != nil {
		*d = Dimensions{}
		return nil
	}
	*d = Dimensions{LengthCm: obj.Length, WidthCm: obj.Width, HeightCm: obj.Height}
	return nil
}

// ItemRecord is a resolved inventory record for an item outside the catalog.
type ItemRecord struct {
	Name       string     `json:"name"`
	WeightKg   float64    `json:"weight"`
	Dimensions Dimensions `json:"dimensions"`
	Category   Category   `json:"category"`
	Confidence float64    `json:"confidence"`
	Reasoning  string     `json:"reasoning"`
	Origin     Origin     `json:"origin"`
	Producer   Producer   `json:"producer"`
}
