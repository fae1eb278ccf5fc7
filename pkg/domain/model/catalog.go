package model

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
)

// ItemID is the opaque catalog identity. The catalog sends numbers, the
// personalization backend may echo strings; both decode to the same value.
type ItemID string

func (id *ItemID) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		*id = ""
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*id = ItemID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return errors.Wrap(err, "item id must be a string or a number")
	}
	*id = ItemID(n.String())
	return nil
}

// MarshalJSON emits a bare number only for canonical integers; "007" and
// "+5" stay strings.
func (id ItemID) MarshalJSON() ([]byte, error) {
	if n, err := strconv.ParseInt(string(id), 10, 64); err == nil && strconv.FormatInt(n, 10) == string(id) {
		return []byte(id), nil
	}
	return json.Marshal(string(id))
}

type RoastLevel int

const (
	RoastLight RoastLevel = iota + 1
	RoastLightMedium
	RoastMedium
	RoastMediumDark
	RoastDark
)

var roastLabels = map[RoastLevel]string{
	RoastLight:       "Light",
	RoastLightMedium: "Light-Medium",
	RoastMedium:      "Medium",
	RoastMediumDark:  "Medium-Dark",
	RoastDark:        "Dark",
}

func (r RoastLevel) Valid() bool {
	_, ok := roastLabels[r]
	return ok
}

// Label falls back to Medium for levels outside 1..5.
func (r RoastLevel) Label() string {
	if label, ok := roastLabels[r]; ok {
		return label
	}
	return roastLabels[RoastMedium]
}

var DefaultGrindOptions = []string{"Whole Bean", "Filtered", "Espresso"}

type CatalogItem struct {
	ID            ItemID          `json:"id"`
	Name          string          `json:"name"`
	Description   string          `json:"description"`
	Price         decimal.Decimal `json:"price"`
	ImageURL      string          `json:"image_url"`
	Region        string          `json:"region"`
	FlavorProfile []string        `json:"flavor_profile"`
	RoastLevel    RoastLevel      `json:"roast_level"`
	GrindOptions  []string        `json:"grind_option"`
}

func (c CatalogItem) Validate() error {
	var fields []string
	if c.ID == "" {
		fields = append(fields, "id")
	}
	if strings.TrimSpace(c.Name) == "" {
		fields = append(fields, "name")
	}
	if c.Price.IsNegative() {
		fields = append(fields, "price")
	}
	if len(fields) > 0 {
		return &ValidationError{Fields: fields, Message: "invalid catalog item"}
	}
	return nil
}

func (c CatalogItem) Grinds() []string {
	if len(c.GrindOptions) == 0 {
		return append([]string(nil), DefaultGrindOptions...)
	}
	return append([]string(nil), c.GrindOptions...)
}

// Snapshot returns a copy that shares no slices with c, so a Details screen
// never observes later mutations of the list it came from.
func (c CatalogItem) Snapshot() CatalogItem {
	snapshot := c
	snapshot.FlavorProfile = append([]string(nil), c.FlavorProfile...)
	snapshot.GrindOptions = append([]string(nil), c.GrindOptions...)
	return snapshot
}

// CatalogFilter narrows the Explore list. Zero fields match everything.
type CatalogFilter struct {
	Region string
	Flavor string
	Roast  RoastLevel
}

func (f CatalogFilter) IsZero() bool {
	return f.Region == "" && f.Flavor == "" && f.Roast == 0
}

func (f CatalogFilter) Match(item CatalogItem) bool {
	if f.Region != "" && item.Region != f.Region {
		return false
	}
	if f.Roast != 0 && item.RoastLevel != f.Roast {
		return false
	}
	if f.Flavor != "" {
		for _, flavor := range item.FlavorProfile {
			if flavor == f.Flavor {
				return true
			}
		}
		return false
	}
	return true
}

func (f CatalogFilter) Apply(items []CatalogItem) []CatalogItem {
	filtered := make([]CatalogItem, 0, len(items))
	for _, item := range items {
		if f.Match(item) {
			filtered = append(filtered, item)
		}
	}
	return filtered
}
