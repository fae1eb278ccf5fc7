package fixtures

import (
	"encoding/json"
	"os"

	"storefront/pkg/domain/model"
)

// Coffee is the catalog record as the catalog API serves it.
type Coffee struct {
	ID            int      `json:"id"`
	Name          string   `json:"name"`
	Description   string   `json:"description"`
	Price         float64  `json:"price"`
	ImageURL      string   `json:"image_url"`
	Region        string   `json:"region"`
	FlavorProfile []string `json:"flavor_profile"`
	RoastLevel    int      `json:"roast_level"`
	GrindOption   []string `json:"grind_option"`
}

// User carries either a plaintext Password (hand-written seeds) or a
// PasswordHash (files written back by the backend).
type User struct {
	Username     string            `json:"username"`
	Email        string            `json:"email"`
	Password     string            `json:"password,omitempty"`
	PasswordHash string            `json:"passwordHash,omitempty"`
	Preferences  model.Preferences `json:"preferences"`
}

type Fixtures struct {
	Catalog   []Coffee         `json:"catalog"`
	Users     []User           `json:"users"`
	Wishlists map[string][]int `json:"wishlists"`
}

func Load(filePath string) (Fixtures, error) {
	file, err := os.ReadFile(filePath)
	if err != nil {
		return Fixtures{}, err
	}

	var data Fixtures
	if err := json.Unmarshal(file, &data); err != nil {
		return Fixtures{}, err
	}

	if data.Wishlists == nil {
		data.Wishlists = make(map[string][]int)
	}
	return data, nil
}

func Save(filePath string, data Fixtures) error {
	jsonData, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(filePath, jsonData, 0666)
}

// Default is the seed used when no fixtures file exists.
func Default() Fixtures {
	return Fixtures{
		Catalog: []Coffee{
			{
				ID: 1, Name: "Signature Blend", Price: 12.99,
				Description:   "Rich with dark chocolate and black cherry notes.",
				ImageURL:      "https://iili.io/H8Y78Qt.webp",
				Region:        "Central America",
				FlavorProfile: []string{"Dark Chocolate", "Black Cherry"},
				RoastLevel:    4,
				GrindOption:   []string{"Whole Bean", "Cafetiere", "Filter", "Espresso"},
			},
			{
				ID: 2, Name: "Golden Sunrise", Price: 10.5,
				Description:   "A bright and citrusy coffee with notes of lemon and grapefruit.",
				ImageURL:      "https://iili.io/H8Y7Wg4.webp",
				Region:        "Africa",
				FlavorProfile: []string{"Citrus", "Floral"},
				RoastLevel:    2,
				GrindOption:   []string{"Whole Bean", "Filter"},
			},
			{
				ID: 3, Name: "Rainforest Rhapsody", Price: 9.99,
				Description:   "An earthy coffee with toasted nuts and caramel notes.",
				ImageURL:      "https://iili.io/H8Y7OLl.webp",
				Region:        "South America",
				FlavorProfile: []string{"Nutty", "Caramel"},
				RoastLevel:    3,
				GrindOption:   []string{"Whole Bean", "Espresso"},
			},
			{
				ID: 4, Name: "Indo-Viet Roast", Price: 11.25,
				Description:   "A spicy, earthy blend with notes of cinnamon and clove.",
				ImageURL:      "https://iili.io/H8Y7ekj.webp",
				Region:        "Asia Pacific",
				FlavorProfile: []string{"Spicy", "Earthy"},
				RoastLevel:    5,
				GrindOption:   []string{"Cafetiere", "Filter"},
			},
		},
		Wishlists: make(map[string][]int),
	}
}
