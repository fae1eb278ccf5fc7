package model

import "strings"

const PasswordMismatchMessage = "Passwords do not match."

var (
	Regions        = []string{"Central America", "Africa", "South America", "Asia Pacific", "Middle East"}
	FlavorProfiles = []string{"Citrus", "Chocolate", "Nutty", "Spicy", "Floral"}
	GrindChoices   = []string{"Whole Bean", "Cafetiere", "Filter", "Espresso"}
)

type Preferences struct {
	RoastLevel     string   `json:"roastLevel"`
	GrindOption    string   `json:"grindOption"`
	Regions        []string `json:"region"`
	FlavorProfiles []string `json:"flavorProfile"`
}

// ToggleRegion adds region if absent and removes it otherwise.
func (p *Preferences) ToggleRegion(region string) {
	p.Regions = toggle(p.Regions, region)
}

func (p *Preferences) ToggleFlavor(flavor string) {
	p.FlavorProfiles = toggle(p.FlavorProfiles, flavor)
}

func toggle(list []string, value string) []string {
	for i, v := range list {
		if v == value {
			return append(list[:i:i], list[i+1:]...)
		}
	}
	return append(list, value)
}

type RegistrationForm struct {
	Username        string      `json:"username"`
	Email           string      `json:"email"`
	Password        string      `json:"password"`
	ConfirmPassword string      `json:"confirmPassword"`
	Preferences     Preferences `json:"preferences"`
}

func (f RegistrationForm) Validate() error {
	var missing []string
	if strings.TrimSpace(f.Username) == "" {
		missing = append(missing, "username")
	}
	if strings.TrimSpace(f.Email) == "" {
		missing = append(missing, "email")
	}
	if f.Password == "" {
		missing = append(missing, "password")
	}
	if len(missing) > 0 {
		return &ValidationError{Fields: missing, Message: "Please fill in all required fields."}
	}
	if f.Password != f.ConfirmPassword {
		return &ValidationError{Fields: []string{"confirmPassword"}, Message: PasswordMismatchMessage}
	}
	return nil
}

type Profile struct {
	Username    string      `json:"username"`
	Email       string      `json:"email"`
	Preferences Preferences `json:"preferences"`
}
