package config

import (
	_ "embed"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

//go:embed abilities.yaml
var defaultAbilitiesYAML []byte

// AbilityType distinguishes player-triggered abilities from always-on ones.
type AbilityType string

const (
	AbilityActive  AbilityType = "active"
	AbilityPassive AbilityType = "passive"
	AbilityNone    AbilityType = "none"
)

// AbilityConfig is the static definition of a character's ability.
// Values are read-only once loaded; copies are handed out by value.
type AbilityConfig struct {
	Name     string      `yaml:"name" json:"name"`
	Type     AbilityType `yaml:"type" json:"type"`
	Cooldown float64     `yaml:"cooldown" json:"cooldown"` // seconds
	Duration float64     `yaml:"duration" json:"duration"` // seconds
	Range    float64     `yaml:"range" json:"range"`       // pixels
}

// IsActive reports whether the ability is player-triggered.
func (a AbilityConfig) IsActive() bool {
	return a.Type == AbilityActive
}

// NoAbility is the explicit placeholder for "nothing to use".
var NoAbility = AbilityConfig{Name: "none", Type: AbilityNone}

// AbilityCatalog maps character keys to their ability.
type AbilityCatalog struct {
	Characters map[string]AbilityConfig `yaml:"characters"`
}

// Get returns the ability for a character key.
func (c AbilityCatalog) Get(character string) (AbilityConfig, bool) {
	a, ok := c.Characters[character]
	return a, ok
}

// Keys returns every configured character key.
func (c AbilityCatalog) Keys() []string {
	keys := make([]string, 0, len(c.Characters))
	for k := range c.Characters {
		keys = append(keys, k)
	}
	return keys
}

// ParseAbilities decodes a YAML catalog.
func ParseAbilities(data []byte) (AbilityCatalog, error) {
	var cat AbilityCatalog
	if err := yaml.Unmarshal(data, &cat); err != nil {
		return AbilityCatalog{}, fmt.Errorf("parse ability catalog: %w", err)
	}
	if len(cat.Characters) == 0 {
		return AbilityCatalog{}, fmt.Errorf("parse ability catalog: no characters defined")
	}
	for key, a := range cat.Characters {
		switch a.Type {
		case AbilityActive, AbilityPassive:
		case "":
			a.Type = AbilityPassive
		default:
			return AbilityCatalog{}, fmt.Errorf("parse ability catalog: %s has unknown type %q", key, a.Type)
		}
		cat.Characters[key] = a
	}
	return cat, nil
}

// DefaultAbilities returns the embedded catalog.
func DefaultAbilities() AbilityCatalog {
	cat, err := ParseAbilities(defaultAbilitiesYAML)
	if err != nil {
		// The embedded file is part of the build; failing here is a programming error.
		panic(err)
	}
	return cat
}

// LoadAbilities reads a catalog from path. An empty path selects the embedded
// catalog. On any read or parse failure the embedded catalog is returned
// together with the error so the caller can log and continue.
func LoadAbilities(path string) (AbilityCatalog, error) {
	if path == "" {
		return DefaultAbilities(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return DefaultAbilities(), fmt.Errorf("read ability catalog %s: %w", path, err)
	}
	cat, err := ParseAbilities(data)
	if err != nil {
		return DefaultAbilities(), err
	}
	return cat, nil
}
