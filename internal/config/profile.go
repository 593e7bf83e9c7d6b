package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/satclip/satclip/internal/domain"
)

// ProviderProfile is a named provider endpoint set distributed as a
// standalone YAML file. A profile overrides the endpoint and default
// search fields of the main configuration, letting one binary target
// different provider deployments without editing the config file.
type ProviderProfile struct {
	Name        string   `yaml:"name"`
	DataURL     string   `yaml:"data_url"`
	OrdersURL   string   `yaml:"orders_url"`
	TilesURL    string   `yaml:"tiles_url"`
	ItemTypes   []string `yaml:"item_types"`
	Instruments []string `yaml:"instruments"`
}

// LoadProfile reads a provider profile file.
func LoadProfile(path string) (*ProviderProfile, error) {
	raw, err := os.ReadFile(path) //#nosec G304 -- profile path comes from operator config
	if err != nil {
		return nil, fmt.Errorf("reading provider profile: %w", err)
	}

	var p ProviderProfile
	if err := yaml.Unmarshal(raw, &p); err != nil {
		return nil, fmt.Errorf("parsing provider profile %s: %w", path, err)
	}
	if p.Name == "" {
		return nil, &domain.ConfigError{Field: "profile.name", Message: "provider profile needs a name"}
	}
	return &p, nil
}

// applyProfile overlays the profile's non-empty fields onto the config.
func (c *Config) applyProfile(path string) error {
	p, err := LoadProfile(path)
	if err != nil {
		return err
	}

	if p.DataURL != "" {
		c.Provider.DataURL = p.DataURL
	}
	if p.OrdersURL != "" {
		c.Provider.OrdersURL = p.OrdersURL
	}
	if p.TilesURL != "" {
		c.Provider.TilesURL = p.TilesURL
	}
	if len(p.ItemTypes) > 0 {
		c.Search.ItemTypes = p.ItemTypes
	}
	if len(p.Instruments) > 0 {
		c.Search.Instruments = p.Instruments
	}
	return nil
}
