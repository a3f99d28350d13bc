package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Site is a named ground receiver position.
type Site struct {
	Name   string  `yaml:"name"`
	LatDeg float64 `yaml:"lat_deg"`
	LonDeg float64 `yaml:"lon_deg"`
	AltM   float64 `yaml:"alt_m"`
}

// LoadSites reads receiver sites from a YAML file.
func LoadSites(path string) ([]Site, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading sites file: %w", err)
	}

	var sites []Site
	if err := yaml.Unmarshal(data, &sites); err != nil {
		return nil, fmt.Errorf("parsing sites file: %w", err)
	}

	for i, s := range sites {
		if s.Name == "" {
			return nil, fmt.Errorf("sites file entry %d: name is required", i)
		}
		if s.LatDeg < -90 || s.LatDeg > 90 {
			return nil, fmt.Errorf("site %q: latitude %.4f out of range", s.Name, s.LatDeg)
		}
		if s.LonDeg < -180 || s.LonDeg > 180 {
			return nil, fmt.Errorf("site %q: longitude %.4f out of range", s.Name, s.LonDeg)
		}
	}

	return sites, nil
}
