package config

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/couchcryptid/urban-policy-engine/internal/domain"
)

type sectorsFile struct {
	Sectors []domain.SectorProfile `yaml:"sectors"`
}

// DefaultSectors returns the built-in Delhi NCR sectors.
func DefaultSectors() []domain.SectorProfile {
	return []domain.SectorProfile{
		{
			ID:          1,
			Name:        "South Delhi Commercial",
			Lat:         28.5245,
			Lon:         77.2066,
			TrafficBase: 0.75,
			Stations:    []string{"@delhi-iitdelhi", "@delhi-rkpuram", "@delhi-lodhi-road"},
		},
		{
			ID:          2,
			Name:        "Gurgaon Industrial Hub",
			Lat:         28.4595,
			Lon:         77.0266,
			TrafficBase: 0.45,
			Stations:    []string{"@gurgaon", "@gurgaon-sector-51", "@delhi-dwarka-sector-8"},
		},
		{
			ID:          3,
			Name:        "Noida Residential Sector",
			Lat:         28.5355,
			Lon:         77.3910,
			TrafficBase: 0.35,
			Stations:    []string{"@noida", "@noida-sector-62", "@delhi-anandvihar"},
		},
	}
}

// LoadSectors reads a YAML sector list of the form:
//
//	sectors:
//	  - id: 1
//	    name: South Delhi Commercial
//	    lat: 28.5245
//	    lon: 77.2066
//	    traffic_base: 0.75
//	    stations: ["@delhi-iitdelhi"]
func LoadSectors(path string) ([]domain.SectorProfile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read SECTORS_FILE: %w", err)
	}

	var f sectorsFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse SECTORS_FILE: %w", err)
	}
	if err := validateSectors(f.Sectors); err != nil {
		return nil, fmt.Errorf("SECTORS_FILE: %w", err)
	}
	return f.Sectors, nil
}

func validateSectors(sectors []domain.SectorProfile) error {
	if len(sectors) == 0 {
		return errors.New("no sectors defined")
	}
	seen := make(map[int]bool, len(sectors))
	for _, s := range sectors {
		switch {
		case s.ID <= 0:
			return fmt.Errorf("sector %q: id must be positive", s.Name)
		case seen[s.ID]:
			return fmt.Errorf("duplicate sector id %d", s.ID)
		case s.Name == "":
			return fmt.Errorf("sector %d: name is required", s.ID)
		case s.TrafficBase < 0 || s.TrafficBase > 1:
			return fmt.Errorf("sector %d: traffic_base must be within [0, 1]", s.ID)
		}
		seen[s.ID] = true
	}
	return nil
}
