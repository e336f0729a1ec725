// Copyright 2025 FlightDeck
// SPDX-License-Identifier: Apache-2.0

package weather

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// DefaultAirportCities returns the built-in IATA code to city mapping
// used for upstream lookups. A proper airport-to-coordinates source can
// replace this once one exists.
func DefaultAirportCities() map[string]string {
	return map[string]string{
		"DEL": "Delhi",
		"BOM": "Mumbai",
		"CCU": "Kolkata",
		"BLR": "Bangalore",
		"MAA": "Chennai",
		"HYD": "Hyderabad",
		"COK": "Kochi",
		"GOI": "Goa",
	}
}

// airportsFile is the YAML shape for an airport mapping override file:
//
//	airports:
//	  DEL: Delhi
//	  JFK: New York
type airportsFile struct {
	Airports map[string]string `yaml:"airports"`
}

// LoadAirportCities reads an airport mapping override from a YAML file.
// Codes are normalized to uppercase. An empty path returns the built-in
// mapping.
func LoadAirportCities(path string) (map[string]string, error) {
	if path == "" {
		return DefaultAirportCities(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read airports file: %w", err)
	}

	var file airportsFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse airports file: %w", err)
	}

	if len(file.Airports) == 0 {
		return nil, fmt.Errorf("airports file %s defines no airports", path)
	}

	cities := make(map[string]string, len(file.Airports))
	for code, city := range file.Airports {
		cities[strings.ToUpper(strings.TrimSpace(code))] = city
	}

	return cities, nil
}
