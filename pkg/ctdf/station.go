package ctdf

import (
	"regexp"
	"strings"
)

// Station is a logical grouping of train platforms sharing a normalised name
type Station struct {
	Identifier string `json:"identifier" groups:"basic"`
	Name       string `json:"name" groups:"basic"`

	Location *Location `json:"location,omitempty" groups:"basic"`

	Platforms []Platform `json:"platforms" groups:"basic"`
}

type Platform struct {
	StopID string `json:"stopId" groups:"basic"`
	Name   string `json:"name" groups:"basic"`
	Code   string `json:"code,omitempty" groups:"basic"`
}

func (s *Station) PlatformIDs() []string {
	ids := make([]string, 0, len(s.Platforms))
	for _, platform := range s.Platforms {
		ids = append(ids, platform.StopID)
	}
	return ids
}

func (s *Station) Platform(stopID string) *Platform {
	for i := range s.Platforms {
		if s.Platforms[i].StopID == stopID {
			return &s.Platforms[i]
		}
	}
	return nil
}

func (s *Station) Stop() *Stop {
	return &Stop{
		Identifier: s.Identifier,
		Name:       s.Name,
		Type:       StopTypeStation,
		Location:   s.Location,
		Platforms:  s.PlatformIDs(),
	}
}

var platformSuffixRegex = regexp.MustCompile(`(?i)[\s,\-]*\bplatform\s*([A-Z0-9]+)?\s*$`)
var stationSuffixRegex = regexp.MustCompile(`(?i)\s+(railway\s+)?station$`)
var nonAlphanumericRegex = regexp.MustCompile(`[^A-Z0-9]+`)

// ParseStationName splits a platform stop name such as "Roma Street station, platform 3"
// into its station name ("Roma Street") and platform code ("3")
func ParseStationName(stopName string) (string, string) {
	name := strings.TrimSpace(stopName)
	platformCode := ""

	if match := platformSuffixRegex.FindStringSubmatchIndex(name); match != nil {
		if match[2] >= 0 {
			platformCode = strings.ToUpper(name[match[2]:match[3]])
		}
		name = name[:match[0]]
	}

	name = stationSuffixRegex.ReplaceAllString(strings.TrimSpace(name), "")

	return strings.TrimSpace(name), platformCode
}

func StationName(stopName string) string {
	name, _ := ParseStationName(stopName)
	return name
}

// StationSlug is the URL safe key for a station name. The same function must be used when
// writing and looking up stations, otherwise lookups silently miss.
func StationSlug(name string) string {
	slug := nonAlphanumericRegex.ReplaceAllString(strings.ToUpper(name), "_")

	return strings.Trim(slug, "_")
}
