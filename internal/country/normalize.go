// Package country canonicalizes free-text market strings to a fixed country
// vocabulary and maps countries onto coarse pricing regions.
package country

import (
	"sort"
	"strings"
)

// RegionUnknown is returned when no region token or known country is found.
const RegionUnknown = "Unknown"

// canonicalSets maps each canonical country to its accepted spellings.
// Spellings are compared after Canon-style normalization (uppercase, dots
// and hyphens to spaces, collapsed whitespace).
var canonicalSets = map[string][]string{
	"USA": {
		"USA", "US", "U S A", "U S", "UNITED STATES", "UNITED STATES OF AMERICA",
		"AMERICA", "STATES", "USA MARKET",
	},
	"UK": {
		"UK", "U K", "UNITED KINGDOM", "GREAT BRITAIN", "BRITAIN", "ENGLAND", "GB",
	},
	"GERMANY":   {"GERMANY", "DE", "GER", "DEUTSCHLAND"},
	"FRANCE":    {"FRANCE", "FR"},
	"BRAZIL":    {"BRAZIL", "BR", "BRA", "BRASIL"},
	"JAPAN":     {"JAPAN", "JP"},
	"AUSTRALIA": {"AUSTRALIA", "AU", "AUS"},
	"CANADA":    {"CANADA", "CA"},
	"INDIA":     {"INDIA", "IND"},
	"CHINA":     {"CHINA", "CN", "PRC"},
	"ITALY":     {"ITALY", "ITA"},
	"SPAIN":     {"SPAIN", "ES", "ESP"},
	"MEXICO":    {"MEXICO", "MX"},
	"SINGAPORE": {"SINGAPORE", "SG"},
	"LATAM":     {"LATAM", "LATIN AMERICA"},
	"MENA": {
		"MENA", "UAE", "U A E", "UNITED ARAB EMIRATES", "DUBAI", "ABU DHABI",
		"MIDDLE EAST",
	},
	"SAUDI ARABIA": {"SAUDI ARABIA", "KSA", "SAUDI"},
}

// countryRegions maps canonical countries to their pricing region.
var countryRegions = map[string]string{
	"USA":          "USA",
	"CANADA":       "CANADA",
	"UK":           "UK",
	"GERMANY":      "EU",
	"FRANCE":       "EU",
	"ITALY":        "EU",
	"SPAIN":        "EU",
	"BRAZIL":       "LATAM",
	"MEXICO":       "LATAM",
	"LATAM":        "LATAM",
	"JAPAN":        "APAC",
	"CHINA":        "APAC",
	"INDIA":        "APAC",
	"AUSTRALIA":    "APAC",
	"SINGAPORE":    "APAC",
	"MENA":         "MENA",
	"SAUDI ARABIA": "MENA",
}

// regionTokens are region names recognized directly in market text, checked
// before any country lookup.
var regionTokens = []string{"MENA", "APAC", "EU", "USA", "CANADA", "UK", "LATAM"}

// synonyms is the flattened spelling -> canonical index built at init.
var synonyms = func() map[string]string {
	m := make(map[string]string)
	for canon, spellings := range canonicalSets {
		for _, s := range spellings {
			m[s] = canon
		}
	}
	return m
}()

// Canon normalizes raw text for vocabulary comparison: uppercase, "." and
// "-" become spaces, whitespace collapses to single spaces.
func Canon(raw string) string {
	s := strings.ToUpper(raw)
	s = strings.ReplaceAll(s, ".", " ")
	s = strings.ReplaceAll(s, "-", " ")
	return strings.Join(strings.Fields(s), " ")
}

// Normalize folds raw onto the canonical country vocabulary. Unmatched input
// passes through in Canon form, treated as its own canonical value.
func Normalize(raw string) string {
	c := Canon(raw)
	if canon, ok := synonyms[c]; ok {
		return canon
	}
	return c
}

// Region maps a canonical country to its pricing region, with the LATAM
// label rewritten to its display form.
func Region(canonCountry string) (string, bool) {
	region, ok := countryRegions[canonCountry]
	if !ok {
		return "", false
	}
	return rewriteLATAM(region), true
}

// FindRegion scans market text for a direct region token or any known
// country spelling and returns the corresponding region. Returns
// RegionUnknown when nothing matches.
func FindRegion(text string) string {
	c := Canon(text)
	words := " " + c + " "

	for _, tok := range regionTokens {
		if strings.Contains(words, " "+tok+" ") {
			return rewriteLATAM(tok)
		}
	}

	// Longest spellings first so "UNITED ARAB EMIRATES" beats "UAE"-style
	// fragments inside it.
	for _, spelling := range spellingsByLength {
		if strings.Contains(words, " "+spelling+" ") {
			canon := synonyms[spelling]
			if region, ok := countryRegions[canon]; ok {
				return rewriteLATAM(region)
			}
		}
	}

	return RegionUnknown
}

func rewriteLATAM(region string) string {
	if region == "LATAM" {
		return "LATAM America"
	}
	return region
}

var spellingsByLength = func() []string {
	out := make([]string, 0, len(synonyms))
	for s := range synonyms {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool {
		if len(out[i]) != len(out[j]) {
			return len(out[i]) > len(out[j])
		}
		return out[i] < out[j]
	})
	return out
}()
