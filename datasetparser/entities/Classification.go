package entities

import (
	"strings"
	"unicode/utf8"
)

// Origin tells which feed a Source A shaped record came from
type Origin string

const (
	OriginVetLek  Origin = "vetlek"
	OriginJSON    Origin = "json"
	OriginUnknown Origin = "unknown"
)

// Richness grades how much detail a record carries
type Richness string

const (
	RichnessFull    Richness = "full"
	RichnessBasic   Richness = "basic"
	RichnessMinimal Richness = "minimal"
)

// Classification is the origin tag and richness grade of a VetLek record
type Classification struct {
	Origin   Origin   `json:"origin"`
	Richness Richness `json:"richness"`
}

// Classify decides the origin from feed markers and the richness from the populated
// scalar fields. VetLek markers take precedence over JSON markers.
func Classify(r *VetLekRecord) Classification {
	c := Classification{Origin: OriginUnknown, Richness: RichnessMinimal}

	switch {
	case strings.TrimSpace(r.HTML) != "" || present(r.VetLekID) || present(r.VetLekContent):
		c.Origin = OriginVetLek
	case r.Source == "json" || present(r.JSONSource):
		c.Origin = OriginJSON
	}

	for _, field := range []string{r.Composition, r.Indications, r.Mechanism, r.Dosage, r.SideEffects, r.Contraindications} {
		if strings.TrimSpace(field) != "" {
			c.Richness = RichnessFull
			return c
		}
	}

	if longerThan(r.Description, 10) || longerThan(r.Summary, 10) {
		c.Richness = RichnessBasic
	}
	return c
}

// longerThan counts raw runes, surrounding whitespace included
func longerThan(s string, n int) bool {
	return utf8.RuneCountInString(s) > n
}
