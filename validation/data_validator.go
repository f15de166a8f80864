// Package validation checks user input and reports quality issues in loaded datasets.
package validation

import (
	"fmt"
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/giygas/vetref/datasetparser/entities"
	"github.com/giygas/vetref/interfaces"
	"github.com/giygas/vetref/logging"
	"github.com/giygas/vetref/normalize"
)

const (
	maxQueryRunes = 100
	maxKeyRunes   = 200
)

// DataValidatorImpl implements the interfaces.DataValidator interface
type DataValidatorImpl struct{}

// NewDataValidator creates a new data validator
func NewDataValidator() interfaces.DataValidator {
	return &DataValidatorImpl{}
}

// ValidateQuery validates a search query. Punctuation is left to the normalizer, so
// only the length, the encoding and control characters are checked.
func (v *DataValidatorImpl) ValidateQuery(query string) error {
	if strings.TrimSpace(query) == "" {
		return fmt.Errorf("query cannot be empty")
	}

	if !utf8.ValidString(query) {
		return fmt.Errorf("query is not valid UTF-8")
	}

	if utf8.RuneCountInString(query) > maxQueryRunes {
		return fmt.Errorf("query too long: maximum %d characters", maxQueryRunes)
	}

	if strings.IndexFunc(query, isControl) >= 0 {
		return fmt.Errorf("query contains control characters")
	}

	return nil
}

// isControl matches control characters other than tab
func isControl(r rune) bool {
	return unicode.IsControl(r) && r != '\t'
}

// ValidateKey validates a drug key taken from a URL
func (v *DataValidatorImpl) ValidateKey(key string) error {
	if strings.TrimSpace(key) == "" {
		return fmt.Errorf("key cannot be empty")
	}
	if utf8.RuneCountInString(key) > maxKeyRunes {
		return fmt.Errorf("key too long: maximum %d characters", maxKeyRunes)
	}
	if normalize.Key(key) == "" {
		return fmt.Errorf("key contains no letters or digits")
	}
	return nil
}

// ReportDataQuality inspects a freshly loaded pair of datasets
func (v *DataValidatorImpl) ReportDataQuality(vetlek []entities.VetLekRecord, vidal []entities.VidalRecord) *interfaces.DataQualityReport {
	report := &interfaces.DataQualityReport{
		VetLekRecords: len(vetlek),
		VidalRecords:  len(vidal),
		ByOrigin:      make(map[entities.Origin]int),
		ByRichness:    make(map[entities.Richness]int),
	}

	vetlekKeys := make(map[string]int, len(vetlek))
	for i := range vetlek {
		r := &vetlek[i]
		report.ByOrigin[r.Classification.Origin]++
		report.ByRichness[r.Classification.Richness]++
		if !r.HasSections() {
			report.VetLekWithoutSections++
		}

		key := normalize.Key(r.Name)
		if key == "" {
			report.UnnamedVetLek++
			continue
		}
		vetlekKeys[key]++
	}

	vidalKeys := make(map[string]int, len(vidal))
	for i := range vidal {
		key := normalize.Key(vidal[i].Name)
		if key == "" {
			report.UnnamedVidal++
			continue
		}
		vidalKeys[key]++
	}

	report.DuplicateVetLekKeys = duplicates(vetlekKeys)
	report.DuplicateVidalKeys = duplicates(vidalKeys)
	for key := range vidalKeys {
		if vetlekKeys[key] > 0 {
			report.CrossSourceMatches++
		}
	}

	return report
}

func duplicates(counts map[string]int) []string {
	var out []string
	for key, n := range counts {
		if n > 1 {
			out = append(out, key)
		}
	}
	sort.Strings(out)
	return out
}

// LogReport writes the report to the log, warnings for the issues
func LogReport(report *interfaces.DataQualityReport) {
	if report.UnnamedVetLek > 0 || report.UnnamedVidal > 0 {
		logging.Warn("Records without a usable name",
			"vetlek", report.UnnamedVetLek,
			"vidal", report.UnnamedVidal,
		)
	}
	if len(report.DuplicateVetLekKeys) > 0 {
		logging.Warn("Duplicate VetLek names detected",
			"total", len(report.DuplicateVetLekKeys),
			"keys", report.DuplicateVetLekKeys,
		)
	}
	if len(report.DuplicateVidalKeys) > 0 {
		logging.Warn("Duplicate Vidal names detected",
			"total", len(report.DuplicateVidalKeys),
			"keys", report.DuplicateVidalKeys,
		)
	}

	logging.Info("Data quality report",
		"vetlek", report.VetLekRecords,
		"vidal", report.VidalRecords,
		"vetlek_without_sections", report.VetLekWithoutSections,
		"cross_source_matches", report.CrossSourceMatches,
		"origin", report.ByOrigin,
		"richness", report.ByRichness,
	)
}
