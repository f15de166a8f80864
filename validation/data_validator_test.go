package validation

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/giygas/vetref/datasetparser/entities"
	"github.com/giygas/vetref/interfaces"
)

func TestValidateQuery(t *testing.T) {
	v := NewDataValidator()

	tests := []struct {
		name    string
		input   string
		wantErr string
	}{
		{"cyrillic name", "Аспирин", ""},
		{"latin name", "Baytril 5%", ""},
		{"mixed with marks", "Отодектин® (Otodectin) 0,1%", ""},
		{"ampersand", "Вет & Фарм", ""},
		{"yo letter", "Ёж", ""},
		{"guillemets", "«Аспирин»", ""},
		{"double quotes", `"аспирин"`, ""},
		{"exclamation", "аспирин!", ""},
		{"double hyphen", "Аспирин -- форте", ""},
		{"asterisk", "аспирин*", ""},
		{"semicolon", "аспирин;", ""},
		{"many words", "a b c d e f g h i j k", ""},
		{"tab", "аспирин\tфорте", ""},
		{"markup is left to escaping", "<script>", ""},
		{"empty", "   ", "cannot be empty"},
		{"too long", strings.Repeat("а", 101), "too long"},
		{"control character", "аспирин\x00", "control characters"},
		{"newline", "аспирин\nфорте", "control characters"},
		{"invalid utf-8", "аспирин\xff", "UTF-8"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.ValidateQuery(tt.input)
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("ValidateQuery(%q) unexpected error: %v", tt.input, err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("ValidateQuery(%q) error = %v, want containing %q", tt.input, err, tt.wantErr)
			}
		})
	}
}

func TestValidateKey(t *testing.T) {
	v := NewDataValidator()

	tests := []struct {
		input   string
		wantErr bool
	}{
		{"аспирин", false},
		{"Байтрил 5%", false},
		{"", true},
		{"®™", true},
		{strings.Repeat("к", 201), true},
	}

	for _, tt := range tests {
		if err := v.ValidateKey(tt.input); (err != nil) != tt.wantErr {
			t.Errorf("ValidateKey(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
		}
	}
}

func TestReportDataQuality(t *testing.T) {
	vetlek := []entities.VetLekRecord{
		{Name: "Аспирин", Sections: map[string]string{"composition": "x"}},
		{Name: "аспирин®", Composition: "y"},
		{Name: "Байтрил", Source: "json"},
		{Name: "  "},
	}
	for i := range vetlek {
		vetlek[i].Classification = entities.Classify(&vetlek[i])
	}
	vidal := []entities.VidalRecord{
		{Name: "Байтрил"},
		{Name: "Отодектин"},
		{Name: "отодектин"},
		{Name: "®"},
	}

	got := NewDataValidator().ReportDataQuality(vetlek, vidal)
	want := &interfaces.DataQualityReport{
		VetLekRecords:         4,
		VidalRecords:          4,
		UnnamedVetLek:         1,
		UnnamedVidal:          1,
		DuplicateVetLekKeys:   []string{"аспирин"},
		DuplicateVidalKeys:    []string{"отодектин"},
		VetLekWithoutSections: 3,
		CrossSourceMatches:    1,
		ByOrigin:              map[entities.Origin]int{entities.OriginUnknown: 3, entities.OriginJSON: 1},
		ByRichness:            map[entities.Richness]int{entities.RichnessFull: 1, entities.RichnessMinimal: 3},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("report mismatch (-want +got):\n%s", diff)
	}

	// must not panic
	LogReport(got)
}
