package entities

import (
	"encoding/json"
	"strings"
)

// Section keys of a VetLek monograph
const (
	SectionComposition       = "composition"
	SectionPharmacology      = "pharmacology"
	SectionIndications       = "indications"
	SectionUsage             = "usage"
	SectionSideEffects       = "side_effects"
	SectionContraindications = "contraindications"
	SectionStorage           = "storage"
	SectionManufacturer      = "manufacturer"
	SectionGeneral           = "general"
)

// VetLekRecord is a Source A record. Sections hold HTML fragments keyed by section
// key. Records exported from the flat JSON feed share this shape and carry the scalar
// fields instead of sections.
type VetLekRecord struct {
	Name        string            `json:"name"`
	Sections    map[string]string `json:"sections,omitempty"`
	DosageTable Table             `json:"dosage_table,omitempty"`
	Tables      []Table           `json:"tables,omitempty"`
	HTML        string            `json:"html,omitempty"`

	VetLekID      json.RawMessage `json:"vetlek_id,omitempty"`
	VetLekContent json.RawMessage `json:"vetlek_content,omitempty"`
	Source        string          `json:"source,omitempty"`
	JSONSource    json.RawMessage `json:"json_source,omitempty"`

	Description       string            `json:"description,omitempty"`
	Summary           string            `json:"summary,omitempty"`
	Composition       string            `json:"composition,omitempty"`
	Indications       string            `json:"indications,omitempty"`
	Contraindications string            `json:"contraindications,omitempty"`
	Dosage            string            `json:"dosage,omitempty"`
	SideEffects       string            `json:"side_effects,omitempty"`
	Storage           string            `json:"storage,omitempty"`
	Mechanism         string            `json:"mechanism,omitempty"`
	ShelfLife         string            `json:"shelf_life,omitempty"`
	LatinName         string            `json:"latin_name,omitempty"`
	ManufacturerInfo  *ManufacturerInfo `json:"manufacturer_info,omitempty"`

	// Set once at load time
	Classification Classification `json:"-"`
}

// HasSections reports whether at least one section carries content
func (r *VetLekRecord) HasSections() bool {
	for _, body := range r.Sections {
		if strings.TrimSpace(body) != "" {
			return true
		}
	}
	return false
}

// present reports whether a raw JSON marker is set to something other than
// null, false, 0 or an empty string.
func present(raw json.RawMessage) bool {
	switch strings.TrimSpace(string(raw)) {
	case "", "null", "false", `""`, "0":
		return false
	}
	return true
}
