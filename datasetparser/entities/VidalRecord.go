package entities

// VidalRecord is a Source B record with fixed scalar fields
type VidalRecord struct {
	Name              string            `json:"name"`
	Description       string            `json:"description,omitempty"`
	Summary           string            `json:"summary,omitempty"`
	Composition       string            `json:"composition,omitempty"`
	Indications       string            `json:"indications,omitempty"`
	Contraindications string            `json:"contraindications,omitempty"`
	Dosage            string            `json:"dosage,omitempty"`
	SideEffects       string            `json:"side_effects,omitempty"`
	Storage           string            `json:"storage,omitempty"`
	ManufacturerInfo  *ManufacturerInfo `json:"manufacturer_info,omitempty"`
	Mechanism         string            `json:"mechanism,omitempty"`
	ShelfLife         string            `json:"shelf_life,omitempty"`
	LatinName         string            `json:"latin_name,omitempty"`
}

// ManufacturerInfo has the four fixed manufacturer rows
type ManufacturerInfo struct {
	Manufacturer              string `json:"manufacturer,omitempty"`
	ManufacturerCountry       string `json:"manufacturer_country,omitempty"`
	RegistrationHolder        string `json:"registration_holder,omitempty"`
	RegistrationHolderCountry string `json:"registration_holder_country,omitempty"`
}

// IsEmpty reports whether no row has a value
func (m *ManufacturerInfo) IsEmpty() bool {
	return m == nil || (m.Manufacturer == "" && m.ManufacturerCountry == "" &&
		m.RegistrationHolder == "" && m.RegistrationHolderCountry == "")
}
