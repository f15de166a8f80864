package entities

// Source names one of the two datasets
type Source string

const (
	SourceVetLek Source = "vetlek"
	SourceVidal  Source = "vidal"
)

// ParseSource maps a request value onto a Source
func ParseSource(s string) (Source, bool) {
	switch Source(s) {
	case SourceVetLek, "a", "A":
		return SourceVetLek, true
	case SourceVidal, "b", "B":
		return SourceVidal, true
	}
	return "", false
}

// MergedEntry reconciles the records of both sources that share a normalized name.
// At least one of VetLek and Vidal is set.
type MergedEntry struct {
	Key    string        `json:"key"`
	VetLek *VetLekRecord `json:"vetlek,omitempty"`
	Vidal  *VidalRecord  `json:"vidal,omitempty"`
}

// Name returns the display name, preferring the VetLek spelling
func (e *MergedEntry) Name() string {
	if e.VetLek != nil {
		return e.VetLek.Name
	}
	if e.Vidal != nil {
		return e.Vidal.Name
	}
	return ""
}

// Has reports whether the entry carries a record for src
func (e *MergedEntry) Has(src Source) bool {
	switch src {
	case SourceVetLek:
		return e.VetLek != nil
	case SourceVidal:
		return e.Vidal != nil
	}
	return false
}

// Sources lists the sources present, VetLek first
func (e *MergedEntry) Sources() []Source {
	var out []Source
	if e.VetLek != nil {
		out = append(out, SourceVetLek)
	}
	if e.Vidal != nil {
		out = append(out, SourceVidal)
	}
	return out
}
