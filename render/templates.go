package render

import (
	"fmt"
	"strings"

	"github.com/giygas/vetref/datasetparser/entities"
)

type titled struct {
	key   string
	title string
}

var vetlekSections = []titled{
	{entities.SectionComposition, "Состав"},
	{entities.SectionPharmacology, "Фармакологические свойства"},
	{entities.SectionIndications, "Показания к применению"},
	{entities.SectionUsage, "Порядок применения"},
	{entities.SectionSideEffects, "Побочные действия"},
	{entities.SectionContraindications, "Противопоказания"},
	{entities.SectionStorage, "Условия хранения"},
	{entities.SectionManufacturer, "Производитель"},
	{entities.SectionGeneral, "Общие сведения"},
}

const (
	dosageTitle       = "Дозировка"
	extraTableTitle   = "Таблица %d"
	manufacturerTitle = "Производитель"
	errorTitle        = "Ошибка отображения"
	placeholderTitle  = "Нет данных"
	placeholderBody   = "<p>Подробная информация о препарате пока отсутствует в справочнике.</p>"
)

// VetLekSections renders the sections present in a VetLek record in canonical order,
// then its dosage table and additional tables.
func VetLekSections(r *entities.VetLekRecord) []Section {
	var out []Section
	for _, s := range vetlekSections {
		body := r.Sections[s.key]
		if strings.TrimSpace(body) == "" {
			continue
		}
		out = append(out, Section{Key: s.key, Title: s.title, Body: HTML(body)})
	}

	if t := NewTable(r.DosageTable); t != nil {
		out = append(out, Section{Key: "dosage_table", Title: dosageTitle, Table: t})
	}
	n := 0
	for _, rows := range r.Tables {
		if t := NewTable(rows); t != nil {
			n++
			out = append(out, Section{Key: fmt.Sprintf("table_%d", n), Title: fmt.Sprintf(extraTableTitle, n), Table: t})
		}
	}
	return out
}

type field struct {
	key   string
	title string
	value func(*entities.VidalRecord) string
}

var vidalFields = []field{
	{"description", "Описание", func(r *entities.VidalRecord) string { return r.Description }},
	{"composition", "Состав", func(r *entities.VidalRecord) string { return r.Composition }},
	{"indications", "Показания", func(r *entities.VidalRecord) string { return r.Indications }},
	{"dosage", "Дозировка и способ применения", func(r *entities.VidalRecord) string { return r.Dosage }},
	{"side_effects", "Побочные эффекты", func(r *entities.VidalRecord) string { return r.SideEffects }},
	{"contraindications", "Противопоказания", func(r *entities.VidalRecord) string { return r.Contraindications }},
	{"storage", "Условия хранения", func(r *entities.VidalRecord) string { return r.Storage }},
}

// VidalSections renders the non-empty scalar fields of a Vidal record
func VidalSections(r *entities.VidalRecord) []Section {
	var out []Section
	for _, f := range vidalFields {
		if v := f.value(r); strings.TrimSpace(v) != "" {
			out = append(out, Section{Key: f.key, Title: f.title, Body: HTML(v)})
		}
	}
	return out
}

// FieldSections renders the scalar fields of a VetLek record without sections, in the
// Vidal layout extended with manufacturer rows, mechanism and shelf life.
func FieldSections(r *entities.VetLekRecord) []Section {
	description := r.Description
	if strings.TrimSpace(description) == "" {
		description = r.Summary
	}

	var out []Section
	add := func(key, title, value string) {
		if strings.TrimSpace(value) != "" {
			out = append(out, Section{Key: key, Title: title, Body: HTML(value)})
		}
	}

	add("description", "Описание", description)
	add("composition", "Состав", r.Composition)
	if s, ok := manufacturerSection(r.ManufacturerInfo); ok {
		out = append(out, s)
	}
	add("mechanism", "Механизм действия", r.Mechanism)
	add("indications", "Показания", r.Indications)
	add("contraindications", "Противопоказания", r.Contraindications)
	add("dosage", "Дозировка и способ применения", r.Dosage)
	add("side_effects", "Побочные эффекты", r.SideEffects)
	add("storage", "Условия хранения", r.Storage)
	add("shelf_life", "Срок годности", r.ShelfLife)
	return out
}

func manufacturerSection(m *entities.ManufacturerInfo) (Section, bool) {
	if m.IsEmpty() {
		return Section{}, false
	}
	rows := [][2]string{
		{"Производитель", m.Manufacturer},
		{"Страна производителя", m.ManufacturerCountry},
		{"Держатель регистрационного удостоверения", m.RegistrationHolder},
		{"Страна держателя", m.RegistrationHolderCountry},
	}

	var sb strings.Builder
	sb.WriteString("<dl>")
	for _, row := range rows {
		sb.WriteString("<dt>" + row[0] + "</dt><dd>" + row[1] + "</dd>")
	}
	sb.WriteString("</dl>")
	return Section{Key: "manufacturer_info", Title: manufacturerTitle, Body: HTML(sb.String())}, true
}
