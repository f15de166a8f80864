package render

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/giygas/vetref/datasetparser/entities"
	"github.com/giygas/vetref/logging"
	"github.com/giygas/vetref/metrics"
	"github.com/giygas/vetref/monograph"
)

var ErrSourceUnavailable = errors.New("the selected source has no record for this drug")

// buildSections renders the structured sections of a VetLek record
var buildSections = VetLekSections

// MonographFinder looks a drug up in the monograph corpus
type MonographFinder interface {
	Find(ctx context.Context, name string) (monograph.Article, error)
}

// Renderer renders merged entries. A nil finder disables the monograph tier.
type Renderer struct {
	monographs MonographFinder
}

func NewRenderer(monographs MonographFinder) *Renderer {
	return &Renderer{monographs: monographs}
}

// Render renders the record of entry for src. ErrSourceUnavailable is returned when
// the entry carries no record for src.
func (r *Renderer) Render(ctx context.Context, entry *entities.MergedEntry, src entities.Source) (Content, error) {
	if entry == nil || !entry.Has(src) {
		return Content{}, ErrSourceUnavailable
	}

	c := Content{Key: entry.Key, Name: entry.Name(), Source: src}
	switch src {
	case entities.SourceVetLek:
		r.renderVetLek(ctx, entry.VetLek, &c)
	case entities.SourceVidal:
		c.Name = entry.Vidal.Name
		c.LatinName = entry.Vidal.LatinName
		c.Sections = VidalSections(entry.Vidal)
		c.Tier = TierStructured
		if len(c.Sections) == 0 {
			c.Tier = TierEmpty
		}
	}

	if c.Sections == nil {
		c.Sections = []Section{}
	}
	metrics.RenderTotals.WithLabelValues(string(src), string(c.Tier)).Inc()
	return c, nil
}

// renderVetLek runs the fallback chain: sections, record html, monograph corpus,
// scalar fields, then the placeholder for minimal records.
func (r *Renderer) renderVetLek(ctx context.Context, rec *entities.VetLekRecord, c *Content) {
	c.Name = rec.Name

	sections, tier, err := structured(rec)
	if err != nil {
		logging.Error("Failed to render structured monograph", "drug", rec.Name, "error", err)
		c.Tier = TierError
		c.Sections = []Section{{Key: "error", Title: errorTitle, Body: Text(err.Error())}}
		return
	}
	if len(sections) > 0 {
		c.Tier, c.Sections = tier, sections
		return
	}

	if s, ok := r.fromMonograph(ctx, rec.Name); ok {
		c.Tier, c.Sections = TierMonograph, []Section{s}
		return
	}

	if sections := FieldSections(rec); len(sections) > 0 {
		c.Tier, c.Sections = TierFields, sections
		c.LatinName = latinName(rec)
		return
	}

	classification := rec.Classification
	if classification.Richness == "" {
		classification = entities.Classify(rec)
	}
	if classification.Richness == entities.RichnessMinimal {
		c.Tier = TierPlaceholder
		c.Sections = []Section{{Key: "placeholder", Title: placeholderTitle, Body: placeholderBody}}
		return
	}
	c.Tier = TierEmpty
}

// structured renders the record's own sections and tables, or its cleaned html when it
// has none. Malformed data is reported as an error instead of a panic.
func structured(rec *entities.VetLekRecord) (sections []Section, tier Tier, err error) {
	defer func() {
		if p := recover(); p != nil {
			sections, err = nil, fmt.Errorf("malformed record %q: %v", rec.Name, p)
		}
	}()

	if sections = buildSections(rec); len(sections) > 0 {
		return sections, TierStructured, nil
	}

	if strings.TrimSpace(rec.HTML) != "" {
		cleaned, err := monograph.Clean(rec.HTML)
		if err != nil {
			return nil, "", err
		}
		return []Section{{Key: "html", Title: rec.Name, Body: HTML(cleaned)}}, TierRecordHTML, nil
	}
	return nil, "", nil
}

func (r *Renderer) fromMonograph(ctx context.Context, name string) (Section, bool) {
	if r.monographs == nil {
		return Section{}, false
	}

	article, err := r.monographs.Find(ctx, name)
	if err != nil {
		if !errors.Is(err, monograph.ErrNoArticle) {
			logging.Warn("Monograph lookup failed", "drug", name, "error", err)
		}
		return Section{}, false
	}
	if strings.TrimSpace(article.HTML) == "" {
		return Section{}, false
	}

	title := article.Heading
	if title == "" {
		title = name
	}
	return Section{Key: "monograph", Title: title, Body: HTML(article.HTML)}, true
}

var parenthesized = regexp.MustCompile(`\(([^()]+)\)`)

// latinName prefers the dedicated field, else the first parenthesized part of the name
func latinName(rec *entities.VetLekRecord) string {
	if rec.LatinName != "" {
		return rec.LatinName
	}
	if m := parenthesized.FindStringSubmatch(rec.Name); m != nil {
		return strings.TrimSpace(m[1])
	}
	return ""
}
