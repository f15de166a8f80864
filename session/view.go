// Package session holds the per-user view state: the current screen, the last result
// set and the selected entry and source. A View is not safe for concurrent use; each
// user or request owns its own.
package session

import (
	"context"
	"errors"
	"fmt"

	"github.com/giygas/vetref/datasetparser/entities"
	"github.com/giygas/vetref/render"
	"github.com/giygas/vetref/report"
	"github.com/giygas/vetref/search"
)

type Screen string

const (
	ScreenSearch  Screen = "search"
	ScreenResults Screen = "results"
	ScreenDetail  Screen = "detail"
)

// SearchContext is the report context when no drug is selected
const SearchContext = report.SearchContext

var (
	ErrSourceUnavailable = render.ErrSourceUnavailable
	ErrNoSelection       = errors.New("no drug is selected")
)

// Datasets is the read side of the dataset store
type Datasets interface {
	GetVetLek() []entities.VetLekRecord
	GetVidal() []entities.VidalRecord
}

// Renderer renders one entry for one source
type Renderer interface {
	Render(ctx context.Context, entry *entities.MergedEntry, src entities.Source) (render.Content, error)
}

// Selection is the displayed entry and source, replaced as a whole on every change
type Selection struct {
	Entry  *entities.MergedEntry
	Source entities.Source
}

type View struct {
	data     Datasets
	renderer Renderer

	screen     Screen
	query      string
	results    []*entities.MergedEntry
	selection  *Selection
	categories map[string]bool
}

func NewView(data Datasets, renderer Renderer) *View {
	return &View{
		data:       data,
		renderer:   renderer,
		screen:     ScreenSearch,
		categories: make(map[string]bool),
	}
}

func (v *View) Screen() Screen                   { return v.screen }
func (v *View) Query() string                    { return v.query }
func (v *View) Results() []*entities.MergedEntry { return v.results }

// NothingFound reports whether the last search returned no entry
func (v *View) NothingFound() bool {
	return v.screen == ScreenResults && len(v.results) == 0
}

// Selection returns the current selection, or nil
func (v *View) Selection() *Selection {
	return v.selection
}

// Search runs query against the current datasets and moves to the results screen.
// An empty query leaves the view unchanged and returns search.ErrEmptyQuery.
func (v *View) Search(query string) ([]*entities.MergedEntry, error) {
	results, err := search.Search(query, v.data.GetVetLek(), v.data.GetVidal())
	if err != nil {
		return nil, err
	}

	v.query = query
	v.results = results
	v.selection = nil
	v.screen = ScreenResults
	return results, nil
}

// Select opens result i. VetLek is shown when present, Vidal otherwise.
func (v *View) Select(i int) (*Selection, error) {
	if i < 0 || i >= len(v.results) {
		return nil, fmt.Errorf("result %d out of range (have %d)", i, len(v.results))
	}
	return v.Open(v.results[i]), nil
}

// Open shows entry directly, bypassing the result list
func (v *View) Open(entry *entities.MergedEntry) *Selection {
	src := entities.SourceVetLek
	if entry.VetLek == nil {
		src = entities.SourceVidal
	}
	v.selection = &Selection{Entry: entry, Source: src}
	v.screen = ScreenDetail
	return v.selection
}

// AvailableSources lists the sources of the selected entry. Switching is only
// offered when there are two.
func (v *View) AvailableSources() []entities.Source {
	if v.selection == nil {
		return nil
	}
	return v.selection.Entry.Sources()
}

// SwitchSource shows the selected entry in src
func (v *View) SwitchSource(src entities.Source) error {
	if v.selection == nil {
		return ErrNoSelection
	}
	if !v.selection.Entry.Has(src) {
		return ErrSourceUnavailable
	}
	v.selection = &Selection{Entry: v.selection.Entry, Source: src}
	return nil
}

// ToggleCategory records a category checkbox. Categories are kept as view state
// only; sections carry no category so rendering is not filtered.
func (v *View) ToggleCategory(name string, on bool) {
	if on {
		v.categories[name] = true
		return
	}
	delete(v.categories, name)
}

// Categories returns the enabled categories
func (v *View) Categories() map[string]bool {
	return v.categories
}

// Back returns from detail to results and from results to search
func (v *View) Back() Screen {
	switch v.screen {
	case ScreenDetail:
		v.selection = nil
		v.screen = ScreenResults
	case ScreenResults:
		v.results = nil
		v.query = ""
		v.screen = ScreenSearch
	}
	return v.screen
}

// Render renders the current selection
func (v *View) Render(ctx context.Context) (render.Content, error) {
	if v.selection == nil {
		return render.Content{}, ErrNoSelection
	}
	return v.renderer.Render(ctx, v.selection.Entry, v.selection.Source)
}

// ReportContext names what the user is looking at, for issue reports
func (v *View) ReportContext() string {
	if v.selection != nil {
		if name := v.selection.Entry.Name(); name != "" {
			return name
		}
	}
	return SearchContext
}
