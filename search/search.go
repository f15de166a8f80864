// Package search filters both datasets by normalized substring and merges the matches
// into entries keyed by normalized name.
package search

import (
	"errors"
	"strings"

	"github.com/giygas/vetref/datasetparser/entities"
	"github.com/giygas/vetref/normalize"
)

var ErrEmptyQuery = errors.New("enter a drug name to search")

// Search returns the merged entries matching query. VetLek matches come first in
// dataset order, followed by Vidal-only matches in dataset order; a Vidal match whose
// key is already present is attached to that entry. No match is an empty, non-nil slice.
//
// A query made only of characters the normalizer strips (for example "®") has an
// empty key and matches every record.
func Search(query string, vetlek []entities.VetLekRecord, vidal []entities.VidalRecord) ([]*entities.MergedEntry, error) {
	if strings.TrimSpace(query) == "" {
		return nil, ErrEmptyQuery
	}
	needle := normalize.Key(query)

	merged := newOrderedEntries()
	for i := range vetlek {
		if matchVetLek(&vetlek[i], needle) {
			merged.putVetLek(normalize.Key(vetlek[i].Name), &vetlek[i])
		}
	}
	for i := range vidal {
		if matchVidal(&vidal[i], needle) {
			merged.putVidal(normalize.Key(vidal[i].Name), &vidal[i])
		}
	}

	return merged.values(), nil
}

// Lookup returns the entry with the given normalized key among the results of a search
// for that key, or nil.
func Lookup(key string, vetlek []entities.VetLekRecord, vidal []entities.VidalRecord) *entities.MergedEntry {
	key = normalize.Key(key)
	if key == "" {
		return nil
	}
	results, err := Search(key, vetlek, vidal)
	if err != nil {
		return nil
	}
	for _, entry := range results {
		if entry.Key == key {
			return entry
		}
	}
	return nil
}

func matchVetLek(r *entities.VetLekRecord, needle string) bool {
	if strings.Contains(normalize.Key(r.Name), needle) {
		return true
	}
	for _, body := range r.Sections {
		if strings.Contains(normalize.Key(body), needle) {
			return true
		}
	}
	return false
}

func matchVidal(r *entities.VidalRecord, needle string) bool {
	return strings.Contains(normalize.Key(r.Name), needle) ||
		strings.Contains(normalize.Key(r.Description), needle) ||
		strings.Contains(normalize.Key(r.Summary), needle)
}

// orderedEntries is a map that remembers first-insertion order
type orderedEntries struct {
	order []string
	index map[string]*entities.MergedEntry
}

func newOrderedEntries() *orderedEntries {
	return &orderedEntries{index: make(map[string]*entities.MergedEntry)}
}

// putVetLek inserts a fresh entry; a later VetLek record with the same key replaces
// the earlier one but keeps its position.
func (o *orderedEntries) putVetLek(key string, r *entities.VetLekRecord) {
	if _, ok := o.index[key]; !ok {
		o.order = append(o.order, key)
	}
	o.index[key] = &entities.MergedEntry{Key: key, VetLek: r}
}

func (o *orderedEntries) putVidal(key string, r *entities.VidalRecord) {
	if entry, ok := o.index[key]; ok {
		entry.Vidal = r
		return
	}
	o.order = append(o.order, key)
	o.index[key] = &entities.MergedEntry{Key: key, Vidal: r}
}

func (o *orderedEntries) values() []*entities.MergedEntry {
	out := make([]*entities.MergedEntry, 0, len(o.order))
	for _, key := range o.order {
		out = append(out, o.index[key])
	}
	return out
}
