// Package data holds the loaded datasets behind an atomic pointer so that a refresh
// replaces everything readers see in one step.
package data

import (
	"context"
	"errors"
	"sync/atomic"
	"time"

	"github.com/giygas/vetref/datasetparser/entities"
	"github.com/giygas/vetref/interfaces"
	"github.com/giygas/vetref/monograph"
)

// Compile-time check to ensure DataContainer implements DataStore
var _ interfaces.DataStore = (*DataContainer)(nil)

var ErrNotLoaded = errors.New("datasets are not loaded yet, try again shortly")

// Snapshot is one immutable load of both datasets and its monograph index
type Snapshot struct {
	VetLek     []entities.VetLekRecord
	Vidal      []entities.VidalRecord
	Monographs interfaces.MonographIndex
	LoadedAt   time.Time
}

// DataContainer holds the current snapshot
type DataContainer struct {
	snapshot        atomic.Pointer[Snapshot]
	updating        atomic.Bool
	serverStartTime atomic.Value // time.Time
}

// NewDataContainer creates a container with no snapshot
func NewDataContainer() *DataContainer {
	dc := &DataContainer{}
	dc.serverStartTime.Store(time.Time{})
	return dc
}

// Snapshot returns the current snapshot, or nil before the first load
func (dc *DataContainer) Snapshot() *Snapshot {
	return dc.snapshot.Load()
}

// IsLoaded reports whether a load has completed
func (dc *DataContainer) IsLoaded() bool {
	return dc.snapshot.Load() != nil
}

// GetVetLek returns the VetLek records
func (dc *DataContainer) GetVetLek() []entities.VetLekRecord {
	if s := dc.snapshot.Load(); s != nil {
		return s.VetLek
	}
	return []entities.VetLekRecord{}
}

// GetVidal returns the Vidal records
func (dc *DataContainer) GetVidal() []entities.VidalRecord {
	if s := dc.snapshot.Load(); s != nil {
		return s.Vidal
	}
	return []entities.VidalRecord{}
}

// GetMonographs returns the monograph index of the current snapshot, or nil
func (dc *DataContainer) GetMonographs() interfaces.MonographIndex {
	if s := dc.snapshot.Load(); s != nil {
		return s.Monographs
	}
	return nil
}

// Find looks name up in the monograph index of the current snapshot
func (dc *DataContainer) Find(ctx context.Context, name string) (monograph.Article, error) {
	m := dc.GetMonographs()
	if m == nil {
		return monograph.Article{}, ErrNotLoaded
	}
	return m.Find(ctx, name)
}

// GetLastUpdated returns the time of the last completed load
func (dc *DataContainer) GetLastUpdated() time.Time {
	if s := dc.snapshot.Load(); s != nil {
		return s.LoadedAt
	}
	return time.Time{}
}

// IsUpdating returns true if a data update is currently in progress
func (dc *DataContainer) IsUpdating() bool {
	return dc.updating.Load()
}

// SetServerStartTime sets the server start time
func (dc *DataContainer) SetServerStartTime(startTime time.Time) {
	dc.serverStartTime.Store(startTime)
}

// GetServerStartTime returns the server start time
func (dc *DataContainer) GetServerStartTime() time.Time {
	if startTime, ok := dc.serverStartTime.Load().(time.Time); ok {
		return startTime
	}
	return time.Time{}
}

// UpdateData installs a new snapshot
func (dc *DataContainer) UpdateData(vetlek []entities.VetLekRecord, vidal []entities.VidalRecord, monographs interfaces.MonographIndex) {
	if vetlek == nil {
		vetlek = []entities.VetLekRecord{}
	}
	if vidal == nil {
		vidal = []entities.VidalRecord{}
	}
	dc.snapshot.Store(&Snapshot{
		VetLek:     vetlek,
		Vidal:      vidal,
		Monographs: monographs,
		LoadedAt:   time.Now(),
	})
}

// BeginUpdate marks the start of a data update operation
// Returns true if update can proceed, false if another update is in progress
func (dc *DataContainer) BeginUpdate() bool {
	return dc.updating.CompareAndSwap(false, true)
}

// EndUpdate marks the end of a data update operation
func (dc *DataContainer) EndUpdate() {
	dc.updating.Store(false)
}
