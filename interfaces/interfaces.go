// Package interfaces defines the contracts between the vetref packages so that the
// store, loader, scheduler and handlers can be swapped in tests.
package interfaces

import (
	"context"
	"net/http"
	"time"

	"github.com/giygas/vetref/datasetparser/entities"
	"github.com/giygas/vetref/monograph"
	"github.com/giygas/vetref/report"
)

// DataQualityReport summarizes issues found in a freshly loaded pair of datasets
type DataQualityReport struct {
	VetLekRecords         int
	VidalRecords          int
	UnnamedVetLek         int
	UnnamedVidal          int
	DuplicateVetLekKeys   []string
	DuplicateVidalKeys    []string
	VetLekWithoutSections int
	CrossSourceMatches    int // normalized names present in both datasets
	ByOrigin              map[entities.Origin]int
	ByRichness            map[entities.Richness]int
}

// MonographIndex gives access to the lazily fetched monograph corpus
type MonographIndex interface {
	Find(ctx context.Context, name string) (monograph.Article, error)
	Corpus(ctx context.Context) (*monograph.Corpus, error)
	Loaded() bool
}

// DataStore holds the loaded datasets. Readers always see a complete snapshot; an
// update replaces both datasets and the monograph index at once.
type DataStore interface {
	GetVetLek() []entities.VetLekRecord
	GetVidal() []entities.VidalRecord
	GetMonographs() MonographIndex
	IsLoaded() bool
	GetLastUpdated() time.Time
	IsUpdating() bool
	GetServerStartTime() time.Time

	UpdateData(vetlek []entities.VetLekRecord, vidal []entities.VidalRecord, monographs MonographIndex)
	BeginUpdate() bool
	EndUpdate()
}

// Parser loads the datasets and the raw monograph corpus from their source
type Parser interface {
	ParseAll(ctx context.Context) ([]entities.VetLekRecord, []entities.VidalRecord, error)
	FetchMonographs(ctx context.Context) ([]byte, error)
}

// Scheduler runs the initial load and the scheduled refreshes
type Scheduler interface {
	Start() error
	Stop()
}

// HTTPHandler is the HTTP surface of the service
type HTTPHandler interface {
	Search(w http.ResponseWriter, r *http.Request)
	ShowDrug(w http.ResponseWriter, r *http.Request)
	FindMonographs(w http.ResponseWriter, r *http.Request)
	Report(w http.ResponseWriter, r *http.Request)
	HealthCheck(w http.ResponseWriter, r *http.Request)
}

// HealthChecker reports the service health
type HealthChecker interface {
	HealthCheck() (status string, details map[string]any, httpStatus int)

	// CalculateNextUpdate returns the next scheduled refresh, zero when refreshes are off
	CalculateNextUpdate() time.Time
}

// DataValidator checks user input and the quality of loaded data
type DataValidator interface {
	ValidateQuery(query string) error
	ValidateKey(key string) error
	ReportDataQuality(vetlek []entities.VetLekRecord, vidal []entities.VidalRecord) *DataQualityReport
}

// ReportSender composes and delivers issue reports
type ReportSender interface {
	NewMessage(subject, comment string) (report.Message, error)
	Send(ctx context.Context, msg report.Message) error
}
