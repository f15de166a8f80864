package datasetparser

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/giygas/vetref/datasetparser/entities"
	"github.com/giygas/vetref/interfaces"
	"github.com/giygas/vetref/logging"
)

// Compile-time check to ensure DatasetParser implements Parser
var _ interfaces.Parser = (*DatasetParser)(nil)

// Paths names the three documents inside a Source
type Paths struct {
	VetLek    string
	Vidal     string
	Monograph string
}

// DatasetParser loads both datasets and the monograph corpus from one Source
type DatasetParser struct {
	source Source
	paths  Paths
}

func NewDatasetParser(source Source, paths Paths) *DatasetParser {
	return &DatasetParser{source: source, paths: paths}
}

// ParseAll fetches and decodes both datasets concurrently. The load fails as a whole
// when either dataset fails; there is no partial result.
func (p *DatasetParser) ParseAll(ctx context.Context) ([]entities.VetLekRecord, []entities.VidalRecord, error) {
	start := time.Now()
	var vetlek []entities.VetLekRecord
	var vidal []entities.VidalRecord

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		content, err := p.source.Fetch(gctx, p.paths.VetLek)
		if err != nil {
			return fmt.Errorf("vetlek dataset: %w", err)
		}
		records, err := DecodeVetLek(content)
		if err != nil {
			return fmt.Errorf("vetlek dataset %s: %w", p.paths.VetLek, err)
		}
		vetlek = records
		return nil
	})
	g.Go(func() error {
		content, err := p.source.Fetch(gctx, p.paths.Vidal)
		if err != nil {
			return fmt.Errorf("vidal dataset: %w", err)
		}
		records, err := DecodeVidal(content)
		if err != nil {
			return fmt.Errorf("vidal dataset %s: %w", p.paths.Vidal, err)
		}
		vidal = records
		return nil
	})

	if err := g.Wait(); err != nil {
		logging.Error("Dataset load failed", "error", err)
		return nil, nil, err
	}

	logging.Info("Datasets loaded",
		"vetlek", len(vetlek),
		"vidal", len(vidal),
		"duration_ms", time.Since(start).Milliseconds())
	return vetlek, vidal, nil
}

// FetchMonographs returns the raw monograph corpus as UTF-8 HTML
func (p *DatasetParser) FetchMonographs(ctx context.Context) ([]byte, error) {
	content, err := p.source.Fetch(ctx, p.paths.Monograph)
	if err != nil {
		return nil, fmt.Errorf("monograph corpus: %w", err)
	}
	return toUTF8(content)
}
