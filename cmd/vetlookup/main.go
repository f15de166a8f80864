// Command vetlookup queries the drug reference from a terminal, using the same data
// sources and rendering as the service.
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"

	"github.com/giygas/vetref/config"
	"github.com/giygas/vetref/data"
	"github.com/giygas/vetref/datasetparser"
	"github.com/giygas/vetref/monograph"
	"github.com/giygas/vetref/report"
)

func main() {
	_ = godotenv.Load()

	root := NewRootCmd(loadApp, os.Stdout)
	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

// loadApp reads both datasets once and prepares the monograph corpus loader
func loadApp(ctx context.Context) (*App, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, 2*time.Minute)
	defer cancel()

	source, err := datasetparser.NewSourceFromConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to configure data source: %w", err)
	}
	parser := datasetparser.NewDatasetParser(source, datasetparser.PathsFromConfig(cfg))

	vetlek, vidal, err := parser.ParseAll(ctx)
	if err != nil {
		return nil, err
	}

	store := data.NewDataContainer()
	store.UpdateData(vetlek, vidal, monograph.NewLoader(parser.FetchMonographs))

	return NewApp(store, report.NewHTTPSender(cfg.ReportURL, cfg.ReportLinkBase, cfg.ReportTimeout)), nil
}
