package datasetparser

import (
	"context"
	"fmt"

	"github.com/giygas/vetref/config"
)

// NewSourceFromConfig builds the Source selected by DATA_DRIVER
func NewSourceFromConfig(ctx context.Context, cfg *config.Config) (Source, error) {
	switch cfg.DataDriver {
	case config.DriverFile, "":
		return NewFileSource(cfg.DataRoot), nil
	case config.DriverHTTP:
		return NewHTTPSource(cfg.DataRoot), nil
	case config.DriverS3:
		src, err := NewS3Source(ctx, S3Config{
			Bucket:    cfg.S3Bucket,
			Region:    cfg.S3Region,
			Endpoint:  cfg.S3Endpoint,
			Prefix:    cfg.DataRoot,
			PathStyle: cfg.S3PathStyle,
		})
		if err != nil {
			return nil, err
		}
		return src, nil
	default:
		return nil, fmt.Errorf("unknown data driver %q", cfg.DataDriver)
	}
}

// PathsFromConfig returns the document paths configured for the source
func PathsFromConfig(cfg *config.Config) Paths {
	return Paths{
		VetLek:    cfg.VetLekPath,
		Vidal:     cfg.VidalPath,
		Monograph: cfg.MonographPath,
	}
}
