// Package dataset selects and bootstraps the file backing the item collection.
package dataset

import (
	"context"
	"os"

	"item-catalog-service/internal/config"
	"item-catalog-service/internal/domain"
	"item-catalog-service/internal/logger"
	"item-catalog-service/internal/store"
)

// DatasetGenerator writes a synthetic dataset of size records to path.
type DatasetGenerator interface {
	Generate(ctx context.Context, path string, size int) error
}

// MinimalItem is written when no dataset can be found or generated.
var MinimalItem = domain.Item{
	ID:          1,
	Name:        "Sample Item",
	Description: "This is a sample item",
	Brand:       "Sample Brand",
	Price:       99.99,
	Rating:      4.0,
	InStock:     true,
	Category:    string(domain.CategoryElectronics),
}

// Resolver picks the dataset file at startup.
type Resolver struct {
	cfg    config.DatasetConfig
	gen    DatasetGenerator
	logger *logger.Logger
}

// NewResolver creates a Resolver. gen may be nil, which disables generation.
func NewResolver(cfg config.DatasetConfig, gen DatasetGenerator, l *logger.Logger) *Resolver {
	if l == nil {
		l = logger.Nop()
	}
	return &Resolver{cfg: cfg, gen: gen, logger: l}
}

// Resolve returns the dataset path, in order of preference: the explicit
// override, the large dataset, a freshly generated large dataset, the
// sample dataset, and finally a one-record sample written on the spot.
// It never fails; every error along the way is logged and skipped.
func (r *Resolver) Resolve(ctx context.Context) string {
	if r.cfg.File != "" {
		if fileExists(r.cfg.File) {
			r.logger.Infow("using dataset from DATASET_FILE", "path", r.cfg.File)
			return r.cfg.File
		}
		r.logger.Warnw("DATASET_FILE does not exist, falling back", "path", r.cfg.File)
	}

	if fileExists(r.cfg.LargeFile) {
		r.logger.Infow("using large dataset", "path", r.cfg.LargeFile)
		return r.cfg.LargeFile
	}

	if r.tryGenerate(ctx) {
		return r.cfg.LargeFile
	}

	if fileExists(r.cfg.SampleFile) {
		r.logger.Warnw("large dataset not found, using sample dataset",
			"large", r.cfg.LargeFile, "sample", r.cfg.SampleFile)
		return r.cfg.SampleFile
	}

	if err := store.WriteItems(r.cfg.SampleFile, []domain.Item{MinimalItem}); err != nil {
		r.logger.Errorw("failed to write minimal dataset", "path", r.cfg.SampleFile, "error", err)
	} else {
		r.logger.Infow("created minimal dataset", "path", r.cfg.SampleFile)
	}
	return r.cfg.SampleFile
}

func (r *Resolver) tryGenerate(ctx context.Context) bool {
	if !r.cfg.Generate || r.gen == nil || r.cfg.GenerateSize <= 0 {
		return false
	}
	r.logger.Infow("generating large dataset", "path", r.cfg.LargeFile, "size", r.cfg.GenerateSize)
	if err := r.gen.Generate(ctx, r.cfg.LargeFile, r.cfg.GenerateSize); err != nil {
		r.logger.Warnw("dataset generation failed", "path", r.cfg.LargeFile, "error", err)
		return false
	}
	if !fileExists(r.cfg.LargeFile) {
		r.logger.Warnw("dataset generation reported success but produced no file", "path", r.cfg.LargeFile)
		return false
	}
	r.logger.Infow("large dataset generated", "path", r.cfg.LargeFile)
	return true
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
