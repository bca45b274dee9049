// Package gate decides, from what is already on disk, which work a row
// still needs. It never writes.
package gate

import (
	"context"

	"github.com/atanko123/Scripts/internal/config"
	"github.com/atanko123/Scripts/internal/storage"
)

const (
	ImageExt   = ".jpg"
	PDFExt     = ".pdf"
	BarcodeExt = ".png"
)

type Gate struct {
	store      storage.Storage
	imageDir   string
	pdfDir     string
	barcodeDir string
}

func New(store storage.Storage, cfg config.OutputConfig) *Gate {
	return &Gate{
		store:      store,
		imageDir:   cfg.ImageDir,
		pdfDir:     cfg.PDFDir,
		barcodeDir: cfg.BarcodeDir,
	}
}

func (g *Gate) ImagePath(key string) string {
	return storage.Key(g.imageDir, key+ImageExt)
}

func (g *Gate) PDFPath(key string) string {
	return storage.Key(g.pdfDir, key+PDFExt)
}

func (g *Gate) BarcodePath(key string) string {
	return storage.Key(g.barcodeDir, key+BarcodeExt)
}

// NeedsFetch is true iff the image is absent.
func (g *Gate) NeedsFetch(ctx context.Context, key string) (bool, error) {
	exists, err := g.store.Exists(ctx, g.ImagePath(key))
	if err != nil {
		return false, err
	}
	return !exists, nil
}

// NeedsPDF is true iff the image is present and the PDF is not. This also
// completes rows whose image came from an earlier run.
func (g *Gate) NeedsPDF(ctx context.Context, key string) (bool, error) {
	hasImage, err := g.store.Exists(ctx, g.ImagePath(key))
	if err != nil || !hasImage {
		return false, err
	}
	hasPDF, err := g.store.Exists(ctx, g.PDFPath(key))
	if err != nil {
		return false, err
	}
	return !hasPDF, nil
}

func (g *Gate) NeedsBarcode(ctx context.Context, key string) (bool, error) {
	exists, err := g.store.Exists(ctx, g.BarcodePath(key))
	if err != nil {
		return false, err
	}
	return !exists, nil
}
