// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package raster turns an uploaded PDF into ordered page images using MuPDF
// through go-fitz. Rendering happens in memory; the only files written are
// the optional page dumps from WritePages.
package raster

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/png"
	"os"
	"path/filepath"

	"github.com/gabriel-vasile/mimetype"
	"github.com/gen2brain/go-fitz"

	"github.com/pdiddy/exercise-engine/pkg/types"
)

// DefaultDPI renders pages at twice the PDF user-space resolution.
const DefaultDPI = 144

const pdfMIME = "application/pdf"

// document is the subset of *fitz.Document the rasterizer uses.
type document interface {
	NumPage() int
	ImageDPI(pageNumber int, dpi float64) (*image.RGBA, error)
	Close() error
}

// openDocument is replaceable in tests.
var openDocument = func(data []byte) (document, error) {
	return fitz.NewFromMemory(data)
}

// Rasterizer renders documents to PNG page images.
type Rasterizer struct {
	cfg types.RasterConfig
}

// New returns a Rasterizer, applying DefaultDPI when cfg.DPI is unset.
func New(cfg types.RasterConfig) *Rasterizer {
	if cfg.DPI <= 0 {
		cfg.DPI = DefaultDPI
	}
	return &Rasterizer{cfg: cfg}
}

// Rasterize validates data as a PDF and returns one PNG image per page in
// page order. Any failure is a KindRasterize error.
func (r *Rasterizer) Rasterize(ctx context.Context, data []byte) ([]types.PageImage, error) {
	if len(data) == 0 {
		return nil, types.RasterizeError("document is empty", nil)
	}
	if mt := mimetype.Detect(data); !mt.Is(pdfMIME) {
		return nil, types.RasterizeError(fmt.Sprintf("unsupported document type %s", mt.String()), nil)
	}

	doc, err := openDocument(data)
	if err != nil {
		return nil, types.RasterizeError("opening document", err)
	}
	defer doc.Close()

	pageCount := doc.NumPage()
	if pageCount == 0 {
		return nil, types.RasterizeError("document has no pages", nil)
	}
	if r.cfg.MaxPages > 0 && pageCount > r.cfg.MaxPages {
		return nil, types.RasterizeError(fmt.Sprintf("document has %d pages, limit is %d", pageCount, r.cfg.MaxPages), nil)
	}

	pages := make([]types.PageImage, 0, pageCount)
	for n := 0; n < pageCount; n++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		img, err := doc.ImageDPI(n, r.cfg.DPI)
		if err != nil {
			return nil, types.RasterizeError(fmt.Sprintf("rendering page %d", n+1), err)
		}

		var buf bytes.Buffer
		if err := png.Encode(&buf, img); err != nil {
			return nil, types.RasterizeError(fmt.Sprintf("encoding page %d", n+1), err)
		}

		bounds := img.Bounds()
		pages = append(pages, types.PageImage{
			PageNumber: n + 1,
			MIMEType:   "image/png",
			Data:       buf.Bytes(),
			Width:      bounds.Dx(),
			Height:     bounds.Dy(),
		})
	}
	return pages, nil
}

// RasterizeFile reads path and rasterizes its contents.
func (r *Rasterizer) RasterizeFile(ctx context.Context, path string) ([]types.PageImage, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return r.Rasterize(ctx, data)
}

// WritePages writes each page to dir as page_NNN.png and returns the paths
// in page order.
func WritePages(dir string, pages []types.PageImage) ([]string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating %s: %w", dir, err)
	}
	paths := make([]string, 0, len(pages))
	for _, p := range pages {
		path := filepath.Join(dir, fmt.Sprintf("page_%03d.png", p.PageNumber))
		if err := os.WriteFile(path, p.Data, 0o644); err != nil {
			return nil, fmt.Errorf("writing %s: %w", path, err)
		}
		paths = append(paths, path)
	}
	return paths, nil
}
