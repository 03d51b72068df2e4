package pdf

import (
	"bytes"
	"context"
	"fmt"
	"image/png"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strconv"
	"sync"

	"golang.org/x/sync/errgroup"
)

// Renderer rasterizes single PDF pages to PNG.
type Renderer interface {
	RenderPage(ctx context.Context, pdfPath string, page, dpi int) (PageImage, error)
}

// PopplerRenderer shells out to pdftoppm for rasterization.
type PopplerRenderer struct {
	logger *slog.Logger
}

// NewPopplerRenderer creates a renderer backed by the pdftoppm binary.
func NewPopplerRenderer(logger *slog.Logger) *PopplerRenderer {
	return &PopplerRenderer{logger: logger}
}

// Available reports whether pdftoppm is on PATH.
func (r *PopplerRenderer) Available() bool {
	_, err := exec.LookPath("pdftoppm")
	return err == nil
}

// RenderPage rasterizes one page (1-based) at the given DPI.
func (r *PopplerRenderer) RenderPage(ctx context.Context, pdfPath string, page, dpi int) (PageImage, error) {
	tmpDir, err := os.MkdirTemp("", "convertx-render-*")
	if err != nil {
		return PageImage{}, fmt.Errorf("failed to create temp dir: %w", err)
	}
	defer os.RemoveAll(tmpDir)

	outPrefix := filepath.Join(tmpDir, "page")
	pageStr := strconv.Itoa(page)

	cmd := exec.CommandContext(ctx, "pdftoppm",
		"-png",
		"-f", pageStr,
		"-l", pageStr,
		"-r", strconv.Itoa(dpi),
		"-singlefile",
		pdfPath,
		outPrefix,
	)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			return PageImage{}, fmt.Errorf("render page %d canceled: %w", page, ctx.Err())
		}
		return PageImage{}, fmt.Errorf("pdftoppm failed for page %d: %w (stderr: %s)", page, err, stderr.String())
	}

	data, err := os.ReadFile(outPrefix + ".png")
	if err != nil {
		return PageImage{}, fmt.Errorf("failed to read rendered page %d: %w", page, err)
	}

	cfg, err := png.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return PageImage{}, fmt.Errorf("rendered page %d is not valid png: %w", page, err)
	}

	r.logger.Debug("rendered page",
		"page", page,
		"dpi", dpi,
		"width", cfg.Width,
		"height", cfg.Height,
		"bytes", len(data))

	return PageImage{
		PageNumber: page,
		PNG:        data,
		Width:      cfg.Width,
		Height:     cfg.Height,
		DPI:        dpi,
	}, nil
}

// RenderAll rasterizes every page of doc concurrently, up to maxParallel at a
// time, and returns the successfully rendered pages in ascending page order.
// A page that fails to render is skipped; its error is reported through
// onError rather than aborting the batch.
func RenderAll(ctx context.Context, r Renderer, doc *Document, dpi, maxParallel int, onError func(page int, err error)) ([]PageImage, error) {
	if maxParallel < 1 {
		maxParallel = 1
	}

	var (
		mu    sync.Mutex
		pages []PageImage
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxParallel)

	for p := 1; p <= doc.PageCount(); p++ {
		page := p
		g.Go(func() error {
			if gctx.Err() != nil {
				return gctx.Err()
			}
			img, err := r.RenderPage(gctx, doc.Path(), page, dpi)
			if err != nil {
				if gctx.Err() != nil {
					return gctx.Err()
				}
				if onError != nil {
					onError(page, err)
				}
				return nil
			}
			mu.Lock()
			pages = append(pages, img)
			mu.Unlock()
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	sort.Slice(pages, func(i, j int) bool {
		return pages[i].PageNumber < pages[j].PageNumber
	})
	return pages, nil
}
