// Package ocr provides text recognition engines for rasterized PDF pages.
package ocr

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/kumarraju1982/Convertx/internal/config"
	"github.com/kumarraju1982/Convertx/internal/pdf"
)

// Word is a single recognized token with its position on the page.
// Coordinates are pixels in the rendered image's coordinate space,
// origin top-left.
type Word struct {
	Text       string  `json:"text"`
	X          int     `json:"x"`
	Y          int     `json:"y"`
	Width      int     `json:"width"`
	Height     int     `json:"height"`
	Confidence float64 `json:"confidence"` // 0.0 - 1.0
}

// Result is the recognition output for one page.
type Result struct {
	Words      []Word  `json:"words"`
	Text       string  `json:"text"`
	Confidence float64 `json:"confidence"` // mean word confidence, 0.0 - 1.0
}

// Engine recognizes text in a rendered page image.
type Engine interface {
	// Name identifies the engine ("tesseract" or "remote").
	Name() string

	// Recognize extracts words from the page image. Implementations
	// must respect ctx cancellation.
	Recognize(ctx context.Context, img pdf.PageImage) (Result, error)
}

// New constructs the engine selected by name, falling back to the
// configured default when name is empty.
func New(cfg *config.Config, name string, logger *slog.Logger) (Engine, error) {
	if name == "" {
		name = cfg.Engines.Default
	}

	switch name {
	case "tesseract":
		return NewTesseract(cfg.Engines.Tesseract, logger), nil
	case "remote":
		return NewRemote(cfg.Engines.Remote, logger)
	default:
		return nil, fmt.Errorf("unknown recognition engine %q", name)
	}
}

// meanConfidence averages word confidences; empty input yields zero.
func meanConfidence(words []Word) float64 {
	if len(words) == 0 {
		return 0
	}
	var sum float64
	for _, w := range words {
		sum += w.Confidence
	}
	return sum / float64(len(words))
}
