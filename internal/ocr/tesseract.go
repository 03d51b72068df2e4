package ocr

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/otiai10/gosseract/v2"

	"github.com/kumarraju1982/Convertx/internal/config"
	"github.com/kumarraju1982/Convertx/internal/pdf"
)

// Tesseract is the local fast recognition engine.
type Tesseract struct {
	languages   []string
	pageSegMode int
	logger      *slog.Logger
}

// NewTesseract creates a local engine with the given configuration.
func NewTesseract(cfg config.TesseractCfg, logger *slog.Logger) *Tesseract {
	langs := cfg.Languages
	if len(langs) == 0 {
		langs = []string{"eng"}
	}
	return &Tesseract{
		languages:   langs,
		pageSegMode: cfg.PageSegMode,
		logger:      logger,
	}
}

// Name implements Engine.
func (t *Tesseract) Name() string { return "tesseract" }

// Recognize implements Engine. The underlying library call is blocking,
// so it runs on its own goroutine and the result is discarded if ctx
// expires first.
func (t *Tesseract) Recognize(ctx context.Context, img pdf.PageImage) (Result, error) {
	type outcome struct {
		res Result
		err error
	}
	ch := make(chan outcome, 1)

	go func() {
		res, err := t.recognize(img)
		ch <- outcome{res: res, err: err}
	}()

	select {
	case <-ctx.Done():
		return Result{}, fmt.Errorf("recognition of page %d canceled: %w", img.PageNumber, ctx.Err())
	case out := <-ch:
		return out.res, out.err
	}
}

func (t *Tesseract) recognize(img pdf.PageImage) (Result, error) {
	client := gosseract.NewClient()
	defer client.Close()

	if err := client.SetLanguage(t.languages...); err != nil {
		return Result{}, fmt.Errorf("failed to set languages %v: %w", t.languages, err)
	}
	if err := client.SetPageSegMode(gosseract.PageSegMode(t.pageSegMode)); err != nil {
		return Result{}, fmt.Errorf("failed to set page segmentation mode: %w", err)
	}
	if img.DPI > 0 {
		if err := client.SetVariable("user_defined_dpi", strconv.Itoa(img.DPI)); err != nil {
			return Result{}, fmt.Errorf("failed to set dpi hint: %w", err)
		}
	}
	if err := client.SetImageFromBytes(img.PNG); err != nil {
		return Result{}, fmt.Errorf("failed to load page %d image: %w", img.PageNumber, err)
	}

	boxes, err := client.GetBoundingBoxes(gosseract.RIL_WORD)
	if err != nil {
		return Result{}, fmt.Errorf("recognition failed on page %d: %w", img.PageNumber, err)
	}

	words := make([]Word, 0, len(boxes))
	texts := make([]string, 0, len(boxes))
	for _, b := range boxes {
		text := strings.TrimSpace(b.Word)
		if text == "" {
			continue
		}
		words = append(words, Word{
			Text:       text,
			X:          b.Box.Min.X,
			Y:          b.Box.Min.Y,
			Width:      b.Box.Dx(),
			Height:     b.Box.Dy(),
			Confidence: b.Confidence / 100.0,
		})
		texts = append(texts, text)
	}

	res := Result{
		Words:      words,
		Text:       strings.Join(texts, " "),
		Confidence: meanConfidence(words),
	}

	t.logger.Debug("page recognized",
		"engine", "tesseract",
		"page", img.PageNumber,
		"words", len(res.Words),
		"confidence", res.Confidence)

	return res, nil
}
