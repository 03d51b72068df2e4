// Package convert drives the PDF-to-Word pipeline: validate, render,
// recognize, analyze and assemble, while keeping the job ledger
// current.
package convert

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/kumarraju1982/Convertx/internal/config"
	"github.com/kumarraju1982/Convertx/internal/docx"
	"github.com/kumarraju1982/Convertx/internal/layout"
	"github.com/kumarraju1982/Convertx/internal/ledger"
	"github.com/kumarraju1982/Convertx/internal/ocr"
	"github.com/kumarraju1982/Convertx/internal/pdf"
)

// Kind classifies conversion errors.
type Kind string

const (
	// Document-level: the whole job fails.
	KindInvalidInput  Kind = "invalid_input"
	KindAssemblyError Kind = "assembly_error"
	KindCanceled      Kind = "canceled"

	// Page-level: the page becomes an empty block and the job
	// continues.
	KindRenderError      Kind = "render_error"
	KindRecognitionError Kind = "recognition_error"
)

// Error is a classified conversion error. Page is zero for
// document-level errors.
type Error struct {
	Kind Kind
	Page int
	Err  error
}

func (e *Error) Error() string {
	if e.Page > 0 {
		return fmt.Sprintf("%s on page %d: %v", e.Kind, e.Page, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Kind, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// Result summarizes a finished conversion. A job with failed pages is
// still a success as long as the document was assembled.
type Result struct {
	Success        bool
	OutputPath     string
	PagesProcessed int
	PagesFailed    int
	Errors         []Error
}

// Options selects the input, output and engine for one conversion.
type Options struct {
	InputPath  string
	OutputPath string // derived from InputPath when empty
	Engine     string // configured default when empty

	// OnProgress, when set, is called after each page with the number
	// of pages finished and the total.
	OnProgress func(done, total int)
}

// Source is a validated input document.
type Source interface {
	Path() string
	PageCount() int
}

// OpenFunc validates an input file and returns it as a Source.
type OpenFunc func(path string) (Source, error)

// EngineFactory resolves an engine name to a recognition engine.
type EngineFactory func(name string) (ocr.Engine, error)

// Orchestrator runs conversions. Pages are processed sequentially in
// page order; each page gets its own timeout so one stuck page cannot
// hang the job.
type Orchestrator struct {
	cfg      *config.Config
	store    *ledger.Store
	logger   *slog.Logger
	open     OpenFunc
	renderer pdf.Renderer
	engines  EngineFactory
	analyzer *layout.Analyzer
}

// Option overrides a pipeline stage, used by tests and callers with
// custom stages.
type Option func(*Orchestrator)

// WithOpener replaces input validation.
func WithOpener(open OpenFunc) Option {
	return func(o *Orchestrator) { o.open = open }
}

// WithRenderer replaces page rasterization.
func WithRenderer(r pdf.Renderer) Option {
	return func(o *Orchestrator) { o.renderer = r }
}

// WithEngineFactory replaces engine resolution.
func WithEngineFactory(f EngineFactory) Option {
	return func(o *Orchestrator) { o.engines = f }
}

// New creates an orchestrator with the standard pipeline stages.
func New(cfg *config.Config, store *ledger.Store, logger *slog.Logger, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		cfg:    cfg,
		store:  store,
		logger: logger,
		open: func(path string) (Source, error) {
			return pdf.Open(path)
		},
		renderer: pdf.NewPopplerRenderer(logger),
		engines: func(name string) (ocr.Engine, error) {
			return ocr.New(cfg, name, logger)
		},
		analyzer: layout.NewAnalyzer(cfg.Layout, logger),
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Run converts one document. jobID may be empty for untracked runs;
// otherwise the ledger is updated as the job progresses. A non-nil
// error is always an *Error carrying a document-level kind, and the
// job is marked failed.
func (o *Orchestrator) Run(ctx context.Context, jobID string, opts Options) (Result, error) {
	res := Result{}

	doc, err := o.open(opts.InputPath)
	if err != nil {
		return res, o.fail(jobID, &Error{Kind: KindInvalidInput, Err: err})
	}

	engine, err := o.engines(opts.Engine)
	if err != nil {
		return res, o.fail(jobID, &Error{Kind: KindInvalidInput, Err: err})
	}

	total := doc.PageCount()
	if jobID != "" {
		if err := o.store.MarkProcessing(jobID, total); err != nil {
			return res, o.fail(jobID, &Error{Kind: KindInvalidInput, Err: err})
		}
	}

	o.logger.Info("conversion started",
		"job_id", jobID,
		"input", opts.InputPath,
		"pages", total,
		"engine", engine.Name())

	out := docx.New()
	pageTimeout := time.Duration(o.cfg.Pipeline.PageTimeoutSeconds) * time.Second
	if pageTimeout <= 0 {
		pageTimeout = 120 * time.Second
	}

	for page := 1; page <= total; page++ {
		if err := ctx.Err(); err != nil {
			return res, o.fail(jobID, &Error{Kind: KindCanceled, Err: err})
		}

		structure, pageErr := o.processPage(ctx, doc, engine, page, pageTimeout)
		if pageErr != nil {
			// The page keeps its place in the output as an empty
			// block; the rest of the document is unaffected.
			res.PagesFailed++
			res.Errors = append(res.Errors, *pageErr)
			structure = layout.Page{PageNumber: page, Elements: []layout.Element{}}
			o.logger.Warn("page failed", "job_id", jobID, "page", page, "kind", pageErr.Kind, "error", pageErr.Err)
		}
		out.AddPage(structure)
		res.PagesProcessed++

		o.recordPage(jobID, pageErr)
		if opts.OnProgress != nil {
			opts.OnProgress(res.PagesProcessed, total)
		}
	}

	outputPath := opts.OutputPath
	if outputPath == "" {
		outputPath = strings.TrimSuffix(opts.InputPath, filepath.Ext(opts.InputPath)) + ".docx"
	}

	policy := docx.ConflictPolicy(o.cfg.Output.ConflictPolicy)
	if policy != docx.Unique {
		policy = docx.Overwrite
	}
	saved, err := out.Save(outputPath, policy)
	if err != nil {
		return res, o.fail(jobID, &Error{Kind: KindAssemblyError, Err: err})
	}

	res.Success = true
	res.OutputPath = saved
	if jobID != "" {
		if err := o.store.MarkCompleted(jobID, saved); err != nil {
			o.logger.Error("failed to finalize job", "job_id", jobID, "error", err)
		}
	}

	o.logger.Info("conversion finished",
		"job_id", jobID,
		"output", saved,
		"pages", res.PagesProcessed,
		"pages_failed", res.PagesFailed)

	return res, nil
}

// processPage renders, recognizes and analyzes one page under its own
// deadline. The returned error, if any, is page-level.
func (o *Orchestrator) processPage(ctx context.Context, doc Source, engine ocr.Engine, page int, timeout time.Duration) (layout.Page, *Error) {
	pageCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	img, err := o.renderer.RenderPage(pageCtx, doc.Path(), page, o.dpi())
	if err != nil {
		return layout.Page{}, &Error{Kind: KindRenderError, Page: page, Err: err}
	}

	prepared, err := ocr.Preprocess(img, o.cfg.Pipeline.Preprocess)
	if err != nil {
		// Recognition can still work on the raw image.
		o.logger.Warn("preprocessing failed, using raw page", "page", page, "error", err)
		prepared = img
	}

	recognized, err := engine.Recognize(pageCtx, prepared)
	if err != nil {
		return layout.Page{}, &Error{Kind: KindRecognitionError, Page: page, Err: err}
	}

	return o.analyzer.Analyze(prepared, recognized), nil
}

func (o *Orchestrator) dpi() int {
	if o.cfg.Extraction.DPI > 0 {
		return o.cfg.Extraction.DPI
	}
	return 300
}

// fail marks the job failed in the ledger and passes the error through.
func (o *Orchestrator) fail(jobID string, cerr *Error) error {
	if jobID != "" {
		if err := o.store.MarkFailed(jobID, string(cerr.Kind), cerr.Err.Error()); err != nil {
			o.logger.Error("failed to record job failure", "job_id", jobID, "error", err)
		}
	}
	return cerr
}

func (o *Orchestrator) recordPage(jobID string, pageErr *Error) {
	if jobID == "" {
		return
	}
	var entry *ledger.PageError
	if pageErr != nil {
		entry = &ledger.PageError{
			Page:    pageErr.Page,
			Kind:    string(pageErr.Kind),
			Message: pageErr.Err.Error(),
		}
	}
	if err := o.store.RecordPage(jobID, entry); err != nil {
		o.logger.Error("failed to record page progress", "job_id", jobID, "error", err)
	}
}
