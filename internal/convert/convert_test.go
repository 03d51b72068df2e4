package convert

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/kumarraju1982/Convertx/internal/config"
	"github.com/kumarraju1982/Convertx/internal/docx"
	"github.com/kumarraju1982/Convertx/internal/ledger"
	"github.com/kumarraju1982/Convertx/internal/ocr"
	"github.com/kumarraju1982/Convertx/internal/pdf"
)

type stubSource struct {
	path  string
	pages int
}

func (s stubSource) Path() string   { return s.path }
func (s stubSource) PageCount() int { return s.pages }

type stubRenderer struct {
	fail map[int]bool
}

func (r stubRenderer) RenderPage(_ context.Context, _ string, page, dpi int) (pdf.PageImage, error) {
	if r.fail[page] {
		return pdf.PageImage{}, fmt.Errorf("pdftoppm exploded on page %d", page)
	}
	return pdf.PageImage{PageNumber: page, PNG: []byte{1}, Width: 1000, Height: 1400, DPI: dpi}, nil
}

type stubEngine struct {
	words map[int][]ocr.Word
	fail  map[int]bool
}

func (e stubEngine) Name() string { return "stub" }

func (e stubEngine) Recognize(_ context.Context, img pdf.PageImage) (ocr.Result, error) {
	if e.fail[img.PageNumber] {
		return ocr.Result{}, fmt.Errorf("engine gave up on page %d", img.PageNumber)
	}
	return ocr.Result{Words: e.words[img.PageNumber]}, nil
}

func pageWords(text string) []ocr.Word {
	words := make([]ocr.Word, 0, 4)
	x := 100
	for _, tok := range []string{text, "of", "sample", "text"} {
		words = append(words, ocr.Word{Text: tok, X: x, Y: 100, Width: len(tok) * 10, Height: 20, Confidence: 0.9})
		x += len(tok)*10 + 10
	}
	return words
}

type fixture struct {
	orch  *Orchestrator
	store *ledger.Store
}

func newFixture(t *testing.T, pages int, renderer pdf.Renderer, engine ocr.Engine) fixture {
	t.Helper()
	cfg := config.DefaultConfig()
	cfg.Pipeline.Preprocess = "never"

	logger := slog.New(slog.DiscardHandler)
	store := ledger.NewStore(logger)

	orch := New(cfg, store, logger,
		WithOpener(func(path string) (Source, error) {
			return stubSource{path: path, pages: pages}, nil
		}),
		WithRenderer(renderer),
		WithEngineFactory(func(string) (ocr.Engine, error) {
			return engine, nil
		}),
	)
	return fixture{orch: orch, store: store}
}

func TestRun_BlankMiddlePage(t *testing.T) {
	engine := stubEngine{words: map[int][]ocr.Word{
		1: pageWords("first"),
		3: pageWords("third"),
		// page 2 recognizes nothing: a blank page, not an error
	}}
	fx := newFixture(t, 3, stubRenderer{}, engine)
	job := fx.store.Create("scan.pdf", "stub")

	out := filepath.Join(t.TempDir(), "scan.docx")
	res, err := fx.orch.Run(context.Background(), job.ID, Options{InputPath: "scan.pdf", OutputPath: out})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if !res.Success || res.PagesProcessed != 3 || res.PagesFailed != 0 {
		t.Errorf("Result = %+v, want success with 3/0 pages", res)
	}

	blocks, err := docx.Read(res.OutputPath)
	if err != nil {
		t.Fatalf("Read() error = %v", err)
	}
	var breaks, empties int
	for _, b := range blocks {
		if b.PageBreak {
			breaks++
		}
		if !b.PageBreak && b.Text == "" && b.Rows == nil {
			empties++
		}
	}
	if breaks != 2 {
		t.Errorf("got %d page breaks, want 2", breaks)
	}
	if empties != 1 {
		t.Errorf("got %d empty blocks, want 1 (the blank page)", empties)
	}

	got, _ := fx.store.Get(job.ID)
	if got.State != ledger.StateCompleted {
		t.Errorf("job state = %q, want completed", got.State)
	}
	if got.PageCount != 3 || got.PagesDone != 3 || len(got.Errors) != 0 {
		t.Errorf("job = %+v, want clean 3-page completion", got)
	}
}

func TestRun_FailedPageKeepsItsPlace(t *testing.T) {
	engine := stubEngine{
		words: map[int][]ocr.Word{1: pageWords("first"), 2: pageWords("second"), 3: pageWords("third")},
		fail:  map[int]bool{2: true},
	}
	fx := newFixture(t, 3, stubRenderer{}, engine)
	job := fx.store.Create("scan.pdf", "stub")

	out := filepath.Join(t.TempDir(), "scan.docx")
	res, err := fx.orch.Run(context.Background(), job.ID, Options{InputPath: "scan.pdf", OutputPath: out})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if !res.Success {
		t.Error("a page failure must not fail the job")
	}
	if res.PagesProcessed != 3 || res.PagesFailed != 1 {
		t.Errorf("pages = %d processed / %d failed, want 3/1", res.PagesProcessed, res.PagesFailed)
	}
	if len(res.Errors) != 1 || res.Errors[0].Kind != KindRecognitionError || res.Errors[0].Page != 2 {
		t.Errorf("Errors = %+v, want one recognition_error on page 2", res.Errors)
	}

	// Page 2 is present but empty; pages 1 and 3 carry their text.
	blocks, err := docx.Read(res.OutputPath)
	if err != nil {
		t.Fatalf("Read() error = %v", err)
	}
	var texts []string
	for _, b := range blocks {
		if !b.PageBreak {
			texts = append(texts, b.Text)
		}
	}
	if len(texts) != 3 {
		t.Fatalf("got %d page blocks, want 3: %v", len(texts), texts)
	}
	if texts[0] == "" || texts[1] != "" || texts[2] == "" {
		t.Errorf("page texts = %q, want content, empty, content", texts)
	}

	got, _ := fx.store.Get(job.ID)
	if got.State != ledger.StateCompleted || got.PagesFailed != 1 || len(got.Errors) != 1 {
		t.Errorf("job = %+v, want completed with one page error", got)
	}
}

func TestRun_RenderFailureIsPageLevel(t *testing.T) {
	fx := newFixture(t, 1, stubRenderer{fail: map[int]bool{1: true}}, stubEngine{})
	job := fx.store.Create("scan.pdf", "stub")

	out := filepath.Join(t.TempDir(), "scan.docx")
	res, err := fx.orch.Run(context.Background(), job.ID, Options{InputPath: "scan.pdf", OutputPath: out})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if !res.Success || res.PagesFailed != 1 {
		t.Errorf("Result = %+v, want success with 1 failed page", res)
	}
	if res.Errors[0].Kind != KindRenderError {
		t.Errorf("Errors[0].Kind = %q, want render_error", res.Errors[0].Kind)
	}
}

func TestRun_InvalidInput(t *testing.T) {
	cfg := config.DefaultConfig()
	logger := slog.New(slog.DiscardHandler)
	store := ledger.NewStore(logger)
	orch := New(cfg, store, logger,
		WithOpener(func(path string) (Source, error) {
			return nil, errors.New("not a pdf")
		}),
	)
	job := store.Create("garbage.bin", "")

	_, err := orch.Run(context.Background(), job.ID, Options{InputPath: "garbage.bin"})
	var cerr *Error
	if !errors.As(err, &cerr) || cerr.Kind != KindInvalidInput {
		t.Fatalf("Run() error = %v, want invalid_input", err)
	}

	got, _ := store.Get(job.ID)
	if got.State != ledger.StateFailed {
		t.Errorf("job state = %q, want failed", got.State)
	}
	if len(got.Errors) != 1 || got.Errors[0].Kind != "invalid_input" {
		t.Errorf("job errors = %+v", got.Errors)
	}
}

func TestRun_AssemblyError(t *testing.T) {
	engine := stubEngine{words: map[int][]ocr.Word{1: pageWords("only")}}
	fx := newFixture(t, 1, stubRenderer{}, engine)
	job := fx.store.Create("scan.pdf", "stub")

	out := filepath.Join(t.TempDir(), "missing", "dir", "scan.docx")
	_, err := fx.orch.Run(context.Background(), job.ID, Options{InputPath: "scan.pdf", OutputPath: out})

	var cerr *Error
	if !errors.As(err, &cerr) || cerr.Kind != KindAssemblyError {
		t.Fatalf("Run() error = %v, want assembly_error", err)
	}
	got, _ := fx.store.Get(job.ID)
	if got.State != ledger.StateFailed {
		t.Errorf("job state = %q, want failed", got.State)
	}
}

func TestRun_Canceled(t *testing.T) {
	engine := stubEngine{words: map[int][]ocr.Word{1: pageWords("page")}}
	fx := newFixture(t, 5, stubRenderer{}, engine)
	job := fx.store.Create("scan.pdf", "stub")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := fx.orch.Run(ctx, job.ID, Options{InputPath: "scan.pdf"})
	var cerr *Error
	if !errors.As(err, &cerr) || cerr.Kind != KindCanceled {
		t.Fatalf("Run() error = %v, want canceled", err)
	}
}

func TestRun_UntrackedJob(t *testing.T) {
	engine := stubEngine{words: map[int][]ocr.Word{1: pageWords("solo")}}
	fx := newFixture(t, 1, stubRenderer{}, engine)

	out := filepath.Join(t.TempDir(), "solo.docx")
	res, err := fx.orch.Run(context.Background(), "", Options{InputPath: "solo.pdf", OutputPath: out})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if !res.Success {
		t.Error("untracked run should succeed without a ledger entry")
	}
}

func TestRun_ProgressCallback(t *testing.T) {
	engine := stubEngine{words: map[int][]ocr.Word{}}
	fx := newFixture(t, 3, stubRenderer{}, engine)

	var seen [][2]int
	out := filepath.Join(t.TempDir(), "p.docx")
	_, err := fx.orch.Run(context.Background(), "", Options{
		InputPath:  "p.pdf",
		OutputPath: out,
		OnProgress: func(done, total int) { seen = append(seen, [2]int{done, total}) },
	})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	want := [][2]int{{1, 3}, {2, 3}, {3, 3}}
	if len(seen) != len(want) {
		t.Fatalf("progress calls = %v, want %v", seen, want)
	}
	for i := range want {
		if seen[i] != want[i] {
			t.Errorf("progress[%d] = %v, want %v", i, seen[i], want[i])
		}
	}
}
