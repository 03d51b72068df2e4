package pdf

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
)

func TestOpen_MissingFile(t *testing.T) {
	_, err := Open(filepath.Join(t.TempDir(), "nope.pdf"))
	if err == nil {
		t.Fatal("Open() expected error for missing file")
	}
}

func TestOpen_CorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "garbage.pdf")
	if err := os.WriteFile(path, []byte("this is not a pdf"), 0o644); err != nil {
		t.Fatal(err)
	}

	_, err := Open(path)
	if err == nil {
		t.Fatal("Open() expected error for corrupt file")
	}
	if errors.Is(err, ErrEmptyDocument) {
		t.Error("corrupt file should not report ErrEmptyDocument")
	}
}

// stubRenderer returns synthetic pages, failing those listed in fail.
type stubRenderer struct {
	fail  map[int]bool
	calls atomic.Int32
}

func (s *stubRenderer) RenderPage(_ context.Context, _ string, page, dpi int) (PageImage, error) {
	s.calls.Add(1)
	if s.fail[page] {
		return PageImage{}, fmt.Errorf("synthetic failure on page %d", page)
	}
	return PageImage{PageNumber: page, PNG: []byte{0x89}, Width: 100, Height: 140, DPI: dpi}, nil
}

func TestRenderAll_OrderedAndPartial(t *testing.T) {
	doc := &Document{path: "fake.pdf", pageCount: 5}
	r := &stubRenderer{fail: map[int]bool{3: true}}

	var failedPages []int
	pages, err := RenderAll(context.Background(), r, doc, 300, 4, func(page int, err error) {
		failedPages = append(failedPages, page)
	})
	if err != nil {
		t.Fatalf("RenderAll() error = %v", err)
	}

	if len(pages) != 4 {
		t.Fatalf("got %d pages, want 4", len(pages))
	}
	want := []int{1, 2, 4, 5}
	for i, img := range pages {
		if img.PageNumber != want[i] {
			t.Errorf("pages[%d].PageNumber = %d, want %d", i, img.PageNumber, want[i])
		}
	}
	if len(failedPages) != 1 || failedPages[0] != 3 {
		t.Errorf("failedPages = %v, want [3]", failedPages)
	}
	if got := r.calls.Load(); got != 5 {
		t.Errorf("renderer called %d times, want 5", got)
	}
}

func TestRenderAll_Canceled(t *testing.T) {
	doc := &Document{path: "fake.pdf", pageCount: 3}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	r := &stubRenderer{}
	_, err := RenderAll(ctx, r, doc, 300, 1, nil)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("RenderAll() error = %v, want context.Canceled", err)
	}
}
