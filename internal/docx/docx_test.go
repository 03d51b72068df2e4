package docx

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/kumarraju1982/Convertx/internal/layout"
)

func sampleDocument() *Document {
	d := New()
	d.AddPage(layout.Page{
		PageNumber: 1,
		Elements: []layout.Element{
			{Kind: layout.KindHeading, Level: 1, Text: "Annual Report"},
			{Kind: layout.KindParagraph, Text: "The year went reasonably well."},
			{Kind: layout.KindListItem, Text: "revenue grew", Ordered: false},
			{Kind: layout.KindListItem, Text: "costs fell", Ordered: true},
		},
	})
	d.AddPage(layout.Page{PageNumber: 2, Elements: []layout.Element{}})
	d.AddPage(layout.Page{
		PageNumber: 3,
		Elements: []layout.Element{
			{Kind: layout.KindTable, Rows: [][]string{
				{"Quarter", "Revenue"},
				{"Q1", "100"},
				{"Q2", "120"},
			}},
		},
	})
	return d
}

func TestSaveAndRead_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "report.docx")
	saved, err := sampleDocument().Save(path, Overwrite)
	if err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	if saved != path {
		t.Errorf("Save() path = %q, want %q", saved, path)
	}

	blocks, err := Read(saved)
	if err != nil {
		t.Fatalf("Read() error = %v", err)
	}

	want := []Block{
		{Style: "Heading1", Text: "Annual Report"},
		{Text: "The year went reasonably well."},
		{Style: "ListBullet", Text: "revenue grew"},
		{Style: "ListNumber", Text: "costs fell"},
		{PageBreak: true},
		{}, // placeholder paragraph for the blank page
		{PageBreak: true},
		{Rows: [][]string{{"Quarter", "Revenue"}, {"Q1", "100"}, {"Q2", "120"}}},
	}
	if len(blocks) != len(want) {
		t.Fatalf("got %d blocks, want %d: %+v", len(blocks), len(want), blocks)
	}
	for i, w := range want {
		got := blocks[i]
		if got.Style != w.Style || got.Text != w.Text || got.PageBreak != w.PageBreak {
			t.Errorf("blocks[%d] = %+v, want %+v", i, got, w)
		}
		if len(w.Rows) != len(got.Rows) {
			t.Errorf("blocks[%d] has %d rows, want %d", i, len(got.Rows), len(w.Rows))
			continue
		}
		for r := range w.Rows {
			for c := range w.Rows[r] {
				if got.Rows[r][c] != w.Rows[r][c] {
					t.Errorf("blocks[%d].Rows[%d][%d] = %q, want %q", i, r, c, got.Rows[r][c], w.Rows[r][c])
				}
			}
		}
	}
}

func TestSave_PageBreakCount(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pages.docx")
	if _, err := sampleDocument().Save(path, Overwrite); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	blocks, err := Read(path)
	if err != nil {
		t.Fatalf("Read() error = %v", err)
	}

	breaks := 0
	for _, b := range blocks {
		if b.PageBreak {
			breaks++
		}
	}
	// N pages produce N-1 breaks.
	if breaks != 2 {
		t.Errorf("got %d page breaks, want 2", breaks)
	}
}

func TestSave_MissingDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "no", "such", "dir", "out.docx")
	if _, err := sampleDocument().Save(path, Overwrite); err == nil {
		t.Fatal("Save() expected error for missing output directory")
	}
}

func TestSave_OverwritePolicy(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.docx")
	if err := os.WriteFile(path, []byte("old contents"), 0o644); err != nil {
		t.Fatal(err)
	}

	saved, err := sampleDocument().Save(path, Overwrite)
	if err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	if saved != path {
		t.Errorf("Save() path = %q, want %q", saved, path)
	}
	if _, err := Read(path); err != nil {
		t.Errorf("overwritten file is not a valid document: %v", err)
	}
}

func TestSave_UniquePolicy(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "out.docx")

	first, err := sampleDocument().Save(path, Unique)
	if err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	if first != path {
		t.Errorf("first Save() path = %q, want %q", first, path)
	}

	second, err := sampleDocument().Save(path, Unique)
	if err != nil {
		t.Fatalf("second Save() error = %v", err)
	}
	if want := filepath.Join(dir, "out_1.docx"); second != want {
		t.Errorf("second Save() path = %q, want %q", second, want)
	}

	third, err := sampleDocument().Save(path, Unique)
	if err != nil {
		t.Fatalf("third Save() error = %v", err)
	}
	if want := filepath.Join(dir, "out_2.docx"); third != want {
		t.Errorf("third Save() path = %q, want %q", third, want)
	}
}
