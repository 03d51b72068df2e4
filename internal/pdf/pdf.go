// Package pdf validates scanned PDF documents and rasterizes their pages.
package pdf

import (
	"errors"
	"fmt"
	"os"

	"github.com/pdfcpu/pdfcpu/pkg/api"
)

// ErrEmptyDocument indicates a structurally valid PDF with zero pages.
var ErrEmptyDocument = errors.New("pdf has no pages")

// PageImage is a single rasterized PDF page.
type PageImage struct {
	PageNumber int // 1-based
	PNG        []byte
	Width      int
	Height     int
	DPI        int
}

// Document is a validated PDF ready for page extraction.
type Document struct {
	path      string
	pageCount int
}

// Open validates the file at path as a PDF and reads its page count.
// Returns an error for missing, corrupt or encrypted files, and
// ErrEmptyDocument for a valid PDF with no pages.
func Open(path string) (*Document, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("failed to stat pdf: %w", err)
	}

	if err := api.ValidateFile(path, nil); err != nil {
		return nil, fmt.Errorf("invalid pdf %s: %w", path, err)
	}

	count, err := api.PageCountFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to count pages in %s: %w", path, err)
	}
	if count == 0 {
		return nil, ErrEmptyDocument
	}

	return &Document{path: path, pageCount: count}, nil
}

// Path returns the filesystem path of the document.
func (d *Document) Path() string {
	return d.path
}

// PageCount returns the number of pages in the document.
func (d *Document) PageCount() int {
	return d.pageCount
}
