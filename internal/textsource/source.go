// Package textsource turns document blobs into per-page text.
//
// A Source opens a document and returns a PageSet. Callers must Close the PageSet
// on every path; Close releases scratch files and rasterised pages. Any failure to
// open or parse a document wraps common.ErrParseFailure. Problems confined to one
// page are reported on that page's Err and wrap common.ErrExtractionAnomaly.
package textsource

import (
	"context"
	"fmt"
	"iter"
	"os"
	"path/filepath"
	"strings"

	"github.com/joseph-ayodele/result-scanner/constants"
	"github.com/joseph-ayodele/result-scanner/internal/common"
	"github.com/joseph-ayodele/result-scanner/internal/entity"
)

// Source opens documents for page-by-page reading.
type Source interface {
	Open(ctx context.Context, doc entity.Document) (PageSet, error)
}

// PageSet is an opened document.
type PageSet interface {
	// Pages yields pages in order, numbered from 1.
	Pages() iter.Seq[entity.Page]
	// Count is the number of pages Pages will yield.
	Count() int
	Close() error
}

// MultiSource picks a Source by document extension.
type MultiSource struct {
	byFormat map[string]Source
}

// NewMultiSource routes PDF documents to pdf and text documents to text.
func NewMultiSource(pdf, text Source) *MultiSource {
	return &MultiSource{byFormat: map[string]Source{
		constants.PDF: pdf,
		constants.TXT: text,
	}}
}

func (m *MultiSource) Open(ctx context.Context, doc entity.Document) (PageSet, error) {
	format := constants.MapExtToFormat(doc.Ext())
	src, ok := m.byFormat[format]
	if !ok || src == nil {
		return nil, common.ParseFailuref(fmt.Errorf("unsupported extension: %q", doc.Ext()), "open %s", doc.Label)
	}
	return src.Open(ctx, doc)
}

// staticPages is a PageSet over text that is already in memory.
type staticPages struct {
	pages   []string
	cleanup func()
}

func (s *staticPages) Pages() iter.Seq[entity.Page] {
	return func(yield func(entity.Page) bool) {
		for i, text := range s.pages {
			if !yield(entity.Page{Number: i + 1, Text: text}) {
				return
			}
		}
	}
}

func (s *staticPages) Count() int { return len(s.pages) }

func (s *staticPages) Close() error {
	if s.cleanup != nil {
		s.cleanup()
		s.cleanup = nil
	}
	return nil
}

// splitPages splits on form feed, the page separator pdftotext emits after every page.
func splitPages(text string, maxPages int) []string {
	if text == "" {
		return nil
	}
	pages := strings.Split(text, "\f")
	if n := len(pages); n > 1 && strings.TrimSpace(pages[n-1]) == "" {
		pages = pages[:n-1]
	}
	if maxPages > 0 && len(pages) > maxPages {
		pages = pages[:maxPages]
	}
	return pages
}

func allBlank(pages []string) bool {
	for _, p := range pages {
		if strings.TrimSpace(p) != "" {
			return false
		}
	}
	return true
}

// readHead returns up to n leading bytes of the document.
func readHead(doc entity.Document, n int) ([]byte, error) {
	if doc.Data != nil {
		if len(doc.Data) < n {
			return doc.Data, nil
		}
		return doc.Data[:n], nil
	}
	f, err := os.Open(doc.Path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	buf := make([]byte, n)
	read, err := f.Read(buf)
	if read == 0 && err != nil {
		return nil, err
	}
	return buf[:read], nil
}

// materialize returns a filesystem path for doc. A document already on disk is used
// in place; only in-memory blobs are written to a scratch directory that cleanup removes.
func materialize(doc entity.Document, scratchDir string) (string, func(), error) {
	if doc.Path != "" && (doc.Data == nil || isRegularFile(doc.Path)) {
		return doc.Path, func() {}, nil
	}
	if doc.Data == nil {
		return "", func() {}, fmt.Errorf("document %q has neither data nor path", doc.Label)
	}
	tmpDir, err := os.MkdirTemp(scratchDir, "rs-doc-*")
	if err != nil {
		return "", func() {}, err
	}
	cleanup := func() { _ = os.RemoveAll(tmpDir) }

	name := filepath.Base(doc.Label)
	if name == "." || name == string(filepath.Separator) || name == "" {
		name = "document"
	}
	path := filepath.Join(tmpDir, name)
	if err := os.WriteFile(path, doc.Data, 0o600); err != nil {
		cleanup()
		return "", func() {}, err
	}
	return path, cleanup, nil
}

func isRegularFile(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}
