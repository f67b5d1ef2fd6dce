package textsource

import (
	"bytes"
	"context"
	"fmt"
	"iter"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/joseph-ayodele/result-scanner/internal/common"
	"github.com/joseph-ayodele/result-scanner/internal/entity"
)

var pdfMagic = []byte("%PDF-")

type Config struct {
	Pdftotext string // binary name or absolute path; if empty -> "pdftotext"
	Pdftoppm  string // binary name or absolute path; if empty -> "pdftoppm"
	Tesseract string // binary name or absolute path; if empty -> "tesseract"

	TesseractLang string // default "eng"
	TessdataDir   string
	DPI           int // rasterization DPI for scanned PDFs, default 300
	MaxPages      int // 0 = no limit

	// OCRFallback rasterises and OCRs a PDF whose text layer is blank.
	OCRFallback bool

	ScratchDir string // "" -> os.TempDir()
}

// PDFSource extracts page text with poppler's pdftotext, optionally falling back to
// pdftoppm + tesseract for scanned documents.
type PDFSource struct {
	cfg    Config
	runner Runner
	logger *slog.Logger
}

func NewPDFSource(cfg Config, logger *slog.Logger) *PDFSource {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Pdftotext == "" {
		cfg.Pdftotext = "pdftotext"
	}
	if cfg.Pdftoppm == "" {
		cfg.Pdftoppm = "pdftoppm"
	}
	if cfg.Tesseract == "" {
		cfg.Tesseract = "tesseract"
	}
	if cfg.TesseractLang == "" {
		cfg.TesseractLang = "eng"
	}
	if cfg.DPI <= 0 {
		cfg.DPI = 300
	}
	return &PDFSource{cfg: cfg, runner: execRunner{logger: logger}, logger: logger}
}

func (s *PDFSource) Open(ctx context.Context, doc entity.Document) (PageSet, error) {
	start := time.Now()

	head, err := readHead(doc, len(pdfMagic))
	if err != nil {
		return nil, common.ParseFailuref(err, "read %s", doc.Label)
	}
	if !bytes.Equal(head, pdfMagic) {
		return nil, common.ParseFailuref(fmt.Errorf("missing %%PDF- header"), "open %s", doc.Label)
	}

	path, cleanup, err := materialize(doc, s.cfg.ScratchDir)
	if err != nil {
		return nil, common.ParseFailuref(err, "stage %s", doc.Label)
	}

	text, err := s.pdfToText(ctx, path)
	if err != nil {
		cleanup()
		return nil, common.ParseFailuref(err, "pdftotext %s", doc.Label)
	}
	pages := splitPages(text, s.cfg.MaxPages)

	if s.cfg.OCRFallback && allBlank(pages) {
		ocr, err := s.rasterize(ctx, path)
		if err == nil {
			s.logger.Debug("pdf has no text layer, using ocr",
				"document", doc.Label, "pages", ocr.Count(), "elapsed_ms", time.Since(start).Milliseconds())
			prev := ocr.cleanup
			ocr.cleanup = func() { prev(); cleanup() }
			return ocr, nil
		}
		s.logger.Warn("ocr fallback unavailable", "document", doc.Label, "error", err)
	}

	s.logger.Debug("pdf text extracted",
		"document", doc.Label,
		"pages", len(pages),
		"bytes", len(text),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return &staticPages{pages: pages, cleanup: cleanup}, nil
}

func (s *PDFSource) pdfToText(ctx context.Context, path string) (string, error) {
	// pdftotext -layout -enc UTF-8 -eol unix <path> -
	args := []string{"-layout", "-enc", "UTF-8", "-eol", "unix"}
	if s.cfg.MaxPages > 0 {
		args = append(args, "-l", strconv.Itoa(s.cfg.MaxPages))
	}
	args = append(args, path, "-")
	out, errb, err := s.runner.Run(ctx, s.cfg.Pdftotext, args...)
	if err != nil {
		if msg := strings.TrimSpace(string(errb)); msg != "" {
			return "", fmt.Errorf("%w: %s", err, truncate(msg, 512))
		}
		return "", err
	}
	return string(out), nil
}

func (s *PDFSource) rasterize(ctx context.Context, path string) (*ocrPages, error) {
	tmpDir, err := os.MkdirTemp(s.cfg.ScratchDir, "rs-pp-*")
	if err != nil {
		return nil, err
	}
	cleanup := func() {
		if err := os.RemoveAll(tmpDir); err != nil {
			s.logger.Warn("failed to remove temp dir", "path", tmpDir, "error", err)
		}
	}

	prefix := filepath.Join(tmpDir, "page")
	// pdftoppm -r 300 -png <in.pdf> <tmp/page>
	args := []string{"-r", strconv.Itoa(s.cfg.DPI), "-png"}
	if s.cfg.MaxPages > 0 {
		args = append(args, "-l", strconv.Itoa(s.cfg.MaxPages))
	}
	args = append(args, path, prefix)
	if _, errb, err := s.runner.Run(ctx, s.cfg.Pdftoppm, args...); err != nil {
		cleanup()
		return nil, fmt.Errorf("pdftoppm: %w: %s", err, truncate(string(errb), 512))
	}

	// prefix-1.png, prefix-2.png, ... (zero padded once there are 10+ pages)
	matches, _ := filepath.Glob(prefix + "-*.png")
	sort.Slice(matches, func(i, j int) bool { return pageIndex(matches[i]) < pageIndex(matches[j]) })
	if s.cfg.MaxPages > 0 && len(matches) > s.cfg.MaxPages {
		matches = matches[:s.cfg.MaxPages]
	}
	if len(matches) == 0 {
		cleanup()
		return nil, fmt.Errorf("pdftoppm produced no images")
	}
	return &ocrPages{ctx: ctx, src: s, images: matches, cleanup: cleanup}, nil
}

func pageIndex(img string) int {
	base := strings.TrimSuffix(filepath.Base(img), ".png")
	i := strings.LastIndex(base, "-")
	n, err := strconv.Atoi(base[i+1:])
	if err != nil {
		return 0
	}
	return n
}

func (s *PDFSource) tesseractOCR(ctx context.Context, img string) (string, error) {
	args := []string{img, "stdout", "-l", s.cfg.TesseractLang}
	if s.cfg.TessdataDir != "" {
		args = append(args, "--tessdata-dir", s.cfg.TessdataDir)
	}
	// tesseract <file> stdout -l <lang>
	out, errb, err := s.runner.Run(ctx, s.cfg.Tesseract, args...)
	if err != nil {
		return "", fmt.Errorf("tesseract: %w: %s", err, truncate(string(errb), 512))
	}
	return string(out), nil
}

// ocrPages OCRs one rasterised page at a time as Pages is consumed.
type ocrPages struct {
	ctx     context.Context
	src     *PDFSource
	images  []string
	cleanup func()
}

func (o *ocrPages) Pages() iter.Seq[entity.Page] {
	return func(yield func(entity.Page) bool) {
		for i, img := range o.images {
			p := entity.Page{Number: i + 1}
			txt, err := o.src.tesseractOCR(o.ctx, img)
			if err != nil {
				p.Err = fmt.Errorf("%w: page %d: %w", common.ErrExtractionAnomaly, i+1, err)
			} else {
				p.Text = txt
			}
			if !yield(p) {
				return
			}
		}
	}
}

func (o *ocrPages) Count() int { return len(o.images) }

func (o *ocrPages) Close() error {
	if o.cleanup != nil {
		o.cleanup()
		o.cleanup = nil
	}
	return nil
}
