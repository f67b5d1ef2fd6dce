package textsource

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joseph-ayodele/result-scanner/internal/common"
	"github.com/joseph-ayodele/result-scanner/internal/entity"
)

// fakeRunner is a test double for Runner that dispatches on the binary name.
type fakeRunner struct {
	calls []string
	fn    func(name string, args []string) ([]byte, []byte, error)
}

func (f *fakeRunner) Run(_ context.Context, name string, args ...string) ([]byte, []byte, error) {
	f.calls = append(f.calls, name)
	return f.fn(name, args)
}

func newTestPDFSource(t *testing.T, cfg Config, fn func(name string, args []string) ([]byte, []byte, error)) (*PDFSource, *fakeRunner) {
	t.Helper()
	if cfg.ScratchDir == "" {
		cfg.ScratchDir = t.TempDir()
	}
	src := NewPDFSource(cfg, nil)
	r := &fakeRunner{fn: fn}
	src.runner = r
	return src, r
}

func pdfDoc(label string) entity.Document {
	return entity.Document{Label: label, Data: []byte("%PDF-1.7\nfake body")}
}

func collect(ps PageSet) []entity.Page {
	return slices.Collect(ps.Pages())
}

func dirEntries(t *testing.T, dir string) []os.DirEntry {
	t.Helper()
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	return entries
}

func TestPDFSource_SplitsPagesOnFormFeed(t *testing.T) {
	src, r := newTestPDFSource(t, Config{}, func(name string, args []string) ([]byte, []byte, error) {
		assert.Equal(t, "pdftotext", name)
		assert.Equal(t, "-", args[len(args)-1])
		assert.Contains(t, args, "-layout")
		return []byte("Header\nRahul 123456\n\fPage two\n\f"), nil, nil
	})

	ps, err := src.Open(context.Background(), pdfDoc("a.pdf"))
	require.NoError(t, err)
	defer ps.Close()

	pages := collect(ps)
	require.Len(t, pages, 2)
	assert.Equal(t, 2, ps.Count())
	assert.Equal(t, entity.Page{Number: 1, Text: "Header\nRahul 123456\n"}, pages[0])
	assert.Equal(t, entity.Page{Number: 2, Text: "Page two\n"}, pages[1])
	assert.Equal(t, []string{"pdftotext"}, r.calls)
}

func TestPDFSource_RejectsNonPDF(t *testing.T) {
	src, r := newTestPDFSource(t, Config{}, func(string, []string) ([]byte, []byte, error) {
		return nil, nil, nil
	})

	ps, err := src.Open(context.Background(), entity.Document{Label: "b.pdf", Data: []byte("garbage")})
	assert.Nil(t, ps)
	require.Error(t, err)
	assert.ErrorIs(t, err, common.ErrParseFailure)
	assert.Empty(t, r.calls)
}

func TestPDFSource_PdftotextFailureCleansUp(t *testing.T) {
	scratch := t.TempDir()
	src, _ := newTestPDFSource(t, Config{ScratchDir: scratch}, func(string, []string) ([]byte, []byte, error) {
		return nil, []byte("Syntax Error: Couldn't find trailer dictionary"), errors.New("exit status 1")
	})

	_, err := src.Open(context.Background(), pdfDoc("c.pdf"))
	require.Error(t, err)
	assert.ErrorIs(t, err, common.ErrParseFailure)
	assert.Contains(t, err.Error(), "trailer dictionary")
	assert.Empty(t, dirEntries(t, scratch))
}

func TestPDFSource_CloseRemovesScratchCopy(t *testing.T) {
	scratch := t.TempDir()
	var staged string
	src, _ := newTestPDFSource(t, Config{ScratchDir: scratch}, func(_ string, args []string) ([]byte, []byte, error) {
		staged = args[len(args)-2]
		return []byte("x\f"), nil, nil
	})

	ps, err := src.Open(context.Background(), pdfDoc("d.pdf"))
	require.NoError(t, err)
	assert.FileExists(t, staged)
	assert.Equal(t, "d.pdf", filepath.Base(staged))

	require.NoError(t, ps.Close())
	assert.NoFileExists(t, staged)
	assert.Empty(t, dirEntries(t, scratch))
}

func TestPDFSource_ReadsFromPath(t *testing.T) {
	path := filepath.Join(t.TempDir(), "e.pdf")
	require.NoError(t, os.WriteFile(path, []byte("%PDF-1.4\n"), 0o600))

	src, _ := newTestPDFSource(t, Config{}, func(_ string, args []string) ([]byte, []byte, error) {
		assert.Equal(t, path, args[len(args)-2])
		return []byte("only page"), nil, nil
	})

	ps, err := src.Open(context.Background(), entity.Document{Label: "e.pdf", Path: path})
	require.NoError(t, err)
	defer ps.Close()
	assert.Equal(t, []entity.Page{{Number: 1, Text: "only page"}}, collect(ps))
}

func TestPDFSource_PrefersPathOverScratchCopy(t *testing.T) {
	path := filepath.Join(t.TempDir(), "f.pdf")
	data := []byte("%PDF-1.4\n")
	require.NoError(t, os.WriteFile(path, data, 0o600))
	scratch := t.TempDir()

	src, _ := newTestPDFSource(t, Config{ScratchDir: scratch}, func(_ string, args []string) ([]byte, []byte, error) {
		assert.Equal(t, path, args[len(args)-2])
		return []byte("page"), nil, nil
	})

	ps, err := src.Open(context.Background(), entity.Document{Label: "f.pdf", Path: path, Data: data})
	require.NoError(t, err)
	assert.Empty(t, dirEntries(t, scratch))
	require.NoError(t, ps.Close())
	assert.FileExists(t, path)
}

func TestPDFSource_MissingFile(t *testing.T) {
	src, _ := newTestPDFSource(t, Config{}, nil)
	_, err := src.Open(context.Background(), entity.Document{Label: "nope.pdf", Path: filepath.Join(t.TempDir(), "nope.pdf")})
	assert.ErrorIs(t, err, common.ErrParseFailure)
}

func TestPDFSource_MaxPages(t *testing.T) {
	src, _ := newTestPDFSource(t, Config{MaxPages: 2}, func(_ string, args []string) ([]byte, []byte, error) {
		assert.Contains(t, strings.Join(args, " "), "-l 2")
		return []byte("1\f2\f3\f"), nil, nil
	})

	ps, err := src.Open(context.Background(), pdfDoc("f.pdf"))
	require.NoError(t, err)
	defer ps.Close()
	assert.Equal(t, 2, ps.Count())
}

func TestPDFSource_OCRFallback(t *testing.T) {
	scratch := t.TempDir()
	src, r := newTestPDFSource(t, Config{OCRFallback: true, ScratchDir: scratch}, func(name string, args []string) ([]byte, []byte, error) {
		switch name {
		case "pdftotext":
			return []byte("\f  \f"), nil, nil
		case "pdftoppm":
			prefix := args[len(args)-1]
			for _, n := range []string{"1", "2", "10"} {
				require.NoError(t, os.WriteFile(prefix+"-"+n+".png", []byte("png"), 0o600))
			}
			return nil, nil, nil
		case "tesseract":
			img := filepath.Base(args[0])
			if img == "page-2.png" {
				return nil, []byte("read error"), errors.New("exit status 1")
			}
			return []byte("ocr text of " + img), nil, nil
		}
		return nil, nil, errors.New("unexpected command " + name)
	})

	ps, err := src.Open(context.Background(), pdfDoc("scan.pdf"))
	require.NoError(t, err)
	assert.Equal(t, 3, ps.Count())

	pages := collect(ps)
	require.Len(t, pages, 3)
	assert.Equal(t, "ocr text of page-1.png", pages[0].Text)
	assert.ErrorIs(t, pages[1].Err, common.ErrExtractionAnomaly)
	assert.Empty(t, pages[1].Text)
	assert.Equal(t, 3, pages[2].Number)
	assert.Equal(t, "ocr text of page-10.png", pages[2].Text)
	assert.Equal(t, []string{"pdftotext", "pdftoppm", "tesseract", "tesseract", "tesseract"}, r.calls)

	require.NoError(t, ps.Close())
	assert.Empty(t, dirEntries(t, scratch))
}

func TestPDFSource_OCRFallbackUnavailableKeepsBlankPages(t *testing.T) {
	src, _ := newTestPDFSource(t, Config{OCRFallback: true}, func(name string, _ []string) ([]byte, []byte, error) {
		if name == "pdftoppm" {
			return nil, []byte("not found"), errors.New("exec: not found")
		}
		return []byte(" \f"), nil, nil
	})

	ps, err := src.Open(context.Background(), pdfDoc("blank.pdf"))
	require.NoError(t, err)
	defer ps.Close()
	assert.Equal(t, []entity.Page{{Number: 1, Text: " "}}, collect(ps))
}

func TestPDFSource_EarlyStopDoesNotOCRRemainingPages(t *testing.T) {
	src, r := newTestPDFSource(t, Config{OCRFallback: true}, func(name string, args []string) ([]byte, []byte, error) {
		switch name {
		case "pdftoppm":
			prefix := args[len(args)-1]
			require.NoError(t, os.WriteFile(prefix+"-1.png", nil, 0o600))
			require.NoError(t, os.WriteFile(prefix+"-2.png", nil, 0o600))
		case "tesseract":
			return []byte("text"), nil, nil
		}
		return nil, nil, nil
	})

	ps, err := src.Open(context.Background(), pdfDoc("g.pdf"))
	require.NoError(t, err)
	defer ps.Close()
	for range ps.Pages() {
		break
	}
	assert.Equal(t, []string{"pdftotext", "pdftoppm", "tesseract"}, r.calls)
}

func TestTextFileSource(t *testing.T) {
	ps, err := TextFileSource{}.Open(context.Background(), entity.Document{Label: "a.txt", Data: []byte("one\ntwo\fthree")})
	require.NoError(t, err)
	defer ps.Close()
	assert.Equal(t, []entity.Page{{Number: 1, Text: "one\ntwo"}, {Number: 2, Text: "three"}}, collect(ps))
}

func TestTextFileSource_InvalidUTF8(t *testing.T) {
	_, err := TextFileSource{}.Open(context.Background(), entity.Document{Label: "bad.txt", Data: []byte{0xff, 0xfe, 0x00}})
	assert.ErrorIs(t, err, common.ErrParseFailure)
}

func TestTextFileSource_EmptyHasNoPages(t *testing.T) {
	ps, err := TextFileSource{}.Open(context.Background(), entity.Document{Label: "empty.txt", Data: []byte{}})
	require.NoError(t, err)
	assert.Zero(t, ps.Count())
}

func TestMultiSource(t *testing.T) {
	m := NewMultiSource(nil, TextFileSource{})

	ps, err := m.Open(context.Background(), entity.Document{Label: "notes.TXT", Data: []byte("hi")})
	require.NoError(t, err)
	assert.Equal(t, 1, ps.Count())

	_, err = m.Open(context.Background(), entity.Document{Label: "sheet.docx", Data: []byte("x")})
	assert.ErrorIs(t, err, common.ErrParseFailure)
	assert.Contains(t, err.Error(), "unsupported extension")

	_, err = m.Open(context.Background(), entity.Document{Label: "a.pdf", Data: []byte("%PDF-")})
	assert.ErrorIs(t, err, common.ErrParseFailure)
}

func TestNormalize(t *testing.T) {
	in := "Rahul\t\tKumar   123456   \r\nnext  line\n\n\nlast"
	assert.Equal(t, "Rahul Kumar 123456\nnext line\n\n\nlast", Normalize(in))
	assert.Equal(t, "", Normalize(""))
}

func TestNormalize_KeepsLineIndices(t *testing.T) {
	in := "Rahul\r123456\r\nnext\rline\nlast\r"
	out := Normalize(in)
	assert.Equal(t, "Rahul 123456\nnext line\nlast", out)
	assert.Equal(t, strings.Count(in, "\n"), strings.Count(out, "\n"))
}

func TestNormalized(t *testing.T) {
	src := Normalized(TextFileSource{})
	ps, err := src.Open(context.Background(), entity.Document{Label: "a.txt", Data: []byte("a\t b\fc   d")})
	require.NoError(t, err)
	defer ps.Close()
	assert.Equal(t, []entity.Page{{Number: 1, Text: "a b"}, {Number: 2, Text: "c d"}}, collect(ps))
	assert.Equal(t, 2, ps.Count())
}

func TestExecRunner_LogsScanID(t *testing.T) {
	var buf bytes.Buffer
	r := execRunner{logger: slog.New(slog.NewTextHandler(&buf, nil))}
	id := uuid.New()

	_, _, err := r.Run(common.WithScanID(context.Background(), id), "result-scanner-no-such-binary")
	require.Error(t, err)
	assert.Contains(t, buf.String(), "scan_id="+id.String())
	assert.Contains(t, buf.String(), "exec failed")
}
