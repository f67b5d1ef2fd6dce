package textsource

import (
	"context"
	"errors"
	"os"
	"unicode/utf8"

	"github.com/joseph-ayodele/result-scanner/internal/common"
	"github.com/joseph-ayodele/result-scanner/internal/entity"
)

// TextFileSource reads plain UTF-8 text; form feeds separate pages.
type TextFileSource struct {
	MaxPages int
}

func (s TextFileSource) Open(_ context.Context, doc entity.Document) (PageSet, error) {
	data := doc.Data
	if data == nil {
		b, err := os.ReadFile(doc.Path)
		if err != nil {
			return nil, common.ParseFailuref(err, "read %s", doc.Label)
		}
		data = b
	}
	if !utf8.Valid(data) {
		return nil, common.ParseFailuref(errors.New("invalid UTF-8"), "decode %s", doc.Label)
	}
	return &staticPages{pages: splitPages(string(data), s.MaxPages)}, nil
}
