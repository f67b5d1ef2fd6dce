package textsource

import (
	"context"
	"iter"
	"regexp"
	"strings"

	"github.com/joseph-ayodele/result-scanner/internal/entity"
)

var (
	reTabs       = regexp.MustCompile(`\t+`)
	reMultiSpace = regexp.MustCompile(` {2,}`)
)

// Normalize collapses tabs and runs of spaces and trims trailing spaces per line.
// Line breaks are kept one-for-one so line indices stay stable: CRLF becomes LF and
// a lone CR is treated as a space.
func Normalize(s string) string {
	if s == "" {
		return s
	}
	s = strings.ReplaceAll(s, "\r\n", "\n")
	s = strings.ReplaceAll(s, "\r", " ")
	s = reTabs.ReplaceAllString(s, " ")
	s = reMultiSpace.ReplaceAllString(s, " ")
	lines := strings.Split(s, "\n")
	for i := range lines {
		lines[i] = strings.TrimRight(lines[i], " ")
	}
	return strings.Join(lines, "\n")
}

// Normalized wraps src so every page's text passes through Normalize.
func Normalized(src Source) Source {
	return normalizingSource{src: src}
}

type normalizingSource struct {
	src Source
}

func (n normalizingSource) Open(ctx context.Context, doc entity.Document) (PageSet, error) {
	ps, err := n.src.Open(ctx, doc)
	if err != nil {
		return nil, err
	}
	return normalizedPages{PageSet: ps}, nil
}

type normalizedPages struct {
	PageSet
}

func (n normalizedPages) Pages() iter.Seq[entity.Page] {
	return func(yield func(entity.Page) bool) {
		for p := range n.PageSet.Pages() {
			p.Text = Normalize(p.Text)
			if !yield(p) {
				return
			}
		}
	}
}
