package scan

import (
	"iter"
	"strings"

	"github.com/joseph-ayodele/result-scanner/internal/entity"
	"github.com/joseph-ayodele/result-scanner/internal/matcher"
)

// ScanDocument lazily yields a MatchRecord for every qualified line of pages.
// Pages with an extraction anomaly or no text contribute nothing.
func ScanDocument(label string, pages iter.Seq[entity.Page], c entity.MatchCriterion) iter.Seq[entity.MatchRecord] {
	return scanDocument(0, label, pages, c, nil)
}

// pageObserver is told how each page was handled.
type pageObserver func(p entity.Page, records int)

func scanDocument(docIndex int, label string, pages iter.Seq[entity.Page], c entity.MatchCriterion, observe pageObserver) iter.Seq[entity.MatchRecord] {
	return func(yield func(entity.MatchRecord) bool) {
		for p := range pages {
			n := 0
			if p.Err == nil && p.Text != "" {
				for i, line := range strings.Split(p.Text, "\n") {
					v := matcher.Evaluate(line, c)
					if !v.IsQualified {
						continue
					}
					n++
					rec := entity.MatchRecord{
						DocumentLabel: label,
						DocumentIndex: docIndex,
						PageNumber:    p.Number,
						LineIndex:     i,
						PrimaryTerm:   c.Primary,
						Name:          v.Name,
						DOB:           v.DOB,
						LineText:      strings.TrimSpace(line),
					}
					if !yield(rec) {
						return
					}
				}
			}
			if observe != nil {
				observe(p, n)
			}
		}
	}
}
