package entity

import (
	"strings"

	"github.com/joseph-ayodele/result-scanner/constants"
)

// MatchRecord is one qualified line. Records are never mutated after creation.
type MatchRecord struct {
	DocumentLabel string       `json:"document_label"`
	DocumentIndex int          `json:"document_index"`
	PageNumber    int          `json:"page_number"` // 1-based
	LineIndex     int          `json:"line_index"`  // 0-based within the page
	PrimaryTerm   string       `json:"primary_term"`
	Name          FieldVerdict `json:"name_verdict"`
	DOB           FieldVerdict `json:"dob_verdict"`
	LineText      string       `json:"line_text"`
}

// StatusSummary renders the checked verdicts in fixed order (name, dob),
// or "Found" when no optional field was checked.
func (r MatchRecord) StatusSummary() string {
	var parts []string
	switch r.Name {
	case VerdictMatched:
		parts = append(parts, constants.StatusNameMatched)
	case VerdictNotMatched:
		parts = append(parts, constants.StatusNameNotMatched)
	}
	switch r.DOB {
	case VerdictMatched:
		parts = append(parts, constants.StatusDOBMatched)
	case VerdictNotMatched:
		parts = append(parts, constants.StatusDOBCheck)
	}
	if len(parts) == 0 {
		return constants.StatusFound
	}
	return strings.Join(parts, ", ")
}

// Less orders records by document, then page, then line.
func (r MatchRecord) Less(o MatchRecord) bool {
	if r.DocumentIndex != o.DocumentIndex {
		return r.DocumentIndex < o.DocumentIndex
	}
	if r.PageNumber != o.PageNumber {
		return r.PageNumber < o.PageNumber
	}
	return r.LineIndex < o.LineIndex
}
