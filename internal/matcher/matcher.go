// Package matcher evaluates a single text line against a match criterion.
package matcher

import (
	"strings"

	"github.com/joseph-ayodele/result-scanner/internal/entity"
)

// Evaluate checks line against c. The primary term and DOB use exact, case-sensitive
// containment; the name uses case-insensitive containment. Only the name can
// disqualify a candidate line: DOB is advisory and surfaced for manual review.
func Evaluate(line string, c entity.MatchCriterion) entity.LineVerdict {
	v := entity.LineVerdict{
		IsCandidate: c.HasPrimary() && strings.Contains(line, c.Primary),
	}

	if c.HasName() {
		v.Name = verdict(strings.Contains(strings.ToLower(line), strings.ToLower(c.Name)))
	}
	if c.HasDOB() {
		v.DOB = verdict(strings.Contains(line, c.DOB))
	}

	v.IsQualified = v.IsCandidate && v.Name != entity.VerdictNotMatched
	return v
}

func verdict(ok bool) entity.FieldVerdict {
	if ok {
		return entity.VerdictMatched
	}
	return entity.VerdictNotMatched
}
