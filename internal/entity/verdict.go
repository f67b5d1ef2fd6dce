package entity

// FieldVerdict is the outcome of checking one optional field against a line.
type FieldVerdict int

const (
	VerdictNotChecked FieldVerdict = iota // term absent from the criterion
	VerdictMatched
	VerdictNotMatched
)

func (v FieldVerdict) String() string {
	switch v {
	case VerdictMatched:
		return "matched"
	case VerdictNotMatched:
		return "not_matched"
	default:
		return "not_checked"
	}
}

// LineVerdict is the result of evaluating a single line.
type LineVerdict struct {
	IsCandidate bool
	Name        FieldVerdict
	DOB         FieldVerdict
	IsQualified bool
}
