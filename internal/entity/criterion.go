package entity

// MatchCriterion is what a scan looks for. Primary is required; Name and DOB are
// optional and treated as absent when empty.
type MatchCriterion struct {
	Primary string `json:"primary"`
	Name    string `json:"name,omitempty"`
	DOB     string `json:"dob,omitempty"`
}

// HasPrimary reports whether the mandatory primary term is set. Any non-empty
// string counts, whitespace included, since matching is literal.
func (c MatchCriterion) HasPrimary() bool { return c.Primary != "" }

// HasName reports whether a name constraint was supplied.
func (c MatchCriterion) HasName() bool { return c.Name != "" }

// HasDOB reports whether a DOB term was supplied.
func (c MatchCriterion) HasDOB() bool { return c.DOB != "" }
