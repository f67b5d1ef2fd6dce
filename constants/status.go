package constants

// Labels used when rendering a match record's status for people.
const (
	StatusFound          = "Found"
	StatusNameMatched    = "Name Matched"
	StatusNameNotMatched = "Name Not Matched"
	StatusDOBMatched     = "DOB Matched"
	StatusDOBCheck       = "Check DOB Manually" // DOB is advisory, never excludes a line
)

// DocumentOutcome is the terminal state of one document in a scan.
type DocumentOutcome string

const (
	DocumentOK     DocumentOutcome = "ok"
	DocumentFailed DocumentOutcome = "failed"
)

// PageOutcome is the terminal state of one page in a scan.
type PageOutcome string

const (
	PageScanned PageOutcome = "scanned"
	PageEmpty   PageOutcome = "empty"
	PageAnomaly PageOutcome = "anomaly"
)
