package ingest

// CollectResult is the per-file intake outcome.
type CollectResult struct {
	SourcePath   string
	Label        string
	Deduplicated bool
	HashHex      string
	Err          string
}

// Stats summarizes an intake run.
type Stats struct {
	Scanned      uint32
	Matched      uint32
	Succeeded    uint32
	Deduplicated uint32
	Failed       uint32
}
