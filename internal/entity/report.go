package entity

import (
	"time"

	"github.com/google/uuid"
)

// DocumentFailure records a document that could not be opened or parsed.
type DocumentFailure struct {
	Label  string `json:"label"`
	Index  int    `json:"index"`
	Reason string `json:"reason"`
}

// ScanReport is the terminal output of one scan run.
type ScanReport struct {
	ID                 uuid.UUID         `json:"id"`
	Criterion          MatchCriterion    `json:"criterion"`
	Records            []MatchRecord     `json:"records"`
	DocumentsProcessed int               `json:"documents_processed"`
	DocumentsFailed    int               `json:"documents_failed"`
	Failures           []DocumentFailure `json:"failures,omitempty"`
	StartedAt          time.Time         `json:"started_at"`
	Duration           time.Duration     `json:"duration"`
}

// Found reports whether at least one line qualified.
func (r *ScanReport) Found() bool { return r != nil && len(r.Records) > 0 }
