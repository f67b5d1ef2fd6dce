package entity

import (
	"path/filepath"

	"github.com/joseph-ayodele/result-scanner/constants"
)

// Document is one input blob. Either Path or Data is set; Data wins when both are.
type Document struct {
	Label string
	Path  string
	Data  []byte
}

// Ext returns the normalized extension taken from the label, falling back to the path.
func (d Document) Ext() string {
	if ext := constants.NormalizeExt(filepath.Ext(d.Label)); ext != "" {
		return ext
	}
	return constants.NormalizeExt(filepath.Ext(d.Path))
}

// Page is the text of one page. Err marks an extraction anomaly for that page only.
type Page struct {
	Number int
	Text   string
	Err    error
}
