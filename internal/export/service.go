package export

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/joseph-ayodele/result-scanner/internal/entity"
)

const (
	MatchesSheet  = "Matches"
	FailuresSheet = "Failed Documents"
)

// MatchHeaders is the fixed column order of the matches sheet.
var MatchHeaders = []string{
	"File Name",
	"Page No",
	"Roll Number",
	"Match Status",
	"Full Line Text",
}

var failureHeaders = []string{"File Name", "Reason"}

// column widths: file, page, roll, status, line
var (
	matchWidths   = []float64{28, 9, 16, 34, 90}
	failureWidths = []float64{28, 80}
)

// Service turns a scan report into XLSX bytes.
type Service struct {
	logger *slog.Logger
}

func NewService(logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{logger: logger}
}

// ExportMatchesXLSX returns an XLSX workbook (as bytes) with one row per record, in
// report order. A second sheet lists failed documents when there are any.
func (s *Service) ExportMatchesXLSX(report *entity.ScanReport) ([]byte, error) {
	if report == nil {
		return nil, fmt.Errorf("export: nil report")
	}
	start := time.Now()

	f := excelize.NewFile()
	defer func() {
		if err := f.Close(); err != nil {
			s.logger.Warn("xlsx close", "error", err)
		}
	}()

	// the default sheet becomes the matches sheet so it stays first
	if err := f.SetSheetName(f.GetSheetName(0), MatchesSheet); err != nil {
		return nil, fmt.Errorf("rename sheet: %w", err)
	}
	if err := writeHeader(f, MatchesSheet, MatchHeaders); err != nil {
		return nil, err
	}

	for i, r := range report.Records {
		values := []any{r.DocumentLabel, r.PageNumber, r.PrimaryTerm, r.StatusSummary(), r.LineText}
		if err := writeRow(f, MatchesSheet, i+2, values); err != nil {
			return nil, err
		}
	}
	if err := setColWidths(f, MatchesSheet, matchWidths); err != nil {
		return nil, err
	}

	if len(report.Failures) > 0 {
		if _, err := f.NewSheet(FailuresSheet); err != nil {
			return nil, err
		}
		if err := writeHeader(f, FailuresSheet, failureHeaders); err != nil {
			return nil, err
		}
		for i, fail := range report.Failures {
			if err := writeRow(f, FailuresSheet, i+2, []any{fail.Label, truncate(fail.Reason, 500)}); err != nil {
				return nil, err
			}
		}
		if err := setColWidths(f, FailuresSheet, failureWidths); err != nil {
			return nil, err
		}
	}

	idx, err := f.GetSheetIndex(MatchesSheet)
	if err != nil {
		return nil, fmt.Errorf("sheet index: %w", err)
	}
	f.SetActiveSheet(idx)

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("xlsx write: %w", err)
	}

	s.logger.Info("export.xlsx.ok",
		"scan_id", report.ID.String(),
		"rows", len(report.Records),
		"failures", len(report.Failures),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return buf.Bytes(), nil
}

func writeHeader(f *excelize.File, sheet string, headers []string) error {
	values := make([]any, len(headers))
	for i, h := range headers {
		values[i] = h
	}
	if err := writeRow(f, sheet, 1, values); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	return nil
}

// writeRow writes values left to right starting at column A.
func writeRow(f *excelize.File, sheet string, row int, values []any) error {
	for i, v := range values {
		cell, err := excelize.CoordinatesToCellName(i+1, row)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(sheet, cell, v); err != nil {
			return fmt.Errorf("write %s row %d: %w", sheet, row, err)
		}
	}
	return nil
}

func setColWidths(f *excelize.File, sheet string, widths []float64) error {
	for i, w := range widths {
		col, err := excelize.ColumnNumberToName(i + 1)
		if err != nil {
			return err
		}
		if err := f.SetColWidth(sheet, col, col, w); err != nil {
			return fmt.Errorf("set width %s!%s: %w", sheet, col, err)
		}
	}
	return nil
}

// DefaultFileName is the workbook name used when no output path is given.
func DefaultFileName(primary string) string {
	safe := strings.Map(func(r rune) rune {
		switch r {
		case '/', '\\', ':', '*', '?', '"', '<', '>', '|':
			return '_'
		}
		return r
	}, strings.TrimSpace(primary))
	return fmt.Sprintf("Result_%s.xlsx", safe)
}

func truncate(s string, n int) string {
	if n <= 0 || len(s) <= n {
		return s
	}
	if n <= 1 {
		return s[:n]
	}
	return s[:n-1] + "…"
}
