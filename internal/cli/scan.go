package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/joseph-ayodele/result-scanner/internal/common"
	"github.com/joseph-ayodele/result-scanner/internal/entity"
	"github.com/joseph-ayodele/result-scanner/internal/export"
	"github.com/joseph-ayodele/result-scanner/internal/ingest"
	"github.com/joseph-ayodele/result-scanner/internal/metrics"
	"github.com/joseph-ayodele/result-scanner/internal/scan"
	"github.com/joseph-ayodele/result-scanner/internal/textsource"
)

type scanOptions struct {
	primary     string
	name        string
	dob         string
	out         string
	configFile  string
	metricsFile string
	workers     int
	ocr         bool
	normalize   bool
	skipHidden  bool
	dedup       bool
	noExport    bool
	verbose     bool
}

// newSource builds the text source for a run; tests replace it.
var newSource = func(cfg *common.Config, logger *slog.Logger) textsource.Source {
	pdf := textsource.NewPDFSource(textsource.Config{
		Pdftotext:     cfg.Extract.Pdftotext,
		Pdftoppm:      cfg.Extract.Pdftoppm,
		Tesseract:     cfg.Extract.Tesseract,
		TesseractLang: cfg.Extract.TesseractLang,
		TessdataDir:   cfg.Extract.TessdataDir,
		DPI:           cfg.Extract.DPI,
		MaxPages:      cfg.Extract.MaxPages,
		OCRFallback:   cfg.Extract.OCRFallback,
	}, logger)
	var src textsource.Source = textsource.NewMultiSource(pdf, textsource.TextFileSource{MaxPages: cfg.Extract.MaxPages})
	if cfg.Scan.Normalize {
		src = textsource.Normalized(src)
	}
	return src
}

func newScanCmd() *cobra.Command {
	opts := &scanOptions{}
	cmd := &cobra.Command{
		Use:   "scan --primary <term> [--name <term>] [--dob <term>] <file-or-dir>...",
		Short: "Scan documents for a roll number",
		Long: `Scans every page of the given documents for lines containing the roll number.
A name, when given, must also appear on the line (case-insensitive). A DOB is
checked but never excludes a line; mismatches are flagged for manual review.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runScan(cmd, opts, args)
		},
	}

	f := cmd.Flags()
	f.StringVarP(&opts.primary, "primary", "p", "", "roll number to search for (required)")
	f.StringVarP(&opts.name, "name", "n", "", "name that must appear on the line (case-insensitive)")
	f.StringVarP(&opts.dob, "dob", "d", "", "date of birth to check, exactly as printed")
	f.StringVarP(&opts.out, "out", "o", "", "output XLSX path (default Result_<primary>.xlsx)")
	f.StringVar(&opts.configFile, "config", "", "TOML config file")
	f.StringVar(&opts.metricsFile, "metrics-file", "", "write Prometheus textfile metrics here")
	f.IntVarP(&opts.workers, "workers", "w", 1, "documents to extract in parallel")
	f.BoolVar(&opts.ocr, "ocr", false, "OCR PDFs that have no text layer (needs pdftoppm and tesseract)")
	f.BoolVar(&opts.normalize, "normalize", false, "collapse tabs and repeated spaces before matching")
	f.BoolVar(&opts.skipHidden, "skip-hidden", true, "skip hidden files and directories when walking")
	f.BoolVar(&opts.dedup, "dedup", false, "scan files with identical content only once")
	f.BoolVar(&opts.noExport, "no-export", false, "print the summary only, do not write a workbook")
	f.BoolVarP(&opts.verbose, "verbose", "v", false, "debug logging")
	return cmd
}

func runScan(cmd *cobra.Command, opts *scanOptions, args []string) error {
	criterion := entity.MatchCriterion{Primary: opts.primary, Name: opts.name, DOB: opts.dob}
	if err := common.ValidateCriterion(criterion); err != nil {
		return err
	}

	cfg, err := resolveConfig(cmd, opts)
	if err != nil {
		return err
	}

	level := slog.LevelWarn
	if opts.verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level}))

	collector := ingest.NewCollector(logger,
		ingest.WithSkipHidden(cfg.Output.SkipHidden),
		ingest.WithDedup(cfg.Output.Dedup),
	)
	docs, _, stats, err := collector.Collect(args)
	if err != nil {
		return err
	}
	logger.Debug("documents collected",
		"scanned", stats.Scanned,
		"matched", stats.Matched,
		"succeeded", stats.Succeeded,
		"failed", stats.Failed,
		"deduplicated", stats.Deduplicated)

	var rec *metrics.Recorder
	if cfg.Output.MetricsFile != "" {
		rec = metrics.NewRecorder()
	}
	engine := scan.NewEngine(newSource(cfg, logger),
		scan.WithLogger(logger),
		scan.WithWorkers(cfg.Scan.Workers),
		scan.WithMetrics(rec),
	)

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, cancel := common.WithTimeout(ctx, cfg.Scan.Timeout)
	defer cancel()

	progress := func(done, total int) {
		cmd.PrintErrf("scanned %d/%d documents\n", done, total)
	}
	report, err := engine.Run(ctx, docs, criterion, progress)
	if err != nil {
		return err
	}

	if err := rec.WriteTextfile(cfg.Output.MetricsFile); err != nil {
		logger.Warn("metrics textfile", "path", cfg.Output.MetricsFile, "error", err)
	}

	if !report.Found() {
		cmd.Printf("Roll number %q was not found in any document.\n", criterion.Primary)
		if report.DocumentsFailed > 0 {
			cmd.Printf("%d of %d document(s) could not be read.\n", report.DocumentsFailed, report.DocumentsProcessed)
		}
		return nil
	}

	cmd.Printf("Found %d matching line(s) in %d document(s) (%d failed)\n",
		len(report.Records), report.DocumentsProcessed, report.DocumentsFailed)
	for _, r := range report.Records {
		cmd.Printf("  %s p.%d  [%s]  %s\n", r.DocumentLabel, r.PageNumber, r.StatusSummary(), r.LineText)
	}
	if opts.noExport {
		return nil
	}

	out := opts.out
	if out == "" {
		out = export.DefaultFileName(criterion.Primary)
	}
	data, err := export.NewService(logger).ExportMatchesXLSX(report)
	if err != nil {
		return err
	}
	if dir := filepath.Dir(out); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return common.WrapError(err, "create output dir")
		}
	}
	if err := os.WriteFile(out, data, 0o644); err != nil {
		return common.WrapError(err, "write output file")
	}
	cmd.Printf("Output: %s\n", out)
	return nil
}

// resolveConfig layers env, then the config file, then explicitly set flags.
func resolveConfig(cmd *cobra.Command, opts *scanOptions) (*common.Config, error) {
	cfg := common.LoadConfig()
	if opts.configFile != "" {
		if err := cfg.LoadConfigFile(opts.configFile); err != nil {
			return nil, err
		}
	}

	f := cmd.Flags()
	if f.Changed("workers") {
		cfg.Scan.Workers = opts.workers
	}
	if f.Changed("ocr") {
		cfg.Extract.OCRFallback = opts.ocr
	}
	if f.Changed("normalize") {
		cfg.Scan.Normalize = opts.normalize
	}
	if f.Changed("skip-hidden") {
		cfg.Output.SkipHidden = opts.skipHidden
	}
	if f.Changed("dedup") {
		cfg.Output.Dedup = opts.dedup
	}
	if f.Changed("metrics-file") {
		cfg.Output.MetricsFile = opts.metricsFile
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	return cfg, nil
}
