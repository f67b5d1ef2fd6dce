// Package scan walks documents page by page and collects lines that satisfy a
// match criterion.
package scan

import (
	"context"
	"fmt"
	"iter"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/joseph-ayodele/result-scanner/constants"
	"github.com/joseph-ayodele/result-scanner/internal/common"
	"github.com/joseph-ayodele/result-scanner/internal/entity"
	"github.com/joseph-ayodele/result-scanner/internal/metrics"
	"github.com/joseph-ayodele/result-scanner/internal/textsource"
)

// ProgressFunc is called once per completed document with done in 1..total.
type ProgressFunc func(done, total int)

// Engine runs batch scans. It holds no per-run state and is safe to reuse.
type Engine struct {
	src     textsource.Source
	logger  *slog.Logger
	workers int
	metrics *metrics.Recorder
}

type Option func(*Engine)

func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.logger = l
		}
	}
}

// WithWorkers extracts up to n documents at once. Output order is unaffected.
func WithWorkers(n int) Option {
	return func(e *Engine) {
		if n > 0 {
			e.workers = n
		}
	}
}

func WithMetrics(m *metrics.Recorder) Option {
	return func(e *Engine) {
		e.metrics = m
	}
}

func NewEngine(src textsource.Source, opts ...Option) *Engine {
	e := &Engine{
		src:     src,
		logger:  slog.Default(),
		workers: 1,
	}
	for _, o := range opts {
		o(e)
	}
	return e
}

// docResult is what one document contributes to the report.
type docResult struct {
	records []entity.MatchRecord
	failure *entity.DocumentFailure
}

// Run scans docs in order. It fails fast with ErrInvalidCriterion or ErrEmptyInput
// before opening anything; a document that cannot be parsed is recorded in the
// report and never stops the batch. Cancellation is observed between documents.
func (e *Engine) Run(ctx context.Context, docs []entity.Document, c entity.MatchCriterion, progress ProgressFunc) (*entity.ScanReport, error) {
	if err := common.ValidateCriterion(c); err != nil {
		return nil, err
	}
	if len(docs) == 0 {
		return nil, common.NewAppError("EMPTY_INPUT", "no documents supplied", common.ErrEmptyInput)
	}

	report := &entity.ScanReport{
		ID:        uuid.New(),
		Criterion: c,
		StartedAt: time.Now().UTC(),
	}
	ctx = common.WithScanID(ctx, report.ID)
	logger := e.logger.With("scan_id", report.ID.String())
	logger.Info("scan started", "documents", len(docs), "workers", e.workers)

	var (
		mu   sync.Mutex
		done int
	)
	complete := func() {
		mu.Lock()
		defer mu.Unlock()
		done++
		if progress != nil {
			progress(done, len(docs))
		}
	}

	results := make([]docResult, len(docs))
	if e.workers <= 1 {
		for i := range docs {
			if err := ctx.Err(); err != nil {
				return nil, common.WrapError(err, "scan cancelled")
			}
			results[i] = e.scanOne(ctx, logger, i, docs[i], c)
			complete()
		}
	} else {
		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(e.workers)
		for i := range docs {
			g.Go(func() error {
				if err := gctx.Err(); err != nil {
					return err
				}
				results[i] = e.scanOne(gctx, logger, i, docs[i], c)
				complete()
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return nil, common.WrapError(err, "scan cancelled")
		}
		if err := ctx.Err(); err != nil {
			return nil, common.WrapError(err, "scan cancelled")
		}
	}

	for _, r := range results {
		report.DocumentsProcessed++
		if r.failure != nil {
			report.DocumentsFailed++
			report.Failures = append(report.Failures, *r.failure)
			continue
		}
		report.Records = append(report.Records, r.records...)
	}
	slices.SortStableFunc(report.Records, func(a, b entity.MatchRecord) int {
		switch {
		case a.Less(b):
			return -1
		case b.Less(a):
			return 1
		}
		return 0
	})

	report.Duration = time.Since(report.StartedAt)
	e.metrics.MarkRunFinished(time.Now())
	logger.Info("scan finished",
		"documents", report.DocumentsProcessed,
		"failed", report.DocumentsFailed,
		"records", len(report.Records),
		"elapsed_ms", report.Duration.Milliseconds(),
	)
	return report, nil
}

// scanOne opens, scans and closes a single document. Failures stay inside the result.
func (e *Engine) scanOne(ctx context.Context, logger *slog.Logger, idx int, doc entity.Document, c entity.MatchCriterion) docResult {
	start := time.Now()
	logger = logger.With("document", doc.Label, "index", idx)

	ps, err := e.src.Open(ctx, doc)
	if err != nil {
		logger.Warn("document skipped", "error", err)
		e.metrics.RecordDocument(constants.DocumentFailed, time.Since(start))
		return docResult{failure: &entity.DocumentFailure{Label: doc.Label, Index: idx, Reason: err.Error()}}
	}
	defer func() {
		if cerr := ps.Close(); cerr != nil {
			logger.Warn("close document", "error", cerr)
		}
	}()

	observe := func(p entity.Page, n int) {
		switch {
		case p.Err != nil:
			logger.Debug("page skipped", "page", p.Number, "error", p.Err)
			e.metrics.RecordPage(constants.PageAnomaly)
		case p.Text == "":
			e.metrics.RecordPage(constants.PageEmpty)
		default:
			e.metrics.RecordPage(constants.PageScanned)
		}
	}

	records, err := collect(scanDocument(idx, doc.Label, ps.Pages(), c, observe))
	if err != nil {
		logger.Warn("document aborted during page iteration", "error", err)
		e.metrics.RecordDocument(constants.DocumentFailed, time.Since(start))
		return docResult{failure: &entity.DocumentFailure{Label: doc.Label, Index: idx, Reason: err.Error()}}
	}

	e.metrics.RecordDocument(constants.DocumentOK, time.Since(start))
	e.metrics.RecordMatches(len(records))
	logger.Debug("document scanned",
		"pages", ps.Count(),
		"records", len(records),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return docResult{records: records}
}

// collect drains seq. A panic raised while reading pages becomes a parse failure.
func collect(seq iter.Seq[entity.MatchRecord]) (out []entity.MatchRecord, err error) {
	defer func() {
		if r := recover(); r != nil {
			out = nil
			err = fmt.Errorf("%w: %v", common.ErrParseFailure, r)
		}
	}()
	for rec := range seq {
		out = append(out, rec)
	}
	return out, nil
}
