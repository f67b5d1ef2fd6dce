package ingest

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/joseph-ayodele/result-scanner/constants"
	"github.com/joseph-ayodele/result-scanner/internal/entity"
)

// Collector turns command-line paths into an ordered document list.
type Collector struct {
	skipHidden bool
	dedup      bool
	logger     *slog.Logger
}

type CollectorOption func(*Collector)

// WithSkipHidden skips dot-files and dot-directories found while walking.
func WithSkipHidden(skip bool) CollectorOption {
	return func(c *Collector) { c.skipHidden = skip }
}

// WithDedup keeps only the first of several files with identical content.
func WithDedup(dedup bool) CollectorOption {
	return func(c *Collector) { c.dedup = dedup }
}

func NewCollector(logger *slog.Logger, opts ...CollectorOption) *Collector {
	if logger == nil {
		logger = slog.Default()
	}
	c := &Collector{logger: logger}
	for _, o := range opts {
		o(c)
	}
	return c
}

// Collect lists every file named in paths, walking directories in lexical order.
// Files given explicitly are accepted whatever their extension; files found by walking
// must have an allowed extension. Documents reference files by Path only.
//
// A path that cannot be read is still returned as a document, so the scan reports it
// as a failed document; the problem is also recorded in its CollectResult. With dedup
// enabled, documents with identical content are kept once, under the first label seen.
func (c *Collector) Collect(paths []string) ([]entity.Document, []CollectResult, Stats, error) {
	var (
		docs    []entity.Document
		results []CollectResult
		stats   Stats
		seen    = map[string]string{}
	)

	add := func(path string) {
		stats.Matched++
		label := filepath.Base(path)
		res := CollectResult{SourcePath: path, Label: label}

		sum, err := hashFile(path)
		if err != nil {
			c.logger.Warn("read failed", "path", path, "error", err)
			res.Err = err.Error()
			results = append(results, res)
			stats.Failed++
			docs = append(docs, entity.Document{Label: label, Path: path})
			return
		}
		res.HashHex = sum

		if first, dup := seen[sum]; dup && c.dedup {
			c.logger.Info("duplicate document skipped", "path", path, "same_as", first)
			res.Deduplicated = true
			stats.Deduplicated++
		} else {
			if !dup {
				seen[sum] = label
			}
			docs = append(docs, entity.Document{Label: label, Path: path})
		}
		results = append(results, res)
		stats.Succeeded++
	}

	for _, root := range paths {
		info, err := os.Stat(root)
		if err != nil || !info.IsDir() {
			stats.Scanned++
			add(root)
			continue
		}

		err = filepath.WalkDir(root, func(path string, d fs.DirEntry, walkErr error) error {
			if walkErr != nil {
				stats.Scanned++
				results = append(results, CollectResult{SourcePath: path, Err: walkErr.Error()})
				stats.Failed++
				return nil
			}
			if path != root && c.skipHidden && IsHidden(path) {
				if d.IsDir() {
					return filepath.SkipDir
				}
				return nil
			}
			if d.IsDir() {
				return nil
			}
			stats.Scanned++
			if !AllowedExt(filepath.Ext(path)) {
				return nil
			}
			add(path)
			return nil
		})
		if err != nil {
			return docs, results, stats, fmt.Errorf("walk %s: %w", root, err)
		}
	}

	if len(docs) == 0 && len(paths) > 0 {
		c.logger.Warn("no documents found", "paths", paths, "extensions", constants.FileTypes)
	}
	return docs, results, stats, nil
}

// hashFile returns the hex sha256 of the file at path.
func hashFile(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()
	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", err
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}
