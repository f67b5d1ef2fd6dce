package metrics

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joseph-ayodele/result-scanner/constants"
)

func TestRecorder_Counts(t *testing.T) {
	r := NewRecorder()
	r.RecordDocument(constants.DocumentOK, 10*time.Millisecond)
	r.RecordDocument(constants.DocumentOK, 20*time.Millisecond)
	r.RecordDocument(constants.DocumentFailed, time.Millisecond)
	r.RecordPage(constants.PageScanned)
	r.RecordPage(constants.PageAnomaly)
	r.RecordMatches(3)
	r.RecordMatches(0)

	assert.Equal(t, 2.0, testutil.ToFloat64(r.DocumentsTotal.WithLabelValues("ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.DocumentsTotal.WithLabelValues("failed")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.PagesTotal.WithLabelValues("anomaly")))
	assert.Equal(t, 3.0, testutil.ToFloat64(r.RecordsTotal))
	assert.Equal(t, 1, testutil.CollectAndCount(r.DocumentDuration))
}

func TestRecorder_NilIsNoop(t *testing.T) {
	var r *Recorder
	assert.NotPanics(t, func() {
		r.RecordDocument(constants.DocumentOK, time.Second)
		r.RecordPage(constants.PageEmpty)
		r.RecordMatches(5)
		r.MarkRunFinished(time.Now())
	})
	assert.NoError(t, r.WriteTextfile(filepath.Join(t.TempDir(), "x.prom")))
	assert.Nil(t, r.Registry())
}

func TestRecorder_WriteTextfile(t *testing.T) {
	r := NewRecorder()
	r.RecordMatches(2)
	r.MarkRunFinished(time.Unix(1700000000, 0))

	path := filepath.Join(t.TempDir(), "scanner.prom")
	require.NoError(t, r.WriteTextfile(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "scanner_records_total 2")
	assert.Contains(t, string(data), "scanner_last_run_timestamp_seconds 1.7e+09")
}
