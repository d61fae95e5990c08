package metrics

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/eunmann/movie-buckets/pkg/buckets"
	"github.com/eunmann/movie-buckets/pkg/companies"
	"github.com/eunmann/movie-buckets/pkg/movies"
	"github.com/eunmann/movie-buckets/pkg/pipeline"
)

func sampleResult() *pipeline.Result {
	ix := buckets.New[*companies.Detail]()
	ix.Upsert(&companies.Detail{ID: 1, Date: time.Date(2020, time.May, 1, 0, 0, 0, 0, time.UTC)})
	return &pipeline.Result{
		Index: ix,
		Stats: pipeline.Stats{
			Inputs:         2,
			RowsRead:       10,
			DecodeFailures: 1,
			Rejected:       map[movies.Rejection]int64{movies.RejectStatus: 3, movies.RejectRevenue: 2},
			Admitted:       4,
			Details:        6,
		},
	}
}

func TestObserve(t *testing.T) {
	m := NewRunMetrics()
	m.Observe(sampleResult(), 1500*time.Millisecond, time.Unix(1700000000, 0))

	tests := []struct {
		name string
		got  float64
		want float64
	}{
		{"inputs", testutil.ToFloat64(m.Inputs), 2},
		{"rows_read", testutil.ToFloat64(m.RowsRead), 10},
		{"decode_failures", testutil.ToFloat64(m.DecodeFailures), 1},
		{"rejected status", testutil.ToFloat64(m.Rejected.WithLabelValues("status")), 3},
		{"rejected revenue", testutil.ToFloat64(m.Rejected.WithLabelValues("revenue")), 2},
		{"rejected cutoff", testutil.ToFloat64(m.Rejected.WithLabelValues("cutoff")), 0},
		{"admitted", testutil.ToFloat64(m.Admitted), 4},
		{"details", testutil.ToFloat64(m.Details), 6},
		{"bucket_records", testutil.ToFloat64(m.BucketRecords), 1},
		{"duration", testutil.ToFloat64(m.Duration), 1.5},
		{"last_success", testutil.ToFloat64(m.LastSuccess), 1700000000},
	}
	for _, tt := range tests {
		if tt.got != tt.want {
			t.Errorf("%s = %v, want %v", tt.name, tt.got, tt.want)
		}
	}
}

func TestWriteTextfile(t *testing.T) {
	m := NewRunMetrics()
	m.Observe(sampleResult(), time.Second, time.Now())

	path := filepath.Join(t.TempDir(), "movie_buckets.prom")
	if err := m.WriteTextfile(path); err != nil {
		t.Fatalf("WriteTextfile failed: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{
		"movie_buckets_ingest_rows_read_total 10",
		`movie_buckets_ingest_rejected_total{reason="status"} 3`,
		"movie_buckets_index_records 1",
	} {
		if !strings.Contains(string(data), want) {
			t.Errorf("textfile missing %q:\n%s", want, data)
		}
	}
}

func TestWriteTextfile_BadPath(t *testing.T) {
	m := NewRunMetrics()
	if err := m.WriteTextfile(filepath.Join(t.TempDir(), "missing", "x.prom")); err == nil {
		t.Error("expected error for missing directory")
	}
}
