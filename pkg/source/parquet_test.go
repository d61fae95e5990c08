package source

import (
	"bytes"
	"errors"
	"io"
	"testing"

	"github.com/eunmann/movie-buckets/pkg/movies"
	"github.com/parquet-go/parquet-go"
)

type movieParquetRow struct {
	ID                  string   `parquet:"id"`
	Genres              string   `parquet:"genres"`
	ProductionCompanies string   `parquet:"production_companies"`
	ReleaseDate         string   `parquet:"release_date"`
	Budget              int64    `parquet:"budget"`
	Revenue             int64    `parquet:"revenue"`
	Popularity          *float64 `parquet:"popularity,optional"`
	Status              string   `parquet:"status"`
}

func parquetBytes(t *testing.T, rows []movieParquetRow) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := parquet.Write(&buf, rows); err != nil {
		t.Fatalf("parquet.Write failed: %v", err)
	}
	return buf.Bytes()
}

func sampleParquetRows() []movieParquetRow {
	pop := 21.5
	return []movieParquetRow{
		{"862", "[{'id': 16}]", "[{'id': 3}]", "1995-10-30", 30000000, 373554033, &pop, "Released"},
		{"8844", "[]", "[{'id': 559}]", "1995-12-15", 65000000, 262797249, nil, "Released"},
	}
}

func readAll(t *testing.T, r Reader) []movies.RawRecord {
	t.Helper()
	var out []movies.RawRecord
	for {
		row, err := r.Next()
		if errors.Is(err, io.EOF) {
			return out
		}
		if err != nil {
			t.Fatalf("Next failed: %v", err)
		}
		raw, err := movies.DecodeRaw(row)
		if err != nil {
			t.Fatalf("DecodeRaw failed: %v", err)
		}
		out = append(out, raw)
	}
}

func TestParquetReader(t *testing.T) {
	data := parquetBytes(t, sampleParquetRows())

	r, err := NewParquetReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		t.Fatalf("NewParquetReader failed: %v", err)
	}
	defer r.Close()

	got := readAll(t, r)
	if len(got) != 2 {
		t.Fatalf("rows = %d, want 2", len(got))
	}
	if got[0].ID != "862" || got[0].Revenue.Int64() != 373554033 {
		t.Errorf("row 0 = %+v", got[0])
	}
	if got[0].Popularity == nil || *got[0].Popularity != 21.5 {
		t.Errorf("row 0 popularity = %v, want 21.5", got[0].Popularity)
	}
	if got[1].Popularity != nil {
		t.Errorf("row 1 popularity = %v, want nil", *got[1].Popularity)
	}
	if got[1].ProductionCompanies != "[{'id': 559}]" {
		t.Errorf("row 1 production_companies = %q", got[1].ProductionCompanies)
	}
}

// doubleMoneyRow is the schema pandas writes when money columns hold NaN.
type doubleMoneyRow struct {
	ID                  string  `parquet:"id"`
	Genres              string  `parquet:"genres"`
	ProductionCompanies string  `parquet:"production_companies"`
	ReleaseDate         string  `parquet:"release_date"`
	Budget              float64 `parquet:"budget"`
	Revenue             float64 `parquet:"revenue"`
	Popularity          float32 `parquet:"popularity"`
	Status              string  `parquet:"status"`
}

func TestParquetReader_DoubleMoneyColumns(t *testing.T) {
	rows := []doubleMoneyRow{
		{"1", "[]", "[{'id': 7}]", "2001-06-01", 150000000, 2500000000, 12.5, "Released"},
		{"2", "[]", "[{'id': 7}]", "2001-06-02", 0, 1e6, 0.25, "Released"},
	}
	var buf bytes.Buffer
	if err := parquet.Write(&buf, rows); err != nil {
		t.Fatalf("parquet.Write failed: %v", err)
	}

	r, err := NewParquetReader(bytes.NewReader(buf.Bytes()), int64(buf.Len()))
	if err != nil {
		t.Fatalf("NewParquetReader failed: %v", err)
	}
	defer r.Close()

	got := readAll(t, r)
	if len(got) != 2 {
		t.Fatalf("rows = %d, want 2", len(got))
	}
	if got[0].Budget.Int64() != 150000000 || got[0].Revenue.Int64() != 2500000000 {
		t.Errorf("row 0 budget/revenue = %v/%v, want 150000000/2500000000", got[0].Budget, got[0].Revenue)
	}
	if got[1].Revenue.Int64() != 1000000 {
		t.Errorf("row 1 revenue = %v, want 1000000", got[1].Revenue)
	}
	if got[0].Popularity == nil || *got[0].Popularity != 12.5 {
		t.Errorf("row 0 popularity = %v, want 12.5", got[0].Popularity)
	}
}

func TestValueText_Floats(t *testing.T) {
	tests := []struct {
		v    parquet.Value
		want string
	}{
		{parquet.DoubleValue(150000000), "150000000"},
		{parquet.DoubleValue(21.946943), "21.946943"},
		{parquet.FloatValue(1e7), "10000000"},
		{parquet.FloatValue(0.5), "0.5"},
		{parquet.Int64Value(42), "42"},
		{parquet.Value{}, ""},
	}
	for _, tt := range tests {
		if got := valueText(tt.v); got != tt.want {
			t.Errorf("valueText(%v) = %q, want %q", tt.v, got, tt.want)
		}
	}
}

func TestParquetReaderFromStream(t *testing.T) {
	data := parquetBytes(t, sampleParquetRows())

	r, err := NewParquetReaderFromStream(io.NopCloser(bytes.NewReader(data)))
	if err != nil {
		t.Fatalf("NewParquetReaderFromStream failed: %v", err)
	}
	if got := readAll(t, r); len(got) != 2 {
		t.Errorf("rows = %d, want 2", len(got))
	}
	if err := r.Close(); err != nil {
		t.Errorf("Close failed: %v", err)
	}
}

func TestParquetReader_MissingColumn(t *testing.T) {
	type partial struct {
		ID string `parquet:"id"`
	}
	var buf bytes.Buffer
	if err := parquet.Write(&buf, []partial{{ID: "1"}}); err != nil {
		t.Fatalf("parquet.Write failed: %v", err)
	}

	_, err := NewParquetReader(bytes.NewReader(buf.Bytes()), int64(buf.Len()))
	if !errors.Is(err, movies.ErrMissingColumn) {
		t.Errorf("expected ErrMissingColumn, got %v", err)
	}
}
