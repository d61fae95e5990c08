package movies

import (
	"errors"
	"testing"
	"time"
)

var testHeader = []string{"id", "genres", "production_companies", "release_date", "budget", "revenue", "popularity", "status"}

func mustHeader(t *testing.T, names []string) *Header {
	t.Helper()
	h, err := NewHeader(names)
	if err != nil {
		t.Fatalf("NewHeader failed: %v", err)
	}
	return h
}

func mustBind(t *testing.T, h *Header, record []string) Row {
	t.Helper()
	row, err := h.Bind(record)
	if err != nil {
		t.Fatalf("Bind failed: %v", err)
	}
	return row
}

func TestNewHeader_MissingColumn(t *testing.T) {
	_, err := NewHeader([]string{"id", "genres"})
	if !errors.Is(err, ErrMissingColumn) {
		t.Fatalf("expected ErrMissingColumn, got %v", err)
	}
}

func TestNewHeader_BOMAndPopularityOptional(t *testing.T) {
	h := mustHeader(t, []string{"\uFEFFid", "status", "revenue", "budget", "release_date", "production_companies", "genres"})
	if h.Names()[0] != "id" {
		t.Errorf("first column = %q, want id", h.Names()[0])
	}
	if h.Width() != 7 {
		t.Errorf("Width() = %d, want 7", h.Width())
	}
}

func TestDecodeRaw(t *testing.T) {
	h := mustHeader(t, testHeader)
	row := mustBind(t, h, []string{"862", "[{'id': 16}]", "[{'id': 3}]", "1995-10-30", "30000000", "373554033", "21.946943", "Released"})

	raw, err := DecodeRaw(row)
	if err != nil {
		t.Fatalf("DecodeRaw failed: %v", err)
	}
	if raw.ID != "862" {
		t.Errorf("ID = %q, want 862", raw.ID)
	}
	if want := time.Date(1995, 10, 30, 0, 0, 0, 0, time.UTC); !raw.ReleaseDate.Equal(want) {
		t.Errorf("ReleaseDate = %v, want %v", raw.ReleaseDate, want)
	}
	if raw.Budget.Int64() != 30000000 || raw.Revenue.Int64() != 373554033 {
		t.Errorf("Budget/Revenue = %v/%v", raw.Budget, raw.Revenue)
	}
	if raw.Popularity == nil || *raw.Popularity != 21.946943 {
		t.Errorf("Popularity = %v, want 21.946943", raw.Popularity)
	}
	if raw.Status != "Released" {
		t.Errorf("Status = %q", raw.Status)
	}
}

func TestDecodeRaw_ColumnOrderIndependent(t *testing.T) {
	h := mustHeader(t, []string{"status", "revenue", "budget", "release_date", "production_companies", "genres", "id"})
	row := mustBind(t, h, []string{"Released", "10", "5", "2000-01-01", "[]", "[]", "abc"})

	raw, err := DecodeRaw(row)
	if err != nil {
		t.Fatalf("DecodeRaw failed: %v", err)
	}
	if raw.ID != "abc" || raw.Revenue.Int64() != 10 || raw.Budget.Int64() != 5 {
		t.Errorf("got %+v", raw)
	}
	if raw.Popularity != nil {
		t.Errorf("Popularity = %v, want nil without column", *raw.Popularity)
	}
}

func TestDecodeRaw_PopularityLenient(t *testing.T) {
	h := mustHeader(t, testHeader)
	for _, pop := range []string{"", "n/a", "Beware Of Frost Bites", "NaN", "inf", "-Inf", "+Infinity"} {
		row := mustBind(t, h, []string{"1", "[]", "[]", "2000-01-01", "0", "1", pop, "Released"})
		raw, err := DecodeRaw(row)
		if err != nil {
			t.Fatalf("popularity %q: DecodeRaw failed: %v", pop, err)
		}
		if raw.Popularity != nil {
			t.Errorf("popularity %q: got %v, want nil", pop, *raw.Popularity)
		}
	}
}

func TestDecodeRaw_BigIntegers(t *testing.T) {
	h := mustHeader(t, testHeader)
	row := mustBind(t, h, []string{"1", "[]", "[]", "2000-01-01", "0", "170141183460469231731687303715884105727", "", "Released"})

	raw, err := DecodeRaw(row)
	if err != nil {
		t.Fatalf("DecodeRaw failed: %v", err)
	}
	if raw.Revenue.IsInt64() {
		t.Errorf("expected revenue beyond int64, got %v", raw.Revenue)
	}
}

func TestDecodeRaw_FieldErrors(t *testing.T) {
	h := mustHeader(t, testHeader)
	tests := []struct {
		field  string
		record []string
	}{
		{ColReleaseDate, []string{"1", "[]", "[]", "30/10/1995", "0", "1", "", "Released"}},
		{ColReleaseDate, []string{"1", "[]", "[]", "", "0", "1", "", "Released"}},
		{ColBudget, []string{"1", "[]", "[]", "2000-01-01", "1.5", "1", "", "Released"}},
		{ColRevenue, []string{"1", "[]", "[]", "2000-01-01", "0", "", "", "Released"}},
	}

	for _, tt := range tests {
		_, err := DecodeRaw(mustBind(t, h, tt.record))
		var de *DecodeError
		if !errors.As(err, &de) {
			t.Fatalf("expected *DecodeError for %v, got %v", tt.record, err)
		}
		if de.Field != tt.field {
			t.Errorf("Field = %q, want %q", de.Field, tt.field)
		}
	}
}

func TestBind_FieldCount(t *testing.T) {
	h := mustHeader(t, testHeader)
	_, err := h.Bind([]string{"1", "2"})
	if !errors.Is(err, ErrFieldCount) {
		t.Fatalf("expected ErrFieldCount, got %v", err)
	}
	var de *DecodeError
	if !errors.As(err, &de) {
		t.Fatalf("expected *DecodeError, got %T", err)
	}
}
