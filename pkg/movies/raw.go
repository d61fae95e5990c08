// Package movies decodes movie metadata rows and applies the admission rules
// that turn them into validated Movie records.
package movies

import (
	"errors"
	"fmt"
	"math"
	"math/big"
	"strconv"
	"strings"
	"time"
)

// Column names resolved by header. Column order in the source is irrelevant.
const (
	ColID                  = "id"
	ColGenres              = "genres"
	ColProductionCompanies = "production_companies"
	ColReleaseDate         = "release_date"
	ColBudget              = "budget"
	ColRevenue             = "revenue"
	ColPopularity          = "popularity"
	ColStatus              = "status"
)

// DateLayout is the layout of the release_date column.
const DateLayout = "2006-01-02"

// RequiredColumns lists the columns a header must name. Popularity is
// optional: a missing column decodes the same as a blank cell.
var RequiredColumns = []string{
	ColID,
	ColGenres,
	ColProductionCompanies,
	ColReleaseDate,
	ColBudget,
	ColRevenue,
	ColStatus,
}

// ErrFieldCount is reported when a row's width differs from its header's.
var ErrFieldCount = errors.New("field count does not match header")

// ErrMissingColumn is returned by NewHeader for headers lacking a required column.
var ErrMissingColumn = errors.New("missing required column")

// DecodeError describes a row that could not be decoded. The batch survives
// these; the row is dropped.
type DecodeError struct {
	// Line is the 1-based source line of the row, 0 if unknown.
	Line int
	// Field is the offending column, empty for structural errors.
	Field string
	// Value is the raw cell text.
	Value string
	Err   error
}

func (e *DecodeError) Error() string {
	var b strings.Builder
	if e.Line > 0 {
		fmt.Fprintf(&b, "line %d: ", e.Line)
	}
	if e.Field != "" {
		fmt.Fprintf(&b, "field %q (%q): ", e.Field, e.Value)
	}
	if e.Err != nil {
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

func (e *DecodeError) Unwrap() error { return e.Err }

// Row gives access to one tabular row by column name.
type Row interface {
	Field(name string) (string, bool)
}

// Header maps column names to positions.
type Header struct {
	names []string
	index map[string]int
}

// NewHeader builds a Header from the first row of a table. A UTF-8 BOM on the
// first cell and surrounding whitespace on every cell are ignored.
func NewHeader(names []string) (*Header, error) {
	h := &Header{
		names: make([]string, len(names)),
		index: make(map[string]int, len(names)),
	}
	for i, name := range names {
		if i == 0 {
			name = strings.TrimPrefix(name, "\uFEFF")
		}
		name = strings.TrimSpace(name)
		h.names[i] = name
		if _, dup := h.index[name]; !dup {
			h.index[name] = i
		}
	}
	for _, col := range RequiredColumns {
		if _, ok := h.index[col]; !ok {
			return nil, fmt.Errorf("%w: %s", ErrMissingColumn, col)
		}
	}
	return h, nil
}

// Names returns the normalized column names in source order.
func (h *Header) Names() []string {
	return h.names
}

// Width returns the number of columns.
func (h *Header) Width() int {
	return len(h.names)
}

// Bind pairs a record with the header. The record slice is retained, not copied.
func (h *Header) Bind(record []string) (Row, error) {
	if len(record) != len(h.names) {
		return nil, &DecodeError{
			Err: fmt.Errorf("%w: got %d, want %d", ErrFieldCount, len(record), len(h.names)),
		}
	}
	return boundRow{h: h, record: record}, nil
}

type boundRow struct {
	h      *Header
	record []string
}

func (r boundRow) Field(name string) (string, bool) {
	i, ok := r.h.index[name]
	if !ok {
		return "", false
	}
	return r.record[i], true
}

// RawRecord is one row as decoded from the source, before admission.
type RawRecord struct {
	ID                  string
	Genres              string
	ProductionCompanies string
	ReleaseDate         time.Time
	Budget              *big.Int
	Revenue             *big.Int
	// Popularity is nil when the cell is blank, missing, or not a finite number.
	Popularity *float64
	Status     string
}

// DecodeRaw decodes a row into a RawRecord. Every field except popularity
// must decode; the first failure is returned as a *DecodeError.
func DecodeRaw(row Row) (RawRecord, error) {
	var (
		raw RawRecord
		err error
	)

	if raw.ID, err = text(row, ColID); err != nil {
		return RawRecord{}, err
	}
	if raw.Genres, err = text(row, ColGenres); err != nil {
		return RawRecord{}, err
	}
	if raw.ProductionCompanies, err = text(row, ColProductionCompanies); err != nil {
		return RawRecord{}, err
	}
	if raw.Status, err = text(row, ColStatus); err != nil {
		return RawRecord{}, err
	}

	date, err := text(row, ColReleaseDate)
	if err != nil {
		return RawRecord{}, err
	}
	raw.ReleaseDate, err = time.Parse(DateLayout, strings.TrimSpace(date))
	if err != nil {
		return RawRecord{}, &DecodeError{Field: ColReleaseDate, Value: date, Err: err}
	}

	if raw.Budget, err = integer(row, ColBudget); err != nil {
		return RawRecord{}, err
	}
	if raw.Revenue, err = integer(row, ColRevenue); err != nil {
		return RawRecord{}, err
	}

	if s, ok := row.Field(ColPopularity); ok {
		f, perr := strconv.ParseFloat(strings.TrimSpace(s), 64)
		if perr == nil && !math.IsNaN(f) && !math.IsInf(f, 0) {
			raw.Popularity = &f
		}
	}

	return raw, nil
}

func text(row Row, col string) (string, error) {
	s, ok := row.Field(col)
	if !ok {
		return "", &DecodeError{Field: col, Err: ErrMissingColumn}
	}
	return s, nil
}

var errNotInteger = errors.New("not an integer")

func integer(row Row, col string) (*big.Int, error) {
	s, err := text(row, col)
	if err != nil {
		return nil, err
	}
	n, ok := new(big.Int).SetString(strings.TrimSpace(s), 10)
	if !ok {
		return nil, &DecodeError{Field: col, Value: s, Err: errNotInteger}
	}
	return n, nil
}
