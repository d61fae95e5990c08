package movies

import (
	"fmt"
	"math/big"
	"strings"
	"time"
)

// Status is the closed set of release statuses the pipeline distinguishes.
type Status uint8

const (
	StatusOther Status = iota
	StatusReleased
)

// ParseStatus maps free-text status to a Status, case-insensitively.
func ParseStatus(s string) Status {
	if strings.EqualFold(s, "released") {
		return StatusReleased
	}
	return StatusOther
}

func (s Status) String() string {
	switch s {
	case StatusReleased:
		return "Released"
	default:
		return "Other"
	}
}

// MarshalText implements encoding.TextMarshaler.
func (s Status) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// Movie is an admitted row. Values of this type only come out of Admit and
// are not modified afterwards.
type Movie struct {
	ID                  string
	Genres              IDSet
	ProductionCompanies IDSet
	ReleaseDate         time.Time
	Budget              int64
	Revenue             int64
	Profit              int64
	Popularity          float64
	Status              Status
}

// Rejection explains why Admit refused a row. RejectNone means admitted.
type Rejection uint8

const (
	RejectNone Rejection = iota
	RejectStatus
	RejectRevenue
	RejectCutoff
	// RejectRange covers budget, revenue or profit outside int64.
	RejectRange
)

// Rejections lists every non-zero Rejection in declaration order.
var Rejections = []Rejection{RejectStatus, RejectRevenue, RejectCutoff, RejectRange}

func (r Rejection) String() string {
	switch r {
	case RejectNone:
		return "none"
	case RejectStatus:
		return "status"
	case RejectRevenue:
		return "revenue"
	case RejectCutoff:
		return "cutoff"
	case RejectRange:
		return "range"
	default:
		return fmt.Sprintf("rejection(%d)", uint8(r))
	}
}

// Admit applies the admission rules to raw: status must be Released, revenue
// must be positive and, when cutoff is non-nil, the release date must not be
// after it. Rejection is an expected outcome, not an error.
func Admit(raw RawRecord, cutoff *time.Time) (Movie, Rejection) {
	if ParseStatus(raw.Status) != StatusReleased {
		return Movie{}, RejectStatus
	}
	if raw.Revenue == nil || raw.Revenue.Sign() <= 0 {
		return Movie{}, RejectRevenue
	}
	if cutoff != nil && raw.ReleaseDate.After(*cutoff) {
		return Movie{}, RejectCutoff
	}

	budget := raw.Budget
	if budget == nil {
		budget = new(big.Int)
	}
	profit := new(big.Int).Sub(raw.Revenue, budget)
	if !budget.IsInt64() || !raw.Revenue.IsInt64() || !profit.IsInt64() {
		return Movie{}, RejectRange
	}

	var popularity float64
	if raw.Popularity != nil {
		popularity = *raw.Popularity
	}

	return Movie{
		ID:                  raw.ID,
		Genres:              IDSetOrEmpty(raw.Genres),
		ProductionCompanies: IDSetOrEmpty(raw.ProductionCompanies),
		ReleaseDate:         raw.ReleaseDate,
		Budget:              budget.Int64(),
		Revenue:             raw.Revenue.Int64(),
		Profit:              profit.Int64(),
		Popularity:          popularity,
		Status:              StatusReleased,
	}, RejectNone
}

// CutoffLayout is the layout of a cutoff argument.
const CutoffLayout = "2006-01"

// ParseCutoff parses a YYYY-MM cutoff into the first day of that month, UTC.
func ParseCutoff(s string) (time.Time, error) {
	t, err := time.Parse(CutoffLayout, strings.TrimSpace(s))
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid cutoff %q, expected YYYY-MM: %w", s, err)
	}
	return t, nil
}
