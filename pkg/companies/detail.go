// Package companies summarizes admitted movies per production company.
package companies

import (
	"math"
	"time"

	"github.com/eunmann/movie-buckets/pkg/movies"
)

// Metadata carries the movies and genres that contributed to a Detail.
type Metadata struct {
	MovieIDs movies.Set[string] `json:"movie_ids"`
	GenreIDs movies.IDSet       `json:"genre_ids"`
}

// Detail is a production company's summary for one period. A Detail is
// not modified once built; Merge returns a new value.
type Detail struct {
	ID         int64     `json:"id"`
	Date       time.Time `json:"date"`
	Budget     int64     `json:"budget"`
	Profit     int64     `json:"profit"`
	Revenue    int64     `json:"revenue"`
	Popularity float64   `json:"popularity"`
	Metadata   Metadata  `json:"metadata"`
}

// FromMovie fans a movie out into one Detail per production company, in
// ascending company id order. A movie without companies yields nil.
func FromMovie(m movies.Movie) []*Detail {
	if m.ProductionCompanies.Len() == 0 {
		return nil
	}

	details := make([]*Detail, 0, m.ProductionCompanies.Len())
	for _, company := range m.ProductionCompanies.Sorted() {
		details = append(details, &Detail{
			ID:         company,
			Date:       m.ReleaseDate,
			Budget:     m.Budget,
			Profit:     m.Profit,
			Revenue:    m.Revenue,
			Popularity: m.Popularity,
			Metadata: Metadata{
				MovieIDs: movies.NewSet(m.ID),
				GenreIDs: m.Genres.Clone(),
			},
		})
	}
	return details
}

// Merge combines two details for the same company and period. Money fields
// are summed, saturating at the int64 bounds, and metadata sets are unioned. Popularity is the pairwise mean
// of the operands, so a chain of merges weights later inputs more heavily
// than a true running mean would; existing reports depend on that.
// Neither operand is modified.
func Merge(a, b *Detail) *Detail {
	return &Detail{
		ID:         a.ID,
		Date:       a.Date,
		Budget:     addSat(a.Budget, b.Budget),
		Profit:     addSat(a.Profit, b.Profit),
		Revenue:    addSat(a.Revenue, b.Revenue),
		Popularity: (a.Popularity + b.Popularity) / 2,
		Metadata: Metadata{
			MovieIDs: a.Metadata.MovieIDs.Union(b.Metadata.MovieIDs),
			GenreIDs: a.Metadata.GenreIDs.Union(b.Metadata.GenreIDs),
		},
	}
}

// addSat adds x and y, clamping to the int64 range instead of wrapping.
func addSat(x, y int64) int64 {
	sum := x + y
	switch {
	case x > 0 && y > 0 && sum < 0:
		return math.MaxInt64
	case x < 0 && y < 0 && sum >= 0:
		return math.MinInt64
	}
	return sum
}

// EntityID returns the production company id.
func (d *Detail) EntityID() int64 { return d.ID }

// Period returns the release date the detail is bucketed by.
func (d *Detail) Period() time.Time { return d.Date }

// Merge implements buckets.Mergeable.
func (d *Detail) Merge(other *Detail) *Detail { return Merge(d, other) }
