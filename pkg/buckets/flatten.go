package buckets

import "time"

// Month is one non-empty month of a flattened index.
type Month[T any] struct {
	Month   time.Month `json:"month"`
	Records []T        `json:"records"`
}

// Year is one year of a flattened index with at least one non-empty month.
type Year[T any] struct {
	Year   int        `json:"year"`
	Months []Month[T] `json:"months"`
}

// Flatten returns the non-empty months of every year, ordered by year and
// month. Years without records are omitted. Records within a month are in
// map iteration order. The index is not modified.
func (ix *Index[T]) Flatten() []Year[T] {
	var out []Year[T]
	for _, year := range ix.Years() {
		months := ix.years[year]

		var kept []Month[T]
		for i, slot := range months {
			if len(slot) == 0 {
				continue
			}
			records := make([]T, 0, len(slot))
			for _, rec := range slot {
				records = append(records, rec)
			}
			kept = append(kept, Month[T]{Month: time.Month(i + 1), Records: records})
		}

		if len(kept) == 0 {
			continue
		}
		out = append(out, Year[T]{Year: year, Months: kept})
	}
	return out
}
