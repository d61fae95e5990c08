// Package buckets implements a time-bucketed merge index: records are keyed
// by (year, month, entity id) and records colliding on a key are merged.
//
// The index is a plain accumulator owned by a single batch driver. It is
// not safe for concurrent use.
package buckets

import (
	"maps"
	"slices"
	"time"
)

// MonthsPerYear is the number of month slots allocated for each year.
const MonthsPerYear = 12

// Mergeable is implemented by records stored in an Index. Merge must return
// a new value without modifying either operand, and must be commutative and
// associative in every field the caller relies on.
type Mergeable[T any] interface {
	EntityID() int64
	Period() time.Time
	Merge(other T) T
}

// Months holds the twelve month slots of a year, January at index 0.
type Months[T any] [MonthsPerYear]map[int64]T

// Index maps year → month → entity id → merged record.
type Index[T Mergeable[T]] struct {
	years map[int]*Months[T]
	size  int
}

// New returns an empty index.
func New[T Mergeable[T]]() *Index[T] {
	return &Index[T]{years: make(map[int]*Months[T])}
}

// MonthSlot returns the slot index for t: month-1, or 0 when the month is
// outside 1..12.
func MonthSlot(t time.Time) int {
	m := int(t.Month()) - 1
	if m < 0 || m >= MonthsPerYear {
		return 0
	}
	return m
}

// Upsert adds record to its (year, month) slot. The first record for an
// entity is stored as-is and the index takes ownership of it; later records
// replace the stored one with stored.Merge(record).
func (ix *Index[T]) Upsert(record T) {
	period := record.Period()
	year := period.Year()

	months, ok := ix.years[year]
	if !ok {
		months = new(Months[T])
		for i := range months {
			months[i] = make(map[int64]T)
		}
		ix.years[year] = months
	}

	slot := months[MonthSlot(period)]
	id := record.EntityID()
	if existing, found := slot[id]; found {
		slot[id] = existing.Merge(record)
		return
	}
	slot[id] = record
	ix.size++
}

// Get returns the record for id in the given year and month.
func (ix *Index[T]) Get(year int, month time.Month, id int64) (T, bool) {
	var zero T
	months, ok := ix.years[year]
	if !ok || month < time.January || month > time.December {
		return zero, false
	}
	rec, ok := months[int(month)-1][id]
	return rec, ok
}

// Year returns the month slots of year. Callers must not modify them.
func (ix *Index[T]) Year(year int) (*Months[T], bool) {
	months, ok := ix.years[year]
	return months, ok
}

// Years returns the years present in ascending order, including years
// whose slots are all empty.
func (ix *Index[T]) Years() []int {
	return slices.Sorted(maps.Keys(ix.years))
}

// Len returns the number of distinct (year, month, entity) records.
func (ix *Index[T]) Len() int {
	return ix.size
}
