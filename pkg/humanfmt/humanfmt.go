// Package humanfmt provides human-readable formatting for durations, counts
// and money amounts.
package humanfmt

import (
	"fmt"
	"strconv"
	"time"
)

const (
	thousand = 1000
	million  = 1000 * thousand
	billion  = 1000 * million
)

// Duration formats a duration compactly.
// Examples: "1.23s", "45.6ms", "789µs", "1m30s", "2h15m".
func Duration(d time.Duration) string {
	if d < 0 {
		return d.String()
	}

	switch {
	case d >= time.Hour:
		h := d / time.Hour
		m := (d % time.Hour) / time.Minute
		if m == 0 {
			return fmt.Sprintf("%dh", h)
		}
		return fmt.Sprintf("%dh%dm", h, m)
	case d >= time.Minute:
		m := d / time.Minute
		s := (d % time.Minute) / time.Second
		if s == 0 {
			return fmt.Sprintf("%dm", m)
		}
		return fmt.Sprintf("%dm%ds", m, s)
	case d >= time.Second:
		return fmt.Sprintf("%.2fs", d.Seconds())
	case d >= time.Millisecond:
		return fmt.Sprintf("%.1fms", float64(d)/float64(time.Millisecond))
	case d >= time.Microsecond:
		return fmt.Sprintf("%.1fµs", float64(d)/float64(time.Microsecond))
	default:
		return fmt.Sprintf("%dns", d.Nanoseconds())
	}
}

// Count formats a count with a decimal suffix.
// Examples: "1.23M", "456K", "789".
func Count(n int64) string {
	if n < 0 {
		return strconv.FormatInt(n, 10)
	}

	switch {
	case n >= billion:
		return fmt.Sprintf("%.2fB", float64(n)/billion)
	case n >= million:
		return fmt.Sprintf("%.2fM", float64(n)/million)
	case n >= thousand:
		return fmt.Sprintf("%.2fK", float64(n)/thousand)
	default:
		return strconv.FormatInt(n, 10)
	}
}

// Money formats a dollar amount with a decimal suffix.
// Examples: "$373.55M", "-$1.20K", "$40".
func Money(n int64) string {
	sign := ""
	f := float64(n)
	if n < 0 {
		sign = "-"
		f = -f
	}

	switch {
	case f >= billion:
		return fmt.Sprintf("%s$%.2fB", sign, f/billion)
	case f >= million:
		return fmt.Sprintf("%s$%.2fM", sign, f/million)
	case f >= thousand:
		return fmt.Sprintf("%s$%.2fK", sign, f/thousand)
	default:
		return fmt.Sprintf("%s$%.0f", sign, f)
	}
}
