// Package report renders the result of a run as a table or as JSON.
package report

import (
	"cmp"
	"encoding/json"
	"fmt"
	"io"
	"slices"
	"strconv"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/eunmann/movie-buckets/pkg/buckets"
	"github.com/eunmann/movie-buckets/pkg/companies"
	"github.com/eunmann/movie-buckets/pkg/humanfmt"
	"github.com/eunmann/movie-buckets/pkg/movies"
	"github.com/eunmann/movie-buckets/pkg/pipeline"
)

// DefaultYears is how many years of buckets are shown unless overridden.
const DefaultYears = 5

// Format selects the output encoding.
type Format string

const (
	FormatTable Format = "table"
	FormatJSON  Format = "json"
)

// ParseFormat validates a format name.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case FormatTable, FormatJSON:
		return f, nil
	default:
		return "", fmt.Errorf("unknown format %q, expected table or json", s)
	}
}

// Options controls what Write emits.
type Options struct {
	Format Format
	// Years limits output to the first Years years with data. Zero or a
	// negative value shows every year.
	Years int
	// Human formats money and counts with suffixes in table output.
	Human bool
}

// Write renders res to w.
func Write(w io.Writer, res *pipeline.Result, opts Options) error {
	years := Years(res.Index, opts.Years)

	switch opts.Format {
	case FormatJSON:
		return writeJSON(w, res, years)
	case FormatTable, "":
		return writeTable(w, res, years, opts.Human)
	default:
		return fmt.Errorf("unknown format %q", opts.Format)
	}
}

// Years flattens ix and keeps the first limit years. Records within each
// month are ordered by company id.
func Years(ix *buckets.Index[*companies.Detail], limit int) []buckets.Year[*companies.Detail] {
	years := ix.Flatten()
	if limit > 0 && len(years) > limit {
		years = years[:limit]
	}
	for _, y := range years {
		for _, m := range y.Months {
			slices.SortFunc(m.Records, func(a, b *companies.Detail) int {
				return cmp.Compare(a.ID, b.ID)
			})
		}
	}
	return years
}

type jsonReport struct {
	Statuses []movies.Status                   `json:"statuses"`
	Stats    jsonStats                         `json:"stats"`
	Years    []buckets.Year[*companies.Detail] `json:"years"`
}

type jsonStats struct {
	pipeline.Stats
	Rejected map[string]int64 `json:"rejected"`
}

func writeJSON(w io.Writer, res *pipeline.Result, years []buckets.Year[*companies.Detail]) error {
	rejected := make(map[string]int64, len(res.Stats.Rejected))
	for reason, n := range res.Stats.Rejected {
		rejected[reason.String()] = n
	}
	if years == nil {
		years = []buckets.Year[*companies.Detail]{}
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(jsonReport{
		Statuses: res.Statuses,
		Stats:    jsonStats{Stats: res.Stats, Rejected: rejected},
		Years:    years,
	}); err != nil {
		return fmt.Errorf("encode report: %w", err)
	}
	return nil
}

func writeTable(w io.Writer, res *pipeline.Result, years []buckets.Year[*companies.Detail], human bool) error {
	// Exact amounts with digit grouping unless suffixes were asked for.
	p := message.NewPrinter(language.English)
	money := func(n int64) string { return p.Sprintf("%d", n) }
	count := money
	if human {
		money = humanfmt.Money
		count = humanfmt.Count
	}

	statuses := make([]string, len(res.Statuses))
	for i, s := range res.Statuses {
		statuses[i] = s.String()
	}
	if _, err := fmt.Fprintf(w, "Statuses: %s\n", strings.Join(statuses, ", ")); err != nil {
		return err
	}

	st := res.Stats
	summary := table.NewWriter()
	summary.SetOutputMirror(w)
	summary.SetStyle(table.StyleLight)
	summary.AppendHeader(table.Row{"Inputs", "Rows", "Decode Failures", "Rejected", "Admitted", "Company Details"})
	summary.AppendRow(table.Row{
		st.Inputs,
		count(st.RowsRead),
		count(st.DecodeFailures),
		count(st.RejectedTotal()),
		count(st.Admitted),
		count(st.Details),
	})
	summary.Render()

	for _, y := range years {
		t := table.NewWriter()
		t.SetOutputMirror(w)
		t.SetStyle(table.StyleLight)
		t.SetTitle(strconv.Itoa(y.Year))
		t.AppendHeader(table.Row{"Month", "Company", "Movies", "Genres", "Budget", "Revenue", "Profit", "Popularity"})

		for _, m := range y.Months {
			for _, d := range m.Records {
				t.AppendRow(table.Row{
					m.Month.String(),
					d.ID,
					d.Metadata.MovieIDs.Len(),
					d.Metadata.GenreIDs.Len(),
					money(d.Budget),
					money(d.Revenue),
					money(d.Profit),
					strconv.FormatFloat(d.Popularity, 'f', 2, 64),
				})
			}
			t.AppendSeparator()
		}
		t.Render()
	}
	return nil
}
