// Package memdiag reports heap usage while the bucket index grows.
package memdiag

import (
	"fmt"
	"runtime"
	"sync"

	"github.com/rs/zerolog"
)

// Stats holds the subset of runtime memory statistics that is logged.
type Stats struct {
	HeapAlloc  uint64
	HeapInuse  uint64
	Sys        uint64
	NumGC      uint32
	GCCPUShare float64
}

// Read reads current memory statistics.
func Read() Stats {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	return Stats{
		HeapAlloc:  m.HeapAlloc,
		HeapInuse:  m.HeapInuse,
		Sys:        m.Sys,
		NumGC:      m.NumGC,
		GCCPUShare: m.GCCPUFraction,
	}
}

// FormatMB formats bytes as megabytes.
func FormatMB(b uint64) string {
	return fmt.Sprintf("%.1fMB", float64(b)/(1024*1024))
}

// Tracker remembers the peak heap seen across observations.
type Tracker struct {
	mu       sync.Mutex
	peakHeap uint64
}

// Observe samples memory and logs it at debug level. Nothing is sampled
// unless log would emit debug events.
func (t *Tracker) Observe(log zerolog.Logger, reason string) {
	if log.GetLevel() > zerolog.DebugLevel || zerolog.GlobalLevel() > zerolog.DebugLevel {
		return
	}
	stats := Read()

	t.mu.Lock()
	t.peakHeap = max(t.peakHeap, stats.HeapAlloc)
	peak := t.peakHeap
	t.mu.Unlock()

	log.Debug().
		Str("reason", reason).
		Str("heap_alloc", FormatMB(stats.HeapAlloc)).
		Str("heap_inuse", FormatMB(stats.HeapInuse)).
		Str("sys_total", FormatMB(stats.Sys)).
		Str("peak_heap", FormatMB(peak)).
		Uint32("num_gc", stats.NumGC).
		Float64("gc_cpu_pct", stats.GCCPUShare*100).
		Msg("memory stats")
}

// PeakHeap returns the peak heap allocation seen.
func (t *Tracker) PeakHeap() uint64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.peakHeap
}
