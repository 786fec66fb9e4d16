package profiler

import (
	"log"
	"runtime"
	"time"
)

// Stats is the last set of figures the profiler reported.
type Stats struct {
	UpdatesPerSecond float64
	HeapMB           float64
	AllocRateMB      float64
	GCCount          uint32
	MaxPauseUs       uint64
}

// Profiler tracks animation update rate and memory statistics for performance monitoring.
// Outputs stats to the log at a configurable interval.
type Profiler struct {
	updateCount    int
	lastTime       time.Time
	updateInterval time.Duration
	memStats       runtime.MemStats
	lastGCCount    uint32
	lastTotalAlloc uint64
	last           Stats
	quiet          bool
}

// NewProfiler creates a new Profiler.
// The interval defaults to 1 second when interval <= 0.
//
// Parameters:
//   - interval: how often statistics are computed and logged
//
// Returns:
//   - *Profiler: the newly created profiler instance
func NewProfiler(interval time.Duration) *Profiler {
	if interval <= 0 {
		interval = time.Second
	}
	return &Profiler{
		lastTime:       time.Now(),
		updateInterval: interval,
		memStats:       runtime.MemStats{},
	}
}

// SetQuiet suppresses the log line while still computing statistics.
func (p *Profiler) SetQuiet(quiet bool) {
	p.quiet = quiet
}

// Tick should be called once per engine update.
// Logs performance statistics when the update interval has elapsed.
// Statistics include: updates per second, heap usage, allocation rate, GC count and worst pause.
//
// Returns:
//   - bool: true if stats were computed this tick, false otherwise
func (p *Profiler) Tick() bool {
	return p.tickAt(time.Now())
}

func (p *Profiler) tickAt(now time.Time) bool {
	p.updateCount++
	elapsed := now.Sub(p.lastTime)
	if elapsed < p.updateInterval {
		return false
	}

	runtime.ReadMemStats(&p.memStats)
	allocDelta := p.memStats.TotalAlloc - p.lastTotalAlloc

	gcCount := p.memStats.NumGC
	var maxPauseUs uint64
	// PauseNs is a circular buffer of the last 256 GC pauses.
	startIdx := p.lastGCCount
	if gcCount-startIdx > 256 {
		startIdx = gcCount - 256
	}
	for i := startIdx; i < gcCount; i++ {
		maxPauseUs = max(maxPauseUs, p.memStats.PauseNs[i%256]/1000)
	}

	p.last = Stats{
		UpdatesPerSecond: float64(p.updateCount) / elapsed.Seconds(),
		HeapMB:           float64(p.memStats.Alloc) / 1024 / 1024,
		AllocRateMB:      float64(allocDelta) / 1024 / 1024 / elapsed.Seconds(),
		GCCount:          gcCount,
		MaxPauseUs:       maxPauseUs,
	}
	if !p.quiet {
		log.Printf("[Profiler] UPS: %.2f | Heap: %.2f MB | Alloc Rate: %.2f MB/s | GC: %d (max pause: %d µs)",
			p.last.UpdatesPerSecond, p.last.HeapMB, p.last.AllocRateMB, p.last.GCCount, p.last.MaxPauseUs)
	}

	p.updateCount = 0
	p.lastTime = now
	p.lastGCCount = gcCount
	p.lastTotalAlloc = p.memStats.TotalAlloc
	return true
}

// Last returns the statistics computed by the most recent reporting tick.
func (p *Profiler) Last() Stats {
	return p.last
}
