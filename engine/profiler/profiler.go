package profiler

import (
	"runtime"
	"time"

	"github.com/Carmen-Shannon/oxy-technique/common"
)

// Profiler tracks frame rate, pass compilation throughput and memory statistics.
// Outputs stats to the common logger at a configurable interval.
type Profiler struct {
	frameCount     int
	passCount      int
	lastTime       time.Time
	updateInterval time.Duration
	memStats       runtime.MemStats
	lastGCCount    uint32
	lastTotalAlloc uint64
	now            func() time.Time
}

// NewProfiler creates a new Profiler.
//
// Parameters:
//   - updateInterval: how often statistics are logged, 1 second if not positive
//
// Returns:
//   - *Profiler: the newly created profiler instance
func NewProfiler(updateInterval time.Duration) *Profiler {
	if updateInterval <= 0 {
		updateInterval = time.Second
	}
	return &Profiler{
		lastTime:       time.Now(),
		updateInterval: updateInterval,
		now:            time.Now,
	}
}

// Tick should be called once per frame with the number of passes compiled during the frame.
// Logs performance statistics when the update interval has elapsed.
// Statistics include: FPS, passes per second, heap usage, allocation rate, GC count/pause times, total memory.
//
// Parameters:
//   - passes: the number of passes compiled this frame
//
// Returns:
//   - bool: true if stats were logged this tick, false otherwise
func (p *Profiler) Tick(passes int) bool {
	p.frameCount++
	p.passCount += passes
	currentTime := p.now()
	elapsed := currentTime.Sub(p.lastTime)
	if elapsed < p.updateInterval {
		return false
	}

	runtime.ReadMemStats(&p.memStats)
	// Alloc is live heap, TotalAlloc only grows and tracks churn.
	allocMB := float64(p.memStats.Alloc) / 1024 / 1024
	sysMB := float64(p.memStats.Sys) / 1024 / 1024
	allocRateMB := float64(p.memStats.TotalAlloc-p.lastTotalAlloc) / 1024 / 1024 / elapsed.Seconds()

	gcCount := p.memStats.NumGC
	var lastPauseUs, maxPauseUs uint64
	if gcCount > 0 {
		// PauseNs is a circular buffer of the last 256 GC pauses
		lastPauseUs = p.memStats.PauseNs[(gcCount-1)%256] / 1000

		startIdx := p.lastGCCount
		if gcCount-startIdx > 256 {
			startIdx = gcCount - 256
		}
		for i := startIdx; i < gcCount; i++ {
			if pause := p.memStats.PauseNs[i%256] / 1000; pause > maxPauseUs {
				maxPauseUs = pause
			}
		}
	}

	common.Logger().Info("profiler",
		"fps", float64(p.frameCount)/elapsed.Seconds(),
		"passes_per_sec", float64(p.passCount)/elapsed.Seconds(),
		"heap_mb", allocMB,
		"alloc_rate_mb", allocRateMB,
		"gc", gcCount,
		"gc_last_us", lastPauseUs,
		"gc_max_us", maxPauseUs,
		"sys_mb", sysMB,
	)

	p.frameCount = 0
	p.passCount = 0
	p.lastTime = currentTime
	p.lastGCCount = gcCount
	p.lastTotalAlloc = p.memStats.TotalAlloc
	return true
}
