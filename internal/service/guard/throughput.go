package guard

import (
	"time"

	"github.com/benbjohnson/clock"
)

// throughputMeter measures frame rates over a window that restarts at every report.
type throughputMeter struct {
	clock         clock.Clock
	start         time.Time
	acquiredCount int
}

func newThroughputMeter(clk clock.Clock) *throughputMeter {
	return &throughputMeter{clock: clk, start: clk.Now()}
}

func (m *throughputMeter) acquired() {
	m.acquiredCount++
}

// report returns processed and acquired frames per second since the window
// started, then starts a new window.
func (m *throughputMeter) report(processed int) (processedFPS, acquiredFPS float64) {
	now := m.clock.Now()
	elapsed := now.Sub(m.start).Seconds()
	if elapsed > 0 {
		processedFPS = float64(processed) / elapsed
		acquiredFPS = float64(m.acquiredCount) / elapsed
	}
	m.start = now
	m.acquiredCount = 0
	return processedFPS, acquiredFPS
}
