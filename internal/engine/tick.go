package engine

import (
	"fmt"
	"log/slog"
	"time"
)

// Engine drives the simulation forward at a fixed tick rate.
type Engine struct {
	Tick     uint64        // Current tick counter (monotonic, never resets)
	Speed    float64       // Multiplier: 1.0 = real-time, 0 = paused
	Interval time.Duration // Base tick interval
	Running  bool

	// Invoked once per tick with the new tick number.
	OnTick func(tick uint64)
}

// NewEngine creates an engine ticking at the given rate per real second.
func NewEngine(ticksPerSecond int) *Engine {
	if ticksPerSecond <= 0 {
		ticksPerSecond = 30
	}
	return &Engine{
		Speed:    1.0,
		Interval: time.Second / time.Duration(ticksPerSecond),
	}
}

// Run starts the simulation loop. Blocks until Stop() is called.
func (e *Engine) Run() {
	e.Running = true
	slog.Info("simulation engine started", "tick", e.Tick, "speed", e.Speed)

	for e.Running {
		if e.Speed <= 0 {
			// Paused. Sleep briefly and check again.
			time.Sleep(100 * time.Millisecond)
			continue
		}

		start := time.Now()

		e.Tick++
		if e.OnTick != nil {
			e.OnTick(e.Tick)
		}

		// Sleep for the remainder of the tick interval, adjusted for speed.
		elapsed := time.Since(start)
		target := time.Duration(float64(e.Interval) / e.Speed)
		if elapsed < target {
			time.Sleep(target - elapsed)
		}
	}

	slog.Info("simulation engine stopped", "tick", e.Tick)
}

// Stop halts the simulation loop.
func (e *Engine) Stop() {
	e.Running = false
}

// SimTime renders a tick count as elapsed campaign time.
func SimTime(tick uint64, ticksPerSecond int) string {
	if ticksPerSecond <= 0 {
		ticksPerSecond = 30
	}
	total := tick / uint64(ticksPerSecond)
	days := total / 86400
	hours := total % 86400 / 3600
	minutes := total % 3600 / 60
	seconds := total % 60
	return fmt.Sprintf("day %d, %02d:%02d:%02d", days+1, hours, minutes, seconds)
}
