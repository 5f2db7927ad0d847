// Tick loop and simulation calendar.
package engine

import (
	"fmt"
	"log/slog"
	"time"
)

// Calendar constants: 30-day months, 360-day years.
const (
	DaysPerMonth = 30
	DaysPerYear  = 360
)

// Engine drives the simulation forward one day per tick.
type Engine struct {
	Day      int           // Current day counter (monotonic, never resets)
	Speed    float64       // Multiplier: 1.0 = one day per Interval, 0 = paused
	Interval time.Duration // Base wall-clock interval per day (default 1 second)
	Running  bool

	// OnDay runs once per simulated day.
	OnDay func(day int)
}

// NewEngine creates an engine with default settings.
func NewEngine() *Engine {
	return &Engine{
		Speed:    1.0,
		Interval: time.Second,
	}
}

// Run starts the loop. Blocks until Stop is called.
func (e *Engine) Run() {
	e.Running = true
	slog.Info("simulation engine started", "day", e.Day, "speed", e.Speed)

	for e.Running {
		if e.Speed <= 0 {
			time.Sleep(100 * time.Millisecond)
			continue
		}

		start := time.Now()
		e.Day++
		if e.OnDay != nil {
			e.OnDay(e.Day)
		}

		elapsed := time.Since(start)
		target := time.Duration(float64(e.Interval) / e.Speed)
		if elapsed < target {
			time.Sleep(target - elapsed)
		}
	}

	slog.Info("simulation engine stopped", "day", e.Day)
}

// RunDays advances the simulation n days as fast as possible, without pacing.
func (e *Engine) RunDays(n int) {
	for i := 0; i < n; i++ {
		e.Day++
		if e.OnDay != nil {
			e.OnDay(e.Day)
		}
	}
}

// Stop halts the loop.
func (e *Engine) Stop() {
	e.Running = false
}

// SimDate returns a human-readable date for a day number.
func SimDate(day int) string {
	year := day/DaysPerYear + 1
	dayOfYear := day % DaysPerYear
	month := dayOfYear/DaysPerMonth + 1
	dayOfMonth := dayOfYear%DaysPerMonth + 1
	return fmt.Sprintf("Year %d, Month %d, Day %d", year, month, dayOfMonth)
}
