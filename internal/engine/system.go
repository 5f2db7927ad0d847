// Package engine provides the tick-driven system pipeline that advances the
// feudal economy one simulated day at a time.
package engine

import (
	"log/slog"

	"github.com/talgya/crownlands/internal/economy"
	"github.com/talgya/crownlands/internal/world"
)

// System is one independently-invokable simulation stage. Systems run
// single-threaded in a fixed declared order; each may only mutate the tier
// state its responsibility covers and may read only committed state from
// systems that ran before it in the same tick.
type System interface {
	Name() string
	// Interval is the number of days between runs: 1 = daily, 30 = monthly.
	Interval() int
	Initialize(st *economy.State, m *world.MapData)
	Tick(st *economy.State, m *world.MapData)
}

// Pipeline executes systems in registration order. Ordering is load-bearing:
// each system assumes its predecessors have already committed their writes
// for the day.
type Pipeline struct {
	systems []System
}

// NewPipeline creates a pipeline over the given systems, preserving order.
func NewPipeline(systems ...System) *Pipeline {
	return &Pipeline{systems: systems}
}

// Systems returns the registered systems in execution order.
func (p *Pipeline) Systems() []System {
	return p.systems
}

// Initialize calls Initialize on every system once, in order.
func (p *Pipeline) Initialize(st *economy.State, m *world.MapData) {
	for _, sys := range p.systems {
		sys.Initialize(st, m)
		slog.Debug("system initialized", "system", sys.Name(), "interval", sys.Interval())
	}
}

// Tick runs every system whose interval divides the given day, in order.
func (p *Pipeline) Tick(st *economy.State, m *world.MapData, day int) {
	st.Day = day
	for _, sys := range p.systems {
		iv := sys.Interval()
		if iv <= 0 {
			iv = 1
		}
		if day%iv == 0 {
			sys.Tick(st, m)
		}
	}
}
