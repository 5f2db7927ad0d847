// Simulation ties the tier state, topology, and system pipeline together and
// runs them each simulated day.
package engine

import (
	"log/slog"

	"github.com/dustin/go-humanize"

	"github.com/talgya/crownlands/internal/economy"
	"github.com/talgya/crownlands/internal/world"
)

// Simulation holds the complete world state and wires systems together.
type Simulation struct {
	State    *economy.State
	Map      *world.MapData
	Pipeline *Pipeline

	// History is the append-only daily snapshot series.
	History []economy.EconomySnapshot

	// OnSnapshot, when set, receives each day's snapshot after the pipeline
	// completes (telemetry fan-out).
	OnSnapshot func(economy.EconomySnapshot)
}

// NewSimulation builds a simulation with the standard system order:
// production → facilities → fiscal → province trade → realm market →
// demography (monthly). The order is load-bearing; see Pipeline.
func NewSimulation(st *economy.State, m *world.MapData) *Simulation {
	sim := &Simulation{
		State: st,
		Map:   m,
		Pipeline: NewPipeline(
			ProductionSystem{},
			FacilitySystem{},
			&FiscalSystem{},
			ProvinceTradeSystem{},
			&RealmMarketSystem{},
			DemographySystem{},
		),
	}
	sim.Pipeline.Initialize(st, m)
	return sim
}

// TickDay advances the economy one day and reduces the day's snapshot.
func (s *Simulation) TickDay(day int) {
	s.Pipeline.Tick(s.State, s.Map, day)

	snap := economy.BuildSnapshot(s.State)
	s.History = append(s.History, snap)
	if s.OnSnapshot != nil {
		s.OnSnapshot(snap)
	}

	if day%DaysPerMonth == 0 {
		slog.Info("monthly report",
			"day", day,
			"date", SimDate(day),
			"population", humanize.CommafWithDigits(snap.TotalPopulation, 0),
			"total_stock", humanize.CommafWithDigits(snap.TotalStock, 0),
			"unmet_need", humanize.CommafWithDigits(snap.TotalUnmetNeed, 0),
			"avg_satisfaction", snap.AvgBasicSatisfaction,
			"starving_counties", snap.StarvingCounties,
			"realm_treasury", humanize.CommafWithDigits(snap.RealmTreasury, 0),
			"crowns_minted", humanize.CommafWithDigits(snap.CrownsMinted, 0),
			"trade_volume", humanize.CommafWithDigits(snap.TradeSpending, 0),
		)
	}
}

// LatestSnapshot returns the most recent snapshot, if any.
func (s *Simulation) LatestSnapshot() (economy.EconomySnapshot, bool) {
	if len(s.History) == 0 {
		return economy.EconomySnapshot{}, false
	}
	return s.History[len(s.History)-1], true
}
