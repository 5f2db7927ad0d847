// Monthly demography — the reference collaborator that turns basic
// satisfaction into population change and resets the monthly accumulators.
package engine

import (
	"math"

	"github.com/talgya/crownlands/internal/economy"
	"github.com/talgya/crownlands/internal/world"
)

// DemographySystem adjusts county populations from BasicSatisfaction once a
// month. Fully deterministic: no randomness, only rates.
type DemographySystem struct{}

func (DemographySystem) Name() string  { return "demography" }
func (DemographySystem) Interval() int { return DaysPerMonth }

func (DemographySystem) Initialize(st *economy.State, m *world.MapData) {}

func (DemographySystem) Tick(st *economy.State, m *world.MapData) {
	p := st.Params

	// Births and deaths per county.
	for i := range st.Counties {
		c := &st.Counties[i]
		sat := c.BasicSatisfaction

		births := c.Population * p.BirthRateMonthly * sat
		deaths := c.Population * (p.DeathRateMonthly + p.StarvationDeaths*(1-sat))

		c.BirthsThisMonth = births
		c.DeathsThisMonth = deaths
		c.NetMigrationThisMonth = 0
		c.Population += births - deaths
		if c.Population < 0 {
			c.Population = 0
		}
	}

	// Migration drifts toward better-fed counties within each province.
	for pi := range st.Provinces {
		counties := m.CountiesOf(pi)
		if len(counties) < 2 {
			continue
		}
		avg := 0.0
		pop := 0.0
		for _, ci := range counties {
			avg += st.Counties[ci].BasicSatisfaction * st.Counties[ci].Population
			pop += st.Counties[ci].Population
		}
		if pop <= 0 {
			continue
		}
		avg /= pop

		moved := 0.0
		for _, ci := range counties {
			c := &st.Counties[ci]
			if c.BasicSatisfaction >= avg {
				continue
			}
			out := c.Population * p.MigrationRate * (avg - c.BasicSatisfaction)
			out = math.Min(out, c.Population)
			c.Population -= out
			c.NetMigrationThisMonth -= out
			moved += out
		}
		if moved <= 0 {
			continue
		}
		attract := 0.0
		for _, ci := range counties {
			if d := st.Counties[ci].BasicSatisfaction - avg; d > 0 {
				attract += d
			}
		}
		if attract <= 0 {
			// Nowhere better to go; return movers evenly.
			per := moved / float64(len(counties))
			for _, ci := range counties {
				st.Counties[ci].Population += per
				st.Counties[ci].NetMigrationThisMonth += per
			}
			continue
		}
		for _, ci := range counties {
			c := &st.Counties[ci]
			if d := c.BasicSatisfaction - avg; d > 0 {
				in := moved * d / attract
				c.Population += in
				c.NetMigrationThisMonth += in
			}
		}
	}
}
