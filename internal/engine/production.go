// Local production and consumption — each county works its land and feeds
// its population against its own stock.
package engine

import (
	"github.com/talgya/crownlands/internal/economy"
	"github.com/talgya/crownlands/internal/world"
)

// ProductionSystem runs daily per-county production and demand-driven
// consumption, recording shortfalls and updating basic satisfaction.
type ProductionSystem struct{}

func (ProductionSystem) Name() string  { return "production" }
func (ProductionSystem) Interval() int { return 1 }

func (ProductionSystem) Initialize(st *economy.State, m *world.MapData) {}

func (ProductionSystem) Tick(st *economy.State, m *world.MapData) {
	cat := st.Catalog
	for i := range st.Counties {
		c := &st.Counties[i]

		var basicDemand, basicMet float64

		for g := 0; g < economy.GoodCount; g++ {
			def := &cat.Goods[g]

			produced := c.Population * c.Productivity[g]
			c.Stock[g] += produced
			c.Production[g] = produced

			demand := c.Population * def.NeedPerCapita
			consumed := demand
			if consumed > c.Stock[g] {
				consumed = c.Stock[g]
			}
			c.Stock[g] -= consumed
			c.Consumption[g] = consumed
			c.UnmetNeed[g] = demand - consumed

			if def.Basic {
				basicDemand += demand
				basicMet += consumed
			}
		}

		// EMA of the demand-weighted fraction of basic need met.
		satToday := 1.0
		if basicDemand > 0 {
			satToday = basicMet / basicDemand
		}
		c.BasicSatisfaction += (satToday - c.BasicSatisfaction) / economy.SatisfactionWindow
	}
}
