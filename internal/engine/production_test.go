package engine

import (
	"math"
	"testing"

	"github.com/talgya/crownlands/internal/economy"
	"github.com/talgya/crownlands/internal/world"
)

// breadCatalog builds an inline catalog with bread as the only basic good.
func breadCatalog() *economy.Catalog {
	cat := &economy.Catalog{}
	cat.Goods[economy.GoodBread] = economy.GoodDef{
		Name: "bread", BasePrice: 1, MinPrice: 0.5, MaxPrice: 3,
		Tradeable: true, Basic: true, NeedPerCapita: 1,
	}
	cat.Goods[economy.GoodTimber] = economy.GoodDef{
		Name: "timber", BasePrice: 0.5, MinPrice: 0.25, MaxPrice: 1.5,
		Tradeable: true, NeedPerCapita: 0.1,
	}
	cat.BuyPriority = []economy.Good{economy.GoodBread, economy.GoodTimber}
	return cat
}

// oneCountyWorld builds a 1-county/1-province/1-realm state.
func oneCountyWorld(cat *economy.Catalog) (*economy.State, *world.MapData) {
	st := economy.NewState(cat, economy.DefaultParams(), nil, 1, 1, 1)
	m := world.NewMapData([]int{0}, []int{0}, []world.Cell{{X: 0, Y: 0}})
	return st, m
}

func TestProduction_SurplusDay(t *testing.T) {
	st, m := oneCountyWorld(breadCatalog())
	c := &st.Counties[0]
	c.Population = 100
	c.Productivity[economy.GoodBread] = 1.5
	c.Stock[economy.GoodBread] = 10

	ProductionSystem{}.Tick(st, m)

	if c.Production[economy.GoodBread] != 150 {
		t.Fatalf("production=%v want 150", c.Production[economy.GoodBread])
	}
	if c.Consumption[economy.GoodBread] != 100 {
		t.Fatalf("consumption=%v want 100", c.Consumption[economy.GoodBread])
	}
	if c.Stock[economy.GoodBread] != 60 {
		t.Fatalf("stock=%v want 60", c.Stock[economy.GoodBread])
	}
	if c.UnmetNeed[economy.GoodBread] != 0 {
		t.Fatalf("unmet=%v want 0", c.UnmetNeed[economy.GoodBread])
	}
	// Full satisfaction stays at the EMA's fixed point.
	if c.BasicSatisfaction != 1.0 {
		t.Fatalf("satisfaction=%v want 1.0", c.BasicSatisfaction)
	}
}

func TestProduction_ShortfallRecordsUnmetNeed(t *testing.T) {
	st, m := oneCountyWorld(breadCatalog())
	c := &st.Counties[0]
	c.Population = 100
	c.Productivity[economy.GoodBread] = 0.2
	// No stock on hand: only today's 20 units feed a demand of 100.

	ProductionSystem{}.Tick(st, m)

	if c.Consumption[economy.GoodBread] != 20 {
		t.Fatalf("consumption=%v want 20", c.Consumption[economy.GoodBread])
	}
	if c.UnmetNeed[economy.GoodBread] != 80 {
		t.Fatalf("unmet=%v want 80", c.UnmetNeed[economy.GoodBread])
	}
	// EMA pulls satisfaction from 1.0 toward today's 0.2 over the window.
	want := 1.0 + (0.2-1.0)/economy.SatisfactionWindow
	if math.Abs(c.BasicSatisfaction-want) > 1e-12 {
		t.Fatalf("satisfaction=%v want %v", c.BasicSatisfaction, want)
	}
}

func TestProduction_EmptyCountyIsNoop(t *testing.T) {
	st, m := oneCountyWorld(breadCatalog())
	// Population zero: nothing produced, nothing demanded.

	ProductionSystem{}.Tick(st, m)

	c := &st.Counties[0]
	if c.Production[economy.GoodBread] != 0 || c.UnmetNeed[economy.GoodBread] != 0 {
		t.Fatalf("empty county moved goods: prod=%v unmet=%v",
			c.Production[economy.GoodBread], c.UnmetNeed[economy.GoodBread])
	}
	if c.BasicSatisfaction != 1.0 {
		t.Fatalf("satisfaction=%v want 1.0 with zero demand", c.BasicSatisfaction)
	}
}

func TestProduction_NonBasicShortfallDoesNotStarve(t *testing.T) {
	st, m := oneCountyWorld(breadCatalog())
	c := &st.Counties[0]
	c.Population = 100
	c.Productivity[economy.GoodBread] = 1.0 // bread exactly covered
	// Timber (non-basic) demand 10/day with no production at all.

	ProductionSystem{}.Tick(st, m)

	if c.UnmetNeed[economy.GoodTimber] != 10 {
		t.Fatalf("timber unmet=%v want 10", c.UnmetNeed[economy.GoodTimber])
	}
	if c.BasicSatisfaction != 1.0 {
		t.Fatalf("satisfaction=%v want 1.0 (timber is not basic)", c.BasicSatisfaction)
	}
}
