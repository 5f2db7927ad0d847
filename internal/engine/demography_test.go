package engine

import (
	"math"
	"testing"

	"github.com/talgya/crownlands/internal/economy"
	"github.com/talgya/crownlands/internal/world"
)

func TestDemography_VitalRates(t *testing.T) {
	st, m := oneCountyWorld(breadCatalog())
	c := &st.Counties[0]
	c.Population = 1000
	c.BasicSatisfaction = 1.0

	DemographySystem{}.Tick(st, m)

	// Fully fed: births at full rate, deaths at the base rate only.
	if got := c.BirthsThisMonth; math.Abs(got-4) > 1e-9 {
		t.Fatalf("births=%v want 4", got)
	}
	if got := c.DeathsThisMonth; math.Abs(got-3) > 1e-9 {
		t.Fatalf("deaths=%v want 3", got)
	}
	if got := c.Population; math.Abs(got-1001) > 1e-9 {
		t.Fatalf("population=%v want 1001", got)
	}
}

func TestDemography_StarvationDrivesDeaths(t *testing.T) {
	st, m := oneCountyWorld(breadCatalog())
	c := &st.Counties[0]
	c.Population = 1000
	c.BasicSatisfaction = 0

	DemographySystem{}.Tick(st, m)

	// Zero satisfaction: no effective births, base plus starvation deaths.
	if c.BirthsThisMonth != 0 {
		t.Fatalf("births=%v want 0", c.BirthsThisMonth)
	}
	want := 1000 * (st.Params.DeathRateMonthly + st.Params.StarvationDeaths)
	if got := c.DeathsThisMonth; math.Abs(got-want) > 1e-9 {
		t.Fatalf("deaths=%v want %v", got, want)
	}
}

func TestDemography_MigrationTowardFedCounties(t *testing.T) {
	cat := breadCatalog()
	st := economy.NewState(cat, economy.DefaultParams(), nil, 2, 1, 1)
	m := world.NewMapData([]int{0, 0}, []int{0}, []world.Cell{{X: 0, Y: 0}, {X: 1, Y: 0}})

	st.Counties[0].Population = 1000
	st.Counties[0].BasicSatisfaction = 0.2
	st.Counties[1].Population = 1000
	st.Counties[1].BasicSatisfaction = 0.9

	before := st.Counties[0].Population + st.Counties[1].Population

	DemographySystem{}.Tick(st, m)

	if st.Counties[0].NetMigrationThisMonth >= 0 {
		t.Fatalf("hungry county migration=%v want outflow", st.Counties[0].NetMigrationThisMonth)
	}
	if st.Counties[1].NetMigrationThisMonth <= 0 {
		t.Fatalf("fed county migration=%v want inflow", st.Counties[1].NetMigrationThisMonth)
	}
	// Births and deaths aside, migration itself conserves heads.
	moved := -st.Counties[0].NetMigrationThisMonth
	if math.Abs(st.Counties[1].NetMigrationThisMonth-moved) > 1e-9 {
		t.Fatalf("migration not conserved: out=%v in=%v", moved, st.Counties[1].NetMigrationThisMonth)
	}

	after := st.Counties[0].Population + st.Counties[1].Population
	wantDelta := 0.0
	for _, c := range []int{0, 1} {
		wantDelta += st.Counties[c].BirthsThisMonth - st.Counties[c].DeathsThisMonth
	}
	if math.Abs((after-before)-wantDelta) > 1e-9 {
		t.Fatalf("population delta=%v want births-deaths %v", after-before, wantDelta)
	}
}

func TestDemography_RunsMonthly(t *testing.T) {
	if got := (DemographySystem{}).Interval(); got != DaysPerMonth {
		t.Fatalf("interval=%d want %d", got, DaysPerMonth)
	}
}
