// World generation using layered simplex noise.
// Generates fertility, forest, and ore fields, then derives per-county
// productivity, populations, and facility placements. Deterministic from seed.
package world

import (
	"math"

	opensimplex "github.com/ojrac/opensimplex-go"

	"github.com/talgya/crownlands/internal/economy"
)

// GenConfig holds world generation parameters.
type GenConfig struct {
	Realms              int
	ProvincesPerRealm   int
	CountiesPerProvince int
	Seed                int64
	GridSize            int // noise sampling extent per realm region
}

// DefaultGenConfig returns a mid-sized world: 4 realms of 3 provinces of
// 5 counties.
func DefaultGenConfig() GenConfig {
	return GenConfig{
		Realms:              4,
		ProvincesPerRealm:   3,
		CountiesPerProvince: 5,
		Seed:                42,
		GridSize:            64,
	}
}

// SmallTestConfig returns a tiny world for tests: 2 realms, 1 province each,
// 3 counties per province.
func SmallTestConfig() GenConfig {
	return GenConfig{
		Realms:              2,
		ProvincesPerRealm:   1,
		CountiesPerProvince: 3,
		Seed:                7,
		GridSize:            32,
	}
}

// Generate builds the territory topology and the initial economic state.
func Generate(cfg GenConfig, cat *economy.Catalog, params economy.Params, defs []economy.FacilityDef) (*MapData, *economy.State) {
	elevNoise := opensimplex.NewNormalized(cfg.Seed)
	rainNoise := opensimplex.NewNormalized(cfg.Seed + 1)
	oreNoise := opensimplex.NewNormalized(cfg.Seed + 2)

	counties := cfg.Realms * cfg.ProvincesPerRealm * cfg.CountiesPerProvince
	provinces := cfg.Realms * cfg.ProvincesPerRealm

	countyProvince := make([]int, counties)
	provinceRealm := make([]int, provinces)
	seats := make([]Cell, counties)

	for p := 0; p < provinces; p++ {
		provinceRealm[p] = p / cfg.ProvincesPerRealm
	}

	st := economy.NewState(cat, params, defs, counties, provinces, cfg.Realms)

	for c := 0; c < counties; c++ {
		province := c / cfg.CountiesPerProvince
		realm := provinceRealm[province]
		countyProvince[c] = province

		// Counties of a realm scatter across that realm's grid region.
		local := c % (cfg.ProvincesPerRealm * cfg.CountiesPerProvince)
		seat := Cell{
			X: realm*cfg.GridSize + (local*13)%cfg.GridSize,
			Y: (local * 29) % cfg.GridSize,
		}
		seats[c] = seat

		x := float64(seat.X) * 0.07
		y := float64(seat.Y) * 0.07

		elev := elevNoise.Eval2(x, y)
		rain := rainNoise.Eval2(x, y)
		ore := oreNoise.Eval2(x, y)

		// Biome fields in [0,1].
		fertility := rain * (1.0 - 0.6*elev)
		forest := rain * clamp01(1.2-math.Abs(elev-0.5)*2)
		oreField := ore * elev
		coast := clamp01(1.0 - elev*3.0) // low ground borders the sea

		county := &st.Counties[c]
		county.Population = math.Floor(2000 + 8000*fertility)
		for g := 0; g < economy.GoodCount; g++ {
			w := cat.Goods[g].Productivity
			prod := w.Base + w.Fertility*fertility + w.Forest*forest + w.Ore*oreField + w.Coast*coast
			if prod < 0 {
				prod = 0
			}
			county.Productivity[g] = prod
			// Start with a few days of demand on hand.
			county.Stock[g] = county.Population * cat.Goods[g].NeedPerCapita * 3
		}
	}

	m := NewMapData(countyProvince, provinceRealm, seats)
	placeFacilities(st, m)

	// Realms start with a modest treasury so markets can move on day one.
	for i := range st.Realms {
		st.Realms[i].Treasury = 5000
	}
	for i := range st.Provinces {
		st.Provinces[i].Treasury = 1000
	}

	return m, st
}

// placeFacilities seeds production facilities where the input good is
// locally productive and the county can staff them.
func placeFacilities(st *economy.State, m *MapData) {
	nextID := 1
	for c := range st.Counties {
		county := &st.Counties[c]
		for d := range st.Defs {
			def := &st.Defs[d]
			if county.Productivity[def.InputGood] < def.PlacementMinProductivity {
				continue
			}
			if def.LaborRequired() > def.MaxLaborFraction*county.Population {
				continue
			}
			// Thin out placements so not every county hosts every type.
			if (c+d)%3 != 0 {
				continue
			}
			st.Facilities = append(st.Facilities, economy.Facility{
				ID:       nextID,
				TypeID:   d,
				Cell:     m.CountySeat[c].X,
				CountyID: c,
				IsActive: true,
			})
			nextID++
		}
	}
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
