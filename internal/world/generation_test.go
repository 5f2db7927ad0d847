package world

import (
	"reflect"
	"testing"

	"github.com/talgya/crownlands/internal/economy"
)

func loadConfigs(t *testing.T) (*economy.Catalog, []economy.FacilityDef, economy.Params) {
	t.Helper()
	cat, err := economy.LoadCatalog("../../configs/goods.yaml")
	if err != nil {
		t.Fatalf("load catalog: %v", err)
	}
	defs, err := economy.LoadFacilityDefs("../../configs/facilities.yaml", cat)
	if err != nil {
		t.Fatalf("load facility defs: %v", err)
	}
	return cat, defs, economy.DefaultParams()
}

func TestGenerate_TopologySizes(t *testing.T) {
	cat, defs, params := loadConfigs(t)
	cfg := SmallTestConfig()
	m, st := Generate(cfg, cat, params, defs)

	wantCounties := cfg.Realms * cfg.ProvincesPerRealm * cfg.CountiesPerProvince
	if m.Counties() != wantCounties || len(st.Counties) != wantCounties {
		t.Fatalf("counties=%d/%d want %d", m.Counties(), len(st.Counties), wantCounties)
	}
	if m.Provinces() != cfg.Realms*cfg.ProvincesPerRealm {
		t.Fatalf("provinces=%d want %d", m.Provinces(), cfg.Realms*cfg.ProvincesPerRealm)
	}
	if m.Realms() != cfg.Realms {
		t.Fatalf("realms=%d want %d", m.Realms(), cfg.Realms)
	}

	// Membership lookups agree in both directions.
	for c := 0; c < m.Counties(); c++ {
		p := m.ProvinceOf(c)
		found := false
		for _, cc := range m.CountiesOf(p) {
			if cc == c {
				found = true
			}
		}
		if !found {
			t.Fatalf("county %d missing from CountiesOf(%d)", c, p)
		}
		r := m.RealmOf(c)
		if r != m.ProvinceRealm[p] {
			t.Fatalf("county %d realm mismatch: %d vs %d", c, r, m.ProvinceRealm[p])
		}
	}
}

func TestGenerate_Deterministic(t *testing.T) {
	cat, defs, params := loadConfigs(t)
	cfg := SmallTestConfig()

	m1, st1 := Generate(cfg, cat, params, defs)
	m2, st2 := Generate(cfg, cat, params, defs)

	if !reflect.DeepEqual(m1.CountyProvince, m2.CountyProvince) {
		t.Fatalf("topology diverged between identical seeds")
	}
	if !reflect.DeepEqual(st1.Counties, st2.Counties) {
		t.Fatalf("county state diverged between identical seeds")
	}
	if !reflect.DeepEqual(st1.Facilities, st2.Facilities) {
		t.Fatalf("facility placement diverged between identical seeds")
	}
}

func TestGenerate_SeedChangesWorld(t *testing.T) {
	cat, defs, params := loadConfigs(t)
	cfg := SmallTestConfig()
	_, st1 := Generate(cfg, cat, params, defs)

	cfg.Seed = cfg.Seed + 1
	_, st2 := Generate(cfg, cat, params, defs)

	if reflect.DeepEqual(st1.Counties, st2.Counties) {
		t.Fatalf("different seeds produced identical county state")
	}
}

func TestGenerate_CountyEconomies(t *testing.T) {
	cat, defs, params := loadConfigs(t)
	m, st := Generate(SmallTestConfig(), cat, params, defs)
	_ = m

	for i := range st.Counties {
		c := &st.Counties[i]
		if c.Population < 2000 || c.Population > 10000 {
			t.Fatalf("county %d population %v out of [2000, 10000]", i, c.Population)
		}
		if c.BasicSatisfaction != 1.0 {
			t.Fatalf("county %d starts at satisfaction %v want 1.0", i, c.BasicSatisfaction)
		}
		for g := 0; g < economy.GoodCount; g++ {
			if c.Productivity[g] < 0 {
				t.Fatalf("county %d negative productivity for %s", i, economy.Good(g).Name())
			}
			want := c.Population * cat.Goods[g].NeedPerCapita * 3
			if c.Stock[g] != want {
				t.Fatalf("county %d initial %s stock=%v want 3 days of need %v",
					i, economy.Good(g).Name(), c.Stock[g], want)
			}
		}
	}
}

func TestGenerate_FacilityPlacementsValid(t *testing.T) {
	cat, defs, params := loadConfigs(t)
	m, st := Generate(SmallTestConfig(), cat, params, defs)

	for _, f := range st.Facilities {
		if f.CountyID < 0 || f.CountyID >= m.Counties() {
			t.Fatalf("facility %d placed in unknown county %d", f.ID, f.CountyID)
		}
		if f.TypeID < 0 || f.TypeID >= len(st.Defs) {
			t.Fatalf("facility %d has unknown type %d", f.ID, f.TypeID)
		}
		def := &st.Defs[f.TypeID]
		c := &st.Counties[f.CountyID]
		if c.Productivity[def.InputGood] < def.PlacementMinProductivity {
			t.Fatalf("facility %d (%s) placed below input productivity floor", f.ID, def.Name)
		}
		if def.LaborRequired() > def.MaxLaborFraction*c.Population {
			t.Fatalf("facility %d (%s) unstaffable in county %d", f.ID, def.Name, f.CountyID)
		}
		if !f.IsActive {
			t.Fatalf("facility %d placed inactive", f.ID)
		}
	}
}

func TestGenerate_StartingTreasuries(t *testing.T) {
	cat, defs, params := loadConfigs(t)
	_, st := Generate(SmallTestConfig(), cat, params, defs)

	for i := range st.Realms {
		if st.Realms[i].Treasury != 5000 {
			t.Fatalf("realm %d treasury=%v want 5000", i, st.Realms[i].Treasury)
		}
	}
	for i := range st.Provinces {
		if st.Provinces[i].Treasury != 1000 {
			t.Fatalf("province %d treasury=%v want 1000", i, st.Provinces[i].Treasury)
		}
	}
	for g := 0; g < economy.GoodCount; g++ {
		if st.Prices[g] != cat.Goods[g].BasePrice {
			t.Fatalf("price[%s]=%v want base %v",
				economy.Good(g).Name(), st.Prices[g], cat.Goods[g].BasePrice)
		}
	}
}
