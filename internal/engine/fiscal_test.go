package engine

import (
	"math"
	"testing"

	"github.com/talgya/crownlands/internal/economy"
	"github.com/talgya/crownlands/internal/world"
)

// fiscalWorld builds two counties under one province under one realm with
// bread as the staple and precious ore present.
func fiscalWorld() (*economy.State, *world.MapData) {
	cat := &economy.Catalog{}
	cat.Goods[economy.GoodBread] = economy.GoodDef{
		Name: "bread", BasePrice: 1, MinPrice: 0.5, MaxPrice: 3,
		Tradeable: true, Basic: true, NeedPerCapita: 1,
	}
	cat.Goods[economy.GoodGoldOre] = economy.GoodDef{Name: "goldOre"}
	cat.Goods[economy.GoodSilverOre] = economy.GoodDef{Name: "silverOre"}
	cat.BuyPriority = []economy.Good{economy.GoodBread}

	st := economy.NewState(cat, economy.DefaultParams(), nil, 2, 1, 1)
	m := world.NewMapData([]int{0, 0}, []int{0}, []world.Cell{{X: 0, Y: 0}, {X: 1, Y: 0}})
	return st, m
}

func TestFiscal_GoodsTaxAboveThreshold(t *testing.T) {
	st, m := fiscalWorld()
	c := &st.Counties[0]
	c.Population = 100
	c.Stock[economy.GoodBread] = 3000 // threshold = 100 * 1 * 20 days = 2000

	sys := &FiscalSystem{}
	sys.Initialize(st, m)
	sys.resetDaily(st)
	sys.collectGoodsTax(st, m)

	if c.TaxPaid[economy.GoodBread] != 100 {
		t.Fatalf("tax=%v want 100 (10%% of 1000 surplus)", c.TaxPaid[economy.GoodBread])
	}
	if c.Stock[economy.GoodBread] != 2900 {
		t.Fatalf("stock=%v want 2900", c.Stock[economy.GoodBread])
	}
	// Realm share 25%, the rest stays in the ducal granary.
	if st.Realms[0].Stockpile[economy.GoodBread] != 25 {
		t.Fatalf("realm take=%v want 25", st.Realms[0].Stockpile[economy.GoodBread])
	}
	if st.Provinces[0].Stockpile[economy.GoodBread] != 75 {
		t.Fatalf("province take=%v want 75", st.Provinces[0].Stockpile[economy.GoodBread])
	}
}

func TestFiscal_BelowThresholdUntaxed(t *testing.T) {
	st, m := fiscalWorld()
	c := &st.Counties[0]
	c.Population = 100
	c.Stock[economy.GoodBread] = 1500

	sys := &FiscalSystem{}
	sys.Initialize(st, m)
	sys.resetDaily(st)
	sys.collectGoodsTax(st, m)

	if c.TaxPaid[economy.GoodBread] != 0 || c.Stock[economy.GoodBread] != 1500 {
		t.Fatalf("below-threshold county taxed: paid=%v stock=%v",
			c.TaxPaid[economy.GoodBread], c.Stock[economy.GoodBread])
	}
}

func TestFiscal_PreciousOreGoesEntirelyToRealm(t *testing.T) {
	st, m := fiscalWorld()
	c := &st.Counties[0]
	c.Population = 100
	c.Stock[economy.GoodGoldOre] = 10 // zero need, so the whole stock is surplus

	sys := &FiscalSystem{}
	sys.Initialize(st, m)
	sys.resetDaily(st)
	sys.collectGoodsTax(st, m)

	if got := st.Realms[0].Stockpile[economy.GoodGoldOre]; got != 1 {
		t.Fatalf("realm gold=%v want 1 (full tax share)", got)
	}
	if got := st.Provinces[0].Stockpile[economy.GoodGoldOre]; got != 0 {
		t.Fatalf("province gold=%v want 0", got)
	}
}

func TestFiscal_ReliefProRata(t *testing.T) {
	st, m := fiscalWorld()
	st.Counties[0].UnmetNeed[economy.GoodBread] = 40
	st.Counties[1].UnmetNeed[economy.GoodBread] = 20
	st.Provinces[0].Stockpile[economy.GoodBread] = 30

	sys := &FiscalSystem{}
	sys.Initialize(st, m)
	sys.resetDaily(st)
	sys.distributeRelief(st, m)

	if got := st.Counties[0].Relief[economy.GoodBread]; got != 20 {
		t.Fatalf("county 0 relief=%v want 20", got)
	}
	if got := st.Counties[1].Relief[economy.GoodBread]; got != 10 {
		t.Fatalf("county 1 relief=%v want 10", got)
	}
	if got := st.Provinces[0].Stockpile[economy.GoodBread]; got != 0 {
		t.Fatalf("granary=%v want 0", got)
	}
}

func TestFiscal_ReliefNeverExceedsNeed(t *testing.T) {
	st, m := fiscalWorld()
	st.Counties[0].UnmetNeed[economy.GoodBread] = 10
	st.Provinces[0].Stockpile[economy.GoodBread] = 100

	sys := &FiscalSystem{}
	sys.Initialize(st, m)
	sys.resetDaily(st)
	sys.distributeRelief(st, m)

	if got := st.Counties[0].Relief[economy.GoodBread]; got != 10 {
		t.Fatalf("relief=%v want capped at 10", got)
	}
	if got := st.Provinces[0].Stockpile[economy.GoodBread]; got != 90 {
		t.Fatalf("granary=%v want 90", got)
	}
}

func TestFiscal_MintingRates(t *testing.T) {
	st, m := fiscalWorld()
	r := &st.Realms[0]
	r.Stockpile[economy.GoodGoldOre] = 2
	r.Stockpile[economy.GoodSilverOre] = 10
	r.Treasury = 100

	sys := &FiscalSystem{}
	sys.Initialize(st, m)
	sys.resetDaily(st)
	sys.mint(st)

	// 2 kg gold at 120 + 10 kg silver at 8.
	if r.CrownsMinted != 320 {
		t.Fatalf("minted=%v want 320", r.CrownsMinted)
	}
	if r.Treasury != 420 {
		t.Fatalf("treasury=%v want 420", r.Treasury)
	}
	if r.Stockpile[economy.GoodGoldOre] != 0 || r.Stockpile[economy.GoodSilverOre] != 0 {
		t.Fatalf("ore not consumed by the mint")
	}
	if r.GoldMinted != 2 || r.SilverMinted != 10 {
		t.Fatalf("minted kg=%v/%v want 2/10", r.GoldMinted, r.SilverMinted)
	}
}

func TestFiscal_AdminUpkeepClampedToTreasury(t *testing.T) {
	st, m := fiscalWorld()
	st.Counties[0].Population = 1000
	st.Counties[1].Population = 1000
	st.Provinces[0].Treasury = 1 // owes 2000 * 0.002 = 4

	sys := &FiscalSystem{}
	sys.Initialize(st, m)
	sys.resetDaily(st)
	sys.adminUpkeep(st, m)

	p := &st.Provinces[0]
	if p.Treasury != 0 {
		t.Fatalf("treasury=%v want drained to 0", p.Treasury)
	}
	if p.AdminCrownsCost != 1 {
		t.Fatalf("admin cost=%v want clamped to 1", p.AdminCrownsCost)
	}
}

func TestFiscal_MonetaryTaxRemitsSurplus(t *testing.T) {
	st, m := fiscalWorld()
	st.Counties[0].Population = 1000
	st.Provinces[0].Treasury = 1500

	sys := &FiscalSystem{}
	sys.Initialize(st, m)
	sys.resetDaily(st)
	sys.monetaryTax(st, m)

	p := &st.Provinces[0]
	hearth := 1000 * st.Params.HearthTaxPerCapita
	surplus := 1500 + hearth - st.Params.ProvinceTreasuryReserve
	remit := st.Params.MonetaryTaxRate * surplus

	if math.Abs(p.MonetaryTaxCollected-hearth) > 1e-9 {
		t.Fatalf("hearth tax=%v want %v", p.MonetaryTaxCollected, hearth)
	}
	if math.Abs(p.MonetaryTaxPaidToRealm-remit) > 1e-9 {
		t.Fatalf("remit=%v want %v", p.MonetaryTaxPaidToRealm, remit)
	}
	if math.Abs(st.Realms[0].Treasury-remit) > 1e-9 {
		t.Fatalf("realm treasury=%v want %v", st.Realms[0].Treasury, remit)
	}
	if math.Abs(p.Treasury-(1500+hearth-remit)) > 1e-9 {
		t.Fatalf("province treasury=%v want %v", p.Treasury, 1500+hearth-remit)
	}
}

func TestFiscal_GranaryRequisitionBuysAtBasePrice(t *testing.T) {
	st, m := fiscalWorld()
	c := &st.Counties[0]
	c.Population = 100
	// Keep floor is 100 * 1 * 20 / 2 = 1000; everything above is sellable.
	c.Stock[economy.GoodBread] = 1200
	st.Counties[1].Population = 0
	p := &st.Provinces[0]
	p.Treasury = 10000

	sys := &FiscalSystem{}
	sys.Initialize(st, m)
	sys.resetDaily(st)
	sys.requisitionGranary(st, m)

	// Target = 5 days * 100 demand = 500, granary empty, county offers 200.
	if got := p.GranaryRequisitioned[economy.GoodBread]; got != 200 {
		t.Fatalf("requisitioned=%v want 200", got)
	}
	if got := p.Stockpile[economy.GoodBread]; got != 200 {
		t.Fatalf("granary=%v want 200", got)
	}
	if got := p.GranaryCrownsCost; got != 200 {
		t.Fatalf("cost=%v want 200 (base price 1)", got)
	}
	if got := c.Stock[economy.GoodBread]; got != 1000 {
		t.Fatalf("county stock=%v want 1000 (keep floor)", got)
	}
	if got := p.Treasury; got != 9800 {
		t.Fatalf("treasury=%v want 9800", got)
	}
}
