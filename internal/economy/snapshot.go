// EconomySnapshot — the per-day time-series record reduced from all tier
// states. Purely derived; never mutated after creation.
package economy

// EconomySnapshot aggregates one simulated day of economic state.
type EconomySnapshot struct {
	Day int `json:"day"`

	StockByGood       [GoodCount]float64 `json:"stockByGood"`
	ProductionByGood  [GoodCount]float64 `json:"productionByGood"`
	ConsumptionByGood [GoodCount]float64 `json:"consumptionByGood"`
	UnmetNeedByGood   [GoodCount]float64 `json:"unmetNeedByGood"`

	TotalStock       float64 `json:"totalStock"`
	TotalProduction  float64 `json:"totalProduction"`
	TotalConsumption float64 `json:"totalConsumption"`
	TotalUnmetNeed   float64 `json:"totalUnmetNeed"`

	SurplusCounties  int `json:"surplusCounties"`
	DeficitCounties  int `json:"deficitCounties"`
	StarvingCounties int `json:"starvingCounties"`

	DucalTaxByGood    [GoodCount]float64 `json:"ducalTaxByGood"`
	DucalReliefByGood [GoodCount]float64 `json:"ducalReliefByGood"`
	DucalTax          float64            `json:"ducalTax"`
	DucalRelief       float64            `json:"ducalRelief"`

	ProvincialStockpile float64 `json:"provincialStockpile"`
	RoyalStockpile      float64 `json:"royalStockpile"`

	ProvinceTreasury float64 `json:"provinceTreasury"`
	RealmTreasury    float64 `json:"treasury"`

	GoldMinted   float64 `json:"goldMinted"`
	SilverMinted float64 `json:"silverMinted"`
	CrownsMinted float64 `json:"crownsMinted"`

	MonetaryTaxCrowns   float64 `json:"monetaryTaxCrowns"`
	AdminCrownsCost     float64 `json:"adminCrownsCost"`
	TradeTollsCollected float64 `json:"tradeTollsCollected"`

	MarketPrices       [GoodCount]float64 `json:"marketPrices"`
	TradeImportsByGood [GoodCount]float64 `json:"tradeImportsByGood"`
	TradeExportsByGood [GoodCount]float64 `json:"tradeExportsByGood"`
	RealmDeficitByGood [GoodCount]float64 `json:"realmDeficitByGood"`
	TradeSpending      float64            `json:"tradeSpending"`
	TradeRevenue       float64            `json:"tradeRevenue"`
	TariffsCollected   float64            `json:"tradeTariffsCollected"`

	TotalPopulation      float64 `json:"totalPopulation"`
	AvgBasicSatisfaction float64 `json:"avgBasicSatisfaction"`
	MinBasicSatisfaction float64 `json:"minBasicSatisfaction"`
	MaxBasicSatisfaction float64 `json:"maxBasicSatisfaction"`
	CountiesInDistress   int     `json:"countiesInDistress"`

	TotalBirths float64 `json:"totalBirths"`
	TotalDeaths float64 `json:"totalDeaths"`
}

// BuildSnapshot reduces the tier arenas into one snapshot. It never mutates
// its input; callers may invoke it at any point between ticks.
func BuildSnapshot(st *State) EconomySnapshot {
	snap := EconomySnapshot{
		Day:                  st.Day,
		MarketPrices:         st.Prices,
		MinBasicSatisfaction: 1,
	}

	for i := range st.Counties {
		c := &st.Counties[i]
		deficit := false
		starving := false
		surplus := true
		for g := 0; g < GoodCount; g++ {
			snap.StockByGood[g] += c.Stock[g]
			snap.ProductionByGood[g] += c.Production[g]
			snap.ConsumptionByGood[g] += c.Consumption[g]
			snap.UnmetNeedByGood[g] += c.UnmetNeed[g]
			snap.DucalTaxByGood[g] += c.TaxPaid[g]
			snap.DucalReliefByGood[g] += c.Relief[g]

			if !st.Catalog.Goods[g].Basic {
				continue
			}
			need := c.Population * st.Catalog.Goods[g].NeedPerCapita
			if c.UnmetNeed[g] > 0 {
				deficit = true
			}
			if need > 0 && c.Stock[g] < need*st.Params.SurplusThresholdDays {
				surplus = false
			}
		}
		if c.BasicSatisfaction < 0.25 {
			starving = true
		}
		if deficit {
			snap.DeficitCounties++
		}
		if starving {
			snap.StarvingCounties++
		}
		if surplus && !deficit {
			snap.SurplusCounties++
		}
		if c.BasicSatisfaction < 0.5 {
			snap.CountiesInDistress++
		}

		snap.TotalPopulation += c.Population
		snap.TotalBirths += c.BirthsThisMonth
		snap.TotalDeaths += c.DeathsThisMonth
		if c.BasicSatisfaction < snap.MinBasicSatisfaction {
			snap.MinBasicSatisfaction = c.BasicSatisfaction
		}
		if c.BasicSatisfaction > snap.MaxBasicSatisfaction {
			snap.MaxBasicSatisfaction = c.BasicSatisfaction
		}
		snap.AvgBasicSatisfaction += c.BasicSatisfaction * c.Population
	}
	if snap.TotalPopulation > 0 {
		snap.AvgBasicSatisfaction /= snap.TotalPopulation
	} else {
		snap.AvgBasicSatisfaction = 1
		snap.MinBasicSatisfaction = 1
	}

	for g := 0; g < GoodCount; g++ {
		snap.TotalStock += snap.StockByGood[g]
		snap.TotalProduction += snap.ProductionByGood[g]
		snap.TotalConsumption += snap.ConsumptionByGood[g]
		snap.TotalUnmetNeed += snap.UnmetNeedByGood[g]
		snap.DucalTax += snap.DucalTaxByGood[g]
		snap.DucalRelief += snap.DucalReliefByGood[g]
	}

	for i := range st.Provinces {
		p := &st.Provinces[i]
		for g := 0; g < GoodCount; g++ {
			snap.ProvincialStockpile += p.Stockpile[g]
			snap.StockByGood[g] += p.Stockpile[g]
			snap.TotalStock += p.Stockpile[g]
		}
		snap.ProvinceTreasury += p.Treasury
		snap.MonetaryTaxCrowns += p.MonetaryTaxPaidToRealm
		snap.AdminCrownsCost += p.AdminCrownsCost
		snap.TradeTollsCollected += p.TradeTollsCollected
	}

	// Facility buffers count toward system-wide stock.
	for i := range st.Facilities {
		f := &st.Facilities[i]
		def := &st.Defs[f.TypeID]
		snap.StockByGood[def.InputGood] += f.InputBuffer
		snap.StockByGood[def.OutputGood] += f.OutputBuffer
		snap.TotalStock += f.InputBuffer + f.OutputBuffer
	}

	for i := range st.Realms {
		r := &st.Realms[i]
		for g := 0; g < GoodCount; g++ {
			snap.RoyalStockpile += r.Stockpile[g]
			snap.StockByGood[g] += r.Stockpile[g]
			snap.TotalStock += r.Stockpile[g]
			snap.TradeImportsByGood[g] += r.TradeImports[g]
			snap.TradeExportsByGood[g] += r.TradeExports[g]
			snap.RealmDeficitByGood[g] += r.Deficit[g]
		}
		snap.RealmTreasury += r.Treasury
		snap.GoldMinted += r.GoldMinted
		snap.SilverMinted += r.SilverMinted
		snap.CrownsMinted += r.CrownsMinted
		snap.AdminCrownsCost += r.AdminCrownsCost
		snap.TradeSpending += r.TradeSpending
		snap.TradeRevenue += r.TradeRevenue
		snap.TariffsCollected += r.TradeTariffsCollected
	}

	return snap
}
