// Inter-realm market clearing — realms trade surplus against deficit through
// a single clearing price per good per day, gated by treasuries.
package engine

import (
	"github.com/talgya/crownlands/internal/economy"
	"github.com/talgya/crownlands/internal/world"
)

// RealmMarketSystem balances supply, demand, and treasury constraints across
// all realms. Goods are processed independently in the fixed buy-priority
// order: treasury spent on an earlier good is unavailable for a later one
// within the same day.
type RealmMarketSystem struct {
	// per-good scratch, realm-indexed, discarded after each good
	netPosition     []float64
	effectiveDemand []float64
}

func (s *RealmMarketSystem) Name() string  { return "realmMarket" }
func (s *RealmMarketSystem) Interval() int { return 1 }

func (s *RealmMarketSystem) Initialize(st *economy.State, m *world.MapData) {
	s.netPosition = make([]float64, len(st.Realms))
	s.effectiveDemand = make([]float64, len(st.Realms))
}

func (s *RealmMarketSystem) Tick(st *economy.State, m *world.MapData) {
	for i := range st.Realms {
		r := &st.Realms[i]
		r.TradeImports = [economy.GoodCount]float64{}
		r.TradeExports = [economy.GoodCount]float64{}
		r.TradeSpending = 0
		r.TradeRevenue = 0
		r.TradeTariffsCollected = 0
	}

	for _, g := range st.Catalog.BuyPriority {
		s.clearGood(st, g)
	}
}

// clearGood runs the clearing algorithm for one good. When either side of the
// market is empty the good skips trading and its price holds at the previous
// published value.
func (s *RealmMarketSystem) clearGood(st *economy.State, g economy.Good) {
	realms := st.Realms

	// Self-satisfaction: a realm never buys units it already holds.
	totalSupply := 0.0
	totalDemand := 0.0
	for i := range realms {
		r := &realms[i]
		selfSatisfy := r.Stockpile[g]
		if r.Deficit[g] < selfSatisfy {
			selfSatisfy = r.Deficit[g]
		}
		r.Stockpile[g] -= selfSatisfy
		r.Deficit[g] -= selfSatisfy

		net := r.Stockpile[g] - r.Deficit[g]
		s.netPosition[i] = net
		if net > 0 {
			totalSupply += net
		} else if net < 0 {
			totalDemand += -net
		}
	}
	if totalSupply <= 0 || totalDemand <= 0 {
		return
	}

	def := &st.Catalog.Goods[g]
	price := def.BasePrice * totalDemand / totalSupply
	if price < def.MinPrice {
		price = def.MinPrice
	}
	if price > def.MaxPrice {
		price = def.MaxPrice
	}
	st.Prices[g] = price

	// Treasury-limited demand: a realm cannot promise more than it can pay
	// for at the clearing price.
	totalEffective := 0.0
	for i := range realms {
		s.effectiveDemand[i] = 0
		if s.netPosition[i] >= 0 {
			continue
		}
		want := -s.netPosition[i]
		canAfford := realms[i].Treasury / price
		if want > canAfford {
			want = canAfford
		}
		s.effectiveDemand[i] = want
		totalEffective += want
	}
	if totalEffective <= 0 {
		return
	}

	// The short side is fully served; the long side is rationed pro-rata.
	fillRatio := 1.0
	if totalEffective > totalSupply {
		fillRatio = totalSupply / totalEffective
	}
	sellRatio := 1.0
	if totalSupply > totalEffective {
		sellRatio = totalEffective / totalSupply
	}

	for i := range realms {
		r := &realms[i]
		if s.netPosition[i] > 0 {
			sold := s.netPosition[i] * sellRatio
			r.Stockpile[g] -= sold
			r.Treasury += sold * price
			r.TradeExports[g] += sold
			r.TradeRevenue += sold * price
		} else if s.effectiveDemand[i] > 0 {
			bought := s.effectiveDemand[i] * fillRatio
			r.Stockpile[g] += bought
			r.Treasury -= bought * price
			r.TradeImports[g] += bought
			r.TradeSpending += bought * price
			// Import duty is a merchant-to-crown transfer inside the realm
			// aggregate: recorded, but the treasury total is unchanged.
			r.TradeTariffsCollected += st.Params.TariffRate * bought * price
		}
	}
}
