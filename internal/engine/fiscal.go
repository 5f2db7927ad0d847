// Feudal tax, relief, minting, and crown upkeep — the intra-realm fiscal
// pipeline, bottom-up then top-down.
package engine

import (
	"github.com/talgya/crownlands/internal/economy"
	"github.com/talgya/crownlands/internal/world"
)

// FiscalSystem collects goods taxes upward, distributes relief downward,
// mints currency from precious ore, and settles crown upkeep and monetary
// taxes. Runs daily after facility throughput and before any trade.
type FiscalSystem struct {
	// scratch, realm/province-indexed, reused across ticks
	collected [][economy.GoodCount]float64 // per-province goods tax intake today
}

func (s *FiscalSystem) Name() string  { return "fiscal" }
func (s *FiscalSystem) Interval() int { return 1 }

func (s *FiscalSystem) Initialize(st *economy.State, m *world.MapData) {
	s.collected = make([][economy.GoodCount]float64, len(st.Provinces))
}

func (s *FiscalSystem) Tick(st *economy.State, m *world.MapData) {
	s.resetDaily(st)
	s.collectGoodsTax(st, m)
	s.distributeRelief(st, m)
	s.mint(st)
	s.adminUpkeep(st, m)
	s.monetaryTax(st, m)
	s.requisitionGranary(st, m)
}

func (s *FiscalSystem) resetDaily(st *economy.State) {
	for i := range st.Counties {
		c := &st.Counties[i]
		c.TaxPaid = [economy.GoodCount]float64{}
		c.Relief = [economy.GoodCount]float64{}
	}
	for i := range st.Provinces {
		p := &st.Provinces[i]
		p.ReliefGiven = [economy.GoodCount]float64{}
		p.GranaryRequisitioned = [economy.GoodCount]float64{}
		p.MonetaryTaxCollected = 0
		p.MonetaryTaxPaidToRealm = 0
		p.AdminCrownsCost = 0
		p.GranaryCrownsCost = 0
	}
	for i := range st.Realms {
		r := &st.Realms[i]
		r.GoldMinted = 0
		r.SilverMinted = 0
		r.CrownsMinted = 0
		r.MonetaryTaxCollected = 0
		r.AdminCrownsCost = 0
	}
	for i := range s.collected {
		s.collected[i] = [economy.GoodCount]float64{}
	}
}

// collectGoodsTax taxes county surplus above a demand-days threshold into the
// provincial granary, passing a share (all of it, for precious ore) up to the
// realm.
func (s *FiscalSystem) collectGoodsTax(st *economy.State, m *world.MapData) {
	for ci := range st.Counties {
		c := &st.Counties[ci]
		for g := 0; g < economy.GoodCount; g++ {
			demand := c.Population * st.Catalog.Goods[g].NeedPerCapita
			threshold := demand * st.Params.SurplusThresholdDays
			if c.Stock[g] <= threshold {
				continue
			}
			tax := st.Params.GoodsTaxRate * (c.Stock[g] - threshold)
			c.Stock[g] -= tax
			c.TaxPaid[g] = tax
			s.collected[m.ProvinceOf(ci)][g] += tax
		}
	}

	for pi := range st.Provinces {
		p := &st.Provinces[pi]
		realm := &st.Realms[m.ProvinceRealm[pi]]
		for g := 0; g < economy.GoodCount; g++ {
			take := s.collected[pi][g]
			if take <= 0 {
				continue
			}
			share := st.Params.RealmShare * take
			if g == int(economy.GoodGoldOre) || g == int(economy.GoodSilverOre) {
				share = take // all precious ore goes to the mint
			}
			realm.Stockpile[g] += share
			p.Stockpile[g] += take - share
		}
	}
}

// distributeRelief hands stockpile down to shortfall counties pro-rata, so no
// recipient gets more than it needs and no stockpile goes negative. Realm
// overflow trickles to provinces with residual shortfall for tomorrow's round.
func (s *FiscalSystem) distributeRelief(st *economy.State, m *world.MapData) {
	residual := make([]float64, len(st.Provinces))

	for g := 0; g < economy.GoodCount; g++ {
		for pi := range st.Provinces {
			p := &st.Provinces[pi]
			counties := m.CountiesOf(pi)

			total := 0.0
			for _, ci := range counties {
				total += st.Counties[ci].UnmetNeed[g]
			}
			residual[pi] = total
			if total <= 0 || p.Stockpile[g] <= 0 {
				continue
			}

			give := p.Stockpile[g]
			if give > total {
				give = total
			}
			for _, ci := range counties {
				c := &st.Counties[ci]
				if c.UnmetNeed[g] <= 0 {
					continue
				}
				grant := give * c.UnmetNeed[g] / total
				c.Stock[g] += grant
				c.Relief[g] += grant
			}
			p.Stockpile[g] -= give
			p.ReliefGiven[g] += give
			residual[pi] = total - give
		}

		for ri := range st.Realms {
			r := &st.Realms[ri]
			if r.Stockpile[g] <= 0 {
				continue
			}
			total := 0.0
			for _, pi := range m.ProvincesOf(ri) {
				total += residual[pi]
			}
			if total <= 0 {
				continue
			}
			give := r.Stockpile[g]
			if give > total {
				give = total
			}
			for _, pi := range m.ProvincesOf(ri) {
				if residual[pi] <= 0 {
					continue
				}
				st.Provinces[pi].Stockpile[g] += give * residual[pi] / total
			}
			r.Stockpile[g] -= give
		}
	}
}

// mint converts the realm's precious ore into crowns at fixed rates.
func (s *FiscalSystem) mint(st *economy.State) {
	for i := range st.Realms {
		r := &st.Realms[i]
		gold := r.Stockpile[economy.GoodGoldOre]
		silver := r.Stockpile[economy.GoodSilverOre]
		r.Stockpile[economy.GoodGoldOre] = 0
		r.Stockpile[economy.GoodSilverOre] = 0
		r.GoldMinted = gold
		r.SilverMinted = silver
		r.CrownsMinted = gold*st.Params.CrownsPerGoldKg + silver*st.Params.CrownsPerSilverKg
		r.Treasury += r.CrownsMinted
	}
}

// adminUpkeep burns fixed per-capita administrative crowns at each tier,
// before any trade activity, clamped to the available treasury.
func (s *FiscalSystem) adminUpkeep(st *economy.State, m *world.MapData) {
	for pi := range st.Provinces {
		p := &st.Provinces[pi]
		pop := 0.0
		for _, ci := range m.CountiesOf(pi) {
			pop += st.Counties[ci].Population
		}
		cost := st.Params.ProvinceAdminPerCapita * pop
		if cost > p.Treasury {
			cost = p.Treasury
		}
		p.Treasury -= cost
		p.AdminCrownsCost = cost
	}

	for ri := range st.Realms {
		r := &st.Realms[ri]
		pop := 0.0
		for _, pi := range m.ProvincesOf(ri) {
			for _, ci := range m.CountiesOf(pi) {
				pop += st.Counties[ci].Population
			}
		}
		cost := st.Params.RealmAdminPerCapita * pop
		if cost > r.Treasury {
			cost = r.Treasury
		}
		r.Treasury -= cost
		r.AdminCrownsCost = cost
	}
}

// monetaryTax levies the hearth tax on county households and remits a share
// of each province's treasury surplus to its realm.
func (s *FiscalSystem) monetaryTax(st *economy.State, m *world.MapData) {
	for pi := range st.Provinces {
		p := &st.Provinces[pi]

		pop := 0.0
		for _, ci := range m.CountiesOf(pi) {
			pop += st.Counties[ci].Population
		}
		hearth := st.Params.HearthTaxPerCapita * pop
		p.Treasury += hearth
		p.MonetaryTaxCollected = hearth

		surplus := p.Treasury - st.Params.ProvinceTreasuryReserve
		if surplus <= 0 {
			continue
		}
		remit := st.Params.MonetaryTaxRate * surplus
		p.Treasury -= remit
		p.MonetaryTaxPaidToRealm = remit
		realm := &st.Realms[m.ProvinceRealm[pi]]
		realm.Treasury += remit
		realm.MonetaryTaxCollected += remit
	}
}

// requisitionGranary has provinces buy staples from surplus counties into the
// ducal granary at base price, limited by treasury.
func (s *FiscalSystem) requisitionGranary(st *economy.State, m *world.MapData) {
	for pi := range st.Provinces {
		p := &st.Provinces[pi]
		counties := m.CountiesOf(pi)

		for g := 0; g < economy.GoodCount; g++ {
			def := &st.Catalog.Goods[g]
			if !def.Basic || def.BasePrice <= 0 {
				continue
			}
			demand := 0.0
			for _, ci := range counties {
				demand += st.Counties[ci].Population * def.NeedPerCapita
			}
			target := st.Params.GranaryTargetDays * demand
			missing := target - p.Stockpile[g]
			if missing <= 0 {
				continue
			}

			for _, ci := range counties {
				if missing <= 0 || p.Treasury <= 0 {
					break
				}
				c := &st.Counties[ci]
				keep := c.Population * def.NeedPerCapita * st.Params.SurplusThresholdDays / 2
				avail := c.Stock[g] - keep
				if avail <= 0 {
					continue
				}
				buy := missing
				if buy > avail {
					buy = avail
				}
				if affordable := p.Treasury / def.BasePrice; buy > affordable {
					buy = affordable
				}
				cost := buy * def.BasePrice
				c.Stock[g] -= buy
				p.Stockpile[g] += buy
				p.Treasury -= cost
				p.GranaryRequisitioned[g] += buy
				p.GranaryCrownsCost += cost
				missing -= buy
			}
		}
	}
}
