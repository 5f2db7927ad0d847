// Intra-province trade — county populations and facilities trade through the
// provincial market using buy orders and consignment lots, with a market fee
// accruing to the province. Unfilled population demand becomes the realm's
// deficit signal for the inter-realm market.
package engine

import (
	"github.com/talgya/crownlands/internal/economy"
	"github.com/talgya/crownlands/internal/world"
)

// ProvinceTradeSystem clears each province's market per good in the fixed
// buy-priority order, then distributes realm production quotas to facility
// host counties.
type ProvinceTradeSystem struct{}

func (ProvinceTradeSystem) Name() string  { return "provinceTrade" }
func (ProvinceTradeSystem) Interval() int { return 1 }

func (ProvinceTradeSystem) Initialize(st *economy.State, m *world.MapData) {}

func (ProvinceTradeSystem) Tick(st *economy.State, m *world.MapData) {
	for i := range st.Realms {
		st.Realms[i].Deficit = [economy.GoodCount]float64{}
	}
	for i := range st.Provinces {
		st.Provinces[i].TradeTollsCollected = 0
	}

	// Facilities per province, in stable slice order.
	provFacilities := make([][]int, len(st.Provinces))
	for fi := range st.Facilities {
		pi := m.ProvinceOf(st.Facilities[fi].CountyID)
		provFacilities[pi] = append(provFacilities[pi], fi)
	}

	for pi := range st.Provinces {
		clearProvince(st, m, pi, provFacilities[pi])
	}

	// Unsold facility output is credited to the host county.
	for fi := range st.Facilities {
		f := &st.Facilities[fi]
		if f.OutputBuffer > 0 {
			def := &st.Defs[f.TypeID]
			st.Counties[f.CountyID].Stock[def.OutputGood] += f.OutputBuffer
			f.OutputBuffer = 0
		}
	}

	distributeQuotas(st, m)
}

// clearProvince runs one day of order matching for a single province.
func clearProvince(st *economy.State, m *world.MapData, pi int, facilities []int) {
	prov := &st.Provinces[pi]
	counties := m.CountiesOf(pi)

	for _, g := range st.Catalog.BuyPriority {
		def := &st.Catalog.Goods[g]

		var orders []economy.BuyOrder
		var lots []economy.ConsignmentLot

		for _, ci := range counties {
			c := &st.Counties[ci]
			residual := c.UnmetNeed[g] - c.Relief[g]
			keep := c.Population * def.NeedPerCapita * st.Params.SurplusThresholdDays / 2
			surplus := c.Stock[g] - keep
			// A county covers its residual need from its own surplus before
			// going to market; it never posts both sides of the same good.
			if residual > 0 && surplus > 0 {
				netted := residual
				if surplus < netted {
					netted = surplus
				}
				residual -= netted
				surplus -= netted
			}
			if residual > 0 {
				orders = append(orders, economy.BuyOrder{
					Buyer:         economy.PopulationBuyer(ci),
					Good:          g,
					Quantity:      residual,
					MaxSpend:      residual * def.MaxPrice,
					TransportCost: st.Params.TransportCost,
					DayPosted:     st.Day,
				})
			}
			if surplus > 0 {
				lots = append(lots, economy.ConsignmentLot{
					Seller:    economy.PopulationBuyer(ci),
					Good:      g,
					Quantity:  surplus,
					DayListed: st.Day,
				})
			}
		}

		for _, fi := range facilities {
			f := &st.Facilities[fi]
			if !f.IsActive {
				continue
			}
			fdef := &st.Defs[f.TypeID]
			if fdef.InputGood == g {
				want := fdef.InputAmount*fdef.BaselineOutput - f.InputBuffer
				if want > 0 {
					orders = append(orders, economy.BuyOrder{
						Buyer:         economy.FacilityBuyer(fi),
						Good:          g,
						Quantity:      want,
						MaxSpend:      want * def.MaxPrice,
						TransportCost: st.Params.TransportCost,
						DayPosted:     st.Day,
					})
				}
			}
			if fdef.OutputGood == g && f.OutputBuffer > 0 {
				lots = append(lots, economy.ConsignmentLot{
					Seller:    economy.Participant{Kind: economy.ParticipantFacility, ID: fi},
					Good:      g,
					Quantity:  f.OutputBuffer,
					DayListed: st.Day,
				})
			}
		}

		// When nobody else is selling, the granary seeds the market if it
		// holds stock. For non-staple goods an off-map merchant lot steps in
		// instead; staple shortfalls must stay visible in the realm deficit.
		if len(lots) == 0 && len(orders) > 0 {
			if prov.Stockpile[g] > 0 {
				qty := st.Params.SeedSellerStock
				if qty > prov.Stockpile[g] {
					qty = prov.Stockpile[g]
				}
				lots = append(lots, economy.ConsignmentLot{
					Seller:    economy.SeedSeller(pi),
					Good:      g,
					Quantity:  qty,
					DayListed: st.Day,
				})
			} else if !def.Basic {
				lots = append(lots, economy.ConsignmentLot{
					Seller:    economy.OffMapSeller(pi),
					Good:      g,
					Quantity:  st.Params.SeedSellerStock,
					DayListed: st.Day,
				})
			}
		}

		unfilled := matchOrders(st, pi, g, orders, lots)
		if unfilled > 0 {
			st.Realms[m.ProvinceRealm[pi]].Deficit[g] += unfilled
		}
	}
}

// matchOrders clears one good in one province and returns the unfilled
// population demand.
func matchOrders(st *economy.State, pi int, g economy.Good, orders []economy.BuyOrder, lots []economy.ConsignmentLot) float64 {
	totalDemand := 0.0
	for i := range orders {
		totalDemand += orders[i].Quantity
	}
	totalSupply := 0.0
	for i := range lots {
		totalSupply += lots[i].Quantity
	}
	if totalDemand <= 0 {
		return 0
	}
	if totalSupply <= 0 {
		return popDemand(orders)
	}

	def := &st.Catalog.Goods[g]
	price := def.BasePrice * totalDemand / totalSupply
	if price < def.MinPrice {
		price = def.MinPrice
	}
	if price > def.MaxPrice {
		price = def.MaxPrice
	}

	fillRatio := 1.0
	if totalDemand > totalSupply {
		fillRatio = totalSupply / totalDemand
	}

	prov := &st.Provinces[pi]
	totalBought := 0.0
	unfilledPop := 0.0
	for i := range orders {
		o := &orders[i]
		qty := o.Quantity * fillRatio
		unitCost := price + o.TransportCost
		if unitCost > 0 && qty*unitCost > o.MaxSpend {
			qty = o.MaxSpend / unitCost
		}
		if qty <= 0 {
			if o.Buyer.Kind == economy.ParticipantPopulation {
				unfilledPop += o.Quantity
			}
			continue
		}

		switch o.Buyer.Kind {
		case economy.ParticipantPopulation:
			st.Counties[o.Buyer.ID].Stock[g] += qty
			unfilledPop += o.Quantity - qty
		case economy.ParticipantFacility:
			st.Facilities[o.Buyer.ID].InputBuffer += qty
		}

		fee := st.Params.MarketFeeRate * qty * price
		prov.Treasury += fee
		prov.TradeTollsCollected += fee
		totalBought += qty
	}

	// The short side is fully served; sellers move goods pro-rata to what was
	// actually bought.
	sellRatio := 0.0
	if totalSupply > 0 {
		sellRatio = totalBought / totalSupply
	}
	for i := range lots {
		l := &lots[i]
		sold := l.Quantity * sellRatio
		if sold <= 0 {
			continue
		}
		switch l.Seller.Kind {
		case economy.ParticipantPopulation:
			st.Counties[l.Seller.ID].Stock[g] -= sold
		case economy.ParticipantFacility:
			st.Facilities[l.Seller.ID].OutputBuffer -= sold
		case economy.ParticipantSeedSeller:
			prov.Stockpile[g] -= sold
		case economy.ParticipantOffMap:
			// Goods arrive from beyond the map; nothing local is debited.
		}
	}

	return unfilledPop
}

func popDemand(orders []economy.BuyOrder) float64 {
	total := 0.0
	for i := range orders {
		if orders[i].Buyer.Kind == economy.ParticipantPopulation {
			total += orders[i].Quantity
		}
	}
	return total
}

// distributeQuotas turns each realm's deficit into production targets for the
// counties hosting facilities that output the scarce good, proportional to
// facility capacity.
func distributeQuotas(st *economy.State, m *world.MapData) {
	for i := range st.Counties {
		st.Counties[i].FacilityQuota = [economy.GoodCount]float64{}
	}

	capacity := make([]float64, len(st.Counties))
	for g := 0; g < economy.GoodCount; g++ {
		for ri := range st.Realms {
			deficit := st.Realms[ri].Deficit[g]
			if deficit <= 0 {
				continue
			}

			total := 0.0
			for fi := range st.Facilities {
				f := &st.Facilities[fi]
				def := &st.Defs[f.TypeID]
				if !f.IsActive || int(def.OutputGood) != g || m.RealmOf(f.CountyID) != ri {
					continue
				}
				cap := def.BaselineOutput * def.OutputAmount
				capacity[f.CountyID] += cap
				total += cap
			}
			if total <= 0 {
				continue
			}
			for ci := range st.Counties {
				if capacity[ci] > 0 && m.RealmOf(ci) == ri {
					st.Counties[ci].FacilityQuota[g] = deficit * capacity[ci] / total
					capacity[ci] = 0
				}
			}
		}
	}
}
