// Tier state records — one per county, province, and realm.
// Per-good state is held in fixed-size arrays indexed by Good; the arrays are
// allocated once at world init and keep their length for the simulation's
// lifetime, which keeps every tier's arithmetic branch-free and auditable.
package economy

// SatisfactionWindow is the EMA window (in days) for BasicSatisfaction,
// roughly a 30-day half-life.
const SatisfactionWindow = 30.0

// CountyEconomy is the runtime economic state of one county.
type CountyEconomy struct {
	ID int `json:"id"`

	Stock        [GoodCount]float64 `json:"stock"`
	Productivity [GoodCount]float64 `json:"productivity"` // goods per capita per day, fixed at init
	Production   [GoodCount]float64 `json:"production"`   // overwritten daily
	Consumption  [GoodCount]float64 `json:"consumption"`  // overwritten daily
	UnmetNeed    [GoodCount]float64 `json:"unmetNeed"`    // shortfall when stock hits zero
	TaxPaid      [GoodCount]float64 `json:"taxPaid"`      // reset daily
	Relief       [GoodCount]float64 `json:"relief"`       // reset daily

	Population        float64 `json:"population"`
	BasicSatisfaction float64 `json:"basicSatisfaction"` // EMA in [0,1]

	// Monthly accumulators, reset by the demography collaborator.
	BirthsThisMonth       float64 `json:"birthsThisMonth"`
	DeathsThisMonth       float64 `json:"deathsThisMonth"`
	NetMigrationThisMonth float64 `json:"netMigrationThisMonth"`

	FacilityWorkers float64            `json:"facilityWorkers"` // recomputed daily
	FacilityQuota   [GoodCount]float64 `json:"facilityQuota"`   // realm-distributed target
}

// ProvinceEconomy is the runtime economic state of one province (duchy).
type ProvinceEconomy struct {
	ID int `json:"id"`

	Stockpile            [GoodCount]float64 `json:"stockpile"`   // the ducal granary
	ReliefGiven          [GoodCount]float64 `json:"reliefGiven"` // reset daily
	GranaryRequisitioned [GoodCount]float64 `json:"granaryRequisitioned"`

	Treasury               float64 `json:"treasury"`
	MonetaryTaxCollected   float64 `json:"monetaryTaxCollected"`   // reset daily
	MonetaryTaxPaidToRealm float64 `json:"monetaryTaxPaidToRealm"` // reset daily
	AdminCrownsCost        float64 `json:"adminCrownsCost"`        // reset daily
	GranaryCrownsCost      float64 `json:"granaryCrownsCost"`      // reset daily
	TradeTollsCollected    float64 `json:"tradeTollsCollected"`    // reset daily
}

// RealmEconomy is the runtime economic state of one realm (kingdom).
type RealmEconomy struct {
	ID int `json:"id"`

	Stockpile [GoodCount]float64 `json:"stockpile"` // royal reserve
	Treasury  float64            `json:"treasury"`

	// Minting, reset daily.
	GoldMinted   float64 `json:"goldMinted"`
	SilverMinted float64 `json:"silverMinted"`
	CrownsMinted float64 `json:"crownsMinted"`

	MonetaryTaxCollected float64 `json:"monetaryTaxCollected"` // reset daily
	AdminCrownsCost      float64 `json:"adminCrownsCost"`      // reset daily

	// Inter-realm trade working set, reset daily.
	Deficit               [GoodCount]float64 `json:"deficit"` // the market's buy signal
	TradeImports          [GoodCount]float64 `json:"tradeImports"`
	TradeExports          [GoodCount]float64 `json:"tradeExports"`
	TradeSpending         float64            `json:"tradeSpending"`
	TradeRevenue          float64            `json:"tradeRevenue"`
	TradeTariffsCollected float64            `json:"tradeTariffsCollected"`
}

// State is the arena of all tier records plus the published market prices.
// Records are addressed by dense integer index; topology lives separately in
// world.MapData so records never alias each other.
type State struct {
	Catalog *Catalog
	Params  Params
	Defs    []FacilityDef

	Counties  []CountyEconomy
	Provinces []ProvinceEconomy
	Realms    []RealmEconomy

	Facilities []Facility

	// Prices holds the published clearing price per good. It persists across
	// days: a good that skips trading keeps its previous price.
	Prices [GoodCount]float64

	Day int
}

// NewState allocates tier arenas for the given topology sizes and seeds the
// published prices from the catalog base prices.
func NewState(cat *Catalog, params Params, defs []FacilityDef, counties, provinces, realms int) *State {
	st := &State{
		Catalog:   cat,
		Params:    params,
		Defs:      defs,
		Counties:  make([]CountyEconomy, counties),
		Provinces: make([]ProvinceEconomy, provinces),
		Realms:    make([]RealmEconomy, realms),
	}
	for i := range st.Counties {
		st.Counties[i].ID = i
		st.Counties[i].BasicSatisfaction = 1.0
	}
	for i := range st.Provinces {
		st.Provinces[i].ID = i
	}
	for i := range st.Realms {
		st.Realms[i].ID = i
	}
	for g := 0; g < GoodCount; g++ {
		st.Prices[g] = cat.Goods[g].BasePrice
	}
	return st
}
