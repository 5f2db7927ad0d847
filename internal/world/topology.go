// Package world provides the read-only territory topology and the reference
// world generator that seeds county productivity from biome noise fields.
package world

// Cell is a map cell position on the generation grid.
type Cell struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// MapData is the read-only hierarchy topology: which county belongs to which
// province, and which province to which realm. It is built once at world init
// and never mutated; tier records hold no membership pointers of their own.
type MapData struct {
	CountyProvince []int  `json:"countyProvince"` // county index → province index
	ProvinceRealm  []int  `json:"provinceRealm"`  // province index → realm index
	CountySeat     []Cell `json:"countySeat"`     // county index → seat cell

	// Derived lookup lists, precomputed at build time.
	provinceCounties [][]int
	realmProvinces   [][]int
}

// NewMapData builds a topology from membership slices and precomputes the
// reverse lookups.
func NewMapData(countyProvince, provinceRealm []int, seats []Cell) *MapData {
	m := &MapData{
		CountyProvince: countyProvince,
		ProvinceRealm:  provinceRealm,
		CountySeat:     seats,
	}
	m.provinceCounties = make([][]int, len(provinceRealm))
	for c, p := range countyProvince {
		m.provinceCounties[p] = append(m.provinceCounties[p], c)
	}
	realms := 0
	for _, r := range provinceRealm {
		if r+1 > realms {
			realms = r + 1
		}
	}
	m.realmProvinces = make([][]int, realms)
	for p, r := range provinceRealm {
		m.realmProvinces[r] = append(m.realmProvinces[r], p)
	}
	return m
}

// Counties returns the number of counties.
func (m *MapData) Counties() int { return len(m.CountyProvince) }

// Provinces returns the number of provinces.
func (m *MapData) Provinces() int { return len(m.ProvinceRealm) }

// Realms returns the number of realms.
func (m *MapData) Realms() int { return len(m.realmProvinces) }

// ProvinceOf returns the province index of a county.
func (m *MapData) ProvinceOf(county int) int { return m.CountyProvince[county] }

// RealmOf returns the realm index of a county.
func (m *MapData) RealmOf(county int) int { return m.ProvinceRealm[m.CountyProvince[county]] }

// CountiesOf returns the county indexes of a province. The returned slice is
// shared and must not be modified.
func (m *MapData) CountiesOf(province int) []int { return m.provinceCounties[province] }

// ProvincesOf returns the province indexes of a realm. The returned slice is
// shared and must not be modified.
func (m *MapData) ProvincesOf(realm int) []int { return m.realmProvinces[realm] }
