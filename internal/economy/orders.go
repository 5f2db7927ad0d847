// Market order primitives for the intra-province trade system.
package economy

// ParticipantKind tags the four distinguishable market participant kinds.
// A kind tag plus a plain index keeps buyer and seller identity explicit
// without sign conventions or reserved ID ranges.
type ParticipantKind uint8

const (
	ParticipantFacility   ParticipantKind = iota // ID = facility index
	ParticipantPopulation                        // ID = county index
	ParticipantSeedSeller                        // ID = market (province) index
	ParticipantOffMap                            // ID = market (province) index
)

// Participant identifies one market actor.
type Participant struct {
	Kind ParticipantKind `json:"kind"`
	ID   int             `json:"id"`
}

// FacilityBuyer returns the participant for a facility buying inputs.
func FacilityBuyer(facilityID int) Participant {
	return Participant{Kind: ParticipantFacility, ID: facilityID}
}

// PopulationBuyer returns the participant for a county's population aggregate.
func PopulationBuyer(countyID int) Participant {
	return Participant{Kind: ParticipantPopulation, ID: countyID}
}

// SeedSeller returns the synthetic bootstrap seller for a market.
func SeedSeller(marketID int) Participant {
	return Participant{Kind: ParticipantSeedSeller, ID: marketID}
}

// OffMapSeller returns the synthetic seller whose goods come from beyond the
// simulated map.
func OffMapSeller(marketID int) Participant {
	return Participant{Kind: ParticipantOffMap, ID: marketID}
}

// BuyOrder is a request to purchase a quantity of one good.
type BuyOrder struct {
	Buyer         Participant `json:"buyer"`
	Good          Good        `json:"good"`
	Quantity      float64     `json:"quantity"`
	MaxSpend      float64     `json:"maxSpend"`
	TransportCost float64     `json:"transportCost"` // opaque per-order scalar
	DayPosted     int         `json:"dayPosted"`
}

// ConsignmentLot is a quantity of one good offered for sale.
type ConsignmentLot struct {
	Seller    Participant `json:"seller"`
	Good      Good        `json:"good"`
	Quantity  float64     `json:"quantity"`
	DayListed int         `json:"dayListed"`
}
