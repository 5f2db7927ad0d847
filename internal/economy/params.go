// Economy tuning parameters. Defaults are built in; a YAML file can override
// individual values (voxelcraft-style tuning file).
package economy

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Params holds the fiscal and trade tuning knobs of the simulation.
type Params struct {
	// Feudal tax/relief pipeline.
	SurplusThresholdDays float64 `yaml:"surplusThresholdDays"` // days of demand a county keeps before taxation
	GoodsTaxRate         float64 `yaml:"goodsTaxRate"`         // share of surplus above threshold taxed daily
	RealmShare           float64 `yaml:"realmShare"`           // share of ducal tax passed on to the realm

	// Minting conversion rates (crowns per kg of ore).
	CrownsPerGoldKg   float64 `yaml:"crownsPerGoldKg"`
	CrownsPerSilverKg float64 `yaml:"crownsPerSilverKg"`

	// Administrative upkeep, crowns per head per day.
	ProvinceAdminPerCapita float64 `yaml:"provinceAdminPerCapita"`
	RealmAdminPerCapita    float64 `yaml:"realmAdminPerCapita"`

	// Monetary tax: daily hearth tax on households, and the share of province
	// treasury above the reserve remitted to the realm.
	HearthTaxPerCapita      float64 `yaml:"hearthTaxPerCapita"`
	MonetaryTaxRate         float64 `yaml:"monetaryTaxRate"`
	ProvinceTreasuryReserve float64 `yaml:"provinceTreasuryReserve"`

	// Granary requisition.
	GranaryTargetDays float64 `yaml:"granaryTargetDays"` // days of provincial demand to stockpile

	// Intra-province trade.
	MarketFeeRate     float64 `yaml:"marketFeeRate"` // buyer fee accruing to the province
	TransportCost     float64 `yaml:"transportCost"` // opaque per-order scalar
	SeedSellerStock   float64 `yaml:"seedSellerStock"`
	LaborPoolFraction float64 `yaml:"laborPoolFraction"` // max share of county population in facilities

	// Inter-realm market.
	TariffRate float64 `yaml:"tariffRate"`

	// Demography.
	BirthRateMonthly float64 `yaml:"birthRateMonthly"`
	DeathRateMonthly float64 `yaml:"deathRateMonthly"`
	StarvationDeaths float64 `yaml:"starvationDeaths"` // extra monthly death rate at zero satisfaction
	MigrationRate    float64 `yaml:"migrationRate"`
}

// DefaultParams returns the baseline tuning.
func DefaultParams() Params {
	return Params{
		SurplusThresholdDays:    20,
		GoodsTaxRate:            0.10,
		RealmShare:              0.25,
		CrownsPerGoldKg:         120,
		CrownsPerSilverKg:       8,
		ProvinceAdminPerCapita:  0.002,
		RealmAdminPerCapita:     0.001,
		HearthTaxPerCapita:      0.003,
		MonetaryTaxRate:         0.10,
		ProvinceTreasuryReserve: 500,
		GranaryTargetDays:       5,
		MarketFeeRate:           0.02,
		TransportCost:           0.05,
		SeedSellerStock:         10,
		LaborPoolFraction:       0.35,
		TariffRate:              0.10,
		BirthRateMonthly:        0.004,
		DeathRateMonthly:        0.003,
		StarvationDeaths:        0.02,
		MigrationRate:           0.01,
	}
}

// LoadParams reads a tuning file and overlays it on the defaults.
func LoadParams(path string) (Params, error) {
	p := DefaultParams()
	raw, err := os.ReadFile(path)
	if err != nil {
		return p, fmt.Errorf("read economy tuning: %w", err)
	}
	if err := yaml.Unmarshal(raw, &p); err != nil {
		return p, fmt.Errorf("economy tuning: %w", err)
	}
	return p, nil
}
