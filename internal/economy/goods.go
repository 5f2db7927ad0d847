// Package economy provides the tier data model, goods catalog, facility
// recipes, and market primitives for the feudal economy simulation.
package economy

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Good identifies a commodity kind. The enumeration is closed and densely
// numbered: every per-good container in every tier is a [GoodCount] array
// indexed by Good, and is never resized at runtime.
type Good uint8

const (
	GoodBread Good = iota
	GoodTimber
	GoodIronOre
	GoodGoldOre
	GoodSilverOre
	GoodSalt
	GoodWool
	GoodStone
	GoodAle
	GoodClay
	GoodPottery
	GoodFurniture
	GoodIron
	GoodTools
	GoodCharcoal
	GoodClothes
	GoodPork
	GoodSausage
	GoodBacon
	GoodMilk
	GoodCheese
	GoodFish
	GoodSaltedFish
	GoodStockfish

	goodSentinel
)

// GoodCount is the array length for every per-good container.
const GoodCount = int(goodSentinel)

// goodNames maps the enum to catalog names. Order matches the Good constants.
var goodNames = [GoodCount]string{
	"bread", "timber", "ironOre", "goldOre", "silverOre", "salt",
	"wool", "stone", "ale", "clay", "pottery", "furniture",
	"iron", "tools", "charcoal", "clothes", "pork", "sausage",
	"bacon", "milk", "cheese", "fish", "saltedFish", "stockfish",
}

// Name returns the catalog name of the good.
func (g Good) Name() string {
	if int(g) < GoodCount {
		return goodNames[g]
	}
	return "unknown"
}

// ProductivityWeights describe how biome fields translate into per-capita
// daily output of a good during world generation.
type ProductivityWeights struct {
	Base      float64 `yaml:"base"`
	Fertility float64 `yaml:"fertility"`
	Forest    float64 `yaml:"forest"`
	Ore       float64 `yaml:"ore"`
	Coast     float64 `yaml:"coast"`
}

// GoodDef holds the static attributes of one good.
type GoodDef struct {
	Name          string              `yaml:"name"`
	BasePrice     float64             `yaml:"basePrice"`
	MinPrice      float64             `yaml:"minPrice"`
	MaxPrice      float64             `yaml:"maxPrice"`
	Tradeable     bool                `yaml:"tradeable"`
	Basic         bool                `yaml:"basic"`
	NeedPerCapita float64             `yaml:"needPerCapita"`
	Productivity  ProductivityWeights `yaml:"productivity"`
}

// Catalog is the static goods registry. It is loaded once at startup and
// never mutated afterwards.
type Catalog struct {
	Goods       [GoodCount]GoodDef
	BuyPriority []Good // fixed clearing order for tradeable goods
	byName      map[string]Good
}

// GoodByName resolves a catalog name to its enum value.
func (c *Catalog) GoodByName(name string) (Good, bool) {
	g, ok := c.byName[name]
	return g, ok
}

// BasicGoods returns the goods that count toward basic satisfaction.
func (c *Catalog) BasicGoods() []Good {
	var out []Good
	for g := 0; g < GoodCount; g++ {
		if c.Goods[g].Basic {
			out = append(out, Good(g))
		}
	}
	return out
}

type catalogFile struct {
	Goods       []GoodDef `yaml:"goods"`
	BuyPriority []string  `yaml:"buyPriority"`
}

// LoadCatalog reads and validates the goods catalog. Any malformed or missing
// definition is a configuration error and fatal at startup.
func LoadCatalog(path string) (*Catalog, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read goods catalog: %w", err)
	}
	var file catalogFile
	if err := yaml.Unmarshal(raw, &file); err != nil {
		return nil, fmt.Errorf("goods catalog: %w", err)
	}

	byName := make(map[string]Good, GoodCount)
	for i, name := range goodNames {
		byName[name] = Good(i)
	}

	cat := &Catalog{byName: byName}
	seen := make(map[Good]bool, GoodCount)
	for _, def := range file.Goods {
		g, ok := byName[def.Name]
		if !ok {
			return nil, fmt.Errorf("goods catalog: unknown good %q", def.Name)
		}
		if seen[g] {
			return nil, fmt.Errorf("goods catalog: duplicate good %q", def.Name)
		}
		if def.MinPrice < 0 || def.MinPrice > def.BasePrice || def.BasePrice > def.MaxPrice {
			return nil, fmt.Errorf("goods catalog: %q price bounds violate min <= base <= max", def.Name)
		}
		if def.NeedPerCapita < 0 {
			return nil, fmt.Errorf("goods catalog: %q negative per-capita need", def.Name)
		}
		seen[g] = true
		cat.Goods[g] = def
	}
	if len(seen) != GoodCount {
		for g := 0; g < GoodCount; g++ {
			if !seen[Good(g)] {
				return nil, fmt.Errorf("goods catalog: missing good %q", goodNames[g])
			}
		}
	}

	// Buy priority must list every tradeable good exactly once and nothing else.
	inPriority := make(map[Good]bool, len(file.BuyPriority))
	for _, name := range file.BuyPriority {
		g, ok := byName[name]
		if !ok {
			return nil, fmt.Errorf("goods catalog: buyPriority references unknown good %q", name)
		}
		if !cat.Goods[g].Tradeable {
			return nil, fmt.Errorf("goods catalog: buyPriority lists non-tradeable good %q", name)
		}
		if inPriority[g] {
			return nil, fmt.Errorf("goods catalog: buyPriority lists %q twice", name)
		}
		inPriority[g] = true
		cat.BuyPriority = append(cat.BuyPriority, g)
	}
	for g := 0; g < GoodCount; g++ {
		if cat.Goods[g].Tradeable && !inPriority[Good(g)] {
			return nil, fmt.Errorf("goods catalog: tradeable good %q missing from buyPriority", goodNames[g])
		}
	}

	return cat, nil
}
