package economy

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLoadCatalog_ShippedConfig(t *testing.T) {
	cat, err := LoadCatalog("../../configs/goods.yaml")
	if err != nil {
		t.Fatalf("load catalog: %v", err)
	}

	if got := cat.Goods[GoodBread].BasePrice; got != 1.0 {
		t.Fatalf("bread basePrice=%v want 1.0", got)
	}
	if got := cat.Goods[GoodIronOre].BasePrice; got != 5.0 {
		t.Fatalf("ironOre basePrice=%v want 5.0", got)
	}

	g, ok := cat.GoodByName("stockfish")
	if !ok || g != GoodStockfish {
		t.Fatalf("GoodByName(stockfish)=%v,%v", g, ok)
	}

	// Precious ore is minted, never traded.
	if cat.Goods[GoodGoldOre].Tradeable || cat.Goods[GoodSilverOre].Tradeable {
		t.Fatalf("precious ore must not be tradeable")
	}

	// Buy priority covers exactly the tradeable goods.
	tradeable := 0
	for g := 0; g < GoodCount; g++ {
		if cat.Goods[g].Tradeable {
			tradeable++
		}
	}
	if len(cat.BuyPriority) != tradeable {
		t.Fatalf("buyPriority len=%d want %d", len(cat.BuyPriority), tradeable)
	}
	seen := map[Good]bool{}
	for _, g := range cat.BuyPriority {
		if seen[g] {
			t.Fatalf("buyPriority lists %s twice", g.Name())
		}
		seen[g] = true
	}

	// Staples come first so households spend on survival before comforts.
	if cat.BuyPriority[0] != GoodBread {
		t.Fatalf("buyPriority[0]=%s want bread", cat.BuyPriority[0].Name())
	}

	basics := cat.BasicGoods()
	hasBread := false
	for _, g := range basics {
		if g == GoodBread {
			hasBread = true
		}
	}
	if !hasBread {
		t.Fatalf("bread missing from basic goods")
	}

	for g := 0; g < GoodCount; g++ {
		def := cat.Goods[g]
		if def.MinPrice > def.BasePrice || def.BasePrice > def.MaxPrice {
			t.Fatalf("%s violates min <= base <= max", def.Name)
		}
	}
}

func writeCatalog(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "goods.yaml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write catalog: %v", err)
	}
	return path
}

func TestLoadCatalog_MissingGoodIsFatal(t *testing.T) {
	path := writeCatalog(t, `
goods:
  - name: bread
    basePrice: 1.0
    minPrice: 0.5
    maxPrice: 3.0
    tradeable: true
buyPriority: [bread]
`)
	_, err := LoadCatalog(path)
	if err == nil || !strings.Contains(err.Error(), "missing good") {
		t.Fatalf("want missing-good error, got %v", err)
	}
}

func TestLoadCatalog_BadPriceBoundsIsFatal(t *testing.T) {
	path := writeCatalog(t, `
goods:
  - name: bread
    basePrice: 1.0
    minPrice: 2.0
    maxPrice: 3.0
buyPriority: []
`)
	_, err := LoadCatalog(path)
	if err == nil || !strings.Contains(err.Error(), "price bounds") {
		t.Fatalf("want price-bounds error, got %v", err)
	}
}

func TestLoadCatalog_UnknownGoodIsFatal(t *testing.T) {
	path := writeCatalog(t, `
goods:
  - name: spice
    basePrice: 1.0
    minPrice: 0.5
    maxPrice: 3.0
buyPriority: []
`)
	_, err := LoadCatalog(path)
	if err == nil || !strings.Contains(err.Error(), "unknown good") {
		t.Fatalf("want unknown-good error, got %v", err)
	}
}
