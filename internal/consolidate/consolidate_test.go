package consolidate

import (
	"testing"

	"github.com/Rynawkin/bakircilar-b2b-sub003/internal"
	"github.com/Rynawkin/bakircilar-b2b-sub003/internal/util"
)

func item(code string, price *float64) internal.ParsedItem {
	return internal.ParsedItem{SupplierCode: code, SourcePrice: price}
}

func TestConsolidateOnePerCode(t *testing.T) {
	items := []internal.ParsedItem{
		item("B101996", util.FloatPtr(86.69)),
		item("b-101996", util.FloatPtr(86.69)),
		item("B101997", util.FloatPtr(91.20)),
	}
	out := Consolidate(items, Options{})
	if len(out) != 2 {
		t.Fatalf("got %d items", len(out))
	}
	if out[0].NormalizedCode != "B101996" || out[1].NormalizedCode != "B101997" {
		t.Fatalf("order = %v, %v", out[0].NormalizedCode, out[1].NormalizedCode)
	}
}

func TestConsolidateEmptyCodePassThrough(t *testing.T) {
	items := []internal.ParsedItem{
		item("---", util.FloatPtr(10)),
		item("---", util.FloatPtr(20)),
	}
	out := Consolidate(items, Options{})
	if len(out) != 2 {
		t.Fatalf("unnormalizable codes must pass through ungrouped: %d", len(out))
	}
	for _, it := range out {
		if it.NormalizedCode != "" {
			t.Fatalf("NormalizedCode = %q", it.NormalizedCode)
		}
	}
}

func TestConsolidateDropsSubUnitDecoys(t *testing.T) {
	items := []internal.ParsedItem{
		item("B101996", util.FloatPtr(0.5)),
		item("B101996", util.FloatPtr(86.69)),
	}
	out := Consolidate(items, Options{})
	if len(out) != 1 {
		t.Fatalf("got %d", len(out))
	}
	if *out[0].SourcePrice != 86.69 {
		t.Fatalf("price = %v", *out[0].SourcePrice)
	}
}

func TestConsolidateOutlierKeepsMax(t *testing.T) {
	items := []internal.ParsedItem{
		item("B101996", util.FloatPtr(12.5)),
		item("B101996", util.FloatPtr(650)),
	}
	out := Consolidate(items, Options{OutlierRatio: 20})
	if *out[0].SourcePrice != 650 {
		t.Fatalf("price = %v", *out[0].SourcePrice)
	}
}

func TestConsolidateClosePricesKeepHighestRank(t *testing.T) {
	a := item("B101996", util.FloatPtr(80))
	b := item("B101996", util.FloatPtr(86.69))
	out := Consolidate([]internal.ParsedItem{a, b}, Options{})
	if *out[0].SourcePrice != 86.69 {
		t.Fatalf("price = %v", *out[0].SourcePrice)
	}
}

func TestConsolidateSiblingBackfill(t *testing.T) {
	withName := item("B101996", util.FloatPtr(50))
	withName.SupplierName = util.StringPtr("Cıvata M8")
	bare := item("B101996", util.FloatPtr(86.69))

	out := Consolidate([]internal.ParsedItem{withName, bare}, Options{})
	if len(out) != 1 {
		t.Fatalf("got %d", len(out))
	}
	if *out[0].SourcePrice != 86.69 {
		t.Fatalf("price = %v", *out[0].SourcePrice)
	}
	if out[0].SupplierName == nil || *out[0].SupplierName != "Cıvata M8" {
		t.Fatalf("name not backfilled: %v", out[0].SupplierName)
	}
}

func TestConsolidateUnpricedGroup(t *testing.T) {
	a := item("B101996", nil)
	b := item("B101996", nil)
	out := Consolidate([]internal.ParsedItem{a, b}, Options{})
	if len(out) != 1 || out[0].SourcePrice != nil {
		t.Fatalf("out = %+v", out)
	}
}
