package pricing

import (
	"math"
	"testing"

	"github.com/Rynawkin/bakircilar-b2b-sub003/internal/supplier"
	"github.com/Rynawkin/bakircilar-b2b-sub003/internal/util"
)

func eq(a, b float64) bool { return math.Abs(a-b) < 1e-9 }

func TestNetPriceVatBackout(t *testing.T) {
	cfg := supplier.Config{PriceIncludesVat: true, PriceIsNet: true, DefaultVatRate: util.FloatPtr(0.20)}
	if got := NetPrice(120, cfg, nil, 0, ""); !eq(got, 100) {
		t.Fatalf("got %v", got)
	}
}

func TestNetPriceDiscountChain(t *testing.T) {
	cfg := supplier.Config{Discount1: 10, Discount2: 10}
	if got := NetPrice(100, cfg, nil, 0, ""); !eq(got, 81) {
		t.Fatalf("got %v", got)
	}
}

func TestNetPriceVatAndDiscount(t *testing.T) {
	cfg := supplier.Config{
		PriceIncludesVat: true,
		DefaultVatRate:   util.FloatPtr(0.20),
		Discount1:        10,
	}
	// 86.69 / 1.20 * 0.90 rounded to 4 places
	if got := NetPrice(86.69, cfg, nil, 0, ""); !eq(got, 65.0175) {
		t.Fatalf("got %v", got)
	}
}

func TestNetPriceProductVatOverridesSupplierDefault(t *testing.T) {
	cfg := supplier.Config{PriceIncludesVat: true, PriceIsNet: true, DefaultVatRate: util.FloatPtr(0.20)}
	if got := NetPrice(110, cfg, util.FloatPtr(0.10), 0, ""); !eq(got, 100) {
		t.Fatalf("got %v", got)
	}
}

func TestNetPriceConfiguredFallbackVat(t *testing.T) {
	cfg := supplier.Config{PriceIncludesVat: true, PriceIsNet: true}
	if got := NetPrice(150, cfg, nil, 0.50, ""); !eq(got, 100) {
		t.Fatalf("configured fallback rate should apply: %v", got)
	}
}

func TestNetPriceBuiltinFallbackVat(t *testing.T) {
	cfg := supplier.Config{PriceIncludesVat: true, PriceIsNet: true}
	if got := NetPrice(120, cfg, nil, 0, ""); !eq(got, 100) {
		t.Fatalf("builtin fallback rate should apply: %v", got)
	}
}

func TestNetPriceIsNetSkipsDiscounts(t *testing.T) {
	cfg := supplier.Config{PriceIsNet: true, Discount1: 50}
	if got := NetPrice(100, cfg, nil, 0, ""); !eq(got, 100) {
		t.Fatalf("got %v", got)
	}
}

func TestNetPriceKeywordRule(t *testing.T) {
	cfg := supplier.Config{
		Discount1: 10,
		DiscountRules: []supplier.DiscountRule{
			{Keywords: []string{"kablo"}, Discounts: []float64{50}},
		},
	}
	if got := NetPrice(100, cfg, nil, 0, "NYY Kablo 3x2,5"); !eq(got, 50) {
		t.Fatalf("got %v", got)
	}
	if got := NetPrice(100, cfg, nil, 0, "Vida M8"); !eq(got, 90) {
		t.Fatalf("got %v", got)
	}
}
