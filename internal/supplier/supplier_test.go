package supplier

import "testing"

func TestResolveOverrideWins(t *testing.T) {
	stored := Config{
		ID:               7,
		Name:             "Bakırcılar",
		PriceIncludesVat: true,
		Discount1:        10,
		Discount2:        5,
	}
	f := 15.0
	inc := false
	cfg := Resolve(stored, &Override{
		PriceIncludesVat: &inc,
		Discount1:        &f,
	})

	if cfg.PriceIncludesVat {
		t.Error("override should clear PriceIncludesVat")
	}
	if cfg.Discount1 != 15 {
		t.Errorf("Discount1 = %v", cfg.Discount1)
	}
	if cfg.Discount2 != 5 {
		t.Errorf("Discount2 must keep stored value, got %v", cfg.Discount2)
	}
	if cfg.ID != 7 || cfg.Name != "Bakırcılar" {
		t.Error("identity fields must survive the merge")
	}
}

func TestResolveNilOverride(t *testing.T) {
	stored := Config{ID: 1, Discount1: 10}
	cfg := Resolve(stored, nil)
	if cfg.Discount1 != 10 {
		t.Fatalf("Discount1 = %v", cfg.Discount1)
	}
}

func TestDefaultDiscountsSkipsZeroes(t *testing.T) {
	cfg := Config{Discount1: 10, Discount3: 5}
	got := cfg.DefaultDiscounts()
	if len(got) != 2 || got[0] != 10 || got[1] != 5 {
		t.Fatalf("got %v", got)
	}
}

func TestResolveDiscountsKeywordRule(t *testing.T) {
	cfg := Config{
		Discount1: 10,
		DiscountRules: []DiscountRule{
			{Keywords: []string{"kablo"}, Discounts: []float64{25, 5}},
		},
	}

	got := cfg.ResolveDiscounts("NYY Kablo 3x2,5")
	if len(got) != 2 || got[0] != 25 || got[1] != 5 {
		t.Fatalf("rule should win: %v", got)
	}

	// diacritic and case insensitive
	got = cfg.ResolveDiscounts("KABLOLAR")
	if len(got) != 2 {
		t.Fatalf("substring match expected: %v", got)
	}

	got = cfg.ResolveDiscounts("Vida M8")
	if len(got) != 1 || got[0] != 10 {
		t.Fatalf("defaults expected: %v", got)
	}
}

func TestCompilePatternInvalid(t *testing.T) {
	p := CompilePattern("[")
	if p.Valid() {
		t.Fatal("invalid regexp must yield zero pattern")
	}
	p = CompilePattern("")
	if p.Valid() {
		t.Fatal("empty pattern must yield zero pattern")
	}
	p = CompilePattern(`[A-Z]\d{3}`)
	if !p.Valid() || !p.MatchString("B123") {
		t.Fatal("valid pattern must compile and match")
	}
}

func TestResolvedThresholdFallbacks(t *testing.T) {
	cfg := Config{}
	if got := cfg.ResolvedOutlierRatio(0); got != 20 {
		t.Errorf("default outlier ratio = %v", got)
	}
	if got := cfg.ResolvedOutlierRatio(30); got != 30 {
		t.Errorf("app fallback = %v", got)
	}
	cfg.OutlierRatio = 50
	if got := cfg.ResolvedOutlierRatio(30); got != 50 {
		t.Errorf("supplier value must win: %v", got)
	}
	if got := (Config{}).ResolvedMagnitudeFloor(0); got != 10 {
		t.Errorf("default magnitude floor = %v", got)
	}
}
