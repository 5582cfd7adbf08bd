package pricing

import (
	"github.com/shopspring/decimal"

	"github.com/Rynawkin/bakircilar-b2b-sub003/internal/supplier"
)

const FallbackVatRate = 0.20

func NetPrice(sourcePrice float64, cfg supplier.Config, productVatRate *float64, fallbackVatRate float64, supplierName string) float64 {
	price := decimal.NewFromFloat(sourcePrice)

	if cfg.PriceIncludesVat {
		rate := fallbackVatRate
		if rate <= 0 {
			rate = FallbackVatRate
		}
		if productVatRate != nil {
			rate = *productVatRate
		} else if cfg.DefaultVatRate != nil {
			rate = *cfg.DefaultVatRate
		}
		price = price.Div(decimal.NewFromFloat(1).Add(decimal.NewFromFloat(rate)))
	}

	if !cfg.PriceIsNet {
		hundred := decimal.NewFromInt(100)
		for _, d := range cfg.ResolveDiscounts(supplierName) {
			factor := decimal.NewFromFloat(1).Sub(decimal.NewFromFloat(d).Div(hundred))
			price = price.Mul(factor)
		}
	}

	return price.Round(4).InexactFloat64()
}
