package supplier

import (
	"strings"

	"github.com/Rynawkin/bakircilar-b2b-sub003/internal/util"
)

type DiscountRule struct {
	Keywords  []string  `json:"keywords"`
	Discounts []float64 `json:"discounts"`
}

type ExcelHints struct {
	SheetName   string `json:"sheetName,omitempty"`
	HeaderRow   *int   `json:"headerRow,omitempty"`
	CodeHeader  string `json:"codeHeader,omitempty"`
	NameHeader  string `json:"nameHeader,omitempty"`
	PriceHeader string `json:"priceHeader,omitempty"`
}

type PDFHints struct {
	CodePattern string         `json:"codePattern,omitempty"`
	PriceIndex  *int           `json:"priceIndex,omitempty"`
	ColumnRoles map[int]string `json:"columnRoles,omitempty"`
}

type Config struct {
	ID           int      `json:"id"`
	Name         string   `json:"name"`
	SenderEmails []string `json:"senderEmails,omitempty"`

	PriceIncludesVat bool     `json:"priceIncludesVat"`
	PriceIsNet       bool     `json:"priceIsNet"`
	DefaultVatRate   *float64 `json:"defaultVatRate,omitempty"`

	Discount1 float64 `json:"discount1,omitempty"`
	Discount2 float64 `json:"discount2,omitempty"`
	Discount3 float64 `json:"discount3,omitempty"`
	Discount4 float64 `json:"discount4,omitempty"`
	Discount5 float64 `json:"discount5,omitempty"`

	DiscountRules []DiscountRule `json:"discountRules,omitempty"`

	Excel ExcelHints `json:"excel,omitempty"`
	PDF   PDFHints   `json:"pdf,omitempty"`

	OutlierRatio   float64 `json:"outlierRatio,omitempty"`
	MagnitudeFloor float64 `json:"magnitudeFloor,omitempty"`

	codePattern CodePattern
}

type Override struct {
	PriceIncludesVat *bool    `json:"priceIncludesVat,omitempty"`
	PriceIsNet       *bool    `json:"priceIsNet,omitempty"`
	DefaultVatRate   *float64 `json:"defaultVatRate,omitempty"`

	Discount1 *float64 `json:"discount1,omitempty"`
	Discount2 *float64 `json:"discount2,omitempty"`
	Discount3 *float64 `json:"discount3,omitempty"`
	Discount4 *float64 `json:"discount4,omitempty"`
	Discount5 *float64 `json:"discount5,omitempty"`

	DiscountRules []DiscountRule `json:"discountRules,omitempty"`

	Excel *ExcelHints `json:"excel,omitempty"`
	PDF   *PDFHints   `json:"pdf,omitempty"`

	OutlierRatio   *float64 `json:"outlierRatio,omitempty"`
	MagnitudeFloor *float64 `json:"magnitudeFloor,omitempty"`
}

func Resolve(stored Config, override *Override) Config {
	cfg := stored
	if override != nil {
		if override.PriceIncludesVat != nil {
			cfg.PriceIncludesVat = *override.PriceIncludesVat
		}
		if override.PriceIsNet != nil {
			cfg.PriceIsNet = *override.PriceIsNet
		}
		if override.DefaultVatRate != nil {
			cfg.DefaultVatRate = override.DefaultVatRate
		}
		if override.Discount1 != nil {
			cfg.Discount1 = *override.Discount1
		}
		if override.Discount2 != nil {
			cfg.Discount2 = *override.Discount2
		}
		if override.Discount3 != nil {
			cfg.Discount3 = *override.Discount3
		}
		if override.Discount4 != nil {
			cfg.Discount4 = *override.Discount4
		}
		if override.Discount5 != nil {
			cfg.Discount5 = *override.Discount5
		}
		if len(override.DiscountRules) > 0 {
			cfg.DiscountRules = override.DiscountRules
		}
		if override.Excel != nil {
			cfg.Excel = *override.Excel
		}
		if override.PDF != nil {
			cfg.PDF = *override.PDF
		}
		if override.OutlierRatio != nil {
			cfg.OutlierRatio = *override.OutlierRatio
		}
		if override.MagnitudeFloor != nil {
			cfg.MagnitudeFloor = *override.MagnitudeFloor
		}
	}
	cfg.codePattern = CompilePattern(cfg.PDF.CodePattern)
	return cfg
}

func (c Config) CodeMatcher() CodePattern {
	if c.codePattern.re == nil && c.PDF.CodePattern != "" {
		return CompilePattern(c.PDF.CodePattern)
	}
	return c.codePattern
}

func (c Config) DefaultDiscounts() []float64 {
	out := make([]float64, 0, 5)
	for _, d := range []float64{c.Discount1, c.Discount2, c.Discount3, c.Discount4, c.Discount5} {
		if d > 0 {
			out = append(out, d)
		}
	}
	return out
}

func (c Config) ResolveDiscounts(supplierName string) []float64 {
	name := util.NormalizeText(supplierName)
	if name != "" {
		for _, rule := range c.DiscountRules {
			for _, kw := range rule.Keywords {
				needle := util.NormalizeText(kw)
				if needle != "" && strings.Contains(name, needle) {
					out := make([]float64, 0, len(rule.Discounts))
					for _, d := range rule.Discounts {
						if d > 0 {
							out = append(out, d)
						}
					}
					return out
				}
			}
		}
	}
	return c.DefaultDiscounts()
}

func (c Config) ResolvedOutlierRatio(fallback float64) float64 {
	if c.OutlierRatio > 0 {
		return c.OutlierRatio
	}
	if fallback > 0 {
		return fallback
	}
	return util.DefaultOutlierRatio
}

func (c Config) ResolvedMagnitudeFloor(fallback float64) float64 {
	if c.MagnitudeFloor > 0 {
		return c.MagnitudeFloor
	}
	if fallback > 0 {
		return fallback
	}
	return util.DefaultMagnitudeFloor
}
