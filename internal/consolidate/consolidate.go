package consolidate

import (
	"github.com/Rynawkin/bakircilar-b2b-sub003/internal"
	"github.com/Rynawkin/bakircilar-b2b-sub003/internal/util"
)

type Options struct {
	OutlierRatio   float64
	MagnitudeFloor float64
}

func Consolidate(items []internal.ParsedItem, opts Options) []internal.ConsolidatedItem {
	if opts.OutlierRatio <= 0 {
		opts.OutlierRatio = util.DefaultOutlierRatio
	}
	if opts.MagnitudeFloor <= 0 {
		opts.MagnitudeFloor = util.DefaultMagnitudeFloor
	}

	type slot struct {
		code  string
		items []internal.ParsedItem
	}
	var order []slot
	index := map[string]int{}

	var out []internal.ConsolidatedItem
	for _, item := range items {
		code := util.NormalizeCode(item.SupplierCode)
		if code == "" {
			out = append(out, internal.ConsolidatedItem{ParsedItem: item})
			continue
		}
		if pos, ok := index[code]; ok {
			order[pos].items = append(order[pos].items, item)
			continue
		}
		index[code] = len(order)
		order = append(order, slot{code: code, items: []internal.ParsedItem{item}})
	}

	for _, s := range order {
		out = append(out, internal.ConsolidatedItem{
			ParsedItem:     pickBest(s.items, opts),
			NormalizedCode: s.code,
		})
	}
	return out
}

func pickBest(group []internal.ParsedItem, opts Options) internal.ParsedItem {
	if len(group) == 1 {
		return group[0]
	}

	priced := make([]internal.ParsedItem, 0, len(group))
	for _, it := range group {
		if it.SourcePrice != nil {
			priced = append(priced, it)
		}
	}
	if len(priced) == 0 {
		return group[0]
	}

	minP, maxP := priceRange(priced)
	if maxP >= opts.MagnitudeFloor {
		kept := make([]internal.ParsedItem, 0, len(priced))
		for _, it := range priced {
			if *it.SourcePrice >= 1 {
				kept = append(kept, it)
			}
		}
		if len(kept) > 0 {
			priced = kept
			minP, maxP = priceRange(priced)
		}
	}
	if minP > 0 && maxP/minP >= opts.OutlierRatio {
		kept := make([]internal.ParsedItem, 0, len(priced))
		for _, it := range priced {
			if *it.SourcePrice == maxP {
				kept = append(kept, it)
			}
		}
		priced = kept
	}

	best := priced[0]
	for _, it := range priced[1:] {
		if rankLess(best, it) {
			best = it
		}
	}

	for _, it := range group {
		if best.SupplierName == nil && it.SupplierName != nil {
			best.SupplierName = it.SupplierName
		}
		if best.RawLine == nil && it.RawLine != nil {
			best.RawLine = it.RawLine
		}
		if best.Currency == nil && it.Currency != nil {
			best.Currency = it.Currency
		}
	}
	return best
}

func rankLess(a, b internal.ParsedItem) bool {
	if *a.SourcePrice != *b.SourcePrice {
		return *b.SourcePrice > *a.SourcePrice
	}
	if (a.Currency != nil) != (b.Currency != nil) {
		return b.Currency != nil
	}
	if (a.RawLine != nil) != (b.RawLine != nil) {
		return b.RawLine != nil
	}
	if (a.SupplierName != nil) != (b.SupplierName != nil) {
		return b.SupplierName != nil
	}
	return false
}

func priceRange(items []internal.ParsedItem) (minP, maxP float64) {
	minP, maxP = *items[0].SourcePrice, *items[0].SourcePrice
	for _, it := range items[1:] {
		if *it.SourcePrice < minP {
			minP = *it.SourcePrice
		}
		if *it.SourcePrice > maxP {
			maxP = *it.SourcePrice
		}
	}
	return minP, maxP
}
