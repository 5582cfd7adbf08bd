package parser

import (
	"github.com/Rynawkin/bakircilar-b2b-sub003/internal"
	"github.com/Rynawkin/bakircilar-b2b-sub003/internal/extract"
	"github.com/Rynawkin/bakircilar-b2b-sub003/internal/supplier"
	"github.com/Rynawkin/bakircilar-b2b-sub003/internal/util"
)

type params struct {
	outlierRatio   float64
	magnitudeFloor float64
}

type Result struct {
	Items    []internal.ParsedItem
	Strategy string
}

func Parse(doc *extract.Document, cfg supplier.Config) Result {
	p := params{
		outlierRatio:   cfg.ResolvedOutlierRatio(0),
		magnitudeFloor: cfg.ResolvedMagnitudeFloor(0),
	}

	if items := parseTable(doc, cfg, p); len(items) > 0 {
		return Result{Items: items, Strategy: "table"}
	}

	items := parseLines(doc, cfg, p)
	strategy := "line"

	resolved := make(map[string]bool, len(items))
	for _, it := range items {
		resolved[util.NormalizeCode(it.SupplierCode)] = true
	}
	if extra := parseTokens(doc, resolved); len(extra) > 0 {
		if len(items) == 0 {
			strategy = "token"
		}
		items = append(items, extra...)
	}
	return Result{Items: items, Strategy: strategy}
}
