package parser

import (
	"strings"

	"github.com/Rynawkin/bakircilar-b2b-sub003/internal"
	"github.com/Rynawkin/bakircilar-b2b-sub003/internal/extract"
	"github.com/Rynawkin/bakircilar-b2b-sub003/internal/supplier"
	"github.com/Rynawkin/bakircilar-b2b-sub003/internal/util"
)

func parseTable(doc *extract.Document, cfg supplier.Config, p params) []internal.ParsedItem {
	if doc == nil || len(doc.Rows) == 0 {
		return nil
	}
	m := ResolveColumns(doc, cfg)
	if m.Code < 0 || m.Price < 0 {
		return nil
	}

	pat := cfg.CodeMatcher()
	var out []internal.ParsedItem
	pending := ""

	start := 0
	if doc.HeaderRow >= 0 {
		start = doc.HeaderRow + 1
	}
	for i := start; i < len(doc.Rows); i++ {
		row := doc.Rows[i]
		rawLine := ""
		if i < len(doc.Lines) {
			rawLine = doc.Lines[i]
		}
		if countFilled(row) == 0 {
			continue
		}

		code := CodeFromCell(cellAt(row, m.Code), pat)
		if code == "" {
			for col, cell := range row {
				if col == m.Price {
					continue
				}
				if code = CodeFromCell(cell, pat); code != "" {
					break
				}
			}
		}

		sel := util.SelectPrice(util.ExtractPriceCandidates(cellAt(row, m.Price)), cfg.PDF.PriceIndex, p.outlierRatio, p.magnitudeFloor)

		if sel == nil {
			if code == "" && rowIsTextOnly(rawLine) {
				pending = rawLine
			} else {
				pending = ""
			}
			continue
		}
		if code == "" {
			continue
		}

		name := cellAt(row, m.Name)
		if name == "" {
			var parts []string
			for col, cell := range row {
				if col == m.Code || col == m.Price || strings.TrimSpace(cell) == "" {
					continue
				}
				parts = append(parts, cell)
			}
			name = strings.Join(parts, " ")
		}
		if pending != "" {
			name = util.NormalizeSpaces(pending + " " + name)
			pending = ""
		}

		item := internal.ParsedItem{
			SupplierCode: code,
			SourcePrice:  util.FloatPtr(sel.Value),
			RawLine:      util.StringPtr(rawLine),
		}
		if name != "" {
			item.SupplierName = util.StringPtr(name)
		}
		if sel.Currency != "" {
			item.Currency = util.StringPtr(sel.Currency)
		}
		out = append(out, item)
	}
	return out
}

func cellAt(row []string, idx int) string {
	if idx >= 0 && idx < len(row) {
		return strings.TrimSpace(row[idx])
	}
	return ""
}

func rowIsTextOnly(line string) bool {
	return util.HasLetter(line) && len(util.ExtractPriceCandidates(line)) == 0
}
