package parser

import (
	"strings"

	"github.com/Rynawkin/bakircilar-b2b-sub003/internal"
	"github.com/Rynawkin/bakircilar-b2b-sub003/internal/extract"
	"github.com/Rynawkin/bakircilar-b2b-sub003/internal/supplier"
	"github.com/Rynawkin/bakircilar-b2b-sub003/internal/util"
)

func parseLines(doc *extract.Document, cfg supplier.Config, p params) []internal.ParsedItem {
	if doc == nil || doc.Kind != extract.KindPDF {
		return nil
	}

	pat := cfg.CodeMatcher()
	type lineKey struct {
		code  string
		price float64
	}
	seen := map[lineKey]bool{}

	var out []internal.ParsedItem
	for i, line := range doc.Lines {
		hits := FindCodes(line, pat)
		for j, hit := range hits {
			end := len(line)
			if j+1 < len(hits) {
				end = hits[j+1].Offset
			}
			scope := line[hit.Offset:end]

			cands := util.ExtractPriceCandidates(scope)
			if len(cands) == 0 && j == len(hits)-1 && i+1 < len(doc.Lines) {
				if next := doc.Lines[i+1]; len(FindCodes(next, pat)) == 0 {
					scope = scope + " " + next
					cands = util.ExtractPriceCandidates(scope)
				}
			}
			sel := util.SelectPrice(cands, cfg.PDF.PriceIndex, p.outlierRatio, p.magnitudeFloor)

			price := -1.0
			if sel != nil {
				price = sel.Value
			}
			k := lineKey{code: hit.Code, price: price}
			if seen[k] {
				continue
			}
			seen[k] = true

			item := internal.ParsedItem{
				SupplierCode: hit.Code,
				RawLine:      util.StringPtr(line),
			}
			if sel != nil {
				item.SourcePrice = util.FloatPtr(sel.Value)
				if sel.Currency != "" {
					item.Currency = util.StringPtr(sel.Currency)
				}
			}
			if name := scopeName(scope, hit.Code, sel); name != "" {
				item.SupplierName = util.StringPtr(name)
			}
			out = append(out, item)
		}
	}
	return out
}

func scopeName(scope, code string, sel *util.PriceCandidate) string {
	s := strings.Replace(scope, code, " ", 1)
	if sel != nil {
		s = strings.Replace(s, sel.Raw, " ", 1)
	}
	words := make([]string, 0, 8)
	for _, tok := range strings.Fields(s) {
		if util.IsCurrencyToken(tok) {
			continue
		}
		words = append(words, tok)
	}
	s = strings.Trim(strings.Join(words, " "), " .,;:-")
	if !util.HasLetter(s) {
		return ""
	}
	return s
}
