package parser

import (
	"regexp"
	"strings"

	"github.com/Rynawkin/bakircilar-b2b-sub003/internal"
	"github.com/Rynawkin/bakircilar-b2b-sub003/internal/extract"
	"github.com/Rynawkin/bakircilar-b2b-sub003/internal/util"
)

var reTokenCode = regexp.MustCompile(`^[A-Za-z]{2,}[0-9]{2,}[A-Za-z0-9]*$`)

const tokenLookahead = 6

func parseTokens(doc *extract.Document, resolved map[string]bool) []internal.ParsedItem {
	if doc == nil {
		return nil
	}

	var out []internal.ParsedItem
	for _, line := range doc.Lines {
		tokens := strings.Fields(line)
		for ti, tok := range tokens {
			if !reTokenCode.MatchString(tok) {
				continue
			}
			norm := util.NormalizeCode(tok)
			if norm == "" || resolved[norm] {
				continue
			}

			var price *float64
			limit := ti + 1 + tokenLookahead
			if limit > len(tokens) {
				limit = len(tokens)
			}
			for wi := ti + 1; wi < limit; wi++ {
				v, ok := util.ParseDecimalToken(tokens[wi])
				if !ok {
					continue
				}
				if wi+1 < len(tokens) && util.IsUnitToken(tokens[wi+1]) {
					continue
				}
				price = util.FloatPtr(v)
				break
			}
			if price == nil {
				continue
			}

			resolved[norm] = true
			out = append(out, internal.ParsedItem{
				SupplierCode: tok,
				SourcePrice:  price,
				RawLine:      util.StringPtr(line),
			})
		}
	}
	return out
}
