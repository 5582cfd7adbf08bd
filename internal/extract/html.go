package extract

import (
	"bytes"
	"fmt"

	"github.com/PuerkitoBio/goquery"

	"github.com/Rynawkin/bakircilar-b2b-sub003/internal/supplier"
)

func LoadHTML(content []byte, hints supplier.ExcelHints) (*Document, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(content))
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}

	var best [][]string
	doc.Find("table").Each(func(_ int, table *goquery.Selection) {
		var rows [][]string
		table.Find("tr").Each(func(_ int, tr *goquery.Selection) {
			var cells []string
			tr.Find("th,td").Each(func(_ int, cell *goquery.Selection) {
				cells = append(cells, cell.Text())
			})
			if len(cells) > 0 {
				rows = append(rows, cells)
			}
		})
		if len(rows) > len(best) {
			best = rows
		}
	})

	if len(best) == 0 {
		return nil, fmt.Errorf("html body has no table")
	}
	return buildTableDocument(KindHTML, best, hints), nil
}
