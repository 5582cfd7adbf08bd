package extract

import (
	"bytes"
	"fmt"
	"strings"

	pdf "github.com/ledongthuc/pdf"

	"github.com/Rynawkin/bakircilar-b2b-sub003/internal/supplier"
	"github.com/Rynawkin/bakircilar-b2b-sub003/internal/util"
)

func LoadPDF(content []byte, cfg supplier.Config) (*Document, error) {
	r, err := pdf.NewReader(bytes.NewReader(content), int64(len(content)))
	if err != nil {
		return nil, fmt.Errorf("open pdf: %w", err)
	}

	eng, engErr := layoutEngine()
	if engErr != nil {
		doc, err := plainTextDocument(r)
		if err != nil {
			return nil, err
		}
		return doc, fmt.Errorf("%w: %v", ErrExtractionUnavailable, engErr)
	}

	var rows []textRow
	for i := 1; i <= r.NumPage(); i++ {
		p := r.Page(i)
		if p.V.IsNull() {
			continue
		}
		content := p.Content()
		glyphs := make([]glyph, 0, len(content.Text))
		for _, t := range content.Text {
			glyphs = append(glyphs, glyph{x: t.X, y: t.Y, w: t.W, s: t.S})
		}
		rows = append(rows, eng.clusterRows(i, glyphs)...)
	}

	doc := &Document{Kind: KindPDF, HeaderRow: -1}
	for _, row := range rows {
		doc.Lines = append(doc.Lines, row.text())
	}

	var columns []float64
	headerIdx := -1
	for i, row := range rows {
		if isPriceListHeader(row.text()) {
			headerIdx = i
			break
		}
	}
	if headerIdx >= 0 {
		var labels []string
		columns, labels = eng.headerColumns(rows[headerIdx])
		doc.HeaderRow = headerIdx
		doc.HeaderLabels = labels
	} else {
		columns = eng.clusterColumns(rows)
	}

	if len(columns) >= 2 {
		for _, row := range rows {
			doc.Rows = append(doc.Rows, eng.assignToColumns(row, columns))
		}
		if headerIdx >= 0 {
			doc.Rows[headerIdx] = doc.HeaderLabels
		}
	}
	return doc, nil
}

func plainTextDocument(r *pdf.Reader) (*Document, error) {
	doc := &Document{Kind: KindPDF, HeaderRow: -1}
	for i := 1; i <= r.NumPage(); i++ {
		p := r.Page(i)
		if p.V.IsNull() {
			continue
		}
		text, err := p.GetPlainText(nil)
		if err != nil {
			continue
		}
		for _, line := range strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n") {
			line = util.NormalizeSpaces(line)
			if line != "" {
				doc.Lines = append(doc.Lines, line)
			}
		}
	}
	return doc, nil
}
