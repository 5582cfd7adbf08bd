package extract

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/Rynawkin/bakircilar-b2b-sub003/internal/supplier"
	"github.com/Rynawkin/bakircilar-b2b-sub003/internal/util"
)

var ErrExtractionUnavailable = errors.New("structural extraction unavailable")

type Kind string

const (
	KindExcel Kind = "excel"
	KindPDF   Kind = "pdf"
	KindHTML  Kind = "html"
)

type Document struct {
	Kind         Kind
	Rows         [][]string
	Lines        []string
	HeaderRow    int
	HeaderLabels []string
}

func Load(filename string, content []byte, cfg supplier.Config) (*Document, error) {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".xlsx":
		return LoadXLSX(content, cfg.Excel)
	case ".xls":
		return LoadXLS(content, cfg.Excel)
	case ".pdf":
		return LoadPDF(content, cfg)
	case ".html", ".htm":
		return LoadHTML(content, cfg.Excel)
	default:
		return nil, fmt.Errorf("unsupported file type: %s", filename)
	}
}

func buildTableDocument(kind Kind, rows [][]string, hints supplier.ExcelHints) *Document {
	doc := &Document{Kind: kind, HeaderRow: -1}
	for _, row := range rows {
		cells := make([]string, len(row))
		for i, c := range row {
			cells[i] = util.NormalizeSpaces(c)
		}
		doc.Rows = append(doc.Rows, cells)
		doc.Lines = append(doc.Lines, strings.TrimSpace(strings.Join(cells, " ")))
	}

	if hints.HeaderRow != nil && *hints.HeaderRow >= 0 && *hints.HeaderRow < len(doc.Rows) {
		doc.HeaderRow = *hints.HeaderRow
	} else {
		doc.HeaderRow = scanHeaderRow(doc.Rows)
	}
	if doc.HeaderRow >= 0 {
		doc.HeaderLabels = doc.Rows[doc.HeaderRow]
	}
	return doc
}

const headerScanLimit = 20

func scanHeaderRow(rows [][]string) int {
	limit := len(rows)
	if limit > headerScanLimit {
		limit = headerScanLimit
	}
	for i := 0; i < limit; i++ {
		hasCode, hasName, hasPrice := false, false, false
		for _, cell := range rows[i] {
			switch HeaderRole(cell) {
			case "code":
				hasCode = true
			case "name":
				hasName = true
			case "price":
				hasPrice = true
			}
		}
		if hasPrice && (hasCode || hasName) {
			return i
		}
	}
	return -1
}

func HeaderRole(label string) string {
	norm := util.NormalizeText(label)
	if norm == "" {
		return ""
	}
	words := strings.Fields(norm)

	for _, w := range words {
		if strings.HasPrefix(w, "FIYAT") || w == "NET" || strings.HasPrefix(w, "TUTAR") {
			return "price"
		}
	}
	for _, w := range words {
		switch w {
		case "AD", "ADI", "ISIM", "ISMI", "ACIKLAMA", "CINS", "CINSI":
			return "name"
		}
	}
	for _, w := range words {
		if w == "KOD" || w == "KODU" {
			return "code"
		}
	}
	// A bare "Stok" column without a Kod word still means the code column.
	for _, w := range words {
		if w == "STOK" {
			return "code"
		}
	}
	return ""
}
