package pipeline

import (
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/Rynawkin/bakircilar-b2b-sub003/internal"
	"github.com/Rynawkin/bakircilar-b2b-sub003/internal/storage"
	"github.com/Rynawkin/bakircilar-b2b-sub003/internal/util"
)

const (
	suspiciousMaxPrice = 100000
	suspiciousMinPrice = 1
)

type Report struct {
	Batch     internal.UploadBatch
	Matched   []ReportLine
	Unmatched []ReportLine
	Multi     []ReportLine
}

type ReportLine struct {
	Item       internal.UploadItem
	Matches    []internal.MatchRow
	Suspicious bool
}

func Classify(item internal.UploadItem, outlierRatio float64) internal.ItemClass {
	if SuspiciousPrice(item, outlierRatio) {
		return internal.ClassSuspicious
	}
	switch {
	case item.MatchCount == 1:
		return internal.ClassMatched
	case item.MatchCount > 1:
		return internal.ClassMultiple
	default:
		return internal.ClassUnmatched
	}
}

func SuspiciousPrice(item internal.UploadItem, outlierRatio float64) bool {
	if item.SourcePrice == nil {
		return true
	}
	p := *item.SourcePrice
	if math.IsNaN(p) || math.IsInf(p, 0) || p <= 0 {
		return true
	}
	if p < suspiciousMinPrice || p >= suspiciousMaxPrice {
		return true
	}
	if item.RawLine != nil && outlierRatio > 0 {
		cands := util.ExtractPriceCandidates(*item.RawLine)
		minP, maxP := 0.0, 0.0
		for i, c := range cands {
			if i == 0 || c.Value < minP {
				minP = c.Value
			}
			if c.Value > maxP {
				maxP = c.Value
			}
		}
		if minP > 0 && maxP/minP >= outlierRatio && p == minP {
			return true
		}
	}
	return false
}

func BuildReport(db *storage.DB, batchID string, outlierRatio float64) (*Report, error) {
	batch, err := db.GetBatch(batchID)
	if err != nil {
		return nil, err
	}
	if batch == nil {
		return nil, fmt.Errorf("batch %s not found", batchID)
	}
	items, err := db.ListBatchItems(batchID)
	if err != nil {
		return nil, err
	}

	report := &Report{Batch: *batch}
	for _, item := range items {
		matches, err := db.ListItemMatches(item.ID)
		if err != nil {
			return nil, err
		}
		line := ReportLine{Item: item, Matches: matches}

		switch Classify(item, outlierRatio) {
		case internal.ClassMatched:
			report.Matched = append(report.Matched, line)
		case internal.ClassMultiple:
			report.Multi = append(report.Multi, line)
		default:
			line.Suspicious = SuspiciousPrice(item, outlierRatio)
			report.Unmatched = append(report.Unmatched, line)
		}
	}
	return report, nil
}

func ExportXLSX(report *Report, outputPath string) error {
	f := excelize.NewFile()

	matchedSheet := f.GetSheetName(0)
	_ = f.SetSheetName(matchedSheet, "Eşleşen")
	matchedSheet = "Eşleşen"
	if _, err := f.NewSheet("Eşleşmeyen"); err != nil {
		return err
	}
	if _, err := f.NewSheet("Çoklu Eşleşme"); err != nil {
		return err
	}

	writeHeader(f, matchedSheet, []string{
		"Tedarikçi Kodu", "Tedarikçi Ürün Adı", "Mikro Kodu", "Ürün Adı",
		"Liste Fiyatı", "Net Fiyat", "Mevcut Maliyet", "Fark", "Fark %", "Para Birimi",
	})
	r := 2
	for _, line := range report.Matched {
		for _, m := range line.Matches {
			setRow(f, matchedSheet, r, []any{
				line.Item.SupplierCode,
				derefString(line.Item.SupplierName),
				m.ProductCode,
				m.ProductName,
				derefFloat(line.Item.SourcePrice),
				derefFloat(m.NetPrice),
				derefFloat(m.CurrentCost),
				derefFloat(m.CostDifference),
				percentDifference(m),
				derefString(line.Item.Currency),
			})
			r++
		}
	}

	writeHeader(f, "Eşleşmeyen", []string{
		"Tedarikçi Kodu", "Tedarikçi Ürün Adı", "Liste Fiyatı", "Net Fiyat", "Para Birimi", "Satır", "Not",
	})
	r = 2
	for _, line := range report.Unmatched {
		note := ""
		if line.Suspicious {
			note = "Şüpheli fiyat"
		}
		setRow(f, "Eşleşmeyen", r, []any{
			line.Item.SupplierCode,
			derefString(line.Item.SupplierName),
			derefFloat(line.Item.SourcePrice),
			derefFloat(line.Item.NetPrice),
			derefString(line.Item.Currency),
			derefString(line.Item.RawLine),
			note,
		})
		r++
	}

	writeHeader(f, "Çoklu Eşleşme", []string{
		"Tedarikçi Kodu", "Tedarikçi Ürün Adı", "Liste Fiyatı", "Net Fiyat", "Eşleşme Sayısı", "Aday Mikro Kodları",
	})
	r = 2
	for _, line := range report.Multi {
		codes := make([]string, 0, len(line.Matches))
		for _, m := range line.Matches {
			codes = append(codes, m.ProductCode)
		}
		setRow(f, "Çoklu Eşleşme", r, []any{
			line.Item.SupplierCode,
			derefString(line.Item.SupplierName),
			derefFloat(line.Item.SourcePrice),
			derefFloat(line.Item.NetPrice),
			line.Item.MatchCount,
			strings.Join(codes, "; "),
		})
		r++
	}

	if dir := filepath.Dir(outputPath); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	return f.SaveAs(outputPath)
}

func percentDifference(m internal.MatchRow) any {
	if m.CostDifference == nil || m.CurrentCost == nil || *m.CurrentCost == 0 {
		return ""
	}
	return math.Round(*m.CostDifference / *m.CurrentCost * 10000) / 100
}

func writeHeader(f *excelize.File, sheet string, headers []string) {
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(sheet, cell, h)
	}
}

func setRow(f *excelize.File, sheet string, row int, values []any) {
	for i, v := range values {
		cell, _ := excelize.CoordinatesToCellName(i+1, row)
		_ = f.SetCellValue(sheet, cell, v)
	}
}

func derefString(v *string) string {
	if v == nil {
		return ""
	}
	return *v
}

func derefFloat(v *float64) any {
	if v == nil {
		return ""
	}
	return *v
}
