package extract

import (
	"bytes"
	"fmt"
	"io"
	"os"

	"github.com/shakinm/xlsReader/xls"
	"github.com/xuri/excelize/v2"

	"github.com/Rynawkin/bakircilar-b2b-sub003/internal/supplier"
)

func LoadXLSX(content []byte, hints supplier.ExcelHints) (*Document, error) {
	f, err := excelize.OpenReader(bytes.NewReader(content))
	if err != nil {
		return nil, fmt.Errorf("open xlsx: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("xlsx has no sheets")
	}
	sheet := sheets[0]
	if hints.SheetName != "" {
		for _, s := range sheets {
			if s == hints.SheetName {
				sheet = s
				break
			}
		}
	}

	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("read sheet %s: %w", sheet, err)
	}
	return buildTableDocument(KindExcel, rows, hints), nil
}

func LoadXLS(content []byte, hints supplier.ExcelHints) (*Document, error) {
	// xlsReader only opens files on disk.
	tmp, err := os.CreateTemp("", "pricelist-*.xls")
	if err != nil {
		return nil, err
	}
	defer os.Remove(tmp.Name())

	if _, err := io.Copy(tmp, bytes.NewReader(content)); err != nil {
		tmp.Close()
		return nil, err
	}
	tmp.Close()

	workbook, err := xls.OpenFile(tmp.Name())
	if err != nil {
		return nil, fmt.Errorf("open xls: %w", err)
	}

	sheetIdx := 0
	if hints.SheetName != "" {
		for i := 0; i < workbook.GetNumberSheets(); i++ {
			if s, err := workbook.GetSheet(i); err == nil && s != nil && s.GetName() == hints.SheetName {
				sheetIdx = i
				break
			}
		}
	}

	sheet, err := workbook.GetSheet(sheetIdx)
	if err != nil || sheet == nil {
		return nil, fmt.Errorf("xls has no readable sheet")
	}

	var rows [][]string
	for i := 0; i <= int(sheet.GetNumberRows()); i++ {
		row, err := sheet.GetRow(i)
		if err != nil || row == nil {
			continue
		}
		var cells []string
		for _, col := range row.GetCols() {
			if col != nil {
				cells = append(cells, col.GetString())
			} else {
				cells = append(cells, "")
			}
		}
		rows = append(rows, cells)
	}

	return buildTableDocument(KindExcel, rows, hints), nil
}
