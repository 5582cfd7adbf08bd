package parser

import (
	"strings"

	"github.com/Rynawkin/bakircilar-b2b-sub003/internal/extract"
	"github.com/Rynawkin/bakircilar-b2b-sub003/internal/supplier"
	"github.com/Rynawkin/bakircilar-b2b-sub003/internal/util"
)

type Mapping struct {
	Code  int
	Name  int
	Price int
}

const (
	classifierSampleRows = 20
	priceMinRatio        = 0.6
	priceMinCount        = 2
	codeMinRatio         = 0.5
	textMinRatio         = 0.5
)

func ResolveColumns(doc *extract.Document, cfg supplier.Config) Mapping {
	m := Mapping{Code: -1, Name: -1, Price: -1}

	for col, role := range cfg.PDF.ColumnRoles {
		switch strings.ToLower(role) {
		case "code":
			m.Code = col
		case "name":
			m.Name = col
		case "price":
			m.Price = col
		}
	}

	if doc.HeaderRow >= 0 {
		applyHeaderLabels(&m, doc.HeaderLabels, cfg.Excel)
	}
	if m.Code < 0 || m.Price < 0 || m.Name < 0 {
		applyStatistics(&m, doc, cfg)
	}
	return m
}

func applyHeaderLabels(m *Mapping, labels []string, hints supplier.ExcelHints) {
	match := func(label, hint string) bool {
		return hint != "" && strings.Contains(util.NormalizeText(label), util.NormalizeText(hint))
	}
	for i, label := range labels {
		if m.Code < 0 && match(label, hints.CodeHeader) {
			m.Code = i
		}
		if m.Name < 0 && match(label, hints.NameHeader) {
			m.Name = i
		}
		if m.Price < 0 && match(label, hints.PriceHeader) {
			m.Price = i
		}
	}
	for i, label := range labels {
		if taken(m, i) {
			continue
		}
		switch extract.HeaderRole(label) {
		case "code":
			if m.Code < 0 {
				m.Code = i
			}
		case "name":
			if m.Name < 0 {
				m.Name = i
			}
		case "price":
			if m.Price < 0 {
				m.Price = i
			}
		}
	}
}

type columnStats struct {
	filled  int
	numeric int
	code    int
	text    int
}

func applyStatistics(m *Mapping, doc *extract.Document, cfg supplier.Config) {
	start := 0
	if doc.HeaderRow >= 0 {
		start = doc.HeaderRow + 1
	}
	pat := cfg.CodeMatcher()

	width := 0
	for _, row := range doc.Rows {
		if len(row) > width {
			width = len(row)
		}
	}
	if width == 0 {
		return
	}

	stats := make([]columnStats, width)
	sampled := 0
	for i := start; i < len(doc.Rows) && sampled < classifierSampleRows; i++ {
		row := doc.Rows[i]
		if countFilled(row) < 2 {
			continue
		}
		sampled++
		for col, cell := range row {
			cell = strings.TrimSpace(cell)
			if cell == "" {
				continue
			}
			stats[col].filled++
			if _, ok := util.ParseCellPrice(cell); ok {
				stats[col].numeric++
			}
			if CodeFromCell(cell, pat) != "" {
				stats[col].code++
			}
			if util.HasLetter(cell) {
				stats[col].text++
			}
		}
	}

	if m.Price < 0 {
		m.Price = bestColumn(stats, m, func(s columnStats) int { return s.numeric }, priceMinRatio, priceMinCount)
	}
	if m.Code < 0 {
		m.Code = bestColumn(stats, m, func(s columnStats) int { return s.code }, codeMinRatio, priceMinCount)
	}
	if m.Name < 0 {
		m.Name = bestColumn(stats, m, func(s columnStats) int { return s.text }, textMinRatio, 1)
	}
}

func bestColumn(stats []columnStats, m *Mapping, count func(columnStats) int, minRatio float64, minCount int) int {
	best, bestRatio := -1, 0.0
	for col, s := range stats {
		if s.filled == 0 || taken(m, col) {
			continue
		}
		c := count(s)
		ratio := float64(c) / float64(s.filled)
		if c >= minCount && ratio >= minRatio && ratio > bestRatio {
			best, bestRatio = col, ratio
		}
	}
	return best
}

func taken(m *Mapping, col int) bool {
	return m.Code == col || m.Name == col || m.Price == col
}

func countFilled(row []string) int {
	n := 0
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			n++
		}
	}
	return n
}
