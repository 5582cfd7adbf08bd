package extract

import (
	"sort"
	"strings"
	"sync"

	"github.com/Rynawkin/bakircilar-b2b-sub003/internal/util"
)

type Engine struct {
	RowTolerance   float64
	GlueGap        float64
	FragmentGap    float64
	LabelGap       float64
	ColTolerance   float64
	MinColumnShare float64
	MaxColumns     int
}

var (
	engineOnce sync.Once
	engineInst *Engine
	engineErr  error
)

func layoutEngine() (*Engine, error) {
	engineOnce.Do(func() {
		engineInst, engineErr = newEngine()
	})
	return engineInst, engineErr
}

func newEngine() (*Engine, error) {
	return &Engine{
		RowTolerance:   2.0,
		GlueGap:        1.5,
		FragmentGap:    7.0,
		LabelGap:       14.0,
		ColTolerance:   10.0,
		MinColumnShare: 0.3,
		MaxColumns:     8,
	}, nil
}

type glyph struct {
	x, y, w float64
	s       string
}

type fragment struct {
	x, w float64
	text string
}

func (f fragment) end() float64 { return f.x + f.w }

type textRow struct {
	page  int
	y     float64
	frags []fragment
}

func (r textRow) text() string {
	parts := make([]string, 0, len(r.frags))
	for _, f := range r.frags {
		parts = append(parts, f.text)
	}
	return util.NormalizeSpaces(strings.Join(parts, " "))
}

func (e *Engine) clusterRows(page int, glyphs []glyph) []textRow {
	sort.SliceStable(glyphs, func(i, j int) bool {
		if glyphs[i].y != glyphs[j].y {
			return glyphs[i].y > glyphs[j].y
		}
		return glyphs[i].x < glyphs[j].x
	})

	var rows []textRow
	var curGlyphs []glyph
	curY := 0.0
	flush := func() {
		if len(curGlyphs) == 0 {
			return
		}
		rows = append(rows, textRow{page: page, y: curY, frags: e.mergeFragments(curGlyphs)})
		curGlyphs = nil
	}

	for _, g := range glyphs {
		if strings.TrimSpace(g.s) == "" {
			continue
		}
		if len(curGlyphs) == 0 || curY-g.y > e.RowTolerance {
			flush()
			curY = g.y
		}
		curGlyphs = append(curGlyphs, g)
	}
	flush()
	return rows
}

func (e *Engine) mergeFragments(glyphs []glyph) []fragment {
	sort.SliceStable(glyphs, func(i, j int) bool { return glyphs[i].x < glyphs[j].x })

	var out []fragment
	for _, g := range glyphs {
		if len(out) == 0 {
			out = append(out, fragment{x: g.x, w: g.w, text: g.s})
			continue
		}
		cur := &out[len(out)-1]
		gap := g.x - cur.end()
		switch {
		case gap <= e.GlueGap:
			cur.text += g.s
			cur.w = g.x + g.w - cur.x
		case gap <= e.FragmentGap:
			cur.text += " " + g.s
			cur.w = g.x + g.w - cur.x
		default:
			out = append(out, fragment{x: g.x, w: g.w, text: g.s})
		}
	}
	for i := range out {
		out[i].text = util.NormalizeSpaces(out[i].text)
	}
	return out
}

func isPriceListHeader(line string) bool {
	n := util.NormalizeText(line)
	if !strings.Contains(n, "KOD") {
		return false
	}
	if !strings.Contains(n, "URUN") && !strings.Contains(n, "STOK") {
		return false
	}
	return strings.Contains(n, "FIYAT") || strings.Contains(n, "NET")
}

func (e *Engine) headerColumns(row textRow) ([]float64, []string) {
	var centers []float64
	var labels []string
	var curStart, curEnd float64
	var curText string

	flush := func() {
		if curText == "" {
			return
		}
		centers = append(centers, curStart)
		labels = append(labels, util.NormalizeSpaces(curText))
		curText = ""
	}

	for _, f := range row.frags {
		if curText != "" && f.x-curEnd <= e.LabelGap {
			curText += " " + f.text
			curEnd = f.end()
			continue
		}
		flush()
		curStart, curEnd, curText = f.x, f.end(), f.text
	}
	flush()
	return centers, labels
}

type centroid struct {
	x     float64
	count int
}

func (e *Engine) clusterColumns(rows []textRow) []float64 {
	priceRows := 0
	var cents []centroid
	for _, row := range rows {
		if len(util.ExtractPriceCandidates(row.text())) == 0 {
			continue
		}
		priceRows++
		for _, f := range row.frags {
			merged := false
			for i := range cents {
				if abs(cents[i].x-f.x) <= e.ColTolerance {
					cents[i].x = (cents[i].x*float64(cents[i].count) + f.x) / float64(cents[i].count+1)
					cents[i].count++
					merged = true
					break
				}
			}
			if !merged {
				cents = append(cents, centroid{x: f.x, count: 1})
			}
		}
	}
	if priceRows == 0 {
		return nil
	}

	minCount := int(e.MinColumnShare * float64(priceRows))
	if minCount < 1 {
		minCount = 1
	}
	kept := make([]centroid, 0, len(cents))
	for _, c := range cents {
		if c.count >= minCount {
			kept = append(kept, c)
		}
	}
	if len(kept) < 2 {
		sort.Slice(cents, func(i, j int) bool { return cents[i].count > cents[j].count })
		kept = cents
		if len(kept) > e.MaxColumns {
			kept = kept[:e.MaxColumns]
		}
	}

	xs := make([]float64, 0, len(kept))
	for _, c := range kept {
		xs = append(xs, c.x)
	}
	sort.Float64s(xs)
	return xs
}

func (e *Engine) assignToColumns(row textRow, columns []float64) []string {
	cells := make([]string, len(columns))
	for _, f := range row.frags {
		best := -1
		bestDist := 0.0
		for i, x := range columns {
			d := abs(f.x - x)
			if best < 0 || d < bestDist {
				best, bestDist = i, d
			}
		}
		if best < 0 || bestDist > e.ColTolerance*1.5 {
			continue
		}
		if cells[best] != "" {
			cells[best] += " "
		}
		cells[best] += f.text
	}
	return cells
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
