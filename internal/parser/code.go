package parser

import (
	"regexp"
	"strings"

	"github.com/Rynawkin/bakircilar-b2b-sub003/internal/supplier"
	"github.com/Rynawkin/bakircilar-b2b-sub003/internal/util"
)

var (
	reCodeStrip = regexp.MustCompile(`[^A-Za-z0-9/\-]`)
	reCodeShape = regexp.MustCompile(`^[A-Za-z0-9]+(?:[-/][A-Za-z0-9]+)*$`)
	reAllDigits = regexp.MustCompile(`^[0-9]+$`)
)

func CodeToken(tok string) (string, bool) {
	s := reCodeStrip.ReplaceAllString(tok, "")
	if len(s) < 3 {
		return "", false
	}
	if !util.HasDigit(s) || reAllDigits.MatchString(s) {
		return "", false
	}
	if !reCodeShape.MatchString(s) {
		return "", false
	}
	return s, true
}

type CodeHit struct {
	Code   string
	Offset int
}

func FindCodes(line string, pat supplier.CodePattern) []CodeHit {
	if pat.Valid() {
		var out []CodeHit
		for _, idx := range pat.FindAllIndex(line) {
			out = append(out, CodeHit{Code: line[idx[0]:idx[1]], Offset: idx[0]})
		}
		return out
	}

	var out []CodeHit
	i := 0
	for i < len(line) {
		for i < len(line) && line[i] == ' ' {
			i++
		}
		start := i
		for i < len(line) && line[i] != ' ' {
			i++
		}
		if start == i {
			break
		}
		if code, ok := CodeToken(line[start:i]); ok {
			out = append(out, CodeHit{Code: code, Offset: start})
		}
	}
	return out
}

func CodeFromCell(cell string, pat supplier.CodePattern) string {
	cell = strings.TrimSpace(cell)
	if cell == "" {
		return ""
	}
	if pat.Valid() {
		return pat.FindString(cell)
	}
	for _, tok := range strings.Fields(cell) {
		if code, ok := CodeToken(tok); ok {
			return code
		}
	}
	return ""
}
