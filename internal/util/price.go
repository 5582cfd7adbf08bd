package util

import (
	"regexp"
	"strconv"
	"strings"
)

type PriceCandidate struct {
	Value    float64
	Raw      string
	Offset   int
	Currency string
	HasUnit  bool
}

const (
	DefaultOutlierRatio   = 20.0
	DefaultMagnitudeFloor = 10.0
)

// The prefix class also rejects letters so code tokens (B101996, M8) never leak digits.
var numberPattern = regexp.MustCompile(`(?:^|[^0-9.,A-Za-z])(\d{1,3}(?:\.\d{3})+(?:,\d+)?|\d{1,3}(?:,\d{3})+(?:\.\d+)?|\d+[.,]\d+|\d+)`)

var unitTokens = map[string]bool{
	"kg": true, "gr": true, "g": true, "lt": true, "l": true, "ml": true,
	"m": true, "mt": true, "m2": true, "m3": true, "cm": true, "mm": true,
	"adet": true, "ad": true, "koli": true, "kutu": true, "paket": true,
	"pk": true, "rulo": true,
}

var currencyTokens = map[string]string{
	"tl": "TRY", "try": "TRY", "₺": "TRY",
	"usd": "USD", "$": "USD",
	"eur": "EUR", "euro": "EUR", "€": "EUR",
}

func ExtractPriceCandidates(input string) []PriceCandidate {
	line := strings.ReplaceAll(input, " ", " ")

	matches := numberPattern.FindAllStringSubmatchIndex(line, -1)
	out := make([]PriceCandidate, 0, len(matches))
	for _, m := range matches {
		start, end := m[2], m[3]
		raw := line[start:end]
		value, err := strconv.ParseFloat(normalizeNumericToken(raw), 64)
		if err != nil {
			continue
		}

		cand := PriceCandidate{Value: value, Raw: raw, Offset: start}
		after := adjacentToken(line[end:], false)
		before := adjacentToken(line[:start], true)
		if cur, ok := currencyTokens[after]; ok {
			cand.Currency = cur
		} else if cur, ok := currencyTokens[before]; ok {
			cand.Currency = cur
		}
		if cand.Currency == "" && unitTokens[after] {
			cand.HasUnit = true
		}
		out = append(out, cand)
	}
	return out
}

func SelectPrice(cands []PriceCandidate, priceIndex *int, outlierRatio, magnitudeFloor float64) *PriceCandidate {
	if len(cands) == 0 {
		return nil
	}

	pool := filterCandidates(cands, func(c PriceCandidate) bool { return c.Currency != "" })
	if len(pool) == 0 {
		pool = filterCandidates(cands, func(c PriceCandidate) bool { return !c.HasUnit })
	}
	if len(pool) == 0 {
		pool = cands
	}

	if priceIndex != nil && *priceIndex >= 0 && *priceIndex < len(pool) {
		return &pool[*priceIndex]
	}
	if len(pool) == 1 {
		return &pool[0]
	}

	if outlierRatio <= 0 {
		outlierRatio = DefaultOutlierRatio
	}
	if magnitudeFloor <= 0 {
		magnitudeFloor = DefaultMagnitudeFloor
	}

	maxIdx := 0
	minVal, maxVal := pool[0].Value, pool[0].Value
	for i, c := range pool {
		if c.Value > maxVal {
			maxVal = c.Value
			maxIdx = i
		}
		if c.Value < minVal {
			minVal = c.Value
		}
	}

	if (maxVal >= magnitudeFloor && minVal < 1) || (minVal > 0 && maxVal/minVal >= outlierRatio) {
		return &pool[maxIdx]
	}
	return &pool[len(pool)-1]
}

func ParseCellPrice(cell string) (float64, bool) {
	compact := NormalizeSpaces(cell)
	if compact == "" {
		return 0, false
	}
	cands := ExtractPriceCandidates(compact)
	if len(cands) != 1 {
		return 0, false
	}

	rest := compact[:cands[0].Offset] + " " + compact[cands[0].Offset+len(cands[0].Raw):]
	for _, word := range strings.Fields(rest) {
		key := strings.ToLower(FoldDiacritics(strings.Trim(word, ".,;:()")))
		if key == "" {
			continue
		}
		if _, ok := currencyTokens[key]; ok {
			continue
		}
		if unitTokens[key] {
			continue
		}
		return 0, false
	}
	return cands[0].Value, true
}

func IsCurrencyToken(tok string) bool {
	key := strings.ToLower(FoldDiacritics(strings.Trim(tok, ".,;:()")))
	_, ok := currencyTokens[key]
	return ok
}

func IsUnitToken(tok string) bool {
	key := strings.ToLower(FoldDiacritics(strings.Trim(tok, ".,;:()")))
	key = strings.ReplaceAll(key, "²", "2")
	key = strings.ReplaceAll(key, "³", "3")
	return unitTokens[key]
}

var decimalShaped = regexp.MustCompile(`^\d{1,3}(?:\.\d{3})+(?:,\d+)?$|^\d+[.,]\d+$`)

func ParseDecimalToken(tok string) (float64, bool) {
	if !decimalShaped.MatchString(tok) {
		return 0, false
	}
	v, err := strconv.ParseFloat(normalizeNumericToken(tok), 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

func filterCandidates(cands []PriceCandidate, keep func(PriceCandidate) bool) []PriceCandidate {
	out := make([]PriceCandidate, 0, len(cands))
	for _, c := range cands {
		if keep(c) {
			out = append(out, c)
		}
	}
	return out
}

func adjacentToken(s string, reverse bool) string {
	if reverse {
		trimmed := strings.TrimRight(s, " ")
		if len(s)-len(trimmed) > 2 {
			return ""
		}
		for _, sym := range []string{"₺", "$", "€"} {
			if strings.HasSuffix(trimmed, sym) {
				return sym
			}
		}
		idx := strings.LastIndexFunc(trimmed, func(r rune) bool { return r == ' ' })
		word := trimmed[idx+1:]
		return strings.ToLower(FoldDiacritics(strings.Trim(word, ".,;:")))
	}

	trimmed := strings.TrimLeft(s, " ")
	if len(s)-len(trimmed) > 2 {
		return ""
	}
	for _, sym := range []string{"₺", "$", "€"} {
		if strings.HasPrefix(trimmed, sym) {
			return sym
		}
	}
	end := strings.IndexFunc(trimmed, func(r rune) bool { return r == ' ' })
	word := trimmed
	if end >= 0 {
		word = trimmed[:end]
	}
	word = strings.ToLower(FoldDiacritics(strings.Trim(word, ".,;:()")))
	word = strings.ReplaceAll(word, "²", "2")
	word = strings.ReplaceAll(word, "³", "3")
	return word
}

var (
	reThousandDotFrac   = regexp.MustCompile(`^\d{1,3}(?:\.\d{3})+,\d+$`)
	reThousandCommaFrac = regexp.MustCompile(`^\d{1,3}(?:,\d{3})+\.\d+$`)
	reThousandDot       = regexp.MustCompile(`^\d{1,3}(?:\.\d{3})+$`)
	reThousandComma     = regexp.MustCompile(`^\d{1,3}(?:,\d{3})+$`)
)

func normalizeNumericToken(token string) string {
	compact := strings.ReplaceAll(token, " ", "")
	switch {
	case reThousandDotFrac.MatchString(compact):
		compact = strings.ReplaceAll(compact, ".", "")
		return strings.ReplaceAll(compact, ",", ".")
	case reThousandCommaFrac.MatchString(compact):
		return strings.ReplaceAll(compact, ",", "")
	case reThousandDot.MatchString(compact):
		return strings.ReplaceAll(compact, ".", "")
	case reThousandComma.MatchString(compact):
		return strings.ReplaceAll(compact, ",", "")
	case strings.Contains(compact, ",") && !strings.Contains(compact, "."):
		return strings.ReplaceAll(compact, ",", ".")
	}
	return compact
}
