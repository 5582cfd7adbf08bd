package util

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Dotless ı carries no combining mark, so NFD stripping alone never folds it to I.
var turkishFold = strings.NewReplacer(
	"ı", "i", "İ", "I",
	"ş", "s", "Ş", "S",
	"ğ", "g", "Ğ", "G",
	"ü", "u", "Ü", "U",
	"ö", "o", "Ö", "O",
	"ç", "c", "Ç", "C",
)

var (
	reSpaces = regexp.MustCompile(`\s+`)
	reDigit  = regexp.MustCompile(`\d`)
)

var foldTransformer = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

func FoldDiacritics(input string) string {
	s := turkishFold.Replace(input)
	out, _, err := transform.String(foldTransformer, s)
	if err != nil {
		return s
	}
	return out
}

func NormalizeCode(input string) string {
	s := FoldDiacritics(strings.TrimSpace(input))
	s = strings.ToUpper(s)
	var b strings.Builder
	for _, r := range s {
		if (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
	}
	return b.String()
}

func NormalizeText(input string) string {
	s := strings.ToUpper(FoldDiacritics(input))
	return strings.TrimSpace(reSpaces.ReplaceAllString(s, " "))
}

func NormalizeSpaces(input string) string {
	return strings.TrimSpace(reSpaces.ReplaceAllString(input, " "))
}

func HasDigit(input string) bool {
	return reDigit.MatchString(input)
}

func HasLetter(input string) bool {
	for _, r := range input {
		if unicode.IsLetter(r) {
			return true
		}
	}
	return false
}

func StringPtr(v string) *string { return &v }

func FloatPtr(v float64) *float64 { return &v }

func IntPtr(v int) *int { return &v }
