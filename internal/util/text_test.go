package util

import "testing"

func TestNormalizeCode(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"b101996", "B101996"},
		{" B-101/996 ", "B101996"},
		{"ŞĞÜÖÇİı", "SGUOCII"},
		{"ab.12,34", "AB1234"},
		{"", ""},
		{"---", ""},
	}
	for _, c := range cases {
		if got := NormalizeCode(c.in); got != c.want {
			t.Errorf("NormalizeCode(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestNormalizeCodeIdempotent(t *testing.T) {
	inputs := []string{"b101996", "ürün-KODU/12", "İĞŞ 99"}
	for _, in := range inputs {
		once := NormalizeCode(in)
		if twice := NormalizeCode(once); twice != once {
			t.Errorf("NormalizeCode not idempotent for %q: %q != %q", in, once, twice)
		}
	}
}

func TestNormalizeText(t *testing.T) {
	if got := NormalizeText("  Ürün  ADI  "); got != "URUN ADI" {
		t.Fatalf("got %q", got)
	}
	// dotless ı folds to plain I, not to nothing
	if got := NormalizeText("kırmızı"); got != "KIRMIZI" {
		t.Fatalf("got %q", got)
	}
}

func TestHasDigitHasLetter(t *testing.T) {
	if !HasDigit("abc1") || HasDigit("abc") {
		t.Fatal("HasDigit wrong")
	}
	if !HasLetter("1a2") || HasLetter("123") {
		t.Fatal("HasLetter wrong")
	}
	if !HasLetter("Ürün") {
		t.Fatal("HasLetter must accept non-ASCII letters")
	}
}
