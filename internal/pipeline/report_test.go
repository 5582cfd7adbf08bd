package pipeline

import (
	"math"
	"testing"

	"github.com/Rynawkin/bakircilar-b2b-sub003/internal"
	"github.com/Rynawkin/bakircilar-b2b-sub003/internal/util"
)

func TestClassify(t *testing.T) {
	price := util.FloatPtr(86.69)
	cases := []struct {
		name string
		item internal.UploadItem
		want internal.ItemClass
	}{
		{"matched", internal.UploadItem{SourcePrice: price, MatchCount: 1}, internal.ClassMatched},
		{"unmatched", internal.UploadItem{SourcePrice: price, MatchCount: 0}, internal.ClassUnmatched},
		{"multiple", internal.UploadItem{SourcePrice: price, MatchCount: 3}, internal.ClassMultiple},
		{"no price", internal.UploadItem{MatchCount: 1}, internal.ClassSuspicious},
		{"zero", internal.UploadItem{SourcePrice: util.FloatPtr(0), MatchCount: 1}, internal.ClassSuspicious},
		{"negative", internal.UploadItem{SourcePrice: util.FloatPtr(-5), MatchCount: 1}, internal.ClassSuspicious},
		{"sub unit", internal.UploadItem{SourcePrice: util.FloatPtr(0.4), MatchCount: 1}, internal.ClassSuspicious},
		{"huge", internal.UploadItem{SourcePrice: util.FloatPtr(250000), MatchCount: 1}, internal.ClassSuspicious},
		{"nan", internal.UploadItem{SourcePrice: util.FloatPtr(math.NaN()), MatchCount: 1}, internal.ClassSuspicious},
	}
	for _, c := range cases {
		if got := Classify(c.item, 20); got != c.want {
			t.Errorf("%s: got %s, want %s", c.name, got, c.want)
		}
	}
}

func TestSuspiciousPriceOutlierRawLine(t *testing.T) {
	raw := util.StringPtr("Koli 12,50 birim 650,00")

	picked := internal.UploadItem{
		SourcePrice: util.FloatPtr(650),
		RawLine:     raw,
		MatchCount:  1,
	}
	if SuspiciousPrice(picked, 20) {
		t.Fatal("group maximum is the selected price, must not be flagged")
	}
	if got := Classify(picked, 20); got != internal.ClassMatched {
		t.Fatalf("decoy-resolved item: got %s, want %s", got, internal.ClassMatched)
	}

	decoy := internal.UploadItem{
		SourcePrice: util.FloatPtr(12.5),
		RawLine:     raw,
		MatchCount:  1,
	}
	if !SuspiciousPrice(decoy, 20) {
		t.Fatal("group minimum under ratio 52 must flag the item")
	}

	calm := internal.UploadItem{
		SourcePrice: util.FloatPtr(86.69),
		RawLine:     util.StringPtr("Cıvata M8 86,69 TL"),
		MatchCount:  1,
	}
	if SuspiciousPrice(calm, 20) {
		t.Fatal("single-candidate line must not be flagged")
	}
}
