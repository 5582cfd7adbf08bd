package catalog

import (
	"testing"

	"github.com/Rynawkin/bakircilar-b2b-sub003/internal"
)

func TestIndexMatchByNormalizedForeignName(t *testing.T) {
	products := []internal.CatalogProduct{
		{ID: 1, MikroCode: "STK-001", ForeignName: "b-101996"},
		{ID: 2, MikroCode: "STK-002", ForeignName: "B101996"},
		{ID: 3, MikroCode: "STK-003", ForeignName: "B101997"},
		{ID: 4, MikroCode: "STK-004", ForeignName: ""},
	}
	idx := BuildIndex(products)

	got := idx.Match("B101996")
	if len(got) != 2 {
		t.Fatalf("match count = %d, want 2", len(got))
	}
	if len(idx.Match("B101997")) != 1 {
		t.Fatal("single match expected")
	}
	if idx.Match("B999999") != nil {
		t.Fatal("unknown code must match nothing")
	}
	if idx.Match("") != nil {
		t.Fatal("empty normalized code must match nothing")
	}
}
