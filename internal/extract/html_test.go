package extract

import (
	"testing"

	"github.com/Rynawkin/bakircilar-b2b-sub003/internal/supplier"
)

func TestLoadHTMLPicksLargestTable(t *testing.T) {
	body := `<html><body>
<table><tr><td>menü</td></tr></table>
<table>
  <tr><th>Ürün Kodu</th><th>Ürün Adı</th><th>Fiyat</th></tr>
  <tr><td>B101996</td><td>Cıvata M8</td><td>86,69</td></tr>
  <tr><td>B101997</td><td>Cıvata M10</td><td>91,20</td></tr>
</table>
</body></html>`

	doc, err := LoadHTML([]byte(body), supplier.ExcelHints{})
	if err != nil {
		t.Fatal(err)
	}
	if doc.Kind != KindHTML {
		t.Fatalf("kind = %s", doc.Kind)
	}
	if len(doc.Rows) != 3 {
		t.Fatalf("rows = %d", len(doc.Rows))
	}
	if doc.HeaderRow != 0 {
		t.Fatalf("HeaderRow = %d", doc.HeaderRow)
	}
	if doc.Rows[1][0] != "B101996" {
		t.Fatalf("cell = %q", doc.Rows[1][0])
	}
}

func TestLoadHTMLNoTable(t *testing.T) {
	if _, err := LoadHTML([]byte("<p>fiyat listesi ektedir</p>"), supplier.ExcelHints{}); err == nil {
		t.Fatal("expected error for table-less body")
	}
}
