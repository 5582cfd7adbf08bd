package pipeline

import (
	"bytes"
	"context"
	"errors"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/xuri/excelize/v2"

	"github.com/Rynawkin/bakircilar-b2b-sub003/internal"
	"github.com/Rynawkin/bakircilar-b2b-sub003/internal/config"
	"github.com/Rynawkin/bakircilar-b2b-sub003/internal/storage"
	"github.com/Rynawkin/bakircilar-b2b-sub003/internal/supplier"
	"github.com/Rynawkin/bakircilar-b2b-sub003/internal/util"
)

func mkXLSX(rows [][]any) []byte {
	f := excelize.NewFile()
	sheet := f.GetSheetName(0)
	for r, row := range rows {
		for c, v := range row {
			cell, _ := excelize.CoordinatesToCellName(c+1, r+1)
			_ = f.SetCellValue(sheet, cell, v)
		}
	}
	buf := bytes.NewBuffer(nil)
	_, _ = f.WriteTo(buf)
	return buf.Bytes()
}

func testConfig() config.Config {
	return config.Config{
		UploadTimeoutSec:    30,
		PriceOutlierRatio:   20,
		PriceMagnitudeFloor: 10,
		PreviewSampleRows:   5,
	}
}

func setupDB(t *testing.T) *storage.DB {
	t.Helper()
	db, err := storage.Open(filepath.Join(t.TempDir(), "app.db"))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func TestSmokeUploadToExport(t *testing.T) {
	db := setupDB(t)

	if err := db.UpsertSupplier(supplier.Config{
		ID:               1,
		Name:             "Bakırcılar Hırdavat",
		PriceIncludesVat: true,
		DefaultVatRate:   util.FloatPtr(0.20),
		Discount1:        10,
	}); err != nil {
		t.Fatal(err)
	}

	if err := db.UpsertProducts([]internal.CatalogProduct{
		{ID: 10, MikroCode: "STK-001", Name: "Altıgen Cıvata M8", ForeignName: "B101996", CurrentCost: util.FloatPtr(60), VatRate: util.FloatPtr(0.20)},
		{ID: 11, MikroCode: "STK-002", Name: "Somun M8", ForeignName: "B200100", CurrentCost: util.FloatPtr(5), VatRate: util.FloatPtr(0.20)},
	}); err != nil {
		t.Fatal(err)
	}

	blob := mkXLSX([][]any{
		{"Kod", "Ad", "Fiyat"},
		{"B101996", "Ürün A", "86,69"},
		{"X999111", "Ürün B", "12,50"},
	})

	svc := NewUploadService(db, testConfig())
	batch, err := svc.Run(context.Background(), 1, nil, []UploadFile{{Name: "liste.xlsx", Content: blob}})
	if err != nil {
		t.Fatal(err)
	}
	if batch.Status != internal.BatchCompleted {
		t.Fatalf("status = %s (%v)", batch.Status, batch.ErrorMessage)
	}
	if batch.TotalItems != 2 || batch.MatchedItems != 1 || batch.UnmatchedItems != 1 {
		t.Fatalf("batch = %+v", batch)
	}

	items, err := db.ListBatchItems(batch.ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(items) != 2 {
		t.Fatalf("items = %d", len(items))
	}
	first := items[0]
	if first.NormalizedCode != "B101996" || first.MatchCount != 1 {
		t.Fatalf("item = %+v", first)
	}
	if first.NetPrice == nil || math.Abs(*first.NetPrice-65.0175) > 1e-9 {
		t.Fatalf("netPrice = %v, want 65.0175", first.NetPrice)
	}

	rows, err := db.ListItemMatches(first.ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 1 || rows[0].ProductCode != "STK-001" {
		t.Fatalf("matches = %+v", rows)
	}
	if rows[0].CostDifference == nil || math.Abs(*rows[0].CostDifference-5.0175) > 1e-9 {
		t.Fatalf("costDifference = %v", rows[0].CostDifference)
	}

	report, err := BuildReport(db, batch.ID, 20)
	if err != nil {
		t.Fatal(err)
	}
	if len(report.Matched) != 1 || len(report.Unmatched) != 1 {
		t.Fatalf("report buckets = %d/%d", len(report.Matched), len(report.Unmatched))
	}

	out := filepath.Join(t.TempDir(), "rapor.xlsx")
	if err := ExportXLSX(report, out); err != nil {
		t.Fatal(err)
	}
	if _, err := os.Stat(out); err != nil {
		t.Fatal(err)
	}
}

func TestUploadMultiMatchCardinality(t *testing.T) {
	db := setupDB(t)
	_ = db.UpsertSupplier(supplier.Config{ID: 1, Name: "A", PriceIsNet: true})
	if err := db.UpsertProducts([]internal.CatalogProduct{
		{ID: 1, MikroCode: "STK-A", Name: "Varyant A", ForeignName: "B101996"},
		{ID: 2, MikroCode: "STK-B", Name: "Varyant B", ForeignName: "b-101996"},
	}); err != nil {
		t.Fatal(err)
	}

	blob := mkXLSX([][]any{
		{"Kod", "Ad", "Fiyat"},
		{"B101996", "Cıvata", "86,69"},
	})
	svc := NewUploadService(db, testConfig())
	batch, err := svc.Run(context.Background(), 1, nil, []UploadFile{{Name: "liste.xlsx", Content: blob}})
	if err != nil {
		t.Fatal(err)
	}
	if batch.MultiMatchItems != 1 || batch.MatchedItems != 0 {
		t.Fatalf("batch = %+v", batch)
	}

	items, _ := db.ListBatchItems(batch.ID)
	if len(items) != 1 || items[0].MatchCount != 2 {
		t.Fatalf("items = %+v", items)
	}
	rows, _ := db.ListItemMatches(items[0].ID)
	if len(rows) != 2 {
		t.Fatalf("match rows = %d", len(rows))
	}
}

func TestUploadFailsOnZeroItems(t *testing.T) {
	db := setupDB(t)
	_ = db.UpsertSupplier(supplier.Config{ID: 1, Name: "A"})

	blob := mkXLSX([][]any{
		{"sadece serbest metin"},
		{"fiyat içermeyen satır"},
	})
	svc := NewUploadService(db, testConfig())
	batch, err := svc.Run(context.Background(), 1, nil, []UploadFile{{Name: "bos.xlsx", Content: blob}})
	if !errors.Is(err, ErrNoRowsParsed) {
		t.Fatalf("err = %v", err)
	}
	if batch == nil || batch.Status != internal.BatchFailed {
		t.Fatalf("batch = %+v", batch)
	}
}

func TestUploadOverrideChangesPricing(t *testing.T) {
	db := setupDB(t)
	_ = db.UpsertSupplier(supplier.Config{ID: 1, Name: "A", PriceIsNet: true})

	blob := mkXLSX([][]any{
		{"Kod", "Ad", "Fiyat"},
		{"B101996", "Cıvata", "100,00"},
	})
	svc := NewUploadService(db, testConfig())
	d := 10.0
	isNet := false
	batch, err := svc.Run(context.Background(), 1, &supplier.Override{PriceIsNet: &isNet, Discount1: &d},
		[]UploadFile{{Name: "liste.xlsx", Content: blob}})
	if err != nil {
		t.Fatal(err)
	}

	items, _ := db.ListBatchItems(batch.ID)
	if len(items) != 1 || items[0].NetPrice == nil || math.Abs(*items[0].NetPrice-90) > 1e-9 {
		t.Fatalf("items = %+v", items)
	}
}

func TestPreviewDoesNotPersist(t *testing.T) {
	db := setupDB(t)
	_ = db.UpsertSupplier(supplier.Config{ID: 1, Name: "A"})

	blob := mkXLSX([][]any{
		{"Kod", "Ad", "Fiyat"},
		{"B101996", "Cıvata", "86,69"},
	})
	svc := NewUploadService(db, testConfig())
	previews, err := svc.Preview(1, nil, []UploadFile{{Name: "liste.xlsx", Content: blob}})
	if err != nil {
		t.Fatal(err)
	}
	if len(previews) != 1 {
		t.Fatalf("previews = %d", len(previews))
	}
	p := previews[0]
	if p.Strategy != "table" || p.HeaderRow != 0 {
		t.Fatalf("preview = %+v", p)
	}
	if p.Mapping.Code != 0 || p.Mapping.Name != 1 || p.Mapping.Price != 2 {
		t.Fatalf("mapping = %+v", p.Mapping)
	}
	if len(p.Items) != 1 {
		t.Fatalf("items = %d", len(p.Items))
	}
}
