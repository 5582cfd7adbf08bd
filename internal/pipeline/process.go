package pipeline

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/Rynawkin/bakircilar-b2b-sub003/internal"
	"github.com/Rynawkin/bakircilar-b2b-sub003/internal/catalog"
	"github.com/Rynawkin/bakircilar-b2b-sub003/internal/config"
	"github.com/Rynawkin/bakircilar-b2b-sub003/internal/consolidate"
	"github.com/Rynawkin/bakircilar-b2b-sub003/internal/extract"
	"github.com/Rynawkin/bakircilar-b2b-sub003/internal/parser"
	"github.com/Rynawkin/bakircilar-b2b-sub003/internal/pricing"
	"github.com/Rynawkin/bakircilar-b2b-sub003/internal/storage"
	"github.com/Rynawkin/bakircilar-b2b-sub003/internal/supplier"
	"github.com/Rynawkin/bakircilar-b2b-sub003/internal/util"
)

var ErrNoRowsParsed = errors.New("no price rows parsed from upload")

type UploadFile struct {
	Name    string
	Content []byte
}

type UploadService struct {
	db  *storage.DB
	cfg config.Config
}

func NewUploadService(db *storage.DB, cfg config.Config) *UploadService {
	return &UploadService{db: db, cfg: cfg}
}

func (s *UploadService) Run(ctx context.Context, supplierID int, override *supplier.Override, files []UploadFile) (*internal.UploadBatch, error) {
	stored, err := s.db.GetSupplier(supplierID)
	if err != nil {
		return nil, err
	}
	if stored == nil {
		return nil, fmt.Errorf("supplier %d not found", supplierID)
	}
	scfg := supplier.Resolve(*stored, override)

	batchID := uuid.NewString()
	if err := s.db.CreateBatch(batchID, supplierID); err != nil {
		return nil, err
	}

	timeout := time.Duration(s.cfg.UploadTimeoutSec) * time.Second
	if timeout <= 0 {
		timeout = 120 * time.Second
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	batch, err := s.process(ctx, batchID, scfg, files)
	if err != nil {
		msg := err.Error()
		if ctx.Err() != nil {
			msg = fmt.Sprintf("upload timed out after %s", timeout)
		}
		if failErr := s.db.FailBatch(batchID, msg); failErr != nil {
			fmt.Printf("batch %s: mark failed: %v\n", batchID, failErr)
		}
		failed, _ := s.db.GetBatch(batchID)
		return failed, err
	}
	return batch, nil
}

func (s *UploadService) process(ctx context.Context, batchID string, scfg supplier.Config, files []UploadFile) (*internal.UploadBatch, error) {
	items := s.parseFiles(ctx, scfg, files)
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	consolidated := consolidate.Consolidate(items, consolidate.Options{
		OutlierRatio:   scfg.ResolvedOutlierRatio(s.cfg.PriceOutlierRatio),
		MagnitudeFloor: scfg.ResolvedMagnitudeFloor(s.cfg.PriceMagnitudeFloor),
	})
	if len(consolidated) == 0 {
		return nil, ErrNoRowsParsed
	}

	products, err := s.db.ListProducts()
	if err != nil {
		return nil, err
	}
	idx := catalog.BuildIndex(products)

	uploadItems, matchRows, summary := s.reconcile(batchID, consolidated, idx, scfg)

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := s.db.SaveUploadRun(batchID, uploadItems, matchRows, summary); err != nil {
		return nil, err
	}
	return s.db.GetBatch(batchID)
}

func (s *UploadService) parseFiles(ctx context.Context, scfg supplier.Config, files []UploadFile) []internal.ParsedItem {
	var items []internal.ParsedItem
	for _, f := range files {
		if ctx.Err() != nil {
			return items
		}
		doc, err := extract.Load(f.Name, f.Content, scfg)
		if err != nil && !errors.Is(err, extract.ErrExtractionUnavailable) {
			fmt.Printf("extract %s: %v\n", f.Name, err)
			continue
		}
		if err != nil {
			fmt.Printf("extract %s: %v (falling back to plain lines)\n", f.Name, err)
		}
		res := parser.Parse(doc, scfg)
		fmt.Printf("parsed %s: %d items via %s strategy\n", f.Name, len(res.Items), res.Strategy)
		items = append(items, res.Items...)
	}
	return items
}

func (s *UploadService) reconcile(batchID string, consolidated []internal.ConsolidatedItem, idx *catalog.Index, scfg supplier.Config) ([]internal.UploadItem, [][]internal.MatchRow, internal.UploadBatch) {
	uploadItems := make([]internal.UploadItem, 0, len(consolidated))
	matchRows := make([][]internal.MatchRow, 0, len(consolidated))
	summary := internal.UploadBatch{ID: batchID, TotalItems: len(consolidated)}

	for _, ci := range consolidated {
		item := internal.UploadItem{
			BatchID:        batchID,
			SupplierCode:   ci.SupplierCode,
			NormalizedCode: ci.NormalizedCode,
			SupplierName:   ci.SupplierName,
			SourcePrice:    ci.SourcePrice,
			Currency:       ci.Currency,
			RawLine:        ci.RawLine,
		}

		name := ""
		if ci.SupplierName != nil {
			name = *ci.SupplierName
		}
		if ci.SourcePrice != nil {
			item.NetPrice = util.FloatPtr(pricing.NetPrice(*ci.SourcePrice, scfg, nil, s.cfg.DefaultVatRate, name))
		}

		products := idx.Match(ci.NormalizedCode)
		item.MatchCount = len(products)
		switch {
		case len(products) == 1:
			summary.MatchedItems++
		case len(products) > 1:
			summary.MultiMatchItems++
		default:
			summary.UnmatchedItems++
		}

		rows := make([]internal.MatchRow, 0, len(products))
		for _, p := range products {
			row := internal.MatchRow{
				ProductID:   p.ID,
				ProductCode: p.MikroCode,
				ProductName: p.Name,
				CurrentCost: p.CurrentCost,
			}
			if ci.SourcePrice != nil {
				net := pricing.NetPrice(*ci.SourcePrice, scfg, p.VatRate, s.cfg.DefaultVatRate, name)
				row.NetPrice = util.FloatPtr(net)
				if p.CurrentCost != nil {
					row.CostDifference = util.FloatPtr(net - *p.CurrentCost)
				}
			}
			rows = append(rows, row)
		}

		uploadItems = append(uploadItems, item)
		matchRows = append(matchRows, rows)
	}

	return uploadItems, matchRows, summary
}
