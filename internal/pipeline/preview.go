package pipeline

import (
	"errors"
	"fmt"

	"github.com/Rynawkin/bakircilar-b2b-sub003/internal"
	"github.com/Rynawkin/bakircilar-b2b-sub003/internal/extract"
	"github.com/Rynawkin/bakircilar-b2b-sub003/internal/parser"
	"github.com/Rynawkin/bakircilar-b2b-sub003/internal/supplier"
)

type FilePreview struct {
	Filename   string
	Strategy   string
	HeaderRow  int
	Mapping    parser.Mapping
	SampleRows [][]string
	Items      []internal.ParsedItem
}

func (s *UploadService) Preview(supplierID int, override *supplier.Override, files []UploadFile) ([]FilePreview, error) {
	stored, err := s.db.GetSupplier(supplierID)
	if err != nil {
		return nil, err
	}
	if stored == nil {
		return nil, fmt.Errorf("supplier %d not found", supplierID)
	}
	scfg := supplier.Resolve(*stored, override)

	out := make([]FilePreview, 0, len(files))
	for _, f := range files {
		doc, err := extract.Load(f.Name, f.Content, scfg)
		if err != nil && !errors.Is(err, extract.ErrExtractionUnavailable) {
			return nil, fmt.Errorf("extract %s: %w", f.Name, err)
		}
		res := parser.Parse(doc, scfg)

		sample := doc.Rows
		if len(sample) > s.cfg.PreviewSampleRows {
			sample = sample[:s.cfg.PreviewSampleRows]
		}

		out = append(out, FilePreview{
			Filename:   f.Name,
			Strategy:   res.Strategy,
			HeaderRow:  doc.HeaderRow,
			Mapping:    parser.ResolveColumns(doc, scfg),
			SampleRows: sample,
			Items:      res.Items,
		})
	}
	return out, nil
}
