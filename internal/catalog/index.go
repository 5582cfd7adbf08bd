package catalog

import (
	"github.com/Rynawkin/bakircilar-b2b-sub003/internal"
	"github.com/Rynawkin/bakircilar-b2b-sub003/internal/util"
)

type Index struct {
	ByForeignCode map[string][]internal.CatalogProduct
}

func BuildIndex(products []internal.CatalogProduct) *Index {
	idx := &Index{ByForeignCode: make(map[string][]internal.CatalogProduct, len(products))}
	for _, p := range products {
		code := util.NormalizeCode(p.ForeignName)
		if code == "" {
			continue
		}
		idx.ByForeignCode[code] = append(idx.ByForeignCode[code], p)
	}
	return idx
}

func (i *Index) Match(normalizedCode string) []internal.CatalogProduct {
	if normalizedCode == "" {
		return nil
	}
	return i.ByForeignCode[normalizedCode]
}
