package catalog

import (
	"context"
	"fmt"
	"time"

	"github.com/Rynawkin/bakircilar-b2b-sub003/internal"
	"github.com/Rynawkin/bakircilar-b2b-sub003/internal/config"
)

const lastSyncKey = "catalog.last_sync"

type ProductStore interface {
	UpsertProducts(products []internal.CatalogProduct) error
	SetMetadata(key, value string) error
	GetMetadata(key string) (*string, error)
}

type SyncService struct {
	client *Client
	store  ProductStore
}

func NewSyncService(cfg config.Config, store ProductStore) *SyncService {
	return &SyncService{client: NewClient(cfg), store: store}
}

func (s *SyncService) Sync(ctx context.Context) (int, error) {
	products, err := s.client.GetProductsScrollAll(ctx)
	if err != nil {
		return 0, fmt.Errorf("catalog fetch: %w", err)
	}

	if err := s.store.UpsertProducts(products); err != nil {
		return 0, fmt.Errorf("catalog upsert: %w", err)
	}

	if err := s.store.SetMetadata(lastSyncKey, time.Now().UTC().Format(time.RFC3339)); err != nil {
		return 0, err
	}

	return len(products), nil
}

func (s *SyncService) LastSync() (*time.Time, error) {
	raw, err := s.store.GetMetadata(lastSyncKey)
	if err != nil || raw == nil {
		return nil, err
	}
	t, err := time.Parse(time.RFC3339, *raw)
	if err != nil {
		return nil, err
	}
	return &t, nil
}
