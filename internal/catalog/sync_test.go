package catalog

import (
	"context"
	"testing"
	"time"

	"github.com/Rynawkin/bakircilar-b2b-sub003/internal"
)

type fakeStore struct {
	products []internal.CatalogProduct
	meta     map[string]string
}

func (f *fakeStore) UpsertProducts(products []internal.CatalogProduct) error {
	f.products = products
	return nil
}

func (f *fakeStore) SetMetadata(key, value string) error {
	if f.meta == nil {
		f.meta = map[string]string{}
	}
	f.meta[key] = value
	return nil
}

func (f *fakeStore) GetMetadata(key string) (*string, error) {
	v, ok := f.meta[key]
	if !ok {
		return nil, nil
	}
	return &v, nil
}

func TestSyncRecordsLastSync(t *testing.T) {
	srv := scrollServer(t)
	defer srv.Close()

	store := &fakeStore{}
	svc := &SyncService{client: NewClient(testClientConfig(srv.URL)), store: store}

	before, err := svc.LastSync()
	if err != nil || before != nil {
		t.Fatalf("before sync: %v %v", before, err)
	}

	count, err := svc.Sync(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if count != 2 || len(store.products) != 2 {
		t.Fatalf("count = %d, stored = %d", count, len(store.products))
	}

	after, err := svc.LastSync()
	if err != nil {
		t.Fatal(err)
	}
	if after == nil || time.Since(*after) > time.Minute {
		t.Fatalf("lastSync = %v", after)
	}
}
