package catalog

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/Rynawkin/bakircilar-b2b-sub003/internal/config"
)

func scrollServer(t *testing.T) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer test-token" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		switch r.URL.Query().Get("scrollId") {
		case "":
			fmt.Fprint(w, `{"success":true,"data":{"products":[
				{"id":10,"mikroCode":"STK-001","name":"Cıvata M8","foreignName":"B101996","currentCost":60.5,"vatRate":0.2},
				{"id":11,"mikroCode":"STK-002","name":"Somun","foreignName":""}
			],"scrollId":"s1"}}`)
		case "s1":
			fmt.Fprint(w, `{"success":true,"data":{"products":[
				{"id":12,"mikroCode":"STK-003","name":"Pul","foreignName":"B200100"}
			],"scrollId":""}}`)
		default:
			t.Errorf("unexpected scrollId %q", r.URL.Query().Get("scrollId"))
			w.WriteHeader(http.StatusBadRequest)
		}
	}))
}

func testClientConfig(baseURL string) config.Config {
	return config.Config{
		CatalogAPIBaseURL:   baseURL,
		CatalogAPIToken:     "test-token",
		CatalogRateLimitRPS: 100,
		CatalogTimeoutMs:    5000,
	}
}

func TestGetProductsScrollAll(t *testing.T) {
	srv := scrollServer(t)
	defer srv.Close()

	client := NewClient(testClientConfig(srv.URL))
	products, err := client.GetProductsScrollAll(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	// rows without a foreign code are dropped
	if len(products) != 2 {
		t.Fatalf("products = %d", len(products))
	}
	if products[0].ID != 10 || products[0].ForeignName != "B101996" {
		t.Fatalf("product 0 = %+v", products[0])
	}
	if products[0].CurrentCost == nil || *products[0].CurrentCost != 60.5 {
		t.Fatalf("currentCost = %v", products[0].CurrentCost)
	}
	if products[1].ID != 12 {
		t.Fatalf("product 1 = %+v", products[1])
	}
}

func TestClientRequiresToken(t *testing.T) {
	client := NewClient(config.Config{CatalogAPIBaseURL: "http://localhost:1", CatalogRateLimitRPS: 1})
	if _, err := client.GetProductsScrollAll(context.Background()); err == nil {
		t.Fatal("missing token must fail fast")
	}
}

func TestClientSurfacesAPIFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, `{"success":false,"errors":["yetkisiz"]}`)
	}))
	defer srv.Close()

	client := NewClient(testClientConfig(srv.URL))
	if _, err := client.GetProductsScrollAll(context.Background()); err == nil {
		t.Fatal("unsuccessful response must error")
	}
}
