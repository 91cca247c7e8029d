package seed

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/jcmexdev/storefront-api/internal/storefront/infra/adapters/store/memory"
)

func writeFile(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "products.json")
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	return path
}

func TestLoad(t *testing.T) {
	ctx := context.Background()
	path := writeFile(t, `[
		{"productId":"p1","name":"Plush bunny","price":"299.499","stock":4,"image":"bunny.png"},
		{"productId":"p2","name":"Mug","price":120}
	]`)
	catalog := memory.NewCatalog()

	n, err := Load(ctx, catalog, path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if n != 2 {
		t.Fatalf("expected 2 products, got %d", n)
	}
	p, err := catalog.GetProduct(ctx, "p1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if p.Price != 299.5 || p.Stock != 4 || p.Image != "bunny.png" {
		t.Fatalf("unexpected product %+v", p)
	}
}

func TestLoadEmptyPath(t *testing.T) {
	n, err := Load(context.Background(), memory.NewCatalog(), "")
	if err != nil || n != 0 {
		t.Fatalf("expected no-op, got %d %v", n, err)
	}
}

func TestReadProductsRejects(t *testing.T) {
	cases := map[string]string{
		"missing id": `[{"name":"nameless"}]`,
		"not json":   `{`,
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			if _, err := ReadProducts(writeFile(t, body)); err == nil {
				t.Fatalf("expected an error")
			}
		})
	}
	if _, err := ReadProducts(filepath.Join(t.TempDir(), "absent.json")); err == nil {
		t.Fatalf("expected an error for a missing file")
	}
}
