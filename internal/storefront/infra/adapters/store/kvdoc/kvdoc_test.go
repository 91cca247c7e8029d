package kvdoc

import (
	"bytes"
	"testing"

	"github.com/jcmexdev/storefront-api/internal/storefront/core/ports"
	"github.com/jcmexdev/storefront-api/internal/storefront/infra/adapters/store/storetest"
)

type engine struct {
	name string
	open func(dir string) (KV, error)
}

var engines = []engine{
	{"pebble", func(dir string) (KV, error) { return OpenPebble(dir) }},
	{"badger", func(dir string) (KV, error) { return OpenBadger(dir) }},
}

func openDB(t *testing.T, e engine) *DB {
	t.Helper()
	kv, err := e.open(t.TempDir())
	if err != nil {
		t.Fatalf("%s open: %v", e.name, err)
	}
	db := New(kv)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func TestStores(t *testing.T) {
	for _, e := range engines {
		t.Run(e.name, func(t *testing.T) {
			t.Run("carts", func(t *testing.T) {
				storetest.RunCartStore(t, func(t *testing.T) ports.CartStore { return openDB(t, e).Carts() })
			})
			t.Run("orders", func(t *testing.T) {
				storetest.RunOrderStore(t, func(t *testing.T) ports.OrderStore { return openDB(t, e).Orders() })
			})
			t.Run("complaints", func(t *testing.T) {
				storetest.RunComplaintStore(t, func(t *testing.T) ports.ComplaintStore { return openDB(t, e).Complaints() })
			})
			t.Run("catalog", func(t *testing.T) {
				storetest.RunCatalog(t, func(t *testing.T) storetest.CatalogStore { return openDB(t, e).Catalog() })
			})
		})
	}
}

func TestScanStaysInsidePrefix(t *testing.T) {
	for _, e := range engines {
		t.Run(e.name, func(t *testing.T) {
			kv, err := e.open(t.TempDir())
			if err != nil {
				t.Fatalf("open: %v", err)
			}
			t.Cleanup(func() { _ = kv.Close() })

			err = kv.Set(
				Pair{Key: []byte("a/1"), Value: []byte("x")},
				Pair{Key: []byte("b/1"), Value: []byte("y")},
				Pair{Key: []byte("b/2"), Value: []byte("z")},
				Pair{Key: []byte("c/1"), Value: []byte("w")},
			)
			if err != nil {
				t.Fatalf("set: %v", err)
			}

			var got [][]byte
			err = kv.Scan([]byte("b/"), func(_, val []byte) error {
				got = append(got, val)
				return nil
			})
			if err != nil {
				t.Fatalf("scan: %v", err)
			}
			if len(got) != 2 || !bytes.Equal(got[0], []byte("y")) || !bytes.Equal(got[1], []byte("z")) {
				t.Fatalf("unexpected scan result: %q", got)
			}

			if _, err := kv.Get([]byte("missing")); err != ErrKeyNotFound {
				t.Fatalf("expected ErrKeyNotFound, got %v", err)
			}
		})
	}
}

func TestPrefixEnd(t *testing.T) {
	cases := []struct {
		in, want []byte
	}{
		{[]byte("carts/"), []byte("carts0")},
		{[]byte{'a', 0xff}, []byte("b")},
		{[]byte{0xff, 0xff}, nil},
	}
	for _, c := range cases {
		if got := prefixEnd(c.in); !bytes.Equal(got, c.want) {
			t.Errorf("prefixEnd(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestUserOrderKeysDoNotNest(t *testing.T) {
	outer := userOrdersPrefix("a")
	for _, user := range []string{"a/b", "a/", "a/00000000000000000001"} {
		if bytes.HasPrefix(userOrderKey(user, 1, "ORDER-1"), outer) {
			t.Fatalf("index key for %q falls inside the range of user %q", user, "a")
		}
	}
	if !bytes.HasPrefix(userOrderKey("a", 1, "ORDER-1"), outer) {
		t.Fatalf("index key for %q is outside its own range", "a")
	}
}
