package kvdoc

import (
	"encoding/json"
	"errors"
	"fmt"
	"sync"
)

// DB wraps a KV engine and hands out the storefront stores. All
// read-modify-write sequences run under one writer lock.
type DB struct {
	kv KV
	mu sync.Mutex
}

func New(kv KV) *DB {
	return &DB{kv: kv}
}

func (db *DB) Carts() *CartStore           { return &CartStore{db: db} }
func (db *DB) Orders() *OrderStore         { return &OrderStore{db: db} }
func (db *DB) Complaints() *ComplaintStore { return &ComplaintStore{db: db} }
func (db *DB) Catalog() *Catalog           { return &Catalog{db: db} }

func (db *DB) Close() error { return db.kv.Close() }

// getJSON decodes the value at key into v and reports whether it existed.
func (db *DB) getJSON(key []byte, v any) (bool, error) {
	raw, err := db.kv.Get(key)
	if errors.Is(err, ErrKeyNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return false, fmt.Errorf("decode %s: %w", key, err)
	}
	return true, nil
}

func (db *DB) exists(key []byte) (bool, error) {
	_, err := db.kv.Get(key)
	if errors.Is(err, ErrKeyNotFound) {
		return false, nil
	}
	return err == nil, err
}

func jsonPair(key []byte, v any) (Pair, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return Pair{}, fmt.Errorf("encode %s: %w", key, err)
	}
	return Pair{Key: key, Value: raw}, nil
}

func (db *DB) putJSON(key []byte, v any) error {
	p, err := jsonPair(key, v)
	if err != nil {
		return err
	}
	return db.kv.Set(p)
}
