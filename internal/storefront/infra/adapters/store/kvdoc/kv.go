// Package kvdoc stores storefront documents as JSON values in an embedded
// ordered key/value engine. Pebble and Badger engines are provided.
//
// Key layout:
//
//	carts/<userId>
//	orders/<orderId>
//	orders_by_user/<hex userId>/<createdAt unix nanos, zero padded>/<orderId>
//	complaints/<complaintNumber>
//	products/<productId>
package kvdoc

import (
	"encoding/hex"
	"errors"
	"fmt"
)

// ErrKeyNotFound is returned by KV.Get for an absent key.
var ErrKeyNotFound = errors.New("kvdoc: key not found")

// KV is the ordered key/value surface the document stores need.
type KV interface {
	Get(key []byte) ([]byte, error)
	// Set writes all pairs atomically.
	Set(pairs ...Pair) error
	// Scan visits every key with the given prefix in ascending order.
	Scan(prefix []byte, fn func(key, val []byte) error) error
	Close() error
}

type Pair struct {
	Key   []byte
	Value []byte
}

const (
	cartPrefix        = "carts/"
	orderPrefix       = "orders/"
	orderByUserPrefix = "orders_by_user/"
	complaintPrefix   = "complaints/"
	productPrefix     = "products/"
)

func cartKey(userID string) []byte { return []byte(cartPrefix + userID) }

func orderKey(orderID string) []byte { return []byte(orderPrefix + orderID) }

// The user segment is hex encoded so an id containing "/" cannot reach into
// another user's range.
func userOrdersPrefix(userID string) []byte {
	return []byte(orderByUserPrefix + hex.EncodeToString([]byte(userID)) + "/")
}

func userOrderKey(userID string, createdAtNanos int64, orderID string) []byte {
	return fmt.Appendf(userOrdersPrefix(userID), "%020d/%s", createdAtNanos, orderID)
}

func complaintKey(num string) []byte { return []byte(complaintPrefix + num) }

func productKey(productID string) []byte { return []byte(productPrefix + productID) }

// prefixEnd returns the smallest key greater than every key with prefix.
func prefixEnd(prefix []byte) []byte {
	end := append([]byte(nil), prefix...)
	for i := len(end) - 1; i >= 0; i-- {
		if end[i] < 0xff {
			end[i]++
			return end[:i+1]
		}
	}
	return nil
}
