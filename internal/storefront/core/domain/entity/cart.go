package entity

import "time"

// MaxQuantity caps a single line so merged quantities never overflow int.
const MaxQuantity = 1_000_000

// LineItem is a {productId, quantity} pair inside a cart or an order snapshot.
type LineItem struct {
	ProductID string
	Quantity  int
}

// Cart is the per-user collection of pending line items. ProductID is unique
// across Items and every Quantity is at least 1.
type Cart struct {
	UserID string
	Items  []LineItem
	// Revision increases by one on every mutation.
	Revision int64
	// LastOrderID is the order whose finalization last cleared this cart.
	LastOrderID string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// NewCart returns an empty cart for userID.
func NewCart(userID string, now time.Time) *Cart {
	return &Cart{
		UserID:    userID,
		Items:     []LineItem{},
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func (c *Cart) indexOf(productID string) int {
	for i, it := range c.Items {
		if it.ProductID == productID {
			return i
		}
	}
	return -1
}

// Item returns the line for productID, if any.
func (c *Cart) Item(productID string) (LineItem, bool) {
	if i := c.indexOf(productID); i >= 0 {
		return c.Items[i], true
	}
	return LineItem{}, false
}

// Add merges quantity into an existing line or appends a new one. It
// reports false, leaving the cart untouched, when the merged line would
// exceed MaxQuantity.
func (c *Cart) Add(productID string, quantity int, now time.Time) bool {
	if quantity < 1 || quantity > MaxQuantity {
		return false
	}
	if i := c.indexOf(productID); i >= 0 {
		if c.Items[i].Quantity > MaxQuantity-quantity {
			return false
		}
		c.Items[i].Quantity += quantity
	} else {
		c.Items = append(c.Items, LineItem{ProductID: productID, Quantity: quantity})
	}
	c.touch(now)
	return true
}

// SetQuantity overwrites the quantity of an existing line. It reports false,
// leaving the cart untouched, when productID is not in the cart.
func (c *Cart) SetQuantity(productID string, quantity int, now time.Time) bool {
	i := c.indexOf(productID)
	if i < 0 {
		return false
	}
	c.Items[i].Quantity = quantity
	c.touch(now)
	return true
}

// Remove drops the line for productID and reports whether it existed.
func (c *Cart) Remove(productID string, now time.Time) bool {
	i := c.indexOf(productID)
	if i < 0 {
		return false
	}
	c.Items = append(c.Items[:i], c.Items[i+1:]...)
	c.touch(now)
	return true
}

// Clear empties the item collection. The cart document itself is kept.
func (c *Cart) Clear(now time.Time) {
	c.Items = []LineItem{}
	c.touch(now)
}

// ClearForOrder empties the cart on behalf of orderID. Re-issuing it for the
// same order is a no-op and reports false.
func (c *Cart) ClearForOrder(orderID string, now time.Time) bool {
	if orderID != "" && c.LastOrderID == orderID {
		return false
	}
	c.LastOrderID = orderID
	c.Clear(now)
	return true
}

func (c *Cart) touch(now time.Time) {
	c.Revision++
	c.UpdatedAt = now
}

// Clone returns a deep copy so callers never share the Items backing array.
func (c *Cart) Clone() *Cart {
	if c == nil {
		return nil
	}
	out := *c
	out.Items = CloneItems(c.Items)
	return &out
}

// CloneItems copies a line item slice, never returning nil.
func CloneItems(items []LineItem) []LineItem {
	out := make([]LineItem, len(items))
	copy(out, items)
	return out
}
