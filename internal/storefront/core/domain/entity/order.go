package entity

import "time"

// Order is an immutable record created by checkout. Items is a snapshot
// taken at finalize time and is never linked to the live cart.
type Order struct {
	OrderID   string
	UserID    string
	Name      string
	Email     string
	Items     []LineItem
	Price     float64
	Address   string
	CreatedAt time.Time
}

// Clone returns a deep copy of the order.
func (o *Order) Clone() *Order {
	if o == nil {
		return nil
	}
	out := *o
	out.Items = CloneItems(o.Items)
	return &out
}
