package entity

// Product is a read-only catalog record.
type Product struct {
	ProductID   string
	Name        string
	Description string
	Category    string
	Image       string
	Price       float64
	Stock       int
}
