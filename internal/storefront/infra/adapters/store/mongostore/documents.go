package mongostore

import (
	"time"

	"github.com/jcmexdev/storefront-api/internal/storefront/core/domain/entity"
)

type lineItemDoc struct {
	ProductID string `bson:"productId"`
	Quantity  int    `bson:"quantity"`
}

type cartDoc struct {
	UserID      string        `bson:"userId"`
	Items       []lineItemDoc `bson:"items"`
	Revision    int64         `bson:"revision"`
	LastOrderID string        `bson:"lastOrderId,omitempty"`
	CreatedAt   time.Time     `bson:"createdAt"`
	UpdatedAt   time.Time     `bson:"updatedAt"`
}

type orderDoc struct {
	OrderID   string        `bson:"orderId"`
	UserID    string        `bson:"userId"`
	Name      string        `bson:"name"`
	Email     string        `bson:"email"`
	Items     []lineItemDoc `bson:"items"`
	Price     float64       `bson:"price"`
	Address   string        `bson:"address"`
	CreatedAt time.Time     `bson:"createdAt"`
}

type complaintDoc struct {
	ComplaintNumber string    `bson:"complaintNumber"`
	Name            string    `bson:"name"`
	Email           string    `bson:"email"`
	Message         string    `bson:"message"`
	UserType        string    `bson:"userType"`
	Status          string    `bson:"status,omitempty"`
	CreatedAt       time.Time `bson:"createdAt"`
}

type productDoc struct {
	ProductID   string  `bson:"productId"`
	Name        string  `bson:"name"`
	Description string  `bson:"description,omitempty"`
	Category    string  `bson:"category,omitempty"`
	Image       string  `bson:"image,omitempty"`
	Price       float64 `bson:"price"`
	Stock       int     `bson:"stock"`
}

func fromItems(items []entity.LineItem) []lineItemDoc {
	out := make([]lineItemDoc, len(items))
	for i, it := range items {
		out[i] = lineItemDoc{ProductID: it.ProductID, Quantity: it.Quantity}
	}
	return out
}

func toItems(docs []lineItemDoc) []entity.LineItem {
	out := make([]entity.LineItem, len(docs))
	for i, d := range docs {
		out[i] = entity.LineItem{ProductID: d.ProductID, Quantity: d.Quantity}
	}
	return out
}

func fromCart(c *entity.Cart) cartDoc {
	return cartDoc{
		UserID:      c.UserID,
		Items:       fromItems(c.Items),
		Revision:    c.Revision,
		LastOrderID: c.LastOrderID,
		CreatedAt:   c.CreatedAt,
		UpdatedAt:   c.UpdatedAt,
	}
}

func (d cartDoc) toEntity() *entity.Cart {
	return &entity.Cart{
		UserID:      d.UserID,
		Items:       toItems(d.Items),
		Revision:    d.Revision,
		LastOrderID: d.LastOrderID,
		CreatedAt:   d.CreatedAt.UTC(),
		UpdatedAt:   d.UpdatedAt.UTC(),
	}
}

func fromOrder(o *entity.Order) orderDoc {
	return orderDoc{
		OrderID:   o.OrderID,
		UserID:    o.UserID,
		Name:      o.Name,
		Email:     o.Email,
		Items:     fromItems(o.Items),
		Price:     o.Price,
		Address:   o.Address,
		CreatedAt: o.CreatedAt,
	}
}

func (d orderDoc) toEntity() *entity.Order {
	return &entity.Order{
		OrderID:   d.OrderID,
		UserID:    d.UserID,
		Name:      d.Name,
		Email:     d.Email,
		Items:     toItems(d.Items),
		Price:     d.Price,
		Address:   d.Address,
		CreatedAt: d.CreatedAt.UTC(),
	}
}

func fromComplaint(c *entity.Complaint) complaintDoc {
	return complaintDoc{
		ComplaintNumber: c.ComplaintNumber,
		Name:            c.Name,
		Email:           c.Email,
		Message:         c.Message,
		UserType:        c.UserType,
		Status:          c.Status,
		CreatedAt:       c.CreatedAt,
	}
}

func (d complaintDoc) toEntity() *entity.Complaint {
	return &entity.Complaint{
		ComplaintNumber: d.ComplaintNumber,
		Name:            d.Name,
		Email:           d.Email,
		Message:         d.Message,
		UserType:        d.UserType,
		Status:          d.Status,
		CreatedAt:       d.CreatedAt.UTC(),
	}
}

func fromProduct(p entity.Product) productDoc {
	return productDoc(p)
}

func (d productDoc) toEntity() *entity.Product {
	p := entity.Product(d)
	return &p
}
