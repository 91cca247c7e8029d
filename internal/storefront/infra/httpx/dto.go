package httpx

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jcmexdev/storefront-api/internal/coordinator/sagalog"
	"github.com/jcmexdev/storefront-api/internal/storefront/core/domain/entity"
)

// Quantity accepts a JSON integer or a numeric string such as "3". Present
// reports whether the field appeared with a non-null value; Valid whether it
// parsed as a whole number that fits in an int32. Quoted is set for the
// string form.
type Quantity struct {
	Value   int
	Present bool
	Valid   bool
	Quoted  bool
}

var quantityLimit = decimal.NewFromInt(math.MaxInt32)

func (q *Quantity) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		return nil
	}
	q.Present = true

	raw := string(b)
	if unq, err := strconv.Unquote(raw); err == nil {
		raw = strings.TrimSpace(unq)
		q.Quoted = true
	}
	// 2.0 is still a whole number.
	d, err := decimal.NewFromString(raw)
	if err != nil || !d.IsInteger() || d.Abs().GreaterThan(quantityLimit) {
		return nil
	}
	q.Value, q.Valid = int(d.IntPart()), true
	return nil
}

type AddToCartRequest struct {
	UserID    string   `json:"userId"`
	ProductID string   `json:"productId"`
	Quantity  Quantity `json:"quantity"`
}

type UserRequest struct {
	UserID string `json:"userId"`
}

type UpdateQuantityRequest struct {
	UserID     string   `json:"userId"`
	ProductID  string   `json:"productId"`
	ProductQty Quantity `json:"productQty"`
}

type CartItemRequest struct {
	UserID    string `json:"userId"`
	ProductID string `json:"productId"`
}

type LineItemDTO struct {
	ProductID string   `json:"productId"`
	Quantity  Quantity `json:"quantity"`
}

type PlaceOrderRequest struct {
	UserID  string           `json:"userId"`
	Name    string           `json:"name"`
	Email   string           `json:"email"`
	Items   []LineItemDTO    `json:"items"`
	Price   *decimal.Decimal `json:"price"`
	Address string           `json:"address"`
	// CartRevision is the revision the client last saw; optional.
	CartRevision *int64 `json:"cartRevision,omitempty"`
}

type RegisterComplaintRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Message  string `json:"message"`
	UserType string `json:"userType"`
}

type UpdateComplaintStatusRequest struct {
	ComplaintID string `json:"complaintId"`
	Status      string `json:"status"`
}

// --- responses ---

type CartLineResponse struct {
	ProductID  string `json:"productId"`
	ProductQty int    `json:"productQty"`
}

type CartResponse struct {
	UserID         string             `json:"userId"`
	ProductsInCart []CartLineResponse `json:"productsInCart"`
	Revision       int64              `json:"revision"`
	LastOrderID    string             `json:"lastOrderId,omitempty"`
	UpdatedAt      time.Time          `json:"updatedAt"`
}

type OrderItemResponse struct {
	ProductID string `json:"productId"`
	Quantity  int    `json:"quantity"`
}

type OrderResponse struct {
	OrderID string              `json:"orderId"`
	UserID  string              `json:"userId,omitempty"`
	Name    string              `json:"name,omitempty"`
	Email   string              `json:"email,omitempty"`
	Items   []OrderItemResponse `json:"items"`
	Price   *float64            `json:"price,omitempty"`
	Address string              `json:"address,omitempty"`
	Date    *time.Time          `json:"date,omitempty"`
}

type ProductResponse struct {
	ProductID   string  `json:"productId"`
	Name        string  `json:"name"`
	Description string  `json:"description,omitempty"`
	Category    string  `json:"category,omitempty"`
	Image       string  `json:"image,omitempty"`
	Price       float64 `json:"price"`
	Stock       int     `json:"stock"`
}

type ComplaintResponse struct {
	ComplaintNumber string    `json:"complaintNumber"`
	Name            string    `json:"name"`
	Email           string    `json:"email"`
	Message         string    `json:"message"`
	UserType        string    `json:"userType"`
	Status          string    `json:"status,omitempty"`
	Date            time.Time `json:"date"`
}

type SagaResponse struct {
	SagaID      string          `json:"sagaId"`
	Status      string          `json:"status"`
	Terminal    bool            `json:"terminal"`
	CurrentStep string          `json:"currentStep,omitempty"`
	Payload     json.RawMessage `json:"payload,omitempty"`
	Errors      []string        `json:"errors,omitempty"`
	TraceID     string          `json:"traceId,omitempty"`
	UpdatedAt   time.Time       `json:"updatedAt"`
}

type ErrorResponse struct {
	Success       bool            `json:"success"`
	Error         string          `json:"error"`
	Message       string          `json:"message,omitempty"`
	MissingFields map[string]bool `json:"missingFields,omitempty"`
}

// --- mappers ---

// toLineItems maps submitted items. An unparsable quantity becomes 0, which
// checkout validation rejects.
func toLineItems(in []LineItemDTO) []entity.LineItem {
	out := make([]entity.LineItem, 0, len(in))
	for _, it := range in {
		qty := 0
		if it.Quantity.Valid {
			qty = it.Quantity.Value
		}
		out = append(out, entity.LineItem{ProductID: it.ProductID, Quantity: qty})
	}
	return out
}

// priceValue rounds the submitted total to cents.
func priceValue(d *decimal.Decimal) *float64 {
	if d == nil {
		return nil
	}
	f, _ := d.Round(2).Float64()
	return &f
}

func mapCart(c *entity.Cart) CartResponse {
	lines := make([]CartLineResponse, len(c.Items))
	for i, it := range c.Items {
		lines[i] = CartLineResponse{ProductID: it.ProductID, ProductQty: it.Quantity}
	}
	return CartResponse{
		UserID:         c.UserID,
		ProductsInCart: lines,
		Revision:       c.Revision,
		LastOrderID:    c.LastOrderID,
		UpdatedAt:      c.UpdatedAt,
	}
}

func mapOrderItems(items []entity.LineItem) []OrderItemResponse {
	out := make([]OrderItemResponse, len(items))
	for i, it := range items {
		out[i] = OrderItemResponse{ProductID: it.ProductID, Quantity: it.Quantity}
	}
	return out
}

func mapOrder(o *entity.Order) OrderResponse {
	price := o.Price
	date := o.CreatedAt
	return OrderResponse{
		OrderID: o.OrderID,
		UserID:  o.UserID,
		Name:    o.Name,
		Email:   o.Email,
		Items:   mapOrderItems(o.Items),
		Price:   &price,
		Address: o.Address,
		Date:    &date,
	}
}

// mapOrderSummary is the projection used by the customer order history.
func mapOrderSummary(o *entity.Order) OrderResponse {
	price := o.Price
	date := o.CreatedAt
	return OrderResponse{OrderID: o.OrderID, Items: mapOrderItems(o.Items), Price: &price, Date: &date}
}

func mapProduct(p *entity.Product) ProductResponse {
	return ProductResponse{
		ProductID:   p.ProductID,
		Name:        p.Name,
		Description: p.Description,
		Category:    p.Category,
		Image:       p.Image,
		Price:       p.Price,
		Stock:       p.Stock,
	}
}

func mapComplaint(c *entity.Complaint) ComplaintResponse {
	return ComplaintResponse{
		ComplaintNumber: c.ComplaintNumber,
		Name:            c.Name,
		Email:           c.Email,
		Message:         c.Message,
		UserType:        c.UserType,
		Status:          c.Status,
		Date:            c.CreatedAt,
	}
}

func mapSaga(l *sagalog.SagaLog) SagaResponse {
	var payload json.RawMessage
	if l.Payload != "" && json.Valid([]byte(l.Payload)) {
		payload = json.RawMessage(l.Payload)
	}
	return SagaResponse{
		SagaID:      l.SagaID,
		Status:      string(l.Status),
		Terminal:    l.Status.Terminal(),
		CurrentStep: l.CurrentStep,
		Payload:     payload,
		Errors:      l.Errors(),
		TraceID:     l.TraceID,
		UpdatedAt:   l.UpdatedAt,
	}
}
