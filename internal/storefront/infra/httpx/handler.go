package httpx

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/jcmexdev/storefront-api/internal/pkg/interceptors"
	"github.com/jcmexdev/storefront-api/internal/storefront/core/ports"
	"github.com/jcmexdev/storefront-api/internal/storefront/core/services"
)

// Services bundles what the handlers delegate to.
type Services struct {
	Carts      *services.CartService
	Orders     *services.OrderService
	Checkout   *services.CheckoutService
	Complaints *services.ComplaintService
	Catalog    ports.ProductCatalog
}

// Handler translates HTTP requests into service calls.
type Handler struct {
	svc Services
}

func NewHandler(svc Services) *Handler {
	return &Handler{svc: svc}
}

type ack struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// --- cart ---

func (h *Handler) AddToCart(w http.ResponseWriter, r *http.Request) {
	var req AddToCartRequest
	if !decode(w, r, &req) {
		return
	}
	if req.UserID == "" || req.ProductID == "" || !req.Quantity.Present {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{
			Error:   "validation_error",
			Message: "userId, productId, and quantity are required.",
			MissingFields: map[string]bool{
				"userId":    req.UserID == "",
				"productId": req.ProductID == "",
				"quantity":  !req.Quantity.Present,
			},
		})
		return
	}
	qty := 0
	if req.Quantity.Valid {
		qty = req.Quantity.Value
	}

	cart, err := h.svc.Carts.AddItem(r.Context(), req.UserID, req.ProductID, qty)
	if err != nil {
		writeServiceError(w, r, err, "Error adding product to cart")
		return
	}
	writeJSON(w, http.StatusOK, struct {
		Success bool         `json:"success"`
		Message string       `json:"message"`
		Cart    CartResponse `json:"cart"`
	}{true, "Product added to cart successfully", mapCart(cart)})
}

func (h *Handler) GetCart(w http.ResponseWriter, r *http.Request) {
	var req UserRequest
	if !decode(w, r, &req) {
		return
	}
	cart, err := h.svc.Carts.GetCart(r.Context(), req.UserID)
	if err != nil {
		writeServiceError(w, r, err, "Error fetching cart")
		return
	}
	writeJSON(w, http.StatusOK, struct {
		Success bool         `json:"success"`
		Cart    CartResponse `json:"cart"`
	}{true, mapCart(cart)})
}

func (h *Handler) UpdateQuantity(w http.ResponseWriter, r *http.Request) {
	var req UpdateQuantityRequest
	if !decode(w, r, &req) {
		return
	}
	// productQty must be a JSON number; "3" is refused here.
	qtyBad := !req.ProductQty.Valid || req.ProductQty.Quoted
	if req.UserID == "" || req.ProductID == "" || qtyBad {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{
			Error:   "validation_error",
			Message: "userId, productId, and a valid productQty are required.",
			MissingFields: map[string]bool{
				"userId":     req.UserID == "",
				"productId":  req.ProductID == "",
				"productQty": qtyBad,
			},
		})
		return
	}

	if _, err := h.svc.Carts.SetItemQuantity(r.Context(), req.UserID, req.ProductID, req.ProductQty.Value); err != nil {
		writeServiceError(w, r, err, "An error occurred while updating the quantity.")
		return
	}
	writeJSON(w, http.StatusOK, ack{true, "Quantity updated successfully."})
}

func (h *Handler) DeleteItem(w http.ResponseWriter, r *http.Request) {
	var req CartItemRequest
	if !decode(w, r, &req) {
		return
	}
	if err := h.svc.Carts.RemoveItem(r.Context(), req.UserID, req.ProductID); err != nil {
		writeServiceError(w, r, err, "An error occurred while deleting the item.")
		return
	}
	writeJSON(w, http.StatusOK, ack{true, "Item deleted successfully."})
}

func (h *Handler) ClearCart(w http.ResponseWriter, r *http.Request) {
	var req UserRequest
	if !decode(w, r, &req) {
		return
	}
	if err := h.svc.Carts.Clear(r.Context(), req.UserID); err != nil {
		writeServiceError(w, r, err, "Error clearing cart")
		return
	}
	writeJSON(w, http.StatusOK, ack{true, "Cart cleared successfully."})
}

// --- checkout ---

type placeOrderResponse struct {
	Success  bool          `json:"success"`
	Message  string        `json:"message"`
	Order    OrderResponse `json:"order"`
	Warnings []string      `json:"warnings,omitempty"`
	Replayed bool          `json:"replayed,omitempty"`
}

func (h *Handler) PlaceOrder(w http.ResponseWriter, r *http.Request) {
	var req PlaceOrderRequest
	if !decode(w, r, &req) {
		return
	}

	res, err := h.svc.Checkout.PlaceOrder(r.Context(), services.PlaceOrderInput{
		UserID:         req.UserID,
		Name:           req.Name,
		Email:          req.Email,
		Items:          toLineItems(req.Items),
		Price:          priceValue(req.Price),
		Address:        req.Address,
		CartRevision:   req.CartRevision,
		IdempotencyKey: interceptors.IdempotencyKeyFromContext(r.Context()),
	})
	if err != nil {
		writeServiceError(w, r, err, "Failed to place order")
		return
	}

	writeJSON(w, http.StatusCreated, placeOrderResponse{
		Success:  true,
		Message:  "Order placed successfully",
		Order:    mapOrder(res.Order),
		Warnings: res.Warnings,
		Replayed: res.Replayed,
	})
}

// --- catalog ---

func (h *Handler) GetProduct(w http.ResponseWriter, r *http.Request) {
	productID := chi.URLParam(r, "productId")
	p, err := h.svc.Catalog.GetProduct(r.Context(), productID)
	if err != nil {
		writeServiceError(w, r, err, "Error fetching product")
		return
	}
	writeJSON(w, http.StatusOK, struct {
		Success bool            `json:"success"`
		Product ProductResponse `json:"product"`
	}{true, mapProduct(p)})
}

// --- orders ---

func (h *Handler) GetOrder(w http.ResponseWriter, r *http.Request) {
	order, err := h.svc.Orders.FindByOrderID(r.Context(), chi.URLParam(r, "orderId"))
	if err != nil {
		writeServiceError(w, r, err, "Error fetching order")
		return
	}
	writeJSON(w, http.StatusOK, struct {
		Success bool          `json:"success"`
		Order   OrderResponse `json:"order"`
	}{true, OrderResponse{OrderID: order.OrderID, Items: mapOrderItems(order.Items)}})
}

func (h *Handler) ListUserOrders(w http.ResponseWriter, r *http.Request) {
	orders, err := h.svc.Orders.FindByUser(r.Context(), chi.URLParam(r, "userId"))
	if err != nil {
		writeServiceError(w, r, err, "Error fetching orders")
		return
	}
	out := make([]OrderResponse, len(orders))
	for i, o := range orders {
		out[i] = mapOrderSummary(o)
	}
	writeJSON(w, http.StatusOK, struct {
		Success bool            `json:"success"`
		Orders  []OrderResponse `json:"orders"`
	}{true, out})
}

func (h *Handler) ReconcileCart(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.Checkout.ReconcileCart(r.Context(), chi.URLParam(r, "orderId")); err != nil {
		writeServiceError(w, r, err, "Error reconciling cart")
		return
	}
	writeJSON(w, http.StatusOK, ack{true, "Cart reconciled."})
}

// --- complaints ---

func (h *Handler) PostComplaint(w http.ResponseWriter, r *http.Request) {
	var req RegisterComplaintRequest
	if !decode(w, r, &req) {
		return
	}
	res, err := h.svc.Complaints.Register(r.Context(), services.RegisterComplaintInput{
		Name:     req.Name,
		Email:    req.Email,
		Message:  req.Message,
		UserType: req.UserType,
	})
	if err != nil {
		writeServiceError(w, r, err, "Failed to register complaint")
		return
	}
	writeJSON(w, http.StatusCreated, struct {
		Success             bool              `json:"success"`
		Message             string            `json:"message"`
		Complaint           ComplaintResponse `json:"complaint"`
		NotificationWarning string            `json:"notificationWarning,omitempty"`
	}{true, "Complaint registered successfully", mapComplaint(res.Complaint), res.NotificationWarning})
}

func (h *Handler) ListComplaints(w http.ResponseWriter, r *http.Request) {
	list, err := h.svc.Complaints.ListAll(r.Context())
	if err != nil {
		writeServiceError(w, r, err, "Error fetching complaints")
		return
	}
	out := make([]ComplaintResponse, len(list))
	for i, c := range list {
		out[i] = mapComplaint(c)
	}
	writeJSON(w, http.StatusOK, struct {
		Success    bool                `json:"success"`
		Complaints []ComplaintResponse `json:"complaints"`
	}{true, out})
}

func (h *Handler) UpdateComplaintStatus(w http.ResponseWriter, r *http.Request) {
	var req UpdateComplaintStatusRequest
	if !decode(w, r, &req) {
		return
	}
	c, err := h.svc.Complaints.UpdateStatus(r.Context(), strings.TrimSpace(req.ComplaintID), req.Status)
	if err != nil {
		writeServiceError(w, r, err, "Error updating complaint status")
		return
	}
	writeJSON(w, http.StatusOK, struct {
		Success   bool              `json:"success"`
		Message   string            `json:"message"`
		Complaint ComplaintResponse `json:"complaint"`
	}{true, "Complaint status updated successfully", mapComplaint(c)})
}

// --- sagas ---

func (h *Handler) GetSaga(w http.ResponseWriter, r *http.Request) {
	entry, err := h.svc.Checkout.SagaStatus(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, r, err, "Error fetching saga")
		return
	}
	writeJSON(w, http.StatusOK, mapSaga(entry))
}

func (h *Handler) Healthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
