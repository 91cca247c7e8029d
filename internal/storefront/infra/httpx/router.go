package httpx

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/jcmexdev/storefront-api/internal/storefront/infra/httpx/middlewares"
)

// RouterOptions carries the optional surfaces mounted next to the API.
type RouterOptions struct {
	// Metrics wraps every request; nil disables it.
	Metrics func(http.Handler) http.Handler
	// MetricsHandler is served on /metrics when set.
	MetricsHandler http.Handler
}

func NewRouter(handler *Handler, opts RouterOptions) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middlewares.AttachTracingMetadata)
	if opts.Metrics != nil {
		r.Use(opts.Metrics)
	}
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Route("/cart", func(r chi.Router) {
		r.Post("/addtocart", handler.AddToCart)
		r.Post("/get-cart", handler.GetCart)
		r.Put("/update-quantity", handler.UpdateQuantity)
		r.Post("/delete-items", handler.DeleteItem)
		r.Post("/clear-cart", handler.ClearCart)
		r.Post("/place-order", handler.PlaceOrder)
		r.Get("/product/{productId}", handler.GetProduct)
	})
	r.Route("/orders", func(r chi.Router) {
		r.Get("/order/{orderId}", handler.GetOrder)
		r.Post("/order/{orderId}/reconcile-cart", handler.ReconcileCart)
		r.Get("/user/{userId}", handler.ListUserOrders)
	})
	r.Route("/complaints", func(r chi.Router) {
		r.Post("/post-complaints", handler.PostComplaint)
		r.Get("/get-complaints", handler.ListComplaints)
		r.Put("/update-complaint-status", handler.UpdateComplaintStatus)
	})
	r.Get("/sagas/{id}", handler.GetSaga)
	r.Get("/healthz", handler.Healthz)
	if opts.MetricsHandler != nil {
		r.Handle("/metrics", opts.MetricsHandler)
	}
	return r
}
