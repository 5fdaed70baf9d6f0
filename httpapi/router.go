package httpapi

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

func NewRouter(h *Handler) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(requestLogger(h.logger))

	r.Get("/health", h.Health)
	r.Get("/api/menu", h.GetMenu)
	r.Post("/api/sessions", h.CreateSession)

	r.Route("/api/sessions/{sessionID}", func(r chi.Router) {
		r.Get("/cart", h.GetCart)
		r.Post("/cart/items", h.AddItem)
		r.Post("/cart/items/{catalogID}/adjust", h.AdjustItem)
		r.Delete("/cart/items/{catalogID}", h.RemoveItem)

		r.Get("/upsell", h.GetUpsell)
		r.Post("/upsell", h.ResolveUpsell)

		r.Get("/checkout", h.GetCheckout)
		r.Post("/checkout/open", h.OpenCheckout)
		r.Post("/checkout/advance", h.Advance)
		r.Post("/checkout/back", h.Back)
		r.Put("/checkout/details", h.SetDetails)
		r.Put("/checkout/payment", h.SetPayment)
		r.Post("/checkout/addons", h.AddAddOn)
		r.Post("/checkout/pay", h.Pay)
		r.Post("/checkout/close", h.CloseCheckout)

		r.Get("/orders", h.GetOrders)
		r.Post("/login", h.Login)
		r.Post("/logout", h.Logout)
		r.Get("/user", h.GetUser)
	})

	return r
}

func requestLogger(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()
			next.ServeHTTP(ww, r)
			logger.Debug("http request",
				zap.String("request_id", middleware.GetReqID(r.Context())),
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", ww.Status()),
				zap.Duration("duration", time.Since(start)),
			)
		})
	}
}
