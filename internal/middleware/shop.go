package middleware

import (
	"net/http"

	"github.com/dukerupert/tawseel/internal/domain"
	"github.com/dukerupert/tawseel/internal/storefront"
)

// WithShop attaches the shop identity from the storefront headers to
// the request context. Webhook deliveries carry the shop domain in
// X-Storefront-Shop-Domain; API callers may pass it as a query param.
// The middleware never rejects requests itself. Handlers that need a
// shop use RequireShop or check the context directly.
func WithShop(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		shopKey := r.Header.Get(storefront.HeaderShopDomain)
		if shopKey == "" {
			shopKey = r.URL.Query().Get("shop")
		}
		if shopKey == "" {
			next.ServeHTTP(w, r)
			return
		}

		ctx := domain.NewContextWithShop(r.Context(), &domain.Shop{Key: shopKey})
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequireShop rejects requests that have no shop identity in context.
// Place after WithShop on routes that are always shop-scoped.
func RequireShop(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !domain.HasShop(r.Context()) {
			respondBadRequest(w, r, "Missing shop identity")
			return
		}
		next.ServeHTTP(w, r)
	})
}
