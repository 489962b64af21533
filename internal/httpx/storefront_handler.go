package httpx

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/henhouse-foods/storefront/internal/cart"
	"github.com/henhouse-foods/storefront/internal/catalog"
	"github.com/henhouse-foods/storefront/internal/checkout"
	"github.com/henhouse-foods/storefront/internal/wishlist"
)

type StorefrontHandler struct {
	engines *engines
	catalog catalog.Resolver
}

func NewStorefrontHandler(factory EngineFactory, resolver catalog.Resolver) *StorefrontHandler {
	return &StorefrontHandler{engines: newEngines(factory), catalog: resolver}
}

func (h *StorefrontHandler) Register(r *chi.Mux) {
	r.Get("/products", h.listProducts)
	r.Get("/products/{id}", h.getProduct)

	r.Get("/cart", h.getCart)
	r.Post("/cart/items", h.addCartItem)
	r.Put("/cart/items/{productID}", h.updateCartItem)
	r.Delete("/cart/items/{productID}", h.removeCartItem)
	r.Delete("/cart", h.clearCart)

	r.Get("/wishlist", h.getWishlist)
	r.Post("/wishlist/items", h.addWishlistItem)
	r.Delete("/wishlist/items/{productID}", h.removeWishlistItem)
	r.Delete("/wishlist", h.clearWishlist)

	r.Post("/checkout", h.submitCheckout)
	r.Post("/checkout/pay", h.pay)
	r.Post("/checkout/confirm", h.confirmReceipt)
	r.Get("/checkout/state", h.checkoutState)
}

// ---- products ----

func (h *StorefrontHandler) listProducts(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	ps, err := h.catalog.List(ctx)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, ps)
}

func (h *StorefrontHandler) getProduct(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	p, found, err := h.catalog.Resolve(ctx, id)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	if !found {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "not found"})
		return
	}
	writeJSON(w, http.StatusOK, p)
}

// ---- cart ----

type cartView struct {
	Items      []cart.LineItem `json:"items"`
	TotalItems int             `json:"total_items"`
	TotalPrice float64         `json:"total_price"`
}

func viewCart(c *cart.Store) cartView {
	return cartView{
		Items:      c.Items(),
		TotalItems: c.TotalItems(),
		TotalPrice: c.TotalPrice(),
	}
}

type addItemReq struct {
	ProductID string `json:"product_id"`
	Quantity  int    `json:"quantity"`
}

func (h *StorefrontHandler) getCart(w http.ResponseWriter, r *http.Request) {
	eng := h.engines.get(r)
	writeJSON(w, http.StatusOK, viewCart(eng.Cart))
}

func (h *StorefrontHandler) addCartItem(w http.ResponseWriter, r *http.Request) {
	var req addItemReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}
	if req.ProductID == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "missing product_id"})
		return
	}
	if req.Quantity == 0 {
		req.Quantity = 1
	}

	eng := h.engines.get(r)
	if err := eng.Cart.AddItem(r.Context(), req.ProductID, req.Quantity); err != nil {
		if errors.Is(err, cart.ErrUnknownProduct) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "unknown product"})
			return
		}
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, viewCart(eng.Cart))
}

type updateQuantityReq struct {
	Quantity int `json:"quantity"`
}

func (h *StorefrontHandler) updateCartItem(w http.ResponseWriter, r *http.Request) {
	productID := chi.URLParam(r, "productID")
	var req updateQuantityReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}

	eng := h.engines.get(r)
	eng.Cart.UpdateQuantity(r.Context(), productID, req.Quantity)
	writeJSON(w, http.StatusOK, viewCart(eng.Cart))
}

func (h *StorefrontHandler) removeCartItem(w http.ResponseWriter, r *http.Request) {
	eng := h.engines.get(r)
	eng.Cart.RemoveItem(r.Context(), chi.URLParam(r, "productID"))
	writeJSON(w, http.StatusOK, viewCart(eng.Cart))
}

func (h *StorefrontHandler) clearCart(w http.ResponseWriter, r *http.Request) {
	eng := h.engines.get(r)
	eng.Cart.Clear(r.Context())
	writeJSON(w, http.StatusOK, viewCart(eng.Cart))
}

// ---- wishlist ----

type wishlistView struct {
	Entries []wishlist.Entry `json:"entries"`
	Count   int              `json:"count"`
}

func viewWishlist(s *wishlist.Store) wishlistView {
	return wishlistView{Entries: s.Entries(), Count: s.Count()}
}

func (h *StorefrontHandler) getWishlist(w http.ResponseWriter, r *http.Request) {
	eng := h.engines.get(r)
	writeJSON(w, http.StatusOK, viewWishlist(eng.Wishlist))
}

func (h *StorefrontHandler) addWishlistItem(w http.ResponseWriter, r *http.Request) {
	var req addItemReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}
	if req.ProductID == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "missing product_id"})
		return
	}

	eng := h.engines.get(r)
	if err := eng.Wishlist.Add(r.Context(), req.ProductID); err != nil {
		if errors.Is(err, wishlist.ErrUnknownProduct) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "unknown product"})
			return
		}
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, viewWishlist(eng.Wishlist))
}

func (h *StorefrontHandler) removeWishlistItem(w http.ResponseWriter, r *http.Request) {
	eng := h.engines.get(r)
	eng.Wishlist.Remove(r.Context(), chi.URLParam(r, "productID"))
	writeJSON(w, http.StatusOK, viewWishlist(eng.Wishlist))
}

func (h *StorefrontHandler) clearWishlist(w http.ResponseWriter, r *http.Request) {
	eng := h.engines.get(r)
	eng.Wishlist.Clear(r.Context())
	writeJSON(w, http.StatusOK, viewWishlist(eng.Wishlist))
}

// ---- checkout ----

type checkoutReq struct {
	checkout.BillingDetails
	PaymentMethod string `json:"payment_method"`
}

func (h *StorefrontHandler) submitCheckout(w http.ResponseWriter, r *http.Request) {
	var req checkoutReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}

	eng := h.engines.get(r)
	res, err := eng.Checkout.Submit(r.Context(), req.BillingDetails, checkout.PaymentMethod(req.PaymentMethod))
	if err != nil {
		var fields checkout.FieldErrors
		switch {
		case errors.As(err, &fields):
			writeJSON(w, http.StatusBadRequest, map[string]any{"error": "validation failed", "fields": fields})
		case errors.Is(err, checkout.ErrEmptyCart):
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "cart is empty"})
		case errors.Is(err, checkout.ErrSubmitInFlight):
			writeJSON(w, http.StatusConflict, map[string]string{"error": "checkout already in progress"})
		default:
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		}
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (h *StorefrontHandler) pay(w http.ResponseWriter, r *http.Request) {
	eng := h.engines.get(r)
	link, err := eng.Checkout.Pay(r.Context())
	if err != nil {
		switch {
		case errors.Is(err, checkout.ErrPaymentInit):
			// cart and order are intact, the client may retry
			writeJSON(w, http.StatusBadGateway, map[string]any{"error": "payment initialization failed", "retryable": true})
		case errors.Is(err, checkout.ErrSubmitInFlight):
			writeJSON(w, http.StatusConflict, map[string]string{"error": "payment already in progress"})
		default:
			writeJSON(w, http.StatusConflict, map[string]string{"error": err.Error()})
		}
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"payment_link": link})
}

func (h *StorefrontHandler) confirmReceipt(w http.ResponseWriter, r *http.Request) {
	eng := h.engines.get(r)
	if err := eng.Checkout.ConfirmReceipt(); err != nil {
		writeJSON(w, http.StatusConflict, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"state": eng.Checkout.State().String()})
}

func (h *StorefrontHandler) checkoutState(w http.ResponseWriter, r *http.Request) {
	eng := h.engines.get(r)
	out := map[string]any{"state": eng.Checkout.State().String()}
	if res := eng.Checkout.Current(); res != nil {
		out["result"] = res
	}
	writeJSON(w, http.StatusOK, out)
}
