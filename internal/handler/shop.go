// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package handler implements HTTP handlers for the storefront and the
// admin back office.
package handler

import (
	"database/sql"
	"errors"
	"log/slog"
	"net/http"

	"github.com/alexedwards/scs/v2"

	"github.com/olegiv/oshop-go/internal/cart"
	"github.com/olegiv/oshop-go/internal/middleware"
	"github.com/olegiv/oshop-go/internal/model"
	"github.com/olegiv/oshop-go/internal/order"
	"github.com/olegiv/oshop-go/internal/render"
	"github.com/olegiv/oshop-go/internal/service"
	"github.com/olegiv/oshop-go/internal/store"
)

// HomeProductLimit is the number of newest products shown on the home page.
const HomeProductLimit = 6

// ShopHandler handles storefront routes: catalog, cart, and checkout.
type ShopHandler struct {
	queries        *store.Queries
	renderer       *render.Renderer
	sessionManager *scs.SessionManager
	cartService    *cart.Service
	orderService   *order.Service
	eventService   *service.EventService
}

// NewShopHandler creates a new ShopHandler.
func NewShopHandler(db *sql.DB, renderer *render.Renderer, sm *scs.SessionManager, cartService *cart.Service, orderService *order.Service) *ShopHandler {
	return &ShopHandler{
		queries:        store.New(db),
		renderer:       renderer,
		sessionManager: sm,
		cartService:    cartService,
		orderService:   orderService,
		eventService:   service.NewEventService(db),
	}
}

// Home renders the home page with the newest products.
func (h *ShopHandler) Home(w http.ResponseWriter, r *http.Request) {
	products, err := h.queries.ListNewestActiveProducts(r.Context(), HomeProductLimit)
	if err != nil {
		logAndInternalError(w, "failed to list newest products", "error", err)
		return
	}

	if err := h.renderer.Render(w, r, "shop/home", render.TemplateData{
		Title: "Home",
		Data:  products,
	}); err != nil {
		logAndInternalError(w, "failed to render home", "error", err)
	}
}

// About renders the static about page.
func (h *ShopHandler) About(w http.ResponseWriter, r *http.Request) {
	if err := h.renderer.Render(w, r, "shop/about", render.TemplateData{Title: "About"}); err != nil {
		logAndInternalError(w, "failed to render about", "error", err)
	}
}

// Contacts renders the static contacts page.
func (h *ShopHandler) Contacts(w http.ResponseWriter, r *http.Request) {
	if err := h.renderer.Render(w, r, "shop/contacts", render.TemplateData{Title: "Contacts"}); err != nil {
		logAndInternalError(w, "failed to render contacts", "error", err)
	}
}

// CatalogData holds data for the catalog page.
type CatalogData struct {
	Products   []store.Product
	Categories []string
	Query      string
	Category   string
}

// Catalog renders the product catalog with optional search and category filter.
func (h *ShopHandler) Catalog(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")
	category := r.URL.Query().Get("category")

	products, err := h.queries.SearchActiveProducts(r.Context(), store.SearchActiveProductsParams{
		Query:    query,
		Category: category,
	})
	if err != nil {
		logAndInternalError(w, "failed to search products", "error", err)
		return
	}

	categories, err := h.queries.ListCategories(r.Context())
	if err != nil {
		logAndInternalError(w, "failed to list categories", "error", err)
		return
	}

	if err := h.renderer.Render(w, r, "shop/catalog", render.TemplateData{
		Title: "Catalog",
		Data: CatalogData{
			Products:   products,
			Categories: categories,
			Query:      query,
			Category:   category,
		},
	}); err != nil {
		logAndInternalError(w, "failed to render catalog", "error", err)
	}
}

// ProductDetail renders a single product page. Unknown and inactive
// products get the same response so deactivation hides a product completely.
func (h *ShopHandler) ProductDetail(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		flashWarning(w, r, h.renderer, "/catalog", "Product not found.")
		return
	}

	product, err := h.queries.GetProductByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			flashWarning(w, r, h.renderer, "/catalog", "Product not found.")
			return
		}
		logAndInternalError(w, "failed to get product", "error", err, "product_id", id)
		return
	}
	if !product.IsActive {
		flashWarning(w, r, h.renderer, "/catalog", "Product not found.")
		return
	}

	if err := h.renderer.Render(w, r, "shop/product", render.TemplateData{
		Title: product.Title,
		Data:  product,
	}); err != nil {
		logAndInternalError(w, "failed to render product", "error", err)
	}
}

// CartData holds data for the cart page.
type CartData struct {
	Lines []cart.Line
	Total int64
}

// CartView renders the shopping cart.
func (h *ShopHandler) CartView(w http.ResponseWriter, r *http.Request) {
	lines, err := h.cartService.Items(r.Context(), middleware.GetUserID(r))
	if err != nil {
		logAndInternalError(w, "failed to load cart", "error", err)
		return
	}

	if err := h.renderer.Render(w, r, "shop/cart", render.TemplateData{
		Title: "Cart",
		Data: CartData{
			Lines: lines,
			Total: cart.Total(lines),
		},
	}); err != nil {
		logAndInternalError(w, "failed to render cart", "error", err)
	}
}

// CartAdd puts one unit of a product in the cart.
// POST /cart/add/{id}
func (h *ShopHandler) CartAdd(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		http.NotFound(w, r)
		return
	}

	err = h.cartService.Add(r.Context(), middleware.GetUserID(r), id, 1)
	if err != nil {
		if errors.Is(err, cart.ErrProductUnavailable) {
			flashWarning(w, r, h.renderer, "/catalog", "This product is no longer available.")
			return
		}
		logAndInternalError(w, "failed to add to cart", "error", err, "product_id", id)
		return
	}

	flashSuccess(w, r, h.renderer, "/cart", "Added to cart.")
}

// CartRemove deletes a product from the cart. Removing something already
// gone just redirects back.
// POST /cart/remove/{id}
func (h *ShopHandler) CartRemove(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		http.NotFound(w, r)
		return
	}

	if err := h.cartService.Remove(r.Context(), middleware.GetUserID(r), id); err != nil {
		logAndInternalError(w, "failed to remove from cart", "error", err, "product_id", id)
		return
	}

	flashInfo(w, r, h.renderer, "/cart", "Removed from cart.")
}

// CartClear empties the cart.
// POST /cart/clear
func (h *ShopHandler) CartClear(w http.ResponseWriter, r *http.Request) {
	if err := h.cartService.Clear(r.Context(), middleware.GetUserID(r)); err != nil {
		logAndInternalError(w, "failed to clear cart", "error", err)
		return
	}

	flashInfo(w, r, h.renderer, "/cart", "Cart cleared.")
}

// CheckoutForm renders the checkout confirmation page.
// GET /checkout (authenticated)
func (h *ShopHandler) CheckoutForm(w http.ResponseWriter, r *http.Request) {
	lines, err := h.cartService.Items(r.Context(), middleware.GetUserID(r))
	if err != nil {
		logAndInternalError(w, "failed to load cart", "error", err)
		return
	}
	if len(lines) == 0 {
		flashWarning(w, r, h.renderer, "/cart", "Your cart is empty.")
		return
	}

	if err := h.renderer.Render(w, r, "shop/checkout", render.TemplateData{
		Title: "Checkout",
		Data: CartData{
			Lines: lines,
			Total: cart.Total(lines),
		},
	}); err != nil {
		logAndInternalError(w, "failed to render checkout", "error", err)
	}
}

// CheckoutSubmit places an order for the current cart and empties it.
// POST /checkout (authenticated)
func (h *ShopHandler) CheckoutSubmit(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r)

	lines, err := h.cartService.Items(r.Context(), userID)
	if err != nil {
		logAndInternalError(w, "failed to load cart", "error", err)
		return
	}

	ord, err := h.orderService.Checkout(r.Context(), userID, lines)
	if err != nil {
		if errors.Is(err, order.ErrEmptyCart) {
			flashWarning(w, r, h.renderer, "/cart", "Your cart is empty.")
			return
		}
		logAndInternalError(w, "checkout failed", "error", err, "user_id", userID)
		return
	}

	if err := h.cartService.Clear(r.Context(), userID); err != nil {
		slog.Error("failed to clear cart after checkout", "error", err, "user_id", userID, "order_id", ord.ID)
	}

	slog.Info("order placed", "order_id", ord.ID, "user_id", userID, "total", ord.Total)
	_ = h.eventService.LogOrderEvent(r.Context(), model.EventLevelInfo, "Order placed", &userID, r.RemoteAddr, map[string]any{
		"order_id": ord.ID,
		"total":    ord.Total,
	})

	flashSuccess(w, r, h.renderer, "/account", "Order placed. Thank you!")
}

// Account renders the user's account page with order history.
// GET /account (authenticated)
func (h *ShopHandler) Account(w http.ResponseWriter, r *http.Request) {
	orders, err := h.orderService.ListByUser(r.Context(), middleware.GetUserID(r))
	if err != nil {
		logAndInternalError(w, "failed to list orders", "error", err)
		return
	}

	if err := h.renderer.Render(w, r, "shop/account", render.TemplateData{
		Title: "My Account",
		Data:  orders,
	}); err != nil {
		logAndInternalError(w, "failed to render account", "error", err)
	}
}
