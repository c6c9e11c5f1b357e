// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"

	"github.com/olegiv/oshop-go/internal/cart"
	"github.com/olegiv/oshop-go/internal/model"
	"github.com/olegiv/oshop-go/internal/order"
	"github.com/olegiv/oshop-go/internal/store"
)

func TestShopHome(t *testing.T) {
	db, sm, renderer := testHandlerSetup(t)
	h := NewShopHandler(db, renderer, sm, cart.NewService(db, sm), order.NewService(db))

	createTestProduct(t, db, "Visible Widget", 1000, true)
	createTestProduct(t, db, "Hidden Widget", 2000, false)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rr := serve(t, sm, h.Home, req, nil)

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rr.Code, http.StatusOK)
	}
	body := rr.Body.String()
	if !strings.Contains(body, "Visible Widget") {
		t.Errorf("body missing active product: %s", body)
	}
	if strings.Contains(body, "Hidden Widget") {
		t.Errorf("body contains inactive product: %s", body)
	}
}

func TestShopCatalog_Filters(t *testing.T) {
	db, sm, renderer := testHandlerSetup(t)
	h := NewShopHandler(db, renderer, sm, cart.NewService(db, sm), order.NewService(db))

	queries := store.New(db)
	mustCreateProduct := func(title, category string) {
		t.Helper()
		_, err := queries.CreateProduct(context.Background(), store.CreateProductParams{
			Title:    title,
			Price:    100,
			Category: category,
			IsActive: true,
		})
		if err != nil {
			t.Fatalf("CreateProduct: %v", err)
		}
	}
	mustCreateProduct("Red Mug", "Home")
	mustCreateProduct("Blue Mug", "Home")
	mustCreateProduct("Red Shirt", "Apparel")

	tests := []struct {
		name    string
		url     string
		want    []string
		exclude []string
	}{
		{"all", "/catalog", []string{"Red Mug", "Blue Mug", "Red Shirt"}, nil},
		{"search", "/catalog?q=Red", []string{"Red Mug", "Red Shirt"}, []string{"Blue Mug"}},
		{"category", "/catalog?category=Home", []string{"Red Mug", "Blue Mug"}, []string{"Red Shirt"}},
		{"both", "/catalog?q=Red&category=Home", []string{"Red Mug"}, []string{"Blue Mug", "Red Shirt"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tt.url, nil)
			rr := serve(t, sm, h.Catalog, req, nil)

			if rr.Code != http.StatusOK {
				t.Fatalf("status = %d, want %d", rr.Code, http.StatusOK)
			}
			body := rr.Body.String()
			for _, want := range tt.want {
				if !strings.Contains(body, want) {
					t.Errorf("body missing %q", want)
				}
			}
			for _, excl := range tt.exclude {
				if strings.Contains(body, excl) {
					t.Errorf("body should not contain %q", excl)
				}
			}
		})
	}
}

func TestShopProductDetail(t *testing.T) {
	db, sm, renderer := testHandlerSetup(t)
	h := NewShopHandler(db, renderer, sm, cart.NewService(db, sm), order.NewService(db))

	active := createTestProduct(t, db, "Thermo Mug", 890, true)
	inactive := createTestProduct(t, db, "Retired Mug", 990, false)

	t.Run("active product renders", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/product/1", nil)
		req = withURLParam(req, "id", strconv.FormatInt(active.ID, 10))
		rr := serve(t, sm, h.ProductDetail, req, nil)

		if rr.Code != http.StatusOK {
			t.Fatalf("status = %d, want %d", rr.Code, http.StatusOK)
		}
		if !strings.Contains(rr.Body.String(), "$8.90") {
			t.Errorf("body missing formatted price: %s", rr.Body.String())
		}
	})

	t.Run("inactive product redirects to catalog", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/product/2", nil)
		req = withURLParam(req, "id", strconv.FormatInt(inactive.ID, 10))
		rr := serve(t, sm, h.ProductDetail, req, nil)

		if rr.Code != http.StatusSeeOther {
			t.Errorf("status = %d, want %d", rr.Code, http.StatusSeeOther)
		}
		if loc := rr.Header().Get("Location"); loc != "/catalog" {
			t.Errorf("redirect = %q, want /catalog", loc)
		}
	})

	t.Run("unknown product redirects to catalog", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/product/9999", nil)
		req = withURLParam(req, "id", "9999")
		rr := serve(t, sm, h.ProductDetail, req, nil)

		if rr.Code != http.StatusSeeOther {
			t.Errorf("status = %d, want %d", rr.Code, http.StatusSeeOther)
		}
		if loc := rr.Header().Get("Location"); loc != "/catalog" {
			t.Errorf("redirect = %q, want /catalog", loc)
		}
	})
}

func TestShopCartAdd_Guest(t *testing.T) {
	db, sm, renderer := testHandlerSetup(t)
	h := NewShopHandler(db, renderer, sm, cart.NewService(db, sm), order.NewService(db))

	product := createTestProduct(t, db, "City Backpack", 2490, true)

	addReq := httptest.NewRequest(http.MethodPost, "/cart/add/1", nil)
	addReq = withURLParam(addReq, "id", strconv.FormatInt(product.ID, 10))
	addRR := serve(t, sm, h.CartAdd, addReq, nil)

	if addRR.Code != http.StatusSeeOther {
		t.Fatalf("status = %d, want %d", addRR.Code, http.StatusSeeOther)
	}
	if loc := addRR.Header().Get("Location"); loc != "/cart" {
		t.Errorf("Location = %q, want %q", loc, "/cart")
	}

	// The session cookie carries the guest cart to the next request.
	viewReq := httptest.NewRequest(http.MethodGet, "/cart", nil)
	viewRR := serve(t, sm, h.CartView, viewReq, addRR)

	body := viewRR.Body.String()
	if !strings.Contains(body, "City Backpack x1") {
		t.Errorf("cart body missing added product: %s", body)
	}
	if !strings.Contains(body, "$24.90") {
		t.Errorf("cart body missing total: %s", body)
	}
}

func TestShopCartAdd_UnknownProduct(t *testing.T) {
	db, sm, renderer := testHandlerSetup(t)
	h := NewShopHandler(db, renderer, sm, cart.NewService(db, sm), order.NewService(db))

	req := httptest.NewRequest(http.MethodPost, "/cart/add/9999", nil)
	req = withURLParam(req, "id", "9999")
	rr := serve(t, sm, h.CartAdd, req, nil)

	if rr.Code != http.StatusSeeOther {
		t.Fatalf("status = %d, want %d", rr.Code, http.StatusSeeOther)
	}
	if loc := rr.Header().Get("Location"); loc != "/catalog" {
		t.Errorf("Location = %q, want %q", loc, "/catalog")
	}
}

func TestShopCartRemove_Idempotent(t *testing.T) {
	db, sm, renderer := testHandlerSetup(t)
	h := NewShopHandler(db, renderer, sm, cart.NewService(db, sm), order.NewService(db))

	// Removing a product that was never added still redirects cleanly.
	req := httptest.NewRequest(http.MethodPost, "/cart/remove/42", nil)
	req = withURLParam(req, "id", "42")
	rr := serve(t, sm, h.CartRemove, req, nil)

	if rr.Code != http.StatusSeeOther {
		t.Fatalf("status = %d, want %d", rr.Code, http.StatusSeeOther)
	}
}

func TestShopCheckout(t *testing.T) {
	db, sm, renderer := testHandlerSetup(t)
	cartService := cart.NewService(db, sm)
	h := NewShopHandler(db, renderer, sm, cartService, order.NewService(db))

	user := createTestUser(t, db, "buyer", model.RoleUser)
	product := createTestProduct(t, db, "Fitness Band", 1990, true)

	queries := store.New(db)
	if _, err := queries.CreateCartItem(context.Background(), store.CreateCartItemParams{
		UserID:    user.ID,
		ProductID: product.ID,
		Qty:       2,
	}); err != nil {
		t.Fatalf("CreateCartItem: %v", err)
	}

	req := httptest.NewRequest(http.MethodPost, "/checkout", nil)
	req = asUser(req, user)
	rr := serve(t, sm, h.CheckoutSubmit, req, nil)

	if rr.Code != http.StatusSeeOther {
		t.Fatalf("status = %d, want %d", rr.Code, http.StatusSeeOther)
	}
	if loc := rr.Header().Get("Location"); loc != "/account" {
		t.Errorf("Location = %q, want %q", loc, "/account")
	}

	orders, err := queries.ListOrdersByUser(context.Background(), user.ID)
	if err != nil {
		t.Fatalf("ListOrdersByUser: %v", err)
	}
	if len(orders) != 1 {
		t.Fatalf("got %d orders, want 1", len(orders))
	}
	if orders[0].Total != 3980 {
		t.Errorf("order total = %d, want 3980", orders[0].Total)
	}
	if orders[0].Status != model.OrderStatusAccepted {
		t.Errorf("order status = %q, want %q", orders[0].Status, model.OrderStatusAccepted)
	}

	count, err := queries.CountCartItemsByUser(context.Background(), user.ID)
	if err != nil {
		t.Fatalf("CountCartItemsByUser: %v", err)
	}
	if count != 0 {
		t.Errorf("cart items after checkout = %d, want 0", count)
	}
}

func TestShopCheckout_EmptyCart(t *testing.T) {
	db, sm, renderer := testHandlerSetup(t)
	h := NewShopHandler(db, renderer, sm, cart.NewService(db, sm), order.NewService(db))

	user := createTestUser(t, db, "window-shopper", model.RoleUser)

	req := httptest.NewRequest(http.MethodPost, "/checkout", nil)
	req = asUser(req, user)
	rr := serve(t, sm, h.CheckoutSubmit, req, nil)

	if rr.Code != http.StatusSeeOther {
		t.Fatalf("status = %d, want %d", rr.Code, http.StatusSeeOther)
	}
	if loc := rr.Header().Get("Location"); loc != "/cart" {
		t.Errorf("Location = %q, want %q", loc, "/cart")
	}

	count, err := store.New(db).CountOrders(context.Background())
	if err != nil {
		t.Fatalf("CountOrders: %v", err)
	}
	if count != 0 {
		t.Errorf("orders = %d, want 0", count)
	}
}

func TestShopAccount(t *testing.T) {
	db, sm, renderer := testHandlerSetup(t)
	cartService := cart.NewService(db, sm)
	orderService := order.NewService(db)
	h := NewShopHandler(db, renderer, sm, cartService, orderService)

	user := createTestUser(t, db, "repeat-customer", model.RoleUser)
	product := createTestProduct(t, db, "Wireless Headphones", 3990, true)

	lines := []cart.Line{{Product: product, Qty: 1}}
	if _, err := orderService.Checkout(context.Background(), user.ID, lines); err != nil {
		t.Fatalf("Checkout: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/account", nil)
	req = asUser(req, user)
	rr := serve(t, sm, h.Account, req, nil)

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rr.Code, http.StatusOK)
	}
	if !strings.Contains(rr.Body.String(), "order 1") {
		t.Errorf("body missing order: %s", rr.Body.String())
	}
}
