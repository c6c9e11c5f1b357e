// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"context"
	"database/sql"
	"net/http"
	"net/http/httptest"
	"testing"
	"testing/fstest"
	"time"

	"github.com/alexedwards/scs/v2"
	"github.com/go-chi/chi/v5"

	"github.com/olegiv/oshop-go/internal/auth"
	"github.com/olegiv/oshop-go/internal/middleware"
	"github.com/olegiv/oshop-go/internal/render"
	"github.com/olegiv/oshop-go/internal/store"
	"github.com/olegiv/oshop-go/internal/testutil"
)

// testPassword is the plain-text password used for all test accounts.
const testPassword = "password123"

var testTemplatesFS = fstest.MapFS{
	"layouts/base.html": {Data: []byte(
		`{{define "base"}}<html><body>{{if .Flash}}<div class="flash {{.FlashType}}">{{.Flash}}</div>{{end}}{{template "content" .}}</body></html>{{end}}`,
	)},
	"layouts/admin.html": {Data: []byte(
		`{{define "admin-nav"}}<nav>admin</nav>{{end}}`,
	)},
	"shop/home.html": {Data: []byte(
		`{{define "content"}}<h1>{{.Title}}</h1>{{range .Data}}<div>{{.Title}}</div>{{end}}{{end}}`,
	)},
	"shop/about.html": {Data: []byte(
		`{{define "content"}}<h1>{{.Title}}</h1>{{end}}`,
	)},
	"shop/contacts.html": {Data: []byte(
		`{{define "content"}}<h1>{{.Title}}</h1>{{end}}`,
	)},
	"shop/catalog.html": {Data: []byte(
		`{{define "content"}}{{range .Data.Products}}<div>{{.Title}}</div>{{end}}{{end}}`,
	)},
	"shop/product.html": {Data: []byte(
		`{{define "content"}}<h1>{{.Data.Title}}</h1><span>{{formatPrice .Data.Price}}</span>{{end}}`,
	)},
	"shop/cart.html": {Data: []byte(
		`{{define "content"}}{{range .Data.Lines}}<div>{{.Product.Title}} x{{.Qty}}</div>{{end}}<b>{{formatPrice .Data.Total}}</b>{{end}}`,
	)},
	"shop/checkout.html": {Data: []byte(
		`{{define "content"}}<b>{{formatPrice .Data.Total}}</b>{{end}}`,
	)},
	"shop/account.html": {Data: []byte(
		`{{define "content"}}{{range .Data}}<div>order {{.Order.ID}}</div>{{end}}{{end}}`,
	)},
	"auth/login.html": {Data: []byte(
		`{{define "content"}}<form>login</form>{{end}}`,
	)},
	"auth/register.html": {Data: []byte(
		`{{define "content"}}<form>register</form>{{end}}`,
	)},
	"admin/dashboard.html": {Data: []byte(
		`{{define "content"}}{{template "admin-nav" .}}<span>products:{{.Data.Stats.TotalProducts}}</span><span>orders:{{.Data.Stats.TotalOrders}}</span><span>revenue:{{formatPrice .Data.Stats.Revenue}}</span>{{end}}`,
	)},
	"admin/products.html": {Data: []byte(
		`{{define "content"}}{{range .Data.Products}}<div>{{.Title}}</div>{{end}}{{end}}`,
	)},
	"admin/product_form.html": {Data: []byte(
		`{{define "content"}}<form>{{if .Data.Product}}{{.Data.Product.Title}}{{end}}</form>{{end}}`,
	)},
	"admin/orders.html": {Data: []byte(
		`{{define "content"}}{{range .Data.Orders}}<div>order {{.ID}}</div>{{end}}{{end}}`,
	)},
	"admin/order_detail.html": {Data: []byte(
		`{{define "content"}}<h1>order {{.Data.Order.Order.ID}}</h1>{{range .Data.Order.Items}}<div>{{.Title}}</div>{{end}}{{end}}`,
	)},
	"admin/users.html": {Data: []byte(
		`{{define "content"}}{{range .Data.Users}}<div>{{.Username}}</div>{{end}}{{end}}`,
	)},
	"admin/user_form.html": {Data: []byte(
		`{{define "content"}}<form>{{.Data.User.Username}}</form>{{end}}`,
	)},
	"admin/user_orders.html": {Data: []byte(
		`{{define "content"}}{{range .Data.Orders}}<div>order {{.ID}}</div>{{end}}{{end}}`,
	)},
	"admin/events.html": {Data: []byte(
		`{{define "content"}}{{range .Data.Events}}<div>{{.Message}}</div>{{end}}{{end}}`,
	)},
}

// testHandlerSetup creates a migrated test database, a session manager,
// and a renderer backed by minimal templates.
func testHandlerSetup(t *testing.T) (*sql.DB, *scs.SessionManager, *render.Renderer) {
	t.Helper()

	db, cleanup := testutil.TestDB(t)
	t.Cleanup(cleanup)

	sm := scs.New()

	renderer, err := render.New(render.Config{
		TemplatesFS:    testTemplatesFS,
		SessionManager: sm,
		IsDev:          true,
	})
	if err != nil {
		t.Fatalf("render.New: %v", err)
	}

	return db, sm, renderer
}

// serve runs a request through the session middleware and the handler,
// reusing cookies from a previous response so a test can span requests.
func serve(t *testing.T, sm *scs.SessionManager, h http.HandlerFunc, req *http.Request, prev *httptest.ResponseRecorder) *httptest.ResponseRecorder {
	t.Helper()

	if prev != nil {
		for _, c := range prev.Result().Cookies() {
			req.AddCookie(c)
		}
	}

	rr := httptest.NewRecorder()
	sm.LoadAndSave(h).ServeHTTP(rr, req)
	return rr
}

// asUser places a user in the request context the way the session
// middleware does for signed-in requests.
func asUser(req *http.Request, user store.User) *http.Request {
	ctx := context.WithValue(req.Context(), middleware.ContextKeyUser, user)
	return req.WithContext(ctx)
}

// withURLParam attaches a chi route parameter to the request.
func withURLParam(req *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
}

func createTestUser(t *testing.T, db *sql.DB, username, role string) store.User {
	t.Helper()

	hash, err := auth.HashPassword(testPassword)
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}

	user, err := store.New(db).CreateUser(context.Background(), store.CreateUserParams{
		Username:     username,
		PasswordHash: hash,
		Role:         role,
		CreatedAt:    time.Now(),
	})
	if err != nil {
		t.Fatalf("CreateUser: %v", err)
	}
	return user
}

func createTestProduct(t *testing.T, db *sql.DB, title string, price int64, active bool) store.Product {
	t.Helper()

	product, err := store.New(db).CreateProduct(context.Background(), store.CreateProductParams{
		Title:       title,
		Description: "test product",
		Price:       price,
		Category:    "Test",
		IsActive:    active,
	})
	if err != nil {
		t.Fatalf("CreateProduct: %v", err)
	}
	return product
}
