// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"database/sql"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/alexedwards/scs/v2"

	"github.com/olegiv/oshop-go/internal/middleware"
	"github.com/olegiv/oshop-go/internal/model"
	"github.com/olegiv/oshop-go/internal/render"
	"github.com/olegiv/oshop-go/internal/service"
	"github.com/olegiv/oshop-go/internal/store"
)

// ProductsPerPage is the number of products per admin list page.
const ProductsPerPage = 20

const redirectAdminProducts = "/admin/products"

// ProductsHandler handles product management routes.
type ProductsHandler struct {
	queries        *store.Queries
	renderer       *render.Renderer
	sessionManager *scs.SessionManager
	eventService   *service.EventService
}

// NewProductsHandler creates a new ProductsHandler.
func NewProductsHandler(db *sql.DB, renderer *render.Renderer, sm *scs.SessionManager) *ProductsHandler {
	return &ProductsHandler{
		queries:        store.New(db),
		renderer:       renderer,
		sessionManager: sm,
		eventService:   service.NewEventService(db),
	}
}

// ProductsListData holds data for the products list template.
type ProductsListData struct {
	Products      []store.Product
	TotalProducts int64
	Pagination    AdminPagination
}

// List handles GET /admin/products.
func (h *ProductsHandler) List(w http.ResponseWriter, r *http.Request) {
	page := ParsePageParam(r)

	totalProducts, err := h.queries.CountProducts(r.Context())
	if err != nil {
		logAndInternalError(w, "failed to count products", "error", err)
		return
	}

	page, _ = NormalizePagination(page, int(totalProducts), ProductsPerPage)
	offset := int64((page - 1) * ProductsPerPage)

	products, err := h.queries.ListProducts(r.Context(), store.ListProductsParams{
		Limit:  ProductsPerPage,
		Offset: offset,
	})
	if err != nil {
		logAndInternalError(w, "failed to list products", "error", err)
		return
	}

	if err := h.renderer.Render(w, r, "admin/products", render.TemplateData{
		Title: "Products",
		Data: ProductsListData{
			Products:      products,
			TotalProducts: totalProducts,
			Pagination:    BuildAdminPagination(page, int(totalProducts), ProductsPerPage, redirectAdminProducts, r.URL.Query()),
		},
	}); err != nil {
		logAndInternalError(w, "failed to render products list", "error", err)
	}
}

// ProductFormData holds data for the product form template.
type ProductFormData struct {
	Product    *store.Product
	Categories []string
	IsEdit     bool
}

// NewForm handles GET /admin/products/new.
func (h *ProductsHandler) NewForm(w http.ResponseWriter, r *http.Request) {
	categories, err := h.queries.ListCategories(r.Context())
	if err != nil {
		logAndInternalError(w, "failed to list categories", "error", err)
		return
	}

	if err := h.renderer.Render(w, r, "admin/product_form", render.TemplateData{
		Title: "New Product",
		Data: ProductFormData{
			Categories: categories,
		},
	}); err != nil {
		logAndInternalError(w, "failed to render product form", "error", err)
	}
}

// Create handles POST /admin/products/new.
func (h *ProductsHandler) Create(w http.ResponseWriter, r *http.Request) {
	if !parseFormOrRedirect(w, r, h.renderer, redirectAdminProducts+"/new") {
		return
	}

	form, ok := h.parseProductForm(w, r, redirectAdminProducts+"/new")
	if !ok {
		return
	}

	product, err := h.queries.CreateProduct(r.Context(), store.CreateProductParams{
		Title:       form.Title,
		Description: form.Description,
		Price:       form.Price,
		Category:    form.Category,
		ImageURL:    form.ImageURL,
		IsActive:    form.IsActive,
	})
	if err != nil {
		logAndInternalError(w, "failed to create product", "error", err)
		return
	}

	slog.Info("product created", "product_id", product.ID, "title", product.Title)
	_ = h.eventService.LogProductEvent(r.Context(), model.EventLevelInfo, "Product created",
		middleware.GetUserIDPtr(r), r.RemoteAddr, map[string]any{"product_id": product.ID, "title": product.Title})

	flashSuccess(w, r, h.renderer, redirectAdminProducts, "Product created.")
}

// EditForm handles GET /admin/products/{id}/edit.
func (h *ProductsHandler) EditForm(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		http.NotFound(w, r)
		return
	}

	product, ok := requireEntityWithRedirect(w, r, h.renderer, redirectAdminProducts, "product", id,
		func(id int64) (store.Product, error) {
			return h.queries.GetProductByID(r.Context(), id)
		})
	if !ok {
		return
	}

	categories, err := h.queries.ListCategories(r.Context())
	if err != nil {
		logAndInternalError(w, "failed to list categories", "error", err)
		return
	}

	if err := h.renderer.Render(w, r, "admin/product_form", render.TemplateData{
		Title: "Edit Product",
		Data: ProductFormData{
			Product:    &product,
			Categories: categories,
			IsEdit:     true,
		},
	}); err != nil {
		logAndInternalError(w, "failed to render product form", "error", err)
	}
}

// Update handles POST /admin/products/{id}/edit. Existing order items
// are unaffected since they carry their own snapshots.
func (h *ProductsHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		http.NotFound(w, r)
		return
	}

	if _, ok := requireEntityWithRedirect(w, r, h.renderer, redirectAdminProducts, "product", id,
		func(id int64) (store.Product, error) {
			return h.queries.GetProductByID(r.Context(), id)
		}); !ok {
		return
	}

	if !parseFormOrRedirect(w, r, h.renderer, redirectAdminProducts) {
		return
	}

	form, ok := h.parseProductForm(w, r, redirectAdminProducts)
	if !ok {
		return
	}

	if err := h.queries.UpdateProduct(r.Context(), store.UpdateProductParams{
		Title:       form.Title,
		Description: form.Description,
		Price:       form.Price,
		Category:    form.Category,
		ImageURL:    form.ImageURL,
		IsActive:    form.IsActive,
		ID:          id,
	}); err != nil {
		logAndInternalError(w, "failed to update product", "error", err)
		return
	}

	slog.Info("product updated", "product_id", id)
	_ = h.eventService.LogProductEvent(r.Context(), model.EventLevelInfo, "Product updated",
		middleware.GetUserIDPtr(r), r.RemoteAddr, map[string]any{"product_id": id})

	flashSuccess(w, r, h.renderer, redirectAdminProducts, "Product updated.")
}

// Delete handles POST /admin/products/{id}/delete. Order snapshots keep
// the product's title and price, so history survives the delete.
func (h *ProductsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		http.NotFound(w, r)
		return
	}

	product, ok := requireEntityWithRedirect(w, r, h.renderer, redirectAdminProducts, "product", id,
		func(id int64) (store.Product, error) {
			return h.queries.GetProductByID(r.Context(), id)
		})
	if !ok {
		return
	}

	if err := h.queries.DeleteProduct(r.Context(), id); err != nil {
		logAndInternalError(w, "failed to delete product", "error", err)
		return
	}

	slog.Info("product deleted", "product_id", id, "title", product.Title)
	_ = h.eventService.LogProductEvent(r.Context(), model.EventLevelWarning, "Product deleted",
		middleware.GetUserIDPtr(r), r.RemoteAddr, map[string]any{"product_id": id, "title": product.Title})

	flashSuccess(w, r, h.renderer, redirectAdminProducts, "Product deleted.")
}

// productForm holds validated product form values.
type productForm struct {
	Title       string
	Description string
	Price       int64
	Category    string
	ImageURL    sql.NullString
	IsActive    bool
}

// parseProductForm validates the product form. Price is entered in
// cents; a bad value flashes and redirects.
func (h *ProductsHandler) parseProductForm(w http.ResponseWriter, r *http.Request, redirectURL string) (productForm, bool) {
	title := strings.TrimSpace(r.PostFormValue("title"))
	if title == "" {
		flashDanger(w, r, h.renderer, redirectURL, "Title is required.")
		return productForm{}, false
	}

	price, err := strconv.ParseInt(strings.TrimSpace(r.PostFormValue("price")), 10, 64)
	if err != nil || price < 0 {
		flashDanger(w, r, h.renderer, redirectURL, "Price must be a non-negative number of cents.")
		return productForm{}, false
	}

	category := strings.TrimSpace(r.PostFormValue("category"))
	if category == "" {
		category = "Other"
	}

	var imageURL sql.NullString
	if v := strings.TrimSpace(r.PostFormValue("image_url")); v != "" {
		imageURL = sql.NullString{String: v, Valid: true}
	}

	return productForm{
		Title:       title,
		Description: r.PostFormValue("description"),
		Price:       price,
		Category:    category,
		ImageURL:    imageURL,
		IsActive:    r.PostFormValue("is_active") == "on" || r.PostFormValue("is_active") == "1",
	}, true
}
