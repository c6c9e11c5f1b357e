// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"database/sql"
	"errors"
	"net/http"

	"github.com/alexedwards/scs/v2"

	"github.com/olegiv/oshop-go/internal/order"
	"github.com/olegiv/oshop-go/internal/render"
	"github.com/olegiv/oshop-go/internal/store"
)

// OrdersPerPage is the number of orders per admin list page.
const OrdersPerPage = 20

const redirectAdminOrders = "/admin/orders"

// OrdersHandler handles order management routes.
type OrdersHandler struct {
	queries        *store.Queries
	renderer       *render.Renderer
	sessionManager *scs.SessionManager
	orderService   *order.Service
}

// NewOrdersHandler creates a new OrdersHandler.
func NewOrdersHandler(db *sql.DB, renderer *render.Renderer, sm *scs.SessionManager, orderService *order.Service) *OrdersHandler {
	return &OrdersHandler{
		queries:        store.New(db),
		renderer:       renderer,
		sessionManager: sm,
		orderService:   orderService,
	}
}

// OrdersListData holds data for the orders list template.
type OrdersListData struct {
	Orders      []store.Order
	TotalOrders int64
	Pagination  AdminPagination
}

// List handles GET /admin/orders.
func (h *OrdersHandler) List(w http.ResponseWriter, r *http.Request) {
	page := ParsePageParam(r)

	totalOrders, err := h.queries.CountOrders(r.Context())
	if err != nil {
		logAndInternalError(w, "failed to count orders", "error", err)
		return
	}

	page, _ = NormalizePagination(page, int(totalOrders), OrdersPerPage)
	offset := int64((page - 1) * OrdersPerPage)

	orders, err := h.queries.ListOrders(r.Context(), store.ListOrdersParams{
		Limit:  OrdersPerPage,
		Offset: offset,
	})
	if err != nil {
		logAndInternalError(w, "failed to list orders", "error", err)
		return
	}

	if err := h.renderer.Render(w, r, "admin/orders", render.TemplateData{
		Title: "Orders",
		Data: OrdersListData{
			Orders:      orders,
			TotalOrders: totalOrders,
			Pagination:  BuildAdminPagination(page, int(totalOrders), OrdersPerPage, redirectAdminOrders, r.URL.Query()),
		},
	}); err != nil {
		logAndInternalError(w, "failed to render orders list", "error", err)
	}
}

// OrderDetailData holds data for the order detail template.
type OrderDetailData struct {
	Order order.WithItems
	User  store.User
}

// Detail handles GET /admin/orders/{id}.
func (h *OrdersHandler) Detail(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		http.NotFound(w, r)
		return
	}

	ord, err := h.orderService.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			flashDanger(w, r, h.renderer, redirectAdminOrders, "Order not found")
			return
		}
		logAndInternalError(w, "failed to get order", "error", err, "order_id", id)
		return
	}

	user, err := h.queries.GetUserByID(r.Context(), ord.Order.UserID)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		logAndInternalError(w, "failed to get order user", "error", err, "order_id", id)
		return
	}

	if err := h.renderer.Render(w, r, "admin/order_detail", render.TemplateData{
		Title: "Order Detail",
		Data: OrderDetailData{
			Order: ord,
			User:  user,
		},
	}); err != nil {
		logAndInternalError(w, "failed to render order detail", "error", err)
	}
}
