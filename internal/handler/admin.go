// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"database/sql"
	"log/slog"
	"net/http"

	"github.com/alexedwards/scs/v2"

	"github.com/olegiv/oshop-go/internal/render"
	"github.com/olegiv/oshop-go/internal/store"
)

// DashboardRecentOrders is the number of latest orders shown on the dashboard.
const DashboardRecentOrders = 10

// DashboardStats holds the statistics displayed on the dashboard.
type DashboardStats struct {
	TotalUsers    int64
	TotalProducts int64
	TotalOrders   int64
	Revenue       int64
}

// DashboardData holds all dashboard data including stats and recent orders.
type DashboardData struct {
	Stats        DashboardStats
	RecentOrders []store.Order
}

// AdminHandler handles the admin dashboard and event log routes.
type AdminHandler struct {
	queries        *store.Queries
	renderer       *render.Renderer
	sessionManager *scs.SessionManager
}

// NewAdminHandler creates a new AdminHandler.
func NewAdminHandler(db *sql.DB, renderer *render.Renderer, sm *scs.SessionManager) *AdminHandler {
	return &AdminHandler{
		queries:        store.New(db),
		renderer:       renderer,
		sessionManager: sm,
	}
}

// Dashboard renders the admin dashboard with store statistics and
// recent orders. Individual stat failures are logged and leave the
// stat at zero rather than failing the whole page.
func (h *AdminHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	stats := DashboardStats{}

	if userCount, err := h.queries.CountUsers(ctx); err != nil {
		slog.Error("failed to count users", "error", err)
	} else {
		stats.TotalUsers = userCount
	}

	if productCount, err := h.queries.CountProducts(ctx); err != nil {
		slog.Error("failed to count products", "error", err)
	} else {
		stats.TotalProducts = productCount
	}

	if orderCount, err := h.queries.CountOrders(ctx); err != nil {
		slog.Error("failed to count orders", "error", err)
	} else {
		stats.TotalOrders = orderCount
	}

	if revenue, err := h.queries.SumOrderTotals(ctx); err != nil {
		slog.Error("failed to sum order totals", "error", err)
	} else {
		stats.Revenue = revenue
	}

	var recentOrders []store.Order
	if orders, err := h.queries.ListOrders(ctx, store.ListOrdersParams{
		Limit:  DashboardRecentOrders,
		Offset: 0,
	}); err != nil {
		slog.Error("failed to list recent orders", "error", err)
	} else {
		recentOrders = orders
	}

	if err := h.renderer.Render(w, r, "admin/dashboard", render.TemplateData{
		Title: "Dashboard",
		Data: DashboardData{
			Stats:        stats,
			RecentOrders: recentOrders,
		},
	}); err != nil {
		logAndInternalError(w, "failed to render dashboard", "error", err)
	}
}
