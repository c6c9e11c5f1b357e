// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"database/sql"
	"log/slog"
	"net/http"
	"strings"

	"github.com/alexedwards/scs/v2"

	"github.com/olegiv/oshop-go/internal/auth"
	"github.com/olegiv/oshop-go/internal/middleware"
	"github.com/olegiv/oshop-go/internal/model"
	"github.com/olegiv/oshop-go/internal/render"
	"github.com/olegiv/oshop-go/internal/service"
	"github.com/olegiv/oshop-go/internal/store"
)

// UsersPerPage is the number of users per admin list page.
const UsersPerPage = 20

const redirectAdminUsers = "/admin/users"

// UsersHandler handles user management routes.
type UsersHandler struct {
	queries        *store.Queries
	renderer       *render.Renderer
	sessionManager *scs.SessionManager
	eventService   *service.EventService
}

// NewUsersHandler creates a new UsersHandler.
func NewUsersHandler(db *sql.DB, renderer *render.Renderer, sm *scs.SessionManager) *UsersHandler {
	return &UsersHandler{
		queries:        store.New(db),
		renderer:       renderer,
		sessionManager: sm,
		eventService:   service.NewEventService(db),
	}
}

// UsersListData holds data for the users list template.
type UsersListData struct {
	Users         []store.User
	CurrentUserID int64
	TotalUsers    int64
	Query         string
	Role          string
	Roles         []string
	Pagination    AdminPagination
}

// List handles GET /admin/users with optional username search and
// role filter.
func (h *UsersHandler) List(w http.ResponseWriter, r *http.Request) {
	query := strings.TrimSpace(r.URL.Query().Get("q"))
	role := r.URL.Query().Get("role")
	if !model.IsValidRole(role) {
		role = ""
	}

	page := ParsePageParam(r)

	totalUsers, err := h.queries.CountSearchUsers(r.Context(), store.CountSearchUsersParams{
		Query: query,
		Role:  role,
	})
	if err != nil {
		logAndInternalError(w, "failed to count users", "error", err)
		return
	}

	page, _ = NormalizePagination(page, int(totalUsers), UsersPerPage)
	offset := int64((page - 1) * UsersPerPage)

	users, err := h.queries.SearchUsers(r.Context(), store.SearchUsersParams{
		Query:  query,
		Role:   role,
		Limit:  UsersPerPage,
		Offset: offset,
	})
	if err != nil {
		logAndInternalError(w, "failed to list users", "error", err)
		return
	}

	if err := h.renderer.Render(w, r, "admin/users", render.TemplateData{
		Title: "Users",
		Data: UsersListData{
			Users:         users,
			CurrentUserID: middleware.GetUserID(r),
			TotalUsers:    totalUsers,
			Query:         query,
			Role:          role,
			Roles:         model.ValidRoles,
			Pagination:    BuildAdminPagination(page, int(totalUsers), UsersPerPage, redirectAdminUsers, r.URL.Query()),
		},
	}); err != nil {
		logAndInternalError(w, "failed to render users list", "error", err)
	}
}

// UserFormData holds data for the user edit form template.
type UserFormData struct {
	User       store.User
	Roles      []string
	OrderCount int64
}

// EditForm handles GET /admin/users/{id}/edit.
func (h *UsersHandler) EditForm(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		http.NotFound(w, r)
		return
	}

	user, ok := h.requireUser(w, r, id)
	if !ok {
		return
	}

	orderCount, err := h.queries.CountOrdersByUser(r.Context(), id)
	if err != nil {
		logAndInternalError(w, "failed to count user orders", "error", err)
		return
	}

	if err := h.renderer.Render(w, r, "admin/user_form", render.TemplateData{
		Title: "Edit User",
		Data: UserFormData{
			User:       user,
			Roles:      model.ValidRoles,
			OrderCount: orderCount,
		},
	}); err != nil {
		logAndInternalError(w, "failed to render user form", "error", err)
	}
}

// Update handles POST /admin/users/{id}/edit. The role can be changed
// and the password optionally reset. Demoting the last admin is refused
// so the back office cannot be locked out.
func (h *UsersHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		http.NotFound(w, r)
		return
	}

	user, ok := h.requireUser(w, r, id)
	if !ok {
		return
	}

	if !parseFormOrRedirect(w, r, h.renderer, redirectAdminUsers) {
		return
	}

	role := r.PostFormValue("role")
	if !model.IsValidRole(role) {
		flashDanger(w, r, h.renderer, redirectAdminUsers, "Invalid role.")
		return
	}

	if user.Role == model.RoleAdmin && role != model.RoleAdmin {
		adminCount, err := h.queries.CountUsersByRole(r.Context(), model.RoleAdmin)
		if err != nil {
			logAndInternalError(w, "failed to count admins", "error", err)
			return
		}
		if adminCount <= 1 {
			flashDanger(w, r, h.renderer, redirectAdminUsers, "Cannot demote the last administrator.")
			return
		}
	}

	if role != user.Role {
		if err := h.queries.UpdateUserRole(r.Context(), store.UpdateUserRoleParams{
			Role: role,
			ID:   id,
		}); err != nil {
			logAndInternalError(w, "failed to update user role", "error", err)
			return
		}

		slog.Info("user role changed", "user_id", id, "old_role", user.Role, "new_role", role)
		_ = h.eventService.LogUserEvent(r.Context(), model.EventLevelWarning, "User role changed",
			middleware.GetUserIDPtr(r), r.RemoteAddr,
			map[string]any{"user_id": id, "old_role": user.Role, "new_role": role})
	}

	if password := r.PostFormValue("password"); password != "" {
		if len(password) < MinPasswordLength {
			flashDanger(w, r, h.renderer, redirectAdminUsers, "Password is too short.")
			return
		}

		hash, err := auth.HashPassword(password)
		if err != nil {
			logAndInternalError(w, "failed to hash password", "error", err)
			return
		}

		if err := h.queries.UpdateUserPassword(r.Context(), store.UpdateUserPasswordParams{
			PasswordHash: hash,
			ID:           id,
		}); err != nil {
			logAndInternalError(w, "failed to update user password", "error", err)
			return
		}

		_ = h.eventService.LogUserEvent(r.Context(), model.EventLevelWarning, "User password reset",
			middleware.GetUserIDPtr(r), r.RemoteAddr, map[string]any{"user_id": id})
	}

	flashSuccess(w, r, h.renderer, redirectAdminUsers, "User updated.")
}

// Delete handles POST /admin/users/{id}/delete. Self-deletion, deleting
// the last admin, and deleting users with orders are all refused.
func (h *UsersHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		http.NotFound(w, r)
		return
	}

	user, ok := h.requireUser(w, r, id)
	if !ok {
		return
	}

	if id == middleware.GetUserID(r) {
		flashDanger(w, r, h.renderer, redirectAdminUsers, "You cannot delete your own account.")
		return
	}

	if user.Role == model.RoleAdmin {
		adminCount, err := h.queries.CountUsersByRole(r.Context(), model.RoleAdmin)
		if err != nil {
			logAndInternalError(w, "failed to count admins", "error", err)
			return
		}
		if adminCount <= 1 {
			flashDanger(w, r, h.renderer, redirectAdminUsers, "Cannot delete the last administrator.")
			return
		}
	}

	orderCount, err := h.queries.CountOrdersByUser(r.Context(), id)
	if err != nil {
		logAndInternalError(w, "failed to count user orders", "error", err)
		return
	}
	if orderCount > 0 {
		flashDanger(w, r, h.renderer, redirectAdminUsers, "Cannot delete a user with orders.")
		return
	}

	if err := h.queries.DeleteUser(r.Context(), id); err != nil {
		logAndInternalError(w, "failed to delete user", "error", err)
		return
	}

	slog.Info("user deleted", "user_id", id, "username", user.Username)
	_ = h.eventService.LogUserEvent(r.Context(), model.EventLevelWarning, "User deleted",
		middleware.GetUserIDPtr(r), r.RemoteAddr, map[string]any{"user_id": id, "username": user.Username})

	flashSuccess(w, r, h.renderer, redirectAdminUsers, "User deleted.")
}

// UserOrdersData holds data for the per-user orders template.
type UserOrdersData struct {
	User   store.User
	Orders []store.Order
}

// Orders handles GET /admin/users/{id}/orders.
func (h *UsersHandler) Orders(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		http.NotFound(w, r)
		return
	}

	user, ok := h.requireUser(w, r, id)
	if !ok {
		return
	}

	orders, err := h.queries.ListOrdersByUser(r.Context(), id)
	if err != nil {
		logAndInternalError(w, "failed to list user orders", "error", err)
		return
	}

	if err := h.renderer.Render(w, r, "admin/user_orders", render.TemplateData{
		Title: "User Orders",
		Data: UserOrdersData{
			User:   user,
			Orders: orders,
		},
	}); err != nil {
		logAndInternalError(w, "failed to render user orders", "error", err)
	}
}

func (h *UsersHandler) requireUser(w http.ResponseWriter, r *http.Request, id int64) (store.User, bool) {
	return requireEntityWithRedirect(w, r, h.renderer, redirectAdminUsers, "user", id,
		func(id int64) (store.User, error) {
			return h.queries.GetUserByID(r.Context(), id)
		})
}
