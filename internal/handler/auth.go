// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/alexedwards/scs/v2"

	"github.com/olegiv/oshop-go/internal/auth"
	"github.com/olegiv/oshop-go/internal/cart"
	"github.com/olegiv/oshop-go/internal/middleware"
	"github.com/olegiv/oshop-go/internal/model"
	"github.com/olegiv/oshop-go/internal/render"
	"github.com/olegiv/oshop-go/internal/service"
	"github.com/olegiv/oshop-go/internal/store"
)

const (
	// MinUsernameLength is the minimum allowed username length.
	MinUsernameLength = 3
	// MinPasswordLength is the minimum allowed password length.
	MinPasswordLength = 6
)

// AuthHandler handles login, registration, and logout.
type AuthHandler struct {
	queries         *store.Queries
	renderer        *render.Renderer
	sessionManager  *scs.SessionManager
	cartService     *cart.Service
	eventService    *service.EventService
	loginProtection *middleware.LoginProtection
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(db *sql.DB, renderer *render.Renderer, sm *scs.SessionManager, cartService *cart.Service, lp *middleware.LoginProtection) *AuthHandler {
	return &AuthHandler{
		queries:         store.New(db),
		renderer:        renderer,
		sessionManager:  sm,
		cartService:     cartService,
		eventService:    service.NewEventService(db),
		loginProtection: lp,
	}
}

// LoginFormData holds form data for the login and register pages.
type LoginFormData struct {
	Username string
	Next     string
}

// LoginForm renders the login page.
func (h *AuthHandler) LoginForm(w http.ResponseWriter, r *http.Request) {
	if middleware.GetUserID(r) != 0 {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}

	if err := h.renderer.Render(w, r, "auth/login", render.TemplateData{
		Title: "Sign In",
		Data:  LoginFormData{Next: r.URL.Query().Get("next")},
	}); err != nil {
		logAndInternalError(w, "failed to render login", "error", err)
	}
}

// Login authenticates a user and starts a session. A guest cart carried
// in the session is merged into the user's persistent cart.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	if !parseFormOrRedirect(w, r, h.renderer, "/login") {
		return
	}

	username := strings.TrimSpace(r.PostFormValue("username"))
	password := r.PostFormValue("password")
	next := r.PostFormValue("next")

	if username == "" || password == "" {
		flashDanger(w, r, h.renderer, loginURL(next), "Username and password are required.")
		return
	}

	if locked, remaining := h.loginProtection.IsAccountLocked(username); locked {
		slog.Warn("login attempt on locked account", "username", username, "ip", r.RemoteAddr)
		flashDanger(w, r, h.renderer, loginURL(next),
			fmt.Sprintf("Account temporarily locked. Try again in %s.", formatDuration(remaining)))
		return
	}

	user, err := h.queries.GetUserByUsername(r.Context(), username)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			// Record the attempt even for unknown usernames so the
			// response does not reveal which accounts exist.
			h.loginProtection.RecordFailedAttempt(username)
			flashDanger(w, r, h.renderer, loginURL(next), "Invalid username or password.")
			return
		}
		logAndInternalError(w, "failed to look up user", "error", err)
		return
	}

	valid, err := auth.CheckPassword(password, user.PasswordHash)
	if err != nil || !valid {
		locked, lockDuration := h.loginProtection.RecordFailedAttempt(username)

		_ = h.eventService.LogAuthEvent(r.Context(), model.EventLevelWarning, "Failed login attempt",
			&user.ID, r.RemoteAddr, map[string]any{"username": username})

		if locked {
			flashDanger(w, r, h.renderer, loginURL(next),
				fmt.Sprintf("Too many failed attempts. Account locked for %s.", formatDuration(lockDuration)))
			return
		}
		if remaining := h.loginProtection.GetRemainingAttempts(username); remaining <= 3 {
			flashWarning(w, r, h.renderer, loginURL(next),
				fmt.Sprintf("Invalid username or password. %d attempts remaining.", remaining))
			return
		}
		flashDanger(w, r, h.renderer, loginURL(next), "Invalid username or password.")
		return
	}

	h.loginProtection.RecordSuccessfulLogin(username)

	// A fresh token on privilege change prevents session fixation.
	if err := h.sessionManager.RenewToken(r.Context()); err != nil {
		logAndInternalError(w, "failed to renew session token", "error", err)
		return
	}
	h.sessionManager.Put(r.Context(), middleware.SessionKeyUserID, user.ID)

	if err := h.cartService.MergeGuestCart(r.Context(), user.ID); err != nil {
		slog.Error("failed to merge guest cart", "error", err, "user_id", user.ID)
	}

	slog.Info("user logged in", "user_id", user.ID, "username", user.Username)
	_ = h.eventService.LogAuthEvent(r.Context(), model.EventLevelInfo, "User logged in",
		&user.ID, r.RemoteAddr, map[string]any{"username": user.Username})

	h.renderer.SetFlash(r, fmt.Sprintf("Welcome back, %s!", user.Username), model.FlashSuccess)
	http.Redirect(w, r, postLoginURL(next, user.Role), http.StatusSeeOther)
}

// RegisterForm renders the registration page.
func (h *AuthHandler) RegisterForm(w http.ResponseWriter, r *http.Request) {
	if middleware.GetUserID(r) != 0 {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}

	if err := h.renderer.Render(w, r, "auth/register", render.TemplateData{
		Title: "Register",
	}); err != nil {
		logAndInternalError(w, "failed to render register", "error", err)
	}
}

// Register creates a user account, signs it in, and merges any guest cart.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	if !parseFormOrRedirect(w, r, h.renderer, "/register") {
		return
	}

	username := strings.TrimSpace(r.PostFormValue("username"))
	password := r.PostFormValue("password")

	if len(username) < MinUsernameLength {
		flashDanger(w, r, h.renderer, "/register",
			fmt.Sprintf("Username must be at least %d characters.", MinUsernameLength))
		return
	}
	if len(password) < MinPasswordLength {
		flashDanger(w, r, h.renderer, "/register",
			fmt.Sprintf("Password must be at least %d characters.", MinPasswordLength))
		return
	}

	if _, err := h.queries.GetUserByUsername(r.Context(), username); err == nil {
		flashDanger(w, r, h.renderer, "/register", "This username is already taken.")
		return
	} else if !errors.Is(err, sql.ErrNoRows) {
		logAndInternalError(w, "failed to look up user", "error", err)
		return
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		logAndInternalError(w, "failed to hash password", "error", err)
		return
	}

	user, err := h.queries.CreateUser(r.Context(), store.CreateUserParams{
		Username:     username,
		PasswordHash: hash,
		Role:         model.RoleUser,
		CreatedAt:    time.Now(),
	})
	if err != nil {
		logAndInternalError(w, "failed to create user", "error", err)
		return
	}

	if err := h.sessionManager.RenewToken(r.Context()); err != nil {
		logAndInternalError(w, "failed to renew session token", "error", err)
		return
	}
	h.sessionManager.Put(r.Context(), middleware.SessionKeyUserID, user.ID)

	if err := h.cartService.MergeGuestCart(r.Context(), user.ID); err != nil {
		slog.Error("failed to merge guest cart", "error", err, "user_id", user.ID)
	}

	slog.Info("user registered", "user_id", user.ID, "username", user.Username)
	_ = h.eventService.LogAuthEvent(r.Context(), model.EventLevelInfo, "User registered",
		&user.ID, r.RemoteAddr, map[string]any{"username": user.Username})

	flashSuccess(w, r, h.renderer, "/", fmt.Sprintf("Welcome, %s! Your account is ready.", user.Username))
}

// Logout destroys the session.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if user := middleware.GetUser(r); user != nil {
		slog.Info("user logged out", "user_id", user.ID, "username", user.Username)
		_ = h.eventService.LogAuthEvent(r.Context(), model.EventLevelInfo, "User logged out",
			&user.ID, r.RemoteAddr, nil)
	}

	if err := h.sessionManager.Destroy(r.Context()); err != nil {
		logAndInternalError(w, "failed to destroy session", "error", err)
		return
	}

	flashInfo(w, r, h.renderer, "/", "You have been signed out.")
}

// loginURL returns the login page URL, preserving a pending redirect target.
func loginURL(next string) string {
	if next == "" {
		return "/login"
	}
	return "/login?next=" + url.QueryEscape(next)
}

// postLoginURL picks the destination after a successful login. Only
// local paths are honored to keep redirects on this site.
func postLoginURL(next, role string) string {
	if next != "" && strings.HasPrefix(next, "/") && !strings.HasPrefix(next, "//") {
		return next
	}
	if role == model.RoleAdmin {
		return "/admin"
	}
	return "/"
}

// formatDuration renders a duration in rough human units for flash messages.
func formatDuration(d time.Duration) string {
	switch {
	case d < time.Minute:
		return fmt.Sprintf("%d seconds", int(d.Seconds()))
	case d < time.Hour:
		return fmt.Sprintf("%d minutes", int(d.Minutes()))
	default:
		return fmt.Sprintf("%d hours", int(d.Hours()))
	}
}
