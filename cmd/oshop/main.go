// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package main

import (
	"context"
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"

	"github.com/olegiv/oshop-go/internal/cart"
	"github.com/olegiv/oshop-go/internal/config"
	"github.com/olegiv/oshop-go/internal/handler"
	"github.com/olegiv/oshop-go/internal/logging"
	"github.com/olegiv/oshop-go/internal/middleware"
	"github.com/olegiv/oshop-go/internal/order"
	"github.com/olegiv/oshop-go/internal/render"
	"github.com/olegiv/oshop-go/internal/service"
	"github.com/olegiv/oshop-go/internal/session"
	"github.com/olegiv/oshop-go/internal/store"
	"github.com/olegiv/oshop-go/web"
)

// Version information - injected at build time via ldflags
var (
	appVersion   = "dev"
	appGitCommit = "unknown"
	appBuildTime = "unknown"
)

// eventLogRetention is how long event log entries are kept.
const eventLogRetention = 90 * 24 * time.Hour

func main() {
	showVersion := flag.Bool("version", false, "Show version information")
	flag.BoolVar(showVersion, "v", false, "Show version information (shorthand)")
	showHelp := flag.Bool("help", false, "Show help information")
	flag.BoolVar(showHelp, "h", false, "Show help information (shorthand)")

	flag.Usage = func() {
		_, _ = fmt.Fprintf(os.Stderr, "oShop - Online Store\n\n")
		_, _ = fmt.Fprintf(os.Stderr, "Usage: %s [options]\n\n", os.Args[0])
		_, _ = fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		_, _ = fmt.Fprintf(os.Stderr, "\nEnvironment Variables:\n")
		_, _ = fmt.Fprintf(os.Stderr, "  OSHOP_SESSION_SECRET   Session encryption key (required, min 32 bytes)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  OSHOP_DB_PATH          SQLite database path (default: ./data/oshop.db)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  OSHOP_SERVER_PORT      Server port (default: 8080)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  OSHOP_ENV              Environment: development|production (default: development)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  OSHOP_DO_SEED          Seed demo users and products on startup (default: false)\n")
	}

	flag.Parse()

	if *showHelp {
		flag.Usage()
		os.Exit(0)
	}

	if *showVersion {
		_, _ = fmt.Printf("oshop %s (commit: %s, built: %s)\n", appVersion, appGitCommit, appBuildTime)
		os.Exit(0)
	}

	if err := run(); err != nil {
		slog.Error("application error", "error", err)
		os.Exit(1)
	}
}

func run() error {
	// Load .env if present (development)
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	logLevel := slog.LevelInfo
	switch cfg.LogLevel {
	case "debug":
		logLevel = slog.LevelDebug
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	}

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel,
	}))
	slog.SetDefault(logger)

	if err := os.MkdirAll(filepath.Dir(cfg.DBPath), 0755); err != nil {
		return fmt.Errorf("creating data directory: %w", err)
	}

	slog.Info("initializing database", "path", cfg.DBPath)
	db, err := store.NewDB(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("initializing database: %w", err)
	}
	defer func(db *sql.DB) {
		if err := db.Close(); err != nil {
			slog.Error("error closing database connection", "error", err)
		}
	}(db)

	slog.Info("running database migrations")
	if err := store.Migrate(db); err != nil {
		return fmt.Errorf("running migrations: %w", err)
	}
	slog.Info("database ready")

	// Upgrade logger so WARN and ERROR records also land in the event log table
	textHandler := slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: logLevel})
	logger = slog.New(logging.NewEventLogHandler(textHandler, db))
	slog.SetDefault(logger)
	slog.Info("event log integration enabled", "min_level", "warn")

	ctx := context.Background()

	if cfg.DoSeed {
		if err := store.Seed(ctx, db); err != nil {
			return fmt.Errorf("seeding database: %w", err)
		}
	}

	eventService := service.NewEventService(db)
	if err := eventService.DeleteOldEvents(ctx, eventLogRetention); err != nil {
		slog.Warn("failed to prune old events", "error", err)
	}

	sessionManager := session.New(db, cfg.IsDevelopment())
	slog.Info("session manager initialized")

	cartService := cart.NewService(db, sessionManager)
	orderService := order.NewService(db)

	templatesFS, err := fs.Sub(web.Templates, "templates")
	if err != nil {
		return fmt.Errorf("getting templates fs: %w", err)
	}

	renderer, err := render.New(render.Config{
		TemplatesFS:    templatesFS,
		SessionManager: sessionManager,
		IsDev:          cfg.IsDevelopment(),
		CurrentUser:    middleware.GetUser,
		CartCount: func(r *http.Request) int64 {
			count, err := cartService.Count(r.Context(), middleware.GetUserID(r))
			if err != nil {
				slog.Error("failed to count cart items", "error", err)
				return 0
			}
			return count
		},
	})
	if err != nil {
		return fmt.Errorf("initializing renderer: %w", err)
	}
	slog.Info("template renderer initialized")

	loginProtection := middleware.NewLoginProtection(middleware.DefaultLoginProtectionConfig())
	slog.Info("login protection initialized",
		"ip_rate_limit", "0.5 req/s",
		"max_failed_attempts", 5,
		"lockout_duration", "15m",
	)

	shopHandler := handler.NewShopHandler(db, renderer, sessionManager, cartService, orderService)
	authHandler := handler.NewAuthHandler(db, renderer, sessionManager, cartService, loginProtection)
	adminHandler := handler.NewAdminHandler(db, renderer, sessionManager)
	productsHandler := handler.NewProductsHandler(db, renderer, sessionManager)
	ordersHandler := handler.NewOrdersHandler(db, renderer, sessionManager, orderService)
	usersHandler := handler.NewUsersHandler(db, renderer, sessionManager)
	eventsHandler := handler.NewEventsHandler(db, renderer, sessionManager)

	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Logger)
	r.Use(chimw.Recoverer)
	r.Use(chimw.Compress(5))
	r.Use(chimw.GetHead)

	securityConfig := middleware.DefaultSecurityHeadersConfig(cfg.IsDevelopment())
	r.Use(middleware.SecurityHeaders(securityConfig))

	r.Use(sessionManager.LoadAndSave)

	csrfConfig := middleware.DefaultCSRFConfig([]byte(cfg.SessionSecret), cfg.IsDevelopment())
	r.Use(middleware.CSRF(csrfConfig))
	slog.Info("CSRF protection initialized", "secure", !cfg.IsDevelopment())

	// Static assets
	staticFS, err := fs.Sub(web.Static, "static")
	if err != nil {
		return fmt.Errorf("getting static fs: %w", err)
	}
	r.Handle("/static/*", http.StripPrefix("/static/", http.FileServer(http.FS(staticFS))))

	// Public storefront
	r.Group(func(r chi.Router) {
		r.Use(middleware.OptionalLoadUser(sessionManager, db))

		r.Get("/", shopHandler.Home)
		r.Get("/about", shopHandler.About)
		r.Get("/contacts", shopHandler.Contacts)
		r.Get("/catalog", shopHandler.Catalog)
		r.Get("/product/{id}", shopHandler.ProductDetail)

		r.Get("/cart", shopHandler.CartView)
		r.Post("/cart/add/{id}", shopHandler.CartAdd)
		r.Post("/cart/remove/{id}", shopHandler.CartRemove)
		r.Post("/cart/clear", shopHandler.CartClear)

		r.Get("/login", authHandler.LoginForm)
		r.With(loginProtection.Middleware()).Post("/login", authHandler.Login)
		r.Get("/register", authHandler.RegisterForm)
		r.Post("/register", authHandler.Register)
		r.Post("/logout", authHandler.Logout)
	})

	// Checkout and account require a signed-in user
	r.Group(func(r chi.Router) {
		r.Use(middleware.Auth(sessionManager))
		r.Use(middleware.LoadUser(sessionManager, db))

		r.Get("/checkout", shopHandler.CheckoutForm)
		r.Post("/checkout", shopHandler.CheckoutSubmit)
		r.Get("/account", shopHandler.Account)
	})

	// Admin back office
	r.Route("/admin", func(r chi.Router) {
		r.Use(middleware.Auth(sessionManager))
		r.Use(middleware.LoadUser(sessionManager, db))
		r.Use(middleware.RequireAdmin(sessionManager))

		r.Get("/", adminHandler.Dashboard)

		r.Get("/products", productsHandler.List)
		r.Get("/products/new", productsHandler.NewForm)
		r.Post("/products/new", productsHandler.Create)
		r.Get("/products/{id}/edit", productsHandler.EditForm)
		r.Post("/products/{id}/edit", productsHandler.Update)
		r.Post("/products/{id}/delete", productsHandler.Delete)

		r.Get("/orders", ordersHandler.List)
		r.Get("/orders/{id}", ordersHandler.Detail)

		r.Get("/users", usersHandler.List)
		r.Get("/users/{id}/edit", usersHandler.EditForm)
		r.Post("/users/{id}/edit", usersHandler.Update)
		r.Post("/users/{id}/delete", usersHandler.Delete)
		r.Get("/users/{id}/orders", usersHandler.Orders)

		r.Get("/events", eventsHandler.List)
	})

	srv := &http.Server{
		Addr:              cfg.ServerAddr(),
		Handler:           r,
		ReadTimeout:       15 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
		MaxHeaderBytes:    1 << 20,
	}

	go func() {
		slog.Info("starting server", "addr", cfg.ServerAddr(), "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server error", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}

	slog.Info("server stopped")
	return nil
}
