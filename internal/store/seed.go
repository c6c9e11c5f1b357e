// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/olegiv/oshop-go/internal/auth"
	"github.com/olegiv/oshop-go/internal/model"
)

// Default demo credentials
const (
	DefaultAdminUsername = "admin"
	DefaultAdminPassword = "admin123"
	DefaultUserUsername  = "user"
	DefaultUserPassword  = "user123"
)

// Seed creates initial data in the database: a default admin account,
// a regular demo account, and a handful of demo products.
func Seed(ctx context.Context, db *sql.DB) error {
	queries := New(db)

	// Check if admin user already exists
	_, err := queries.GetUserByUsername(ctx, DefaultAdminUsername)
	if err == nil {
		slog.Info("admin user already exists, skipping seed")
		return nil
	}
	if err != sql.ErrNoRows {
		return fmt.Errorf("checking for admin user: %w", err)
	}

	now := time.Now()

	adminHash, err := auth.HashPassword(DefaultAdminPassword)
	if err != nil {
		return fmt.Errorf("hashing admin password: %w", err)
	}
	admin, err := queries.CreateUser(ctx, CreateUserParams{
		Username:     DefaultAdminUsername,
		PasswordHash: adminHash,
		Role:         model.RoleAdmin,
		CreatedAt:    now,
	})
	if err != nil {
		return fmt.Errorf("creating admin user: %w", err)
	}
	slog.Info("created default admin user",
		"id", admin.ID,
		"username", admin.Username,
		"password", DefaultAdminPassword,
	)

	userHash, err := auth.HashPassword(DefaultUserPassword)
	if err != nil {
		return fmt.Errorf("hashing user password: %w", err)
	}
	demo, err := queries.CreateUser(ctx, CreateUserParams{
		Username:     DefaultUserUsername,
		PasswordHash: userHash,
		Role:         model.RoleUser,
		CreatedAt:    now,
	})
	if err != nil {
		return fmt.Errorf("creating demo user: %w", err)
	}
	slog.Info("created demo user", "id", demo.ID, "username", demo.Username)

	products := []CreateProductParams{
		{
			Title:       "Wireless Headphones",
			Description: "Over-ear wireless headphones with **active noise cancellation** and 30 hours of battery life.",
			Price:       3990,
			Category:    "Electronics",
			IsActive:    true,
		},
		{
			Title:       "City Backpack",
			Description: "Water-resistant 20L backpack with a padded laptop compartment.",
			Price:       2490,
			Category:    "Accessories",
			IsActive:    true,
		},
		{
			Title:       "Thermo Mug",
			Description: "Double-wall steel mug that keeps drinks hot for 6 hours.",
			Price:       890,
			Category:    "Home",
			IsActive:    true,
		},
		{
			Title:       "Fitness Band",
			Description: "Activity tracker with heart rate monitoring and sleep analysis.",
			Price:       1990,
			Category:    "Electronics",
			IsActive:    true,
		},
	}
	for _, p := range products {
		if _, err := queries.CreateProduct(ctx, p); err != nil {
			return fmt.Errorf("creating product %q: %w", p.Title, err)
		}
	}
	slog.Info("created demo products", "count", len(products))

	return nil
}
