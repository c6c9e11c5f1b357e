// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"database/sql"
	"time"
)

// User is a shop account. Role is one of model.RoleUser or model.RoleAdmin.
type User struct {
	ID           int64
	Username     string
	PasswordHash string
	Role         string
	CreatedAt    time.Time
}

// Product is a catalog entry. Price is in cents.
// Inactive products stay in the table but are hidden from the catalog,
// the cart, and checkout.
type Product struct {
	ID          int64
	Title       string
	Description string
	Price       int64
	Category    string
	ImageURL    sql.NullString
	IsActive    bool
}

// CartItem is one persisted cart row for an authenticated user.
// The (UserID, ProductID) pair is unique.
type CartItem struct {
	ID        int64
	UserID    int64
	ProductID int64
	Qty       int64
}

// Order is a placed order. Total is denormalized from its items.
type Order struct {
	ID        int64
	UserID    int64
	CreatedAt time.Time
	Status    string
	Total     int64
}

// OrderItem is a point-in-time snapshot of a purchased product.
type OrderItem struct {
	ID        int64
	OrderID   int64
	ProductID int64
	Title     string
	Price     int64
	Qty       int64
}

// Event is a system event log entry.
type Event struct {
	ID        int64
	Level     string
	Category  string
	Message   string
	UserID    sql.NullInt64
	IPAddress string
	Metadata  string // JSON string
	CreatedAt time.Time
}
