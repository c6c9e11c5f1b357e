// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package cart implements the shopping cart. Guest carts live in the
// session as a product→quantity map; signed-in carts are persisted in
// the cart_items table. The Service dispatches on the user ID (0 means
// guest) so handlers never care which backing store is in play.
package cart

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/alexedwards/scs/v2"

	"github.com/olegiv/oshop-go/internal/store"
)

// ErrProductUnavailable is returned when adding a product that does not
// exist or is no longer active.
var ErrProductUnavailable = errors.New("product unavailable")

// Line is one resolved cart position: an active product and its quantity.
type Line struct {
	Product store.Product
	Qty     int64
}

// LineTotal returns the price of this position in cents.
func (l Line) LineTotal() int64 {
	return l.Product.Price * l.Qty
}

// Total sums the line totals of a resolved cart.
func Total(lines []Line) int64 {
	var total int64
	for _, l := range lines {
		total += l.LineTotal()
	}
	return total
}

// Service provides cart operations for both guests and signed-in users.
type Service struct {
	db       *sql.DB
	queries  *store.Queries
	sessions *scs.SessionManager
}

// NewService creates a cart service.
func NewService(db *sql.DB, sessions *scs.SessionManager) *Service {
	return &Service{
		db:       db,
		queries:  store.New(db),
		sessions: sessions,
	}
}

// Add puts qty units of a product into the cart, incrementing the
// quantity if the product is already there. Inactive and unknown
// products are rejected with ErrProductUnavailable.
func (s *Service) Add(ctx context.Context, userID, productID, qty int64) error {
	if qty <= 0 {
		qty = 1
	}

	product, err := s.queries.GetProductByID(ctx, productID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrProductUnavailable
		}
		return fmt.Errorf("loading product: %w", err)
	}
	if !product.IsActive {
		return ErrProductUnavailable
	}

	if userID == 0 {
		s.sessionAdd(ctx, productID, qty)
		return nil
	}
	return s.dbAdd(ctx, userID, productID, qty)
}

// Remove deletes a product from the cart. Removing a product that is
// not in the cart is a no-op.
func (s *Service) Remove(ctx context.Context, userID, productID int64) error {
	if userID == 0 {
		s.sessionRemove(ctx, productID)
		return nil
	}
	return s.queries.DeleteCartItem(ctx, store.DeleteCartItemParams{
		UserID:    userID,
		ProductID: productID,
	})
}

// Clear empties the cart.
func (s *Service) Clear(ctx context.Context, userID int64) error {
	if userID == 0 {
		s.sessions.Remove(ctx, SessionKeyCart)
		return nil
	}
	return s.queries.DeleteCartItemsByUser(ctx, userID)
}

// Count returns the total number of units in the cart, for the badge
// in the site header.
func (s *Service) Count(ctx context.Context, userID int64) (int64, error) {
	if userID == 0 {
		var count int64
		for _, qty := range s.sessionCart(ctx) {
			count += qty
		}
		return count, nil
	}
	return s.queries.SumCartQtyByUser(ctx, userID)
}

// Items resolves the cart against the catalog. Products that have been
// deleted or deactivated since they were added are silently skipped; a
// stale cart never blocks the cart page or checkout.
func (s *Service) Items(ctx context.Context, userID int64) ([]Line, error) {
	if userID == 0 {
		return s.sessionItems(ctx)
	}

	rows, err := s.queries.ListActiveCartItems(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("listing cart items: %w", err)
	}
	lines := make([]Line, 0, len(rows))
	for _, row := range rows {
		lines = append(lines, Line{Product: row.Product, Qty: row.Qty})
	}
	return lines, nil
}

// MergeGuestCart folds the session cart into the signed-in user's
// persistent cart, summing quantities for products present in both.
// The whole merge is one transaction; entries with a non-positive
// quantity are skipped. The session cart is emptied afterwards.
func (s *Service) MergeGuestCart(ctx context.Context, userID int64) error {
	guest := s.sessionCart(ctx)
	if len(guest) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning merge: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	qtx := s.queries.WithTx(tx)
	for _, productID := range sortedKeys(guest) {
		qty := guest[productID]
		if qty <= 0 {
			continue
		}

		existing, err := qtx.GetCartItem(ctx, store.GetCartItemParams{
			UserID:    userID,
			ProductID: productID,
		})
		switch {
		case err == nil:
			err = qtx.UpdateCartItemQty(ctx, store.UpdateCartItemQtyParams{
				Qty: existing.Qty + qty,
				ID:  existing.ID,
			})
			if err != nil {
				return fmt.Errorf("merging product %d: %w", productID, err)
			}
		case errors.Is(err, sql.ErrNoRows):
			_, err = qtx.CreateCartItem(ctx, store.CreateCartItemParams{
				UserID:    userID,
				ProductID: productID,
				Qty:       qty,
			})
			if err != nil {
				return fmt.Errorf("merging product %d: %w", productID, err)
			}
		default:
			return fmt.Errorf("merging product %d: %w", productID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing merge: %w", err)
	}

	s.sessions.Remove(ctx, SessionKeyCart)
	return nil
}
