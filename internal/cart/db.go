// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package cart

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/olegiv/oshop-go/internal/store"
)

// dbAdd increments the quantity of an existing cart row or inserts a
// new one. The UNIQUE(user_id, product_id) constraint keeps one row per
// product per user.
func (s *Service) dbAdd(ctx context.Context, userID, productID, qty int64) error {
	existing, err := s.queries.GetCartItem(ctx, store.GetCartItemParams{
		UserID:    userID,
		ProductID: productID,
	})
	switch {
	case err == nil:
		err = s.queries.UpdateCartItemQty(ctx, store.UpdateCartItemQtyParams{
			Qty: existing.Qty + qty,
			ID:  existing.ID,
		})
		if err != nil {
			return fmt.Errorf("updating cart item: %w", err)
		}
	case errors.Is(err, sql.ErrNoRows):
		_, err = s.queries.CreateCartItem(ctx, store.CreateCartItemParams{
			UserID:    userID,
			ProductID: productID,
			Qty:       qty,
		})
		if err != nil {
			return fmt.Errorf("creating cart item: %w", err)
		}
	default:
		return fmt.Errorf("loading cart item: %w", err)
	}
	return nil
}
