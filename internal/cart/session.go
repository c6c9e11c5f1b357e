// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package cart

import (
	"context"
	"database/sql"
	"encoding/gob"
	"errors"
	"fmt"
	"sort"
)

// SessionKeyCart is the session key holding the guest cart map.
const SessionKeyCart = "cart"

func init() {
	// The guest cart map must be gob-registered so scs can encode it,
	// regardless of which session store backs the manager.
	gob.Register(map[int64]int64{})
}

// sessionCart returns the guest cart from the session, never nil.
func (s *Service) sessionCart(ctx context.Context) map[int64]int64 {
	m, ok := s.sessions.Get(ctx, SessionKeyCart).(map[int64]int64)
	if !ok {
		return map[int64]int64{}
	}
	return m
}

func (s *Service) putSessionCart(ctx context.Context, m map[int64]int64) {
	if len(m) == 0 {
		s.sessions.Remove(ctx, SessionKeyCart)
		return
	}
	s.sessions.Put(ctx, SessionKeyCart, m)
}

func (s *Service) sessionAdd(ctx context.Context, productID, qty int64) {
	m := s.sessionCart(ctx)
	m[productID] += qty
	s.putSessionCart(ctx, m)
}

func (s *Service) sessionRemove(ctx context.Context, productID int64) {
	m := s.sessionCart(ctx)
	delete(m, productID)
	s.putSessionCart(ctx, m)
}

// sessionItems resolves the guest cart against the catalog, in stable
// product ID order.
func (s *Service) sessionItems(ctx context.Context) ([]Line, error) {
	m := s.sessionCart(ctx)
	lines := make([]Line, 0, len(m))
	for _, productID := range sortedKeys(m) {
		qty := m[productID]
		if qty <= 0 {
			continue
		}
		product, err := s.queries.GetProductByID(ctx, productID)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				continue
			}
			return nil, fmt.Errorf("loading product %d: %w", productID, err)
		}
		if !product.IsActive {
			continue
		}
		lines = append(lines, Line{Product: product, Qty: qty})
	}
	return lines, nil
}

func sortedKeys(m map[int64]int64) []int64 {
	keys := make([]int64, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	return keys
}
