// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package order turns resolved carts into immutable orders. Order items
// snapshot the product title and price at purchase time, so later
// catalog edits never rewrite order history.
package order

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/olegiv/oshop-go/internal/cart"
	"github.com/olegiv/oshop-go/internal/model"
	"github.com/olegiv/oshop-go/internal/store"
)

// ErrEmptyCart is returned by Checkout when there is nothing to buy.
var ErrEmptyCart = errors.New("cart is empty")

// Service provides order placement and lookup.
type Service struct {
	db      *sql.DB
	queries *store.Queries
}

// NewService creates an order service.
func NewService(db *sql.DB) *Service {
	return &Service{db: db, queries: store.New(db)}
}

// Checkout records an order for the given resolved cart lines in a
// single transaction: the order row and one snapshot item per line all
// commit together or not at all.
func (s *Service) Checkout(ctx context.Context, userID int64, lines []cart.Line) (store.Order, error) {
	if len(lines) == 0 {
		return store.Order{}, ErrEmptyCart
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return store.Order{}, fmt.Errorf("beginning checkout: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	qtx := s.queries.WithTx(tx)
	ord, err := qtx.CreateOrder(ctx, store.CreateOrderParams{
		UserID:    userID,
		CreatedAt: time.Now(),
		Status:    model.OrderStatusAccepted,
		Total:     cart.Total(lines),
	})
	if err != nil {
		return store.Order{}, fmt.Errorf("creating order: %w", err)
	}

	for _, line := range lines {
		err := qtx.CreateOrderItem(ctx, store.CreateOrderItemParams{
			OrderID:   ord.ID,
			ProductID: line.Product.ID,
			Title:     line.Product.Title,
			Price:     line.Product.Price,
			Qty:       line.Qty,
		})
		if err != nil {
			return store.Order{}, fmt.Errorf("creating order item: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return store.Order{}, fmt.Errorf("committing checkout: %w", err)
	}
	return ord, nil
}

// WithItems pairs an order with its snapshot items.
type WithItems struct {
	Order store.Order
	Items []store.OrderItem
}

// ListByUser returns the user's orders, newest first, with items.
func (s *Service) ListByUser(ctx context.Context, userID int64) ([]WithItems, error) {
	orders, err := s.queries.ListOrdersByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("listing orders: %w", err)
	}
	return s.attachItems(ctx, orders)
}

// Get returns one order with its items.
func (s *Service) Get(ctx context.Context, id int64) (WithItems, error) {
	ord, err := s.queries.GetOrderByID(ctx, id)
	if err != nil {
		return WithItems{}, err
	}
	items, err := s.queries.ListOrderItems(ctx, ord.ID)
	if err != nil {
		return WithItems{}, fmt.Errorf("listing order items: %w", err)
	}
	return WithItems{Order: ord, Items: items}, nil
}

func (s *Service) attachItems(ctx context.Context, orders []store.Order) ([]WithItems, error) {
	out := make([]WithItems, 0, len(orders))
	for _, ord := range orders {
		items, err := s.queries.ListOrderItems(ctx, ord.ID)
		if err != nil {
			return nil, fmt.Errorf("listing items for order %d: %w", ord.ID, err)
		}
		out = append(out, WithItems{Order: ord, Items: items})
	}
	return out, nil
}
