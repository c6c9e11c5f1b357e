// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package order

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/olegiv/oshop-go/internal/cart"
	"github.com/olegiv/oshop-go/internal/model"
	"github.com/olegiv/oshop-go/internal/store"
	"github.com/olegiv/oshop-go/internal/testutil"
)

func newTestService(t *testing.T) (*Service, *store.Queries) {
	t.Helper()
	db, cleanup := testutil.TestDB(t)
	t.Cleanup(cleanup)
	return NewService(db), store.New(db)
}

func createTestUser(t *testing.T, queries *store.Queries) store.User {
	t.Helper()
	user, err := queries.CreateUser(context.Background(), store.CreateUserParams{
		Username:     "alice",
		PasswordHash: "x",
		Role:         model.RoleUser,
		CreatedAt:    time.Now(),
	})
	require.NoError(t, err)
	return user
}

func createTestProduct(t *testing.T, queries *store.Queries, title string, price int64) store.Product {
	t.Helper()
	product, err := queries.CreateProduct(context.Background(), store.CreateProductParams{
		Title:       title,
		Description: "test product",
		Price:       price,
		Category:    "Test",
		IsActive:    true,
	})
	require.NoError(t, err)
	return product
}

func TestCheckout(t *testing.T) {
	svc, queries := newTestService(t)
	ctx := context.Background()
	user := createTestUser(t, queries)
	mug := createTestProduct(t, queries, "Thermo Mug", 890)
	band := createTestProduct(t, queries, "Fitness Band", 1990)

	lines := []cart.Line{
		{Product: mug, Qty: 2},
		{Product: band, Qty: 1},
	}

	ord, err := svc.Checkout(ctx, user.ID, lines)
	require.NoError(t, err)
	assert.Equal(t, model.OrderStatusAccepted, ord.Status)
	assert.Equal(t, int64(890*2+1990), ord.Total)

	got, err := svc.Get(ctx, ord.ID)
	require.NoError(t, err)
	require.Len(t, got.Items, 2)
	assert.Equal(t, "Thermo Mug", got.Items[0].Title)
	assert.Equal(t, int64(890), got.Items[0].Price)
	assert.Equal(t, int64(2), got.Items[0].Qty)
}

func TestCheckout_EmptyCart(t *testing.T) {
	svc, queries := newTestService(t)
	user := createTestUser(t, queries)

	_, err := svc.Checkout(context.Background(), user.ID, nil)
	assert.ErrorIs(t, err, ErrEmptyCart)

	count, err := queries.CountOrders(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(0), count)
}

func TestCheckout_SnapshotSurvivesProductChanges(t *testing.T) {
	svc, queries := newTestService(t)
	ctx := context.Background()
	user := createTestUser(t, queries)
	p := createTestProduct(t, queries, "Original Title", 1000)

	ord, err := svc.Checkout(ctx, user.ID, []cart.Line{{Product: p, Qty: 1}})
	require.NoError(t, err)

	// Rename and reprice the product after the sale.
	err = queries.UpdateProduct(ctx, store.UpdateProductParams{
		Title:       "New Title",
		Description: p.Description,
		Price:       9999,
		Category:    p.Category,
		ImageURL:    p.ImageURL,
		IsActive:    true,
		ID:          p.ID,
	})
	require.NoError(t, err)

	got, err := svc.Get(ctx, ord.ID)
	require.NoError(t, err)
	require.Len(t, got.Items, 1)
	assert.Equal(t, "Original Title", got.Items[0].Title)
	assert.Equal(t, int64(1000), got.Items[0].Price)
	assert.Equal(t, int64(1000), got.Order.Total)
}

func TestCheckout_AtomicOnCancelledContext(t *testing.T) {
	svc, queries := newTestService(t)
	user := createTestUser(t, queries)
	p := createTestProduct(t, queries, "A", 100)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := svc.Checkout(ctx, user.ID, []cart.Line{{Product: p, Qty: 1}})
	require.Error(t, err)

	// No half-written order remains.
	count, err := queries.CountOrders(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(0), count)
}

func TestListByUser_NewestFirst(t *testing.T) {
	svc, queries := newTestService(t)
	ctx := context.Background()
	user := createTestUser(t, queries)
	p := createTestProduct(t, queries, "A", 100)

	first, err := svc.Checkout(ctx, user.ID, []cart.Line{{Product: p, Qty: 1}})
	require.NoError(t, err)
	second, err := svc.Checkout(ctx, user.ID, []cart.Line{{Product: p, Qty: 2}})
	require.NoError(t, err)

	orders, err := svc.ListByUser(ctx, user.ID)
	require.NoError(t, err)
	require.Len(t, orders, 2)
	assert.Equal(t, second.ID, orders[0].Order.ID)
	assert.Equal(t, first.ID, orders[1].Order.ID)
	require.Len(t, orders[0].Items, 1)
}

func TestGet_NotFound(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.Get(context.Background(), 12345)
	assert.ErrorIs(t, err, sql.ErrNoRows)
}
