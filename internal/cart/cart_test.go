// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package cart

import (
	"context"
	"testing"
	"time"

	"github.com/alexedwards/scs/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/olegiv/oshop-go/internal/model"
	"github.com/olegiv/oshop-go/internal/store"
	"github.com/olegiv/oshop-go/internal/testutil"
)

// newTestService returns a cart service backed by a temp database and
// an in-memory session manager, plus a context with a loaded session.
func newTestService(t *testing.T) (*Service, *store.Queries, context.Context) {
	t.Helper()

	db, cleanup := testutil.TestDB(t)
	t.Cleanup(cleanup)

	sessions := scs.New()
	svc := NewService(db, sessions)

	ctx, err := sessions.Load(context.Background(), "")
	require.NoError(t, err)

	return svc, store.New(db), ctx
}

func createTestUser(t *testing.T, queries *store.Queries, username string) store.User {
	t.Helper()
	user, err := queries.CreateUser(context.Background(), store.CreateUserParams{
		Username:     username,
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

func deactivateProduct(t *testing.T, queries *store.Queries, p store.Product) {
	t.Helper()
	err := queries.UpdateProduct(context.Background(), store.UpdateProductParams{
		Title:       p.Title,
		Description: p.Description,
		Price:       p.Price,
		Category:    p.Category,
		ImageURL:    p.ImageURL,
		IsActive:    false,
		ID:          p.ID,
	})
	require.NoError(t, err)
}

func TestAdd_GuestIncrementsQuantity(t *testing.T) {
	svc, queries, ctx := newTestService(t)
	p := createTestProduct(t, queries, "Thermo Mug", 890)

	require.NoError(t, svc.Add(ctx, 0, p.ID, 1))
	require.NoError(t, svc.Add(ctx, 0, p.ID, 1))

	count, err := svc.Count(ctx, 0)
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)

	lines, err := svc.Items(ctx, 0)
	require.NoError(t, err)
	require.Len(t, lines, 1)
	assert.Equal(t, int64(2), lines[0].Qty)
	assert.Equal(t, int64(1780), lines[0].LineTotal())
	assert.Equal(t, int64(1780), Total(lines))
}

func TestAdd_UserIncrementsQuantity(t *testing.T) {
	svc, queries, ctx := newTestService(t)
	user := createTestUser(t, queries, "alice")
	p := createTestProduct(t, queries, "Thermo Mug", 890)

	require.NoError(t, svc.Add(ctx, user.ID, p.ID, 1))
	require.NoError(t, svc.Add(ctx, user.ID, p.ID, 2))

	count, err := svc.Count(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(3), count)

	// One row per product, not one row per add.
	rows, err := queries.CountCartItemsByUser(context.Background(), user.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), rows)
}

func TestAdd_UnknownProduct(t *testing.T) {
	svc, _, ctx := newTestService(t)

	err := svc.Add(ctx, 0, 9999, 1)
	assert.ErrorIs(t, err, ErrProductUnavailable)
}

func TestAdd_InactiveProduct(t *testing.T) {
	svc, queries, ctx := newTestService(t)
	p := createTestProduct(t, queries, "Fitness Band", 1990)
	deactivateProduct(t, queries, p)

	err := svc.Add(ctx, 0, p.ID, 1)
	assert.ErrorIs(t, err, ErrProductUnavailable)
}

func TestRemove_Idempotent(t *testing.T) {
	svc, queries, ctx := newTestService(t)
	user := createTestUser(t, queries, "alice")
	p := createTestProduct(t, queries, "City Backpack", 2490)

	for _, userID := range []int64{0, user.ID} {
		require.NoError(t, svc.Add(ctx, userID, p.ID, 1))
		require.NoError(t, svc.Remove(ctx, userID, p.ID))
		// Removing again is a no-op, not an error.
		require.NoError(t, svc.Remove(ctx, userID, p.ID))

		count, err := svc.Count(ctx, userID)
		require.NoError(t, err)
		assert.Equal(t, int64(0), count)
	}
}

func TestClear(t *testing.T) {
	svc, queries, ctx := newTestService(t)
	user := createTestUser(t, queries, "alice")
	a := createTestProduct(t, queries, "A", 100)
	b := createTestProduct(t, queries, "B", 200)

	for _, userID := range []int64{0, user.ID} {
		require.NoError(t, svc.Add(ctx, userID, a.ID, 1))
		require.NoError(t, svc.Add(ctx, userID, b.ID, 2))
		require.NoError(t, svc.Clear(ctx, userID))

		lines, err := svc.Items(ctx, userID)
		require.NoError(t, err)
		assert.Empty(t, lines)
	}
}

func TestItems_SkipsDeactivatedProducts(t *testing.T) {
	svc, queries, ctx := newTestService(t)
	user := createTestUser(t, queries, "alice")
	kept := createTestProduct(t, queries, "Kept", 100)
	dropped := createTestProduct(t, queries, "Dropped", 200)

	require.NoError(t, svc.Add(ctx, 0, kept.ID, 1))
	require.NoError(t, svc.Add(ctx, 0, dropped.ID, 1))
	require.NoError(t, svc.Add(ctx, user.ID, kept.ID, 1))
	require.NoError(t, svc.Add(ctx, user.ID, dropped.ID, 1))

	deactivateProduct(t, queries, dropped)

	for _, userID := range []int64{0, user.ID} {
		lines, err := svc.Items(ctx, userID)
		require.NoError(t, err)
		require.Len(t, lines, 1)
		assert.Equal(t, kept.ID, lines[0].Product.ID)
	}
}

func TestItems_SkipsDeletedProducts(t *testing.T) {
	svc, queries, ctx := newTestService(t)
	user := createTestUser(t, queries, "alice")
	kept := createTestProduct(t, queries, "Kept", 100)
	deleted := createTestProduct(t, queries, "Deleted", 200)

	require.NoError(t, svc.Add(ctx, 0, deleted.ID, 1))
	require.NoError(t, svc.Add(ctx, user.ID, kept.ID, 1))
	require.NoError(t, svc.Add(ctx, user.ID, deleted.ID, 1))

	require.NoError(t, queries.DeleteProduct(context.Background(), deleted.ID))

	// Guest cart: dangling entry is skipped at resolve.
	lines, err := svc.Items(ctx, 0)
	require.NoError(t, err)
	assert.Empty(t, lines)

	// User cart: dangling row is skipped by the join.
	lines, err = svc.Items(ctx, user.ID)
	require.NoError(t, err)
	require.Len(t, lines, 1)
	assert.Equal(t, kept.ID, lines[0].Product.ID)
}

func TestMergeGuestCart_SumsQuantities(t *testing.T) {
	svc, queries, ctx := newTestService(t)
	user := createTestUser(t, queries, "alice")
	a := createTestProduct(t, queries, "A", 100)
	b := createTestProduct(t, queries, "B", 200)

	// Persistent cart: {A:2, B:1}. Guest cart: {B:3}.
	require.NoError(t, svc.Add(ctx, user.ID, a.ID, 2))
	require.NoError(t, svc.Add(ctx, user.ID, b.ID, 1))
	require.NoError(t, svc.Add(ctx, 0, b.ID, 3))

	require.NoError(t, svc.MergeGuestCart(ctx, user.ID))

	lines, err := svc.Items(ctx, user.ID)
	require.NoError(t, err)
	require.Len(t, lines, 2)

	byID := map[int64]int64{}
	for _, l := range lines {
		byID[l.Product.ID] = l.Qty
	}
	assert.Equal(t, int64(2), byID[a.ID])
	assert.Equal(t, int64(4), byID[b.ID])

	// Guest cart is emptied after the merge.
	guestCount, err := svc.Count(ctx, 0)
	require.NoError(t, err)
	assert.Equal(t, int64(0), guestCount)
}

func TestMergeGuestCart_EmptyGuestCart(t *testing.T) {
	svc, queries, ctx := newTestService(t)
	user := createTestUser(t, queries, "alice")

	require.NoError(t, svc.MergeGuestCart(ctx, user.ID))

	count, err := svc.Count(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(0), count)
}

func TestMergeGuestCart_SkipsNonPositiveQuantities(t *testing.T) {
	svc, queries, ctx := newTestService(t)
	user := createTestUser(t, queries, "alice")
	a := createTestProduct(t, queries, "A", 100)
	b := createTestProduct(t, queries, "B", 200)

	// Corrupted guest cart written straight into the session.
	svc.sessions.Put(ctx, SessionKeyCart, map[int64]int64{
		a.ID: 2,
		b.ID: -1,
	})

	require.NoError(t, svc.MergeGuestCart(ctx, user.ID))

	lines, err := svc.Items(ctx, user.ID)
	require.NoError(t, err)
	require.Len(t, lines, 1)
	assert.Equal(t, a.ID, lines[0].Product.ID)
	assert.Equal(t, int64(2), lines[0].Qty)
}

func TestMergeGuestCart_DanglingProductKeptUntilResolve(t *testing.T) {
	svc, queries, ctx := newTestService(t)
	user := createTestUser(t, queries, "alice")
	p := createTestProduct(t, queries, "Gone", 100)

	require.NoError(t, svc.Add(ctx, 0, p.ID, 1))
	require.NoError(t, queries.DeleteProduct(context.Background(), p.ID))

	// The merge inserts the row regardless; the join filters it later.
	require.NoError(t, svc.MergeGuestCart(ctx, user.ID))

	rows, err := queries.CountCartItemsByUser(context.Background(), user.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), rows)

	lines, err := svc.Items(ctx, user.ID)
	require.NoError(t, err)
	assert.Empty(t, lines)
}

func TestGuestCart_SurvivesSessionRoundTrip(t *testing.T) {
	svc, queries, ctx := newTestService(t)
	p := createTestProduct(t, queries, "Thermo Mug", 890)

	require.NoError(t, svc.Add(ctx, 0, p.ID, 2))

	// Committing gob-encodes the session data, so the cart map type
	// must be registered for the round trip to succeed.
	token, _, err := svc.sessions.Commit(ctx)
	require.NoError(t, err)

	reloaded, err := svc.sessions.Load(context.Background(), token)
	require.NoError(t, err)

	count, err := svc.Count(reloaded, 0)
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)
}

func TestCount_EmptyCart(t *testing.T) {
	svc, queries, ctx := newTestService(t)
	user := createTestUser(t, queries, "alice")

	for _, userID := range []int64{0, user.ID} {
		count, err := svc.Count(ctx, userID)
		require.NoError(t, err)
		assert.Equal(t, int64(0), count)
	}
}
