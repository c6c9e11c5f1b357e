// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import "context"

const getCartItem = `
SELECT id, user_id, product_id, qty FROM cart_items
WHERE user_id = ? AND product_id = ?
`

// GetCartItemParams holds parameters for GetCartItem.
type GetCartItemParams struct {
	UserID    int64
	ProductID int64
}

// GetCartItem returns the cart row for a (user, product) pair.
func (q *Queries) GetCartItem(ctx context.Context, arg GetCartItemParams) (CartItem, error) {
	row := q.db.QueryRowContext(ctx, getCartItem, arg.UserID, arg.ProductID)
	var c CartItem
	err := row.Scan(&c.ID, &c.UserID, &c.ProductID, &c.Qty)
	return c, err
}

const createCartItem = `
INSERT INTO cart_items (user_id, product_id, qty)
VALUES (?, ?, ?)
RETURNING id, user_id, product_id, qty
`

// CreateCartItemParams holds parameters for CreateCartItem.
type CreateCartItemParams struct {
	UserID    int64
	ProductID int64
	Qty       int64
}

// CreateCartItem inserts a cart row. The (user, product) pair must not
// already exist; repeat adds go through UpdateCartItemQty instead.
func (q *Queries) CreateCartItem(ctx context.Context, arg CreateCartItemParams) (CartItem, error) {
	row := q.db.QueryRowContext(ctx, createCartItem, arg.UserID, arg.ProductID, arg.Qty)
	var c CartItem
	err := row.Scan(&c.ID, &c.UserID, &c.ProductID, &c.Qty)
	return c, err
}

const updateCartItemQty = `
UPDATE cart_items SET qty = ? WHERE id = ?
`

// UpdateCartItemQtyParams holds parameters for UpdateCartItemQty.
type UpdateCartItemQtyParams struct {
	Qty int64
	ID  int64
}

// UpdateCartItemQty sets the quantity of an existing cart row.
func (q *Queries) UpdateCartItemQty(ctx context.Context, arg UpdateCartItemQtyParams) error {
	_, err := q.db.ExecContext(ctx, updateCartItemQty, arg.Qty, arg.ID)
	return err
}

const deleteCartItem = `
DELETE FROM cart_items WHERE user_id = ? AND product_id = ?
`

// DeleteCartItemParams holds parameters for DeleteCartItem.
type DeleteCartItemParams struct {
	UserID    int64
	ProductID int64
}

// DeleteCartItem removes the cart row for a (user, product) pair.
// Deleting an absent row is a no-op.
func (q *Queries) DeleteCartItem(ctx context.Context, arg DeleteCartItemParams) error {
	_, err := q.db.ExecContext(ctx, deleteCartItem, arg.UserID, arg.ProductID)
	return err
}

const deleteCartItemsByUser = `
DELETE FROM cart_items WHERE user_id = ?
`

// DeleteCartItemsByUser removes all cart rows for a user.
func (q *Queries) DeleteCartItemsByUser(ctx context.Context, userID int64) error {
	_, err := q.db.ExecContext(ctx, deleteCartItemsByUser, userID)
	return err
}

const sumCartQtyByUser = `
SELECT COALESCE(SUM(qty), 0) FROM cart_items WHERE user_id = ?
`

// SumCartQtyByUser returns the total unit count in a user's cart, 0 when empty.
func (q *Queries) SumCartQtyByUser(ctx context.Context, userID int64) (int64, error) {
	var sum int64
	err := q.db.QueryRowContext(ctx, sumCartQtyByUser, userID).Scan(&sum)
	return sum, err
}

const listActiveCartItems = `
SELECT p.id, p.title, p.description, p.price, p.category, p.image_url, p.is_active, c.qty
FROM cart_items c
JOIN products p ON p.id = c.product_id
WHERE c.user_id = ? AND p.is_active = 1
ORDER BY c.id
`

// ListActiveCartItemsRow pairs a cart quantity with its live product.
type ListActiveCartItemsRow struct {
	Product Product
	Qty     int64
}

// ListActiveCartItems returns a user's cart rows joined to their products.
// Rows whose product is missing or inactive are excluded; the underlying
// cart rows are left untouched.
func (q *Queries) ListActiveCartItems(ctx context.Context, userID int64) ([]ListActiveCartItemsRow, error) {
	rows, err := q.db.QueryContext(ctx, listActiveCartItems, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []ListActiveCartItemsRow
	for rows.Next() {
		var r ListActiveCartItemsRow
		p := &r.Product
		if err := rows.Scan(&p.ID, &p.Title, &p.Description, &p.Price, &p.Category, &p.ImageURL, &p.IsActive, &r.Qty); err != nil {
			return nil, err
		}
		items = append(items, r)
	}
	return items, rows.Err()
}

const countCartItemsByUser = `
SELECT COUNT(*) FROM cart_items WHERE user_id = ?
`

// CountCartItemsByUser returns the number of cart rows (not units) for a user.
func (q *Queries) CountCartItemsByUser(ctx context.Context, userID int64) (int64, error) {
	var count int64
	err := q.db.QueryRowContext(ctx, countCartItemsByUser, userID).Scan(&count)
	return count, err
}
