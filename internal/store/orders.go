// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"database/sql"
	"time"
)

const createOrder = `
INSERT INTO orders (user_id, created_at, status, total)
VALUES (?, ?, ?, ?)
RETURNING id, user_id, created_at, status, total
`

// CreateOrderParams holds parameters for CreateOrder.
type CreateOrderParams struct {
	UserID    int64
	CreatedAt time.Time
	Status    string
	Total     int64
}

// CreateOrder inserts an order and returns the created row, including its
// generated id for subsequent order item inserts.
func (q *Queries) CreateOrder(ctx context.Context, arg CreateOrderParams) (Order, error) {
	row := q.db.QueryRowContext(ctx, createOrder, arg.UserID, arg.CreatedAt, arg.Status, arg.Total)
	var o Order
	err := row.Scan(&o.ID, &o.UserID, &o.CreatedAt, &o.Status, &o.Total)
	return o, err
}

const createOrderItem = `
INSERT INTO order_items (order_id, product_id, title, price, qty)
VALUES (?, ?, ?, ?, ?)
`

// CreateOrderItemParams holds parameters for CreateOrderItem.
type CreateOrderItemParams struct {
	OrderID   int64
	ProductID int64
	Title     string
	Price     int64
	Qty       int64
}

// CreateOrderItem inserts one snapshot line for an order.
func (q *Queries) CreateOrderItem(ctx context.Context, arg CreateOrderItemParams) error {
	_, err := q.db.ExecContext(ctx, createOrderItem,
		arg.OrderID, arg.ProductID, arg.Title, arg.Price, arg.Qty)
	return err
}

const getOrderByID = `
SELECT id, user_id, created_at, status, total FROM orders WHERE id = ?
`

// GetOrderByID returns the order with the given id.
func (q *Queries) GetOrderByID(ctx context.Context, id int64) (Order, error) {
	row := q.db.QueryRowContext(ctx, getOrderByID, id)
	var o Order
	err := row.Scan(&o.ID, &o.UserID, &o.CreatedAt, &o.Status, &o.Total)
	return o, err
}

const listOrdersByUser = `
SELECT id, user_id, created_at, status, total FROM orders
WHERE user_id = ?
ORDER BY id DESC
`

// ListOrdersByUser returns a user's orders, newest first.
func (q *Queries) ListOrdersByUser(ctx context.Context, userID int64) ([]Order, error) {
	rows, err := q.db.QueryContext(ctx, listOrdersByUser, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanOrders(rows)
}

const listOrders = `
SELECT id, user_id, created_at, status, total FROM orders
ORDER BY id DESC
LIMIT ? OFFSET ?
`

// ListOrdersParams holds parameters for ListOrders.
type ListOrdersParams struct {
	Limit  int64
	Offset int64
}

// ListOrders returns all orders, newest first, for the admin list.
func (q *Queries) ListOrders(ctx context.Context, arg ListOrdersParams) ([]Order, error) {
	rows, err := q.db.QueryContext(ctx, listOrders, arg.Limit, arg.Offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanOrders(rows)
}

const countOrders = `
SELECT COUNT(*) FROM orders
`

// CountOrders returns the total number of orders.
func (q *Queries) CountOrders(ctx context.Context) (int64, error) {
	var count int64
	err := q.db.QueryRowContext(ctx, countOrders).Scan(&count)
	return count, err
}

const countOrdersByUser = `
SELECT COUNT(*) FROM orders WHERE user_id = ?
`

// CountOrdersByUser returns the number of orders a user has placed.
func (q *Queries) CountOrdersByUser(ctx context.Context, userID int64) (int64, error) {
	var count int64
	err := q.db.QueryRowContext(ctx, countOrdersByUser, userID).Scan(&count)
	return count, err
}

const sumOrderTotals = `
SELECT COALESCE(SUM(total), 0) FROM orders
`

// SumOrderTotals returns the grand total of all orders, for the dashboard.
func (q *Queries) SumOrderTotals(ctx context.Context) (int64, error) {
	var sum int64
	err := q.db.QueryRowContext(ctx, sumOrderTotals).Scan(&sum)
	return sum, err
}

const listOrderItems = `
SELECT id, order_id, product_id, title, price, qty FROM order_items
WHERE order_id = ?
ORDER BY id
`

// ListOrderItems returns the snapshot lines of an order.
func (q *Queries) ListOrderItems(ctx context.Context, orderID int64) ([]OrderItem, error) {
	rows, err := q.db.QueryContext(ctx, listOrderItems, orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []OrderItem
	for rows.Next() {
		var it OrderItem
		if err := rows.Scan(&it.ID, &it.OrderID, &it.ProductID, &it.Title, &it.Price, &it.Qty); err != nil {
			return nil, err
		}
		items = append(items, it)
	}
	return items, rows.Err()
}

func scanOrders(rows *sql.Rows) ([]Order, error) {
	var orders []Order
	for rows.Next() {
		var o Order
		if err := rows.Scan(&o.ID, &o.UserID, &o.CreatedAt, &o.Status, &o.Total); err != nil {
			return nil, err
		}
		orders = append(orders, o)
	}
	return orders, rows.Err()
}
