// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"database/sql"
)

const createProduct = `
INSERT INTO products (title, description, price, category, image_url, is_active)
VALUES (?, ?, ?, ?, ?, ?)
RETURNING id, title, description, price, category, image_url, is_active
`

// CreateProductParams holds parameters for CreateProduct.
type CreateProductParams struct {
	Title       string
	Description string
	Price       int64
	Category    string
	ImageURL    sql.NullString
	IsActive    bool
}

// CreateProduct inserts a new product and returns the created row.
func (q *Queries) CreateProduct(ctx context.Context, arg CreateProductParams) (Product, error) {
	row := q.db.QueryRowContext(ctx, createProduct,
		arg.Title, arg.Description, arg.Price, arg.Category, arg.ImageURL, arg.IsActive)
	var p Product
	err := row.Scan(&p.ID, &p.Title, &p.Description, &p.Price, &p.Category, &p.ImageURL, &p.IsActive)
	return p, err
}

const getProductByID = `
SELECT id, title, description, price, category, image_url, is_active FROM products WHERE id = ?
`

// GetProductByID returns the product with the given id, active or not.
func (q *Queries) GetProductByID(ctx context.Context, id int64) (Product, error) {
	row := q.db.QueryRowContext(ctx, getProductByID, id)
	var p Product
	err := row.Scan(&p.ID, &p.Title, &p.Description, &p.Price, &p.Category, &p.ImageURL, &p.IsActive)
	return p, err
}

const listNewestActiveProducts = `
SELECT id, title, description, price, category, image_url, is_active FROM products
WHERE is_active = 1
ORDER BY id DESC
LIMIT ?
`

// ListNewestActiveProducts returns the newest active products, for the home page.
func (q *Queries) ListNewestActiveProducts(ctx context.Context, limit int64) ([]Product, error) {
	rows, err := q.db.QueryContext(ctx, listNewestActiveProducts, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanProducts(rows)
}

const searchActiveProducts = `
SELECT id, title, description, price, category, image_url, is_active FROM products
WHERE is_active = 1
  AND (?1 = '' OR title LIKE '%' || ?1 || '%')
  AND (?2 = '' OR category = ?2)
ORDER BY id DESC
`

// SearchActiveProductsParams holds parameters for SearchActiveProducts.
// Empty Query and Category match all active products.
type SearchActiveProductsParams struct {
	Query    string
	Category string
}

// SearchActiveProducts returns active catalog products filtered by title
// substring and category, newest first.
func (q *Queries) SearchActiveProducts(ctx context.Context, arg SearchActiveProductsParams) ([]Product, error) {
	rows, err := q.db.QueryContext(ctx, searchActiveProducts, arg.Query, arg.Category)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanProducts(rows)
}

const listProducts = `
SELECT id, title, description, price, category, image_url, is_active FROM products
ORDER BY id DESC
LIMIT ? OFFSET ?
`

// ListProductsParams holds parameters for ListProducts.
type ListProductsParams struct {
	Limit  int64
	Offset int64
}

// ListProducts returns all products (including inactive), newest first, for the admin list.
func (q *Queries) ListProducts(ctx context.Context, arg ListProductsParams) ([]Product, error) {
	rows, err := q.db.QueryContext(ctx, listProducts, arg.Limit, arg.Offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanProducts(rows)
}

const countProducts = `
SELECT COUNT(*) FROM products
`

// CountProducts returns the total number of products.
func (q *Queries) CountProducts(ctx context.Context) (int64, error) {
	var count int64
	err := q.db.QueryRowContext(ctx, countProducts).Scan(&count)
	return count, err
}

const listCategories = `
SELECT DISTINCT category FROM products ORDER BY category
`

// ListCategories returns the distinct product categories for the catalog filter.
func (q *Queries) ListCategories(ctx context.Context) ([]string, error) {
	rows, err := q.db.QueryContext(ctx, listCategories)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var categories []string
	for rows.Next() {
		var c string
		if err := rows.Scan(&c); err != nil {
			return nil, err
		}
		categories = append(categories, c)
	}
	return categories, rows.Err()
}

const updateProduct = `
UPDATE products
SET title = ?, description = ?, price = ?, category = ?, image_url = ?, is_active = ?
WHERE id = ?
`

// UpdateProductParams holds parameters for UpdateProduct.
type UpdateProductParams struct {
	Title       string
	Description string
	Price       int64
	Category    string
	ImageURL    sql.NullString
	IsActive    bool
	ID          int64
}

// UpdateProduct updates all editable product fields.
func (q *Queries) UpdateProduct(ctx context.Context, arg UpdateProductParams) error {
	_, err := q.db.ExecContext(ctx, updateProduct,
		arg.Title, arg.Description, arg.Price, arg.Category, arg.ImageURL, arg.IsActive, arg.ID)
	return err
}

const deleteProduct = `
DELETE FROM products WHERE id = ?
`

// DeleteProduct removes a product. Order items keep their snapshots.
func (q *Queries) DeleteProduct(ctx context.Context, id int64) error {
	_, err := q.db.ExecContext(ctx, deleteProduct, id)
	return err
}

func scanProducts(rows *sql.Rows) ([]Product, error) {
	var products []Product
	for rows.Next() {
		var p Product
		if err := rows.Scan(&p.ID, &p.Title, &p.Description, &p.Price, &p.Category, &p.ImageURL, &p.IsActive); err != nil {
			return nil, err
		}
		products = append(products, p)
	}
	return products, rows.Err()
}
