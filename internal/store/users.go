// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"time"
)

const createUser = `
INSERT INTO users (username, password_hash, role, created_at)
VALUES (?, ?, ?, ?)
RETURNING id, username, password_hash, role, created_at
`

// CreateUserParams holds parameters for CreateUser.
type CreateUserParams struct {
	Username     string
	PasswordHash string
	Role         string
	CreatedAt    time.Time
}

// CreateUser inserts a new user and returns the created row.
func (q *Queries) CreateUser(ctx context.Context, arg CreateUserParams) (User, error) {
	row := q.db.QueryRowContext(ctx, createUser, arg.Username, arg.PasswordHash, arg.Role, arg.CreatedAt)
	var u User
	err := row.Scan(&u.ID, &u.Username, &u.PasswordHash, &u.Role, &u.CreatedAt)
	return u, err
}

const getUserByID = `
SELECT id, username, password_hash, role, created_at FROM users WHERE id = ?
`

// GetUserByID returns the user with the given id.
func (q *Queries) GetUserByID(ctx context.Context, id int64) (User, error) {
	row := q.db.QueryRowContext(ctx, getUserByID, id)
	var u User
	err := row.Scan(&u.ID, &u.Username, &u.PasswordHash, &u.Role, &u.CreatedAt)
	return u, err
}

const getUserByUsername = `
SELECT id, username, password_hash, role, created_at FROM users WHERE username = ?
`

// GetUserByUsername returns the user with the given username.
func (q *Queries) GetUserByUsername(ctx context.Context, username string) (User, error) {
	row := q.db.QueryRowContext(ctx, getUserByUsername, username)
	var u User
	err := row.Scan(&u.ID, &u.Username, &u.PasswordHash, &u.Role, &u.CreatedAt)
	return u, err
}

const searchUsers = `
SELECT id, username, password_hash, role, created_at FROM users
WHERE (?1 = '' OR username LIKE '%' || ?1 || '%')
  AND (?2 = '' OR role = ?2)
ORDER BY id DESC
LIMIT ?3 OFFSET ?4
`

// SearchUsersParams holds parameters for SearchUsers. Empty Query and Role
// match all users.
type SearchUsersParams struct {
	Query  string
	Role   string
	Limit  int64
	Offset int64
}

// SearchUsers returns users filtered by username substring and role, newest first.
func (q *Queries) SearchUsers(ctx context.Context, arg SearchUsersParams) ([]User, error) {
	rows, err := q.db.QueryContext(ctx, searchUsers, arg.Query, arg.Role, arg.Limit, arg.Offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []User
	for rows.Next() {
		var u User
		if err := rows.Scan(&u.ID, &u.Username, &u.PasswordHash, &u.Role, &u.CreatedAt); err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

const countSearchUsers = `
SELECT COUNT(*) FROM users
WHERE (?1 = '' OR username LIKE '%' || ?1 || '%')
  AND (?2 = '' OR role = ?2)
`

// CountSearchUsersParams holds parameters for CountSearchUsers.
type CountSearchUsersParams struct {
	Query string
	Role  string
}

// CountSearchUsers returns the number of users matching the filter.
func (q *Queries) CountSearchUsers(ctx context.Context, arg CountSearchUsersParams) (int64, error) {
	var count int64
	err := q.db.QueryRowContext(ctx, countSearchUsers, arg.Query, arg.Role).Scan(&count)
	return count, err
}

const countUsers = `
SELECT COUNT(*) FROM users
`

// CountUsers returns the total number of users.
func (q *Queries) CountUsers(ctx context.Context) (int64, error) {
	var count int64
	err := q.db.QueryRowContext(ctx, countUsers).Scan(&count)
	return count, err
}

const countUsersByRole = `
SELECT COUNT(*) FROM users WHERE role = ?
`

// CountUsersByRole returns the number of users with the given role.
func (q *Queries) CountUsersByRole(ctx context.Context, role string) (int64, error) {
	var count int64
	err := q.db.QueryRowContext(ctx, countUsersByRole, role).Scan(&count)
	return count, err
}

const updateUserRole = `
UPDATE users SET role = ? WHERE id = ?
`

// UpdateUserRoleParams holds parameters for UpdateUserRole.
type UpdateUserRoleParams struct {
	Role string
	ID   int64
}

// UpdateUserRole changes a user's role.
func (q *Queries) UpdateUserRole(ctx context.Context, arg UpdateUserRoleParams) error {
	_, err := q.db.ExecContext(ctx, updateUserRole, arg.Role, arg.ID)
	return err
}

const updateUserPassword = `
UPDATE users SET password_hash = ? WHERE id = ?
`

// UpdateUserPasswordParams holds parameters for UpdateUserPassword.
type UpdateUserPasswordParams struct {
	PasswordHash string
	ID           int64
}

// UpdateUserPassword changes a user's password hash.
func (q *Queries) UpdateUserPassword(ctx context.Context, arg UpdateUserPasswordParams) error {
	_, err := q.db.ExecContext(ctx, updateUserPassword, arg.PasswordHash, arg.ID)
	return err
}

const deleteUser = `
DELETE FROM users WHERE id = ?
`

// DeleteUser removes a user.
func (q *Queries) DeleteUser(ctx context.Context, id int64) error {
	_, err := q.db.ExecContext(ctx, deleteUser, id)
	return err
}
