// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package model defines domain constants shared across the application:
// user roles, order statuses, event levels, and flash severities.
package model

// User roles.
const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// ValidRoles contains all valid user roles.
var ValidRoles = []string{RoleUser, RoleAdmin}

// IsValidRole reports whether role is one of the known roles.
func IsValidRole(role string) bool {
	for _, r := range ValidRoles {
		if r == role {
			return true
		}
	}
	return false
}
