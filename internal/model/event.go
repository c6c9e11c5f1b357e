// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package model

// Event levels.
const (
	EventLevelInfo    = "info"
	EventLevelWarning = "warning"
	EventLevelError   = "error"
)

// Event categories.
const (
	EventCategoryAuth    = "auth"
	EventCategoryUser    = "user"
	EventCategoryProduct = "product"
	EventCategoryOrder   = "order"
	EventCategorySystem  = "system"
)

// Flash message severities. The value is stored in the session next to
// the message text and mapped to an alert style by the templates.
const (
	FlashSuccess = "success"
	FlashWarning = "warning"
	FlashDanger  = "danger"
	FlashInfo    = "info"
)
