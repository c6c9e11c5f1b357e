// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package model

// Order statuses. New orders placed through checkout start in
// OrderStatusAccepted; OrderStatusCreated marks orders recorded
// before acceptance, such as imported or seeded data.
const (
	OrderStatusCreated  = "created"
	OrderStatusAccepted = "accepted"
)
