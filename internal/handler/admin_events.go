// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"database/sql"
	"net/http"

	"github.com/alexedwards/scs/v2"

	"github.com/olegiv/oshop-go/internal/render"
	"github.com/olegiv/oshop-go/internal/store"
)

// EventsPerPage is the number of events per admin list page.
const EventsPerPage = 50

const redirectAdminEvents = "/admin/events"

// EventsHandler handles the admin event log.
type EventsHandler struct {
	queries        *store.Queries
	renderer       *render.Renderer
	sessionManager *scs.SessionManager
}

// NewEventsHandler creates a new EventsHandler.
func NewEventsHandler(db *sql.DB, renderer *render.Renderer, sm *scs.SessionManager) *EventsHandler {
	return &EventsHandler{
		queries:        store.New(db),
		renderer:       renderer,
		sessionManager: sm,
	}
}

// EventsListData holds data for the events list template.
type EventsListData struct {
	Events      []store.Event
	TotalEvents int64
	Pagination  AdminPagination
}

// List handles GET /admin/events.
func (h *EventsHandler) List(w http.ResponseWriter, r *http.Request) {
	page := ParsePageParam(r)

	totalEvents, err := h.queries.CountEvents(r.Context())
	if err != nil {
		logAndInternalError(w, "failed to count events", "error", err)
		return
	}

	page, _ = NormalizePagination(page, int(totalEvents), EventsPerPage)
	offset := int64((page - 1) * EventsPerPage)

	events, err := h.queries.ListEvents(r.Context(), store.ListEventsParams{
		Limit:  EventsPerPage,
		Offset: offset,
	})
	if err != nil {
		logAndInternalError(w, "failed to list events", "error", err)
		return
	}

	if err := h.renderer.Render(w, r, "admin/events", render.TemplateData{
		Title: "Event Log",
		Data: EventsListData{
			Events:      events,
			TotalEvents: totalEvents,
			Pagination:  BuildAdminPagination(page, int(totalEvents), EventsPerPage, redirectAdminEvents, r.URL.Query()),
		},
	}); err != nil {
		logAndInternalError(w, "failed to render events list", "error", err)
	}
}
