package handlers

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
)

func (a *App) NotificationsList(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			a.error(w, http.StatusBadRequest, "bad_request", "limit must be a non-negative integer")
			return
		}
		limit = n
	}
	actor := a.actor(r)
	items, err := a.Notifier.Inbox(r.Context(), actor.ID, actor.Admin, limit)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	a.json(w, http.StatusOK, map[string]any{"items": toNotificationDTOs(items)})
}

func (a *App) NotificationRead(w http.ResponseWriter, r *http.Request) {
	actor := a.actor(r)
	if err := a.Notifier.MarkRead(r.Context(), chi.URLParam(r, "id"), actor.ID, actor.Admin); err != nil {
		a.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
