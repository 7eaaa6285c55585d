package handlers

import (
	"net/http"
	"strconv"
)

func (a *App) GenerationsList(w http.ResponseWriter, r *http.Request) {
	if a.History == nil {
		a.error(w, http.StatusServiceUnavailable, "unavailable", "generation history is not configured")
		return
	}
	limit := 20
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			a.error(w, http.StatusBadRequest, "bad_request", "limit must be a positive integer")
			return
		}
		limit = n
	}
	items, err := a.History.ListRecent(r.Context(), limit)
	if err != nil {
		a.Logger.Error().Err(err).Msg("handlers: list generations failed")
		a.error(w, http.StatusInternalServerError, "internal", "failed to load generations")
		return
	}
	a.json(w, http.StatusOK, map[string]any{"items": items})
}
