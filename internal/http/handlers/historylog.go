package handlers

import (
	"net/http"
	"strconv"

	"headergen/internal/history"
)

func (a *App) HistoryRecent(w http.ResponseWriter, r *http.Request) {
	if a.History == nil {
		a.error(w, http.StatusServiceUnavailable, "history_disabled", "no database configured")
		return
	}
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	tasks, err := a.History.Recent(r.Context(), limit)
	if err != nil {
		a.Log.Error().Err(err).Msg("handlers: history query failed")
		a.error(w, http.StatusInternalServerError, "internal", "failed to load history")
		return
	}
	if tasks == nil {
		tasks = []history.Task{}
	}
	a.json(w, http.StatusOK, tasks)
}
