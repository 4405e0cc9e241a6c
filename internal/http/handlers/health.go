package handlers

import "net/http"

// Health answers liveness probes and reports whether task history is wired.
func (a *App) Health(w http.ResponseWriter, r *http.Request) {
	historyState := "disabled"
	if a.History != nil {
		historyState = "enabled"
	}
	a.json(w, http.StatusOK, map[string]string{
		"status":  "ok",
		"history": historyState,
	})
}
