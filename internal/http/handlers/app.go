package handlers

import (
	"encoding/json"
	"net/http"

	"headergen/internal/history"
	"headergen/internal/imagegen"
	"headergen/internal/infra"
)

// App carries the dependencies shared by all HTTP handlers.
type App struct {
	Service *imagegen.Service
	History *history.Store
	Log     *infra.Logger
}

func NewApp(service *imagegen.Service, store *history.Store, log *infra.Logger) *App {
	return &App{Service: service, History: store, Log: log}
}

func (a *App) json(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func (a *App) error(w http.ResponseWriter, code int, errCode, message string) {
	a.json(w, code, map[string]string{"error": errCode, "message": message})
}
