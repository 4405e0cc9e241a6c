package handlers

import (
	"net/http"

	"headergen/internal/imagegen"
)

func (a *App) Styles(w http.ResponseWriter, r *http.Request) {
	req := imagegen.StyleRequest{
		ContentType: r.URL.Query().Get("content_type"),
		Mood:        r.URL.Query().Get("mood"),
	}
	a.json(w, http.StatusOK, imagegen.SuggestStyles(req))
}
