package handlers

import (
	"encoding/json"
	"net/http"

	"headergen/internal/imagegen"
)

// Generation and crop endpoints. The service never fails with an error; every
// outcome, including remote rejections and timeouts, is delivered as a 200
// with the result envelope so callers switch on its status field. Only a
// malformed request body earns a 4xx.

func (a *App) ImagesSquare(w http.ResponseWriter, r *http.Request) {
	var req imagegen.SquareRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "invalid payload")
		return
	}
	if req.Prompt == "" {
		a.error(w, http.StatusBadRequest, "bad_request", "prompt required")
		return
	}
	res := a.Service.GenerateSquare(r.Context(), req)
	a.json(w, http.StatusOK, res)
}

func (a *App) ImagesWide(w http.ResponseWriter, r *http.Request) {
	var req imagegen.WideRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "invalid payload")
		return
	}
	if req.Prompt == "" {
		a.error(w, http.StatusBadRequest, "bad_request", "prompt required")
		return
	}
	res := a.Service.GenerateWide(r.Context(), req)
	a.json(w, http.StatusOK, res)
}

func (a *App) ImagesCrop(w http.ResponseWriter, r *http.Request) {
	var req imagegen.CropRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "invalid payload")
		return
	}
	out := a.Service.CropToRatio(r.Context(), req)
	a.json(w, http.StatusOK, out)
}
