package http

import (
	"net/http"

	"github.com/tuanvumaihuynh/product-discount/internal/apperr"
	"github.com/tuanvumaihuynh/product-discount/internal/storage/db"
)

type healthHandler struct {
	checker db.HealthChecker
}

func newHealthHandler(checker db.HealthChecker) *healthHandler {
	return &healthHandler{checker: checker}
}

type healthResponse struct {
	Status string `json:"status"`
}

func (h *healthHandler) Health(w http.ResponseWriter, r *http.Request) error {
	if ok, err := h.checker.IsHealthy(r.Context()); err != nil || !ok {
		return apperr.DatabaseUnavailableErr.WrapParent(err)
	}

	return writeJSON(w, http.StatusOK, healthResponse{Status: "ok"})
}
