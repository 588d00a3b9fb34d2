package handler

import (
	"log/slog"
	"net/http"

	"github.com/astromusic/astromusic/internal/auth"
	"github.com/astromusic/astromusic/internal/handler/dto"
	"github.com/astromusic/astromusic/internal/service"
)

// ChartHandler serves the caller's birth chart record.
type ChartHandler struct {
	charts *service.ChartService
	logger *slog.Logger
}

// NewChartHandler creates a new ChartHandler.
func NewChartHandler(charts *service.ChartService, logger *slog.Logger) *ChartHandler {
	return &ChartHandler{charts: charts, logger: logger}
}

// Upsert handles POST /api/v1/birth-charts. It creates the chart or
// replaces the existing one.
func (h *ChartHandler) Upsert(w http.ResponseWriter, r *http.Request) {
	var req dto.BirthChartRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	userID := auth.UserIDFromContext(r.Context())
	rec, err := h.charts.Upsert(r.Context(), userID, req.ToInput())
	if err != nil {
		handleServiceError(w, h.logger, err)
		return
	}

	h.logger.Info("birth_chart_saved",
		slog.String("user_id", userID),
		slog.String("lagna", rec.Ascendant.String()),
		slog.Bool("degraded", rec.Degraded),
	)
	writeJSON(w, http.StatusCreated, dto.ToBirthChartResponse(rec))
}

// Get handles GET /api/v1/birth-charts/me.
func (h *ChartHandler) Get(w http.ResponseWriter, r *http.Request) {
	rec, err := h.charts.GetForAccount(r.Context(), auth.UserIDFromContext(r.Context()))
	if err != nil {
		handleServiceError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.ToBirthChartResponse(rec))
}

// Data handles GET /api/v1/birth-charts/me/data.
func (h *ChartHandler) Data(w http.ResponseWriter, r *http.Request) {
	data, err := h.charts.Data(r.Context(), auth.UserIDFromContext(r.Context()))
	if err != nil {
		handleServiceError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, data)
}

// Delete handles DELETE /api/v1/birth-charts/me.
func (h *ChartHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.charts.Delete(r.Context(), auth.UserIDFromContext(r.Context())); err != nil {
		handleServiceError(w, h.logger, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
