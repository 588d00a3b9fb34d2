package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/astromusic/astromusic/internal/auth"
	"github.com/astromusic/astromusic/internal/handler/dto"
	"github.com/astromusic/astromusic/internal/service"
)

// AstrologyHandler serves stateless calculations.
type AstrologyHandler struct {
	astrology *service.AstrologyService
	logger    *slog.Logger
}

// NewAstrologyHandler creates a new AstrologyHandler.
func NewAstrologyHandler(astrology *service.AstrologyService, logger *slog.Logger) *AstrologyHandler {
	return &AstrologyHandler{astrology: astrology, logger: logger}
}

// BirthChart handles POST /api/v1/astrology/birth-chart.
func (h *AstrologyHandler) BirthChart(w http.ResponseWriter, r *http.Request) {
	var req dto.BirthChartRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	deriv, err := h.astrology.Calculate(r.Context(), req.ToInput())
	if err != nil {
		handleServiceError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.ToDerivationResponse(deriv))
}

// Transits handles GET /api/v1/astrology/transits.
func (h *AstrologyHandler) Transits(w http.ResponseWriter, r *http.Request) {
	transits, err := h.astrology.Transits(r.Context())
	if err != nil {
		handleServiceError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.TransitsResponse{Transits: transits})
}

// CosmicInfluence handles POST /api/v1/astrology/cosmic-influence.
func (h *AstrologyHandler) CosmicInfluence(w http.ResponseWriter, r *http.Request) {
	var req dto.CosmicInfluenceRequest
	if !decodeOptionalJSON(w, r, &req) {
		return
	}

	input := service.InfluenceInput{
		UserID: auth.UserIDFromContext(r.Context()),
		Date:   req.Date,
	}
	if req.BirthChart != nil {
		input.Chart = &service.InfluenceChart{
			Ascendant: req.BirthChart.Ascendant,
			MoonSign:  req.BirthChart.MoonSign,
		}
	}

	influence, err := h.astrology.Influence(r.Context(), input)
	if err != nil {
		handleServiceError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, influence)
}

// Zodiac handles GET /api/v1/astrology/zodiac/{sign}.
func (h *AstrologyHandler) Zodiac(w http.ResponseWriter, r *http.Request) {
	info, err := h.astrology.Zodiac(chi.URLParam(r, "sign"))
	if err != nil {
		handleServiceError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, info)
}
