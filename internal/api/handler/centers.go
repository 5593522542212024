package handler

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/themuku/RailwayVision/internal/api/response"
	"github.com/themuku/RailwayVision/internal/lookup"
)

// CentersHandler handles population center directory endpoints.
type CentersHandler struct {
	directory *lookup.Service
	logger    zerolog.Logger
}

// NewCentersHandler creates a new CentersHandler.
func NewCentersHandler(directory *lookup.Service, logger zerolog.Logger) *CentersHandler {
	return &CentersHandler{
		directory: directory,
		logger:    logger,
	}
}

// ListCenters handles GET /v1/centers - the full directory, or a substring
// search when ?q= is present.
func (h *CentersHandler) ListCenters(w http.ResponseWriter, r *http.Request) {
	var (
		centers []lookup.PopulationCenter
		err     error
	)
	if q := r.URL.Query().Get("q"); q != "" {
		centers, err = h.directory.Search(r.Context(), q)
	} else {
		centers, err = h.directory.All(r.Context())
	}
	if err != nil {
		h.logger.Error().Err(err).Msg("center listing failed")
		response.BadGateway(w, r, "population center directory is unavailable")
		return
	}

	w.Header().Set("Cache-Control", "public, max-age=300")
	response.JSON(w, r, http.StatusOK, map[string]interface{}{
		"centers": toCandidates(centers),
	})
}

// GetCenter handles GET /v1/centers/{centerId} - a single center by ID.
func (h *CentersHandler) GetCenter(w http.ResponseWriter, r *http.Request) {
	id := lookup.CenterID(chi.URLParam(r, "centerId"))

	center, err := h.directory.ByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, lookup.ErrCenterNotFound) {
			response.NotFound(w, r, "population center not found")
			return
		}
		h.logger.Error().Err(err).Str("center_id", id.String()).Msg("center lookup failed")
		response.BadGateway(w, r, "population center directory is unavailable")
		return
	}

	candidates := toCandidates([]lookup.PopulationCenter{*center})
	response.JSON(w, r, http.StatusOK, candidates[0])
}
