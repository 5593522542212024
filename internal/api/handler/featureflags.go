package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/themuku/RailwayVision/internal/api/models"
	"github.com/themuku/RailwayVision/internal/api/response"
	"github.com/themuku/RailwayVision/internal/featureflags"
)

// FeatureFlagsHandler handles feature flag endpoints.
type FeatureFlagsHandler struct {
	service *featureflags.Service
}

// NewFeatureFlagsHandler creates a new FeatureFlagsHandler.
func NewFeatureFlagsHandler(service *featureflags.Service) *FeatureFlagsHandler {
	return &FeatureFlagsHandler{service: service}
}

// ListFeatureFlags handles GET /v1/flags - list all feature flags.
func (h *FeatureFlagsHandler) ListFeatureFlags(w http.ResponseWriter, r *http.Request) {
	flags, err := h.service.All(r.Context())
	if err != nil {
		response.InternalError(w, r, "could not list feature flags")
		return
	}

	list := make([]*featureflags.Flag, 0, len(flags))
	for _, f := range flags {
		list = append(list, f)
	}
	response.JSON(w, r, http.StatusOK, map[string]interface{}{
		"flags": list,
	})
}

// SetFeatureFlag handles PUT /v1/flags/{key} - set a flag value.
func (h *FeatureFlagsHandler) SetFeatureFlag(w http.ResponseWriter, r *http.Request) {
	key := chi.URLParam(r, "key")

	var input models.FlagUpdate
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		response.BadRequest(w, r, "invalid JSON body", nil)
		return
	}
	if input.Value == nil {
		response.BadRequest(w, r, "flag value is required", []models.FieldError{
			{Field: "value", Message: "required"},
		})
		return
	}

	flag, err := h.service.Set(r.Context(), key, input.Value)
	if err != nil {
		response.InternalError(w, r, "could not update feature flag")
		return
	}
	response.JSON(w, r, http.StatusOK, flag)
}
