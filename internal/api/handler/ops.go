// Package handler provides HTTP handlers for the RailwayVision API.
package handler

import (
	"net/http"
	"time"

	"github.com/themuku/RailwayVision/internal/api/models"
	"github.com/themuku/RailwayVision/internal/api/response"
	"github.com/themuku/RailwayVision/internal/provider/resilience"
)

// OpsHandler handles operational endpoints.
type OpsHandler struct {
	version   string
	buildTime string
	registry  *resilience.Registry
}

// NewOpsHandler creates a new OpsHandler.
func NewOpsHandler(version, buildTime string, registry *resilience.Registry) *OpsHandler {
	return &OpsHandler{
		version:   version,
		buildTime: buildTime,
		registry:  registry,
	}
}

// HealthCheck handles GET /v1/ops/health - liveness check.
func (h *OpsHandler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	health := models.Health{
		Status: models.HealthStatusOK,
		Time:   models.Timestamp(time.Now()),
		Details: map[string]interface{}{
			"version":   h.version,
			"buildTime": h.buildTime,
		},
	}
	response.JSON(w, r, http.StatusOK, health)
}

// ReadinessCheck handles GET /v1/ops/ready - readiness check. The service
// is degraded when any upstream circuit is open.
func (h *OpsHandler) ReadinessCheck(w http.ResponseWriter, r *http.Request) {
	status := models.HealthStatusOK
	providers := map[string]interface{}{}

	if h.registry != nil {
		for _, p := range h.registry.GetAllHealth() {
			providerStatus := models.HealthStatusOK
			if !p.IsHealthy() {
				providerStatus = models.HealthStatusDegraded
				status = models.HealthStatusDegraded
			}
			providers[p.Name] = providerStatus
		}
	}

	health := models.Health{
		Status: status,
		Time:   models.Timestamp(time.Now()),
	}
	if len(providers) > 0 {
		health.Details = map[string]interface{}{"providers": providers}
	}
	response.JSON(w, r, http.StatusOK, health)
}

// SystemStatus handles GET /v1/ops/status - upstream provider status.
func (h *OpsHandler) SystemStatus(w http.ResponseWriter, r *http.Request) {
	now := models.Timestamp(time.Now())

	var providers []models.ProviderStatus
	if h.registry != nil {
		for _, p := range h.registry.GetAllHealth() {
			status := models.HealthStatusOK
			if !p.IsHealthy() {
				status = models.HealthStatusDegraded
			}
			ps := models.ProviderStatus{
				Provider: p.Name,
				Status:   status,
			}
			if p.LastSuccessAt != nil {
				t := models.Timestamp(*p.LastSuccessAt)
				ps.LastSuccessAt = &t
			}
			if p.LastFailureAt != nil {
				t := models.Timestamp(*p.LastFailureAt)
				ps.LastFailureAt = &t
			}
			if p.LastError != "" {
				msg := p.LastError
				ps.Message = &msg
			}
			providers = append(providers, ps)
		}
	}

	overall := models.HealthStatusOK
	for _, p := range providers {
		if p.Status != models.HealthStatusOK {
			overall = models.HealthStatusDegraded
			break
		}
	}

	response.JSON(w, r, http.StatusOK, map[string]interface{}{
		"status":    overall,
		"time":      now,
		"providers": providers,
	})
}
