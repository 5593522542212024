package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/themuku/RailwayVision/internal/api/models"
	"github.com/themuku/RailwayVision/internal/api/response"
	"github.com/themuku/RailwayVision/internal/lookup"
	"github.com/themuku/RailwayVision/internal/planner"
	"github.com/themuku/RailwayVision/internal/session"
)

// SessionHandler handles planner session endpoints. Every session owns an
// independent planner; the URL carries the session ID and, for endpoint
// events, the endpoint role.
type SessionHandler struct {
	sessions *session.Manager
	logger   zerolog.Logger
}

// NewSessionHandler creates a new SessionHandler.
func NewSessionHandler(sessions *session.Manager, logger zerolog.Logger) *SessionHandler {
	return &SessionHandler{
		sessions: sessions,
		logger:   logger,
	}
}

// CreateSession handles POST /v1/sessions - start a planner session.
func (h *SessionHandler) CreateSession(w http.ResponseWriter, r *http.Request) {
	s := h.sessions.Create()
	resp := models.Session{
		ID:        s.ID,
		CreatedAt: models.Timestamp(s.CreatedAt),
	}
	response.Created(w, r, "/v1/sessions/"+s.ID, resp)
}

// GetSession handles GET /v1/sessions/{sessionId} - full state snapshot.
func (h *SessionHandler) GetSession(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}
	response.JSON(w, r, http.StatusOK, toSessionState(s))
}

// DeleteSession handles DELETE /v1/sessions/{sessionId}.
func (h *SessionHandler) DeleteSession(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "sessionId")
	if err := h.sessions.Delete(id); err != nil {
		response.NotFound(w, r, "session not found")
		return
	}
	response.NoContent(w, r)
}

// TypeText handles POST /v1/sessions/{sessionId}/endpoints/{role}/text -
// a keystroke. The search it may trigger is debounced and runs in the
// background; the response reflects the state immediately after the edit.
func (h *SessionHandler) TypeText(w http.ResponseWriter, r *http.Request) {
	s, role, ok := h.sessionAndRole(w, r)
	if !ok {
		return
	}

	var input models.TextEvent
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		response.BadRequest(w, r, "invalid JSON body", nil)
		return
	}

	s.Planner.Type(role, input.Text)
	response.JSON(w, r, http.StatusOK, toSessionState(s))
}

// Focus handles POST /v1/sessions/{sessionId}/endpoints/{role}/focus -
// the input gains focus. Existing text of sufficient length reopens the
// search immediately.
func (h *SessionHandler) Focus(w http.ResponseWriter, r *http.Request) {
	s, role, ok := h.sessionAndRole(w, r)
	if !ok {
		return
	}

	s.Planner.Focus(r.Context(), role)
	response.JSON(w, r, http.StatusOK, toSessionState(s))
}

// Dismiss handles POST /v1/sessions/{sessionId}/endpoints/{role}/dismiss -
// an outside click closes the candidate list.
func (h *SessionHandler) Dismiss(w http.ResponseWriter, r *http.Request) {
	s, role, ok := h.sessionAndRole(w, r)
	if !ok {
		return
	}

	s.Planner.Dismiss(role)
	response.JSON(w, r, http.StatusOK, toSessionState(s))
}

// Select handles POST /v1/sessions/{sessionId}/endpoints/{role}/select -
// a candidate click. The candidate must be one the session has listed.
func (h *SessionHandler) Select(w http.ResponseWriter, r *http.Request) {
	s, role, ok := h.sessionAndRole(w, r)
	if !ok {
		return
	}

	var input models.SelectRequest
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		response.BadRequest(w, r, "invalid JSON body", nil)
		return
	}
	if input.ID == "" {
		response.BadRequest(w, r, "candidate id is required", []models.FieldError{
			{Field: "id", Message: "required"},
		})
		return
	}

	if err := s.Planner.Select(role, lookup.CenterID(input.ID)); err != nil {
		response.Unprocessable(w, r, "candidate not in current results")
		return
	}
	response.JSON(w, r, http.StatusOK, toSessionState(s))
}

// PressEnter handles POST /v1/sessions/{sessionId}/endpoints/{role}/enter -
// the Enter key. A lone listed candidate is confirmed; either way the
// candidate list closes.
func (h *SessionHandler) PressEnter(w http.ResponseWriter, r *http.Request) {
	s, role, ok := h.sessionAndRole(w, r)
	if !ok {
		return
	}

	confirmed := s.Planner.PressEnter(role)
	response.JSON(w, r, http.StatusOK, models.EnterResult{Confirmed: confirmed})
}

// SetPoint handles POST /v1/sessions/{sessionId}/endpoints/{role}/point -
// a raw map-click coordinate for the endpoint.
func (h *SessionHandler) SetPoint(w http.ResponseWriter, r *http.Request) {
	s, role, ok := h.sessionAndRole(w, r)
	if !ok {
		return
	}

	var input models.PointRequest
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		response.BadRequest(w, r, "invalid JSON body", nil)
		return
	}

	s.Planner.SetMapPoint(role, input.Latitude, input.Longitude)
	response.JSON(w, r, http.StatusOK, toSessionState(s))
}

// CalculateRoute handles POST /v1/sessions/{sessionId}/route - verify both
// endpoints and request the route.
func (h *SessionHandler) CalculateRoute(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}

	route, err := s.Planner.Calculate(r.Context())
	if err != nil {
		switch {
		case errors.Is(err, planner.ErrRequestInFlight):
			response.Conflict(w, r, "a route calculation is already in progress")
		case errors.Is(err, planner.ErrVerificationFailed):
			response.Unprocessable(w, r, planner.MsgVerificationFailed)
		case errors.Is(err, planner.ErrRouteRequestFailed):
			response.BadGateway(w, r, planner.MsgRequestFailed)
		default:
			h.logger.Error().Err(err).Str("session_id", s.ID).Msg("route calculation failed")
			response.InternalError(w, r, "route calculation failed")
		}
		return
	}

	response.JSON(w, r, http.StatusOK, toRouteResult(route))
}

func (h *SessionHandler) session(w http.ResponseWriter, r *http.Request) (*session.Session, bool) {
	id := chi.URLParam(r, "sessionId")
	s, err := h.sessions.Get(id)
	if err != nil {
		response.NotFound(w, r, "session not found")
		return nil, false
	}
	return s, true
}

func (h *SessionHandler) sessionAndRole(w http.ResponseWriter, r *http.Request) (*session.Session, planner.Role, bool) {
	s, ok := h.session(w, r)
	if !ok {
		return nil, "", false
	}

	role, err := planner.ParseRole(chi.URLParam(r, "role"))
	if err != nil {
		response.BadRequest(w, r, "endpoint role must be \"start\" or \"end\"", []models.FieldError{
			{Field: "role", Message: "must be start or end"},
		})
		return nil, "", false
	}
	return s, role, true
}
