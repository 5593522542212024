package handler

import (
	"fmt"

	"github.com/themuku/RailwayVision/internal/api/models"
	"github.com/themuku/RailwayVision/internal/lookup"
	"github.com/themuku/RailwayVision/internal/planner"
	"github.com/themuku/RailwayVision/internal/session"
	"github.com/themuku/RailwayVision/pkg/polyline"
)

func toCandidates(centers []lookup.PopulationCenter) []models.Candidate {
	candidates := make([]models.Candidate, 0, len(centers))
	for _, c := range centers {
		candidates = append(candidates, models.Candidate{
			ID:          c.ID.String(),
			Name:        c.Name,
			EnglishName: c.EnglishName(),
			Latitude:    c.Latitude,
			Longitude:   c.Longitude,
		})
	}
	return candidates
}

func toEndpointState(snap planner.EndpointSnapshot, bridge *session.MapBridge) models.EndpointState {
	state := models.EndpointState{
		Role:        string(snap.Role),
		TypedText:   snap.TypedText,
		Interacting: snap.Interacting,
		Searching:   snap.Searching,
		Candidates:  toCandidates(snap.LiveResults),
		ConfirmedID: snap.ConfirmedID.String(),
	}
	if point, ok := bridge.Point(snap.Role); ok {
		state.Point = &models.RoutePoint{
			Latitude:  point.Latitude,
			Longitude: point.Longitude,
			Label:     point.Label,
		}
	}
	return state
}

func toSessionState(s *session.Session) models.SessionState {
	snap := s.Planner.Snapshot()
	return models.SessionState{
		ID:           s.ID,
		Phase:        string(snap.Phase),
		ErrorMessage: snap.ErrorMessage,
		Start:        toEndpointState(snap.Start, s.Bridge),
		End:          toEndpointState(snap.End, s.Bridge),
		Route:        toRouteResult(snap.LastRoute),
	}
}

// toRouteResult shapes a backend route for clients: geometry as an encoded
// polyline, the duration both parsed and pre-formatted, and a one-line
// summary for the result panel.
func toRouteResult(route *lookup.Route) *models.RouteResult {
	if route == nil {
		return nil
	}

	coords := make([]polyline.Coordinate, 0, len(route.Geometry))
	for _, c := range route.Geometry {
		coords = append(coords, polyline.Coordinate{Lat: c.Latitude, Lon: c.Longitude})
	}

	stations := make([]models.Station, 0, len(route.Stations))
	for _, s := range route.Stations {
		stations = append(stations, models.Station{
			Name:      s.Name,
			Distance:  s.Distance,
			Latitude:  s.Coordinate.Latitude,
			Longitude: s.Coordinate.Longitude,
		})
	}

	duration := models.RouteDuration{Text: route.ApproximateDuration}
	if d, err := route.Duration(); err == nil {
		duration = models.RouteDuration{
			Hours:   d.Hours,
			Minutes: d.Minutes,
			Text:    d.String(),
		}
	}

	return &models.RouteResult{
		Geometry:   polyline.Encode(coords),
		Stations:   stations,
		DistanceKm: route.DistanceKm,
		Duration:   duration,
		Summary:    fmt.Sprintf("%.2f km, %s", route.DistanceKm, duration.Text),
	}
}
