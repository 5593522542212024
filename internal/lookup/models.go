// Package lookup provides access to the population center directory and the
// remote route computation backend.
package lookup

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Sentinel errors for lookup operations.
var (
	// ErrUnavailable indicates the lookup backend is down or unreachable.
	ErrUnavailable = errors.New("lookup backend unavailable")
	// ErrCenterNotFound indicates no population center exists for the given ID.
	ErrCenterNotFound = errors.New("population center not found")
	// ErrNoRoute indicates no route exists between the given centers.
	ErrNoRoute = errors.New("no route found between the given centers")
	// ErrBadResponse indicates the backend returned a malformed payload.
	ErrBadResponse = errors.New("malformed backend response")
)

// Directory is the lookup surface consumed by the planner. It is satisfied
// by *Service and substitutable with a fake in tests.
type Directory interface {
	// Search returns population centers whose name contains the query,
	// case-insensitively, preserving backend ordering.
	Search(ctx context.Context, query string) ([]PopulationCenter, error)
	// Route computes a route between two centers identified by ID.
	Route(ctx context.Context, fromID, toID CenterID) (*Route, error)
}

// CenterID is an opaque population center identifier. The backend emits it
// as a JSON number in some payloads and a string in others; it is preserved
// verbatim and callers must not assume a type.
type CenterID string

// UnmarshalJSON accepts both string and numeric identifiers.
func (id *CenterID) UnmarshalJSON(b []byte) error {
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*id = CenterID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("center id must be a string or number: %w", err)
	}
	*id = CenterID(n.String())
	return nil
}

func (id CenterID) String() string { return string(id) }

// IsZero reports whether the identifier is unset.
func (id CenterID) IsZero() bool { return id == "" }

// PopulationCenter is a searchable named location.
type PopulationCenter struct {
	ID         CenterID          `json:"elementId"`
	Name       string            `json:"name"`
	Tags       map[string]string `json:"tags,omitempty"`
	Latitude   float64           `json:"latitude"`
	Longitude  float64           `json:"longitude"`
	Population int64             `json:"population,omitempty"`
	Type       string            `json:"type,omitempty"`
}

// EnglishName returns the name:en tag, or "" when absent.
func (c PopulationCenter) EnglishName() string {
	return c.Tags["name:en"]
}

// HasCoordinates reports whether the center carries a usable position.
// The backend emits 0,0 for centers without geometry.
func (c PopulationCenter) HasCoordinates() bool {
	return c.Latitude != 0 && c.Longitude != 0
}

// Coordinate is a geographic point as emitted by the backend.
type Coordinate struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// PathStation is a waypoint station along a computed route.
type PathStation struct {
	Name       string     `json:"name"`
	Distance   float64    `json:"distance"`
	Coordinate Coordinate `json:"coordinate"`
}

// Route is a computed route between two population centers.
type Route struct {
	// Geometry is the ordered route polyline.
	Geometry []Coordinate `json:"route"`
	// Stations are the waypoint stations passed along the way.
	Stations []PathStation `json:"path"`
	// ApproximateDuration is "H:MM"-shaped text from the backend.
	ApproximateDuration string `json:"approximateDuration"`
	// DistanceKm is the total route distance in kilometers.
	DistanceKm float64 `json:"distance"`
}

// Duration returns the parsed approximate duration.
func (r *Route) Duration() (Duration, error) {
	return ParseApproximateDuration(r.ApproximateDuration)
}

// Duration is an approximate travel time in whole hours and minutes.
type Duration struct {
	Hours   int
	Minutes int
}

func (d Duration) String() string {
	return fmt.Sprintf("%dh %dm", d.Hours, d.Minutes)
}

// ParseApproximateDuration parses the backend's "H:MM" duration text.
// Hours are floored and minutes rounded, matching how the value is
// displayed to users.
func ParseApproximateDuration(s string) (Duration, error) {
	parts := strings.SplitN(strings.TrimSpace(s), ":", 2)
	if len(parts) != 2 {
		return Duration{}, fmt.Errorf("duration %q: %w", s, ErrBadResponse)
	}
	hours, err := strconv.ParseFloat(parts[0], 64)
	if err != nil {
		return Duration{}, fmt.Errorf("duration hours %q: %w", parts[0], ErrBadResponse)
	}
	minutes, err := strconv.ParseFloat(parts[1], 64)
	if err != nil {
		return Duration{}, fmt.Errorf("duration minutes %q: %w", parts[1], ErrBadResponse)
	}
	return Duration{
		Hours:   int(math.Floor(hours)),
		Minutes: int(math.Round(minutes)),
	}, nil
}

// Error carries upstream detail for a failed lookup call.
type Error struct {
	Op      string // operation that failed, e.g. "centers" or "route"
	Status  int    // HTTP status, 0 for transport failures
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}
