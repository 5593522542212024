package models

// Session is the response for session creation and lookup.
type Session struct {
	ID        string    `json:"id"`
	CreatedAt Timestamp `json:"createdAt"`
}

// Candidate is a searchable population center.
type Candidate struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	EnglishName string  `json:"englishName,omitempty"`
	Latitude    float64 `json:"latitude"`
	Longitude   float64 `json:"longitude"`
}

// RoutePoint is a resolved, role-labeled coordinate.
type RoutePoint struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Label     string  `json:"label"`
}

// EndpointState is the state of one route endpoint.
type EndpointState struct {
	Role        string      `json:"role"`
	TypedText   string      `json:"typedText"`
	Interacting bool        `json:"interacting"`
	Searching   bool        `json:"searching"`
	Candidates  []Candidate `json:"candidates"`
	ConfirmedID string      `json:"confirmedId,omitempty"`
	Point       *RoutePoint `json:"point,omitempty"`
}

// SessionState is the full session snapshot.
type SessionState struct {
	ID           string        `json:"id"`
	Phase        string        `json:"phase"`
	ErrorMessage string        `json:"errorMessage,omitempty"`
	Start        EndpointState `json:"start"`
	End          EndpointState `json:"end"`
	Route        *RouteResult  `json:"route,omitempty"`
}

// Station is a waypoint station along a route.
type Station struct {
	Name      string  `json:"name"`
	Distance  float64 `json:"distance"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// RouteDuration is the parsed approximate travel time.
type RouteDuration struct {
	Hours   int    `json:"hours"`
	Minutes int    `json:"minutes"`
	Text    string `json:"text"`
}

// RouteResult is a computed route.
type RouteResult struct {
	// Geometry is the route shape as an encoded polyline (precision 5).
	Geometry   string        `json:"geometry"`
	Stations   []Station     `json:"stations"`
	DistanceKm float64       `json:"distanceKm"`
	Duration   RouteDuration `json:"duration"`
	Summary    string        `json:"summary"`
}

// TextEvent is a keystroke event for an endpoint input.
type TextEvent struct {
	Text string `json:"text"`
}

// SelectRequest confirms a listed candidate by ID.
type SelectRequest struct {
	ID string `json:"id"`
}

// PointRequest assigns a raw map-click coordinate to an endpoint.
type PointRequest struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// EnterResult reports the outcome of an Enter keypress.
type EnterResult struct {
	Confirmed bool `json:"confirmed"`
}

// FlagUpdate sets a feature flag value.
type FlagUpdate struct {
	Value interface{} `json:"value"`
}
