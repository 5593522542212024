package session

import (
	"sync"

	"github.com/themuku/RailwayVision/internal/lookup"
	"github.com/themuku/RailwayVision/internal/planner"
)

// MapBridge stands in for the map rendering surface. The planner hands it
// confirmed points and completed routes; API clients read them back when
// drawing markers and geometry.
type MapBridge struct {
	mu     sync.Mutex
	points map[planner.Role]planner.RoutePoint
	route  *lookup.Route
}

// NewMapBridge creates an empty bridge.
func NewMapBridge() *MapBridge {
	return &MapBridge{
		points: make(map[planner.Role]planner.RoutePoint),
	}
}

// SetPoint records the latest confirmed point for a role.
func (b *MapBridge) SetPoint(role planner.Role, point planner.RoutePoint) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.points[role] = point
}

// ShowRoute records the latest computed route, replacing any prior one.
func (b *MapBridge) ShowRoute(route *lookup.Route) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.route = route
}

// Point returns the confirmed point for a role, if any.
func (b *MapBridge) Point(role planner.Role) (planner.RoutePoint, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	p, ok := b.points[role]
	return p, ok
}

// Route returns the latest computed route, or nil.
func (b *MapBridge) Route() *lookup.Route {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.route
}
