package session_test

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/themuku/RailwayVision/internal/lookup"
	"github.com/themuku/RailwayVision/internal/planner"
	"github.com/themuku/RailwayVision/internal/session"
)

func testFactory(bridge *session.MapBridge) *planner.Planner {
	return planner.New(planner.Config{
		Renderer: bridge,
		Logger:   zerolog.Nop(),
	})
}

func newTestManager(ttl, sweep time.Duration) *session.Manager {
	return session.NewManager(session.ManagerConfig{
		Factory:       testFactory,
		Logger:        zerolog.Nop(),
		TTL:           ttl,
		SweepInterval: sweep,
	})
}

func TestManager_CreateAndGet(t *testing.T) {
	m := newTestManager(time.Minute, time.Minute)

	s := m.Create()
	if !strings.HasPrefix(s.ID, "sess_") {
		t.Errorf("expected session ID to start with 'sess_', got %q", s.ID)
	}
	if s.Planner == nil || s.Bridge == nil {
		t.Fatal("expected session wired with planner and bridge")
	}
	if m.Len() != 1 {
		t.Errorf("expected 1 live session, got %d", m.Len())
	}

	got, err := m.Get(s.ID)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if got != s {
		t.Error("Get returned a different session")
	}
}

func TestManager_GetUnknown(t *testing.T) {
	m := newTestManager(time.Minute, time.Minute)

	_, err := m.Get("sess_nope")
	if !errors.Is(err, session.ErrSessionNotFound) {
		t.Errorf("expected ErrSessionNotFound, got %v", err)
	}
}

func TestManager_Delete(t *testing.T) {
	m := newTestManager(time.Minute, time.Minute)
	s := m.Create()

	if err := m.Delete(s.ID); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if m.Len() != 0 {
		t.Errorf("expected no live sessions, got %d", m.Len())
	}
	if err := m.Delete(s.ID); !errors.Is(err, session.ErrSessionNotFound) {
		t.Errorf("expected ErrSessionNotFound on double delete, got %v", err)
	}
}

func TestManager_SweepsIdleSessions(t *testing.T) {
	m := newTestManager(10*time.Millisecond, 5*time.Millisecond)

	idle := m.Create()
	time.Sleep(30 * time.Millisecond)

	// Any manager operation past the sweep interval collects expired sessions.
	fresh := m.Create()

	if _, err := m.Get(idle.ID); !errors.Is(err, session.ErrSessionNotFound) {
		t.Errorf("expected idle session evicted, got %v", err)
	}
	if _, err := m.Get(fresh.ID); err != nil {
		t.Errorf("fresh session should survive the sweep: %v", err)
	}
}

func TestManager_GetRefreshesIdleDeadline(t *testing.T) {
	m := newTestManager(50*time.Millisecond, time.Nanosecond)

	s := m.Create()

	// Keep touching the session; it must outlive several TTL windows.
	for i := 0; i < 5; i++ {
		time.Sleep(20 * time.Millisecond)
		if _, err := m.Get(s.ID); err != nil {
			t.Fatalf("session expired despite activity: %v", err)
		}
	}
}

func TestMapBridge_RecordsPointsAndRoute(t *testing.T) {
	bridge := session.NewMapBridge()

	if _, ok := bridge.Point(planner.RoleStart); ok {
		t.Error("expected no point before SetPoint")
	}
	if bridge.Route() != nil {
		t.Error("expected no route before ShowRoute")
	}

	bridge.SetPoint(planner.RoleStart, planner.RoutePoint{Latitude: 40.4, Longitude: 49.8, Label: "Start"})
	point, ok := bridge.Point(planner.RoleStart)
	if !ok {
		t.Fatal("expected recorded point")
	}
	if point.Label != "Start" {
		t.Errorf("unexpected point: %+v", point)
	}

	route := &lookup.Route{DistanceKm: 344.7}
	bridge.ShowRoute(route)
	if got := bridge.Route(); got != route {
		t.Error("expected recorded route returned")
	}

	// A newer route replaces the previous one.
	newer := &lookup.Route{DistanceKm: 120.0}
	bridge.ShowRoute(newer)
	if got := bridge.Route(); got != newer {
		t.Error("expected latest route returned")
	}
}
