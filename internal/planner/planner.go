// Package planner implements the location-resolution and route-request
// orchestration core: two independent search-and-select endpoint state
// machines feeding a single route computation against the remote backend.
package planner

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/themuku/RailwayVision/internal/featureflags"
	"github.com/themuku/RailwayVision/internal/lookup"
)

// Phase is the route request orchestration phase.
type Phase string

const (
	// PhaseIdle means no calculation is underway.
	PhaseIdle Phase = "idle"
	// PhaseVerifying means typed text is being resolved to confirmed IDs.
	PhaseVerifying Phase = "verifying"
	// PhaseRequesting means a route request is in flight.
	PhaseRequesting Phase = "requesting"
	// PhaseCompleted means the last calculation produced a route.
	PhaseCompleted Phase = "completed"
	// PhaseVerificationFailed means one or both endpoints could not be resolved.
	PhaseVerificationFailed Phase = "verification_failed"
	// PhaseRequestFailed means the route request itself failed.
	PhaseRequestFailed Phase = "request_failed"
)

// accepting reports whether a new calculation may start from this phase.
func (p Phase) accepting() bool {
	return p != PhaseVerifying && p != PhaseRequesting
}

// User-visible failure messages.
const (
	MsgVerificationFailed = "Could not find one or both cities. Please select from the dropdown."
	MsgRequestFailed      = "Failed to calculate route. Please try again."
)

// Sentinel errors for planner operations.
var (
	// ErrRequestInFlight is returned when a calculation is already running.
	ErrRequestInFlight = errors.New("route request already in flight")
	// ErrVerificationFailed is returned when an endpoint cannot be resolved
	// to a confirmed candidate.
	ErrVerificationFailed = errors.New("could not verify one or both endpoints")
	// ErrRouteRequestFailed is returned when the backend route request fails.
	ErrRouteRequestFailed = errors.New("route request failed")
	// ErrUnknownCandidate is returned when a selection does not correspond
	// to a listed candidate.
	ErrUnknownCandidate = errors.New("candidate not in current results")
)

// RoutePoint is a resolved coordinate handed to the rendering collaborator.
type RoutePoint struct {
	Latitude  float64
	Longitude float64
	Label     string
}

// Renderer is the rendering collaborator boundary. It receives confirmed
// points and completed routes and nothing else.
type Renderer interface {
	SetPoint(role Role, point RoutePoint)
	ShowRoute(route *lookup.Route)
}

// Config holds configuration for a planner.
type Config struct {
	// Directory resolves searches and route requests.
	Directory lookup.Directory

	// Renderer receives confirmed points and route results (optional).
	Renderer Renderer

	// Flags gates optional planner behavior (optional).
	Flags *featureflags.Service

	// Logger for planner operations.
	Logger zerolog.Logger

	// DebounceDelay is the typed-input quiescence window (default: 300ms).
	DebounceDelay time.Duration

	// SearchTimeout bounds debounced background searches (default: 10s).
	SearchTimeout time.Duration
}

// Planner coordinates the two endpoint state machines and owns the single
// in-flight route request.
type Planner struct {
	dir           lookup.Directory
	renderer      Renderer
	flags         *featureflags.Service
	logger        zerolog.Logger
	searchTimeout time.Duration

	start    *Endpoint
	end      *Endpoint
	debounce map[Role]*Debouncer[string]

	mu           sync.Mutex
	phase        Phase
	errorMessage string
	lastRoute    *lookup.Route
}

// New creates a planner with empty endpoint state.
func New(cfg Config) *Planner {
	searchTimeout := cfg.SearchTimeout
	if searchTimeout == 0 {
		searchTimeout = 10 * time.Second
	}

	p := &Planner{
		dir:           cfg.Directory,
		renderer:      cfg.Renderer,
		flags:         cfg.Flags,
		logger:        cfg.Logger,
		searchTimeout: searchTimeout,
		phase:         PhaseIdle,
	}

	p.start = NewEndpoint(RoleStart, cfg.Directory, cfg.Logger)
	p.end = NewEndpoint(RoleEnd, cfg.Directory, cfg.Logger)
	guard := func() bool { return p.flags.StaleResponseGuardEnabled(context.Background()) }
	p.start.staleGuard = guard
	p.end.staleGuard = guard

	p.debounce = map[Role]*Debouncer[string]{
		RoleStart: NewDebouncer(cfg.DebounceDelay, func(text string) { p.debouncedSearch(RoleStart, text) }),
		RoleEnd:   NewDebouncer(cfg.DebounceDelay, func(text string) { p.debouncedSearch(RoleEnd, text) }),
	}
	return p
}

// Close cancels pending debounce timers. No search fires after Close.
func (p *Planner) Close() {
	for _, d := range p.debounce {
		d.Stop()
	}
}

func (p *Planner) endpoint(role Role) *Endpoint {
	if role == RoleStart {
		return p.start
	}
	return p.end
}

// Focus marks an endpoint as actively interacted with. Re-focusing with
// existing text immediately reopens the search.
func (p *Planner) Focus(ctx context.Context, role Role) {
	ep := p.endpoint(role)
	ep.BeginInteraction()
	if text := ep.TypedText(); utf8.RuneCountInString(text) >= MinQueryLength {
		_, _ = ep.TriggerSearch(ctx, text)
	}
}

// Type records a keystroke and schedules a debounced search, gated on the
// user actively interacting with this endpoint.
func (p *Planner) Type(role Role, text string) {
	ep := p.endpoint(role)
	ep.SetTypedText(text)
	if text != "" && ep.IsInteracting() {
		p.debounce[role].Set(text)
	}
}

// debouncedSearch fires once typed input has been quiescent. The
// interaction gate is re-checked at fire time; a dismissal during the
// debounce window suppresses the search.
func (p *Planner) debouncedSearch(role Role, text string) {
	ep := p.endpoint(role)
	if !ep.IsInteracting() {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), p.searchTimeout)
	defer cancel()
	_, _ = ep.TriggerSearch(ctx, text)
}

// Dismiss handles an outside-click dismissal event for an endpoint.
func (p *Planner) Dismiss(role Role) {
	p.endpoint(role).Dismiss()
}

// Select confirms a listed candidate by ID. The candidate must be present
// in the endpoint's live or cached results.
func (p *Planner) Select(role Role, id lookup.CenterID) error {
	ep := p.endpoint(role)

	var picked *lookup.PopulationCenter
	for _, list := range [][]lookup.PopulationCenter{ep.LiveResults(), ep.CachedResults()} {
		for i := range list {
			if list[i].ID == id {
				c := list[i]
				picked = &c
				break
			}
		}
		if picked != nil {
			break
		}
	}
	if picked == nil {
		return ErrUnknownCandidate
	}

	p.confirm(ep, *picked)
	return nil
}

// PressEnter handles the Enter key on an endpoint input: when exactly one
// candidate is listed it is confirmed; either way the dropdown closes and
// the input unfocuses. Reports whether a candidate was confirmed.
func (p *Planner) PressEnter(role Role) bool {
	ep := p.endpoint(role)
	live := ep.LiveResults()
	confirmed := false
	if len(live) == 1 {
		p.confirm(ep, live[0])
		confirmed = true
	}
	ep.Dismiss()
	return confirmed
}

// SetMapPoint assigns a raw map-click coordinate to an endpoint. The point
// goes straight to the renderer; no candidate is involved.
func (p *Planner) SetMapPoint(role Role, latitude, longitude float64) {
	if p.renderer != nil {
		p.renderer.SetPoint(role, RoutePoint{
			Latitude:  latitude,
			Longitude: longitude,
			Label:     role.Label(),
		})
	}
}

// confirm applies an explicit candidate confirmation and forwards the
// resolved point to the renderer.
func (p *Planner) confirm(ep *Endpoint, c lookup.PopulationCenter) {
	ep.Confirm(c)
	p.emitPoint(ep.Role(), c)
}

func (p *Planner) emitPoint(role Role, c lookup.PopulationCenter) {
	if p.renderer == nil || !c.HasCoordinates() {
		return
	}
	p.renderer.SetPoint(role, RoutePoint{
		Latitude:  c.Latitude,
		Longitude: c.Longitude,
		Label:     role.Label(),
	})
}

// Calculate verifies both endpoints and issues the route request. Only one
// calculation may run at a time; concurrent calls fail with
// ErrRequestInFlight and cause no network traffic.
func (p *Planner) Calculate(ctx context.Context) (*lookup.Route, error) {
	p.mu.Lock()
	if !p.phase.accepting() {
		p.mu.Unlock()
		return nil, ErrRequestInFlight
	}
	p.phase = PhaseVerifying
	p.errorMessage = ""
	p.mu.Unlock()

	if err := p.verify(ctx); err != nil {
		p.logger.Warn().Err(err).Msg("endpoint verification failed")
		p.fail(PhaseVerificationFailed, MsgVerificationFailed)
		return nil, ErrVerificationFailed
	}

	startID := p.start.ConfirmedID()
	endID := p.end.ConfirmedID()
	if startID.IsZero() || endID.IsZero() {
		p.fail(PhaseVerificationFailed, MsgVerificationFailed)
		return nil, ErrVerificationFailed
	}

	p.mu.Lock()
	p.phase = PhaseRequesting
	p.mu.Unlock()

	route, err := p.dir.Route(ctx, startID, endID)
	if err != nil {
		p.logger.Error().Err(err).
			Str("from_id", startID.String()).
			Str("to_id", endID.String()).
			Msg("route request failed")
		p.fail(PhaseRequestFailed, MsgRequestFailed)
		return nil, ErrRouteRequestFailed
	}

	p.mu.Lock()
	p.phase = PhaseCompleted
	p.lastRoute = route
	p.mu.Unlock()

	if p.renderer != nil {
		p.renderer.ShowRoute(route)
	}

	p.logger.Info().
		Float64("distance_km", route.DistanceKm).
		Str("duration", route.ApproximateDuration).
		Msg("route calculated")

	return route, nil
}

func (p *Planner) fail(phase Phase, msg string) {
	p.mu.Lock()
	p.phase = phase
	p.errorMessage = msg
	p.mu.Unlock()
}

// verify resolves any endpoint that has typed text but no confirmation.
// Resolution tries the cached corpus first and falls back to a fresh
// search, adopting its first result best-effort. Both endpoints are
// resolved concurrently unless the flag disables it.
func (p *Planner) verify(ctx context.Context) error {
	if p.flags.ConcurrentVerificationEnabled(ctx) {
		g, gctx := errgroup.WithContext(ctx)
		g.Go(func() error { return p.verifyEndpoint(gctx, p.start) })
		g.Go(func() error { return p.verifyEndpoint(gctx, p.end) })
		return g.Wait()
	}

	if err := p.verifyEndpoint(ctx, p.start); err != nil {
		return err
	}
	return p.verifyEndpoint(ctx, p.end)
}

func (p *Planner) verifyEndpoint(ctx context.Context, ep *Endpoint) error {
	if !ep.ConfirmedID().IsZero() {
		return nil
	}

	typed := ep.TypedText()
	if strings.TrimSpace(typed) == "" {
		return ErrVerificationFailed
	}

	if match := ResolveMatch(typed, ep.CachedResults()); match != nil {
		ep.BindMatch(*match)
		p.emitPoint(ep.Role(), *match)
		return nil
	}

	results, err := ep.TriggerSearch(ctx, typed)
	if err != nil {
		return err
	}
	if len(results) == 0 {
		return ErrVerificationFailed
	}

	best := results[0]
	ep.BindMatch(best)
	p.emitPoint(ep.Role(), best)
	return nil
}

// Snapshot is a point-in-time copy of planner state for the API surface.
type Snapshot struct {
	Phase        Phase
	ErrorMessage string
	Start        EndpointSnapshot
	End          EndpointSnapshot
	LastRoute    *lookup.Route
}

// Snapshot returns a consistent copy of the planner state.
func (p *Planner) Snapshot() Snapshot {
	p.mu.Lock()
	phase := p.phase
	msg := p.errorMessage
	route := p.lastRoute
	p.mu.Unlock()

	return Snapshot{
		Phase:        phase,
		ErrorMessage: msg,
		Start:        p.start.Snapshot(),
		End:          p.end.Snapshot(),
		LastRoute:    route,
	}
}
