package planner

import (
	"context"
	"fmt"
	"sync"
	"unicode/utf8"

	"github.com/rs/zerolog"

	"github.com/themuku/RailwayVision/internal/lookup"
)

// Role identifies one of the two route ends.
type Role string

const (
	// RoleStart is the route origin endpoint.
	RoleStart Role = "start"
	// RoleEnd is the route destination endpoint.
	RoleEnd Role = "end"
)

// ParseRole validates a role string from the API surface.
func ParseRole(s string) (Role, error) {
	switch Role(s) {
	case RoleStart, RoleEnd:
		return Role(s), nil
	default:
		return "", fmt.Errorf("unknown endpoint role %q", s)
	}
}

// Label returns the user-facing marker label for the role.
func (r Role) Label() string {
	if r == RoleStart {
		return "Start"
	}
	return "Destination"
}

// MinQueryLength is the minimum typed length, in characters, before a
// search is issued.
const MinQueryLength = 2

// Searcher issues a name search against the directory.
type Searcher interface {
	Search(ctx context.Context, query string) ([]lookup.PopulationCenter, error)
}

// Endpoint holds the search-and-select state for one route end.
//
// liveResults is what a dropdown would show and is cleared on dismissal,
// confirmation, or short input. cachedResults survives all of those and is
// the corpus verification resolves typed text against.
type Endpoint struct {
	role     Role
	searcher Searcher
	logger   zerolog.Logger

	// staleGuard, when true, discards search responses that complete after
	// a newer search was issued for this endpoint. When false the last
	// completion wins regardless of issue order.
	staleGuard func() bool

	mu            sync.Mutex
	typedText     string
	interacting   bool
	liveResults   []lookup.PopulationCenter
	cachedResults []lookup.PopulationCenter
	confirmedID   lookup.CenterID
	inFlight      int
	searchSeq     uint64
}

// NewEndpoint creates endpoint state for the given role.
func NewEndpoint(role Role, searcher Searcher, logger zerolog.Logger) *Endpoint {
	return &Endpoint{
		role:     role,
		searcher: searcher,
		logger:   logger.With().Str("endpoint", string(role)).Logger(),
	}
}

// Role returns the endpoint's role.
func (e *Endpoint) Role() Role { return e.role }

// SetTypedText records a keystroke. Editing invalidates any prior
// confirmation: the identifier and the text must stay semantically linked.
func (e *Endpoint) SetTypedText(text string) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.typedText = text
	if !e.confirmedID.IsZero() {
		e.confirmedID = ""
	}
}

// TypedText returns the current raw input.
func (e *Endpoint) TypedText() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.typedText
}

// BeginInteraction marks the user as actively typing/focused here.
func (e *Endpoint) BeginInteraction() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.interacting = true
}

// IsInteracting reports whether the user is actively interacting.
func (e *Endpoint) IsInteracting() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.interacting
}

// Dismiss handles an outside-click style dismissal: interaction ends and
// live results close, but the cached corpus and any confirmation survive.
func (e *Endpoint) Dismiss() {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.interacting = false
	e.liveResults = nil
}

// Confirm binds the endpoint to an explicitly picked candidate. The typed
// text is rewritten to the candidate's display name and the input unfocuses.
func (e *Endpoint) Confirm(c lookup.PopulationCenter) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.confirmedID = c.ID
	e.typedText = c.Name
	e.liveResults = nil
	e.interacting = false
}

// BindMatch binds the endpoint to a candidate resolved during verification.
// Unlike Confirm it leaves the typed text and interaction state alone.
func (e *Endpoint) BindMatch(c lookup.PopulationCenter) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.confirmedID = c.ID
}

// ConfirmedID returns the confirmed candidate identifier, or the zero ID.
func (e *Endpoint) ConfirmedID() lookup.CenterID {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.confirmedID
}

// IsSearching reports whether any search for this endpoint is outstanding.
func (e *Endpoint) IsSearching() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.inFlight > 0
}

// LiveResults returns a copy of the open candidate list.
func (e *Endpoint) LiveResults() []lookup.PopulationCenter {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]lookup.PopulationCenter(nil), e.liveResults...)
}

// CachedResults returns a copy of the last successful search results.
func (e *Endpoint) CachedResults() []lookup.PopulationCenter {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]lookup.PopulationCenter(nil), e.cachedResults...)
}

// TriggerSearch runs a directory search for text and, on success, writes
// both the live and cached result lists. Inputs below MinQueryLength clear
// the live results without a network call. Failures leave the prior live
// results untouched and are logged; the error is returned for callers that
// need it (verification).
//
// Overlapping searches are tolerated. With the stale guard enabled, a
// completion belonging to a superseded request is discarded so an old slow
// response can never overwrite newer results.
func (e *Endpoint) TriggerSearch(ctx context.Context, text string) ([]lookup.PopulationCenter, error) {
	if utf8.RuneCountInString(text) < MinQueryLength {
		e.mu.Lock()
		e.liveResults = nil
		e.mu.Unlock()
		return nil, nil
	}

	e.mu.Lock()
	e.searchSeq++
	seq := e.searchSeq
	e.inFlight++
	e.mu.Unlock()

	results, err := e.searcher.Search(ctx, text)

	e.mu.Lock()
	defer e.mu.Unlock()
	e.inFlight--

	if err != nil {
		e.logger.Error().Err(err).
			Str("query", text).
			Msg("population center search failed")
		return nil, err
	}

	guard := e.staleGuard == nil || e.staleGuard()
	if guard && seq != e.searchSeq {
		e.logger.Debug().
			Str("query", text).
			Uint64("seq", seq).
			Uint64("latest_seq", e.searchSeq).
			Msg("discarding stale search response")
		return results, nil
	}

	e.liveResults = results
	e.cachedResults = results
	return results, nil
}

// EndpointSnapshot is a point-in-time copy of endpoint state.
type EndpointSnapshot struct {
	Role        Role
	TypedText   string
	Interacting bool
	Searching   bool
	LiveResults []lookup.PopulationCenter
	ConfirmedID lookup.CenterID
}

// Snapshot returns a consistent copy of the endpoint state.
func (e *Endpoint) Snapshot() EndpointSnapshot {
	e.mu.Lock()
	defer e.mu.Unlock()

	return EndpointSnapshot{
		Role:        e.role,
		TypedText:   e.typedText,
		Interacting: e.interacting,
		Searching:   e.inFlight > 0,
		LiveResults: append([]lookup.PopulationCenter(nil), e.liveResults...),
		ConfirmedID: e.confirmedID,
	}
}
