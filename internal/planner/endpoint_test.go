package planner_test

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/themuku/RailwayVision/internal/lookup"
	"github.com/themuku/RailwayVision/internal/planner"
)

// stubSearcher returns fixed results and counts calls.
type stubSearcher struct {
	results []lookup.PopulationCenter
	err     error
	calls   atomic.Int32
}

func (s *stubSearcher) Search(_ context.Context, _ string) ([]lookup.PopulationCenter, error) {
	s.calls.Add(1)
	if s.err != nil {
		return nil, s.err
	}
	return s.results, nil
}

// blockingSearcher parks every search until the test releases its query.
type blockingSearcher struct {
	mu      sync.Mutex
	waiting map[string]chan []lookup.PopulationCenter
}

func newBlockingSearcher() *blockingSearcher {
	return &blockingSearcher{waiting: make(map[string]chan []lookup.PopulationCenter)}
}

func (s *blockingSearcher) chanFor(query string) chan []lookup.PopulationCenter {
	s.mu.Lock()
	defer s.mu.Unlock()
	ch, ok := s.waiting[query]
	if !ok {
		ch = make(chan []lookup.PopulationCenter, 1)
		s.waiting[query] = ch
	}
	return ch
}

func (s *blockingSearcher) Search(ctx context.Context, query string) ([]lookup.PopulationCenter, error) {
	select {
	case results := <-s.chanFor(query):
		return results, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (s *blockingSearcher) release(query string, results []lookup.PopulationCenter) {
	s.chanFor(query) <- results
}

func baku() lookup.PopulationCenter {
	return lookup.PopulationCenter{ID: "42", Name: "Baku", Latitude: 40.4093, Longitude: 49.8671}
}

func TestEndpoint_ShortInputClearsLiveWithoutSearch(t *testing.T) {
	searcher := &stubSearcher{results: []lookup.PopulationCenter{baku()}}
	ep := planner.NewEndpoint(planner.RoleStart, searcher, zerolog.Nop())
	ctx := context.Background()

	if _, err := ep.TriggerSearch(ctx, "Ba"); err != nil {
		t.Fatalf("search failed: %v", err)
	}
	if len(ep.LiveResults()) != 1 {
		t.Fatal("expected live results after search")
	}

	results, err := ep.TriggerSearch(ctx, "B")
	if err != nil {
		t.Fatalf("short input should not error: %v", err)
	}
	if results != nil {
		t.Error("short input should return no results")
	}
	if len(ep.LiveResults()) != 0 {
		t.Error("short input should clear live results")
	}
	if len(ep.CachedResults()) != 1 {
		t.Error("short input must not clear cached results")
	}
	if got := searcher.calls.Load(); got != 1 {
		t.Errorf("expected 1 search call, got %d", got)
	}
}

func TestEndpoint_MinLengthCountsCharactersNotBytes(t *testing.T) {
	searcher := &stubSearcher{results: []lookup.PopulationCenter{baku()}}
	ep := planner.NewEndpoint(planner.RoleStart, searcher, zerolog.Nop())
	ctx := context.Background()

	// A single multibyte character is still one character short.
	results, err := ep.TriggerSearch(ctx, "ə")
	if err != nil {
		t.Fatalf("short input should not error: %v", err)
	}
	if results != nil {
		t.Error("one character should not trigger a search")
	}
	if got := searcher.calls.Load(); got != 0 {
		t.Errorf("expected no search calls, got %d", got)
	}

	// Two multibyte characters meet the minimum.
	if _, err := ep.TriggerSearch(ctx, "əl"); err != nil {
		t.Fatalf("search failed: %v", err)
	}
	if got := searcher.calls.Load(); got != 1 {
		t.Errorf("expected 1 search call, got %d", got)
	}
}

func TestEndpoint_TypingInvalidatesConfirmation(t *testing.T) {
	ep := planner.NewEndpoint(planner.RoleStart, &stubSearcher{}, zerolog.Nop())

	ep.Confirm(baku())
	if ep.ConfirmedID().IsZero() {
		t.Fatal("expected confirmation to stick")
	}

	ep.SetTypedText("Bak")
	if !ep.ConfirmedID().IsZero() {
		t.Error("editing the text must clear the confirmed ID")
	}
}

func TestEndpoint_ConfirmRewritesTextAndCloses(t *testing.T) {
	searcher := &stubSearcher{results: []lookup.PopulationCenter{baku()}}
	ep := planner.NewEndpoint(planner.RoleStart, searcher, zerolog.Nop())

	ep.BeginInteraction()
	ep.SetTypedText("bak")
	if _, err := ep.TriggerSearch(context.Background(), "bak"); err != nil {
		t.Fatalf("search failed: %v", err)
	}

	ep.Confirm(baku())

	if got := ep.TypedText(); got != "Baku" {
		t.Errorf("expected typed text rewritten to %q, got %q", "Baku", got)
	}
	if ep.IsInteracting() {
		t.Error("confirmation should end the interaction")
	}
	if len(ep.LiveResults()) != 0 {
		t.Error("confirmation should close the candidate list")
	}
	if ep.ConfirmedID() != "42" {
		t.Errorf("expected confirmed ID 42, got %s", ep.ConfirmedID())
	}
}

func TestEndpoint_DismissKeepsCachedResults(t *testing.T) {
	searcher := &stubSearcher{results: []lookup.PopulationCenter{baku()}}
	ep := planner.NewEndpoint(planner.RoleStart, searcher, zerolog.Nop())

	ep.BeginInteraction()
	if _, err := ep.TriggerSearch(context.Background(), "Baku"); err != nil {
		t.Fatalf("search failed: %v", err)
	}

	ep.Dismiss()

	if ep.IsInteracting() {
		t.Error("dismissal should end the interaction")
	}
	if len(ep.LiveResults()) != 0 {
		t.Error("dismissal should clear live results")
	}
	if len(ep.CachedResults()) != 1 {
		t.Error("dismissal must keep cached results for later verification")
	}
}

func TestEndpoint_SearchErrorKeepsLiveResults(t *testing.T) {
	searcher := &stubSearcher{results: []lookup.PopulationCenter{baku()}}
	ep := planner.NewEndpoint(planner.RoleStart, searcher, zerolog.Nop())
	ctx := context.Background()

	if _, err := ep.TriggerSearch(ctx, "Baku"); err != nil {
		t.Fatalf("search failed: %v", err)
	}

	searcher.err = errors.New("backend down")
	if _, err := ep.TriggerSearch(ctx, "Baku city"); err == nil {
		t.Fatal("expected search error")
	}

	if len(ep.LiveResults()) != 1 {
		t.Error("a failed search must leave prior live results in place")
	}
	if len(ep.CachedResults()) != 1 {
		t.Error("a failed search must leave cached results in place")
	}
}

func TestEndpoint_StaleResponseDiscarded(t *testing.T) {
	searcher := newBlockingSearcher()
	ep := planner.NewEndpoint(planner.RoleStart, searcher, zerolog.Nop())
	ctx := context.Background()

	old := []lookup.PopulationCenter{{ID: "1", Name: "Bakersfield"}}
	fresh := []lookup.PopulationCenter{baku()}

	// First search hangs on the backend.
	done := make(chan struct{})
	go func() {
		defer close(done)
		_, _ = ep.TriggerSearch(ctx, "Bak")
	}()
	waitFor(t, ep.IsSearching)

	// A newer search completes first.
	searcher.release("Baku", fresh)
	if _, err := ep.TriggerSearch(ctx, "Baku"); err != nil {
		t.Fatalf("search failed: %v", err)
	}

	// The old response finally arrives and must be discarded.
	searcher.release("Bak", old)
	<-done

	live := ep.LiveResults()
	if len(live) != 1 || live[0].ID != "42" {
		t.Errorf("stale response overwrote newer results: %+v", live)
	}
}

// waitFor polls cond until it holds or the deadline passes.
func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(2 * time.Millisecond)
	}
	t.Fatal("condition not reached in time")
}
