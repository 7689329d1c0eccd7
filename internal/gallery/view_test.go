package gallery

import (
	"context"
	"errors"
	"testing"

	"github.com/jfoltran/gallery/internal/lister"
	"github.com/jfoltran/gallery/internal/masonry"
)

// surface is a rendering surface whose heights the test sets directly.
type surface struct {
	grid    masonry.Grid
	mounted bool
	heights map[string]int
}

func newSurface(rowHeight, rowGap int) *surface {
	return &surface{
		grid:    masonry.Grid{RowHeight: rowHeight, RowGap: rowGap},
		mounted: true,
		heights: map[string]int{},
	}
}

func (s *surface) Grid() (masonry.Grid, bool) { return s.grid, s.mounted }

func (s *surface) RenderedHeight(id string) (int, bool) {
	h, ok := s.heights[id]
	return h, ok
}

func TestView_InitialState(t *testing.T) {
	v := NewView(nil)
	if !v.Loading() {
		t.Error("new view should be loading")
	}
	if v.Phase() != PhaseLoading {
		t.Errorf("Phase = %s, want loading", v.Phase())
	}
	if v.Empty() {
		t.Error("loading view should not report empty")
	}
	if v.Err() != "" {
		t.Errorf("Err = %q, want empty", v.Err())
	}
}

func TestView_SingleImageSpan(t *testing.T) {
	s := newSurface(10, 16)
	v := NewView(s)

	imgs := []lister.Descriptor{{Src: "/a.png", Alt: "a", Title: "a"}}
	if !v.ApplyFetch(context.Background(), imgs, nil) {
		t.Fatal("ApplyFetch() = false")
	}
	if got := v.Images(); len(got) != 1 {
		t.Fatalf("Images() len = %d, want 1", len(got))
	}
	id := v.Images()[0].ID
	if id == "" {
		t.Fatal("descriptor should have been given an ID")
	}

	s.heights[id] = 430
	v.ImageLoaded(id)

	if got := v.Span(id); got != 18 {
		t.Errorf("Span(%s) = %d, want 18", id, got)
	}
	if v.Phase() != PhaseReady {
		t.Errorf("Phase = %s, want ready", v.Phase())
	}
}

func TestView_FetchRejected(t *testing.T) {
	v := NewView(nil)
	v.ApplyFetch(context.Background(), nil, errors.New("connection refused"))

	assertFallback(t, v)
}

func TestView_FetchErrorPayload(t *testing.T) {
	_, err := decodeListing(500, []byte(`{"error":"x"}`))
	if err == nil {
		t.Fatal("expected error for error payload")
	}

	v := NewView(nil)
	v.ApplyFetch(context.Background(), nil, err)
	assertFallback(t, v)
}

func assertFallback(t *testing.T, v *View) {
	t.Helper()
	got := v.Images()
	want := FallbackImages()
	if len(got) != len(want) {
		t.Fatalf("Images() len = %d, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Images()[%d] = %+v, want %+v", i, got[i], want[i])
		}
	}
	if v.Err() != FetchErrorMessage {
		t.Errorf("Err = %q, want %q", v.Err(), FetchErrorMessage)
	}
	if v.Loading() {
		t.Error("view should no longer be loading")
	}
	if v.Empty() {
		t.Error("fallback view should not be empty")
	}
	history := v.History()
	wantHistory := []Phase{PhaseLoading, PhaseErrorFallback, PhaseReady}
	if len(history) != len(wantHistory) {
		t.Fatalf("History = %v, want %v", history, wantHistory)
	}
	for i := range wantHistory {
		if history[i] != wantHistory[i] {
			t.Errorf("History[%d] = %s, want %s", i, history[i], wantHistory[i])
		}
	}
}

func TestView_EmptyListing(t *testing.T) {
	v := NewView(nil)
	v.ApplyFetch(context.Background(), []lister.Descriptor{}, nil)

	if !v.Empty() {
		t.Error("Empty() = false, want true")
	}
	if len(v.Images()) != 0 {
		t.Errorf("Images() = %v, want none (no fallback)", v.Images())
	}
	if v.Err() != "" {
		t.Errorf("Err = %q, want empty", v.Err())
	}
	if v.Phase() != PhaseReady {
		t.Errorf("Phase = %s, want ready", v.Phase())
	}
}

func TestView_OneOfTwoFails(t *testing.T) {
	s := newSurface(10, 16)
	v := NewView(s)
	v.ApplyFetch(context.Background(), []lister.Descriptor{
		{Src: "/a.png", Alt: "a", Title: "a"},
		{Src: "/b.png", Alt: "b", Title: "b"},
	}, nil)

	imgs := v.Images()
	a, b := imgs[0], imgs[1]
	s.heights[b.ID] = 100

	v.ImageFailed(a)
	v.ImageLoaded(b.ID)

	got := v.Images()
	if len(got) != 1 || got[0].Src != "/b.png" {
		t.Fatalf("Images() = %v, want only /b.png", got)
	}
	if !v.Loaded(a.ID) {
		t.Error("failed image should be marked loaded")
	}
	if v.Err() != "" {
		t.Errorf("per-image failure must not set page error, got %q", v.Err())
	}
	if got := v.Span(b.ID); got != masonry.Span(100, 10, 16) {
		t.Errorf("Span(b) = %d, want %d", got, masonry.Span(100, 10, 16))
	}
	if _, ok := v.Spans()[a.ID]; ok {
		t.Error("failed image should not keep a span")
	}
}

func TestView_FailureRecomputesWithoutAnyLoad(t *testing.T) {
	s := newSurface(10, 0)
	v := NewView(s)
	v.ApplyFetch(context.Background(), []lister.Descriptor{
		{Src: "/a.png", Alt: "a"},
		{Src: "/b.png", Alt: "b"},
	}, nil)
	b := v.Images()[1]
	s.heights[b.ID] = 55

	v.ImageFailed(v.Images()[0])
	if got := v.Span(b.ID); got != 6 {
		t.Errorf("Span(b) = %d, want 6 after failure-triggered pass", got)
	}
}

func TestView_AllFailShowsEmpty(t *testing.T) {
	v := NewView(newSurface(10, 16))
	v.ApplyFetch(context.Background(), []lister.Descriptor{{Src: "/a.png", Alt: "a"}}, nil)
	v.ImageFailed(v.Images()[0])

	if !v.Empty() {
		t.Error("Empty() = false after the only image failed")
	}
	if v.Phase() != PhaseReady {
		t.Errorf("Phase = %s, want ready", v.Phase())
	}
}

func TestView_SameAltDistinctSpans(t *testing.T) {
	s := newSurface(10, 0)
	v := NewView(s)
	v.ApplyFetch(context.Background(), []lister.Descriptor{
		{Src: "/cat.jpg", Alt: "cat"},
		{Src: "/cat.png", Alt: "cat"},
	}, nil)
	imgs := v.Images()
	if imgs[0].ID == imgs[1].ID {
		t.Fatalf("IDs collide: %q", imgs[0].ID)
	}
	s.heights[imgs[0].ID] = 100
	s.heights[imgs[1].ID] = 300
	v.ImageLoaded(imgs[0].ID)
	v.ImageLoaded(imgs[1].ID)

	if v.Span(imgs[0].ID) != 10 || v.Span(imgs[1].ID) != 30 {
		t.Errorf("spans = %v, want 10 and 30", v.Spans())
	}
}

func TestView_ResizeRecomputes(t *testing.T) {
	s := newSurface(10, 0)
	v := NewView(s)
	v.ApplyFetch(context.Background(), []lister.Descriptor{{Src: "/a.png", Alt: "a"}}, nil)
	id := v.Images()[0].ID

	s.heights[id] = 100
	v.ImageLoaded(id)
	if v.Span(id) != 10 {
		t.Fatalf("Span = %d, want 10", v.Span(id))
	}

	s.heights[id] = 50
	v.Resize()
	if v.Span(id) != 5 {
		t.Errorf("Span after resize = %d, want 5", v.Span(id))
	}
}

func TestView_ResizeBeforeAnyLoadIsNoop(t *testing.T) {
	s := newSurface(10, 0)
	v := NewView(s)
	v.ApplyFetch(context.Background(), []lister.Descriptor{{Src: "/a.png", Alt: "a"}}, nil)
	v.Resize()
	if len(v.Spans()) != 0 {
		t.Errorf("Spans = %v, want none before any load", v.Spans())
	}
}

func TestView_UnmountedContainerIsNoop(t *testing.T) {
	s := newSurface(10, 0)
	s.mounted = false
	v := NewView(s)
	v.ApplyFetch(context.Background(), []lister.Descriptor{{Src: "/a.png", Alt: "a"}}, nil)
	id := v.Images()[0].ID
	v.ImageLoaded(id)

	if len(v.Spans()) != 0 {
		t.Errorf("Spans = %v, want none while unmounted", v.Spans())
	}
	if v.Span(id) != 1 {
		t.Errorf("Span default = %d, want 1", v.Span(id))
	}
}

func TestView_LoadTwiceIsHarmless(t *testing.T) {
	s := newSurface(10, 0)
	v := NewView(s)
	v.ApplyFetch(context.Background(), []lister.Descriptor{{Src: "/a.png", Alt: "a"}}, nil)
	id := v.Images()[0].ID
	s.heights[id] = 42

	v.ImageLoaded(id)
	v.ImageLoaded(id)
	if v.Span(id) != 5 {
		t.Errorf("Span = %d, want 5", v.Span(id))
	}
}

func TestView_SettlesOnce(t *testing.T) {
	v := NewView(nil)
	if !v.ApplyFetch(context.Background(), []lister.Descriptor{{Src: "/a.png"}}, nil) {
		t.Fatal("first ApplyFetch() = false")
	}
	if v.ApplyFetch(context.Background(), nil, errors.New("late")) {
		t.Error("second ApplyFetch() = true, want false")
	}
	if v.Err() != "" || len(v.Images()) != 1 {
		t.Errorf("second settlement leaked into state: err=%q images=%v", v.Err(), v.Images())
	}
}

func TestView_FetchAfterUnmountIgnored(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	v := NewView(nil)
	if v.ApplyFetch(ctx, []lister.Descriptor{{Src: "/a.png"}}, nil) {
		t.Error("ApplyFetch() after cancel = true, want false")
	}
	if !v.Loading() || len(v.Images()) != 0 {
		t.Error("cancelled fetch must not mutate the view")
	}
}
