// Package gallery holds the client-side state of a masonry gallery: the
// fetched descriptor list, per-image load tracking and the span layout.
//
// A View is driven by a single event loop. None of its methods are safe for
// concurrent use.
package gallery

import (
	"context"

	"github.com/jfoltran/gallery/internal/lister"
	"github.com/jfoltran/gallery/internal/masonry"
)

// Phase is the orchestration state of a View.
type Phase string

const (
	PhaseLoading       Phase = "loading"
	PhaseErrorFallback Phase = "error-fallback"
	PhaseReady         Phase = "ready"
)

const (
	// FetchErrorMessage is shown once the listing cannot be fetched.
	FetchErrorMessage = "Failed to load images. Please try again later."
	// EmptyMessage is shown when no image is left to display.
	EmptyMessage = "No images to display. Please check your connection and try again."
	// PlaceholderSrc is the resource used by every fallback descriptor.
	PlaceholderSrc = "/placeholder.svg"
)

// FallbackImages returns the fixed set shown after a failed fetch.
func FallbackImages() []lister.Descriptor {
	return []lister.Descriptor{
		{ID: "fallback-1", Src: PlaceholderSrc, Alt: "Fallback 1", Title: "Fallback 1"},
		{ID: "fallback-2", Src: PlaceholderSrc, Alt: "Fallback 2", Title: "Fallback 2"},
		{ID: "fallback-3", Src: PlaceholderSrc, Alt: "Fallback 3", Title: "Fallback 3"},
	}
}

// View is the state of one mounted gallery.
type View struct {
	container masonry.Container

	phase   Phase
	history []Phase
	settled bool
	images  []lister.Descriptor
	spans   map[string]int
	loaded  map[string]struct{}
	errMsg  string
}

// NewView creates a View in the loading phase. container may be nil until
// the rendering surface exists; span computation is a no-op meanwhile.
func NewView(container masonry.Container) *View {
	return &View{
		container: container,
		phase:     PhaseLoading,
		history:   []Phase{PhaseLoading},
		spans:     map[string]int{},
		loaded:    map[string]struct{}{},
	}
}

// SetContainer attaches the rendering surface.
func (v *View) SetContainer(c masonry.Container) { v.container = c }

// ApplyFetch settles the initial fetch. It returns false and leaves the
// view untouched when ctx is already done or the fetch has settled before.
//
// A failed fetch substitutes FallbackImages and sets the error message. An
// empty successful listing is kept empty so that the empty notice shows.
// Either way the view ends in PhaseReady.
func (v *View) ApplyFetch(ctx context.Context, imgs []lister.Descriptor, err error) bool {
	if ctx.Err() != nil || v.settled {
		return false
	}
	v.settled = true

	if err != nil {
		v.enter(PhaseErrorFallback)
		v.errMsg = FetchErrorMessage
		v.images = FallbackImages()
	} else {
		v.images = make([]lister.Descriptor, len(imgs))
		copy(v.images, imgs)
		lister.AssignIDs(v.images)
	}
	v.enter(PhaseReady)
	return true
}

func (v *View) enter(p Phase) {
	v.phase = p
	v.history = append(v.history, p)
}

// ImageLoaded records a completed load for id and recomputes spans.
func (v *View) ImageLoaded(id string) {
	v.loaded[id] = struct{}{}
	v.recompute()
}

// ImageFailed drops every image sharing d.Src, records d.ID as loaded so
// layout is not held back by it, and recomputes spans. The page-level error
// is not touched.
func (v *View) ImageFailed(d lister.Descriptor) {
	kept := v.images[:0]
	for _, img := range v.images {
		if img.Src != d.Src {
			kept = append(kept, img)
		}
	}
	v.images = kept
	v.loaded[d.ID] = struct{}{}
	v.recompute()
}

// Resize recomputes spans after the viewport changed.
func (v *View) Resize() {
	v.recompute()
}

// recompute rescans every displayed image. It is a no-op while nothing has
// finished loading.
func (v *View) recompute() {
	if len(v.loaded) == 0 {
		return
	}
	ids := make([]string, len(v.images))
	for i, img := range v.images {
		ids[i] = img.ID
	}
	if spans := masonry.Compute(v.container, ids); spans != nil {
		v.spans = spans
	}
}

// Phase returns the current phase.
func (v *View) Phase() Phase { return v.phase }

// History returns every phase the view has entered, in order.
func (v *View) History() []Phase {
	out := make([]Phase, len(v.history))
	copy(out, v.history)
	return out
}

// Loading reports whether the fetch is still outstanding.
func (v *View) Loading() bool { return !v.settled }

// Err returns the user-facing error message, or "".
func (v *View) Err() string { return v.errMsg }

// Empty reports whether a settled view has nothing to display.
func (v *View) Empty() bool { return v.settled && len(v.images) == 0 }

// Images returns a copy of the displayed descriptors in display order.
func (v *View) Images() []lister.Descriptor {
	out := make([]lister.Descriptor, len(v.images))
	copy(out, v.images)
	return out
}

// Spans returns a copy of the current span map.
func (v *View) Spans() map[string]int {
	out := make(map[string]int, len(v.spans))
	for k, s := range v.spans {
		out[k] = s
	}
	return out
}

// Span returns the span of id, or 1 when it has not been measured.
func (v *View) Span(id string) int {
	if s, ok := v.spans[id]; ok {
		return s
	}
	return 1
}

// Loaded reports whether id has completed a load or error event.
func (v *View) Loaded(id string) bool {
	_, ok := v.loaded[id]
	return ok
}
