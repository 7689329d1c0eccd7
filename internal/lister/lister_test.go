package lister

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

func touch(t *testing.T, dir string, names ...string) {
	t.Helper()
	for _, n := range names {
		if err := os.WriteFile(filepath.Join(dir, n), []byte("x"), 0o644); err != nil {
			t.Fatalf("WriteFile(%s) error: %v", n, err)
		}
	}
}

func TestList_FiltersByExtension(t *testing.T) {
	dir := t.TempDir()
	touch(t, dir, "photo.JPG", "notes.txt", "a.png", "b.Jpeg", "c.gif", "d.svg", "e.webp", "noext")
	if err := os.Mkdir(filepath.Join(dir, "nested.png"), 0o755); err != nil {
		t.Fatal(err)
	}

	imgs, err := List(dir)
	if err != nil {
		t.Fatalf("List() error: %v", err)
	}

	got := make(map[string]Descriptor)
	for _, d := range imgs {
		got[d.Src] = d
	}
	for _, want := range []string{"/photo.JPG", "/a.png", "/b.Jpeg", "/c.gif", "/d.svg"} {
		if _, ok := got[want]; !ok {
			t.Errorf("missing %s in %v", want, imgs)
		}
	}
	for _, unwanted := range []string{"/notes.txt", "/e.webp", "/noext", "/nested.png"} {
		if _, ok := got[unwanted]; ok {
			t.Errorf("%s should be excluded", unwanted)
		}
	}
	if len(imgs) != 5 {
		t.Errorf("len = %d, want 5", len(imgs))
	}
}

func TestList_DescriptorFields(t *testing.T) {
	dir := t.TempDir()
	touch(t, dir, "sunset.png")

	imgs, err := List(dir)
	if err != nil {
		t.Fatalf("List() error: %v", err)
	}
	if len(imgs) != 1 {
		t.Fatalf("len = %d, want 1", len(imgs))
	}
	want := Descriptor{ID: "sunset-png", Src: "/sunset.png", Alt: "sunset", Title: "sunset"}
	if imgs[0] != want {
		t.Errorf("descriptor = %+v, want %+v", imgs[0], want)
	}
}

func TestList_EmptyIsNotError(t *testing.T) {
	dir := t.TempDir()
	touch(t, dir, "readme.md")

	imgs, err := New(dir, zerolog.Nop()).List()
	if err != nil {
		t.Fatalf("List() error: %v", err)
	}
	if imgs == nil {
		t.Fatal("List() returned nil slice, want empty")
	}
	if len(imgs) != 0 {
		t.Errorf("len = %d, want 0", len(imgs))
	}
}

func TestList_UnreadableDir(t *testing.T) {
	_, err := List(filepath.Join(t.TempDir(), "missing"))
	if err == nil {
		t.Fatal("expected error for missing dir")
	}
	if !errors.Is(err, ErrListing) {
		t.Errorf("errors.Is(err, ErrListing) = false for %v", err)
	}
	if !errors.Is(err, os.ErrNotExist) {
		t.Errorf("cause should be preserved, got %v", err)
	}
	var le *ListingError
	if !errors.As(err, &le) {
		t.Fatalf("errors.As(*ListingError) failed for %T", err)
	}
}

func TestList_SameBaseNameGetsDistinctIDs(t *testing.T) {
	dir := t.TempDir()
	touch(t, dir, "cat.jpg", "cat.png")

	imgs, err := List(dir)
	if err != nil {
		t.Fatalf("List() error: %v", err)
	}
	if len(imgs) != 2 {
		t.Fatalf("len = %d, want 2", len(imgs))
	}
	if imgs[0].Alt != imgs[1].Alt {
		t.Errorf("alts should both be cat, got %q and %q", imgs[0].Alt, imgs[1].Alt)
	}
	if imgs[0].ID == imgs[1].ID {
		t.Errorf("IDs collide: %q", imgs[0].ID)
	}
}

func TestSlug(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"/cat.png", "cat-png"},
		{"/Cat Photo.PNG", "cat-photo-png"},
		{"a--b__c.gif", "a-b-c-gif"},
		{"/../x.svg", "x-svg"},
		{"", "image"},
		{"/???", "image"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := Slug(tt.in); got != tt.want {
				t.Errorf("Slug(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestAssignIDs_Collisions(t *testing.T) {
	imgs := []Descriptor{
		{Src: "/a b.png"},
		{Src: "/a-b.png"},
		{Src: "/a_b.png"},
		{ID: "keep", Src: "/z.png"},
		{ID: "keep", Src: "/y.png"},
		{Alt: "Fallback 1"},
	}
	AssignIDs(imgs)

	want := []string{"a-b-png", "a-b-png-2", "a-b-png-3", "keep", "y-png", "fallback-1"}
	for i, w := range want {
		if imgs[i].ID != w {
			t.Errorf("imgs[%d].ID = %q, want %q", i, imgs[i].ID, w)
		}
	}
}

func TestEligible(t *testing.T) {
	tests := map[string]bool{
		"a.jpg": true, "a.JPEG": true, "a.Png": true, "a.gif": true, "a.svg": true,
		"a.txt": false, "a": false, ".png": true, "a.png.bak": false,
	}
	for name, want := range tests {
		if got := Eligible(name); got != want {
			t.Errorf("Eligible(%q) = %v, want %v", name, got, want)
		}
	}
}

func TestWatcher_PublishesOnChange(t *testing.T) {
	dir := t.TempDir()
	w := NewWatcher(New(dir, zerolog.Nop()), zerolog.Nop())
	ch := w.Subscribe()
	defer w.Unsubscribe(ch)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	errCh := make(chan error, 1)
	go func() { errCh <- w.Run(ctx) }()

	// Give fsnotify a moment to register the watch.
	time.Sleep(250 * time.Millisecond)
	touch(t, dir, "new.png", "ignored.txt")

	select {
	case imgs := <-ch:
		if len(imgs) != 1 || imgs[0].Src != "/new.png" {
			t.Errorf("published %v, want [/new.png]", imgs)
		}
	case <-ctx.Done():
		t.Fatal("no listing published before timeout")
	}

	cancel()
	if err := <-errCh; err != nil {
		t.Errorf("Run() error: %v", err)
	}
}

func TestWatcher_PublishKeepsNewest(t *testing.T) {
	w := NewWatcher(New(t.TempDir(), zerolog.Nop()), zerolog.Nop())
	ch := w.Subscribe()

	w.publish([]Descriptor{{Src: "/old.png"}})
	w.publish([]Descriptor{{Src: "/new.png"}})

	got := <-ch
	if len(got) != 1 || got[0].Src != "/new.png" {
		t.Errorf("got %v, want newest listing", got)
	}
}
