package gallery

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func serveJSON(status int, body string) *httptest.Server {
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/images" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
}

func TestClientFetch(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		wantErr bool
		wantLen int
	}{
		{name: "listing", status: 200, body: `[{"src":"/a.png","alt":"a","title":"a"}]`, wantLen: 1},
		{name: "empty", status: 200, body: `[]`, wantLen: 0},
		{name: "error payload 500", status: 500, body: `{"error":"Failed to fetch images"}`, wantErr: true},
		{name: "error payload 200", status: 200, body: `{"error":"x"}`, wantErr: true},
		{name: "not json", status: 200, body: `<html>`, wantErr: true},
		{name: "null", status: 200, body: `null`, wantErr: true},
		{name: "bad status", status: 502, body: `[]`, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := serveJSON(tt.status, tt.body)
			defer srv.Close()

			imgs, err := NewClient(srv.URL, nil).Fetch(context.Background())
			if tt.wantErr {
				if err == nil {
					t.Fatalf("Fetch() = %v, want error", imgs)
				}
				if !errors.Is(err, ErrFetch) {
					t.Errorf("errors.Is(err, ErrFetch) = false for %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Fetch() error: %v", err)
			}
			if imgs == nil {
				t.Fatal("Fetch() returned nil slice")
			}
			if len(imgs) != tt.wantLen {
				t.Errorf("len = %d, want %d", len(imgs), tt.wantLen)
			}
		})
	}
}

func TestClientFetch_AssignsMissingIDs(t *testing.T) {
	srv := serveJSON(200, `[{"src":"/cat.png","alt":"cat"},{"src":"/cat.jpg","alt":"cat"}]`)
	defer srv.Close()

	imgs, err := NewClient(srv.URL+"/", nil).Fetch(context.Background())
	if err != nil {
		t.Fatalf("Fetch() error: %v", err)
	}
	if imgs[0].ID != "cat-png" || imgs[1].ID != "cat-jpg" {
		t.Errorf("IDs = %q, %q", imgs[0].ID, imgs[1].ID)
	}
}

func TestClientFetch_Unreachable(t *testing.T) {
	srv := serveJSON(200, `[]`)
	url := srv.URL
	srv.Close()

	_, err := NewClient(url, nil).Fetch(context.Background())
	if !errors.Is(err, ErrFetch) {
		t.Errorf("err = %v, want ErrFetch", err)
	}
}

func TestClientURL(t *testing.T) {
	c := NewClient("http://host:1/", nil)
	tests := map[string]string{
		"/a.png":            "http://host:1/a.png",
		"a.png":             "http://host:1/a.png",
		"https://cdn/x.png": "https://cdn/x.png",
		"/api/images":       "http://host:1/api/images",
	}
	for in, want := range tests {
		if got := c.URL(in); got != want {
			t.Errorf("URL(%q) = %q, want %q", in, got, want)
		}
	}
}

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	img.Set(0, 0, color.White)
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("png.Encode() error: %v", err)
	}
	return buf.Bytes()
}

func TestClientProbe(t *testing.T) {
	data := pngBytes(t, 30, 20)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/ok.png":
			_, _ = w.Write(data)
		case "/broken.png":
			_, _ = w.Write([]byte("not an image"))
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()
	c := NewClient(srv.URL, nil)

	d, err := c.Probe(context.Background(), "/ok.png")
	if err != nil {
		t.Fatalf("Probe() error: %v", err)
	}
	if d != (Dimensions{Width: 30, Height: 20}) {
		t.Errorf("Probe() = %+v, want 30x20", d)
	}

	if _, err := c.Probe(context.Background(), "/broken.png"); err == nil {
		t.Error("Probe(broken) should fail")
	}
	if _, err := c.Probe(context.Background(), "/missing.png"); err == nil || !strings.Contains(err.Error(), "404") {
		t.Errorf("Probe(missing) error = %v, want status 404", err)
	}
}
