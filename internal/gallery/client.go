package gallery

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/jfoltran/gallery/internal/lister"
)

// ErrFetch is the sentinel matched by every FetchError.
var ErrFetch = errors.New("fetch failed")

// FetchError reports that the image listing could not be obtained: the
// request failed, the body was not a listing, or the server answered with
// an error payload.
type FetchError struct {
	Op  string
	Err error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("fetch images: %s: %v", e.Op, e.Err)
}

func (e *FetchError) Unwrap() []error { return []error{ErrFetch, e.Err} }

// Fetcher obtains the image listing.
type Fetcher interface {
	Fetch(ctx context.Context) ([]lister.Descriptor, error)
}

// Client fetches listings and image bytes from a gallery server.
type Client struct {
	base string
	http *http.Client
}

// NewClient creates a Client for the server at base, e.g.
// "http://localhost:7654". A nil hc gets a client with a 10s timeout.
func NewClient(base string, hc *http.Client) *Client {
	if hc == nil {
		hc = &http.Client{Timeout: 10 * time.Second}
	}
	return &Client{base: strings.TrimRight(base, "/"), http: hc}
}

// Base returns the server address.
func (c *Client) Base() string { return c.base }

// URL resolves a root-relative src against the server.
func (c *Client) URL(src string) string {
	if strings.HasPrefix(src, "http://") || strings.HasPrefix(src, "https://") {
		return src
	}
	if !strings.HasPrefix(src, "/") {
		src = "/" + src
	}
	return c.base + src
}

type errorPayload struct {
	Error string `json:"error"`
}

// Fetch GETs /api/images. A JSON array is a successful listing, possibly
// empty; anything else, including an object carrying "error", is a
// FetchError.
func (c *Client) Fetch(ctx context.Context) ([]lister.Descriptor, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.URL("/api/images"), nil)
	if err != nil {
		return nil, &FetchError{Op: "build request", Err: err}
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, &FetchError{Op: "request", Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &FetchError{Op: "read body", Err: err}
	}
	return decodeListing(resp.StatusCode, body)
}

func decodeListing(status int, body []byte) ([]lister.Descriptor, error) {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) > 0 && trimmed[0] == '{' {
		var p errorPayload
		if err := json.Unmarshal(trimmed, &p); err == nil && p.Error != "" {
			return nil, &FetchError{Op: "server", Err: errors.New(p.Error)}
		}
	}
	if status < 200 || status > 299 {
		return nil, &FetchError{Op: "status", Err: fmt.Errorf("unexpected status %d", status)}
	}

	var imgs []lister.Descriptor
	if err := json.Unmarshal(trimmed, &imgs); err != nil {
		return nil, &FetchError{Op: "decode", Err: err}
	}
	if imgs == nil {
		return nil, &FetchError{Op: "decode", Err: errors.New("listing is null")}
	}
	lister.AssignIDs(imgs)
	return imgs, nil
}
