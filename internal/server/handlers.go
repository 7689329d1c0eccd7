package server

import (
	"encoding/json"
	"io/fs"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"

	"github.com/jfoltran/gallery/internal/lister"
	"github.com/jfoltran/gallery/internal/metrics"
)

// listingFailedMessage is the only detail a client gets about a ListingFailure.
const listingFailedMessage = "Failed to fetch images"

type handlers struct {
	lister    *lister.Lister
	collector *metrics.Collector
	observer  metrics.Observer
	logger    zerolog.Logger
}

type errorResponse struct {
	Error string `json:"error"`
}

func (h *handlers) images(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	imgs, err := h.lister.List()
	h.observer.RecordListing(time.Since(start), len(imgs), err)
	if err != nil {
		writeJSONStatus(w, http.StatusInternalServerError, errorResponse{Error: listingFailedMessage})
		return
	}
	writeJSON(w, imgs)
}

func (h *handlers) status(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, h.collector.Snapshot())
}

func (h *handlers) logs(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, h.collector.Logs())
}

// withPlaceholder serves the embedded placeholder image when the asset
// root does not carry its own.
func withPlaceholder(dir string, dist fs.FS, next http.Handler) http.Handler {
	embedded := http.FileServer(http.FS(dist))
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/placeholder.svg" {
			if _, err := os.Stat(filepath.Join(dir, "placeholder.svg")); err != nil {
				embedded.ServeHTTP(w, r)
				return
			}
		}
		next.ServeHTTP(w, r)
	})
}

func writeJSON(w http.ResponseWriter, v any) {
	writeJSONStatus(w, http.StatusOK, v)
}

func writeJSONStatus(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}
