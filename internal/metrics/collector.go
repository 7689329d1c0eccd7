package metrics

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
)

// Snapshot is the server's listing activity at a point in time.
type Snapshot struct {
	Timestamp time.Time `json:"timestamp"`
	AssetsDir string    `json:"assets_dir"`
	UptimeSec float64   `json:"uptime_sec"`

	Listings       int64   `json:"listings"`
	ListingsFailed int64   `json:"listings_failed"`
	Images         int     `json:"images"`
	LastListingMs  float64 `json:"last_listing_ms"`
	ListingsPerMin float64 `json:"listings_per_min"`

	WSClients int `json:"ws_clients"`

	ErrorCount int    `json:"error_count"`
	LastError  string `json:"last_error,omitempty"`
}

// LogEntry represents a log line captured for the API.
type LogEntry struct {
	Time    time.Time         `json:"time"`
	Level   string            `json:"level"`
	Message string            `json:"message"`
	Fields  map[string]string `json:"fields,omitempty"`
}

// Observer receives listing telemetry. Collector and PrometheusObserver
// both implement it.
type Observer interface {
	RecordListing(duration time.Duration, images int, err error)
}

// Collector aggregates listing metrics and recent logs for the HTTP API.
type Collector struct {
	logger    zerolog.Logger
	assetsDir string
	startedAt time.Time

	mu            sync.RWMutex
	images        int
	lastListing   time.Duration
	wsClients     int
	listingWindow *slidingWindow

	listings       atomic.Int64
	listingsFailed atomic.Int64
	errorCount     atomic.Int64
	lastError      atomic.Value // string

	logMu  sync.Mutex
	logs   []LogEntry
	logCap int
}

// NewCollector creates a new Collector for the given assets directory.
func NewCollector(assetsDir string, logger zerolog.Logger) *Collector {
	return &Collector{
		logger:        logger.With().Str("component", "metrics").Logger(),
		assetsDir:     assetsDir,
		startedAt:     time.Now(),
		listingWindow: newSlidingWindow(60 * time.Second),
		logs:          make([]LogEntry, 0, 500),
		logCap:        500,
	}
}

// RecordListing records one directory scan.
func (c *Collector) RecordListing(duration time.Duration, images int, err error) {
	c.listings.Add(1)
	c.listingWindow.Add(time.Now(), 1)
	if err != nil {
		c.listingsFailed.Add(1)
		c.RecordError(err)
		return
	}
	c.logger.Debug().Int("images", images).Dur("took", duration).Msg("listing recorded")
	c.mu.Lock()
	c.images = images
	c.lastListing = duration
	c.mu.Unlock()
}

// SetWSClients updates the connected websocket client count.
func (c *Collector) SetWSClients(n int) {
	c.mu.Lock()
	c.wsClients = n
	c.mu.Unlock()
}

// RecordError increments the error count and stores the last error message.
func (c *Collector) RecordError(err error) {
	c.errorCount.Add(1)
	if err != nil {
		c.lastError.Store(err.Error())
	}
}

// AddLog appends a log entry to the ring buffer.
func (c *Collector) AddLog(entry LogEntry) {
	c.logMu.Lock()
	defer c.logMu.Unlock()
	if len(c.logs) >= c.logCap {
		// Shift buffer: drop oldest quarter.
		n := c.logCap / 4
		copy(c.logs, c.logs[n:])
		c.logs = c.logs[:len(c.logs)-n]
	}
	c.logs = append(c.logs, entry)
}

// Logs returns a copy of recent log entries.
func (c *Collector) Logs() []LogEntry {
	c.logMu.Lock()
	defer c.logMu.Unlock()
	out := make([]LogEntry, len(c.logs))
	copy(out, c.logs)
	return out
}

// Snapshot returns the current metrics state (thread-safe).
func (c *Collector) Snapshot() Snapshot {
	c.mu.RLock()
	defer c.mu.RUnlock()

	var lastErr string
	if v := c.lastError.Load(); v != nil {
		lastErr = v.(string)
	}

	now := time.Now()
	return Snapshot{
		Timestamp:      now,
		AssetsDir:      c.assetsDir,
		UptimeSec:      now.Sub(c.startedAt).Seconds(),
		Listings:       c.listings.Load(),
		ListingsFailed: c.listingsFailed.Load(),
		Images:         c.images,
		LastListingMs:  float64(c.lastListing.Microseconds()) / 1000,
		ListingsPerMin: c.listingWindow.Rate() * 60,
		WSClients:      c.wsClients,
		ErrorCount:     int(c.errorCount.Load()),
		LastError:      lastErr,
	}
}

// --- Sliding window for request rate ---

type windowEntry struct {
	time  time.Time
	value float64
}

type slidingWindow struct {
	mu      sync.Mutex
	entries []windowEntry
	window  time.Duration
}

func newSlidingWindow(d time.Duration) *slidingWindow {
	return &slidingWindow{
		entries: make([]windowEntry, 0, 128),
		window:  d,
	}
}

func (w *slidingWindow) Add(t time.Time, val float64) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.entries = append(w.entries, windowEntry{time: t, value: val})
	w.evict(t)
}

func (w *slidingWindow) Rate() float64 {
	w.mu.Lock()
	defer w.mu.Unlock()
	now := time.Now()
	w.evict(now)
	if len(w.entries) == 0 {
		return 0
	}
	var total float64
	for _, e := range w.entries {
		total += e.value
	}
	elapsed := now.Sub(w.entries[0].time).Seconds()
	if elapsed < 1 {
		elapsed = 1
	}
	return total / elapsed
}

func (w *slidingWindow) evict(now time.Time) {
	cutoff := now.Add(-w.window)
	i := 0
	for i < len(w.entries) && w.entries[i].time.Before(cutoff) {
		i++
	}
	if i > 0 {
		copy(w.entries, w.entries[i:])
		w.entries = w.entries[:len(w.entries)-i]
	}
}
