package lister

import (
	"errors"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/rs/zerolog"
)

// ErrListing is the sentinel matched by every ListingError.
var ErrListing = errors.New("listing failed")

// Extensions is the allow-list of image file extensions, lower-case and
// without the leading dot.
var Extensions = []string{"jpg", "jpeg", "png", "gif", "svg"}

// Descriptor describes one displayable image.
type Descriptor struct {
	ID    string `json:"id"`
	Src   string `json:"src"`
	Alt   string `json:"alt"`
	Title string `json:"title"`
}

// ListingError reports that the assets directory could not be read.
type ListingError struct {
	Dir string
	Err error
}

func (e *ListingError) Error() string {
	return fmt.Sprintf("read assets dir %s: %v", e.Dir, e.Err)
}

func (e *ListingError) Unwrap() []error { return []error{ErrListing, e.Err} }

// Lister enumerates eligible images in a single directory.
type Lister struct {
	dir    string
	logger zerolog.Logger
}

// New creates a Lister for dir.
func New(dir string, logger zerolog.Logger) *Lister {
	return &Lister{
		dir:    dir,
		logger: logger.With().Str("component", "lister").Logger(),
	}
}

// Dir returns the directory being listed.
func (l *Lister) Dir() string { return l.dir }

// List reads the directory once and returns a descriptor for every eligible
// file. An empty directory yields an empty, non-nil slice.
func (l *Lister) List() ([]Descriptor, error) {
	imgs, err := List(l.dir)
	if err != nil {
		l.logger.Err(err).Msg("error reading assets directory")
		return nil, err
	}
	if len(imgs) == 0 {
		l.logger.Warn().Str("dir", l.dir).Msg("no images found in the assets directory")
	}
	return imgs, nil
}

// List is the stateless form of Lister.List.
func List(dir string) ([]Descriptor, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, &ListingError{Dir: dir, Err: err}
	}

	imgs := make([]Descriptor, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() || !Eligible(e.Name()) {
			continue
		}
		imgs = append(imgs, describe(e.Name()))
	}
	AssignIDs(imgs)
	return imgs, nil
}

// Eligible reports whether name carries an allow-listed extension,
// compared case-insensitively.
func Eligible(name string) bool {
	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(name)), ".")
	if ext == "" {
		return false
	}
	for _, allowed := range Extensions {
		if ext == allowed {
			return true
		}
	}
	return false
}

func describe(name string) Descriptor {
	base := strings.TrimSuffix(name, filepath.Ext(name))
	return Descriptor{
		Src:   "/" + name,
		Alt:   base,
		Title: base,
	}
}

// AssignIDs gives every descriptor an identifier unique within imgs.
// Existing IDs are kept unless an earlier entry already claimed them.
// Missing IDs are derived from Src (or Alt when Src is empty) and suffixed
// with -2, -3, ... on collision.
func AssignIDs(imgs []Descriptor) {
	taken := make(map[string]bool, len(imgs))
	for i := range imgs {
		id := imgs[i].ID
		if id == "" || taken[id] {
			src := imgs[i].Src
			if src == "" {
				src = imgs[i].Alt
			}
			id = uniq(Slug(src), taken)
		}
		taken[id] = true
		imgs[i].ID = id
	}
}

func uniq(base string, taken map[string]bool) string {
	if !taken[base] {
		return base
	}
	for n := 2; ; n++ {
		id := base + "-" + strconv.Itoa(n)
		if !taken[id] {
			return id
		}
	}
}

// Slug turns a root-relative path into a lower-case identifier made of
// letters, digits and single dashes. "/Cat Photo.PNG" becomes "cat-photo-png".
func Slug(p string) string {
	p = strings.ToLower(path.Clean("/" + p))
	var b strings.Builder
	dash := false
	for _, r := range p {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
			dash = false
			continue
		}
		if !dash && b.Len() > 0 {
			b.WriteByte('-')
			dash = true
		}
	}
	s := strings.TrimSuffix(b.String(), "-")
	if s == "" {
		return "image"
	}
	return s
}
