package gallery

import (
	"bufio"
	"bytes"
	"context"
	"encoding/xml"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"net/http"
	"strconv"
	"strings"
)

// maxProbeBytes bounds how much of an image body is read to find its size.
const maxProbeBytes = 4 << 20

// Dimensions is the natural pixel size of an image.
type Dimensions struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

// Valid reports whether both sides are positive.
func (d Dimensions) Valid() bool { return d.Width > 0 && d.Height > 0 }

// HeightAt returns the height the image takes when scaled to width,
// preserving aspect ratio. Rounds up so content is never clipped.
func (d Dimensions) HeightAt(width int) int {
	if !d.Valid() || width <= 0 {
		return 0
	}
	return (width*d.Height + d.Width - 1) / d.Width
}

// Probe loads the image at src and returns its natural size. Any failure,
// including an undecodable body, is a load failure for that image.
func (c *Client) Probe(ctx context.Context, src string) (Dimensions, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.URL(src), nil)
	if err != nil {
		return Dimensions{}, fmt.Errorf("load %s: %w", src, err)
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return Dimensions{}, fmt.Errorf("load %s: %w", src, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return Dimensions{}, fmt.Errorf("load %s: status %d", src, resp.StatusCode)
	}

	d, err := DecodeDimensions(io.LimitReader(resp.Body, maxProbeBytes))
	if err != nil {
		return Dimensions{}, fmt.Errorf("load %s: %w", src, err)
	}
	return d, nil
}

// DecodeDimensions reads the natural size of a PNG, JPEG, GIF or SVG image.
func DecodeDimensions(r io.Reader) (Dimensions, error) {
	br := bufio.NewReader(r)
	head, _ := br.Peek(512)
	if looksLikeSVG(head) {
		return decodeSVG(br)
	}
	cfg, _, err := image.DecodeConfig(br)
	if err != nil {
		return Dimensions{}, fmt.Errorf("decode image: %w", err)
	}
	return Dimensions{Width: cfg.Width, Height: cfg.Height}, nil
}

func looksLikeSVG(head []byte) bool {
	return bytes.Contains(bytes.ToLower(head), []byte("<svg"))
}

func decodeSVG(r io.Reader) (Dimensions, error) {
	dec := xml.NewDecoder(r)
	for {
		tok, err := dec.Token()
		if err != nil {
			if errors.Is(err, io.EOF) {
				return Dimensions{}, errors.New("decode svg: no svg element")
			}
			return Dimensions{}, fmt.Errorf("decode svg: %w", err)
		}
		start, ok := tok.(xml.StartElement)
		if !ok {
			continue
		}
		if start.Name.Local != "svg" {
			return Dimensions{}, fmt.Errorf("decode svg: unexpected root <%s>", start.Name.Local)
		}
		return svgSize(start.Attr)
	}
}

func svgSize(attrs []xml.Attr) (Dimensions, error) {
	var w, h float64
	var viewBox string
	for _, a := range attrs {
		switch a.Name.Local {
		case "width":
			w = svgLength(a.Value)
		case "height":
			h = svgLength(a.Value)
		case "viewBox":
			viewBox = a.Value
		}
	}
	if w > 0 && h > 0 {
		return Dimensions{Width: int(w + 0.5), Height: int(h + 0.5)}, nil
	}

	fields := strings.FieldsFunc(viewBox, func(r rune) bool { return r == ' ' || r == ',' })
	if len(fields) == 4 {
		vw, errW := strconv.ParseFloat(fields[2], 64)
		vh, errH := strconv.ParseFloat(fields[3], 64)
		if errW == nil && errH == nil && vw > 0 && vh > 0 {
			switch {
			case w > 0:
				h = w * vh / vw
			case h > 0:
				w = h * vw / vh
			default:
				w, h = vw, vh
			}
			return Dimensions{Width: int(w + 0.5), Height: int(h + 0.5)}, nil
		}
	}
	return Dimensions{}, errors.New("decode svg: no usable width/height or viewBox")
}

// svgLength parses absolute lengths such as "300", "300px" or "12.5".
// Percentages and relative units yield 0.
func svgLength(v string) float64 {
	v = strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(v), "px"))
	f, err := strconv.ParseFloat(v, 64)
	if err != nil || f < 0 {
		return 0
	}
	return f
}
