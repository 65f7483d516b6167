package inline

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
	"unicode"

	"github.com/srwiley/oksvg"
	"golang.org/x/net/html/charset"
)

// CSS pixels per unit of an absolute SVG length.
var svgUnits = map[string]float64{
	"":   1,
	"px": 1,
	"pt": 96.0 / 72,
	"pc": 16,
	"mm": 96 / 25.4,
	"cm": 96 / 2.54,
	"in": 96,
}

// svgRoot holds the sizing attributes of the outermost <svg> element.
type svgRoot struct {
	width, height string
	viewBox       [4]float64
	hasViewBox    bool
}

func readSVGRoot(data []byte) (svgRoot, error) {
	dec := xml.NewDecoder(bytes.NewReader(data))
	dec.CharsetReader = charset.NewReaderLabel
	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			return svgRoot{}, errors.New("no root element")
		}
		if err != nil {
			return svgRoot{}, err
		}
		se, ok := tok.(xml.StartElement)
		if !ok {
			continue
		}
		if se.Name.Local != "svg" {
			return svgRoot{}, fmt.Errorf("root element is <%s>", se.Name.Local)
		}

		var r svgRoot
		for _, a := range se.Attr {
			switch a.Name.Local {
			case "width":
				r.width = strings.TrimSpace(a.Value)
			case "height":
				r.height = strings.TrimSpace(a.Value)
			case "viewBox":
				r.viewBox, r.hasViewBox = parseViewBox(a.Value)
			}
		}
		return r, nil
	}
}

func parseViewBox(s string) ([4]float64, bool) {
	var vb [4]float64
	fields := strings.FieldsFunc(s, func(r rune) bool { return r == ',' || unicode.IsSpace(r) })
	if len(fields) != 4 {
		return vb, false
	}
	for i, f := range fields {
		v, err := strconv.ParseFloat(f, 64)
		if err != nil {
			return vb, false
		}
		vb[i] = v
	}
	return vb, vb[2] > 0 && vb[3] > 0
}

// svgLength converts an absolute SVG length such as "210mm" to CSS pixels.
// Relative lengths (percentages, em, ex) are not absolute and report false.
func svgLength(s string) (float64, bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	i := len(s)
	for i > 0 && s[i-1] >= 'a' && s[i-1] <= 'z' || i > 0 && s[i-1] == '%' {
		i--
	}
	scale, ok := svgUnits[s[i:]]
	if !ok || i == 0 {
		return 0, false
	}
	v, err := strconv.ParseFloat(s[:i], 64)
	if err != nil || v <= 0 || math.IsInf(v, 0) {
		return 0, false
	}
	return v * scale, true
}

// size returns the intrinsic size in CSS pixels. Absolute width and height
// win; a missing or relative one is derived from the viewBox aspect ratio,
// and with neither the viewBox itself is the size. ignored lists the size
// attributes that could not be used.
func (r svgRoot) size() (w, h float64, ignored []string, err error) {
	w, wok := svgLength(r.width)
	h, hok := svgLength(r.height)
	if r.width != "" && !wok {
		ignored = append(ignored, "width="+strconv.Quote(r.width))
	}
	if r.height != "" && !hok {
		ignored = append(ignored, "height="+strconv.Quote(r.height))
	}

	vw, vh := r.viewBox[2], r.viewBox[3]
	switch {
	case wok && hok:
	case wok && r.hasViewBox:
		h = w * vh / vw
	case hok && r.hasViewBox:
		w = h * vw / vh
	case r.hasViewBox:
		w, h = vw, vh
	default:
		return 0, 0, ignored, fmt.Errorf("no usable size (width %q, height %q, no viewBox)", r.width, r.height)
	}
	return w, h, ignored, nil
}

// decodeSVG parses an SVG document and sizes it the way a browser sizes an
// <img> pointing at it. oksvg stops reading the root element at the first
// relative length, so its viewBox is replaced by the one read here.
// Unsupported elements are dropped without output.
func decodeSVG(data []byte) (*source, error) {
	root, err := readSVGRoot(data)
	if err != nil {
		return nil, fmt.Errorf("svg: %w", err)
	}
	w, h, ignored, err := root.size()
	if err != nil {
		return nil, fmt.Errorf("svg: %w", err)
	}

	icon, err := oksvg.ReadIconStream(bytes.NewReader(data), oksvg.IgnoreErrorMode)
	if err != nil {
		return nil, fmt.Errorf("svg: %w", err)
	}
	if root.hasViewBox {
		icon.ViewBox.X, icon.ViewBox.Y = root.viewBox[0], root.viewBox[1]
		icon.ViewBox.W, icon.ViewBox.H = root.viewBox[2], root.viewBox[3]
	} else {
		// Without a viewBox user units are CSS pixels.
		icon.ViewBox.X, icon.ViewBox.Y = 0, 0
		icon.ViewBox.W, icon.ViewBox.H = w, h
	}

	return &source{
		desc: Descriptor{
			Width:  max(1, int(math.Round(w))),
			Height: max(1, int(math.Round(h))),
			MIME:   mimeSVG,
		},
		icon:     icon,
		warnings: ignored,
	}, nil
}
