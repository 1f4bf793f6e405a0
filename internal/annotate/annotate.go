// Package annotate draws layout warnings over a slide screenshot.
//
// Coordinates in a layout report are CSS pixels relative to the document
// origin. Screenshots are taken at a device scale factor of one, so report
// rectangles map onto image pixels directly.
package annotate

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"math"
	"strconv"

	"golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"github.com/nao1215/slideshot/internal/geometry"
	"github.com/nao1215/slideshot/internal/model"
)

// ErrNoReport is returned when Overlay is called without a report.
var ErrNoReport = errors.New("annotate: no report")

// Palette used for outlines and labels.
var (
	CanvasColor     = color.NRGBA{R: 37, G: 99, B: 235, A: 255}
	OverflowColor   = color.NRGBA{R: 220, G: 38, B: 38, A: 255}
	ClippedColor    = color.NRGBA{R: 234, G: 88, B: 12, A: 255}
	OverlapColor    = color.NRGBA{R: 192, G: 38, B: 211, A: 255}
	StructuralColor = color.NRGBA{R: 127, G: 29, B: 29, A: 255}
)

const (
	labelPadding = 2
	fillAlpha    = 72
)

// Overlayer renders annotated screenshots.
type Overlayer struct {
	stroke int
	labels bool
	face   font.Face
}

// Option configures an Overlayer.
type Option func(*Overlayer)

// WithStroke sets the outline thickness in pixels.
func WithStroke(px int) Option {
	return func(o *Overlayer) {
		if px > 0 {
			o.stroke = px
		}
	}
}

// WithLabels toggles the kind labels drawn next to each outline.
func WithLabels(enabled bool) Option {
	return func(o *Overlayer) {
		o.labels = enabled
	}
}

// New creates an Overlayer with 2px outlines and labels enabled.
func New(opts ...Option) *Overlayer {
	o := &Overlayer{
		stroke: 2,
		labels: true,
		face:   basicfont.Face7x13,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Overlay decodes a PNG screenshot, draws the canvas bounds and every
// warning of report onto it and returns the encoded result.
func Overlay(pngData []byte, report *model.LayoutReport) ([]byte, error) {
	return New().Overlay(pngData, report)
}

// Overlay draws report onto the screenshot pngData.
func (o *Overlayer) Overlay(pngData []byte, report *model.LayoutReport) ([]byte, error) {
	if report == nil {
		return nil, ErrNoReport
	}

	src, err := png.Decode(bytes.NewReader(pngData))
	if err != nil {
		return nil, fmt.Errorf("annotate: decode screenshot: %w", err)
	}

	img := image.NewRGBA(src.Bounds())
	draw.Draw(img, img.Bounds(), src, src.Bounds().Min, draw.Src)

	if report.CanvasBounds != nil {
		o.outline(img, toImageRect(report.CanvasBounds.Rect), CanvasColor)
	}

	structural := 0
	for i, w := range report.Warnings {
		label := w.Kind.String() + " #" + strconv.Itoa(i+1)
		switch w.Kind {
		case model.WarningOverflow:
			o.markWords(img, report, w, OverflowColor, label)
		case model.WarningClipped:
			o.markWords(img, report, w, ClippedColor, label)
			if w.Detail.Visible != nil {
				o.fill(img, toImageRect(*w.Detail.Visible), ClippedColor)
			}
		case model.WarningOverlap:
			o.markWords(img, report, w, OverlapColor, label)
			if w.Detail.Intersection != nil {
				o.fill(img, toImageRect(*w.Detail.Intersection), OverlapColor)
			}
		case model.WarningStructural:
			o.banner(img, structural, w.Detail.Message)
			structural++
		}
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("annotate: encode overlay: %w", err)
	}
	return buf.Bytes(), nil
}

func (o *Overlayer) markWords(img *image.RGBA, report *model.LayoutReport, w model.Warning, c color.NRGBA, label string) {
	words := report.WordsOf(w)
	for i, word := range words {
		r := toImageRect(word.Rect)
		o.outline(img, r, c)
		if o.labels && i == 0 {
			o.label(img, r, c, label)
		}
	}
}

// outline strokes the inside edge of r.
func (o *Overlayer) outline(img *image.RGBA, r image.Rectangle, c color.NRGBA) {
	if r.Empty() {
		return
	}
	s := o.stroke
	u := image.NewUniform(c)
	edges := []image.Rectangle{
		image.Rect(r.Min.X, r.Min.Y, r.Max.X, r.Min.Y+s),
		image.Rect(r.Min.X, r.Max.Y-s, r.Max.X, r.Max.Y),
		image.Rect(r.Min.X, r.Min.Y, r.Min.X+s, r.Max.Y),
		image.Rect(r.Max.X-s, r.Min.Y, r.Max.X, r.Max.Y),
	}
	for _, e := range edges {
		draw.Draw(img, e.Intersect(img.Bounds()).Intersect(r), u, image.Point{}, draw.Src)
	}
}

func (o *Overlayer) fill(img *image.RGBA, r image.Rectangle, c color.NRGBA) {
	tint := c
	tint.A = fillAlpha
	draw.Draw(img, r.Intersect(img.Bounds()), image.NewUniform(tint), image.Point{}, draw.Over)
}

// label draws text on a solid box just above r, or inside it when r
// touches the top of the image.
func (o *Overlayer) label(img *image.RGBA, r image.Rectangle, c color.NRGBA, text string) {
	metrics := o.face.Metrics()
	height := metrics.Height.Ceil() + 2*labelPadding
	width := font.MeasureString(o.face, text).Ceil() + 2*labelPadding

	x := r.Min.X
	y := r.Min.Y - height
	if y < img.Bounds().Min.Y {
		y = r.Min.Y
	}
	if x+width > img.Bounds().Max.X {
		x = img.Bounds().Max.X - width
	}
	if x < img.Bounds().Min.X {
		x = img.Bounds().Min.X
	}

	o.text(img, image.Rect(x, y, x+width, y+height), c, text)
}

// banner draws a structural message across the top left of the image.
func (o *Overlayer) banner(img *image.RGBA, row int, message string) {
	metrics := o.face.Metrics()
	height := metrics.Height.Ceil() + 2*labelPadding
	text := "structural: " + message
	width := font.MeasureString(o.face, text).Ceil() + 2*labelPadding

	y := img.Bounds().Min.Y + row*height
	x := img.Bounds().Min.X
	o.text(img, image.Rect(x, y, x+width, y+height), StructuralColor, text)
}

func (o *Overlayer) text(img *image.RGBA, box image.Rectangle, bg color.NRGBA, text string) {
	draw.Draw(img, box.Intersect(img.Bounds()), image.NewUniform(bg), image.Point{}, draw.Src)

	d := &font.Drawer{
		Dst:  img,
		Src:  image.White,
		Face: o.face,
		Dot:  fixed.P(box.Min.X+labelPadding, box.Min.Y+labelPadding+o.face.Metrics().Ascent.Ceil()),
	}
	d.DrawString(text)
}

// toImageRect converts a CSS-pixel rectangle into the smallest enclosing
// pixel rectangle.
func toImageRect(r geometry.Rect) image.Rectangle {
	return image.Rect(
		int(math.Floor(r.Left())),
		int(math.Floor(r.Top())),
		int(math.Ceil(r.Right())),
		int(math.Ceil(r.Bottom())),
	)
}
