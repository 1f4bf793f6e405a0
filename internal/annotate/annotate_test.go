package annotate

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"image/png"
	"testing"

	"github.com/nao1215/slideshot/internal/geometry"
	"github.com/nao1215/slideshot/internal/model"
)

func whitePNG(t *testing.T, w, h int) []byte {
	t.Helper()

	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.White)
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encode: %v", err)
	}
	return buf.Bytes()
}

func decode(t *testing.T, data []byte) image.Image {
	t.Helper()

	img, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("decode overlay: %v", err)
	}
	return img
}

func sameColor(got color.Color, want color.NRGBA) bool {
	return color.NRGBAModel.Convert(got).(color.NRGBA) == want
}

func isWhite(c color.Color) bool {
	r, g, b, _ := c.RGBA()
	return r == 0xffff && g == 0xffff && b == 0xffff
}

func testReport(t *testing.T) *model.LayoutReport {
	t.Helper()

	words := []model.Word{
		{Text: "wide", Rect: geometry.NewRect(20, 40, 60, 30), SourceNode: 1},
		{Text: "left", Rect: geometry.NewRect(100, 40, 40, 20), SourceNode: 2},
		{Text: "right", Rect: geometry.NewRect(120, 50, 40, 20), SourceNode: 3},
		{Text: "escaped", Rect: geometry.NewRect(180, 80, 100, 40), SourceNode: 4},
	}
	bounds := &model.CanvasBounds{Rect: geometry.NewRect(0, 0, 200, 100)}
	warnings := []model.Warning{
		model.NewOverflowWarning(3, geometry.Edges{Right: 80, Bottom: 20}),
		model.NewOverlapWarning(1, 2, geometry.NewRect(120, 50, 20, 10)),
	}
	report, err := model.Assemble(words, bounds, warnings)
	if err != nil {
		t.Fatalf("assemble: %v", err)
	}
	return report
}

func TestOverlay(t *testing.T) {
	t.Parallel()

	out, err := Overlay(whitePNG(t, 200, 120), testReport(t))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	img := decode(t, out)

	if img.Bounds() != image.Rect(0, 0, 200, 120) {
		t.Fatalf("got bounds %v", img.Bounds())
	}

	tests := []struct {
		name  string
		point image.Point
		check func(color.Color) bool
	}{
		{"canvas outline", image.Pt(0, 50), func(c color.Color) bool { return sameColor(c, CanvasColor) }},
		{"overflow outline", image.Pt(181, 110), func(c color.Color) bool { return sameColor(c, OverflowColor) }},
		{"overlap outline", image.Pt(100, 55), func(c color.Color) bool { return sameColor(c, OverlapColor) }},
		{"overlap tint", image.Pt(130, 55), func(c color.Color) bool { return !isWhite(c) }},
		{"untouched word", image.Pt(50, 55), isWhite},
		{"background", image.Pt(60, 110), isWhite},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			c := img.At(tt.point.X, tt.point.Y)
			if !tt.check(c) {
				t.Errorf("unexpected color %v at %v", c, tt.point)
			}
		})
	}
}

func TestOverlayWithoutLabels(t *testing.T) {
	t.Parallel()

	report := testReport(t)
	withLabels, err := New().Overlay(whitePNG(t, 200, 120), report)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	without, err := New(WithLabels(false)).Overlay(whitePNG(t, 200, 120), report)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if bytes.Equal(withLabels, without) {
		t.Error("expected labels to change the image")
	}
}

func TestOverlayStructural(t *testing.T) {
	t.Parallel()

	report, err := model.Assemble(nil, nil, []model.Warning{model.NewStructuralWarning("canvas /html/body/main: not found")})
	if err != nil {
		t.Fatalf("assemble: %v", err)
	}
	out, err := Overlay(whitePNG(t, 400, 50), report)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	img := decode(t, out)
	if !sameColor(img.At(0, 0), StructuralColor) {
		t.Errorf("expected banner at origin, got %v", img.At(0, 0))
	}
	if !isWhite(img.At(399, 49)) {
		t.Error("expected the rest of the image untouched")
	}
}

func TestOverlayErrors(t *testing.T) {
	t.Parallel()

	if _, err := Overlay(whitePNG(t, 10, 10), nil); !errors.Is(err, ErrNoReport) {
		t.Errorf("expected ErrNoReport, got %v", err)
	}
	report, err := model.Assemble(nil, nil, nil)
	if err != nil {
		t.Fatalf("assemble: %v", err)
	}
	if _, err := Overlay([]byte("not a png"), report); err == nil {
		t.Error("expected decode error")
	}
}

func TestToImageRect(t *testing.T) {
	t.Parallel()

	got := toImageRect(geometry.NewRect(10.4, 20.6, 5.2, 3.1))
	want := image.Rect(10, 20, 16, 24)
	if got != want {
		t.Errorf("got %v, expected %v", got, want)
	}
}

func TestWithStroke(t *testing.T) {
	t.Parallel()

	if New(WithStroke(5)).stroke != 5 {
		t.Error("stroke not applied")
	}
	if New(WithStroke(0)).stroke != 2 {
		t.Error("non-positive stroke should keep the default")
	}
}
