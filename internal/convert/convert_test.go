package convert

import (
	"bytes"
	"context"
	"image/png"
	"math"
	"strings"
	"testing"

	"resume-review/internal/pdftest"
)

func TestFirstPageRendersPNG(t *testing.T) {
	doc := pdftest.Build([]string{"Jane Doe", "Go Engineer"}, []string{"page two"})

	res := New(1).FirstPage(context.Background(), "cv.final.pdf", doc)
	if res.Err != "" {
		t.Fatalf("unexpected error: %s", res.Err)
	}
	if res.File == nil {
		t.Fatalf("expected image")
	}
	if res.File.Name != "cv.final.png" {
		t.Fatalf("expected swapped name, got %q", res.File.Name)
	}
	if res.File.ContentType != "image/png" {
		t.Fatalf("unexpected content type %q", res.File.ContentType)
	}
	if res.File.Width != 612 || res.File.Height != 792 {
		t.Fatalf("expected letter size at scale 1, got %dx%d", res.File.Width, res.File.Height)
	}

	img, err := png.Decode(bytes.NewReader(res.File.Data))
	if err != nil {
		t.Fatalf("decode png: %v", err)
	}
	if img.Bounds().Dx() != 612 || img.Bounds().Dy() != 792 {
		t.Fatalf("unexpected bounds %v", img.Bounds())
	}
	r, g, b, _ := img.At(5, 5).RGBA()
	if r != 0xffff || g != 0xffff || b != 0xffff {
		t.Fatalf("expected white background")
	}
	// The border rectangle is stroked at x=36pt.
	r, _, _, _ = img.At(36, 400).RGBA()
	if r == 0xffff {
		t.Fatalf("expected border stroke at x=36")
	}
}

func TestFirstPageScale(t *testing.T) {
	res := New(2).FirstPage(context.Background(), "cv.pdf", pdftest.Build([]string{"x"}))
	if res.File == nil {
		t.Fatalf("expected image, got err %q", res.Err)
	}
	if res.File.Width != 1224 || res.File.Height != 1584 {
		t.Fatalf("expected doubled size, got %dx%d", res.File.Width, res.File.Height)
	}
}

func TestFirstPageClampsHugeScale(t *testing.T) {
	res := New(50).FirstPage(context.Background(), "cv.pdf", pdftest.Build([]string{"x"}))
	if res.File == nil {
		t.Fatalf("expected image, got err %q", res.Err)
	}
	if res.File.Height > maxDimension || res.File.Width > maxDimension {
		t.Fatalf("expected clamped size, got %dx%d", res.File.Width, res.File.Height)
	}
}

func TestFirstPageNoPages(t *testing.T) {
	res := New(1).FirstPage(context.Background(), "empty.pdf", pdftest.Build())
	if res.File != nil {
		t.Fatalf("expected no image")
	}
	if res.Err != "PDF has no pages" {
		t.Fatalf("unexpected reason %q", res.Err)
	}
}

func TestFirstPageGarbage(t *testing.T) {
	res := New(1).FirstPage(context.Background(), "bad.pdf", []byte("not a pdf at all"))
	if res.File != nil {
		t.Fatalf("expected no image")
	}
	if !strings.HasPrefix(res.Err, "failed to") {
		t.Fatalf("unexpected reason %q", res.Err)
	}
}

func TestFirstPageTruncated(t *testing.T) {
	res := New(1).FirstPage(context.Background(), "cut.pdf", pdftest.Truncated())
	if res.File != nil || res.Err == "" {
		t.Fatalf("expected failure result, got %+v", res)
	}
}

func TestFirstPageCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	res := New(1).FirstPage(ctx, "cv.pdf", pdftest.Build([]string{"x"}))
	if res.File != nil || res.Err == "" {
		t.Fatalf("expected canceled result, got %+v", res)
	}
}

func TestNewDefaultsScale(t *testing.T) {
	if got := New(0).Scale; got != DefaultScale {
		t.Fatalf("expected default scale, got %v", got)
	}
	if got := New(-3).Scale; got != DefaultScale {
		t.Fatalf("expected default scale, got %v", got)
	}
}

func TestFirstPageHugeFontSizeStaysBounded(t *testing.T) {
	doc := pdftest.BuildText(30000, 10, 100, "WWWWWWWW")

	res := New(2).FirstPage(context.Background(), "big.pdf", doc)
	if res.Err != "" {
		t.Fatalf("unexpected error: %s", res.Err)
	}
	if res.File == nil || res.File.Width != 1224 || res.File.Height != 1584 {
		t.Fatalf("unexpected image %+v", res.File)
	}
}

func TestFirstPageSkipsOffCanvasText(t *testing.T) {
	doc := pdftest.BuildText(12, 5000, -5000, "far away")

	res := New(1).FirstPage(context.Background(), "off.pdf", doc)
	if res.Err != "" {
		t.Fatalf("unexpected error: %s", res.Err)
	}
	img, err := png.Decode(bytes.NewReader(res.File.Data))
	if err != nil {
		t.Fatalf("decode png: %v", err)
	}
	b := img.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y += 4 {
		for x := b.Min.X; x < b.Max.X; x += 4 {
			if r, _, _, _ := img.At(x, y).RGBA(); r != 0xffff {
				t.Fatalf("expected blank page, ink at (%d,%d)", x, y)
			}
		}
	}
}

func TestGlyphPixels(t *testing.T) {
	cases := []struct {
		px     float64
		height int
		want   float64
	}{
		{24, 1584, 24},
		{60000, 1584, maxGlyphPx},
		{900, 792, 792},
		{math.Inf(1), 792, 792},
	}
	for _, tc := range cases {
		if got := glyphPixels(tc.px, tc.height); got != tc.want {
			t.Fatalf("glyphPixels(%v, %d) = %v, want %v", tc.px, tc.height, got, tc.want)
		}
	}
}
