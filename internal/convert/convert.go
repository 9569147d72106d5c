// Package convert renders the first page of a PDF into a PNG preview.
package convert

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"math"
	"sync"

	"github.com/ledongthuc/pdf"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"

	"resume-review/internal/shared/util"
)

const (
	// DefaultScale renders at twice the PDF point size.
	DefaultScale = 2.0
	maxDimension = 4096
	// maxGlyphPx bounds rasterized glyph size regardless of the font size a
	// document asks for.
	maxGlyphPx   = 1024
	letterWidth  = 612
	letterHeight = 792
)

// Image is a rendered page ready for upload.
type Image struct {
	Name        string
	ContentType string
	Data        []byte
	Width       int
	Height      int
}

// Result carries either a rendered image or a human-readable failure reason.
// Exactly one of File and Err is set.
type Result struct {
	File *Image
	Err  string
}

// Converter renders PDF pages.
type Converter struct {
	Scale float64
}

// New returns a converter; non-positive scales fall back to DefaultScale.
func New(scale float64) *Converter {
	if scale <= 0 || math.IsNaN(scale) || math.IsInf(scale, 0) {
		scale = DefaultScale
	}
	return &Converter{Scale: scale}
}

// FirstPage renders page one of data. It never panics; parser failures are
// reported through Result.Err.
func (c *Converter) FirstPage(ctx context.Context, name string, data []byte) (res Result) {
	defer func() {
		if rec := recover(); rec != nil {
			res = Result{Err: fmt.Sprintf("failed to render PDF: %v", rec)}
		}
	}()
	if err := ctx.Err(); err != nil {
		return Result{Err: err.Error()}
	}

	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return Result{Err: fmt.Sprintf("failed to parse PDF: %v", err)}
	}
	if reader.NumPage() == 0 {
		return Result{Err: "PDF has no pages"}
	}
	page := reader.Page(1)
	if page.V.IsNull() {
		return Result{Err: "PDF has no pages"}
	}

	w, h := mediaBox(page.V)
	scale := c.scale()
	if m := math.Max(w, h) * scale; m > maxDimension {
		scale = maxDimension / math.Max(w, h)
	}
	width := int(math.Ceil(w * scale))
	height := int(math.Ceil(h * scale))

	img := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.Draw(img, img.Bounds(), image.White, image.Point{}, draw.Src)

	content := page.Content()
	for _, r := range content.Rect {
		strokeRect(img, r, h, scale)
	}
	faces := newFaceCache()
	for _, t := range content.Text {
		drawText(img, faces, t, h, scale)
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return Result{Err: fmt.Sprintf("failed to encode image: %v", err)}
	}
	return Result{File: &Image{
		Name:        util.SwapExt(name, "png"),
		ContentType: "image/png",
		Data:        buf.Bytes(),
		Width:       width,
		Height:      height,
	}}
}

func (c *Converter) scale() float64 {
	if c == nil || c.Scale <= 0 {
		return DefaultScale
	}
	return c.Scale
}

// mediaBox walks the page and its ancestors for an inherited MediaBox.
func mediaBox(v pdf.Value) (float64, float64) {
	for i := 0; i < 32 && v.Kind() == pdf.Dict; i++ {
		box := v.Key("MediaBox")
		if box.Kind() == pdf.Array && box.Len() == 4 {
			w := box.Index(2).Float64() - box.Index(0).Float64()
			h := box.Index(3).Float64() - box.Index(1).Float64()
			if w > 0 && h > 0 {
				return w, h
			}
		}
		v = v.Key("Parent")
	}
	return letterWidth, letterHeight
}

func strokeRect(img *image.RGBA, r pdf.Rect, pageHeight, scale float64) {
	x0 := int(r.Min.X * scale)
	x1 := int(r.Max.X * scale)
	y0 := int((pageHeight - r.Max.Y) * scale)
	y1 := int((pageHeight - r.Min.Y) * scale)
	if x0 > x1 {
		x0, x1 = x1, x0
	}
	if y0 > y1 {
		y0, y1 = y1, y0
	}
	ink := color.RGBA{R: 0x60, G: 0x60, B: 0x60, A: 0xff}
	for x := x0; x <= x1; x++ {
		img.SetRGBA(x, y0, ink)
		img.SetRGBA(x, y1, ink)
	}
	for y := y0; y <= y1; y++ {
		img.SetRGBA(x0, y, ink)
		img.SetRGBA(x1, y, ink)
	}
}

func drawText(img *image.RGBA, faces *faceCache, t pdf.Text, pageHeight, scale float64) {
	if t.S == "" {
		return
	}
	x := t.X * scale
	y := (pageHeight - t.Y) * scale
	bounds := img.Bounds()
	if math.IsNaN(x) || math.IsNaN(y) || x < 0 || y < 0 || x >= float64(bounds.Dx()) || y > float64(bounds.Dy()) {
		return
	}
	size := t.FontSize
	if size <= 0 || math.IsNaN(size) {
		size = 12
	}
	face := faces.get(glyphPixels(size*scale, bounds.Dy()))
	if face == nil {
		return
	}
	d := font.Drawer{
		Dst:  img,
		Src:  image.Black,
		Face: face,
		Dot:  fixed.P(int(x), int(y)),
	}
	d.DrawString(t.S)
}

// glyphPixels clamps a requested pixel size to the canvas height and to
// maxGlyphPx.
func glyphPixels(px float64, canvasHeight int) float64 {
	limit := math.Min(float64(canvasHeight), maxGlyphPx)
	if math.IsInf(px, 0) || px > limit {
		return limit
	}
	return px
}

var (
	parsedOnce sync.Once
	parsedFont *opentype.Font
	parseErr   error
)

type faceCache struct {
	faces map[int]font.Face
}

func newFaceCache() *faceCache {
	return &faceCache{faces: make(map[int]font.Face)}
}

// get returns a face for the pixel size rounded to the nearest integer.
func (fc *faceCache) get(px float64) font.Face {
	key := int(math.Round(px))
	if key < 1 {
		key = 1
	}
	if f, ok := fc.faces[key]; ok {
		return f
	}
	parsedOnce.Do(func() {
		parsedFont, parseErr = opentype.Parse(goregular.TTF)
	})
	if parseErr != nil {
		return nil
	}
	f, err := opentype.NewFace(parsedFont, &opentype.FaceOptions{
		Size:    float64(key),
		DPI:     72,
		Hinting: font.HintingFull,
	})
	if err != nil {
		return nil
	}
	fc.faces[key] = f
	return f
}
